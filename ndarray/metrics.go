package ndarray

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics maintained by arrays and accessors.
// A nil *Metrics records nothing.
type Metrics struct {
	PixelsRead    *prometheus.CounterVec
	PixelsWritten *prometheus.CounterVec
	IOFailures    prometheus.Counter
	ScratchBytes  *prometheus.CounterVec
	OpenArrays    prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	pixelsRead := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ndarray_pixels_read_total",
		Help: "Total pixels read through array accessors",
	}, []string{"type"})

	pixelsWritten := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ndarray_pixels_written_total",
		Help: "Total pixels written through array accessors",
	}, []string{"type"})

	ioFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ndarray_io_failures_total",
		Help: "Backend failures that force-closed an accessor",
	})

	scratchBytes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ndarray_scratch_bytes_total",
		Help: "Bytes allocated for scratch arrays by backing store",
	}, []string{"store"})

	openArrays := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ndarray_open_arrays",
		Help: "Arrays whose backend is currently open",
	})

	reg.MustRegister(pixelsRead, pixelsWritten, ioFailures, scratchBytes, openArrays)

	return &Metrics{
		PixelsRead:    pixelsRead,
		PixelsWritten: pixelsWritten,
		IOFailures:    ioFailures,
		ScratchBytes:  scratchBytes,
		OpenArrays:    openArrays,
	}
}

func (m *Metrics) read(t Type, n int) {
	if m != nil && n > 0 {
		m.PixelsRead.WithLabelValues(t.String()).Add(float64(n))
	}
}

func (m *Metrics) written(t Type, n int) {
	if m != nil && n > 0 {
		m.PixelsWritten.WithLabelValues(t.String()).Add(float64(n))
	}
}

func (m *Metrics) ioFailure() {
	if m != nil {
		m.IOFailures.Inc()
	}
}

func (m *Metrics) scratch(store string, nbytes int) {
	if m != nil {
		m.ScratchBytes.WithLabelValues(store).Add(float64(nbytes))
	}
}

func (m *Metrics) opened() {
	if m != nil {
		m.OpenArrays.Inc()
	}
}

func (m *Metrics) closed() {
	if m != nil {
		m.OpenArrays.Dec()
	}
}
