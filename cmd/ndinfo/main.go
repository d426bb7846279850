// Command ndinfo describes raw pixel files and writes windowed, converted
// or reordered copies of them.
package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/robert-malhotra/go-ndarray/internal/stepper"
	"github.com/robert-malhotra/go-ndarray/ndarray"
	"github.com/robert-malhotra/go-ndarray/rawfile"
)

type flags struct {
	configFile string
	logLevel   string
	window     string
	typ        string
	order      string
	out        string
	cfg        ndarray.Config
}

func main() {
	f := flags{cfg: ndarray.DefaultConfig()}
	fs := flag.NewFlagSet("ndinfo", flag.ExitOnError)
	fs.StringVar(&f.configFile, "config", "", "YAML configuration file. Flags override its values.")
	fs.StringVar(&f.logLevel, "log.level", "info", "Log level: debug, info, warn or error.")
	fs.StringVar(&f.window, "window", "", "Window to present, as origin:limit per axis, e.g. 0:10,-5:5.")
	fs.StringVar(&f.typ, "type", "", "Element type to convert to.")
	fs.StringVar(&f.order, "order", "", "Pixel order to present: first-index-fastest or last-index-fastest.")
	fs.StringVar(&f.out, "out", "", "Write the presented array to this "+rawfile.Extension+" file.")
	f.cfg.RegisterFlags("", fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: ndinfo [flags] <file%s>\n", rawfile.Extension)
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	if f.configFile != "" {
		if err := loadConfig(&f.cfg, f.configFile, fs); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, allowLevel(f.logLevel))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	if err := run(f, fs.Arg(0), logger); err != nil {
		level.Error(logger).Log("msg", "ndinfo failed", "err", err)
		os.Exit(1)
	}
}

func allowLevel(s string) level.Option {
	switch strings.ToLower(s) {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

// loadConfig reads the YAML file into cfg, then re-applies any flags given
// on the command line.
func loadConfig(cfg *ndarray.Config, path string, fs *flag.FlagSet) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	defer file.Close()
	loaded, err := ndarray.LoadConfig(file)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	explicit := map[string]string{}
	fs.Visit(func(fl *flag.Flag) { explicit[fl.Name] = fl.Value.String() })
	*cfg = loaded
	for name, value := range explicit {
		if err := fs.Set(name, value); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

func run(f flags, path string, logger log.Logger) (err error) {
	reg := prometheus.NewRegistry()
	opts := []ndarray.Option{
		ndarray.WithLogger(logger),
		ndarray.WithConfig(f.cfg),
		ndarray.WithMetrics(ndarray.NewMetrics(reg)),
	}
	chain := ndarray.NewResolverChain(rawfile.NewResolver(rawfile.WithArrayOptions(opts...), rawfile.WithLogger(logger)))

	src, err := chain.Resolve(path, ndarray.Read)
	if err != nil {
		return err
	}
	req, err := requirements(f, src.Shape().NumDims())
	if err != nil {
		src.Close()
		return err
	}
	nda, err := ndarray.ToRequired(src, req, opts...)
	if err != nil {
		src.Close()
		return err
	}
	defer func() {
		err = errors.Join(err, nda.Close())
	}()

	fmt.Printf("=== %s ===\n\n", path)
	describe(nda)
	if err := printStats(nda, f.cfg.ChunkSize); err != nil {
		return err
	}

	if f.out != "" {
		dst, err := chain.Create(f.out, nda.Shape(), nda.Type(), nda.BadHandler())
		if err != nil {
			return err
		}
		if err := ndarray.Copy(nda, dst, opts...); err != nil {
			return errors.Join(err, dst.Close())
		}
		if err := dst.Close(); err != nil {
			return err
		}
		fmt.Printf("\nWrote %s\n", f.out)
	}

	families, err := reg.Gather()
	if err != nil {
		return err
	}
	fmt.Println()
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			value := m.GetCounter().GetValue() + m.GetGauge().GetValue()
			fmt.Printf("%s{%s} %v\n", mf.GetName(), strings.Join(labels, ","), value)
		}
	}
	return nil
}

func requirements(f flags, ndims int) (*ndarray.Requirements, error) {
	req := ndarray.NewRequirements().SetMode(ndarray.Read)
	if f.typ != "" {
		t, err := ndarray.ParseType(f.typ)
		if err != nil {
			return nil, err
		}
		req.SetType(t)
	}
	if f.order != "" {
		o, err := ndarray.ParseOrder(f.order)
		if err != nil {
			return nil, err
		}
		req.SetOrder(o)
	}
	if f.window != "" {
		w, err := parseWindow(f.window, ndims)
		if err != nil {
			return nil, err
		}
		req.SetWindow(w)
	}
	return req, nil
}

// parseWindow parses "o1:l1,o2:l2,..." with exclusive limits.
func parseWindow(s string, ndims int) (ndarray.Shape, error) {
	axes := strings.Split(s, ",")
	if len(axes) != ndims {
		return ndarray.Shape{}, fmt.Errorf("window %q has %d axes, array has %d", s, len(axes), ndims)
	}
	lower := make([]int64, ndims)
	upper := make([]int64, ndims)
	for i, axis := range axes {
		lo, hi, ok := strings.Cut(axis, ":")
		if !ok {
			return ndarray.Shape{}, fmt.Errorf("window axis %q is not origin:limit", axis)
		}
		var err error
		if lower[i], err = strconv.ParseInt(strings.TrimSpace(lo), 10, 64); err != nil {
			return ndarray.Shape{}, fmt.Errorf("window axis %q: %w", axis, err)
		}
		if upper[i], err = strconv.ParseInt(strings.TrimSpace(hi), 10, 64); err != nil {
			return ndarray.Shape{}, fmt.Errorf("window axis %q: %w", axis, err)
		}
		upper[i]--
	}
	return ndarray.ShapeFromBounds(lower, upper)
}

func describe(nda ndarray.NDArray) {
	fmt.Printf("Shape:       %s\n", nda.Shape())
	fmt.Printf("Type:        %s\n", nda.Type())
	fmt.Printf("Bad values:  %s\n", nda.BadHandler())
	fmt.Printf("Pixels:      %d\n", nda.Shape().NumPixels())
	fmt.Printf("Random:      %v\n", nda.IsRandom())
	fmt.Printf("Locator:     %s\n", nda.Locator())
}

func printStats(nda ndarray.NDArray, chunk int) error {
	acc, err := nda.Access()
	if err != nil {
		return err
	}
	defer acc.Close()

	bh := nda.BadHandler()
	lo, hi := math.Inf(1), math.Inf(-1)
	var bad int64
	step := stepper.New(nda.Shape().NumPixels(), chunk)
	buf := nda.Type().NewBuffer(step.BufferSize())
	for ; step.HasNext(); step.Next() {
		n := step.Size()
		if err := acc.Read(buf, 0, n); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			v, ok := bh.Value(buf, i)
			if !ok {
				bad++
				continue
			}
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}

	sum, err := ndarray.Checksum(nda)
	if err != nil {
		return err
	}
	fmt.Printf("Bad pixels:  %d\n", bad)
	if !math.IsInf(lo, 1) {
		fmt.Printf("Range:       %v .. %v\n", lo, hi)
	}
	fmt.Printf("Checksum:    %016x\n", sum)
	return nil
}
