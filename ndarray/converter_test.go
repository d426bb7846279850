package ndarray

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeConverterIntToFloat(t *testing.T) {
	conv, err := NewTypeConverter(Int16, Int16.DefaultBadHandler(), Float32, BadHandler{}, nil)
	require.NoError(t, err)
	assert.False(t, conv.IsUnit12())

	src := []int16{1, math.MinInt16, -7}
	dst := make([]float32, 3)
	require.NoError(t, conv.Convert12(src, 0, dst, 0, 3))
	assert.Equal(t, float32(1), dst[0])
	assert.True(t, math.IsNaN(float64(dst[1])))
	assert.Equal(t, float32(-7), dst[2])
}

func TestTypeConverterFloatToInt(t *testing.T) {
	conv, err := NewTypeConverter(Float64, BadHandler{}, Int8, MustBadHandler(Int8, -128), nil)
	require.NoError(t, err)

	src := []float64{2.5, -2.5, 0.4, 127.4, 127.5, -128.6, math.NaN(), math.Inf(1), -3}
	dst := make([]int8, len(src))
	require.NoError(t, conv.Convert12(src, 0, dst, 0, len(src)))
	assert.Equal(t, []int8{3, -3, 0, 127, -128, -128, -128, -128, -3}, dst)
}

func TestTypeConverterFloat64ToFloat32Range(t *testing.T) {
	conv, err := NewTypeConverter(Float64, BadHandler{}, Float32, MustBadHandler(Float32, -1), nil)
	require.NoError(t, err)

	src := []float64{1e300, math.Inf(-1), 3}
	dst := make([]float32, 3)
	require.NoError(t, conv.Convert12(src, 0, dst, 0, 3))
	assert.Equal(t, float32(-1), dst[0])
	assert.True(t, math.IsInf(float64(dst[1]), -1))
	assert.Equal(t, float32(3), dst[2])
}

func TestTypeConverterFunction(t *testing.T) {
	fn := LinearFunction{Scale: 2, Zero: 100}
	conv, err := NewTypeConverter(Int16, BadHandler{}, Float64, BadHandler{}, fn)
	require.NoError(t, err)
	assert.False(t, conv.IsUnit12())

	src := []int16{0, 5, math.MinInt16}
	dst := make([]float64, 3)
	require.NoError(t, conv.Convert12(src, 0, dst, 0, 3))
	assert.Equal(t, 100.0, dst[0])
	assert.Equal(t, 110.0, dst[1])
	assert.True(t, math.IsNaN(dst[2]))

	back := make([]int16, 3)
	require.NoError(t, conv.Convert21(dst, 0, back, 0, 3))
	assert.Equal(t, src, back)
}

func TestTypeConverterRoundTrip(t *testing.T) {
	for _, typ := range Types() {
		t.Run(typ.String(), func(t *testing.T) {
			conv, err := NewTypeConverter(typ, BadHandler{}, Float64, BadHandler{}, nil)
			require.NoError(t, err)

			src := typ.NewBuffer(4)
			bh := typ.DefaultBadHandler()
			for i := 0; i < 3; i++ {
				require.NoError(t, conv.Convert21([]float64{float64(i*7 - 5)}, 0, src, i, 1))
			}
			bh.PutBad(src, 3)

			wide := make([]float64, 4)
			require.NoError(t, conv.Convert12(src, 0, wide, 0, 4))
			back := typ.NewBuffer(4)
			require.NoError(t, conv.Convert21(wide, 0, back, 0, 4))
			for i := 0; i < 4; i++ {
				v1, ok1 := bh.Value(src, i)
				v2, ok2 := bh.Value(back, i)
				assert.Equal(t, ok1, ok2)
				assert.Equal(t, v1, v2)
			}
			assert.False(t, bh.IsBad(back, 0))
			assert.True(t, bh.IsBad(back, 3))
		})
	}
}

func TestTypeConverterUnit(t *testing.T) {
	conv, err := NewTypeConverter(Int32, BadHandler{}, Int32, Int32.DefaultBadHandler(), nil)
	require.NoError(t, err)
	assert.True(t, conv.IsUnit12())
	assert.True(t, conv.IsUnit21())

	conv, err = NewTypeConverter(Int32, BadHandler{}, Int32, MustBadHandler(Int32, 0), nil)
	require.NoError(t, err)
	assert.False(t, conv.IsUnit12())
	dst := make([]int32, 2)
	require.NoError(t, conv.Convert12([]int32{math.MinInt32, 4}, 0, dst, 0, 2))
	assert.Equal(t, []int32{0, 4}, dst)
}

func TestTypeConverterArguments(t *testing.T) {
	_, err := NewTypeConverter(Int32, MustBadHandler(Int16, 0), Int32, BadHandler{}, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	conv, err := NewTypeConverter(Int32, BadHandler{}, Float32, BadHandler{}, nil)
	require.NoError(t, err)
	require.ErrorIs(t, conv.Convert12([]int16{1}, 0, make([]float32, 1), 0, 1), ErrInvalidArgument)
	require.ErrorIs(t, conv.Convert12([]int32{1}, 0, make([]float32, 1), 1, 1), ErrInvalidArgument)
}
