package gridverify

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/gridverify/discretization"
	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/format"
	"github.com/arloliu/gridverify/series"
	"github.com/arloliu/gridverify/snapshot"
)

func TestClassic(t *testing.T) {
	require := require.New(t)

	a, err := Classic([]float64{4, 1, 2}, []float64{12.0, 10.0, 10.5})
	require.NoError(err)
	require.Equal(discretization.PresetClassic, a.Preset())
	require.Equal([]string{series.DefaultResponseName}, a.Keys())

	key := a.Keys()[0]
	fEst, err := a.FEstOf(key)
	require.NoError(err)
	require.InDelta(9.75, fEst, 1e-6)

	order, err := a.OrderOf(key)
	require.NoError(err)
	require.InDelta(math.Log2(3), order[0], 1e-6)

	gci, err := a.Uncertainty(key, 0)
	require.NoError(err)
	require.InDelta(0.3125, gci, 1e-5)
}

func TestAverage_Mapping(t *testing.T) {
	a, err := Average(map[string]any{
		"dx":   []float64{0.1, 0.2, 0.4},
		"temp": []int{300, 302, 304},
	}, "dx")
	require.NoError(t, err)
	require.Equal(t, "dx", a.SizeKey())

	fEst, err := a.FEstOf("temp")
	require.NoError(t, err)
	require.InDelta(t, 302.0, fEst, 1e-12)
}

func TestCustom(t *testing.T) {
	finest, err := discretization.ModelFactoryOf(discretization.ModelFinestValue)
	require.NoError(t, err)

	a, err := Custom([]float64{1, 2, 4}, map[string][]float64{"q": {1, 2, 3}},
		discretization.WithModel(finest))
	require.NoError(t, err)
	require.Equal(t, discretization.ModelFinestValue, a.Model().Kind())

	fEst, err := a.FEstOf("q")
	require.NoError(t, err)
	require.Equal(t, 1.0, fEst)
}

func TestNew_Errors(t *testing.T) {
	_, err := Classic([]float64{}, []float64{})
	require.ErrorIs(t, err, errs.ErrEmptySeries)

	_, err = Classic([]float64{1, 2}, "hs")
	require.ErrorIs(t, err, errs.ErrIncompatibleInput)

	_, err = Classic(map[string]any{"hs": []float64{1, 2}, "q": []float64{1, 2}}, "dx")
	require.ErrorIs(t, err, errs.ErrMissingSizeKey)
}

func TestArchive(t *testing.T) {
	a, err := Classic([]float64{1, 2, 4}, map[string][]float64{
		"drag": {10, 10.5, 12},
		"lift": {1.0, 1.1, 1.4},
	})
	require.NoError(t, err)

	data, err := Archive("wing", a, snapshot.WithCompression(format.CompressionS2))
	require.NoError(t, err)

	rd, err := snapshot.NewReader(data)
	require.NoError(t, err)
	require.Equal(t, "wing", rd.Name())
	require.Equal(t, []string{"drag", "lift"}, rd.Keys())

	drag, err := rd.Response("drag")
	require.NoError(t, err)
	require.InDelta(t, 9.75, drag.FEst, 1e-6)
}

func TestKeyID(t *testing.T) {
	require.Equal(t, uint64(0x4fdcca5ddb678139), KeyID("test"))
	require.NotEqual(t, KeyID("drag"), KeyID("lift"))
}
