package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/arloliu/gridverify/discretization"
	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/series"
)

func classic(t *testing.T) *discretization.Analysis {
	t.Helper()

	s, err := series.New([]float64{1, 2, 4}, []float64{10, 10.5, 12})
	require.NoError(t, err)
	a, err := discretization.NewClassic(s)
	require.NoError(t, err)

	return a
}

func TestNew(t *testing.T) {
	require := require.New(t)

	p, err := New(classic(t), "", 0, WithTitle("cavity"), WithLabels("h", ""))
	require.NoError(err)
	require.Equal("cavity", p.Title.Text)
	require.Equal("h", p.X.Label.Text)
	require.Equal(DefaultYLabel, p.Y.Label.Text)
	require.Equal(0.0, p.X.Min)
}

func TestNewErrors(t *testing.T) {
	a := classic(t)

	_, err := New(a, "missing", 0)
	require.ErrorIs(t, err, errs.ErrUnknownKey)

	_, err = New(a, "", 3)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)

	_, err = New(a, "", 0, WithSize(0, vg.Inch))
	require.ErrorIs(t, err, errs.ErrInvalidOption)

	_, err = New(a, "", 0, WithUncertaintyOptions(discretization.WithSafetyFactor(-1)))
	require.ErrorIs(t, err, errs.ErrInvalidOption)
}

func TestNewWithoutBands(t *testing.T) {
	s, err := series.New([]float64{1, 2, 4}, []float64{3, 2, 1})
	require.NoError(t, err)
	a, err := discretization.NewCustom(s, discretization.WithModel(discretization.NewFinestValue))
	require.NoError(t, err)

	// GCI is undefined for a zero-order model, so the bands must be disabled.
	_, err = New(a, "", 0)
	require.ErrorIs(t, err, errs.ErrDegenerateOrder)

	_, err = New(a, "", 0, WithBands(true, false))
	require.NoError(t, err)
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "svg", classic(t), "", 1, WithSize(3*vg.Inch, 2*vg.Inch)))
	require.Contains(t, buf.String(), "<svg")
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.png")
	require.NoError(t, Save(path, classic(t), "", 0))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Positive(t, info.Size())
	require.Equal(t, "png", FormatOf(path))
}
