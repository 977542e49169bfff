package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/gridverify/discretization"
	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/series"
)

func classicReport(t *testing.T) *Report {
	t.Helper()

	s, err := series.FromMap([]float64{4, 2, 1}, map[string][]float64{
		"drag": {12, 10.5, 10},
		"lift": {1.4, 1.1, 1.0},
	})
	require.NoError(t, err)

	a, err := discretization.NewClassic(s)
	require.NoError(t, err)

	r, err := New("wing", a)
	require.NoError(t, err)

	return r
}

func TestNew(t *testing.T) {
	require := require.New(t)

	r := classicReport(t)
	require.Equal("wing", r.Name)
	require.Equal("classic", r.Preset)
	require.Equal("single_power", r.Model)
	require.Equal("estimated", r.ErrorModel)
	require.Equal("gci", r.UncertaintyModel)
	require.Equal("hs", r.SizeKey)
	require.Equal(3, r.Len())
	require.Equal([]string{"drag", "lift"}, r.Keys())
	require.Equal([]string{"f_est", "alpha", "p"}, r.ParamNames)

	drag, err := r.Response("drag")
	require.NoError(err)
	require.Equal([]float64{10, 10.5, 12}, drag.Values)
	require.InDelta(9.75, drag.FEst, 1e-6)
	require.InDelta(0.25, drag.Errors[0], 1e-6)
	require.InDelta(0.3125, drag.Uncertainties[0], 1e-6)
	require.Empty(drag.UncertaintyFailure)

	alpha, err := r.Param(drag, "alpha")
	require.NoError(err)
	require.InDelta(0.25, alpha, 1e-6)
	_, err = r.Param(drag, "beta")
	require.ErrorIs(err, errs.ErrUnknownKey)

	_, err = r.Response("missing")
	require.ErrorIs(err, errs.ErrUnknownKey)
}

func TestNewRecordsUncertaintyFailure(t *testing.T) {
	require := require.New(t)

	s, err := series.New([]float64{1, 2, 4}, []float64{3, 2, 1})
	require.NoError(err)
	a, err := discretization.NewCustom(s, discretization.WithModel(discretization.NewFinestValue))
	require.NoError(err)

	r, err := New("", a)
	require.NoError(err)

	resp := r.Responses[0]
	require.Contains(resp.UncertaintyFailure, "equals one")
	require.True(math.IsNaN(resp.Uncertainties[0]))
	require.Equal([]float64{0, -1, -2}, resp.Errors)
}

func TestNewForwardsUncertaintyOptions(t *testing.T) {
	s, err := series.New([]float64{1, 2, 4}, []float64{10, 10.5, 12})
	require.NoError(t, err)
	a, err := discretization.NewClassic(s)
	require.NoError(t, err)

	r, err := New("", a, discretization.WithNormalize(true))
	require.NoError(t, err)
	require.InDelta(t, 0.03125, r.Responses[0].Uncertainties[0], 1e-6)
}

func TestWriteCSV(t *testing.T) {
	r := classicReport(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, r))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	labels := make([]string, len(lines))
	for i, line := range lines {
		labels[i] = strings.SplitN(line, ",", 2)[0]
	}

	want := []string{"Index", "0", "1", "2", "f_est", "alpha", "p"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("CSV row labels mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "Index,drag,lift", lines[0])
	require.Equal(t, "0,10,1", lines[1])
	require.Equal(t, "2,12,1.4", lines[3])
}

func TestSummarize(t *testing.T) {
	require := require.New(t)

	r := classicReport(t)

	var buf bytes.Buffer
	require.NoError(Summarize(&buf, r, "", StyleASCII))
	out := buf.String()
	require.Contains(out, "drag")
	require.Contains(out, "Extrapolated Value: 9.75")
	require.Contains(out, "Fine mesh uncertainty: 0.3125")
	require.Contains(out, "Model: single_power / estimated / gci")

	buf.Reset()
	require.NoError(Summarize(&buf, r, "lift", StyleMarkdown))
	require.Contains(buf.String(), "| hs |")
	require.Contains(buf.String(), "Extrapolated Value: 0.95")

	require.ErrorIs(Summarize(&buf, r, "missing", StyleASCII), errs.ErrUnknownKey)
}

func TestParseStyle(t *testing.T) {
	got, err := ParseStyle("Markdown")
	require.NoError(t, err)
	require.Equal(t, StyleMarkdown, got)

	got, err = ParseStyle("")
	require.NoError(t, err)
	require.Equal(t, StyleASCII, got)

	_, err = ParseStyle("html")
	require.Error(t, err)
}

func TestNewIsDeterministic(t *testing.T) {
	r := classicReport(t)
	other := classicReport(t)

	opt := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff(r, other, opt); diff != "" {
		t.Errorf("reports of identical analyses differ:\n%s", diff)
	}
}
