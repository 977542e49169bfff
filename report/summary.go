package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Style controls how Summarize renders the table.
type Style int

const (
	// StyleASCII renders a fixed-width terminal table.
	StyleASCII Style = iota
	// StyleMarkdown renders a GitHub-flavoured Markdown table.
	StyleMarkdown
)

// ParseStyle resolves "ascii" (or "") and "markdown".
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(name) {
	case "", "ascii", "text":
		return StyleASCII, nil
	case "markdown", "md":
		return StyleMarkdown, nil
	default:
		return StyleASCII, fmt.Errorf("unknown table style %q (want ascii or markdown)", name)
	}
}

// Summarize writes a level table for one response followed by the
// extrapolated value and the finest-level error and uncertainty. An empty key
// selects the first response.
func Summarize(w io.Writer, r *Report, key string, style Style) error {
	if key == "" && len(r.Responses) > 0 {
		key = r.Responses[0].Key
	}
	resp, err := r.Response(key)
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{r.SizeKey, key, "Error", "Uncertainty"})
	for i, h := range r.Sizes {
		tw.AppendRow(table.Row{
			formatSummary(h),
			formatSummary(resp.Values[i]),
			formatSummary(resp.Errors[i]),
			formatSummary(resp.Uncertainties[i]),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	var rendered string
	switch style {
	case StyleMarkdown:
		rendered = tw.RenderMarkdown()
	default:
		tw.SetStyle(table.StyleLight)
		rendered = tw.Render()
	}

	var b strings.Builder
	b.WriteString(rendered)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Model: %s / %s / %s\n", r.Model, r.ErrorModel, r.UncertaintyModel)
	fmt.Fprintf(&b, "Extrapolated Value: %.6g\n", resp.FEst)
	fmt.Fprintf(&b, "Observed Order: %s\n", formatOrder(resp.Order))
	fmt.Fprintf(&b, "Fine mesh error: %.6g\n", resp.Errors[0])
	fmt.Fprintf(&b, "Fine mesh uncertainty: %.6g\n", resp.Uncertainties[0])
	if resp.ErrorFailure != "" {
		fmt.Fprintf(&b, "Error unavailable: %s\n", resp.ErrorFailure)
	}
	if resp.UncertaintyFailure != "" {
		fmt.Fprintf(&b, "Uncertainty unavailable: %s\n", resp.UncertaintyFailure)
	}

	_, err = io.WriteString(w, b.String())

	return err
}

func formatSummary(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func formatOrder(order []float64) string {
	parts := make([]string, len(order))
	for i, v := range order {
		parts[i] = fmt.Sprintf("%.6g", v)
	}

	return strings.Join(parts, ", ")
}
