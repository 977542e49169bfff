// Package chart draws a solved analysis with gonum/plot: the data at every
// level, the extrapolated estimate at zero size, the model curve, and the
// error and uncertainty bands of one level.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/arloliu/gridverify/discretization"
	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/internal/options"
)

const (
	// DefaultXLabel labels the size axis.
	DefaultXLabel = "Discretization Size"
	// DefaultYLabel labels the response axis.
	DefaultYLabel = "System Response Quantity"
	curvePoints   = 50
)

var (
	dataColor        = color.Black
	modelColor       = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	errorColor       = color.NRGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0x40}
	uncertaintyColor = color.NRGBA{R: 0xff, G: 0xe1, B: 0x19, A: 0x40}
)

// Config controls what is drawn.
type Config struct {
	Title       string
	XLabel      string
	YLabel      string
	Error       bool
	Uncertainty bool
	Width       vg.Length
	Height      vg.Length
	// UncertaintyOptions are forwarded to the uncertainty query of the banded level.
	UncertaintyOptions []discretization.UncertaintyOption
}

// Option is a functional option for Config.
type Option = options.Option[*Config]

// WithTitle sets the plot title.
func WithTitle(title string) Option {
	return options.NoError(func(c *Config) {
		c.Title = title
	})
}

// WithLabels sets the axis labels. Empty labels keep the defaults.
func WithLabels(x, y string) Option {
	return options.NoError(func(c *Config) {
		if x != "" {
			c.XLabel = x
		}
		if y != "" {
			c.YLabel = y
		}
	})
}

// WithBands toggles the error and uncertainty bands.
func WithBands(showError, showUncertainty bool) Option {
	return options.NoError(func(c *Config) {
		c.Error = showError
		c.Uncertainty = showUncertainty
	})
}

// WithSize sets the canvas size used by Save and Write.
func WithSize(width, height vg.Length) Option {
	return options.New(func(c *Config) error {
		if width <= 0 || height <= 0 {
			return fmt.Errorf("%w: canvas size must be positive", errs.ErrInvalidOption)
		}
		c.Width, c.Height = width, height

		return nil
	})
}

// WithUncertaintyOptions forwards uncertainty options to the banded level.
func WithUncertaintyOptions(opts ...discretization.UncertaintyOption) Option {
	return options.NoError(func(c *Config) {
		c.UncertaintyOptions = append(c.UncertaintyOptions, opts...)
	})
}

func newConfig(opts []Option) (Config, error) {
	cfg := Config{
		XLabel:      DefaultXLabel,
		YLabel:      DefaultYLabel,
		Error:       true,
		Uncertainty: true,
		Width:       6 * vg.Inch,
		Height:      4 * vg.Inch,
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// New builds the plot of key with bands at level index. An empty key selects
// the first response.
func New(a *discretization.Analysis, key string, index int, opts ...Option) (*plot.Plot, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return build(a, key, index, cfg)
}

// Save renders the plot to path. The image format follows the file
// extension (png, svg, pdf, eps, jpg, tif).
func Save(path string, a *discretization.Analysis, key string, index int, opts ...Option) error {
	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}
	p, err := build(a, key, index, cfg)
	if err != nil {
		return err
	}

	return p.Save(cfg.Width, cfg.Height, path)
}

// Write renders the plot to w in format, e.g. "png" or "svg".
func Write(w io.Writer, format string, a *discretization.Analysis, key string, index int, opts ...Option) error {
	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}
	p, err := build(a, key, index, cfg)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(cfg.Width, cfg.Height, strings.TrimPrefix(strings.ToLower(format), "."))
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)

	return err
}

// FormatOf returns the image format implied by path.
func FormatOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func build(a *discretization.Analysis, key string, index int, cfg Config) (*plot.Plot, error) {
	if key == "" {
		keys := a.Keys()
		if len(keys) == 0 {
			return nil, errs.ErrNoResponses
		}
		key = keys[0]
	}

	sizes := a.Sizes()
	if index < 0 || index >= len(sizes) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrIndexOutOfRange, index, len(sizes))
	}
	values, err := a.Response(key)
	if err != nil {
		return nil, err
	}
	fEst, err := a.FEstOf(key)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XLabel
	p.Y.Label.Text = cfg.YLabel
	p.X.Min = 0

	if cfg.Error || cfg.Uncertainty {
		if err := addBands(p, a, key, index, sizes[index], cfg); err != nil {
			return nil, err
		}
	}

	data := make(plotter.XYs, len(sizes))
	for i := range sizes {
		data[i].X, data[i].Y = sizes[i], values[i]
	}
	scatter, err := plotter.NewScatter(data)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Color = dataColor
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(3)

	estimate, err := plotter.NewScatter(plotter.XYs{{X: 0, Y: fEst}})
	if err != nil {
		return nil, err
	}
	estimate.GlyphStyle.Color = modelColor
	estimate.GlyphStyle.Shape = draw.CircleGlyph{}
	estimate.GlyphStyle.Radius = vg.Points(3)

	curve, err := modelCurve(a, key, sizes[len(sizes)-1])
	if err != nil {
		return nil, err
	}
	curve.LineStyle.Color = modelColor
	curve.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}

	p.Add(curve, scatter, estimate)
	p.Legend.Add("Data", scatter)
	p.Legend.Add("Estimate", estimate)
	p.Legend.Add("Model", curve)

	return p, nil
}

// modelCurve samples the model on [0, hMax].
func modelCurve(a *discretization.Analysis, key string, hMax float64) (*plotter.Line, error) {
	hs := make([]float64, curvePoints)
	for i := range hs {
		hs[i] = hMax * float64(i) / float64(curvePoints-1)
	}
	ys, err := a.Model().EvaluateAll(key, hs)
	if err != nil {
		return nil, err
	}

	xys := make(plotter.XYs, 0, len(hs))
	for i := range hs {
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: hs[i], Y: ys[i]})
	}

	return plotter.NewLine(xys)
}

// addBands shades |error| around the modeled value of level index, and the
// uncertainty beyond it, over [0, h].
func addBands(p *plot.Plot, a *discretization.Analysis, key string, index int, h float64, cfg Config) error {
	center, err := a.Evaluate(key, h)
	if err != nil {
		return err
	}
	e, err := a.Error(key, index)
	if err != nil {
		return err
	}
	e = math.Abs(e)

	if cfg.Error {
		band, err := rect(0, h, center-e, center+e, errorColor)
		if err != nil {
			return err
		}
		p.Add(band)
		p.Legend.Add("Error", band)
	}

	if cfg.Uncertainty {
		u, err := a.Uncertainty(key, index, cfg.UncertaintyOptions...)
		if err != nil {
			return err
		}
		upper, err := rect(0, h, center+e, center+u, uncertaintyColor)
		if err != nil {
			return err
		}
		lower, err := rect(0, h, center-u, center-e, uncertaintyColor)
		if err != nil {
			return err
		}
		p.Add(upper, lower)
		p.Legend.Add("Uncertainty", lower)
	}

	return nil
}

func rect(x0, x1, y0, y1 float64, c color.Color) (*plotter.Polygon, error) {
	poly, err := plotter.NewPolygon(plotter.XYs{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	})
	if err != nil {
		return nil, err
	}
	poly.Color = c
	poly.LineStyle.Width = 0

	return poly, nil
}
