// Package study loads analysis definitions from YAML or JSON study files.
//
// A study names the data, the preset and, for custom analyses, the model
// triad:
//
//	name: cavity
//	preset: classic
//	order_limits: [0.5, 4]
//	data:
//	  hs: [1, 2, 4]
//	  drag: [10.0, 10.5, 12.0]
//
// Response columns keep their document order. JSON files load through the
// same decoder since JSON is valid YAML.
package study

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/gridverify/discretization"
	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/series"
)

// Study is a parsed study file.
type Study struct {
	Name               string             `yaml:"name"`
	SizeKey            string             `yaml:"size_key,omitempty"`
	Preset             string             `yaml:"preset,omitempty"`
	Model              string             `yaml:"model,omitempty"`
	Error              string             `yaml:"error,omitempty"`
	Uncertainty        string             `yaml:"uncertainty,omitempty"`
	OrderLimits        []float64          `yaml:"order_limits,omitempty"`
	MaxIterations      int                `yaml:"max_iterations,omitempty"`
	UncertaintyOptions UncertaintyOptions `yaml:"uncertainty_options,omitempty"`

	// Sizes optionally holds the discretization sizes apart from Data.
	// Without it, Data must be a mapping that contains the size column.
	Sizes yaml.Node `yaml:"sizes,omitempty"`
	Data  yaml.Node `yaml:"data"`
}

// UncertaintyOptions mirrors the uncertainty options. Unset fields keep
// their defaults.
type UncertaintyOptions struct {
	SafetyFactor *float64 `yaml:"safety_factor,omitempty"`
	Normalize    *bool    `yaml:"normalize,omitempty"`
	Significance *float64 `yaml:"significance,omitempty"`
	Factor       *float64 `yaml:"factor,omitempty"`
}

// Options converts the set fields to uncertainty options.
func (u UncertaintyOptions) Options() []discretization.UncertaintyOption {
	var opts []discretization.UncertaintyOption
	if u.SafetyFactor != nil {
		opts = append(opts, discretization.WithSafetyFactor(*u.SafetyFactor))
	}
	if u.Normalize != nil {
		opts = append(opts, discretization.WithNormalize(*u.Normalize))
	}
	if u.Significance != nil {
		opts = append(opts, discretization.WithSignificance(*u.Significance))
	}
	if u.Factor != nil {
		opts = append(opts, discretization.WithFactor(*u.Factor))
	}

	return opts
}

// Load parses a study document. Unknown fields are rejected.
func Load(data []byte) (*Study, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Study
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty study document", errs.ErrEmptySeries)
		}

		return nil, fmt.Errorf("parse study: %w", err)
	}
	if s.Data.Kind == 0 {
		return nil, fmt.Errorf("%w: study %q has no data", errs.ErrEmptySeries, s.Name)
	}

	return &s, nil
}

// LoadFile reads and parses a study file. A study without a name is named
// after the file.
func LoadFile(path string) (*Study, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read study: %w", err)
	}
	s, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return s, nil
}

// Series builds the data series of the study.
func (s *Study) Series() (*series.Series, error) {
	var opts []series.Option
	if s.SizeKey != "" {
		opts = append(opts, series.WithSizeKey(s.SizeKey))
	}

	if s.Sizes.Kind == 0 {
		if s.Data.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: data must be a mapping holding the size column when sizes are omitted",
				errs.ErrIncompatibleInput)
		}
		table, err := columns(&s.Data)
		if err != nil {
			return nil, err
		}

		return series.FromTable(table, s.SizeKey)
	}

	var sizes any
	if err := s.Sizes.Decode(&sizes); err != nil {
		return nil, fmt.Errorf("decode sizes: %w", err)
	}

	if s.Data.Kind == yaml.MappingNode {
		hs, err := series.ToVector(sizes)
		if err != nil {
			return nil, fmt.Errorf("line %d: sizes: %w", s.Sizes.Line, err)
		}
		table, err := columns(&s.Data)
		if err != nil {
			return nil, err
		}

		return series.FromColumns(hs, table, opts...)
	}

	var data any
	if err := s.Data.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}

	return series.Parse(sizes, data, opts...)
}

// columns converts a mapping node to columns in document order.
func columns(node *yaml.Node) (series.Table, error) {
	table := make(series.Table, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		var raw any
		if err := value.Decode(&raw); err != nil {
			return nil, fmt.Errorf("line %d: column %q: %w", value.Line, key.Value, err)
		}
		values, err := series.ToVector(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: column %q: %w", value.Line, key.Value, err)
		}
		table = append(table, series.Column{Name: key.Value, Values: values})
	}

	return table, nil
}

// Options converts the model selection of the study to analysis options.
// Model names are accepted only with the custom preset.
func (s *Study) Options(preset discretization.Preset) ([]discretization.Option, error) {
	var opts []discretization.Option

	if preset != discretization.PresetCustom {
		if s.Model != "" || s.Error != "" || s.Uncertainty != "" {
			return nil, fmt.Errorf("%w: model, error and uncertainty apply only to the custom preset, got %s",
				errs.ErrInvalidOption, preset)
		}
	} else {
		if s.Model != "" {
			kind, err := discretization.ParseModelKind(s.Model)
			if err != nil {
				return nil, err
			}
			f, err := discretization.ModelFactoryOf(kind)
			if err != nil {
				return nil, err
			}
			opts = append(opts, discretization.WithModel(f))
		}
		if s.Error != "" {
			kind, err := discretization.ParseErrorKind(s.Error)
			if err != nil {
				return nil, err
			}
			f, err := discretization.ErrorFactoryOf(kind)
			if err != nil {
				return nil, err
			}
			opts = append(opts, discretization.WithErrorModel(f))
		}
		if s.Uncertainty != "" {
			kind, err := discretization.ParseUncertaintyKind(s.Uncertainty)
			if err != nil {
				return nil, err
			}
			f, err := discretization.UncertaintyFactoryOf(kind)
			if err != nil {
				return nil, err
			}
			opts = append(opts, discretization.WithUncertaintyModel(f))
		}
	}

	if s.OrderLimits != nil {
		opts = append(opts, discretization.WithOrderLimits(s.OrderLimits))
	}
	if s.MaxIterations != 0 {
		opts = append(opts, discretization.WithMaxIterations(s.MaxIterations))
	}
	if u := s.UncertaintyOptions.Options(); len(u) > 0 {
		opts = append(opts, discretization.WithUncertaintyDefaults(u...))
	}

	return opts, nil
}

// Analyze builds the series, resolves the preset and solves the analysis.
// Extra options are applied after the study's own.
func (s *Study) Analyze(extra ...discretization.Option) (*discretization.Analysis, error) {
	data, err := s.Series()
	if err != nil {
		return nil, fmt.Errorf("study %q: %w", s.Name, err)
	}
	preset, err := discretization.ParsePreset(s.Preset)
	if err != nil {
		return nil, fmt.Errorf("study %q: %w", s.Name, err)
	}
	opts, err := s.Options(preset)
	if err != nil {
		return nil, fmt.Errorf("study %q: %w", s.Name, err)
	}

	a, err := discretization.New(preset, data, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("study %q: %w", s.Name, err)
	}

	return a, nil
}
