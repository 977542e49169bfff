package series

import (
	"fmt"

	"github.com/arloliu/gridverify/errs"
)

// Parse builds a Series from loosely typed input, typically values decoded
// from a YAML or JSON study file.
//
// Accepted shapes:
//   - sizes is a sequence (numeric slice, []any, or a squeezable 2-D slice) and
//     responses is a sequence (single response), a mapping of name to sequence,
//     or a Column.
//   - sizes is a single-key mapping whose key names the size column; responses
//     as above.
//   - sizes is a multi-key mapping or a Table holding the size column;
//     responses must then be nil (size key "hs") or a string naming the size key.
//
// Any other pairing fails with errs.ErrIncompatibleInput. Multi-dimensional
// sizes fail with errs.ErrInvalidShape.
func Parse(sizes, responses any, opts ...Option) (*Series, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	switch v := sizes.(type) {
	case Table:
		key, err := sizeKeyArg(responses, "table")
		if err != nil {
			return nil, err
		}

		return FromTable(v, key)

	case map[string][]float64:
		m := make(map[string]any, len(v))
		for k, col := range v {
			m[k] = col
		}

		return parseMapping(m, responses, cfg)

	case map[string]any:
		return parseMapping(v, responses, cfg)

	case map[any]any:
		m, err := stringKeys(v)
		if err != nil {
			return nil, err
		}

		return parseMapping(m, responses, cfg)
	}

	hs, err := ToVector(sizes)
	if err != nil {
		return nil, err
	}
	cols, err := responseColumns(responses, cfg.ResponseName)
	if err != nil {
		return nil, err
	}

	return build(cfg.SizeKey, hs, cols)
}

// parseMapping handles the mapping forms of Parse.
func parseMapping(m map[string]any, responses any, cfg Config) (*Series, error) {
	if len(m) == 1 {
		for key, raw := range m {
			hs, err := ToVector(raw)
			if err != nil {
				return nil, fmt.Errorf("size column %q: %w", key, err)
			}
			cols, err := responseColumns(responses, cfg.ResponseName)
			if err != nil {
				return nil, err
			}

			return build(key, hs, cols)
		}
	}

	key, err := sizeKeyArg(responses, "mapping")
	if err != nil {
		return nil, err
	}
	raw, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q not found in data for discretization levels", errs.ErrMissingSizeKey, key)
	}
	hs, err := ToVector(raw)
	if err != nil {
		return nil, fmt.Errorf("size column %q: %w", key, err)
	}

	records := make(map[string][]float64, len(m)-1)
	for name, col := range m {
		if name == key {
			continue
		}
		values, err := ToVector(col)
		if err != nil {
			return nil, fmt.Errorf("response %q: %w", name, err)
		}
		records[name] = values
	}

	return build(key, hs, columnsFromMap(records, ""))
}

// sizeKeyArg interprets the second argument when the first one already holds all columns.
func sizeKeyArg(arg any, what string) (string, error) {
	switch v := arg.(type) {
	case nil:
		return DefaultSizeKey, nil
	case string:
		if v == "" {
			return DefaultSizeKey, nil
		}

		return v, nil
	default:
		return "", fmt.Errorf("%w: second argument must be a size key string when the first is a %s, got %T",
			errs.ErrIncompatibleInput, what, arg)
	}
}

// responseColumns interprets the response argument paired with sequence-like sizes.
func responseColumns(arg any, defaultName string) ([]Column, error) {
	switch v := arg.(type) {
	case nil:
		return nil, fmt.Errorf("%w: response data is required when sizes are a sequence", errs.ErrIncompatibleInput)
	case Column:
		if v.Name == "" {
			v.Name = defaultName
		}

		return []Column{v}, nil
	case []Column:
		return v, nil
	case map[string][]float64:
		return columnsFromMap(v, ""), nil
	case map[string]any:
		return anyColumns(v)
	case map[any]any:
		m, err := stringKeys(v)
		if err != nil {
			return nil, err
		}

		return anyColumns(m)
	case string:
		return nil, fmt.Errorf("%w: a size key string requires mapping or table data", errs.ErrIncompatibleInput)
	}

	values, err := ToVector(arg)
	if err != nil {
		return nil, fmt.Errorf("%w: response data must be a sequence, mapping or column, got %T",
			errs.ErrIncompatibleInput, arg)
	}

	return []Column{{Name: defaultName, Values: values}}, nil
}

func anyColumns(m map[string]any) ([]Column, error) {
	records := make(map[string][]float64, len(m))
	for name, raw := range m {
		values, err := ToVector(raw)
		if err != nil {
			return nil, fmt.Errorf("response %q: %w", name, err)
		}
		records[name] = values
	}

	return columnsFromMap(records, ""), nil
}

func stringKeys(m map[any]any) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		name, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("%w: mapping key %v is %T, want string", errs.ErrIncompatibleInput, k, k)
		}
		out[name] = v
	}

	return out, nil
}

// ToVector converts a loosely typed sequence, such as a decoded YAML list, to
// []float64. Two-dimensional input is accepted only when one dimension has
// length one.
func ToVector(v any) ([]float64, error) {
	switch x := v.(type) {
	case []float64:
		return x, nil
	case []float32:
		return convert(x), nil
	case []int:
		return convert(x), nil
	case []int64:
		return convert(x), nil
	case []int32:
		return convert(x), nil
	case [][]float64:
		return squeeze(x)
	case []any:
		return anyVector(x)
	default:
		return nil, fmt.Errorf("%w: unsupported sequence type %T", errs.ErrIncompatibleInput, v)
	}
}

func convert[T float32 | int | int64 | int32](in []T) []float64 {
	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = float64(x)
	}

	return out
}

func squeeze(rows [][]float64) ([]float64, error) {
	if len(rows) == 1 {
		return rows[0], nil
	}

	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != 1 {
			return nil, fmt.Errorf("%w: got %dx%d", errs.ErrInvalidShape, len(rows), len(row))
		}
		out[i] = row[0]
	}

	return out, nil
}

func anyVector(items []any) ([]float64, error) {
	nested := false
	for _, item := range items {
		if _, ok := item.([]any); ok {
			nested = true
			break
		}
	}

	if nested {
		rows := make([][]float64, len(items))
		for i, item := range items {
			inner, ok := item.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: mixed scalar and nested sequence elements", errs.ErrInvalidShape)
			}
			row, err := anyVector(inner)
			if err != nil {
				return nil, err
			}
			rows[i] = row
		}

		return squeeze(rows)
	}

	out := make([]float64, len(items))
	for i, item := range items {
		f, err := toFloat(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = f
	}

	return out, nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("%w: %v (%T) is not numeric", errs.ErrIncompatibleInput, v, v)
	}
}
