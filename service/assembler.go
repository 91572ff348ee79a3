package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"loan-predictor/domain"
)

// Assembler turns raw applicant attributes into the classifier's feature
// vector. It only checks presence, type and category membership; value
// ranges are the front-ends' business.
type Assembler struct {
	order     []string
	encodings domain.EncodingTable
}

// NewAssembler builds an Assembler for the given model schema.
func NewAssembler(schema domain.Schema) *Assembler {
	return &Assembler{
		order:     schema.FeatureOrder,
		encodings: schema.Encodings,
	}
}

// Assemble validates raw and returns its feature vector. Blank text counts
// as missing. On failure it returns a *domain.ValidationError for the first
// offending field in feature order and no vector.
func (a *Assembler) Assemble(raw domain.RawAttributes) (domain.FeatureVector, error) {
	vector := make(domain.FeatureVector, len(a.order))

	for i, field := range a.order {
		value, ok := raw[field]
		if !ok || value == nil || isBlank(value) {
			return nil, &domain.ValidationError{
				Field:  field,
				Reason: domain.ReasonMissing,
				Err:    domain.ErrMissingAttribute,
			}
		}

		if domain.IsCategorical(field) {
			code, err := a.encode(field, value)
			if err != nil {
				return nil, err
			}
			vector[i] = float32(code)
			continue
		}

		number, err := toFloat(value)
		if err != nil {
			return nil, &domain.ValidationError{
				Field:  field,
				Reason: domain.ReasonUnparsable,
				Err:    err,
			}
		}
		vector[i] = float32(number)
	}

	return vector, nil
}

// isBlank reports an empty or whitespace-only text value, which is what a
// browser submits for an input left empty.
func isBlank(value any) bool {
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}

func (a *Assembler) encode(field string, value any) (int, error) {
	label, ok := value.(string)
	if !ok {
		return 0, &domain.ValidationError{
			Field:  field,
			Reason: domain.ReasonUnknownCategory,
			Err:    fmt.Errorf("%w: label must be text, got %T", domain.ErrUnknownCategory, value),
		}
	}
	code, err := a.encodings.Encode(field, label)
	if err != nil {
		return 0, &domain.ValidationError{
			Field:  field,
			Reason: domain.ReasonUnknownCategory,
			Err:    err,
		}
	}
	return code, nil
}

func toFloat(value any) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", domain.ErrUnparsable, v)
		}
		f = parsed
	case interface{ Float64() (float64, error) }:
		// json.Number
		parsed, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrUnparsable, err)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", domain.ErrUnparsable, value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v is not finite", domain.ErrUnparsable, f)
	}
	if math.Abs(f) > math.MaxFloat32 {
		return 0, fmt.Errorf("%w: %v overflows float32", domain.ErrUnparsable, f)
	}
	return f, nil
}
