package domain

import (
	"fmt"
	"sort"
)

// EncodingTable maps a categorical attribute to its label→code assignment.
// It is loaded once at startup and never mutated afterwards.
type EncodingTable map[string]map[string]int

// DefaultEncodingTable returns the encodings the bundled classifier was
// trained with. Changing a code without retraining invalidates predictions.
func DefaultEncodingTable() EncodingTable {
	return EncodingTable{
		AttrEmploymentStatus: {"Employed": 0, "Self-Employed": 1, "Unemployed": 2},
		AttrEducationLevel:   {"Associate": 0, "Bachelor": 1, "Doctorate": 2, "High School": 3, "Master": 4},
		AttrMaritalStatus:    {"Divorced": 0, "Married": 1, "Single": 2, "Widowed": 3},
	}
}

// Encode returns the integer code of label for the categorical attribute.
func (t EncodingTable) Encode(attribute, label string) (int, error) {
	if !IsCategorical(attribute) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAttribute, attribute)
	}
	codes, ok := t[attribute]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAttribute, attribute)
	}
	code, ok := codes[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a valid %s", ErrUnknownCategory, label, attribute)
	}
	return code, nil
}

// Labels returns the labels of attribute ordered by code.
func (t EncodingTable) Labels(attribute string) []string {
	codes := t[attribute]
	labels := make([]string, 0, len(codes))
	for label := range codes {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return codes[labels[i]] < codes[labels[j]]
	})
	return labels
}

// Validate checks that every categorical attribute has an entry and that its
// codes are unique and contiguous from zero.
func (t EncodingTable) Validate() error {
	for attribute := range t {
		if !IsCategorical(attribute) {
			return fmt.Errorf("encoding for %q: %w", attribute, ErrUnknownAttribute)
		}
	}
	for _, attribute := range CategoricalAttributes {
		codes, ok := t[attribute]
		if !ok || len(codes) == 0 {
			return fmt.Errorf("encoding for %s is missing", attribute)
		}
		seen := make([]bool, len(codes))
		for label, code := range codes {
			if code < 0 || code >= len(codes) {
				return fmt.Errorf("encoding for %s: code %d of %q is outside 0..%d", attribute, code, label, len(codes)-1)
			}
			if seen[code] {
				return fmt.Errorf("encoding for %s: code %d is assigned twice", attribute, code)
			}
			seen[code] = true
		}
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t EncodingTable) Clone() EncodingTable {
	out := make(EncodingTable, len(t))
	for attribute, codes := range t {
		c := make(map[string]int, len(codes))
		for label, code := range codes {
			c[label] = code
		}
		out[attribute] = c
	}
	return out
}
