package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Scalar holds a number as written in a document. It accepts a number, a quoted
// string or null, so "12.5" and 12.5 decode the same and an absent value stays absent.
type Scalar struct {
	text string
	set  bool
}

// NewScalar creates a set scalar from text
func NewScalar(text string) Scalar {
	return Scalar{text: text, set: true}
}

// IsSet reports whether the document carried a non-null value
func (s Scalar) IsSet() bool {
	return s.set
}

// Text returns the raw value, or "" when unset
func (s Scalar) Text() string {
	return s.text
}

// UnmarshalJSON accepts numbers, strings and null
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = Scalar{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = NewScalar(text)
		return nil
	}
	if len(data) > 0 && (data[0] == '{' || data[0] == '[') {
		return fmt.Errorf("expected a number or string, got %s", data)
	}
	*s = NewScalar(string(data))
	return nil
}

// MarshalJSON writes the raw text back as a string, or null when unset
func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.set {
		return []byte("null"), nil
	}
	return json.Marshal(s.text)
}

// UnmarshalYAML accepts any scalar node
func (s *Scalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number or string", value.Line)
	}
	if value.Tag == "!!null" {
		*s = Scalar{}
		return nil
	}
	*s = NewScalar(value.Value)
	return nil
}

// Decimal parses the scalar, treating an unset or blank value as zero
func (s Scalar) Decimal(field string) (decimal.Decimal, error) {
	text := strings.TrimSpace(s.text)
	if !s.set || text == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %s", field, s.text)
	}
	return value, nil
}

// NullDecimal parses the scalar, treating an unset or blank value as omitted
func (s Scalar) NullDecimal(field string) (decimal.NullDecimal, error) {
	if !s.set || strings.TrimSpace(s.text) == "" {
		return decimal.NullDecimal{}, nil
	}
	value, err := s.Decimal(field)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(value), nil
}
