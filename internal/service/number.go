package service

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// NumberInput accepts a JSON number or a numeric string. It is unset when
// the field is absent, null, an empty string or the number 0, matching how
// the back-office form treats empty inputs.
type NumberInput struct {
	raw string
	set bool
}

// NewNumberInput builds a set NumberInput from s.
func NewNumberInput(s string) NumberInput {
	s = strings.TrimSpace(s)
	return NumberInput{raw: s, set: s != ""}
}

func (n *NumberInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = NumberInput{}

	switch {
	case bytes.Equal(b, []byte("null")):
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NewNumberInput(s)
	default:
		n.raw = string(b)
		n.set = true
		if d, err := decimal.NewFromString(n.raw); err == nil && d.IsZero() {
			n.set = false
		}
	}
	return nil
}

func (n NumberInput) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	return json.Marshal(n.raw)
}

// IsSet reports whether a value was supplied.
func (n NumberInput) IsSet() bool { return n.set }

// Decimal parses the value. ok is false for non-numeric input.
func (n NumberInput) Decimal() (d decimal.Decimal, ok bool) {
	d, err := decimal.NewFromString(n.raw)
	return d, err == nil
}
