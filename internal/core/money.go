// Package core holds the ledger domain: money handling, the entry model and
// the balance-chain computations.
//
// This file contains money representation and the lenient numeric coercion
// shared by the HTTP form layer and every storage adapter.
package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in integer cents. Cent arithmetic is exact, so the
// balance chain carries no rounding error and negative balances propagate
// unmodified.
type Money struct {
	Cents int64
}

func (m Money) Add(n Money) Money { return Money{Cents: m.Cents + n.Cents} }
func (m Money) Sub(n Money) Money { return Money{Cents: m.Cents - n.Cents} }

func (m Money) IsZero() bool     { return m.Cents == 0 }
func (m Money) IsNegative() bool { return m.Cents < 0 }

// String renders the amount as a plain decimal, e.g. "12.34" or "-0.05".
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON renders the amount as a decimal string, e.g. "12.34".
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a JSON string or number and applies the same lenient
// coercion as CoerceMoney: malformed values become zero, never an error.
func (m *Money) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		*m = Money{}
		return nil
	}
	*m = CoerceMoney(v)
	return nil
}

// CoerceMoney converts an arbitrary value to Money, treating anything
// missing or non-numeric as zero. This is the deliberate leniency policy of
// the ledger: a malformed amount never fails an operation, it just counts
// for nothing.
//
// Strings accept both dot and comma decimal separators and an optional sign;
// the third decimal place rounds half-up.
func CoerceMoney(v any) Money {
	switch val := v.(type) {
	case nil:
		return Money{}
	case Money:
		return val
	case string:
		cents, ok := parseDecimalCents(val)
		if !ok {
			return Money{}
		}
		return Money{Cents: cents}
	case json.Number:
		cents, ok := parseDecimalCents(val.String())
		if !ok {
			return Money{}
		}
		return Money{Cents: cents}
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return Money{}
		}
		return Money{Cents: roundHalfUp(val * 100)}
	case float32:
		return CoerceMoney(float64(val))
	case int:
		return Money{Cents: int64(val) * 100}
	case int64:
		return Money{Cents: val * 100}
	default:
		return Money{}
	}
}

// parseDecimalCents converts a decimal string to cents. Both separators are
// accepted and the third decimal place rounds half-up. The boolean is false
// for anything that is not a plain signed decimal number.
func parseDecimalCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")

	negative := false
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, false
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" && len(parts) == 2 {
		return 0, false
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, false
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, false
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, false
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, false
	}

	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if negative {
		cents = -cents
	}
	return cents, true
}

func roundHalfUp(v float64) int64 {
	if v < 0 {
		return -int64(-v + 0.5)
	}
	return int64(v + 0.5)
}
