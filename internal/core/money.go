// Package core provides the settings domain model: categories, accounts,
// profiles, and the money values threaded through them.
//
// This file contains money parsing and formatting. Amounts are stored as
// integer cents to avoid floating-point drift; formatting is driven by the
// profile's currency code.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in minor currency units (cents).
type Money struct {
	Cents int64
}

// currencySymbols maps supported ISO 4217 codes to display symbols.
var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"CHF": "CHF",
	"JPY": "¥",
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Both dot and comma separators are
// accepted. A leading minus is allowed: transaction amounts are signed.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,34")  -> 1234, nil
//	ParseDecimalToCents("-5")     -> -500, nil
//	ParseDecimalToCents("12.346") -> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}

	// Take first two fractional digits; half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return cents, nil
}

// Format renders the amount for the given currency code, e.g. "€12,34"
// for EUR or "$12.34" for USD. JPY has no minor unit and is rendered
// without decimals. Unknown codes fall back to "<code> <amount>".
func (m Money) Format(currency string) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}

	symbol, known := currencySymbols[currency]
	if !known {
		symbol = currency + " "
	}

	var body string
	switch currency {
	case "JPY":
		// Minor units are not used; cents hold whole yen.
		body = strconv.FormatInt(cents, 10)
	case "EUR":
		body = strconv.FormatInt(cents/100, 10) + "," + pad2(cents%100)
	default:
		body = strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
	}

	if neg {
		return "-" + symbol + body
	}
	return symbol + body
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
