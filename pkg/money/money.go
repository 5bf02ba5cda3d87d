// Package money round-trips grouping-separated amount strings and whole
// currency units: "1.250.000" <-> 1250000.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// GroupSeparator is the thousands separator used for display output.
const GroupSeparator = "."

// Parse reads a grouped amount string into a decimal of whole currency units.
// Dots, commas and spaces are accepted as grouping separators; anything else
// non-numeric is rejected. Separators must split the digits into a leading
// group of one to three digits followed by groups of exactly three, so a
// fractional-looking input like "1.5" errors instead of being read as 15.
// An optional leading minus sign is kept.
func Parse(input string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(trimmed, "-") {
		negative = true
		trimmed = trimmed[1:]
	}

	var digits strings.Builder
	group := 0
	grouped := false
	for _, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
			group++
		case r == '.' || r == ',' || r == ' ':
			if group == 0 || group > 3 || (grouped && group != 3) {
				return decimal.Zero, fmt.Errorf("misplaced separator in amount %q", input)
			}
			grouped = true
			group = 0
		default:
			return decimal.Zero, fmt.Errorf("invalid character %q in amount %q", r, input)
		}
	}
	if digits.Len() == 0 {
		return decimal.Zero, fmt.Errorf("no digits in amount %q", input)
	}
	if grouped && group != 3 {
		return decimal.Zero, fmt.Errorf("malformed digit group in amount %q", input)
	}

	d, err := decimal.NewFromString(digits.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount %q: %w", input, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// Format renders a whole-unit amount with grouping separators every three
// digits: 1250000 -> "1.250.000". Fractional parts are rounded away first.
func Format(amount decimal.Decimal) string {
	s := amount.Round(0).String()
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	var out strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		out.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if out.Len() > 0 {
			out.WriteString(GroupSeparator)
		}
		out.WriteString(s[i : i+3])
	}

	if negative {
		return "-" + out.String()
	}
	return out.String()
}
