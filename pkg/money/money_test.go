package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input string
		want  int64
	}{
		{"1.250.000", 1_250_000},
		{"1,250,000", 1_250_000},
		{"1 250 000", 1_250_000},
		{"500", 500},
		{"0", 0},
		{"-75.000", -75_000},
		{"  12.000.000  ", 12_000_000},
	}

	for _, tc := range cases {
		got, err := Parse(tc.input)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", tc.input, err)
			continue
		}
		if !got.Equal(decimal.NewFromInt(tc.want)) {
			t.Errorf("Parse(%q): expected %d, got %s", tc.input, tc.want, got)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "12x000", "..."} {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q): expected error", input)
		}
	}
}

func TestParseRejectsMalformedGroups(t *testing.T) {
	// Separators only mark thousands groups, so fractional-looking or
	// unevenly grouped inputs must not be silently read as larger amounts.
	for _, input := range []string{"1.5", "12.34", "1.2500.00", "1234.567", "1.000.00", "1.,000"} {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q): expected error", input)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{1_250_000, "1.250.000"},
		{500, "500"},
		{0, "0"},
		{1_000, "1.000"},
		{-75_000, "-75.000"},
		{12_000_000, "12.000.000"},
	}

	for _, tc := range cases {
		if got := Format(decimal.NewFromInt(tc.amount)); got != tc.want {
			t.Errorf("Format(%d): expected %q, got %q", tc.amount, tc.want, got)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, amount := range []int64{0, 1, 999, 1_000, 123_456_789, -42_000} {
		d := decimal.NewFromInt(amount)
		parsed, err := Parse(Format(d))
		if err != nil {
			t.Fatalf("Round trip of %d failed: %v", amount, err)
		}
		if !parsed.Equal(d) {
			t.Errorf("Round trip of %d: got %s", amount, parsed)
		}
	}
}
