package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNumberToWords(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "Zero"},
		{7, "Seven"},
		{19, "Nineteen"},
		{40, "Forty"},
		{73, "Seventy Three"},
		{100, "One Hundred"},
		{256, "Two Hundred Fifty Six"},
		{1000, "One Thousand"},
		{73800, "Seventy Three Thousand Eight Hundred"},
		{100000, "One Lakh"},
		{250000, "Two Lakh Fifty Thousand"},
		{10000000, "One Crore"},
		{12345678, "One Crore Twenty Three Lakh Forty Five Thousand Six Hundred Seventy Eight"},
	}
	for _, c := range cases {
		if got := NumberToWords(c.in); got != c.want {
			t.Fatalf("NumberToWords(%d): expected %q, got %q", c.in, got, c.want)
		}
	}
}

func TestAmountInWords(t *testing.T) {
	if got := AmountInWords(decimal.NewFromInt(73800)); got != "Seventy Three Thousand Eight Hundred Rupees Only" {
		t.Fatalf("unexpected words: %q", got)
	}
	if got := AmountInWords(decimal.Zero); got != "Zero Rupees Only" {
		t.Fatalf("unexpected words for zero: %q", got)
	}
	// Paise never appear in the spelled amount.
	if got := AmountInWords(decimal.NewFromFloat(101.99)); got != "One Hundred One Rupees Only" {
		t.Fatalf("unexpected words with paise: %q", got)
	}
}
