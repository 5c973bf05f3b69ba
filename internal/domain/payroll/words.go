package payroll

import (
	"strings"

	"github.com/shopspring/decimal"
)

var onesWords = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight",
	"Nine", "Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
	"Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy",
	"Eighty", "Ninety",
}

// NumberToWords spells a non-negative integer using the Indian
// grouping: thousand, lakh (1e5), crore (1e7).
func NumberToWords(n int64) string {
	if n == 0 {
		return "Zero"
	}
	var parts []string
	appendPart := func(value int64, unit string) {
		if value > 0 {
			parts = append(parts, NumberToWords(value)+" "+unit)
		}
	}
	appendPart(n/1e7, "Crore")
	n %= 1e7
	appendPart(n/1e5, "Lakh")
	n %= 1e5
	appendPart(n/1000, "Thousand")
	n %= 1000
	if n >= 100 {
		parts = append(parts, onesWords[n/100]+" Hundred")
		n %= 100
	}
	if n >= 20 {
		word := tensWords[n/10]
		if n%10 > 0 {
			word += " " + onesWords[n%10]
		}
		parts = append(parts, word)
	} else if n > 0 {
		parts = append(parts, onesWords[n])
	}
	return strings.Join(parts, " ")
}

// AmountInWords spells the whole-rupee part of an amount, ending in
// "Rupees Only". Paise are dropped, matching the printed payslip.
func AmountInWords(amount decimal.Decimal) string {
	rupees := amount.IntPart()
	if rupees < 0 {
		rupees = 0
	}
	return NumberToWords(rupees) + " Rupees Only"
}
