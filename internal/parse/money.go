package parse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reMoneyNoise     = regexp.MustCompile(`[^\d.,]`)
	reThousandsGroup = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
)

// Money parses a currency amount printed in Indonesian or English convention.
// "Rp 1.234.567,89" -> 1234567.89, "Rp1.000.000" -> 1000000, "1,250,000" -> 1250000.
// Anything unparseable yields 0.
func Money(s string) float64 {
	s = reMoneyNoise.ReplaceAllString(s, "")
	s = strings.Trim(s, ".,")
	if s == "" {
		return 0
	}

	commas := strings.Count(s, ",")
	periods := strings.Count(s, ".")
	switch {
	case commas == 1 && periods >= 1:
		// 1.234.567,89
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
		// 1.000.000 or 1.500: periods are grouping, not a decimal point
		if reThousandsGroup.MatchString(s) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
