package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// months maps Indonesian and English month names and abbreviations (lowercase).
var months = map[string]time.Month{
	"januari": time.January, "jan": time.January, "january": time.January,
	"februari": time.February, "pebruari": time.February, "feb": time.February, "peb": time.February, "february": time.February,
	"maret": time.March, "mar": time.March, "march": time.March,
	"april": time.April, "apr": time.April,
	"mei": time.May, "may": time.May,
	"juni": time.June, "jun": time.June, "june": time.June,
	"juli": time.July, "jul": time.July, "july": time.July,
	"agustus": time.August, "agu": time.August, "agt": time.August, "ags": time.August, "aug": time.August, "august": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"oktober": time.October, "okt": time.October, "oct": time.October, "october": time.October,
	"november": time.November, "nov": time.November, "nop": time.November,
	"desember": time.December, "des": time.December, "dec": time.December, "december": time.December,
}

var (
	reISODate       = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	reNumericDate   = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	reSpacedDate    = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]+)\.?\s+(\d{4})$`)
	reJoinedDate    = regexp.MustCompile(`^(\d{1,2})([A-Za-z]+)(\d{4})$`)
	reHalfJoinedDay = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]+)(\d{4})$`)

	// reDateCandidate finds date-like substrings in running text.
	reDateCandidate = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}[/-]\d{1,2}[/-]\d{4}\b|\b\d{1,2}\s*[A-Za-z]+\.?\s*\d{4}\b`)
)

// Date parses the date formats found in contracts and returns YYYY-MM-DD.
// The second result is false when s is not a valid calendar date.
func Date(s string) (string, bool) {
	s = strings.Trim(strings.TrimSpace(s), ".,;:")
	if s == "" {
		return "", false
	}

	if m := reISODate.FindStringSubmatch(s); m != nil {
		return ymd(m[1], m[2], m[3])
	}
	if m := reNumericDate.FindStringSubmatch(s); m != nil {
		return ymd(m[3], m[2], m[1])
	}
	for _, re := range []*regexp.Regexp{reSpacedDate, reJoinedDate, reHalfJoinedDay} {
		if m := re.FindStringSubmatch(s); m != nil {
			month, ok := months[strings.ToLower(m[2])]
			if !ok {
				return "", false
			}
			return ymd(m[3], strconv.Itoa(int(month)), m[1])
		}
	}
	return "", false
}

// DateCandidates returns every date-like substring of text, in order. Candidates are
// not validated; pass them through Date.
func DateCandidates(text string) []string {
	return reDateCandidate.FindAllString(text, -1)
}

// DateExpr is the pattern fragment used when dates are embedded in a larger expression.
const DateExpr = `\d{4}-\d{2}-\d{2}|\d{1,2}[/-]\d{1,2}[/-]\d{4}|\d{1,2}\s*[A-Za-z]+\.?\s*\d{4}`

func ymd(year, month, day string) (string, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), true
}
