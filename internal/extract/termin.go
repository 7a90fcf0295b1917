package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/parse"
)

var terminOrdinals = map[string]int{
	"pertama":    1,
	"kedua":      2,
	"ketiga":     3,
	"keempat":    4,
	"kelima":     5,
	"keenam":     6,
	"ketujuh":    7,
	"kedelapan":  8,
	"kesembilan": 9,
	"kesepuluh":  10,
}

const terminNumber = `(\d{1,2}|pertama|kedua|ketiga|keempat|kelima|keenam|ketujuh|kedelapan|kesembilan|kesepuluh)`

var (
	reTerminMention  = regexp.MustCompile(`(?i)\btermin\s*[-–]?\s*` + terminNumber + `\b`)
	reTerminSchedule = regexp.MustCompile(`(?i)\btermin\s*[-–]?\s*` + terminNumber +
		`\s*,?\s*(?:yaitu\s+)?(?:periode\s+)?([^:]{0,80}?)\s*:\s*(Rp\.?\s*\d[\d.,]*)`)
)

// ExtractTermins returns every "Termin-N ... periode X: RpY" entry, sorted by number.
func ExtractTermins(text string) []entity.TerminPayment {
	var out []entity.TerminPayment
	for _, m := range reTerminSchedule.FindAllStringSubmatch(text, -1) {
		n, ok := terminNumberValue(m[1])
		if !ok {
			continue
		}
		out = append(out, entity.TerminPayment{
			Number:     n,
			Period:     strings.TrimSpace(m[2]),
			Amount:     parse.Money(m[3]),
			RawExcerpt: strings.TrimSpace(m[0]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func terminNumberValue(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	n, ok := terminOrdinals[strings.ToLower(s)]
	return n, ok
}
