package extract

import (
	"regexp"

	"github.com/joseph-ayodele/telkom-contracts/constants"
	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/parse"
)

var reValidityPhrase = regexp.MustCompile(`(?i)(?:berlaku\s*(?:sejak|mulai)|valid\s+from)` +
	`(?:\s*(?:tanggal|tgl\.?))?\s*(` + parse.DateExpr + `)\s*` +
	`(?:sampai\s*dengan|s\s*/\s*d\.?|s\.d\.?|hingga|until|through)` +
	`(?:\s*(?:tanggal|tgl\.?))?\s*(` + parse.DateExpr + `)`)

// DateRange reads the contract validity period from the "berlaku sejak ... sampai dengan ..."
// phrase. With allowLoose, a missing phrase falls back to the first two dates anywhere in
// the document, reported with low confidence.
func (e *Extractor) DateRange(doc *document.Document, allowLoose bool) entity.DateRange {
	text := doc.Joined()

	for _, m := range reValidityPhrase.FindAllStringSubmatch(text, -1) {
		start, ok1 := parse.Date(m[1])
		end, ok2 := parse.Date(m[2])
		if ok1 && ok2 {
			e.logger.Debug("extract.daterange.phrase", "start", start, "end", end)
			return entity.DateRange{Start: &start, End: &end, Confidence: constants.ConfidenceHigh}
		}
	}

	if !allowLoose {
		return entity.DateRange{}
	}

	var found []string
	for _, c := range parse.DateCandidates(text) {
		if d, ok := parse.Date(c); ok {
			found = append(found, d)
			if len(found) == 2 {
				break
			}
		}
	}
	if len(found) == 0 {
		return entity.DateRange{}
	}
	dr := entity.DateRange{Start: &found[0], Confidence: constants.ConfidenceLow}
	if len(found) > 1 {
		dr.End = &found[1]
	}
	e.logger.Info("extract.daterange.loose", "start", found[0], "dates", len(found))
	return dr
}
