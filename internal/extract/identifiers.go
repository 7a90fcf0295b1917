package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/locate"
)

const (
	LabelContractNumber = "Nomor Kontrak"
	LabelTaxID          = "NPWP"
)

var (
	reContractNumber = regexp.MustCompile(`K\.TEL\.[^/]+/[^/]+/[^/]+/\d{4}`)
	reTaxID          = regexp.MustCompile(`\d{2}\.\d{3}\.\d{3}\.\d-\d{3}\.\d{3}`)
)

// ContractNumber finds the K.TEL contract number: after its label first, then anywhere.
func (e *Extractor) ContractNumber(doc *document.Document) (string, bool) {
	v, via, ok := firstOf(doc, []Strategy[string]{
		{Name: "label", Run: contractNumberByLabel},
		{Name: "any_element", Run: contractNumberAnyElement},
		{Name: "joined_text", Run: contractNumberJoined},
	})
	if ok {
		e.logger.Debug("extract.contract_number.ok", "via", via, "value", v)
	}
	return v, ok
}

func contractNumberByLabel(doc *document.Document) (string, bool) {
	value, _, ok := locate.FindNextLabeledValue(doc.Texts(), 0, LabelContractNumber)
	if !ok {
		return "", false
	}
	m := reContractNumber.FindString(value)
	return m, m != ""
}

func contractNumberAnyElement(doc *document.Document) (string, bool) {
	for _, t := range doc.Texts() {
		if m := reContractNumber.FindString(t); m != "" {
			return m, true
		}
	}
	return "", false
}

func contractNumberJoined(doc *document.Document) (string, bool) {
	m := reContractNumber.FindString(doc.Joined())
	return m, m != ""
}

// TaxID reads the NPWP after its label from start. When the value does not match the
// NPWP shape the trimmed raw value is returned with exact=false.
func TaxID(seq []string, start int) (value string, exact bool, ok bool) {
	raw, _, found := locate.FindNextLabeledValue(seq, start, LabelTaxID)
	if !found {
		return "", false, false
	}
	if m := reTaxID.FindString(raw); m != "" {
		return m, true, true
	}
	raw = strings.TrimSpace(raw)
	return raw, false, raw != ""
}
