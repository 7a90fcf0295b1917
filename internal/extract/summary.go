package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/locate"
)

const (
	LabelConnectivity    = "Connectivity Telkom"
	LabelNonConnectivity = "Non-Connectivity Telkom"
	LabelBundling        = "Bundling"
)

var (
	bundlingKeywords     = []string{"BUNDLING", "PAKET"}
	connectivityKeywords = []string{
		"ASTINET", "VPN", "METRO", "INTERNET", "INDIBIZ", "WIFI",
		"SIP TRUNK", "IP TRANSIT", "DEDICATED", "LINK", "BANDWIDTH",
	}
	reLeadingInt = regexp.MustCompile(`^\s*(\d{1,4})\b`)
)

// ServiceSummary counts services per category: labelled counts if the summary block
// carries them, otherwise derived from the line items.
func (e *Extractor) ServiceSummary(doc *document.Document, items []entity.ServiceLineItem) entity.ServiceSummary {
	summary, via, ok := firstOf(doc, []Strategy[entity.ServiceSummary]{
		{Name: "labelled", Run: summaryFromLabels},
		{Name: "items", Run: func(*document.Document) (entity.ServiceSummary, bool) {
			return summaryFromItems(items)
		}},
	})
	if !ok {
		return entity.ServiceSummary{}
	}
	e.logger.Debug("extract.summary.ok", "via", via,
		"connectivity", summary.ConnectivityCount,
		"non_connectivity", summary.NonConnectivityCount,
		"bundling", summary.BundlingCount)
	return summary
}

func summaryFromLabels(doc *document.Document) (entity.ServiceSummary, bool) {
	seq := doc.Texts()
	var s entity.ServiceSummary
	found := false
	read := func(label string, dst *int) {
		for _, hit := range locate.FindAllLabeledValues(seq, 0, label) {
			// "Non-Connectivity Telkom" also contains "Connectivity Telkom".
			if label == LabelConnectivity && strings.Contains(seq[hit.Index-1], LabelNonConnectivity) {
				continue
			}
			if m := reLeadingInt.FindStringSubmatch(hit.Value); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil && n >= 0 {
					*dst = n
					found = true
				}
			}
			return
		}
	}
	read(LabelConnectivity, &s.ConnectivityCount)
	read(LabelNonConnectivity, &s.NonConnectivityCount)
	read(LabelBundling, &s.BundlingCount)
	return s, found
}

func summaryFromItems(items []entity.ServiceLineItem) (entity.ServiceSummary, bool) {
	if len(items) == 0 {
		return entity.ServiceSummary{}, false
	}
	var s entity.ServiceSummary
	for _, it := range items {
		name := strings.ToUpper(it.ServiceName)
		switch {
		case containsAny(name, bundlingKeywords):
			s.BundlingCount++
		case containsAny(name, connectivityKeywords):
			s.ConnectivityCount++
		default:
			s.NonConnectivityCount++
		}
	}
	return s, true
}
