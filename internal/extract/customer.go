package extract

import (
	"strings"

	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/locate"
	"github.com/joseph-ayodele/telkom-contracts/internal/utils"
)

const (
	MarkerCustomerSection = "2.PELANGGAN"
	LabelName             = "Nama"
	LabelAddress          = "Alamat"
	LabelPosition         = "Jabatan"
)

// Upper-case substrings that mark an element as an organisation name.
var customerNameIndicators = []string{"SMK", "NEGERI", "ABIPRAYA", "PT ", "CV ", "KOPERASI"}

// Upper-case substrings that mark an element as a street address.
var addressIndicators = []string{"JL.", "JALAN", "NO.", "KOTA", "ACEH", "BANDA"}

// Customer recovers the customer identity. The keyword scan is only used when the
// customer section marker is missing altogether.
func (e *Extractor) Customer(doc *document.Document) entity.CustomerInfo {
	info, via, ok := firstOf(doc, []Strategy[entity.CustomerInfo]{
		{Name: "section", Run: customerFromSection},
		{Name: "keywords", Run: e.customerFromKeywords},
	})
	if !ok {
		e.logger.Debug("extract.customer.none")
		return entity.CustomerInfo{}
	}
	e.logger.Debug("extract.customer.ok", "via", via, "name", utils.StrOrEmpty(info.Name))
	return info
}

// customerFromSection succeeds whenever the section anchor exists, even if no field
// could be read after it.
func customerFromSection(doc *document.Document) (entity.CustomerInfo, bool) {
	seq := doc.Texts()
	anchor := locate.FindSectionMarker(seq, MarkerCustomerSection)
	if anchor == locate.NotFound {
		return entity.CustomerInfo{}, false
	}

	var info entity.CustomerInfo
	names := locate.FindAllLabeledValues(seq, anchor, LabelName)
	if len(names) > 0 {
		info.Name = utils.NonEmpty(names[0].Value)
	}
	if addr, _, ok := locate.FindNextLabeledValue(seq, anchor, LabelAddress); ok {
		info.Address = utils.NonEmpty(addr)
	}
	if tax, _, ok := TaxID(seq, anchor); ok {
		info.TaxID = utils.NonEmpty(tax)
	}

	// A second name after the anchor is the customer's authorised representative.
	if len(names) > 1 {
		rep := &entity.Representative{Name: utils.NonEmpty(names[1].Value)}
		if pos, _, ok := locate.FindNextLabeledValue(seq, names[1].Index, LabelPosition); ok {
			rep.Position = utils.NonEmpty(pos)
		}
		if rep.Name != nil || rep.Position != nil {
			info.Representative = rep
			info.ContactPerson = &entity.ContactPerson{
				Name:     utils.ClonePtr(rep.Name),
				Position: utils.ClonePtr(rep.Position),
			}
		}
	}
	return info, true
}

func (e *Extractor) customerFromKeywords(doc *document.Document) (entity.CustomerInfo, bool) {
	seq := doc.Texts()
	for i, content := range seq {
		if !containsAny(strings.ToUpper(content), customerNameIndicators) {
			continue
		}
		info := entity.CustomerInfo{Name: utils.NonEmpty(content)}
		if info.Name == nil {
			continue
		}
		end := i + 1 + e.opts.CustomerLookahead
		if end > len(seq) {
			end = len(seq)
		}
		for j := i + 1; j < end; j++ {
			next := seq[j]
			if info.TaxID == nil {
				if m := reTaxID.FindString(next); m != "" {
					info.TaxID = &m
				}
			}
			if info.Address == nil && containsAny(strings.ToUpper(next), addressIndicators) {
				info.Address = utils.NonEmpty(next)
			}
		}
		return info, true
	}
	return entity.CustomerInfo{}, false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
