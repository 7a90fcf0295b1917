package extract

import (
	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/locate"
	"github.com/joseph-ayodele/telkom-contracts/internal/utils"
)

// PhraseRepresentedBy opens each party's signatory block; Telkom's comes first.
const PhraseRepresentedBy = "Diwakili secara sah oleh"

// TelkomContact reads the name (and position, when labelled) after the first
// "Diwakili secara sah oleh". Later occurrences belong to the customer and are ignored.
func (e *Extractor) TelkomContact(doc *document.Document) *entity.ContactPerson {
	seq := doc.Texts()
	at := locate.IndexContaining(seq, 0, PhraseRepresentedBy)
	if at == locate.NotFound {
		return nil
	}
	name, idx, ok := locate.FindNextLabeledValue(seq, at, LabelName)
	if !ok || utils.NonEmpty(name) == nil {
		return nil
	}
	contact := &entity.ContactPerson{Name: utils.NonEmpty(name)}

	// Only accept a position that sits before the customer's signatory block.
	if pos, posIdx, ok := locate.FindNextLabeledValue(seq, idx, LabelPosition); ok {
		nextParty := locate.IndexContaining(seq, at+1, PhraseRepresentedBy)
		if nextParty == locate.NotFound || posIdx < nextParty {
			contact.Position = utils.NonEmpty(pos)
		}
	}
	e.logger.Debug("extract.telkom_contact.ok", "name", *contact.Name)
	return contact
}
