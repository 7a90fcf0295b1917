package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
)

const MarkerTelkom = "TELKOM"

var (
	reContactAnchor = regexp.MustCompile(`(?i)7\s*\.\s*(?:KONTAK|CONTACT)\s*PERSON`)
	reBoilerplate   = regexp.MustCompile(`(?i)wajib\s*diisi|required\s+to\s+be\s+filled`)
	rePhone         = regexp.MustCompile(`^\+?[\d\s\-().]{6,}$`)
	reEmail         = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)+$`)
	reDigit         = regexp.MustCompile(`\d`)
)

type contactField int

const (
	fieldNone contactField = iota
	fieldName
	fieldPosition
	fieldPhone
	fieldEmail
)

var contactLabels = map[string]contactField{
	"nama":      fieldName,
	"name":      fieldName,
	"jabatan":   fieldPosition,
	"position":  fieldPosition,
	"title":     fieldPosition,
	"telepon":   fieldPhone,
	"telp":      fieldPhone,
	"no. telp":  fieldPhone,
	"phone":     fieldPhone,
	"hp":        fieldPhone,
	"no. hp":    fieldPhone,
	"no hp":     fieldPhone,
	"handphone": fieldPhone,
	"email":     fieldEmail,
	"e-mail":    fieldEmail,
}

// Contacts reads the Telkom and customer contact blocks under "7. KONTAK PERSON".
// Either result may be nil.
func (e *Extractor) Contacts(doc *document.Document) (telkom, customer *entity.ContactPerson) {
	seq := doc.Texts()
	anchor := findContactAnchor(seq)
	if anchor < 0 {
		e.logger.Debug("extract.contacts.no_anchor")
		return nil, nil
	}
	end := anchor + 1 + e.opts.ContactWindow
	if end > len(seq) {
		end = len(seq)
	}
	window := seq[anchor+1 : end]

	rest := 0
	for i, tok := range window {
		if strings.Contains(tok, MarkerTelkom) {
			var t *entity.ContactPerson
			t, rest = readContactBlock(window, i+1)
			if !t.IsEmpty() {
				telkom = t
			}
			break
		}
	}

	if c, _ := readContactBlock(window, rest); !c.IsEmpty() {
		customer = c
	}
	e.logger.Debug("extract.contacts.ok",
		"telkom_fields", telkom.FilledCount(),
		"customer_fields", customer.FilledCount())
	return telkom, customer
}

func findContactAnchor(seq []string) int {
	for i, tok := range seq {
		if reContactAnchor.MatchString(tok) {
			return i
		}
		// "7." and "KONTAK PERSON" split over two tokens
		if i+1 < len(seq) && reContactAnchor.MatchString(tok+" "+seq[i+1]) {
			return i + 1
		}
	}
	return -1
}

// readContactBlock consumes label/value pairs from start. The block ends at a second
// name label once two fields are filled, or right after the "wajib diisi" boilerplate.
// It returns the contact and the index where the next block begins.
func readContactBlock(seq []string, start int) (*entity.ContactPerson, int) {
	c := &entity.ContactPerson{}
	i := start
	for i < len(seq) {
		tok := seq[i]
		if reBoilerplate.MatchString(tok) {
			return c, i + 1
		}
		kind, inline := parseContactLabel(tok)
		if kind == fieldNone {
			i++
			continue
		}
		if kind == fieldName && c.Name != nil && c.FilledCount() >= 2 {
			return c, i
		}
		if inline != "" && acceptContactValue(kind, inline) {
			assignContact(c, kind, inline)
			i++
			continue
		}
		if i+1 < len(seq) && acceptContactValue(kind, seq[i+1]) {
			assignContact(c, kind, seq[i+1])
			i += 2
			continue
		}
		// one token of lookahead past a stray separator or OCR fragment
		if i+2 < len(seq) && isFiller(seq[i+1]) && acceptContactValue(kind, seq[i+2]) {
			assignContact(c, kind, seq[i+2])
			i += 3
			continue
		}
		i++
	}
	return c, i
}

// parseContactLabel recognises "Nama", "Nama/Name", "Nama :" and inline "Nama: Budi".
func parseContactLabel(tok string) (contactField, string) {
	label, inline := tok, ""
	if idx := strings.Index(tok, ":"); idx >= 0 {
		label, inline = tok[:idx], strings.TrimSpace(tok[idx+1:])
	}
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return fieldNone, ""
	}
	for _, part := range strings.Split(label, "/") {
		if k, ok := contactLabels[strings.TrimSpace(part)]; ok {
			return k, inline
		}
	}
	return fieldNone, ""
}

func isFiller(tok string) bool {
	if k, _ := parseContactLabel(tok); k != fieldNone {
		return false
	}
	return !reBoilerplate.MatchString(tok)
}

func acceptContactValue(kind contactField, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" || strings.Trim(v, ":-.") == "" || reBoilerplate.MatchString(v) {
		return false
	}
	if k, _ := parseContactLabel(v); k != fieldNone {
		return false
	}
	switch kind {
	case fieldPhone:
		return rePhone.MatchString(v) && len(reDigit.FindAllString(v, -1)) >= 6
	case fieldEmail:
		return reEmail.MatchString(v)
	default:
		return true
	}
}

func assignContact(c *entity.ContactPerson, kind contactField, v string) {
	v = strings.TrimSpace(v)
	var dst **string
	switch kind {
	case fieldName:
		dst = &c.Name
	case fieldPosition:
		dst = &c.Position
	case fieldPhone:
		dst = &c.Phone
	case fieldEmail:
		dst = &c.Email
	default:
		return
	}
	if *dst == nil {
		*dst = &v
	}
}
