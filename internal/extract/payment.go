package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/telkom-contracts/constants"
	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/locate"
	"github.com/joseph-ayodele/telkom-contracts/internal/utils"
)

// PaymentHeaders are tried in order; the first one present opens the payment section.
var PaymentHeaders = []string{
	"TATA CARA PEMBAYARAN",
	"PEMBAYARAN",
	"KETENTUAN PEMBAYARAN",
	"PAYMENT",
}

var recurringKeywords = []string{
	"bulanan",
	"per bulan",
	"setiap bulan",
	"tiap bulan",
	"monthly",
	"per month",
	"recurring",
	"berlangganan",
}

const (
	monthlyColumnHeader = "MONTHLY"
	excerptRunes        = 300
)

var reOneTimeCharge = regexp.MustCompile(`(?i)one\s*-?\s*time\s*charge`)

// PaymentText is the text the classifier looks at.
type PaymentText struct {
	Section     string // payment section window, or the whole document when FromSection is false
	FromSection bool
	Document    string
}

// PaymentRule is one entry of the classification decision list.
type PaymentRule struct {
	Name        string
	Method      constants.PaymentMethod
	Confidence  constants.Confidence
	Description string
	Match       func(t PaymentText) bool
}

// PaymentRules is the classification order; the first matching rule decides.
// An explicit one-time phrase outranks everything, including termin schedules.
var PaymentRules = []PaymentRule{
	{
		Name:        "one_time_phrase",
		Method:      constants.PaymentOneTime,
		Confidence:  constants.ConfidenceHigh,
		Description: "One Time Charge stated in the payment terms",
		Match:       func(t PaymentText) bool { return reOneTimeCharge.MatchString(t.Section) },
	},
	{
		Name:        "termin_pattern",
		Method:      constants.PaymentTermin,
		Confidence:  constants.ConfidenceHigh,
		Description: "payment split into termin installments",
		Match:       func(t PaymentText) bool { return reTerminMention.MatchString(t.Section) },
	},
	{
		Name:        "recurring_in_section",
		Method:      constants.PaymentRecurring,
		Confidence:  constants.ConfidenceHigh,
		Description: "recurring charge stated in the payment terms",
		Match: func(t PaymentText) bool {
			return t.FromSection && containsAny(strings.ToLower(t.Section), recurringKeywords)
		},
	},
	{
		Name:        "recurring_in_document",
		Method:      constants.PaymentRecurring,
		Confidence:  constants.ConfidenceMedium,
		Description: "recurring charge mentioned elsewhere in the document",
		Match: func(t PaymentText) bool {
			text := strings.ReplaceAll(t.Document, monthlyColumnHeader, "")
			return containsAny(strings.ToLower(text), recurringKeywords)
		},
	},
	{
		Name:        "monthly_column_header",
		Method:      constants.PaymentRecurring,
		Confidence:  constants.ConfidenceMedium,
		Description: "monthly cost column present in the service table",
		Match:       func(t PaymentText) bool { return strings.Contains(t.Document, monthlyColumnHeader) },
	},
	{
		Name:        "default_guess",
		Method:      constants.PaymentOneTime,
		Confidence:  constants.ConfidenceLow,
		Description: "no payment pattern detected; assumed one-time",
		Match:       func(PaymentText) bool { return true },
	},
}

// Classify returns the first rule in PaymentRules that matches.
func Classify(t PaymentText) PaymentRule {
	for _, r := range PaymentRules {
		if r.Match(t) {
			return r
		}
	}
	return PaymentRules[len(PaymentRules)-1]
}

// PaymentSectionText returns the window after the first payment header found, or the
// whole document when no header is present. Table blocks contribute their cell text.
func (e *Extractor) PaymentSectionText(doc *document.Document) PaymentText {
	seq := doc.FlatTexts()
	full := doc.FullText()
	for _, header := range PaymentHeaders {
		at := locate.FindSectionMarker(seq, header)
		if at == locate.NotFound {
			continue
		}
		window := nonEmpty(locate.Window(seq, at+1, e.opts.PaymentWindow))
		if len(window) == 0 {
			continue
		}
		return PaymentText{Section: strings.Join(window, " "), FromSection: true, Document: full}
	}
	return PaymentText{Section: full, Document: full}
}

// Payment classifies the payment method and, for termin contracts, extracts the schedule.
// A document without text keeps the unknown default.
func (e *Extractor) Payment(doc *document.Document) entity.PaymentInfo {
	if doc.FullText() == "" {
		e.logger.Debug("extract.payment.no_text")
		return entity.DefaultPayment()
	}
	text := e.PaymentSectionText(doc)
	rule := Classify(text)

	info := entity.DefaultPayment()
	info.Method = rule.Method
	info.Confidence = rule.Confidence
	info.Description = rule.Description
	info.RawExcerpt = utils.NonEmpty(utils.Truncate(text.Section, excerptRunes))

	if rule.Method == constants.PaymentTermin {
		termins := ExtractTermins(text.Section)
		if len(termins) == 0 && text.FromSection {
			termins = ExtractTermins(text.Document)
		}
		if len(termins) == 0 {
			info.Method = constants.PaymentOneTime
			info.Confidence = constants.ConfidenceLow
			info.Description = "termin pattern detected but no termin schedule could be extracted"
			e.logger.Warn("extract.payment.termin_degraded")
		} else {
			info.TerminList = termins
			info.TotalTerminCount = len(termins)
			for _, t := range termins {
				info.TotalAmount += t.Amount
			}
		}
	}

	e.logger.Debug("extract.payment.ok",
		"rule", rule.Name,
		"method", string(info.Method),
		"confidence", string(info.Confidence),
		"termins", info.TotalTerminCount,
		"from_section", text.FromSection)
	return info
}

func nonEmpty(seq []string) []string {
	out := make([]string, 0, len(seq))
	for _, s := range seq {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
