package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/joseph-ayodele/telkom-contracts/constants"
	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
)

const costTable = `<table><tr><td>NO</td><td>LAYANAN</td><td>INSTALLATION</td><td>MONTHLY</td></tr>` +
	`<tr><td></td><td></td><td></td><td></td></tr>` +
	`<tr><td>1</td><td>ASTINET</td><td>0</td><td>1.000.000</td></tr></table>`

func blocks(labelled ...string) *document.Document {
	var bs []document.Block
	for i := 0; i+1 < len(labelled); i += 2 {
		bs = append(bs, document.Block{Label: labelled[i], Content: labelled[i+1]})
	}
	return document.NewBlockDocument(bs)
}

const terminSchedule = "Termin-1, yaitu periode Januari 2025: Rp1.000.000 Termin-2, yaitu periode Februari 2025: Rp2.000.000"

func TestPaymentClassification(t *testing.T) {
	tests := []struct {
		name           string
		doc            *document.Document
		wantMethod     constants.PaymentMethod
		wantConfidence constants.Confidence
	}{
		{
			name:           "one time charge outranks monthly wording",
			doc:            tokens("TATA CARA PEMBAYARAN", "Pembayaran secara One Time Charge", "biaya bulanan tidak berlaku"),
			wantMethod:     constants.PaymentOneTime,
			wantConfidence: constants.ConfidenceHigh,
		},
		{
			name:           "one time charge outranks termin",
			doc:            tokens("TATA CARA PEMBAYARAN", "One-Time Charge", terminSchedule),
			wantMethod:     constants.PaymentOneTime,
			wantConfidence: constants.ConfidenceHigh,
		},
		{
			name:           "termin schedule",
			doc:            tokens("TATA CARA PEMBAYARAN", terminSchedule),
			wantMethod:     constants.PaymentTermin,
			wantConfidence: constants.ConfidenceHigh,
		},
		{
			name:           "recurring in payment section",
			doc:            tokens("PEMBAYARAN", "Biaya berlangganan dibayar setiap bulan"),
			wantMethod:     constants.PaymentRecurring,
			wantConfidence: constants.ConfidenceHigh,
		},
		{
			name:           "recurring elsewhere",
			doc:            tokens("Layanan ASTINET", "biaya bulanan Rp 1.000.000"),
			wantMethod:     constants.PaymentRecurring,
			wantConfidence: constants.ConfidenceMedium,
		},
		{
			name:           "monthly column header only",
			doc:            tokens("NO", "MONTHLY", "ANNUAL"),
			wantMethod:     constants.PaymentRecurring,
			wantConfidence: constants.ConfidenceMedium,
		},
		{
			name: "monthly header in a table block",
			doc: blocks(
				"text", "KONTRAK LAYANAN",
				"text", "Nomor Kontrak",
				"text", "K.TEL.1/HK810/TR1/2025",
				"table", costTable,
			),
			wantMethod:     constants.PaymentRecurring,
			wantConfidence: constants.ConfidenceMedium,
		},
		{
			name:           "table block only",
			doc:            blocks("table", costTable),
			wantMethod:     constants.PaymentRecurring,
			wantConfidence: constants.ConfidenceMedium,
		},
		{
			name: "recurring keyword in a table header",
			doc: blocks(
				"text", "Layanan ASTINET",
				"table", "<table><tr><td>No</td><td>Layanan</td><td>Biaya Bulanan</td></tr><tr><td>1</td><td>ASTINET</td><td>Rp 1.000.000</td></tr></table>",
			),
			wantMethod:     constants.PaymentRecurring,
			wantConfidence: constants.ConfidenceMedium,
		},
		{
			name:           "table without payment signals",
			doc:            blocks("text", "Layanan", "table", "<table><tr><td>No</td><td>Layanan</td></tr></table>"),
			wantMethod:     constants.PaymentOneTime,
			wantConfidence: constants.ConfidenceLow,
		},
		{
			name:           "nothing detected",
			doc:            tokens("Layanan"),
			wantMethod:     constants.PaymentOneTime,
			wantConfidence: constants.ConfidenceLow,
		},
	}

	e := newTestExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Payment(tt.doc)
			if got.Method != tt.wantMethod || got.Confidence != tt.wantConfidence {
				t.Errorf("Payment() = %s/%s, want %s/%s", got.Method, got.Confidence, tt.wantMethod, tt.wantConfidence)
			}
			if got.Method != constants.PaymentTermin && (len(got.TerminList) != 0 || got.TotalAmount != 0) {
				t.Errorf("non-termin payment carries termin state: %+v", got)
			}
		})
	}
}

func TestPaymentTerminTotals(t *testing.T) {
	got := newTestExtractor().Payment(tokens("TATA CARA PEMBAYARAN", terminSchedule))

	if got.TotalTerminCount != 2 {
		t.Errorf("TotalTerminCount = %d, want 2", got.TotalTerminCount)
	}
	if got.TotalAmount != 3000000 {
		t.Errorf("TotalAmount = %v, want 3000000", got.TotalAmount)
	}
	var numbers []int
	for _, tp := range got.TerminList {
		numbers = append(numbers, tp.Number)
	}
	if diff := cmp.Diff([]int{1, 2}, numbers); diff != "" {
		t.Errorf("termin order mismatch (-want +got):\n%s", diff)
	}
	if got.RawExcerpt == nil {
		t.Error("RawExcerpt not set")
	}
}

func TestPaymentTerminDegradesWithoutSchedule(t *testing.T) {
	got := newTestExtractor().Payment(tokens("TATA CARA PEMBAYARAN", "Pembayaran dalam 2 tahap: termin 1 dan termin 2"))

	if got.Method != constants.PaymentOneTime || got.Confidence != constants.ConfidenceLow {
		t.Errorf("Payment() = %s/%s, want one_time/low", got.Method, got.Confidence)
	}
	if got.TotalTerminCount != 0 || len(got.TerminList) != 0 || got.TotalAmount != 0 {
		t.Errorf("degraded payment keeps termin state: %+v", got)
	}
}

func TestExtractTermins(t *testing.T) {
	text := "Termin kedua, periode Juni 2025: Rp 2.500.000,50 lalu Termin pertama periode Maret 2025 : Rp.500.000"
	want := []entity.TerminPayment{
		{Number: 1, Period: "Maret 2025", Amount: 500000},
		{Number: 2, Period: "Juni 2025", Amount: 2500000.50},
	}
	if diff := cmp.Diff(want, ExtractTermins(text), cmpopts.IgnoreFields(entity.TerminPayment{}, "RawExcerpt")); diff != "" {
		t.Errorf("ExtractTermins mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	rule := Classify(PaymentText{Section: "termin-1 bulanan", FromSection: true, Document: "termin-1 bulanan"})
	if rule.Name != "termin_pattern" {
		t.Errorf("Classify() = %s, want termin_pattern", rule.Name)
	}
	if last := PaymentRules[len(PaymentRules)-1]; !last.Match(PaymentText{}) {
		t.Error("the last rule must always match")
	}
}
