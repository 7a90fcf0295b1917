package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/joseph-ayodele/telkom-contracts/constants"
	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/utils"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunFieldsIsolatesPanics(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		t.Run(map[bool]string{false: "sequential", true: "parallel"}[parallel], func(t *testing.T) {
			p := NewProcessor(Config{ParallelFields: parallel}, discardLogger())

			var before, after atomic.Bool
			p.runFields(p.logger, []field{
				{name: "before", run: func() { before.Store(true) }},
				{name: "broken", run: func() { panic("termin parser exploded") }},
				{name: "after", run: func() { after.Store(true) }},
			})
			if !before.Load() || !after.Load() {
				t.Errorf("sibling fields did not run: before=%v after=%v", before.Load(), after.Load())
			}
		})
	}
}

func TestRunFieldReportsPanic(t *testing.T) {
	if !runField(discardLogger(), "ok", func() {}) {
		t.Error("runField() = false for a clean field")
	}
	if runField(discardLogger(), "boom", func() { var m map[string]int; m["x"]++ }) {
		t.Error("runField() = true for a panicking field")
	}
}

func TestExtractPage1UnrecognizedInput(t *testing.T) {
	p := NewProcessor(Config{}, discardLogger())
	rec := p.ExtractPage1(context.Background(), document.Normalize(document.Decode([]byte(`{"foo":"bar"}`))))

	want := entity.NewContractRecord()
	opts := cmp.Options{
		cmpopts.IgnoreFields(entity.ContractRecord{}, "ExtractionTimestamp", "ProcessingTimeSeconds"),
	}
	if diff := cmp.Diff(want, rec, opts); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
	if got := RecordStatus(rec); got != constants.RunStatusEmpty {
		t.Errorf("RecordStatus() = %s, want EMPTY", got)
	}
}

func TestExtractPage1ParallelMatchesSequential(t *testing.T) {
	doc := document.Normalize(document.Decode(page1JSON(t)))
	ignore := cmpopts.IgnoreFields(entity.ContractRecord{}, "ExtractionTimestamp", "ProcessingTimeSeconds")

	seq := NewProcessor(Config{}, discardLogger()).ExtractPage1(context.Background(), doc)
	par := NewProcessor(Config{ParallelFields: true}, discardLogger()).ExtractPage1(context.Background(), doc)
	if diff := cmp.Diff(seq, par, ignore); diff != "" {
		t.Errorf("parallel extraction differs (-seq +par):\n%s", diff)
	}
	if seq.Contract.ContractNumber == nil || len(seq.ServiceItems) != 1 {
		t.Errorf("unexpected record: %+v", seq)
	}
}

func TestMergeKeepsCompleteDateRange(t *testing.T) {
	existing := entity.NewContractRecord()
	existing.DateRange = entity.DateRange{
		Start:      utils.Ptr("2025-01-01"),
		End:        utils.Ptr("2025-12-31"),
		Confidence: constants.ConfidenceHigh,
	}

	inputs := []entity.Page2Result{
		{},
		{DateRange: entity.DateRange{Start: utils.Ptr("2024-01-01"), End: utils.Ptr("2024-06-30"), Confidence: constants.ConfidenceLow}},
		{DateRange: entity.DateRange{End: utils.Ptr("2030-01-01")}},
	}
	for i, in := range inputs {
		got := Merge(existing, in)
		if diff := cmp.Diff(existing.DateRange, got.DateRange); diff != "" {
			t.Errorf("input %d changed the date range (-want +got):\n%s", i, diff)
		}
	}
}

func TestMergeFillsMissingDates(t *testing.T) {
	existing := entity.NewContractRecord()
	existing.DateRange = entity.DateRange{Start: utils.Ptr("2025-01-01"), Confidence: constants.ConfidenceHigh}

	got := Merge(existing, entity.Page2Result{DateRange: entity.DateRange{
		Start:      utils.Ptr("2020-01-01"),
		End:        utils.Ptr("2025-12-31"),
		Confidence: constants.ConfidenceLow,
	}})

	want := entity.DateRange{
		Start:      utils.Ptr("2025-01-01"),
		End:        utils.Ptr("2025-12-31"),
		Confidence: constants.ConfidenceLow,
	}
	if diff := cmp.Diff(want, got.DateRange); diff != "" {
		t.Errorf("date range mismatch (-want +got):\n%s", diff)
	}
	if got.Contract.DateRange == nil || utils.StrOrEmpty(got.Contract.DateRange.End) != "2025-12-31" {
		t.Error("contract date range not synced")
	}
	if existing.DateRange.End != nil {
		t.Error("Merge modified its input")
	}
}

func TestMergeContacts(t *testing.T) {
	existing := entity.NewContractRecord()
	existing.TelkomContact = &entity.ContactPerson{Name: utils.Ptr("Andi"), Position: utils.Ptr("Manager")}
	existing.Customer.Name = utils.Ptr("SMK NEGERI 1")
	existing.Customer.ContactPerson = &entity.ContactPerson{Name: utils.Ptr("Budi")}
	existing.SourceFiles = []string{"page1.json"}
	existing.ProcessingTimeSeconds = 1.5

	t.Run("non-empty blocks replace wholesale", func(t *testing.T) {
		got := Merge(existing, entity.Page2Result{
			TelkomContact:         &entity.ContactPerson{Phone: utils.Ptr("0812345678")},
			CustomerContact:       &entity.ContactPerson{Email: utils.Ptr("budi@smk.sch.id")},
			ProcessingTimeSeconds: 0.5,
			SourceFiles:           []string{"page2.json"},
		})
		if diff := cmp.Diff(&entity.ContactPerson{Phone: utils.Ptr("0812345678")}, got.TelkomContact); diff != "" {
			t.Errorf("telkom contact mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(&entity.ContactPerson{Email: utils.Ptr("budi@smk.sch.id")}, got.Customer.ContactPerson); diff != "" {
			t.Errorf("customer contact mismatch (-want +got):\n%s", diff)
		}
		if utils.StrOrEmpty(got.Customer.Name) != "SMK NEGERI 1" {
			t.Error("customer name lost in merge")
		}
		if got.ProcessingTimeSeconds != 2.0 {
			t.Errorf("ProcessingTimeSeconds = %v, want 2", got.ProcessingTimeSeconds)
		}
		if diff := cmp.Diff([]string{"page1.json", "page2.json"}, got.SourceFiles); diff != "" {
			t.Errorf("source files mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty blocks keep page one", func(t *testing.T) {
		got := Merge(existing, entity.Page2Result{
			TelkomContact:   &entity.ContactPerson{},
			CustomerContact: nil,
		})
		if diff := cmp.Diff(existing.TelkomContact, got.TelkomContact); diff != "" {
			t.Errorf("telkom contact mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(existing.Customer.ContactPerson, got.Customer.ContactPerson); diff != "" {
			t.Errorf("customer contact mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestMergeNilExisting(t *testing.T) {
	got := Merge(nil, entity.Page2Result{DateRange: entity.DateRange{Start: utils.Ptr("2025-01-01")}})
	if got == nil || utils.StrOrEmpty(got.DateRange.Start) != "2025-01-01" {
		t.Errorf("Merge(nil) = %+v", got)
	}
}

func TestScoreAndStatus(t *testing.T) {
	full := entity.NewContractRecord()
	full.Contract.ContractNumber = utils.Ptr("K.TEL.1/2/3/2025")
	full.Customer.Name = utils.Ptr("PT Maju")
	full.Customer.Address = utils.Ptr("Jl. Merdeka")
	full.Customer.TaxID = utils.Ptr("01.234.567.8-901.000")
	full.ServiceItems = []entity.ServiceLineItem{{ServiceName: "ASTINET"}}
	full.Payment.Method = constants.PaymentRecurring
	full.Payment.Confidence = constants.ConfidenceHigh
	full.DateRange = entity.DateRange{Start: utils.Ptr("2025-01-01"), End: utils.Ptr("2025-12-31")}
	full.TelkomContact = &entity.ContactPerson{Name: utils.Ptr("Andi")}

	partial := entity.NewContractRecord()
	partial.Contract.ContractNumber = utils.Ptr("K.TEL.1/2/3/2025")
	partial.Payment.Method = constants.PaymentOneTime
	partial.Payment.Confidence = constants.ConfidenceLow
	partial.DateRange = entity.DateRange{Start: utils.Ptr("2025-01-01")}

	tests := []struct {
		name       string
		rec        *entity.ContractRecord
		wantScore  float64
		wantStatus constants.RunStatus
	}{
		{name: "everything", rec: full, wantScore: 1.0, wantStatus: constants.RunStatusOK},
		{name: "some", rec: partial, wantScore: 0.3, wantStatus: constants.RunStatusPartial},
		{name: "default", rec: entity.NewContractRecord(), wantScore: 0, wantStatus: constants.RunStatusEmpty},
		{name: "nil", rec: nil, wantScore: 0, wantStatus: constants.RunStatusEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.rec); got != tt.wantScore {
				t.Errorf("Score() = %v, want %v", got, tt.wantScore)
			}
			if got := RecordStatus(tt.rec); got != tt.wantStatus {
				t.Errorf("RecordStatus() = %s, want %s", got, tt.wantStatus)
			}
		})
	}
}

func TestProcessFiles(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "page1_res.json")
	broken := filepath.Join(dir, "broken_res.json")
	p2 := filepath.Join(dir, "page2_res.json")
	writeFile(t, p1, page1JSON(t))
	writeFile(t, broken, []byte(`{"parsing_res_list": [`))
	writeFile(t, p2, page2JSON(t))

	p := NewProcessor(Config{}, discardLogger())
	out := p.ProcessFiles(context.Background(), []string{p1, broken}, []string{p2})

	if len(out.LoadErrors) != 1 {
		t.Errorf("LoadErrors = %v, want one", out.LoadErrors)
	}
	if out.Status != constants.RunStatusOK {
		t.Errorf("Status = %s, want OK", out.Status)
	}
	rec := out.Record
	if diff := cmp.Diff([]string{p1, p2}, rec.SourceFiles); diff != "" {
		t.Errorf("source files mismatch (-want +got):\n%s", diff)
	}
	wantDates := entity.DateRange{
		Start:      utils.Ptr("2025-01-01"),
		End:        utils.Ptr("2025-12-31"),
		Confidence: constants.ConfidenceHigh,
	}
	if diff := cmp.Diff(wantDates, rec.DateRange); diff != "" {
		t.Errorf("date range mismatch (-want +got):\n%s", diff)
	}
	if utils.StrOrEmpty(rec.TelkomContact.Name) != "Rina" {
		t.Errorf("telkom contact = %+v, want page-2 block", rec.TelkomContact)
	}
	if rec.Payment.Method != constants.PaymentOneTime {
		t.Errorf("payment method = %s", rec.Payment.Method)
	}
}

func TestProcessFilesNothingLoaded(t *testing.T) {
	p := NewProcessor(Config{}, discardLogger())
	out := p.ProcessFiles(context.Background(), []string{filepath.Join(t.TempDir(), "missing_res.json")}, nil)
	if out.Status != constants.RunStatusFailed {
		t.Errorf("Status = %s, want FAILED", out.Status)
	}
	if out.Record == nil || out.Record.Payment.Method != constants.PaymentUnknown {
		t.Errorf("expected a default record, got %+v", out.Record)
	}
}

func page1JSON(t *testing.T) []byte {
	t.Helper()
	texts := []string{
		"KONTRAK BERLANGGANAN",
		"Nomor Kontrak", "K.TEL.001/HK.810/TR5-R500/2025",
		"Diwakili secara sah oleh", "Nama", "Andi", "Jabatan", "Manager",
		"2.PELANGGAN",
		"Nama", "SMK NEGERI 1 BANDA ACEH",
		"Alamat", "Jl. Sudirman No. 5",
		"NPWP", "01.234.567.8-901.000",
	}
	var blocks []map[string]string
	for _, s := range texts {
		blocks = append(blocks, map[string]string{"block_label": "text", "block_content": s})
	}
	blocks = append(blocks,
		map[string]string{"block_label": "table", "block_content": "<table><tr><td>No</td><td>Layanan</td><td>Jumlah</td></tr>" +
			"<tr><td></td><td></td><td></td></tr><tr><td>1</td><td>ASTINET</td><td>1</td></tr></table>"},
		map[string]string{"block_label": "paragraph_title", "block_content": "TATA CARA PEMBAYARAN"},
		map[string]string{"block_label": "text", "block_content": "Pembayaran secara One Time Charge"},
	)
	b, err := json.Marshal(map[string]any{"parsing_res_list": blocks})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func page2JSON(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal([]string{
		"Kontrak berlaku sejak 1 Januari 2025 sampai dengan 31 Desember 2025",
		"7. KONTAK PERSON",
		"TELKOM",
		"Nama", "Rina",
		"Telepon", "0812345678",
		"Nama", "Budi",
		"Email", "budi@smk.sch.id",
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}
