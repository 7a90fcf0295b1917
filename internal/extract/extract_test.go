package extract

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/utils"
)

func newTestExtractor() *Extractor {
	return New(Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func tokens(ts ...string) *document.Document {
	return document.NewTokenDocument(ts)
}

func TestContractNumber(t *testing.T) {
	tests := []struct {
		name   string
		doc    *document.Document
		want   string
		wantOK bool
	}{
		{
			name:   "after label",
			doc:    tokens("Nomor Kontrak", "K.TEL.001/HK.810/TR5-R500/2025", "Tanggal"),
			want:   "K.TEL.001/HK.810/TR5-R500/2025",
			wantOK: true,
		},
		{
			name:   "embedded in a longer element",
			doc:    tokens("KONTRAK", "Nomor Kontrak : K.TEL.123/HK.810/TR5/2024 tanggal 2 Januari 2024"),
			want:   "K.TEL.123/HK.810/TR5/2024",
			wantOK: true,
		},
		{
			name:   "label value without a number falls through",
			doc:    tokens("Nomor Kontrak", "-", "lampiran K.TEL.9/A/B/2023"),
			want:   "K.TEL.9/A/B/2023",
			wantOK: true,
		},
		{
			name:   "year must have four digits",
			doc:    tokens("K.TEL.1/2/3/25"),
			wantOK: false,
		},
		{
			name:   "empty",
			doc:    document.Empty(),
			wantOK: false,
		},
	}

	e := newTestExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.ContractNumber(tt.doc)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ContractNumber() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTaxID(t *testing.T) {
	seq := []string{"NPWP", "NPWP: 01.234.567.8-901.000"}
	v, exact, ok := TaxID(seq, 0)
	if !ok || !exact || v != "01.234.567.8-901.000" {
		t.Errorf("TaxID() = (%q, %v, %v)", v, exact, ok)
	}

	v, exact, ok = TaxID([]string{"NPWP", " 0123 "}, 0)
	if !ok || exact || v != "0123" {
		t.Errorf("TaxID() raw = (%q, %v, %v)", v, exact, ok)
	}
}

func TestCustomerFromSection(t *testing.T) {
	doc := tokens(
		"1. TELKOM", "Nama", "PT Telkom Indonesia",
		"2.PELANGGAN",
		"Nama", "SMK NEGERI 1 BANDA ACEH",
		"Alamat", "Jl. Sudirman No. 5",
		"NPWP", "01.234.567.8-901.000",
		"Diwakili secara sah oleh",
		"Nama", "Budi Santoso",
		"Jabatan", "Kepala Sekolah",
	)

	want := entity.CustomerInfo{
		Name:    utils.Ptr("SMK NEGERI 1 BANDA ACEH"),
		Address: utils.Ptr("Jl. Sudirman No. 5"),
		TaxID:   utils.Ptr("01.234.567.8-901.000"),
		Representative: &entity.Representative{
			Name:     utils.Ptr("Budi Santoso"),
			Position: utils.Ptr("Kepala Sekolah"),
		},
		ContactPerson: &entity.ContactPerson{
			Name:     utils.Ptr("Budi Santoso"),
			Position: utils.Ptr("Kepala Sekolah"),
		},
	}
	if diff := cmp.Diff(want, newTestExtractor().Customer(doc)); diff != "" {
		t.Errorf("Customer() mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomerSingleNameHasNoRepresentative(t *testing.T) {
	doc := tokens("2.PELANGGAN", "Nama", "Koperasi Maju", "Alamat", "Kota Banda Aceh")
	got := newTestExtractor().Customer(doc)
	if got.Representative != nil || got.ContactPerson != nil {
		t.Errorf("expected no representative, got %+v", got.Representative)
	}
	if utils.StrOrEmpty(got.Name) != "Koperasi Maju" {
		t.Errorf("name = %q", utils.StrOrEmpty(got.Name))
	}
}

func TestCustomerKeywordFallback(t *testing.T) {
	doc := tokens(
		"KONTRAK BERLANGGANAN",
		"SMK NEGERI 2 ACEH",
		"NPWP 01.234.567.8-901.000",
		"Jl. Teuku Umar",
		"lainnya",
	)
	want := entity.CustomerInfo{
		Name:    utils.Ptr("SMK NEGERI 2 ACEH"),
		Address: utils.Ptr("Jl. Teuku Umar"),
		TaxID:   utils.Ptr("01.234.567.8-901.000"),
	}
	if diff := cmp.Diff(want, newTestExtractor().Customer(doc)); diff != "" {
		t.Errorf("Customer() mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomerNothingFound(t *testing.T) {
	got := newTestExtractor().Customer(tokens("lorem", "ipsum"))
	if diff := cmp.Diff(entity.CustomerInfo{}, got); diff != "" {
		t.Errorf("Customer() mismatch (-want +got):\n%s", diff)
	}
}

func TestTelkomContact(t *testing.T) {
	tests := []struct {
		name string
		doc  *document.Document
		want *entity.ContactPerson
	}{
		{
			name: "name and position",
			doc: tokens("Diwakili secara sah oleh", "Nama", "Andi", "Jabatan", "Manager",
				"Diwakili secara sah oleh", "Nama", "Budi"),
			want: &entity.ContactPerson{Name: utils.Ptr("Andi"), Position: utils.Ptr("Manager")},
		},
		{
			name: "position belonging to the customer is ignored",
			doc: tokens("Diwakili secara sah oleh", "Nama", "Andi",
				"Diwakili secara sah oleh", "Nama", "Budi", "Jabatan", "Kepala Sekolah"),
			want: &entity.ContactPerson{Name: utils.Ptr("Andi")},
		},
		{
			name: "no signatory phrase",
			doc:  tokens("Nama", "Andi"),
			want: nil,
		},
	}

	e := newTestExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, e.TelkomContact(tt.doc)); diff != "" {
				t.Errorf("TelkomContact() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
