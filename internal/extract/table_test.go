package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
)

const serviceTable = `<table>
<tr><td>No</td><td>Layanan</td><td>Jumlah</td></tr>
<tr><td></td><td>Service</td><td>Qty</td></tr>
<tr><td>1</td><td>ASTINET   Fit</td><td>1</td><td>Banda Aceh</td><td>Jl. Merdeka No. 1</td><td>Budi</td><td>50</td><td>Rp 1.000.000</td><td>Rp 2.500.000</td><td>Rp 30.000.000</td><td>baru</td></tr>
<tr><td>2</td><td>VPN IP</td></tr>
<tr><td></td><td></td><td></td></tr>
<tr><td>3</td><td></td><td>1</td></tr>
<tr><td>4</td><td>Paket Bundling Indibiz</td><td>2</td></tr>
</table>`

func TestParseServiceTable(t *testing.T) {
	got, err := ParseServiceTable(serviceTable)
	if err != nil {
		t.Fatalf("ParseServiceTable() error = %v", err)
	}
	want := []entity.ServiceLineItem{
		{
			Index:          "1",
			ServiceName:    "ASTINET Fit",
			Quantity:       "1",
			Location:       "Banda Aceh",
			InstallAddress: "Jl. Merdeka No. 1",
			PIC:            "Budi",
			Bandwidth:      "50",
			InstallCost:    "Rp 1.000.000",
			MonthlyCost:    "Rp 2.500.000",
			AnnualCost:     "Rp 30.000.000",
			Notes:          "baru",
		},
		{Index: "4", ServiceName: "Paket Bundling Indibiz", Quantity: "2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseServiceTable mismatch (-want +got):\n%s", diff)
	}
}

func TestParseServiceTableHeaderOnly(t *testing.T) {
	got, err := ParseServiceTable(`<table><tr><td>a</td><td>b</td><td>c</td></tr><tr><td>d</td><td>e</td><td>f</td></tr></table>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d items from header rows", len(got))
	}
}

func TestServiceItemsAndSummary(t *testing.T) {
	doc := document.NewBlockDocument([]document.Block{
		{Content: "RINCIAN LAYANAN", Label: "title"},
		{Content: serviceTable, Label: "table"},
	})
	e := newTestExtractor()

	items := e.ServiceItems(doc)
	if len(items) != 2 {
		t.Fatalf("ServiceItems() = %d items, want 2", len(items))
	}

	want := entity.ServiceSummary{ConnectivityCount: 1, BundlingCount: 1}
	if diff := cmp.Diff(want, e.ServiceSummary(doc, items)); diff != "" {
		t.Errorf("ServiceSummary mismatch (-want +got):\n%s", diff)
	}
}

func TestServiceItemsWithoutTables(t *testing.T) {
	items := newTestExtractor().ServiceItems(tokens("no", "tables"))
	if items == nil || len(items) != 0 {
		t.Errorf("ServiceItems() = %#v, want empty non-nil slice", items)
	}
}

func TestServiceSummaryFromLabels(t *testing.T) {
	tests := []struct {
		name string
		doc  *document.Document
		want entity.ServiceSummary
	}{
		{
			name: "all labels",
			doc: tokens("Connectivity Telkom", "2 layanan", "Non-Connectivity Telkom", "1",
				"Bundling", "0"),
			want: entity.ServiceSummary{ConnectivityCount: 2, NonConnectivityCount: 1},
		},
		{
			name: "non-connectivity listed first",
			doc:  tokens("Non-Connectivity Telkom", "3", "Connectivity Telkom", "4"),
			want: entity.ServiceSummary{ConnectivityCount: 4, NonConnectivityCount: 3},
		},
	}

	e := newTestExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, e.ServiceSummary(tt.doc, nil)); diff != "" {
				t.Errorf("ServiceSummary mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
