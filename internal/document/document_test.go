package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/joseph-ayodele/telkom-contracts/internal/common"
)

func TestDecodeShapes(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantMode  Mode
		wantTexts []string
	}{
		{
			name: "aggregate page with blocks",
			input: `{"parsing_res_list":[
				{"block_label":"text","block_content":"KONTRAK  BERLANGGANAN"},
				{"block_label":"table","block_content":"<table><tr><td>1</td></tr></table>"}
			]}`,
			wantMode:  ModeBlocks,
			wantTexts: []string{"KONTRAK BERLANGGANAN", "<table><tr><td>1</td></tr></table>"},
		},
		{
			name:      "aggregate wrapped in res",
			input:     `{"res":{"overall_ocr_res":{"rec_texts":["Nama","PT Maju"]}}}`,
			wantMode:  ModeTokens,
			wantTexts: []string{"Nama", "PT Maju"},
		},
		{
			name: "aggregate pages mixing blocks and tokens",
			input: `[
				{"parsing_res_list":[{"block_label":"title","block_content":"PELANGGAN"}]},
				{"overall_ocr_res":{"rec_texts":["Halaman 2"]}}
			]`,
			wantMode:  ModeBlocks,
			wantTexts: []string{"PELANGGAN", "Halaman 2"},
		},
		{
			name:      "unlabelled line list",
			input:     `[{"text":"Nama"},{"text":"PT Maju"}]`,
			wantMode:  ModeTokens,
			wantTexts: []string{"Nama", "PT Maju"},
		},
		{
			name:      "labelled line list",
			input:     `[{"block_content":"Nama","block_label":"text"},{"block_content":"PT Maju"}]`,
			wantMode:  ModeBlocks,
			wantTexts: []string{"Nama", "PT Maju"},
		},
		{
			name:      "text blob",
			input:     `"Nama\r\nPT Maju\n\nNPWP"`,
			wantMode:  ModeTokens,
			wantTexts: []string{"Nama", "PT Maju", "", "NPWP"},
		},
		{
			name:      "string list",
			input:     `["Nama","PT  Maju"]`,
			wantMode:  ModeTokens,
			wantTexts: []string{"Nama", "PT Maju"},
		},
		{
			name:     "unrecognized object",
			input:    `{"foo":1}`,
			wantMode: ModeTokens,
		},
		{
			name:     "invalid json",
			input:    `{"parsing_res_list":`,
			wantMode: ModeTokens,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Normalize(Decode([]byte(tt.input)))
			if doc.Mode() != tt.wantMode {
				t.Errorf("mode = %v, want %v", doc.Mode(), tt.wantMode)
			}
			if diff := cmp.Diff(tt.wantTexts, doc.Texts(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("texts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeUnrecognizedVariant(t *testing.T) {
	if _, ok := Decode([]byte(`42`)).(Unrecognized); !ok {
		t.Fatal("a bare number should be Unrecognized")
	}
	if _, ok := Decode([]byte(`not json`)).(Unrecognized); !ok {
		t.Fatal("invalid json should be Unrecognized")
	}
}

func TestJoinedAndFullText(t *testing.T) {
	doc := NewBlockDocument([]Block{
		{Content: "Nomor Kontrak", Label: "text"},
		{Content: "<table><tr><th>NO</th><th>MONTHLY</th></tr><tr><td>1</td><td> Biaya\n Bulanan </td></tr></table>", Label: "TABLE"},
		{Content: "", Label: "text"},
		{Content: "K.TEL.1/2/3/2025", Label: "text"},
	})

	// pattern scans run over prose only
	if got, want := doc.Joined(), "Nomor Kontrak K.TEL.1/2/3/2025"; got != want {
		t.Errorf("Joined() = %q, want %q", got, want)
	}
	if got, want := doc.FullText(), "Nomor Kontrak NO MONTHLY 1 Biaya Bulanan K.TEL.1/2/3/2025"; got != want {
		t.Errorf("FullText() = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"Nomor Kontrak", "NO MONTHLY 1 Biaya Bulanan", "", "K.TEL.1/2/3/2025"}, doc.FlatTexts()); diff != "" {
		t.Errorf("FlatTexts() mismatch (-want +got):\n%s", diff)
	}
	if got := doc.Tables(); len(got) != 1 || !strings.HasPrefix(got[0], "<table>") {
		t.Errorf("Tables() = %q, want the markup of one table", got)
	}

	tableOnly := NewBlockDocument([]Block{{Content: "<table><tr><td>MONTHLY</td></tr></table>", Label: "table"}})
	if tableOnly.Joined() != "" || tableOnly.FullText() != "MONTHLY" {
		t.Errorf("table-only document: Joined() = %q, FullText() = %q", tableOnly.Joined(), tableOnly.FullText())
	}

	tokens := NewTokenDocument([]string{"a", "", "b"})
	if tokens.FullText() != tokens.Joined() {
		t.Errorf("token FullText() = %q, Joined() = %q", tokens.FullText(), tokens.Joined())
	}
}

func TestConcat(t *testing.T) {
	a := NewTokenDocument([]string{"a", "b"})
	b := NewBlockDocument([]Block{{Content: "c", Label: "title"}})

	tokens := Concat(a, NewTokenDocument([]string{"z"}))
	if tokens.Mode() != ModeTokens {
		t.Errorf("token concat mode = %v", tokens.Mode())
	}

	mixed := Concat(a, nil, b)
	if mixed.Mode() != ModeBlocks {
		t.Fatalf("mixed concat mode = %v, want blocks", mixed.Mode())
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, mixed.Texts()); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "a_res.json")
	second := filepath.Join(dir, "b_res.json")
	broken := filepath.Join(dir, "c_res.json")
	missing := filepath.Join(dir, "missing_res.json")

	mustWrite(t, good, `["Nomor Kontrak","K.TEL.1/2/3/2025"]`)
	mustWrite(t, second, `{"overall_ocr_res":{"rec_texts":["PELANGGAN"]}}`)
	mustWrite(t, broken, `{"overall_ocr_res":`)

	doc, loaded, errs := LoadFiles([]string{good, broken, second, missing}, nil)
	if diff := cmp.Diff([]string{good, second}, loaded); diff != "" {
		t.Errorf("loaded mismatch (-want +got):\n%s", diff)
	}
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2", len(errs))
	}
	for _, err := range errs {
		if !errors.Is(err, common.ErrLoad) {
			t.Errorf("error %v does not wrap ErrLoad", err)
		}
	}
	if diff := cmp.Diff([]string{"Nomor Kontrak", "K.TEL.1/2/3/2025", "PELANGGAN"}, doc.Texts()); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileValidButUnknownShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x_res.json")
	mustWrite(t, path, `{"unexpected":true}`)

	raw, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if Normalize(raw).Len() != 0 {
		t.Error("unknown shape should normalize to an empty document")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
