package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joseph-ayodele/telkom-contracts/internal/export"
	"github.com/joseph-ayodele/telkom-contracts/internal/utils"
)

func TestPage1StoresRunAndWritesRecord(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	dir := t.TempDir()
	in := filepath.Join(dir, "smk_res.json")
	out := filepath.Join(dir, "record.json")
	page1 := `["Nomor Kontrak", "K.TEL.001/HK.810/TR5-R500/2025", "TATA CARA PEMBAYARAN", "One Time Charge"]`
	if err := os.WriteFile(in, []byte(page1), 0o644); err != nil {
		t.Fatal(err)
	}

	var logs, stdout bytes.Buffer
	root := newAppCmd(&app{logOut: &logs})
	root.SetOut(&stdout)
	root.SetArgs([]string{"page1", in, out, "--store", filepath.Join(dir, "runs.db"), "--log-level", "info"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("page1 error = %v\nlogs:\n%s", err, logs.String())
	}

	if n := strings.Count(logs.String(), `"msg":"store.run.saved"`); n != 1 {
		t.Errorf("store.run.saved logged %d times, want 1:\n%s", n, logs.String())
	}
	if strings.Contains(logs.String(), `"msg":"run stored"`) {
		t.Errorf("undotted event name in logs:\n%s", logs.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should stay empty when an output file is given, got %q", stdout.String())
	}

	rec, err := export.ReadRecordFile(out)
	if err != nil {
		t.Fatalf("ReadRecordFile() error = %v", err)
	}
	if got := utils.StrOrEmpty(rec.Contract.ContractNumber); got != "K.TEL.001/HK.810/TR5-R500/2025" {
		t.Errorf("contract number = %q", got)
	}
}
