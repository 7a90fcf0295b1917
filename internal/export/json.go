package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joseph-ayodele/telkom-contracts/internal/common"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
)

var reUnsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// MarshalRecord renders a record as indented JSON.
func MarshalRecord(rec *entity.ContractRecord) ([]byte, error) {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return append(b, '\n'), nil
}

// RecordFileName is "<contract>_extracted_<YYYYMMDD_HHMMSS>.json".
func RecordFileName(contract string, at time.Time) string {
	name := reUnsafeName.ReplaceAllString(contract, "_")
	if name == "" {
		name = "contract"
	}
	return fmt.Sprintf("%s_extracted_%s.json", name, at.UTC().Format("20060102_150405"))
}

// WriteRecordJSON writes rec into dir and returns the file path.
func WriteRecordJSON(dir, contract string, rec *entity.ContractRecord) (string, error) {
	b, err := MarshalRecord(rec)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, RecordFileName(contract, rec.ExtractionTimestamp))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// XLSXFileName is the download name for a single-contract workbook.
func XLSXFileName(contract string) string {
	name := reUnsafeName.ReplaceAllString(contract, "_")
	if name == "" {
		name = "contract"
	}
	return name + ".xlsx"
}

// UnmarshalRecord reads a previously extracted record. Missing slices come back empty.
func UnmarshalRecord(b []byte) (*entity.ContractRecord, error) {
	rec := entity.NewContractRecord()
	if err := json.Unmarshal(b, rec); err != nil {
		return nil, common.NewAppError("INVALID_RECORD", "not a contract record", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}
	if rec.ServiceItems == nil {
		rec.ServiceItems = []entity.ServiceLineItem{}
	}
	if rec.SourceFiles == nil {
		rec.SourceFiles = []string{}
	}
	if rec.Payment.TerminList == nil {
		rec.Payment.TerminList = []entity.TerminPayment{}
	}
	return rec, nil
}

// ReadRecordFile loads a record written by WriteRecordJSON or the CLI.
func ReadRecordFile(path string) (*entity.ContractRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rec, err := UnmarshalRecord(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}
