// Package export writes contract records as Excel workbooks and JSON files.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/utils"
)

const (
	SheetSummary  = "Summary"
	SheetServices = "Service Details"
	SheetTermin   = "Termin"
	SheetBatch    = "Contracts"
)

var serviceHeaders = []string{
	"No",
	"Layanan",
	"Jumlah",
	"Lokasi",
	"Alamat Instalasi",
	"PIC",
	"Lebar Pita (Mbps)",
	"Biaya Instalasi",
	"Biaya Bulanan",
	"Biaya Tahunan",
	"Keterangan",
}

// Service produces XLSX bytes for single records and batches.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// RecordXLSX returns a workbook with a Field/Value summary, the service table and,
// for termin contracts, the payment schedule.
func (s *Service) RecordXLSX(rec *entity.ContractRecord) ([]byte, error) {
	start := time.Now()
	if rec == nil {
		return nil, fmt.Errorf("nil record")
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	hdr, err := headerStyle(f)
	if err != nil {
		return nil, err
	}

	rows := [][]any{{"Field", "Value"}}
	for _, r := range summaryRows(rec) {
		rows = append(rows, []any{r[0], r[1]})
	}
	if err := writeRows(f, SheetSummary, rows, hdr); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 28)
	_ = f.SetColWidth(SheetSummary, "B", "B", 64)

	if len(rec.ServiceItems) > 0 {
		if _, err := f.NewSheet(SheetServices); err != nil {
			return nil, err
		}
		rows := [][]any{toAny(serviceHeaders)}
		for _, it := range rec.ServiceItems {
			rows = append(rows, toAny(serviceCells(it)))
		}
		if err := writeRows(f, SheetServices, rows, hdr); err != nil {
			return nil, err
		}
		_ = f.SetColWidth(SheetServices, "B", "B", 28)
		_ = f.SetColWidth(SheetServices, "E", "E", 40)
	}

	if len(rec.Payment.TerminList) > 0 {
		if _, err := f.NewSheet(SheetTermin); err != nil {
			return nil, err
		}
		rows := [][]any{{"Termin", "Periode", "Jumlah", "Kutipan"}}
		for _, t := range rec.Payment.TerminList {
			rows = append(rows, []any{t.Number, t.Period, t.Amount, utils.Truncate(t.RawExcerpt, 140)})
		}
		rows = append(rows, []any{"Total", "", rec.Payment.TotalAmount, ""})
		if err := writeRows(f, SheetTermin, rows, hdr); err != nil {
			return nil, err
		}
		_ = f.SetColWidth(SheetTermin, "B", "B", 24)
		_ = f.SetColWidth(SheetTermin, "D", "D", 60)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"contract_number", utils.StrOrEmpty(rec.Contract.ContractNumber),
		"service_items", len(rec.ServiceItems),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// BatchXLSX returns a workbook with one row per contract plus every service line
// tagged with its contract number.
func (s *Service) BatchXLSX(recs []*entity.ContractRecord) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetBatch); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	hdr, err := headerStyle(f)
	if err != nil {
		return nil, err
	}

	rows := [][]any{{
		"Nomor Kontrak", "Nama Pelanggan", "NPWP", "Alamat",
		"Tanggal Mulai", "Tanggal Akhir",
		"Connectivity", "Non-Connectivity", "Bundling",
		"Metode Pembayaran", "Jumlah Termin", "Total Termin",
		"Kontak Person Telkom", "Confidence", "Sumber",
	}}
	services := [][]any{toAny(append([]string{"Nomor Kontrak"}, serviceHeaders...))}
	for _, rec := range recs {
		if rec == nil {
			continue
		}
		number := utils.StrOrEmpty(rec.Contract.ContractNumber)
		rows = append(rows, []any{
			number,
			utils.StrOrEmpty(rec.Customer.Name),
			utils.StrOrEmpty(rec.Customer.TaxID),
			utils.StrOrEmpty(rec.Customer.Address),
			utils.StrOrEmpty(rec.DateRange.Start),
			utils.StrOrEmpty(rec.DateRange.End),
			rec.ServiceSummary.ConnectivityCount,
			rec.ServiceSummary.NonConnectivityCount,
			rec.ServiceSummary.BundlingCount,
			string(rec.Payment.Method),
			rec.Payment.TotalTerminCount,
			rec.Payment.TotalAmount,
			formatContact(rec.TelkomContact),
			rec.ConfidenceScore,
			strings.Join(rec.SourceFiles, ", "),
		})
		for _, it := range rec.ServiceItems {
			services = append(services, toAny(append([]string{number}, serviceCells(it)...)))
		}
	}
	if err := writeRows(f, SheetBatch, rows, hdr); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(SheetBatch, "A", "B", 32)
	_ = f.SetColWidth(SheetBatch, "D", "D", 48)

	if len(services) > 1 {
		if _, err := f.NewSheet(SheetServices); err != nil {
			return nil, err
		}
		if err := writeRows(f, SheetServices, services, hdr); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"contracts", len(rows)-1,
		"service_rows", len(services)-1,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func summaryRows(rec *entity.ContractRecord) [][2]string {
	rows := [][2]string{{"INFORMASI KONTRAK", ""}}
	rows = append(rows,
		[2]string{"Nomor Kontrak", utils.StrOrEmpty(rec.Contract.ContractNumber)},
		[2]string{"Tanggal Mulai", utils.StrOrEmpty(rec.DateRange.Start)},
		[2]string{"Tanggal Akhir", utils.StrOrEmpty(rec.DateRange.End)},
		[2]string{"", ""},
		[2]string{"INFORMASI PELANGGAN", ""},
		[2]string{"Nama Pelanggan", utils.StrOrEmpty(rec.Customer.Name)},
		[2]string{"Alamat", utils.StrOrEmpty(rec.Customer.Address)},
		[2]string{"NPWP", utils.StrOrEmpty(rec.Customer.TaxID)},
		[2]string{"Kontak Person", formatContact(rec.Customer.ContactPerson)},
	)
	if rep := rec.Customer.Representative; rep != nil {
		rows = append(rows,
			[2]string{"Perwakilan Nama", utils.StrOrEmpty(rep.Name)},
			[2]string{"Perwakilan Jabatan", utils.StrOrEmpty(rep.Position)},
		)
	}
	rows = append(rows,
		[2]string{"", ""},
		[2]string{"RINGKASAN LAYANAN", ""},
		[2]string{"Connectivity Telkom", fmt.Sprint(rec.ServiceSummary.ConnectivityCount)},
		[2]string{"Non-Connectivity Telkom", fmt.Sprint(rec.ServiceSummary.NonConnectivityCount)},
		[2]string{"Bundling", fmt.Sprint(rec.ServiceSummary.BundlingCount)},
		[2]string{"", ""},
		[2]string{"INFORMASI LAINNYA", ""},
		[2]string{"Tata Cara Pembayaran", formatPayment(rec.Payment)},
		[2]string{"Kontak Person Telkom", formatContact(rec.TelkomContact)},
		[2]string{"Confidence", fmt.Sprintf("%.2f", rec.ConfidenceScore)},
	)
	return rows
}

func formatPayment(p entity.PaymentInfo) string {
	out := fmt.Sprintf("%s (%s)", p.Method, p.Confidence)
	if p.TotalTerminCount > 0 {
		out += fmt.Sprintf(", %d termin, total %.0f", p.TotalTerminCount, p.TotalAmount)
	}
	return out
}

func formatContact(c *entity.ContactPerson) string {
	if c.IsEmpty() {
		return ""
	}
	var parts []string
	for _, v := range []*string{c.Name, c.Position, c.Phone, c.Email} {
		if s := utils.StrOrEmpty(v); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " / ")
}

func serviceCells(it entity.ServiceLineItem) []string {
	return []string{
		it.Index, it.ServiceName, it.Quantity, it.Location, it.InstallAddress, it.PIC,
		it.Bandwidth, it.InstallCost, it.MonthlyCost, it.AnnualCost, it.Notes,
	}
}

func headerStyle(f *excelize.File) (int, error) {
	id, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D7E4BC"}, Pattern: 1},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return 0, fmt.Errorf("xlsx style: %w", err)
	}
	return id, nil
}

// writeRows writes rows starting at A1 and styles the first one as a header.
func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("xlsx style: %w", err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
