// Package pipeline assembles contract records from normalized documents and merges
// the second page into an existing record.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/telkom-contracts/constants"
	"github.com/joseph-ayodele/telkom-contracts/internal/common"
	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/extract"
)

// Config tunes the processor. Zero values fall back to the extractor defaults.
type Config struct {
	Extract        extract.Options
	ParallelFields bool
}

// ConfigFrom maps the application config section onto the processor config.
func ConfigFrom(c common.ExtractConfig) Config {
	return Config{
		ParallelFields: c.ParallelFields,
		Extract: extract.Options{
			PaymentWindow:     c.PaymentWindow,
			ContactWindow:     c.ContactWindow,
			CustomerLookahead: c.CustomerLookahead,
		},
	}
}

// Processor runs the field extractors over one page at a time.
type Processor struct {
	logger    *slog.Logger
	cfg       Config
	extractor *extract.Extractor
}

func NewProcessor(cfg Config, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:    logger,
		cfg:       cfg,
		extractor: extract.New(cfg.Extract, logger),
	}
}

// Outcome is the result of processing a group of result files.
type Outcome struct {
	Record     *entity.ContractRecord
	Status     constants.RunStatus
	LoadErrors []error
}

// ExtractPage1 builds a record from the first page. It never fails: an extractor that
// panics leaves its slot at the default value.
func (p *Processor) ExtractPage1(ctx context.Context, doc *document.Document) *entity.ContractRecord {
	start := time.Now()
	logger := common.LoggerFromContext(ctx, p.logger)
	if doc == nil {
		doc = document.Empty()
	}

	rec := entity.NewContractRecord()
	p.runFields(logger, p.page1Fields(doc, rec))
	// the summary fallback counts service items, so it runs after the table
	runField(logger, "service_summary", func() {
		rec.ServiceSummary = p.extractor.ServiceSummary(doc, rec.ServiceItems)
	})

	rec.SyncContractDates()
	rec.ProcessingTimeSeconds = time.Since(start).Seconds()
	rec.ConfidenceScore = Score(rec)

	logger.Info("extract.page1.ok",
		"mode", doc.Mode().String(),
		"elements", doc.Len(),
		"contract_number", rec.Contract.ContractNumber != nil,
		"service_items", len(rec.ServiceItems),
		"payment_method", string(rec.Payment.Method),
		"confidence_score", rec.ConfidenceScore,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec
}

func (p *Processor) page1Fields(doc *document.Document, rec *entity.ContractRecord) []field {
	return []field{
		{name: "contract_number", run: func() {
			if v, ok := p.extractor.ContractNumber(doc); ok {
				rec.Contract.ContractNumber = &v
			}
		}},
		{name: "customer", run: func() {
			rec.Customer = p.extractor.Customer(doc)
		}},
		{name: "telkom_contact", run: func() {
			rec.TelkomContact = p.extractor.TelkomContact(doc)
		}},
		{name: "service_items", run: func() {
			if items := p.extractor.ServiceItems(doc); items != nil {
				rec.ServiceItems = items
			}
		}},
		{name: "payment", run: func() {
			rec.Payment = p.extractor.Payment(doc)
		}},
		{name: "date_range", run: func() {
			rec.DateRange = p.extractor.DateRange(doc, false)
		}},
	}
}

// ExtractPage2 reads what the second page contributes: the validity dates and the contact blocks.
func (p *Processor) ExtractPage2(ctx context.Context, doc *document.Document) entity.Page2Result {
	start := time.Now()
	logger := common.LoggerFromContext(ctx, p.logger)
	if doc == nil {
		doc = document.Empty()
	}

	var res entity.Page2Result
	p.runFields(logger, []field{
		{name: "date_range", run: func() {
			res.DateRange = p.extractor.DateRange(doc, true)
		}},
		{name: "contacts", run: func() {
			res.TelkomContact, res.CustomerContact = p.extractor.Contacts(doc)
		}},
	})
	res.ProcessingTimeSeconds = time.Since(start).Seconds()

	logger.Info("extract.page2.ok",
		"elements", doc.Len(),
		"date_start", res.DateRange.Start != nil,
		"date_end", res.DateRange.End != nil,
		"telkom_contact_fields", res.TelkomContact.FilledCount(),
		"customer_contact_fields", res.CustomerContact.FilledCount(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

// ProcessFiles loads the page-1 and page-2 result files, extracts both pages and merges them.
// Unreadable files are skipped and reported in LoadErrors; the record is always present.
func (p *Processor) ProcessFiles(ctx context.Context, page1Paths, page2Paths []string) *Outcome {
	logger := common.LoggerFromContext(ctx, p.logger)

	doc1, loaded1, errs1 := document.LoadFiles(page1Paths, logger)
	rec := p.ExtractPage1(ctx, doc1)
	rec.SourceFiles = append(rec.SourceFiles, loaded1...)

	out := &Outcome{Record: rec, LoadErrors: errs1}
	loaded := len(loaded1)

	if len(page2Paths) > 0 {
		doc2, loaded2, errs2 := document.LoadFiles(page2Paths, logger)
		out.LoadErrors = append(out.LoadErrors, errs2...)
		if len(loaded2) > 0 {
			page2 := p.ExtractPage2(ctx, doc2)
			page2.SourceFiles = loaded2
			out.Record = Merge(rec, page2)
			loaded += len(loaded2)
		}
	}

	if loaded == 0 {
		out.Status = constants.RunStatusFailed
	} else {
		out.Status = RecordStatus(out.Record)
	}
	logger.Info("pipeline.files.ok",
		"page1_files", len(page1Paths),
		"page2_files", len(page2Paths),
		"load_errors", len(out.LoadErrors),
		"status", string(out.Status),
	)
	return out
}
