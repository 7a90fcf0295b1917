// Package extract recovers typed contract fields from a normalized document.
// Every extractor only reads the document and returns its own value.
package extract

import (
	"log/slog"

	"github.com/joseph-ayodele/telkom-contracts/internal/document"
)

// Options tunes the bounded windows used by the extractors.
type Options struct {
	PaymentWindow     int // elements after a payment header, default 20
	ContactWindow     int // elements after the contact-person anchor, default 120
	CustomerLookahead int // elements scanned after a fallback customer name, default 4
}

// Extractor bundles the field extractors with their options.
type Extractor struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PaymentWindow <= 0 {
		opts.PaymentWindow = 20
	}
	if opts.ContactWindow <= 0 {
		opts.ContactWindow = 120
	}
	if opts.CustomerLookahead <= 0 {
		opts.CustomerLookahead = 4
	}
	return &Extractor{opts: opts, logger: logger}
}

// Strategy is one way of recovering a value. ok=false hands over to the next strategy.
type Strategy[T any] struct {
	Name string
	Run  func(doc *document.Document) (T, bool)
}

// firstOf runs strategies in order and returns the first success and its name.
func firstOf[T any](doc *document.Document, strategies []Strategy[T]) (T, string, bool) {
	for _, s := range strategies {
		if v, ok := s.Run(doc); ok {
			return v, s.Name, true
		}
	}
	var zero T
	return zero, "", false
}
