package pipeline

import (
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// field is one extractor bound to the record slot it fills.
type field struct {
	name string
	run  func()
}

// runFields runs every field, in parallel when configured. Each field writes only its own slot.
func (p *Processor) runFields(logger *slog.Logger, fields []field) {
	if !p.cfg.ParallelFields {
		for _, f := range fields {
			runField(logger, f.name, f.run)
		}
		return
	}

	var g errgroup.Group
	for _, f := range fields {
		g.Go(func() error {
			runField(logger, f.name, f.run)
			return nil
		})
	}
	_ = g.Wait()
}

// runField isolates a single extractor. A panic is logged and the slot keeps its default.
func runField(logger *slog.Logger, name string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("extract.field.panic", "field", name, "error", fmt.Sprint(r))
			ok = false
		}
	}()
	fn()
	return true
}
