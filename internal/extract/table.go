package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/joseph-ayodele/telkom-contracts/internal/document"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
)

const (
	tableHeaderRows = 2
	minRowCells     = 3
)

var reCellSpace = regexp.MustCompile(`\s+`)

// ServiceItems parses every table block in document order.
func (e *Extractor) ServiceItems(doc *document.Document) []entity.ServiceLineItem {
	items := []entity.ServiceLineItem{}
	for i, markup := range doc.Tables() {
		parsed, err := ParseServiceTable(markup)
		if err != nil {
			e.logger.Warn("extract.table.parse_failed", "table", i, "error", err)
			continue
		}
		items = append(items, parsed...)
	}
	e.logger.Debug("extract.table.ok", "items", len(items))
	return items
}

// ParseServiceTable reads line items from table markup. The first two rows are headers.
// Rows with fewer than three cells, only empty cells, or no service name are dropped.
func ParseServiceTable(markup string) ([]entity.ServiceLineItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse table markup: %w", err)
	}

	var items []entity.ServiceLineItem
	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i < tableHeaderRows {
			return
		}
		cells := row.Find("td, th")
		if cells.Length() < minRowCells {
			return
		}
		texts := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			texts = append(texts, strings.TrimSpace(reCellSpace.ReplaceAllString(cell.Text(), " ")))
		})
		if allEmpty(texts) {
			return
		}
		item := lineItemFromCells(texts)
		if item.ServiceName == "" {
			return
		}
		items = append(items, item)
	})
	return items, nil
}

// lineItemFromCells maps cells left to right onto the eleven line-item columns.
func lineItemFromCells(cells []string) entity.ServiceLineItem {
	var item entity.ServiceLineItem
	fields := []*string{
		&item.Index,
		&item.ServiceName,
		&item.Quantity,
		&item.Location,
		&item.InstallAddress,
		&item.PIC,
		&item.Bandwidth,
		&item.InstallCost,
		&item.MonthlyCost,
		&item.AnnualCost,
		&item.Notes,
	}
	for i, f := range fields {
		if i < len(cells) {
			*f = cells[i]
		}
	}
	return item
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
