package document

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// Mode says which canonical shape a Document holds.
type Mode int

const (
	ModeTokens Mode = iota
	ModeBlocks
)

func (m Mode) String() string {
	if m == ModeBlocks {
		return "blocks"
	}
	return "tokens"
}

const LabelTable = "table"
const LabelText = "text"

// Block is a detected region with its semantic label.
type Block struct {
	Content string
	Label   string
}

// Document is the canonical, read-only input for extractors: an ordered
// sequence of blocks or of tokens. Positions are meaningful and never shuffled.
type Document struct {
	mode   Mode
	blocks []Block
	tokens []string
	texts  []string
	flat   []string // texts with table markup reduced to cell text
}

// NewBlockDocument builds a block-mode document; content is cleaned, order kept.
func NewBlockDocument(blocks []Block) *Document {
	d := &Document{mode: ModeBlocks, blocks: make([]Block, len(blocks))}
	d.texts = make([]string, len(blocks))
	d.flat = make([]string, len(blocks))
	for i, b := range blocks {
		label := strings.ToLower(strings.TrimSpace(b.Label))
		content := cleanText(b.Content)
		flat := content
		if label == LabelTable {
			content = cleanMarkup(b.Content)
			flat = tableText(content)
		}
		d.blocks[i] = Block{Content: content, Label: label}
		d.texts[i] = content
		d.flat[i] = flat
	}
	return d
}

// NewTokenDocument builds a token-mode document; empty tokens are kept.
func NewTokenDocument(tokens []string) *Document {
	d := &Document{mode: ModeTokens, tokens: make([]string, len(tokens))}
	for i, t := range tokens {
		d.tokens[i] = cleanText(t)
	}
	d.texts = d.tokens
	d.flat = d.tokens
	return d
}

// Empty returns a token-mode document with no elements.
func Empty() *Document {
	return NewTokenDocument(nil)
}

func (d *Document) Mode() Mode { return d.mode }

// Len is the number of elements.
func (d *Document) Len() int { return len(d.texts) }

// Texts returns the per-element text. Callers must not modify it.
func (d *Document) Texts() []string { return d.texts }

// Blocks returns a copy of the blocks (nil in token mode).
func (d *Document) Blocks() []Block {
	if d.mode != ModeBlocks {
		return nil
	}
	return append([]Block(nil), d.blocks...)
}

// Tables returns the content of every table-labelled block, in order.
func (d *Document) Tables() []string {
	var out []string
	for _, b := range d.blocks {
		if b.Label == LabelTable && b.Content != "" {
			out = append(out, b.Content)
		}
	}
	return out
}

// FlatTexts is Texts with every table block replaced by its cell text.
// Callers must not modify it.
func (d *Document) FlatTexts() []string { return d.flat }

// FullText joins FlatTexts with single spaces, so table cells are searchable as words.
func (d *Document) FullText() string {
	parts := make([]string, 0, len(d.flat))
	for _, t := range d.flat {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Joined is the prose text with elements separated by single spaces. Table blocks
// are left out, so pattern scans never run across cell boundaries.
func (d *Document) Joined() string {
	parts := make([]string, 0, len(d.texts))
	for i, t := range d.texts {
		if d.mode == ModeBlocks && d.blocks[i].Label == LabelTable {
			continue
		}
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Normalize converts any RawDocument into a Document. It is total.
func Normalize(raw RawDocument) *Document {
	switch r := raw.(type) {
	case AggregateResult:
		return normalizeAggregate(r)
	case LineList:
		labelled := false
		for _, l := range r.Lines {
			if l.Label != "" {
				labelled = true
				break
			}
		}
		if labelled {
			blocks := make([]Block, len(r.Lines))
			for i, l := range r.Lines {
				blocks[i] = Block{Content: l.Text, Label: labelOrText(l.Label)}
			}
			return NewBlockDocument(blocks)
		}
		tokens := make([]string, len(r.Lines))
		for i, l := range r.Lines {
			tokens[i] = l.Text
		}
		return NewTokenDocument(tokens)
	case TextBlob:
		return NewTokenDocument(strings.Split(strings.ReplaceAll(r.Text, "\r\n", "\n"), "\n"))
	case StringList:
		return NewTokenDocument(r.Items)
	case Unrecognized:
		slog.Default().Debug("document.normalize.unrecognized", "reason", r.Reason)
		return Empty()
	default:
		slog.Default().Warn("document.normalize.unknown_variant", "type", raw)
		return Empty()
	}
}

// Pages with parsing_res_list make the whole document block-mode; pages that only
// carry rec_texts then contribute their tokens as text blocks, in page order.
func normalizeAggregate(r AggregateResult) *Document {
	hasBlocks := false
	for _, p := range r.Pages {
		if p.Blocks != nil {
			hasBlocks = true
			break
		}
	}
	if hasBlocks {
		var blocks []Block
		for _, p := range r.Pages {
			if p.Blocks != nil {
				blocks = append(blocks, p.Blocks...)
				continue
			}
			for _, t := range p.RecTexts {
				blocks = append(blocks, Block{Content: t, Label: LabelText})
			}
		}
		return NewBlockDocument(blocks)
	}
	var tokens []string
	for _, p := range r.Pages {
		tokens = append(tokens, p.RecTexts...)
	}
	return NewTokenDocument(tokens)
}

// Concat joins documents in order. The result is block-mode if any input is.
func Concat(docs ...*Document) *Document {
	anyBlocks := false
	for _, d := range docs {
		if d != nil && d.mode == ModeBlocks {
			anyBlocks = true
			break
		}
	}
	if !anyBlocks {
		var tokens []string
		for _, d := range docs {
			if d != nil {
				tokens = append(tokens, d.tokens...)
			}
		}
		return NewTokenDocument(tokens)
	}
	var blocks []Block
	for _, d := range docs {
		if d == nil {
			continue
		}
		if d.mode == ModeBlocks {
			blocks = append(blocks, d.blocks...)
			continue
		}
		for _, t := range d.tokens {
			blocks = append(blocks, Block{Content: t, Label: LabelText})
		}
	}
	return NewBlockDocument(blocks)
}

func labelOrText(label string) string {
	if strings.TrimSpace(label) == "" {
		return LabelText
	}
	return label
}

var (
	reSpaces   = regexp.MustCompile(`[ \t\x{00A0}]+`)
	reNewlines = regexp.MustCompile(`\s*\n\s*`)
)

// cleanText applies NFKC and collapses whitespace runs, keeping single newlines.
func cleanText(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = reSpaces.ReplaceAllString(s, " ")
	s = reNewlines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// tableText flattens table markup to its cell texts, row by row.
func tableText(markup string) string {
	if markup == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	var cells []string
	doc.Find("td, th").Each(func(_ int, c *goquery.Selection) {
		if t := cleanText(c.Text()); t != "" {
			cells = append(cells, strings.ReplaceAll(t, "\n", " "))
		}
	})
	if len(cells) == 0 {
		return cleanText(doc.Text())
	}
	return strings.Join(cells, " ")
}

// cleanMarkup only normalizes the unicode form; markup whitespace is left to the parser.
func cleanMarkup(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}
