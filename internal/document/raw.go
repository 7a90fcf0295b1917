package document

import (
	"encoding/json"
	"fmt"
)

// RawDocument is layout-engine output of one of the recognized shapes.
// The set of variants is closed; Normalize switches over all of them.
type RawDocument interface {
	rawDocument()
}

// AggregatePage is one page of PP-StructureV3 output.
type AggregatePage struct {
	Blocks   []Block  // from parsing_res_list
	RecTexts []string // from overall_ocr_res.rec_texts
}

// AggregateResult is the nested engine output: one object per page, or an array of them.
type AggregateResult struct {
	Pages []AggregatePage
}

// Line is one element of a plain line list.
type Line struct {
	Text  string
	Label string
}

// LineList is a JSON array of {"text": ...} (or {"block_content": ..., "block_label": ...}) objects.
type LineList struct {
	Lines []Line
}

// TextBlob is a single newline-delimited JSON string.
type TextBlob struct {
	Text string
}

// StringList is a bare JSON array of strings.
type StringList struct {
	Items []string
}

// Unrecognized is any other input; it normalizes to an empty document.
type Unrecognized struct {
	Reason string
}

func (AggregateResult) rawDocument() {}
func (LineList) rawDocument()        {}
func (TextBlob) rawDocument()        {}
func (StringList) rawDocument()      {}
func (Unrecognized) rawDocument()    {}

// Decode classifies JSON bytes into a RawDocument. It never fails: invalid JSON
// and unknown shapes come back as Unrecognized.
func Decode(data []byte) RawDocument {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Unrecognized{Reason: fmt.Sprintf("invalid json: %v", err)}
	}
	return FromValue(v)
}

// FromValue classifies an already-decoded JSON value. Shapes are tried in order:
// aggregate, line list, text blob, string list.
func FromValue(v any) RawDocument {
	if agg, ok := asAggregate(v); ok {
		return agg
	}
	if ll, ok := asLineList(v); ok {
		return ll
	}
	if s, ok := v.(string); ok {
		return TextBlob{Text: s}
	}
	if sl, ok := asStringList(v); ok {
		return sl
	}
	return Unrecognized{Reason: fmt.Sprintf("unsupported shape %T", v)}
}

func asAggregate(v any) (AggregateResult, bool) {
	switch t := v.(type) {
	case map[string]any:
		page, ok := aggregatePage(t)
		if !ok {
			return AggregateResult{}, false
		}
		return AggregateResult{Pages: []AggregatePage{page}}, true
	case []any:
		if len(t) == 0 {
			return AggregateResult{}, false
		}
		pages := make([]AggregatePage, 0, len(t))
		for _, el := range t {
			m, ok := el.(map[string]any)
			if !ok {
				return AggregateResult{}, false
			}
			page, ok := aggregatePage(m)
			if !ok {
				return AggregateResult{}, false
			}
			pages = append(pages, page)
		}
		return AggregateResult{Pages: pages}, true
	}
	return AggregateResult{}, false
}

// aggregatePage reads one page object; save_to_json output may wrap it under "res".
func aggregatePage(m map[string]any) (AggregatePage, bool) {
	if inner, ok := m["res"].(map[string]any); ok {
		if _, has := m["parsing_res_list"]; !has {
			m = inner
		}
	}

	var page AggregatePage
	found := false

	if list, ok := m["parsing_res_list"].([]any); ok {
		found = true
		page.Blocks = make([]Block, 0, len(list))
		for _, el := range list {
			bm, ok := el.(map[string]any)
			if !ok {
				continue
			}
			page.Blocks = append(page.Blocks, Block{
				Content: stringField(bm, "block_content"),
				Label:   stringField(bm, "block_label"),
			})
		}
	}

	if ocr, ok := m["overall_ocr_res"].(map[string]any); ok {
		if texts, ok := ocr["rec_texts"].([]any); ok {
			found = true
			page.RecTexts = make([]string, 0, len(texts))
			for _, t := range texts {
				s, _ := t.(string)
				page.RecTexts = append(page.RecTexts, s)
			}
		}
	}
	return page, found
}

func asLineList(v any) (LineList, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return LineList{}, false
	}
	lines := make([]Line, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			return LineList{}, false
		}
		switch {
		case hasString(m, "text"):
			lines = append(lines, Line{Text: stringField(m, "text"), Label: stringField(m, "label")})
		case hasString(m, "block_content"):
			lines = append(lines, Line{Text: stringField(m, "block_content"), Label: stringField(m, "block_label")})
		default:
			return LineList{}, false
		}
	}
	return LineList{Lines: lines}, true
}

func asStringList(v any) (StringList, bool) {
	arr, ok := v.([]any)
	if !ok {
		return StringList{}, false
	}
	items := make([]string, 0, len(arr))
	for _, el := range arr {
		s, ok := el.(string)
		if !ok {
			return StringList{}, false
		}
		items = append(items, s)
	}
	return StringList{Items: items}, true
}

func hasString(m map[string]any, key string) bool {
	_, ok := m[key].(string)
	return ok
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func jsonValid(data []byte) bool {
	return json.Valid(data)
}
