// Package locate holds the stateless scans every field extractor is built on.
// Each function takes the sequence and a start index and returns positions, so
// callers chain searches explicitly instead of sharing a cursor.
package locate

import "strings"

// NotFound is the index returned when a scan has no match.
const NotFound = -1

// CustomerMarkerAlternates are retried, in order, when a customer-section marker is missing.
var CustomerMarkerAlternates = []string{
	"PELANGGAN CUSTOMER",
	"2.PELANGGAN CUSTOMER",
	"CUSTOMER",
	"Identitas Perusahaan/Institusi",
}

// Hit is one label match: Value is the element after the label, at Index.
type Hit struct {
	Value string
	Index int
}

// FindSectionMarker returns the index of the first element containing marker.
// Customer-section markers fall back to CustomerMarkerAlternates.
func FindSectionMarker(seq []string, marker string) int {
	if i := indexContaining(seq, 0, marker); i != NotFound {
		return i
	}
	if !isCustomerMarker(marker) {
		return NotFound
	}
	for _, alt := range CustomerMarkerAlternates {
		if i := indexContaining(seq, 0, alt); i != NotFound {
			return i
		}
	}
	return NotFound
}

func isCustomerMarker(marker string) bool {
	return strings.Contains(marker, "PELANGGAN") || strings.Contains(marker, "CUSTOMER")
}

// FindNextLabeledValue scans from start for an element equal to or containing label and
// returns the element after it together with that element's index. A label in the last
// position has no value and is not a match.
func FindNextLabeledValue(seq []string, start int, label string) (string, int, bool) {
	if start < 0 {
		start = 0
	}
	for i := start; i < len(seq)-1; i++ {
		if seq[i] == label || strings.Contains(seq[i], label) {
			return seq[i+1], i + 1, true
		}
	}
	return "", NotFound, false
}

// FindAllLabeledValues collects every label hit from start, in order.
func FindAllLabeledValues(seq []string, start int, label string) []Hit {
	var hits []Hit
	for pos := start; pos < len(seq); {
		value, next, ok := FindNextLabeledValue(seq, pos, label)
		if !ok {
			break
		}
		hits = append(hits, Hit{Value: value, Index: next})
		pos = next + 1
	}
	return hits
}

// IndexContaining returns the first index >= start whose element contains needle.
func IndexContaining(seq []string, start int, needle string) int {
	return indexContaining(seq, start, needle)
}

func indexContaining(seq []string, start int, needle string) int {
	if start < 0 {
		start = 0
	}
	for i := start; i < len(seq); i++ {
		if strings.Contains(seq[i], needle) {
			return i
		}
	}
	return NotFound
}

// Window returns up to n elements starting at from, clipped to the sequence.
func Window(seq []string, from, n int) []string {
	if from < 0 {
		from = 0
	}
	if from >= len(seq) || n <= 0 {
		return nil
	}
	end := from + n
	if end > len(seq) {
		end = len(seq)
	}
	return seq[from:end]
}
