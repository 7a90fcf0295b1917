package pipeline

import (
	"github.com/joseph-ayodele/telkom-contracts/constants"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
	"github.com/joseph-ayodele/telkom-contracts/internal/utils"
)

// Merge folds a page-2 result into a copy of existing. Dates only fill missing ends,
// contact blocks are replaced wholesale when page 2 found anything. existing is not modified.
func Merge(existing *entity.ContractRecord, page2 entity.Page2Result) *entity.ContractRecord {
	if existing == nil {
		existing = entity.NewContractRecord()
	}
	out := existing.Clone()

	out.DateRange = mergeDateRange(out.DateRange, page2.DateRange)

	if !page2.TelkomContact.IsEmpty() {
		out.TelkomContact = page2.TelkomContact.Clone()
	}
	if !page2.CustomerContact.IsEmpty() {
		out.Customer.ContactPerson = page2.CustomerContact.Clone()
	}

	out.SyncContractDates()
	out.ProcessingTimeSeconds += page2.ProcessingTimeSeconds
	out.SourceFiles = append(out.SourceFiles, page2.SourceFiles...)
	out.ConfidenceScore = Score(out)
	return out
}

func mergeDateRange(cur, incoming entity.DateRange) entity.DateRange {
	hadAny := cur.Start != nil || cur.End != nil
	filled := false
	if cur.Start == nil && incoming.Start != nil {
		cur.Start = utils.ClonePtr(incoming.Start)
		filled = true
	}
	if cur.End == nil && incoming.End != nil {
		cur.End = utils.ClonePtr(incoming.End)
		filled = true
	}
	switch {
	case !filled:
	case !hadAny:
		cur.Confidence = incoming.Confidence
	default:
		cur.Confidence = lowerConfidence(cur.Confidence, incoming.Confidence)
	}
	return cur
}

var confidenceRank = map[constants.Confidence]int{
	constants.ConfidenceLow:    0,
	constants.ConfidenceMedium: 1,
	constants.ConfidenceHigh:   2,
}

func lowerConfidence(a, b constants.Confidence) constants.Confidence {
	ra, okA := confidenceRank[a]
	rb, okB := confidenceRank[b]
	switch {
	case !okA:
		return b
	case !okB:
		return a
	case rb < ra:
		return b
	}
	return a
}
