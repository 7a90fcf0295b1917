package pipeline

import (
	"math"

	"github.com/joseph-ayodele/telkom-contracts/constants"
	"github.com/joseph-ayodele/telkom-contracts/internal/entity"
)

// Score is a naive record confidence: each recovered key field adds its weight.
func Score(r *entity.ContractRecord) float64 {
	if r == nil {
		return 0
	}
	score := 0.0
	if r.Contract.ContractNumber != nil {
		score += 0.2
	}
	if r.Customer.Name != nil {
		score += 0.15
	}
	if r.Customer.Address != nil {
		score += 0.05
	}
	if r.Customer.TaxID != nil {
		score += 0.05
	}
	if len(r.ServiceItems) > 0 {
		score += 0.15
	}
	switch {
	case r.Payment.Method == constants.PaymentUnknown:
	case r.Payment.Confidence == constants.ConfidenceHigh:
		score += 0.15
	case r.Payment.Confidence == constants.ConfidenceMedium:
		score += 0.1
	default:
		score += 0.05
	}
	switch {
	case r.DateRange.Complete():
		score += 0.15
	case r.DateRange.Start != nil || r.DateRange.End != nil:
		score += 0.05
	}
	if !r.TelkomContact.IsEmpty() {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return math.Round(score*100) / 100
}

// RecordStatus grades a record by its key fields.
func RecordStatus(r *entity.ContractRecord) constants.RunStatus {
	if r == nil {
		return constants.RunStatusEmpty
	}
	keys := []bool{
		r.Contract.ContractNumber != nil,
		r.Customer.Name != nil,
		len(r.ServiceItems) > 0,
		r.DateRange.Complete(),
		!r.TelkomContact.IsEmpty(),
	}
	n := 0
	for _, k := range keys {
		if k {
			n++
		}
	}
	switch n {
	case len(keys):
		return constants.RunStatusOK
	case 0:
		return constants.RunStatusEmpty
	}
	return constants.RunStatusPartial
}
