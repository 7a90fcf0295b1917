package constants

import (
	"strings"
)

// PaymentMethod is how the contract is billed.
type PaymentMethod string

const (
	PaymentOneTime   PaymentMethod = "one_time"
	PaymentRecurring PaymentMethod = "recurring"
	PaymentTermin    PaymentMethod = "termin"
	PaymentUnknown   PaymentMethod = "unknown"
)

var allPaymentMethods = []PaymentMethod{
	PaymentOneTime,
	PaymentRecurring,
	PaymentTermin,
	PaymentUnknown,
}

// Confidence grades a heuristic detection.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

var allConfidences = []Confidence{ConfidenceHigh, ConfidenceMedium, ConfidenceLow}

func PaymentMethodsAsStringSlice() []string {
	result := make([]string, len(allPaymentMethods))
	for i, m := range allPaymentMethods {
		result[i] = string(m)
	}
	return result
}

func ConfidencesAsStringSlice() []string {
	result := make([]string, len(allConfidences))
	for i, c := range allConfidences {
		result[i] = string(c)
	}
	return result
}

// CanonicalizePaymentMethod maps free-form labels (Indonesian or English) onto a PaymentMethod.
// Unknown input returns PaymentUnknown, false.
func CanonicalizePaymentMethod(input string) (PaymentMethod, bool) {
	if input == "" {
		return PaymentUnknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]PaymentMethod{
		"one time":        PaymentOneTime,
		"one-time":        PaymentOneTime,
		"one time charge": PaymentOneTime,
		"otc":             PaymentOneTime,
		"sekali bayar":    PaymentOneTime,
		"monthly":         PaymentRecurring,
		"bulanan":         PaymentRecurring,
		"berlangganan":    PaymentRecurring,
		"installment":     PaymentTermin,
		"cicilan":         PaymentTermin,
		"bertahap":        PaymentTermin,
	}

	if m, ok := synonyms[normalized]; ok {
		return m, true
	}

	for _, m := range allPaymentMethods {
		if normalized == string(m) {
			return m, true
		}
	}

	return PaymentUnknown, false
}
