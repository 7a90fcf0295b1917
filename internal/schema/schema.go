// Package schema holds the JSON Schema of the ContractRecord output.
package schema

import "github.com/joseph-ayodele/telkom-contracts/constants"

const (
	PatternContractNumber = `K\.TEL\.[^/]+/[^/]+/[^/]+/\d{4}`
	PatternISODate        = `^\d{4}-\d{2}-\d{2}$`
)

// BuildContractRecordSchema returns the record schema (draft 2020-12 subset) as a generic map.
func BuildContractRecordSchema() map[string]any {
	contact := object(map[string]any{
		"name":     nullable("string"),
		"position": nullable("string"),
		"phone":    nullable("string"),
		"email":    nullable("string"),
	}, nil)

	dateRange := object(map[string]any{
		"start":      nullableWith("string", map[string]any{"pattern": PatternISODate}),
		"end":        nullableWith("string", map[string]any{"pattern": PatternISODate}),
		"confidence": map[string]any{"type": "string", "enum": constants.ConfidencesAsStringSlice()},
	}, nil)

	customer := object(map[string]any{
		"name":    nullable("string"),
		"address": nullable("string"),
		// raw labelled values are kept when the NPWP pattern misses
		"tax_id": nullable("string"),
		"representative": nullableObject(map[string]any{
			"name":     nullable("string"),
			"position": nullable("string"),
		}),
		"contact_person": nullableOf(contact),
	}, nil)

	contract := object(map[string]any{
		"contract_number": nullableWith("string", map[string]any{"pattern": PatternContractNumber}),
		"date_range":      nullableOf(dateRange),
	}, nil)

	summary := object(map[string]any{
		"connectivity_count":     nonNegativeInt(),
		"non_connectivity_count": nonNegativeInt(),
		"bundling_count":         nonNegativeInt(),
	}, []string{"connectivity_count", "non_connectivity_count", "bundling_count"})

	itemProps := map[string]any{}
	for _, k := range []string{
		"index", "service_name", "quantity", "location", "install_address", "pic",
		"bandwidth", "install_cost", "monthly_cost", "annual_cost", "notes",
	} {
		itemProps[k] = map[string]any{"type": "string"}
	}
	item := object(itemProps, []string{"service_name"})
	item["properties"].(map[string]any)["service_name"] = map[string]any{"type": "string", "minLength": 1}

	termin := object(map[string]any{
		"number":      map[string]any{"type": "integer", "minimum": 1},
		"period":      map[string]any{"type": "string"},
		"amount":      map[string]any{"type": "number", "minimum": 0},
		"raw_excerpt": map[string]any{"type": "string"},
	}, []string{"number", "amount"})

	payment := object(map[string]any{
		"method":             map[string]any{"type": "string", "enum": constants.PaymentMethodsAsStringSlice()},
		"description":        map[string]any{"type": "string"},
		"confidence":         map[string]any{"type": "string", "enum": constants.ConfidencesAsStringSlice()},
		"termin_list":        map[string]any{"type": "array", "items": termin},
		"total_termin_count": nonNegativeInt(),
		"total_amount":       map[string]any{"type": "number", "minimum": 0},
		"raw_excerpt":        nullable("string"),
	}, []string{"method", "confidence"})

	return object(map[string]any{
		"customer":                customer,
		"contract":                contract,
		"service_summary":         summary,
		"service_items":           map[string]any{"type": "array", "items": item},
		"payment":                 payment,
		"telkom_contact":          nullableOf(contact),
		"date_range":              dateRange,
		"extraction_timestamp":    map[string]any{"type": "string", "minLength": 1},
		"processing_time_seconds": map[string]any{"type": "number", "minimum": 0},
		"confidence_score":        map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"source_files":            map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	}, []string{"customer", "contract", "service_summary", "service_items", "payment", "date_range"})
}

func object(props map[string]any, required []string) map[string]any {
	m := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
	if len(required) > 0 {
		m["required"] = required
	}
	return m
}

func nullable(t string) map[string]any {
	return map[string]any{"type": []string{t, "null"}}
}

func nullableWith(t string, extra map[string]any) map[string]any {
	m := nullable(t)
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func nullableObject(props map[string]any) map[string]any {
	return nullableOf(object(props, nil))
}

func nullableOf(s map[string]any) map[string]any {
	return map[string]any{"anyOf": []any{s, map[string]any{"type": "null"}}}
}

func nonNegativeInt() map[string]any {
	return map[string]any{"type": "integer", "minimum": 0}
}
