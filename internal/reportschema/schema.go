package reportschema

import (
	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/rules"
)

// ReportSchema returns the JSON-Schema (draft 2020-12 subset) accepted for an already-extracted
// credit report.
func ReportSchema() map[string]any {
	bureaus := append(constants.BureausAsStrings(), string(constants.UnknownBureau), "")

	account := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"creditor_name":       map[string]any{"type": "string", "minLength": 1},
			"account_number":      map[string]any{"type": "string"},
			"account_type":        map[string]any{"type": "string"},
			"account_status":      map[string]any{"type": "string"},
			"payment_status":      map[string]any{"type": "string"},
			"bureau":              map[string]any{"type": "string", "enum": bureaus},
			"current_balance":     amountProp(),
			"credit_limit":        amountProp(),
			"high_balance":        amountProp(),
			"monthly_payment":     amountProp(),
			"past_due_amount":     amountProp(),
			"late_30_count":       countProp(),
			"late_60_count":       countProp(),
			"late_90_count":       countProp(),
			"late_120_plus_count": countProp(),
			"is_negative":         map[string]any{"type": "boolean"},
			"is_collection":       map[string]any{"type": "boolean"},
			"is_charge_off":       map[string]any{"type": "boolean"},
			"is_medical":          map[string]any{"type": "boolean"},
			"is_educational":      map[string]any{"type": "boolean"},
			"is_authorized_user":  map[string]any{"type": "boolean"},
			"date_opened":         map[string]any{"type": "string"},
			"date_closed":         map[string]any{"type": "string"},
			"last_payment_date":   map[string]any{"type": "string"},
			"last_reported_date":  map[string]any{"type": "string"},
		},
		"required": []string{"creditor_name"},
	}

	inquiry := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"creditor_name": map[string]any{"type": "string", "minLength": 1},
			"inquiry_date":  map[string]any{"type": "string"},
			"type":          map[string]any{"type": "string", "enum": []string{"hard", "soft"}},
		},
		"required": []string{"creditor_name"},
	}

	record := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type":    map[string]any{"type": "string", "enum": []string{"bankruptcy", "judgment", "tax_lien"}},
			"details": map[string]any{"type": "string"},
			"status":  map[string]any{"type": "string"},
		},
		"required": []string{"type"},
	}

	nullableString := map[string]any{"type": []string{"string", "null"}}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"format": map[string]any{"type": "string"},
			"bureau": map[string]any{"type": "string", "enum": bureaus},
			"personal_info": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":       nullableString,
					"address":    nullableString,
					"ssn_last_4": map[string]any{"type": []string{"string", "null"}, "pattern": `^\d{4}$`},
					"dob":        nullableString,
				},
			},
			"scores": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "integer", "minimum": 300, "maximum": 850},
			},
			"accounts":          map[string]any{"type": "array", "items": account},
			"inquiries":         map[string]any{"type": []string{"array", "null"}, "items": inquiry},
			"public_records":    map[string]any{"type": []string{"array", "null"}, "items": record},
			"extraction_method": map[string]any{"type": "string"},
			"raw_text":          map[string]any{"type": "string"},
		},
		"required": []string{"accounts"},
	}
}

// ViolationsSchema returns the schema for a JSON array of violations fed straight to the strategy builder.
// Types are restricted to the catalog's taxonomy.
func ViolationsSchema(catalog *rules.Catalog) map[string]any {
	var types []string
	for _, t := range catalog.Types() {
		types = append(types, string(t))
	}

	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type":             map[string]any{"type": "string", "enum": types},
				"description":      map[string]any{"type": "string"},
				"severity":         map[string]any{"type": "string", "enum": []string{"critical", "high", "medium", "low"}},
				"estimated_impact": map[string]any{"type": "integer", "minimum": 0},
				"priority":         map[string]any{"type": "integer", "minimum": 0},
				"dispute_strategy": map[string]any{"type": "string"},
				"account": map[string]any{
					"type": []string{"object", "null"},
					"properties": map[string]any{
						"creditor_name": map[string]any{"type": "string"},
					},
				},
			},
			"required": []string{"type"},
		},
	}
}

func amountProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0}
}

func countProp() map[string]any {
	return map[string]any{"type": "integer", "minimum": 0}
}
