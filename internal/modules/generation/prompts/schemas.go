package prompts

import "sort"

// OpenAI strict mode requires additionalProperties=false and every property
// listed in required, so optional values are modelled as nullable instead.

func object(properties map[string]any) map[string]any {
	req := make([]string, 0, len(properties))
	for k := range properties {
		req = append(req, k)
	}
	sort.Strings(req)
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             req,
		"additionalProperties": false,
	}
}

func arrayOf(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

func StringSchema() map[string]any {
	return map[string]any{"type": "string"}
}

func StringArraySchema() map[string]any {
	return arrayOf(StringSchema())
}

func StringOrNullSchema() map[string]any {
	return map[string]any{"type": []any{"string", "null"}}
}

func NumberSchema() map[string]any {
	return map[string]any{"type": "number"}
}

func BoolSchema() map[string]any {
	return map[string]any{"type": "boolean"}
}

func EnumSchema(values ...string) map[string]any {
	arr := make([]any, 0, len(values))
	for _, v := range values {
		arr = append(arr, v)
	}
	return map[string]any{"type": "string", "enum": arr}
}

func SymptomsSchema() map[string]any {
	return object(map[string]any{
		"symptoms": arrayOf(object(map[string]any{
			"id":          StringSchema(),
			"name":        StringSchema(),
			"description": StringSchema(),
			"is_red_flag": BoolSchema(),
			"category":    StringSchema(),
		})),
	})
}

func QuestionsSchema() map[string]any {
	return object(map[string]any{
		"questions": arrayOf(object(map[string]any{
			"id":        StringSchema(),
			"text":      StringSchema(),
			"rationale": StringSchema(),
			"options": arrayOf(object(map[string]any{
				"id":                    StringSchema(),
				"text":                  StringSchema(),
				"clinical_significance": StringSchema(),
			})),
		})),
	})
}

func DiagnosisSchema() map[string]any {
	return object(map[string]any{
		"diagnoses": arrayOf(object(map[string]any{
			"name":                   StringSchema(),
			"icd_code":               StringOrNullSchema(),
			"probability":            EnumSchema("high", "moderate", "low"),
			"confidence":             NumberSchema(),
			"description":            StringSchema(),
			"supporting_findings":    StringArraySchema(),
			"contradicting_findings": StringArraySchema(),
			"red_flags":              StringArraySchema(),
			"next_steps":             StringArraySchema(),
		})),
		"urgency":          EnumSchema("emergency", "urgent", "routine"),
		"educational_note": StringSchema(),
	})
}
