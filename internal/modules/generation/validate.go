package generation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Every parser here works on the decoded JSON object and rejects rather than
// guesses when a required field is missing or mistyped.

func parseSymptoms(obj map[string]any) ([]Symptom, error) {
	items, err := requireArray(obj, "symptoms")
	if err != nil {
		return nil, err
	}
	if len(items) < MinSymptoms || len(items) > MaxSymptoms {
		return nil, fmt.Errorf("expected %d-%d symptoms, got %d", MinSymptoms, MaxSymptoms, len(items))
	}
	out := make([]Symptom, 0, len(items))
	seenID := map[string]bool{}
	seenName := map[string]bool{}
	for i, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("symptoms[%d]: not an object", i)
		}
		s := Symptom{}
		if s.ID, err = requireString(m, "id"); err != nil {
			return nil, fmt.Errorf("symptoms[%d]: %w", i, err)
		}
		if s.Name, err = requireString(m, "name"); err != nil {
			return nil, fmt.Errorf("symptoms[%d]: %w", i, err)
		}
		if s.IsRedFlag, err = requireBool(m, "is_red_flag"); err != nil {
			return nil, fmt.Errorf("symptoms[%d]: %w", i, err)
		}
		if s.Description, err = requireString(m, "description"); err != nil {
			return nil, fmt.Errorf("symptoms[%d]: %w", i, err)
		}
		if s.Category, err = requireString(m, "category"); err != nil {
			return nil, fmt.Errorf("symptoms[%d]: %w", i, err)
		}
		s.Category = strings.ToLower(s.Category)
		idKey, nameKey := foldKey(s.ID), foldKey(s.Name)
		if seenID[idKey] {
			return nil, fmt.Errorf("duplicate symptom id %q", s.ID)
		}
		if seenName[nameKey] {
			return nil, fmt.Errorf("duplicate symptom name %q", s.Name)
		}
		seenID[idKey], seenName[nameKey] = true, true
		out = append(out, s)
	}
	return out, nil
}

func parseQuestions(obj map[string]any) ([]Question, error) {
	items, err := requireArray(obj, "questions")
	if err != nil {
		return nil, err
	}
	if len(items) != QuestionCount {
		return nil, fmt.Errorf("expected exactly %d questions, got %d", QuestionCount, len(items))
	}
	out := make([]Question, 0, len(items))
	seenID := map[string]bool{}
	for i, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("questions[%d]: not an object", i)
		}
		q := Question{}
		if q.Text, err = requireString(m, "text"); err != nil {
			return nil, fmt.Errorf("questions[%d]: %w", i, err)
		}
		if q.ID, err = requireString(m, "id"); err != nil {
			return nil, fmt.Errorf("questions[%d]: %w", i, err)
		}
		if seenID[foldKey(q.ID)] {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		seenID[foldKey(q.ID)] = true
		if q.Rationale, err = requireString(m, "rationale"); err != nil {
			return nil, fmt.Errorf("questions[%d]: %w", i, err)
		}
		if q.Options, err = parseOptions(m); err != nil {
			return nil, fmt.Errorf("questions[%d]: %w", i, err)
		}
		out = append(out, q)
	}
	return out, nil
}

func parseOptions(m map[string]any) ([]Option, error) {
	items, err := requireArray(m, "options")
	if err != nil {
		return nil, err
	}
	if len(items) != OptionsPerQuestion {
		return nil, fmt.Errorf("expected exactly %d options, got %d", OptionsPerQuestion, len(items))
	}
	out := make([]Option, 0, len(items))
	seen := map[string]bool{}
	for i, raw := range items {
		om, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("options[%d]: not an object", i)
		}
		o := Option{}
		if o.ID, err = requireString(om, "id"); err != nil {
			return nil, fmt.Errorf("options[%d]: %w", i, err)
		}
		if o.Text, err = requireString(om, "text"); err != nil {
			return nil, fmt.Errorf("options[%d]: %w", i, err)
		}
		if o.ClinicalSignificance, err = requireString(om, "clinical_significance"); err != nil {
			return nil, fmt.Errorf("options[%d]: %w", i, err)
		}
		if seen[foldKey(o.ID)] {
			return nil, fmt.Errorf("duplicate option id %q", o.ID)
		}
		seen[foldKey(o.ID)] = true
		out = append(out, o)
	}
	return out, nil
}

func parseDiagnosis(obj map[string]any) (*DiagnosisResult, error) {
	items, err := requireArray(obj, "diagnoses")
	if err != nil {
		return nil, err
	}
	if len(items) < MinDiagnoses || len(items) > MaxDiagnoses {
		return nil, fmt.Errorf("expected %d-%d diagnoses, got %d", MinDiagnoses, MaxDiagnoses, len(items))
	}
	res := &DiagnosisResult{Diagnoses: make([]Diagnosis, 0, len(items))}
	seen := map[string]bool{}
	for i, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("diagnoses[%d]: not an object", i)
		}
		d, err := parseOneDiagnosis(m)
		if err != nil {
			return nil, fmt.Errorf("diagnoses[%d]: %w", i, err)
		}
		if seen[foldKey(d.Name)] {
			return nil, fmt.Errorf("duplicate diagnosis %q", d.Name)
		}
		seen[foldKey(d.Name)] = true
		res.Diagnoses = append(res.Diagnoses, d)
	}
	if res.Urgency, err = requireEnum(obj, "urgency", UrgencyEmergency, UrgencyUrgent, UrgencyRoutine); err != nil {
		return nil, err
	}
	if res.EducationalNote, err = requireString(obj, "educational_note"); err != nil {
		return nil, err
	}
	return res, nil
}

func parseOneDiagnosis(m map[string]any) (Diagnosis, error) {
	var (
		d   Diagnosis
		err error
	)
	if d.Name, err = requireString(m, "name"); err != nil {
		return d, err
	}
	if d.Description, err = requireString(m, "description"); err != nil {
		return d, err
	}
	if d.Probability, err = requireEnum(m, "probability", ProbabilityHigh, ProbabilityModerate, ProbabilityLow); err != nil {
		return d, err
	}
	if d.Confidence, err = requireConfidence(m, "confidence"); err != nil {
		return d, err
	}
	code, err := optionalString(m, "icd_code")
	if err != nil {
		return d, err
	}
	if code != "" {
		code = strings.ToUpper(code)
		d.ICDCode = &code
	}
	lists := []struct {
		key string
		dst *[]string
	}{
		{"supporting_findings", &d.SupportingFindings},
		{"contradicting_findings", &d.ContradictingFindings},
		{"red_flags", &d.RedFlags},
		{"next_steps", &d.NextSteps},
	}
	for _, l := range lists {
		if *l.dst, err = requireStringList(m, l.key); err != nil {
			return d, err
		}
	}
	return d, nil
}

func requireArray(m map[string]any, key string) ([]any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("missing %s", key)
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected array", key)
	}
	return arr, nil
}

func requireString(m map[string]any, key string) (string, error) {
	s, err := optionalString(m, key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("missing %s", key)
	}
	return s, nil
}

func optionalString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string", key)
	}
	return strings.TrimSpace(s), nil
}

func requireBool(m map[string]any, key string) (bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return false, fmt.Errorf("missing %s", key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: expected boolean", key)
	}
	return b, nil
}

func requireEnum(m map[string]any, key string, allowed ...string) (string, error) {
	s, err := requireString(m, key)
	if err != nil {
		return "", err
	}
	norm := strings.ToLower(s)
	for _, a := range allowed {
		if norm == a {
			return a, nil
		}
	}
	return "", fmt.Errorf("%s: %q is not one of %s", key, s, strings.Join(allowed, "|"))
}

// requireConfidence accepts numbers and numeric strings and clamps into [0,1].
func requireConfidence(m map[string]any, key string) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("missing %s", key)
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not numeric", key, t)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%s: expected number", key)
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("%s: not a number", key)
	}
	return ClampConfidence(f), nil
}

func ClampConfidence(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// requireStringList accepts an empty array but not a missing or null key.
func requireStringList(m map[string]any, key string) ([]string, error) {
	arr, err := requireArray(m, key)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected string", key, i)
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func foldKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
