package prompts

// RegisterAll registers every reasoning-stage prompt. Build calls it once lazily.
func RegisterAll() {
	RegisterSpec(Spec{
		Name:       PromptSymptoms,
		Version:    1,
		SchemaName: "reasoning_symptoms_v1",
		Schema:     SymptomsSchema,
		System: `
You write case material for a differential-diagnosis practice tool.
Given a body region, list the presenting symptoms a student should consider.
Mix common and serious presentations and mark the ones that demand urgent evaluation as red flags.
Return JSON only.`,
		User: `
REGION_ID: {{.RegionID}}
REGION_NAME: {{.RegionName}}

Output rules:
- symptoms: {{.MinSymptoms}}-{{.MaxSymptoms}} entries, no duplicate names.
- id: stable snake_case key unique within this list.
- name: short lay-clinical name (e.g. "Chest tightness").
- description: one sentence.
- is_red_flag: true only for symptoms that warrant urgent work-up.
- category: one lowercase word (e.g. pain, respiratory, systemic).`,
		Validators: []Validator{
			RequireNonEmpty("RegionID", func(in Input) string { return in.RegionID }),
			RequirePositive("MaxSymptoms", func(in Input) int { return in.MaxSymptoms }),
		},
	})

	RegisterSpec(Spec{
		Name:       PromptQuestions,
		Version:    1,
		SchemaName: "reasoning_questions_v1",
		Schema:     QuestionsSchema,
		System: `
You are a clinical educator guiding a student through history taking.
Write focused multiple-choice questions that discriminate between the likely causes of the presented symptoms.
Pitch the difficulty at the student's level.
Return JSON only.`,
		User: `
REGION: {{.RegionName}} ({{.RegionID}})
STUDENT_LEVEL: {{.StudentLevel}}

SYMPTOMS (name, red flags marked):
{{.SymptomsText}}

Output rules:
- questions: exactly {{.QuestionsN}} entries, ordered from broad to specific.
- each question has exactly {{.OptionsN}} options with ids unique within the question (a, b, c, d).
- rationale: why the answer changes the differential.
- clinical_significance: what choosing the option suggests.`,
		Validators: []Validator{
			RequireNonEmpty("RegionID", func(in Input) string { return in.RegionID }),
			RequireNonEmpty("SymptomsText", func(in Input) string { return in.SymptomsText }),
			RequirePositive("QuestionsN", func(in Input) int { return in.QuestionsN }),
		},
	})

	RegisterSpec(Spec{
		Name:       PromptDiagnosis,
		Version:    1,
		SchemaName: "reasoning_diagnosis_v1",
		Schema:     DiagnosisSchema,
		System: `
You are a clinical educator reviewing a student's work-up.
Rank the most plausible diagnoses given the symptoms and the student's answers.
This is a teaching exercise and not advice for a real patient.
Return JSON only.`,
		User: `
REGION: {{.RegionName}} ({{.RegionID}})

SYMPTOMS (name, red flags marked):
{{.SymptomsText}}

QUESTIONS AND SELECTED ANSWERS:
{{.AnswersText}}

Output rules:
- diagnoses: {{.MinDiagnoses}}-{{.MaxDiagnoses}} entries ranked most to least likely.
- probability: high|moderate|low.
- confidence: number between 0 and 1.
- icd_code: ICD-10 code or null.
- findings, red_flags and next_steps: short phrases.
- urgency: emergency|urgent|routine for the presentation as a whole.
- educational_note: 2-4 sentences on the key teaching point.`,
		Validators: []Validator{
			RequireNonEmpty("RegionID", func(in Input) string { return in.RegionID }),
			RequireNonEmpty("SymptomsText", func(in Input) string { return in.SymptomsText }),
			RequireNonEmpty("AnswersText", func(in Input) string { return in.AnswersText }),
		},
	})
}
