package generation

type Stage string

const (
	StageSymptoms  Stage = "symptoms"
	StageQuestions Stage = "questions"
	StageDiagnosis Stage = "diagnosis"
)

const (
	MinSymptoms        = 8
	MaxSymptoms        = 12
	QuestionCount      = 5
	OptionsPerQuestion = 4
	MinDiagnoses       = 3
	MaxDiagnoses       = 5
)

const (
	ProbabilityHigh     = "high"
	ProbabilityModerate = "moderate"
	ProbabilityLow      = "low"

	UrgencyEmergency = "emergency"
	UrgencyUrgent    = "urgent"
	UrgencyRoutine   = "routine"
)

// SymptomRef is the part of a recorded symptom fed back into later stages.
type SymptomRef struct {
	Name      string
	IsRedFlag bool
}

type AnsweredQuestion struct {
	Question string
	Answer   string
}

// Request carries the context for one stage. Fields a stage does not use are ignored.
type Request struct {
	Stage        Stage
	RegionID     string
	RegionName   string
	StudentLevel string
	Symptoms     []SymptomRef
	Answers      []AnsweredQuestion
}

// Result holds the validated output of exactly one stage.
type Result struct {
	Stage     Stage
	Symptoms  []Symptom
	Questions []Question
	Diagnosis *DiagnosisResult
}

type Symptom struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsRedFlag   bool   `json:"is_red_flag"`
	Category    string `json:"category"`
}

type Option struct {
	ID                   string `json:"id"`
	Text                 string `json:"text"`
	ClinicalSignificance string `json:"clinical_significance"`
}

type Question struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Rationale string   `json:"rationale"`
	Options   []Option `json:"options"`
}

type Diagnosis struct {
	Name                  string   `json:"name"`
	ICDCode               *string  `json:"icd_code,omitempty"`
	Probability           string   `json:"probability"`
	Confidence            float64  `json:"confidence"`
	Description           string   `json:"description"`
	SupportingFindings    []string `json:"supporting_findings"`
	ContradictingFindings []string `json:"contradicting_findings"`
	RedFlags              []string `json:"red_flags"`
	NextSteps             []string `json:"next_steps"`
}

type DiagnosisResult struct {
	Diagnoses       []Diagnosis `json:"diagnoses"`
	Urgency         string      `json:"urgency"`
	EducationalNote string      `json:"educational_note"`
}
