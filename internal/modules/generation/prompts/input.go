package prompts

// Input is a superset of all fields any prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	RegionID   string
	RegionName string

	// One line per symptom, red flags marked.
	SymptomsText string
	StudentLevel string

	// One block per question with the selected answer.
	AnswersText string

	MinSymptoms  int
	MaxSymptoms  int
	QuestionsN   int
	OptionsN     int
	MinDiagnoses int
	MaxDiagnoses int
}
