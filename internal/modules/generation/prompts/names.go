package prompts

type PromptName string

const (
	PromptSymptoms  PromptName = "reasoning_symptoms"
	PromptQuestions PromptName = "reasoning_questions"
	PromptDiagnosis PromptName = "reasoning_diagnosis"
)
