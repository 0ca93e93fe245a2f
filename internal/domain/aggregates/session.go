package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/clinireason-backend/internal/domain/reasoning"
)

var SessionAggregateContract = Contract{
	Name:             "Reasoning.SessionAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Writes:           []string{"session", "session_symptom", "session_step", "differential_diagnosis", "final_diagnosis", "clinical_report"},
	Notes:            "Owns stage-ordered session progress. Each stage commit is one transaction guarded by the session version.",
}

// SessionAggregate owns reasoning-session progression invariants.
//
// Every method that advances the stage takes the version observed before the
// generator call. A version mismatch returns CodeConflict and writes nothing.
type SessionAggregate interface {
	Aggregate

	Start(ctx context.Context, in StartSessionInput) (*reasoning.Session, error)
	CommitSymptoms(ctx context.Context, in CommitSymptomsInput) ([]*reasoning.SessionSymptom, error)
	RetainSymptoms(ctx context.Context, in RetainSymptomsInput) ([]*reasoning.SessionSymptom, error)
	CommitQuestions(ctx context.Context, in CommitQuestionsInput) ([]*reasoning.SessionStep, error)
	RecordAnswer(ctx context.Context, in RecordAnswerInput) (RecordAnswerResult, error)
	CommitDiagnosis(ctx context.Context, in CommitDiagnosisInput) ([]*reasoning.DifferentialDiagnosis, error)
	SelectFinal(ctx context.Context, in SelectFinalInput) (SelectFinalResult, error)
	CreateReport(ctx context.Context, in CreateReportInput) (*reasoning.ClinicalReport, error)
}

type StartSessionInput struct {
	StudentID uuid.UUID
	RegionID  string
	StartedAt time.Time
}

type CommitSymptomsInput struct {
	StudentID       uuid.UUID
	SessionID       uuid.UUID
	ExpectedVersion int
	Symptoms        []*reasoning.SessionSymptom
}

// RetainSymptomsInput keeps the symptoms whose key or name is listed and drops the rest.
type RetainSymptomsInput struct {
	StudentID uuid.UUID
	SessionID uuid.UUID
	Selected  []string
}

type CommitQuestionsInput struct {
	StudentID       uuid.UUID
	SessionID       uuid.UUID
	ExpectedVersion int
	Steps           []*reasoning.SessionStep
}

type RecordAnswerInput struct {
	StudentID  uuid.UUID
	SessionID  uuid.UUID
	StepNumber int
	OptionID   string
	OptionText string
	AnsweredAt time.Time
}

type RecordAnswerResult struct {
	Step      *reasoning.SessionStep
	Stage     string
	Remaining int
}

type CommitDiagnosisInput struct {
	StudentID       uuid.UUID
	SessionID       uuid.UUID
	ExpectedVersion int
	Differentials   []*reasoning.DifferentialDiagnosis
}

type SelectFinalInput struct {
	StudentID      uuid.UUID
	SessionID      uuid.UUID
	DifferentialID uuid.UUID
	Rationale      *string
	CompletedAt    time.Time
}

type SelectFinalResult struct {
	Final   *reasoning.FinalDiagnosis
	Session *reasoning.Session
}

type CreateReportInput struct {
	StudentID uuid.UUID
	SessionID uuid.UUID
	Report    *reasoning.ClinicalReport
}
