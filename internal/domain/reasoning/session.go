package reasoning

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusSubmitted  = "submitted"
	StatusReviewed   = "reviewed"
)

const (
	StageRegionSelected    = "region_selected"
	StageSymptomsReady     = "symptoms_ready"
	StageQuestionsAnswered = "questions_answered"
	StageDiagnosisReady    = "diagnosis_ready"
	StageCompleted         = "completed"
)

// QuestionCount is the fixed number of question steps in every session.
const QuestionCount = 5

// QuestionStage names the stage awaiting an answer for step n (1-based).
func QuestionStage(n int) string {
	return fmt.Sprintf("question_%d", n)
}

// AwaitingStep returns the step number the stage is waiting on, or 0.
func AwaitingStep(stage string) int {
	var n int
	if _, err := fmt.Sscanf(stage, "question_%d", &n); err != nil || n < 1 || n > QuestionCount {
		return 0
	}
	return n
}

var statusRank = map[string]int{
	StatusInProgress: 0,
	StatusCompleted:  1,
	StatusSubmitted:  2,
	StatusReviewed:   3,
}

// StatusAdvances reports whether moving from -> to is a forward (or idempotent) move.
func StatusAdvances(from, to string) bool {
	f, ok1 := statusRank[from]
	t, ok2 := statusRank[to]
	return ok1 && ok2 && t >= f
}

type Session struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID        uuid.UUID  `gorm:"type:uuid;not null;index;column:student_id" json:"student_id"`
	Status           string     `gorm:"not null;column:status;index" json:"status"`
	Stage            string     `gorm:"not null;column:stage" json:"stage"`
	Version          int        `gorm:"not null;default:0;column:version" json:"version"`
	StudentLevel     string     `gorm:"column:student_level" json:"student_level"`
	InitialRegionID  string     `gorm:"not null;column:initial_region_id" json:"initial_region_id"`
	StartedAt        time.Time  `gorm:"not null;column:started_at" json:"started_at"`
	CompletedAt      *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	TotalSteps       *int       `gorm:"column:total_steps" json:"total_steps,omitempty"`
	TimeSpentSeconds *int       `gorm:"column:time_spent_seconds" json:"time_spent_seconds,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Session) TableName() string { return "session" }
