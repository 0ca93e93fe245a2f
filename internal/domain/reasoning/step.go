package reasoning

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const StepTypeQuestion = "question"

// PresentedOption is one answer choice shown with a question.
type PresentedOption struct {
	ID                   string `json:"id"`
	Text                 string `json:"text"`
	ClinicalSignificance string `json:"clinical_significance,omitempty"`
}

type SessionStep struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID          uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_session_step_number,priority:1;column:session_id" json:"session_id"`
	StepNumber         int            `gorm:"not null;uniqueIndex:idx_session_step_number,priority:2;column:step_number" json:"step_number"`
	StepType           string         `gorm:"not null;column:step_type" json:"step_type"`
	QuestionKey        string         `gorm:"column:question_key" json:"question_key"`
	QuestionText       string         `gorm:"not null;column:question_text" json:"question_text"`
	Rationale          string         `gorm:"column:rationale" json:"rationale"`
	OptionsPresented   datatypes.JSON `gorm:"type:jsonb;column:options_presented" json:"options_presented"`
	SelectedOptionID   *string        `gorm:"column:selected_option_id" json:"selected_option_id,omitempty"`
	SelectedOptionText *string        `gorm:"column:selected_option_text" json:"selected_option_text,omitempty"`
	AnsweredAt         *time.Time     `gorm:"column:answered_at" json:"answered_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (SessionStep) TableName() string { return "session_step" }

func (s *SessionStep) Answered() bool {
	return s != nil && s.AnsweredAt != nil
}

// Options decodes the presented options in display order.
func (s *SessionStep) Options() ([]PresentedOption, error) {
	if s == nil || len(s.OptionsPresented) == 0 {
		return nil, nil
	}
	var out []PresentedOption
	if err := json.Unmarshal(s.OptionsPresented, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindOption returns the presented option with the given id.
func (s *SessionStep) FindOption(id string) (PresentedOption, bool) {
	opts, err := s.Options()
	if err != nil {
		return PresentedOption{}, false
	}
	for _, o := range opts {
		if o.ID == id {
			return o, true
		}
	}
	return PresentedOption{}, false
}
