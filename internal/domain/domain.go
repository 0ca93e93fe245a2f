package domain

import (
	"github.com/yungbote/clinireason-backend/internal/domain/notify"
	"github.com/yungbote/clinireason-backend/internal/domain/reasoning"
	"github.com/yungbote/clinireason-backend/internal/domain/review"
	"github.com/yungbote/clinireason-backend/internal/domain/user"
)

type User = user.User

type Session = reasoning.Session
type SessionSymptom = reasoning.SessionSymptom
type SessionStep = reasoning.SessionStep
type PresentedOption = reasoning.PresentedOption
type DifferentialDiagnosis = reasoning.DifferentialDiagnosis
type FinalDiagnosis = reasoning.FinalDiagnosis
type ClinicalReport = reasoning.ClinicalReport

type Submission = review.Submission
type Feedback = review.Feedback

type Notification = notify.Notification

// AllModels lists every persisted model in migration order.
func AllModels() []any {
	return []any{
		&User{},
		&Session{},
		&SessionSymptom{},
		&SessionStep{},
		&DifferentialDiagnosis{},
		&FinalDiagnosis{},
		&ClinicalReport{},
		&Submission{},
		&Feedback{},
		&Notification{},
	}
}
