package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/clinireason-backend/internal/data/repos/notify"
	"github.com/yungbote/clinireason-backend/internal/data/repos/reasoning"
	"github.com/yungbote/clinireason-backend/internal/data/repos/review"
	"github.com/yungbote/clinireason-backend/internal/data/repos/user"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type SessionRepo = reasoning.SessionRepo
type SymptomRepo = reasoning.SymptomRepo
type StepRepo = reasoning.StepRepo
type DifferentialRepo = reasoning.DifferentialRepo
type FinalDiagnosisRepo = reasoning.FinalDiagnosisRepo
type ReportRepo = reasoning.ReportRepo

type SubmissionRepo = review.SubmissionRepo
type FeedbackRepo = review.FeedbackRepo

type NotificationRepo = notify.NotificationRepo

// Repos bundles every table repo the services and aggregates compose.
type Repos struct {
	Users         UserRepo
	Sessions      SessionRepo
	Symptoms      SymptomRepo
	Steps         StepRepo
	Differentials DifferentialRepo
	Finals        FinalDiagnosisRepo
	Reports       ReportRepo
	Submissions   SubmissionRepo
	Feedback      FeedbackRepo
	Notifications NotificationRepo
}

func New(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Users:         user.NewUserRepo(db, log),
		Sessions:      reasoning.NewSessionRepo(db, log),
		Symptoms:      reasoning.NewSymptomRepo(db, log),
		Steps:         reasoning.NewStepRepo(db, log),
		Differentials: reasoning.NewDifferentialRepo(db, log),
		Finals:        reasoning.NewFinalDiagnosisRepo(db, log),
		Reports:       reasoning.NewReportRepo(db, log),
		Submissions:   review.NewSubmissionRepo(db, log),
		Feedback:      review.NewFeedbackRepo(db, log),
		Notifications: notify.NewNotificationRepo(db, log),
	}
}
