package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/clinireason-backend/internal/data/aggregates"
	"github.com/yungbote/clinireason-backend/internal/data/repos"
	"github.com/yungbote/clinireason-backend/internal/data/repos/testutil"
	types "github.com/yungbote/clinireason-backend/internal/domain"
	"github.com/yungbote/clinireason-backend/internal/domain/user"
	"github.com/yungbote/clinireason-backend/internal/modules/generation"
	"github.com/yungbote/clinireason-backend/internal/modules/generation/generationtest"
	"github.com/yungbote/clinireason-backend/internal/modules/regions"
	"github.com/yungbote/clinireason-backend/internal/realtime"
)

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func (e *recordingEmitter) count(event realtime.SSEEvent, userID uuid.UUID) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, m := range e.msgs {
		if m.Event == event && m.Channel == realtime.UserChannel(userID) {
			n++
		}
	}
	return n
}

type harness struct {
	db            *gorm.DB
	repos         repos.Repos
	stub          *generationtest.Stub
	emitter       *recordingEmitter
	sessions      SessionService
	reviews       ReviewService
	notifications NotificationService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	r := repos.New(db, log)
	catalog, err := regions.Load("")
	if err != nil {
		t.Fatalf("regions: %v", err)
	}
	stub := generationtest.NewStub()
	em := &recordingEmitter{}
	base := aggregates.BaseDeps{DB: db, Log: log}

	sessionAgg := aggregates.NewSessionAggregate(aggregates.SessionAggregateDeps{
		Base: base, Users: r.Users, Sessions: r.Sessions, Symptoms: r.Symptoms, Steps: r.Steps,
		Differentials: r.Differentials, Finals: r.Finals, Reports: r.Reports,
	})
	submissionAgg := aggregates.NewSubmissionAggregate(aggregates.SubmissionAggregateDeps{
		Base: base, Users: r.Users, Sessions: r.Sessions, Reports: r.Reports,
		Submissions: r.Submissions, Feedback: r.Feedback, Notifications: r.Notifications,
	})
	notifications := NewNotificationService(log, r.Notifications, em)

	return &harness{
		db:      db,
		repos:   r,
		stub:    stub,
		emitter: em,
		sessions: NewSessionService(SessionServiceDeps{
			Log:       log,
			Aggregate: sessionAgg,
			Gateway:   generation.NewGateway(log, stub, generation.Config{Provider: "stub", Timeout: time.Second}),
			Regions:   catalog,
			Emitter:   em,
			Repos:     r,
		}),
		reviews: NewReviewService(ReviewServiceDeps{
			Log:           log,
			Aggregate:     submissionAgg,
			Notifications: notifications,
			Emitter:       em,
			Regions:       catalog,
			Repos:         r,
		}),
		notifications: notifications,
	}
}

func (h *harness) student(t *testing.T) *types.User {
	return testutil.SeedUser(t, h.db, user.RoleStudent)
}

func (h *harness) instructor(t *testing.T) *types.User {
	return testutil.SeedUser(t, h.db, user.RoleInstructor)
}

var chestDiagnosis = generationtest.Diagnosis("urgent",
	generationtest.Dx{Name: "Acute Coronary Syndrome", Probability: "high", Confidence: 0.8},
	generationtest.Dx{Name: "GERD", Probability: "moderate", Confidence: 0.4},
	generationtest.Dx{Name: "Costochondritis", Probability: "low", Confidence: 0.3},
)

// answeredSession drives a chest session up to questions_answered.
func (h *harness) answeredSession(t *testing.T, studentID uuid.UUID) *types.Session {
	t.Helper()
	ctx := context.Background()
	h.stub.On("reasoning_symptoms", generationtest.NumberedSymptoms(10))
	h.stub.On("reasoning_questions", generationtest.Questions(5))

	sess, err := h.sessions.SelectRegion(ctx, studentID, "chest")
	if err != nil {
		t.Fatalf("SelectRegion: %v", err)
	}
	if _, err := h.sessions.RequestSymptoms(ctx, studentID, sess.ID); err != nil {
		t.Fatalf("RequestSymptoms: %v", err)
	}
	if _, err := h.sessions.RequestQuestions(ctx, studentID, sess.ID); err != nil {
		t.Fatalf("RequestQuestions: %v", err)
	}
	for n := 1; n <= 5; n++ {
		if _, err := h.sessions.AnswerStep(ctx, studentID, sess.ID, n, "a", ""); err != nil {
			t.Fatalf("AnswerStep(%d): %v", n, err)
		}
	}
	return sess
}

// completedSession drives a chest session to completed with a report.
func (h *harness) completedSession(t *testing.T, studentID uuid.UUID) (*types.Session, *types.ClinicalReport) {
	t.Helper()
	ctx := context.Background()
	sess := h.answeredSession(t, studentID)
	h.stub.On("reasoning_diagnosis", chestDiagnosis)
	dx, err := h.sessions.RequestDiagnosis(ctx, studentID, sess.ID)
	if err != nil {
		t.Fatalf("RequestDiagnosis: %v", err)
	}
	if _, err := h.sessions.SelectFinalDiagnosis(ctx, studentID, sess.ID, dx.Differentials[0].ID, nil); err != nil {
		t.Fatalf("SelectFinalDiagnosis: %v", err)
	}
	rep, err := h.sessions.BuildReport(ctx, studentID, sess.ID, ReportInput{
		Title:      "Chest pain in a 54 year old",
		Subjective: "Crushing chest pain on exertion.",
		Assessment: "Likely ACS.",
		Plan:       "ECG and troponin.",
	})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	return sess, rep
}

func (h *harness) count(t *testing.T, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := h.db.Model(model).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
