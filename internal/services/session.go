package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/clinireason-backend/internal/data/repos"
	types "github.com/yungbote/clinireason-backend/internal/domain"
	domainagg "github.com/yungbote/clinireason-backend/internal/domain/aggregates"
	"github.com/yungbote/clinireason-backend/internal/domain/reasoning"
	"github.com/yungbote/clinireason-backend/internal/modules/generation"
	"github.com/yungbote/clinireason-backend/internal/modules/regions"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
	"github.com/yungbote/clinireason-backend/internal/realtime"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// SessionService is the stage machine of a diagnostic session. Every call
// takes the acting student; a session owned by someone else reads as not found.
type SessionService interface {
	SelectRegion(ctx context.Context, studentID uuid.UUID, regionID string) (*types.Session, error)
	RequestSymptoms(ctx context.Context, studentID, sessionID uuid.UUID) ([]*types.SessionSymptom, error)
	SubmitSymptoms(ctx context.Context, studentID, sessionID uuid.UUID, selected []string) ([]*types.SessionSymptom, error)
	RequestQuestions(ctx context.Context, studentID, sessionID uuid.UUID) ([]*types.SessionStep, error)
	AnswerStep(ctx context.Context, studentID, sessionID uuid.UUID, stepNumber int, optionID, optionText string) (domainagg.RecordAnswerResult, error)
	RequestDiagnosis(ctx context.Context, studentID, sessionID uuid.UUID) (*DiagnosisView, error)
	SelectFinalDiagnosis(ctx context.Context, studentID, sessionID, differentialID uuid.UUID, rationale *string) (domainagg.SelectFinalResult, error)
	BuildReport(ctx context.Context, studentID, sessionID uuid.UUID, in ReportInput) (*types.ClinicalReport, error)

	GetSession(ctx context.Context, studentID, sessionID uuid.UUID) (*SessionDetail, error)
	ListSessions(ctx context.Context, studentID uuid.UUID, limit int) ([]*types.Session, error)
	ListRegions() []regions.Region
}

type DiagnosisView struct {
	Differentials   []*types.DifferentialDiagnosis `json:"differentials"`
	Urgency         string                         `json:"urgency"`
	EducationalNote string                         `json:"educational_note"`
}

type ReportInput struct {
	Title            string
	Subjective       string
	Objective        string
	Assessment       string
	Plan             string
	ExecutiveSummary *string
	KeyFindings      []string
}

// SessionDetail is the nested read model of one session.
type SessionDetail struct {
	Session       *types.Session                 `json:"session"`
	Region        *regions.Region                `json:"region,omitempty"`
	Symptoms      []*types.SessionSymptom        `json:"symptoms"`
	Steps         []*types.SessionStep           `json:"steps"`
	Differentials []*types.DifferentialDiagnosis `json:"differentials"`
	Final         *types.FinalDiagnosis          `json:"final_diagnosis,omitempty"`
	Report        *types.ClinicalReport          `json:"report,omitempty"`
}

type SessionServiceDeps struct {
	Log       *logger.Logger
	Aggregate domainagg.SessionAggregate
	Gateway   generation.Gateway
	Regions   *regions.Catalog
	Emitter   realtime.Emitter
	Repos     repos.Repos
	Now       func() time.Time
}

type sessionService struct {
	log     *logger.Logger
	agg     domainagg.SessionAggregate
	gateway generation.Gateway
	regions *regions.Catalog
	emitter realtime.Emitter
	repos   repos.Repos
	now     func() time.Time
}

func NewSessionService(deps SessionServiceDeps) SessionService {
	if deps.Emitter == nil {
		deps.Emitter = realtime.NopEmitter{}
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &sessionService{
		log:     deps.Log.With("service", "SessionService"),
		agg:     deps.Aggregate,
		gateway: deps.Gateway,
		regions: deps.Regions,
		emitter: deps.Emitter,
		repos:   deps.Repos,
		now:     deps.Now,
	}
}

func (s *sessionService) SelectRegion(ctx context.Context, studentID uuid.UUID, regionID string) (*types.Session, error) {
	region, ok := s.regions.Get(regionID)
	if !ok {
		return nil, domainagg.NewError(domainagg.CodeValidation, "Session.SelectRegion", "unknown region: "+strings.TrimSpace(regionID), nil)
	}
	sess, err := s.agg.Start(ctx, domainagg.StartSessionInput{
		StudentID: studentID,
		RegionID:  region.ID,
		StartedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.advanced(ctx, sess.StudentID, sess.ID, sess.Stage)
	return sess, nil
}

func (s *sessionService) RequestSymptoms(ctx context.Context, studentID, sessionID uuid.UUID) ([]*types.SessionSymptom, error) {
	const op = "Session.RequestSymptoms"
	sess, err := s.loadAtStage(ctx, op, studentID, sessionID, reasoning.StageRegionSelected)
	if err != nil {
		return nil, err
	}
	region := s.regionFor(sess)

	generated, err := s.gateway.Symptoms(ctx, region.ID, region.Name)
	if err != nil {
		return nil, err
	}
	rows := make([]*types.SessionSymptom, 0, len(generated))
	for _, g := range generated {
		rows = append(rows, &types.SessionSymptom{
			SymptomKey:  g.ID,
			Name:        g.Name,
			Description: g.Description,
			Category:    g.Category,
			IsRedFlag:   g.IsRedFlag,
		})
	}
	out, err := s.agg.CommitSymptoms(ctx, domainagg.CommitSymptomsInput{
		StudentID:       studentID,
		SessionID:       sess.ID,
		ExpectedVersion: sess.Version,
		Symptoms:        rows,
	})
	if err != nil {
		return nil, err
	}
	s.advanced(ctx, studentID, sess.ID, reasoning.StageSymptomsReady)
	return out, nil
}

func (s *sessionService) SubmitSymptoms(ctx context.Context, studentID, sessionID uuid.UUID, selected []string) ([]*types.SessionSymptom, error) {
	return s.agg.RetainSymptoms(ctx, domainagg.RetainSymptomsInput{
		StudentID: studentID,
		SessionID: sessionID,
		Selected:  selected,
	})
}

func (s *sessionService) RequestQuestions(ctx context.Context, studentID, sessionID uuid.UUID) ([]*types.SessionStep, error) {
	const op = "Session.RequestQuestions"
	sess, err := s.loadAtStage(ctx, op, studentID, sessionID, reasoning.StageSymptomsReady)
	if err != nil {
		return nil, err
	}
	symptoms, err := s.repos.Symptoms.ListBySession(dbctx.Context{Ctx: ctx}, sess.ID)
	if err != nil {
		return nil, err
	}
	if len(symptoms) == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "symptoms must be generated before questions", nil)
	}
	region := s.regionFor(sess)

	questions, err := s.gateway.Questions(ctx, region.ID, region.Name, sess.StudentLevel, symptomRefs(symptoms))
	if err != nil {
		return nil, err
	}
	steps := make([]*types.SessionStep, 0, len(questions))
	for _, q := range questions {
		opts := make([]reasoning.PresentedOption, 0, len(q.Options))
		for _, o := range q.Options {
			opts = append(opts, reasoning.PresentedOption{ID: o.ID, Text: o.Text, ClinicalSignificance: o.ClinicalSignificance})
		}
		raw, err := json.Marshal(opts)
		if err != nil {
			return nil, err
		}
		steps = append(steps, &types.SessionStep{
			QuestionKey:      q.ID,
			QuestionText:     q.Text,
			Rationale:        q.Rationale,
			OptionsPresented: datatypes.JSON(raw),
		})
	}
	out, err := s.agg.CommitQuestions(ctx, domainagg.CommitQuestionsInput{
		StudentID:       studentID,
		SessionID:       sess.ID,
		ExpectedVersion: sess.Version,
		Steps:           steps,
	})
	if err != nil {
		return nil, err
	}
	s.advanced(ctx, studentID, sess.ID, reasoning.QuestionStage(1))
	return out, nil
}

func (s *sessionService) AnswerStep(ctx context.Context, studentID, sessionID uuid.UUID, stepNumber int, optionID, optionText string) (domainagg.RecordAnswerResult, error) {
	res, err := s.agg.RecordAnswer(ctx, domainagg.RecordAnswerInput{
		StudentID:  studentID,
		SessionID:  sessionID,
		StepNumber: stepNumber,
		OptionID:   optionID,
		OptionText: optionText,
		AnsweredAt: s.now(),
	})
	if err != nil {
		return res, err
	}
	s.advanced(ctx, studentID, sessionID, res.Stage)
	return res, nil
}

func (s *sessionService) RequestDiagnosis(ctx context.Context, studentID, sessionID uuid.UUID) (*DiagnosisView, error) {
	const op = "Session.RequestDiagnosis"
	sess, err := s.loadAtStage(ctx, op, studentID, sessionID, reasoning.StageQuestionsAnswered)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	symptoms, err := s.repos.Symptoms.ListBySession(dbc, sess.ID)
	if err != nil {
		return nil, err
	}
	steps, err := s.repos.Steps.ListBySession(dbc, sess.ID)
	if err != nil {
		return nil, err
	}
	answers := make([]generation.AnsweredQuestion, 0, len(steps))
	for _, st := range steps {
		if !st.Answered() {
			return nil, domainagg.NewError(domainagg.CodeValidation, op, "all question steps must be answered first", nil)
		}
		answer := ""
		if st.SelectedOptionText != nil {
			answer = *st.SelectedOptionText
		}
		answers = append(answers, generation.AnsweredQuestion{Question: st.QuestionText, Answer: answer})
	}
	region := s.regionFor(sess)

	dx, err := s.gateway.Diagnosis(ctx, region.ID, region.Name, symptomRefs(symptoms), answers)
	if err != nil {
		return nil, err
	}
	rows := make([]*types.DifferentialDiagnosis, 0, len(dx.Diagnoses))
	for _, d := range dx.Diagnoses {
		rows = append(rows, &types.DifferentialDiagnosis{
			Name:                  d.Name,
			ICDCode:               d.ICDCode,
			Probability:           d.Probability,
			ConfidenceScore:       d.Confidence,
			Description:           d.Description,
			SupportingFindings:    jsonList(d.SupportingFindings),
			ContradictingFindings: jsonList(d.ContradictingFindings),
			RedFlags:              jsonList(d.RedFlags),
			NextSteps:             jsonList(d.NextSteps),
			Urgency:               dx.Urgency,
			EducationalNote:       dx.EducationalNote,
		})
	}
	out, err := s.agg.CommitDiagnosis(ctx, domainagg.CommitDiagnosisInput{
		StudentID:       studentID,
		SessionID:       sess.ID,
		ExpectedVersion: sess.Version,
		Differentials:   rows,
	})
	if err != nil {
		return nil, err
	}
	s.advanced(ctx, studentID, sess.ID, reasoning.StageDiagnosisReady)
	return &DiagnosisView{Differentials: out, Urgency: dx.Urgency, EducationalNote: dx.EducationalNote}, nil
}

func (s *sessionService) SelectFinalDiagnosis(ctx context.Context, studentID, sessionID, differentialID uuid.UUID, rationale *string) (domainagg.SelectFinalResult, error) {
	res, err := s.agg.SelectFinal(ctx, domainagg.SelectFinalInput{
		StudentID:      studentID,
		SessionID:      sessionID,
		DifferentialID: differentialID,
		Rationale:      rationale,
		CompletedAt:    s.now(),
	})
	if err != nil {
		return res, err
	}
	s.advanced(ctx, studentID, sessionID, reasoning.StageCompleted)
	return res, nil
}

func (s *sessionService) BuildReport(ctx context.Context, studentID, sessionID uuid.UUID, in ReportInput) (*types.ClinicalReport, error) {
	return s.agg.CreateReport(ctx, domainagg.CreateReportInput{
		StudentID: studentID,
		SessionID: sessionID,
		Report: &types.ClinicalReport{
			Title:            strings.TrimSpace(in.Title),
			Subjective:       strings.TrimSpace(in.Subjective),
			Objective:        strings.TrimSpace(in.Objective),
			Assessment:       strings.TrimSpace(in.Assessment),
			Plan:             strings.TrimSpace(in.Plan),
			ExecutiveSummary: in.ExecutiveSummary,
			KeyFindings:      jsonList(in.KeyFindings),
		},
	})
}

func (s *sessionService) GetSession(ctx context.Context, studentID, sessionID uuid.UUID) (*SessionDetail, error) {
	dbc := dbctx.Context{Ctx: ctx}
	sess, err := s.repos.Sessions.GetForStudent(dbc, studentID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, "Session.Get", "session not found", nil)
	}
	return loadSessionDetail(ctx, s.repos, s.regions, sess)
}

func (s *sessionService) ListSessions(ctx context.Context, studentID uuid.UUID, limit int) ([]*types.Session, error) {
	return s.repos.Sessions.ListByStudent(dbctx.Context{Ctx: ctx}, studentID, clampLimit(limit))
}

func (s *sessionService) ListRegions() []regions.Region {
	return s.regions.List()
}

// loadAtStage runs the stage guard before any generator call so a request
// that cannot commit never reaches the provider.
func (s *sessionService) loadAtStage(ctx context.Context, op string, studentID, sessionID uuid.UUID, stage string) (*types.Session, error) {
	sess, err := s.repos.Sessions.GetForStudent(dbctx.Context{Ctx: ctx}, studentID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "session not found", nil)
	}
	if sess.Stage != stage {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "session is at stage "+sess.Stage+", expected "+stage, nil)
	}
	return sess, nil
}

func (s *sessionService) regionFor(sess *types.Session) regions.Region {
	if r, ok := s.regions.Get(sess.InitialRegionID); ok {
		return r
	}
	return regions.Region{ID: sess.InitialRegionID, Name: sess.InitialRegionID}
}

func (s *sessionService) advanced(ctx context.Context, studentID, sessionID uuid.UUID, stage string) {
	s.emitter.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(studentID),
		Event:   realtime.SSEEventSessionAdvanced,
		Data:    map[string]any{"session_id": sessionID, "stage": stage},
	})
}

// loadSessionDetail reads the nested session view in parallel.
func loadSessionDetail(ctx context.Context, r repos.Repos, catalog *regions.Catalog, sess *types.Session) (*SessionDetail, error) {
	out := &SessionDetail{Session: sess}
	if region, ok := catalog.Get(sess.InitialRegionID); ok {
		out.Region = &region
	}
	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Context{Ctx: gctx}
	g.Go(func() (err error) {
		out.Symptoms, err = r.Symptoms.ListBySession(dbc, sess.ID)
		return err
	})
	g.Go(func() (err error) {
		out.Steps, err = r.Steps.ListBySession(dbc, sess.ID)
		return err
	})
	g.Go(func() (err error) {
		out.Differentials, err = r.Differentials.ListBySession(dbc, sess.ID)
		return err
	})
	g.Go(func() (err error) {
		out.Final, err = r.Finals.GetBySession(dbc, sess.ID)
		return err
	})
	g.Go(func() (err error) {
		out.Report, err = r.Reports.GetBySession(dbc, sess.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func symptomRefs(rows []*types.SessionSymptom) []generation.SymptomRef {
	out := make([]generation.SymptomRef, 0, len(rows))
	for _, r := range rows {
		out = append(out, generation.SymptomRef{Name: r.Name, IsRedFlag: r.IsRedFlag})
	}
	return out
}

func jsonList(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	raw, _ := json.Marshal(items)
	return datatypes.JSON(raw)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultHistoryLimit
	case limit > maxHistoryLimit:
		return maxHistoryLimit
	default:
		return limit
	}
}
