package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/clinireason-backend/internal/data/repos"
	domainagg "github.com/yungbote/clinireason-backend/internal/domain/aggregates"
	"github.com/yungbote/clinireason-backend/internal/domain/reasoning"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
)

const sessionTable = "session"

type SessionAggregateDeps struct {
	Base BaseDeps

	Users         repos.UserRepo
	Sessions      repos.SessionRepo
	Symptoms      repos.SymptomRepo
	Steps         repos.StepRepo
	Differentials repos.DifferentialRepo
	Finals        repos.FinalDiagnosisRepo
	Reports       repos.ReportRepo
}

type sessionAggregate struct {
	deps SessionAggregateDeps
}

func NewSessionAggregate(deps SessionAggregateDeps) domainagg.SessionAggregate {
	deps.Base = deps.Base.withDefaults()
	return &sessionAggregate{deps: deps}
}

func (a *sessionAggregate) Contract() domainagg.Contract {
	return domainagg.SessionAggregateContract
}

// loadOwned reads the session inside the transaction; foreign sessions read as missing.
func (a *sessionAggregate) loadOwned(dbc dbctx.Context, studentID, sessionID uuid.UUID) (*reasoning.Session, error) {
	s, err := a.deps.Sessions.GetForStudent(dbc, studentID, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, NotFoundError(fmt.Sprintf("session not found: %s", sessionID))
	}
	return s, nil
}

func (a *sessionAggregate) advance(dbc dbctx.Context, s *reasoning.Session, expectedVersion int, to string, extra map[string]any) error {
	updates := map[string]any{"stage": to, "updated_at": time.Now().UTC()}
	for k, v := range extra {
		updates[k] = v
	}
	ok, err := a.deps.Base.CASGuard.AdvanceStage(dbc, sessionTable, s.ID, expectedVersion, s.Stage, updates)
	if err != nil {
		return err
	}
	if err := RequireCASSuccess(ok, "session changed concurrently"); err != nil {
		return err
	}
	if to != s.Stage {
		noteStage(dbc.Ctx, to)
	}
	return nil
}

func (a *sessionAggregate) Start(ctx context.Context, in domainagg.StartSessionInput) (*reasoning.Session, error) {
	const op = "Reasoning.Session.Start"
	if in.StudentID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing student_id", nil)
	}
	if strings.TrimSpace(in.RegionID) == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing region_id", nil)
	}
	startedAt := in.StartedAt.UTC()
	if in.StartedAt.IsZero() {
		startedAt = time.Now().UTC()
	}

	var out *reasoning.Session
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		student, err := a.deps.Users.GetByID(dbc, in.StudentID)
		if err != nil {
			return err
		}
		if student == nil {
			return NotFoundError(fmt.Sprintf("student not found: %s", in.StudentID))
		}
		out, err = a.deps.Sessions.Create(dbc, &reasoning.Session{
			ID:              uuid.New(),
			StudentID:       student.ID,
			Status:          reasoning.StatusInProgress,
			Stage:           reasoning.StageRegionSelected,
			StudentLevel:    student.EffectiveLevel(),
			InitialRegionID: strings.TrimSpace(in.RegionID),
			StartedAt:       startedAt,
		})
		return err
	})
	return out, err
}

func (a *sessionAggregate) CommitSymptoms(ctx context.Context, in domainagg.CommitSymptomsInput) ([]*reasoning.SessionSymptom, error) {
	const op = "Reasoning.Session.CommitSymptoms"
	if len(in.Symptoms) == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "no symptoms to commit", nil)
	}
	var out []*reasoning.SessionSymptom
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.loadOwned(dbc, in.StudentID, in.SessionID)
		if err != nil {
			return err
		}
		if err := RequireStage(s.Stage, reasoning.StageRegionSelected); err != nil {
			return err
		}
		if err := RequireVersionMatch(s.Version, in.ExpectedVersion); err != nil {
			return err
		}
		existing, err := a.deps.Symptoms.CountBySession(dbc, s.ID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return InvariantError("symptoms already recorded for session")
		}
		for i, row := range in.Symptoms {
			row.ID = uuid.Nil
			row.SessionID = s.ID
			row.RegionID = s.InitialRegionID
			row.Position = i + 1
		}
		if out, err = a.deps.Symptoms.CreateBatch(dbc, in.Symptoms); err != nil {
			return err
		}
		return a.advance(dbc, s, in.ExpectedVersion, reasoning.StageSymptomsReady, nil)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *sessionAggregate) RetainSymptoms(ctx context.Context, in domainagg.RetainSymptomsInput) ([]*reasoning.SessionSymptom, error) {
	const op = "Reasoning.Session.RetainSymptoms"
	wanted := map[string]bool{}
	for _, sel := range in.Selected {
		if key := normalizeSymptomRef(sel); key != "" {
			wanted[key] = true
		}
	}
	if len(wanted) == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "select at least one symptom", nil)
	}

	var out []*reasoning.SessionSymptom
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.loadOwned(dbc, in.StudentID, in.SessionID)
		if err != nil {
			return err
		}
		if err := RequireStage(s.Stage, reasoning.StageSymptomsReady); err != nil {
			return err
		}
		current, err := a.deps.Symptoms.ListBySession(dbc, s.ID)
		if err != nil {
			return err
		}
		matched := map[string]bool{}
		keep := make([]uuid.UUID, 0, len(current))
		kept := make([]*reasoning.SessionSymptom, 0, len(current))
		for _, row := range current {
			byKey := normalizeSymptomRef(row.SymptomKey)
			byName := normalizeSymptomRef(row.Name)
			if wanted[byKey] || wanted[byName] {
				matched[byKey], matched[byName] = true, true
				keep = append(keep, row.ID)
				kept = append(kept, row)
			}
		}
		for ref := range wanted {
			if !matched[ref] {
				return ValidationError(fmt.Sprintf("symptom %q was not offered in this session", ref))
			}
		}
		if _, err := a.deps.Symptoms.DeleteExcept(dbc, s.ID, keep); err != nil {
			return err
		}
		// Same stage, new version: a concurrent question commit loses its CAS.
		if err := a.advance(dbc, s, s.Version, reasoning.StageSymptomsReady, nil); err != nil {
			return err
		}
		out = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeSymptomRef(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func (a *sessionAggregate) CommitQuestions(ctx context.Context, in domainagg.CommitQuestionsInput) ([]*reasoning.SessionStep, error) {
	const op = "Reasoning.Session.CommitQuestions"
	if len(in.Steps) != reasoning.QuestionCount {
		return nil, domainagg.NewError(domainagg.CodeInvariantViolation, op,
			fmt.Sprintf("expected %d steps, got %d", reasoning.QuestionCount, len(in.Steps)), nil)
	}
	var out []*reasoning.SessionStep
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.loadOwned(dbc, in.StudentID, in.SessionID)
		if err != nil {
			return err
		}
		if err := RequireStage(s.Stage, reasoning.StageSymptomsReady); err != nil {
			return err
		}
		if err := RequireVersionMatch(s.Version, in.ExpectedVersion); err != nil {
			return err
		}
		symptoms, err := a.deps.Symptoms.CountBySession(dbc, s.ID)
		if err != nil {
			return err
		}
		if symptoms == 0 {
			return ValidationError("no symptoms recorded for session")
		}
		existing, err := a.deps.Steps.CountBySession(dbc, s.ID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return InvariantError("question steps already recorded for session")
		}
		for i, st := range in.Steps {
			st.ID = uuid.Nil
			st.SessionID = s.ID
			st.StepNumber = i + 1
			st.StepType = reasoning.StepTypeQuestion
			st.SelectedOptionID, st.SelectedOptionText, st.AnsweredAt = nil, nil, nil
		}
		if out, err = a.deps.Steps.CreateBatch(dbc, in.Steps); err != nil {
			return err
		}
		return a.advance(dbc, s, in.ExpectedVersion, reasoning.QuestionStage(1), nil)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *sessionAggregate) RecordAnswer(ctx context.Context, in domainagg.RecordAnswerInput) (domainagg.RecordAnswerResult, error) {
	const op = "Reasoning.Session.RecordAnswer"
	var out domainagg.RecordAnswerResult
	if in.StepNumber < 1 || in.StepNumber > reasoning.QuestionCount {
		return out, domainagg.NewError(domainagg.CodeValidation, op,
			fmt.Sprintf("step number must be between 1 and %d", reasoning.QuestionCount), nil)
	}
	optionID := strings.TrimSpace(in.OptionID)
	if optionID == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing option_id", nil)
	}
	answeredAt := in.AnsweredAt.UTC()
	if in.AnsweredAt.IsZero() {
		answeredAt = time.Now().UTC()
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.loadOwned(dbc, in.StudentID, in.SessionID)
		if err != nil {
			return err
		}
		awaiting := reasoning.AwaitingStep(s.Stage)
		if awaiting == 0 {
			return ValidationError("session is at stage " + s.Stage + " and is not accepting answers")
		}
		step, err := a.deps.Steps.GetByNumber(dbc, s.ID, in.StepNumber)
		if err != nil {
			return err
		}
		if step == nil {
			return InvariantError(fmt.Sprintf("step %d missing for session at stage %s", in.StepNumber, s.Stage))
		}
		switch {
		case step.Answered() || in.StepNumber < awaiting:
			return ValidationError(fmt.Sprintf("step %d is already answered", in.StepNumber))
		case in.StepNumber > awaiting:
			return ValidationError(fmt.Sprintf("step %d must be answered before step %d", awaiting, in.StepNumber))
		}
		opt, ok := step.FindOption(optionID)
		if !ok {
			return ValidationError(fmt.Sprintf("option %q was not presented for step %d", optionID, in.StepNumber))
		}
		text := strings.TrimSpace(in.OptionText)
		if text == "" {
			text = opt.Text
		}
		answered, err := a.deps.Steps.AnswerIfOpen(dbc, step.ID, map[string]interface{}{
			"selected_option_id":   opt.ID,
			"selected_option_text": text,
			"answered_at":          answeredAt,
		})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(answered, "step answered concurrently"); err != nil {
			return err
		}

		next := reasoning.StageQuestionsAnswered
		if in.StepNumber < reasoning.QuestionCount {
			next = reasoning.QuestionStage(in.StepNumber + 1)
		}
		if err := a.advance(dbc, s, s.Version, next, nil); err != nil {
			return err
		}
		step.SelectedOptionID = &opt.ID
		step.SelectedOptionText = &text
		step.AnsweredAt = &answeredAt
		out = domainagg.RecordAnswerResult{
			Step:      step,
			Stage:     next,
			Remaining: reasoning.QuestionCount - in.StepNumber,
		}
		return nil
	})
	return out, err
}

func (a *sessionAggregate) CommitDiagnosis(ctx context.Context, in domainagg.CommitDiagnosisInput) ([]*reasoning.DifferentialDiagnosis, error) {
	const op = "Reasoning.Session.CommitDiagnosis"
	if len(in.Differentials) == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "no differentials to commit", nil)
	}
	var out []*reasoning.DifferentialDiagnosis
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.loadOwned(dbc, in.StudentID, in.SessionID)
		if err != nil {
			return err
		}
		if err := RequireStage(s.Stage, reasoning.StageQuestionsAnswered); err != nil {
			return err
		}
		if err := RequireVersionMatch(s.Version, in.ExpectedVersion); err != nil {
			return err
		}
		answered, err := a.deps.Steps.CountAnswered(dbc, s.ID)
		if err != nil {
			return err
		}
		if answered != reasoning.QuestionCount {
			return ValidationError(fmt.Sprintf("%d of %d steps answered", answered, reasoning.QuestionCount))
		}
		existing, err := a.deps.Differentials.CountBySession(dbc, s.ID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return InvariantError("differentials already recorded for session")
		}
		for i, d := range in.Differentials {
			if d.ConfidenceScore < 0 || d.ConfidenceScore > 1 {
				return InvariantError(fmt.Sprintf("confidence %.3f out of range for %q", d.ConfidenceScore, d.Name))
			}
			d.ID = uuid.Nil
			d.SessionID = s.ID
			d.DisplayOrder = i + 1
		}
		if out, err = a.deps.Differentials.CreateBatch(dbc, in.Differentials); err != nil {
			return err
		}
		return a.advance(dbc, s, in.ExpectedVersion, reasoning.StageDiagnosisReady, nil)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *sessionAggregate) SelectFinal(ctx context.Context, in domainagg.SelectFinalInput) (domainagg.SelectFinalResult, error) {
	const op = "Reasoning.Session.SelectFinal"
	var out domainagg.SelectFinalResult
	if in.DifferentialID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing differential_id", nil)
	}
	completedAt := in.CompletedAt.UTC()
	if in.CompletedAt.IsZero() {
		completedAt = time.Now().UTC()
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.loadOwned(dbc, in.StudentID, in.SessionID)
		if err != nil {
			return err
		}
		if err := RequireStage(s.Stage, reasoning.StageDiagnosisReady); err != nil {
			return err
		}
		diff, err := a.deps.Differentials.GetByID(dbc, in.DifferentialID)
		if err != nil {
			return err
		}
		if diff == nil || diff.SessionID != s.ID {
			return ValidationError("differential does not belong to this session")
		}
		final, err := a.deps.Finals.Create(dbc, &reasoning.FinalDiagnosis{
			SessionID:      s.ID,
			DifferentialID: diff.ID,
			Rationale:      trimmedOrNil(in.Rationale),
		})
		if err != nil {
			return err
		}
		steps, err := a.deps.Steps.CountBySession(dbc, s.ID)
		if err != nil {
			return err
		}
		totalSteps := int(steps)
		spent := int(completedAt.Sub(s.StartedAt).Seconds())
		if spent < 0 {
			spent = 0
		}
		if err := a.advance(dbc, s, s.Version, reasoning.StageCompleted, map[string]any{
			"status":             reasoning.StatusCompleted,
			"completed_at":       completedAt,
			"total_steps":        totalSteps,
			"time_spent_seconds": spent,
		}); err != nil {
			return err
		}
		s.Stage = reasoning.StageCompleted
		s.Status = reasoning.StatusCompleted
		s.Version++
		s.CompletedAt = &completedAt
		s.TotalSteps = &totalSteps
		s.TimeSpentSeconds = &spent
		out = domainagg.SelectFinalResult{Final: final, Session: s}
		return nil
	})
	return out, err
}

func (a *sessionAggregate) CreateReport(ctx context.Context, in domainagg.CreateReportInput) (*reasoning.ClinicalReport, error) {
	const op = "Reasoning.Session.CreateReport"
	if in.Report == nil || strings.TrimSpace(in.Report.Title) == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "report title is required", nil)
	}
	var out *reasoning.ClinicalReport
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := a.loadOwned(dbc, in.StudentID, in.SessionID)
		if err != nil {
			return err
		}
		existing, err := a.deps.Reports.CountBySession(dbc, s.ID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return ConflictError("report already exists for session")
		}
		if s.Status != reasoning.StatusCompleted {
			return ValidationError("session must be completed before a report is written")
		}
		diffs, err := a.deps.Differentials.ListBySession(dbc, s.ID)
		if err != nil {
			return err
		}
		rep := in.Report
		rep.ID = uuid.Nil
		rep.SessionID = s.ID
		rep.StudentID = s.StudentID
		rep.Title = strings.TrimSpace(rep.Title)
		if len(rep.KeyFindings) == 0 {
			rep.KeyFindings = []byte("[]")
		}
		if len(diffs) > 0 {
			rep.Urgency = diffs[0].Urgency
			rep.EducationalNote = diffs[0].EducationalNote
		}
		out, err = a.deps.Reports.Create(dbc, rep)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
