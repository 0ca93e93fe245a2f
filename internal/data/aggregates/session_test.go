package aggregates_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/clinireason-backend/internal/data/aggregates"
	"github.com/yungbote/clinireason-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/clinireason-backend/internal/data/repos"
	repotest "github.com/yungbote/clinireason-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/clinireason-backend/internal/domain/aggregates"
	"github.com/yungbote/clinireason-backend/internal/domain/reasoning"
	"github.com/yungbote/clinireason-backend/internal/domain/user"
)

func newSessionAggregate(t *testing.T, db *gorm.DB, hooks aggregates.Hooks) domainagg.SessionAggregate {
	t.Helper()
	r := repos.New(db, repotest.Logger(t))
	return aggregates.NewSessionAggregate(aggregates.SessionAggregateDeps{
		Base:          aggregates.BaseDeps{DB: db, Log: repotest.Logger(t), Hooks: hooks},
		Users:         r.Users,
		Sessions:      r.Sessions,
		Symptoms:      r.Symptoms,
		Steps:         r.Steps,
		Differentials: r.Differentials,
		Finals:        r.Finals,
		Reports:       r.Reports,
	})
}

func symptomRows(n int) []*reasoning.SessionSymptom {
	out := make([]*reasoning.SessionSymptom, n)
	for i := range out {
		out[i] = &reasoning.SessionSymptom{SymptomKey: fmt.Sprintf("s%d", i+1), Name: fmt.Sprintf("Symptom %d", i+1)}
	}
	return out
}

func stepRows(n int) []*reasoning.SessionStep {
	opts, _ := json.Marshal([]reasoning.PresentedOption{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}, {ID: "c", Text: "C"}, {ID: "d", Text: "D"}})
	out := make([]*reasoning.SessionStep, n)
	for i := range out {
		out[i] = &reasoning.SessionStep{QuestionKey: fmt.Sprintf("q%d", i+1), QuestionText: "?", OptionsPresented: opts}
	}
	return out
}

func TestCommitSymptomsStaleVersionConflictsAndWritesNothing(t *testing.T) {
	db := repotest.DB(t)
	hooks := &testutil.HooksRecorder{}
	agg := newSessionAggregate(t, db, hooks)
	ctx := context.Background()
	student := repotest.SeedUser(t, db, user.RoleStudent)

	s, err := agg.Start(ctx, domainagg.StartSessionInput{StudentID: student.ID, RegionID: "chest"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.StudentLevel != user.LevelClinical || s.Stage != reasoning.StageRegionSelected {
		t.Fatalf("unexpected session %+v", s)
	}

	_, err = agg.CommitSymptoms(ctx, domainagg.CommitSymptomsInput{
		StudentID: student.ID, SessionID: s.ID, ExpectedVersion: s.Version + 1, Symptoms: symptomRows(8),
	})
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict for stale version, got %v", err)
	}
	if len(hooks.Conflicts) != 1 {
		t.Fatalf("expected one conflict hook, got %+v", hooks.Conflicts)
	}
	var n int64
	db.Model(&reasoning.SessionSymptom{}).Where("session_id = ?", s.ID).Count(&n)
	if n != 0 {
		t.Fatalf("expected no symptom rows after conflict, got %d", n)
	}

	rows, err := agg.CommitSymptoms(ctx, domainagg.CommitSymptomsInput{
		StudentID: student.ID, SessionID: s.ID, ExpectedVersion: s.Version, Symptoms: symptomRows(8),
	})
	if err != nil || len(rows) != 8 {
		t.Fatalf("CommitSymptoms: rows=%d err=%v", len(rows), err)
	}
	// A second commit with the version observed before the first one loses.
	_, err = agg.CommitSymptoms(ctx, domainagg.CommitSymptomsInput{
		StudentID: student.ID, SessionID: s.ID, ExpectedVersion: s.Version, Symptoms: symptomRows(8),
	})
	if err == nil {
		t.Fatalf("expected second commit to fail")
	}
}

func TestForeignSessionReadsAsNotFound(t *testing.T) {
	db := repotest.DB(t)
	agg := newSessionAggregate(t, db, nil)
	owner := repotest.SeedUser(t, db, user.RoleStudent)
	intruder := repotest.SeedUser(t, db, user.RoleStudent)
	s := repotest.SeedSession(t, db, owner.ID, reasoning.StatusInProgress, reasoning.StageRegionSelected)

	_, err := agg.CommitSymptoms(context.Background(), domainagg.CommitSymptomsInput{
		StudentID: intruder.ID, SessionID: s.ID, Symptoms: symptomRows(8),
	})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestRetainSymptomsMatchesKeyOrName(t *testing.T) {
	db := repotest.DB(t)
	agg := newSessionAggregate(t, db, nil)
	ctx := context.Background()
	student := repotest.SeedUser(t, db, user.RoleStudent)
	s, _ := agg.Start(ctx, domainagg.StartSessionInput{StudentID: student.ID, RegionID: "chest"})
	if _, err := agg.CommitSymptoms(ctx, domainagg.CommitSymptomsInput{StudentID: student.ID, SessionID: s.ID, Symptoms: symptomRows(10)}); err != nil {
		t.Fatalf("CommitSymptoms: %v", err)
	}

	_, err := agg.RetainSymptoms(ctx, domainagg.RetainSymptomsInput{StudentID: student.ID, SessionID: s.ID, Selected: []string{"s1", "Made Up"}})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation error for unknown symptom, got %v", err)
	}
	kept, err := agg.RetainSymptoms(ctx, domainagg.RetainSymptomsInput{StudentID: student.ID, SessionID: s.ID, Selected: []string{"s1", "  symptom 3 "}})
	if err != nil {
		t.Fatalf("RetainSymptoms: %v", err)
	}
	if len(kept) != 2 || kept[0].SymptomKey != "s1" || kept[1].SymptomKey != "s3" {
		t.Fatalf("unexpected kept rows %+v", kept)
	}
	var n int64
	db.Model(&reasoning.SessionSymptom{}).Where("session_id = ?", s.ID).Count(&n)
	if n != 2 {
		t.Fatalf("expected unselected rows deleted, %d remain", n)
	}
}

func TestRecordAnswerRejectsRepeatAndSkip(t *testing.T) {
	db := repotest.DB(t)
	agg := newSessionAggregate(t, db, nil)
	ctx := context.Background()
	student := repotest.SeedUser(t, db, user.RoleStudent)
	s, _ := agg.Start(ctx, domainagg.StartSessionInput{StudentID: student.ID, RegionID: "chest"})
	if _, err := agg.CommitSymptoms(ctx, domainagg.CommitSymptomsInput{StudentID: student.ID, SessionID: s.ID, Symptoms: symptomRows(8)}); err != nil {
		t.Fatalf("CommitSymptoms: %v", err)
	}
	if _, err := agg.CommitQuestions(ctx, domainagg.CommitQuestionsInput{StudentID: student.ID, SessionID: s.ID, ExpectedVersion: 1, Steps: stepRows(5)}); err != nil {
		t.Fatalf("CommitQuestions: %v", err)
	}

	res, err := agg.RecordAnswer(ctx, domainagg.RecordAnswerInput{StudentID: student.ID, SessionID: s.ID, StepNumber: 1, OptionID: "b"})
	if err != nil {
		t.Fatalf("RecordAnswer(1): %v", err)
	}
	if res.Stage != reasoning.QuestionStage(2) || *res.Step.SelectedOptionText != "B" || res.Remaining != 4 {
		t.Fatalf("unexpected answer result %+v", res)
	}
	for _, tc := range []struct {
		step   int
		option string
	}{
		{1, "a"}, // already answered
		{3, "a"}, // skips step 2
		{2, "z"}, // not presented
		{6, "a"}, // out of range
	} {
		_, err := agg.RecordAnswer(ctx, domainagg.RecordAnswerInput{StudentID: student.ID, SessionID: s.ID, StepNumber: tc.step, OptionID: tc.option})
		if !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("step %d option %s: expected validation error, got %v", tc.step, tc.option, err)
		}
	}
}

func TestCommitFailureLeavesStageAndRowsUntouched(t *testing.T) {
	db := repotest.DB(t)
	hooks := &testutil.HooksRecorder{}
	runner := &testutil.InjectedTxRunner{DB: db}
	r := repos.New(db, repotest.Logger(t))
	agg := aggregates.NewSessionAggregate(aggregates.SessionAggregateDeps{
		Base:          aggregates.BaseDeps{DB: db, Log: repotest.Logger(t), Runner: runner, Hooks: hooks},
		Users:         r.Users,
		Sessions:      r.Sessions,
		Symptoms:      r.Symptoms,
		Steps:         r.Steps,
		Differentials: r.Differentials,
		Finals:        r.Finals,
		Reports:       r.Reports,
	})
	ctx := context.Background()
	student := repotest.SeedUser(t, db, user.RoleStudent)
	s, err := agg.Start(ctx, domainagg.StartSessionInput{StudentID: student.ID, RegionID: "abdomen"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := agg.CommitSymptoms(ctx, domainagg.CommitSymptomsInput{StudentID: student.ID, SessionID: s.ID, Symptoms: symptomRows(9)}); err != nil {
		t.Fatalf("CommitSymptoms: %v", err)
	}

	runner.FailCommit = fmt.Errorf("connection reset")
	_, err = agg.CommitQuestions(ctx, domainagg.CommitQuestionsInput{StudentID: student.ID, SessionID: s.ID, ExpectedVersion: 1, Steps: stepRows(5)})
	if err == nil {
		t.Fatalf("expected commit failure")
	}
	var steps int64
	db.Model(&reasoning.SessionStep{}).Where("session_id = ?", s.ID).Count(&steps)
	if steps != 0 {
		t.Fatalf("expected no steps after failed commit, got %d", steps)
	}
	var reloaded reasoning.Session
	if err := db.First(&reloaded, "id = ?", s.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Stage != reasoning.StageSymptomsReady || reloaded.Version != 1 {
		t.Fatalf("stage=%s version=%d after failed commit", reloaded.Stage, reloaded.Version)
	}
	stages := hooks.StagesSnapshot()
	if len(stages) != 1 || stages[0] != reasoning.StageSymptomsReady {
		t.Fatalf("only committed stages are reported, got %v", stages)
	}

	runner.FailCommit = nil
	if _, err := agg.CommitQuestions(ctx, domainagg.CommitQuestionsInput{StudentID: student.ID, SessionID: s.ID, ExpectedVersion: 1, Steps: stepRows(5)}); err != nil {
		t.Fatalf("retry CommitQuestions: %v", err)
	}
	if got := hooks.StagesSnapshot(); got[len(got)-1] != reasoning.QuestionStage(1) {
		t.Fatalf("expected question_1 reported last, got %v", got)
	}
}
