package reasoning

import "testing"

func TestAwaitingStep(t *testing.T) {
	cases := map[string]int{
		QuestionStage(1):       1,
		QuestionStage(5):       5,
		"question_6":           0,
		StageSymptomsReady:     0,
		StageQuestionsAnswered: 0,
	}
	for stage, want := range cases {
		if got := AwaitingStep(stage); got != want {
			t.Fatalf("AwaitingStep(%q)=%d want %d", stage, got, want)
		}
	}
}

func TestStatusAdvances(t *testing.T) {
	if !StatusAdvances(StatusCompleted, StatusSubmitted) {
		t.Fatalf("completed -> submitted should advance")
	}
	if StatusAdvances(StatusReviewed, StatusCompleted) {
		t.Fatalf("reviewed -> completed must not be allowed")
	}
	if StatusAdvances("bogus", StatusCompleted) {
		t.Fatalf("unknown status must not advance")
	}
}

func TestFindOption(t *testing.T) {
	s := &SessionStep{OptionsPresented: []byte(`[{"id":"a","text":"Sharp"},{"id":"b","text":"Dull"}]`)}
	o, ok := s.FindOption("b")
	if !ok || o.Text != "Dull" {
		t.Fatalf("FindOption(b)=%+v,%v", o, ok)
	}
	if _, ok := s.FindOption("z"); ok {
		t.Fatalf("FindOption(z) should miss")
	}
}
