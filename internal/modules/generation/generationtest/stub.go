// Package generationtest provides a scripted Generator and payload builders
// for tests that exercise the gateway without a provider.
package generationtest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Stub answers GenerateJSON by schema name. A stage without a scripted
// response fails like an unreachable provider.
type Stub struct {
	mu        sync.Mutex
	responses map[string]map[string]any
	errs      map[string]error
	Calls     []Call
	// Block, when set, makes calls wait until ctx is done.
	Block bool
}

type Call struct {
	SchemaName string
	System     string
	User       string
}

func NewStub() *Stub {
	return &Stub{responses: map[string]map[string]any{}, errs: map[string]error{}}
}

// On scripts the response for every schema whose name starts with prefix
// (e.g. "reasoning_symptoms").
func (s *Stub) On(prefix string, obj map[string]any) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[prefix] = obj
	delete(s.errs, prefix)
	return s
}

func (s *Stub) Fail(prefix string, err error) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[prefix] = err
	return s
}

func (s *Stub) CallCount(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.Calls {
		if strings.HasPrefix(c.SchemaName, prefix) {
			n++
		}
	}
	return n
}

func (s *Stub) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, Call{SchemaName: schemaName, System: system, User: user})
	block := s.Block
	var (
		resp map[string]any
		err  error
	)
	for prefix, e := range s.errs {
		if strings.HasPrefix(schemaName, prefix) {
			err = e
		}
	}
	for prefix, r := range s.responses {
		if strings.HasPrefix(schemaName, prefix) {
			resp = r
		}
	}
	s.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("no scripted response for " + schemaName)
	}
	return resp, nil
}

// Symptoms builds a symptoms payload; every third symptom is a red flag.
func Symptoms(names ...string) map[string]any {
	items := make([]any, 0, len(names))
	for i, n := range names {
		items = append(items, map[string]any{
			"id":          fmt.Sprintf("sym_%d", i+1),
			"name":        n,
			"description": n + " reported by the patient.",
			"is_red_flag": i%3 == 0,
			"category":    "Pain",
		})
	}
	return map[string]any{"symptoms": items}
}

// NumberedSymptoms builds n distinct symptoms.
func NumberedSymptoms(n int) map[string]any {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Symptom %d", i+1)
	}
	return Symptoms(names...)
}

// Questions builds n questions with four options a..d each.
func Questions(n int) map[string]any {
	items := make([]any, 0, n)
	for i := 0; i < n; i++ {
		opts := make([]any, 0, 4)
		for _, id := range []string{"a", "b", "c", "d"} {
			opts = append(opts, map[string]any{
				"id":                    id,
				"text":                  fmt.Sprintf("Answer %s to question %d", strings.ToUpper(id), i+1),
				"clinical_significance": "Narrows the differential.",
			})
		}
		items = append(items, map[string]any{
			"id":        fmt.Sprintf("q%d", i+1),
			"text":      fmt.Sprintf("Question %d?", i+1),
			"rationale": "Separates cardiac from non-cardiac causes.",
			"options":   opts,
		})
	}
	return map[string]any{"questions": items}
}

type Dx struct {
	Name        string
	Probability string
	Confidence  any
}

// Diagnosis builds a diagnosis payload in the given rank order.
func Diagnosis(urgency string, dx ...Dx) map[string]any {
	items := make([]any, 0, len(dx))
	for _, d := range dx {
		items = append(items, map[string]any{
			"name":                   d.Name,
			"icd_code":               nil,
			"probability":            d.Probability,
			"confidence":             d.Confidence,
			"description":            d.Name + " fits the presentation.",
			"supporting_findings":    []any{"exertional pain"},
			"contradicting_findings": []any{},
			"red_flags":              []any{},
			"next_steps":             []any{"ECG"},
		})
	}
	return map[string]any{
		"diagnoses":        items,
		"urgency":          urgency,
		"educational_note": "Always rule out life-threatening causes first.",
	}
}
