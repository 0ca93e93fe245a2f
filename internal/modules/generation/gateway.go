package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domainagg "github.com/yungbote/clinireason-backend/internal/domain/aggregates"
	"github.com/yungbote/clinireason-backend/internal/modules/generation/prompts"
	"github.com/yungbote/clinireason-backend/internal/observability"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
)

const DefaultTimeout = 90 * time.Second

// Generator is a single JSON-producing call to a text generation provider.
// The openai and gemini platform clients both satisfy it.
type Generator interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
}

// Gateway is the only adapter between the engine and the generator.
// It never touches persistence and never retries; every failure carries
// domainagg.CodeGenerationFailed.
type Gateway interface {
	Generate(ctx context.Context, req Request) (Result, error)
	Symptoms(ctx context.Context, regionID, regionName string) ([]Symptom, error)
	Questions(ctx context.Context, regionID, regionName, studentLevel string, symptoms []SymptomRef) ([]Question, error)
	Diagnosis(ctx context.Context, regionID, regionName string, symptoms []SymptomRef, answers []AnsweredQuestion) (*DiagnosisResult, error)
}

type Config struct {
	// Provider labels metrics and spans.
	Provider string
	Timeout  time.Duration
}

type gateway struct {
	log      *logger.Logger
	gen      Generator
	provider string
	timeout  time.Duration
}

func NewGateway(log *logger.Logger, gen Generator, cfg Config) Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	provider := strings.TrimSpace(cfg.Provider)
	if provider == "" {
		provider = "unknown"
	}
	return &gateway{
		log:      log.With("service", "GenerationGateway"),
		gen:      gen,
		provider: provider,
		timeout:  cfg.Timeout,
	}
}

func (g *gateway) Symptoms(ctx context.Context, regionID, regionName string) ([]Symptom, error) {
	res, err := g.Generate(ctx, Request{Stage: StageSymptoms, RegionID: regionID, RegionName: regionName})
	if err != nil {
		return nil, err
	}
	return res.Symptoms, nil
}

func (g *gateway) Questions(ctx context.Context, regionID, regionName, studentLevel string, symptoms []SymptomRef) ([]Question, error) {
	res, err := g.Generate(ctx, Request{
		Stage:        StageQuestions,
		RegionID:     regionID,
		RegionName:   regionName,
		StudentLevel: studentLevel,
		Symptoms:     symptoms,
	})
	if err != nil {
		return nil, err
	}
	return res.Questions, nil
}

func (g *gateway) Diagnosis(ctx context.Context, regionID, regionName string, symptoms []SymptomRef, answers []AnsweredQuestion) (*DiagnosisResult, error) {
	res, err := g.Generate(ctx, Request{
		Stage:      StageDiagnosis,
		RegionID:   regionID,
		RegionName: regionName,
		Symptoms:   symptoms,
		Answers:    answers,
	})
	if err != nil {
		return nil, err
	}
	return res.Diagnosis, nil
}

func (g *gateway) Generate(ctx context.Context, req Request) (Result, error) {
	op := "Generation." + string(req.Stage)
	name, in, err := promptFor(req)
	if err != nil {
		return Result{}, fail(op, "invalid request", err)
	}
	p, err := prompts.Build(name, in)
	if err != nil {
		return Result{}, fail(op, "invalid request", err)
	}

	ctx, span := observability.Tracer().Start(ctx, "generation."+string(req.Stage), trace.WithAttributes(
		attribute.String("generation.provider", g.provider),
		attribute.String("generation.prompt", p.Name),
		attribute.String("generation.fingerprint", p.Fingerprint()),
	))
	defer span.End()

	start := time.Now()
	res, err := g.call(ctx, req.Stage, p)
	status := "ok"
	if err != nil {
		status = "failed"
		if errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		g.log.Warn("generation failed",
			"stage", string(req.Stage),
			"region_id", req.RegionID,
			"fingerprint", p.Fingerprint(),
			"status", status,
			"duration", time.Since(start).String(),
			"error", err,
		)
	}
	observability.Current().ObserveGeneration(g.provider, string(req.Stage), status, time.Since(start))
	if err != nil {
		msg := "generator output rejected"
		if status == "timeout" {
			msg = "generator timed out"
		}
		return Result{}, fail(op, msg, err)
	}
	return res, nil
}

func (g *gateway) call(ctx context.Context, stage Stage, p prompts.Prompt) (Result, error) {
	if g.gen == nil {
		return Result{}, errors.New("generator not configured")
	}
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	obj, err := g.gen.GenerateJSON(cctx, p.System, p.User, p.SchemaName, p.Schema)
	if err != nil {
		if cctx.Err() != nil && ctx.Err() == nil {
			return Result{}, fmt.Errorf("generator timed out after %s: %w", g.timeout, context.DeadlineExceeded)
		}
		return Result{}, err
	}
	if obj == nil {
		return Result{}, errors.New("empty generator response")
	}

	res := Result{Stage: stage}
	switch stage {
	case StageSymptoms:
		res.Symptoms, err = parseSymptoms(obj)
	case StageQuestions:
		res.Questions, err = parseQuestions(obj)
	case StageDiagnosis:
		res.Diagnosis, err = parseDiagnosis(obj)
	}
	if err != nil {
		return Result{}, fmt.Errorf("invalid %s output: %w", stage, err)
	}
	return res, nil
}

func promptFor(req Request) (prompts.PromptName, prompts.Input, error) {
	in := prompts.Input{
		RegionID:     strings.TrimSpace(req.RegionID),
		RegionName:   strings.TrimSpace(req.RegionName),
		StudentLevel: strings.TrimSpace(req.StudentLevel),
		SymptomsText: symptomsText(req.Symptoms),
		AnswersText:  answersText(req.Answers),
		MinSymptoms:  MinSymptoms,
		MaxSymptoms:  MaxSymptoms,
		QuestionsN:   QuestionCount,
		OptionsN:     OptionsPerQuestion,
		MinDiagnoses: MinDiagnoses,
		MaxDiagnoses: MaxDiagnoses,
	}
	if in.RegionName == "" {
		in.RegionName = in.RegionID
	}
	if in.StudentLevel == "" {
		in.StudentLevel = "unspecified"
	}
	switch req.Stage {
	case StageSymptoms:
		return prompts.PromptSymptoms, in, nil
	case StageQuestions:
		return prompts.PromptQuestions, in, nil
	case StageDiagnosis:
		if len(req.Answers) == 0 {
			return "", in, errors.New("answers required")
		}
		return prompts.PromptDiagnosis, in, nil
	default:
		return "", in, fmt.Errorf("unknown stage %q", req.Stage)
	}
}

func symptomsText(symptoms []SymptomRef) string {
	var b strings.Builder
	for _, s := range symptoms {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(name)
		if s.IsRedFlag {
			b.WriteString(" [RED FLAG]")
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func answersText(answers []AnsweredQuestion) string {
	var b strings.Builder
	for i, a := range answers {
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n", i+1, strings.TrimSpace(a.Question), i+1, strings.TrimSpace(a.Answer))
	}
	return strings.TrimSpace(b.String())
}

func fail(op, msg string, cause error) error {
	return domainagg.NewError(domainagg.CodeGenerationFailed, op, msg, cause)
}
