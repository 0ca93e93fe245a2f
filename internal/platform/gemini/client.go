package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/yungbote/clinireason-backend/internal/observability"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
	"github.com/yungbote/clinireason-backend/internal/platform/promptstyle"
)

type Config struct {
	APIKey      string
	Model       string
	Temperature *float32
}

// Client produces JSON objects with Gemini's JSON response mode.
type Client struct {
	log    *logger.Logger
	client *genai.Client
	model  string
	temp   *float32
}

func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Client{
		log:    log.With("service", "GeminiClient"),
		client: c,
		model:  model,
		temp:   cfg.Temperature,
	}, nil
}

// GenerateJSON asks for a JSON object constrained by schema through the response
// schema config; callers still validate the result.
func (c *Client) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	cfg, err := c.contentConfig(system, schemaName, schema)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), cfg)
	if err != nil {
		c.log.Warn("gemini request failed", "schema", schemaName, "model", c.model, "error", err)
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if result.UsageMetadata != nil {
		observability.Current().AddGenerationTokens("gemini",
			int(result.UsageMetadata.PromptTokenCount),
			int(result.UsageMetadata.CandidatesTokenCount))
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, fmt.Errorf("gemini returned no text")
	}
	text = stripFences(text)
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w", err)
	}
	c.log.Debug("gemini structured output", "schema", schemaName, "model", c.model, "duration", time.Since(start).String())
	return obj, nil
}

func (c *Client) contentConfig(system, schemaName string, schema map[string]any) (*genai.GenerateContentConfig, error) {
	if schemaName == "" {
		return nil, fmt.Errorf("schemaName required")
	}
	if len(schema) == 0 {
		return nil, fmt.Errorf("schema required for %s", schemaName)
	}
	return &genai.GenerateContentConfig{
		SystemInstruction:  genai.NewContentFromText(promptstyle.ApplySystem(system, "json"), genai.RoleUser),
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: schema,
		Temperature:        c.temp,
	}, nil
}

// stripFences removes a ```json fence if the model added one anyway.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
