package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/asapdigest/content-pipeline/pkg/textutil"
)

const (
	defaultCallTimeout = 30 * time.Second
	defaultInputChars  = 2000
)

// OpenAIService implements Service on OpenAI-compatible chat completion APIs.
type OpenAIService struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string        // optional, for compatible providers
	Timeout time.Duration // per-call; defaults to 30s
}

func NewOpenAI(cfg Config) (*OpenAIService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("enrich: api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("enrich: model is required")
	}

	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	return &OpenAIService{client: c, model: cfg.Model, timeout: timeout}, nil
}

func (s *OpenAIService) Summarize(ctx context.Context, text string) (string, error) {
	out, err := s.create(ctx,
		"Summarize the text in 1-2 plain sentences. Return only the summary.",
		textutil.Truncate(text, defaultInputChars),
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (s *OpenAIService) ExtractEntities(ctx context.Context, text string) ([]string, error) {
	return s.createList(ctx,
		"Extract the named entities (people, organizations, places, tickers) from the text. Respond with a JSON array of strings only.",
		text,
	)
}

func (s *OpenAIService) Classify(ctx context.Context, text string, taxonomy []string) ([]string, error) {
	sys := fmt.Sprintf(
		"Classify the text into the most fitting of these categories: %s. Respond with a JSON array of the matching category names only.",
		strings.Join(taxonomy, ", "),
	)
	return s.createList(ctx, sys, text)
}

func (s *OpenAIService) GenerateKeywords(ctx context.Context, text string) ([]string, error) {
	return s.createList(ctx,
		"Generate 5-10 search keywords for the text. Respond with a JSON array of strings only.",
		text,
	)
}

func (s *OpenAIService) AssessQuality(ctx context.Context, text string, opts QualityOptions) (*QualityResponse, error) {
	maxChars := opts.MaxChars
	if maxChars <= 0 {
		maxChars = defaultInputChars
	}

	sys := `Assess the content quality. Score coherence, clarity, accuracy, relevance and engagement from 0 to 10.
Respond with a JSON object: {"overall": n, "coherence": n, "clarity": n, "accuracy": n, "relevance": n, "engagement": n, "explanations": {"<dimension>": "<one sentence>"}}.
Respond with JSON only.`

	out, err := s.create(ctx, sys, textutil.Truncate(text, maxChars))
	if err != nil {
		return nil, err
	}

	var resp QualityResponse
	if err := json.Unmarshal([]byte(extractJSON(out)), &resp); err != nil {
		return nil, fmt.Errorf("parse quality response: %w", err)
	}
	return &resp, nil
}

func (s *OpenAIService) create(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAIService) createList(ctx context.Context, system, text string) ([]string, error) {
	out, err := s.create(ctx, system, textutil.Truncate(text, defaultInputChars))
	if err != nil {
		return nil, err
	}

	var items []string
	if err := json.Unmarshal([]byte(extractJSON(out)), &items); err != nil {
		return nil, fmt.Errorf("parse list response: %w", err)
	}

	cleaned := items[:0]
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			cleaned = append(cleaned, it)
		}
	}
	return cleaned, nil
}

// extractJSON trims code fences and surrounding prose some models wrap
// around JSON payloads.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "[{"); i > 0 {
		s = s[i:]
	}
	if i := strings.LastIndexAny(s, "]}"); i >= 0 && i < len(s)-1 {
		s = s[:i+1]
	}
	return s
}
