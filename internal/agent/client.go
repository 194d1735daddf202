package agent

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Options tune the Gemini responder.
type Options struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
	RequestInterval time.Duration
	MaxRetries      int
}

func (o *Options) fillDefaults() {
	if o.Model == "" {
		o.Model = "gemini-1.5-pro"
	}
	if o.Temperature == 0 {
		o.Temperature = 0.7
	}
	if o.MaxOutputTokens == 0 {
		o.MaxOutputTokens = 8192
	}
	if o.RequestInterval == 0 {
		o.RequestInterval = time.Second
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 3
	}
}

type geminiResponder struct {
	client *genai.Client
	opts   Options
	logger zerolog.Logger

	mu          sync.Mutex
	lastRequest time.Time
}

// NewGeminiResponder builds a rate-limited Responder backed by the
// Gemini API.
func NewGeminiResponder(ctx context.Context, apiKey string, opts Options, logger zerolog.Logger) (Responder, error) {
	opts.fillDefaults()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &GenerationError{Reason: "client init", Err: err}
	}

	return &geminiResponder{client: client, opts: opts, logger: logger}, nil
}

func (g *geminiResponder) Generate(ctx context.Context, req Request) (string, error) {
	if err := g.throttle(ctx); err != nil {
		return "", &GenerationError{Reason: "throttle", Err: err}
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(g.opts.Temperature)),
		MaxOutputTokens: int32(g.opts.MaxOutputTokens),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	var lastErr error
	for attempt := 0; attempt < g.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<attempt) * time.Second
			g.logger.Warn().
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("generation retry")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", &GenerationError{Reason: "context cancelled", Err: ctx.Err()}
			}
		}

		resp, err := g.client.Models.GenerateContent(ctx, g.opts.Model, genai.Text(req.Prompt), config)
		if err != nil {
			lastErr = err
			continue
		}
		if text := resp.Text(); text != "" {
			return text, nil
		}
		lastErr = &GenerationError{Reason: "empty response"}
	}

	return "", &GenerationError{Reason: "retries exhausted", Err: lastErr}
}

// throttle enforces the minimum interval between API calls.
func (g *geminiResponder) throttle(ctx context.Context) error {
	g.mu.Lock()
	wait := g.opts.RequestInterval - time.Since(g.lastRequest)
	if wait <= 0 {
		g.lastRequest = time.Now()
		g.mu.Unlock()
		return nil
	}
	g.lastRequest = time.Now().Add(wait)
	g.mu.Unlock()

	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
