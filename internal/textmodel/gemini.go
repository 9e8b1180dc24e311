// CLAUDE:SUMMARY Gemini-backed Model: genai client, schema-constrained JSON mode, bounded retry with backoff.
package textmodel

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"google.golang.org/genai"
)

// Config configures the Gemini model client.
type Config struct {
	// APIKey may reference an environment variable as ${NAME}.
	APIKey string
	// Model is the model identifier. Default: gemini-2.5-flash.
	Model string
	// Temperature for generation. Default: 0.2; analysis work wants
	// determinism, not flair.
	Temperature float32
	// Retries bounds attempts per call. Default: 3.
	Retries int
	// Timeout applies per call. Default: 2m.
	Timeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = "gemini-2.5-flash"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.2
	}
	if c.Retries <= 0 {
		c.Retries = 3
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Minute
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Gemini implements Model on the Google GenAI API.
type Gemini struct {
	client *genai.Client
	config Config
	logger *slog.Logger
}

// NewGemini creates the client. The API key is resolved at construction so a
// missing key fails fast instead of at the first pipeline run.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	cfg.defaults()
	key := os.Expand(cfg.APIKey, os.Getenv)
	if key == "" {
		return nil, fmt.Errorf("textmodel: missing API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: key})
	if err != nil {
		return nil, fmt.Errorf("textmodel: create client: %w", err)
	}
	return &Gemini{client: client, config: cfg, logger: cfg.Logger}, nil
}

// Complete implements Model. Transient failures are retried with a short
// linear backoff; the context bounds the whole call including retries.
func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.config.Temperature),
	}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		genCfg.ResponseMIMEType = "application/json"
		genCfg.ResponseSchema = req.Schema
	}
	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	var lastErr error
	for attempt := 1; attempt <= g.config.Retries; attempt++ {
		resp, err := g.client.Models.GenerateContent(callCtx, g.config.Model, contents, genCfg)
		if err == nil {
			text := resp.Text()
			if text == "" {
				return "", ErrEmptyResponse
			}
			return text, nil
		}
		lastErr = err
		if attempt == g.config.Retries {
			break
		}
		backoff := time.Duration(attempt) * 2 * time.Second
		g.logger.Warn("textmodel: generate failed, retrying",
			"model", g.config.Model, "attempt", attempt, "backoff", backoff, "error", err)
		select {
		case <-callCtx.Done():
			return "", callCtx.Err()
		case <-time.After(backoff):
		}
	}
	return "", fmt.Errorf("textmodel: generate after %d attempts: %w", g.config.Retries, lastErr)
}
