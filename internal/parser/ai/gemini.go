// Package ai implements the external variant-generation collaborator on
// top of the Gemini generateContent API.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash"

	variantMarker = "<variant>"
	variantCount  = 4
)

// PlaceholderVariants is the clearly-labeled fallback set used when no
// credentials are configured. The first entry is correct by convention,
// like every generated set.
var PlaceholderVariants = []string{"Mock A", "Mock B", "Mock C", "Mock D"}

// Config holds connection details for the generator.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // overridable for tests
	Timeout time.Duration
}

// Client requests answer variants for a question and parses the
// <variant>-tagged response. Implements parser.VariantGenerator.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
		logger:     logger.With().Str("component", "variant_generator").Logger(),
	}
}

// Generate returns exactly 4 variants for the question text, first one
// correct. A missing API key degrades to the placeholder set without a
// network call; every other failure is returned to the caller, which is
// expected to fail open.
func (c *Client) Generate(ctx context.Context, questionText string) ([]string, error) {
	if c.config.APIKey == "" {
		c.logger.Warn().Msg("generator api key missing, returning placeholder variants")
		return append([]string(nil), PlaceholderVariants...), nil
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(questionText)}}}},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimSuffix(c.config.BaseURL, "/"), c.config.Model, c.config.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("generator returned status %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decode generator payload: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("generator returned no candidates")
	}

	variants := splitVariants(genResp.Candidates[0].Content.Parts[0].Text)
	if len(variants) < variantCount {
		return nil, fmt.Errorf("generator returned %d variants, want %d", len(variants), variantCount)
	}
	return variants[:variantCount], nil
}

// buildPrompt keeps the output format machine-parseable: no lettering,
// no markdown, every answer behind a <variant> tag, correct one first.
func buildPrompt(questionText string) string {
	return fmt.Sprintf(`You are a quiz engine backend.
For the question: %q

Generate 1 correct answer and 3 incorrect answers.

CRITICAL OUTPUT FORMAT RULES:
1. Do NOT use A), B), C), D) numbering.
2. Do NOT use markdown or bold text.
3. Start every answer with the tag "<variant>".
4. The first variant MUST be the correct one.

Example output format:
<variant> Paris
<variant> London
<variant> Berlin
<variant> Madrid
`, questionText)
}

func splitVariants(text string) []string {
	parts := strings.Split(text, variantMarker)
	variants := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			variants = append(variants, v)
		}
	}
	return variants
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}
