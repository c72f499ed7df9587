// Package grammar sends draft text to the Gemini generateContent endpoint
// for grammar correction.
package grammar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the generateContent base URL; the model is appended.
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"
	// DefaultModel is the model used for corrections.
	DefaultModel = "gemini-2.0-flash"
	// DefaultTimeout bounds one correction request.
	DefaultTimeout = 30 * time.Second

	temperature = 0.2

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20
)

// ErrEmptyDraft is returned when there is no text to correct.
var ErrEmptyDraft = errors.New("enter text before fixing grammar")

// APIError represents a failed or malformed response from the endpoint.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return "gemini: " + e.Message
	}
	return fmt.Sprintf("gemini: %d %s", e.Status, e.Message)
}

// KeySource provides the API key for each request.
type KeySource interface {
	Load() (string, error)
}

type (
	part struct {
		Text string `json:"text"`
	}

	content struct {
		Parts []part `json:"parts"`
	}

	generationConfig struct {
		Temperature float64 `json:"temperature"`
	}

	generateRequest struct {
		Contents         []content        `json:"contents"`
		GenerationConfig generationConfig `json:"generationConfig"`
	}

	generateResponse struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
	}
)

// Config configures a Client.
type Config struct {
	Endpoint   string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client corrects grammar through Gemini.
type Client struct {
	endpoint string
	model    string
	keys     KeySource
	http     *http.Client
	logger   *slog.Logger
}

// New creates a Client. Zero Config fields take the defaults.
func New(keys KeySource, cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		model:    cfg.Model,
		keys:     keys,
		http:     cfg.HTTPClient,
		logger:   cfg.Logger,
	}
}

// Prompt builds the instruction sent with text.
func Prompt(text string) string {
	return "Strictly fix the grammar, punctuation, and spelling of the following text without changing its meaning or style:\n\n\"" +
		text + "\". If it is correct then send in the exact same text with no changes."
}

// Fix returns the corrected form of text.
func (c *Client) Fix(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyDraft
	}

	key, err := c.keys.Load()
	if err != nil {
		return "", err
	}
	if err := ValidateKey(key); err != nil {
		return "", err
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: Prompt(text)}}}},
		GenerationConfig: generationConfig{Temperature: temperature},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := c.endpoint + "/" + url.PathEscape(c.model) + ":generateContent?key=" + url.QueryEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", redact(err, key))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}
	c.logger.Debug("gemini response", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", &APIError{Message: "malformed response: " + err.Error()}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &APIError{Message: "response has no candidates"}
	}
	fixed := parsed.Candidates[0].Content.Parts[0].Text
	if fixed == "" {
		return "", &APIError{Message: "response text is empty"}
	}

	return unquote(fixed), nil
}

// unquote drops one leading and one trailing double quote, which the model
// copies from the prompt.
func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

// redact removes the API key from transport errors, which embed the URL.
func redact(err error, key string) error {
	msg := err.Error()
	if key == "" || !strings.Contains(msg, key) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(msg, key, Mask(key)), err: err}
}

// redactedError carries a masked message but still unwraps to the original
// error, so callers can match context cancellation and net errors.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }

// Corrector corrects a draft.
type Corrector interface {
	Fix(ctx context.Context, text string) (string, error)
}

// FixDraft runs draft through c. On any failure it returns the draft
// unchanged together with the error, so the caller can show a notice
// without losing text.
func FixDraft(ctx context.Context, c Corrector, draft string) (string, error) {
	fixed, err := c.Fix(ctx, draft)
	if err != nil {
		return draft, err
	}
	return fixed, nil
}
