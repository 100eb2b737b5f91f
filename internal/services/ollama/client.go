package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL        = "http://localhost:11434/api/generate"
	DefaultModel          = "llama3"
	DefaultTimeoutSeconds = 120
)

// Config captures the runtime settings required to talk to Ollama.
type Config struct {
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client wraps the Ollama generate API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an Ollama client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = DefaultTimeoutSeconds
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Model returns the default model name used by Generate.
func (c *Client) Model() string {
	return c.cfg.Model
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// Generate sends prompt to the configured model and returns the raw "response"
// text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.GenerateWithModel(ctx, prompt, c.cfg.Model)
}

// GenerateWithModel is Generate with an explicit model name.
func (c *Client) GenerateWithModel(ctx context.Context, prompt, model string) (string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		model = c.cfg.Model
	}
	encoded, err := json.Marshal(generateRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", &Error{Kind: KindUnexpected, Err: fmt.Errorf("encode body: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", &Error{Kind: KindUnexpected, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			Kind:       KindNonSuccessStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("http %d: %s", resp.StatusCode, snippet(string(body))),
		}
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &Error{Kind: KindUnexpected, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	text, ok := decoded["response"].(string)
	if !ok {
		return "", &Error{
			Kind:       KindMissingResponseField,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("body has no response string: %s", snippet(string(body))),
		}
	}
	return text, nil
}

type tagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

// HealthCheck verifies the server answers GET /api/tags and that the
// configured model is installed.
func (c *Client) HealthCheck(ctx context.Context) error {
	endpoint, err := tagsURL(c.cfg.BaseURL)
	if err != nil {
		return &Error{Kind: KindUnexpected, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &Error{Kind: KindUnexpected, Err: fmt.Errorf("new request: %w", err)}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return &Error{
			Kind:       KindNonSuccessStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("http %d: %s", resp.StatusCode, snippet(string(body))),
		}
	}
	var tags tagsResponse
	if err := json.Unmarshal(body, &tags); err != nil {
		return &Error{Kind: KindUnexpected, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode tags: %w", err)}
	}
	for _, m := range tags.Models {
		if modelMatches(c.cfg.Model, m.Name) || modelMatches(c.cfg.Model, m.Model) {
			return nil
		}
	}
	return fmt.Errorf("model %q is not installed (run: ollama pull %s)", c.cfg.Model, c.cfg.Model)
}

func tagsURL(base string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("parse base url: %q has no host", base)
	}
	parsed.Path = "/api/tags"
	parsed.RawQuery = ""
	return parsed.String(), nil
}

// modelMatches treats "llama3" and "llama3:latest" as the same model.
func modelMatches(want, have string) bool {
	want = strings.TrimSpace(want)
	have = strings.TrimSpace(have)
	if want == "" || have == "" {
		return false
	}
	if want == have {
		return true
	}
	if !strings.Contains(want, ":") {
		return have == want+":latest"
	}
	return false
}

func classifyTransportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &Error{Kind: KindConnectionRefused, Err: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{Kind: KindConnectionRefused, Err: err}
	}
	return &Error{Kind: KindUnexpected, Err: err}
}

func snippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
