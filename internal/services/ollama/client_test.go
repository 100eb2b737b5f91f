package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerateReturnsResponseText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "demo-model" || req.Prompt != "hello" || req.Stream {
			t.Fatalf("unexpected request payload: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"model": "demo-model", "response": `{"ok":true}`, "done": true})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Model: "demo-model"})
	got, err := client.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != `{"ok":true}` {
		t.Fatalf("unexpected response %q", got)
	}
}

func TestGenerateWithModelOverridesDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]any{"response": req.Model})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Model: "default"})
	got, err := client.GenerateWithModel(context.Background(), "x", "mistral")
	if err != nil {
		t.Fatalf("GenerateWithModel returned error: %v", err)
	}
	if got != "mistral" {
		t.Fatalf("expected override model, got %q", got)
	}
}

func TestGenerateNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.Generate(context.Background(), "hello")
	var oerr *Error
	if !errors.As(err, &oerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if oerr.Kind != KindNonSuccessStatus || oerr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected error: %+v", oerr)
	}
}

func TestGenerateMissingResponseField(t *testing.T) {
	for name, body := range map[string]string{
		"absent":     `{"done":true}`,
		"not-string": `{"response":42}`,
		"null":       `{"response":null}`,
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			_, err := NewClient(Config{BaseURL: server.URL}).Generate(context.Background(), "hello")
			var oerr *Error
			if !errors.As(err, &oerr) || oerr.Kind != KindMissingResponseField {
				t.Fatalf("expected missing response field, got %v", err)
			}
		})
	}
}

func TestGenerateNonJSONBodyIsUnexpected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>proxy</html>"))
	}))
	defer server.Close()

	_, err := NewClient(Config{BaseURL: server.URL}).Generate(context.Background(), "hello")
	var oerr *Error
	if !errors.As(err, &oerr) || oerr.Kind != KindUnexpected {
		t.Fatalf("expected unexpected kind, got %v", err)
	}
}

func TestGenerateConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := server.URL
	server.Close()

	_, err := NewClient(Config{BaseURL: addr}).Generate(context.Background(), "hello")
	var oerr *Error
	if !errors.As(err, &oerr) || oerr.Kind != KindConnectionRefused {
		t.Fatalf("expected connection refused, got %v", err)
	}
}

func TestGenerateTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(Config{BaseURL: server.URL}, WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	_, err := client.Generate(context.Background(), "hello")
	var oerr *Error
	if !errors.As(err, &oerr) || oerr.Kind != KindTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{})
	if client.cfg.BaseURL != DefaultBaseURL || client.Model() != DefaultModel {
		t.Fatalf("unexpected defaults: %+v", client.cfg)
	}
	if client.httpClient.Timeout != 120*time.Second {
		t.Fatalf("unexpected timeout %s", client.httpClient.Timeout)
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []any{map[string]any{"name": "llama3:latest", "model": "llama3:latest"}},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL + "/api/generate", Model: "llama3"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}

	missing := NewClient(Config{BaseURL: server.URL + "/api/generate", Model: "mistral"})
	if err := missing.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestModelMatches(t *testing.T) {
	cases := []struct {
		want, have string
		match      bool
	}{
		{"llama3", "llama3", true},
		{"llama3", "llama3:latest", true},
		{"llama3:8b", "llama3:latest", false},
		{"llama3", "llama3:8b", false},
		{"", "llama3", false},
	}
	for _, tc := range cases {
		if got := modelMatches(tc.want, tc.have); got != tc.match {
			t.Errorf("modelMatches(%q, %q) = %v", tc.want, tc.have, got)
		}
	}
}
