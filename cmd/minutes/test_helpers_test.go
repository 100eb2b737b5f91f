package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"minutes/internal/config"
	"minutes/internal/testsupport"
)

const sampleNotes = "Ana and Ben met on Monday to review the budget and agree on the hiring plan for next quarter."

const modelAnswer = "```json\n" + `{"meeting_time": "Monday 10:00", "participants": ["Ana", "Ben"], "topics": ["Budget review", "Hiring plan"], "action_items": ["Ben posts the job ad", {"item": "Send forecast", "responsible": "Ana", "due": "Friday"}]}` + "\n```"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	generated  *atomic.Int32
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	return setupCLITestEnvWithModel(t, http.StatusOK, modelAnswer)
}

func setupCLITestEnvWithModel(t *testing.T, status int, answer string, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	generated := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3:latest","model":"llama3:latest"}]}`))
		case "/api/generate":
			generated.Add(1)
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{"response": answer})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	opts = append([]testsupport.ConfigOption{
		testsupport.WithOllamaURL(srv.URL + "/api/generate"),
		testsupport.WithStubbedBinaries(),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, generated: generated}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func writeNotes(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, args, configPath, "")
}

func runCLIWithInput(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
