package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"minutes/internal/api"
	"minutes/internal/config"
	"minutes/internal/notes"
	"minutes/internal/pipeline"
	"minutes/internal/services/ollama"
	"minutes/internal/testsupport"
)

const sampleNotes = "Ana and Ben met on Monday to review the budget and agree on the hiring plan for next quarter."

const modelAnswer = "Here you go:\n```json\n" + `{"meeting_time": "Monday 10:00", "participants": ["Ana", "Ben"], "topics": ["Budget review", "Hiring plan"], "action_items": ["Ben posts the job ad", {"item": "Send forecast", "responsible": "Ana", "due": "Friday"}]}` + "\n```"

func fakeOllama(t *testing.T, status int, answer string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3:latest","model":"llama3:latest"}]}`))
		case "/api/generate":
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{"response": answer})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type fakeEngine struct{ text string }

func (f fakeEngine) Name() string { return "fake" }

func (f fakeEngine) Transcribe(context.Context, string) (string, error) { return f.text, nil }

func newTestServer(t *testing.T, ollamaURL string, opts ...testsupport.ConfigOption) (*Server, *config.Config) {
	t.Helper()
	opts = append(opts, testsupport.WithOllamaURL(ollamaURL+"/api/generate"))
	cfg := testsupport.NewConfig(t, opts...)
	st := testsupport.MustOpenStore(t, cfg)
	client := ollama.NewClient(ollama.Config{BaseURL: cfg.Ollama.APIURL, Model: cfg.Ollama.Model, TimeoutSeconds: cfg.Ollama.TimeoutSeconds})
	pl := pipeline.New(pipeline.Config{Limits: notes.DefaultLimits()}, client, nil)
	svc := api.NewMeetingService(cfg, pl, nil, api.WithStore(st), api.WithEngine(fakeEngine{text: "We agreed to ship on Friday."}))
	srv, err := New(cfg, svc, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, cfg
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(data)
}

func TestCreateListGetDelete(t *testing.T) {
	ollamaSrv := fakeOllama(t, http.StatusOK, modelAnswer)
	srv, _ := newTestServer(t, ollamaSrv.URL)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/meetings", jsonBody(t, map[string]string{"notes": sampleNotes}))
	req.Header.Set("X-Request-ID", "req-abc")
	w := do(t, h, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") != "req-abc" {
		t.Fatalf("request id not echoed: %q", w.Header().Get("X-Request-ID"))
	}
	var rep api.Report
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !rep.Persisted || rep.MeetingID == 0 || rep.RequestID != "req-abc" {
		t.Fatalf("unexpected report %#v", rep)
	}
	if rep.Record.MeetingTime != "Monday 10:00" || len(rep.Record.ActionItems) != 2 {
		t.Fatalf("unexpected record %#v", rep.Record)
	}

	w = do(t, h, httptest.NewRequest(http.MethodGet, "/api/reports/"+rep.ReportFile, nil))
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Fatalf("download failed: %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}

	w = do(t, h, httptest.NewRequest(http.MethodGet, "/api/meetings?search=hiring", nil))
	var list api.MeetingListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if w.Code != http.StatusOK || len(list.Meetings) != 1 || list.Search != "hiring" {
		t.Fatalf("unexpected list %d %#v", w.Code, list)
	}

	w = do(t, h, httptest.NewRequest(http.MethodGet, "/api/meetings?search=nomatch", nil))
	if !strings.Contains(w.Body.String(), `"meetings":[]`) {
		t.Fatalf("expected empty list, got %s", w.Body.String())
	}

	path := "/api/meetings/" + jsonNumber(rep.MeetingID)
	w = do(t, h, httptest.NewRequest(http.MethodGet, path, nil))
	var one api.MeetingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &one); err != nil || one.Meeting.Title != "Monday 10:00" {
		t.Fatalf("unexpected meeting %d %s", w.Code, w.Body.String())
	}

	w = do(t, h, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	var stats api.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil || stats.TotalMeetings != 1 || stats.TotalReportBytes == 0 {
		t.Fatalf("unexpected stats %s", w.Body.String())
	}

	w = do(t, h, httptest.NewRequest(http.MethodDelete, path, nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = do(t, h, httptest.NewRequest(http.MethodDelete, path, nil))
	assertError(t, w, http.StatusNotFound, "Meeting not found", "")
	w = do(t, h, httptest.NewRequest(http.MethodGet, "/api/reports/"+rep.ReportFile, nil))
	assertError(t, w, http.StatusNotFound, "File not found", "")
}

func jsonNumber(n int64) string {
	data, _ := json.Marshal(n)
	return string(data)
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, message, stage string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, w.Code, w.Body.String())
	}
	var body api.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, w.Body.String())
	}
	if body.Error != message || body.Stage != stage {
		t.Fatalf("unexpected error body %#v, want %q/%q", body, message, stage)
	}
}

func TestCreateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		answer  string
		body    string
		want    int
		message string
		stage   string
	}{
		{
			name: "notes too short", status: http.StatusOK, answer: modelAnswer,
			body: `{"notes": "too short"}`, want: http.StatusBadRequest,
			message: "Meeting notes too short. Please enter at least 50 characters.", stage: "validate_input",
		},
		{
			name: "empty notes", status: http.StatusOK, answer: modelAnswer,
			body: `{}`, want: http.StatusBadRequest,
			message: "Please enter meeting notes", stage: "validate_input",
		},
		{
			name: "bad json", status: http.StatusOK, answer: modelAnswer,
			body: `{notes`, want: http.StatusBadRequest,
			message: `Invalid request body: expected {"notes": "..."}`,
		},
		{
			name: "model down", status: http.StatusServiceUnavailable, answer: "",
			body: `{"notes": "` + sampleNotes + `"}`, want: http.StatusBadGateway,
			message: "AI service is having issues. Please try again later.", stage: "generate",
		},
		{
			name: "no json", status: http.StatusOK, answer: "I cannot help with that.",
			body: `{"notes": "` + sampleNotes + `"}`, want: http.StatusBadGateway,
			message: "AI couldn't extract structured data. Please try rephrasing your notes.", stage: "extract",
		},
		{
			name: "schema", status: http.StatusOK, answer: `{"meeting_time": "x", "participants": [], "topics": ["a"], "action_items": []}`,
			body: `{"notes": "` + sampleNotes + `"}`, want: http.StatusUnprocessableEntity,
			message: "Data validation failed: At least one participant is required", stage: "validate_schema",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ollamaSrv := fakeOllama(t, tt.status, tt.answer)
			srv, _ := newTestServer(t, ollamaSrv.URL)
			w := do(t, srv.Handler(), httptest.NewRequest(http.MethodPost, "/api/meetings", strings.NewReader(tt.body)))
			assertError(t, w, tt.want, tt.message, tt.stage)
		})
	}
}

func TestBadPathsAndMethods(t *testing.T) {
	srv, _ := newTestServer(t, fakeOllama(t, http.StatusOK, modelAnswer).URL)
	h := srv.Handler()

	assertError(t, do(t, h, httptest.NewRequest(http.MethodGet, "/api/meetings/abc", nil)), http.StatusBadRequest, "invalid meeting id", "")
	assertError(t, do(t, h, httptest.NewRequest(http.MethodGet, "/api/meetings/42", nil)), http.StatusNotFound, "Meeting not found", "")
	assertError(t, do(t, h, httptest.NewRequest(http.MethodGet, "/api/reports/bad-name.pdf", nil)), http.StatusBadRequest, "Invalid filename", "")

	w := do(t, h, httptest.NewRequest(http.MethodPut, "/api/meetings", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func multipartUpload(t *testing.T, field, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write([]byte(content))
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestTranscribe(t *testing.T) {
	srv, _ := newTestServer(t, fakeOllama(t, http.StatusOK, modelAnswer).URL)
	h := srv.Handler()

	body, ct := multipartUpload(t, "audio_file", "standup.wav", "RIFF....")
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", ct)
	w := do(t, h, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var tr api.Transcript
	if err := json.Unmarshal(w.Body.Bytes(), &tr); err != nil || tr.Text != "We agreed to ship on Friday." {
		t.Fatalf("unexpected transcript %s", w.Body.String())
	}

	body, ct = multipartUpload(t, "", "", "")
	req = httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", ct)
	assertError(t, do(t, h, req), http.StatusBadRequest, "No audio file provided", "")

	body, ct = multipartUpload(t, "audio_file", "notes.txt", "hello")
	req = httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", ct)
	assertError(t, do(t, h, req), http.StatusBadRequest, "Invalid file format. Allowed: wav, mp3, m4a, ogg, flac", "")
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, fakeOllama(t, http.StatusOK, modelAnswer).URL)
	w := do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var h api.Health
	if err := json.Unmarshal(w.Body.Bytes(), &h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" || !h.ModelReady || !h.HistoryReady || len(h.Dependencies) != 2 {
		t.Fatalf("unexpected health %#v", h)
	}
}

func TestAuthToken(t *testing.T) {
	srv, cfg := newTestServer(t, fakeOllama(t, http.StatusOK, modelAnswer).URL)
	cfg.Paths.APIToken = "s3cret"
	h := srv.Handler()

	w := do(t, h, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	if w := do(t, h, req); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong token, got %d", w.Code)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	if w := do(t, h, req); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}
}

func TestStartHoldsLock(t *testing.T) {
	srv, cfg := newTestServer(t, fakeOllama(t, http.StatusOK, modelAnswer).URL)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop()
	if srv.Addr() == "" {
		t.Fatal("expected listening address")
	}

	resp, err := http.Get("http://" + srv.Addr() + "/api/stats")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	second, err := New(cfg, srv.svc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected second server to fail while lock is held")
	}
}
