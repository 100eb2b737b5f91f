package api_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"minutes/internal/api"
	"minutes/internal/meeting"
	"minutes/internal/services"
	"minutes/internal/store"
	"minutes/internal/testsupport"
)

type fakeExtractor struct {
	rec   *meeting.Record
	err   error
	calls int
}

func (f *fakeExtractor) Run(context.Context, string) (*meeting.Record, error) {
	f.calls++
	return f.rec, f.err
}

type failingStore struct {
	api.MeetingStore
}

func (failingStore) Add(context.Context, *meeting.Record, string, int) (*store.Meeting, error) {
	return nil, errors.New("disk full")
}

type fakeEngine struct {
	text string
	err  error
	seen string
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Transcribe(_ context.Context, path string) (string, error) {
	f.seen = path
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return f.text, f.err
}

const sampleNotes = "Ana and Ben met on Monday to review the budget and agree on the hiring plan for next quarter."

func fixedClock() time.Time {
	return time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
}

func TestCreateReportPersists(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ext := &fakeExtractor{rec: testsupport.SampleRecord()}
	svc := api.NewMeetingService(cfg, ext, nil, api.WithStore(st), api.WithClock(fixedClock))

	ctx := services.WithRequestID(context.Background(), "req-1")
	rep, err := svc.CreateReport(ctx, sampleNotes)
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if rep.RequestID != "req-1" {
		t.Fatalf("unexpected request id %q", rep.RequestID)
	}
	if !rep.Persisted || rep.MeetingID == 0 {
		t.Fatalf("expected persisted report, got %#v", rep)
	}
	data, err := os.ReadFile(filepath.Join(cfg.Paths.ReportsDir, rep.ReportFile))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Fatal("report is not a PDF")
	}

	got, err := svc.Get(context.Background(), rep.MeetingID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ReportFile != rep.ReportFile || got.NotesLength != len([]rune(sampleNotes)) {
		t.Fatalf("unexpected stored meeting %#v", got)
	}
}

func TestCreateReportSurvivesStoreFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ext := &fakeExtractor{rec: testsupport.SampleRecord()}
	svc := api.NewMeetingService(cfg, ext, nil, api.WithStore(failingStore{}))

	rep, err := svc.CreateReport(context.Background(), sampleNotes)
	if err != nil {
		t.Fatalf("CreateReport should not fail on store errors: %v", err)
	}
	if rep.Persisted || rep.MeetingID != 0 {
		t.Fatalf("expected unpersisted report, got %#v", rep)
	}
	if rep.RequestID == "" {
		t.Fatal("expected generated request id")
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.ReportsDir, rep.ReportFile)); err != nil {
		t.Fatalf("expected report on disk: %v", err)
	}
}

func TestCreateReportWithoutStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc := api.NewMeetingService(cfg, &fakeExtractor{rec: testsupport.SampleRecord()}, nil)

	rep, err := svc.CreateReport(context.Background(), sampleNotes)
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if rep.Persisted {
		t.Fatal("expected unpersisted report")
	}

	_, err = svc.History(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if msg := api.UserMessage(err); !strings.Contains(msg, "history is unavailable") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCreateReportPropagatesPipelineErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cause := services.Wrap(services.ErrExtractionFailed, "extract", "extract", "", errors.New("no object"))
	svc := api.NewMeetingService(cfg, &fakeExtractor{err: cause}, nil)

	_, err := svc.CreateReport(context.Background(), sampleNotes)
	if !errors.Is(err, services.ErrExtractionFailed) {
		t.Fatalf("expected extraction failure, got %v", err)
	}
	if got := api.UserMessage(err); got != "AI couldn't extract structured data. Please try rephrasing your notes." {
		t.Fatalf("unexpected message %q", got)
	}
	entries, _ := os.ReadDir(cfg.Paths.ReportsDir)
	if len(entries) != 0 {
		t.Fatalf("expected no report written, found %d", len(entries))
	}
}

func TestCreateReportRenderFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	blocker := filepath.Join(testsupport.BaseDir(cfg), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Paths.ReportsDir = filepath.Join(blocker, "reports")
	svc := api.NewMeetingService(cfg, &fakeExtractor{rec: testsupport.SampleRecord()}, nil)

	_, err := svc.CreateReport(context.Background(), sampleNotes)
	if !errors.Is(err, services.ErrReportFailed) {
		t.Fatalf("expected report failure, got %v", err)
	}
	if services.StageOf(err) != "render_report" {
		t.Fatalf("unexpected stage %q", services.StageOf(err))
	}
	if api.UserMessage(err) != "Failed to generate PDF. Please try again." {
		t.Fatalf("unexpected message %q", api.UserMessage(err))
	}
}

func TestHistorySearchDeleteStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := api.NewMeetingService(cfg, nil, nil, api.WithStore(st))
	ctx := context.Background()

	first := testsupport.AddMeeting(t, st, testsupport.SampleRecord(), "meeting_report_1.pdf", 2048)
	second := testsupport.AddMeeting(t, st, &meeting.Record{
		MeetingTime:  "Friday",
		Participants: []string{"Dana"},
		Topics:       []string{"Office move"},
	}, "meeting_report_2.pdf", 1024)

	all, err := svc.History(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("History = %d, %v", len(all), err)
	}
	if all[0].ID != second.ID || all[0].CreatedAt == "" || all[0].ActionItems == nil {
		t.Fatalf("unexpected first entry %#v", all[0])
	}

	found, err := svc.Search(ctx, "office")
	if err != nil || len(found) != 1 || found[0].ID != second.ID {
		t.Fatalf("Search = %#v, %v", found, err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalMeetings != 2 || stats.TotalReportBytes != 3072 {
		t.Fatalf("unexpected stats %#v", stats)
	}

	path, err := svc.ReportPath(first.ReportFile)
	if err != nil || path != filepath.Join(cfg.Paths.ReportsDir, first.ReportFile) {
		t.Fatalf("ReportPath = %q, %v", path, err)
	}

	if err := svc.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	err = svc.Delete(ctx, first.ID)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if api.UserMessage(err) != "Meeting not found" {
		t.Fatalf("unexpected message %q", api.UserMessage(err))
	}
	if _, err := svc.ReportPath(first.ReportFile); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected deleted report to be gone, got %v", err)
	}
	if _, err := svc.Get(ctx, first.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReportPathRejectsTraversal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc := api.NewMeetingService(cfg, nil, nil)

	for _, name := range []string{"../minutes.db", "a/b.pdf", "report.pdf;rm", "..", ""} {
		_, err := svc.ReportPath(name)
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%q: expected validation error, got %v", name, err)
		}
		if api.UserMessage(err) != "Invalid filename" {
			t.Fatalf("%q: unexpected message %q", name, api.UserMessage(err))
		}
	}
}

func TestTranscribe(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	engine := &fakeEngine{text: "  We agreed to ship the beta on Friday.  "}
	svc := api.NewMeetingService(cfg, nil, nil, api.WithEngine(engine))

	tr, err := svc.Transcribe(context.Background(), "standup.mp3", 4, strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if tr.Text != "We agreed to ship the beta on Friday." || tr.Length != len(tr.Text) || tr.Engine != "fake" {
		t.Fatalf("unexpected transcript %#v", tr)
	}
	if _, err := os.Stat(engine.seen); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected upload removed after transcription, stat err %v", err)
	}
}

func TestTranscribeErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	svc := api.NewMeetingService(cfg, nil, nil, api.WithEngine(&fakeEngine{text: "hi"}))
	_, err := svc.Transcribe(context.Background(), "notes.txt", 4, strings.NewReader("data"))
	if !errors.Is(err, services.ErrValidation) || !strings.HasPrefix(api.UserMessage(err), "Invalid file format") {
		t.Fatalf("unexpected format error %v (%q)", err, api.UserMessage(err))
	}

	_, err = svc.Transcribe(context.Background(), "a.wav", 4, strings.NewReader("data"))
	if api.UserMessage(err) != "Transcription too short. Please speak clearly or check audio quality." {
		t.Fatalf("unexpected short transcript message %q", api.UserMessage(err))
	}

	failing := api.NewMeetingService(cfg, nil, nil, api.WithEngine(&fakeEngine{err: errors.New("uvx exploded")}))
	_, err = failing.Transcribe(context.Background(), "a.wav", 4, strings.NewReader("data"))
	if !errors.Is(err, services.ErrExternalTool) || services.StageOf(err) != "transcribe" {
		t.Fatalf("expected external tool error, got %v", err)
	}

	none := api.NewMeetingService(cfg, nil, nil)
	_, err = none.Transcribe(context.Background(), "a.wav", 4, strings.NewReader("data"))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRelated(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := api.NewMeetingService(cfg, nil, nil, api.WithStore(st))

	budget := testsupport.AddMeeting(t, st, &meeting.Record{
		MeetingTime:  "Monday",
		Participants: []string{"Ana", "Ben"},
		Topics:       []string{"Budget forecast for marketing", "Vendor contracts"},
	}, "meeting_report_1.pdf", 0)
	followUp := testsupport.AddMeeting(t, st, &meeting.Record{
		MeetingTime:  "Thursday",
		Participants: []string{"Ana"},
		Topics:       []string{"Marketing budget forecast revisions"},
	}, "meeting_report_2.pdf", 0)
	testsupport.AddMeeting(t, st, &meeting.Record{
		MeetingTime:  "Friday",
		Participants: []string{"Dana"},
		Topics:       []string{"Office move logistics"},
	}, "meeting_report_3.pdf", 0)

	related, err := svc.Related(context.Background(), budget.ID, 5)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(related) != 1 || related[0].ID != followUp.ID {
		t.Fatalf("unexpected related meetings %#v", related)
	}
	if related[0].Score <= 0 || related[0].Score > 1.0000001 {
		t.Fatalf("unexpected score %v", related[0].Score)
	}

	if _, err := svc.Related(context.Background(), 999, 5); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
