package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"minutes/internal/api"
	"minutes/internal/meeting"
	"minutes/internal/testsupport"
)

func seedHistory(t *testing.T, env *cliTestEnv) {
	t.Helper()
	st := testsupport.MustOpenStore(t, env.cfg)
	testsupport.AddMeeting(t, st, testsupport.SampleRecord(), "meeting_report_aaaaaaaaaaaaaaaa.pdf", 1024)
	testsupport.AddMeeting(t, st, &meeting.Record{
		MeetingTime:  "March 10, 2026 10:00",
		Participants: []string{"Ana", "Chloé"},
		Topics:       []string{"Budget review", "Vendor contracts"},
	}, "meeting_report_bbbbbbbbbbbbbbbb.pdf", 2048)
	testsupport.AddMeeting(t, st, &meeting.Record{
		MeetingTime:  meeting.NotSpecified,
		Participants: []string{"Dana"},
		Topics:       []string{"Office party"},
	}, "meeting_report_cccccccccccccccc.pdf", 0)
}

func TestHistoryListAndSearch(t *testing.T) {
	env := setupCLITestEnv(t)
	seedHistory(t, env)

	out, _, err := runCLI(t, []string{"history", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	var all api.MeetingListResponse
	if err := json.Unmarshal([]byte(out), &all); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(all.Meetings) != 3 || all.Meetings[0].Title != "Office party" {
		t.Fatalf("expected newest first, got %#v", all.Meetings)
	}

	out, _, err = runCLI(t, []string{"history", "list", "--search", "chloé", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history search: %v", err)
	}
	var found api.MeetingListResponse
	if err := json.Unmarshal([]byte(out), &found); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(found.Meetings) != 1 || found.Search != "chloé" {
		t.Fatalf("unexpected search result %#v", found)
	}

	out, _, err = runCLI(t, []string{"history", "list", "-s", "nothing like this"}, env.configPath)
	if err != nil {
		t.Fatalf("history search: %v", err)
	}
	requireContains(t, out, `No meetings match "nothing like this"`)
}

func TestHistoryListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "No meetings recorded yet")
}

func TestHistoryDeleteRemovesReport(t *testing.T) {
	env := setupCLITestEnv(t)
	seedHistory(t, env)
	report := filepath.Join(env.cfg.Paths.ReportsDir, "meeting_report_aaaaaaaaaaaaaaaa.pdf")

	out, _, err := runCLI(t, []string{"history", "delete", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("history delete: %v", err)
	}
	requireContains(t, out, "Deleted meeting 1")
	if _, err := os.Stat(report); !os.IsNotExist(err) {
		t.Fatalf("expected report removed, stat err=%v", err)
	}

	_, _, err = runCLI(t, []string{"history", "show", "1"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing meeting")
	}
	requireContains(t, err.Error(), "Meeting not found")

	if _, _, err := runCLI(t, []string{"history", "delete", "abc"}, env.configPath); err == nil {
		t.Fatal("expected invalid id error")
	}
}

func TestHistoryStats(t *testing.T) {
	env := setupCLITestEnv(t)
	seedHistory(t, env)

	out, _, err := runCLI(t, []string{"history", "stats", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history stats: %v", err)
	}
	var stats api.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalMeetings != 3 || stats.TotalReportBytes != 3072 {
		t.Fatalf("unexpected stats %#v", stats)
	}

	out, _, err = runCLI(t, []string{"history", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("history stats: %v", err)
	}
	requireContains(t, out, "Report storage")
}

func TestHistoryRelated(t *testing.T) {
	env := setupCLITestEnv(t)
	seedHistory(t, env)

	out, _, err := runCLI(t, []string{"history", "related", "1", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history related: %v", err)
	}
	var related []api.RelatedMeeting
	if err := json.Unmarshal([]byte(out), &related); err != nil {
		t.Fatalf("decode related: %v", err)
	}
	if len(related) != 1 || related[0].ID != 2 {
		t.Fatalf("expected meeting 2 to be related, got %#v", related)
	}

	out, _, err = runCLI(t, []string{"history", "related", "3"}, env.configPath)
	if err != nil {
		t.Fatalf("history related: %v", err)
	}
	requireContains(t, out, "No meetings related to 3")
}
