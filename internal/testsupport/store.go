package testsupport

import (
	"context"
	"testing"

	"minutes/internal/config"
	"minutes/internal/meeting"
	"minutes/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SampleRecord returns a small valid record with both action item shapes.
func SampleRecord() *meeting.Record {
	return &meeting.Record{
		MeetingTime:  "March 3, 2026 10:00",
		Participants: []string{"Ana", "Ben"},
		Topics:       []string{"Budget review", "Hiring plan"},
		ActionItems: []meeting.ActionItem{
			{Text: "Send the slides"},
			{Item: "Draft the job ad", Responsible: "Ben", Due: "Friday", Structured: true},
		},
	}
}

// AddMeeting stores rec under reportFile, writing a report of reportSize bytes.
func AddMeeting(t testing.TB, st *store.Store, rec *meeting.Record, reportFile string, reportSize int64) *store.Meeting {
	t.Helper()

	if reportSize > 0 {
		WriteFile(t, st.ReportPath(reportFile), reportSize)
	}
	m, err := st.Add(context.Background(), rec, reportFile, 120)
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return m
}
