package api

import (
	"time"

	"minutes/internal/meeting"
	"minutes/internal/store"
)

// FromStoreMeeting converts a store row to its transport form.
func FromStoreMeeting(m *store.Meeting) Meeting {
	if m == nil {
		return Meeting{}
	}
	return Meeting{
		ID:           m.ID,
		Title:        m.Title,
		MeetingTime:  m.Record.MeetingTime,
		Participants: nonNil(m.Record.Participants),
		Topics:       nonNil(m.Record.Topics),
		ActionItems:  nonNil(m.Record.ActionItems),
		ReportFile:   m.ReportFile,
		CreatedAt:    FormatTime(m.CreatedAt),
		NotesLength:  m.NotesLength,
	}
}

// FromStoreMeetings converts a slice of store rows, preserving order.
func FromStoreMeetings(rows []*store.Meeting) []Meeting {
	out := make([]Meeting, 0, len(rows))
	for _, m := range rows {
		if m == nil {
			continue
		}
		out = append(out, FromStoreMeeting(m))
	}
	return out
}

// FromStoreStats converts store statistics.
func FromStoreStats(stats store.Stats) Stats {
	return Stats{
		TotalMeetings:    stats.Meetings,
		TotalReportBytes: stats.ReportSize,
		TotalSizeMB:      stats.ReportSizeMB(),
	}
}

// Record rebuilds the validated record behind a Meeting.
func (m Meeting) Record() meeting.Record {
	return meeting.Record{
		MeetingTime:  m.MeetingTime,
		Participants: m.Participants,
		Topics:       m.Topics,
		ActionItems:  m.ActionItems,
	}
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
