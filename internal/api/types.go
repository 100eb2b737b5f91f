package api

import "minutes/internal/meeting"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Meeting describes a stored meeting in a transport-friendly format.
type Meeting struct {
	ID           int64                `json:"id"`
	Title        string               `json:"title"`
	MeetingTime  string               `json:"meetingTime"`
	Participants []string             `json:"participants"`
	Topics       []string             `json:"topics"`
	ActionItems  []meeting.ActionItem `json:"actionItems"`
	ReportFile   string               `json:"reportFile"`
	CreatedAt    string               `json:"createdAt,omitempty"`
	NotesLength  int                  `json:"notesLength"`
}

// Report is the result of turning notes into a PDF report.
type Report struct {
	RequestID  string          `json:"requestId"`
	Record     *meeting.Record `json:"meeting"`
	ReportFile string          `json:"reportFile"`
	MeetingID  int64           `json:"meetingId,omitempty"`
	Persisted  bool            `json:"persisted"`
}

// Transcript is the text recovered from an audio upload.
type Transcript struct {
	Text   string `json:"text"`
	Length int    `json:"length"`
	Engine string `json:"engine"`
}

// Stats summarizes the meeting history.
type Stats struct {
	TotalMeetings    int     `json:"totalMeetings"`
	TotalReportBytes int64   `json:"totalReportBytes"`
	TotalSizeMB      float64 `json:"totalSizeMb"`
}

// RelatedMeeting pairs a history entry with its similarity to another one.
type RelatedMeeting struct {
	Meeting
	Score float64 `json:"score"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// Health reports whether the service can currently produce reports.
type Health struct {
	Status       string             `json:"status"`
	Model        string             `json:"model"`
	ModelReady   bool               `json:"modelReady"`
	ModelDetail  string             `json:"modelDetail,omitempty"`
	HistoryReady bool               `json:"historyReady"`
	Dependencies []DependencyStatus `json:"dependencies,omitempty"`
}

// MeetingListResponse wraps a collection of meetings for API responses.
type MeetingListResponse struct {
	Meetings []Meeting `json:"meetings"`
	Search   string    `json:"search,omitempty"`
}

// MeetingResponse wraps a single meeting.
type MeetingResponse struct {
	Meeting Meeting `json:"meeting"`
}

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}
