package meeting

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// NotSpecified stands in for a meeting time the notes did not give.
const NotSpecified = "Not specified"

// Record is the validated result of one extraction.
type Record struct {
	MeetingTime  string       `json:"meeting_time"`
	Participants []string     `json:"participants"`
	Topics       []string     `json:"topics"`
	ActionItems  []ActionItem `json:"action_items"`
}

// Title names a record for listings: the meeting time, or the first topic
// (at most 50 runes) when the time is unknown.
func (r *Record) Title() string {
	if r.MeetingTime == NotSpecified && len(r.Topics) > 0 {
		return truncateRunes(r.Topics[0], 50)
	}
	if r.MeetingTime == "" {
		return "Untitled Meeting"
	}
	return r.MeetingTime
}

// ActionItem is either a plain sentence or an {item, responsible, due} object.
// It marshals back to the shape it was parsed from.
type ActionItem struct {
	Text        string
	Item        string
	Responsible string
	Due         string
	Structured  bool
}

type structuredItem struct {
	Item        string `json:"item"`
	Responsible string `json:"responsible"`
	Due         string `json:"due,omitempty"`
}

// String renders the item the way reports list it.
func (a ActionItem) String() string {
	if !a.Structured {
		return a.Text
	}
	item := a.Item
	if item == "" {
		item = "N/A"
	}
	responsible := a.Responsible
	if responsible == "" {
		responsible = "N/A"
	}
	text := item + " - " + responsible
	if a.Due != "" {
		text += " (Due: " + a.Due + ")"
	}
	return text
}

// MarshalJSON writes a plain item as a JSON string and a structured item as
// an {item, responsible, due} object.
func (a ActionItem) MarshalJSON() ([]byte, error) {
	if a.Structured {
		return json.Marshal(structuredItem{Item: a.Item, Responsible: a.Responsible, Due: a.Due})
	}
	return json.Marshal(a.Text)
}

// UnmarshalJSON accepts either shape. Objects become structured items; any
// other value becomes plain text.
func (a *ActionItem) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return err
	}
	*a = actionItemFrom(value)
	return nil
}

func actionItemFrom(value any) ActionItem {
	switch v := value.(type) {
	case string:
		return ActionItem{Text: strings.TrimSpace(v)}
	case map[string]any:
		return ActionItem{
			Item:        fieldText(v, "item"),
			Responsible: fieldText(v, "responsible"),
			Due:         fieldText(v, "due"),
			Structured:  true,
		}
	default:
		return ActionItem{Text: scalarText(v)}
	}
}

func fieldText(obj map[string]any, key string) string {
	value, ok := obj[key]
	if !ok || value == nil {
		return ""
	}
	return scalarText(value)
}

// scalarText renders any decoded JSON value as display text: strings are
// trimmed, numbers keep their literal digits, everything else becomes compact
// JSON.
func scalarText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
