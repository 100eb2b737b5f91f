package meeting

import "strings"

var requiredFields = []string{"meeting_time", "participants", "topics", "action_items"}

// SchemaError reports the first structural problem found in model output.
// Reason is the short form; Message is the sentence shown to users.
type SchemaError struct {
	Reason  string
	Message string
}

func (e *SchemaError) Error() string {
	return "schema: " + e.Reason
}

func schemaErr(reason, message string) *SchemaError {
	return &SchemaError{Reason: reason, Message: message}
}

// Validate checks that parsed is an object with the four required fields,
// that the three list fields are lists, and that participants and topics are
// non-empty. It does not inspect meeting_time or list element types.
func Validate(parsed any) error {
	obj, ok := parsed.(map[string]any)
	if !ok {
		return schemaErr("invalid data format", "Invalid data format")
	}
	for _, field := range requiredFields {
		if _, present := obj[field]; !present {
			return schemaErr("missing field: "+field, "Missing required field: "+field)
		}
	}

	participants, ok := obj["participants"].([]any)
	if !ok {
		return schemaErr("participants must be a list", "Participants must be a list")
	}
	topics, ok := obj["topics"].([]any)
	if !ok {
		return schemaErr("topics must be a list", "Topics must be a list")
	}
	if _, ok := obj["action_items"].([]any); !ok {
		return schemaErr("action items must be a list", "Action items must be a list")
	}

	if len(participants) == 0 {
		return schemaErr("at least one participant required", "At least one participant is required")
	}
	if len(topics) == 0 {
		return schemaErr("at least one topic required", "At least one topic is required")
	}
	return nil
}

// FromValidated validates parsed and converts it into a Record.
func FromValidated(parsed any) (*Record, error) {
	if err := Validate(parsed); err != nil {
		return nil, err
	}
	obj := parsed.(map[string]any)

	rec := &Record{
		MeetingTime:  scalarText(obj["meeting_time"]),
		Participants: textList(obj["participants"].([]any)),
		Topics:       textList(obj["topics"].([]any)),
	}
	if strings.TrimSpace(rec.MeetingTime) == "" {
		rec.MeetingTime = NotSpecified
	}
	items := obj["action_items"].([]any)
	rec.ActionItems = make([]ActionItem, 0, len(items))
	for _, item := range items {
		rec.ActionItems = append(rec.ActionItems, actionItemFrom(item))
	}
	return rec, nil
}

func textList(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, scalarText(v))
	}
	return out
}
