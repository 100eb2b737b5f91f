package logging

import "strings"

// FormatSubject builds the request/stage subject string used in console output.
func FormatSubject(requestID, stage string) string {
	requestID = strings.TrimSpace(requestID)
	stage = strings.TrimSpace(stage)
	if len(requestID) > 8 {
		requestID = requestID[:8]
	}
	switch {
	case requestID != "" && stage != "":
		return "req " + requestID + " · " + stage
	case requestID != "":
		return "req " + requestID
	default:
		return stage
	}
}
