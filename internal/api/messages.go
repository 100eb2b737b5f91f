package api

import (
	"errors"

	"minutes/internal/notes"
	"minutes/internal/pipeline"
	"minutes/internal/services"
	"minutes/internal/transcribe"
)

const (
	msgReportFailed   = "Failed to generate PDF. Please try again."
	msgMeetingMissing = "Meeting not found"
	msgFileMissing    = "File not found"
	msgBadFilename    = "Invalid filename"
	msgHistoryOffline = "Meeting history is unavailable. Please contact administrator."
	msgNoEngine       = "Audio transcription is not configured. Please contact administrator."
	msgTranscription  = "Failed to transcribe audio. Please check the recording and try again."
)

// userError carries a sentence meant for users through a wrapped chain.
type userError struct {
	msg string
}

func (e *userError) Error() string {
	return e.msg
}

func userFacing(msg string) error {
	return &userError{msg: msg}
}

// UserMessage returns the sentence shown to users for any service failure.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ue *userError
	if errors.As(err, &ue) {
		return ue.msg
	}
	var uploadErr *transcribe.UploadError
	if errors.As(err, &uploadErr) {
		return uploadErr.Message
	}
	var rejected *notes.RejectedError
	if errors.Is(err, services.ErrValidation) && errors.As(err, &rejected) {
		return rejected.Message
	}
	switch {
	case errors.Is(err, services.ErrReportFailed):
		return msgReportFailed
	case errors.Is(err, services.ErrExternalTool):
		return msgTranscription
	}
	return pipeline.UserMessage(err)
}
