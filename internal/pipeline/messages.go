package pipeline

import (
	"errors"

	"minutes/internal/meeting"
	"minutes/internal/notes"
	"minutes/internal/services"
	"minutes/internal/services/ollama"
)

const (
	msgTemplateMissing = "Prompt template file is missing. Please contact administrator."
	msgBadStatus       = "AI service is having issues. Please try again later."
	msgMissingResponse = "Unexpected response from AI. Please try again."
	msgExtraction      = "AI couldn't extract structured data. Please try rephrasing your notes."
	msgTimeout         = "Request took too long. Please try with shorter meeting notes."
	msgConnection      = "Cannot connect to AI service. Make sure Ollama is running."
	msgUnexpected      = "An unexpected error occurred. Please try again."
)

// UserMessage returns the sentence shown to users for a pipeline failure.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, services.ErrInputRejected):
		var rejected *notes.RejectedError
		if errors.As(err, &rejected) {
			return rejected.Message
		}
	case errors.Is(err, services.ErrTemplateMissing):
		return msgTemplateMissing
	case errors.Is(err, services.ErrModelUnavailable):
		var oerr *ollama.Error
		if errors.As(err, &oerr) {
			switch oerr.Kind {
			case ollama.KindTimeout:
				return msgTimeout
			case ollama.KindConnectionRefused:
				return msgConnection
			case ollama.KindNonSuccessStatus:
				return msgBadStatus
			case ollama.KindMissingResponseField:
				return msgMissingResponse
			}
		}
	case errors.Is(err, services.ErrExtractionFailed):
		return msgExtraction
	case errors.Is(err, services.ErrSchemaInvalid):
		var schema *meeting.SchemaError
		if errors.As(err, &schema) {
			return "Data validation failed: " + schema.Message
		}
	}
	return msgUnexpected
}

func reasonOf(err error) string {
	var rejected *notes.RejectedError
	if errors.As(err, &rejected) {
		return rejected.Reason.String()
	}
	return ""
}
