package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Pipeline failure markers. Every stage error is tagged with exactly one.
var (
	ErrInputRejected    = errors.New("input rejected")
	ErrTemplateMissing  = errors.New("prompt template missing")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrExtractionFailed = errors.New("extraction failed")
	ErrSchemaInvalid    = errors.New("schema invalid")
)

// Markers for the surfaces around the pipeline.
var (
	ErrReportFailed  = errors.New("report generation failed")
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// HTTPStatus maps a marked error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInputRejected), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrSchemaInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrModelUnavailable), errors.Is(err, ErrExtractionFailed), errors.Is(err, ErrExternalTool):
		return http.StatusBadGateway
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// StageOf returns the stage name a marked error belongs to, or "" when the
// marker is not a pipeline marker.
func StageOf(err error) string {
	switch {
	case errors.Is(err, ErrInputRejected):
		return "validate_input"
	case errors.Is(err, ErrTemplateMissing):
		return "build_prompt"
	case errors.Is(err, ErrModelUnavailable):
		return "generate"
	case errors.Is(err, ErrExtractionFailed):
		return "extract"
	case errors.Is(err, ErrSchemaInvalid):
		return "validate_schema"
	case errors.Is(err, ErrReportFailed):
		return "render_report"
	case errors.Is(err, ErrExternalTool):
		return "transcribe"
	default:
		return ""
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
