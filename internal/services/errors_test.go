package services_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"minutes/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrModelUnavailable, "generate", "post", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrModelUnavailable) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"generate", "post", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		marker error
		want   int
		stage  string
	}{
		{services.ErrInputRejected, http.StatusBadRequest, "validate_input"},
		{services.ErrSchemaInvalid, http.StatusUnprocessableEntity, "validate_schema"},
		{services.ErrModelUnavailable, http.StatusBadGateway, "generate"},
		{services.ErrExtractionFailed, http.StatusBadGateway, "extract"},
		{services.ErrTemplateMissing, http.StatusInternalServerError, "build_prompt"},
		{services.ErrNotFound, http.StatusNotFound, ""},
		{services.ErrValidation, http.StatusBadRequest, ""},
		{services.ErrReportFailed, http.StatusInternalServerError, "render_report"},
		{services.ErrExternalTool, http.StatusBadGateway, "transcribe"},
	}
	for _, tc := range cases {
		err := services.Wrap(tc.marker, "stage", "op", "msg", errors.New("cause"))
		if got := services.HTTPStatus(err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.marker, got, tc.want)
		}
		if got := services.StageOf(err); got != tc.stage {
			t.Errorf("StageOf(%v) = %q, want %q", tc.marker, got, tc.stage)
		}
	}
	if got := services.HTTPStatus(nil); got != http.StatusOK {
		t.Fatalf("HTTPStatus(nil) = %d", got)
	}
}
