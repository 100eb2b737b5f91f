// Package api is the application layer shared by the CLI and the HTTP server.
//
// MeetingService strings the pieces together: the extraction pipeline, PDF
// rendering, the history store and the transcription engine. It returns
// transport-friendly DTOs so callers never touch store rows directly.
//
// # Key Types
//
// Report: outcome of CreateReport, including whether the history row was
// written. Persistence is best-effort; a store failure is logged and surfaces
// as Persisted=false rather than failing the request.
//
// Meeting: history entry with the validated record and its report file.
//
// Transcript: text produced from an uploaded recording.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds.
// Errors carry services markers so the server can map them to status codes,
// and UserMessage turns any failure into the sentence shown to users.
package api
