// Package pipeline turns raw meeting notes into a validated meeting.Record.
//
// Run executes five stages in order and stops at the first failure: input
// validation, prompt building, the model call, JSON extraction, and the
// schema check. Each failure is wrapped with one of the services markers
// (ErrInputRejected, ErrTemplateMissing, ErrModelUnavailable,
// ErrExtractionFailed, ErrSchemaInvalid) over the stage's typed error, so
// callers can branch with errors.Is and errors.As. UserMessage maps any of
// these to the sentence shown to the person who submitted the notes.
//
// A Pipeline holds no mutable state and may be shared across goroutines.
package pipeline
