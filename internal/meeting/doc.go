// Package meeting defines the structured meeting record and the schema check
// that guards its construction.
//
// Validate inspects the untyped value produced by the extract package and
// reports the first structural problem. FromValidated is the only way to build
// a Record: it re-runs Validate and then coerces loosely typed model output
// into strings, so callers never see a Record that skipped the check.
package meeting
