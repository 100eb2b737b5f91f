package ollama

import "fmt"

// Kind classifies why a model call failed.
type Kind int

const (
	KindUnexpected Kind = iota
	KindTimeout
	KindConnectionRefused
	KindNonSuccessStatus
	KindMissingResponseField
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnectionRefused:
		return "connection refused"
	case KindNonSuccessStatus:
		return "non-success status"
	case KindMissingResponseField:
		return "missing response field"
	default:
		return "unexpected"
	}
}

// Error is returned for every failed model call.
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("ollama: %s", e.Kind)
	}
	return fmt.Sprintf("ollama: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
