package notes

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	DefaultMinLength = 50
	DefaultMaxLength = 10000

	minDistinctRunes    = 10
	minMeaningfulWords  = 10
	minWordRunes        = 3
	minLetterRatio      = 0.30
	minTranscriptLength = 10
)

// Limits bounds the accepted note length in runes.
type Limits struct {
	MinLength int
	MaxLength int
}

// DefaultLimits returns the stock 50..10000 rune window.
func DefaultLimits() Limits {
	return Limits{MinLength: DefaultMinLength, MaxLength: DefaultMaxLength}
}

// Reason identifies which check rejected the notes.
type Reason int

const (
	ReasonEmpty Reason = iota + 1
	ReasonTooShort
	ReasonTooLong
	ReasonDegenerate
	ReasonFewWords
	ReasonMostlySymbols
)

func (r Reason) String() string {
	switch r {
	case ReasonEmpty:
		return "empty"
	case ReasonTooShort:
		return "too short"
	case ReasonTooLong:
		return "too long"
	case ReasonDegenerate:
		return "degenerate content"
	case ReasonFewWords:
		return "insufficient meaningful words"
	case ReasonMostlySymbols:
		return "mostly symbols"
	default:
		return "unknown"
	}
}

// RejectedError reports why notes were not accepted.
type RejectedError struct {
	Reason  Reason
	Message string
}

func (e *RejectedError) Error() string {
	return "notes rejected: " + e.Reason.String()
}

func reject(reason Reason, message string) *RejectedError {
	return &RejectedError{Reason: reason, Message: message}
}

// Normalize applies NFC normalization and trims surrounding whitespace so
// composed and decomposed input count the same.
func Normalize(text string) string {
	return strings.TrimSpace(norm.NFC.String(text))
}

// Validate checks text against limits and returns nil or a *RejectedError.
// Non-positive limits fall back to the defaults.
func Validate(text string, limits Limits) error {
	if limits.MinLength <= 0 {
		limits.MinLength = DefaultMinLength
	}
	if limits.MaxLength <= 0 {
		limits.MaxLength = DefaultMaxLength
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return reject(ReasonEmpty, "Please enter meeting notes")
	}

	length := utf8.RuneCountInString(trimmed)
	if length < limits.MinLength {
		return reject(ReasonTooShort, fmt.Sprintf("Meeting notes too short. Please enter at least %d characters.", limits.MinLength))
	}
	if length > limits.MaxLength {
		return reject(ReasonTooLong, fmt.Sprintf("Meeting notes too long. Maximum %d characters allowed.", limits.MaxLength))
	}

	if distinctRunes(trimmed) < minDistinctRunes {
		return reject(ReasonDegenerate, "Please enter meaningful meeting notes with actual content (not just repeated characters).")
	}

	if meaningfulWords(trimmed) < minMeaningfulWords {
		return reject(ReasonFewWords, "Please enter at least 10 meaningful words in your meeting notes.")
	}

	if float64(letters(trimmed)) < float64(length)*minLetterRatio {
		return reject(ReasonMostlySymbols, "Meeting notes should contain actual text, not just symbols.")
	}
	return nil
}

// ValidateTranscript rejects transcripts too short to be worth validating as
// notes.
func ValidateTranscript(text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minTranscriptLength {
		return reject(ReasonTooShort, "Transcription too short. Please speak clearly or check audio quality.")
	}
	return nil
}

// distinctRunes ignores only space, tab, and newline.
func distinctRunes(text string) int {
	seen := make(map[rune]struct{}, 64)
	for _, r := range text {
		switch r {
		case ' ', '\t', '\n':
			continue
		}
		seen[r] = struct{}{}
	}
	return len(seen)
}

func meaningfulWords(text string) int {
	count := 0
	for _, word := range strings.Fields(text) {
		if utf8.RuneCountInString(word) < minWordRunes {
			continue
		}
		if allLetters(word) {
			count++
		}
	}
	return count
}

func allLetters(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func letters(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
