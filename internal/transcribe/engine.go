package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"minutes/internal/config"
)

// EngineWhisperX names the WhisperX engine in configuration.
const EngineWhisperX = "whisperx"

// ErrUnknownEngine reports an engine name outside the supported set.
var ErrUnknownEngine = errors.New("unknown transcription engine")

// Engine converts one audio file into text.
type Engine interface {
	Name() string
	Transcribe(ctx context.Context, path string) (string, error)
}

// New returns the engine named by cfg.Transcription.Engine.
func New(cfg *config.Config, opts ...Option) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Transcription.Engine))
	switch name {
	case EngineWhisperX:
		return NewWhisperX(cfg, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownEngine, name, EngineWhisperX)
	}
}
