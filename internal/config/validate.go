package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var supportedEngines = map[string]struct{}{
	"whisperx": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOllama(); err != nil {
		return err
	}
	if err := c.validateNotes(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateOllama() error {
	parsed, err := url.Parse(c.Ollama.APIURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("ollama.api_url must be an absolute http(s) URL, got %q", c.Ollama.APIURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("ollama.api_url must use http or https, got %q", parsed.Scheme)
	}
	if strings.TrimSpace(c.Ollama.Model) == "" {
		return errors.New("ollama.model must be set")
	}
	if c.Ollama.TimeoutSeconds <= 0 {
		return errors.New("ollama.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateNotes() error {
	if c.Notes.MinLength < 1 {
		return errors.New("notes.min_length must be >= 1")
	}
	if c.Notes.MaxLength < c.Notes.MinLength {
		return errors.New("notes.max_length must be >= notes.min_length")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if _, ok := supportedEngines[c.Transcription.Engine]; !ok {
		return fmt.Errorf("transcription.engine %q is not supported (use whisperx)", c.Transcription.Engine)
	}
	if c.Transcription.MaxAudioSizeMB <= 0 {
		return errors.New("transcription.max_audio_size_mb must be positive")
	}
	switch c.Transcription.WhisperXVADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.whisperx_vad_method must be silero or pyannote, got %q", c.Transcription.WhisperXVADMethod)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
