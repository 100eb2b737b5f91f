package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// applyEnv layers the environment over the defaults. Values from a config
// file, decoded afterwards, take precedence.
func (c *Config) applyEnv() error {
	if value, ok := lookupEnv("OLLAMA_API_URL"); ok {
		c.Ollama.APIURL = value
	}
	if value, ok := lookupEnv("OLLAMA_MODEL"); ok {
		c.Ollama.Model = value
	}
	if err := envInt("OLLAMA_TIMEOUT", &c.Ollama.TimeoutSeconds); err != nil {
		return err
	}
	if err := envInt("MIN_TEXT_LENGTH", &c.Notes.MinLength); err != nil {
		return err
	}
	if err := envInt("MAX_TEXT_LENGTH", &c.Notes.MaxLength); err != nil {
		return err
	}
	if value, ok := lookupEnv("SPEECH_ENGINE"); ok {
		c.Transcription.Engine = value
	}
	if value, ok := lookupEnv("MINUTES_API_TOKEN"); ok {
		c.Paths.APIToken = value
	}
	if value, ok := lookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
		c.Transcription.WhisperXHFToken = value
	} else if value, ok := lookupEnv("HF_TOKEN"); ok {
		c.Transcription.WhisperXHFToken = value
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func envInt(key string, dst *int) error {
	value, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: %q is not an integer", key, value)
	}
	*dst = parsed
	return nil
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOllama()
	if err := c.normalizePrompt(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReportsDir) == "" {
		c.Paths.ReportsDir = defaultReportsDir
	}
	if c.Paths.ReportsDir, err = expandPath(c.Paths.ReportsDir); err != nil {
		return fmt.Errorf("paths.reports_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.AudioTempDir) == "" {
		c.Paths.AudioTempDir = defaultAudioTempDir
	}
	if c.Paths.AudioTempDir, err = expandPath(c.Paths.AudioTempDir); err != nil {
		return fmt.Errorf("paths.audio_temp_dir: %w", err)
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeOllama() {
	c.Ollama.APIURL = strings.TrimSpace(c.Ollama.APIURL)
	if c.Ollama.APIURL == "" {
		c.Ollama.APIURL = defaultOllamaAPIURL
	}
	c.Ollama.Model = strings.TrimSpace(c.Ollama.Model)
	if c.Ollama.Model == "" {
		c.Ollama.Model = defaultOllamaModel
	}
}

func (c *Config) normalizePrompt() error {
	path := strings.TrimSpace(c.Prompt.TemplatePath)
	if path == "" {
		c.Prompt.TemplatePath = ""
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("prompt.template_path: %w", err)
	}
	c.Prompt.TemplatePath = expanded
	return nil
}

func (c *Config) normalizeTranscription() {
	engine := strings.ToLower(strings.TrimSpace(c.Transcription.Engine))
	switch engine {
	case "":
		engine = defaultEngine
	case "whisper":
		engine = "whisperx"
	}
	c.Transcription.Engine = engine

	c.Transcription.WhisperXModel = strings.TrimSpace(c.Transcription.WhisperXModel)
	if c.Transcription.WhisperXModel == "" {
		c.Transcription.WhisperXModel = defaultWhisperXModel
	}
	c.Transcription.WhisperXVADMethod = strings.ToLower(strings.TrimSpace(c.Transcription.WhisperXVADMethod))
	if c.Transcription.WhisperXVADMethod == "" {
		c.Transcription.WhisperXVADMethod = defaultWhisperXVAD
	}
	c.Transcription.WhisperXHFToken = strings.TrimSpace(c.Transcription.WhisperXHFToken)

	formats := make([]string, 0, len(c.Transcription.AllowedFormats))
	seen := make(map[string]struct{}, len(c.Transcription.AllowedFormats))
	for _, format := range c.Transcription.AllowedFormats {
		normalized := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		formats = append(formats, normalized)
	}
	if len(formats) == 0 {
		formats = append(formats, defaultAllowedFormats...)
	}
	c.Transcription.AllowedFormats = formats
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
