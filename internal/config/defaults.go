package config

const (
	defaultDataDir          = "~/.local/share/minutes"
	defaultReportsDir       = "~/.local/share/minutes/reports"
	defaultLogDir           = "~/.local/share/minutes/logs"
	defaultAudioTempDir     = "~/.local/share/minutes/audio"
	defaultAPIBind          = "127.0.0.1:5000"
	defaultOllamaAPIURL     = "http://localhost:11434/api/generate"
	defaultOllamaModel      = "llama3"
	defaultOllamaTimeout    = 120
	defaultMinLength        = 50
	defaultMaxLength        = 10000
	defaultEngine           = "whisperx"
	defaultWhisperXModel    = "large-v3"
	defaultWhisperXVAD      = "silero"
	defaultMaxAudioSizeMB   = 25
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

var defaultAllowedFormats = []string{"wav", "mp3", "m4a", "ogg", "flac"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:      defaultDataDir,
			ReportsDir:   defaultReportsDir,
			LogDir:       defaultLogDir,
			AudioTempDir: defaultAudioTempDir,
			APIBind:      defaultAPIBind,
		},
		Ollama: Ollama{
			APIURL:         defaultOllamaAPIURL,
			Model:          defaultOllamaModel,
			TimeoutSeconds: defaultOllamaTimeout,
		},
		Notes: Notes{
			MinLength: defaultMinLength,
			MaxLength: defaultMaxLength,
		},
		Transcription: Transcription{
			Engine:            defaultEngine,
			WhisperXModel:     defaultWhisperXModel,
			WhisperXVADMethod: defaultWhisperXVAD,
			MaxAudioSizeMB:    defaultMaxAudioSizeMB,
			AllowedFormats:    append([]string(nil), defaultAllowedFormats...),
			AutoDelete:        true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
