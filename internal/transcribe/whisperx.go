package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"minutes/internal/config"
)

// WhisperX invocation constants.
const (
	DefaultWhisperXModel = "large-v3"
	CUDAIndexURL         = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL         = "https://pypi.org/simple"
	BatchSize            = "4"
	ChunkSize            = "15"
	BeamSize             = "5"
	Temperature          = "0.0"
	CPUDevice            = "cpu"
	CUDADevice           = "cuda"
	CPUComputeType       = "float32"
	VADMethodPyannote    = "pyannote"
	VADMethodSilero      = "silero"
)

// CommandRunner executes an external command and returns its failure.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Option customizes an engine.
type Option func(*WhisperX)

// WithCommandRunner replaces process execution (for testing).
func WithCommandRunner(runner CommandRunner) Option {
	return func(w *WhisperX) {
		w.run = runner
	}
}

// WhisperX transcribes audio with ffmpeg and WhisperX run through uvx.
type WhisperX struct {
	model     string
	cuda      bool
	vadMethod string
	hfToken   string
	ffmpeg    string
	uvx       string
	run       CommandRunner
}

// NewWhisperX builds the engine from the transcription settings.
func NewWhisperX(cfg *config.Config, opts ...Option) *WhisperX {
	w := &WhisperX{
		model:     cfg.Transcription.WhisperXModel,
		cuda:      cfg.Transcription.WhisperXCUDAEnabled,
		vadMethod: cfg.Transcription.WhisperXVADMethod,
		hfToken:   cfg.Transcription.WhisperXHFToken,
		ffmpeg:    cfg.FFmpegBinary(),
		uvx:       cfg.UVXBinary(),
		run:       execRunner,
	}
	if w.model == "" {
		w.model = DefaultWhisperXModel
	}
	if w.vadMethod == "" {
		w.vadMethod = VADMethodSilero
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *WhisperX) Name() string {
	return EngineWhisperX
}

// Model returns the WhisperX model name for logging.
func (w *WhisperX) Model() string {
	return w.model
}

// Transcribe converts path to WAV next to it, runs WhisperX, and returns the
// joined segment text. Intermediate files are removed before returning.
func (w *WhisperX) Transcribe(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", errors.New("transcribe: source path required")
	}
	workDir, err := os.MkdirTemp(filepath.Dir(path), "whisperx-")
	if err != nil {
		return "", fmt.Errorf("transcribe: create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	wavPath := filepath.Join(workDir, "audio.wav")
	if err := w.run(ctx, w.ffmpeg, ffmpegArgs(path, wavPath)...); err != nil {
		return "", fmt.Errorf("ffmpeg convert: %w", err)
	}
	if err := w.run(ctx, w.uvx, w.buildArgs(wavPath, workDir)...); err != nil {
		return "", fmt.Errorf("whisperx: %w", err)
	}

	segments, err := LoadSegments(filepath.Join(workDir, "audio.json"))
	if err != nil {
		return "", fmt.Errorf("whisperx output: %w", err)
	}
	return joinSegments(segments), nil
}

func ffmpegArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

func (w *WhisperX) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 32)

	if w.cuda {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", w.model,
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--chunk_size", ChunkSize,
		"--beam_size", BeamSize,
		"--temperature", Temperature,
		"--vad_method", w.vadMethod,
	)
	if w.vadMethod == VADMethodPyannote && w.hfToken != "" {
		args = append(args, "--hf_token", w.hfToken)
	}

	if w.cuda {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}
	return args
}

func execRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load to weights_only=true, which breaks the
	// pyannote checkpoints WhisperX loads.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Segment is one transcribed span from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperXPayload struct {
	Segments []Segment `json:"segments"`
}

// LoadSegments loads segments from a WhisperX JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload.Segments, nil
}

func joinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
