package transcribe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"minutes/internal/config"
	"minutes/internal/textutil"
)

// UploadError describes why an upload was refused. Message is shown to users.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string {
	return e.Message
}

// ValidateUpload checks an upload's name and size against the transcription
// settings.
func ValidateUpload(name string, size int64, cfg config.Transcription) error {
	if strings.TrimSpace(name) == "" {
		return &UploadError{Message: "No file selected"}
	}
	if !slices.Contains(cfg.AllowedFormats, textutil.FileExtension(name)) {
		return &UploadError{Message: "Invalid file format. Allowed: " + strings.Join(cfg.AllowedFormats, ", ")}
	}
	if size > int64(cfg.MaxAudioSizeMB)*1024*1024 {
		return &UploadError{Message: fmt.Sprintf("File too large. Maximum size: %d MB", cfg.MaxAudioSizeMB)}
	}
	if size == 0 {
		return &UploadError{Message: "File is empty"}
	}
	return nil
}

// SaveUpload copies r into dir under a random audio_<hex>.<ext> name and
// returns the new path. The original name only contributes its extension.
func SaveUpload(dir, name string, r io.Reader) (string, error) {
	ext := textutil.FileExtension(name)
	if ext == "" || !textutil.ValidReportName(ext) {
		return "", fmt.Errorf("save upload: unusable extension in %q", textutil.SanitizeFileName(name))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("save upload: ensure dir: %w", err)
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	path := filepath.Join(dir, "audio_"+id+"."+ext)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("save upload: write: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("save upload: close: %w", err)
	}
	return path, nil
}

// Cleanup removes a saved upload when autoDelete is set. A file that is
// already gone is not an error.
func Cleanup(path string, autoDelete bool) error {
	if !autoDelete || path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cleanup %s: %w", filepath.Base(path), err)
	}
	return nil
}
