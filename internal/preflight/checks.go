package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"minutes/internal/config"
	"minutes/internal/prompt"
	"minutes/internal/services/ollama"
)

// CheckOllama verifies that the Ollama API answers and serves the configured
// model. It uses a 10-second timeout.
func CheckOllama(ctx context.Context, cfg config.Ollama) Result {
	name := "Ollama"
	if cfg.Model != "" {
		name = fmt.Sprintf("Ollama (%s)", cfg.Model)
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := ollama.NewClient(ollama.Config{
		BaseURL:        cfg.APIURL,
		Model:          cfg.Model,
		TimeoutSeconds: cfg.TimeoutSeconds,
	})
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeModelError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "model available"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace fails when the filesystem holding path has less than
// minFree megabytes available.
func CheckDiskSpace(name, path string, minFree uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	freeMB := stat.Bavail * uint64(stat.Bsize) / (1024 * 1024)
	detail := fmt.Sprintf("%d MB free on %s", freeMB, path)
	if freeMB < minFree {
		return Result{Name: name, Detail: fmt.Sprintf("%s (need at least %d MB)", detail, minFree)}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckPromptTemplate verifies that a configured template override loads and
// carries the notes placeholder.
func CheckPromptTemplate(path string) Result {
	const name = "Prompt template"
	tmpl, err := prompt.Load(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if _, err := tmpl.Build("probe"); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s: %v", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// summarizeModelError produces a human-readable summary for model health failures.
func summarizeModelError(err error) string {
	var oerr *ollama.Error
	if errors.As(err, &oerr) {
		switch oerr.Kind {
		case ollama.KindTimeout:
			return "health check timed out (Ollama unresponsive)"
		case ollama.KindConnectionRefused:
			return "connection refused (is `ollama serve` running?)"
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (Ollama unresponsive)"
	}
	return err.Error()
}
