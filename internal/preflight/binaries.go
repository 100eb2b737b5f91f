package preflight

import (
	"fmt"
	"os/exec"
	"strings"

	"minutes/internal/config"
)

// Requirement defines an external binary minutes relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a binary.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

func (s Status) summary() string {
	if s.Available {
		return fmt.Sprintf("%s (%s)", s.Command, s.Description)
	}
	return s.Detail
}

// TranscriptionRequirements lists the binaries the configured speech engine
// runs. Text-only use works without them, so they are optional.
func TranscriptionRequirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Converts uploaded audio to 16 kHz mono WAV",
			Optional:    true,
		},
		{
			Name:        "uvx",
			Command:     cfg.UVXBinary(),
			Description: "Runs WhisperX transcription",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch {
		case cmd == "":
			status.Detail = "command not configured"
		default:
			if _, err := exec.LookPath(cmd); err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
			} else {
				status.Available = true
			}
		}
		results = append(results, status)
	}
	return results
}
