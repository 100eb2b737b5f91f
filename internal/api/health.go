package api

import (
	"context"

	"minutes/internal/preflight"
)

// Health checks the model endpoint and transcription binaries. Status is
// "ok" when reports can be produced and "degraded" otherwise.
func (s *MeetingService) Health(ctx context.Context) Health {
	model := preflight.CheckOllama(ctx, s.cfg.Ollama)
	h := Health{
		Status:       "ok",
		Model:        s.cfg.Ollama.Model,
		ModelReady:   model.Passed,
		HistoryReady: s.HistoryEnabled(),
	}
	if !model.Passed {
		h.Status = "degraded"
		h.ModelDetail = model.Detail
	}
	for _, dep := range preflight.CheckBinaries(preflight.TranscriptionRequirements(s.cfg)) {
		h.Dependencies = append(h.Dependencies, DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		})
	}
	return h
}
