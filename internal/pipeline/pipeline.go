package pipeline

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"minutes/internal/extract"
	"minutes/internal/logging"
	"minutes/internal/meeting"
	"minutes/internal/notes"
	"minutes/internal/prompt"
	"minutes/internal/services"
)

// Stage names used in logs and wrapped errors.
const (
	StageValidateInput  = "validate_input"
	StageBuildPrompt    = "build_prompt"
	StageGenerate       = "generate"
	StageExtract        = "extract"
	StageValidateSchema = "validate_schema"
)

// Generator produces raw model output for a prompt. *ollama.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds the per-pipeline settings.
type Config struct {
	Limits       notes.Limits
	TemplatePath string
}

// Pipeline runs the extraction stages.
type Pipeline struct {
	cfg    Config
	model  Generator
	logger *slog.Logger
}

// New constructs a Pipeline. A nil logger discards output.
func New(cfg Config, model Generator, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		model:  model,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Run validates text, asks the model for a structured record, and returns it.
func (p *Pipeline) Run(ctx context.Context, text string) (*meeting.Record, error) {
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	text = notes.Normalize(text)

	logger := logging.WithContext(services.WithStage(ctx, StageValidateInput), p.logger)
	if err := notes.Validate(text, p.cfg.Limits); err != nil {
		logger.Info("notes rejected", logging.String("reason", reasonOf(err)), logging.Int("chars", utf8.RuneCountInString(text)))
		return nil, services.Wrap(services.ErrInputRejected, StageValidateInput, "validate", "notes rejected", err)
	}

	logger = logging.WithContext(services.WithStage(ctx, StageBuildPrompt), p.logger)
	tmpl, err := prompt.Load(p.cfg.TemplatePath)
	if err != nil {
		logging.ErrorWithContext(logger, "prompt template unavailable", "prompt_template_missing",
			logging.String("path", p.cfg.TemplatePath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check prompt.template_path"),
		)
		return nil, services.Wrap(services.ErrTemplateMissing, StageBuildPrompt, "load template", "", err)
	}
	built, err := tmpl.Build(text)
	if err != nil {
		logging.ErrorWithContext(logger, "prompt template unusable", "prompt_template_invalid",
			logging.String("source", tmpl.Source()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "add the {meeting_notes} placeholder to the template"),
		)
		return nil, services.Wrap(services.ErrTemplateMissing, StageBuildPrompt, "build prompt", "", err)
	}

	logger = logging.WithContext(services.WithStage(ctx, StageGenerate), p.logger)
	started := time.Now()
	raw, err := p.model.Generate(ctx, built)
	if err != nil {
		logging.ErrorWithContext(logger, "model call failed", "model_unavailable",
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that Ollama is running and the model is pulled"),
		)
		return nil, services.Wrap(services.ErrModelUnavailable, StageGenerate, "generate", "", err)
	}
	logger.Debug("model responded", logging.Duration("elapsed", time.Since(started)), logging.Int("chars", len(raw)))

	logger = logging.WithContext(services.WithStage(ctx, StageExtract), p.logger)
	parsed, err := extract.Extract(raw)
	if err != nil {
		logging.WarnWithContext(logger, "no JSON object in model output", "extraction_failed",
			logging.String("snippet", extract.Snippet(raw)),
			logging.String(logging.FieldImpact, "request fails; user is asked to rephrase"),
		)
		return nil, services.Wrap(services.ErrExtractionFailed, StageExtract, "extract", "", err)
	}

	logger = logging.WithContext(services.WithStage(ctx, StageValidateSchema), p.logger)
	rec, err := meeting.FromValidated(parsed)
	if err != nil {
		logging.WarnWithContext(logger, "model output failed schema check", "schema_invalid",
			logging.Error(err),
			logging.String(logging.FieldImpact, "request fails; no report is produced"),
		)
		return nil, services.Wrap(services.ErrSchemaInvalid, StageValidateSchema, "validate", "", err)
	}

	logger.Info("meeting extracted",
		logging.Int("participants", len(rec.Participants)),
		logging.Int("topics", len(rec.Topics)),
		logging.Int("action_items", len(rec.ActionItems)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return rec, nil
}
