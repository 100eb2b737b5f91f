package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"minutes/internal/api"
	"minutes/internal/config"
	"minutes/internal/logging"
	"minutes/internal/notes"
	"minutes/internal/pipeline"
	"minutes/internal/services/ollama"
	"minutes/internal/store"
	"minutes/internal/transcribe"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// serviceOptions selects which collaborators newService wires in.
type serviceOptions struct {
	history    bool
	transcribe bool
}

// newService builds the meeting service for a single command invocation. The
// returned close func releases the history store when one was opened.
func (c *commandContext) newService(opts serviceOptions) (*api.MeetingService, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	client := ollama.NewClient(ollama.Config{
		BaseURL:        cfg.Ollama.APIURL,
		Model:          cfg.Ollama.Model,
		TimeoutSeconds: cfg.Ollama.TimeoutSeconds,
	})
	pl := pipeline.New(pipeline.Config{
		Limits:       noteLimits(cfg),
		TemplatePath: cfg.Prompt.TemplatePath,
	}, client, logging.NewComponentLogger(logger, "pipeline"))

	var svcOpts []api.Option
	closeFn := func() {}
	if opts.history {
		st, err := store.Open(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open history: %w", err)
		}
		svcOpts = append(svcOpts, api.WithStore(st))
		closeFn = func() {
			if err := st.Close(); err != nil {
				logger.Warn("history close failed", logging.Error(err))
			}
		}
	}
	if opts.transcribe {
		engine, err := transcribe.New(cfg)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		svcOpts = append(svcOpts, api.WithEngine(engine))
	}

	svc := api.NewMeetingService(cfg, pl, logging.NewComponentLogger(logger, "service"), svcOpts...)
	return svc, closeFn, nil
}

func noteLimits(cfg *config.Config) notes.Limits {
	return notes.Limits{MinLength: cfg.Notes.MinLength, MaxLength: cfg.Notes.MaxLength}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
