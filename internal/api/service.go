package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"minutes/internal/config"
	"minutes/internal/logging"
	"minutes/internal/meeting"
	"minutes/internal/notes"
	"minutes/internal/report"
	"minutes/internal/services"
	"minutes/internal/store"
	"minutes/internal/transcribe"
)

const (
	stageRenderReport = "render_report"
	stagePersist      = "persist"
	stageTranscribe   = "transcribe"
	stageHistory      = "history"
)

// Extractor turns meeting notes into a validated record. *pipeline.Pipeline
// satisfies it.
type Extractor interface {
	Run(ctx context.Context, text string) (*meeting.Record, error)
}

// MeetingStore abstracts history persistence. *store.Store satisfies it.
type MeetingStore interface {
	Add(ctx context.Context, rec *meeting.Record, reportFile string, notesLength int) (*store.Meeting, error)
	Get(ctx context.Context, id int64) (*store.Meeting, error)
	List(ctx context.Context) ([]*store.Meeting, error)
	Search(ctx context.Context, term string) ([]*store.Meeting, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Stats(ctx context.Context) (store.Stats, error)
}

// MeetingService runs report creation, transcription and history queries.
type MeetingService struct {
	cfg       *config.Config
	extractor Extractor
	store     MeetingStore
	engine    transcribe.Engine
	logger    *slog.Logger
	now       func() time.Time
}

// Option customizes a MeetingService.
type Option func(*MeetingService)

// WithStore enables history. Without it reports are still produced but never
// persisted, and history calls fail with a configuration error.
func WithStore(st MeetingStore) Option {
	return func(s *MeetingService) {
		s.store = st
	}
}

// WithEngine enables audio transcription.
func WithEngine(engine transcribe.Engine) Option {
	return func(s *MeetingService) {
		s.engine = engine
	}
}

// WithClock overrides the time source used for report footers.
func WithClock(now func() time.Time) Option {
	return func(s *MeetingService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMeetingService constructs the service. A nil logger discards output.
func NewMeetingService(cfg *config.Config, extractor Extractor, logger *slog.Logger, opts ...Option) *MeetingService {
	s := &MeetingService{
		cfg:       cfg,
		extractor: extractor,
		logger:    logging.NewComponentLogger(logger, "meetings"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HistoryEnabled reports whether a store is attached.
func (s *MeetingService) HistoryEnabled() bool {
	return s != nil && s.store != nil
}

// CreateReport runs the pipeline on text, renders the PDF, and records the
// meeting. Only pipeline and rendering failures fail the call; a history
// write failure is logged and reported through Report.Persisted.
func (s *MeetingService) CreateReport(ctx context.Context, text string) (*Report, error) {
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
		ctx = services.WithRequestID(ctx, requestID)
	}

	rec, err := s.extractor.Run(ctx, text)
	if err != nil {
		return nil, err
	}

	name := report.NewFileName()
	path := filepath.Join(s.cfg.Paths.ReportsDir, name)
	logger := logging.WithContext(services.WithStage(ctx, stageRenderReport), s.logger)
	if err := report.Write(rec, path, s.now()); err != nil {
		logging.ErrorWithContext(logger, "report rendering failed", "report_failed",
			logging.String("report_file", name),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.reports_dir is writable"),
		)
		return nil, services.Wrap(services.ErrReportFailed, stageRenderReport, "write pdf", "", err)
	}
	logger.Info("report generated", logging.String("report_file", name))

	out := &Report{RequestID: requestID, Record: rec, ReportFile: name}
	if s.store == nil {
		return out, nil
	}

	logger = logging.WithContext(services.WithStage(ctx, stagePersist), s.logger)
	stored, err := s.store.Add(ctx, rec, name, utf8.RuneCountInString(notes.Normalize(text)))
	if err != nil {
		logging.WarnWithContext(logger, "meeting not saved to history", "persist_failed",
			logging.String("report_file", name),
			logging.Error(err),
			logging.String(logging.FieldImpact, "report is available but missing from history"),
		)
		return out, nil
	}
	out.MeetingID = stored.ID
	out.Persisted = true
	logger.Info("meeting saved", logging.Int64(logging.FieldMeetingID, stored.ID))
	return out, nil
}

// Transcribe validates and stores an upload, runs the speech engine, and
// returns the transcript. The upload is removed afterwards when auto_delete
// is set.
func (s *MeetingService) Transcribe(ctx context.Context, name string, size int64, r io.Reader) (*Transcript, error) {
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	logger := logging.WithContext(services.WithStage(ctx, stageTranscribe), s.logger)

	if err := transcribe.ValidateUpload(name, size, s.cfg.Transcription); err != nil {
		logger.Info("audio upload rejected", logging.Error(err))
		return nil, services.Wrap(services.ErrValidation, stageTranscribe, "validate upload", "", err)
	}
	if s.engine == nil {
		return nil, services.Wrap(services.ErrConfiguration, stageTranscribe, "select engine", "", userFacing(msgNoEngine))
	}

	path, err := transcribe.SaveUpload(s.cfg.Paths.AudioTempDir, name, r)
	if err != nil {
		logging.ErrorWithContext(logger, "audio upload not saved", "upload_failed", logging.Error(err))
		return nil, services.Wrap(services.ErrTransient, stageTranscribe, "save upload", "", err)
	}
	defer func() {
		if err := transcribe.Cleanup(path, s.cfg.Transcription.AutoDelete); err != nil {
			logging.WarnWithContext(logger, "audio cleanup failed", "cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "upload stays in paths.audio_temp_dir"),
			)
		}
	}()

	started := time.Now()
	text, err := s.engine.Transcribe(ctx, path)
	if err != nil {
		logging.ErrorWithContext(logger, "transcription failed", "transcription_failed",
			logging.String("engine", s.engine.Name()),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run minutes doctor to check ffmpeg and uvx"),
		)
		return nil, services.Wrap(services.ErrExternalTool, stageTranscribe, s.engine.Name(), "", err)
	}

	text = notes.Normalize(text)
	if err := notes.ValidateTranscript(text); err != nil {
		logger.Info("transcript rejected", logging.Int("chars", utf8.RuneCountInString(text)))
		return nil, services.Wrap(services.ErrValidation, stageTranscribe, "check transcript", "", err)
	}

	length := utf8.RuneCountInString(text)
	logger.Info("transcription complete",
		logging.String("engine", s.engine.Name()),
		logging.Int("chars", length),
		logging.Duration("elapsed", time.Since(started)),
	)
	return &Transcript{Text: text, Length: length, Engine: s.engine.Name()}, nil
}

// History lists stored meetings, newest first.
func (s *MeetingService) History(ctx context.Context) ([]Meeting, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, stageHistory, "list", "", err)
	}
	return FromStoreMeetings(rows), nil
}

// Search lists stored meetings whose title, time, participants or topics
// contain term.
func (s *MeetingService) Search(ctx context.Context, term string) ([]Meeting, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	rows, err := s.store.Search(ctx, term)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, stageHistory, "search", "", err)
	}
	return FromStoreMeetings(rows), nil
}

// Get fetches one meeting.
func (s *MeetingService) Get(ctx context.Context, id int64) (*Meeting, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	row, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, stageHistory, "get", "", err)
	}
	if row == nil {
		return nil, services.Wrap(services.ErrNotFound, stageHistory, "get", fmt.Sprintf("meeting %d", id), userFacing(msgMeetingMissing))
	}
	dto := FromStoreMeeting(row)
	return &dto, nil
}

// Delete removes a meeting and its report file.
func (s *MeetingService) Delete(ctx context.Context, id int64) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	ctx = services.WithMeetingID(ctx, id)
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return services.Wrap(services.ErrTransient, stageHistory, "delete", "", err)
	}
	if !removed {
		return services.Wrap(services.ErrNotFound, stageHistory, "delete", fmt.Sprintf("meeting %d", id), userFacing(msgMeetingMissing))
	}
	logging.WithContext(ctx, s.logger).Info("meeting deleted")
	return nil
}

// Stats summarizes the history.
func (s *MeetingService) Stats(ctx context.Context) (Stats, error) {
	if err := s.requireStore(); err != nil {
		return Stats{}, err
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrTransient, stageHistory, "stats", "", err)
	}
	return FromStoreStats(stats), nil
}

func (s *MeetingService) requireStore() error {
	if s.store == nil {
		return services.Wrap(services.ErrConfiguration, stageHistory, "", "history database is unavailable", userFacing(msgHistoryOffline))
	}
	return nil
}
