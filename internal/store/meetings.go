package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"minutes/internal/meeting"
	"minutes/internal/textutil"
)

// timestampLayout is fixed width so created_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

const meetingColumns = `id, title, meeting_time, participants, topics, action_items,
        report_file, created_at, notes_length`

// Meeting is one persisted report.
type Meeting struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Record      meeting.Record `json:"record"`
	ReportFile  string         `json:"report_file"`
	CreatedAt   time.Time      `json:"created_at"`
	NotesLength int            `json:"notes_length"`
}

// Stats summarizes the stored history.
type Stats struct {
	Meetings   int   `json:"total_meetings"`
	ReportSize int64 `json:"total_report_bytes"`
}

// ReportSizeMB returns the report size in megabytes rounded to two decimals.
func (s Stats) ReportSizeMB() float64 {
	return math.Round(float64(s.ReportSize)/(1024*1024)*100) / 100
}

// Add stores a validated record together with its report file name.
func (s *Store) Add(ctx context.Context, rec *meeting.Record, reportFile string, notesLength int) (*Meeting, error) {
	if rec == nil {
		return nil, errors.New("add meeting: record is nil")
	}
	if !textutil.ValidReportName(reportFile) {
		return nil, fmt.Errorf("add meeting: invalid report file name %q", reportFile)
	}
	participants, err := encodeList(rec.Participants)
	if err != nil {
		return nil, fmt.Errorf("encode participants: %w", err)
	}
	topics, err := encodeList(rec.Topics)
	if err != nil {
		return nil, fmt.Errorf("encode topics: %w", err)
	}
	actions, err := encodeList(rec.ActionItems)
	if err != nil {
		return nil, fmt.Errorf("encode action items: %w", err)
	}

	created := time.Now().UTC()
	title := rec.Title()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO meetings (
            title, meeting_time, participants, topics, action_items,
            report_file, created_at, notes_length
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		title,
		rec.MeetingTime,
		participants,
		topics,
		actions,
		reportFile,
		created.Format(timestampLayout),
		notesLength,
	)
	if err != nil {
		return nil, fmt.Errorf("insert meeting: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("fetch meeting id: %w", err)
	}

	stored := *rec
	return &Meeting{
		ID:          id,
		Title:       title,
		Record:      stored,
		ReportFile:  reportFile,
		CreatedAt:   created,
		NotesLength: notesLength,
	}, nil
}

// Get fetches one meeting. A missing row returns nil, nil.
func (s *Store) Get(ctx context.Context, id int64) (*Meeting, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, id)
	m, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meeting %d: %w", id, err)
	}
	return m, nil
}

// List returns every meeting, newest first.
func (s *Store) List(ctx context.Context) ([]*Meeting, error) {
	return s.query(ctx,
		`SELECT `+meetingColumns+` FROM meetings ORDER BY created_at DESC, id DESC`)
}

// Search matches term as a substring of the title, meeting time,
// participants, or topics. An empty term lists everything.
func (s *Store) Search(ctx context.Context, term string) ([]*Meeting, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx)
	}
	pattern := "%" + escapeLike(term) + "%"
	return s.query(ctx,
		`SELECT `+meetingColumns+` FROM meetings
        WHERE title LIKE ? ESCAPE '\'
           OR meeting_time LIKE ? ESCAPE '\'
           OR participants LIKE ? ESCAPE '\'
           OR topics LIKE ? ESCAPE '\'
        ORDER BY created_at DESC, id DESC`,
		pattern, pattern, pattern, pattern)
}

// Delete removes the meeting row and its report file. It reports false when
// no such meeting exists.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if m == nil {
		return false, nil
	}
	if path := s.ReportPath(m.ReportFile); path != "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("remove report %s: %w", m.ReportFile, err)
		}
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM meetings WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete meeting %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete meeting %d: %w", id, err)
	}
	return affected > 0, nil
}

// Stats counts stored meetings and sums the size of report files still on disk.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	var stats Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meetings`).Scan(&stats.Meetings); err != nil {
		return Stats{}, fmt.Errorf("count meetings: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT report_file FROM meetings`)
	if err != nil {
		return Stats{}, fmt.Errorf("list report files: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return Stats{}, fmt.Errorf("scan report file: %w", err)
		}
		path := s.ReportPath(name)
		if path == "" {
			continue
		}
		if info, statErr := os.Stat(path); statErr == nil && info.Mode().IsRegular() {
			stats.ReportSize += info.Size()
		}
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate report files: %w", err)
	}
	return stats, nil
}

// ReportPath resolves a report file name inside the reports directory.
// Names that could escape the directory resolve to "".
func (s *Store) ReportPath(name string) string {
	if s == nil || s.reportsDir == "" || !textutil.ValidReportName(name) {
		return ""
	}
	return filepath.Join(s.reportsDir, name)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*Meeting, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query meetings: %w", err)
	}
	defer rows.Close()

	var meetings []*Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meetings: %w", err)
	}
	return meetings, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row scanner) (*Meeting, error) {
	var (
		m            Meeting
		participants string
		topics       string
		actions      string
		created      string
	)
	if err := row.Scan(
		&m.ID,
		&m.Title,
		&m.Record.MeetingTime,
		&participants,
		&topics,
		&actions,
		&m.ReportFile,
		&created,
		&m.NotesLength,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(participants), &m.Record.Participants); err != nil {
		return nil, fmt.Errorf("decode participants: %w", err)
	}
	if err := json.Unmarshal([]byte(topics), &m.Record.Topics); err != nil {
		return nil, fmt.Errorf("decode topics: %w", err)
	}
	if err := json.Unmarshal([]byte(actions), &m.Record.ActionItems); err != nil {
		return nil, fmt.Errorf("decode action items: %w", err)
	}
	ts, err := time.Parse(timestampLayout, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	m.CreatedAt = ts
	return &m, nil
}

func encodeList[T any](values []T) (string, error) {
	if values == nil {
		values = []T{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(values); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
