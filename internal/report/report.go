// Package report renders meeting records as PDF files.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"

	"minutes/internal/meeting"
)

const bullet = "• "

// NewFileName returns a fresh report name of the form meeting_report_<16 hex>.pdf.
func NewFileName() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "meeting_report_" + id[:16] + ".pdf"
}

// Write renders rec to path, creating parent directories as needed. The file
// appears atomically.
func Write(rec *meeting.Record, path string, now time.Time) error {
	if rec == nil {
		return fmt.Errorf("render report: nil record")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.pdf")
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	tmpName := tmp.Name()
	if err := Render(rec, tmp, now); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close report file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("move report into place: %w", err)
	}
	return nil
}

// Render writes the PDF for rec to w.
func Render(rec *meeting.Record, w io.Writer, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle("Meeting Report", true)
	pdf.SetCreator("minutes", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(0, 0, 139)
	pdf.CellFormat(0, 14, tr("Meeting Report"), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	section(pdf, tr, "Meeting Time")
	body(pdf, tr, rec.MeetingTime)

	section(pdf, tr, "Participants")
	list(pdf, tr, rec.Participants, "No participants listed")

	section(pdf, tr, "Topics Discussed")
	list(pdf, tr, rec.Topics, "No topics listed")

	section(pdf, tr, "Action Items")
	actions := make([]string, 0, len(rec.ActionItems))
	for _, item := range rec.ActionItems {
		actions = append(actions, item.String())
	}
	list(pdf, tr, actions, "No action items recorded")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 6, tr("Generated on "+now.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 139)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func body(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, 6, tr(text), "", "L", false)
}

func list(pdf *gofpdf.Fpdf, tr func(string) string, items []string, empty string) {
	if len(items) == 0 {
		body(pdf, tr, empty)
		return
	}
	for _, item := range items {
		body(pdf, tr, bullet+item)
	}
}
