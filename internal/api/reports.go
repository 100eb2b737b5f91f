package api

import (
	"errors"
	"os"
	"path/filepath"

	"minutes/internal/services"
	"minutes/internal/textutil"
)

// ReportPath resolves a report file name for download. Names outside
// [A-Za-z0-9_.] are refused before the filesystem is touched.
func (s *MeetingService) ReportPath(name string) (string, error) {
	if !textutil.ValidReportName(name) {
		return "", services.Wrap(services.ErrValidation, "download", name, "", userFacing(msgBadFilename))
	}
	path := filepath.Join(s.cfg.Paths.ReportsDir, name)
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", services.Wrap(services.ErrNotFound, "download", name, "", userFacing(msgFileMissing))
	}
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "download", "stat", "", err)
	}
	if !info.Mode().IsRegular() {
		return "", services.Wrap(services.ErrNotFound, "download", name, "", userFacing(msgFileMissing))
	}
	return path, nil
}
