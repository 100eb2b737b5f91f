package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// pdfHeader starts every fake report so content sniffing sees a PDF.
const pdfHeader = "%PDF-1.3\n"

// WriteFile writes a fake report of exactly size bytes to path, creating
// parent directories. Sizes shorter than the PDF header are padded up to it.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	content := []byte(pdfHeader)
	if pad := size - int64(len(content)); pad > 0 {
		content = append(content, bytes.Repeat([]byte{'B'}, int(pad))...)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
