package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// TempFile wraps the on-disk copy of one uploaded document. Release
// deletes the backing directory exactly once; later calls are no-ops.
// A failed deletion is logged and never surfaced to the caller.
type TempFile struct {
	Dir  string
	Path string
	Size int64

	releaseOnce sync.Once
}

func (t *TempFile) Release() {
	if t == nil {
		return
	}
	t.releaseOnce.Do(func() {
		if t.Dir == "" {
			return
		}
		if err := os.RemoveAll(t.Dir); err != nil {
			fmt.Fprintf(os.Stderr, "warning: temp cleanup failed for %s: %v\n", t.Dir, err)
		}
	})
}

// SaveUploadToTemp writes an uploaded body to a fresh temp directory,
// enforcing maxBytes. The caller owns the returned TempFile and must
// Release it on every exit path.
func SaveUploadToTemp(body io.Reader, fileName string, maxBytes int64) (*TempFile, error) {
	tmpDir, err := os.MkdirTemp("", "extraia-*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}

	safeName := strings.TrimSpace(fileName)
	if safeName == "" {
		safeName = "input.bin"
	}
	outPath := filepath.Join(tmpDir, filepath.Base(safeName))

	f, err := os.Create(outPath)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("create: %w", err)
	}
	defer f.Close()

	lr := &io.LimitedReader{R: body, N: maxBytes + 1}
	n, err := io.Copy(f, lr)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("write: %w", err)
	}
	if n > maxBytes {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("file exceeds %s limit", sizeLabel(maxBytes))
	}

	if err := f.Sync(); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("sync: %w", err)
	}

	return &TempFile{Dir: tmpDir, Path: outPath, Size: n}, nil
}

// SniffMIMEType detects the content type of a saved file. Used only
// when the upload declared no Content-Type of its own.
func SniffMIMEType(path string) string {
	m, err := mimetype.DetectFile(path)
	if err != nil || m == nil {
		return ""
	}
	return NormalizeMIME(m.String())
}
