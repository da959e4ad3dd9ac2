package extract

import (
	"os"
	"strings"
	"testing"
)

func TestSaveUploadToTempWritesFile(t *testing.T) {
	tmp, err := SaveUploadToTemp(strings.NewReader("hello world"), "sample.txt", 1<<20)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	defer tmp.Release()

	b, err := os.ReadFile(tmp.Path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "hello world" {
		t.Fatalf("expected saved content, got %q", b)
	}
	if tmp.Size != int64(len("hello world")) {
		t.Fatalf("expected size %d, got %d", len("hello world"), tmp.Size)
	}
}

func TestSaveUploadToTempEnforcesLimit(t *testing.T) {
	_, err := SaveUploadToTemp(strings.NewReader(strings.Repeat("a", 100)), "big.txt", 10)
	if err == nil {
		t.Fatalf("expected oversized upload to be rejected")
	}
	if !strings.Contains(err.Error(), "10B") {
		t.Fatalf("limit under 1KB must be printed in bytes: %v", err)
	}
}

func TestSaveUploadToTempStripsPathComponents(t *testing.T) {
	tmp, err := SaveUploadToTemp(strings.NewReader("x"), "../../etc/passwd", 1<<20)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	defer tmp.Release()

	if strings.Contains(tmp.Path, "..") {
		t.Fatalf("path traversal in temp path: %q", tmp.Path)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	tmp, err := SaveUploadToTemp(strings.NewReader("x"), "a.txt", 1<<20)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	tmp.Release()
	if _, err := os.Stat(tmp.Path); !os.IsNotExist(err) {
		t.Fatalf("expected file deleted after release")
	}

	// Second release must be a no-op, not a panic or error.
	tmp.Release()
}

func TestReleaseOnNilIsSafe(t *testing.T) {
	var tmp *TempFile
	tmp.Release()
}
