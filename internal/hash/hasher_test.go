package hash

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
)

func TestFile_Deterministic(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/a.txt", []byte("hello world"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	sum1, err := File(fsys, "/a.txt")
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}
	sum2, err := File(fsys, "/a.txt")
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}

	if len(sum1) == 0 {
		t.Error("Expected non-empty digest")
	}
	if !bytes.Equal(sum1, sum2) {
		t.Errorf("Expected identical digests, got %x and %x", sum1, sum2)
	}
}

func TestFile_DifferentContent(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/a.txt", []byte("content a"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if err := afero.WriteFile(fsys, "/b.txt", []byte("content b"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	sumA, err := File(fsys, "/a.txt")
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}
	sumB, err := File(fsys, "/b.txt")
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}

	if bytes.Equal(sumA, sumB) {
		t.Error("Expected different digests for different content")
	}
}

func TestFile_LargeFile(t *testing.T) {
	// Larger than the streaming buffer so multiple reads happen.
	content := bytes.Repeat([]byte("0123456789abcdef"), 8*1024)

	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/large1.bin", content, 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if err := afero.WriteFile(fsys, "/large2.bin", content, 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	sum1, err := File(fsys, "/large1.bin")
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}
	sum2, err := File(fsys, "/large2.bin")
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}

	if !bytes.Equal(sum1, sum2) {
		t.Errorf("Expected identical digests for identical content, got %x and %x", sum1, sum2)
	}
}

func TestFile_Missing(t *testing.T) {
	fsys := afero.NewMemMapFs()

	if _, err := File(fsys, "/does-not-exist"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFile_Empty(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/empty", nil, 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	sum, err := File(fsys, "/empty")
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}
	if len(sum) != 8 {
		t.Errorf("Expected 8-byte xxHash digest, got %d bytes", len(sum))
	}
}
