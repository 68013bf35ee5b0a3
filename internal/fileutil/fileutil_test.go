package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestUniqueFilenameFree(t *testing.T) {
	dir := t.TempDir()
	got, err := UniqueFilename(dir, "report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if got != "report.pdf" {
		t.Fatalf("got %q, want report.pdf", got)
	}
}

func TestUniqueFilenameCountsUp(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "report.pdf"))

	got, err := UniqueFilename(dir, "report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if got != "report (1).pdf" {
		t.Fatalf("got %q, want report (1).pdf", got)
	}

	touch(t, filepath.Join(dir, got))
	got, err = UniqueFilename(dir, "report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if got != "report (2).pdf" {
		t.Fatalf("got %q, want report (2).pdf", got)
	}
}

func TestUniqueFilenameWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "README"))
	touch(t, filepath.Join(dir, ".env"))

	if got, _ := UniqueFilename(dir, "README"); got != "README (1)" {
		t.Fatalf("got %q", got)
	}
	if got, _ := UniqueFilename(dir, ".env"); got != ".env (1)" {
		t.Fatalf("got %q", got)
	}
}

func TestUniqueFilenameTreatsDirectoryAsTaken(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "notes.txt"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := UniqueFilename(dir, "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "notes (1).txt" {
		t.Fatalf("got %q", got)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "config.json")

	if err := WriteFileAtomic(dst, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(dst, []byte("second"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("content mismatch: got %q", got)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the destination file, found %d entries", len(entries))
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteStreamAtomicRemovesTempOnFailure(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "slides.pdf")

	if _, err := WriteStreamAtomic(dst, failingReader{}, 0o644); err == nil {
		t.Fatal("expected error from failing reader")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no leftovers, found %v", entries)
	}
}

func TestWriteStreamAtomicReportsBytes(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "data.bin")
	n, err := WriteStreamAtomic(dst, strings.NewReader("hello world"), 0o600)
	if err != nil {
		t.Fatal(err)
	}
	if n != 11 {
		t.Fatalf("written = %d", n)
	}
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	touch(t, file)
	if !DirExists(dir) {
		t.Fatal("expected dir to exist")
	}
	if DirExists(file) {
		t.Fatal("file is not a directory")
	}
	if DirExists(filepath.Join(dir, "missing")) {
		t.Fatal("missing path reported as existing")
	}
}
