package archive_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"vast/internal/archive"
)

func TestLoadConfigMissingFileIsEmpty(t *testing.T) {
	cfg := archive.LoadConfig(t.TempDir())
	if cfg.CourseDirectoryNames == nil || cfg.TermNames == nil {
		t.Fatal("expected non-nil maps")
	}
	if len(cfg.CourseDirectoryNames) != 0 || len(cfg.TermNames) != 0 {
		t.Fatalf("expected empty config, got %#v", cfg)
	}
}

func TestLoadConfigMalformedFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, archive.ConfigFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := archive.LoadConfig(dir)
	if len(cfg.CourseDirectoryNames) != 0 || len(cfg.TermNames) != 0 {
		t.Fatalf("expected empty config, got %#v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := archive.Config{
		CourseDirectoryNames: map[int64]string{42: "Algorithms"},
		TermNames:            map[int64]string{7: "Fall 2025"},
	}
	if err := archive.SaveConfig(dir, cfg); err != nil {
		t.Fatalf("SaveConfig returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, archive.ConfigFileName))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"courseDirectoryNames"`) || !strings.Contains(string(data), `"42": "Algorithms"`) {
		t.Fatalf("unexpected sidecar content %s", data)
	}

	loaded := archive.LoadConfig(dir)
	if loaded.CourseDirectoryNames[42] != "Algorithms" || loaded.TermNames[7] != "Fall 2025" {
		t.Fatalf("round trip mismatch: %#v", loaded)
	}
}

func TestLoadConfigToleratesMissingTermNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, archive.ConfigFileName), []byte(`{"courseDirectoryNames":{"3":"Bio"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := archive.LoadConfig(dir)
	if cfg.CourseDirectoryNames[3] != "Bio" || cfg.TermNames == nil {
		t.Fatalf("unexpected config %#v", cfg)
	}
}

func TestUpdatesPreserveOtherEntries(t *testing.T) {
	dir := t.TempDir()
	if err := archive.UpdateTermName(dir, 1, "Spring"); err != nil {
		t.Fatal(err)
	}
	if err := archive.UpdateCourseDirectoryName(dir, 10, "Chem"); err != nil {
		t.Fatal(err)
	}
	if err := archive.UpdateCourseDirectoryName(dir, 11, "Physics"); err != nil {
		t.Fatal(err)
	}
	if err := archive.UpdateCourseDirectoryName(dir, 11, "  "); err != nil {
		t.Fatal(err)
	}
	cfg := archive.LoadConfig(dir)
	if cfg.TermNames[1] != "Spring" || cfg.CourseDirectoryNames[10] != "Chem" {
		t.Fatalf("unexpected config %#v", cfg)
	}
	if _, ok := cfg.CourseDirectoryNames[11]; ok {
		t.Fatal("blank name should remove the override")
	}
}

func TestConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	dir := t.TempDir()
	var wg sync.WaitGroup
	for id := int64(1); id <= 8; id++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := archive.UpdateCourseDirectoryName(dir, id, "course"); err != nil {
				t.Errorf("update %d: %v", id, err)
			}
		}()
	}
	wg.Wait()
	if got := len(archive.LoadConfig(dir).CourseDirectoryNames); got != 8 {
		t.Fatalf("expected 8 entries, got %d", got)
	}
}
