package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenUpsertLookup(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.sqlite3")

	cat, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	if err := cat.Upsert("/videos/s01e01.mkv", "abc123", 1320.5); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	entry, found, err := cat.Lookup("/videos/s01e01.mkv")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !found {
		t.Fatal("expected entry to be found after Upsert")
	}
	if entry.HeaderChecksum != "abc123" {
		t.Errorf("HeaderChecksum = %q, want abc123", entry.HeaderChecksum)
	}
	if entry.DurationSec != 1320.5 {
		t.Errorf("DurationSec = %v, want 1320.5", entry.DurationSec)
	}
}

func TestUpsertOverwritesExistingEntry(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.sqlite3")
	cat, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	path := "/videos/s01e02.mkv"
	if err := cat.Upsert(path, "checksum-v1", 100); err != nil {
		t.Fatalf("Upsert v1: %v", err)
	}
	if err := cat.Upsert(path, "checksum-v2", 200); err != nil {
		t.Fatalf("Upsert v2: %v", err)
	}

	entry, found, err := cat.Lookup(path)
	if err != nil || !found {
		t.Fatalf("Lookup: entry=%v found=%v err=%v", entry, found, err)
	}
	if entry.HeaderChecksum != "checksum-v2" {
		t.Errorf("HeaderChecksum = %q, want checksum-v2 (overwritten)", entry.HeaderChecksum)
	}
}

func TestLookupMissingEntry(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.sqlite3")
	cat, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	_, found, err := cat.Lookup("/does/not/exist.mkv")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if found {
		t.Error("expected found=false for an unknown path")
	}
}

func TestOpenUsesDefaultDBFile(t *testing.T) {
	dir := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })

	cat, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cat.Close()

	if _, err := os.Stat(filepath.Join(dir, DefaultDBFile)); err != nil {
		t.Errorf("expected %s to be created: %v", DefaultDBFile, err)
	}
}
