package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDraftRoundtrip(t *testing.T) {
	store, err := NewDraftStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDraftStore failed: %v", err)
	}

	if err := store.Save("q1", "def solve():\n    pass\n"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	code, err := store.Load("q1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if code != "def solve():\n    pass\n" {
		t.Errorf("draft mismatch: %q", code)
	}

	// Saving again replaces the previous draft
	if err := store.Save("q1", "updated"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	code, _ = store.Load("q1")
	if code != "updated" {
		t.Errorf("draft not replaced: %q", code)
	}
}

func TestDraftMissingIsNotAnError(t *testing.T) {
	store, err := NewDraftStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDraftStore failed: %v", err)
	}

	code, err := store.Load("never-saved")
	if err != nil {
		t.Errorf("missing draft returned error: %v", err)
	}
	if code != "" {
		t.Errorf("missing draft returned code: %q", code)
	}

	if err := store.Delete("never-saved"); err != nil {
		t.Errorf("deleting missing draft returned error: %v", err)
	}
}

func TestDraftDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDraftStore(dir)
	if err != nil {
		t.Fatalf("NewDraftStore failed: %v", err)
	}

	store.Save("q1", "code")
	if err := store.Delete("q1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "drafts", "q1.json")); !os.IsNotExist(err) {
		t.Error("draft file still on disk")
	}

	code, _ := store.Load("q1")
	if code != "" {
		t.Errorf("deleted draft still loads: %q", code)
	}
}

func TestDraftFilePermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDraftStore(dir)
	if err != nil {
		t.Fatalf("NewDraftStore failed: %v", err)
	}

	store.Save("q1", "secret answer")

	info, err := os.Stat(filepath.Join(dir, "drafts", "q1.json"))
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("draft file permissions = %o, want 0600", perm)
	}
}
