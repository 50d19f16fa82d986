package storage

import (
	"os"
	"path/filepath"
	"testing"

	"offer-reconciliation-service/pkg/errors"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	if _, ok, _ := s.Get("missing"); ok {
		t.Error("expected missing key to not exist")
	}

	if err := s.Set("gobo-a", "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok, err := s.Get("gobo-a")
	if err != nil || !ok || v != "1" {
		t.Errorf("Get = (%q, %v, %v), want (1, true, nil)", v, ok, err)
	}

	if err := s.Delete("gobo-a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := s.Get("gobo-a"); ok {
		t.Error("expected deleted key to not exist")
	}

	// Deleting an absent key is not an error.
	if err := s.Delete("gobo-a"); err != nil {
		t.Errorf("Delete absent key returned error: %v", err)
	}
}

func TestMemoryStore_Keys(t *testing.T) {
	s := NewMemoryStore()
	s.Set("goboHiddenGroups-profile1", "[]")
	s.Set("goboHiddenGroups-profile2", "[]")
	s.Set("goboHiddenGroups-global", "[]")
	s.Set("unrelated", "x")

	keys, err := s.Keys("goboHiddenGroups-")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %d: %v", len(keys), keys)
	}
	// Sorted output.
	if keys[0] != "goboHiddenGroups-global" {
		t.Errorf("expected sorted keys, got %v", keys)
	}
}

func TestJSONHelpers(t *testing.T) {
	s := NewMemoryStore()

	in := []string{"Ship:OASIS", "Category:Interior"}
	if err := SetJSON(s, "groups", in); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var out []string
	ok, err := GetJSON(s, "groups", &out)
	if err != nil || !ok {
		t.Fatalf("GetJSON = (%v, %v), want (true, nil)", ok, err)
	}
	if len(out) != 2 || out[0] != "Ship:OASIS" {
		t.Errorf("round trip mismatch: %v", out)
	}

	ok, err = GetJSON(s, "absent", &out)
	if err != nil || ok {
		t.Errorf("GetJSON absent = (%v, %v), want (false, nil)", ok, err)
	}

	s.Set("broken", "{not json")
	if _, err := GetJSON(s, "broken", &out); err == nil {
		t.Error("expected error for malformed stored JSON")
	} else if !errors.IsCode(err, errors.CodeStorageRead) {
		t.Errorf("expected storage_read code, got %v", err)
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	fs := NewFileStore(path)

	// Not usable before Load.
	if _, _, err := fs.Get("k"); !errors.IsCode(err, errors.CodeStorageNotReady) {
		t.Errorf("expected storage_not_ready before Load, got %v", err)
	}

	if err := fs.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	select {
	case <-fs.Ready():
	default:
		t.Fatal("expected Ready channel to be closed after Load")
	}

	if err := fs.Set("gobo-a", "7"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Write-through: a fresh store over the same file sees the value.
	fs2 := NewFileStore(path)
	if err := fs2.Load(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	v, ok, err := fs2.Get("gobo-a")
	if err != nil || !ok || v != "7" {
		t.Errorf("reloaded Get = (%q, %v, %v), want (7, true, nil)", v, ok, err)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileStore(path)
	if err := fs.Load(); err == nil {
		t.Error("expected Load to fail on corrupt file")
	}
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "nope", "state.json"))
	if err := fs.Load(); err != nil {
		t.Fatalf("Load on missing file should succeed, got %v", err)
	}
	keys, err := fs.Keys("")
	if err != nil || len(keys) != 0 {
		t.Errorf("expected empty store, got keys=%v err=%v", keys, err)
	}
}
