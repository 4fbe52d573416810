package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *AvatarStore {
	t.Helper()
	store, err := NewAvatarStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewAvatarStore: %v", err)
	}
	return store
}

func TestSaveAndRemove(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save("avatar-u1-x.png", []byte{1, 2, 3}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir(), "avatar-u1-x.png"))
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if len(data) != 3 {
		t.Errorf("saved %d bytes, want 3", len(data))
	}

	if err := store.Remove("avatar-u1-x.png"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), "avatar-u1-x.png")); !os.IsNotExist(err) {
		t.Error("file should be gone after Remove()")
	}
}

func TestRemove_MissingFileIsNotAnError(t *testing.T) {
	store := newTestStore(t)

	if err := store.Remove("never-existed.png"); err != nil {
		t.Errorf("Remove() on missing file = %v, want nil", err)
	}
}

// Names are plain filenames; anything that could climb out of the store
// directory is rejected.
func TestRejectsPathTraversal(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"../escape.png", "a/b.png", "..", ""} {
		if err := store.Save(name, []byte{1}); err == nil {
			t.Errorf("Save(%q) should be rejected", name)
		}
	}
}
