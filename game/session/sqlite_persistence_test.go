package session

import (
	"path/filepath"
	"testing"
	"time"
)

func newSQLitePersistence(t *testing.T) (*SQLitePersistence, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "sessions.db")
	persistence, err := NewSQLitePersistence(path, newConfigManager(t))
	if err != nil {
		t.Fatalf("Failed to open sqlite persistence: %v", err)
	}
	t.Cleanup(func() { persistence.Close() })
	return persistence, path
}

func TestSQLitePersistence(t *testing.T) {
	persistence, _ := newSQLitePersistence(t)
	exercisePersistence(t, persistence, newConfigManager(t))
}

func TestSQLitePersistenceCaseInsensitiveIDs(t *testing.T) {
	persistence, _ := newSQLitePersistence(t)
	configs := newConfigManager(t)

	if err := persistence.Save(newTestSession(t, configs, "AbCd", "tutorial")); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	if !persistence.Exists("abcd") || !persistence.Exists("ABCD") {
		t.Error("Expected lookups to ignore case")
	}
	ids, err := persistence.ListAll()
	if err != nil || len(ids) != 1 || ids[0] != "abcd" {
		t.Errorf("Expected [abcd], got %v, %v", ids, err)
	}
}

func TestSQLitePersistenceReopen(t *testing.T) {
	persistence, path := newSQLitePersistence(t)
	configs := newConfigManager(t)

	if err := persistence.Save(newTestSession(t, configs, "keep", "classic")); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	persistence.Close()

	reopened, err := NewSQLitePersistence(path, configs)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer reopened.Close()

	loaded, err := reopened.Load("keep")
	if err != nil {
		t.Fatalf("Failed to load session after reopen: %v", err)
	}
	if loaded.Config.Name != "Classic" {
		t.Errorf("Expected Classic, got %s", loaded.Config.Name)
	}
}

func TestSQLitePersistenceDeleteIdleSince(t *testing.T) {
	persistence, _ := newSQLitePersistence(t)
	configs := newConfigManager(t)

	old := newTestSession(t, configs, "old", "tutorial")
	old.LastAccessedAt = time.Now().Add(-48 * time.Hour)
	fresh := newTestSession(t, configs, "fresh", "tutorial")
	if err := persistence.Save(old); err != nil {
		t.Fatal(err)
	}
	if err := persistence.Save(fresh); err != nil {
		t.Fatal(err)
	}

	removed, err := persistence.DeleteIdleSince(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("Failed to delete idle sessions: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 idle session removed, got %d", removed)
	}
	if persistence.Exists("old") || !persistence.Exists("fresh") {
		t.Error("Expected only the idle session to be removed")
	}
}
