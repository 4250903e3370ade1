package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/tile-path-game/game/engine"
)

func createTestConfig() *engine.GameConfig {
	return engine.DefaultGameConfig()
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	t.Run("with explicit ID", func(t *testing.T) {
		session, err := manager.Create("my-game", "minimal", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "my-game" || session.ConfigID != "minimal" {
			t.Errorf("Unexpected session %+v", session)
		}
		if session.Engine == nil {
			t.Fatal("Expected engine to be created")
		}
		if len(session.Engine.AvailableTiles()) != len(config.Pool) {
			t.Errorf("Expected a full pool, got %d tiles", len(session.Engine.AvailableTiles()))
		}
	})

	t.Run("duplicate ID is case-insensitive", func(t *testing.T) {
		if _, err := manager.Create("MY-GAME", "", config); !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("generated ID", func(t *testing.T) {
		session, err := manager.Create("", "", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character ID, got %q", session.ID)
		}
	})

	t.Run("invalid ID", func(t *testing.T) {
		if _, err := manager.Create("../escape", "", config); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		bad := createTestConfig()
		bad.Pool = nil
		if _, err := manager.Create("bad", "", bad); !errors.Is(err, engine.ErrInvalidConfig) {
			t.Errorf("Expected engine.ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create("AbCd", "", createTestConfig())

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"exact case", "AbCd", false},
		{"lower case", "abcd", false},
		{"upper case", "ABCD", false},
		{"missing", "zzzz", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := manager.Get(tt.id)
			if tt.wantErr {
				if !errors.Is(err, ErrSessionNotFound) {
					t.Errorf("Expected ErrSessionNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if session != created {
				t.Error("Expected the created session")
			}
		})
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	first, err := manager.GetOrCreate("game", "", config)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	second, err := manager.GetOrCreate("GAME", "", config)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if first != second {
		t.Error("Expected GetOrCreate to return the existing session")
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", manager.Count())
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	manager.Create("gone", "", createTestConfig())

	if err := manager.Delete("GONE"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := manager.Get("gone"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected deleted session to be gone, got %v", err)
	}
	if err := manager.Delete("gone"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
	if err := manager.DeleteFromMemory("gone"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound from DeleteFromMemory, got %v", err)
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	for i := 0; i < 3; i++ {
		if _, err := manager.Create(fmt.Sprintf("list-%d", i), "", createTestConfig()); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}
	if got := len(manager.List()); got != 3 {
		t.Errorf("Expected 3 sessions, got %d", got)
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	old, _ := manager.Create("old", "", createTestConfig())
	manager.Create("fresh", "", createTestConfig())
	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	if removed := manager.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Errorf("Expected 1 expired session, got %d", removed)
	}
	if _, err := manager.Get("old"); err == nil {
		t.Error("Expected expired session to be removed")
	}
	if _, err := manager.Get("fresh"); err != nil {
		t.Errorf("Expected fresh session to survive: %v", err)
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("touch", "", createTestConfig())
	before := time.Now().Add(-time.Minute)
	session.LastAccessedAt = before

	if err := manager.UpdateLastAccessed("TOUCH"); err != nil {
		t.Fatalf("Failed to update access time: %v", err)
	}
	if !session.LastAccessedAt.After(before) {
		t.Error("Expected last access time to move forward")
	}
	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := manager.Save("touch"); err != nil {
		t.Errorf("Save without persistence should be a no-op, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			sessionID := fmt.Sprintf("conc-%d", id%20)
			if _, err := manager.GetOrCreate(sessionID, "", config); err != nil && !errors.Is(err, ErrSessionAlreadyExists) {
				errs <- err
			}
			manager.UpdateLastAccessed(sessionID)
			manager.List()
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 20 {
		t.Errorf("Expected 20 sessions, got %d", manager.Count())
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	session1, _ := manager.Create("iso-1", "", config)
	session2, _ := manager.Create("iso-2", "", config)

	outcome, err := session1.Engine.Place("start-cap", engine.GridCell{X: 0, Y: 0})
	if err != nil || !outcome.Success {
		t.Fatalf("Expected placement to succeed, got %+v, %v", outcome, err)
	}

	if len(session2.Engine.AvailableTiles()) != len(config.Pool) {
		t.Error("Session 2 should not be affected by session 1 placements")
	}
	if session2.Engine.Snapshot().IsOccupied(engine.GridCell{X: 0, Y: 0}) {
		t.Error("Sessions should have independent boards")
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	generatedIDs := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", "", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if generatedIDs[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		generatedIDs[session.ID] = true

		if len(session.ID) != 4 || strings.ToLower(session.ID) != session.ID {
			t.Errorf("Expected 4 lower-case hex characters, got %q", session.ID)
		}
	}
}
