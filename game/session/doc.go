// Package session provides session management for the tile path game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session persistence to JSON files or SQLite
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the session manager that handles all session operations. Each
// service.Session owns its own engine, so boards and pools never leak between
// sessions.
//
// Session Identifiers:
//
// Generated IDs are 4 lower-case hex characters from crypto/rand. Lookups are
// case-insensitive. Caller-chosen IDs may use letters, digits, '-' and '_'.
//
// Persistence:
//
// FilePersistence writes one <id>.json document per session. SQLitePersistence
// keeps the same JSON document in a sessions table (modernc.org/sqlite, WAL
// mode). Both restore a session by loading its level through the config
// manager and replaying the stored state onto a fresh engine.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configManager)
//	if err != nil {
//		return err
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		return err
//	}
//
//	sess, err := manager.Create("", "tutorial", level)
//
// Cleanup:
//
// CleanupExpiredSessions removes sessions idle for longer than the retention
// window, from memory and from storage.
package session
