package storage

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"umchat/pkg/dialog"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), 5)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestSQLiteStore(t)
	entries := []dialog.DisplayEntry{
		{MessageID: 1, Text: "привет"},
		{MessageID: 0, Text: "Здравствуйте!", IsBot: true},
	}
	if err := s.SaveEntries(entries); err != nil {
		t.Fatalf("SaveEntries: %v", err)
	}
	loaded, err := s.LoadEntries()
	if err != nil {
		t.Fatalf("LoadEntries: %v", err)
	}
	if len(loaded) != 2 || loaded[1].Text != "Здравствуйте!" || !loaded[1].IsBot {
		t.Fatalf("unexpected round trip: %+v", loaded)
	}

	// Saving replaces the snapshot instead of appending.
	if err := s.SaveEntries(entries[:1]); err != nil {
		t.Fatalf("SaveEntries: %v", err)
	}
	loaded, err = s.LoadEntries()
	if err != nil || len(loaded) != 1 {
		t.Fatalf("expected replaced snapshot, got %v / %v", loaded, err)
	}

	if err := s.ClearEntries(); err != nil {
		t.Fatalf("ClearEntries: %v", err)
	}
	loaded, err = s.LoadEntries()
	if err != nil || len(loaded) != 0 {
		t.Fatalf("expected empty after clear, got %v / %v", loaded, err)
	}
}

func TestSQLiteStoreClampsOnSave(t *testing.T) {
	t.Parallel()

	s := newTestSQLiteStore(t)
	entries := make([]dialog.DisplayEntry, 0, 8)
	for i := 0; i < 8; i++ {
		entries = append(entries, dialog.DisplayEntry{MessageID: i})
	}
	if err := s.SaveEntries(entries); err != nil {
		t.Fatalf("SaveEntries: %v", err)
	}
	loaded, err := s.LoadEntries()
	if err != nil {
		t.Fatalf("LoadEntries: %v", err)
	}
	if len(loaded) != 5 || loaded[0].MessageID != 3 {
		t.Fatalf("expected last 5 entries, got %+v", loaded)
	}
}

func TestSQLiteStoreUserState(t *testing.T) {
	t.Parallel()

	s := newTestSQLiteStore(t)
	state, err := s.LoadUserState()
	if err != nil || state != nil {
		t.Fatalf("fresh store must have no state, got %q / %v", state, err)
	}

	if err := s.SaveUserState(json.RawMessage(`{"score":1}`)); err != nil {
		t.Fatalf("SaveUserState: %v", err)
	}
	if err := s.SaveUserState(json.RawMessage(`{"score":2}`)); err != nil {
		t.Fatalf("SaveUserState: %v", err)
	}
	state, err = s.LoadUserState()
	if err != nil {
		t.Fatalf("LoadUserState: %v", err)
	}
	if string(state) != `{"score":2}` {
		t.Fatalf("expected latest snapshot, got %q", state)
	}

	if err := s.ClearUserState(); err != nil {
		t.Fatalf("ClearUserState: %v", err)
	}
	state, err = s.LoadUserState()
	if err != nil || state != nil {
		t.Fatalf("expected empty after clear, got %q / %v", state, err)
	}
}
