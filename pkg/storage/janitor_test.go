package storage

import (
	"testing"

	"umchat/pkg/dialog"
)

func TestJanitorPrune(t *testing.T) {
	t.Parallel()

	// A permissive store so oversized snapshots survive the save path.
	fs, err := NewFileStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	entries := make([]dialog.DisplayEntry, 0, 10)
	for i := 0; i < 10; i++ {
		entries = append(entries, dialog.DisplayEntry{MessageID: i})
	}
	if err := fs.SaveEntries(entries); err != nil {
		t.Fatalf("SaveEntries: %v", err)
	}

	j := NewJanitor(fs, 4)
	j.Prune()

	loaded, err := fs.LoadEntries()
	if err != nil {
		t.Fatalf("LoadEntries: %v", err)
	}
	if len(loaded) != 4 || loaded[0].MessageID != 6 {
		t.Fatalf("unexpected pruned window: %+v", loaded)
	}

	// Within the window, pruning is a no-op.
	j.Prune()
	again, err := fs.LoadEntries()
	if err != nil || len(again) != 4 {
		t.Fatalf("expected stable window, got %v / %v", again, err)
	}
}

func TestJanitorSchedule(t *testing.T) {
	t.Parallel()

	fs, err := NewFileStore(t.TempDir(), DefaultLimit)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	j := NewJanitor(fs, DefaultLimit)
	if err := j.Start("not a schedule"); err == nil {
		t.Fatalf("expected error for malformed schedule")
	}
	if err := j.Start("@every 6h"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	j.Stop()
}
