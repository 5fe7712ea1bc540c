package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T, limit int) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "history.json"), limit)
}

func TestAppendAndListRoundTrip(t *testing.T) {
	store := newTestStore(t, 0)
	appended := Record{
		ID:        "11111111-2222-3333-4444-555555555555",
		FileName:  "track.mp3",
		OutputURL: "/converted/track.mp3",
		Date:      time.Date(2026, 3, 14, 9, 26, 53, 589000000, time.UTC),
	}
	if err := store.Append(appended); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.ID != appended.ID || got.FileName != appended.FileName || got.OutputURL != appended.OutputURL {
		t.Fatalf("record did not round-trip: %+v", got)
	}
	if !got.Date.Equal(appended.Date) {
		t.Fatalf("date did not round-trip: got %v, want %v", got.Date, appended.Date)
	}
}

func TestAppendKeepsNewestFirst(t *testing.T) {
	store := newTestStore(t, 0)
	for i := 1; i <= 3; i++ {
		record := Record{FileName: fmt.Sprintf("file-%d.mp3", i), OutputURL: fmt.Sprintf("/out/file-%d.mp3", i)}
		if err := store.Append(record); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []string{"file-3.mp3", "file-2.mp3", "file-1.mp3"} {
		if records[i].FileName != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, records[i].FileName)
		}
	}
}

func TestAppendEnforcesLimit(t *testing.T) {
	store := newTestStore(t, 3)
	for i := 1; i <= 5; i++ {
		if err := store.Append(Record{FileName: fmt.Sprintf("file-%d.mp3", i)}); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(records))
	}
	if records[0].FileName != "file-5.mp3" || records[2].FileName != "file-3.mp3" {
		t.Fatalf("oldest records should be dropped, got %+v", records)
	}
}

func TestAppendFillsIDAndDate(t *testing.T) {
	store := newTestStore(t, 0)
	if err := store.Append(Record{FileName: "track.mp3"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if records[0].ID == "" {
		t.Fatal("expected generated id")
	}
	if records[0].Date.IsZero() {
		t.Fatal("expected generated date")
	}
}

func TestListMissingFileIsEmpty(t *testing.T) {
	store := newTestStore(t, 0)
	records, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty history, got %d records", len(records))
	}
}

func TestPersistedSchemaUsesContractKeys(t *testing.T) {
	store := newTestStore(t, 0)
	if err := store.Append(Record{FileName: "track.mp3", OutputURL: "/out/track.mp3"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read history file: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("history file is not a JSON array: %v", err)
	}
	for _, key := range []string{"id", "fileName", "outputURL", "date"} {
		if _, ok := raw[0][key]; !ok {
			t.Fatalf("persisted record missing %q key: %v", key, raw[0])
		}
	}
}

func TestConcurrentAppendsDoNotCorrupt(t *testing.T) {
	store := newTestStore(t, 50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := store.Append(Record{FileName: fmt.Sprintf("file-%d.mp3", n)}); err != nil {
				t.Errorf("Append %d failed: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	records, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 10 {
		t.Fatalf("expected all 10 appends to survive, got %d", len(records))
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t, 0)
	if err := store.Append(Record{FileName: "track.mp3"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected cleared history, got %d records", len(records))
	}
}
