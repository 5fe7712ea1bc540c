package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"avconverter/internal/api"
	"avconverter/internal/history"
	"avconverter/internal/queue"
)

type queueStoreStub struct {
	items []*queue.Item
}

func (s *queueStoreStub) List(context.Context, ...queue.Status) ([]*queue.Item, error) {
	return s.items, nil
}

func (s *queueStoreStub) Stats(context.Context) (map[queue.Status]int, error) {
	return map[queue.Status]int{queue.StatusPending: len(s.items)}, nil
}

func (s *queueStoreStub) GetByID(context.Context, int64) (*queue.Item, error) {
	if len(s.items) == 0 {
		return nil, nil
	}
	return s.items[0], nil
}

func (s *queueStoreStub) LatestBatch(context.Context) (*queue.Batch, error) {
	return nil, nil
}

func serveAPIRequest(srv *apiServer, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)
	return w
}

func TestAPIServerHandleQueue(t *testing.T) {
	store := &queueStoreStub{items: []*queue.Item{{ID: 1, SourcePath: "/in/example.wav", Status: queue.StatusPending}}}
	srv := &apiServer{queueSvc: api.NewQueueService(store)}

	w := serveAPIRequest(srv, http.MethodGet, "/api/queue")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.QueueListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(resp.Items))
	}
	if resp.Items[0].SourcePath != "/in/example.wav" {
		t.Fatalf("unexpected source path: %q", resp.Items[0].SourcePath)
	}
}

func TestAPIServerHandleQueueRejectsUnknownStatus(t *testing.T) {
	srv := &apiServer{queueSvc: api.NewQueueService(&queueStoreStub{})}

	w := serveAPIRequest(srv, http.MethodGet, "/api/queue?status=exploded")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", w.Code)
	}
}

func TestAPIServerHandleQueueItemNotFound(t *testing.T) {
	srv := &apiServer{queueSvc: api.NewQueueService(&queueStoreStub{})}

	w := serveAPIRequest(srv, http.MethodGet, "/api/queue/42")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing item, got %d", w.Code)
	}
}

func TestAPIServerHandleQueueItemRejectsBadID(t *testing.T) {
	srv := &apiServer{queueSvc: api.NewQueueService(&queueStoreStub{})}

	w := serveAPIRequest(srv, http.MethodGet, "/api/queue/not-a-number")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", w.Code)
	}
}

func TestAPIServerHandleHistory(t *testing.T) {
	hist := history.NewStore(filepath.Join(t.TempDir(), "history.json"), 5)
	if err := hist.Append(history.Record{FileName: "song.wav", OutputURL: "/out/song.m4a"}); err != nil {
		t.Fatalf("seed history: %v", err)
	}
	srv := &apiServer{history: hist}

	w := serveAPIRequest(srv, http.MethodGet, "/api/history")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.HistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].FileName != "song.wav" {
		t.Fatalf("unexpected history payload: %+v", resp.Entries)
	}
}

func TestAPIServerHandleFormats(t *testing.T) {
	srv := &apiServer{}

	w := serveAPIRequest(srv, http.MethodGet, "/api/formats")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.FormatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Formats) == 0 {
		t.Fatal("expected catalog formats in response")
	}
	found := false
	for _, format := range resp.Formats {
		if format.Name == "mp3" {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("expected mp3 in the format listing")
	}
}

func TestAPIServerRejectsNonGET(t *testing.T) {
	srv := &apiServer{}

	w := serveAPIRequest(srv, http.MethodPost, "/api/formats")

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}
