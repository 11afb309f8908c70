package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lavoz-media/centralita/internal/callstore"
	"github.com/lavoz-media/centralita/internal/events"
	"github.com/lavoz-media/centralita/internal/pipeline"
	"github.com/lavoz-media/centralita/internal/prompt"
	"github.com/lavoz-media/centralita/internal/separator"
	"github.com/lavoz-media/centralita/internal/similarity"
	"github.com/lavoz-media/centralita/internal/vecindex"
)

type fixedCompleter struct{ reply string }

func (f *fixedCompleter) Complete(context.Context, string, string, float32) (string, error) {
	return f.reply, nil
}

type nullIndex struct{}

func (nullIndex) Upsert(context.Context, string, []float32, map[string]string) error { return nil }
func (nullIndex) Query(context.Context, []float32, int, string) ([]vecindex.Match, error) {
	return nil, nil
}
func (nullIndex) Exists(context.Context, string) (bool, error) { return false, nil }
func (nullIndex) Delete(context.Context, string) (bool, error) { return false, nil }

type nullEmbedder struct{}

func (nullEmbedder) Embed(context.Context, string) ([]float32, error) { return []float32{1}, nil }
func (nullEmbedder) Dimensions() int                                  { return 1 }

func newTestServer(t *testing.T, reply string) (*Server, *callstore.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tpl, err := prompt.Parse("system\n---\n{{TRANSCRIPTION}}")
	if err != nil {
		t.Fatal(err)
	}
	store, err := callstore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	sep := separator.New(&fixedCompleter{reply: reply}, tpl, logger)
	p := pipeline.New(sep, logger)
	engine := similarity.New(nullIndex{}, nullEmbedder{}, store, 0.98, 0.90, logger)

	return NewServer(8760, p, engine, store, events.Discard), store
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "{}")

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "{}")

	req := httptest.NewRequest("GET", "/api/v1/centralita/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["service"] != "centralita" {
		t.Errorf("expected service centralita, got %q", body["service"])
	}
}

func TestSeparateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, `{"calls": [{"startTime": 0, "endTime": 120, "title": "una"}]}`)

	payload := `{"source": "video-1", "segments": [
		{"start": 0, "end": 60, "text": "hola"},
		{"start": 60, "end": 120, "text": "chau"}
	]}`
	req := httptest.NewRequest("POST", "/api/v1/centralita/separate", strings.NewReader(payload))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Calls []pipeline.ValidatedCall `json:"calls"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Calls) != 1 || body.Calls[0].Title != "una" {
		t.Errorf("calls = %+v", body.Calls)
	}
}

func TestSeparateEndpoint_NoSegments(t *testing.T) {
	srv, _ := newTestServer(t, "{}")

	req := httptest.NewRequest("POST", "/api/v1/centralita/separate", strings.NewReader(`{"segments": []}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestProcessEndpoint(t *testing.T) {
	srv, store := newTestServer(t, "{}")
	rec := &callstore.CallRecord{CallID: "c1", FileName: "f1", Summary: "resumen"}
	if err := store.Write("f1", rec); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", "/api/v1/centralita/process", strings.NewReader(`{"fileName": "f1"}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result similarity.Result
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.Uploaded {
		t.Errorf("expected uploaded result, got %+v", result)
	}
}

func TestProcessEndpoint_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, "{}")

	req := httptest.NewRequest("POST", "/api/v1/centralita/process", strings.NewReader(`{"fileName": "missing"}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
