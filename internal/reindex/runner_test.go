package reindex

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/lavoz-media/centralita/internal/callstore"
	"github.com/lavoz-media/centralita/internal/similarity"
	"github.com/lavoz-media/centralita/internal/vecindex"
)

type memIndex struct {
	existing map[string]bool
}

func (m *memIndex) Upsert(_ context.Context, id string, _ []float32, _ map[string]string) error {
	m.existing[id] = true
	return nil
}

func (m *memIndex) Query(context.Context, []float32, int, string) ([]vecindex.Match, error) {
	return nil, nil
}

func (m *memIndex) Exists(_ context.Context, id string) (bool, error) {
	return m.existing[id], nil
}

func (m *memIndex) Delete(_ context.Context, id string) (bool, error) {
	delete(m.existing, id)
	return true, nil
}

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (fixedEmbedder) Dimensions() int { return 3 }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) (*callstore.Store, *similarity.Engine) {
	t.Helper()
	store, err := callstore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	idx := &memIndex{existing: make(map[string]bool)}
	engine := similarity.New(idx, fixedEmbedder{}, store, 0.98, 0.90, testLogger())
	return store, engine
}

func TestRun_ProcessesAllRecords(t *testing.T) {
	store, engine := newFixture(t)
	for _, name := range []string{"a", "b"} {
		rec := &callstore.CallRecord{CallID: name, FileName: name, Summary: "resumen " + name}
		if err := store.Write(name, rec); err != nil {
			t.Fatal(err)
		}
	}
	// One record without a summary.
	if err := store.Write("c", &callstore.CallRecord{CallID: "c", FileName: "c"}); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(store, engine, false, testLogger())
	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Scanned != 3 {
		t.Errorf("scanned = %d, want 3", sum.Scanned)
	}
	if sum.Uploaded != 2 {
		t.Errorf("uploaded = %d, want 2", sum.Uploaded)
	}
	if sum.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", sum.Skipped)
	}
	if len(sum.Errors) != 0 {
		t.Errorf("errors = %v", sum.Errors)
	}
}

func TestRun_DryRun(t *testing.T) {
	store, engine := newFixture(t)
	rec := &callstore.CallRecord{CallID: "a", FileName: "a", Summary: "resumen"}
	if err := store.Write("a", rec); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(store, engine, true, testLogger())
	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Scanned != 1 || sum.Uploaded != 0 {
		t.Errorf("dry run must not upload: %+v", sum)
	}
}

func TestRun_EmptyStore(t *testing.T) {
	store, engine := newFixture(t)
	r := NewRunner(store, engine, false, testLogger())
	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Scanned != 0 {
		t.Errorf("scanned = %d, want 0", sum.Scanned)
	}
}
