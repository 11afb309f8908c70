package callstore

import (
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestReadWrite(t *testing.T) {
	s := newTestStore(t)

	rec := &CallRecord{
		CallID:   "call-1",
		FileName: "llamada_2026-08-01_01",
		Start:    0,
		End:      120,
		Summary:  "resumen",
	}
	if err := s.Write(rec.FileName, rec); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := s.Read(rec.FileName)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.CallID != "call-1" || got.Summary != "resumen" || got.End != 120 {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestRead_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Read("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_MergesCrossReferences(t *testing.T) {
	s := newTestStore(t)
	if err := s.Write("a", &CallRecord{CallID: "a", FileName: "a"}); err != nil {
		t.Fatal(err)
	}

	add := func(rec *CallRecord) {
		rec.RelatedCalls = AppendUnique(rec.RelatedCalls, "b")
	}
	if err := s.Update("a", add); err != nil {
		t.Fatalf("Update: %v", err)
	}
	// Idempotent on reprocessing.
	if err := s.Update("a", add); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := s.Read("a")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.RelatedCalls) != 1 || got.RelatedCalls[0] != "b" {
		t.Errorf("relatedCalls = %v, want exactly [b]", got.RelatedCalls)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.Update("missing", func(*CallRecord) {})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"a", "b"} {
		if err := s.Write(name, &CallRecord{FileName: name}); err != nil {
			t.Fatal(err)
		}
	}
	names, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("expected 2 records, got %v", names)
	}
}

func TestAppendUnique(t *testing.T) {
	list := AppendUnique(nil, "x")
	list = AppendUnique(list, "y")
	list = AppendUnique(list, "x")
	if len(list) != 2 {
		t.Errorf("AppendUnique deduplication failed: %v", list)
	}
}
