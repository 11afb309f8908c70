package callstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned when no record exists for a fileName.
var ErrNotFound = errors.New("call record not found")

// CallRecord is the persisted form of a validated call. DuplicateOf and
// RelatedCalls are cross-reference adjacency lists: they are appended to by
// the similarity engine whenever any related call is processed, so the record
// has no single writer and updates must merge, never overwrite.
type CallRecord struct {
	CallID         string   `json:"callId"`
	FileName       string   `json:"fileName"`
	Start          float64  `json:"start"`
	End            float64  `json:"end"`
	Name           string   `json:"name,omitempty"`
	Age            string   `json:"age,omitempty"`
	Title          string   `json:"title,omitempty"`
	Topic          string   `json:"topic,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Description    string   `json:"description,omitempty"`
	Summary        string   `json:"summary,omitempty"`
	ThumbnailScene string   `json:"thumbnailScene,omitempty"`
	Transcription  string   `json:"transcription,omitempty"`
	DuplicateOf    []string `json:"duplicateOf,omitempty"`
	RelatedCalls   []string `json:"relatedCalls,omitempty"`
}

// Store is a JSON-file-per-call record store keyed by fileName. Writes to the
// same fileName are serialized with a per-name mutex so read-modify-write
// cycles from cross-reference reconciliation cannot lose updates.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create call store dir: %w", err)
	}
	return &Store{dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

// Dir returns the directory records are stored in.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(fileName string) string {
	name := fileName
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return filepath.Join(s.dir, filepath.Base(name))
}

// Read loads the record for fileName, or ErrNotFound.
func (s *Store) Read(fileName string) (*CallRecord, error) {
	data, err := os.ReadFile(s.path(fileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, fileName)
		}
		return nil, fmt.Errorf("read call record %s: %w", fileName, err)
	}
	var rec CallRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse call record %s: %w", fileName, err)
	}
	return &rec, nil
}

// Write persists the record under fileName.
func (s *Store) Write(fileName string, rec *CallRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal call record %s: %w", fileName, err)
	}
	if err := os.WriteFile(s.path(fileName), data, 0o644); err != nil {
		return fmt.Errorf("write call record %s: %w", fileName, err)
	}
	return nil
}

// Update applies fn to the record under fileName inside that record's write
// lock and persists the result. fn receives the freshly-read record.
func (s *Store) Update(fileName string, fn func(*CallRecord)) error {
	lock := s.lockFor(fileName)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.Read(fileName)
	if err != nil {
		return err
	}
	fn(rec)
	return s.Write(fileName, rec)
}

// List returns the fileNames of all stored records, without extensions.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list call store: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	return names, nil
}

func (s *Store) lockFor(fileName string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[fileName]
	if !ok {
		l = &sync.Mutex{}
		s.locks[fileName] = l
	}
	return l
}

// AppendUnique adds value to list if absent, returning the merged list.
func AppendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
