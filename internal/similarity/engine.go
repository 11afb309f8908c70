package similarity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/lavoz-media/centralita/internal/callstore"
	"github.com/lavoz-media/centralita/internal/embed"
	"github.com/lavoz-media/centralita/internal/vecindex"
)

// topK is how many nearest neighbors each call is classified against.
const topK = 10

// Synthetic scores injected for cross-references that came from an earlier
// bidirectional update rather than the live vector query.
const (
	syntheticDuplicateScore = 0.98
	syntheticRelatedScore   = 0.90
)

// Engine classifies a call against the vector index and keeps call-record
// cross-references consistent in both directions.
type Engine struct {
	index    vecindex.Index
	embedder embed.Provider
	store    *callstore.Store
	logger   *slog.Logger

	// vectorDir, when set, receives a raw dump of every computed embedding.
	// Purely for debugging; write failures are swallowed.
	vectorDir string

	duplicateThreshold float64
	relatedThreshold   float64
}

func New(index vecindex.Index, embedder embed.Provider, store *callstore.Store, dupThreshold, relThreshold float64, logger *slog.Logger) *Engine {
	return &Engine{
		index:              index,
		embedder:           embedder,
		store:              store,
		logger:             logger,
		duplicateThreshold: dupThreshold,
		relatedThreshold:   relThreshold,
	}
}

// SetVectorDir enables the raw-vector side channel.
func (e *Engine) SetVectorDir(dir string) { e.vectorDir = dir }

// Result reports how a call was classified and whether it entered the index.
type Result struct {
	Uploaded      bool             `json:"uploaded"`
	AlreadyExists bool             `json:"alreadyExists,omitempty"`
	IsDuplicate   bool             `json:"isDuplicate"`
	DuplicateOf   []string         `json:"duplicateOf,omitempty"`
	RelatedCalls  []string         `json:"relatedCalls,omitempty"`
	SimilarCalls  []vecindex.Match `json:"similarCalls,omitempty"`
}

// ProcessCall embeds a call's summary text, classifies its nearest neighbors
// as duplicates or related calls, reconciles cross-references on the affected
// records, and upserts the vector unless the call is a duplicate. Embedding
// and index errors are fatal; record-store hiccups during reconciliation and
// backfill are logged and skipped.
func (e *Engine) ProcessCall(ctx context.Context, rec *callstore.CallRecord) (*Result, error) {
	exists, err := e.index.Exists(ctx, rec.CallID)
	if err != nil {
		return nil, fmt.Errorf("check index for %s: %w", rec.CallID, err)
	}
	if exists {
		e.logger.Info("call already indexed", "call_id", rec.CallID)
		return &Result{Uploaded: false, AlreadyExists: true}, nil
	}

	text, err := embed.BuildText(embed.Fields{
		Name:        rec.Name,
		Age:         rec.Age,
		Description: rec.Description,
		Summary:     rec.Summary,
	})
	if err != nil {
		return nil, fmt.Errorf("build embedding text for %s: %w", rec.FileName, err)
	}

	vector, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed call %s: %w", rec.FileName, err)
	}
	e.dumpVector(rec.CallID, vector)

	matches, err := e.index.Query(ctx, vector, topK, rec.CallID)
	if err != nil {
		return nil, fmt.Errorf("query index for %s: %w", rec.FileName, err)
	}

	// Classify fresh matches, merging on top of cross-references that other
	// calls' bidirectional updates may already have written to this record.
	duplicateOf := append([]string(nil), rec.DuplicateOf...)
	relatedCalls := append([]string(nil), rec.RelatedCalls...)
	liveScores := make(map[string]vecindex.Match, len(matches))

	for _, m := range matches {
		if m.FileName == "" || m.FileName == rec.FileName {
			continue
		}
		if m.Score >= e.relatedThreshold {
			liveScores[m.FileName] = m
		}
		switch {
		case m.Score >= e.duplicateThreshold:
			duplicateOf = callstore.AppendUnique(duplicateOf, m.FileName)
		case m.Score >= e.relatedThreshold:
			relatedCalls = callstore.AppendUnique(relatedCalls, m.FileName)
		}
	}

	similar := e.buildReport(duplicateOf, relatedCalls, liveScores)

	e.reconcile(rec.FileName, duplicateOf, relatedCalls)
	e.persistOwnReferences(rec, duplicateOf, relatedCalls)

	result := &Result{
		IsDuplicate:  len(duplicateOf) > 0,
		DuplicateOf:  duplicateOf,
		RelatedCalls: relatedCalls,
		SimilarCalls: similar,
	}

	// Duplicates never enter the searchable set.
	if result.IsDuplicate {
		e.logger.Info("call classified as duplicate, skipping upload",
			"file_name", rec.FileName,
			"duplicate_of", duplicateOf,
		)
		return result, nil
	}

	if err := e.index.Upsert(ctx, rec.CallID, vector, recordMetadata(rec)); err != nil {
		return nil, fmt.Errorf("upsert vector for %s: %w", rec.FileName, err)
	}
	result.Uploaded = true

	e.logger.Info("call indexed",
		"file_name", rec.FileName,
		"related", len(relatedCalls),
		"neighbors", len(matches),
	)
	return result, nil
}

// buildReport assembles the similar-calls report: every live match at or
// above the related threshold, plus an entry for every cross-referenced
// fileName the query didn't return, carrying a synthetic score. Descriptions
// missing from index metadata are backfilled from the record store.
func (e *Engine) buildReport(duplicateOf, relatedCalls []string, live map[string]vecindex.Match) []vecindex.Match {
	var report []vecindex.Match
	seen := make(map[string]bool)

	for _, m := range live {
		m.Description = e.resolveDescription(m)
		report = append(report, m)
		seen[m.FileName] = true
	}

	inject := func(names []string, score float64) {
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			m := vecindex.Match{FileName: name, Score: score}
			if other, err := e.store.Read(name); err == nil {
				m.CallID = other.CallID
				m.Title = other.Title
				m.Summary = other.Summary
				m.Description = other.Description
			} else {
				e.logger.Warn("cross-referenced call record unavailable for report", "file_name", name, "error", err)
			}
			report = append(report, m)
		}
	}
	inject(duplicateOf, syntheticDuplicateScore)
	inject(relatedCalls, syntheticRelatedScore)

	sort.SliceStable(report, func(i, j int) bool {
		return report[i].Score > report[j].Score
	})
	return report
}

func (e *Engine) resolveDescription(m vecindex.Match) string {
	if m.Description != "" {
		return m.Description
	}
	other, err := e.store.Read(m.FileName)
	if err != nil {
		return ""
	}
	return other.Description
}

// reconcile appends this call's fileName to the matching adjacency list of
// every cross-referenced record. Each record carries its own edges; there is
// no central index of relations.
func (e *Engine) reconcile(fileName string, duplicateOf, relatedCalls []string) {
	for _, other := range duplicateOf {
		err := e.store.Update(other, func(rec *callstore.CallRecord) {
			rec.DuplicateOf = callstore.AppendUnique(rec.DuplicateOf, fileName)
		})
		if err != nil {
			e.logReconcileError(other, err)
		}
	}
	for _, other := range relatedCalls {
		err := e.store.Update(other, func(rec *callstore.CallRecord) {
			rec.RelatedCalls = callstore.AppendUnique(rec.RelatedCalls, fileName)
		})
		if err != nil {
			e.logReconcileError(other, err)
		}
	}
}

func (e *Engine) logReconcileError(fileName string, err error) {
	if errors.Is(err, callstore.ErrNotFound) {
		e.logger.Warn("cross-referenced call record missing, skipping update", "file_name", fileName)
		return
	}
	e.logger.Error("cross-reference update failed", "file_name", fileName, "error", err)
}

// persistOwnReferences writes the merged adjacency lists back onto the
// processed call's own record, when it has one. Best effort.
func (e *Engine) persistOwnReferences(rec *callstore.CallRecord, duplicateOf, relatedCalls []string) {
	rec.DuplicateOf = duplicateOf
	rec.RelatedCalls = relatedCalls

	err := e.store.Update(rec.FileName, func(stored *callstore.CallRecord) {
		for _, d := range duplicateOf {
			stored.DuplicateOf = callstore.AppendUnique(stored.DuplicateOf, d)
		}
		for _, r := range relatedCalls {
			stored.RelatedCalls = callstore.AppendUnique(stored.RelatedCalls, r)
		}
	})
	if err != nil && !errors.Is(err, callstore.ErrNotFound) {
		e.logger.Error("failed to persist call's own cross-references", "file_name", rec.FileName, "error", err)
	}
}

// dumpVector writes the raw embedding to the side channel, if enabled.
func (e *Engine) dumpVector(callID string, vector []float32) {
	if e.vectorDir == "" {
		return
	}
	if err := os.MkdirAll(e.vectorDir, 0o755); err != nil {
		e.logger.Warn("vector dump dir unavailable", "error", err)
		return
	}
	data, err := json.Marshal(vector)
	if err != nil {
		e.logger.Warn("vector dump marshal failed", "call_id", callID, "error", err)
		return
	}
	path := filepath.Join(e.vectorDir, callID+".vector.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		e.logger.Warn("vector dump write failed", "call_id", callID, "error", err)
	}
}

// recordMetadata flattens a record into the string-only metadata the index
// accepts. Absent fields become empty strings, never nulls.
func recordMetadata(rec *callstore.CallRecord) map[string]string {
	return map[string]string{
		"fileName":    rec.FileName,
		"name":        rec.Name,
		"age":         rec.Age,
		"title":       rec.Title,
		"topic":       rec.Topic,
		"description": rec.Description,
		"summary":     rec.Summary,
	}
}
