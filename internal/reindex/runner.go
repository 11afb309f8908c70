package reindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lavoz-media/centralita/internal/callstore"
	"github.com/lavoz-media/centralita/internal/embed"
	"github.com/lavoz-media/centralita/internal/similarity"
)

// Summary is the outcome of one reindex run.
type Summary struct {
	Scanned    int      `json:"scanned"`
	Uploaded   int      `json:"uploaded"`
	Duplicates int      `json:"duplicates"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// Runner replays every stored call record through the similarity engine.
// Useful after threshold changes or when the vector index was rebuilt.
type Runner struct {
	store  *callstore.Store
	engine *similarity.Engine
	logger *slog.Logger
	dryRun bool
}

func NewRunner(store *callstore.Store, engine *similarity.Engine, dryRun bool, logger *slog.Logger) *Runner {
	return &Runner{store: store, engine: engine, logger: logger, dryRun: dryRun}
}

// Run walks the call store in name order and processes each record. Records
// without a summary cannot be embedded and are counted as skipped; other
// per-record failures are collected without stopping the run.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	names, err := r.store.List()
	if err != nil {
		return nil, fmt.Errorf("list call records: %w", err)
	}
	sort.Strings(names)

	summary := &Summary{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Scanned++

		rec, err := r.store.Read(name)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if rec.Summary == "" {
			r.logger.Warn("record has no summary, skipping", "file_name", name)
			summary.Skipped++
			continue
		}
		if r.dryRun {
			r.logger.Info("dry run, would process", "file_name", name)
			continue
		}

		res, err := r.engine.ProcessCall(ctx, rec)
		if err != nil {
			if errors.Is(err, embed.ErrMissingSummary) {
				summary.Skipped++
				continue
			}
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		switch {
		case res.Uploaded:
			summary.Uploaded++
		case res.IsDuplicate:
			summary.Duplicates++
		default:
			summary.Skipped++
		}
	}

	r.logger.Info("reindex complete",
		"scanned", summary.Scanned,
		"uploaded", summary.Uploaded,
		"duplicates", summary.Duplicates,
		"skipped", summary.Skipped,
		"errors", len(summary.Errors),
	)
	return summary, nil
}
