package separator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lavoz-media/centralita/internal/llm"
	"github.com/lavoz-media/centralita/internal/prompt"
	"github.com/lavoz-media/centralita/internal/transcript"
)

// Near-deterministic sampling: boundary extraction should not be creative.
const separationTemperature = 0.2

// Separator asks the model to partition a transcript into call candidates.
type Separator struct {
	llm    llm.Completer
	tpl    *prompt.Template
	logger *slog.Logger

	// sleep is swappable so tests don't sit through real retry waits.
	sleep func(context.Context, time.Duration) error
}

func New(completer llm.Completer, tpl *prompt.Template, logger *slog.Logger) *Separator {
	return &Separator{llm: completer, tpl: tpl, logger: logger, sleep: wait}
}

// Separate issues one chat completion over the full transcript and returns
// the model's call candidates in the order it produced them. Malformed model
// output never fails the pipeline: after the parse ladder is exhausted, the
// whole transcript is returned as a single candidate with no metadata.
// Connection-class errors are retried with linear backoff; every other
// completion error propagates.
func (s *Separator) Separate(ctx context.Context, segments []transcript.Segment, fullTranscription string) ([]Candidate, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("no transcript segments to separate")
	}

	raw, err := s.completeWithRetry(ctx, s.tpl.UserMessage(fullTranscription))
	if err != nil {
		return nil, err
	}

	calls, err := parseResponse(raw)
	if err != nil {
		s.logger.Warn("unparseable separation response, falling back to single call",
			"error", err,
			"response_len", len(raw),
		)
		return []Candidate{FallbackCandidate(segments)}, nil
	}

	s.logger.Info("transcript separated", "candidates", len(calls))
	return calls, nil
}

func (s *Separator) completeWithRetry(ctx context.Context, userMessage string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			d := backoff(attempt)
			s.logger.Warn("retrying separation after connection failure",
				"attempt", attempt,
				"wait", d,
				"error", lastErr,
			)
			if err := s.sleep(ctx, d); err != nil {
				return "", err
			}
		}

		raw, err := s.llm.Complete(ctx, s.tpl.System, userMessage, separationTemperature)
		if err == nil {
			return raw, nil
		}
		if !IsConnectionError(err) {
			return "", fmt.Errorf("call separation request failed: %w", err)
		}
		lastErr = err
	}
	return "", fmt.Errorf("call separation failed after %d attempts: %w", maxRetries+1, lastErr)
}

// FallbackCandidate builds the degraded single-call result spanning the
// whole transcript. Used when the model's output cannot be parsed, and again
// downstream when validation rejects every candidate.
func FallbackCandidate(segments []transcript.Segment) Candidate {
	start := FlexFloat(segments[0].Start)
	end := FlexFloat(segments[len(segments)-1].End)
	return Candidate{StartTime: &start, EndTime: &end}
}
