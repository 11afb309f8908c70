package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lavoz-media/centralita/internal/callstore"
	"github.com/lavoz-media/centralita/internal/events"
	"github.com/lavoz-media/centralita/internal/separator"
	"github.com/lavoz-media/centralita/internal/transcript"
)

// ValidatedCall is a call candidate whose boundaries have been resolved to
// seconds, validated against the segment timeline, and snapped onto real
// segment edges. Transcription is the re-sliced segment text for the span.
type ValidatedCall struct {
	Start          float64  `json:"start"`
	End            float64  `json:"end"`
	StartText      string   `json:"startText,omitempty"`
	EndText        string   `json:"endText,omitempty"`
	Name           string   `json:"name,omitempty"`
	Age            string   `json:"age,omitempty"`
	Title          string   `json:"title,omitempty"`
	Topic          string   `json:"topic,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Description    string   `json:"description,omitempty"`
	Summary        string   `json:"summary,omitempty"`
	ThumbnailScene string   `json:"thumbnailScene,omitempty"`
	Transcription  string   `json:"transcription,omitempty"`
}

// Pipeline runs separation and validation over one transcript.
type Pipeline struct {
	separator *separator.Separator
	logger    *slog.Logger
}

func New(sep *separator.Separator, logger *slog.Logger) *Pipeline {
	return &Pipeline{separator: sep, logger: logger}
}

// SeparateCalls partitions a transcript into validated calls. Given at least
// one segment, the result is never empty: if the model's candidates all fail
// validation, the whole transcript comes back as a single call. This is the
// second fallback layer; the separator has its own for unparseable output.
func (p *Pipeline) SeparateCalls(ctx context.Context, segments []transcript.Segment, source string, sink events.Sink) ([]ValidatedCall, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("transcript has no segments")
	}
	if sink == nil {
		sink = events.Discard
	}

	fullText := transcript.FullText(segments)

	sink.Report(events.Progress{Stage: events.StageSeparating, Source: source})
	candidates, err := p.separator.Separate(ctx, segments, fullText)
	if err != nil {
		return nil, err
	}

	sink.Report(events.Progress{Stage: events.StageValidating, Source: source, Calls: len(candidates)})
	calls := ValidateCandidates(candidates, segments)

	if len(calls) == 0 {
		p.logger.Warn("no candidates survived validation, falling back to whole transcript",
			"source", source,
			"candidates", len(candidates),
		)
		calls = []ValidatedCall{wholeTranscriptCall(segments, fullText)}
	}

	sink.Report(events.Progress{Stage: events.StageDone, Source: source, Calls: len(calls)})
	return calls, nil
}

// ValidateCandidates resolves each candidate's timing, drops structurally
// invalid ones, and snaps survivors onto segment boundaries. Candidate order
// is preserved; all non-timing fields pass through unchanged.
func ValidateCandidates(candidates []separator.Candidate, segments []transcript.Segment) []ValidatedCall {
	var calls []ValidatedCall
	for _, c := range candidates {
		start, end := transcript.ResolveTimestamps(transcript.Timing{
			Start:     (*float64)(c.Start),
			End:       (*float64)(c.End),
			StartTime: (*float64)(c.StartTime),
			EndTime:   (*float64)(c.EndTime),
		}, segments)

		span, ok := transcript.SnapSpan(start, end, segments)
		if !ok {
			continue
		}

		calls = append(calls, ValidatedCall{
			Start:          span.Start,
			End:            span.End,
			StartText:      c.StartText,
			EndText:        c.EndText,
			Name:           c.Name,
			Age:            string(c.Age),
			Title:          c.Title,
			Topic:          c.Topic,
			Tags:           c.Tags,
			Description:    c.Description,
			Summary:        c.Summary,
			ThumbnailScene: c.ThumbnailScene,
			Transcription:  transcript.Slice(segments, span.Start, span.End),
		})
	}
	return calls
}

func wholeTranscriptCall(segments []transcript.Segment, fullText string) ValidatedCall {
	return ValidatedCall{
		Start:         segments[0].Start,
		End:           segments[len(segments)-1].End,
		Transcription: fullText,
	}
}

// NewRecord turns a validated call into a persistable record with a fresh
// call ID.
func NewRecord(call ValidatedCall, fileName string) *callstore.CallRecord {
	return &callstore.CallRecord{
		CallID:         uuid.NewString(),
		FileName:       fileName,
		Start:          call.Start,
		End:            call.End,
		Name:           call.Name,
		Age:            call.Age,
		Title:          call.Title,
		Topic:          call.Topic,
		Tags:           call.Tags,
		Description:    call.Description,
		Summary:        call.Summary,
		ThumbnailScene: call.ThumbnailScene,
		Transcription:  call.Transcription,
	}
}
