package events

import "time"

// Stage names reported by the pipeline.
const (
	StageSeparating  = "separating"
	StageValidating  = "validating"
	StageEmbedding   = "embedding"
	StageClassifying = "classifying"
	StageDone        = "done"
)

// Progress is one pipeline progress report.
type Progress struct {
	Stage     string    `json:"stage"`
	Source    string    `json:"source"`
	Message   string    `json:"message,omitempty"`
	Calls     int       `json:"calls,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink receives pipeline progress. Passed explicitly into every pipeline
// entry point; there is no process-global observer.
type Sink interface {
	Report(p Progress)
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Report(Progress) {}

// Func adapts a function to the Sink interface.
type Func func(Progress)

func (f Func) Report(p Progress) { f(p) }
