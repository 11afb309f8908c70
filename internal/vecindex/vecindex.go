package vecindex

import "context"

// Match is one nearest-neighbor result. Score is cosine similarity in [0,1].
type Match struct {
	CallID      string  `json:"callId"`
	FileName    string  `json:"fileName"`
	Score       float64 `json:"score"`
	Title       string  `json:"title,omitempty"`
	Summary     string  `json:"summary,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Index is the similarity store the engine runs against. Metadata values are
// plain strings; callers must coerce nulls to "" before upserting.
type Index interface {
	Upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error
	Query(ctx context.Context, vector []float32, topK int, excludeID string) ([]Match, error)
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}
