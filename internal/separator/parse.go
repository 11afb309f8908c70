package separator

import (
	"encoding/json"
	"fmt"
)

// decodeCandidates validates the sanitized JSON against the two accepted
// response shapes: {"calls": [...]} or a single bare call object.
func decodeCandidates(data []byte) ([]Candidate, error) {
	var wrapper struct {
		Calls []Candidate `json:"calls"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Calls != nil {
		return wrapper.Calls, nil
	}

	var single Candidate
	if err := json.Unmarshal(data, &single); err == nil && single.hasTiming() {
		return []Candidate{single}, nil
	}

	return nil, fmt.Errorf("response is neither {calls: [...]} nor a bare call object")
}

// parseResponse runs the parse ladder over a raw model reply: extract the
// JSON object, sanitize it, parse; on failure repair mechanically and parse
// again. A nil result means the caller must fall back to a whole-transcript
// call.
func parseResponse(raw string) ([]Candidate, error) {
	blob, ok := ExtractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON object in response")
	}

	clean := Sanitize(blob)
	if calls, err := decodeCandidates([]byte(clean)); err == nil {
		return calls, nil
	}

	repaired := Repair(clean)
	calls, err := decodeCandidates([]byte(repaired))
	if err != nil {
		return nil, fmt.Errorf("parse after repair: %w", err)
	}
	return calls, nil
}
