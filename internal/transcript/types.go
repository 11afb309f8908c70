package transcript

import "strings"

// Segment is one timestamped unit of transcribed speech, as produced by the
// transcription service. Segments are ordered by time and form the
// authoritative timeline against which call boundaries are validated.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TotalDuration returns the end of the last segment, or 0 for an empty timeline.
func TotalDuration(segments []Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	return segments[len(segments)-1].End
}

// FullText joins all segment texts with single spaces.
func FullText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Slice returns the concatenated text of every segment whose span falls
// within [start, end].
func Slice(segments []Segment, start, end float64) string {
	var parts []string
	for _, s := range segments {
		if s.Start >= start && s.End <= end {
			if t := strings.TrimSpace(s.Text); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}
