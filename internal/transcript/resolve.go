package transcript

import "math"

// lineNumberCeiling is the magnitude heuristic separating 1-indexed line
// numbers from second counts. A broadcast recording never has this many
// segments, and a call boundary expressed in seconds rarely stays below it
// on both ends while also being integral.
const lineNumberCeiling = 10000

// Timing carries the timing fields of an unvalidated call candidate.
// StartTime/EndTime are explicit seconds extracted from the SRT timestamps
// and are trusted when present. Start/End are ambiguous: the model sometimes
// falls back to 1-indexed line numbers into the segment list.
type Timing struct {
	Start     *float64
	End       *float64
	StartTime *float64
	EndTime   *float64
}

// ResolveTimestamps converts a candidate's timing fields into seconds
// anchored to the segment timeline. Values that cannot be resolved come back
// as NaN and are dropped by the boundary filter.
func ResolveTimestamps(t Timing, segments []Segment) (float64, float64) {
	if t.StartTime != nil && t.EndTime != nil {
		return *t.StartTime, *t.EndTime
	}

	if t.Start == nil || t.End == nil {
		return math.NaN(), math.NaN()
	}
	start, end := *t.Start, *t.End

	if looksLikeLineNumbers(start, end) && len(segments) > 0 {
		startIdx := clampIndex(int(start)-1, len(segments))
		endIdx := clampIndex(int(end)-1, len(segments))
		return segments[startIdx].Start, segments[endIdx].End
	}

	// Already seconds; pass through unchanged.
	return start, end
}

func looksLikeLineNumbers(start, end float64) bool {
	if start != math.Trunc(start) || end != math.Trunc(end) {
		return false
	}
	if start < 0 || end <= start {
		return false
	}
	return start < lineNumberCeiling || end < lineNumberCeiling
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
