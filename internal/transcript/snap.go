package transcript

import "math"

// Span is a validated, snapped call boundary pair.
type Span struct {
	Start float64
	End   float64
}

// SnapSpan validates a resolved boundary pair against the segment timeline
// and snaps both ends onto real segment edges. It returns false when the pair
// is structurally invalid: either value non-numeric, start negative, end past
// the end of the recording, or an empty interval.
func SnapSpan(start, end float64, segments []Segment) (Span, bool) {
	if math.IsNaN(start) || math.IsInf(start, 0) || math.IsNaN(end) || math.IsInf(end, 0) {
		return Span{}, false
	}
	if start < 0 || end > TotalDuration(segments) || start >= end {
		return Span{}, false
	}

	// Snap the start to the start of the segment containing it.
	for _, s := range segments {
		if s.Start <= start && start <= s.End {
			start = s.Start
			break
		}
	}

	// Snap the end to the end of the segment containing it. If no segment
	// contains it, shrink onto the last segment ending at or before the
	// requested end rather than extending the call.
	snapped := false
	for _, s := range segments {
		if s.Start <= end && end <= s.End {
			end = s.End
			snapped = true
			break
		}
	}
	if !snapped {
		for i := len(segments) - 1; i >= 0; i-- {
			if segments[i].End <= end {
				end = segments[i].End
				break
			}
		}
	}

	if start >= end {
		return Span{}, false
	}
	return Span{Start: start, End: end}, true
}
