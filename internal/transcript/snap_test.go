package transcript

import (
	"math"
	"testing"
)

var snapTimeline = []Segment{
	{Start: 0, End: 30, Text: "buenas noches"},
	{Start: 30, End: 75, Text: "tenemos una llamada"},
	{Start: 80, End: 120, Text: "gracias por llamar"},
}

func TestSnapSpan_ExactBoundaries(t *testing.T) {
	span, ok := SnapSpan(0, 120, snapTimeline)
	if !ok {
		t.Fatal("expected span to survive")
	}
	if span.Start != 0 || span.End != 120 {
		t.Errorf("expected 0/120, got %g/%g", span.Start, span.End)
	}
}

func TestSnapSpan_SnapsToEnclosingSegment(t *testing.T) {
	span, ok := SnapSpan(42, 100, snapTimeline)
	if !ok {
		t.Fatal("expected span to survive")
	}
	if span.Start != 30 {
		t.Errorf("start inside second segment should snap to 30, got %g", span.Start)
	}
	if span.End != 120 {
		t.Errorf("end inside third segment should snap to 120, got %g", span.End)
	}
}

func TestSnapSpan_EndInGapShrinks(t *testing.T) {
	// 78 falls in the 75..80 silence gap; the span shrinks onto the last
	// segment ending before it instead of extending into the next one.
	span, ok := SnapSpan(10, 78, snapTimeline)
	if !ok {
		t.Fatal("expected span to survive")
	}
	if span.End != 75 {
		t.Errorf("end in gap should shrink to 75, got %g", span.End)
	}
}

func TestSnapSpan_BoundariesAlwaysOnSegmentEdges(t *testing.T) {
	edges := map[float64]bool{}
	for _, s := range snapTimeline {
		edges[s.Start] = true
		edges[s.End] = true
	}

	for _, in := range [][2]float64{{0, 120}, {5, 119}, {31, 76}, {42, 100}, {10, 78}} {
		span, ok := SnapSpan(in[0], in[1], snapTimeline)
		if !ok {
			continue
		}
		if !edges[span.Start] {
			t.Errorf("SnapSpan(%g,%g): start %g is not a segment edge", in[0], in[1], span.Start)
		}
		if !edges[span.End] {
			t.Errorf("SnapSpan(%g,%g): end %g is not a segment edge", in[0], in[1], span.End)
		}
		if span.Start < 0 || span.End > TotalDuration(snapTimeline) || span.Start >= span.End {
			t.Errorf("SnapSpan(%g,%g): span %g/%g out of bounds", in[0], in[1], span.Start, span.End)
		}
	}
}

func TestSnapSpan_RejectsInvalid(t *testing.T) {
	cases := []struct {
		name       string
		start, end float64
	}{
		{"negative start", -1, 60},
		{"end past duration", 150, 200},
		{"inverted", 90, 30},
		{"empty interval", 60, 60},
		{"nan start", math.NaN(), 60},
		{"nan end", 0, math.NaN()},
		{"inf end", 0, math.Inf(1)},
	}
	for _, tc := range cases {
		if _, ok := SnapSpan(tc.start, tc.end, snapTimeline); ok {
			t.Errorf("%s: expected rejection of %g/%g", tc.name, tc.start, tc.end)
		}
	}
}

func TestSlice(t *testing.T) {
	got := Slice(snapTimeline, 30, 120)
	want := "tenemos una llamada gracias por llamar"
	if got != want {
		t.Errorf("Slice = %q, want %q", got, want)
	}

	if got := Slice(snapTimeline, 0, 120); got != FullText(snapTimeline) {
		t.Errorf("full-span slice should equal full text, got %q", got)
	}

	// Partial overlap does not include a segment.
	if got := Slice(snapTimeline, 31, 120); got != "gracias por llamar" {
		t.Errorf("partially covered segment should be excluded, got %q", got)
	}
}
