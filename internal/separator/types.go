package separator

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexFloat is a float64 that also accepts numeric strings and null during
// JSON decoding. The model is inconsistent about quoting numbers.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Leave the field unset rather than failing the whole document.
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

// FlexString is a string that also accepts numbers during JSON decoding;
// ages in particular come back as either "45" or 45.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = FlexString(str)
		return nil
	}
	*s = FlexString(strings.Trim(string(data), `"`))
	return nil
}

// Candidate is one unvalidated call proposal from the model. Start/End are
// ambiguous (seconds or 1-indexed segment line numbers); StartTime/EndTime
// are explicit seconds and are preferred when present. StartText/EndText are
// advisory anchors only.
type Candidate struct {
	Start     *FlexFloat `json:"start"`
	End       *FlexFloat `json:"end"`
	StartTime *FlexFloat `json:"startTime"`
	EndTime   *FlexFloat `json:"endTime"`
	StartText string     `json:"startText"`
	EndText   string     `json:"endText"`

	Name           string     `json:"name"`
	Age            FlexString `json:"age"`
	Title          string     `json:"title"`
	Topic          string     `json:"topic"`
	Tags           []string   `json:"tags"`
	Description    string     `json:"description"`
	Summary        string     `json:"summary"`
	ThumbnailScene string     `json:"thumbnailScene"`
}

// hasTiming reports whether the candidate carries any boundary information
// at all. Used to tell a bare call object apart from unrelated JSON.
func (c Candidate) hasTiming() bool {
	return c.Start != nil || c.End != nil || c.StartTime != nil || c.EndTime != nil
}
