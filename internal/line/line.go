package line

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Mark is an optional timestamp on the audio timeline.
type Mark struct {
	At  time.Duration
	Set bool
}

// At returns a set mark at d.
func At(d time.Duration) Mark {
	return Mark{At: d, Set: true}
}

// Seconds returns a set mark from a float seconds value.
func Seconds(s float64) Mark {
	return At(time.Duration(math.Round(s * float64(time.Second))))
}

func (m Mark) String() string {
	if !m.Set {
		return "-"
	}
	return m.At.String()
}

// marshals as float seconds, or null when unset
func (m Mark) MarshalJSON() ([]byte, error) {
	if !m.Set {
		return []byte("null"), nil
	}
	return json.Marshal(m.At.Seconds())
}

func (m *Mark) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Mark{}
		return nil
	}
	var s float64
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be seconds or null: %w", err)
	}
	*m = Seconds(s)
	return nil
}

// Line is one unit of text (subtitle or lyric) with optional start and end
// marks. Lines are values: functions in this package return new slices and
// never modify their input.
type Line struct {
	ID        string `json:"id"`
	RawText   string `json:"rawText"`
	Text      string `json:"text"`
	Order     int    `json:"order"`
	StartTime Mark   `json:"startTime"`
	EndTime   Mark   `json:"endTime"`
}

// Timed reports whether the line has a start mark.
func (l Line) Timed() bool {
	return l.StartTime.Set
}

// FullyTimed reports whether both marks are set.
func (l Line) FullyTimed() bool {
	return l.StartTime.Set && l.EndTime.Set
}

// splits raw text into trimmed, non-empty lines
func ProcessText(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, "\n") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// TextToLines converts pasted text into ordered, untimed lines.
func TextToLines(raw string) []Line {
	texts := ProcessText(raw)
	lines := make([]Line, len(texts))
	for i, text := range texts {
		lines[i] = Line{
			ID:      IDForOrder(i + 1),
			RawText: text,
			Text:    text,
			Order:   i + 1,
		}
	}
	return lines
}

// IDForOrder returns the stable ID assigned to the line at a 1-based order.
func IDForOrder(order int) string {
	return fmt.Sprintf("line-%d", order)
}

// lines with a start mark
func Timed(lines []Line) []Line {
	var out []Line
	for _, l := range lines {
		if l.Timed() {
			out = append(out, l)
		}
	}
	return out
}

// lines with both marks
func FullyTimed(lines []Line) []Line {
	var out []Line
	for _, l := range lines {
		if l.FullyTimed() {
			out = append(out, l)
		}
	}
	return out
}

// Clone returns a copy of lines that shares no backing array with the input.
func Clone(lines []Line) []Line {
	if lines == nil {
		return nil
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
