package line

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnknownLine = errors.New("unknown line")

// Field selects which mark of a line an edit targets.
type Field string

const (
	FieldStart Field = "start"
	FieldEnd   Field = "end"
)

func ParseField(s string) (Field, error) {
	switch Field(s) {
	case FieldStart, FieldEnd:
		return Field(s), nil
	default:
		return "", fmt.Errorf("invalid field %q: use start or end", s)
	}
}

func update(lines []Line, id string, fn func(Line) Line) ([]Line, error) {
	idx := IndexOf(lines, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLine, id)
	}
	out := Clone(lines)
	out[idx] = fn(out[idx])
	return out, nil
}

// SetStart records a start tap. The end mark is cleared because a new start
// invalidates whatever end was tapped before it.
func SetStart(lines []Line, id string, at time.Duration) ([]Line, error) {
	return update(lines, id, func(l Line) Line {
		l.StartTime = At(at)
		l.EndTime = Mark{}
		return l
	})
}

// SetEnd records an end tap, keeping the start.
func SetEnd(lines []Line, id string, at time.Duration) ([]Line, error) {
	return update(lines, id, func(l Line) Line {
		l.EndTime = At(at)
		return l
	})
}

// SetTime is a manual edit of one mark.
func SetTime(
	lines []Line,
	id string,
	field Field,
	at time.Duration,
) ([]Line, error) {
	return update(lines, id, func(l Line) Line {
		switch field {
		case FieldStart:
			l.StartTime = At(at)
		case FieldEnd:
			l.EndTime = At(at)
		}
		return l
	})
}

// FillMissing sets the start of a line that has no marks at all. Lines with
// either mark already set are left alone.
func FillMissing(lines []Line, id string, at time.Duration) ([]Line, error) {
	return update(lines, id, func(l Line) Line {
		if !l.StartTime.Set && !l.EndTime.Set {
			l.StartTime = At(at)
		}
		return l
	})
}

func ClearTimestamps(lines []Line) []Line {
	out := Clone(lines)
	for i := range out {
		out[i].StartTime = Mark{}
		out[i].EndTime = Mark{}
	}
	return out
}

// NextLineID returns the ID of the line whose order follows current.
func NextLineID(lines []Line, current int) (string, bool) {
	for _, l := range lines {
		if l.Order == current+1 {
			return l.ID, true
		}
	}
	return "", false
}

// IndexOf returns the slice index of the line with id, or -1.
func IndexOf(lines []Line, id string) int {
	for i, l := range lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}
