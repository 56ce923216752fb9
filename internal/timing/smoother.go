package timing

import (
	"time"

	"github.com/mgpai22/tapsync/internal/line"
)

const (
	DefaultMinGap          = 100 * time.Millisecond
	DefaultSmoothingWindow = 3
)

// settings for gap enforcement and smoothing
type Options struct {
	MinGap          time.Duration // minimum spacing between consecutive starts
	SmoothingWindow int           // moving average width, in deltas
}

func DefaultOptions() Options {
	return Options{
		MinGap:          DefaultMinGap,
		SmoothingWindow: DefaultSmoothingWindow,
	}
}

func (o Options) window() int {
	if o.SmoothingWindow < 1 {
		return DefaultSmoothingWindow
	}
	return o.SmoothingWindow
}

// ApplyMinGap pushes each timed start to at least MinGap after the previous
// adjusted start. The cursor begins at zero, so a first start below MinGap is
// pulled forward to MinGap. Starts only ever move later; untimed lines pass
// through and leave the cursor where it was.
func ApplyMinGap(lines []line.Line, opts Options) []line.Line {
	out := make([]line.Line, 0, len(lines))
	var last time.Duration

	for _, l := range lines {
		if !l.StartTime.Set {
			out = append(out, l)
			continue
		}

		adjusted := max(l.StartTime.At, last+opts.MinGap)
		l.StartTime = line.At(adjusted)
		out = append(out, l)
		last = adjusted
	}

	return out
}

// SmoothIntervals replaces each delta between consecutive timed starts with a
// centered moving average over SmoothingWindow deltas, floored at MinGap, and
// rebuilds the starts from the first timed line, which stays where it is.
func SmoothIntervals(lines []line.Line, opts Options) []line.Line {
	timed := line.Timed(lines)
	if len(timed) < 2 {
		return line.Clone(lines)
	}

	deltas := make([]time.Duration, 0, len(timed)-1)
	for i := 1; i < len(timed); i++ {
		deltas = append(deltas, timed[i].StartTime.At-timed[i-1].StartTime.At)
	}

	smoothed := movingAverage(deltas, opts.window(), opts.MinGap)

	out := make([]line.Line, 0, len(lines))
	current := timed[0].StartTime.At
	next := 0
	anchored := false

	for _, l := range lines {
		if !l.StartTime.Set {
			out = append(out, l)
			continue
		}

		if anchored {
			current += smoothed[next]
			next++
		}
		anchored = true

		l.StartTime = line.At(current)
		out = append(out, l)
	}

	return out
}

// centered window [i-floor(w/2), i+ceil(w/2)) clamped to the slice
func movingAverage(
	deltas []time.Duration,
	window int,
	floor time.Duration,
) []time.Duration {
	half := window / 2
	rest := window - half

	out := make([]time.Duration, len(deltas))
	for i := range deltas {
		start := max(0, i-half)
		end := min(len(deltas), i+rest)

		var sum time.Duration
		for _, d := range deltas[start:end] {
			sum += d
		}
		avg := sum / time.Duration(end-start)

		out[i] = max(avg, floor)
	}
	return out
}
