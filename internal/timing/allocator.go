package timing

import (
	"fmt"
	"math"
	"time"

	"github.com/mgpai22/tapsync/internal/line"
)

// AllocatorMode selects how the last pipeline stage treats end times.
type AllocatorMode string

const (
	// keep tapped end times untouched
	AllocatePassthrough AllocatorMode = "passthrough"
	// rescale the whole timeline to the audio duration when it drifts
	AllocateScale AllocatorMode = "scale"
)

const DefaultScaleThreshold = 0.2

func ParseAllocatorMode(s string) (AllocatorMode, error) {
	switch AllocatorMode(s) {
	case "", AllocatePassthrough:
		return AllocatePassthrough, nil
	case AllocateScale:
		return AllocateScale, nil
	default:
		return "", fmt.Errorf(
			"unknown allocator %q: use passthrough or scale",
			s,
		)
	}
}

// AllocateEndTimes does not distribute end times. End marks come only from
// end taps and manual edits, so every field is returned as given.
func AllocateEndTimes(lines []line.Line, _ time.Duration) []line.Line {
	return line.Clone(lines)
}

// ScaleTimeline stretches or shrinks every fully timed line by
// audioDuration / lastEnd when that ratio is at least threshold away from 1.
// Scaled ends are capped at audioDuration. Lines missing either mark are left
// alone.
func ScaleTimeline(
	lines []line.Line,
	audioDuration time.Duration,
	threshold float64,
) []line.Line {
	full := line.FullyTimed(lines)
	if len(full) == 0 {
		return line.Clone(lines)
	}

	lastEnd := full[len(full)-1].EndTime.At
	if lastEnd <= 0 {
		return line.Clone(lines)
	}

	ratio := float64(audioDuration) / float64(lastEnd)
	if math.Abs(1-ratio) < threshold {
		return line.Clone(lines)
	}

	out := make([]line.Line, len(lines))
	for i, l := range lines {
		if l.FullyTimed() {
			l.StartTime = line.At(scale(l.StartTime.At, ratio))
			l.EndTime = line.At(min(scale(l.EndTime.At, ratio), audioDuration))
		}
		out[i] = l
	}
	return out
}

func scale(d time.Duration, ratio float64) time.Duration {
	return time.Duration(math.Round(float64(d) * ratio))
}
