package timing

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mgpai22/tapsync/internal/line"
)

// last lines starting this close to the end of the audio run to the end
const finalizeSnap = 500 * time.Millisecond

// FinalizeLastLine extends the last line to the audio end when it starts in
// the final half second, and otherwise caps its end at the audio duration.
// Nothing changes unless the last line has non-zero start and end marks.
func FinalizeLastLine(lines []line.Line, audioDuration time.Duration) []line.Line {
	out := line.Clone(lines)
	if len(out) == 0 {
		return out
	}

	last := &out[len(out)-1]
	if !last.StartTime.Set || !last.EndTime.Set ||
		last.StartTime.At == 0 || last.EndTime.At == 0 {
		return out
	}

	if audioDuration-last.StartTime.At < finalizeSnap {
		last.EndTime = line.At(audioDuration)
	} else {
		last.EndTime = line.At(min(last.EndTime.At, audioDuration))
	}
	return out
}

// ReadingSpeed drives automatic end times from text length.
type ReadingSpeed struct {
	CJKCharsPerSec   float64
	LatinCharsPerSec float64
	MinDuration      time.Duration
	MaxDuration      time.Duration
}

func DefaultReadingSpeed() ReadingSpeed {
	return ReadingSpeed{
		CJKCharsPerSec:   8,
		LatinCharsPerSec: 15,
		MinDuration:      800 * time.Millisecond,
		MaxDuration:      6 * time.Second,
	}
}

// ReadingDuration estimates how long text stays on screen, clamped to
// [MinDuration, MaxDuration].
func ReadingDuration(text string, cfg ReadingSpeed) time.Duration {
	count := utf8.RuneCountInString(strings.TrimSpace(text))
	if count == 0 {
		return cfg.MinDuration
	}

	speed := cfg.LatinCharsPerSec
	if isCJKText(text) {
		speed = cfg.CJKCharsPerSec
	}

	d := time.Duration(float64(count) / speed * float64(time.Second))
	return max(cfg.MinDuration, min(cfg.MaxDuration, d))
}

func AutoEndTime(start time.Duration, text string, cfg ReadingSpeed) time.Duration {
	return start + ReadingDuration(text, cfg)
}

// FillEndTimes gives every started line without an end an automatic end from
// its reading duration, capped at the next timed start.
func FillEndTimes(lines []line.Line, cfg ReadingSpeed) []line.Line {
	out := line.Clone(lines)
	for i := range out {
		l := &out[i]
		if !l.StartTime.Set || l.EndTime.Set {
			continue
		}

		end := AutoEndTime(l.StartTime.At, l.Text, cfg)
		for _, next := range out[i+1:] {
			if next.StartTime.Set {
				if next.StartTime.At > l.StartTime.At {
					end = min(end, next.StartTime.At)
				}
				break
			}
		}
		l.EndTime = line.At(end)
	}
	return out
}

// more than 30% of runes in the kana, CJK ideograph or hangul ranges
func isCJKText(text string) bool {
	text = strings.TrimSpace(text)
	total := 0
	cjk := 0
	for _, r := range text {
		total++
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han, unicode.Hangul) {
			cjk++
		}
	}
	return total > 0 && float64(cjk) > float64(total)*0.3
}
