package subtitle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/tapsync/internal/line"
)

// timed text block read from a subtitle file
type cue struct {
	start time.Duration
	end   time.Duration
	text  string
}

// Open reads an existing SRT, VTT or ASS file back into fully timed lines so
// a tapping session can resume from it.
func Open(path string) ([]line.Line, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt", ".vtt", ".ass", ".ssa":
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", ext)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return Parse(GetFormatFromExtension(path), file)
}

// Parse reads subtitle text of the given format into lines.
func Parse(format Format, r io.Reader) ([]line.Line, error) {
	var (
		cues []cue
		err  error
	)

	switch format {
	case FormatSRT:
		cues, err = parseSRT(r)
	case FormatVTT:
		cues, err = parseVTT(r)
	case FormatASS:
		cues, err = parseASS(r)
	default:
		return nil, fmt.Errorf("cannot import %s subtitles", format)
	}
	if err != nil {
		return nil, err
	}

	return cuesToLines(cues), nil
}

func cuesToLines(cues []cue) []line.Line {
	lines := make([]line.Line, len(cues))
	for i, c := range cues {
		lines[i] = line.Line{
			ID:        line.IDForOrder(i + 1),
			RawText:   c.text,
			Text:      c.text,
			Order:     i + 1,
			StartTime: line.At(c.start),
			EndTime:   line.At(c.end),
		}
	}
	return lines
}

func clockDuration(h, m, s, frac int, unit time.Duration) time.Duration {
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(frac)*unit
}
