package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var srtTimestampRegex = regexp.MustCompile(
	`(\d{2}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2}),(\d{3})`,
)

func parseSRT(r io.Reader) ([]cue, error) {
	var (
		cues      []cue
		current   *cue
		timed     bool
		textLines []string
		lineNum   int
	)

	flush := func() {
		if current != nil && timed && len(textLines) > 0 {
			current.text = strings.Join(textLines, "\n")
			cues = append(cues, *current)
		}
		current = nil
		timed = false
		textLines = nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		text := scanner.Text()
		lineNum++

		if lineNum == 1 {
			text = strings.TrimPrefix(text, "\uFEFF")
		}

		if strings.TrimSpace(text) == "" {
			if len(textLines) > 0 {
				flush()
			}
			continue
		}

		if current == nil {
			if _, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
				current = &cue{}
				continue
			}
		}

		if current != nil && !timed {
			matches := srtTimestampRegex.FindStringSubmatch(text)
			if len(matches) == 9 {
				start, err := parseTimestampGroups(matches[1:5], time.Millisecond)
				if err != nil {
					return nil, fmt.Errorf(
						"invalid start timestamp at line %d: %w",
						lineNum,
						err,
					)
				}
				end, err := parseTimestampGroups(matches[5:9], time.Millisecond)
				if err != nil {
					return nil, fmt.Errorf(
						"invalid end timestamp at line %d: %w",
						lineNum,
						err,
					)
				}
				current.start = start
				current.end = end
				timed = true
				continue
			}
		}

		if current != nil && timed {
			textLines = append(textLines, text)
		}
	}

	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT file: %w", err)
	}

	return cues, nil
}

// hours, minutes, seconds and a fraction counted in unit
func parseTimestampGroups(groups []string, unit time.Duration) (time.Duration, error) {
	values := make([]int, len(groups))
	for i, g := range groups {
		v, err := strconv.Atoi(g)
		if err != nil {
			return 0, err
		}
		values[i] = v
	}
	return clockDuration(values[0], values[1], values[2], values[3], unit), nil
}
