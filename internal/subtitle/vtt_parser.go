package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

var (
	vttTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttShortTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2})\.(\d{3})`,
	)
)

func parseVTT(r io.Reader) ([]cue, error) {
	var (
		cues      []cue
		current   *cue
		textLines []string
		lineNum   int
		header    bool
	)

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.text = strings.Join(textLines, "\n")
			cues = append(cues, *current)
		}
		current = nil
		textLines = nil
	}

	scanner := bufio.NewScanner(r)

	// NOTE and STYLE blocks run until the next blank line
	skipBlock := func() {
		for scanner.Scan() {
			lineNum++
			if strings.TrimSpace(scanner.Text()) == "" {
				break
			}
		}
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineNum++

		if lineNum == 1 {
			text = strings.TrimPrefix(text, "\uFEFF")
		}
		trimmed := strings.TrimSpace(text)

		if !header && strings.HasPrefix(trimmed, "WEBVTT") {
			header = true
			continue
		}

		if strings.HasPrefix(trimmed, "NOTE") || strings.HasPrefix(trimmed, "STYLE") {
			skipBlock()
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		start, end, ok, err := matchVTTTiming(text)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp at line %d: %w", lineNum, err)
		}
		if ok {
			flush()
			current = &cue{start: start, end: end}
			continue
		}

		if current != nil {
			textLines = append(textLines, text)
		}
	}

	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT file: %w", err)
	}

	return cues, nil
}

// accepts HH:MM:SS.mmm and the short MM:SS.mmm cue timing forms
func matchVTTTiming(text string) (time.Duration, time.Duration, bool, error) {
	var startGroups, endGroups []string

	if m := vttTimestampRegex.FindStringSubmatch(text); len(m) == 9 {
		startGroups, endGroups = m[1:5], m[5:9]
	} else if m := vttShortTimestampRegex.FindStringSubmatch(text); len(m) == 7 {
		startGroups = append([]string{"00"}, m[1:4]...)
		endGroups = append([]string{"00"}, m[4:7]...)
	} else {
		return 0, 0, false, nil
	}

	start, err := parseTimestampGroups(startGroups, time.Millisecond)
	if err != nil {
		return 0, 0, false, err
	}
	end, err := parseTimestampGroups(endGroups, time.Millisecond)
	if err != nil {
		return 0, 0, false, err
	}
	return start, end, true, nil
}
