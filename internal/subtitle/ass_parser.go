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

var assTagRegex = regexp.MustCompile(`\{[^}]*\}`)

// Dialogue columns located by the [Events] Format line
type assColumns struct {
	count int
	start int
	end   int
	text  int
}

func parseASS(r io.Reader) ([]cue, error) {
	var (
		cues     []cue
		cols     *assColumns
		inEvents bool
		lineNum  int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		text := scanner.Text()
		lineNum++

		if lineNum == 1 {
			text = strings.TrimPrefix(text, "\uFEFF")
		}
		trimmed := strings.TrimSpace(text)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section := strings.ToLower(strings.Trim(trimmed, "[]"))
			inEvents = section == "events"
			continue
		}

		if !inEvents {
			continue
		}

		if strings.HasPrefix(trimmed, "Format:") {
			parsed, err := parseASSFormat(strings.TrimPrefix(trimmed, "Format:"))
			if err != nil {
				return nil, err
			}
			cols = parsed
			continue
		}

		if strings.HasPrefix(trimmed, "Dialogue:") {
			if cols == nil {
				return nil, fmt.Errorf(
					"dialogue before format line at line %d",
					lineNum,
				)
			}
			c, err := parseASSDialogue(
				strings.TrimSpace(strings.TrimPrefix(trimmed, "Dialogue:")),
				cols,
			)
			if err != nil {
				return nil, fmt.Errorf(
					"failed to parse Dialogue at line %d: %w",
					lineNum,
					err,
				)
			}
			cues = append(cues, c)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS file: %w", err)
	}

	if cols == nil {
		return nil, fmt.Errorf(
			"ASS file missing Format line in [Events] section",
		)
	}

	return cues, nil
}

func parseASSFormat(format string) (*assColumns, error) {
	columns := strings.Split(format, ",")
	cols := &assColumns{count: len(columns), start: -1, end: -1, text: -1}

	for i, col := range columns {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "start":
			cols.start = i
		case "end":
			cols.end = i
		case "text":
			cols.text = i
		}
	}

	if cols.text == -1 {
		return nil, fmt.Errorf("ASS file missing Text column in Format line")
	}
	if cols.start == -1 || cols.end == -1 {
		return nil, fmt.Errorf("ASS file missing Start or End column in Format line")
	}
	return cols, nil
}

func parseASSDialogue(content string, cols *assColumns) (cue, error) {
	// the text column is last and may itself contain commas
	parts := strings.SplitN(content, ",", cols.count)
	if len(parts) < cols.count {
		return cue{}, fmt.Errorf(
			"expected %d fields, got %d",
			cols.count,
			len(parts),
		)
	}

	start, err := parseASSTimestamp(parts[cols.start])
	if err != nil {
		return cue{}, fmt.Errorf("invalid start: %w", err)
	}
	end, err := parseASSTimestamp(parts[cols.end])
	if err != nil {
		return cue{}, fmt.Errorf("invalid end: %w", err)
	}

	text := assTagRegex.ReplaceAllString(parts[cols.text], "")
	text = strings.ReplaceAll(text, "\\N", "\n")
	text = strings.ReplaceAll(text, "\\n", "\n")

	return cue{start: start, end: end, text: text}, nil
}

// H:MM:SS.cc
func parseASSTimestamp(ts string) (time.Duration, error) {
	ts = strings.TrimSpace(ts)
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed timestamp %q", ts)
	}

	secParts := strings.Split(parts[2], ".")
	if len(secParts) != 2 {
		return 0, fmt.Errorf("malformed timestamp %q", ts)
	}

	groups := []string{parts[0], parts[1], secParts[0], secParts[1]}
	values := make([]int, len(groups))
	for i, g := range groups {
		v, err := strconv.Atoi(g)
		if err != nil {
			return 0, fmt.Errorf("malformed timestamp %q: %w", ts, err)
		}
		values[i] = v
	}

	return clockDuration(
		values[0], values[1], values[2], values[3],
		10*time.Millisecond,
	), nil
}
