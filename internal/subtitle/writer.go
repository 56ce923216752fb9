package subtitle

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/tapsync/internal/line"
)

// Render converts lines into the text of the given format.
func Render(format Format, lines []line.Line, opts Options) (string, error) {
	switch format {
	case FormatSRT:
		return SRT(lines), nil
	case FormatVTT:
		return VTT(lines), nil
	case FormatASS:
		return ASS(lines, opts), nil
	case FormatLRC:
		return LRC(lines), nil
	case FormatCSV:
		return CapCutCSV(lines)
	case FormatFCP7:
		return FCP7XML(lines, opts.FPS)
	case FormatFCPXML:
		return FCPXML(lines, opts.FPS)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// Write renders lines and writes them to path, creating parent directories.
func Write(path string, format Format, lines []line.Line, opts Options) error {
	text, err := Render(format, lines, opts)
	if err != nil {
		return err
	}

	if err := ensureDir(path); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(text), 0644)
}

// SubRip cues for fully timed lines, separated by a blank line
func SRT(lines []line.Line) string {
	timed := line.FullyTimed(lines)

	cues := make([]string, len(timed))
	for i, l := range timed {
		// index (1-based), timestamps: 00:00:00,000 --> 00:00:00,000, text
		cues[i] = fmt.Sprintf("%d\n%s --> %s\n%s\n",
			i+1,
			formatSRTTime(l.StartTime.At),
			formatSRTTime(l.EndTime.At),
			l.Text)
	}

	return strings.Join(cues, "\n")
}

// WebVTT cues for fully timed lines
func VTT(lines []line.Line) string {
	var sb strings.Builder

	sb.WriteString("WEBVTT\n\n")

	for i, l := range line.FullyTimed(lines) {
		// optional cue identifier
		sb.WriteString(fmt.Sprintf("%d\n", i+1))

		// timestamps: 00:00:00.000 --> 00:00:00.000
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatVTTTime(l.StartTime.At),
			formatVTTTime(l.EndTime.At)))

		sb.WriteString(l.Text)
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// Advanced SubStation Alpha script for fully timed lines
func ASS(lines []line.Line, opts Options) string {
	var sb strings.Builder

	// script info section
	sb.WriteString("[Script Info]\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", opts.Title))
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("Collisions: Normal\n")
	sb.WriteString("PlayDepth: 0\n\n")

	// v4+ styles section
	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	sb.WriteString(fmt.Sprintf("Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		opts.FontName, opts.FontSize))

	// events section
	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, l := range line.FullyTimed(lines) {
		sb.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(l.StartTime.At),
			formatASSTime(l.EndTime.At),
			escapeASSText(l.Text)))
	}

	return sb.String()
}

// [MM:SS.cc]text for every line with a start; ends are not used
func LRC(lines []line.Line) string {
	timed := line.Timed(lines)

	rows := make([]string, len(timed))
	for i, l := range timed {
		// one row per timestamp, so cue breaks become spaces
		text := strings.ReplaceAll(l.Text, "\r\n", " ")
		text = strings.ReplaceAll(text, "\n", " ")
		rows[i] = fmt.Sprintf("[%s]%s", formatLRCTime(l.StartTime.At), text)
	}

	return strings.Join(rows, "\n")
}

// CapCutCSV writes a start,end,text header and one row per fully timed
// line with one-decimal second values rounded half up. Rows are joined with
// newlines and there is no trailing newline.
func CapCutCSV(lines []line.Line) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"start", "end", "text"}); err != nil {
		return "", err
	}
	for _, l := range line.FullyTimed(lines) {
		record := []string{
			formatCSVSeconds(l.StartTime.At),
			formatCSVSeconds(l.EndTime.At),
			l.Text,
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write CSV: %w", err)
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func formatCSVSeconds(d time.Duration) string {
	tenths := math.Floor(d.Seconds()*10 + 0.5)
	return strconv.FormatFloat(tenths/10, 'f', 1, 64)
}

func formatSRTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

func formatVTTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}

func formatASSTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	centis := (int(d.Milliseconds()) % 1000) / 10

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}

// minutes are not wrapped into hours
func formatLRCTime(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	centis := (int(d.Milliseconds()) % 1000) / 10

	return fmt.Sprintf("%02d:%02d.%02d", minutes, seconds, centis)
}

func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, "\n", "\\N")
	return text
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
