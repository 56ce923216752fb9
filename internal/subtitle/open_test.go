package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mgpai22/tapsync/internal/line"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestOpenSRTFile(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:04,000
Hello, world!

2
00:00:05,500 --> 00:00:08,200
This is a test.
With multiple lines.

3
00:00:10,000 --> 00:00:12,500
Final subtitle.
`
	lines, err := Open(writeTemp(t, "test.srt", content))
	if err != nil {
		t.Fatalf("failed to open SRT file: %v", err)
	}

	want := []line.Line{
		{
			ID: "line-1", RawText: "Hello, world!", Text: "Hello, world!", Order: 1,
			StartTime: line.At(time.Second), EndTime: line.At(4 * time.Second),
		},
		{
			ID: "line-2", RawText: "This is a test.\nWith multiple lines.",
			Text: "This is a test.\nWith multiple lines.", Order: 2,
			StartTime: line.At(5500 * time.Millisecond),
			EndTime:   line.At(8200 * time.Millisecond),
		},
		{
			ID: "line-3", RawText: "Final subtitle.", Text: "Final subtitle.", Order: 3,
			StartTime: line.At(10 * time.Second),
			EndTime:   line.At(12500 * time.Millisecond),
		},
	}

	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenSRTZeroStart(t *testing.T) {
	content := "1\n00:00:00,000 --> 00:00:01,000\nFirst\n"

	lines, err := Open(writeTemp(t, "zero.srt", content))
	if err != nil {
		t.Fatalf("failed to open SRT file: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if !lines[0].StartTime.Set || lines[0].StartTime.At != 0 {
		t.Errorf("expected a set zero start, got %v", lines[0].StartTime)
	}
}

func TestOpenSRTWithBOM(t *testing.T) {
	content := "\uFEFF1\n00:00:02,000 --> 00:00:03,000\nBOM\n"

	lines, err := Open(writeTemp(t, "bom.srt", content))
	if err != nil {
		t.Fatalf("failed to open SRT file: %v", err)
	}
	if len(lines) != 1 || lines[0].Text != "BOM" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

func TestOpenVTTFile(t *testing.T) {
	content := `WEBVTT

NOTE
This is a comment.

1
00:00:01.000 --> 00:00:02.500
First cue

00:03.000 --> 00:04.000 align:start
Short timing
`
	lines, err := Open(writeTemp(t, "test.vtt", content))
	if err != nil {
		t.Fatalf("failed to open VTT file: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	if lines[0].Text != "First cue" {
		t.Errorf("line 0: expected 'First cue', got %q", lines[0].Text)
	}
	if lines[0].EndTime.At != 2500*time.Millisecond {
		t.Errorf("line 0: expected end 2.5s, got %v", lines[0].EndTime.At)
	}
	if lines[1].StartTime.At != 3*time.Second {
		t.Errorf("line 1: expected start 3s, got %v", lines[1].StartTime.At)
	}
	if lines[1].ID != "line-2" {
		t.Errorf("line 1: expected id line-2, got %s", lines[1].ID)
	}
}

func TestOpenASSFile(t *testing.T) {
	content := `[Script Info]
Title: Test

[V4+ Styles]
Format: Name, Fontname, Fontsize
Style: Default,Arial,20

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.50,0:00:03.25,Default,,0,0,0,,{\b1}Hello{\b0}, there
Dialogue: 0,0:01:00.00,0:01:02.00,Default,,0,0,0,,Two\Nrows
`
	lines, err := Open(writeTemp(t, "test.ass", content))
	if err != nil {
		t.Fatalf("failed to open ASS file: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	if lines[0].Text != "Hello, there" {
		t.Errorf("line 0: expected tags stripped, got %q", lines[0].Text)
	}
	if lines[0].StartTime.At != 1500*time.Millisecond {
		t.Errorf("line 0: expected start 1.5s, got %v", lines[0].StartTime.At)
	}
	if lines[0].EndTime.At != 3250*time.Millisecond {
		t.Errorf("line 0: expected end 3.25s, got %v", lines[0].EndTime.At)
	}
	if lines[1].Text != "Two\nrows" {
		t.Errorf("line 1: expected newline, got %q", lines[1].Text)
	}
	if lines[1].StartTime.At != time.Minute {
		t.Errorf("line 1: expected start 1m, got %v", lines[1].StartTime.At)
	}
}

func TestOpenASSMissingFormat(t *testing.T) {
	content := "[Events]\nDialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,Hi\n"

	_, err := Open(writeTemp(t, "broken.ass", content))
	if err == nil {
		t.Fatal("expected error for dialogue without format line")
	}
}

func TestOpenUnsupportedExtension(t *testing.T) {
	_, err := Open(writeTemp(t, "lyrics.lrc", "[00:01.00]hi"))
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if !strings.Contains(err.Error(), "unsupported subtitle format") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	lines := []line.Line{
		{ID: "line-1", Text: "one", Order: 1,
			StartTime: line.At(500 * time.Millisecond), EndTime: line.At(time.Second)},
		{ID: "line-2", Text: "two", Order: 2,
			StartTime: line.At(2 * time.Second), EndTime: line.At(3 * time.Second)},
	}

	for _, format := range []Format{FormatSRT, FormatVTT, FormatASS} {
		t.Run(string(format), func(t *testing.T) {
			text, err := Render(format, lines, DefaultOptions())
			if err != nil {
				t.Fatalf("render failed: %v", err)
			}

			got, err := Parse(format, strings.NewReader(text))
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if len(got) != len(lines) {
				t.Fatalf("expected %d lines, got %d", len(lines), len(got))
			}
			for i := range lines {
				if got[i].Text != lines[i].Text {
					t.Errorf("line %d: text %q, want %q", i, got[i].Text, lines[i].Text)
				}
				if got[i].StartTime != lines[i].StartTime {
					t.Errorf("line %d: start %v, want %v", i, got[i].StartTime, lines[i].StartTime)
				}
				if got[i].EndTime != lines[i].EndTime {
					t.Errorf("line %d: end %v, want %v", i, got[i].EndTime, lines[i].EndTime)
				}
			}
		})
	}
}
