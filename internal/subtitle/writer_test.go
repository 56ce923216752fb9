package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/tapsync/internal/line"
)

func timedLine(order int, text string, start, end time.Duration) line.Line {
	return line.Line{
		ID:        line.IDForOrder(order),
		RawText:   text,
		Text:      text,
		Order:     order,
		StartTime: line.At(start),
		EndTime:   line.At(end),
	}
}

func TestSRT(t *testing.T) {
	lines := []line.Line{
		timedLine(1, "Hi", 1500*time.Millisecond, 3250*time.Millisecond),
	}

	got := SRT(lines)
	want := "1\n00:00:01,500 --> 00:00:03,250\nHi\n"
	if got != want {
		t.Errorf("SRT() = %q, want %q", got, want)
	}
}

func TestSRTSkipsPartiallyTimed(t *testing.T) {
	lines := []line.Line{
		timedLine(1, "first", time.Second, 2*time.Second),
		{ID: "line-2", Text: "no end", Order: 2, StartTime: line.At(3 * time.Second)},
		{ID: "line-3", Text: "untimed", Order: 3},
		timedLine(4, "last", 5*time.Second, 6*time.Second),
	}

	got := SRT(lines)
	want := "1\n00:00:01,000 --> 00:00:02,000\nfirst\n\n" +
		"2\n00:00:05,000 --> 00:00:06,000\nlast\n"
	if got != want {
		t.Errorf("SRT() = %q, want %q", got, want)
	}
}

func TestSRTHours(t *testing.T) {
	lines := []line.Line{
		timedLine(1, "late", time.Hour+2*time.Minute+3*time.Second+4*time.Millisecond,
			time.Hour+2*time.Minute+5*time.Second),
	}

	got := SRT(lines)
	if !strings.Contains(got, "01:02:03,004 --> 01:02:05,000") {
		t.Errorf("unexpected SRT timing: %q", got)
	}
}

func TestVTT(t *testing.T) {
	lines := []line.Line{
		timedLine(1, "Hi", 1500*time.Millisecond, 3250*time.Millisecond),
	}

	got := VTT(lines)
	want := "WEBVTT\n\n1\n00:00:01.500 --> 00:00:03.250\nHi\n\n"
	if got != want {
		t.Errorf("VTT() = %q, want %q", got, want)
	}
}

func TestASS(t *testing.T) {
	lines := []line.Line{
		timedLine(1, "two\nrows", 1500*time.Millisecond, 3250*time.Millisecond),
	}

	got := ASS(lines, DefaultOptions())

	for _, want := range []string{
		"Title: TapSync Subtitles",
		"Style: Default,Arial,20,",
		"Dialogue: 0,0:00:01.50,0:00:03.25,Default,,0,0,0,,two\\Nrows",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ASS output missing %q:\n%s", want, got)
		}
	}
}

func TestLRC(t *testing.T) {
	lines := []line.Line{
		{ID: "line-1", Text: "start only", Order: 1, StartTime: line.At(1230 * time.Millisecond)},
		{ID: "line-2", Text: "untimed", Order: 2},
		timedLine(3, "late", 61*time.Minute+5*time.Second+70*time.Millisecond, 62*time.Minute),
	}

	got := LRC(lines)
	want := "[00:01.23]start only\n[61:05.07]late"
	if got != want {
		t.Errorf("LRC() = %q, want %q", got, want)
	}
}

func TestLRCFlattensMultilineText(t *testing.T) {
	lines := []line.Line{
		timedLine(1, "hello\n안녕", time.Second, 2*time.Second),
		timedLine(2, "one\r\ntwo", 3*time.Second, 4*time.Second),
	}

	got := LRC(lines)
	want := "[00:01.00]hello 안녕\n[00:03.00]one two"
	if got != want {
		t.Errorf("LRC() = %q, want %q", got, want)
	}
	for _, row := range strings.Split(got, "\n") {
		if !strings.HasPrefix(row, "[") {
			t.Errorf("row %q has no timestamp", row)
		}
	}
}

func TestCapCutCSV(t *testing.T) {
	lines := []line.Line{
		timedLine(1, "plain", 1500*time.Millisecond, 3250*time.Millisecond),
		timedLine(2, `say "hi", ok`, 4*time.Second, 5*time.Second),
		{ID: "line-3", Text: "untimed", Order: 3},
	}

	got, err := CapCutCSV(lines)
	if err != nil {
		t.Fatalf("CapCutCSV() error: %v", err)
	}

	want := "start,end,text\n" +
		"1.5,3.3,plain\n" +
		"4.0,5.0,\"say \"\"hi\"\", ok\""
	if got != want {
		t.Errorf("CapCutCSV() = %q, want %q", got, want)
	}
}

func TestCapCutCSVRoundsHalfUp(t *testing.T) {
	lines := []line.Line{
		timedLine(1, "a", 1250*time.Millisecond, 2250*time.Millisecond),
		timedLine(2, "b", 2349*time.Millisecond, 2900*time.Millisecond),
	}

	got, err := CapCutCSV(lines)
	if err != nil {
		t.Fatalf("CapCutCSV() error: %v", err)
	}

	want := "start,end,text\n1.3,2.3,a\n2.3,2.9,b"
	if got != want {
		t.Errorf("CapCutCSV() = %q, want %q", got, want)
	}
}

func TestCapCutCSVHeaderOnly(t *testing.T) {
	got, err := CapCutCSV(nil)
	if err != nil {
		t.Fatalf("CapCutCSV() error: %v", err)
	}
	if got != "start,end,text" {
		t.Errorf("CapCutCSV() = %q", got)
	}
}

func TestFCP7XML(t *testing.T) {
	lines := []line.Line{
		timedLine(1, "one & two", time.Second, 2*time.Second),
		timedLine(2, "three", 3*time.Second, 4500*time.Millisecond),
	}

	got, err := FCP7XML(lines, 30)
	if err != nil {
		t.Fatalf("FCP7XML() error: %v", err)
	}

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<xmeml version="4">`,
		`<name>Synced Sequence</name>`,
		`<duration>235</duration>`,
		`<timebase>30</timebase>`,
		`<comment>one &amp; two</comment>`,
		`<name>L2</name>`,
		`<in>90</in>`,
		`<out>135</out>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FCP7 XML missing %q:\n%s", want, got)
		}
	}
}

func TestFCPXML(t *testing.T) {
	lines := []line.Line{
		timedLine(1, "one", time.Second, 2*time.Second),
		timedLine(2, "two", 3*time.Second, 4500*time.Millisecond),
	}

	got, err := FCPXML(lines, 25)
	if err != nil {
		t.Fatalf("FCPXML() error: %v", err)
	}

	for _, want := range []string{
		`<fcpxml version="1.9">`,
		`frameDuration="1/25s"`,
		`<event name="TapSync Event">`,
		`<project name="Synced Project">`,
		`<chapter-marker start="25/25s" duration="25/25s" value="one" note="Line 1"></chapter-marker>`,
		`<chapter-marker start="75/25s" duration="38/25s" value="two" note="Line 2"></chapter-marker>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FCPXML missing %q:\n%s", want, got)
		}
	}
}

func TestXMLRejectsZeroFPS(t *testing.T) {
	if _, err := FCP7XML(nil, 0); err == nil {
		t.Error("expected FCP7XML error for zero fps")
	}
	if _, err := FCPXML(nil, 0); err == nil {
		t.Error("expected FCPXML error for zero fps")
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats() {
		got, err := ParseFormat(strings.ToUpper(string(f)))
		if err != nil {
			t.Errorf("ParseFormat(%q) error: %v", f, err)
		}
		if got != f {
			t.Errorf("ParseFormat(%q) = %q", f, got)
		}
	}

	if _, err := ParseFormat("docx"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestExtensionMapping(t *testing.T) {
	for _, f := range Formats() {
		ext := GetExtensionForFormat(f)
		if got := GetFormatFromExtension("out" + ext); got != f {
			t.Errorf("extension %s maps to %s, want %s", ext, got, f)
		}
	}
}

func TestWriteCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.srt")
	lines := []line.Line{timedLine(1, "Hi", 0, time.Second)}

	if err := Write(path, FormatSRT, lines, DefaultOptions()); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "1\n00:00:00,000 --> 00:00:01,000\nHi") {
		t.Errorf("unexpected file content: %q", data)
	}
}
