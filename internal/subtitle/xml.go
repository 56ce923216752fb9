package subtitle

import (
	"encoding/xml"
	"fmt"
	"math"
	"time"

	"github.com/mgpai22/tapsync/internal/line"
)

// XML exports place one marker per line for editors that import markers
// rather than captions. Unlike the caption formats they cover every line;
// unset marks count as zero.

type fcp7Rate struct {
	Timebase int    `xml:"timebase"`
	NTSC     string `xml:"ntsc"`
}

type fcp7Marker struct {
	Comment string `xml:"comment"` // Premiere shows this as the description
	Name    string `xml:"name"`
	In      int    `xml:"in"`
	Out     int    `xml:"out"`
}

type fcp7File struct {
	ID       string `xml:"id"`
	Name     string `xml:"name"`
	Duration int    `xml:"media>video>duration"`
	Width    int    `xml:"media>video>samplecharacteristics>width"`
	Height   int    `xml:"media>video>samplecharacteristics>height"`
}

type fcp7ClipItem struct {
	ID       string       `xml:"id"`
	Name     string       `xml:"name"`
	Duration int          `xml:"duration"`
	Rate     fcp7Rate     `xml:"rate"`
	Start    int          `xml:"start"`
	End      int          `xml:"end"`
	File     fcp7File     `xml:"file"`
	Markers  []fcp7Marker `xml:"marker"`
}

type fcp7Sequence struct {
	Name     string       `xml:"name"`
	Duration int          `xml:"duration"`
	Rate     fcp7Rate     `xml:"rate"`
	ClipItem fcp7ClipItem `xml:"media>video>track>clipitem"`
}

type fcp7Document struct {
	XMLName  xml.Name     `xml:"xmeml"`
	Version  string       `xml:"version,attr"`
	Sequence fcp7Sequence `xml:"sequence"`
}

// FCP7XML builds a Premiere-compatible xmeml sequence holding one marker
// per line on a slug clip.
func FCP7XML(lines []line.Line, fps int) (string, error) {
	if fps <= 0 {
		return "", fmt.Errorf("fps must be positive, got %d", fps)
	}

	duration := lastEndFrames(lines, fps) + 100
	rate := fcp7Rate{Timebase: fps, NTSC: "FALSE"}

	markers := make([]fcp7Marker, len(lines))
	for i, l := range lines {
		markers[i] = fcp7Marker{
			Comment: l.Text,
			Name:    fmt.Sprintf("L%d", i+1),
			In:      frames(markAt(l.StartTime), fps),
			Out:     frames(markAt(l.EndTime), fps),
		}
	}

	doc := fcp7Document{
		Version: "4",
		Sequence: fcp7Sequence{
			Name:     "Synced Sequence",
			Duration: duration,
			Rate:     rate,
			ClipItem: fcp7ClipItem{
				ID:       "slug",
				Name:     "Markers",
				Duration: duration,
				Rate:     rate,
				Start:    0,
				End:      duration,
				File: fcp7File{
					ID:       "file-1",
					Name:     "Slug",
					Duration: duration,
					Width:    1920,
					Height:   1080,
				},
				Markers: markers,
			},
		},
	}

	return marshalXML(doc)
}

type fcpxmlFormat struct {
	ID            string `xml:"id,attr"`
	Name          string `xml:"name,attr"`
	FrameDuration string `xml:"frameDuration,attr"`
}

type fcpxmlMarker struct {
	Start    string `xml:"start,attr"`
	Duration string `xml:"duration,attr"`
	Value    string `xml:"value,attr"`
	Note     string `xml:"note,attr"`
}

type fcpxmlGap struct {
	Name     string         `xml:"name,attr"`
	Offset   string         `xml:"offset,attr"`
	Duration string         `xml:"duration,attr"`
	Start    string         `xml:"start,attr"`
	Markers  []fcpxmlMarker `xml:"chapter-marker"`
}

type fcpxmlSequence struct {
	Format string    `xml:"format,attr"`
	Gap    fcpxmlGap `xml:"spine>gap"`
}

type fcpxmlProject struct {
	Name     string         `xml:"name,attr"`
	Sequence fcpxmlSequence `xml:"sequence"`
}

type fcpxmlEvent struct {
	Name    string        `xml:"name,attr"`
	Project fcpxmlProject `xml:"project"`
}

type fcpxmlDocument struct {
	XMLName xml.Name     `xml:"fcpxml"`
	Version string       `xml:"version,attr"`
	Format  fcpxmlFormat `xml:"resources>format"`
	Event   fcpxmlEvent  `xml:"library>event"`
}

// FCPXML builds a Final Cut Pro X project whose gap carries one chapter
// marker per line. Times use rational frame notation ("n/fps s").
func FCPXML(lines []line.Line, fps int) (string, error) {
	if fps <= 0 {
		return "", fmt.Errorf("fps must be positive, got %d", fps)
	}

	rational := func(n int) string {
		return fmt.Sprintf("%d/%ds", n, fps)
	}

	markers := make([]fcpxmlMarker, len(lines))
	for i, l := range lines {
		start := markAt(l.StartTime)
		end := markAt(l.EndTime)
		markers[i] = fcpxmlMarker{
			Start:    rational(frames(start, fps)),
			Duration: rational(frames(end-start, fps)),
			Value:    l.Text,
			Note:     fmt.Sprintf("Line %d", i+1),
		}
	}

	doc := fcpxmlDocument{
		Version: "1.9",
		Format: fcpxmlFormat{
			ID:            "r1",
			Name:          fmt.Sprintf("FFVideoFormat1080p%d", fps),
			FrameDuration: fmt.Sprintf("1/%ds", fps),
		},
		Event: fcpxmlEvent{
			Name: "TapSync Event",
			Project: fcpxmlProject{
				Name: "Synced Project",
				Sequence: fcpxmlSequence{
					Format: "r1",
					Gap: fcpxmlGap{
						Name:     "Slug",
						Offset:   "0s",
						Duration: rational(lastEndFrames(lines, fps)),
						Start:    "0s",
						Markers:  markers,
					},
				},
			},
		},
	}

	return marshalXML(doc)
}

func marshalXML(doc any) (string, error) {
	out, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode XML: %w", err)
	}
	return xml.Header + string(out), nil
}

func markAt(m line.Mark) time.Duration {
	if !m.Set {
		return 0
	}
	return m.At
}

func frames(d time.Duration, fps int) int {
	return int(math.Round(d.Seconds() * float64(fps)))
}

// end of the last line in frames, rounded up
func lastEndFrames(lines []line.Line, fps int) int {
	if len(lines) == 0 {
		return 0
	}
	end := markAt(lines[len(lines)-1].EndTime)
	return int(math.Ceil(end.Seconds() * float64(fps)))
}
