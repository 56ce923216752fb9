package subtitle

import (
	"fmt"
	"path/filepath"
	"strings"
)

// represents supported export formats
type Format string

const (
	FormatSRT    Format = "srt"
	FormatVTT    Format = "vtt"
	FormatASS    Format = "ass"
	FormatLRC    Format = "lrc"
	FormatCSV    Format = "csv"    // CapCut caption import
	FormatFCP7   Format = "fcp7"   // Premiere-compatible FCP7 XML markers
	FormatFCPXML Format = "fcpxml" // Final Cut Pro X chapter markers
)

var formats = []Format{
	FormatSRT,
	FormatVTT,
	FormatASS,
	FormatLRC,
	FormatCSV,
	FormatFCP7,
	FormatFCPXML,
}

// Formats lists every export format.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// settings for formats that need more than the lines
type Options struct {
	FPS      int // frame rate for the XML formats
	Title    string
	FontName string
	FontSize int
}

func DefaultOptions() Options {
	return Options{
		FPS:      30,
		Title:    "TapSync Subtitles",
		FontName: "Arial",
		FontSize: 20,
	}
}

// subtitle format based on file extension
func GetFormatFromExtension(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt":
		return FormatSRT
	case ".vtt":
		return FormatVTT
	case ".ass", ".ssa":
		return FormatASS
	case ".lrc":
		return FormatLRC
	case ".csv":
		return FormatCSV
	case ".fcpxml":
		return FormatFCPXML
	case ".xml":
		return FormatFCP7
	default:
		return FormatSRT
	}
}

// file extension for a format
func GetExtensionForFormat(format Format) string {
	switch format {
	case FormatSRT:
		return ".srt"
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	case FormatLRC:
		return ".lrc"
	case FormatCSV:
		return ".csv"
	case FormatFCP7:
		return ".xml"
	case FormatFCPXML:
		return ".fcpxml"
	default:
		return ".srt"
	}
}
