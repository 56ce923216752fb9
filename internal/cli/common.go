package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/tapsync/internal/config"
	"github.com/mgpai22/tapsync/internal/input"
	"github.com/mgpai22/tapsync/internal/line"
	"github.com/mgpai22/tapsync/internal/logging"
	"github.com/mgpai22/tapsync/internal/store"
	"github.com/mgpai22/tapsync/internal/subtitle"
	"github.com/mgpai22/tapsync/internal/timing"
)

// newPipeline builds the correction pipeline from configuration.
func newPipeline(c *config.Config, l *logging.Logger) (*timing.Pipeline, error) {
	mode, err := timing.ParseAllocatorMode(c.Allocator)
	if err != nil {
		return nil, err
	}
	p := timing.NewPipeline(timing.Options{
		MinGap:          c.MinGap,
		SmoothingWindow: c.SmoothingWindow,
	}, l)
	p.Allocator = mode
	p.ScaleThreshold = c.ScaleThreshold
	return p, nil
}

func configKeymap(c *config.Config) input.Keymap {
	return input.Keymap{Start: c.KeyStart, End: c.KeyEnd, Next: c.KeyNext}
}

func exportOptions(c *config.Config) subtitle.Options {
	opts := subtitle.DefaultOptions()
	if c != nil && c.FPS > 0 {
		opts.FPS = c.FPS
	}
	return opts
}

func openStore(c *config.Config, l *logging.Logger) (*store.Store, error) {
	return store.Open(filepath.Join(c.DataDir, "projects"), l)
}

func readLinesFile(path string) ([]line.Line, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lines file: %w", err)
	}
	var lines []line.Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to parse lines file %s: %w", path, err)
	}
	return lines, nil
}

func encodeLines(lines []line.Line) ([]byte, error) {
	if lines == nil {
		lines = []line.Line{}
	}
	data, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode lines: %w", err)
	}
	return append(data, '\n'), nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// loadLines reads lines from a JSON file, or from a saved project when the
// argument is not an existing file.
func loadLines(source string, c *config.Config, l *logging.Logger) ([]line.Line, *store.Project, error) {
	if _, err := os.Stat(source); err == nil {
		lines, err := readLinesFile(source)
		return lines, nil, err
	}
	if strings.ContainsAny(source, `/\`) || filepath.Ext(source) != "" {
		return nil, nil, fmt.Errorf("lines file not found: %s", source)
	}

	s, err := openStore(c, l)
	if err != nil {
		return nil, nil, err
	}
	defer s.Close()

	p, err := s.Resolve(source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load project %s: %w", source, err)
	}
	return p.Lines, p, nil
}

// input path with its extension replaced
func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
