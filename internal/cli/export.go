package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/tapsync/internal/line"
	"github.com/mgpai22/tapsync/internal/subtitle"
	"github.com/mgpai22/tapsync/internal/timing"
)

var exportCmd = &cobra.Command{
	Use:   "export [lines.json|project_id]",
	Short: "Export timed lines as subtitles, lyrics or editor markers",
	Long: `Export timed lines to a subtitle, lyric or editor format.

The source is either a lines file or the id (or id prefix) of a saved
project. Without -o the result is printed; with -o the format defaults to
the output file's extension.

Formats: srt, vtt, ass, lrc, csv (CapCut), fcp7 (Premiere XML markers),
fcpxml (Final Cut Pro chapter markers).

Examples:
  tapsync export lines.json -f srt
  tapsync export 3f2a -o song.lrc
  tapsync export lines.json -f srt --auto-end
  tapsync export lines.json -o out.srt --finalize --duration 3m12s`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().
		StringP("format", "f", "", "Output format (srt, vtt, ass, lrc, csv, fcp7, fcpxml)")
	exportCmd.Flags().
		Bool("auto-end", false, "Give lines without an end time one based on reading speed")
	exportCmd.Flags().
		Bool("finalize", false, "Snap the last line's end to the audio duration")
	exportCmd.Flags().
		Duration("duration", 0, "Audio duration for --finalize")
	exportCmd.Flags().
		Int("fps", 0, "Frame rate for fcp7/fcpxml (default 30)")
}

func runExport(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	formatStr, _ := cmd.Flags().GetString("format")
	autoEnd, _ := cmd.Flags().GetBool("auto-end")
	finalize, _ := cmd.Flags().GetBool("finalize")
	duration := durationFlag(cmd, "duration")
	fps, _ := cmd.Flags().GetInt("fps")

	format, err := resolveExportFormat(formatStr, outputPath)
	if err != nil {
		return err
	}
	outputPath = exportTarget(outputPath, format)

	if finalize && duration <= 0 {
		return fmt.Errorf("--finalize needs --duration")
	}

	lines, project, err := loadLines(args[0], cfg, logger)
	if err != nil {
		return err
	}

	opts := exportOptions(cfg)
	if fps > 0 {
		opts.FPS = fps
	}
	if project != nil {
		opts.Title = project.Name
	}

	lines = prepareExport(lines, autoEnd, finalize, duration)

	logger.Infow("Exporting lines",
		"source", args[0],
		"format", format,
		"lines", len(lines),
		"fully_timed", len(line.FullyTimed(lines)),
	)

	if outputPath == "" {
		text, err := subtitle.Render(format, lines, opts)
		if err != nil {
			return err
		}
		return writeOutput("", []byte(text))
	}

	if err := subtitle.Write(outputPath, format, lines, opts); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Exported %s: %s\n", format, absOutput)
	return nil
}

// format flag wins, then the output extension, then SRT
func resolveExportFormat(flag, outputPath string) (subtitle.Format, error) {
	if flag != "" {
		return subtitle.ParseFormat(flag)
	}
	if outputPath != "" && strings.TrimSpace(filepath.Ext(outputPath)) != "" {
		return subtitle.GetFormatFromExtension(outputPath), nil
	}
	return subtitle.FormatSRT, nil
}

// exportTarget gives an extensionless output path the format's extension.
func exportTarget(outputPath string, format subtitle.Format) string {
	if outputPath == "" || filepath.Ext(outputPath) != "" {
		return outputPath
	}
	return outputPath + subtitle.GetExtensionForFormat(format)
}

func prepareExport(
	lines []line.Line,
	autoEnd bool,
	finalize bool,
	duration time.Duration,
) []line.Line {
	if autoEnd {
		lines = timing.FillEndTimes(lines, timing.DefaultReadingSpeed())
	}
	if finalize {
		lines = timing.FinalizeLastLine(lines, duration)
	}
	return lines
}
