package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var correctCmd = &cobra.Command{
	Use:   "correct [lines.json]",
	Short: "Run timing correction over tapped lines",
	Long: `Run the correction pipeline (minimum gap, smoothing, end allocation)
over a lines file and print the corrected lines.

The pipeline settings come from TAPSYNC_* variables or the global
--min-gap, --window and --allocator flags. --duration is only needed for
the scale allocator.

Examples:
  tapsync correct lines.json
  tapsync correct lines.json --min-gap 150ms --window 5 -o fixed.json
  tapsync correct lines.json --allocator scale --duration 3m12s`,
	Args: cobra.ExactArgs(1),
	RunE: runCorrect,
}

func init() {
	rootCmd.AddCommand(correctCmd)

	correctCmd.Flags().
		Duration("duration", 0, "Audio duration, used by the scale allocator")
}

func runCorrect(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	duration := durationFlag(cmd, "duration")

	lines, err := readLinesFile(args[0])
	if err != nil {
		return err
	}

	pipeline, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}

	logger.Infow("Correcting timings",
		"lines", len(lines),
		"min_gap", cfg.MinGap,
		"window", cfg.SmoothingWindow,
		"allocator", pipeline.Allocator,
	)

	corrected := pipeline.Run(lines, duration)

	out, err := encodeLines(corrected)
	if err != nil {
		return fmt.Errorf("failed to encode corrected lines: %w", err)
	}
	return writeOutput(outputPath, out)
}
