package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgpai22/tapsync/internal/line"
)

var splitCmd = &cobra.Command{
	Use:   "split [text_file]",
	Short: "Split a text file into untimed lines",
	Long: `Split a plain text file into lines ready for tapping.

Each non-empty line of the file becomes one line with a stable id
(line-1, line-2, ...). Blank lines and surrounding whitespace are dropped.

Examples:
  tapsync split lyrics.txt
  tapsync split script.txt -o lines.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read text file: %w", err)
	}

	lines := line.TextToLines(string(data))
	if len(lines) == 0 {
		return fmt.Errorf("text file contains no lines")
	}

	logger.Debugw("Split text", "input", args[0], "lines", len(lines))

	out, err := encodeLines(lines)
	if err != nil {
		return err
	}
	return writeOutput(outputPath, out)
}
