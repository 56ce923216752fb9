package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/tapsync/internal/subtitle"
)

var importCmd = &cobra.Command{
	Use:   "import [subtitle_file]",
	Short: "Convert an existing subtitle file into lines",
	Long: `Read an SRT, VTT or ASS/SSA file back into timed lines so an earlier
alignment can be corrected, re-exported or resumed with tap --project.

Examples:
  tapsync import song.srt -o lines.json
  tapsync import episode.ass --save --name "Episode 1"`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Bool("save", false, "Save the imported lines as a new project")
	importCmd.Flags().String("name", "", "Project name for --save (default file name)")
}

func runImport(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")
	name, _ := cmd.Flags().GetString("name")

	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}

	lines, err := subtitle.Open(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if len(lines) == 0 {
		return fmt.Errorf("subtitle file contains no entries")
	}

	logger.Infow("Imported subtitle file",
		"input", subtitlePath,
		"lines", len(lines),
	)

	if save {
		if name == "" {
			name = replaceExt(filepath.Base(subtitlePath), "")
		}
		id, err := saveNewProject(name, lines)
		if err != nil {
			return err
		}
		fmt.Printf("Saved project %s (%s)\n", id, name)
		if outputPath == "" {
			return nil
		}
	}

	out, err := encodeLines(lines)
	if err != nil {
		return err
	}
	return writeOutput(outputPath, out)
}
