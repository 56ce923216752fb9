package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mgpai22/tapsync/internal/line"
	"github.com/mgpai22/tapsync/internal/store"
	"github.com/mgpai22/tapsync/internal/timecode"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects"},
	Short:   "Manage saved tapping projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved projects, newest first",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show [project_id]",
	Short: "Show a project's lines and timings",
	Long: `Show a saved project. The id may be shortened to any unique prefix.

Examples:
  tapsync project show 3f2a
  tapsync project show 3f2a --json -o lines.json`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectShow,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete [project_id]",
	Short: "Delete a saved project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd, projectShowCmd, projectDeleteCmd)

	projectShowCmd.Flags().Bool("json", false, "Print the project's lines as JSON")
}

func runProjectList(cmd *cobra.Command, args []string) error {
	s, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	projects, err := s.List()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("No saved projects")
		return nil
	}

	idColor := color.New(color.FgCyan)
	for _, p := range projects {
		fmt.Printf("%s  %-30s %3d/%-3d timed  %s\n",
			idColor.Sprint(shortID(p.ID)),
			truncate(p.Name, 30),
			p.Timed(),
			len(p.Lines),
			p.UpdatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	return nil
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	outputPath, _ := cmd.Flags().GetString("output")

	s, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.Resolve(args[0])
	if err != nil {
		return err
	}

	if asJSON || outputPath != "" {
		out, err := encodeLines(p.Lines)
		if err != nil {
			return err
		}
		return writeOutput(outputPath, out)
	}

	fmt.Printf("%s  %s\n", p.ID, p.Name)
	if p.MediaPath != "" {
		fmt.Printf("  Media: %s\n", p.MediaPath)
	}
	fmt.Printf("  Keys: start=%s end=%s next=%s\n", p.Keymap.Start, p.Keymap.End, p.Keymap.Next)
	fmt.Printf("  Timed: %d/%d\n\n", p.Timed(), len(p.Lines))
	fmt.Print(formatLineTable(p.Lines))
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	s, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.Resolve(args[0])
	if err != nil {
		return err
	}
	if err := s.Delete(p.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted project %s (%s)\n", p.ID, p.Name)
	return nil
}

// saveNewProject stores lines as a fresh project and returns its id.
func saveNewProject(name string, lines []line.Line) (string, error) {
	s, err := openStore(cfg, logger)
	if err != nil {
		return "", err
	}
	defer s.Close()

	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.RawText
	}

	p := &store.Project{
		Name:       name,
		SourceText: strings.Join(texts, "\n"),
		Lines:      lines,
		Keymap:     configKeymap(cfg),
	}
	if err := s.Save(p); err != nil {
		return "", err
	}
	return p.ID, nil
}

// one row per line: number, start, end, text
func formatLineTable(lines []line.Line) string {
	var sb strings.Builder
	for i, l := range lines {
		fmt.Fprintf(&sb, "%4d  %-9s  %-9s  %s\n",
			i+1,
			formatMark(l.StartTime),
			formatMark(l.EndTime),
			strings.ReplaceAll(l.Text, "\n", " / "),
		)
	}
	return sb.String()
}

func formatMark(m line.Mark) string {
	if !m.Set {
		return "--:--.---"
	}
	return timecode.Format(m.At)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
