package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mgpai22/tapsync/internal/line"
	"github.com/mgpai22/tapsync/internal/playback"
	"github.com/mgpai22/tapsync/internal/session"
	"github.com/mgpai22/tapsync/internal/store"
	"github.com/mgpai22/tapsync/internal/subtitle"
)

var tapCmd = &cobra.Command{
	Use:   "tap [text_file]",
	Short: "Tap along to audio to time each line",
	Long: `Start an interactive tapping session.

Play the media and press the start key when a line begins and the end key
when it ends; the session then moves to the next line. Every tap is run
through the correction pipeline. Without --media, --timer runs a silent
clock of the given length.

The session is saved as a project on :save and on exit, and can be resumed
later with --project.

Examples:
  tapsync tap lyrics.txt --media song.mp3
  tapsync tap script.txt --timer 2m30s
  tapsync tap --project 3f2a`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTap,
}

func init() {
	rootCmd.AddCommand(tapCmd)

	tapCmd.Flags().StringP("media", "m", "", "Audio or video file to play")
	tapCmd.Flags().Duration("timer", 0, "Use a silent clock of this length instead of media")
	tapCmd.Flags().String("mode", "", "Playback mode: file or timer (default from --media/--timer)")
	tapCmd.Flags().StringP("project", "p", "", "Resume a saved project (id or prefix)")
	tapCmd.Flags().String("name", "", "Name for a new project (default text file name)")
	tapCmd.Flags().Bool("no-color", false, "Disable colored output")
}

func runTap(cmd *cobra.Command, args []string) error {
	mediaPath, _ := cmd.Flags().GetString("media")
	timerDuration := durationFlag(cmd, "timer")
	modeFlag, _ := cmd.Flags().GetString("mode")
	projectID, _ := cmd.Flags().GetString("project")
	name, _ := cmd.Flags().GetString("name")
	noColor, _ := cmd.Flags().GetBool("no-color")

	if noColor {
		color.NoColor = true
	}
	if len(args) == 0 && projectID == "" {
		return fmt.Errorf("a text file or --project is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	project, err := tapProject(s, args, projectID, name)
	if err != nil {
		return err
	}
	if mediaPath == "" && timerDuration <= 0 {
		mediaPath = project.MediaPath
	}

	mode, err := playbackMode(modeFlag, mediaPath, timerDuration)
	if err != nil {
		return err
	}
	if mode.Kind == playback.KindFile {
		project.MediaPath = mediaPath
	}

	ctrl, err := playback.New(ctx, mode, playback.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	defer ctrl.Close()

	pipeline, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}

	sess := session.New(pipeline, ctrl, logger)
	sess.SetLines(project.Lines)

	screen, err := newTapScreen(sess, ctrl, project.Keymap, cfg.SeekStep, os.Stdout, logger)
	if err != nil {
		return err
	}
	screen.save = func(lines []line.Line) error {
		project.Lines = lines
		return s.Save(project)
	}
	screen.export = func(path string, lines []line.Line) error {
		opts := exportOptions(cfg)
		opts.Title = project.Name
		format, err := resolveExportFormat("", path)
		if err != nil {
			return err
		}
		return subtitle.Write(exportTarget(path, format), format, lines, opts)
	}

	logger.Infow("Tap session started",
		"project", project.ID,
		"lines", len(project.Lines),
		"mode", mode.Kind,
	)

	runErr := screen.Run(ctx, os.Stdin)

	project.Lines = sess.Lines()
	if err := s.Save(project); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	fmt.Printf("Project saved: %s\n", project.ID)

	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}

// tapProject resumes a saved project or starts one from a text file.
func tapProject(s *store.Store, args []string, projectID, name string) (*store.Project, error) {
	if projectID != "" {
		p, err := s.Resolve(projectID)
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return nil, fmt.Errorf("failed to read text file: %w", err)
			}
			p.SourceText = string(data)
			p.Lines = line.TextToLines(p.SourceText)
		}
		if _, err := p.Keymap.Validate(); err != nil {
			p.Keymap = configKeymap(cfg)
		}
		return p, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	lines := line.TextToLines(string(data))
	if len(lines) == 0 {
		return nil, fmt.Errorf("text file contains no lines")
	}

	km, err := configKeymap(cfg).Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid shortcuts: %w", err)
	}

	if name == "" {
		name = replaceExt(filepath.Base(args[0]), "")
	}
	return &store.Project{
		Name:       name,
		SourceText: string(data),
		Lines:      lines,
		Keymap:     km,
	}, nil
}

// playbackMode picks the controller from --mode, or from whichever of
// --media and --timer was given.
func playbackMode(modeFlag, mediaPath string, timerDuration time.Duration) (playback.Mode, error) {
	if mediaPath != "" && timerDuration > 0 {
		return playback.Mode{}, fmt.Errorf("use either --media or --timer, not both")
	}

	kind := playback.KindTimer
	switch {
	case modeFlag != "":
		k, err := playback.ParseKind(modeFlag)
		if err != nil {
			return playback.Mode{}, err
		}
		kind = k
	case mediaPath != "":
		kind = playback.KindFile
	case timerDuration <= 0:
		return playback.Mode{}, fmt.Errorf("--media or --timer is required")
	}

	if kind == playback.KindFile {
		if mediaPath == "" {
			return playback.Mode{}, fmt.Errorf("file mode needs --media")
		}
		return playback.Mode{Kind: playback.KindFile, Path: mediaPath}, nil
	}
	if timerDuration <= 0 {
		return playback.Mode{}, fmt.Errorf("timer mode needs --timer")
	}
	return playback.Mode{Kind: playback.KindTimer, Duration: timerDuration}, nil
}
