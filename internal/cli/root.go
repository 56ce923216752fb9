package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/tapsync/internal/config"
	"github.com/mgpai22/tapsync/internal/logging"
)

var (
	verbose bool
	logger  *logging.Logger
	cfg     *config.Config

	overrides  config.Overrides
	minGapFlag time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "tapsync",
	Short: "Align subtitle or lyric lines to audio by tapping",
	Long: `TapSync turns plain text into timed subtitles or lyrics.

Paste or load the text, play the audio, and tap a key when each line
starts and ends. Taps are cleaned up (minimum gap, smoothing) as you go
and the result exports to SRT, VTT, ASS, LRC, CapCut CSV and editor XML.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		overrides.MinGap = minGapOverride(cmd)
		loaded, err := config.Load(overrides)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.NewLoggerWithLevel(cfg.LogLevel, verbose)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringVar(&overrides.EnvFile, "env-file", "", "Path to a .env file (default .env)")
	rootCmd.PersistentFlags().
		StringVar(&overrides.DataDir, "data-dir", "", "Directory for saved projects (or set TAPSYNC_DATA_DIR)")
	rootCmd.PersistentFlags().
		DurationVar(&minGapFlag, "min-gap", 0, "Minimum gap between line starts (default 100ms)")
	rootCmd.PersistentFlags().
		IntVar(&overrides.SmoothingWindow, "window", 0, "Smoothing window in intervals (default 3)")
	rootCmd.PersistentFlags().
		StringVar(&overrides.Allocator, "allocator", "", "End time allocator (passthrough, scale)")
	rootCmd.PersistentFlags().
		StringVar(&overrides.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// --min-gap 0 is a real value, so only a flag that was set overrides
func minGapOverride(cmd *cobra.Command) *time.Duration {
	if !cmd.Flags().Changed("min-gap") {
		return nil
	}
	d := minGapFlag
	return &d
}

// zero-duration flags mean "not given"
func durationFlag(cmd *cobra.Command, name string) time.Duration {
	d, _ := cmd.Flags().GetDuration(name)
	return d
}
