package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/tapsync/internal/audio"
)

var clipCmd = &cobra.Command{
	Use:   "clip [media_file] [lines.json|project_id]",
	Short: "Cut one audio clip per timed line",
	Long: `Cut the audio of every fully timed line out of a media file, one file
per line, to check an alignment by ear or to build a dataset.

Supports multiple output formats: wav, mp3, aac, flac. An empty format
copies the source codec.

Examples:
  tapsync clip song.mp3 lines.json --dir clips
  tapsync clip video.mp4 3f2a --dir clips -f mp3 -b 192k
  tapsync clip song.flac lines.json --padding 150ms --concurrency 8`,
	Args: cobra.ExactArgs(2),
	RunE: runClip,
}

func init() {
	rootCmd.AddCommand(clipCmd)

	clipCmd.Flags().
		String("dir", "clips", "Directory for the clips")
	clipCmd.Flags().
		StringP("format", "f", "wav", "Output audio format (wav, mp3, aac, flac)")
	clipCmd.Flags().
		IntP("sample-rate", "r", 44100, "Sample rate in Hz (e.g., 16000, 44100, 48000)")
	clipCmd.Flags().
		IntP("channels", "c", 2, "Number of audio channels (1=mono, 2=stereo)")
	clipCmd.Flags().
		StringP("bitrate", "b", "", "Bitrate for lossy formats (e.g., 128k, 320k)")
	clipCmd.Flags().
		Duration("padding", 0, "Extra audio kept before and after each line")
	clipCmd.Flags().
		Int("concurrency", 4, "Number of parallel ffmpeg processes")
}

func runClip(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := context.Background()

	dir, _ := cmd.Flags().GetString("dir")
	format, _ := cmd.Flags().GetString("format")
	sampleRate, _ := cmd.Flags().GetInt("sample-rate")
	channels, _ := cmd.Flags().GetInt("channels")
	bitrate, _ := cmd.Flags().GetString("bitrate")
	padding := durationFlag(cmd, "padding")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", mediaPath)
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	validFormats := map[string]bool{
		"":     true,
		"wav":  true,
		"mp3":  true,
		"aac":  true,
		"flac": true,
	}
	if !validFormats[format] {
		return fmt.Errorf(
			"invalid format %q: supported formats are wav, mp3, aac, flac",
			format,
		)
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}

	lines, _, err := loadLines(args[1], cfg, logger)
	if err != nil {
		return err
	}

	logger.Infow("Cutting clips",
		"media", mediaPath,
		"dir", dir,
		"format", format,
		"concurrency", concurrency,
	)

	clips, err := audio.ClipLines(ctx, mediaPath, lines, dir, audio.ClipOptions{
		Format:      format,
		SampleRate:  sampleRate,
		Channels:    channels,
		Bitrate:     bitrate,
		Padding:     padding,
		Concurrency: concurrency,
	})
	if err != nil {
		return fmt.Errorf("clip extraction failed: %w", err)
	}
	if len(clips) == 0 {
		return fmt.Errorf("no fully timed lines to clip")
	}

	absDir, _ := filepath.Abs(dir)
	fmt.Printf("Clips written: %s\n", absDir)
	fmt.Printf("  Clips: %d\n", len(clips))
	return nil
}
