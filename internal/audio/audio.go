package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/tapsync/internal/ffmpeg"
	"github.com/mgpai22/tapsync/internal/line"
)

// ClipInfo describes one extracted per-line audio clip.
type ClipInfo struct {
	Path      string
	LineID    string
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
}

// settings for clip extraction
type ClipOptions struct {
	Format      string        // Output format (wav, mp3, aac, flac), empty copies the source codec
	SampleRate  int           // Sample rate in Hz, 0 keeps the source rate
	Channels    int           // Number of channels (1=mono, 2=stereo), 0 keeps the source layout
	Bitrate     string        // Bitrate for lossy formats (e.g., "128k")
	Padding     time.Duration // extra audio kept on both sides of each line
	Concurrency int           // parallel ffmpeg processes, defaults to 4
}

func DefaultClipOptions() ClipOptions {
	return ClipOptions{
		Format:      "wav",
		SampleRate:  44100,
		Channels:    2,
		Concurrency: 4,
	}
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// GetDuration probes the duration of an audio/video file with ffprobe.
func GetDuration(ctx context.Context, filePath string) (time.Duration, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return 0, fmt.Errorf("file not found: %s", filePath)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbeDuration(out.Bytes())
}

func parseProbeDuration(data []byte) (time.Duration, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// output kwargs for a clip; "copy" keeps the source stream untouched
func codecArgs(opts ClipOptions) ffmpeg.KwArgs {
	kwargs := ffmpeg.KwArgs{
		"vn": "", // No video
		"y":  "", // Overwrite output
	}

	if opts.Format == "" {
		kwargs["c:a"] = "copy"
		return kwargs
	}

	if opts.SampleRate > 0 {
		kwargs["ar"] = opts.SampleRate
	}
	if opts.Channels > 0 {
		kwargs["ac"] = opts.Channels
	}

	switch opts.Format {
	case "mp3":
		kwargs["acodec"] = "libmp3lame"
		if opts.Bitrate != "" {
			kwargs["b:a"] = opts.Bitrate
		}
	case "aac":
		kwargs["acodec"] = "aac"
		if opts.Bitrate != "" {
			kwargs["b:a"] = opts.Bitrate
		}
	case "flac":
		kwargs["acodec"] = "flac"
	default:
		kwargs["acodec"] = "pcm_s16le"
	}

	return kwargs
}

func clipExtension(opts ClipOptions, mediaPath string) string {
	switch opts.Format {
	case "":
		return filepath.Ext(mediaPath)
	case "aac":
		return ".m4a"
	case "mp3", "flac", "wav":
		return "." + opts.Format
	default:
		return ".wav"
	}
}

// clipJob represents a single clip to be cut
type clipJob struct {
	index    int
	lineID   string
	start    time.Duration
	end      time.Duration
	clipPath string
}

// one job per fully timed line, padded and clamped at zero
func planClips(
	mediaPath string,
	lines []line.Line,
	outputDir string,
	opts ClipOptions,
) []clipJob {
	baseName := strings.TrimSuffix(
		filepath.Base(mediaPath),
		filepath.Ext(mediaPath),
	)
	ext := clipExtension(opts, mediaPath)

	var jobs []clipJob
	for i, l := range line.FullyTimed(lines) {
		start := l.StartTime.At - opts.Padding
		if start < 0 {
			start = 0
		}
		end := l.EndTime.At + opts.Padding
		if end <= start {
			continue
		}

		jobs = append(jobs, clipJob{
			index:  i,
			lineID: l.ID,
			start:  start,
			end:    end,
			clipPath: filepath.Join(
				outputDir,
				fmt.Sprintf("%s_%03d_%s%s", baseName, i+1, l.ID, ext),
			),
		})
	}
	return jobs
}

// ClipLines cuts one clip per fully timed line out of mediaPath, running up
// to opts.Concurrency ffmpeg processes at once. The first failure stops
// scheduling and is returned.
func ClipLines(
	ctx context.Context,
	mediaPath string,
	lines []line.Line,
	outputDir string,
	opts ClipOptions,
) ([]ClipInfo, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("media file not found: %s", mediaPath)
	}

	jobs := planClips(mediaPath, lines, outputDir, opts)
	if len(jobs) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	kwargs := codecArgs(opts)

	return runClipJobs(ctx, jobs, concurrency, func(j clipJob) error {
		args := ffmpeg.KwArgs{
			"ss": j.start.Seconds(),
			"t":  (j.end - j.start).Seconds(),
		}
		for k, v := range kwargs {
			args[k] = v
		}

		return ffmpeg.Input(mediaPath).
			Output(j.clipPath, args).
			OverWriteOutput().
			SetFfmpegPath(ffmpegPath).
			Run()
	})
}

// runClipJobs runs cut for every job with at most concurrency in flight.
// On failure or cancellation the clips already written are removed.
func runClipJobs(
	ctx context.Context,
	jobs []clipJob,
	concurrency int,
	cut func(j clipJob) error,
) ([]ClipInfo, error) {
	var (
		mu       sync.Mutex
		clips    []ClipInfo
		firstErr error
		wg       sync.WaitGroup
	)

	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	sem := make(chan struct{}, concurrency)

	for _, job := range jobs {
		if ctx.Err() != nil || failed() {
			break
		}

		wg.Add(1)
		go func(j clipJob) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil || failed() {
				return
			}

			err := cut(j)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf(
						"failed to clip %s: %w",
						j.lineID,
						err,
					)
				}
				// ffmpeg may leave a partial file behind
				_ = os.Remove(j.clipPath)
				return
			}

			clips = append(clips, ClipInfo{
				Path:      j.clipPath,
				LineID:    j.lineID,
				Index:     j.index,
				StartTime: j.start,
				EndTime:   j.end,
			})
		}(job)
	}

	wg.Wait()

	err := ctx.Err()
	if err == nil {
		err = firstErr
	}
	if err != nil {
		if cleanupErr := CleanupClips(clips); cleanupErr != nil {
			return nil, fmt.Errorf("%w (cleanup failed: %v)", err, cleanupErr)
		}
		return nil, err
	}

	sort.Slice(clips, func(i, j int) bool {
		return clips[i].Index < clips[j].Index
	})

	return clips, nil
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	videoExts := map[string]bool{
		".mp4":  true,
		".mkv":  true,
		".avi":  true,
		".mov":  true,
		".wmv":  true,
		".flv":  true,
		".webm": true,
		".m4v":  true,
		".mpeg": true,
		".mpg":  true,
		".3gp":  true,
	}
	return videoExts[ext]
}

// checks if the file is an audio file based on extension
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	audioExts := map[string]bool{
		".mp3":  true,
		".wav":  true,
		".aac":  true,
		".flac": true,
		".ogg":  true,
		".m4a":  true,
		".wma":  true,
		".aiff": true,
	}
	return audioExts[ext]
}

// checks if the file is either audio or video
func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}

// CleanupClips removes clip files, ignoring ones already gone.
func CleanupClips(clips []ClipInfo) error {
	var lastErr error
	for _, clip := range clips {
		if err := os.Remove(clip.Path); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}
