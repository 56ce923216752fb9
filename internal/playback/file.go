package playback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/mgpai22/tapsync/internal/audio"
	ffmpegbin "github.com/mgpai22/tapsync/internal/ffmpeg"
	"github.com/mgpai22/tapsync/internal/logging"
)

// Player makes a media file audible from an offset. The timing itself
// always comes from the controller's clock.
type Player interface {
	Start(ctx context.Context, path string, offset time.Duration) (Stream, error)
}

// Stream is one running playback.
type Stream interface {
	Stop() error
}

// fileController keeps time with a Timer sized to the probed media duration
// and restarts the player at the clock position on every play or seek.
type fileController struct {
	*Timer

	path   string
	player Player
	logger *logging.Logger
	unsub  func()

	mu      sync.Mutex
	playCtx context.Context
	stream  Stream
}

func newFileController(ctx context.Context, path string, o options) (*fileController, error) {
	if path == "" {
		return nil, fmt.Errorf("file playback needs a media path")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open media file: %w", err)
	}

	prober := o.prober
	if prober == nil {
		prober = audio.GetDuration
	}
	duration, err := prober(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to probe media duration: %w", err)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("media file %s has no duration", path)
	}

	player := o.player
	if player == nil {
		ffplay, err := ffmpegbin.FFplayPath()
		if err != nil {
			o.logger.Warnw("Audio output unavailable, timing silently", "error", err)
		} else {
			player = &ffplayPlayer{binary: ffplay}
		}
	}

	f := &fileController{
		Timer:  NewTimer(duration, o.clock),
		path:   path,
		player: player,
		logger: o.logger,
	}
	// natural end or any pause silences the player
	f.unsub = f.Timer.Subscribe(func(s State) {
		if !s.Playing {
			_ = f.stopStream()
		}
	})

	o.logger.Debugw("Media loaded", "path", path, "duration", duration)
	return f, nil
}

func (f *fileController) Play(ctx context.Context) error {
	if f.Timer.State().Playing {
		return nil
	}
	if err := f.Timer.Play(ctx); err != nil {
		return err
	}

	f.mu.Lock()
	f.playCtx = ctx
	f.mu.Unlock()

	return f.restartStream()
}

func (f *fileController) Pause() {
	f.Timer.Pause()
	_ = f.stopStream()
}

func (f *fileController) Seek(d time.Duration) {
	f.Timer.Seek(d)
	if f.Timer.State().Playing {
		if err := f.restartStream(); err != nil {
			f.logger.Warnw("Failed to restart audio after seek", "error", err)
		}
	}
}

func (f *fileController) Close() error {
	f.unsub()
	f.Timer.Pause()
	return f.stopStream()
}

func (f *fileController) restartStream() error {
	if err := f.stopStream(); err != nil {
		f.logger.Debugw("Stopping previous audio stream failed", "error", err)
	}
	if f.player == nil {
		return nil
	}

	f.mu.Lock()
	ctx := f.playCtx
	f.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	stream, err := f.player.Start(ctx, f.path, f.Timer.CurrentTime())
	if err != nil {
		return fmt.Errorf("failed to start audio: %w", err)
	}

	f.mu.Lock()
	f.stream = stream
	f.mu.Unlock()
	return nil
}

func (f *fileController) stopStream() error {
	f.mu.Lock()
	stream := f.stream
	f.stream = nil
	f.mu.Unlock()

	if stream == nil {
		return nil
	}
	return stream.Stop()
}

// ffplayPlayer runs a headless ffplay process per stream.
type ffplayPlayer struct {
	binary string
}

func (p *ffplayPlayer) Start(
	ctx context.Context,
	path string,
	offset time.Duration,
) (Stream, error) {
	cmd := exec.CommandContext(ctx, p.binary,
		"-nodisp",
		"-autoexit",
		"-loglevel", "error",
		"-ss", strconv.FormatFloat(offset.Seconds(), 'f', 3, 64),
		path,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffplay failed to start: %w", err)
	}

	s := &ffplayStream{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(s.done)
	}()
	return s, nil
}

type ffplayStream struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (s *ffplayStream) Stop() error {
	select {
	case <-s.done:
		return nil
	default:
	}

	if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to stop ffplay: %w", err)
	}
	<-s.done
	return nil
}
