package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mgpai22/tapsync/internal/input"
	"github.com/mgpai22/tapsync/internal/line"
	"github.com/mgpai22/tapsync/internal/logging"
	"github.com/mgpai22/tapsync/internal/playback"
	"github.com/mgpai22/tapsync/internal/timing"
)

var (
	ErrNoCurrentLine = errors.New("no current line")
	ErrUnknownLine   = line.ErrUnknownLine
	ErrNoPlayback    = errors.New("no playback controller")
	ErrCannotTap     = errors.New("taps need loaded media that is playing")
)

// TapMode says which mark the next tap records.
type TapMode string

const (
	TapStart TapMode = "start"
	TapEnd   TapMode = "end"
)

// Session is the tapping state machine: the line list, the line being
// tapped and whether the next tap is a start or an end. Every edit replaces
// the line list with the pipeline's output.
type Session struct {
	pipeline *timing.Pipeline
	ctrl     playback.Controller
	logger   *logging.Logger

	mu    sync.Mutex
	lines []line.Line
	index int
	mode  TapMode
}

func New(
	pipeline *timing.Pipeline,
	ctrl playback.Controller,
	logger *logging.Logger,
) *Session {
	if logger == nil {
		logger = logging.Nop()
	}
	if pipeline == nil {
		pipeline = timing.NewPipeline(timing.DefaultOptions(), logger)
	}
	return &Session{
		pipeline: pipeline,
		ctrl:     ctrl,
		logger:   logger,
		mode:     TapStart,
	}
}

// Load replaces all lines with the split text and starts over at the first
// line.
func (s *Session) Load(text string) {
	s.SetLines(line.TextToLines(text))
}

// SetLines replaces all lines, e.g. when resuming a saved project or an
// imported subtitle file.
func (s *Session) SetLines(lines []line.Line) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = line.Clone(lines)
	s.index = 0
	s.mode = TapStart
	s.logger.Debugw("Lines loaded", "count", len(lines))
}

func (s *Session) Lines() []line.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return line.Clone(s.lines)
}

// Current returns the line the next tap applies to.
func (s *Session) Current() (line.Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Session) Mode() TapMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// CanTap reports whether a tap would land: a current line exists and media
// with a duration is playing.
func (s *Session) CanTap() bool {
	if s.ctrl == nil {
		return false
	}
	state := s.ctrl.State()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.currentLocked()
	return ok && state.Duration > 0 && state.Playing
}

// StartTap stamps the current line's start with the playback time and
// clears its end. The next tap is an end tap.
func (s *Session) StartTap() error {
	if s.ctrl == nil {
		return ErrNoPlayback
	}
	state := s.ctrl.State()

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.currentLocked()
	if !ok {
		return ErrNoCurrentLine
	}

	updated, err := line.SetStart(s.lines, cur.ID, state.CurrentTime)
	if err != nil {
		return fmt.Errorf("failed to tap start: %w", err)
	}
	s.applyLocked(updated, state.Duration)
	s.mode = TapEnd

	s.logger.Debugw("Start tap", "line", cur.ID, "at", state.CurrentTime)
	return nil
}

// EndTap stamps the current line's end and moves on to the next line by
// order. The next tap is a start tap.
func (s *Session) EndTap() error {
	if s.ctrl == nil {
		return ErrNoPlayback
	}
	state := s.ctrl.State()

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.currentLocked()
	if !ok {
		return ErrNoCurrentLine
	}

	updated, err := line.SetEnd(s.lines, cur.ID, state.CurrentTime)
	if err != nil {
		return fmt.Errorf("failed to tap end: %w", err)
	}
	s.applyLocked(updated, state.Duration)
	s.advanceLocked(cur)
	s.mode = TapStart

	s.logger.Debugw("End tap", "line", cur.ID, "at", state.CurrentTime)
	return nil
}

// UpdateTime is a manual edit of one mark.
func (s *Session) UpdateTime(id string, field line.Field, at time.Duration) error {
	duration := s.duration()

	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := line.SetTime(s.lines, id, field, at)
	if err != nil {
		return fmt.Errorf("failed to edit %s time: %w", field, err)
	}
	s.applyLocked(updated, duration)
	return nil
}

// SetMissingTime gives an untimed line a start at the playback position,
// or at fallback when there is no playback. The next tap is an end tap.
func (s *Session) SetMissingTime(id string, fallback time.Duration) error {
	at := fallback
	var duration time.Duration
	if s.ctrl != nil {
		state := s.ctrl.State()
		at = state.CurrentTime
		duration = state.Duration
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := line.FillMissing(s.lines, id, at)
	if err != nil {
		return fmt.Errorf("failed to fill missing time: %w", err)
	}
	s.applyLocked(updated, duration)
	s.mode = TapEnd
	return nil
}

// Reset clears every mark and starts over at the first line.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = line.ClearTimestamps(s.lines)
	s.index = 0
	s.mode = TapStart
}

// Next skips to the following line without touching any marks.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.currentLocked()
	if !ok {
		return ErrNoCurrentLine
	}
	s.advanceLocked(cur)
	s.mode = TapStart
	return nil
}

// Seek moves playback by step; negative steps go back.
func (s *Session) Seek(step time.Duration) error {
	if s.ctrl == nil {
		return ErrNoPlayback
	}
	s.ctrl.Seek(s.ctrl.CurrentTime() + step)
	return nil
}

func (s *Session) Toggle(ctx context.Context) error {
	if s.ctrl == nil {
		return ErrNoPlayback
	}
	if s.ctrl.State().Playing {
		s.ctrl.Pause()
		return nil
	}
	return s.ctrl.Play(ctx)
}

// Apply runs the action a dispatched key resolved to. Taps are refused
// unless CanTap holds.
func (s *Session) Apply(ctx context.Context, action input.Action, seekStep time.Duration) error {
	switch action {
	case input.ActionStart, input.ActionEnd:
		if !s.CanTap() {
			return ErrCannotTap
		}
		if action == input.ActionStart {
			return s.StartTap()
		}
		return s.EndTap()
	case input.ActionNext:
		return s.Next()
	case input.ActionToggle:
		return s.Toggle(ctx)
	case input.ActionSeekBack:
		return s.Seek(-seekStep)
	case input.ActionSeekForward:
		return s.Seek(seekStep)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func (s *Session) currentLocked() (line.Line, bool) {
	if s.index < 0 || s.index >= len(s.lines) {
		return line.Line{}, false
	}
	return s.lines[s.index], true
}

// the line with the next order, or simply the next slot
func (s *Session) advanceLocked(cur line.Line) {
	if nextID, ok := line.NextLineID(s.lines, cur.Order); ok {
		if idx := line.IndexOf(s.lines, nextID); idx >= 0 {
			s.index = idx
			return
		}
	}
	s.index++
}

func (s *Session) applyLocked(updated []line.Line, duration time.Duration) {
	s.lines = s.pipeline.Run(updated, duration)
}

func (s *Session) duration() time.Duration {
	if s.ctrl == nil {
		return 0
	}
	return s.ctrl.State().Duration
}
