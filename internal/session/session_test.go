package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mgpai22/tapsync/internal/input"
	"github.com/mgpai22/tapsync/internal/line"
	"github.com/mgpai22/tapsync/internal/playback"
)

const ms = time.Millisecond

type fakeController struct {
	state  playback.State
	seeks  []time.Duration
	played int
}

func newFakeController() *fakeController {
	return &fakeController{state: playback.State{
		Duration: 10 * time.Second,
		Playing:  true,
		Ready:    true,
	}}
}

func (f *fakeController) Play(context.Context) error {
	f.played++
	f.state.Playing = true
	return nil
}

func (f *fakeController) Pause() { f.state.Playing = false }

func (f *fakeController) Seek(d time.Duration) {
	f.seeks = append(f.seeks, d)
	f.state.CurrentTime = d
}

func (f *fakeController) CurrentTime() time.Duration { return f.state.CurrentTime }

func (f *fakeController) State() playback.State { return f.state }

func (f *fakeController) Subscribe(playback.Observer) func() { return func() {} }

func (f *fakeController) Close() error { return nil }

func (f *fakeController) at(d time.Duration) { f.state.CurrentTime = d }

func newTestSession(ctrl playback.Controller) *Session {
	s := New(nil, ctrl, nil)
	s.Load("first\nsecond\n\nthird")
	return s
}

func TestLoad(t *testing.T) {
	s := newTestSession(newFakeController())

	lines := s.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if s.Index() != 0 || s.Mode() != TapStart {
		t.Errorf("unexpected position %d %s", s.Index(), s.Mode())
	}
	cur, ok := s.Current()
	if !ok || cur.Text != "first" {
		t.Errorf("unexpected current line %+v", cur)
	}
}

func TestStartEndTapCycle(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(ctrl)

	ctrl.at(time.Second)
	if err := s.StartTap(); err != nil {
		t.Fatalf("StartTap() error: %v", err)
	}
	if s.Mode() != TapEnd {
		t.Errorf("mode after start tap = %s, want end", s.Mode())
	}

	ctrl.at(2 * time.Second)
	if err := s.EndTap(); err != nil {
		t.Fatalf("EndTap() error: %v", err)
	}
	if s.Mode() != TapStart || s.Index() != 1 {
		t.Errorf("after end tap: mode %s index %d", s.Mode(), s.Index())
	}

	ctrl.at(3 * time.Second)
	if err := s.StartTap(); err != nil {
		t.Fatalf("StartTap() error: %v", err)
	}

	lines := s.Lines()
	if lines[0].StartTime != line.At(time.Second) || lines[0].EndTime != line.At(2*time.Second) {
		t.Errorf("line 1 marks %v %v", lines[0].StartTime, lines[0].EndTime)
	}
	if lines[1].StartTime != line.At(3*time.Second) || lines[1].EndTime.Set {
		t.Errorf("line 2 marks %v %v", lines[1].StartTime, lines[1].EndTime)
	}
	if lines[2].StartTime.Set {
		t.Error("line 3 should be untimed")
	}
}

func TestStartTapClearsEnd(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(ctrl)

	ctrl.at(time.Second)
	_ = s.StartTap()
	ctrl.at(2 * time.Second)
	_ = s.EndTap()

	// retap the first line
	s.SetLines(s.Lines())
	ctrl.at(1500 * ms)
	if err := s.StartTap(); err != nil {
		t.Fatalf("StartTap() error: %v", err)
	}

	first := s.Lines()[0]
	if first.StartTime != line.At(1500*ms) {
		t.Errorf("start = %v, want 1.5s", first.StartTime)
	}
	if first.EndTime.Set {
		t.Errorf("end should be cleared, got %v", first.EndTime)
	}
}

func TestStartTapRunsPipeline(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(ctrl)

	ctrl.at(0)
	_ = s.StartTap()
	_ = s.EndTap()

	first := s.Lines()[0]
	if first.StartTime != line.At(100*ms) {
		t.Errorf("start = %v, want gap-enforced 100ms", first.StartTime)
	}
}

func TestTapPastLastLine(t *testing.T) {
	ctrl := newFakeController()
	s := New(nil, ctrl, nil)
	s.Load("only")

	ctrl.at(time.Second)
	_ = s.StartTap()
	ctrl.at(2 * time.Second)
	_ = s.EndTap()

	if err := s.StartTap(); !errors.Is(err, ErrNoCurrentLine) {
		t.Errorf("expected ErrNoCurrentLine, got %v", err)
	}
	if err := s.EndTap(); !errors.Is(err, ErrNoCurrentLine) {
		t.Errorf("expected ErrNoCurrentLine, got %v", err)
	}
	if s.CanTap() {
		t.Error("CanTap should be false past the last line")
	}
}

func TestNoController(t *testing.T) {
	s := newTestSession(nil)

	if err := s.StartTap(); !errors.Is(err, ErrNoPlayback) {
		t.Errorf("expected ErrNoPlayback, got %v", err)
	}
	if s.CanTap() {
		t.Error("CanTap should be false without playback")
	}
}

func TestUpdateTime(t *testing.T) {
	s := newTestSession(newFakeController())

	if err := s.UpdateTime("line-2", line.FieldEnd, 4*time.Second); err != nil {
		t.Fatalf("UpdateTime() error: %v", err)
	}
	if got := s.Lines()[1].EndTime; got != line.At(4*time.Second) {
		t.Errorf("end = %v, want 4s", got)
	}

	err := s.UpdateTime("line-9", line.FieldStart, time.Second)
	if !errors.Is(err, ErrUnknownLine) {
		t.Errorf("expected ErrUnknownLine, got %v", err)
	}
}

func TestSetMissingTime(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(ctrl)

	ctrl.at(5 * time.Second)
	if err := s.SetMissingTime("line-3", time.Second); err != nil {
		t.Fatalf("SetMissingTime() error: %v", err)
	}
	if got := s.Lines()[2].StartTime; got != line.At(5*time.Second) {
		t.Errorf("start = %v, want controller time 5s", got)
	}
	if s.Mode() != TapEnd {
		t.Errorf("mode = %s, want end", s.Mode())
	}
}

func TestSetMissingTimeFallback(t *testing.T) {
	s := newTestSession(nil)

	if err := s.SetMissingTime("line-1", 700*ms); err != nil {
		t.Fatalf("SetMissingTime() error: %v", err)
	}
	if got := s.Lines()[0].StartTime; got != line.At(700*ms) {
		t.Errorf("start = %v, want fallback 700ms", got)
	}
}

func TestSetMissingTimeKeepsExisting(t *testing.T) {
	s := newTestSession(nil)

	_ = s.UpdateTime("line-1", line.FieldStart, 2*time.Second)
	_ = s.SetMissingTime("line-1", 9*time.Second)

	if got := s.Lines()[0].StartTime; got != line.At(2*time.Second) {
		t.Errorf("start = %v, want untouched 2s", got)
	}
}

func TestReset(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(ctrl)

	ctrl.at(time.Second)
	_ = s.StartTap()
	ctrl.at(2 * time.Second)
	_ = s.EndTap()

	s.Reset()

	if s.Index() != 0 || s.Mode() != TapStart {
		t.Errorf("unexpected position %d %s", s.Index(), s.Mode())
	}
	for _, l := range s.Lines() {
		if l.StartTime.Set || l.EndTime.Set {
			t.Errorf("line %s still timed", l.ID)
		}
	}
}

func TestNext(t *testing.T) {
	s := newTestSession(newFakeController())

	for want := 1; want <= 3; want++ {
		if err := s.Next(); err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		if s.Index() != want {
			t.Errorf("index = %d, want %d", s.Index(), want)
		}
	}
	if err := s.Next(); !errors.Is(err, ErrNoCurrentLine) {
		t.Errorf("expected ErrNoCurrentLine, got %v", err)
	}
}

func TestApply(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(ctrl)
	ctx := context.Background()

	ctrl.at(2 * time.Second)
	if err := s.Apply(ctx, input.ActionSeekBack, 500*ms); err != nil {
		t.Fatalf("seek back error: %v", err)
	}
	if ctrl.CurrentTime() != 1500*ms {
		t.Errorf("time after seek back = %v", ctrl.CurrentTime())
	}

	if err := s.Apply(ctx, input.ActionSeekForward, time.Second); err != nil {
		t.Fatalf("seek forward error: %v", err)
	}
	if ctrl.CurrentTime() != 2500*ms {
		t.Errorf("time after seek forward = %v", ctrl.CurrentTime())
	}

	if err := s.Apply(ctx, input.ActionStart, 0); err != nil {
		t.Fatalf("start error: %v", err)
	}
	if s.Mode() != TapEnd {
		t.Errorf("mode = %s, want end", s.Mode())
	}

	if err := s.Apply(ctx, input.ActionToggle, 0); err != nil {
		t.Fatalf("toggle error: %v", err)
	}
	if ctrl.state.Playing {
		t.Error("toggle should pause")
	}

	if err := s.Apply(ctx, input.ActionEnd, 0); !errors.Is(err, ErrCannotTap) {
		t.Errorf("expected ErrCannotTap while paused, got %v", err)
	}

	if err := s.Apply(ctx, input.ActionToggle, 0); err != nil {
		t.Fatalf("toggle error: %v", err)
	}
	if ctrl.played != 1 || !ctrl.state.Playing {
		t.Error("toggle should resume playback")
	}
}
