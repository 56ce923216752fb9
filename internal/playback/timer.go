package playback

import (
	"context"
	"sync"
	"time"
)

// Timer is a silent virtual clock: the position is the offset at the last
// resume plus the time elapsed since then, clamped to the duration.
type Timer struct {
	clock Clock

	mu        sync.Mutex
	duration  time.Duration
	offset    time.Duration
	resumedAt time.Time
	playing   bool
	stopEnd   func() bool
	obs       observers
}

var _ Controller = (*Timer)(nil)

func NewTimer(duration time.Duration, clock Clock) *Timer {
	if clock == nil {
		clock = realClock{}
	}
	return &Timer{clock: clock, duration: duration}
}

// Play resumes from the current offset, restarting from zero when the end
// was already reached.
func (t *Timer) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	if t.duration <= 0 {
		t.mu.Unlock()
		return ErrNotReady
	}
	if t.playing {
		t.mu.Unlock()
		return nil
	}
	if t.offset >= t.duration {
		t.offset = 0
	}
	t.playing = true
	t.resumedAt = t.clock.Now()
	t.scheduleEndLocked()
	state, subs := t.stateLocked(), t.obs.snapshot()
	t.mu.Unlock()

	notify(subs, state)
	return nil
}

func (t *Timer) Pause() {
	t.mu.Lock()
	if !t.playing {
		t.mu.Unlock()
		return
	}
	t.offset = t.positionLocked()
	t.playing = false
	t.cancelEndLocked()
	state, subs := t.stateLocked(), t.obs.snapshot()
	t.mu.Unlock()

	notify(subs, state)
}

// Seek clamps d to [0, duration] and re-bases the clock while playing.
func (t *Timer) Seek(d time.Duration) {
	t.mu.Lock()
	t.offset = clamp(d, t.duration)
	if t.playing {
		t.resumedAt = t.clock.Now()
		t.scheduleEndLocked()
	}
	state, subs := t.stateLocked(), t.obs.snapshot()
	t.mu.Unlock()

	notify(subs, state)

	// seeking to the end while playing stops at once
	if state.Playing && state.CurrentTime >= state.Duration {
		t.reachEnd()
	}
}

func (t *Timer) CurrentTime() time.Duration {
	return t.State().CurrentTime
}

func (t *Timer) State() State {
	t.mu.Lock()
	if t.playing && t.positionLocked() >= t.duration {
		t.mu.Unlock()
		t.reachEnd()
		t.mu.Lock()
	}
	defer t.mu.Unlock()
	return t.stateLocked()
}

func (t *Timer) Subscribe(obs Observer) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.obs.add(obs)
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.obs.remove(id)
	}
}

func (t *Timer) Close() error {
	t.Pause()
	return nil
}

// pauses at the duration if the clock has run out
func (t *Timer) reachEnd() {
	t.mu.Lock()
	if !t.playing || t.positionLocked() < t.duration {
		t.mu.Unlock()
		return
	}
	t.playing = false
	t.offset = t.duration
	t.cancelEndLocked()
	state, subs := t.stateLocked(), t.obs.snapshot()
	t.mu.Unlock()

	notify(subs, state)
}

func (t *Timer) positionLocked() time.Duration {
	if !t.playing {
		return t.offset
	}
	elapsed := t.clock.Now().Sub(t.resumedAt)
	return clamp(t.offset+elapsed, t.duration)
}

func (t *Timer) stateLocked() State {
	return State{
		CurrentTime: t.positionLocked(),
		Duration:    t.duration,
		Playing:     t.playing,
		Ready:       t.duration > 0,
	}
}

func (t *Timer) scheduleEndLocked() {
	t.cancelEndLocked()
	remaining := t.duration - t.offset
	if remaining <= 0 {
		return
	}
	t.stopEnd = t.clock.AfterFunc(remaining, t.reachEnd)
}

func (t *Timer) cancelEndLocked() {
	if t.stopEnd != nil {
		t.stopEnd()
		t.stopEnd = nil
	}
}

func clamp(d, limit time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > limit {
		return limit
	}
	return d
}

func notify(subs []Observer, state State) {
	for _, obs := range subs {
		obs(state)
	}
}
