package playback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mgpai22/tapsync/internal/logging"
)

var (
	// ErrNotReady is returned by Play when there is nothing to play yet.
	ErrNotReady = errors.New("playback not ready")
)

// State is the observable playback snapshot.
type State struct {
	CurrentTime time.Duration
	Duration    time.Duration
	Playing     bool
	Ready       bool
}

// Observer receives a snapshot after every transition (play, pause, seek,
// end reached). It is called without the controller's lock held.
type Observer func(State)

// Controller is the clock the session taps against.
type Controller interface {
	Play(ctx context.Context) error
	Pause()
	Seek(d time.Duration)
	CurrentTime() time.Duration
	State() State
	Subscribe(obs Observer) (cancel func())
	Close() error
}

type Kind int

const (
	KindTimer Kind = iota // silent virtual clock of a fixed duration
	KindFile              // media file probed with ffprobe and played with ffplay
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	default:
		return "timer"
	}
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "timer":
		return KindTimer, nil
	case "file":
		return KindFile, nil
	default:
		return 0, fmt.Errorf("unknown playback mode %q: use file or timer", s)
	}
}

// Mode selects the controller. Path is used by KindFile, Duration by
// KindTimer.
type Mode struct {
	Kind     Kind
	Path     string
	Duration time.Duration
}

// Prober returns the duration of a media file.
type Prober func(ctx context.Context, path string) (time.Duration, error)

type options struct {
	clock  Clock
	logger *logging.Logger
	prober Prober
	player Player
}

type Option func(*options)

func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithProber replaces the ffprobe duration lookup used by file mode.
func WithProber(p Prober) Option {
	return func(o *options) { o.prober = p }
}

// WithPlayer replaces ffplay in file mode. A nil player plays silently.
func WithPlayer(p Player) Option {
	return func(o *options) { o.player = p }
}

// New builds the controller for mode.
func New(ctx context.Context, mode Mode, opts ...Option) (Controller, error) {
	o := options{
		clock:  realClock{},
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	switch mode.Kind {
	case KindTimer:
		if mode.Duration <= 0 {
			return nil, fmt.Errorf("timer duration must be positive, got %v", mode.Duration)
		}
		return NewTimer(mode.Duration, o.clock), nil
	case KindFile:
		return newFileController(ctx, mode.Path, o)
	default:
		return nil, fmt.Errorf("unknown playback kind %d", mode.Kind)
	}
}

// observer registry shared by both controllers
type observers struct {
	next int
	subs map[int]Observer
}

func (o *observers) add(obs Observer) int {
	if o.subs == nil {
		o.subs = make(map[int]Observer)
	}
	id := o.next
	o.next++
	o.subs[id] = obs
	return id
}

func (o *observers) remove(id int) {
	delete(o.subs, id)
}

func (o *observers) snapshot() []Observer {
	out := make([]Observer, 0, len(o.subs))
	for _, obs := range o.subs {
		out = append(out, obs)
	}
	return out
}
