package input

import (
	"errors"
	"fmt"
	"strings"
)

// Action is what a key press asks the session to do.
type Action string

const (
	ActionStart       Action = "start"
	ActionEnd         Action = "end"
	ActionNext        Action = "next"
	ActionToggle      Action = "toggle"
	ActionSeekBack    Action = "seek-back"
	ActionSeekForward Action = "seek-forward"
)

const (
	KeySpace      = "Space"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyArrowDown  = "ArrowDown"
)

var (
	ErrEmptyKey      = errors.New("start and end shortcuts are required")
	ErrReservedKey   = errors.New("space is reserved for play/pause")
	ErrSameStartEnd  = errors.New("start and end shortcuts must differ")
	ErrNextCollision = errors.New("next shortcut must differ from start, end and space")
	ErrNoBinding     = errors.New("no action bound to key")
	ErrEditableFocus = errors.New("key ignored while editing")
)

// Keymap holds the configurable tap shortcuts. Space, ArrowLeft and
// ArrowRight are fixed to toggle and seeking.
type Keymap struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Next  string `json:"next,omitempty"`
}

func DefaultKeymap() Keymap {
	return Keymap{Start: "i", End: "o", Next: KeyArrowDown}
}

// NormalizeKey maps the spellings of the space bar to "Space" and trims
// the rest.
func NormalizeKey(key string) string {
	if key == " " {
		return KeySpace
	}
	key = strings.TrimSpace(key)
	switch strings.ToLower(key) {
	case "space", "spacebar":
		return KeySpace
	}
	return key
}

func isSpace(key string) bool {
	return NormalizeKey(key) == KeySpace
}

// Validate returns the trimmed keymap or the first rule it breaks.
func (k Keymap) Validate() (Keymap, error) {
	start := strings.TrimSpace(k.Start)
	end := strings.TrimSpace(k.End)
	next := strings.TrimSpace(k.Next)

	if start == "" || end == "" {
		return Keymap{}, ErrEmptyKey
	}
	if isSpace(k.Start) || isSpace(k.End) {
		return Keymap{}, ErrReservedKey
	}
	if strings.EqualFold(start, end) {
		return Keymap{}, ErrSameStartEnd
	}
	if next != "" &&
		(strings.EqualFold(next, start) || strings.EqualFold(next, end) || isSpace(k.Next)) {
		return Keymap{}, ErrNextCollision
	}

	return Keymap{Start: start, End: end, Next: next}, nil
}

// FocusContext reports whether the user is typing into an editable field,
// in which case shortcuts must not fire.
type FocusContext interface {
	Editable() bool
}

// FocusFunc adapts a plain func to FocusContext.
type FocusFunc func() bool

func (f FocusFunc) Editable() bool { return f() }

type noFocus struct{}

func (noFocus) Editable() bool { return false }

// Dispatcher resolves keys through one table built from a keymap.
type Dispatcher struct {
	keymap Keymap
	focus  FocusContext
	table  map[string]Action
}

// NewDispatcher validates km and builds the lookup table. Keys match
// case-insensitively.
func NewDispatcher(km Keymap, focus FocusContext) (*Dispatcher, error) {
	valid, err := km.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid keymap: %w", err)
	}
	if focus == nil {
		focus = noFocus{}
	}

	table := map[string]Action{
		tableKey(KeySpace):      ActionToggle,
		tableKey(KeyArrowLeft):  ActionSeekBack,
		tableKey(KeyArrowRight): ActionSeekForward,
	}
	table[tableKey(valid.Start)] = ActionStart
	table[tableKey(valid.End)] = ActionEnd
	if valid.Next != "" {
		table[tableKey(valid.Next)] = ActionNext
	}

	return &Dispatcher{keymap: valid, focus: focus, table: table}, nil
}

func (d *Dispatcher) Keymap() Keymap {
	return d.keymap
}

// Handle resolves key to an action. The bool is false when the key should
// be ignored; the error says why.
func (d *Dispatcher) Handle(key string) (Action, bool, error) {
	if d.focus.Editable() {
		return "", false, ErrEditableFocus
	}

	action, ok := d.table[tableKey(NormalizeKey(key))]
	if !ok {
		return "", false, fmt.Errorf("%w: %q", ErrNoBinding, key)
	}
	return action, true, nil
}

// Bindings lists the key for every action, for help screens.
func (d *Dispatcher) Bindings() map[Action]string {
	out := map[Action]string{
		ActionStart:       d.keymap.Start,
		ActionEnd:         d.keymap.End,
		ActionToggle:      KeySpace,
		ActionSeekBack:    KeyArrowLeft,
		ActionSeekForward: KeyArrowRight,
	}
	if d.keymap.Next != "" {
		out[ActionNext] = d.keymap.Next
	}
	return out
}

func tableKey(key string) string {
	return strings.ToLower(key)
}
