package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/mgpai22/tapsync/internal/input"
	"github.com/mgpai22/tapsync/internal/line"
	"github.com/mgpai22/tapsync/internal/logging"
	"github.com/mgpai22/tapsync/internal/playback"
	"github.com/mgpai22/tapsync/internal/session"
	"github.com/mgpai22/tapsync/internal/timecode"
)

const screenContext = 3 // lines shown above and below the current one

var (
	currentStyle = color.New(color.FgYellow, color.Bold)
	timedStyle   = color.New(color.FgGreen)
	untimedStyle = color.New(color.Faint)
	errorStyle   = color.New(color.FgRed)
	statusStyle  = color.New(color.FgCyan)
)

// tapScreen is the line-based terminal front end of a session. Each input
// line is one key; lines starting with ":" go to the command editor and
// never reach the shortcut table.
type tapScreen struct {
	sess       *session.Session
	ctrl       playback.Controller
	dispatcher *input.Dispatcher
	seekStep   time.Duration
	out        io.Writer
	logger     *logging.Logger

	// the input being handled; a ":" prefix means the command field has focus
	pending string

	save   func(lines []line.Line) error
	export func(path string, lines []line.Line) error
}

func newTapScreen(
	sess *session.Session,
	ctrl playback.Controller,
	km input.Keymap,
	seekStep time.Duration,
	out io.Writer,
	logger *logging.Logger,
) (*tapScreen, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	t := &tapScreen{
		sess:     sess,
		ctrl:     ctrl,
		seekStep: seekStep,
		out:      out,
		logger:   logger,
	}
	focus := input.FocusFunc(func() bool {
		return strings.HasPrefix(t.pending, ":")
	})
	d, err := input.NewDispatcher(km, focus)
	if err != nil {
		return nil, err
	}
	t.dispatcher = d
	return t, nil
}

// Run reads keys from in until EOF or :quit.
func (t *tapScreen) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t.printHelp()
	t.render()

	// the scanner blocks on stdin, so it runs apart from the interrupt check
	keys := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(keys)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case keys <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-keys:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			quit, err := t.handle(ctx, raw)
			if err != nil {
				errorStyle.Fprintf(t.out, "! %v\n", err)
			}
			if quit {
				return nil
			}
			t.render()
		}
	}
}

// handle processes one input line and reports whether the screen should
// close.
func (t *tapScreen) handle(ctx context.Context, raw string) (bool, error) {
	t.pending = raw
	defer func() { t.pending = "" }()

	action, ok, err := t.dispatcher.Handle(terminalKey(raw))
	if errors.Is(err, input.ErrEditableFocus) {
		return t.runCommand(strings.TrimPrefix(strings.TrimSpace(raw), ":"))
	}
	if !ok {
		return false, err
	}

	t.logger.Debugw("Key", "input", raw, "action", action)
	return false, t.sess.Apply(ctx, action, t.seekStep)
}

// terminal spellings for keys a line-based prompt cannot send
func terminalKey(raw string) string {
	if raw == "" || raw == " " {
		return input.KeySpace
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "<", "left":
		return input.KeyArrowLeft
	case ">", "right":
		return input.KeyArrowRight
	case "down":
		return input.KeyArrowDown
	}
	return strings.TrimSpace(raw)
}

func (t *tapScreen) runCommand(cmdline string) (bool, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "q", "quit":
		return true, nil
	case "h", "help":
		t.printHelp()
		return false, nil
	case "reset":
		t.sess.Reset()
		return false, nil
	case "edit":
		if len(fields) != 4 {
			return false, fmt.Errorf("usage: :edit <n> start|end <MM:SS.mmm>")
		}
		l, err := t.lineAt(fields[1])
		if err != nil {
			return false, err
		}
		field, err := line.ParseField(fields[2])
		if err != nil {
			return false, err
		}
		at, err := timecode.Parse(fields[3])
		if err != nil {
			return false, err
		}
		return false, t.sess.UpdateTime(l.ID, field, at)
	case "fill":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: :fill <n>")
		}
		l, err := t.lineAt(fields[1])
		if err != nil {
			return false, err
		}
		return false, t.sess.SetMissingTime(l.ID, 0)
	case "seek":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: :seek <MM:SS.mmm>")
		}
		if t.ctrl == nil {
			return false, session.ErrNoPlayback
		}
		at, err := timecode.Parse(fields[1])
		if err != nil {
			return false, err
		}
		t.ctrl.Seek(at)
		return false, nil
	case "save":
		if t.save == nil {
			return false, fmt.Errorf("no project to save to")
		}
		if err := t.save(t.sess.Lines()); err != nil {
			return false, err
		}
		statusStyle.Fprintln(t.out, "saved")
		return false, nil
	case "export":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: :export <path>")
		}
		if t.export == nil {
			return false, fmt.Errorf("export is not available")
		}
		if err := t.export(fields[1], t.sess.Lines()); err != nil {
			return false, err
		}
		statusStyle.Fprintf(t.out, "exported %s\n", fields[1])
		return false, nil
	default:
		return false, fmt.Errorf("unknown command :%s (try :help)", fields[0])
	}
}

// 1-based line number as shown on screen
func (t *tapScreen) lineAt(n string) (line.Line, error) {
	i, err := strconv.Atoi(n)
	if err != nil {
		return line.Line{}, fmt.Errorf("invalid line number %q", n)
	}
	lines := t.sess.Lines()
	if i < 1 || i > len(lines) {
		return line.Line{}, fmt.Errorf("line %d out of range 1-%d", i, len(lines))
	}
	return lines[i-1], nil
}

func (t *tapScreen) render() {
	lines := t.sess.Lines()
	current := t.sess.Index()

	var state playback.State
	if t.ctrl != nil {
		state = t.ctrl.State()
	}
	icon := "❚❚"
	if state.Playing {
		icon = "▶"
	}
	statusStyle.Fprintf(t.out, "\n%s %s / %s  next tap: %s  timed %d/%d\n",
		icon,
		timecode.Format(state.CurrentTime),
		timecode.Format(state.Duration),
		t.sess.Mode(),
		len(line.Timed(lines)),
		len(lines),
	)

	from := max(min(current, len(lines)-1)-screenContext, 0)
	to := min(current+screenContext+1, len(lines))
	for i := from; i < to; i++ {
		l := lines[i]
		row := fmt.Sprintf("%4d  %-9s  %-9s  %s",
			i+1,
			formatMark(l.StartTime),
			formatMark(l.EndTime),
			strings.ReplaceAll(l.Text, "\n", " / "),
		)
		switch {
		case i == current:
			currentStyle.Fprintf(t.out, "> %s\n", row)
		case l.Timed():
			timedStyle.Fprintf(t.out, "  %s\n", row)
		default:
			untimedStyle.Fprintf(t.out, "  %s\n", row)
		}
	}
	if current >= len(lines) {
		statusStyle.Fprintln(t.out, "  (all lines done; :export <path> or :quit)")
	}
}

func (t *tapScreen) printHelp() {
	b := t.dispatcher.Bindings()
	fmt.Fprintf(t.out, "keys (press Enter after each):\n")
	fmt.Fprintf(t.out, "  %-10s start tap      %-10s end tap\n", b[input.ActionStart], b[input.ActionEnd])
	if next, ok := b[input.ActionNext]; ok {
		fmt.Fprintf(t.out, "  %-10s next line (or \"down\")\n", next)
	}
	fmt.Fprintf(t.out, "  %-10s play/pause     %-10s seek back/forward %s\n", "Enter", "< >", t.seekStep)
	fmt.Fprintf(t.out, "commands: :edit <n> start|end <MM:SS.mmm>  :fill <n>  :seek <MM:SS.mmm>\n")
	fmt.Fprintf(t.out, "          :reset  :save  :export <path>  :help  :quit\n")
}
