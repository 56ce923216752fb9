package timing

import (
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/mgpai22/tapsync/internal/line"
	"github.com/mgpai22/tapsync/internal/logging"
)

// Pipeline runs gap enforcement, smoothing and end-time allocation, in that
// order, over the full line list.
type Pipeline struct {
	Options        Options
	Allocator      AllocatorMode
	ScaleThreshold float64
	Logger         *logging.Logger
}

func NewPipeline(opts Options, logger *logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Pipeline{
		Options:        opts,
		Allocator:      AllocatePassthrough,
		ScaleThreshold: DefaultScaleThreshold,
		Logger:         logger,
	}
}

func (p *Pipeline) Run(lines []line.Line, audioDuration time.Duration) []line.Line {
	gapped := ApplyMinGap(lines, p.Options)
	p.snapshot("min_gap", gapped)

	smoothed := SmoothIntervals(gapped, p.Options)
	p.snapshot("smooth", smoothed)

	allocated := p.allocate(smoothed, audioDuration)
	p.snapshot("allocate", allocated)

	return allocated
}

func (p *Pipeline) allocate(
	lines []line.Line,
	audioDuration time.Duration,
) []line.Line {
	switch p.Allocator {
	case AllocateScale:
		if audioDuration <= 0 {
			return AllocateEndTimes(lines, audioDuration)
		}
		return ScaleTimeline(lines, audioDuration, p.ScaleThreshold)
	default:
		return AllocateEndTimes(lines, audioDuration)
	}
}

type markSnapshot struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func (p *Pipeline) snapshot(stage string, lines []line.Line) {
	if p.Logger == nil || !p.Logger.Desugar().Core().Enabled(zapcore.DebugLevel) {
		return
	}
	marks := make([]markSnapshot, len(lines))
	for i, l := range lines {
		marks[i] = markSnapshot{
			ID:    l.ID,
			Order: l.Order,
			Start: l.StartTime.String(),
			End:   l.EndTime.String(),
		}
	}
	p.Logger.Debugw("Pipeline stage",
		"stage", stage,
		"lines", marks,
	)
}
