package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/quill/pkg/domain"
)

// DefaultSaveTimeout bounds the final save after the loop ends.
const DefaultSaveTimeout = 5 * time.Second

// FrameSource yields frames in clock order. Next returns io.EOF when exhausted.
type FrameSource interface {
	Next(ctx context.Context) (domain.Frame, error)
}

// Pen is the part of quill.Pen the runner drives.
type Pen interface {
	Frame(ctx context.Context, frame domain.Frame) error
	Save(ctx context.Context) error
}

// Runner handles the frame loop of a pen.
type Runner struct {
	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Interval paces frames in wall time. Zero replays as fast as possible.
	Interval time.Duration

	// SaveTimeout bounds the final save. Defaults to DefaultSaveTimeout.
	SaveTimeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = l
	}
}

// WithInterval paces the loop to one frame per interval.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) {
		r.Interval = d
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		SaveTimeout: DefaultSaveTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stats summarises a run.
type Stats struct {
	Frames int
}

// Run steps pen with every frame of src. It stops on io.EOF or when ctx is
// done and always saves before returning. Cancellation is reported as the
// context error after a successful save.
func (r *Runner) Run(ctx context.Context, pen Pen, src FrameSource) (Stats, error) {
	var stats Stats
	runErr := r.loop(ctx, pen, src, &stats)

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.SaveTimeout)
	defer cancel()
	if err := pen.Save(saveCtx); err != nil {
		r.Logger.Error("final save failed", "err", err)
		return stats, errors.Join(runErr, fmt.Errorf("final save: %w", err))
	}
	r.Logger.Debug("run finished", "frames", stats.Frames, "err", runErr)
	return stats, runErr
}

func (r *Runner) loop(ctx context.Context, pen Pen, src FrameSource, stats *Stats) error {
	var tick <-chan time.Time
	if r.Interval > 0 {
		ticker := time.NewTicker(r.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", stats.Frames, err)
		}

		if err := pen.Frame(ctx, frame); err != nil {
			return fmt.Errorf("frame %d: %w", stats.Frames, err)
		}
		stats.Frames++

		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}
	}
}
