// Package render implements the frame batch scheduler stage.
package render

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/user/screenreel/pkg/pipeline"
	"github.com/user/screenreel/pkg/ports"
)

// DefaultBatchSize is the number of frames requested between yields.
const DefaultBatchSize = 10

// YieldFunc is called after every batch. Returning an error aborts the stage.
type YieldFunc func(ctx context.Context) error

// Options configures the render stage.
type Options struct {
	BatchSize int       // default: DefaultBatchSize
	Yield     YieldFunc // default: runtime.Gosched plus a context check
}

// Stage renders every frame of every unit in playback order.
type Stage struct {
	logger    ports.Logger
	batchSize int
	yield     YieldFunc
}

// New creates a new render stage.
func New(logger ports.Logger, opts Options) *Stage {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Yield == nil {
		opts.Yield = gosched
	}
	return &Stage{
		logger:    logger.WithComponent("render"),
		batchSize: opts.BatchSize,
		yield:     opts.Yield,
	}
}

func gosched(ctx context.Context) error {
	runtime.Gosched()
	return ctx.Err()
}

// Execute renders all frames.
func (s *Stage) Execute(ctx context.Context, input pipeline.RenderInput) (pipeline.RenderResult, error) {
	result := pipeline.RenderResult{}
	if input.Renderer == nil {
		return result, fmt.Errorf("no frame renderer")
	}

	counts := make([]int, len(input.Units))
	total := 0
	for i, u := range input.Units {
		counts[i] = pipeline.FrameCount(u.Settings.Duration, input.Preset.FPS)
		total += counts[i]
	}
	if total == 0 {
		return result, fmt.Errorf("%w: no frames at %d fps", pipeline.ErrInvalidDuration, input.Preset.FPS)
	}
	s.logger.Debug("Rendering %d frames in batches of %d", total, s.batchSize)

	result.Frames = make([]pipeline.Frame, total)
	result.FrameCounts = counts

	offset := 0
	for ui, unit := range input.Units {
		n := counts[ui]
		for start := 0; start < n; start += s.batchSize {
			end := min(start+s.batchSize, n)
			if input.Progress != nil {
				input.Progress(fmt.Sprintf("Processing frames %d to %d of %d...", offset+start+1, offset+end, total))
			}

			g, gctx := errgroup.WithContext(ctx)
			for i := start; i < end; i++ {
				i := i
				g.Go(func() error {
					frame, err := input.Renderer.RenderFrame(gctx, ui, unit, pipeline.FrameProgress(i, n), input.Preset)
					if err != nil {
						return fmt.Errorf("image %d frame %d: %w", ui+1, i+1, err)
					}
					frame.UnitIndex = ui
					frame.Index = i
					result.Frames[offset+i] = frame
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return pipeline.RenderResult{}, err
			}

			if err := s.yield(ctx); err != nil {
				return pipeline.RenderResult{}, err
			}
		}
		offset += n
	}

	return result, nil
}

var _ pipeline.Stage[pipeline.RenderInput, pipeline.RenderResult] = (*Stage)(nil)
