// Package encode implements the video encoding stage.
package encode

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/user/screenreel/pkg/pipeline"
	"github.com/user/screenreel/pkg/ports"
)

// PreferredTypes is the codec negotiation order. The first supported type wins.
var PreferredTypes = []string{
	"video/mp4;codecs=h264",
	"video/mp4;codecs=avc1.42E01E",
	"video/mp4;codecs=avc1.4D401E",
	"video/mp4;codecs=avc1.64001E",
	"video/webm;codecs=vp9",
	"video/webm;codecs=vp8",
	"video/webm",
	"video/mp4",
}

// Negotiate returns the first type in preferred that support accepts.
func Negotiate(support ports.CodecSupport, preferred []string) (string, error) {
	for _, t := range preferred {
		if support.IsTypeSupported(t) {
			return t, nil
		}
	}
	return "", pipeline.ErrNoSupportedCodec
}

// ClockMode selects how encoded frames are timed.
type ClockMode int

const (
	// ClockVirtual submits every source frame exactly once at i/fps.
	ClockVirtual ClockMode = iota
	// ClockWallClock paces submission in real time and picks the frame
	// matching the elapsed fraction of the total duration. Frames may be
	// repeated or skipped.
	ClockWallClock
)

// String returns the name of the clock mode.
func (m ClockMode) String() string {
	switch m {
	case ClockVirtual:
		return "virtual"
	case ClockWallClock:
		return "wallclock"
	default:
		return "unknown"
	}
}

// ParseClockMode parses "virtual" or "wallclock".
func ParseClockMode(s string) (ClockMode, error) {
	switch s {
	case "", "virtual":
		return ClockVirtual, nil
	case "wallclock":
		return ClockWallClock, nil
	default:
		return ClockVirtual, fmt.Errorf("%w: unknown clock %q", pipeline.ErrInvalidSettings, s)
	}
}

// Timeline is the timing policy of the encode loop.
type Timeline struct {
	Mode ClockMode

	// Now and Sleep drive ClockWallClock. Nil uses the real clock.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

func (tl Timeline) now() time.Time {
	if tl.Now != nil {
		return tl.Now()
	}
	return time.Now()
}

func (tl Timeline) sleep(ctx context.Context, d time.Duration) error {
	if tl.Sleep != nil {
		return tl.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Options configures the encode stage.
type Options struct {
	Preferred []string // default: PreferredTypes
	Timeline  Timeline
	Quality   int // passed through to the encoder, 0 for its default
}

// Stage encodes rendered frames into a video.
type Stage struct {
	encoder ports.VideoEncoder
	support ports.CodecSupport
	probe   ports.ContainerProbe
	logger  ports.Logger
	opts    Options
}

// NewStage creates a new encode stage. probe may be nil.
func NewStage(encoder ports.VideoEncoder, support ports.CodecSupport, probe ports.ContainerProbe, logger ports.Logger, opts Options) *Stage {
	if len(opts.Preferred) == 0 {
		opts.Preferred = PreferredTypes
	}
	return &Stage{
		encoder: encoder,
		support: support,
		probe:   probe,
		logger:  logger.WithComponent("encode"),
		opts:    opts,
	}
}

// Execute encodes all frames into a video.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{}

	if len(input.Frames) == 0 {
		return result, fmt.Errorf("no frames to encode")
	}
	fps := input.Preset.FPS
	if fps <= 0 {
		return result, fmt.Errorf("%w: fps %d", pipeline.ErrInvalidSettings, fps)
	}

	mimeType, err := Negotiate(s.support, s.opts.Preferred)
	if err != nil {
		return result, err
	}
	s.logger.Debug("Negotiated %s at %d bps", mimeType, input.Preset.Bitrate())

	// Get dimensions from first frame
	bounds := input.Frames[0].Image.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	opts := ports.EncoderOptions{
		MIMEType:      mimeType,
		BitsPerSecond: input.Preset.Bitrate(),
		Quality:       s.opts.Quality,
	}
	if err := s.encoder.Begin(width, height, float64(fps), opts); err != nil {
		return result, fmt.Errorf("begin encoding: %w", err)
	}

	var emitted, computedMs int
	switch s.opts.Timeline.Mode {
	case ClockWallClock:
		emitted, computedMs, err = s.wallClock(ctx, input)
	default:
		emitted, computedMs, err = s.virtual(ctx, input.Frames, fps)
	}
	if err != nil {
		// Drain the encoder so its process and temp files go away.
		_, _ = s.encoder.End()
		return result, err
	}

	// Finalize encoding
	data, err := s.encoder.End()
	if err != nil {
		return result, fmt.Errorf("end encoding: %w", err)
	}

	result.VideoData = data
	result.MIMEType = mimeType
	result.FrameCount = emitted
	result.FileSize = int64(len(data))
	result.DurationMs = computedMs
	if s.probe != nil {
		if info, err := s.probe.Probe(data); err == nil && info.DurationMs > 0 {
			result.DurationMs = info.DurationMs
		} else if err != nil {
			s.logger.Debug("Container probe failed, using computed duration: %s", err)
		}
	}

	return result, nil
}

func (s *Stage) virtual(ctx context.Context, frames []pipeline.Frame, fps int) (int, int, error) {
	for i, frame := range frames {
		select {
		case <-ctx.Done():
			return i, 0, ctx.Err()
		default:
		}

		ts := i * 1000 / fps
		if err := s.encoder.EncodeFrame(frame.Image, ts); err != nil {
			return i, 0, fmt.Errorf("encode frame at %dms: %w", ts, err)
		}
	}
	return len(frames), len(frames) * 1000 / fps, nil
}

func (s *Stage) wallClock(ctx context.Context, input pipeline.EncodeInput) (int, int, error) {
	tl := s.opts.Timeline
	total := time.Duration(input.TotalDuration * float64(time.Second))
	if total <= 0 {
		return 0, 0, fmt.Errorf("%w: total %v", pipeline.ErrInvalidDuration, total)
	}
	tick := time.Second / time.Duration(input.Preset.FPS)
	n := len(input.Frames)

	start := tl.now()
	index, emitted := 0, 0
	for {
		elapsed := tl.now().Sub(start)
		if elapsed >= total {
			break
		}

		ts := int(elapsed.Milliseconds())
		if err := s.encoder.EncodeFrame(input.Frames[index].Image, ts); err != nil {
			return emitted, 0, fmt.Errorf("encode frame at %dms: %w", ts, err)
		}
		emitted++
		index = min(int(math.Floor(float64(elapsed)/float64(total)*float64(n))), n-1)

		if err := tl.sleep(ctx, tick); err != nil {
			return emitted, 0, err
		}
	}
	return emitted, int(total.Milliseconds()), nil
}

var _ pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult] = (*Stage)(nil)
