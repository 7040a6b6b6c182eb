package encode

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/user/screenreel/pkg/adapters/logger"
	"github.com/user/screenreel/pkg/mocks"
	"github.com/user/screenreel/pkg/pipeline"
	"github.com/user/screenreel/pkg/ports"
	"github.com/user/screenreel/pkg/preset"
)

var testPreset = pipeline.QualityPreset{Label: "test", Width: 16, Height: 8, FPS: 10, BitrateScale: 0.6}

func frames(n int) []pipeline.Frame {
	out := make([]pipeline.Frame, n)
	for i := range out {
		out[i] = pipeline.Frame{Index: i, Image: image.NewRGBA(image.Rect(0, 0, 16, 8))}
	}
	return out
}

func allSupported() *mocks.CodecSupport {
	return &mocks.CodecSupport{Supported: PreferredTypes}
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name      string
		supported []string
		want      string
		wantErr   error
	}{
		{"first wins", PreferredTypes, "video/mp4;codecs=h264", nil},
		{"baseline avc", []string{"video/webm", "video/mp4;codecs=avc1.42E01E"}, "video/mp4;codecs=avc1.42E01E", nil},
		{"webm only", []string{"video/webm;codecs=vp8", "video/webm"}, "video/webm;codecs=vp8", nil},
		{"plain mp4 last", []string{"video/mp4"}, "video/mp4", nil},
		{"nothing", nil, "", pipeline.ErrNoSupportedCodec},
		{"unlisted only", []string{"video/x-matroska"}, "", pipeline.ErrNoSupportedCodec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Negotiate(&mocks.CodecSupport{Supported: tt.supported}, PreferredTypes)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStage_Execute(t *testing.T) {
	mockEncoder := &mocks.VideoEncoder{}
	stage := NewStage(mockEncoder, allSupported(), nil, logger.NewNoop(), Options{})

	result, err := stage.Execute(context.Background(), pipeline.EncodeInput{
		Frames:        frames(25),
		Preset:        testPreset,
		TotalDuration: 2.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !mockEncoder.BeginCalled || !mockEncoder.EndCalled {
		t.Error("expected Begin and End to be called")
	}
	if mockEncoder.BeginWidth != 16 || mockEncoder.BeginHeight != 8 || mockEncoder.BeginFPS != 10 {
		t.Errorf("unexpected Begin args %dx%d@%v", mockEncoder.BeginWidth, mockEncoder.BeginHeight, mockEncoder.BeginFPS)
	}
	if got := mockEncoder.BeginOptions.BitsPerSecond; got != 4_800_000 {
		t.Errorf("expected bitrate 4800000, got %d", got)
	}
	if got := mockEncoder.BeginOptions.MIMEType; got != "video/mp4;codecs=h264" {
		t.Errorf("unexpected MIME type %q", got)
	}

	if len(mockEncoder.EncodeFrameCalls) != 25 {
		t.Fatalf("expected 25 EncodeFrame calls, got %d", len(mockEncoder.EncodeFrameCalls))
	}
	for i, call := range mockEncoder.EncodeFrameCalls {
		if call.TimestampMs != i*100 {
			t.Errorf("call %d: expected timestamp %d, got %d", i, i*100, call.TimestampMs)
		}
	}

	if result.FrameCount != 25 || result.DurationMs != 2500 {
		t.Errorf("unexpected result %+v", result)
	}
	if result.MIMEType != "video/mp4;codecs=h264" {
		t.Errorf("unexpected result MIME %q", result.MIMEType)
	}
	if result.FileSize != int64(len(result.VideoData)) || len(result.VideoData) == 0 {
		t.Error("expected video data and matching file size")
	}
}

func TestStage_FiveSecondsAtHigh(t *testing.T) {
	high, err := preset.Resolve("high")
	if err != nil {
		t.Fatal(err)
	}
	n := pipeline.FrameCount(5, high.FPS)
	if n != 300 {
		t.Fatalf("expected 300 frames for 5s at %d fps, got %d", high.FPS, n)
	}

	mockEncoder := &mocks.VideoEncoder{}
	stage := NewStage(mockEncoder, allSupported(), nil, logger.NewNoop(), Options{})
	result, err := stage.Execute(context.Background(), pipeline.EncodeInput{
		Frames:        frames(n),
		Preset:        high,
		TotalDuration: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FrameCount != 300 || len(mockEncoder.EncodeFrameCalls) != 300 {
		t.Errorf("expected 300 frames, got %d (%d submitted)", result.FrameCount, len(mockEncoder.EncodeFrameCalls))
	}
	if result.DurationMs != 5000 {
		t.Errorf("expected 5000ms, got %d", result.DurationMs)
	}
	last := mockEncoder.EncodeFrameCalls[len(mockEncoder.EncodeFrameCalls)-1].TimestampMs
	if interval := 1000 / high.FPS; last < 5000-2*interval || last >= 5000 {
		t.Errorf("last frame at %dms, want within one interval before the end", last)
	}
	if got := mockEncoder.BeginOptions.BitsPerSecond; got != 6_400_000 {
		t.Errorf("expected high bitrate 6400000, got %d", got)
	}
}

func TestStage_NoSupportedCodec(t *testing.T) {
	mockEncoder := &mocks.VideoEncoder{}
	stage := NewStage(mockEncoder, &mocks.CodecSupport{}, nil, logger.NewNoop(), Options{})

	_, err := stage.Execute(context.Background(), pipeline.EncodeInput{Frames: frames(3), Preset: testPreset, TotalDuration: 0.3})
	if !errors.Is(err, pipeline.ErrNoSupportedCodec) {
		t.Errorf("expected ErrNoSupportedCodec, got %v", err)
	}
	if mockEncoder.BeginCalled {
		t.Error("encoder must not start without a codec")
	}
}

func TestStage_ProbedDurationWins(t *testing.T) {
	probe := &mocks.ContainerProbe{
		ProbeFunc: func(data []byte) (ports.ContainerInfo, error) {
			return ports.ContainerInfo{Codec: "h264", DurationMs: 2466}, nil
		},
	}
	stage := NewStage(&mocks.VideoEncoder{}, allSupported(), probe, logger.NewNoop(), Options{})

	result, err := stage.Execute(context.Background(), pipeline.EncodeInput{Frames: frames(25), Preset: testPreset, TotalDuration: 2.5})
	if err != nil {
		t.Fatal(err)
	}
	if result.DurationMs != 2466 {
		t.Errorf("expected probed duration, got %d", result.DurationMs)
	}
}

func TestStage_ProbeFailureFallsBack(t *testing.T) {
	probe := &mocks.ContainerProbe{
		ProbeFunc: func(data []byte) (ports.ContainerInfo, error) {
			return ports.ContainerInfo{}, errors.New("not mp4")
		},
	}
	stage := NewStage(&mocks.VideoEncoder{}, allSupported(), probe, logger.NewNoop(), Options{})

	result, err := stage.Execute(context.Background(), pipeline.EncodeInput{Frames: frames(12), Preset: testPreset, TotalDuration: 1.2})
	if err != nil {
		t.Fatal(err)
	}
	if result.DurationMs != 1200 || probe.Calls != 1 {
		t.Errorf("expected computed duration 1200 after one probe, got %d (%d calls)", result.DurationMs, probe.Calls)
	}
}

func TestStage_EmptyFrames(t *testing.T) {
	stage := NewStage(&mocks.VideoEncoder{}, allSupported(), nil, logger.NewNoop(), Options{})
	if _, err := stage.Execute(context.Background(), pipeline.EncodeInput{Preset: testPreset}); err == nil {
		t.Error("expected error for empty frames")
	}
}

func TestStage_ContextCancelled(t *testing.T) {
	mockEncoder := &mocks.VideoEncoder{}
	stage := NewStage(mockEncoder, allSupported(), nil, logger.NewNoop(), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stage.Execute(ctx, pipeline.EncodeInput{Frames: frames(2), Preset: testPreset, TotalDuration: 0.2})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if !mockEncoder.EndCalled {
		t.Error("expected encoder to be finalized after cancellation")
	}
}

func TestStage_EncodeFrameError(t *testing.T) {
	mockEncoder := &mocks.VideoEncoder{
		EncodeFrameFunc: func(img image.Image, ts int) error {
			if ts >= 200 {
				return errors.New("pipe closed")
			}
			return nil
		},
	}
	stage := NewStage(mockEncoder, allSupported(), nil, logger.NewNoop(), Options{})

	if _, err := stage.Execute(context.Background(), pipeline.EncodeInput{Frames: frames(5), Preset: testPreset, TotalDuration: 0.5}); err == nil {
		t.Fatal("expected error")
	}
	if len(mockEncoder.EncodeFrameCalls) != 3 {
		t.Errorf("expected loop to stop at the failing frame, got %d calls", len(mockEncoder.EncodeFrameCalls))
	}
}

// fakeClock advances by the requested sleep duration.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	return ctx.Err()
}

func TestStage_WallClock(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	mockEncoder := &mocks.VideoEncoder{}
	stage := NewStage(mockEncoder, allSupported(), nil, logger.NewNoop(), Options{
		Timeline: Timeline{Mode: ClockWallClock, Now: clock.Now, Sleep: clock.Sleep},
	})

	src := frames(10)
	result, err := stage.Execute(context.Background(), pipeline.EncodeInput{Frames: src, Preset: testPreset, TotalDuration: 1})
	if err != nil {
		t.Fatal(err)
	}

	// Ticks at 0..900ms; elapsed 1000ms stops the loop.
	if len(mockEncoder.EncodeFrameCalls) != 10 || result.FrameCount != 10 {
		t.Fatalf("expected 10 ticks, got %d", len(mockEncoder.EncodeFrameCalls))
	}
	if result.DurationMs != 1000 {
		t.Errorf("expected nominal duration 1000, got %d", result.DurationMs)
	}

	// The frame shown at a tick is the index computed on the previous tick,
	// so the first two ticks both show frame 0.
	want := []int{0, 0, 1, 2, 3, 4, 5, 6, 7, 8}
	for i, call := range mockEncoder.EncodeFrameCalls {
		if call.TimestampMs != i*100 {
			t.Errorf("tick %d: timestamp %d", i, call.TimestampMs)
		}
		if call.Image != src[want[i]].Image {
			t.Errorf("tick %d: expected frame %d", i, want[i])
		}
	}
}

func TestStage_WallClockSkipsUnderSlowTicks(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	mockEncoder := &mocks.VideoEncoder{}
	stage := NewStage(mockEncoder, allSupported(), nil, logger.NewNoop(), Options{
		Timeline: Timeline{
			Mode: ClockWallClock,
			Now:  clock.Now,
			Sleep: func(ctx context.Context, d time.Duration) error {
				return clock.Sleep(ctx, 4*d)
			},
		},
	})

	result, err := stage.Execute(context.Background(), pipeline.EncodeInput{Frames: frames(10), Preset: testPreset, TotalDuration: 1})
	if err != nil {
		t.Fatal(err)
	}
	// Ticks at 0, 400, 800ms.
	if result.FrameCount != 3 {
		t.Errorf("expected 3 ticks when the clock runs slow, got %d", result.FrameCount)
	}
}

func TestParseClockMode(t *testing.T) {
	for in, want := range map[string]ClockMode{"": ClockVirtual, "virtual": ClockVirtual, "wallclock": ClockWallClock} {
		got, err := ParseClockMode(in)
		if err != nil || got != want {
			t.Errorf("ParseClockMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseClockMode("sundial"); !errors.Is(err, pipeline.ErrInvalidSettings) {
		t.Errorf("expected ErrInvalidSettings, got %v", err)
	}
}
