// Package orchestrator runs export jobs: the export gate, rendering and
// encoding, and quota accounting.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ideamans/go-l10n"

	"github.com/user/screenreel/pkg/pipeline"
	"github.com/user/screenreel/pkg/ports"
	"github.com/user/screenreel/pkg/preset"
	"github.com/user/screenreel/pkg/scene"
)

// RenderSession is exclusive use of the render context for one job.
type RenderSession interface {
	pipeline.FrameRenderer
	Release() error
}

// AcquireFunc waits for and returns a render session.
type AcquireFunc func(ctx context.Context) (RenderSession, error)

// FromScene adapts a scene.Renderer.
func FromScene(r *scene.Renderer) AcquireFunc {
	return func(ctx context.Context) (RenderSession, error) {
		s, err := r.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Job is one export request.
type Job struct {
	Units      []pipeline.ImageUnit
	OutputPath string // written through the FileSystem when set
	Progress   pipeline.ProgressFunc
}

// Result describes a finished export.
type Result struct {
	JobID      string
	Data       []byte
	MIMEType   string
	Extension  string // from the first unit's container setting
	Preset     string
	FrameCount int
	DurationMs int
	FileSize   int64
	Width      int
	Height     int
	OutputPath string
}

// Deps are the collaborators of an Orchestrator. Memory may be nil.
type Deps struct {
	Identity    ports.Identity
	Quota       ports.QuotaService
	Memory      ports.MemoryMonitor
	Acquire     AcquireFunc
	RenderStage pipeline.Stage[pipeline.RenderInput, pipeline.RenderResult]
	EncodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	FS          ports.FileSystem
	Sink        ports.DebugSink
	Logger      ports.Logger
}

// Orchestrator coordinates the execution of an export job.
type Orchestrator struct {
	Deps
}

// New creates a new Orchestrator.
func New(deps Deps) *Orchestrator {
	return &Orchestrator{Deps: deps}
}

// Run executes the complete job. On any error no video is returned.
func (o *Orchestrator) Run(ctx context.Context, job Job) (Result, error) {
	jobID := uuid.NewString()
	progress := job.Progress
	if progress == nil {
		progress = func(string) {}
	}

	// 1. Export gate
	user, err := o.Identity.CurrentUser(ctx)
	if err != nil || user == "" {
		if err == nil || !errors.Is(err, pipeline.ErrAuthenticationRequired) {
			err = fmt.Errorf("%w: %v", pipeline.ErrAuthenticationRequired, err)
		}
		o.Logger.Error(l10n.F("Export refused: %s", err))
		return Result{}, err
	}

	reservation, err := o.admit(ctx, user)
	if err != nil {
		o.Logger.Error(l10n.F("Export refused: %s", err))
		return Result{}, err
	}
	settled := false
	defer func() {
		if reservation != nil && !settled {
			if err := reservation.Cancel(context.WithoutCancel(ctx)); err != nil {
				o.Logger.Warn(l10n.F("Failed to release quota reservation: %s", err))
			}
		}
	}()

	// 2. Pre-flight
	if err := pipeline.ValidateUnits(job.Units); err != nil {
		return Result{}, err
	}
	first := job.Units[0].Settings
	p, err := preset.Resolve(first.Quality)
	if err != nil {
		return Result{}, err
	}
	for i, u := range job.Units[1:] {
		if _, err := preset.Resolve(u.Settings.Quality); err != nil {
			return Result{}, fmt.Errorf("image %d: %w", i+2, err)
		}
		if u.Settings.Quality != first.Quality {
			o.Logger.Warn(l10n.F("Image %d asks for %s quality; the video uses %s from image 1", i+2, u.Settings.Quality, first.Quality))
		}
	}
	totalDuration := pipeline.TotalDuration(job.Units)
	totalFrames := 0
	for _, u := range job.Units {
		totalFrames += pipeline.FrameCount(u.Settings.Duration, p.FPS)
	}
	if totalFrames == 0 {
		return Result{}, fmt.Errorf("%w: no frames at %d fps", pipeline.ErrInvalidDuration, p.FPS)
	}

	o.Logger.Info(l10n.F("Exporting %d images (%s preset, %dx%d at %d fps)", len(job.Units), p.Label, p.Width, p.Height, p.FPS))
	o.preflightMemory(totalFrames, p)
	o.saveJob(jobID, user, job.Units, p, totalDuration, totalFrames)

	// 3. Render
	rendered, err := o.render(ctx, job.Units, p, progress)
	if err != nil {
		o.Logger.Error(l10n.F("Failed to render frames: %s", err))
		return Result{}, fmt.Errorf("render stage: %w", err)
	}
	o.saveFrames(rendered.Frames)

	// 4. Encode
	progress("Encoding video...")
	encoded, err := o.EncodeStage.Execute(ctx, pipeline.EncodeInput{
		Frames:        rendered.Frames,
		Preset:        p,
		TotalDuration: totalDuration,
	})
	if err != nil {
		o.Logger.Error(l10n.F("Failed to encode video: %s", err))
		return Result{}, fmt.Errorf("encode stage: %w", err)
	}
	o.Logger.Info(l10n.F("Video encoded: %d bytes", len(encoded.VideoData)))

	ext := extensionFor(first.Format)
	if !strings.HasPrefix(encoded.MIMEType, containerMIME(first.Format)) {
		o.Logger.Warn(l10n.F("Encoded as %s but saving with %s extension", encoded.MIMEType, ext))
	}

	if job.OutputPath != "" {
		if err := o.FS.WriteFile(job.OutputPath, encoded.VideoData); err != nil {
			o.Logger.Error(l10n.F("Failed to write output: %s", err))
			return Result{}, fmt.Errorf("write output: %w", err)
		}
		o.Logger.Info(l10n.F("Output saved to %s", job.OutputPath))
	}

	// 5. Accounting
	settled = true
	o.account(ctx, user, reservation)

	return Result{
		JobID:      jobID,
		Data:       encoded.VideoData,
		MIMEType:   encoded.MIMEType,
		Extension:  ext,
		Preset:     p.Label,
		FrameCount: encoded.FrameCount,
		DurationMs: encoded.DurationMs,
		FileSize:   encoded.FileSize,
		Width:      p.Width,
		Height:     p.Height,
		OutputPath: job.OutputPath,
	}, nil
}

// admit consults the quota before any rendering. Services that support
// reservations hold a slot for the job.
func (o *Orchestrator) admit(ctx context.Context, user string) (ports.Reservation, error) {
	if r, ok := o.Quota.(ports.QuotaReserver); ok {
		res, err := r.Reserve(ctx, user)
		if err != nil {
			if errors.Is(err, pipeline.ErrExportLimitReached) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", pipeline.ErrExportLimitReached, err)
		}
		return res, nil
	}

	ok, err := o.Quota.CheckLimit(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrExportLimitReached, err)
	}
	if !ok {
		return nil, pipeline.ErrExportLimitReached
	}
	return nil, nil
}

// account records the export. Failures are logged; the video is kept.
func (o *Orchestrator) account(ctx context.Context, user string, reservation ports.Reservation) {
	ctx = context.WithoutCancel(ctx)
	var err error
	if reservation != nil {
		err = reservation.Commit(ctx)
	} else {
		err = o.Quota.IncrementUsage(ctx, user)
	}
	if err != nil {
		o.Logger.Warn(l10n.F("Failed to record export usage: %s", err))
		return
	}
	if r, ok := o.Quota.(ports.UsageReporter); ok {
		if u, err := r.Usage(ctx, user); err == nil && u.Limit > 0 {
			o.Logger.Info(l10n.F("Exports used: %d of %d", u.Used, u.Limit))
		}
	}
}

// render holds a render session for the duration of the render stage only.
func (o *Orchestrator) render(ctx context.Context, units []pipeline.ImageUnit, p pipeline.QualityPreset, progress pipeline.ProgressFunc) (pipeline.RenderResult, error) {
	session, err := o.Acquire(ctx)
	if err != nil {
		return pipeline.RenderResult{}, err
	}
	defer func() {
		if err := session.Release(); err != nil {
			o.Logger.Warn(l10n.F("Failed to release render context: %s", err))
		}
	}()

	return o.RenderStage.Execute(ctx, pipeline.RenderInput{
		Units:    units,
		Preset:   p,
		Renderer: session,
		Progress: progress,
	})
}

const mib = 1 << 20

func (o *Orchestrator) preflightMemory(totalFrames int, p pipeline.QualityPreset) {
	if o.Memory == nil {
		return
	}
	need := uint64(totalFrames) * p.FrameBytes()
	avail, err := o.Memory.AvailableBytes()
	if err != nil {
		o.Logger.Debug("Memory check skipped: %s", err)
		return
	}
	if need > avail {
		o.Logger.Warn(l10n.F("Frames need about %d MiB but only %d MiB is available", need/mib, avail/mib))
	}
}

type jobRecord struct {
	JobID         string                 `json:"jobId"`
	User          string                 `json:"user"`
	Preset        pipeline.QualityPreset `json:"preset"`
	TotalDuration float64                `json:"totalDuration"`
	TotalFrames   int                    `json:"totalFrames"`
	Units         []pipeline.ImageUnit   `json:"units"`
}

func (o *Orchestrator) saveJob(jobID, user string, units []pipeline.ImageUnit, p pipeline.QualityPreset, total float64, frames int) {
	if !o.Sink.Enabled() {
		return
	}
	data, err := json.MarshalIndent(jobRecord{
		JobID:         jobID,
		User:          user,
		Preset:        p,
		TotalDuration: total,
		TotalFrames:   frames,
		Units:         units,
	}, "", "  ")
	if err == nil {
		err = o.Sink.SaveJobJSON(data)
	}
	if err != nil {
		o.Logger.Warn(l10n.F("Failed to save debug output: %s", err))
	}
}

func (o *Orchestrator) saveFrames(frames []pipeline.Frame) {
	if !o.Sink.Enabled() {
		return
	}
	for _, f := range frames {
		if err := o.Sink.SaveFrame(f.UnitIndex, f.Index, f.Image); err != nil {
			o.Logger.Warn(l10n.F("Failed to save debug output: %s", err))
			return
		}
	}
	if err := o.Sink.Flush(); err != nil {
		o.Logger.Warn(l10n.F("Failed to save debug output: %s", err))
	}
}

func extensionFor(c pipeline.Container) string {
	if c == pipeline.ContainerWebM {
		return ".webm"
	}
	return ".mp4"
}

func containerMIME(c pipeline.Container) string {
	if c == pipeline.ContainerWebM {
		return "video/webm"
	}
	return "video/mp4"
}
