// Package main provides the CLI entry point for screenreel.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/screenreel/pkg/adapters/logger"
	"github.com/user/screenreel/pkg/adapters/osfilesystem"
	"github.com/user/screenreel/pkg/config"
	"github.com/user/screenreel/pkg/orchestrator"
	"github.com/user/screenreel/pkg/pipeline"
	"github.com/user/screenreel/pkg/ports"
	"github.com/user/screenreel/pkg/preset"
	"github.com/user/screenreel/pkg/screenreel"
	"github.com/user/screenreel/pkg/summarizer"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:        "screenreel",
		Usage:       l10n.T("Turn screenshots into animated videos"),
		Version:     version,
		Description: l10n.T("screenreel animates each image with a camera move and encodes the result as MP4 or WebM."),
		Commands: []*cli.Command{
			renderCommand(),
			presetsCommand(),
			animationsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func renderCommand() *cli.Command {
	catOutput := l10n.T("Output")
	catAnimation := l10n.T("Animation")
	catVideo := l10n.T("Video and Quality")
	catQuota := l10n.T("Export Quota")
	catDebug := l10n.T("Debug")
	catLogging := l10n.T("Logging")

	return &cli.Command{
		Name:      "render",
		Usage:     l10n.T("Render images into an animated video"),
		ArgsUsage: "[image...]",
		Description: l10n.T("Render the images given as arguments, or the images of a job file, into one video. " +
			"Animation flags apply to every image."),
		Flags: []cli.Flag{
			// Output
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML job file"), Category: catOutput},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output video path (required unless set in the job file)"), Category: catOutput},
			&cli.StringFlag{Name: "summary", Usage: l10n.T("Write a Markdown summary to this path"), Category: catOutput},

			// Animation
			&cli.Float64Flag{Name: "duration", Aliases: []string{"t"}, Usage: l10n.T("Seconds per image (1-10)"), Category: catAnimation},
			&cli.StringFlag{Name: "animation", Aliases: []string{"a"}, Usage: l10n.T("Animation type (see the animations command)"), Category: catAnimation},
			&cli.StringFlag{Name: "easing", Usage: l10n.T("Easing (smooth, linear)"), Category: catAnimation},
			&cli.Float64Flag{Name: "speed", Usage: l10n.T("Travel multiplier (0.5-2.0)"), Category: catAnimation},
			&cli.Float64Flag{Name: "zoom", Usage: l10n.T("Start distance multiplier (1.2-5.0)"), Category: catAnimation},
			&cli.Float64Flag{Name: "tilt", Usage: l10n.T("Tilt in degrees (-50 to 50)"), Category: catAnimation},
			&cli.Float64Flag{Name: "x-rotation", Usage: l10n.T("X rotation in degrees (-30 to 30)"), Category: catAnimation},
			&cli.Float64Flag{Name: "y-rotation", Usage: l10n.T("Y rotation in degrees (-30 to 30)"), Category: catAnimation},
			&cli.StringFlag{Name: "background", Usage: l10n.T("Background color (hex, e.g., #f8f9fa)"), Category: catAnimation},
			&cli.BoolFlag{Name: "blur", Usage: l10n.T("Enable radial blur"), Category: catAnimation},
			&cli.Float64Flag{Name: "blur-intensity", Usage: l10n.T("Blur intensity (0-1)"), Category: catAnimation},
			&cli.Float64Flag{Name: "blur-radius", Usage: l10n.T("Blur radius (0.1-0.9)"), Category: catAnimation},

			// Video
			&cli.StringFlag{Name: "quality", Aliases: []string{"q"}, Usage: l10n.T("Quality preset (ultra, high, medium, low)"), Category: catVideo},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: l10n.T("Container (mp4, webm)"), Category: catVideo},
			&cli.IntFlag{Name: "crf", Usage: l10n.T("Encoder quality (0-63, lower is better, 0 for the codec default)"), Category: catVideo},
			&cli.IntFlag{Name: "batch-size", Usage: l10n.T("Frames rendered per batch"), Category: catVideo},
			&cli.StringFlag{Name: "clock", Usage: l10n.T("Encoder timing (virtual, wallclock)"), Category: catVideo},
			&cli.IntFlag{Name: "workers", Usage: l10n.T("Rasterizer workers (default: CPU count)"), Category: catVideo},
			&cli.StringFlag{Name: "ffmpeg", Usage: l10n.T("Path to ffmpeg (falls back to FFMPEG_PATH, then PATH)"), Category: catVideo},

			// Quota
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: l10n.T("User to account the export to (default: SCREENREEL_USER, then USER)"), Category: catQuota},
			&cli.IntFlag{Name: "quota-limit", Usage: l10n.T("Exports allowed per user (0 = unlimited)"), Category: catQuota},
			&cli.StringFlag{Name: "quota-file", Usage: l10n.T("TOML file that keeps export counts between runs"), Category: catQuota},

			// Debug
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Save the job and every frame"), Category: catDebug},
			&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output"), Category: catDebug},

			// Logging
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: catLogging},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: catLogging},
		},
		Action: runRender,
	}
}

func runRender(c *cli.Context) error {
	cfg, baseDir, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyRunFlags(c, &cfg)
	for i := range cfg.Images {
		applyImageFlags(c, &cfg.Images[i])
	}
	if cfg.Output == "" {
		return errors.New(l10n.T("an output path is required (--output)"))
	}

	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
	}

	fs := osfilesystem.New()
	units, err := cfg.ToUnits(fs, baseDir)
	if err != nil {
		return err
	}
	units, err = appendImages(c, fs, units)
	if err != nil {
		return err
	}

	opts, err := cfg.ExporterOptions(log)
	if err != nil {
		return err
	}
	exporter := screenreel.NewExporter(opts)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := exporter.Run(ctx, orchestrator.Job{
		Units:      units,
		OutputPath: cfg.Output,
		Progress:   func(status string) { log.Info(status) },
	})
	if err != nil {
		if errors.Is(err, context.Canceled) && c.Context.Err() == nil {
			log.Warn(l10n.T("Interrupted, shutting down..."))
		}
		return err
	}

	summary := buildSummary(ctx, exporter, result, units)
	if !c.Bool("quiet") {
		fmt.Print(summarizer.NewTableFormatter(l10n.T).Format(summary))
	}
	if path := c.String("summary"); path != "" {
		w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(summarizer.WithTranslator(l10n.T), summarizer.WithVersion(version)), fs)
		if err := w.Write(path, summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return nil
}

// appendImages adds the images given as arguments after the job file's
// images, each shortened to the time left on the timeline.
func appendImages(c *cli.Context, fs ports.FileSystem, units []pipeline.ImageUnit) ([]pipeline.ImageUnit, error) {
	tl := screenreel.NewTimeline(units...)
	for _, path := range c.Args().Slice() {
		img := config.DefaultImage()
		img.Path = path
		applyImageFlags(c, &img)
		unit, err := img.ToUnit(fs, "")
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", tl.Len()+1, err)
		}
		if err := tl.Add(unit); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return tl.Units(), nil
}

func loadConfig(c *cli.Context) (config.Config, string, error) {
	path := c.String("config")
	if path == "" {
		return config.Defaults(), "", nil
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return cfg, "", fmt.Errorf("load config: %w", err)
	}
	return cfg, filepath.Dir(path), nil
}

func applyRunFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("user") {
		cfg.User = c.String("user")
	}
	if c.IsSet("quota-limit") {
		cfg.QuotaLimit = c.Int("quota-limit")
	}
	if c.IsSet("quota-file") {
		cfg.QuotaFile = c.String("quota-file")
	}
	if c.IsSet("batch-size") {
		cfg.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("clock") {
		cfg.Clock = c.String("clock")
	}
	if c.IsSet("crf") {
		cfg.Quality = c.Int("crf")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpegPath = c.String("ffmpeg")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
}

func applyImageFlags(c *cli.Context, img *config.ImageConfig) {
	if c.IsSet("duration") {
		img.Duration = c.Float64("duration")
	}
	if c.IsSet("animation") {
		img.Animation = c.String("animation")
	}
	if c.IsSet("easing") {
		img.Easing = c.String("easing")
	}
	if c.IsSet("speed") {
		img.Speed = c.Float64("speed")
	}
	if c.IsSet("zoom") {
		img.Zoom = c.Float64("zoom")
	}
	if c.IsSet("tilt") {
		img.TiltDeg = c.Float64("tilt")
	}
	if c.IsSet("x-rotation") {
		img.XRotationDeg = c.Float64("x-rotation")
	}
	if c.IsSet("y-rotation") {
		img.YRotationDeg = c.Float64("y-rotation")
	}
	if c.IsSet("background") {
		img.Background = c.String("background")
	}
	if c.IsSet("blur") {
		img.Blur.Enabled = c.Bool("blur")
	}
	if c.IsSet("blur-intensity") {
		img.Blur.Intensity = c.Float64("blur-intensity")
	}
	if c.IsSet("blur-radius") {
		img.Blur.Radius = c.Float64("blur-radius")
	}
	if c.IsSet("quality") {
		img.Quality = c.String("quality")
	}
	if c.IsSet("format") {
		img.Format = strings.ToLower(c.String("format"))
	}
}

func buildSummary(ctx context.Context, o *orchestrator.Orchestrator, res orchestrator.Result, units []pipeline.ImageUnit) *summarizer.Summary {
	b := summarizer.NewBuilder().
		WithJob(res.JobID, "").
		WithUnits(units).
		WithVideo(summarizer.VideoInfo{
			Path:       res.OutputPath,
			MIMEType:   res.MIMEType,
			FrameCount: res.FrameCount,
			DurationMs: res.DurationMs,
			FileSize:   res.FileSize,
		})
	if p, err := preset.Resolve(res.Preset); err == nil {
		b.WithPreset(p)
	}
	if user, err := o.Identity.CurrentUser(ctx); err == nil {
		b.WithJob(res.JobID, user)
		if r, ok := o.Quota.(ports.UsageReporter); ok {
			if u, err := r.Usage(ctx, user); err == nil {
				b.WithQuota(u.Used, u.Limit)
			}
		}
	}
	return b.Build()
}

func presetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "presets",
		Usage: l10n.T("List quality presets"),
		Action: func(c *cli.Context) error {
			rows := make([][]string, 0, len(preset.All()))
			for _, p := range preset.All() {
				rows = append(rows, []string{
					p.Label,
					fmt.Sprintf("%dx%d", p.Width, p.Height),
					fmt.Sprintf("%d", p.FPS),
					fmt.Sprintf("%.1f Mbps", float64(p.Bitrate())/1_000_000),
				})
			}
			fmt.Println(summarizer.RenderTable(
				[]string{l10n.T("Preset"), l10n.T("Resolution"), "FPS", l10n.T("Bitrate")},
				rows, nil,
			))
			return nil
		},
	}
}

func animationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "animations",
		Usage: l10n.T("List animation types"),
		Action: func(c *cli.Context) error {
			rows := make([][]string, 0, pipeline.AnimationTypeCount)
			for _, t := range pipeline.AnimationTypes() {
				rows = append(rows, []string{t.String(), l10n.T(animationHelp[t])})
			}
			fmt.Println(summarizer.RenderTable([]string{l10n.T("Animation"), l10n.T("Motion")}, rows, nil))
			return nil
		},
	}
}

var animationHelp = map[pipeline.AnimationType]string{
	pipeline.AnimationRise:        "Rises from below",
	pipeline.AnimationPushForward: "Moves straight toward the camera",
	pipeline.AnimationRiseLeft:    "Rises while drifting left",
	pipeline.AnimationRiseRight:   "Rises while drifting right",
	pipeline.AnimationRevealUp:    "Slides upward",
	pipeline.AnimationRevealDown:  "Slides downward",
	pipeline.AnimationSCurveLeft:  "Sweeps left along an S curve",
	pipeline.AnimationSCurveRight: "Sweeps right along an S curve",
	pipeline.AnimationSCurveUp:    "Sweeps up along an S curve",
	pipeline.AnimationSCurveDown:  "Sweeps down along an S curve",
}
