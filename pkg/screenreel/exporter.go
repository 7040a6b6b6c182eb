package screenreel

import (
	"github.com/user/screenreel/pkg/adapters/ffmpegencoder"
	"github.com/user/screenreel/pkg/adapters/filequota"
	"github.com/user/screenreel/pkg/adapters/filesink"
	"github.com/user/screenreel/pkg/adapters/localidentity"
	"github.com/user/screenreel/pkg/adapters/logger"
	"github.com/user/screenreel/pkg/adapters/memquota"
	"github.com/user/screenreel/pkg/adapters/mp4probe"
	"github.com/user/screenreel/pkg/adapters/nullsink"
	"github.com/user/screenreel/pkg/adapters/osfilesystem"
	"github.com/user/screenreel/pkg/adapters/softgpu"
	"github.com/user/screenreel/pkg/adapters/sysmem"
	"github.com/user/screenreel/pkg/orchestrator"
	"github.com/user/screenreel/pkg/ports"
	"github.com/user/screenreel/pkg/scene"
	"github.com/user/screenreel/pkg/stages/encode"
	"github.com/user/screenreel/pkg/stages/render"
)

// Options configures an exporter built from the local adapters.
type Options struct {
	User       string // empty resolves from the environment
	QuotaLimit int    // exports per user, 0 is unlimited
	QuotaFile  string // persistent quota state; empty keeps counts in memory

	BatchSize  int              // frames per render batch (default: render.DefaultBatchSize)
	Clock      encode.ClockMode // encoder timing (default: encode.ClockVirtual)
	Quality    int              // encoder quality, 0-63, 0 for the codec default
	FFmpegPath string           // empty searches FFMPEG_PATH, PATH and common locations
	Workers    int              // rasterizer bands (default: NumCPU)

	Debug    bool
	DebugDir string // default: ./debug

	Logger ports.Logger // default: discard
}

// NewExporter wires an orchestrator from the local adapters: the software
// GPU, ffmpeg for encoding and a memory or file backed quota.
func NewExporter(opts Options) *orchestrator.Orchestrator {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoop()
	}
	fs := osfilesystem.New()

	ffopts := ffmpegencoder.Options{FFmpegPath: opts.FFmpegPath}
	renderer := scene.NewRenderer(softgpu.New(softgpu.Options{Workers: opts.Workers}), log, scene.Options{})

	return orchestrator.New(orchestrator.Deps{
		Identity:    localidentity.FromEnv(opts.User),
		Quota:       QuotaFor(opts),
		Memory:      sysmem.New(),
		Acquire:     orchestrator.FromScene(renderer),
		RenderStage: render.New(log, render.Options{BatchSize: opts.BatchSize}),
		EncodeStage: encode.NewStage(
			ffmpegencoder.New(ffopts),
			ffmpegencoder.NewSupport(ffopts),
			mp4probe.New(),
			log,
			encode.Options{
				Timeline: encode.Timeline{Mode: opts.Clock},
				Quality:  opts.Quality,
			},
		),
		FS:     fs,
		Sink:   SinkFor(opts, fs),
		Logger: log,
	})
}

// QuotaFor returns the quota service selected by opts.
func QuotaFor(opts Options) ports.QuotaService {
	if opts.QuotaFile != "" {
		return filequota.New(opts.QuotaFile, opts.QuotaLimit)
	}
	return memquota.New(opts.QuotaLimit)
}

// SinkFor returns the debug sink selected by opts.
func SinkFor(opts Options, fs ports.FileSystem) ports.DebugSink {
	if !opts.Debug {
		return nullsink.New()
	}
	dir := opts.DebugDir
	if dir == "" {
		dir = "./debug"
	}
	return filesink.New(dir, fs)
}
