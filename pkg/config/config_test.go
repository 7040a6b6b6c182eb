package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/screenreel/pkg/mocks"
	"github.com/user/screenreel/pkg/pipeline"
	"github.com/user/screenreel/pkg/stages/encode"
)

const sampleJob = `
output: out/reel.mp4
user: alice
quota_limit: 5
batch_size: 4
clock: wallclock
images:
  - path: shots/home.png
  - path: /abs/pricing.png
    duration: 2.5
    animation: s-curve-left
    easing: linear
    tilt_deg: 10
    quality: low
    format: webm
    blur:
      enabled: true
      radius: 0.6
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleJob))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Output != "out/reel.mp4" || cfg.User != "alice" || cfg.QuotaLimit != 5 || cfg.BatchSize != 4 {
		t.Errorf("unexpected top-level fields %+v", cfg)
	}
	if cfg.LogLevel != "info" || cfg.DebugDir != "./debug" {
		t.Error("unset fields should keep defaults")
	}
	if mode, err := cfg.ClockMode(); err != nil || mode != encode.ClockWallClock {
		t.Errorf("expected wallclock, got %v (%v)", mode, err)
	}

	if len(cfg.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(cfg.Images))
	}
	if cfg.Images[0] != (func() ImageConfig { d := DefaultImage(); d.Path = "shots/home.png"; return d })() {
		t.Errorf("first image should be all defaults, got %+v", cfg.Images[0])
	}

	second := cfg.Images[1]
	if second.Duration != 2.5 || second.Animation != "s-curve-left" || second.Easing != "linear" {
		t.Errorf("unexpected second image %+v", second)
	}
	if second.Zoom != 3 || second.Background != "#f8f9fa" {
		t.Error("unset image fields should keep defaults")
	}
	if !second.Blur.Enabled || second.Blur.Radius != 0.6 || second.Blur.Intensity != 0.5 {
		t.Errorf("partial blur should merge with defaults, got %+v", second.Blur)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("images: [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(path, []byte(sampleJob), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Images) != 2 {
		t.Errorf("expected 2 images, got %d", len(cfg.Images))
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestDefaultImageSettings(t *testing.T) {
	s, err := DefaultImage().Settings()
	if err != nil {
		t.Fatal(err)
	}
	want := pipeline.DefaultAnimationSettings()
	if math.Abs(s.Tilt-want.Tilt) > 1e-12 || math.Abs(s.XRotation-want.XRotation) > 1e-12 {
		t.Errorf("angles drifted: %v vs %v", s.Tilt, want.Tilt)
	}
	s.Tilt, s.XRotation, s.YRotation = want.Tilt, want.XRotation, want.YRotation
	if s != want {
		t.Errorf("expected default settings, got %+v", s)
	}
}

func TestToUnits(t *testing.T) {
	cfg, err := Parse([]byte(sampleJob))
	if err != nil {
		t.Fatal(err)
	}

	fs := mocks.NewFileSystem()
	fs.WriteFile(filepath.Join("jobs", "shots", "home.png"), []byte("home"))
	fs.WriteFile("/abs/pricing.png", []byte("pricing"))

	units, err := cfg.ToUnits(fs, "jobs")
	if err != nil {
		t.Fatalf("ToUnits failed: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[0].Name != "home.png" || string(units[0].Image) != "home" {
		t.Errorf("unexpected first unit %+v", units[0])
	}

	s := units[1].Settings
	if s.Type != pipeline.AnimationSCurveLeft || s.Format != pipeline.ContainerWebM || s.Quality != "low" {
		t.Errorf("unexpected settings %+v", s)
	}
	if math.Abs(s.Tilt-10*math.Pi/180) > 1e-12 {
		t.Errorf("tilt not converted to radians: %v", s.Tilt)
	}
	if err := pipeline.ValidateUnits(units); err != nil {
		t.Errorf("units should validate: %v", err)
	}
}

func TestToUnits_Errors(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("a.png", []byte("a"))

	tests := []struct {
		name  string
		image ImageConfig
		want  error
	}{
		{"no path", DefaultImage(), ErrNoImagePath},
		{"bad animation", func() ImageConfig { c := DefaultImage(); c.Path = "a.png"; c.Animation = "spin"; return c }(), pipeline.ErrInvalidSettings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Config{Images: []ImageConfig{tt.image}}.ToUnits(fs, "")
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	missing := DefaultImage()
	missing.Path = "missing.png"
	if _, err := (Config{Images: []ImageConfig{missing}}).ToUnits(fs, ""); err == nil {
		t.Error("expected read error")
	}
}

func TestExporterOptions(t *testing.T) {
	cfg := Defaults()
	cfg.QuotaFile = "quota.toml"
	opts, err := cfg.ExporterOptions(nil)
	if err != nil {
		t.Fatal(err)
	}
	if opts.BatchSize != 10 || opts.Clock != encode.ClockVirtual || opts.QuotaFile != "quota.toml" {
		t.Errorf("unexpected options %+v", opts)
	}

	cfg.Clock = "sundial"
	if _, err := cfg.ExporterOptions(nil); !errors.Is(err, pipeline.ErrInvalidSettings) {
		t.Errorf("expected ErrInvalidSettings, got %v", err)
	}
}
