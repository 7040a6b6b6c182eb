// Package config provides job file loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/user/screenreel/pkg/pipeline"
	"github.com/user/screenreel/pkg/ports"
	"github.com/user/screenreel/pkg/screenreel"
	"github.com/user/screenreel/pkg/stages/encode"
)

// ErrNoImagePath is returned for an image entry without a path.
var ErrNoImagePath = errors.New("config: image path is required")

// Config represents a screenreel job file.
type Config struct {
	// Output
	Output string `yaml:"output"`

	// Export gate
	User       string `yaml:"user"`
	QuotaLimit int    `yaml:"quota_limit"`
	QuotaFile  string `yaml:"quota_file"`

	// Rendering and encoding
	BatchSize  int    `yaml:"batch_size"`
	Clock      string `yaml:"clock"`
	Quality    int    `yaml:"quality"`
	FFmpegPath string `yaml:"ffmpeg_path"`
	Workers    int    `yaml:"workers"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`

	Images []ImageConfig `yaml:"images"`
}

// ImageConfig is one image and its animation. Angles are in degrees.
type ImageConfig struct {
	Path         string     `yaml:"path"`
	Duration     float64    `yaml:"duration"`
	Animation    string     `yaml:"animation"`
	Easing       string     `yaml:"easing"`
	Speed        float64    `yaml:"speed"`
	Zoom         float64    `yaml:"zoom"`
	TiltDeg      float64    `yaml:"tilt_deg"`
	XRotationDeg float64    `yaml:"x_rotation_deg"`
	YRotationDeg float64    `yaml:"y_rotation_deg"`
	Background   string     `yaml:"background"`
	Quality      string     `yaml:"quality"`
	Format       string     `yaml:"format"`
	Blur         BlurConfig `yaml:"blur"`
}

// BlurConfig represents the radial blur settings.
type BlurConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Intensity float64 `yaml:"intensity"`
	Radius    float64 `yaml:"radius"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		BatchSize: 10,
		Clock:     encode.ClockVirtual.String(),
		LogLevel:  "info",
		DebugDir:  "./debug",
	}
}

// DefaultImage returns the settings applied to an image entry before its
// own fields.
func DefaultImage() ImageConfig {
	s := pipeline.DefaultAnimationSettings()
	return ImageConfig{
		Duration:     s.Duration,
		Animation:    s.Type.String(),
		Easing:       string(s.Easing),
		Speed:        s.Speed,
		Zoom:         s.Zoom,
		TiltDeg:      screenreel.Degrees(s.Tilt),
		XRotationDeg: screenreel.Degrees(s.XRotation),
		YRotationDeg: screenreel.Degrees(s.YRotation),
		Background:   s.BackgroundColor,
		Quality:      s.Quality,
		Format:       string(s.Format),
		Blur: BlurConfig{
			Enabled:   s.Blur.Enabled,
			Intensity: s.Blur.Intensity,
			Radius:    s.Blur.Radius,
		},
	}
}

// UnmarshalYAML fills unset fields from DefaultImage.
func (c *ImageConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain ImageConfig
	p := plain(DefaultImage())
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = ImageConfig(p)
	return nil
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), err
	}
	return Parse(data)
}

// Parse decodes a YAML job over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ClockMode returns the parsed clock setting.
func (c Config) ClockMode() (encode.ClockMode, error) {
	return encode.ParseClockMode(c.Clock)
}

// ExporterOptions converts the file settings for screenreel.NewExporter.
func (c Config) ExporterOptions(log ports.Logger) (screenreel.Options, error) {
	clock, err := c.ClockMode()
	if err != nil {
		return screenreel.Options{}, err
	}
	return screenreel.Options{
		User:       c.User,
		QuotaLimit: c.QuotaLimit,
		QuotaFile:  c.QuotaFile,
		BatchSize:  c.BatchSize,
		Clock:      clock,
		Quality:    c.Quality,
		FFmpegPath: c.FFmpegPath,
		Workers:    c.Workers,
		Debug:      c.Debug,
		DebugDir:   c.DebugDir,
		Logger:     log,
	}, nil
}

// ToUnits reads every image through fs and builds the job units. Relative
// paths resolve against baseDir.
func (c Config) ToUnits(fs ports.FileSystem, baseDir string) ([]pipeline.ImageUnit, error) {
	units := make([]pipeline.ImageUnit, 0, len(c.Images))
	for i, img := range c.Images {
		u, err := img.ToUnit(fs, baseDir)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
		units = append(units, u)
	}
	return units, nil
}

// ToUnit reads the image and converts its settings. Values are passed
// through unclamped so out-of-range input fails validation.
func (c ImageConfig) ToUnit(fs ports.FileSystem, baseDir string) (pipeline.ImageUnit, error) {
	if c.Path == "" {
		return pipeline.ImageUnit{}, ErrNoImagePath
	}
	settings, err := c.Settings()
	if err != nil {
		return pipeline.ImageUnit{}, err
	}

	path := c.Path
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := fs.ReadFile(path)
	if err != nil {
		return pipeline.ImageUnit{}, fmt.Errorf("read %s: %w", c.Path, err)
	}

	return pipeline.ImageUnit{
		Name:     filepath.Base(c.Path),
		Image:    data,
		Settings: settings,
	}, nil
}

// Settings converts the entry into animation settings.
func (c ImageConfig) Settings() (pipeline.AnimationSettings, error) {
	t, err := pipeline.ParseAnimationType(c.Animation)
	if err != nil {
		return pipeline.AnimationSettings{}, err
	}
	return pipeline.AnimationSettings{
		Duration:        c.Duration,
		Type:            t,
		Easing:          pipeline.Easing(c.Easing),
		Speed:           c.Speed,
		Zoom:            c.Zoom,
		Tilt:            screenreel.Radians(c.TiltDeg),
		XRotation:       screenreel.Radians(c.XRotationDeg),
		YRotation:       screenreel.Radians(c.YRotationDeg),
		BackgroundColor: c.Background,
		Quality:         c.Quality,
		Format:          pipeline.Container(c.Format),
		Blur: pipeline.BlurEffect{
			Enabled:   c.Blur.Enabled,
			Intensity: c.Blur.Intensity,
			Radius:    c.Blur.Radius,
		},
	}, nil
}
