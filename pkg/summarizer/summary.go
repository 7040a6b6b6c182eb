// Package summarizer provides summary generation for export results.
package summarizer

import (
	"time"

	"github.com/user/screenreel/pkg/pipeline"
)

// Summary contains all data collected during an export.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	JobID       string
	User        string

	// Source images in playback order
	Images []ImageInfo

	// Video output details
	Video VideoInfo

	// Quota after the export; Limit 0 means unknown or unlimited
	Quota QuotaInfo
}

// ImageInfo describes one source image.
type ImageInfo struct {
	Name      string
	Animation string
	Easing    string
	Duration  float64 // seconds
	Blur      bool
}

// VideoInfo contains information about the output video.
type VideoInfo struct {
	Path       string
	MIMEType   string
	Preset     string
	Width      int
	Height     int
	FPS        int
	Bitrate    int
	FrameCount int
	DurationMs int
	FileSize   int64
}

// QuotaInfo contains the user's export count.
type QuotaInfo struct {
	Used  int
	Limit int
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithJob sets the job id and user.
func (b *Builder) WithJob(jobID, user string) *Builder {
	b.summary.JobID = jobID
	b.summary.User = user
	return b
}

// WithUnits describes the source images.
func (b *Builder) WithUnits(units []pipeline.ImageUnit) *Builder {
	images := make([]ImageInfo, len(units))
	for i, u := range units {
		images[i] = ImageInfo{
			Name:      u.Name,
			Animation: u.Settings.Type.String(),
			Easing:    string(u.Settings.Easing),
			Duration:  u.Settings.Duration,
			Blur:      u.Settings.Blur.Enabled,
		}
	}
	b.summary.Images = images
	return b
}

// WithVideo sets video output information.
func (b *Builder) WithVideo(video VideoInfo) *Builder {
	b.summary.Video = video
	return b
}

// WithPreset fills the video fields fixed by the preset.
func (b *Builder) WithPreset(p pipeline.QualityPreset) *Builder {
	b.summary.Video.Preset = p.Label
	b.summary.Video.Width = p.Width
	b.summary.Video.Height = p.Height
	b.summary.Video.FPS = p.FPS
	b.summary.Video.Bitrate = p.Bitrate()
	return b
}

// WithQuota sets the export count.
func (b *Builder) WithQuota(used, limit int) *Builder {
	b.summary.Quota = QuotaInfo{Used: used, Limit: limit}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
