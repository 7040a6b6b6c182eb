package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter formats a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used for headings and labels.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Export Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", t("Generated"), s.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintf(&b, "## %s\n\n", t("Video"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	if s.Video.Path != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", t("File"), s.Video.Path)
	}
	fmt.Fprintf(&b, "| %s | %s |\n", t("Type"), s.Video.MIMEType)
	fmt.Fprintf(&b, "| %s | %s (%dx%d, %d fps) |\n", t("Preset"), s.Video.Preset, s.Video.Width, s.Video.Height, s.Video.FPS)
	fmt.Fprintf(&b, "| %s | %s |\n", t("Bitrate"), formatBitrate(s.Video.Bitrate))
	fmt.Fprintf(&b, "| %s | %d |\n", t("Frames"), s.Video.FrameCount)
	fmt.Fprintf(&b, "| %s | %d ms |\n", t("Duration"), s.Video.DurationMs)
	fmt.Fprintf(&b, "| %s | %s |\n\n", t("File Size"), formatBytes(s.Video.FileSize))

	if len(s.Images) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Images"))
		fmt.Fprintf(&b, "| # | %s | %s | %s | %s | %s |\n|---|---|---|---|---|---|\n",
			t("Name"), t("Animation"), t("Easing"), t("Duration"), t("Blur"))
		for i, img := range s.Images {
			blur := t("Off")
			if img.Blur {
				blur = t("On")
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %.1f s | %s |\n", i+1, img.Name, img.Animation, img.Easing, img.Duration, blur)
		}
		b.WriteString("\n")
	}

	if s.Quota.Limit > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Quota"))
		fmt.Fprintf(&b, "%s: %d / %d\n\n", t("Exports used"), s.Quota.Used, s.Quota.Limit)
	}

	b.WriteString("---\n")
	if f.version != "" {
		fmt.Fprintf(&b, "screenreel %s", f.version)
	} else {
		b.WriteString("screenreel")
	}
	if s.JobID != "" {
		fmt.Fprintf(&b, " · %s", s.JobID)
	}
	b.WriteString("\n")

	return b.String()
}

var _ Formatter = (*MarkdownFormatter)(nil)

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}

func formatBitrate(bps int) string {
	if bps >= 1_000_000 {
		return fmt.Sprintf("%.1f Mbps", float64(bps)/1_000_000)
	}
	return fmt.Sprintf("%d kbps", bps/1000)
}
