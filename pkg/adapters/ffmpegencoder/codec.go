package ffmpegencoder

import (
	"fmt"
	"strings"
)

// target is the ffmpeg output configuration for a MIME type.
type target struct {
	muxer   string // -f
	encoder string // -c:v
	profile string // libx264 only
	ext     string
}

// h264 profiles by avc1 profile_idc.
var avcProfiles = map[string]string{
	"42": "baseline",
	"4d": "main",
	"64": "high",
}

// targetFor maps a container/codec MIME type onto ffmpeg arguments.
func targetFor(mimeType string) (target, error) {
	container, codecs := splitMIME(mimeType)

	switch container {
	case "video/mp4":
		t := target{muxer: "mp4", encoder: "libx264", profile: "high", ext: ".mp4"}
		switch {
		case codecs == "" || codecs == "h264":
		case strings.HasPrefix(codecs, "avc1.") && len(codecs) >= 7:
			p, ok := avcProfiles[strings.ToLower(codecs[5:7])]
			if !ok {
				return target{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
			}
			t.profile = p
		default:
			return target{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
		}
		return t, nil

	case "video/webm":
		switch codecs {
		case "", "vp9":
			return target{muxer: "webm", encoder: "libvpx-vp9", ext: ".webm"}, nil
		case "vp8":
			return target{muxer: "webm", encoder: "libvpx", ext: ".webm"}, nil
		}
	}
	return target{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
}

// splitMIME splits "video/mp4;codecs=avc1.42E01E" into its type and codecs value.
func splitMIME(mimeType string) (container, codecs string) {
	container, params, _ := strings.Cut(mimeType, ";")
	container = strings.TrimSpace(strings.ToLower(container))
	for _, p := range strings.Split(params, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if ok && strings.EqualFold(k, "codecs") {
			codecs = strings.Trim(strings.TrimSpace(v), `"`)
		}
	}
	return container, codecs
}

// args builds the ffmpeg command line.
func (t target) args(width, height int, fps float64, bitsPerSecond, quality int, output string) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%.2f", fps),
		"-i", "pipe:0",
		"-c:v", t.encoder,
		"-pix_fmt", "yuv420p",
	}

	if bitsPerSecond > 0 {
		args = append(args, "-b:v", fmt.Sprintf("%d", bitsPerSecond))
	}

	switch t.encoder {
	case "libx264":
		args = append(args, "-preset", "fast", "-profile:v", t.profile)
		if quality > 0 && quality <= 63 {
			// Map our 0-63 scale onto x264's CRF (0-51)
			args = append(args, "-crf", fmt.Sprintf("%d", quality*51/63))
		}
		args = append(args, "-movflags", "+faststart")
	case "libvpx-vp9", "libvpx":
		args = append(args, "-deadline", "good", "-cpu-used", "4")
		if quality > 0 && quality <= 63 {
			args = append(args, "-crf", fmt.Sprintf("%d", quality))
		}
	}

	return append(args, "-f", t.muxer, output)
}
