package ffmpegencoder

import (
	"bufio"
	"bytes"
	"os/exec"
	"strings"
	"sync"

	"github.com/user/screenreel/pkg/ports"
)

// Support implements ports.CodecSupport from the encoders and muxers the
// local ffmpeg build reports. The probe runs once.
type Support struct {
	opts Options

	once     sync.Once
	encoders map[string]bool
	muxers   map[string]bool
}

// NewSupport creates a new Support.
func NewSupport(opts Options) *Support {
	return &Support{opts: opts}
}

// IsTypeSupported reports whether ffmpeg can produce mimeType.
func (s *Support) IsTypeSupported(mimeType string) bool {
	t, err := targetFor(mimeType)
	if err != nil {
		return false
	}
	s.once.Do(s.load)
	return s.encoders[t.encoder] && s.muxers[t.muxer]
}

func (s *Support) load() {
	s.encoders = map[string]bool{}
	s.muxers = map[string]bool{}

	path, err := FindFFmpeg(s.opts.FFmpegPath)
	if err != nil {
		return
	}
	if out, err := exec.Command(path, "-hide_banner", "-encoders").Output(); err == nil {
		s.encoders = parseCapabilities(out, 'V')
	}
	if out, err := exec.Command(path, "-hide_banner", "-muxers").Output(); err == nil {
		s.muxers = parseCapabilities(out, 'E')
	}
}

// parseCapabilities reads the name column of "ffmpeg -encoders" or
// "ffmpeg -muxers" output. flag must appear in the leading flags column.
// Muxer rows may list several comma-separated names.
func parseCapabilities(out []byte, flag byte) map[string]bool {
	names := map[string]bool{}
	pastHeader := false
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !pastHeader {
			if strings.HasPrefix(line, "--") || line == "------" {
				pastHeader = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || strings.IndexByte(fields[0], flag) < 0 {
			continue
		}
		for _, n := range strings.Split(fields[1], ",") {
			names[n] = true
		}
	}
	return names
}

var _ ports.CodecSupport = (*Support)(nil)
