package ffmpegencoder

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/user/screenreel/pkg/ports"
)

func TestTargetFor(t *testing.T) {
	tests := []struct {
		mime    string
		encoder string
		profile string
		muxer   string
		wantErr bool
	}{
		{"video/mp4;codecs=h264", "libx264", "high", "mp4", false},
		{"video/mp4;codecs=avc1.42E01E", "libx264", "baseline", "mp4", false},
		{"video/mp4;codecs=avc1.4D401E", "libx264", "main", "mp4", false},
		{"video/mp4;codecs=avc1.64001E", "libx264", "high", "mp4", false},
		{"video/mp4", "libx264", "high", "mp4", false},
		{"video/webm;codecs=vp9", "libvpx-vp9", "", "webm", false},
		{"video/webm;codecs=vp8", "libvpx", "", "webm", false},
		{"video/webm", "libvpx-vp9", "", "webm", false},
		{"video/mp4;codecs=avc1.58A01E", "", "", "", true},
		{"video/mp4;codecs=hvc1", "", "", "", true},
		{"video/ogg", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			got, err := targetFor(tt.mime)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedType) {
					t.Errorf("expected ErrUnsupportedType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.encoder != tt.encoder || got.profile != tt.profile || got.muxer != tt.muxer {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestSplitMIME(t *testing.T) {
	c, codecs := splitMIME(`Video/MP4; codecs="avc1.42E01E"`)
	if c != "video/mp4" || codecs != "avc1.42E01E" {
		t.Errorf("got %q %q", c, codecs)
	}
	c, codecs = splitMIME("video/webm")
	if c != "video/webm" || codecs != "" {
		t.Errorf("got %q %q", c, codecs)
	}
}

func TestArgs(t *testing.T) {
	tgt, _ := targetFor("video/mp4;codecs=avc1.42E01E")
	args := tgt.args(1280, 720, 30, 4_800_000, 0, "/tmp/out.mp4")

	want := [][2]string{
		{"-s", "1280x720"},
		{"-b:v", "4800000"},
		{"-profile:v", "baseline"},
		{"-c:v", "libx264"},
		{"-f", "mp4"},
	}
	for _, w := range want {
		i := slices.Index(args, w[0])
		found := false
		for ; i >= 0 && i < len(args)-1; i++ {
			if args[i] == w[0] && args[i+1] == w[1] {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected %s %s in %v", w[0], w[1], args)
		}
	}
	if args[len(args)-1] != "/tmp/out.mp4" {
		t.Errorf("output must be last, got %v", args)
	}
	if slices.Contains(args, "-crf") {
		t.Error("no crf expected without a quality")
	}
}

const encodersOutput = `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC (codec h264)
 V....D libvpx-vp9           libvpx VP9 (codec vp9)
 A....D aac                  AAC (Advanced Audio Coding)
`

const muxersOutput = `File formats:
 D. = Demuxing supported
 .E = Muxing supported
 --
  E mp4             MP4 (MPEG-4 Part 14)
 D  mov,mp4,m4a     QuickTime / MOV
  E webm            WebM
`

func TestParseCapabilities(t *testing.T) {
	enc := parseCapabilities([]byte(encodersOutput), 'V')
	if !enc["libx264"] || !enc["libvpx-vp9"] {
		t.Errorf("missing video encoders: %v", enc)
	}
	if enc["aac"] || enc["libvpx"] {
		t.Errorf("unexpected encoders: %v", enc)
	}

	mux := parseCapabilities([]byte(muxersOutput), 'E')
	if !mux["mp4"] || !mux["webm"] {
		t.Errorf("missing muxers: %v", mux)
	}
	if mux["m4a"] {
		t.Error("demux-only format reported as muxer")
	}
}

func TestSupport_Cached(t *testing.T) {
	s := &Support{}
	s.once.Do(func() {
		s.encoders = parseCapabilities([]byte(encodersOutput), 'V')
		s.muxers = parseCapabilities([]byte(muxersOutput), 'E')
	})

	if !s.IsTypeSupported("video/mp4;codecs=h264") {
		t.Error("expected h264 mp4 to be supported")
	}
	if !s.IsTypeSupported("video/webm;codecs=vp9") {
		t.Error("expected vp9 webm to be supported")
	}
	if s.IsTypeSupported("video/webm;codecs=vp8") {
		t.Error("vp8 has no encoder")
	}
	if s.IsTypeSupported("video/quicktime") {
		t.Error("unmapped type must be unsupported")
	}
}

func TestFindFFmpeg(t *testing.T) {
	if _, err := FindFFmpeg(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("expected ErrFFmpegNotFound for missing custom path, got %v", err)
	}

	fake := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(fake, []byte{}, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FFMPEG_PATH", fake)
	got, err := FindFFmpeg("")
	if err != nil || got != fake {
		t.Errorf("expected FFMPEG_PATH to win, got %q, %v", got, err)
	}
}

func TestEncoder_NotInitialized(t *testing.T) {
	enc := New(Options{})
	if err := enc.EncodeFrame(image.NewRGBA(image.Rect(0, 0, 2, 2)), 0); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if _, err := enc.End(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func testFrame(w, h, n int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x + n*8), G: uint8(y * 2), B: uint8(n * 16), A: 255})
		}
	}
	return img
}

func encode(t *testing.T, mime string, timestamps []int) ([]byte, *Encoder) {
	t.Helper()
	if !IsAvailable() {
		t.Skip("ffmpeg not available")
	}
	support := NewSupport(Options{})
	if !support.IsTypeSupported(mime) {
		t.Skipf("ffmpeg cannot produce %s", mime)
	}

	enc := New(Options{})
	if err := enc.Begin(64, 48, 10, ports.EncoderOptions{MIMEType: mime, BitsPerSecond: 500_000}); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	for i, ts := range timestamps {
		if err := enc.EncodeFrame(testFrame(64, 48, i), ts); err != nil {
			t.Fatalf("EncodeFrame %d failed: %v", i, err)
		}
	}
	data, err := enc.End()
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}
	return data, enc
}

func TestEncoder_MP4(t *testing.T) {
	data, enc := encode(t, "video/mp4;codecs=avc1.42E01E", []int{0, 100, 200, 300, 400})
	if len(data) < 8 || string(data[4:8]) != "ftyp" {
		t.Fatalf("expected MP4 output with ftyp box")
	}
	if written, dropped := enc.Stats(); written != 5 || dropped != 0 {
		t.Errorf("expected 5 written, 0 dropped; got %d, %d", written, dropped)
	}
}

func TestEncoder_WebM(t *testing.T) {
	data, _ := encode(t, "video/webm;codecs=vp9", []int{0, 100, 200})
	if len(data) < 4 || data[0] != 0x1A || data[1] != 0x45 || data[2] != 0xDF || data[3] != 0xA3 {
		t.Fatal("expected EBML header")
	}
}

func TestEncoder_PadsAndDrops(t *testing.T) {
	// 0 -> slot 0, 300 -> slot 3 (pads 1, 2), 310 -> slot 3 again (dropped).
	_, enc := encode(t, "video/mp4;codecs=h264", []int{0, 300, 310})
	if written, dropped := enc.Stats(); written != 4 || dropped != 1 {
		t.Errorf("expected 4 written, 1 dropped; got %d, %d", written, dropped)
	}
}
