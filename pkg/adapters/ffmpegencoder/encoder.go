package ffmpegencoder

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"
	"math"
	"os"
	"os/exec"
	"sync"

	"github.com/user/screenreel/pkg/ports"
)

// Options configures the encoder.
type Options struct {
	FFmpegPath string // empty searches FFMPEG_PATH, PATH and common locations
}

// Encoder implements ports.VideoEncoder with an ffmpeg subprocess.
//
// Frames are written at a constant rate. A frame whose timestamp lies past
// the next slot is preceded by copies of the previous frame; a frame whose
// slot was already written is dropped.
type Encoder struct {
	opts Options

	mu       sync.Mutex
	width    int
	height   int
	fps      float64
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stderr   bytes.Buffer
	tempPath string
	last     []byte
	written  int
	dropped  int
}

// New creates a new ffmpeg encoder.
func New(opts Options) *Encoder {
	return &Encoder{opts: opts}
}

// Begin starts ffmpeg for the negotiated MIME type.
func (e *Encoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd != nil {
		e.abort()
	}

	t, err := targetFor(opts.MIMEType)
	if err != nil {
		return err
	}
	ffmpegPath, err := FindFFmpeg(e.opts.FFmpegPath)
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp("", "screenreel_*"+t.ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	e.tempPath = tmpFile.Name()
	tmpFile.Close()

	e.width, e.height, e.fps = width, height, fps
	e.last = nil
	e.written, e.dropped = 0, 0
	e.stderr.Reset()

	e.cmd = exec.Command(ffmpegPath, t.args(width, height, fps, opts.BitsPerSecond, opts.Quality, e.tempPath)...)
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		e.cleanup()
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		e.cleanup()
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	return nil
}

// EncodeFrame writes img into the slot matching timestampMs.
func (e *Encoder) EncodeFrame(img image.Image, timestampMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil {
		return ErrNotInitialized
	}

	slot := int(math.Round(float64(timestampMs) * e.fps / 1000))
	if slot < e.written {
		e.dropped++
		return nil
	}

	for e.last != nil && e.written < slot {
		if err := e.write(e.last); err != nil {
			return err
		}
	}

	pix := e.rgba(img)
	if err := e.write(pix); err != nil {
		return err
	}
	e.last = pix
	return nil
}

func (e *Encoder) rgba(img image.Image) []byte {
	if m, ok := img.(*image.RGBA); ok && m.Rect.Dx() == e.width && m.Rect.Dy() == e.height && m.Stride == e.width*4 {
		return m.Pix
	}
	rgba := image.NewRGBA(image.Rect(0, 0, e.width, e.height))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba.Pix
}

func (e *Encoder) write(pix []byte) error {
	if _, err := e.stdin.Write(pix); err != nil {
		return fmt.Errorf("failed to write frame: %w\nstderr: %s", err, e.stderr.String())
	}
	e.written++
	return nil
}

// End closes the input, waits for ffmpeg and returns the encoded file.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil {
		return nil, ErrNotInitialized
	}
	defer e.cleanup()

	e.stdin.Close()
	e.stdin = nil

	if err := e.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, e.stderr.String())
	}

	data, err := os.ReadFile(e.tempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read output: %w", err)
	}
	return data, nil
}

// Stats returns the number of frames written and dropped since Begin.
func (e *Encoder) Stats() (written, dropped int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.written, e.dropped
}

// abort kills a running process. Callers hold mu.
func (e *Encoder) abort() {
	if e.stdin != nil {
		e.stdin.Close()
		e.stdin = nil
	}
	if e.cmd != nil && e.cmd.Process != nil {
		e.cmd.Process.Kill()
		e.cmd.Wait()
	}
	e.cleanup()
}

func (e *Encoder) cleanup() {
	if e.tempPath != "" {
		os.Remove(e.tempPath)
		e.tempPath = ""
	}
	e.cmd = nil
	e.last = nil
}

var _ ports.VideoEncoder = (*Encoder)(nil)
