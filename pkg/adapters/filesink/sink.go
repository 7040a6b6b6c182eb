// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"

	"github.com/user/screenreel/pkg/adapters/contactsheet"
	"github.com/user/screenreel/pkg/ports"
)

// DefaultSheetEvery is the frame stride of contact sheet thumbnails.
const DefaultSheetEvery = 10

// Sink saves debug output to files.
//
//	<baseDir>/job.json
//	<baseDir>/frames/unit-01/frame-0001.png
//	<baseDir>/contact-sheet.png
type Sink struct {
	baseDir string
	fs      ports.FileSystem
	encoder png.Encoder

	sheet      *contactsheet.Sheet
	sheetEvery int
}

// Options configures a Sink.
type Options struct {
	// SheetEvery adds every Nth frame of each unit to the contact sheet
	// (default: DefaultSheetEvery). Negative disables the sheet.
	SheetEvery int
	Sheet      contactsheet.Options
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem) *Sink {
	return NewWithOptions(baseDir, fs, Options{})
}

// NewWithOptions creates a new FileSink with a custom contact sheet.
func NewWithOptions(baseDir string, fs ports.FileSystem, opts Options) *Sink {
	s := &Sink{
		baseDir:    baseDir,
		fs:         fs,
		encoder:    png.Encoder{CompressionLevel: png.BestSpeed},
		sheetEvery: opts.SheetEvery,
	}
	if s.sheetEvery == 0 {
		s.sheetEvery = DefaultSheetEvery
	}
	if s.sheetEvery > 0 {
		s.sheet = contactsheet.New(opts.Sheet)
	}
	return s
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveJobJSON saves the resolved job description.
func (s *Sink) SaveJobJSON(data []byte) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	path := filepath.Join(s.baseDir, "job.json")
	return s.fs.WriteFile(path, data)
}

// SaveFrame saves a rendered frame as PNG. Indexes are zero-based; file
// names are one-based.
func (s *Sink) SaveFrame(unitIndex, frameIndex int, img image.Image) error {
	dir := filepath.Join(s.baseDir, "frames", fmt.Sprintf("unit-%02d", unitIndex+1))
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", frameIndex+1))
	if err := s.writePNG(path, img); err != nil {
		return err
	}

	if s.sheet != nil && frameIndex%s.sheetEvery == 0 {
		s.sheet.Add(fmt.Sprintf("%d-%d", unitIndex+1, frameIndex+1), img)
	}
	return nil
}

// Flush writes the contact sheet when any frames were saved.
func (s *Sink) Flush() error {
	if s.sheet == nil || s.sheet.Len() == 0 {
		return nil
	}
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	return s.writePNG(filepath.Join(s.baseDir, "contact-sheet.png"), s.sheet.Render())
}

func (s *Sink) writePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := s.encoder.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return s.fs.WriteFile(path, buf.Bytes())
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
