// Package mp4probe reads codec, duration and dimensions from MP4 files.
package mp4probe

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/screenreel/pkg/ports"
)

// Codec names reported by the probe.
const (
	CodecH264    = "h264"
	CodecAV1     = "av1"
	CodecHEVC    = "hevc"
	CodecUnknown = "unknown"
)

// ErrNoVideoTrack is returned for files without a video track.
var ErrNoVideoTrack = errors.New("mp4probe: no video track found")

// Probe implements ports.ContainerProbe.
type Probe struct{}

// New creates a new Probe.
func New() *Probe {
	return &Probe{}
}

// Probe decodes data as MP4 and reports its video track.
func (p *Probe) Probe(data []byte) (ports.ContainerInfo, error) {
	info := ports.ContainerInfo{Codec: CodecUnknown}

	f, err := mp4.DecodeFile(bytes.NewReader(data))
	if err != nil {
		return info, fmt.Errorf("decode mp4: %w", err)
	}

	moov := f.Moov
	if f.IsFragmented() && f.Init != nil && f.Init.Moov != nil {
		moov = f.Init.Moov
	}
	if moov == nil {
		return info, fmt.Errorf("decode mp4: missing moov")
	}

	trak := videoTrack(moov)
	if trak == nil {
		return info, ErrNoVideoTrack
	}
	info.Codec, info.Width, info.Height = sampleEntry(trak)

	if moov.Mvhd != nil && moov.Mvhd.Timescale > 0 && moov.Mvhd.Duration > 0 {
		info.DurationMs = int(moov.Mvhd.Duration * 1000 / uint64(moov.Mvhd.Timescale))
		return info, nil
	}

	if f.IsFragmented() {
		ms, err := fragmentDuration(f, moov, trak)
		if err != nil {
			return info, err
		}
		info.DurationMs = ms
	}
	return info, nil
}

func videoTrack(moov *mp4.MoovBox) *mp4.TrakBox {
	for _, trak := range moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			return trak
		}
	}
	return nil
}

func sampleEntry(trak *mp4.TrakBox) (codec string, width, height int) {
	codec = CodecUnknown
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return codec, 0, 0
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			codec = CodecH264
		case "av01":
			codec = CodecAV1
		case "hvc1", "hev1":
			codec = CodecHEVC
		default:
			continue
		}
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			width, height = int(vse.Width), int(vse.Height)
		}
		return codec, width, height
	}
	return codec, 0, 0
}

// fragmentDuration sums the sample durations of the video track over all fragments.
func fragmentDuration(f *mp4.File, moov *mp4.MoovBox, trak *mp4.TrakBox) (int, error) {
	trackID := trak.Tkhd.TrackID
	timescale := uint64(1000)
	if trak.Mdia.Mdhd != nil && trak.Mdia.Mdhd.Timescale > 0 {
		timescale = uint64(trak.Mdia.Mdhd.Timescale)
	}

	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var total uint64
	for _, seg := range f.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			hasTrack := false
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID == trackID {
					hasTrack = true
				}
			}
			if !hasTrack {
				continue
			}
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return 0, fmt.Errorf("get samples: %w", err)
			}
			for _, s := range samples {
				total += uint64(s.Dur)
			}
		}
	}
	return int(total * 1000 / timescale), nil
}

var _ ports.ContainerProbe = (*Probe)(nil)
