package xsynth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
)

// SampleData is an immutable, shared stereo sample: one f32 array per
// channel at the engine's stream sample rate. Many voices alias the same
// arrays; Go's GC keeps them alive for as long as any voice or spawner
// references them, so no explicit refcounting is needed (spec §3
// "Ownership").
type SampleData struct {
	Channels   [][]float32
	SampleRate int
	Length     int // frames per channel
}

func (s *SampleData) channel(ch int) []float32 {
	if ch < len(s.Channels) {
		return s.Channels[ch]
	}
	// Missing right channel on a mono source: fold left into both sides.
	return s.Channels[0]
}

// decodeSample loads a WAV or FLAC file and resamples it to targetRate,
// always producing a 2-channel SampleData (mono sources are duplicated to
// both channels, since mono output is a non-goal).
func decodeSample(path string, targetRate int) (*SampleData, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var raw [][]float64
	var srcRate int
	var err error

	switch ext {
	case ".wav":
		raw, srcRate, err = decodeWAV(path)
	case ".flac":
		raw, srcRate, err = decodeFLAC(path)
	default:
		return nil, newLoadError(ErrKindDecode, path, fmt.Errorf("unsupported audio format %q", ext))
	}
	if err != nil {
		return nil, err
	}

	if len(raw) == 1 {
		raw = [][]float64{raw[0], raw[0]}
	}

	channels := make([][]float32, 2)
	for ch := 0; ch < 2; ch++ {
		channels[ch] = resampleLinear(raw[ch], srcRate, targetRate)
	}

	sampleDebug("decoded %s: srcRate=%d targetRate=%d frames=%d", path, srcRate, targetRate, len(channels[0]))

	return &SampleData{
		Channels:   channels,
		SampleRate: targetRate,
		Length:     len(channels[0]),
	}, nil
}

// decodeWAV reads a WAV file and returns per-channel float64 samples in
// [-1, 1], grounded on the teacher's sample.go loadWAV.
func decodeWAV(path string) ([][]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, newLoadError(ErrKindIO, path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, newLoadError(ErrKindDecode, path, fmt.Errorf("invalid WAV file"))
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, newLoadError(ErrKindDecode, path, err)
	}

	numChannels := int(buf.Format.NumChannels)
	if numChannels < 1 {
		numChannels = 1
	}

	var scale float64
	switch dec.BitDepth {
	case 8:
		scale = 128.0
	case 16:
		scale = 32768.0
	case 24:
		scale = 8388608.0
	case 32:
		scale = 2147483648.0
	default:
		scale = 32768.0
	}

	frames := len(buf.Data) / numChannels
	channels := make([][]float64, numChannels)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChannels; ch++ {
			channels[ch][i] = float64(buf.Data[i*numChannels+ch]) / scale
		}
	}

	return channels, int(buf.Format.SampleRate), nil
}

// decodeFLAC reads a FLAC file, grounded on the teacher's sample.go loadFLAC.
func decodeFLAC(path string) ([][]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, newLoadError(ErrKindIO, path, err)
	}
	defer f.Close()

	stream, err := flac.New(f)
	if err != nil {
		return nil, 0, newLoadError(ErrKindDecode, path, err)
	}
	defer stream.Close()

	info := stream.Info
	if info == nil {
		return nil, 0, newLoadError(ErrKindDecode, path, fmt.Errorf("no stream info"))
	}

	numChannels := int(info.NChannels)
	scale := float64(int64(1) << (info.BitsPerSample - 1))

	channels := make([][]float64, numChannels)

	for {
		frame, ferr := stream.ParseNext()
		if ferr != nil {
			break
		}
		for ch := 0; ch < numChannels; ch++ {
			subframe := frame.Subframes[ch]
			for _, s := range subframe.Samples {
				channels[ch] = append(channels[ch], float64(s)/scale)
			}
		}
	}

	return channels, int(info.SampleRate), nil
}

// resampleLinear converts src at srcRate to dstRate with linear
// interpolation. No pack dependency performs sample-rate conversion, so
// this stays on stdlib math (see DESIGN.md).
func resampleLinear(src []float64, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || len(src) == 0 {
		out := make([]float32, len(src))
		for i, v := range src {
			out[i] = float32(v)
		}
		return out
	}

	ratio := float64(srcRate) / float64(dstRate)
	outLen := int(float64(len(src)) / ratio)
	out := make([]float32, outLen)

	for i := 0; i < outLen; i++ {
		srcPos := float64(i) * ratio
		idx := int(srcPos)
		frac := srcPos - float64(idx)

		var a, b float64
		a = src[idx]
		if idx+1 < len(src) {
			b = src[idx+1]
		} else {
			b = a
		}
		out[i] = float32(a + frac*(b-a))
	}
	return out
}
