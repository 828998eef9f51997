package xsynth

// LoopMode selects how a SampleReader maps a monotonically increasing
// position into the underlying buffer once it runs past the buffer's
// natural end (spec §3 "LoopParams", §4.1).
type LoopMode int

const (
	NoLoop LoopMode = iota
	OneShot
	LoopContinuous
	LoopSustain
)

// LoopParams describes the loop region of a sample. Invariant (spec §3):
// if Mode is a looping mode, Start < End <= length.
type LoopParams struct {
	Offset uint32
	Start  uint32
	End    uint32
	Mode   LoopMode
}

func (lp LoopMode) isLooping() bool {
	return lp == LoopContinuous || lp == LoopSustain
}

// SampleReader maps an integer playback position through a sample's loop
// policy and returns the raw value at that position, never faulting: reads
// past the raw buffer return 0.0 (spec §4.1).
type SampleReader struct {
	buffer []float32
	loop   LoopParams
}

func newSampleReader(buffer []float32, loop LoopParams) *SampleReader {
	return &SampleReader{buffer: buffer, loop: loop}
}

// get returns the raw sample value at integer position pos, applying the
// loop-mode position mapping from spec §4.1's table.
func (r *SampleReader) get(pos int64) float32 {
	pos += int64(r.loop.Offset)

	if r.loop.Mode.isLooping() {
		start := int64(r.loop.Start)
		end := int64(r.loop.End)
		diff := end - start
		if diff > 0 && pos > end {
			n := (pos-end)/diff + 1
			pos -= n * diff
		}
	}

	if pos < 0 || pos >= int64(len(r.buffer)) {
		return 0.0
	}
	return r.buffer[pos]
}

// isPastEnd reports, for a non-looping sample, whether pos minus
// Offset has reached the buffer length. Looping modes never end this way
// (spec §4.1 table).
func (r *SampleReader) isPastEnd(pos float64) bool {
	if r.loop.Mode.isLooping() {
		return false
	}
	return pos-float64(r.loop.Offset) >= float64(len(r.buffer))
}

// Grabber pulls a lane-width block of interpolated samples out of a
// SampleReader given integer indexes and fractional offsets (spec §4.1).
type Grabber interface {
	Get(indexes []int32, fractional []float32, out []float32)
	IsPastEnd(pos float64) bool
}

// NearestGrabber returns buffer[indexes[i]] lane-wise, ignoring fractional.
type NearestGrabber struct {
	reader *SampleReader
}

func newNearestGrabber(buffer []float32, loop LoopParams) *NearestGrabber {
	return &NearestGrabber{reader: newSampleReader(buffer, loop)}
}

func (g *NearestGrabber) Get(indexes []int32, fractional []float32, out []float32) {
	for i := range out {
		out[i] = g.reader.get(int64(indexes[i]))
	}
}

func (g *NearestGrabber) IsPastEnd(pos float64) bool { return g.reader.isPastEnd(pos) }

// LinearGrabber returns buffer[i]*(1-f) + buffer[i+1]*f lane-wise.
type LinearGrabber struct {
	reader *SampleReader
}

func newLinearGrabber(buffer []float32, loop LoopParams) *LinearGrabber {
	return &LinearGrabber{reader: newSampleReader(buffer, loop)}
}

func (g *LinearGrabber) Get(indexes []int32, fractional []float32, out []float32) {
	for i := range out {
		a := g.reader.get(int64(indexes[i]))
		b := g.reader.get(int64(indexes[i]) + 1)
		f := fractional[i]
		out[i] = a*(1-f) + b*f
	}
}

func (g *LinearGrabber) IsPastEnd(pos float64) bool { return g.reader.isPastEnd(pos) }
