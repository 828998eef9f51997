package xsynth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuffer(n int) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = float32(i)
	}
	return buf
}

func TestSampleReaderNoLoopPastEndReturnsZero(t *testing.T) {
	r := newSampleReader(testBuffer(10), LoopParams{Mode: NoLoop})
	assert.Equal(t, float32(5), r.get(5))
	assert.Equal(t, float32(0), r.get(10))
	assert.Equal(t, float32(0), r.get(1000))
}

func TestSampleReaderNegativePositionReturnsZero(t *testing.T) {
	r := newSampleReader(testBuffer(10), LoopParams{Mode: NoLoop})
	assert.Equal(t, float32(0), r.get(-1))
}

func TestSampleReaderLoopContinuousWraps(t *testing.T) {
	r := newSampleReader(testBuffer(10), LoopParams{Start: 2, End: 8, Mode: LoopContinuous})
	// position 8 is the loop end itself and is read unwrapped; positions
	// past it are moved back by whole loop lengths
	assert.Equal(t, testBuffer(10)[8], r.get(8))
	assert.Equal(t, testBuffer(10)[2], r.get(8+6))
	assert.Equal(t, testBuffer(10)[3], r.get(8+6+1))
}

func TestSampleReaderLoopNeverReportsPastEnd(t *testing.T) {
	r := newSampleReader(testBuffer(10), LoopParams{Start: 2, End: 8, Mode: LoopContinuous})
	assert.False(t, r.isPastEnd(1_000_000))
}

func TestSampleReaderOneShotReportsPastEnd(t *testing.T) {
	r := newSampleReader(testBuffer(10), LoopParams{Mode: OneShot})
	assert.False(t, r.isPastEnd(9))
	assert.True(t, r.isPastEnd(10))
}

func TestSampleReaderOffsetShiftsPosition(t *testing.T) {
	r := newSampleReader(testBuffer(10), LoopParams{Offset: 3, Mode: NoLoop})
	assert.Equal(t, testBuffer(10)[3], r.get(0))
}

func TestNearestGrabberIgnoresFractional(t *testing.T) {
	g := newNearestGrabber(testBuffer(10), LoopParams{Mode: NoLoop})
	out := make([]float32, 4)
	g.Get([]int32{1, 2, 3, 4}, []float32{0.9, 0.9, 0.9, 0.9}, out)
	assert.Equal(t, []float32{1, 2, 3, 4}, out)
}

func TestLinearGrabberInterpolates(t *testing.T) {
	g := newLinearGrabber(testBuffer(10), LoopParams{Mode: NoLoop})
	out := make([]float32, 1)
	g.Get([]int32{2}, []float32{0.5}, out)
	require.Len(t, out, 1)
	assert.InDelta(t, 2.5, out[0], 1e-6)
}

func TestLinearGrabberAtZeroFractionalMatchesNearest(t *testing.T) {
	g := newLinearGrabber(testBuffer(10), LoopParams{Mode: NoLoop})
	out := make([]float32, 1)
	g.Get([]int32{4}, []float32{0}, out)
	assert.Equal(t, float32(4), out[0])
}
