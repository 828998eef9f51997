package xsynth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSample returns a short, in-memory two-channel sample: a plain
// rising ramp so interpolation and position tests have a predictable shape
// without decoding a real audio file (teacher's test_helpers.go pattern,
// generalized to this engine's SampleData).
func newTestSample(frames int) *SampleData {
	l := make([]float32, frames)
	r := make([]float32, frames)
	for i := 0; i < frames; i++ {
		l[i] = float32(i) / float32(frames)
		r[i] = float32(i) / float32(frames)
	}
	return &SampleData{Channels: [][]float32{l, r}, SampleRate: testSampleRate, Length: frames}
}

func newTestSpawnerParams(sample *SampleData, loop LoopParams, envelope EnvelopeDescriptor) *SampleVoiceSpawnerParams {
	return &SampleVoiceSpawnerParams{
		Sample:         sample,
		Loop:           loop,
		Envelope:       compileEnvelope(envelope, testSampleRate),
		PitchKeycenter: 60,
	}
}

func TestSpawnProducesDistinctVoicesPerCall(t *testing.T) {
	sp := newSpawner(newTestSpawnerParams(newTestSample(1000), LoopParams{Mode: NoLoop}, EnvelopeDescriptor{SustainPercent: 1, ReleaseSeconds: 0.01}))
	v1 := sp.Spawn(60, 100, NewVoiceControlData())
	v2 := sp.Spawn(60, 100, NewVoiceControlData())
	assert.NotSame(t, v1, v2)
}

func TestVoiceRenderToIsAdditive(t *testing.T) {
	sp := newSpawner(newTestSpawnerParams(newTestSample(1000), LoopParams{Mode: NoLoop}, EnvelopeDescriptor{SustainPercent: 1, ReleaseSeconds: 0.01}))
	v := sp.Spawn(60, 127, NewVoiceControlData())

	buf := make([]float32, 8)
	buf[0] = 10
	v.RenderTo(buf)
	assert.Equal(t, float32(10), buf[0]-renderFresh(t, sp)[0])
}

// renderFresh spawns an identical voice and renders into a zeroed buffer,
// used as a baseline to confirm RenderTo only adds, never overwrites.
func renderFresh(t *testing.T, sp *Spawner) []float32 {
	t.Helper()
	v := sp.Spawn(60, 127, NewVoiceControlData())
	buf := make([]float32, 8)
	v.RenderTo(buf)
	return buf
}

func TestVoiceRenderToHandlesNonMultipleOfLaneWidth(t *testing.T) {
	sp := newSpawner(newTestSpawnerParams(newTestSample(1000), LoopParams{Mode: NoLoop}, EnvelopeDescriptor{SustainPercent: 1, ReleaseSeconds: 0.01}))
	v := sp.Spawn(60, 127, NewVoiceControlData())

	// 3 frames (6 floats) is not a multiple of laneWidth(4): exercises the
	// voice's pending-lane carry-over path.
	buf1 := make([]float32, 6)
	v.RenderTo(buf1)

	v2 := sp.Spawn(60, 127, NewVoiceControlData())
	buf2 := make([]float32, 6)
	v2.RenderTo(buf2)
	// Calling again for the next 3 frames must continue, not repeat.
	buf3 := make([]float32, 6)
	v.RenderTo(buf3)
	assert.NotEqual(t, buf1, buf3)
}

func TestVoiceEndsWhenSampleRunsOffNonLoopingEnd(t *testing.T) {
	sp := newSpawner(newTestSpawnerParams(newTestSample(4), LoopParams{Mode: NoLoop}, EnvelopeDescriptor{SustainPercent: 1, ReleaseSeconds: 0.001}))
	v := sp.Spawn(60, 100, NewVoiceControlData())

	buf := make([]float32, 200)
	v.RenderTo(buf)
	assert.True(t, v.Ended())
}

func TestVoiceDoesNotEndWhileLooping(t *testing.T) {
	sp := newSpawner(newTestSpawnerParams(newTestSample(4), LoopParams{Start: 0, End: 3, Mode: LoopContinuous}, EnvelopeDescriptor{SustainPercent: 1, ReleaseSeconds: 0.001}))
	v := sp.Spawn(60, 100, NewVoiceControlData())

	buf := make([]float32, 200)
	v.RenderTo(buf)
	assert.False(t, v.Ended())
}

func TestVoiceEndsAfterSignalReleaseOnLoopingSample(t *testing.T) {
	sp := newSpawner(newTestSpawnerParams(newTestSample(4), LoopParams{Start: 0, End: 3, Mode: LoopContinuous}, EnvelopeDescriptor{SustainPercent: 1, ReleaseSeconds: 0.003}))
	v := sp.Spawn(60, 100, NewVoiceControlData())

	v.SignalRelease(ReleaseStandard)
	require.True(t, v.IsReleasing())

	buf := make([]float32, 200)
	v.RenderTo(buf)
	assert.True(t, v.Ended())
}

func TestVoiceKeyAndVelocityAreCapturedAtSpawn(t *testing.T) {
	sp := newSpawner(newTestSpawnerParams(newTestSample(1000), LoopParams{Mode: NoLoop}, EnvelopeDescriptor{SustainPercent: 1, ReleaseSeconds: 0.01}))
	v := sp.Spawn(64, 77, NewVoiceControlData())
	assert.EqualValues(t, 64, v.Key())
	assert.EqualValues(t, 77, v.Velocity())
}

func TestCutoffIsAppliedWhenConfigured(t *testing.T) {
	params := newTestSpawnerParams(newTestSample(1000), LoopParams{Mode: NoLoop}, EnvelopeDescriptor{SustainPercent: 1, ReleaseSeconds: 0.01})
	cutoff := float32(500)
	params.Cutoff = &cutoff
	sp := newSpawner(params)
	v := sp.Spawn(60, 100, NewVoiceControlData())

	buf := make([]float32, 16)
	v.RenderTo(buf)
	// No assertion on exact values (filter topology is an implementation
	// choice); just confirm rendering with a cutoff configured doesn't
	// panic and produces finite output.
	for _, s := range buf {
		assert.False(t, s != s) // not NaN
	}
}
