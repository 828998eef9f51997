package xsynth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSpawnerMatrixFillsKeyVelocityRange(t *testing.T) {
	regions := []RegionParams{
		{LoKey: 60, HiKey: 62, LoVel: 0, HiVel: 127, SamplePath: "a.wav", Envelope: EnvelopeDescriptor{SustainPercent: 1}},
	}
	samples := map[string]*SampleData{"a.wav": newTestSample(100)}
	envelopes := compileDistinctEnvelopes(regions, testSampleRate)

	matrix := buildSpawnerMatrix(regions, samples, envelopes)

	for k := 60; k <= 62; k++ {
		require.NotNil(t, matrix[k][64].attack)
	}
	assert.Nil(t, matrix[59][64].attack)
	assert.Nil(t, matrix[63][64].attack)
}

func TestBuildSpawnerMatrixLastWriterWinsOnOverlap(t *testing.T) {
	regions := []RegionParams{
		{LoKey: 60, HiKey: 60, LoVel: 0, HiVel: 127, SamplePath: "first.wav", Envelope: EnvelopeDescriptor{SustainPercent: 1}},
		{LoKey: 60, HiKey: 60, LoVel: 0, HiVel: 127, SamplePath: "second.wav", Envelope: EnvelopeDescriptor{SustainPercent: 1}},
	}
	samples := map[string]*SampleData{
		"first.wav":  newTestSample(100),
		"second.wav": newTestSample(200),
	}
	envelopes := compileDistinctEnvelopes(regions, testSampleRate)

	matrix := buildSpawnerMatrix(regions, samples, envelopes)

	require.NotNil(t, matrix[60][64].attack)
	assert.Same(t, samples["second.wav"], matrix[60][64].attack.params.Sample)
}

func TestBuildSpawnerMatrixSkipsRegionsWithUndecodedSamples(t *testing.T) {
	regions := []RegionParams{
		{LoKey: 60, HiKey: 60, LoVel: 0, HiVel: 127, SamplePath: "missing.wav", Envelope: EnvelopeDescriptor{SustainPercent: 1}},
	}
	matrix := buildSpawnerMatrix(regions, map[string]*SampleData{}, compileDistinctEnvelopes(regions, testSampleRate))
	assert.Nil(t, matrix[60][64].attack)
}

func TestBuildSpawnerMatrixFilesReleaseRegionsSeparately(t *testing.T) {
	regions := []RegionParams{
		{LoKey: 60, HiKey: 60, LoVel: 0, HiVel: 127, SamplePath: "a.wav", IsRelease: true, Envelope: EnvelopeDescriptor{SustainPercent: 1}},
	}
	samples := map[string]*SampleData{"a.wav": newTestSample(100)}
	matrix := buildSpawnerMatrix(regions, samples, compileDistinctEnvelopes(regions, testSampleRate))

	assert.Nil(t, matrix[60][64].attack)
	assert.NotNil(t, matrix[60][64].release)
}

func TestBuildSpawnerMatrixDefaultsPitchKeycenterToKeyPerCell(t *testing.T) {
	regions := []RegionParams{
		{LoKey: 60, HiKey: 62, LoVel: 0, HiVel: 127, SamplePath: "a.wav", Envelope: EnvelopeDescriptor{SustainPercent: 1}},
	}
	samples := map[string]*SampleData{"a.wav": newTestSample(100)}
	matrix := buildSpawnerMatrix(regions, samples, compileDistinctEnvelopes(regions, testSampleRate))

	for k := uint8(60); k <= 62; k++ {
		require.NotNil(t, matrix[k][64].attack)
		assert.Equal(t, k, matrix[k][64].attack.params.PitchKeycenter)
	}
}

func TestBuildSpawnerMatrixExplicitPitchKeycenterAppliesToEveryKey(t *testing.T) {
	keycenter := uint8(60)
	regions := []RegionParams{
		{LoKey: 60, HiKey: 62, LoVel: 0, HiVel: 127, SamplePath: "a.wav", PitchKeycenter: &keycenter, Envelope: EnvelopeDescriptor{SustainPercent: 1}},
	}
	samples := map[string]*SampleData{"a.wav": newTestSample(100)}
	matrix := buildSpawnerMatrix(regions, samples, compileDistinctEnvelopes(regions, testSampleRate))

	for k := uint8(60); k <= 62; k++ {
		require.NotNil(t, matrix[k][64].attack)
		assert.EqualValues(t, 60, matrix[k][64].attack.params.PitchKeycenter)
	}
}

func TestSampleSoundfontGetAttackIgnoresBankPreset(t *testing.T) {
	regions := []RegionParams{
		{LoKey: 60, HiKey: 60, LoVel: 0, HiVel: 127, SamplePath: "a.wav", Envelope: EnvelopeDescriptor{SustainPercent: 1}},
	}
	samples := map[string]*SampleData{"a.wav": newTestSample(100)}
	sf := &SampleSoundfont{
		stream: AudioStreamParams{SampleRate: testSampleRate, Channels: Stereo},
		matrix: buildSpawnerMatrix(regions, samples, compileDistinctEnvelopes(regions, testSampleRate)),
	}

	got1 := sf.GetAttackVoiceSpawnersAt(0, 0, 60, 64)
	got2 := sf.GetAttackVoiceSpawnersAt(5, 9, 60, 64)
	require.Len(t, got1, 1)
	require.Len(t, got2, 1)
	assert.Same(t, got1[0], got2[0])
}

func TestSampleSoundfontGetReleaseIsAlwaysEmpty(t *testing.T) {
	sf := &SampleSoundfont{stream: AudioStreamParams{SampleRate: testSampleRate, Channels: Stereo}}
	assert.Empty(t, sf.GetReleaseVoiceSpawnersAt(0, 0, 60, 64))
}
