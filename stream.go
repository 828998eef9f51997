package xsynth

// ChannelCount is the fixed output channel layout the engine renders at.
// Mono output is an explicit non-goal: the engine always renders stereo.
type ChannelCount int

const (
	Stereo ChannelCount = 2
)

// AudioStreamParams is the fixed {sample_rate, channel_count} the engine
// renders at (spec §3 "Stream params"). It never changes after an engine
// is constructed; soundfonts are loaded (and resampled) against it.
type AudioStreamParams struct {
	SampleRate int
	Channels   ChannelCount
}

// laneWidth is the SIMD width generators tick at (spec §9). Voice.RenderTo
// always ticks whole laneWidth blocks; lanes of the last block that a call
// does not consume are carried over to the next call.
const laneWidth = 4
