package xsynth

import "math"

// onePoleLPF is a one-pole lowpass filter, the simplest of the two
// topologies spec §9 allows ("a simple 1-pole or biquad LPF; the exact
// topology is unspecified"), grounded on the original source's
// SingleChannelMultiPassLPF (one pass, one pole, used per-channel).
type onePoleLPF struct {
	a0    float32
	b1    float32
	state float32
}

func newOnePoleLPF(cutoffHz float32, sampleRate int) *onePoleLPF {
	f := &onePoleLPF{}
	f.setCutoff(cutoffHz, sampleRate)
	return f
}

func (f *onePoleLPF) setCutoff(cutoffHz float32, sampleRate int) {
	if cutoffHz <= 0 {
		cutoffHz = 1
	}
	x := math.Exp(-2.0 * math.Pi * float64(cutoffHz) / float64(sampleRate))
	f.b1 = float32(x)
	f.a0 = 1 - f.b1
}

func (f *onePoleLPF) process(in float32) float32 {
	f.state = f.a0*in + f.b1*f.state
	return f.state
}
