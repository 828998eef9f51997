package xsynth

// StereoBlock is one SIMD-width tick of interleaved-free stereo samples
// (spec §9 "SIMD width"): laneWidth samples per channel, produced by one
// call to Next.
type StereoBlock struct {
	L [laneWidth]float32
	R [laneWidth]float32
}

// Generator is a pull-based stereo DSP node (spec §4.3). The voice's DSP
// graph is a fixed composition of a small, closed set of concrete
// Generator implementations decided at construction time (spec §9 Design
// Notes, strategy (a): tagged/static composition, not an open dynamic-
// dispatch graph) — so a voice's shape never changes across its lifetime.
type Generator interface {
	Next() StereoBlock
	Ended() bool
	SignalRelease(kind ReleaseKind)
	ProcessControls(c *VoiceControlData)
}

// monoConstGen is a generator-graph leaf holding a fixed scalar, broadcast
// across both channels and every lane (spec §4.3 "Const").
type monoConstGen struct {
	value float32
}

func (g *monoConstGen) next() float32                         { return g.value }
func (g *monoConstGen) Ended() bool                            { return false }
func (g *monoConstGen) SignalRelease(kind ReleaseKind)         {}
func (g *monoConstGen) ProcessControls(c *VoiceControlData)    {}

// pitchControlGen holds the VoiceControlData.VoicePitchMultiplier last
// passed to ProcessControls (spec §4.3 "ControlReader").
type pitchControlGen struct {
	multiplier float32
}

func newPitchControlGen() *pitchControlGen { return &pitchControlGen{multiplier: 1.0} }

func (g *pitchControlGen) next() float32 { return g.multiplier }
func (g *pitchControlGen) Ended() bool   { return false }
func (g *pitchControlGen) SignalRelease(kind ReleaseKind) {}
func (g *pitchControlGen) ProcessControls(c *VoiceControlData) {
	if c != nil {
		g.multiplier = c.VoicePitchMultiplier
	}
}

// pitchGen computes the per-voice sample-advance speed each lane:
// speed_mult * voice_pitch_multiplier (spec §4.3 "pitch").
type pitchGen struct {
	base    *monoConstGen
	control *pitchControlGen
}

func newPitchGen(speedMult float32) *pitchGen {
	return &pitchGen{base: &monoConstGen{value: speedMult}, control: newPitchControlGen()}
}

func (g *pitchGen) next() float32 { return g.base.next() * g.control.next() }
func (g *pitchGen) Ended() bool   { return false }
func (g *pitchGen) SignalRelease(kind ReleaseKind) {}
func (g *pitchGen) ProcessControls(c *VoiceControlData) { g.control.ProcessControls(c) }

// stereoSamplerGen advances an f64 time accumulator by the pitch
// generator's speed each lane and grabs interpolated samples from a pair
// of per-channel Grabbers (spec §4.3 "sampler").
type stereoSamplerGen struct {
	grabberL Grabber
	grabberR Grabber
	pitch    *pitchGen
	time     float64

	indexes     [laneWidth]int32
	fractionals [laneWidth]float32
}

func newStereoSamplerGen(grabberL, grabberR Grabber, pitch *pitchGen) *stereoSamplerGen {
	return &stereoSamplerGen{grabberL: grabberL, grabberR: grabberR, pitch: pitch}
}

func (g *stereoSamplerGen) Next() StereoBlock {
	for i := 0; i < laneWidth; i++ {
		g.indexes[i] = int32(g.time)
		g.fractionals[i] = float32(g.time - float64(int64(g.time)))
		g.time += float64(g.pitch.next())
	}

	var out StereoBlock
	g.grabberL.Get(g.indexes[:], g.fractionals[:], out.L[:])
	g.grabberR.Get(g.indexes[:], g.fractionals[:], out.R[:])
	return out
}

func (g *stereoSamplerGen) Ended() bool {
	return g.grabberL.IsPastEnd(g.time) || g.grabberR.IsPastEnd(g.time)
}

func (g *stereoSamplerGen) SignalRelease(kind ReleaseKind) { g.pitch.SignalRelease(kind) }
func (g *stereoSamplerGen) ProcessControls(c *VoiceControlData) { g.pitch.ProcessControls(c) }

// envelopeGen wraps the runtime Envelope as a mono generator feeding the
// amplitude-multiplier chain (spec §4.3 "env").
type envelopeGen struct {
	env *Envelope
}

func newEnvelopeGen(params *EnvelopeParameters) *envelopeGen {
	return &envelopeGen{env: newEnvelope(params)}
}

func (g *envelopeGen) next() float32                         { return g.env.next() }
func (g *envelopeGen) Ended() bool                            { return g.env.ended() }
func (g *envelopeGen) SignalRelease(kind ReleaseKind)         { g.env.signalRelease(kind) }
func (g *envelopeGen) ProcessControls(c *VoiceControlData)    {}

// ampEnvSamplerGen is the fixed composition env * amp * sampler (spec
// §4.3's default assembly, collapsed into one struct since the
// multiplication order is fixed for every sampled voice).
type ampEnvSamplerGen struct {
	env     *envelopeGen
	amp     *monoConstGen
	sampler *stereoSamplerGen
}

func newAmpEnvSamplerGen(sampler *stereoSamplerGen, envParams *EnvelopeParameters, amp float32) *ampEnvSamplerGen {
	return &ampEnvSamplerGen{
		env:     newEnvelopeGen(envParams),
		amp:     &monoConstGen{value: amp},
		sampler: sampler,
	}
}

func (g *ampEnvSamplerGen) Next() StereoBlock {
	block := g.sampler.Next()
	amp := g.amp.next()
	for i := 0; i < laneWidth; i++ {
		env := g.env.next()
		scale := env * amp
		block.L[i] *= scale
		block.R[i] *= scale
	}
	return block
}

// Ended propagates per spec §4.3: ended iff the sampler is past end
// (non-looping) or the envelope has ended. For looping samples the
// sampler never reports past-end, so envelope release is what terminates
// the voice.
func (g *ampEnvSamplerGen) Ended() bool {
	return g.sampler.Ended() || g.env.Ended()
}

func (g *ampEnvSamplerGen) SignalRelease(kind ReleaseKind) {
	g.sampler.SignalRelease(kind)
	g.env.SignalRelease(kind)
}

func (g *ampEnvSamplerGen) ProcessControls(c *VoiceControlData) {
	g.sampler.ProcessControls(c)
}

// cutoffGen wraps a Generator with an independent one-pole lowpass filter
// per channel (spec §4.3 "[optional] out = Cutoff(out)"; topology decision
// recorded in DESIGN.md).
type cutoffGen struct {
	inner Generator
	left  *onePoleLPF
	right *onePoleLPF
}

func newCutoffGen(inner Generator, cutoffHz float32, sampleRate int) *cutoffGen {
	return &cutoffGen{
		inner: inner,
		left:  newOnePoleLPF(cutoffHz, sampleRate),
		right: newOnePoleLPF(cutoffHz, sampleRate),
	}
}

func (g *cutoffGen) Next() StereoBlock {
	block := g.inner.Next()
	for i := 0; i < laneWidth; i++ {
		block.L[i] = g.left.process(block.L[i])
		block.R[i] = g.right.process(block.R[i])
	}
	return block
}

func (g *cutoffGen) Ended() bool                         { return g.inner.Ended() }
func (g *cutoffGen) SignalRelease(kind ReleaseKind)      { g.inner.SignalRelease(kind) }
func (g *cutoffGen) ProcessControls(c *VoiceControlData) { g.inner.ProcessControls(c) }
