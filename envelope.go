package xsynth

// EnvelopeDescriptor is the SFZ-level envelope shape (spec §3), seconds and
// 0..1 floats, compiled once per unique descriptor into EnvelopeParameters
// for the engine's stream rate.
type EnvelopeDescriptor struct {
	StartPercent   float32
	DelaySeconds   float32
	AttackSeconds  float32
	HoldSeconds    float32
	DecaySeconds   float32
	SustainPercent float32
	ReleaseSeconds float32
}

type envelopeStage int

const (
	stageDelay envelopeStage = iota
	stageAttack
	stageHold
	stageDecay
	stageSustain
	stageRelease
	stageOff
)

// envelopeStageParams describes one stage: a ramp from Start to End over
// Samples samples (Start==End for a hold stage). Samples == 0 for the
// sustain stage means "indefinite, wait for signalRelease".
type envelopeStageParams struct {
	Samples int64
	Start   float32
	End     float32
}

// EnvelopeParameters is the compiled, per-sample-rate stage table (spec §3).
// Shared read-only across every voice spawned from the same region; a
// per-voice attack/release override copies this struct rather than taking
// a lock on it (spec §5's copy-on-spawn preference).
type EnvelopeParameters struct {
	SampleRate int
	Stages     [6]envelopeStageParams // delay, attack, hold, decay, sustain, release
}

func secondsToSamples(seconds float32, sampleRate int) int64 {
	if seconds <= 0 {
		return 0
	}
	return int64(seconds * float32(sampleRate))
}

// compileEnvelope converts a descriptor into a stage table at sampleRate,
// per spec §3/§4.2.
func compileEnvelope(d EnvelopeDescriptor, sampleRate int) *EnvelopeParameters {
	p := &EnvelopeParameters{SampleRate: sampleRate}
	p.Stages[stageDelay] = envelopeStageParams{Samples: secondsToSamples(d.DelaySeconds, sampleRate), Start: 0, End: 0}
	p.Stages[stageAttack] = envelopeStageParams{Samples: secondsToSamples(d.AttackSeconds, sampleRate), Start: d.StartPercent, End: 1.0}
	p.Stages[stageHold] = envelopeStageParams{Samples: secondsToSamples(d.HoldSeconds, sampleRate), Start: 1.0, End: 1.0}
	p.Stages[stageDecay] = envelopeStageParams{Samples: secondsToSamples(d.DecaySeconds, sampleRate), Start: 1.0, End: d.SustainPercent}
	p.Stages[stageSustain] = envelopeStageParams{Samples: 0, Start: d.SustainPercent, End: d.SustainPercent}
	releaseSamples := secondsToSamples(d.ReleaseSeconds, sampleRate)
	if releaseSamples <= 0 {
		releaseSamples = 1
	}
	p.Stages[stageRelease] = envelopeStageParams{Samples: releaseSamples, Start: d.SustainPercent, End: 0}
	return p
}

// withOverrides returns a copy of p with the attack and/or release stage
// lengths rewritten in samples, per spec §4.2's per-voice overrides. Called
// once at voice construction (copy-on-spawn), never mutated afterward.
func (p *EnvelopeParameters) withOverrides(attackSeconds, releaseSeconds *float32) *EnvelopeParameters {
	if attackSeconds == nil && releaseSeconds == nil {
		return p
	}
	cp := *p
	if attackSeconds != nil {
		cp.Stages[stageAttack].Samples = secondsToSamples(*attackSeconds, p.SampleRate)
	}
	if releaseSeconds != nil {
		s := secondsToSamples(*releaseSeconds, p.SampleRate)
		if s <= 0 {
			s = 1
		}
		cp.Stages[stageRelease].Samples = s
	}
	return &cp
}

// killFadeSamples is the forced short release length used when a voice is
// evicted by the channel pool's voice limit (spec §4.3 "Killed" kind).
func killFadeSamples(sampleRate int) int64 {
	const killFadeMS = 5
	return int64(sampleRate) * killFadeMS / 1000
}

// Envelope is the runtime six-stage piecewise-linear amplitude envelope
// (spec §4.2). It advances one sample per call to next().
type Envelope struct {
	params         *EnvelopeParameters
	stage          envelopeStage
	samplesInStage int64
	current        float32
	releaseStart   float32 // envelope output value captured at signalRelease
	releaseSamples int64   // length of the in-flight release ramp; may differ from params on kill
}

func newEnvelope(params *EnvelopeParameters) *Envelope {
	e := &Envelope{
		params:         params,
		stage:          stageDelay,
		samplesInStage: 0,
		current:        params.Stages[stageDelay].Start,
		releaseSamples: params.Stages[stageRelease].Samples,
	}
	if params.Stages[stageDelay].Samples <= 0 {
		e.advanceStage()
	}
	return e
}

// advanceStage moves to the next stage in the delay->attack->hold->decay->
// sustain sequence, skipping any zero-length stage immediately so that e.g.
// ampeg_attack=0 takes effect on the very next sample.
func (e *Envelope) advanceStage() {
	for {
		if e.stage >= stageSustain {
			return
		}
		e.stage++
		e.samplesInStage = 0
		if e.stage == stageSustain {
			return
		}
		if e.params.Stages[e.stage].Samples > 0 {
			return
		}
	}
}

func valueAt(s envelopeStageParams, samplesIn int64) float32 {
	if s.Samples <= 0 {
		return s.End
	}
	t := float32(samplesIn) / float32(s.Samples)
	if t > 1 {
		t = 1
	}
	return s.Start + t*(s.End-s.Start)
}

// next advances the envelope by one sample and returns the current
// amplitude multiplier.
func (e *Envelope) next() float32 {
	if e.stage == stageOff {
		return 0
	}

	if e.stage == stageRelease {
		e.current = valueAt(envelopeStageParams{Samples: e.releaseSamples, Start: e.releaseStart, End: 0}, e.samplesInStage)
		e.samplesInStage++
		if e.samplesInStage >= e.releaseSamples {
			e.stage = stageOff
			e.current = 0
		}
		return e.current
	}

	if e.stage == stageSustain {
		e.current = e.params.Stages[stageSustain].Start
		return e.current
	}

	s := e.params.Stages[e.stage]
	e.current = valueAt(s, e.samplesInStage)
	e.samplesInStage++
	if e.samplesInStage >= s.Samples {
		e.advanceStage()
	}
	return e.current
}

// next block variant used by the generator graph to fill a lane-width
// block in one call.
func (e *Envelope) nextBlock(out []float32) {
	for i := range out {
		out[i] = e.next()
	}
}

func (e *Envelope) ended() bool { return e.stage == stageOff }

// signalRelease transitions the envelope into its release ramp, starting
// from whatever value it currently holds (idempotent: spec invariant 5).
func (e *Envelope) signalRelease(kind ReleaseKind) {
	if e.stage == stageRelease || e.stage == stageOff {
		return
	}
	e.releaseStart = e.current
	e.stage = stageRelease
	e.samplesInStage = 0
	if kind == ReleaseKilled {
		e.releaseSamples = killFadeSamples(e.params.SampleRate)
	} else {
		e.releaseSamples = e.params.Stages[stageRelease].Samples
	}
	if e.releaseSamples <= 0 {
		e.releaseSamples = 1
	}
}
