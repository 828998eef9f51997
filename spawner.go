package xsynth

// SampleVoiceSpawnerParams is a compiled, immutable template built once per
// key of each region's keyrange at soundfont-load time (spec §4.5), since
// the default pitch_keycenter depends on the key: everything needed to spawn a
// Voice at a given (key, vel) without re-touching the SFZ data.
type SampleVoiceSpawnerParams struct {
	Sample         *SampleData
	Loop           LoopParams
	Envelope       *EnvelopeParameters
	PitchKeycenter uint8
	Cutoff         *float32
	IsRelease      bool
}

// Spawner builds a Voice for a concrete (key, vel) pair from a compiled
// spawner template (spec §4.5 "SampleVoiceSpawner").
type Spawner struct {
	params *SampleVoiceSpawnerParams
}

func newSpawner(params *SampleVoiceSpawnerParams) *Spawner {
	return &Spawner{params: params}
}

// Spawn builds the Voice's Generator graph: pitch -> stereo sampler ->
// env*amp -> optional cutoff (spec §4.3's fixed assembly order), applying
// any per-voice attack/release overrides from control (copy-on-spawn, spec
// §5).
func (s *Spawner) Spawn(key, vel uint8, control *VoiceControlData) *Voice {
	p := s.params

	speedMult := speedMultFromKeys(key, p.PitchKeycenter)
	amp := ampFromVelocity(vel)

	var attackOverride, releaseOverride *float32
	if control != nil {
		attackOverride = control.Attack
		releaseOverride = control.Release
	}
	envParams := p.Envelope.withOverrides(attackOverride, releaseOverride)

	pitch := newPitchGen(speedMult)
	grabberL := newLinearGrabber(p.Sample.channel(0), p.Loop)
	grabberR := newLinearGrabber(p.Sample.channel(1), p.Loop)
	sampler := newStereoSamplerGen(grabberL, grabberR, pitch)

	var gen Generator = newAmpEnvSamplerGen(sampler, envParams, amp)
	if p.Cutoff != nil {
		gen = newCutoffGen(gen, *p.Cutoff, envParams.SampleRate)
	}

	voiceDebug("spawned voice key=%d vel=%d speedMult=%.4f amp=%.4f", key, vel, speedMult, amp)

	return &Voice{
		gen:       gen,
		velocity:  vel,
		key:       key,
		releasing: false,
	}
}

// Voice is a single playing note: a Generator graph plus the bookkeeping
// the channel pool needs to manage its lifetime (spec §6 "Voice").
type Voice struct {
	gen       Generator
	velocity  uint8
	key       uint8
	releasing bool

	// pending holds lanes produced by gen.Next() but not yet consumed, so a
	// render call whose frame count isn't a multiple of laneWidth never
	// discards generated samples (spec §9: block ticks plus a remainder
	// tail, not a remainder that drops output).
	pending    StereoBlock
	pendingLen int
}

// RenderTo additively mixes this voice's output into buffer, which holds
// interleaved stereo float32 frames (L, R, L, R, ...). RenderTo never
// overwrites existing content: callers are expected to have zeroed the
// buffer first, since multiple voices render additively into the same
// destination (spec §6, invariant "commutative sum").
func (v *Voice) RenderTo(buffer []float32) {
	frames := len(buffer) / 2
	idx := 0

	for idx < frames*2 {
		if v.pendingLen == 0 {
			v.pending = v.gen.Next()
			v.pendingLen = laneWidth
		}
		start := laneWidth - v.pendingLen
		buffer[idx] += v.pending.L[start]
		buffer[idx+1] += v.pending.R[start]
		idx += 2
		v.pendingLen--
	}
}

// SignalRelease starts the voice's release (note-off or kill-fade).
func (v *Voice) SignalRelease(kind ReleaseKind) {
	v.releasing = true
	v.gen.SignalRelease(kind)
}

// Ended reports whether the voice has finished and can be reaped.
func (v *Voice) Ended() bool { return v.gen.Ended() }

// IsReleasing reports whether the voice is in (or past) its release stage.
func (v *Voice) IsReleasing() bool { return v.releasing }

// Velocity returns the note-on velocity the voice was spawned with.
func (v *Voice) Velocity() uint8 { return v.velocity }

// Key returns the MIDI key the voice was spawned for.
func (v *Voice) Key() uint8 { return v.key }

// ProcessControls forwards a per-tick control snapshot into the voice's
// generator graph (spec §6).
func (v *Voice) ProcessControls(c *VoiceControlData) {
	v.gen.ProcessControls(c)
}
