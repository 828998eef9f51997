package xsynth

// ReleaseKind distinguishes a normal note-off release from a forced
// "kill fade" release applied when the channel pool evicts a voice to
// make room for a new one (spec §4.3, §4.7).
type ReleaseKind int

const (
	ReleaseStandard ReleaseKind = iota
	ReleaseKilled
)

// VoiceControlData is per-channel mutable control state, passed into every
// live voice whenever a pitch-bend or reset-control event changes it, and
// read by voices spawned afterward (spec §3).
type VoiceControlData struct {
	VoicePitchMultiplier float32

	// Attack/Release, when non-nil, override the envelope's attack/release
	// stage length in seconds for voices spawned after the override is set
	// (spec §4.2's per-voice overrides).
	Attack  *float32
	Release *float32
}

// NewVoiceControlData returns control data at its neutral defaults.
func NewVoiceControlData() *VoiceControlData {
	return &VoiceControlData{VoicePitchMultiplier: 1.0}
}
