package xsynth

import "math"

// keyFrequencies is the 128-entry 12-TET frequency table indexed by MIDI
// key number, A4 (key 69) = 440Hz. Built once at package init rather than
// hand-typed, the way the original source's FREQS table is generated.
var keyFrequencies [128]float64

func init() {
	for k := 0; k < 128; k++ {
		keyFrequencies[k] = 440.0 * math.Pow(2.0, (float64(k)-69.0)/12.0)
	}
}

// speedMultFromKeys implements the spec §4.4 pitch law:
// speed_mult = freq(key) / freq(pitch_keycenter).
func speedMultFromKeys(key, pitchKeycenter uint8) float32 {
	return float32(keyFrequencies[key] / keyFrequencies[pitchKeycenter])
}

// ampFromVelocity implements the spec §4.4 velocity amplitude law:
// amp = 1.04^(vel-127), so 127 -> 1.0 and 1 -> ~7e-3.
func ampFromVelocity(vel uint8) float32 {
	return float32(math.Pow(1.04, float64(vel)-127.0))
}

// pitchBendRatio maps a normalized pitch-bend value in [-1, 1] to a
// frequency ratio assuming a +/-2 semitone bend range, per spec §4.7
// ("pitch bend maps to voice_pitch_multiplier = 2^(bend_semitones/12)").
func pitchBendRatio(bend float32) float32 {
	const bendRangeSemitones = 2.0
	semitones := float64(bend) * bendRangeSemitones
	return float32(math.Pow(2.0, semitones/12.0))
}
