package xsynth

// RegionParams is what an SFZ loader produces per region (spec §3),
// canonicalized: key/velocity ranges already resolved, sample path already
// made absolute.
type RegionParams struct {
	LoKey, HiKey   uint8
	LoVel, HiVel   uint8
	PitchKeycenter *uint8
	Pan            int8
	SamplePath     string
	Loop           LoopParams
	Envelope       EnvelopeDescriptor
	Cutoff         *float32
	IsRelease      bool // trigger=release region (spec §4.5 "release regions")
}

// pitchKeycenterForKey resolves the region's unity-pitch key for a specific
// key being triggered. An explicit pitch_keycenter applies uniformly; absent
// one, unity is the key itself (spec §4.4: "equals key (unity)"), so a
// multi-key region with no pitch_keycenter plays every key untransposed
// rather than pitch-shifting everything against a single fixed key.
func (r RegionParams) pitchKeycenterForKey(key uint8) uint8 {
	if r.PitchKeycenter != nil {
		return *r.PitchKeycenter
	}
	return key
}
