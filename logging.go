package xsynth

import "github.com/GeoffreyPlitt/debuggo"

var (
	sfzDebug      = debuggo.Debug("xsynth:sfz")
	sampleDebug   = debuggo.Debug("xsynth:sample")
	soundfontDebug = debuggo.Debug("xsynth:soundfont")
	matrixDebug   = debuggo.Debug("xsynth:matrix")
	voiceDebug    = debuggo.Debug("xsynth:voice")
	poolDebug     = debuggo.Debug("xsynth:pool")
	envelopeDebug = debuggo.Debug("xsynth:envelope")
)
