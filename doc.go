// Package xsynth is a realtime, polyphonic, sample-based MIDI synthesizer
// core: it loads SFZ sample libraries into a dense key/velocity spawner
// table, dispatches MIDI events against a per-channel program/bank matrix,
// and renders mixed stereo float32 audio in bounded-latency blocks.
//
// The realtime audio output device, MIDI wire parsing, configuration file
// persistence, and the offline WAV-render CLI are not part of this package;
// they are external collaborators that drive the types defined here.
package xsynth
