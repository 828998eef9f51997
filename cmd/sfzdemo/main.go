// Command sfzdemo plays a single SFZ program through the default audio
// device, triggering one note so the rendering pipeline can be exercised
// end to end. It is a thin, non-core demo: nothing in the xsynth package
// imports it.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/gosfzsynth/xsynth"
)

const sampleRate = 44100

// engineSource adapts an *xsynth.Engine to io.Reader by rendering into a
// caller-provided PCM float32LE byte stream on demand, grounded on the
// pull-based player pattern in IntuitionAmiga-IntuitionEngine's
// audio_backend_oto.go.
type engineSource struct {
	engine *xsynth.Engine
	frames []float32
}

func newEngineSource(engine *xsynth.Engine, frameBatch int) *engineSource {
	return &engineSource{
		engine: engine,
		frames: make([]float32, frameBatch*2),
	}
}

func (s *engineSource) Read(p []byte) (int, error) {
	want := len(p) / 4
	if want > len(s.frames) {
		want = len(s.frames)
	}
	buf := s.frames[:want]
	if err := s.engine.Render(buf); err != nil {
		return 0, err
	}
	n := 0
	for _, f := range buf {
		bits := float32ToLEBytes(f)
		copy(p[n:], bits[:])
		n += 4
	}
	return n, nil
}

func float32ToLEBytes(f float32) [4]byte {
	bits := math.Float32bits(f)
	return [4]byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
}

func main() {
	sfzPath := flag.String("sfz", "", "path to an .sfz program")
	key := flag.Int("key", 60, "MIDI key to play (0-127)")
	vel := flag.Int("vel", 100, "MIDI velocity (0-127)")
	holdMS := flag.Int("hold-ms", 1500, "how long to hold the note before releasing")
	flag.Parse()

	if *sfzPath == "" {
		fmt.Fprintln(os.Stderr, "usage: sfzdemo -sfz <path>")
		os.Exit(2)
	}

	stream := xsynth.AudioStreamParams{SampleRate: sampleRate, Channels: xsynth.Stereo}
	opts := xsynth.EngineOptions{Stream: stream, Workers: 4}

	sf, err := xsynth.NewSampleSoundfont(*sfzPath, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load:", err)
		os.Exit(1)
	}

	engine := xsynth.NewEngine(opts, 64, false)
	ch := engine.Channel(0)
	ch.Handle(xsynth.ChannelConfigChannelEvent{Event: xsynth.SetSoundfontsEvent{
		Soundfonts: []xsynth.Soundfont{sf},
	}})

	otoOpts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(otoOpts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "audio device:", err)
		os.Exit(1)
	}
	<-ready

	src := newEngineSource(engine, 4096)
	player := ctx.NewPlayer(src)
	player.Play()

	ch.Handle(xsynth.NoteOnEvent{Key: uint8(*key), Velocity: uint8(*vel)})
	time.Sleep(time.Duration(*holdMS) * time.Millisecond)
	ch.Handle(xsynth.NoteOffEvent{Key: uint8(*key)})
	time.Sleep(1 * time.Second)

	player.Close()
}
