package xsynth

// Engine is the top-level synthesizer: a fixed bank of MIDI channels
// sharing one stream configuration. It is the natural construction point
// for a host (demo CLI, audio backend) that otherwise only needs to post
// ChannelEvents and pull rendered audio (spec §2's control-flow summary,
// generalized to the standard 16-channel MIDI bank).
type Engine struct {
	opts     EngineOptions
	channels []*Channel
}

const midiChannelCount = 16

// NewEngine builds an Engine with midiChannelCount idle channels, each
// configured with maxVoices polyphony and opts.Workers controlling
// per-channel parallel rendering when enabled.
func NewEngine(opts EngineOptions, maxVoicesPerChannel int, parallelRender bool) *Engine {
	e := &Engine{opts: opts}
	e.channels = make([]*Channel, midiChannelCount)
	for i := range e.channels {
		e.channels[i] = NewChannel(ChannelOptions{
			Stream:         opts.Stream,
			MaxVoices:      maxVoicesPerChannel,
			ParallelRender: parallelRender,
			Workers:        opts.Workers,
		})
	}
	return e
}

// Channel returns the channel at index n (0-based, n in [0, 16)), or nil
// if n is out of range.
func (e *Engine) Channel(n int) *Channel {
	if n < 0 || n >= len(e.channels) {
		return nil
	}
	return e.channels[n]
}

// Render zeroes buffer and additively mixes every channel's output into it
// (spec §2: "Render tick -> pool asks every voice for N samples, sums into
// the channel buffer"), generalized one level up to sum channels into the
// final engine output.
func (e *Engine) Render(buffer []float32) error {
	for i := range buffer {
		buffer[i] = 0
	}
	for _, ch := range e.channels {
		if err := ch.Render(buffer); err != nil {
			return err
		}
	}
	return nil
}

// StreamParams returns the stream configuration every channel renders at.
func (e *Engine) StreamParams() AudioStreamParams {
	return e.opts.Stream
}
