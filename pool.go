package xsynth

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// ChannelOptions configures a single channel's voice pool (spec §4.7).
type ChannelOptions struct {
	Stream AudioStreamParams

	// MaxVoices bounds concurrently playing voices on this channel. Zero
	// means unbounded.
	MaxVoices int

	// ParallelRender enables dispatching the per-voice render loop across
	// a worker pool of at most Workers goroutines (zero means no bound) when
	// more than one voice is live (spec §5 "parallel per-voice rendering").
	// Each voice renders into its own scratch buffer; buffers are summed
	// together afterward in voice order, so mixing stays commutative
	// regardless of worker count or scheduling order (spec invariant 9).
	ParallelRender bool
	Workers        int

	// FadeOutKilling selects how a voice evicted at MaxVoices is disposed
	// of: true signals a kill-fade release (spec §4.7 "fade_out_killing"),
	// false drops it immediately with no ramp.
	FadeOutKilling bool
}

// Channel is one polyphonic MIDI channel: a program-dispatch matrix plus
// the pool of currently playing voices (spec §4.7 "ChannelVoicePool").
type Channel struct {
	mu      sync.Mutex
	opts    ChannelOptions
	sf      *ChannelSoundfont
	control *VoiceControlData
	voices  []*Voice
}

// NewChannel returns an idle channel with no soundfonts assigned.
func NewChannel(opts ChannelOptions) *Channel {
	return &Channel{
		opts:    opts,
		sf:      newChannelSoundfont(),
		control: NewVoiceControlData(),
	}
}

// Handle applies one ChannelEvent (spec §6's dispatch entry point).
func (c *Channel) Handle(ev ChannelEvent) {
	switch e := ev.(type) {
	case NoteOnEvent:
		c.NoteOn(e.Key, e.Velocity)
	case NoteOffEvent:
		c.NoteOff(e.Key)
	case ChannelControlEvent:
		c.control_(e.Event)
	case ChannelConfigChannelEvent:
		c.config(e.Event)
	}
}

func (c *Channel) config(ev ChannelConfigEvent) {
	switch e := ev.(type) {
	case SetSoundfontsEvent:
		c.mu.Lock()
		c.sf.SetSoundfonts(e.Soundfonts)
		c.mu.Unlock()
	case SetProgramEvent:
		c.mu.Lock()
		c.sf.SetProgram(e.Bank, e.Preset)
		c.mu.Unlock()
	}
}

func (c *Channel) control_(ev ControlEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e := ev.(type) {
	case RawControlEvent:
		_ = e // modulation routing beyond pitch bend is out of scope
	case PitchBendEvent:
		c.control.VoicePitchMultiplier = pitchBendRatio(e.Value)
		for _, v := range c.voices {
			v.ProcessControls(c.control)
		}
	case ResetControlEvent:
		c.control = NewVoiceControlData()
		for _, v := range c.voices {
			v.ProcessControls(c.control)
		}
	case AllNotesOffEvent:
		kind := ReleaseStandard
		if e.Kill {
			kind = ReleaseKilled
		}
		for _, v := range c.voices {
			v.SignalRelease(kind)
		}
	}
}

// NoteOn spawns every attack spawner matching (key, vel) in the channel's
// current program (spec §4.7), evicting the oldest releasing voice (or the
// oldest voice if none are releasing) when MaxVoices would be exceeded. A
// NoteOn with vel=0 is treated as NoteOff per MIDI convention (spec §7).
func (c *Channel) NoteOn(key, vel uint8) {
	if vel == 0 {
		c.NoteOff(key)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	attack, _ := c.sf.spawnersAt(key, vel)
	if len(attack) == 0 {
		return
	}

	for _, spawner := range attack {
		c.evictIfFullLocked()
		c.voices = append(c.voices, spawner.Spawn(key, vel, c.control))
	}
	poolDebug("note on key=%d vel=%d spawned=%d total=%d", key, vel, len(attack), len(c.voices))
}

// NoteOff signals release on every non-releasing voice at key (spec §4.7).
func (c *Channel) NoteOff(key uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, v := range c.voices {
		if v.Key() == key && !v.IsReleasing() {
			v.SignalRelease(ReleaseStandard)
		}
	}
}

// evictIfFullLocked picks the oldest releasing voice (or, failing that, the
// oldest voice of any kind) when the pool is at MaxVoices, and disposes of
// it per opts.FadeOutKilling: kill-fade it and let it ring out naturally, or
// drop it from the pool immediately with no ramp (spec §4.7). Must be
// called with c.mu held.
func (c *Channel) evictIfFullLocked() {
	if c.opts.MaxVoices <= 0 || len(c.voices) < c.opts.MaxVoices {
		return
	}

	idx := -1
	for i, v := range c.voices {
		if v.IsReleasing() {
			idx = i
			break
		}
	}
	if idx == -1 {
		idx = 0
	}

	if c.opts.FadeOutKilling {
		poolDebug("voice limit reached (%d), kill-fading voice at index %d", c.opts.MaxVoices, idx)
		c.voices[idx].SignalRelease(ReleaseKilled)
		c.voices = append(c.voices[:idx], c.voices[idx+1:]...)
		return
	}

	poolDebug("voice limit reached (%d), dropping voice at index %d immediately", c.opts.MaxVoices, idx)
	c.voices = append(c.voices[:idx], c.voices[idx+1:]...)
}

// Render additively fills buffer (interleaved stereo float32, caller-zeroed)
// with every currently playing voice's output, then reaps voices that have
// ended (spec §4.7 "Render"). When opts.ParallelRender is set, voices are
// rendered across a worker pool into independent scratch buffers which are
// then summed sequentially, preserving additive mixing regardless of
// scheduling order (spec invariant 9).
func (c *Channel) Render(buffer []float32) error {
	c.mu.Lock()
	voices := make([]*Voice, len(c.voices))
	copy(voices, c.voices)
	c.mu.Unlock()

	if len(voices) == 0 {
		return nil
	}

	if c.opts.ParallelRender && len(voices) > 1 {
		if err := renderVoicesParallel(voices, buffer, c.opts.Workers); err != nil {
			return err
		}
	} else {
		for _, v := range voices {
			v.RenderTo(buffer)
		}
	}

	c.reap()
	return nil
}

// renderVoicesParallel renders each voice into its own scratch buffer on a
// bounded worker pool, then sums every scratch buffer into dst in a fixed
// sequential order (spec §5).
func renderVoicesParallel(voices []*Voice, dst []float32, workers int) error {
	scratches := make([][]float32, len(voices))

	g := new(errgroup.Group)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, v := range voices {
		i, v := i, v
		g.Go(func() error {
			buf := make([]float32, len(dst))
			v.RenderTo(buf)
			scratches[i] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, buf := range scratches {
		for i, s := range buf {
			dst[i] += s
		}
	}
	return nil
}

// reap drops every voice whose generator graph has ended. Must not be
// called with c.mu held by the caller in a way that would deadlock; it
// takes the lock itself.
func (c *Channel) reap() {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.voices[:0]
	for _, v := range c.voices {
		if !v.Ended() {
			kept = append(kept, v)
		}
	}
	c.voices = kept
}

// Reset immediately drops every voice on the channel without a release
// ramp (spec §4.7 "Reset").
func (c *Channel) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.voices = nil
}

// VoiceCount returns the number of currently live voices.
func (c *Channel) VoiceCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.voices)
}
