package xsynth

// channelCell holds the attack/release spawner lists a channel's dispatch
// matrix resolved for one (key, vel) pair, after walking the soundfont
// stack with piano fallback (spec §4.6). Distinct from SampleSoundfont's
// internal matrixCell, which holds at most one spawner per kind: a
// channel's cell holds the list returned by whichever single soundfont in
// its stack first answered non-empty.
type channelCell struct {
	attack  []*Spawner
	release []*Spawner
}

// ChannelSoundfont is a channel's program-dispatch layer: an ordered,
// priority-first list of soundfonts and the currently selected program,
// rebuilt into a flat per-key/per-velocity spawner matrix on every program
// change (spec §4.6).
type ChannelSoundfont struct {
	soundfonts []Soundfont
	currBank   uint8
	currPreset uint8
	hasProgram bool
	cell       [128][128]channelCell
}

func newChannelSoundfont() *ChannelSoundfont {
	return &ChannelSoundfont{}
}

// SetSoundfonts replaces the channel's soundfont stack (spec §4.6
// "SetSoundfonts"). The program selection is preserved; the matrix is
// rebuilt against the new stack.
func (c *ChannelSoundfont) SetSoundfonts(soundfonts []Soundfont) {
	c.soundfonts = soundfonts
	c.rebuild(c.currBank, c.currPreset)
}

// SetProgram selects (bank, preset) and rebuilds the matrix (spec §4.6
// "SetProgram").
func (c *ChannelSoundfont) SetProgram(bank, preset uint8) {
	c.RebuildMatrix(bank, preset)
}

// RebuildMatrix resolves every (key, vel) cell against the channel's
// soundfont stack for (bank, preset). Idempotent: a call for the program
// already selected is a no-op (spec §4.6 "Rebuild is idempotent").
func (c *ChannelSoundfont) RebuildMatrix(bank, preset uint8) {
	if c.hasProgram && bank == c.currBank && preset == c.currPreset {
		return
	}
	c.rebuild(bank, preset)
}

// rebuild always recomputes the matrix, used both by RebuildMatrix and by
// SetSoundfonts (which must re-run even for the same program, since the
// soundfont stack itself changed).
func (c *ChannelSoundfont) rebuild(bank, preset uint8) {
	matrixDebug("rebuilding matrix for bank=%d preset=%d (%d soundfonts)", bank, preset, len(c.soundfonts))

	c.currBank = bank
	c.currPreset = preset
	c.hasProgram = true

	for k := 0; k < 128; k++ {
		for v := 0; v < 128; v++ {
			c.cell[k][v] = c.resolveCell(bank, preset, uint8(k), uint8(v))
		}
	}
}

// resolveCell implements spec §4.6's fallback search order exactly:
// first non-empty of sf.attack(bank,preset,k,v) across the stack, then
// sf.attack(0,0,k,v) across the stack (piano fallback), else empty.
// release follows the identical structure independently of attack.
func (c *ChannelSoundfont) resolveCell(bank, preset, key, vel uint8) channelCell {
	var cell channelCell

	for _, sf := range c.soundfonts {
		if a := sf.GetAttackVoiceSpawnersAt(bank, preset, key, vel); len(a) > 0 {
			cell.attack = a
			break
		}
	}
	if len(cell.attack) == 0 && (bank != 0 || preset != 0) {
		for _, sf := range c.soundfonts {
			if a := sf.GetAttackVoiceSpawnersAt(0, 0, key, vel); len(a) > 0 {
				cell.attack = a
				break
			}
		}
	}

	for _, sf := range c.soundfonts {
		if r := sf.GetReleaseVoiceSpawnersAt(bank, preset, key, vel); len(r) > 0 {
			cell.release = r
			break
		}
	}
	if len(cell.release) == 0 && (bank != 0 || preset != 0) {
		for _, sf := range c.soundfonts {
			if r := sf.GetReleaseVoiceSpawnersAt(0, 0, key, vel); len(r) > 0 {
				cell.release = r
				break
			}
		}
	}

	return cell
}

func (c *ChannelSoundfont) spawnersAt(key, vel uint8) (attack, release []*Spawner) {
	cell := c.cell[key][vel]
	return cell.attack, cell.release
}
