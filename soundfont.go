package xsynth

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// matrixCell holds the spawner selected for a given (key, vel) pair, split
// by trigger type. At most one spawner per kind: when multiple regions'
// key/vel ranges overlap the same cell, the later region in SFZ file order
// overwrites the earlier one (spec §4.5 point 4, "last-writer-wins"),
// matching the original source's one-Option-per-cell table.
type matrixCell struct {
	attack  *Spawner
	release *Spawner
}

// Soundfont is the engine-facing contract a loaded SFZ program exposes to a
// channel's dispatch matrix (spec §4.6 "Soundfont trait"). bank/preset are
// part of every call so a soundfont format that multiplexes several
// programs in one file could honor them; SampleSoundfont (single-program
// SFZ) ignores them (spec §4.5 point 5).
type Soundfont interface {
	GetAttackVoiceSpawnersAt(bank, preset, key, vel uint8) []*Spawner
	GetReleaseVoiceSpawnersAt(bank, preset, key, vel uint8) []*Spawner
	StreamParams() AudioStreamParams
}

// SampleSoundfont is a fully loaded, resampled, pre-compiled SFZ program
// (spec §4.5). Built once via NewSampleSoundfont and then shared read-only
// across every channel that selects it: concurrent Get* calls need no
// locking.
type SampleSoundfont struct {
	stream AudioStreamParams
	matrix [128][128]matrixCell
}

// EngineOptions configures load-time behavior shared across soundfonts
// (spec §4.0 ambient config surface: a plain struct, no external config
// library — decision recorded in DESIGN.md).
type EngineOptions struct {
	Stream AudioStreamParams

	// Workers bounds the number of goroutines decoding sample files in
	// parallel. Zero means "decode serially".
	Workers int
}

// NewSampleSoundfont parses sfzPath, decodes every distinct sample file it
// references exactly once (in parallel, bounded by opts.Workers, spec §4.5
// "parallel decode via errgroup"), compiles each distinct envelope
// descriptor exactly once, and builds the dense per-key/per-velocity
// spawner matrix with last-writer-wins overlap semantics (spec §4.5).
func NewSampleSoundfont(sfzPath string, opts EngineOptions) (*SampleSoundfont, error) {
	regions, err := loadRegions(sfzPath)
	if err != nil {
		return nil, err
	}
	soundfontDebug("loaded %d regions from %s", len(regions), sfzPath)

	samples, err := decodeDistinctSamples(regions, opts)
	if err != nil {
		return nil, err
	}

	envelopes := compileDistinctEnvelopes(regions, opts.Stream.SampleRate)

	sf := &SampleSoundfont{stream: opts.Stream, matrix: buildSpawnerMatrix(regions, samples, envelopes)}

	soundfontDebug("built spawner matrix for %s", sfzPath)
	return sf, nil
}

// buildSpawnerMatrix compiles regions against already-decoded samples and
// already-compiled envelopes into the dense per-key/per-velocity table,
// applying last-writer-wins overlap semantics (spec §4.5 point 4). Kept
// separate from NewSampleSoundfont's I/O so the matrix-building logic can
// be unit tested against synthetic in-memory samples, with no file
// decoding involved.
func buildSpawnerMatrix(regions []RegionParams, samples map[string]*SampleData, envelopes map[EnvelopeDescriptor]*EnvelopeParameters) [128][128]matrixCell {
	var matrix [128][128]matrixCell

	for _, r := range regions {
		sample, ok := samples[r.SamplePath]
		if !ok {
			continue // no decoded sample for this path
		}

		// pitch_keycenter defaults to the key being played, not a single
		// fixed value for the whole region (spec §4.4), so a spawner is
		// compiled per distinct key in the region's keyrange rather than
		// once per region.
		for k := int(r.LoKey); k <= int(r.HiKey); k++ {
			params := &SampleVoiceSpawnerParams{
				Sample:         sample,
				Loop:           r.Loop,
				Envelope:       envelopes[r.Envelope],
				PitchKeycenter: r.pitchKeycenterForKey(uint8(k)),
				Cutoff:         r.Cutoff,
				IsRelease:      r.IsRelease,
			}
			spawner := newSpawner(params)

			for v := int(r.LoVel); v <= int(r.HiVel); v++ {
				if r.IsRelease {
					matrix[k][v].release = spawner
				} else {
					matrix[k][v].attack = spawner
				}
			}
		}
	}

	return matrix
}

// decodeDistinctSamples decodes every unique sample path referenced by
// regions exactly once, in parallel via errgroup (spec §4.5), returning a
// map from path to decoded SampleData. A sample that fails to open or
// decode fails the whole soundfont with that error (spec §7).
func decodeDistinctSamples(regions []RegionParams, opts EngineOptions) (map[string]*SampleData, error) {
	paths := make([]string, 0, len(regions))
	seen := make(map[string]bool)
	for _, r := range regions {
		if !seen[r.SamplePath] {
			seen[r.SamplePath] = true
			paths = append(paths, r.SamplePath)
		}
	}
	sort.Strings(paths)

	results := make([]*SampleData, len(paths))

	g, ctx := errgroup.WithContext(context.Background())
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	} else {
		g.SetLimit(1)
	}

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			data, err := decodeSample(p, opts.Stream.SampleRate)
			if err != nil {
				sampleDebug("failed to decode %s: %v", p, err)
				return err
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*SampleData, len(paths))
	for i, p := range paths {
		if results[i] != nil {
			out[p] = results[i]
		}
	}
	return out, nil
}

// compileDistinctEnvelopes compiles each unique EnvelopeDescriptor exactly
// once (spec §4.5 "dedupe compiled envelopes").
func compileDistinctEnvelopes(regions []RegionParams, sampleRate int) map[EnvelopeDescriptor]*EnvelopeParameters {
	out := make(map[EnvelopeDescriptor]*EnvelopeParameters)
	for _, r := range regions {
		if _, ok := out[r.Envelope]; !ok {
			out[r.Envelope] = compileEnvelope(r.Envelope, sampleRate)
		}
	}
	return out
}

// GetAttackVoiceSpawnersAt ignores bank/preset: an SFZ file is always a
// single program (spec §4.5 point 5). Returns a 0- or 1-element slice,
// matching the original source's one-spawner-per-cell table.
func (sf *SampleSoundfont) GetAttackVoiceSpawnersAt(bank, preset, key, vel uint8) []*Spawner {
	if s := sf.matrix[key][vel].attack; s != nil {
		return []*Spawner{s}
	}
	return nil
}

// GetReleaseVoiceSpawnersAt always returns nil: release-triggered regions
// are parsed (RegionParams.IsRelease) and filed into the matrix, but the
// channel pool does not yet dispatch note-off events through them (spec
// §9's explicit permission to leave release-region dispatch unimplemented).
func (sf *SampleSoundfont) GetReleaseVoiceSpawnersAt(bank, preset, key, vel uint8) []*Spawner {
	return nil
}

func (sf *SampleSoundfont) StreamParams() AudioStreamParams {
	return sf.stream
}
