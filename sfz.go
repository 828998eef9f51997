package xsynth

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// sfzSection is one <global>/<group>/<region> block: an opcode map plus the
// inheritance links a region needs to resolve missing opcodes. Grounded on
// the teacher's parser.go SfzSection/SfzData, generalized with the opcodes
// this engine's data model needs (loop, full envelope, cutoff,
// default_path) in place of the teacher's JACK/reverb-oriented set.
type sfzSection struct {
	kind        string
	opcodes     map[string]string
	parentGroup *sfzSection
	globalRef   *sfzSection
}

type sfzData struct {
	global     *sfzSection
	groups     []*sfzSection
	regions    []*sfzSection
	defaultPath string
}

var knownSfzOpcodes = map[string]bool{
	"sample": true, "default_path": true,
	"lokey": true, "hikey": true, "lovel": true, "hivel": true, "key": true,
	"pitch_keycenter": true, "pan": true, "tune": true, "transpose": true,
	"trigger": true, "cutoff": true,
	"loop_mode": true, "loop_start": true, "loop_end": true, "offset": true,
	"ampeg_start": true, "ampeg_delay": true, "ampeg_attack": true,
	"ampeg_hold": true, "ampeg_decay": true, "ampeg_sustain": true, "ampeg_release": true,
}

// parseSfzFile parses an SFZ file into sfzData (grounded on parser.go).
func parseSfzFile(path string) (*sfzData, error) {
	sfzDebug("parsing %s", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, newLoadError(ErrKindIO, path, err)
	}
	defer f.Close()

	data := &sfzData{}
	scanner := bufio.NewScanner(f)

	var current *sfzSection
	var currentGroup *sfzSection

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "<") && strings.HasSuffix(line, ">") {
			kind := strings.ToLower(strings.Trim(line, "<>"))
			current = &sfzSection{kind: kind, opcodes: make(map[string]string)}

			switch kind {
			case "global":
				data.global = current
			case "group":
				currentGroup = current
				current.globalRef = data.global
				data.groups = append(data.groups, current)
			case "region":
				current.parentGroup = currentGroup
				current.globalRef = data.global
				data.regions = append(data.regions, current)
			}
			continue
		}

		if current != nil {
			parseSfzOpcodes(line, current)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, newLoadError(ErrKindParse, path, err)
	}

	if len(data.regions) == 0 {
		return nil, newLoadError(ErrKindEmpty, path, fmt.Errorf("no regions found"))
	}

	sfzDebug("parsed %s: %d regions, %d groups", path, len(data.regions), len(data.groups))
	return data, nil
}

func parseSfzOpcodes(line string, section *sfzSection) {
	for _, part := range strings.Fields(line) {
		if strings.HasPrefix(part, "//") {
			break
		}
		eq := strings.Index(part, "=")
		if eq == -1 {
			continue
		}
		opcode := strings.ToLower(strings.TrimSpace(part[:eq]))
		value := strings.TrimSpace(part[eq+1:])
		if knownSfzOpcodes[opcode] {
			section.opcodes[opcode] = value
		}
	}
}

func (s *sfzSection) inherited(opcode string) (string, bool) {
	if s == nil {
		return "", false
	}
	if v, ok := s.opcodes[opcode]; ok {
		return v, true
	}
	if v, ok := s.parentGroup.inherited(opcode); ok {
		return v, true
	}
	if s.globalRef != nil {
		if v, ok := s.globalRef.opcodes[opcode]; ok {
			return v, true
		}
	}
	return "", false
}

func (s *sfzSection) strOpcode(opcode, def string) string {
	if v, ok := s.inherited(opcode); ok {
		return v
	}
	return def
}

func (s *sfzSection) intOpcode(opcode string, def int) int {
	v, ok := s.inherited(opcode)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func (s *sfzSection) floatOpcode(opcode string, def float32) float32 {
	v, ok := s.inherited(opcode)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return def
	}
	return float32(f)
}

// loopModeFromOpcode maps the SFZ loop_mode string to LoopMode.
func loopModeFromOpcode(v string) LoopMode {
	switch v {
	case "one_shot":
		return OneShot
	case "loop_continuous":
		return LoopContinuous
	case "loop_sustain":
		return LoopSustain
	default:
		return NoLoop
	}
}

// regionParamsFromSection resolves a parsed region (with group/global
// inheritance already applied) into a canonical RegionParams, resolving
// the sample path against sfzDir and default_path (spec §6: "canonicalize
// relative sample paths against default_path and the SFZ's parent
// directory").
func regionParamsFromSection(s *sfzSection, sfzDir string) (RegionParams, error) {
	lokey := s.intOpcode("lokey", 0)
	hikey := s.intOpcode("hikey", 127)
	if key := s.intOpcode("key", -1); key >= 0 {
		lokey, hikey = key, key
	}
	lovel := s.intOpcode("lovel", 0)
	hivel := s.intOpcode("hivel", 127)

	samplePath := s.strOpcode("sample", "")
	if samplePath == "" {
		return RegionParams{}, fmt.Errorf("region has no sample opcode")
	}
	defaultPath := s.strOpcode("default_path", "")
	resolved := samplePath
	if !filepath.IsAbs(resolved) {
		if defaultPath != "" {
			resolved = filepath.Join(sfzDir, defaultPath, samplePath)
		} else {
			resolved = filepath.Join(sfzDir, samplePath)
		}
	}

	var pitchKeycenter *uint8
	if pk := s.intOpcode("pitch_keycenter", -1); pk >= 0 {
		v := uint8(pk)
		pitchKeycenter = &v
	}

	var cutoff *float32
	if c := s.floatOpcode("cutoff", -1); c > 0 {
		cutoff = &c
	}

	loop := LoopParams{
		Offset: uint32(s.intOpcode("offset", 0)),
		Start:  uint32(s.intOpcode("loop_start", 0)),
		End:    uint32(s.intOpcode("loop_end", 0)),
		Mode:   loopModeFromOpcode(s.strOpcode("loop_mode", "no_loop")),
	}

	envelope := EnvelopeDescriptor{
		StartPercent:   s.floatOpcode("ampeg_start", 0) / 100.0,
		DelaySeconds:   s.floatOpcode("ampeg_delay", 0),
		AttackSeconds:  s.floatOpcode("ampeg_attack", 0),
		HoldSeconds:    s.floatOpcode("ampeg_hold", 0),
		DecaySeconds:   s.floatOpcode("ampeg_decay", 0),
		SustainPercent: s.floatOpcode("ampeg_sustain", 100) / 100.0,
		ReleaseSeconds: s.floatOpcode("ampeg_release", 0),
	}

	return RegionParams{
		LoKey: uint8(clampInt(lokey, 0, 127)), HiKey: uint8(clampInt(hikey, 0, 127)),
		LoVel: uint8(clampInt(lovel, 0, 127)), HiVel: uint8(clampInt(hivel, 0, 127)),
		PitchKeycenter: pitchKeycenter,
		Pan:            int8(clampInt(s.intOpcode("pan", 0), -100, 100)),
		SamplePath:     resolved,
		Loop:           loop,
		Envelope:       envelope,
		Cutoff:         cutoff,
		IsRelease:      s.strOpcode("trigger", "attack") == "release",
	}, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// loadRegions parses sfzPath and resolves every region into RegionParams,
// skipping (with a debug trace) any region missing a sample opcode.
func loadRegions(sfzPath string) ([]RegionParams, error) {
	data, err := parseSfzFile(sfzPath)
	if err != nil {
		return nil, err
	}
	sfzDir := filepath.Dir(sfzPath)

	var regions []RegionParams
	for i, s := range data.regions {
		rp, err := regionParamsFromSection(s, sfzDir)
		if err != nil {
			sfzDebug("skipping region %d: %v", i, err)
			continue
		}
		regions = append(regions, rp)
	}
	if len(regions) == 0 {
		return nil, newLoadError(ErrKindEmpty, sfzPath, fmt.Errorf("no usable regions"))
	}
	return regions, nil
}
