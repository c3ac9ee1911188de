package score

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PitchClassNames are the default spellings for pitch classes 0 through 11.
var PitchClassNames = [12]string{"C", "C#", "D", "E-", "E", "F", "F#", "G", "G#", "A", "B-", "B"}

var stepSemitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// Pitch is a sounding pitch. Space uses MIDI numbering (C4 = 60) and may be
// fractional for microtones. Name keeps the written spelling without octave
// when the source supplied one.
type Pitch struct {
	Space float64
	Name  string
}

// Class returns the pitch class 0-11 of the nearest semitone.
func (p Pitch) Class() int {
	pc := int(math.Round(p.Space)) % 12
	if pc < 0 {
		pc += 12
	}
	return pc
}

// Octave returns the octave number, with middle C in octave 4. Spelled
// pitches take the octave of their unaltered step, so B#3 stays in octave 3.
func (p Pitch) Octave() int {
	return int(math.Floor((math.Round(p.Space)-float64(p.alter()))/12)) - 1
}

// alter counts the accidentals of the spelled name in semitones.
func (p Pitch) alter() int {
	alter := 0
	for _, c := range p.Name {
		switch c {
		case '#':
			alter++
		case '-':
			alter--
		}
	}
	return alter
}

// StepName returns the spelled name without octave.
func (p Pitch) StepName() string {
	if p.Name != "" {
		return p.Name
	}
	return PitchClassNames[p.Class()]
}

// NameWithOctave returns names such as "E-3".
func (p Pitch) NameWithOctave() string {
	return p.StepName() + strconv.Itoa(p.Octave())
}

func (p Pitch) String() string {
	return p.NameWithOctave()
}

// ParsePitch reads names such as "C4", "c#5", "E-3" or "Bb2". The octave
// defaults to 4 when omitted.
func ParsePitch(s string) (Pitch, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Pitch{}, fmt.Errorf("empty pitch name")
	}
	step := s[0]
	if step >= 'a' && step <= 'z' {
		step -= 'a' - 'A'
	}
	semis, ok := stepSemitones[step]
	if !ok {
		return Pitch{}, fmt.Errorf("pitch %q: unknown step %q", s, s[0])
	}

	i := 1
	alter := 0
	accidental := ""
accidentals:
	for ; i < len(s); i++ {
		switch s[i] {
		case '#':
			alter++
			accidental += "#"
		case '-', 'b':
			alter--
			accidental += "-"
		default:
			break accidentals
		}
	}
	oct := 4
	if rest := s[i:]; rest != "" {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return Pitch{}, fmt.Errorf("pitch %q: bad octave %q", s, rest)
		}
		oct = n
	}
	return Pitch{
		Space: float64((oct+1)*12 + semis + alter),
		Name:  string(step) + accidental,
	}, nil
}

// MustParsePitch is ParsePitch for literals known to be valid.
func MustParsePitch(s string) Pitch {
	p, err := ParsePitch(s)
	if err != nil {
		panic(err)
	}
	return p
}

// MarshalJSON writes spelled pitches as names and unspelled ones as numbers.
func (p Pitch) MarshalJSON() ([]byte, error) {
	if p.Name != "" && p.Space == math.Trunc(p.Space) {
		return json.Marshal(p.NameWithOctave())
	}
	return json.Marshal(p.Space)
}

// UnmarshalJSON accepts either a pitch-space number or a pitch name.
func (p *Pitch) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, err := ParsePitch(name)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}
	var space float64
	if err := json.Unmarshal(data, &space); err != nil {
		return fmt.Errorf("pitch must be a number or a name: %w", err)
	}
	*p = Pitch{Space: space}
	return nil
}
