package score

// PartSummary counts the content of one part.
type PartSummary struct {
	Name     string   `json:"name"`
	Notes    int      `json:"notes"`
	Chords   int      `json:"chords"`
	Rests    int      `json:"rests"`
	Measures int      `json:"measures"`
	Lowest   *Pitch   `json:"lowest,omitempty"`
	Highest  *Pitch   `json:"highest,omitempty"`
	Dynamics []string `json:"dynamics,omitempty"`
	Duration float64  `json:"duration"`
}

// Summarize describes each part of s. Dynamics are listed in order of first
// appearance.
func Summarize(s *Score) []PartSummary {
	out := make([]PartSummary, 0, len(s.Parts))
	for _, p := range s.Parts {
		sum := PartSummary{Name: p.Name, Duration: HighestTime(p)}
		seen := make(map[string]bool)
		for _, ev := range p.Recurse() {
			switch ev.Kind {
			case KindNote:
				sum.Notes++
			case KindChord:
				sum.Chords++
			case KindRest:
				sum.Rests++
			case KindMeasure:
				sum.Measures++
			case KindDynamic:
				if !seen[ev.Dynamic] {
					seen[ev.Dynamic] = true
					sum.Dynamics = append(sum.Dynamics, ev.Dynamic)
				}
			}
			for i := range ev.Pitches {
				pitch := ev.Pitches[i]
				if sum.Lowest == nil || pitch.Space < sum.Lowest.Space {
					sum.Lowest = &pitch
				}
				if sum.Highest == nil || pitch.Space > sum.Highest.Space {
					sum.Highest = &pitch
				}
			}
		}
		out = append(out, sum)
	}
	return out
}
