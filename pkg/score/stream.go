package score

// Elements returns the part's top-level events.
func (p *Part) Elements() []Event {
	return p.Events
}

// Recurse flattens the part depth first. Container events are emitted before
// their contents and nested offsets are made absolute. Notes and chords
// without their own dynamic take the last marking seen earlier in the part.
func (p *Part) Recurse() []Event {
	var (
		out    []Event
		active string
	)
	var walk func(events []Event, base float64)
	walk = func(events []Event, base float64) {
		for _, e := range events {
			flat := e
			flat.Offset = base + e.Offset
			flat.Events = nil
			switch e.Kind {
			case KindDynamic:
				active = e.Dynamic
			case KindNote, KindChord:
				if flat.Dynamic == "" {
					flat.Dynamic = active
				}
			}
			out = append(out, flat)
			if e.IsContainer() {
				walk(e.Events, flat.Offset)
			}
		}
	}
	walk(p.Events, 0)
	return out
}

// Measures returns the part's measures with absolute offsets.
func (p *Part) Measures() []Event {
	return Filter(p.Recurse(), KindMeasure)
}

// Elements returns the top-level events of every part, part by part.
func (s *Score) Elements() []Event {
	var out []Event
	for _, p := range s.Parts {
		out = append(out, p.Elements()...)
	}
	return out
}

// Recurse flattens every part in order.
func (s *Score) Recurse() []Event {
	var out []Event
	for _, p := range s.Parts {
		out = append(out, p.Recurse()...)
	}
	return out
}

// Measures returns the measures of the first part, which define the bar
// grid for the whole score.
func (s *Score) Measures() []Event {
	if len(s.Parts) == 0 {
		return nil
	}
	return s.Parts[0].Measures()
}

// Measured is implemented by streams that know their bar lines.
type Measured interface {
	Measures() []Event
}
