package timeline

import (
	"sort"
)

// sortedSamples returns a copy of samples ordered by offset. Samples at the
// same offset keep their document order, so the later one wins.
func sortedSamples(samples Samples) Samples {
	sorted := make(Samples, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})
	return sorted
}

// StateRuns converts samples into contiguous state intervals. Each state
// holds until the next differing sample; the final run closes at end.
// Repeated samples of the same state extend the current run.
func StateRuns(samples Samples, end float64) StateTimeline {
	if len(samples) == 0 {
		return StateTimeline{}
	}

	sorted := sortedSamples(samples)

	var intervals StateTimeline
	current := StateInterval{State: sorted[0].Value, Scalar: sorted[0].Scalar, Span: Span{Start: sorted[0].Offset}}

	for _, s := range sorted[1:] {
		if s.Value == current.State {
			continue
		}
		if s.Offset > current.Start {
			current.End = s.Offset
			intervals = append(intervals, current)
		}
		current = StateInterval{State: s.Value, Scalar: s.Scalar, Span: Span{Start: s.Offset}}
	}

	if end < current.Start {
		end = current.Start
	}
	current.End = end
	intervals = append(intervals, current)

	return intervals
}

// ValueAt returns the last sample at or before offset.
func ValueAt(samples Samples, offset float64) (Sample, bool) {
	var (
		found  Sample
		exists bool
	)
	for _, s := range sortedSamples(samples) {
		if s.Offset > offset {
			break
		}
		found, exists = s, true
	}
	return found, exists
}

// ChangesWithin returns the samples strictly inside (start, end) whose value
// differs from the state active just before them.
func ChangesWithin(samples Samples, start, end float64) Samples {
	active, hasActive := ValueAt(samples, start)

	var changes Samples
	for _, s := range sortedSamples(samples) {
		if s.Offset <= start {
			continue
		}
		if s.Offset >= end {
			break
		}
		if hasActive && s.Value == active.Value {
			continue
		}
		changes = append(changes, s)
		active, hasActive = s, true
	}
	return changes
}

// Durations returns how long each interval lasts.
func Durations(timeline StateTimeline) NumericTimeline {
	result := make(NumericTimeline, 0, len(timeline))
	for _, interval := range timeline {
		result = append(result, NumericInterval{
			Value: interval.Length(),
			Span:  interval.Span,
		})
	}
	return result
}
