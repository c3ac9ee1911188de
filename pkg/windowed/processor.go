package windowed

import (
	"fmt"
	"sort"
	"sync"

	"github.com/leowmjw/go-scoreplot/pkg/score"
)

// Processor analyzes one window of events. It is called synchronously once
// per window and may be slow; the engine checks for cancellation and reports
// progress between calls. The engine owns the window size: it records it per
// row in RowMeta and labels the y ticks from it, so processors return no
// size metadata.
type Processor interface {
	Name() string
	// Process returns the raw solution for the slice and the color that
	// represents it.
	Process(slice []score.Event) (raw any, color string, err error)
	// SolutionLegend describes the colors Process can return.
	SolutionLegend(compress bool) Legend
}

// LegendEntry pairs a solution label with its color.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Legend is a titled list of legend rows.
type Legend struct {
	Title   string        `json:"title"`
	Entries []LegendEntry `json:"entries"`
}

// Factory builds a processor bound to the stream it will analyze.
type Factory func(stream score.Stream) (Processor, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		"ambitus": func(stream score.Stream) (Processor, error) {
			return NewAmbitus(stream), nil
		},
	}
)

// Register makes a processor available by name. Registering a name twice
// replaces the earlier factory.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// NewProcessor builds the named processor for stream.
func NewProcessor(name string, stream score.Stream) (Processor, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoProcessor, name)
	}
	return f(stream)
}

// Processors lists the registered names.
func Processors() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
