package plot

import (
	"encoding/json"
	"io"
)

// Canvas consumes a finished figure. Drawing is left to implementations.
type Canvas interface {
	Draw(fig *Figure) error
}

// JSONCanvas writes figures as indented JSON documents.
type JSONCanvas struct {
	W io.Writer
}

func (c JSONCanvas) Draw(fig *Figure) error {
	enc := json.NewEncoder(c.W)
	enc.SetIndent("", "  ")
	return enc.Encode(fig)
}
