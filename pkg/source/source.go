// Package source loads scores from JSON documents and Standard MIDI Files.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/leowmjw/go-scoreplot/pkg/score"
)

// ErrUnknownFormat is returned for inputs that are neither JSON nor MIDI.
var ErrUnknownFormat = errors.New("unknown score format")

var midiMagic = []byte("MThd")

// document accepts either a whole score or a single part.
type document struct {
	Title  string        `json:"title"`
	Parts  []*score.Part `json:"parts"`
	Name   string        `json:"name"`
	Events []score.Event `json:"events"`
}

// ReadJSON decodes a score document. A document holding only "events" is
// read as a one-part score.
func ReadJSON(r io.Reader) (*score.Score, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode score: %w", err)
	}
	s := &score.Score{Title: doc.Title, Parts: doc.Parts}
	if len(s.Parts) == 0 && doc.Events != nil {
		s.Parts = []*score.Part{{Name: doc.Name, Events: doc.Events}}
	}
	for i, p := range s.Parts {
		if p == nil {
			return nil, fmt.Errorf("part %d is null", i)
		}
	}
	return s, nil
}

// Read sniffs r and decodes it as MIDI or JSON.
func Read(r io.Reader) (*score.Score, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(midiMagic))
	if err == nil && bytes.Equal(head, midiMagic) {
		return ReadMIDI(br)
	}
	trimmed, _ := br.Peek(1)
	for len(trimmed) == 1 && strings.ContainsRune(" \t\r\n", rune(trimmed[0])) {
		br.ReadByte()
		trimmed, _ = br.Peek(1)
	}
	if len(trimmed) == 1 && trimmed[0] == '{' {
		return ReadJSON(br)
	}
	return nil, ErrUnknownFormat
}

// Load reads the score at path, choosing the decoder by extension.
func Load(path string) (*score.Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open score: %w", err)
	}
	defer f.Close()

	var s *score.Score
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi", ".smf":
		s, err = ReadMIDI(f)
	case ".json":
		s, err = ReadJSON(f)
	default:
		s, err = Read(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Title == "" {
		s.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}
