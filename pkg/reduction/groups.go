package reduction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/leowmjw/go-scoreplot/pkg/score"
)

// Group is a named, colored row collecting one or more parts. A numeric
// Match entry selects a part by index; any other entry matches when it is a
// substring of the lower-cased part name or a regular expression matching it.
type Group struct {
	Name  string   `json:"name"`
	Color string   `json:"color"`
	Match []string `json:"match"`
}

// Matches reports whether the part at index belongs to the group.
func (g Group) Matches(index int, p *score.Part) bool {
	name := strings.ToLower(p.Name)
	id := strconv.Itoa(index)
	for _, m := range g.Match {
		if _, err := strconv.Atoi(m); err == nil {
			if m == id {
				return true
			}
			continue
		}
		if name == "" {
			continue
		}
		m = strings.ToLower(m)
		if strings.Contains(name, m) {
			return true
		}
		if re, err := regexp.Compile(m); err == nil && re.MatchString(name) {
			return true
		}
	}
	return false
}

// Members returns the indexes of the parts of s in the group.
func (g Group) Members(s *score.Score) []int {
	var out []int
	for i, p := range s.Parts {
		if g.Matches(i, p) {
			out = append(out, i)
		}
	}
	return out
}

var partColors = []string{"purple", "orange", "lightgreen", "mediumblue", "red", "forestgreen", "#C154C1", "#5C3317"}

// PartGroups gives every part its own group.
func PartGroups(s *score.Score) []Group {
	groups := make([]Group, len(s.Parts))
	for i, p := range s.Parts {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("Part %d", i+1)
		}
		groups[i] = Group{Name: name, Color: partColors[i%len(partColors)], Match: []string{strconv.Itoa(i)}}
	}
	return groups
}

var (
	choirGroups = []Group{
		{Name: "Soprano", Color: "purple", Match: []string{"soprano"}},
		{Name: "Alto", Color: "orange", Match: []string{"alto"}},
		{Name: "Tenor", Color: "lightgreen", Match: []string{"tenor"}},
		{Name: "Bass", Color: "mediumblue", Match: []string{"bass"}},
	}

	quartetGroups = []Group{
		{Name: "1st Violin", Color: "purple", Match: []string{"1st violin", "violin 1", "violin i"}},
		{Name: "2nd Violin", Color: "orange", Match: []string{"2nd violin", "violin 2", "violin ii"}},
		{Name: "Viola", Color: "lightgreen", Match: []string{"viola"}},
		{Name: "Cello", Color: "mediumblue", Match: []string{"cello", "violoncello", "'cello"}},
	}

	orchestraGroups = []Group{
		{Name: "Flute", Color: "#C154C1", Match: []string{"flauto", `flute \d`}},
		{Name: "Oboe", Color: "blue", Match: []string{"oboe", `oboe \d`}},
		{Name: "Clarinet", Color: "mediumblue", Match: []string{"clarinetto", `clarinet in \w* \d`}},
		{Name: "Bassoon", Color: "purple", Match: []string{"fagotto", `bassoon \d`}},
		{Name: "Horns", Color: "orange", Match: []string{"corno", `horn in \w* \d`}},
		{Name: "Trumpet", Color: "red", Match: []string{"tromba", `trumpet \d`, `trumpet in \w* \d`}},
		{Name: "Trombone", Color: "red", Match: []string{"trombone", `trombone \d`}},
		{Name: "Timpani", Color: "#5C3317", Match: []string{"timpani"}},
		{Name: "Violin I", Color: "lightgreen", Match: []string{"violino i", "violin i"}},
		{Name: "Violin II", Color: "green", Match: []string{"violino ii", "violin ii"}},
		{Name: "Viola", Color: "forestgreen", Match: []string{"viola"}},
		{Name: "Violoncello & CB", Color: "dark green", Match: []string{"violoncello", "contrabasso"}},
	}
)

// DefaultGroups picks a preset from the part names: the orchestral layout for
// more than ten parts, otherwise the string quartet or choir layout when it
// covers every part. Any other score gets one group per part.
func DefaultGroups(s *score.Score) []Group {
	if len(s.Parts) > 10 {
		return cloneGroups(orchestraGroups)
	}
	for _, preset := range [][]Group{quartetGroups, choirGroups} {
		if covers(preset, s) {
			return cloneGroups(preset)
		}
	}
	return PartGroups(s)
}

func covers(groups []Group, s *score.Score) bool {
	if len(s.Parts) == 0 {
		return false
	}
	for i, p := range s.Parts {
		matched := false
		for _, g := range groups {
			if g.Matches(i, p) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func cloneGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		g.Match = append([]string(nil), g.Match...)
		out[i] = g
	}
	return out
}
