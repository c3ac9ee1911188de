package score

// Dynamics lists the recognised markings from softest to loudest. The index
// of a marking is its position on the dynamics axis.
var Dynamics = []string{
	"pppppp", "ppppp", "pppp", "ppp", "pp", "p", "mp", "mf",
	"f", "fp", "sf", "ff", "fff", "ffff", "fffff", "ffffff",
}

var dynamicScalars = map[string]float64{
	"pppppp": 0.02,
	"ppppp":  0.05,
	"pppp":   0.1,
	"ppp":    0.15,
	"pp":     0.25,
	"p":      0.35,
	"mp":     0.45,
	"mf":     0.55,
	"f":      0.75,
	"fp":     0.75,
	"sf":     0.85,
	"ff":     0.85,
	"fff":    0.95,
	"ffff":   0.97,
	"fffff":  0.99,
	"ffffff": 1,
}

// DefaultDynamic is assumed where no marking has been seen.
const DefaultDynamic = "mf"

// DynamicIndex returns the position of a marking in Dynamics.
func DynamicIndex(name string) (int, bool) {
	for i, d := range Dynamics {
		if d == name {
			return i, true
		}
	}
	return 0, false
}

// DynamicScalar maps a marking to a loudness in [0, 1].
func DynamicScalar(name string) (float64, bool) {
	v, ok := dynamicScalars[name]
	return v, ok
}
