package normalize

// verboseWindNames maps the provider's assorted compass abbreviations onto
// one long-form vocabulary, so state values read the same regardless of
// which reporting station produced them.
var verboseWindNames = map[string]string{
	"N":     "north",
	"North": "north",
	"NNE":   "north northeast",
	"NE":    "northeast",
	"ENE":   "east northeast",
	"E":     "east",
	"East":  "east",
	"ESE":   "east southeast",
	"SE":    "southeast",
	"SSE":   "south southeast",
	"S":     "south",
	"South": "south",
	"SSW":   "south southwest",
	"SW":    "southwest",
	"WSW":   "west southwest",
	"W":     "west",
	"West":  "west",
	"WNW":   "west northwest",
	"NW":    "northwest",
	"NNW":   "north northwest",
}

// windLongName returns the long-form name for a compass direction, passing
// unknown values through unchanged.
func windLongName(dir string) string {
	if name, ok := verboseWindNames[dir]; ok {
		return name
	}
	return dir
}

// kphToMps converts kilometers per hour to meters per second for the
// metric-SI unit system.
const kphToMps = 0.277778
