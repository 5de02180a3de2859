package catalogue

var kalobeyeiBasic = []string{
	"Kalobeyei Morning Star Sch",
	"Kalobeyei Settlement Sch",
	"Kalobeyei Friends Sch",
	"Joy Sch",
	"Future Sch",
	"Bright Sch",
	"Nationokar Sch",
	"Esikiriat Sch",
}

// DefaultLevels is the built-in catalogue used when configuration does not
// supply one.
var DefaultLevels = []Level{
	{Name: "ECDE", Schools: kalobeyeiBasic},
	{Name: "Primary", Schools: kalobeyeiBasic},
	{Name: "Junior", Schools: kalobeyeiBasic},
	{Name: "Secondary", Schools: []string{
		"Kalobeyei Settlement Secondary",
		"Brightstar Integrated Secondary",
		"The Big Heart Foundation Girls",
	}},
}

// Default returns a catalogue built from DefaultLevels.
func Default() *Catalogue {
	return MustNew(DefaultLevels)
}
