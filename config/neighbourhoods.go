package config

import "strings"

// ValidNeighbourhoods is the list of Boston neighbourhoods accepted by the
// predict endpoint. The fitted vocabulary is derived from live data and may
// drift from this list; the reload path logs a warning when that happens.
var ValidNeighbourhoods = []string{
	"East Boston", "Roxbury", "Beacon Hill", "Back Bay", "North End", "Dorchester",
	"Charlestown", "Jamaica Plain", "Downtown", "South Boston", "Bay Village",
	"Brighton", "West Roxbury", "Roslindale", "South End", "Mission Hill",
	"Fenway", "Allston", "Hyde Park", "West End", "Mattapan", "Leather District",
	"South Boston Waterfront", "Chinatown", "Longwood Medical Area",
}

// IsValidNeighbourhood reports whether name is in the accepted list.
func IsValidNeighbourhood(name string) bool {
	for _, n := range ValidNeighbourhoods {
		if n == name {
			return true
		}
	}
	return false
}

// NeighbourhoodList returns the accepted names joined for error messages.
func NeighbourhoodList() string {
	return strings.Join(ValidNeighbourhoods, ", ")
}
