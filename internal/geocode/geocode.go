// Package geocode resolves free-text destinations into coordinates plus a
// human-readable label, via the Photon search API and the OpenWeatherMap
// direct geocoding API.
package geocode

import "strings"

// Place is one resolved location suggestion.
type Place struct {
	Name        string
	City        string
	State       string
	Country     string
	CountryCode string
	Latitude    float64
	Longitude   float64
}

// DisplayName assembles a "Name, City, State, Country" label, skipping empty
// parts and a city that merely repeats the name.
func (p Place) DisplayName() string {
	var parts []string
	if p.Name != "" {
		parts = append(parts, p.Name)
	}
	if p.City != "" && p.City != p.Name {
		parts = append(parts, p.City)
	}
	if p.State != "" {
		parts = append(parts, p.State)
	}
	if p.Country != "" {
		parts = append(parts, p.Country)
	}
	return strings.Join(parts, ", ")
}
