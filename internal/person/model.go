package person

import (
	"strings"
	"time"
)

// Color is a hair or eye color. Declaration order is significant: the
// ordinal-comparison filters rank variants by their position here.
type Color string

const (
	ColorGreen  Color = "GREEN"
	ColorBlue   Color = "BLUE"
	ColorOrange Color = "ORANGE"
	ColorBrown  Color = "BROWN"
)

// Colors lists the variants in declaration order.
func Colors() []Color {
	return []Color{ColorGreen, ColorBlue, ColorOrange, ColorBrown}
}

// ParseColor matches raw case-insensitively against the variant set.
func ParseColor(raw string) (Color, bool) {
	upper := Color(strings.ToUpper(raw))
	for _, c := range Colors() {
		if c == upper {
			return c, true
		}
	}
	return "", false
}

// Country is a nationality. Declaration order is significant, same as
// for Color.
type Country string

const (
	CountryFrance     Country = "FRANCE"
	CountrySpain      Country = "SPAIN"
	CountryIndia      Country = "INDIA"
	CountryThailand   Country = "THAILAND"
	CountrySouthKorea Country = "SOUTH_KOREA"
)

// Countries lists the variants in declaration order.
func Countries() []Country {
	return []Country{CountryFrance, CountrySpain, CountryIndia, CountryThailand, CountrySouthKorea}
}

// ParseCountry matches raw case-insensitively against the variant set.
func ParseCountry(raw string) (Country, bool) {
	upper := Country(strings.ToUpper(raw))
	for _, c := range Countries() {
		if c == upper {
			return c, true
		}
	}
	return "", false
}

// Coordinates is an embedded value; both components are required.
type Coordinates struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

// Location is an embedded value; only the name is required.
type Location struct {
	X    *int64   `json:"x"`
	Y    *float64 `json:"y"`
	Z    *float64 `json:"z"`
	Name string   `json:"name"`
}

// Person is the stored entity.
type Person struct {
	ID           int32       `json:"id"`
	Name         string      `json:"name"`
	Coordinates  Coordinates `json:"coordinates"`
	CreationDate time.Time   `json:"creationDate"`
	Height       *int64      `json:"height,omitempty"`
	Weight       float32     `json:"weight"`
	HairColor    Color       `json:"hairColor"`
	EyeColor     Color       `json:"eyeColor"`
	Nationality  Country     `json:"nationality"`
	Location     Location    `json:"location"`
}
