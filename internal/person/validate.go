package person

import "strings"

// Input carries the client-supplied fields of a create or update
// request. Pointers distinguish absent from zero.
type Input struct {
	Name        string       `json:"name"`
	Coordinates *Coordinates `json:"coordinates"`
	Height      *int64       `json:"height"`
	Weight      *float32     `json:"weight"`
	HairColor   string       `json:"hairColor"`
	EyeColor    string       `json:"eyeColor"`
	Nationality string       `json:"nationality"`
	Location    *Location    `json:"location"`
}

// Validate applies the entity constraints and returns per-field error
// messages, empty when the input is acceptable.
func (in *Input) Validate() map[string]string {
	errs := make(map[string]string)

	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs["name"] = "Name is required and cannot be empty"
	} else if len(name) > 255 {
		errs["name"] = "Name cannot exceed 255 characters"
	}

	if in.Weight == nil {
		errs["weight"] = "Weight is required"
	} else if *in.Weight <= 0 {
		errs["weight"] = "Weight must be greater than 0"
	} else if *in.Weight > 1000 {
		errs["weight"] = "Weight cannot exceed 1000 kg"
	}

	if in.Height != nil {
		if *in.Height <= 0 {
			errs["height"] = "Height must be greater than 0"
		} else if *in.Height > 300 {
			errs["height"] = "Height cannot exceed 300 cm"
		}
	}

	if in.HairColor == "" {
		errs["hairColor"] = "Hair color is required"
	} else if _, ok := ParseColor(in.HairColor); !ok {
		errs["hairColor"] = "Unknown hair color: " + in.HairColor
	}

	if in.EyeColor == "" {
		errs["eyeColor"] = "Eye color is required"
	} else if _, ok := ParseColor(in.EyeColor); !ok {
		errs["eyeColor"] = "Unknown eye color: " + in.EyeColor
	}

	if in.Nationality == "" {
		errs["nationality"] = "Nationality is required"
	} else if _, ok := ParseCountry(in.Nationality); !ok {
		errs["nationality"] = "Unknown nationality: " + in.Nationality
	}

	if in.Coordinates == nil {
		errs["coordinates"] = "Coordinates are required"
	} else if in.Coordinates.Y > 626 {
		errs["coordinates.y"] = "Coordinate Y must not exceed 626"
	}

	if in.Location != nil && len(strings.TrimSpace(in.Location.Name)) > 255 {
		errs["location.name"] = "Location name cannot exceed 255 characters"
	}

	return errs
}

// ToPerson converts validated input to the entity form. Callers must
// have checked Validate first; unknown enum spellings become canonical
// variants here.
func (in *Input) ToPerson() *Person {
	p := &Person{
		Name:   strings.TrimSpace(in.Name),
		Height: in.Height,
	}
	if in.Weight != nil {
		p.Weight = *in.Weight
	}
	if in.Coordinates != nil {
		p.Coordinates = *in.Coordinates
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if c, ok := ParseColor(in.HairColor); ok {
		p.HairColor = c
	}
	if c, ok := ParseColor(in.EyeColor); ok {
		p.EyeColor = c
	}
	if c, ok := ParseCountry(in.Nationality); ok {
		p.Nationality = c
	}
	return p
}
