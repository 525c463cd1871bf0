package person

import "github.com/Raisondetr3/Person-Service-SOA/internal/filter"

// ColorEnum and CountryEnum expose the declared variant order to the
// filter engine.
var (
	ColorEnum   = &filter.Enum{Name: "Color", Variants: colorVariants()}
	CountryEnum = &filter.Enum{Name: "Country", Variants: countryVariants()}
)

func colorVariants() []string {
	cs := Colors()
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

func countryVariants() []string {
	cs := Countries()
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

// FilterSchema is the static field-path -> descriptor map for Person.
// Field names use the API spelling; columns the SQL spelling. Built
// once at package init, read-only afterwards.
func FilterSchema() *filter.Schema {
	coordinates := filter.NewSchema().
		AddField("x", filter.Field{Column: "coordinates_x", Type: filter.TypeInteger}).
		AddField("y", filter.Field{Column: "coordinates_y", Type: filter.TypeInteger})

	location := filter.NewSchema().
		AddField("x", filter.Field{Column: "location_x", Type: filter.TypeInteger}).
		AddField("y", filter.Field{Column: "location_y", Type: filter.TypeFloat}).
		AddField("z", filter.Field{Column: "location_z", Type: filter.TypeFloat}).
		AddField("name", filter.Field{Column: "location_name", Type: filter.TypeString})

	return filter.NewSchema().
		AddField("id", filter.Field{Column: "id", Type: filter.TypeInteger}).
		AddField("name", filter.Field{Column: "name", Type: filter.TypeString}).
		AddField("creationDate", filter.Field{Column: "creation_date", Type: filter.TypeTimestamp}).
		AddField("height", filter.Field{Column: "height", Type: filter.TypeInteger}).
		AddField("weight", filter.Field{Column: "weight", Type: filter.TypeFloat}).
		AddField("hairColor", filter.Field{Column: "hair_color", Type: filter.TypeEnum, Enum: ColorEnum}).
		AddField("eyeColor", filter.Field{Column: "eye_color", Type: filter.TypeEnum, Enum: ColorEnum}).
		AddField("nationality", filter.Field{Column: "nationality", Type: filter.TypeEnum, Enum: CountryEnum}).
		Embed("coordinates", coordinates).
		Embed("location", location)
}
