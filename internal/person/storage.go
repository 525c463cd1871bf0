package person

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Raisondetr3/Person-Service-SOA/internal/database"
	"github.com/Raisondetr3/Person-Service-SOA/internal/filter"
)

// selectColumns is the fixed column order every person scan uses.
const selectColumns = `"id", "name", "coordinates_x", "coordinates_y", "creation_date", "height", "weight", "hair_color", "eye_color", "nationality", "location_x", "location_y", "location_z", "location_name"`

// Page describes one requested slice of the collection. SortColumn is
// the already-resolved SQL column, empty for no ordering.
type Page struct {
	Number     int
	Size       int
	SortColumn string
	SortDesc   bool
}

// PageResult is one slice plus total-count metadata.
type PageResult struct {
	Items         []Person
	TotalElements int64
	TotalPages    int
	Number        int
	Size          int
}

// HasNext reports whether a later page exists.
func (r *PageResult) HasNext() bool { return r.Number+1 < r.TotalPages }

// HasPrevious reports whether an earlier page exists.
func (r *PageResult) HasPrevious() bool { return r.Number > 0 }

// Storage persists persons in PostgreSQL.
type Storage struct {
	db *database.Connection
}

// NewStorage creates a person storage over db.
func NewStorage(db *database.Connection) *Storage {
	return &Storage{db: db}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPerson(row scannable) (*Person, error) {
	var p Person
	var locationName *string
	err := row.Scan(
		&p.ID, &p.Name, &p.Coordinates.X, &p.Coordinates.Y, &p.CreationDate,
		&p.Height, &p.Weight, &p.HairColor, &p.EyeColor, &p.Nationality,
		&p.Location.X, &p.Location.Y, &p.Location.Z, &locationName,
	)
	if err != nil {
		return nil, err
	}
	if locationName != nil {
		p.Location.Name = *locationName
	}
	return &p, nil
}

func buildCountQuery(pred *filter.Predicate) (string, []any) {
	var args []any
	sql := `SELECT COUNT(*) FROM "persons"`
	if where := pred.SQL(&args); where != "" {
		sql += " WHERE " + where
	}
	return sql, args
}

func buildListQuery(pred *filter.Predicate, page Page) (string, []any) {
	var args []any
	sql := `SELECT ` + selectColumns + ` FROM "persons"`
	if where := pred.SQL(&args); where != "" {
		sql += " WHERE " + where
	}
	if page.SortColumn != "" {
		dir := "ASC"
		if page.SortDesc {
			dir = "DESC"
		}
		sql += fmt.Sprintf(` ORDER BY %q %s`, page.SortColumn, dir)
	}
	sql += fmt.Sprintf(" LIMIT %d OFFSET %d", page.Size, page.Number*page.Size)
	return sql, args
}

// List returns one page of persons matching pred, with total-count
// metadata computed over the same predicate.
func (s *Storage) List(ctx context.Context, pred *filter.Predicate, page Page) (*PageResult, error) {
	countSQL, countArgs := buildCountQuery(pred)
	var total int64
	if err := s.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting persons: %w", err)
	}

	listSQL, listArgs := buildListQuery(pred, page)
	rows, err := s.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, fmt.Errorf("listing persons: %w", err)
	}
	defer rows.Close()

	items := []Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading persons: %w", err)
	}

	totalPages := 0
	if page.Size > 0 {
		totalPages = int((total + int64(page.Size) - 1) / int64(page.Size))
	}
	return &PageResult{
		Items:         items,
		TotalElements: total,
		TotalPages:    totalPages,
		Number:        page.Number,
		Size:          page.Size,
	}, nil
}

// Get fetches one person by id.
func (s *Storage) Get(ctx context.Context, id int32) (*Person, error) {
	row := s.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM "persons" WHERE "id" = $1`, id)
	p, err := scanPerson(row)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return p, nil
}

// Create inserts p and fills in its id and creation date.
func (s *Storage) Create(ctx context.Context, p *Person) error {
	p.CreationDate = time.Now()
	err := s.db.QueryRow(ctx, `
		INSERT INTO "persons"
			("name", "coordinates_x", "coordinates_y", "creation_date", "height", "weight",
			 "hair_color", "eye_color", "nationality",
			 "location_x", "location_y", "location_z", "location_name")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING "id"`,
		p.Name, p.Coordinates.X, p.Coordinates.Y, p.CreationDate, p.Height, p.Weight,
		p.HairColor, p.EyeColor, p.Nationality,
		p.Location.X, p.Location.Y, p.Location.Z, nullableString(p.Location.Name),
	).Scan(&p.ID)
	if err != nil {
		return database.TranslateError(err)
	}
	return nil
}

// Update replaces the mutable fields of the person with the given id.
// The creation date is preserved.
func (s *Storage) Update(ctx context.Context, id int32, p *Person) error {
	row := s.db.QueryRow(ctx, `
		UPDATE "persons" SET
			"name" = $1, "coordinates_x" = $2, "coordinates_y" = $3, "height" = $4,
			"weight" = $5, "hair_color" = $6, "eye_color" = $7, "nationality" = $8,
			"location_x" = $9, "location_y" = $10, "location_z" = $11, "location_name" = $12
		WHERE "id" = $13
		RETURNING "creation_date"`,
		p.Name, p.Coordinates.X, p.Coordinates.Y, p.Height,
		p.Weight, p.HairColor, p.EyeColor, p.Nationality,
		p.Location.X, p.Location.Y, p.Location.Z, nullableString(p.Location.Name),
		id,
	)
	if err := row.Scan(&p.CreationDate); err != nil {
		return database.TranslateError(err)
	}
	p.ID = id
	return nil
}

// Delete removes the person with the given id.
func (s *Storage) Delete(ctx context.Context, id int32) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM "persons" WHERE "id" = $1`, id)
	if err != nil {
		return database.TranslateError(err)
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Count returns the total number of persons.
func (s *Storage) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM "persons"`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting persons: %w", err)
	}
	return n, nil
}

// Exists reports whether a person with the given id exists.
func (s *Storage) Exists(ctx context.Context, id int32) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM "persons" WHERE "id" = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking person existence: %w", err)
	}
	return exists, nil
}

// DeleteFirstByHairColor removes the lowest-id person with the given
// hair color and returns it. ErrNotFound when no person matches.
func (s *Storage) DeleteFirstByHairColor(ctx context.Context, color Color) (*Person, error) {
	row := s.db.QueryRow(ctx, `
		DELETE FROM "persons"
		WHERE "id" = (SELECT "id" FROM "persons" WHERE "hair_color" = $1 ORDER BY "id" LIMIT 1)
		RETURNING `+selectColumns, color)
	p, err := scanPerson(row)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return p, nil
}

// MaxName returns the person with the longest name.
func (s *Storage) MaxName(ctx context.Context) (*Person, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+selectColumns+` FROM "persons"
		WHERE "name" IS NOT NULL
		ORDER BY LENGTH("name") DESC LIMIT 1`)
	p, err := scanPerson(row)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return p, nil
}

// ListNationalityBelow returns every person whose nationality ordinal
// is strictly below the given country's, using the same rank mapping
// the filter engine uses.
func (s *Storage) ListNationalityBelow(ctx context.Context, country Country) ([]Person, error) {
	ordinal, ok := CountryEnum.Ordinal(string(country))
	if !ok {
		return nil, fmt.Errorf("unknown nationality %q", country)
	}

	var args []any
	var sb strings.Builder
	filter.EnumRank("nationality", CountryEnum, filter.OpLessThan, ordinal).AppendSQL(&sb, &args)

	rows, err := s.db.Query(ctx,
		`SELECT `+selectColumns+` FROM "persons" WHERE `+sb.String()+` ORDER BY "id"`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing persons by nationality: %w", err)
	}
	defer rows.Close()

	out := []Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// HairColorStats counts persons per hair color, zero-filling variants
// with no records.
func (s *Storage) HairColorStats(ctx context.Context) (map[Color]int64, error) {
	stats := make(map[Color]int64, len(Colors()))
	for _, c := range Colors() {
		stats[c] = 0
	}
	rows, err := s.db.Query(ctx, `SELECT "hair_color", COUNT(*) FROM "persons" GROUP BY "hair_color"`)
	if err != nil {
		return nil, fmt.Errorf("hair color statistics: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c Color
		var n int64
		if err := rows.Scan(&c, &n); err != nil {
			return nil, fmt.Errorf("scanning statistics: %w", err)
		}
		stats[c] = n
	}
	return stats, rows.Err()
}

// NationalityStats counts persons per nationality, zero-filling
// variants with no records.
func (s *Storage) NationalityStats(ctx context.Context) (map[Country]int64, error) {
	stats := make(map[Country]int64, len(Countries()))
	for _, c := range Countries() {
		stats[c] = 0
	}
	rows, err := s.db.Query(ctx, `SELECT "nationality", COUNT(*) FROM "persons" GROUP BY "nationality"`)
	if err != nil {
		return nil, fmt.Errorf("nationality statistics: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c Country
		var n int64
		if err := rows.Scan(&c, &n); err != nil {
			return nil, fmt.Errorf("scanning statistics: %w", err)
		}
		stats[c] = n
	}
	return stats, rows.Err()
}

// HairColorPercentage returns the share of persons with the given hair
// color, in percent. Zero when the collection is empty.
func (s *Storage) HairColorPercentage(ctx context.Context, color Color) (float64, error) {
	var total, matching int64
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE "hair_color" = $1) FROM "persons"`, color,
	).Scan(&total, &matching)
	if err != nil {
		return 0, fmt.Errorf("hair color percentage: %w", err)
	}
	if total == 0 {
		return 0, nil
	}
	return float64(matching) / float64(total) * 100, nil
}

// CountByEyeColorAndNationality counts persons matching both values.
func (s *Storage) CountByEyeColorAndNationality(ctx context.Context, eye Color, nationality Country) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM "persons" WHERE "eye_color" = $1 AND "nationality" = $2`,
		eye, nationality,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting by eye color and nationality: %w", err)
	}
	return n, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
