package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/Raisondetr3/Person-Service-SOA/internal/database"
	"github.com/Raisondetr3/Person-Service-SOA/internal/person"
)

// PageResponse is the list envelope: data plus page metadata.
type PageResponse struct {
	Data          []person.Person `json:"data"`
	TotalElements int64           `json:"totalElements"`
	TotalPages    int             `json:"totalPages"`
	Page          int             `json:"page"`
	Size          int             `json:"size"`
	HasNext       bool            `json:"hasNext"`
	HasPrevious   bool            `json:"hasPrevious"`
}

// ListPersons returns one page of persons, filtered by any
// field[operator]=value query parameters.
// GET /persons
func (s *Server) ListPersons(c fiber.Ctx) error {
	page, err := strconv.Atoi(c.Query("page", "0"))
	if err != nil || page < 0 {
		return sendError(c, fiber.StatusBadRequest, CodeInvalidParameter, "page must be a non-negative number")
	}

	size, err := strconv.Atoi(c.Query("size", strconv.Itoa(s.cfg.API.DefaultPageSize)))
	if err != nil || size <= 0 {
		return sendError(c, fiber.StatusBadRequest, CodeInvalidParameter, "size must be a positive number")
	}
	if size > s.cfg.API.MaxPageSize {
		size = s.cfg.API.MaxPageSize
	}

	p := person.Page{Number: page, Size: size}
	if sortBy := c.Query("sortBy", ""); sortBy != "" {
		field, ok := s.schema.Resolve(sortBy)
		if !ok {
			return sendError(c, fiber.StatusBadRequest, CodeInvalidParameter, fmt.Sprintf("unknown sort field: %s", sortBy))
		}
		p.SortColumn = field.Column
		p.SortDesc = strings.EqualFold(c.Query("sortDirection", ""), "desc")
	}

	pred := s.builder.Build(c.Queries())

	result, err := s.store.List(c.RequestCtx(), pred, p)
	if err != nil {
		log.Error().Err(err).Msg("Listing persons failed")
		return sendError(c, fiber.StatusInternalServerError, CodeInternalError, "Unable to list persons")
	}

	return c.JSON(PageResponse{
		Data:          result.Items,
		TotalElements: result.TotalElements,
		TotalPages:    result.TotalPages,
		Page:          result.Number,
		Size:          result.Size,
		HasNext:       result.HasNext(),
		HasPrevious:   result.HasPrevious(),
	})
}

// GetPerson returns one person by id.
// GET /persons/:id
func (s *Server) GetPerson(c fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return sendError(c, fiber.StatusBadRequest, CodeInvalidParameter, "ID must be a positive number")
	}

	p, err := s.store.Get(c.RequestCtx(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return sendError(c, fiber.StatusNotFound, CodePersonNotFound, fmt.Sprintf("Person with ID %d not found", id))
		}
		log.Error().Err(err).Int32("id", id).Msg("Fetching person failed")
		return sendError(c, fiber.StatusInternalServerError, CodeInternalError, "Unable to fetch person")
	}
	return c.JSON(p)
}

// CreatePerson validates and stores a new person. The creation date is
// set server-side.
// POST /persons
func (s *Server) CreatePerson(c fiber.Ctx) error {
	var in person.Input
	if err := c.Bind().Body(&in); err != nil {
		return sendError(c, fiber.StatusBadRequest, CodeInvalidParameter, "Invalid request body")
	}
	if errs := in.Validate(); len(errs) > 0 {
		return sendValidationErrors(c, errs)
	}

	p := in.ToPerson()
	if err := s.store.Create(c.RequestCtx(), p); err != nil {
		return sendStorageError(c, err, "Unable to save person")
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// UpdatePerson replaces a person's fields, preserving the creation
// date.
// PUT /persons/:id
func (s *Server) UpdatePerson(c fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return sendError(c, fiber.StatusBadRequest, CodeInvalidParameter, "ID must be a positive number")
	}

	var in person.Input
	if err := c.Bind().Body(&in); err != nil {
		return sendError(c, fiber.StatusBadRequest, CodeInvalidParameter, "Invalid request body")
	}
	if errs := in.Validate(); len(errs) > 0 {
		return sendValidationErrors(c, errs)
	}

	p := in.ToPerson()
	if err := s.store.Update(c.RequestCtx(), id, p); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return sendError(c, fiber.StatusNotFound, CodePersonNotFound, fmt.Sprintf("Person with ID %d not found", id))
		}
		return sendStorageError(c, err, "Unable to update person")
	}
	return c.JSON(p)
}

// DeletePerson removes one person by id.
// DELETE /persons/:id
func (s *Server) DeletePerson(c fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return sendError(c, fiber.StatusBadRequest, CodeInvalidParameter, "ID must be a positive number")
	}

	if err := s.store.Delete(c.RequestCtx(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return sendError(c, fiber.StatusNotFound, CodePersonNotFound, fmt.Sprintf("Person with ID %d not found", id))
		}
		log.Error().Err(err).Int32("id", id).Msg("Deleting person failed")
		return sendError(c, fiber.StatusInternalServerError, CodeInternalError, "Unable to delete person")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CountPersons returns the total number of persons.
// GET /persons/count
func (s *Server) CountPersons(c fiber.Ctx) error {
	n, err := s.store.Count(c.RequestCtx())
	if err != nil {
		log.Error().Err(err).Msg("Counting persons failed")
		return sendError(c, fiber.StatusInternalServerError, CodeInternalError, "Unable to count persons")
	}
	return c.JSON(n)
}

// PersonExists reports whether a person with the given id exists.
// GET /persons/exists/:id
func (s *Server) PersonExists(c fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(false)
	}
	exists, err := s.store.Exists(c.RequestCtx(), id)
	if err != nil {
		log.Error().Err(err).Int32("id", id).Msg("Existence check failed")
		return sendError(c, fiber.StatusInternalServerError, CodeInternalError, "Unable to check person existence")
	}
	return c.JSON(exists)
}

// DeleteByHairColor deletes the first person with the given hair color.
// DELETE /persons/hair-color/:hairColor
func (s *Server) DeleteByHairColor(c fiber.Ctx) error {
	color, ok := person.ParseColor(c.Params("hairColor"))
	if !ok {
		return sendError(c, fiber.StatusBadRequest, CodeInvalidParameter, fmt.Sprintf("Unknown hair color: %s", c.Params("hairColor")))
	}

	p, err := s.store.DeleteFirstByHairColor(c.RequestCtx(), color)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return sendError(c, fiber.StatusNotFound, CodePersonNotFound, fmt.Sprintf("Person with hair color %s not found", color))
		}
		log.Error().Err(err).Str("hair_color", string(color)).Msg("Deleting by hair color failed")
		return sendError(c, fiber.StatusInternalServerError, CodeInternalError, "Unable to delete person")
	}

	log.Info().Int32("id", p.ID).Str("hair_color", string(color)).Msg("Deleted person by hair color")
	return c.SendStatus(fiber.StatusNoContent)
}

// MaxNamePerson returns the person with the longest name.
// GET /persons/max-name
func (s *Server) MaxNamePerson(c fiber.Ctx) error {
	p, err := s.store.MaxName(c.RequestCtx())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return sendError(c, fiber.StatusNotFound, CodePersonNotFound, "No persons found")
		}
		log.Error().Err(err).Msg("Max-name lookup failed")
		return sendError(c, fiber.StatusInternalServerError, CodeInternalError, "Unable to fetch person")
	}
	return c.JSON(p)
}

// PersonsByNationalityLessThan returns everyone whose nationality
// ordinal is strictly below the given one.
// GET /persons/nationality-less-than/:nationality
func (s *Server) PersonsByNationalityLessThan(c fiber.Ctx) error {
	country, ok := person.ParseCountry(c.Params("nationality"))
	if !ok {
		return sendError(c, fiber.StatusBadRequest, CodeInvalidParameter, fmt.Sprintf("Unknown nationality: %s", c.Params("nationality")))
	}

	persons, err := s.store.ListNationalityBelow(c.RequestCtx(), country)
	if err != nil {
		log.Error().Err(err).Str("nationality", string(country)).Msg("Nationality-less-than query failed")
		return sendError(c, fiber.StatusInternalServerError, CodeInternalError, "Unable to list persons")
	}
	return c.JSON(persons)
}

// HairColorStatistics returns the count per hair color.
// GET /persons/statistics/hair-color
func (s *Server) HairColorStatistics(c fiber.Ctx) error {
	stats, err := s.store.HairColorStats(c.RequestCtx())
	if err != nil {
		log.Error().Err(err).Msg("Hair color statistics failed")
		return sendError(c, fiber.StatusInternalServerError, CodeInternalError, "Unable to compute statistics")
	}
	return c.JSON(stats)
}

// NationalityStatistics returns the count per nationality.
// GET /persons/statistics/nationality
func (s *Server) NationalityStatistics(c fiber.Ctx) error {
	stats, err := s.store.NationalityStats(c.RequestCtx())
	if err != nil {
		log.Error().Err(err).Msg("Nationality statistics failed")
		return sendError(c, fiber.StatusInternalServerError, CodeInternalError, "Unable to compute statistics")
	}
	return c.JSON(stats)
}

// HairColorPercentage returns the share of persons with the given hair
// color, in percent.
// GET /persons/statistics/hair-color/:hairColor/percentage
func (s *Server) HairColorPercentage(c fiber.Ctx) error {
	color, ok := person.ParseColor(c.Params("hairColor"))
	if !ok {
		return sendError(c, fiber.StatusBadRequest, CodeInvalidParameter, fmt.Sprintf("Unknown hair color: %s", c.Params("hairColor")))
	}

	pct, err := s.store.HairColorPercentage(c.RequestCtx(), color)
	if err != nil {
		log.Error().Err(err).Msg("Hair color percentage failed")
		return sendError(c, fiber.StatusInternalServerError, CodeInternalError, "Unable to compute statistics")
	}
	return c.JSON(pct)
}

// EyeColorNationalityCount counts persons matching both attributes.
// GET /persons/statistics/eye-color/:eyeColor/nationality/:nationality
func (s *Server) EyeColorNationalityCount(c fiber.Ctx) error {
	eye, ok := person.ParseColor(c.Params("eyeColor"))
	if !ok {
		return sendError(c, fiber.StatusBadRequest, CodeInvalidParameter, fmt.Sprintf("Unknown eye color: %s", c.Params("eyeColor")))
	}
	country, ok := person.ParseCountry(c.Params("nationality"))
	if !ok {
		return sendError(c, fiber.StatusBadRequest, CodeInvalidParameter, fmt.Sprintf("Unknown nationality: %s", c.Params("nationality")))
	}

	n, err := s.store.CountByEyeColorAndNationality(c.RequestCtx(), eye, country)
	if err != nil {
		log.Error().Err(err).Msg("Eye color and nationality count failed")
		return sendError(c, fiber.StatusInternalServerError, CodeInternalError, "Unable to compute statistics")
	}
	return c.JSON(n)
}

// parseID reads the :id route parameter as a positive int32.
func parseID(c fiber.Ctx) (int32, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

// sendStorageError maps persistence errors onto integrity-violation
// responses.
func sendStorageError(c fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, database.ErrNullViolation):
		return sendError(c, fiber.StatusUnprocessableEntity, CodeValidationFailed, database.ErrNullViolation.Error())
	case errors.Is(err, database.ErrForeignKey):
		return sendError(c, fiber.StatusUnprocessableEntity, CodeValidationFailed, database.ErrForeignKey.Error())
	case errors.Is(err, database.ErrDuplicate):
		return sendError(c, fiber.StatusUnprocessableEntity, CodeValidationFailed, database.ErrDuplicate.Error())
	default:
		log.Error().Err(err).Msg("Storage operation failed")
		return sendError(c, fiber.StatusBadRequest, CodeDataIntegrity, fallback)
	}
}
