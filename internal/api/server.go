package api

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Raisondetr3/Person-Service-SOA/internal/config"
	"github.com/Raisondetr3/Person-Service-SOA/internal/filter"
	"github.com/Raisondetr3/Person-Service-SOA/internal/person"
)

// PersonStore is the persistence surface the handlers need. It is
// implemented by person.Storage and mocked in tests.
type PersonStore interface {
	List(ctx context.Context, pred *filter.Predicate, page person.Page) (*person.PageResult, error)
	Get(ctx context.Context, id int32) (*person.Person, error)
	Create(ctx context.Context, p *person.Person) error
	Update(ctx context.Context, id int32, p *person.Person) error
	Delete(ctx context.Context, id int32) error
	Count(ctx context.Context) (int64, error)
	Exists(ctx context.Context, id int32) (bool, error)
	DeleteFirstByHairColor(ctx context.Context, color person.Color) (*person.Person, error)
	MaxName(ctx context.Context) (*person.Person, error)
	ListNationalityBelow(ctx context.Context, country person.Country) ([]person.Person, error)
	HairColorStats(ctx context.Context) (map[person.Color]int64, error)
	NationalityStats(ctx context.Context) (map[person.Country]int64, error)
	HairColorPercentage(ctx context.Context, color person.Color) (float64, error)
	CountByEyeColorAndNationality(ctx context.Context, eye person.Color, nationality person.Country) (int64, error)
}

// Server wires the HTTP layer: routes, middleware and the filter
// engine over the person schema.
type Server struct {
	app     *fiber.App
	cfg     *config.Config
	store   PersonStore
	schema  *filter.Schema
	builder *filter.Builder
}

// NewServer builds the fiber app with all routes registered.
func NewServer(cfg *config.Config, store PersonStore) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	schema := person.FilterSchema()
	s := &Server{
		app:     app,
		cfg:     cfg,
		store:   store,
		schema:  schema,
		builder: filter.NewBuilder(schema),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Use(requestLogger())

	s.app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	persons := s.app.Group("/persons")
	persons.Get("/", s.ListPersons)
	persons.Post("/", s.CreatePerson)
	persons.Get("/count", s.CountPersons)
	persons.Get("/exists/:id", s.PersonExists)
	persons.Get("/max-name", s.MaxNamePerson)
	persons.Get("/nationality-less-than/:nationality", s.PersonsByNationalityLessThan)
	persons.Get("/statistics/hair-color", s.HairColorStatistics)
	persons.Get("/statistics/nationality", s.NationalityStatistics)
	persons.Get("/statistics/hair-color/:hairColor/percentage", s.HairColorPercentage)
	persons.Get("/statistics/eye-color/:eyeColor/nationality/:nationality", s.EyeColorNationalityCount)
	persons.Delete("/hair-color/:hairColor", s.DeleteByHairColor)
	persons.Get("/:id", s.GetPerson)
	persons.Put("/:id", s.UpdatePerson)
	persons.Delete("/:id", s.DeletePerson)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until the listener fails or the app is shut down.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Server.Address)
}

// Shutdown drains in-flight requests and stops the app.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
