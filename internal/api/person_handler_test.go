package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raisondetr3/Person-Service-SOA/internal/config"
	"github.com/Raisondetr3/Person-Service-SOA/internal/database"
	"github.com/Raisondetr3/Person-Service-SOA/internal/filter"
	"github.com/Raisondetr3/Person-Service-SOA/internal/person"
)

// mockStore implements PersonStore with overridable functions. Calls
// without an override fail the request with a recognizable error.
type mockStore struct {
	list        func(pred *filter.Predicate, page person.Page) (*person.PageResult, error)
	get         func(id int32) (*person.Person, error)
	create      func(p *person.Person) error
	update      func(id int32, p *person.Person) error
	delete      func(id int32) error
	count       func() (int64, error)
	exists      func(id int32) (bool, error)
	deleteHair  func(color person.Color) (*person.Person, error)
	maxName     func() (*person.Person, error)
	natBelow    func(country person.Country) ([]person.Person, error)
	hairStats   func() (map[person.Color]int64, error)
	natStats    func() (map[person.Country]int64, error)
	hairPct     func(color person.Color) (float64, error)
	eyeNatCount func(eye person.Color, nationality person.Country) (int64, error)
}

var errNotStubbed = errors.New("store call not stubbed")

func (m *mockStore) List(_ context.Context, pred *filter.Predicate, page person.Page) (*person.PageResult, error) {
	if m.list == nil {
		return nil, errNotStubbed
	}
	return m.list(pred, page)
}

func (m *mockStore) Get(_ context.Context, id int32) (*person.Person, error) {
	if m.get == nil {
		return nil, errNotStubbed
	}
	return m.get(id)
}

func (m *mockStore) Create(_ context.Context, p *person.Person) error {
	if m.create == nil {
		return errNotStubbed
	}
	return m.create(p)
}

func (m *mockStore) Update(_ context.Context, id int32, p *person.Person) error {
	if m.update == nil {
		return errNotStubbed
	}
	return m.update(id, p)
}

func (m *mockStore) Delete(_ context.Context, id int32) error {
	if m.delete == nil {
		return errNotStubbed
	}
	return m.delete(id)
}

func (m *mockStore) Count(_ context.Context) (int64, error) {
	if m.count == nil {
		return 0, errNotStubbed
	}
	return m.count()
}

func (m *mockStore) Exists(_ context.Context, id int32) (bool, error) {
	if m.exists == nil {
		return false, errNotStubbed
	}
	return m.exists(id)
}

func (m *mockStore) DeleteFirstByHairColor(_ context.Context, color person.Color) (*person.Person, error) {
	if m.deleteHair == nil {
		return nil, errNotStubbed
	}
	return m.deleteHair(color)
}

func (m *mockStore) MaxName(_ context.Context) (*person.Person, error) {
	if m.maxName == nil {
		return nil, errNotStubbed
	}
	return m.maxName()
}

func (m *mockStore) ListNationalityBelow(_ context.Context, country person.Country) ([]person.Person, error) {
	if m.natBelow == nil {
		return nil, errNotStubbed
	}
	return m.natBelow(country)
}

func (m *mockStore) HairColorStats(_ context.Context) (map[person.Color]int64, error) {
	if m.hairStats == nil {
		return nil, errNotStubbed
	}
	return m.hairStats()
}

func (m *mockStore) NationalityStats(_ context.Context) (map[person.Country]int64, error) {
	if m.natStats == nil {
		return nil, errNotStubbed
	}
	return m.natStats()
}

func (m *mockStore) HairColorPercentage(_ context.Context, color person.Color) (float64, error) {
	if m.hairPct == nil {
		return 0, errNotStubbed
	}
	return m.hairPct(color)
}

func (m *mockStore) CountByEyeColorAndNationality(_ context.Context, eye person.Color, nationality person.Country) (int64, error) {
	if m.eyeNatCount == nil {
		return 0, errNotStubbed
	}
	return m.eyeNatCount(eye, nationality)
}

func testServer(store PersonStore) *Server {
	cfg := &config.Config{}
	cfg.Server.Address = ":0"
	cfg.API.DefaultPageSize = 10
	cfg.API.MaxPageSize = 100
	return NewServer(cfg, store)
}

func doRequest(t *testing.T, s *Server, method, target string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func samplePerson(id int32) *person.Person {
	height := int64(180)
	return &person.Person{
		ID:           id,
		Name:         "John Smith",
		Coordinates:  person.Coordinates{X: 10, Y: 20},
		CreationDate: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Height:       &height,
		Weight:       75.5,
		HairColor:    person.ColorBrown,
		EyeColor:     person.ColorGreen,
		Nationality:  person.CountryFrance,
		Location:     person.Location{Name: "Paris"},
	}
}

func sampleInput() map[string]any {
	return map[string]any{
		"name":        "John Smith",
		"coordinates": map[string]any{"x": 10, "y": 20},
		"height":      180,
		"weight":      75.5,
		"hairColor":   "BROWN",
		"eyeColor":    "GREEN",
		"nationality": "FRANCE",
		"location":    map[string]any{"name": "Paris"},
	}
}

func TestListPersons(t *testing.T) {
	t.Run("returns page envelope", func(t *testing.T) {
		store := &mockStore{
			list: func(pred *filter.Predicate, page person.Page) (*person.PageResult, error) {
				assert.Equal(t, 0, page.Number)
				assert.Equal(t, 10, page.Size)
				assert.True(t, pred.Empty())
				return &person.PageResult{
					Items:         []person.Person{*samplePerson(1)},
					TotalElements: 1,
					TotalPages:    1,
					Number:        0,
					Size:          10,
				}, nil
			},
		}

		resp := doRequest(t, testServer(store), http.MethodGet, "/persons/", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		page := decodeJSON[PageResponse](t, resp)
		require.Len(t, page.Data, 1)
		assert.Equal(t, int32(1), page.Data[0].ID)
		assert.Equal(t, int64(1), page.TotalElements)
		assert.False(t, page.HasNext)
		assert.False(t, page.HasPrevious)
	})

	t.Run("passes filters through to the store", func(t *testing.T) {
		store := &mockStore{
			list: func(pred *filter.Predicate, page person.Page) (*person.PageResult, error) {
				var args []any
				assert.Equal(t, `"weight" > $1`, pred.SQL(&args))
				return &person.PageResult{Items: []person.Person{}, Size: page.Size}, nil
			},
		}

		resp := doRequest(t, testServer(store), http.MethodGet, "/persons/?weight[gt]=70", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("resolves sortBy to its column", func(t *testing.T) {
		store := &mockStore{
			list: func(pred *filter.Predicate, page person.Page) (*person.PageResult, error) {
				assert.Equal(t, "creation_date", page.SortColumn)
				assert.True(t, page.SortDesc)
				return &person.PageResult{Items: []person.Person{}, Size: page.Size}, nil
			},
		}

		resp := doRequest(t, testServer(store), http.MethodGet,
			"/persons/?sortBy=creationDate&sortDirection=DESC", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("rejects unknown sort field", func(t *testing.T) {
		resp := doRequest(t, testServer(&mockStore{}), http.MethodGet, "/persons/?sortBy=ghost", nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeJSON[ErrorResponse](t, resp)
		assert.Equal(t, CodeInvalidParameter, body.Error)
	})

	t.Run("rejects negative page", func(t *testing.T) {
		resp := doRequest(t, testServer(&mockStore{}), http.MethodGet, "/persons/?page=-1", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("caps size at the configured maximum", func(t *testing.T) {
		store := &mockStore{
			list: func(pred *filter.Predicate, page person.Page) (*person.PageResult, error) {
				assert.Equal(t, 100, page.Size)
				return &person.PageResult{Items: []person.Person{}, Size: page.Size}, nil
			},
		}

		resp := doRequest(t, testServer(store), http.MethodGet, "/persons/?size=5000", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("storage failure maps to 500", func(t *testing.T) {
		store := &mockStore{
			list: func(pred *filter.Predicate, page person.Page) (*person.PageResult, error) {
				return nil, errors.New("connection refused")
			},
		}

		resp := doRequest(t, testServer(store), http.MethodGet, "/persons/", nil)
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, CodeInternalError, decodeJSON[ErrorResponse](t, resp).Error)
	})
}

func TestGetPerson(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		store := &mockStore{
			get: func(id int32) (*person.Person, error) {
				assert.Equal(t, int32(5), id)
				return samplePerson(5), nil
			},
		}

		resp := doRequest(t, testServer(store), http.MethodGet, "/persons/5", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(5), decodeJSON[person.Person](t, resp).ID)
	})

	t.Run("not found", func(t *testing.T) {
		store := &mockStore{
			get: func(id int32) (*person.Person, error) { return nil, database.ErrNotFound },
		}

		resp := doRequest(t, testServer(store), http.MethodGet, "/persons/99", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		body := decodeJSON[ErrorResponse](t, resp)
		assert.Equal(t, CodePersonNotFound, body.Error)
		assert.Equal(t, "Person with ID 99 not found", body.Message)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		resp := doRequest(t, testServer(&mockStore{}), http.MethodGet, "/persons/abc", nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, CodeInvalidParameter, decodeJSON[ErrorResponse](t, resp).Error)
	})

	t.Run("non-positive id", func(t *testing.T) {
		resp := doRequest(t, testServer(&mockStore{}), http.MethodGet, "/persons/0", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCreatePerson(t *testing.T) {
	t.Run("valid input creates", func(t *testing.T) {
		store := &mockStore{
			create: func(p *person.Person) error {
				p.ID = 42
				p.CreationDate = time.Now()
				return nil
			},
		}

		resp := doRequest(t, testServer(store), http.MethodPost, "/persons/", sampleInput())
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		created := decodeJSON[person.Person](t, resp)
		assert.Equal(t, int32(42), created.ID)
		assert.Equal(t, person.ColorBrown, created.HairColor)
	})

	t.Run("validation failure returns field details", func(t *testing.T) {
		in := sampleInput()
		in["name"] = ""
		in["weight"] = -5

		resp := doRequest(t, testServer(&mockStore{}), http.MethodPost, "/persons/", in)
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		body := decodeJSON[ErrorResponse](t, resp)
		assert.Equal(t, CodeValidationFailed, body.Error)
		assert.Contains(t, body.Details, "name")
		assert.Contains(t, body.Details, "weight")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/persons/", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		resp, err := testServer(&mockStore{}).App().Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("integrity violation maps to 422", func(t *testing.T) {
		store := &mockStore{
			create: func(p *person.Person) error { return database.ErrNullViolation },
		}

		resp := doRequest(t, testServer(store), http.MethodPost, "/persons/", sampleInput())
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, CodeValidationFailed, decodeJSON[ErrorResponse](t, resp).Error)
	})
}

func TestUpdatePerson(t *testing.T) {
	t.Run("updates and echoes the person", func(t *testing.T) {
		store := &mockStore{
			update: func(id int32, p *person.Person) error {
				assert.Equal(t, int32(7), id)
				p.ID = id
				p.CreationDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
				return nil
			},
		}

		resp := doRequest(t, testServer(store), http.MethodPut, "/persons/7", sampleInput())
		require.Equal(t, http.StatusOK, resp.StatusCode)

		updated := decodeJSON[person.Person](t, resp)
		assert.Equal(t, int32(7), updated.ID)
		assert.Equal(t, 2024, updated.CreationDate.Year())
	})

	t.Run("not found", func(t *testing.T) {
		store := &mockStore{
			update: func(id int32, p *person.Person) error { return database.ErrNotFound },
		}

		resp := doRequest(t, testServer(store), http.MethodPut, "/persons/7", sampleInput())
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("validation runs before the store", func(t *testing.T) {
		in := sampleInput()
		in["nationality"] = "ATLANTIS"

		resp := doRequest(t, testServer(&mockStore{}), http.MethodPut, "/persons/7", in)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestDeletePerson(t *testing.T) {
	t.Run("deletes", func(t *testing.T) {
		store := &mockStore{
			delete: func(id int32) error {
				assert.Equal(t, int32(3), id)
				return nil
			},
		}

		resp := doRequest(t, testServer(store), http.MethodDelete, "/persons/3", nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		store := &mockStore{
			delete: func(id int32) error { return database.ErrNotFound },
		}

		resp := doRequest(t, testServer(store), http.MethodDelete, "/persons/3", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCountAndExists(t *testing.T) {
	t.Run("count", func(t *testing.T) {
		store := &mockStore{count: func() (int64, error) { return 17, nil }}

		resp := doRequest(t, testServer(store), http.MethodGet, "/persons/count", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(17), decodeJSON[int64](t, resp))
	})

	t.Run("exists", func(t *testing.T) {
		store := &mockStore{exists: func(id int32) (bool, error) { return true, nil }}

		resp := doRequest(t, testServer(store), http.MethodGet, "/persons/exists/4", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, decodeJSON[bool](t, resp))
	})

	t.Run("exists with bad id is just false", func(t *testing.T) {
		resp := doRequest(t, testServer(&mockStore{}), http.MethodGet, "/persons/exists/abc", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, decodeJSON[bool](t, resp))
	})
}

func TestDeleteByHairColor(t *testing.T) {
	t.Run("deletes the first match", func(t *testing.T) {
		store := &mockStore{
			deleteHair: func(color person.Color) (*person.Person, error) {
				assert.Equal(t, person.ColorGreen, color)
				return samplePerson(1), nil
			},
		}

		resp := doRequest(t, testServer(store), http.MethodDelete, "/persons/hair-color/green", nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("unknown color", func(t *testing.T) {
		resp := doRequest(t, testServer(&mockStore{}), http.MethodDelete, "/persons/hair-color/purple", nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, CodeInvalidParameter, decodeJSON[ErrorResponse](t, resp).Error)
	})

	t.Run("no person with that color", func(t *testing.T) {
		store := &mockStore{
			deleteHair: func(color person.Color) (*person.Person, error) { return nil, database.ErrNotFound },
		}

		resp := doRequest(t, testServer(store), http.MethodDelete, "/persons/hair-color/brown", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestMaxNamePerson(t *testing.T) {
	store := &mockStore{maxName: func() (*person.Person, error) { return samplePerson(9), nil }}

	resp := doRequest(t, testServer(store), http.MethodGet, "/persons/max-name", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(9), decodeJSON[person.Person](t, resp).ID)
}

func TestPersonsByNationalityLessThan(t *testing.T) {
	t.Run("lists matches", func(t *testing.T) {
		store := &mockStore{
			natBelow: func(country person.Country) ([]person.Person, error) {
				assert.Equal(t, person.CountryIndia, country)
				return []person.Person{*samplePerson(1), *samplePerson(2)}, nil
			},
		}

		resp := doRequest(t, testServer(store), http.MethodGet, "/persons/nationality-less-than/INDIA", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, decodeJSON[[]person.Person](t, resp), 2)
	})

	t.Run("unknown nationality", func(t *testing.T) {
		resp := doRequest(t, testServer(&mockStore{}), http.MethodGet, "/persons/nationality-less-than/MARS", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestStatistics(t *testing.T) {
	t.Run("hair color counts", func(t *testing.T) {
		store := &mockStore{
			hairStats: func() (map[person.Color]int64, error) {
				return map[person.Color]int64{
					person.ColorGreen: 3, person.ColorBlue: 0,
					person.ColorOrange: 1, person.ColorBrown: 2,
				}, nil
			},
		}

		resp := doRequest(t, testServer(store), http.MethodGet, "/persons/statistics/hair-color", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		stats := decodeJSON[map[string]int64](t, resp)
		assert.Equal(t, int64(3), stats["GREEN"])
		assert.Equal(t, int64(0), stats["BLUE"])
	})

	t.Run("nationality counts", func(t *testing.T) {
		store := &mockStore{
			natStats: func() (map[person.Country]int64, error) {
				return map[person.Country]int64{person.CountryFrance: 5}, nil
			},
		}

		resp := doRequest(t, testServer(store), http.MethodGet, "/persons/statistics/nationality", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(5), decodeJSON[map[string]int64](t, resp)["FRANCE"])
	})

	t.Run("hair color percentage", func(t *testing.T) {
		store := &mockStore{
			hairPct: func(color person.Color) (float64, error) {
				assert.Equal(t, person.ColorBrown, color)
				return 40, nil
			},
		}

		resp := doRequest(t, testServer(store), http.MethodGet, "/persons/statistics/hair-color/brown/percentage", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(40), decodeJSON[float64](t, resp))
	})

	t.Run("eye color and nationality count", func(t *testing.T) {
		store := &mockStore{
			eyeNatCount: func(eye person.Color, nationality person.Country) (int64, error) {
				assert.Equal(t, person.ColorGreen, eye)
				assert.Equal(t, person.CountrySpain, nationality)
				return 2, nil
			},
		}

		resp := doRequest(t, testServer(store), http.MethodGet,
			"/persons/statistics/eye-color/green/nationality/spain", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(2), decodeJSON[int64](t, resp))
	})

	t.Run("unknown eye color", func(t *testing.T) {
		resp := doRequest(t, testServer(&mockStore{}), http.MethodGet,
			"/persons/statistics/eye-color/red/nationality/spain", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHealth(t *testing.T) {
	resp := doRequest(t, testServer(&mockStore{}), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeJSON[map[string]string](t, resp)["status"])
}

var _ PersonStore = (*person.Storage)(nil)
