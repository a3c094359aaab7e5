package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-service/internal/api/middleware"
	"github.com/moviehub/movie-service/internal/core/domain"
	"github.com/moviehub/movie-service/internal/core/ports"
)

type stubMovieService struct {
	createFn      func(ctx context.Context, in ports.MovieInput, actor *domain.User) (*domain.Movie, error)
	findAllFn     func(ctx context.Context) ([]*domain.Movie, error)
	findByOwnerFn func(ctx context.Context, ownerID string) ([]*domain.Movie, error)
	updateFn      func(ctx context.Context, id string, patch ports.MoviePatch, actor *domain.User) (*domain.Movie, error)
	deleteFn      func(ctx context.Context, id string, actor *domain.User) (*domain.Movie, error)
}

func (s *stubMovieService) Create(ctx context.Context, in ports.MovieInput, actor *domain.User) (*domain.Movie, error) {
	return s.createFn(ctx, in, actor)
}

func (s *stubMovieService) FindAll(ctx context.Context) ([]*domain.Movie, error) {
	return s.findAllFn(ctx)
}

func (s *stubMovieService) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Movie, error) {
	return s.findByOwnerFn(ctx, ownerID)
}

func (s *stubMovieService) Update(ctx context.Context, id string, patch ports.MoviePatch, actor *domain.User) (*domain.Movie, error) {
	return s.updateFn(ctx, id, patch, actor)
}

func (s *stubMovieService) Delete(ctx context.Context, id string, actor *domain.User) (*domain.Movie, error) {
	return s.deleteFn(ctx, id, actor)
}

var testActor = &domain.User{ID: "u1", Email: "alice@example.com", Role: domain.RoleUser}

func movieRequest(e *echo.Echo, method, path, body string, actor *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actor != nil {
		c.Set(middleware.IdentityKey, actor)
	}
	return c, rec
}

func TestMovieHandler_Create_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubMovieService{
		createFn: func(ctx context.Context, in ports.MovieInput, actor *domain.User) (*domain.Movie, error) {
			if actor != testActor {
				t.Fatalf("actor not forwarded")
			}
			if in.Title != "Inception" || in.Rating != 5 || in.ReleaseDate != "2010-07-16" || len(in.Actors) != 2 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Movie{ID: "m1", Title: in.Title, OwnerID: actor.ID}, nil
		},
	}
	h := NewMovieHandler(stub)

	body := `{"title":"Inception","description":"A thief who steals corporate secrets.","releaseDate":"2010-07-16",
"rating":5,"category":"thriller","actors":["Leonardo DiCaprio","Elliot Page"],"poster":"https://img.example/inception.jpg"}`
	c, rec := movieRequest(e, http.MethodPost, "/movies", body, testActor)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["id"] != "m1" || resp["createdBy"] != "u1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestMovieHandler_Create_RequiresIdentity(t *testing.T) {
	e := newTestEcho()
	h := NewMovieHandler(&stubMovieService{})

	c, rec := movieRequest(e, http.MethodPost, "/movies", `{"title":"x"}`, nil)
	if err := h.Create(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMovieHandler_Create_NonIntegerRating(t *testing.T) {
	e := newTestEcho()
	stub := &stubMovieService{
		createFn: func(ctx context.Context, in ports.MovieInput, actor *domain.User) (*domain.Movie, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewMovieHandler(stub)

	c, rec := movieRequest(e, http.MethodPost, "/movies", `{"title":"Inception","rating":4.5}`, testActor)
	_ = h.Create(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMovieHandler_Update_PassesOnlyPresentFields(t *testing.T) {
	e := newTestEcho()
	stub := &stubMovieService{
		updateFn: func(ctx context.Context, id string, patch ports.MoviePatch, actor *domain.User) (*domain.Movie, error) {
			if id != "m1" {
				t.Fatalf("unexpected id %q", id)
			}
			if patch.Rating == nil || *patch.Rating != 4 {
				t.Fatalf("rating not forwarded: %+v", patch)
			}
			if patch.Title != nil || patch.Description != nil || patch.Actors != nil || patch.Poster != nil {
				t.Fatalf("absent fields must stay nil: %+v", patch)
			}
			return &domain.Movie{ID: id, Rating: 4, OwnerID: actor.ID}, nil
		},
	}
	h := NewMovieHandler(stub)

	c, rec := movieRequest(e, http.MethodPatch, "/movies/m1", `{"rating":4}`, testActor)
	c.SetParamNames("id")
	c.SetParamValues("m1")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMovieHandler_Update_Errors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"not found", domain.ErrMovieNotFound, http.StatusNotFound},
		{"invalid", domain.NewValidationError("rating", "max", "rating must be at most 5"), http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho()
			stub := &stubMovieService{
				updateFn: func(context.Context, string, ports.MoviePatch, *domain.User) (*domain.Movie, error) {
					return nil, tc.err
				},
			}
			h := NewMovieHandler(stub)

			c, rec := movieRequest(e, http.MethodPut, "/movies/m1", `{"rating":9}`, testActor)
			c.SetParamNames("id")
			c.SetParamValues("m1")
			_ = h.Update(c)

			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestMovieHandler_Delete_ReturnsRemovedMovie(t *testing.T) {
	e := newTestEcho()
	stub := &stubMovieService{
		deleteFn: func(ctx context.Context, id string, actor *domain.User) (*domain.Movie, error) {
			return &domain.Movie{ID: id, Title: "Inception", OwnerID: actor.ID}, nil
		},
	}
	h := NewMovieHandler(stub)

	c, rec := movieRequest(e, http.MethodDelete, "/movies/m1", "", testActor)
	c.SetParamNames("id")
	c.SetParamValues("m1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	movie, ok := decodeBody(t, rec)["movie"].(map[string]any)
	if !ok || movie["title"] != "Inception" {
		t.Fatalf("expected removed movie in payload, got %v", movie)
	}
}

func TestMovieHandler_List_EmptyIsArray(t *testing.T) {
	e := newTestEcho()
	stub := &stubMovieService{
		findByOwnerFn: func(ctx context.Context, ownerID string) ([]*domain.Movie, error) {
			if ownerID != "u404" {
				t.Fatalf("unexpected owner %q", ownerID)
			}
			return nil, nil
		},
	}
	h := NewMovieHandler(stub)

	c, rec := movieRequest(e, http.MethodGet, "/movies/user/u404", "", nil)
	c.SetParamNames("userId")
	c.SetParamValues("u404")

	if err := h.ListByOwner(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"movies":[]`) {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestMovieHandler_List_InternalErrorIsReturned(t *testing.T) {
	e := newTestEcho()
	boom := errors.New("socket closed")
	stub := &stubMovieService{
		findAllFn: func(context.Context) ([]*domain.Movie, error) { return nil, boom },
	}
	h := NewMovieHandler(stub)

	c, _ := movieRequest(e, http.MethodGet, "/movies", "", nil)
	if err := h.List(c); !errors.Is(err, boom) {
		t.Fatalf("expected internal error to reach the central handler, got %v", err)
	}
}

func TestUserHandler_FindByEmail(t *testing.T) {
	e := newTestEcho()
	stub := &stubIdentityService{
		findByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			if email == "alice@example.com" {
				return testActor, nil
			}
			return nil, domain.ErrUserNotFound
		},
	}
	h := NewUserHandler(stub)

	cases := []struct {
		query string
		want  int
	}{
		{"?email=alice@example.com", http.StatusOK},
		{"?email=ghost@example.com", http.StatusNotFound},
		{"", http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/users"+tc.query, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := h.FindByEmail(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != tc.want {
			t.Fatalf("%q: expected %d, got %d", tc.query, tc.want, rec.Code)
		}
	}
}
