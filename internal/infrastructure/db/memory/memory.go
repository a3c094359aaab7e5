// Package memory holds process-local implementations of the credential and
// resource stores. They back tests and the "memory" store backend; data is
// lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/moviehub/movie-service/internal/core/domain"
	"github.com/moviehub/movie-service/internal/core/ports"
)

// UserRepository keeps users keyed by normalized email. Create is atomic with
// respect to the uniqueness check.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		return nil, domain.ErrUserExists
	}
	stored := *user
	stored.ID = uuid.NewString()
	r.users[stored.Email] = stored

	out := stored
	return &out, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

// MovieRepository keeps movies in insertion order. Ids are matched in their
// normalized form, like the Mongo store's hex ObjectIDs.
type MovieRepository struct {
	mu     sync.RWMutex
	order  []string
	movies map[string]domain.Movie
}

func NewMovieRepository() *MovieRepository {
	return &MovieRepository{movies: make(map[string]domain.Movie)}
}

func (r *MovieRepository) Create(ctx context.Context, m *domain.Movie) (*domain.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := cloneMovie(*m)
	stored.ID = uuid.NewString()
	if stored.Actors == nil {
		stored.Actors = []string{}
	}

	r.mu.Lock()
	r.movies[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	r.mu.Unlock()

	out := cloneMovie(stored)
	return &out, nil
}

func (r *MovieRepository) FindByID(ctx context.Context, id string) (*domain.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.movies[domain.NormalizeID(id)]
	if !ok {
		return nil, domain.ErrMovieNotFound
	}
	out := cloneMovie(m)
	return &out, nil
}

func (r *MovieRepository) List(ctx context.Context, filter ports.MovieFilter) ([]*domain.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Movie, 0, len(r.order))
	for _, id := range r.order {
		m := r.movies[id]
		if filter.OwnerID != "" && !domain.SameID(m.OwnerID, filter.OwnerID) {
			continue
		}
		c := cloneMovie(m)
		out = append(out, &c)
	}
	return out, nil
}

func (r *MovieRepository) Update(ctx context.Context, id string, fields domain.MovieFields) (*domain.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id = domain.NormalizeID(id)
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.movies[id]
	if !ok {
		return nil, domain.ErrMovieNotFound
	}
	updated := fields.Apply(m)
	r.movies[id] = updated

	out := cloneMovie(updated)
	return &out, nil
}

func (r *MovieRepository) Delete(ctx context.Context, id string) (*domain.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id = domain.NormalizeID(id)
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.movies[id]
	if !ok {
		return nil, domain.ErrMovieNotFound
	}
	delete(r.movies, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return &m, nil
}

// Len reports how many movies are stored.
func (r *MovieRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.movies)
}

func cloneMovie(m domain.Movie) domain.Movie {
	m.Actors = append([]string(nil), m.Actors...)
	return m
}
