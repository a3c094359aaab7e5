package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moviehub/movie-service/internal/core/domain"
	"github.com/moviehub/movie-service/internal/core/ports"
)

const collectionMovies = "movies"

// MovieRepository implements ports.MovieRepository on the movies collection.
type MovieRepository struct {
	col *mongo.Collection
}

func NewMovieRepository(db *mongo.Database) *MovieRepository {
	return &MovieRepository{col: db.Collection(collectionMovies)}
}

type mongoMovie struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	ReleaseDate time.Time          `bson:"releaseDate"`
	Rating      int                `bson:"rating"`
	Category    string             `bson:"category"`
	Actors      []string           `bson:"actors"`
	Poster      string             `bson:"poster"`
	CreatedBy   primitive.ObjectID `bson:"createdBy"`
}

func (m mongoMovie) toDomain() *domain.Movie {
	actors := m.Actors
	if actors == nil {
		actors = []string{}
	}
	return &domain.Movie{
		ID:          m.ID.Hex(),
		Title:       m.Title,
		Description: m.Description,
		ReleaseDate: m.ReleaseDate.UTC(),
		Rating:      m.Rating,
		Category:    domain.Category(m.Category),
		Actors:      actors,
		Poster:      m.Poster,
		OwnerID:     m.CreatedBy.Hex(),
	}
}

// Create inserts a new movie document.
func (r *MovieRepository) Create(ctx context.Context, m *domain.Movie) (*domain.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	owner, err := parseObjectID(m.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("insert movie: owner: %w", err)
	}

	doc := mongoMovie{
		ID:          primitive.NewObjectID(),
		Title:       m.Title,
		Description: m.Description,
		ReleaseDate: m.ReleaseDate.UTC(),
		Rating:      m.Rating,
		Category:    string(m.Category),
		Actors:      m.Actors,
		Poster:      m.Poster,
		CreatedBy:   owner,
	}
	if doc.Actors == nil {
		doc.Actors = []string{}
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert movie: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID retrieves a movie by id. Malformed ids are reported as not found.
func (r *MovieRepository) FindByID(ctx context.Context, id string) (*domain.Movie, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, domain.ErrMovieNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m mongoMovie
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, fmt.Errorf("find movie: %w", err)
	}
	return m.toDomain(), nil
}

// List returns movies in natural order, optionally restricted to one owner.
func (r *MovieRepository) List(ctx context.Context, filter ports.MovieFilter) ([]*domain.Movie, error) {
	query := bson.M{}
	if filter.OwnerID != "" {
		owner, err := parseObjectID(filter.OwnerID)
		if err != nil {
			return []*domain.Movie{}, nil
		}
		query["createdBy"] = owner
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoMovie
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode movies: %w", err)
	}

	out := make([]*domain.Movie, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Update sets the given fields atomically and returns the updated document.
// createdBy is never part of the update.
func (r *MovieRepository) Update(ctx context.Context, id string, fields domain.MovieFields) (*domain.Movie, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, domain.ErrMovieNotFound
	}

	set := setDocument(fields)
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m mongoMovie
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, fmt.Errorf("update movie: %w", err)
	}
	return m.toDomain(), nil
}

// Delete removes the movie and returns the document as it was.
func (r *MovieRepository) Delete(ctx context.Context, id string) (*domain.Movie, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, domain.ErrMovieNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m mongoMovie
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, fmt.Errorf("delete movie: %w", err)
	}
	return m.toDomain(), nil
}

// EnsureIndexes creates necessary indexes on the movies collection.
func (r *MovieRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdBy", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("ensure movie indexes: %w", err)
	}
	return nil
}

// setDocument maps the present fields to their stored names.
func setDocument(f domain.MovieFields) bson.M {
	set := bson.M{}
	if f.Title != nil {
		set["title"] = *f.Title
	}
	if f.Description != nil {
		set["description"] = *f.Description
	}
	if f.ReleaseDate != nil {
		set["releaseDate"] = f.ReleaseDate.UTC()
	}
	if f.Rating != nil {
		set["rating"] = *f.Rating
	}
	if f.Category != nil {
		set["category"] = string(*f.Category)
	}
	if f.SetActors {
		actors := f.Actors
		if actors == nil {
			actors = []string{}
		}
		set["actors"] = actors
	}
	if f.Poster != nil {
		set["poster"] = *f.Poster
	}
	return set
}
