package domain

import "time"

// Category is the fixed set of movie genres.
type Category string

const (
	CategoryAction   Category = "action"
	CategoryComedy   Category = "comedy"
	CategoryDrama    Category = "drama"
	CategoryThriller Category = "thriller"
)

// Movie is a resource owned by the identity referenced in OwnerID.
type Movie struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ReleaseDate time.Time `json:"releaseDate"`
	Rating      int       `json:"rating"`
	Category    Category  `json:"category"`
	Actors      []string  `json:"actors"`
	Poster      string    `json:"poster"`
	OwnerID     string    `json:"createdBy"`
}

// MovieFields is the mutable part of a movie. It excludes the id and the
// owner, so nothing built from it can change ownership.
type MovieFields struct {
	Title       *string
	Description *string
	ReleaseDate *time.Time
	Rating      *int
	Category    *Category
	Actors      []string
	SetActors   bool
	Poster      *string
}

// IsEmpty reports whether no field is set.
func (f MovieFields) IsEmpty() bool {
	return f.Title == nil && f.Description == nil && f.ReleaseDate == nil &&
		f.Rating == nil && f.Category == nil && !f.SetActors && f.Poster == nil
}

// Apply returns a copy of m with the set fields overwritten.
func (f MovieFields) Apply(m Movie) Movie {
	if f.Title != nil {
		m.Title = *f.Title
	}
	if f.Description != nil {
		m.Description = *f.Description
	}
	if f.ReleaseDate != nil {
		m.ReleaseDate = *f.ReleaseDate
	}
	if f.Rating != nil {
		m.Rating = *f.Rating
	}
	if f.Category != nil {
		m.Category = *f.Category
	}
	if f.SetActors {
		m.Actors = append([]string(nil), f.Actors...)
	}
	if f.Poster != nil {
		m.Poster = *f.Poster
	}
	return m
}
