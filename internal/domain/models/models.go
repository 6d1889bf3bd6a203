package models

import (
	"time"
)

type Movie struct {
	ID          string    `json:"_id" db:"id"`                    // Opaque movie id
	Title       string    `json:"title" db:"title"`               // Movie title
	PosterPath  string    `json:"poster_path" db:"poster_path"`   // Path of the poster image
	Genre       []string  `json:"genre" db:"genre"`               // Movie genres (i.e. Adventure, Animation)
	Description string    `json:"desc" db:"description"`          // Plot summary
	Budget      int64     `json:"budget" db:"budget"`             // Production budget
	ReleaseDate time.Time `json:"release_date" db:"release_date"` // Release date
	Duration    int32     `json:"duration" db:"duration"`         // Runtime in minutes
	ReviewIDs   []string  `json:"reviews" db:"reviews"`           // Ids of the reviews of this movie, kept in sync on review writes
}

// MovieSummary is the projection returned by movie listings.
type MovieSummary struct {
	ID         string `json:"_id" db:"id"`
	Title      string `json:"title" db:"title"`
	PosterPath string `json:"poster_path" db:"poster_path"`
}

type User struct {
	ID           string   `json:"_id" db:"id"`
	Username     string   `json:"username" db:"username"`
	PasswordHash string   `json:"-" db:"hash"`
	Salt         string   `json:"-" db:"salt"`
	ReviewIDs    []string `json:"reviews" db:"reviews"`
}

// AnonymousUser is stored in the request context when no credentials were presented.
var AnonymousUser = &User{}

func (u *User) IsAnonymous() bool {
	return u == AnonymousUser
}

type Review struct {
	ID      string   `json:"_id" db:"id"`
	Rating  *float64 `json:"rating" db:"rating"`
	Text    *string  `json:"text" db:"text"`
	UserID  string   `json:"userID" db:"user_id"`
	MovieID string   `json:"movieID" db:"movie_id"`
}

// ReviewDetail is a review with the owner's username and the movie title attached.
// Either may be empty when the referenced record could not be loaded.
type ReviewDetail struct {
	Review
	Username   string `json:"username,omitempty"`
	MovieTitle string `json:"movieTitle,omitempty"`
}

// ReviewPatch holds the fields of a review that may be changed. Nil fields are left as is.
type ReviewPatch struct {
	Rating *float64
	Text   *string
}

func (p ReviewPatch) IsEmpty() bool {
	return p.Rating == nil && p.Text == nil
}

type AuthToken struct {
	Token    string `json:"token"`
	Expires  int64  `json:"expires"`
	UserID   string `json:"userID"`
	Username string `json:"username"`
}
