package models

import "github.com/dmitrijs2005/moviekeeper/internal/documents"

// Favorite is a movie a user marked as favorite, keyed by (MovieID, UserID).
type Favorite struct {
	MovieID     string
	UserID      string
	Title       string
	ImageURL    string
	ReleaseDate string
	Rating      string
}

// Document converts the favorite to its remote representation.
func (f Favorite) Document() documents.FavoriteDocument {
	return documents.FavoriteDocument{
		ID:          f.MovieID,
		Title:       f.Title,
		PosterURL:   f.ImageURL,
		ReleaseDate: f.ReleaseDate,
		Rating:      f.Rating,
	}
}

// FavoriteFromDocument builds a local favorite owned by userID.
func FavoriteFromDocument(userID string, d documents.FavoriteDocument) Favorite {
	return Favorite{
		MovieID:     d.ID,
		UserID:      userID,
		Title:       d.Title,
		ImageURL:    d.PosterURL,
		ReleaseDate: d.ReleaseDate,
		Rating:      d.Rating,
	}
}

// PendingOp is a favorite write the remote store has not acknowledged yet.
type PendingOp string

const (
	PendingPut    PendingOp = "put"
	PendingDelete PendingOp = "delete"
)

// PendingWrite is the latest unacknowledged write of one favorite.
type PendingWrite struct {
	UserID  string
	MovieID string
	Op      PendingOp
}
