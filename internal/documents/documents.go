// Package documents defines the remote document layout shared by every
// remote store backend and the document server.
//
//	users/{user_id}                         UserDocument
//	favorites/{user_id}/movies/{movie_id}   FavoriteDocument
package documents

import (
	"path"
)

const (
	usersCollection     = "users"
	favoritesCollection = "favorites"
	moviesCollection    = "movies"
)

// Profile holds the profile fields of a user document. Empty fields are
// omitted so that a merge-set never clears a value stored remotely.
type Profile struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Image   string `json:"image,omitempty"`
}

// UserDocument is the full remote user record.
type UserDocument struct {
	Profile
	ActivityLog ActivityLog `json:"activity_log,omitempty"`
}

// FavoriteDocument is one favorite movie of a user.
type FavoriteDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	PosterURL   string `json:"posterUrl"`
	ReleaseDate string `json:"releaseDate"`
	Rating      string `json:"rating"`
}

// UserPath returns the document path of a user record.
func UserPath(userID string) string {
	return path.Join(usersCollection, userID)
}

// FavoritesPath returns the collection path holding a user's favorites.
func FavoritesPath(userID string) string {
	return path.Join(favoritesCollection, userID, moviesCollection)
}

// FavoritePath returns the document path of a single favorite.
func FavoritePath(userID, movieID string) string {
	return path.Join(FavoritesPath(userID), movieID)
}

// Overlay copies the non-empty profile fields of src onto p. It mirrors a
// merge-set of a Profile: absent fields keep their stored value.
func (p *Profile) Overlay(src Profile) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.UserID, src.UserID)
	set(&p.Name, src.Name)
	set(&p.Email, src.Email)
	set(&p.Address, src.Address)
	set(&p.Phone, src.Phone)
	set(&p.Image, src.Image)
}
