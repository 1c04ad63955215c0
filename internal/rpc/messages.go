package rpc

import (
	"github.com/dmitrijs2005/moviekeeper/internal/documents"
	"google.golang.org/protobuf/types/known/structpb"
)

// UserIDField is present in every request except Ping.
const UserIDField = "user_id"

// UserRequest addresses a user document (GetUser, ListFavorites).
type UserRequest struct {
	UserID string `json:"user_id"`
}

// ActivityLogRequest replaces the activity log of a user document.
type ActivityLogRequest struct {
	UserID      string                `json:"user_id"`
	ActivityLog documents.ActivityLog `json:"activity_log"`
}

// FavoriteRequest upserts a favorite document.
type FavoriteRequest struct {
	UserID   string                     `json:"user_id"`
	Favorite documents.FavoriteDocument `json:"favorite"`
}

// FavoriteKeyRequest addresses a single favorite document.
type FavoriteKeyRequest struct {
	UserID  string `json:"user_id"`
	MovieID string `json:"movie_id"`
}

// FavoritesResponse lists the favorites of a user.
type FavoritesResponse struct {
	Favorites []documents.FavoriteDocument `json:"favorites"`
}

// PingResponse answers Ping.
type PingResponse struct {
	Status string `json:"status"`
}

// PingStatusOK is the status of a healthy server.
const PingStatusOK = "OK"

// UserIDOf returns the user_id field of a request, if any.
func UserIDOf(s *structpb.Struct) (string, bool) {
	v, ok := s.GetFields()[UserIDField]
	if !ok {
		return "", false
	}
	id := v.GetStringValue()
	return id, id != ""
}
