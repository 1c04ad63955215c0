// Package metadata is a small key/value table in the local store used for
// client state that must survive a restart, such as the active session.
package metadata

import (
	"context"
)

// Keys used by the client.
const (
	KeySessionUserID = "session_user_id"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
