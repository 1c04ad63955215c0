// Package common defines shared constants, helpers and sentinel errors used
// across the client and server layers of moviekeeper. Callers should use
// errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrLocalStore wraps I/O and schema failures of the on-device store.
	ErrLocalStore = errors.New("local store error")

	// ErrCrypto covers an unavailable key or a failed encryption.
	ErrCrypto = errors.New("crypto error")

	// ErrDecryption is returned for malformed or foreign ciphertext.
	// It matches ErrCrypto as well.
	ErrDecryption = fmt.Errorf("%w: decryption failed", ErrCrypto)

	// ErrRemoteSync wraps network, auth and permission failures of the remote store.
	ErrRemoteSync = errors.New("remote sync error")

	// ErrNotAuthenticated is returned when an operation needs an identity and none is active.
	ErrNotAuthenticated = errors.New("not authenticated")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
