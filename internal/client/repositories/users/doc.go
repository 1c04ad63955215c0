// Package users persists user profiles in the local SQLite store.
//
// Rows are keyed by the identity provider's user id. Address and phone
// columns hold Crypto Guard ciphertext; this package never sees clear text.
//
// Write semantics:
//
//   - Upsert inserts a row only if none exists (first writer wins).
//   - Update is preserve-on-null: nil patch fields keep the stored value.
//   - Email is written once; later patches cannot replace a non-empty email.
//   - Get returns (nil, nil) when the user is unknown.
//
// Every error matches common.ErrLocalStore.
package users
