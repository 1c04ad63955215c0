// Package client talks to the remote document store.
//
// # Overview
//
// The Client interface is the contract the sync engines depend on. It is
// document oriented: a user document (profile plus activity log) and one
// document per favorite movie, laid out as described in internal/documents.
//
// Three implementations are provided:
//
//   - GRPCClient talks to cmd/server over the moviekeeper.DocumentStore
//     service, sending the access token as "access_token" metadata.
//   - S3Client stores the documents as JSON objects in an S3 compatible
//     bucket (users/{id}.json, favorites/{id}/movies/{movie}.json).
//   - MemoryClient keeps everything in process; it backs the "memory" mode
//     and the tests, and can be told to fail.
//
// # Error Handling
//
// A missing user document is reported as common.ErrorNotFound. Every other
// failure matches common.ErrRemoteSync; ErrUnavailable and ErrUnauthorized
// narrow it down for transport and auth problems.
package client
