// Package cli provides the interactive moviekeeper command-line client.
//
// It wires configuration, the local store, the remote document store, the
// sync engines and the session tracker behind a small REPL. Typical flow:
// sign in, browse and edit the profile, manage favorites, sign out.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
