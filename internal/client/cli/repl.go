package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL needs. *App satisfies it.
type execIface interface {
	isSignedIn() bool
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	AddFavorite(ctx context.Context, args []string) error
	RemoveFavorite(ctx context.Context, args []string) error
	ListFavorites(ctx context.Context) error
	Pull(ctx context.Context) error
	Away(ctx context.Context) error
	Back(ctx context.Context) error
	Accounts(ctx context.Context) error
	Forget(ctx context.Context, args []string) error
}

// runREPL reads commands from reader and dispatches them to a until EOF or
// "exit".
//
//	Signed out:
//	  - help           show available commands
//	  - signin         sign in and sync the profile
//	  - accounts       list accounts stored on this device
//	  - forget <id>    delete a local account
//	  - exit | quit    leave the program
//
//	Signed in:
//	  - profile        show the profile
//	  - edit           edit the profile
//	  - fav [id]       add a favorite
//	  - unfav <id>     remove a favorite
//	  - favs | l       list favorites
//	  - pull           restore favorites from the remote store
//	  - away | back    the session goes idle / resumes
//	  - signout        sign out
//
// Errors returned by handlers are ignored here; handlers report their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("mk %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isSignedIn() {
				printlnFn("Available commands: profile, edit, fav, unfav, (l)favs, pull, away, back, accounts, signout, exit")
			} else {
				printlnFn("Available commands: signin, accounts, forget, exit")
			}

		case "signin":
			_ = a.SignIn(ctx)

		case "signout":
			_ = a.SignOut(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "edit":
			_ = a.EditProfile(ctx)

		case "fav":
			_ = a.AddFavorite(ctx, args)

		case "unfav":
			_ = a.RemoveFavorite(ctx, args)

		case "l", "favs":
			_ = a.ListFavorites(ctx)

		case "pull":
			_ = a.Pull(ctx)

		case "away":
			_ = a.Away(ctx)

		case "back":
			_ = a.Back(ctx)

		case "accounts":
			_ = a.Accounts(ctx)

		case "forget":
			_ = a.Forget(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
