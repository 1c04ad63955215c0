package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/moviekeeper/internal/client/lifecycle"
	"github.com/dmitrijs2005/moviekeeper/internal/client/models"
	"github.com/dmitrijs2005/moviekeeper/internal/common"
)

var errNotSignedIn = errors.New("sign in first")

func (a *App) requireUser() (string, error) {
	id := a.currentUser()
	if id == "" {
		fmt.Fprintln(a.out, "Sign in first.")
		return "", errNotSignedIn
	}
	return id, nil
}

func (a *App) prompt(text string) (string, error) {
	return GetSimpleText(a.reader, text, a.out)
}

// SignIn asks for the identity returned by the identity provider, reconciles
// the profile and pulls the remote favorites.
func (a *App) SignIn(ctx context.Context) error {
	if a.isSignedIn() {
		fmt.Fprintln(a.out, "Already signed in, sign out first.")
		return nil
	}

	var id models.Identity
	var err error
	if id.UserID, err = a.prompt("User id"); err != nil {
		return err
	}
	if id.DisplayName, err = a.prompt("Display name"); err != nil {
		return err
	}
	if id.Email, err = a.prompt("Email"); err != nil {
		return err
	}
	if id.AvatarURL, err = a.prompt("Avatar URL"); err != nil {
		return err
	}
	if ts, ok := a.remote.(tokenSetter); ok {
		if id.AccessToken, err = a.prompt("Access token (Enter to keep configured)"); err != nil {
			return err
		}
		if id.AccessToken != "" {
			ts.SetAccessToken(id.AccessToken)
		}
	}

	if err := a.users.SyncOnSignIn(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotAuthenticated) {
			fmt.Fprintln(a.out, "A user id is required.")
		} else {
			fmt.Fprintln(a.out, "Sign-in failed:", err)
		}
		return err
	}

	a.mu.Lock()
	a.identity = &id
	a.mu.Unlock()

	added, err := a.favorites.PullRemote(ctx, id.UserID)
	if err != nil {
		a.log.Error(ctx, "pull favorites failed", "user_id", id.UserID, "err", err)
	} else if added > 0 {
		fmt.Fprintf(a.out, "%d favorite(s) restored from the remote store.\n", added)
	}

	a.feed.Publish(lifecycle.Event{Kind: lifecycle.Foreground, UserID: id.UserID})
	fmt.Fprintf(a.out, "Signed in as %s.\n", id.UserID)
	return nil
}

// SignOut records the logout at once and forgets the identity.
func (a *App) SignOut(ctx context.Context) error {
	id, err := a.requireUser()
	if err != nil {
		return err
	}

	a.feed.Publish(lifecycle.Event{Kind: lifecycle.ProcessDestroyed, UserID: id})

	a.mu.Lock()
	a.identity = nil
	a.mu.Unlock()

	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// Away and Back report the terminal going idle and coming back.
func (a *App) Away(ctx context.Context) error {
	id, err := a.requireUser()
	if err != nil {
		return err
	}
	a.feed.Publish(lifecycle.Event{Kind: lifecycle.Background, UserID: id})
	return nil
}

// Back also resends favorite writes the remote store has not acknowledged.
func (a *App) Back(ctx context.Context) error {
	id, err := a.requireUser()
	if err != nil {
		return err
	}
	a.feed.Publish(lifecycle.Event{Kind: lifecycle.Foreground, UserID: id})

	if _, err := a.favorites.Resend(ctx, id); err != nil {
		a.log.Error(ctx, "resend favorites failed", "user_id", id, "err", err)
	}
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	id, err := a.requireUser()
	if err != nil {
		return err
	}

	p, err := a.users.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		fmt.Fprintln(a.out, "Profile unavailable.")
		return nil
	}

	fmt.Fprintf(a.out, "User:    %s\n", p.UserID)
	fmt.Fprintf(a.out, "Name:    %s\n", p.Name)
	fmt.Fprintf(a.out, "Email:   %s\n", p.Email)
	fmt.Fprintf(a.out, "Address: %s\n", p.Address)
	fmt.Fprintf(a.out, "Phone:   %s\n", p.Phone)
	fmt.Fprintf(a.out, "Image:   %s\n", p.Image)
	fmt.Fprintf(a.out, "Login:   %s\n", p.LoginTime)
	fmt.Fprintf(a.out, "Logout:  %s\n", p.LogoutTime)
	fmt.Fprintf(a.out, "Sync:    %s\n", a.users.State(id))
	return nil
}

func (a *App) EditProfile(ctx context.Context) error {
	id, err := a.requireUser()
	if err != nil {
		return err
	}

	var patch models.UserPatch
	fields := []struct {
		prompt string
		dst    **string
	}{
		{"Name", &patch.Name},
		{"Email", &patch.Email},
		{"Address", &patch.Address},
		{"Phone", &patch.Phone},
		{"Image URL", &patch.Image},
	}
	for _, f := range fields {
		v, err := GetOptionalText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if err := a.users.UpdateProfile(ctx, id, patch); err != nil {
		fmt.Fprintln(a.out, "Profile not saved:", err)
		return err
	}
	fmt.Fprintln(a.out, "Profile saved.")
	return nil
}

func (a *App) AddFavorite(ctx context.Context, args []string) error {
	id, err := a.requireUser()
	if err != nil {
		return err
	}

	var f models.Favorite
	if len(args) > 0 {
		f.MovieID = args[0]
	} else if f.MovieID, err = a.prompt("Movie id"); err != nil {
		return err
	}
	if f.MovieID == "" {
		fmt.Fprintln(a.out, "Usage: fav <movie id>")
		return nil
	}
	if exists, err := a.store.FavoriteExists(ctx, id, f.MovieID); err != nil {
		return err
	} else if exists {
		fmt.Fprintf(a.out, "%s is already a favorite.\n", f.MovieID)
		return nil
	}
	if f.Title, err = a.prompt("Title"); err != nil {
		return err
	}
	if f.ImageURL, err = a.prompt("Poster URL"); err != nil {
		return err
	}
	if f.ReleaseDate, err = a.prompt("Release date"); err != nil {
		return err
	}
	if f.Rating, err = a.prompt("Rating"); err != nil {
		return err
	}

	if err := a.favorites.Add(ctx, id, f); err != nil {
		fmt.Fprintln(a.out, "Favorite not saved:", err)
		return err
	}
	fmt.Fprintf(a.out, "Added %s to favorites.\n", f.MovieID)
	return nil
}

func (a *App) RemoveFavorite(ctx context.Context, args []string) error {
	id, err := a.requireUser()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: unfav <movie id>")
		return nil
	}

	if err := a.favorites.Remove(ctx, id, args[0]); err != nil {
		fmt.Fprintln(a.out, "Favorite not removed:", err)
		return err
	}
	fmt.Fprintf(a.out, "Removed %s from favorites.\n", args[0])
	return nil
}

func (a *App) ListFavorites(ctx context.Context) error {
	id, err := a.requireUser()
	if err != nil {
		return err
	}

	list, err := a.favorites.List(ctx, id)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No favorites yet.")
		return nil
	}
	for _, f := range list {
		fmt.Fprintf(a.out, "%-12s %-40s %-12s %s\n", f.MovieID, f.Title, f.ReleaseDate, f.Rating)
	}
	return nil
}

// Pull copies remote favorites missing from the local store.
func (a *App) Pull(ctx context.Context) error {
	id, err := a.requireUser()
	if err != nil {
		return err
	}

	added, err := a.favorites.PullRemote(ctx, id)
	if err != nil {
		fmt.Fprintln(a.out, "Pull failed:", err)
		return err
	}
	fmt.Fprintf(a.out, "%d favorite(s) added.\n", added)
	return nil
}

// Accounts lists the users known to this device.
func (a *App) Accounts(ctx context.Context) error {
	users, err := a.store.GetAllUsers(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Accounts unavailable:", err)
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(a.out, "No local accounts.")
		return nil
	}
	for _, u := range users {
		state := "signed out"
		if u.HasOpenSession() {
			state = "session open"
		}
		fmt.Fprintf(a.out, "%-20s %-24s %s\n", u.UserID, u.Name, state)
	}
	return nil
}

// Forget deletes a local account and its favorites. The remote documents
// are kept, so a later sign-in restores them.
func (a *App) Forget(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: forget <user id>")
		return nil
	}
	userID := args[0]
	if userID == a.currentUser() {
		fmt.Fprintln(a.out, "Sign out before deleting this account.")
		return nil
	}

	exists, err := a.store.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintf(a.out, "No local account %s.\n", userID)
		return nil
	}

	if err := a.store.DeleteUser(ctx, userID); err != nil {
		fmt.Fprintln(a.out, "Account not deleted:", err)
		return err
	}
	a.log.Info(ctx, "local account deleted", "user_id", userID)
	fmt.Fprintf(a.out, "Local account %s deleted.\n", userID)
	return nil
}
