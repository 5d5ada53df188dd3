package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/dreamsync/internal/common"
)

// getPassword is swapped in tests.
var getPassword = GetPassword

func usage(s string) error {
	return fmt.Errorf("%w: %s", errUsage, s)
}

func (a *App) requireUser() (string, error) {
	id := a.currentUser()
	if id == "" {
		return "", common.ErrNotSignedIn
	}
	return id, nil
}

// Register creates an account and signs in. The username is optional and
// can be claimed later with "username".
func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)
	username, err := GetSimpleText(a.reader, "Choose a username (optional)", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	id, err := a.auth.SignUp(ctx, email, password, username)
	if err != nil {
		return err
	}
	return a.afterSignIn(ctx, id)
}

// Login signs in, runs the session migrations and pulls the user's dreams
// into the local store.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	id, err := a.auth.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	return a.afterSignIn(ctx, id)
}

func (a *App) afterSignIn(ctx context.Context, id string) error {
	profile, err := a.users.StartSession(ctx, id)
	username := ""
	if err == nil {
		username = profile.Username
		_ = a.auth.RememberUsername(ctx, username)
		if profile.BanActive(timeNow()) {
			fmt.Fprintf(a.out, "This account is banned: %s\n", profile.BanReason)
		}
	}
	a.setUser(id, username)
	a.setMode(ctx, ModeOnline)

	pulled := a.dreams.FetchUserDreams(ctx, id, true)
	pushed := a.dreams.SyncAllDreamsToCloud(ctx, id)
	fmt.Fprintf(a.out, "Signed in. %d dreams pulled, %d pushed.\n", len(pulled), pushed)
	return nil
}

// Logout forgets the session. Local dreams stay on the device.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		return err
	}
	a.setUser("", "")
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}
