package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/dreamsync/internal/client/repositories/preferences"
)

// SetUsername claims a username for the signed-in user.
func (a *App) SetUsername(ctx context.Context, args []string) error {
	uid, err := a.requireUser()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return usage("username <name>")
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	u, err := a.users.Register(ctx, uid, args[0])
	if err != nil {
		return err
	}
	_ = a.auth.RememberUsername(ctx, u.Username)
	a.setUser(uid, u.Username)
	fmt.Fprintf(a.out, "You are now %s.\n", u.Username)
	return nil
}

// Describe replaces the profile description.
func (a *App) Describe(ctx context.Context) error {
	if _, err := a.requireUser(); err != nil {
		return err
	}
	text, err := GetMultiline(a.reader, "About you", a.out)
	if err != nil {
		return err
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if _, err := a.users.UpdateDescription(ctx, text); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved.")
	return nil
}

// Phone sets the number contacts discovery matches against.
func (a *App) Phone(ctx context.Context, args []string) error {
	if _, err := a.requireUser(); err != nil {
		return err
	}
	if len(args) != 2 {
		return usage("phone <country code> <number>")
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if _, err := a.users.SetPhoneNumber(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved.")
	return nil
}

// Picture uploads a JPEG file as the profile picture.
func (a *App) Picture(ctx context.Context, args []string) error {
	uid, err := a.requireUser()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return usage("picture <file.jpg>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	u, err := a.users.ProfilePictureUpload(ctx, uid, data)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Picture updated:", u.ProfilePictureURL)
	return nil
}

var settingKeys = map[string]string{
	"public":   preferences.KeyPublicByDefault,
	"contacts": preferences.KeyContactsAllowed,
}

// Setting shows or changes a local toggle.
func (a *App) Setting(ctx context.Context, args []string) error {
	if len(args) == 0 {
		for _, name := range []string{"public", "contacts"} {
			on, err := preferences.GetBool(ctx, a.repos.Preferences, settingKeys[name])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: %s\n", name, onOff(on))
		}
		return nil
	}
	if len(args) != 2 {
		return usage("set [public|contacts on|off]")
	}
	key, ok := settingKeys[args[0]]
	if !ok {
		return usage("set [public|contacts on|off]")
	}
	var on bool
	switch strings.ToLower(args[1]) {
	case "on", "yes", "true":
		on = true
	case "off", "no", "false":
	default:
		return usage("set [public|contacts on|off]")
	}
	if err := preferences.SetBool(ctx, a.repos.Preferences, key, on); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s\n", args[0], onOff(on))
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// DeleteAccount removes the account after confirmation and signs out.
func (a *App) DeleteAccount(ctx context.Context) error {
	uid, err := a.requireUser()
	if err != nil {
		return err
	}
	answer, err := GetSimpleText(a.reader, "This deletes your profile and shared dreams. Type 'yes' to confirm", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	dctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if err := a.users.DeleteAccount(dctx, uid); err != nil {
		return err
	}
	return a.Logout(ctx)
}

var _ execIface = (*App)(nil)
