package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/dreamsync/internal/client/services"
	"github.com/dmitrijs2005/dreamsync/internal/models"
)

// resolveUser finds a profile by username, falling back to a user id.
func (a *App) resolveUser(ctx context.Context, name string) (*models.UserProfile, error) {
	u, err := a.users.GetByUsername(ctx, name)
	if err == nil {
		return u, nil
	}
	if byID, idErr := a.users.Get(ctx, name); idErr == nil {
		return byID, nil
	}
	return nil, fmt.Errorf("user %s: %w", name, err)
}

func (a *App) me(ctx context.Context) (*models.UserProfile, error) {
	uid, err := a.requireUser()
	if err != nil {
		return nil, err
	}
	return a.users.Get(ctx, uid)
}

// Search runs a debounced username search and prints the visible matches.
func (a *App) Search(ctx context.Context, args []string) error {
	me, err := a.me(ctx)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return usage("search <username prefix>")
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	results := make(chan []*models.UserProfile, 1)
	a.searcher.Search(ctx, args[0], func(u []*models.UserProfile) { results <- u })

	select {
	case users := <-results:
		users = services.VisibleUsers(me, users)
		if len(users) == 0 {
			fmt.Fprintln(a.out, "No users found.")
		}
		for _, u := range users {
			fmt.Fprintf(a.out, "%s  [%s]\n", formatUser(u), services.RelationshipOf(me, u).State)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Profile prints a profile, the caller's own by default.
func (a *App) Profile(ctx context.Context, args []string) error {
	me, err := a.me(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	u := me
	if len(args) == 1 {
		if u, err = a.resolveUser(ctx, args[0]); err != nil {
			return err
		}
	}
	fmt.Fprintln(a.out, formatUser(u))
	if u.Description != "" {
		fmt.Fprintln(a.out, u.Description)
	}
	if u.ProfilePictureURL != "" {
		fmt.Fprintln(a.out, "picture:", u.ProfilePictureURL)
	}
	fmt.Fprintf(a.out, "friends: %d\n", len(u.Friends))
	if u.ID != me.ID {
		rel := services.RelationshipOf(me, u)
		fmt.Fprintf(a.out, "relationship: %s", rel.State)
		if rel.Blocked {
			fmt.Fprint(a.out, " (blocked)")
		}
		fmt.Fprintln(a.out)
	}
	if st, err := a.users.BanStatus(ctx, u.ID, timeNow()); err == nil && st.Banned {
		fmt.Fprintf(a.out, "banned: %s\n", st.Reason)
	}
	return nil
}

// Friend applies a friend-graph action to a user named by username or id.
func (a *App) Friend(ctx context.Context, action string, args []string) error {
	uid, err := a.requireUser()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return usage(action + " <username>")
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	target, err := a.resolveUser(ctx, args[0])
	if err != nil {
		return err
	}

	var edit func(context.Context, string, string) error
	switch action {
	case "request":
		edit = a.social.SendFriendRequest
	case "accept":
		edit = a.social.AcceptFriendRequest
	case "decline":
		edit = a.social.DeclineFriendRequest
	case "block":
		edit = a.social.Block
	case "unblock":
		edit = a.social.Unblock
	default:
		return usage("request|accept|decline|block|unblock <username>")
	}
	if err := edit(ctx, uid, target.ID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Done.")
	return nil
}

// Friends lists friends and pending requests, hiding blocked users.
func (a *App) Friends(ctx context.Context) error {
	me, err := a.me(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	load := func(ids []string) []*models.UserProfile {
		out := make([]*models.UserProfile, 0, len(ids))
		for _, id := range ids {
			u, err := a.users.Get(ctx, id)
			if err != nil {
				a.logger.Warn(ctx, "load profile", "user", id, "error", err)
				continue
			}
			out = append(out, u)
		}
		return services.VisibleUsers(me, out)
	}

	fmt.Fprintln(a.out, "Friends:")
	for _, u := range load(me.Friends) {
		fmt.Fprintln(a.out, "  "+formatUser(u))
	}
	fmt.Fprintln(a.out, "Requests:")
	for _, u := range load(me.FriendRequests) {
		fmt.Fprintln(a.out, "  "+formatUser(u))
	}
	return nil
}

// Contacts lists users found among the contacts file numbers.
func (a *App) Contacts(ctx context.Context) error {
	me, err := a.me(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	users, ok := a.social.FindContacts(ctx, a.contacts)
	if !ok {
		fmt.Fprintln(a.out, "Contacts access is off. Enable it with 'set contacts on'.")
		return nil
	}
	users = services.VisibleUsers(me, users)
	if len(users) == 0 {
		fmt.Fprintln(a.out, "None of your contacts use dreamsync yet.")
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "%s  [%s]\n", formatUser(u), services.RelationshipOf(me, u).State)
	}
	return nil
}
