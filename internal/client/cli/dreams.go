package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	clientmodels "github.com/dmitrijs2005/dreamsync/internal/client/models"
	"github.com/dmitrijs2005/dreamsync/internal/client/repositories/preferences"
	"github.com/dmitrijs2005/dreamsync/internal/client/report"
	"github.com/dmitrijs2005/dreamsync/internal/common"
)

const defaultWatch = 30 * time.Second

// findDream resolves a local record by id or unique id prefix.
func (a *App) findDream(ctx context.Context, args []string) (*clientmodels.DreamRecord, error) {
	if len(args) != 1 {
		return nil, usage("<dream id>")
	}
	recs, err := a.dreams.LocalDreams(ctx)
	if err != nil {
		return nil, err
	}
	var found *clientmodels.DreamRecord
	for _, r := range recs {
		if r.ID == args[0] {
			return r, nil
		}
		if strings.HasPrefix(r.ID, args[0]) {
			if found != nil {
				return nil, fmt.Errorf("id prefix %q is ambiguous", args[0])
			}
			found = r
		}
	}
	if found == nil {
		return nil, fmt.Errorf("dream %s: %w", args[0], common.ErrorNotFound)
	}
	return found, nil
}

func (a *App) readDraft(base clientmodels.DreamDraft) (clientmodels.DreamDraft, error) {
	var d clientmodels.DreamDraft
	var err error
	if d.Title, err = GetSimpleText(a.reader, "Title (empty hides the title)", a.out); err != nil {
		return d, err
	}
	if d.Date, err = GetDate(a.reader, "Date", a.out, base.Date, time.Local); err != nil {
		return d, err
	}
	if d.Description, err = GetMultiline(a.reader, "Describe the dream", a.out); err != nil {
		return d, err
	}
	if d.Severity, err = GetSeverity(a.reader, a.out, base.Severity); err != nil {
		return d, err
	}
	if d.Public, err = GetYesNo(a.reader, "Share with friends?", a.out, base.Public); err != nil {
		return d, err
	}
	return d, nil
}

// LogDream records a new dream.
func (a *App) LogDream(ctx context.Context) error {
	public, _ := preferences.GetBool(ctx, a.repos.Preferences, preferences.KeyPublicByDefault)
	draft, err := a.readDraft(clientmodels.DreamDraft{Date: timeNow(), Severity: 0.5, Public: public})
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	rec, err := a.dreams.LogDream(ctx, a.currentUser(), draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Dream %s saved.\n", shortID(rec.ID))
	return nil
}

// List prints the local journal.
func (a *App) List(ctx context.Context) error {
	recs, err := a.dreams.LocalDreams(ctx)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(a.out, "No dreams yet. Type 'log' to add one.")
		return nil
	}
	for _, r := range recs {
		fmt.Fprintln(a.out, formatRecord(r))
	}
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	rec, err := a.findDream(ctx, args)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, formatRecord(rec))
	if rec.Description != "" {
		fmt.Fprintln(a.out, rec.Description)
	}
	if uid := a.currentUser(); uid != "" {
		fmt.Fprintf(a.out, "cloud document: %s %s\n", uid, rec.Document(uid).DocID)
	}
	return nil
}

func (a *App) Edit(ctx context.Context, args []string) error {
	rec, err := a.findDream(ctx, args)
	if err != nil {
		return err
	}
	draft, err := a.readDraft(clientmodels.DreamDraft{Date: rec.Date, Severity: rec.Severity, Public: rec.Public})
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if _, err := a.dreams.EditDream(ctx, a.currentUser(), rec.ID, draft); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved.")
	return nil
}

func (a *App) Archive(ctx context.Context, args []string, archived bool) error {
	rec, err := a.findDream(ctx, args)
	if err != nil {
		return err
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	_, err = a.dreams.SetArchived(ctx, a.currentUser(), rec.ID, archived)
	return err
}

func (a *App) Delete(ctx context.Context, args []string) error {
	rec, err := a.findDream(ctx, args)
	if err != nil {
		return err
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	if err := a.dreams.DeleteDream(ctx, a.currentUser(), rec.ID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

// Sync uploads every local dream and merges the remote ones back.
func (a *App) Sync(ctx context.Context) error {
	uid, err := a.requireUser()
	if err != nil {
		return err
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	pushed := a.dreams.SyncAllDreamsToCloud(ctx, uid)
	pulled := a.dreams.FetchUserDreams(ctx, uid, true)
	fmt.Fprintf(a.out, "%d dreams pushed, %d pulled.\n", pushed, len(pulled))
	return nil
}

// Feed prints friends' public dreams of a day, today by default.
func (a *App) Feed(ctx context.Context, args []string) error {
	uid, err := a.requireUser()
	if err != nil {
		return err
	}
	date := timeNow()
	if len(args) > 0 {
		if date, err = time.ParseInLocation(dateLayout, args[0], time.Local); err != nil {
			return usage("feed [YYYY-MM-DD]")
		}
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	docs := a.dreams.FetchFriendsDreams(ctx, uid, date)
	if len(docs) == 0 {
		fmt.Fprintf(a.out, "No shared dreams on %s.\n", date.Format(dateLayout))
		return nil
	}
	names := a.usernames(ctx)
	for _, d := range docs {
		fmt.Fprintln(a.out, formatDocument(d, names(d.OwnerID), uid))
	}
	return nil
}

// usernames returns a lookup that caches profile reads for one command.
func (a *App) usernames(ctx context.Context) func(id string) string {
	cache := map[string]string{}
	return func(id string) string {
		if name, ok := cache[id]; ok {
			return name
		}
		name := id
		if u, err := a.users.Get(ctx, id); err == nil && u.Username != "" {
			name = u.Username
		}
		cache[id] = name
		return name
	}
}

func docArgs(args []string, cmd string) (string, string, error) {
	if len(args) != 2 {
		return "", "", usage(cmd + " <owner id> <document id>")
	}
	return args[0], args[1], nil
}

// Like toggles the caller's like on a document.
func (a *App) Like(ctx context.Context, args []string) error {
	uid, err := a.requireUser()
	if err != nil {
		return err
	}
	owner, docID, err := docArgs(args, "like")
	if err != nil {
		return err
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	doc, err := a.dreams.GetDream(ctx, owner, docID)
	if err != nil {
		return err
	}
	updated, err := a.dreams.ToggleLike(ctx, doc, uid)
	if err != nil {
		return err
	}
	if updated.IsLikedBy(uid) {
		fmt.Fprintf(a.out, "Liked (%d likes).\n", len(updated.LikedBy))
	} else {
		fmt.Fprintf(a.out, "Unliked (%d likes).\n", len(updated.LikedBy))
	}
	return nil
}

// Watch prints every change of a document for a while, 30s by default.
func (a *App) Watch(ctx context.Context, args []string) error {
	uid, err := a.requireUser()
	if err != nil {
		return err
	}
	d := defaultWatch
	if len(args) == 3 {
		if d, err = time.ParseDuration(args[2]); err != nil {
			return usage("watch <owner id> <document id> [duration]")
		}
		args = args[:2]
	}
	owner, docID, err := docArgs(args, "watch")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	updates, err := a.dreams.WatchDream(ctx, owner, docID)
	if err != nil {
		return err
	}
	for doc := range updates {
		fmt.Fprintln(a.out, formatDocument(doc, owner, uid))
	}
	return nil
}

func (a *App) Streak(ctx context.Context) error {
	days, since := a.dreams.Streak(ctx)
	if days == 0 {
		fmt.Fprintln(a.out, "No streak yet.")
		return nil
	}
	fmt.Fprintf(a.out, "%d day streak since %s.\n", days, since.Format(dateLayout))
	return nil
}

// Report files a moderation report about a document.
func (a *App) Report(ctx context.Context, args []string) error {
	uid, err := a.requireUser()
	if err != nil {
		return err
	}
	owner, docID, err := docArgs(args, "report")
	if err != nil {
		return err
	}
	reason, err := GetMultiline(a.reader, "Why are you reporting this dream?", a.out)
	if err != nil {
		return err
	}
	if reason == "" {
		return errors.New("a reason is required")
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	doc, err := a.dreams.GetDream(ctx, owner, docID)
	if err != nil {
		return err
	}
	a.mu.Lock()
	username := a.username
	a.mu.Unlock()
	err = a.reports.SendDreamReport(ctx, report.DreamReport{
		Reporter: report.Reporter{UserID: uid, Username: username},
		DreamID:  doc.DreamID,
		Reason:   reason,
	})
	if err != nil {
		return fmt.Errorf("report was not delivered, please try again later: %w", err)
	}
	fmt.Fprintln(a.out, "Thanks, the report was submitted.")
	return nil
}
