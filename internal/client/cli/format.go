package cli

import (
	"fmt"
	"strings"
	"time"

	clientmodels "github.com/dmitrijs2005/dreamsync/internal/client/models"
	"github.com/dmitrijs2005/dreamsync/internal/models"
)

// timeNow is swapped in tests.
var timeNow = time.Now

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func title(t string, visible bool) string {
	if !visible || t == "" {
		return "(untitled)"
	}
	return t
}

func formatRecord(r *clientmodels.DreamRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %-9s %s", shortID(r.ID), r.Date.Local().Format(dateLayout), r.Scale(), title(r.Title, r.TitleVisible))
	if r.Public {
		b.WriteString("  [shared]")
	}
	if r.Archived {
		b.WriteString("  [archived]")
	}
	return b.String()
}

func formatDocument(d *models.DreamDocument, owner, viewer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %-9s %s by %s", d.DocID, d.Date.Local().Format(dateLayout), models.ScaleOf(d.Severity), title(d.Title, d.TitleVisible), owner)
	fmt.Fprintf(&b, "  %d likes", len(d.LikedBy))
	if d.IsLikedBy(viewer) {
		b.WriteString(" (you)")
	}
	if d.Deleted {
		b.WriteString("  [deleted]")
	}
	if d.Description != "" {
		fmt.Fprintf(&b, "\n    %s", strings.ReplaceAll(d.Description, "\n", "\n    "))
	}
	return b.String()
}

func formatUser(u *models.UserProfile) string {
	name := u.Username
	if name == "" {
		name = "(no username)"
	}
	return fmt.Sprintf("%s  %s  streak %d", u.ID, name, u.Streak)
}
