package models

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

func TestNewDreamRecord(t *testing.T) {
	day := time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)

	r := NewDreamRecord(DreamDraft{Title: "", Date: day, Severity: 1.4})
	assert.NotEmpty(t, r.ID)
	assert.False(t, r.TitleVisible)
	assert.Equal(t, 1.0, r.Severity)

	r2 := NewDreamRecord(DreamDraft{Title: "sea", Date: day, Severity: -1})
	assert.True(t, r2.TitleVisible)
	assert.Equal(t, 0.0, r2.Severity)
	assert.NotEqual(t, r.ID, r2.ID)
}

func TestDocumentRoundTrip(t *testing.T) {
	r := &DreamRecord{
		ID:           "d1",
		Title:        "sea",
		Date:         time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Description:  "waves",
		Severity:     0.7,
		TitleVisible: true,
		Public:       true,
	}
	d := r.Document("u1")
	assert.Equal(t, models.DreamDocumentID("u1", "d1"), d.DocID)
	assert.Equal(t, "u1", d.OwnerID)
	assert.NoError(t, d.Validate())

	back := RecordFromDocument(d)
	if diff := cmp.Diff(r, back, cmpopts.IgnoreFields(DreamRecord{}, "UpdatedAt")); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFrom_OverwritesMutableFieldsOnly(t *testing.T) {
	r := &DreamRecord{ID: "d1", Title: "old", Public: true, TitleVisible: true}
	r.MergeFrom(&models.DreamDocument{
		DreamID:     "d1",
		Title:       "new",
		Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Description: "desc",
		Severity:    0.1,
		Archived:    true,
		Public:      false,
	})

	assert.Equal(t, "new", r.Title)
	assert.Equal(t, "desc", r.Description)
	assert.Equal(t, 0.1, r.Severity)
	assert.True(t, r.Archived)
	assert.True(t, r.Public, "visibility is a local choice")
	assert.Equal(t, models.ScaleNightmare, r.Scale())
}
