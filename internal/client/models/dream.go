// Package models defines the records the dreamsync client keeps on the
// device.
package models

import (
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/google/uuid"
)

// DreamRecord is a dream entry in the local store, keyed by a stable ID
// that also identifies its remote document.
type DreamRecord struct {
	ID           string
	Title        string
	Date         time.Time
	Description  string
	Severity     float64
	Archived     bool
	TitleVisible bool
	Public       bool

	// UpdatedAt is the last local modification time in UTC.
	UpdatedAt time.Time
}

// DreamDraft holds the user input for a new dream.
type DreamDraft struct {
	Title       string
	Date        time.Time
	Description string
	Severity    float64
	Public      bool
}

// NewDreamRecord builds a record from a draft with a fresh ID. An empty
// title hides the title line.
func NewDreamRecord(d DreamDraft) *DreamRecord {
	return &DreamRecord{
		ID:           uuid.NewString(),
		Title:        d.Title,
		Date:         d.Date,
		Description:  d.Description,
		Severity:     clampSeverity(d.Severity),
		TitleVisible: d.Title != "",
		Public:       d.Public,
		UpdatedAt:    time.Now().UTC(),
	}
}

func clampSeverity(s float64) float64 {
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

// Document converts the record into the remote document owned by ownerID.
// Server-owned fields (likes, timestamps, sharing) are left empty.
func (r *DreamRecord) Document(ownerID string) *models.DreamDocument {
	return &models.DreamDocument{
		DocID:        models.DreamDocumentID(ownerID, r.ID),
		OwnerID:      ownerID,
		DreamID:      r.ID,
		Title:        r.Title,
		Date:         r.Date,
		Description:  r.Description,
		Severity:     r.Severity,
		Archived:     r.Archived,
		TitleVisible: r.TitleVisible,
		Public:       r.Public,
	}
}

// RecordFromDocument builds a local record for a remote document.
func RecordFromDocument(d *models.DreamDocument) *DreamRecord {
	return &DreamRecord{
		ID:           d.DreamID,
		Title:        d.Title,
		Date:         d.Date,
		Description:  d.Description,
		Severity:     d.Severity,
		Archived:     d.Archived,
		TitleVisible: d.TitleVisible,
		Public:       d.Public,
		UpdatedAt:    d.UpdatedAt,
	}
}

// MergeFrom overwrites the fields a remote edit may change.
func (r *DreamRecord) MergeFrom(d *models.DreamDocument) {
	r.Title = d.Title
	r.Date = d.Date
	r.Description = d.Description
	r.Severity = d.Severity
	r.Archived = d.Archived
}

// Scale buckets the record's severity.
func (r *DreamRecord) Scale() models.Scale {
	return models.ScaleOf(r.Severity)
}
