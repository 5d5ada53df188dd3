package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// dreamNamespace seeds deterministic document keys.
var dreamNamespace = uuid.MustParse("6f0f2a4e-8f8e-4d54-9a43-3c1b6f1f7d11")

// DreamDocumentID derives the remote document key for a dream owned by
// ownerID. The same pair always maps to the same key.
func DreamDocumentID(ownerID, dreamID string) string {
	return uuid.NewSHA1(dreamNamespace, []byte(ownerID+"/"+dreamID)).String()
}

// DreamDocument is the remote representation of a dream entry.
//
// Severity is normalized to [0, 1]; 1 is a pleasant dream and 0 a nightmare.
// Deleted documents stay in the store and are hidden from every query.
type DreamDocument struct {
	DocID        string    `json:"docId" firestore:"-"`
	OwnerID      string    `json:"author" firestore:"author"`
	DreamID      string    `json:"uuid" firestore:"uuid"`
	Title        string    `json:"name" firestore:"name"`
	Date         time.Time `json:"date" firestore:"date"`
	Description  string    `json:"dreamDescription" firestore:"dreamDescription"`
	Severity     float64   `json:"nightmareScale" firestore:"nightmareScale"`
	Archived     bool      `json:"isArchived" firestore:"isArchived"`
	TitleVisible bool      `json:"titleVisible" firestore:"titleVisible"`
	Public       bool      `json:"isPublic" firestore:"isPublic"`
	LikedBy      []string  `json:"likedBy" firestore:"likedBy"`
	SharedWith   []string  `json:"sharedWith" firestore:"sharedWith"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt"`
	Deleted      bool      `json:"deleted" firestore:"deleted"`
}

var (
	ErrMissingOwner    = errors.New("dream document has no author")
	ErrMissingDreamID  = errors.New("dream document has no uuid")
	ErrSeverityRange   = errors.New("nightmare scale outside [0, 1]")
	ErrMissingDreamDay = errors.New("dream document has no date")
)

// Validate reports whether the document carries the fields every reader
// relies on.
func (d *DreamDocument) Validate() error {
	switch {
	case d.OwnerID == "":
		return ErrMissingOwner
	case d.DreamID == "":
		return ErrMissingDreamID
	case d.Date.IsZero():
		return ErrMissingDreamDay
	case d.Severity < 0 || d.Severity > 1:
		return ErrSeverityRange
	}
	return nil
}

// Normalize replaces nil list fields with empty sets.
func (d *DreamDocument) Normalize() {
	if d.LikedBy == nil {
		d.LikedBy = []string{}
	}
	if d.SharedWith == nil {
		d.SharedWith = []string{}
	}
}

// IsLikedBy reports whether userID appears in the like set.
func (d *DreamDocument) IsLikedBy(userID string) bool {
	return Contains(d.LikedBy, userID)
}

// DecodeDreamDocument parses and validates one wire document.
func DecodeDreamDocument(raw []byte) (*DreamDocument, error) {
	d := &DreamDocument{}
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, fmt.Errorf("decode dream document: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("decode dream document %s: %w", d.DocID, err)
	}
	d.Normalize()
	return d, nil
}

// DreamOrder selects the sort applied by a DreamQuery.
type DreamOrder int

const (
	// OrderCreatedDesc sorts newest-created first.
	OrderCreatedDesc DreamOrder = iota
	// OrderDateDesc sorts by dream date, latest first.
	OrderDateDesc
)

// DreamQuery describes a read over one owner's dream collection. Deleted
// documents are never returned.
type DreamQuery struct {
	OwnerID    string
	PublicOnly bool
	// From and To bound Date to [From, To) when set.
	From  time.Time
	To    time.Time
	Order DreamOrder
	Limit int
}

// Matches applies the query filter to a single document.
func (q DreamQuery) Matches(d *DreamDocument) bool {
	if d.OwnerID != q.OwnerID || d.Deleted {
		return false
	}
	if q.PublicOnly && !d.Public {
		return false
	}
	if !q.From.IsZero() && d.Date.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && !d.Date.Before(q.To) {
		return false
	}
	return true
}

// DayRange returns the half-open interval covering the calendar day of t in
// t's location.
func DayRange(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
