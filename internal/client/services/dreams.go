package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	clientmodels "github.com/dmitrijs2005/dreamsync/internal/client/models"
	"github.com/dmitrijs2005/dreamsync/internal/client/repositories/dreams"
	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/models"
)

// streakUpdater writes the streak counter of the signed-in user's profile.
type streakUpdater interface {
	UpdateProfile(ctx context.Context, up models.ProfileUpdate) (*models.UserProfile, error)
	GetUser(ctx context.Context, id string) (*models.UserProfile, error)
}

// DreamSyncService keeps the local dream journal and the user's remote
// collection in step, and reads friends' public dreams.
type DreamSyncService struct {
	local   dreams.Repository
	remote  DreamRemote
	users   streakUpdater
	logger  logging.Logger
	nowFunc func() time.Time
}

func NewDreamSyncService(local dreams.Repository, remote DreamRemote, users streakUpdater, logger logging.Logger) *DreamSyncService {
	return &DreamSyncService{
		local:   local,
		remote:  remote,
		users:   users,
		logger:  logger.With("module", "dreamsync"),
		nowFunc: time.Now,
	}
}

// decode parses raw documents, logging and skipping the ones that do not
// decode or validate.
func (s *DreamSyncService) decode(ctx context.Context, raws []json.RawMessage) []*models.DreamDocument {
	docs := make([]*models.DreamDocument, 0, len(raws))
	for _, raw := range raws {
		d, err := models.DecodeDreamDocument(raw)
		if err != nil {
			s.logger.Warn(ctx, "skipping malformed dream document", "error", err)
			continue
		}
		docs = append(docs, d)
	}
	return docs
}

func (s *DreamSyncService) query(ctx context.Context, q models.DreamQuery) ([]*models.DreamDocument, error) {
	raws, err := s.remote.QueryDreams(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.decode(ctx, raws), nil
}

// FetchUserDreams returns userID's non-deleted documents, newest created
// first. With merge set each document also overwrites the mutable fields
// of its local record, or is inserted when no record exists. A failed
// query yields an empty list.
func (s *DreamSyncService) FetchUserDreams(ctx context.Context, userID string, merge bool) []*models.DreamDocument {
	docs, err := s.query(ctx, models.DreamQuery{OwnerID: userID, Order: models.OrderCreatedDesc})
	if err != nil {
		s.logger.Error(ctx, "fetch user dreams", "user", userID, "error", err)
		return []*models.DreamDocument{}
	}
	if merge {
		for _, d := range docs {
			if err := s.mergeLocal(ctx, d); err != nil {
				s.logger.Error(ctx, "merge dream into local store", "dream", d.DreamID, "error", err)
			}
		}
	}
	return docs
}

func (s *DreamSyncService) mergeLocal(ctx context.Context, d *models.DreamDocument) error {
	rec, err := s.local.Get(ctx, d.DreamID)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		rec = clientmodels.RecordFromDocument(d)
	case err != nil:
		return err
	default:
		rec.MergeFrom(d)
	}
	return s.local.Save(ctx, rec)
}

// SyncDreamToCloud upserts rec as a document of userID. The document key
// is derived from (userID, rec.ID) so repeated or concurrent syncs write
// the same document.
func (s *DreamSyncService) SyncDreamToCloud(ctx context.Context, rec *clientmodels.DreamRecord, userID string) error {
	if userID == "" {
		return common.ErrNotSignedIn
	}
	if _, err := s.remote.UpsertDream(ctx, rec.Document(userID)); err != nil {
		s.logger.Error(ctx, "sync dream", "dream", rec.ID, "error", err)
		return fmt.Errorf("sync dream %s: %w", rec.ID, err)
	}
	return nil
}

// SyncAllDreamsToCloud uploads every local record and returns how many
// were written. Failures are logged one by one.
func (s *DreamSyncService) SyncAllDreamsToCloud(ctx context.Context, userID string) int {
	if userID == "" {
		return 0
	}
	recs, err := s.local.List(ctx)
	if err != nil {
		s.logger.Error(ctx, "list local dreams", "error", err)
		return 0
	}
	synced := 0
	for _, rec := range recs {
		if s.SyncDreamToCloud(ctx, rec, userID) == nil {
			synced++
		}
	}
	s.logger.Info(ctx, "dreams synced", "synced", synced, "total", len(recs))
	return synced
}

// DeleteDreamFromCloud soft-deletes every remote document of userID that
// belongs to rec.
func (s *DreamSyncService) DeleteDreamFromCloud(ctx context.Context, rec *clientmodels.DreamRecord, userID string) error {
	if userID == "" {
		return common.ErrNotSignedIn
	}
	n, err := s.remote.MarkDreamDeleted(ctx, rec.ID)
	if err != nil {
		s.logger.Error(ctx, "delete dream from cloud", "dream", rec.ID, "error", err)
		return fmt.Errorf("delete dream %s: %w", rec.ID, err)
	}
	s.logger.Debug(ctx, "dream marked deleted", "dream", rec.ID, "documents", n)
	return nil
}

// FetchFriendsDreams returns the public dreams every friend of userID
// dreamt on date's calendar day, latest first within each friend, friends
// in list order. Friends whose query fails are skipped.
func (s *DreamSyncService) FetchFriendsDreams(ctx context.Context, userID string, date time.Time) []*models.DreamDocument {
	out := []*models.DreamDocument{}
	me, err := s.users.GetUser(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "resolve friends", "user", userID, "error", err)
		return out
	}
	from, to := models.DayRange(date)
	for _, friend := range me.Friends {
		docs, err := s.query(ctx, models.DreamQuery{
			OwnerID:    friend,
			PublicOnly: true,
			From:       from,
			To:         to,
			Order:      models.OrderDateDesc,
		})
		if err != nil {
			s.logger.Warn(ctx, "fetch friend dreams", "friend", friend, "error", err)
			continue
		}
		out = append(out, docs...)
	}
	return out
}

// LogDream stores a new dream locally and, when userID is set, uploads it
// and refreshes the profile streak. Only the local write can fail.
func (s *DreamSyncService) LogDream(ctx context.Context, userID string, draft clientmodels.DreamDraft) (*clientmodels.DreamRecord, error) {
	if draft.Date.IsZero() {
		draft.Date = s.nowFunc()
	}
	rec := clientmodels.NewDreamRecord(draft)
	if err := s.local.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save dream: %w", err)
	}
	if userID != "" {
		_ = s.SyncDreamToCloud(ctx, rec, userID)
		s.updateStreak(ctx)
	}
	return rec, nil
}

// EditDream replaces the editable fields of the local record id and syncs
// it.
func (s *DreamSyncService) EditDream(ctx context.Context, userID, id string, draft clientmodels.DreamDraft) (*clientmodels.DreamRecord, error) {
	return s.mutate(ctx, userID, id, func(rec *clientmodels.DreamRecord) {
		edited := clientmodels.NewDreamRecord(draft)
		rec.Title = edited.Title
		rec.TitleVisible = edited.TitleVisible
		if !draft.Date.IsZero() {
			rec.Date = edited.Date
		}
		rec.Description = edited.Description
		rec.Severity = edited.Severity
		rec.Public = edited.Public
	})
}

// SetArchived flips the archive flag of the local record id and syncs it.
func (s *DreamSyncService) SetArchived(ctx context.Context, userID, id string, archived bool) (*clientmodels.DreamRecord, error) {
	return s.mutate(ctx, userID, id, func(rec *clientmodels.DreamRecord) {
		rec.Archived = archived
	})
}

func (s *DreamSyncService) mutate(ctx context.Context, userID, id string, fn func(*clientmodels.DreamRecord)) (*clientmodels.DreamRecord, error) {
	rec, err := s.local.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load dream %s: %w", id, err)
	}
	fn(rec)
	rec.UpdatedAt = s.nowFunc().UTC()
	if err := s.local.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save dream %s: %w", id, err)
	}
	if userID != "" {
		_ = s.SyncDreamToCloud(ctx, rec, userID)
	}
	return rec, nil
}

// DeleteDream removes the local record and then soft-deletes its remote
// documents.
func (s *DreamSyncService) DeleteDream(ctx context.Context, userID, id string) error {
	rec, err := s.local.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load dream %s: %w", id, err)
	}
	if err := s.local.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete dream %s: %w", id, err)
	}
	if userID != "" {
		_ = s.DeleteDreamFromCloud(ctx, rec, userID)
	}
	return nil
}

// ToggleLike adds userID to the document's likes, or removes it when
// already present, and returns the stored document.
func (s *DreamSyncService) ToggleLike(ctx context.Context, doc *models.DreamDocument, userID string) (*models.DreamDocument, error) {
	if userID == "" {
		return nil, common.ErrNotSignedIn
	}
	updated, err := s.remote.SetDreamLike(ctx, doc.OwnerID, doc.DocID, !doc.IsLikedBy(userID))
	if err != nil {
		s.logger.Error(ctx, "toggle like", "doc", doc.DocID, "error", err)
		return nil, err
	}
	return updated, nil
}

// GetDream reads one remote document, deleted ones included.
func (s *DreamSyncService) GetDream(ctx context.Context, ownerID, docID string) (*models.DreamDocument, error) {
	return s.remote.GetDream(ctx, ownerID, docID)
}

// WatchDream streams the document until ctx is cancelled.
func (s *DreamSyncService) WatchDream(ctx context.Context, ownerID, docID string) (<-chan *models.DreamDocument, error) {
	return s.remote.WatchDream(ctx, ownerID, docID)
}

// LocalDreams lists the local journal, latest dream first.
func (s *DreamSyncService) LocalDreams(ctx context.Context) ([]*clientmodels.DreamRecord, error) {
	return s.local.List(ctx)
}

// Streak computes the consecutive-day streak of the local journal.
func (s *DreamSyncService) Streak(ctx context.Context) (int, time.Time) {
	recs, err := s.local.List(ctx)
	if err != nil {
		s.logger.Error(ctx, "list local dreams", "error", err)
		return 0, time.Time{}
	}
	dates := make([]time.Time, len(recs))
	for i, r := range recs {
		dates[i] = r.Date
	}
	return models.Streak(dates)
}

func (s *DreamSyncService) updateStreak(ctx context.Context) {
	days, _ := s.Streak(ctx)
	if _, err := s.users.UpdateProfile(ctx, models.ProfileUpdate{Streak: &days}); err != nil {
		s.logger.Warn(ctx, "update streak", "error", err)
	}
}

// Scale buckets a severity.
func (s *DreamSyncService) Scale(severity float64) models.Scale {
	return models.ScaleOf(severity)
}
