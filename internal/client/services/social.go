package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/models"
)

// ContactSource is the device address book. Access must be granted before
// numbers can be read.
type ContactSource interface {
	RequestAccess(ctx context.Context) (bool, error)
	PhoneNumbers(ctx context.Context) ([]string, error)
}

// socialDirectory is the part of the directory the social graph reads.
type socialDirectory interface {
	SearchUsers(ctx context.Context, query string, limit int) ([]*models.UserProfile, error)
	FindUsersByPhones(ctx context.Context, phones []string) ([]*models.UserProfile, error)
}

// SocialGraphService edits friend edges and finds people to connect with.
type SocialGraphService struct {
	remote    SocialRemote
	directory socialDirectory
	pageSize  int
	logger    logging.Logger
}

func NewSocialGraphService(remote SocialRemote, directory socialDirectory, pageSize int, logger logging.Logger) *SocialGraphService {
	return &SocialGraphService{
		remote:    remote,
		directory: directory,
		pageSize:  pageSize,
		logger:    logger.With("module", "social"),
	}
}

func (s *SocialGraphService) edit(ctx context.Context, action, callerID, targetID string, fn func(context.Context, string) error) error {
	if callerID == "" {
		return common.ErrNotSignedIn
	}
	if targetID == "" || targetID == callerID {
		return fmt.Errorf("%s: bad target %q: %w", action, targetID, common.ErrorInvalidArgument)
	}
	if err := fn(ctx, targetID); err != nil {
		s.logger.Error(ctx, action, "target", targetID, "error", err)
		return fmt.Errorf("%s: %w", action, err)
	}
	s.logger.Info(ctx, action, "target", targetID)
	return nil
}

// SendFriendRequest leaves a pending request from callerID on targetID's
// profile.
func (s *SocialGraphService) SendFriendRequest(ctx context.Context, callerID, targetID string) error {
	return s.edit(ctx, "send friend request", callerID, targetID, s.remote.SendFriendRequest)
}

// AcceptFriendRequest makes callerID and requesterID friends of each other
// and clears the pending request in one server transaction.
func (s *SocialGraphService) AcceptFriendRequest(ctx context.Context, callerID, requesterID string) error {
	return s.edit(ctx, "accept friend request", callerID, requesterID, s.remote.AcceptFriendRequest)
}

// DeclineFriendRequest drops the pending request from requesterID.
func (s *SocialGraphService) DeclineFriendRequest(ctx context.Context, callerID, requesterID string) error {
	return s.edit(ctx, "decline friend request", callerID, requesterID, s.remote.DeclineFriendRequest)
}

// Block hides targetID from callerID. Friendship and requests stay.
func (s *SocialGraphService) Block(ctx context.Context, callerID, targetID string) error {
	return s.edit(ctx, "block user", callerID, targetID, s.remote.BlockUser)
}

func (s *SocialGraphService) Unblock(ctx context.Context, callerID, targetID string) error {
	return s.edit(ctx, "unblock user", callerID, targetID, s.remote.UnblockUser)
}

// SearchUsernames returns one page of profiles whose username starts with
// query, compared in lower case. Failures yield an empty list.
func (s *SocialGraphService) SearchUsernames(ctx context.Context, query string) []*models.UserProfile {
	q := models.NormalizeUsername(query)
	if q == "" {
		return []*models.UserProfile{}
	}
	users, err := s.directory.SearchUsers(ctx, q, s.pageSize)
	if err != nil {
		s.logger.Warn(ctx, "search usernames", "query", q, "error", err)
		return []*models.UserProfile{}
	}
	return users
}

// FindContacts looks up the device contacts that have profiles. Numbers
// are sent in batches of common.ContactsBatchSize and the results are
// deduplicated by user id. It returns false when access to the contacts
// is not granted.
func (s *SocialGraphService) FindContacts(ctx context.Context, source ContactSource) ([]*models.UserProfile, bool) {
	granted, err := source.RequestAccess(ctx)
	if err != nil {
		s.logger.Warn(ctx, "contacts access", "error", err)
	}
	if err != nil || !granted {
		return nil, false
	}

	phones, err := source.PhoneNumbers(ctx)
	if err != nil {
		s.logger.Error(ctx, "read contacts", "error", err)
		return []*models.UserProfile{}, true
	}
	phones = models.Dedup(phones)

	out := []*models.UserProfile{}
	seen := make(map[string]struct{})
	for start := 0; start < len(phones); start += common.ContactsBatchSize {
		end := min(start+common.ContactsBatchSize, len(phones))
		users, err := s.directory.FindUsersByPhones(ctx, phones[start:end])
		if err != nil {
			s.logger.Warn(ctx, "contacts batch", "from", start, "to", end, "error", err)
			continue
		}
		for _, u := range users {
			if _, ok := seen[u.ID]; ok {
				continue
			}
			seen[u.ID] = struct{}{}
			out = append(out, u)
		}
	}
	return out, true
}

// RelationState is the friend edge between two users as seen by one of
// them.
type RelationState string

const (
	RelationNone            RelationState = "none"
	RelationPendingOutgoing RelationState = "pending-outgoing"
	RelationPendingIncoming RelationState = "pending-incoming"
	RelationFriends         RelationState = "friends"
)

// Relationship combines the friend edge with the viewer's block flag.
type Relationship struct {
	State   RelationState
	Blocked bool
}

// RelationshipOf derives how me relates to other from both profiles.
func RelationshipOf(me, other *models.UserProfile) Relationship {
	r := Relationship{State: RelationNone, Blocked: me.HasBlocked(other.ID)}
	switch {
	case me.IsFriend(other.ID):
		r.State = RelationFriends
	case me.HasRequestFrom(other.ID):
		r.State = RelationPendingIncoming
	case other.HasRequestFrom(me.ID):
		r.State = RelationPendingOutgoing
	}
	return r
}

// VisibleUsers drops the users me has blocked, and me itself.
func VisibleUsers(me *models.UserProfile, users []*models.UserProfile) []*models.UserProfile {
	out := make([]*models.UserProfile, 0, len(users))
	for _, u := range users {
		if u.ID == me.ID || me.HasBlocked(u.ID) {
			continue
		}
		out = append(out, u)
	}
	return out
}
