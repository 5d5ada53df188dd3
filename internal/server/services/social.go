package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/dmitrijs2005/dreamsync/internal/server/notify"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/repomanager"
)

// SocialService edits the friend graph. A pending request lives only on
// the receiver; a friendship lives on both profiles.
type SocialService struct {
	repomanager repomanager.RepositoryManager
	publisher
}

func NewSocialService(m repomanager.RepositoryManager, n notify.Notifier, logger logging.Logger) *SocialService {
	logger = logger.With("module", "social")
	return &SocialService{repomanager: m, publisher: publisher{notifier: n, logger: logger}}
}

func checkPeer(callerID, otherID string) error {
	if otherID == "" || otherID == callerID {
		return fmt.Errorf("invalid peer %q: %w", otherID, common.ErrorInvalidArgument)
	}
	return nil
}

// SendFriendRequest adds the caller to target's pending requests. It does
// nothing when both are already friends.
func (s *SocialService) SendFriendRequest(ctx context.Context, callerID, targetID string) error {
	if err := checkPeer(callerID, targetID); err != nil {
		return err
	}
	users := s.repomanager.Repositories().Users
	target, err := users.Get(ctx, targetID)
	if err != nil {
		return err
	}
	if target.IsFriend(callerID) {
		return nil
	}
	if err := users.AddToList(ctx, targetID, models.ListFriendRequests, callerID); err != nil {
		return err
	}
	s.logger.Info(ctx, "friend request sent", "from", callerID, "to", targetID)
	s.publish(ctx, notify.UserTopic(targetID))
	return nil
}

// AcceptFriendRequest makes caller and requester friends and drops the
// pending request, all in one transaction. The caller must hold a pending
// request from requester; accepting an existing friend is a no-op edge.
func (s *SocialService) AcceptFriendRequest(ctx context.Context, callerID, requesterID string) error {
	if err := checkPeer(callerID, requesterID); err != nil {
		return err
	}
	err := s.repomanager.RunInTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		me, err := r.Users.Get(ctx, callerID)
		if err != nil {
			return err
		}
		if !me.HasRequestFrom(requesterID) && !me.IsFriend(requesterID) {
			return fmt.Errorf("no friend request from %s: %w", requesterID, common.ErrorPermissionDenied)
		}
		if err := r.Users.AddToList(ctx, callerID, models.ListFriends, requesterID); err != nil {
			return err
		}
		if err := r.Users.AddToList(ctx, requesterID, models.ListFriends, callerID); err != nil {
			return err
		}
		return r.Users.RemoveFromList(ctx, callerID, models.ListFriendRequests, requesterID)
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "friend request accepted", "user", callerID, "friend", requesterID)
	s.publish(ctx, notify.UserTopic(callerID), notify.UserTopic(requesterID))
	return nil
}

// DeclineFriendRequest drops requester's pending request.
func (s *SocialService) DeclineFriendRequest(ctx context.Context, callerID, requesterID string) error {
	if err := checkPeer(callerID, requesterID); err != nil {
		return err
	}
	return s.editOwnList(ctx, callerID, models.ListFriendRequests, false, requesterID)
}

// Block adds target to the caller's blocked list. Friendship and pending
// requests are kept.
func (s *SocialService) Block(ctx context.Context, callerID, targetID string) error {
	if err := checkPeer(callerID, targetID); err != nil {
		return err
	}
	return s.editOwnList(ctx, callerID, models.ListBlocked, true, targetID)
}

func (s *SocialService) Unblock(ctx context.Context, callerID, targetID string) error {
	if err := checkPeer(callerID, targetID); err != nil {
		return err
	}
	return s.editOwnList(ctx, callerID, models.ListBlocked, false, targetID)
}

func (s *SocialService) editOwnList(ctx context.Context, callerID string, list models.UserList, add bool, value string) error {
	users := s.repomanager.Repositories().Users
	var err error
	if add {
		err = users.AddToList(ctx, callerID, list, value)
	} else {
		err = users.RemoveFromList(ctx, callerID, list, value)
	}
	if err != nil {
		return err
	}
	s.publish(ctx, notify.UserTopic(callerID))
	return nil
}
