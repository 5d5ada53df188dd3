package remote

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/dreamsync/internal/api"
	"github.com/dmitrijs2005/dreamsync/internal/models"
)

type receiver[T any] interface {
	Recv() (*T, error)
}

// forward waits for the first message so that a refused subscription is
// reported to the caller, then relays the rest on a channel that closes
// when the stream ends or ctx is done.
func forward[T, V any](ctx context.Context, s *GRPCClient, stream receiver[T], pick func(*T) V) (<-chan V, error) {
	first, err := stream.Recv()
	if err != nil {
		return nil, mapError(err)
	}

	out := make(chan V, 1)
	out <- pick(first)

	go func() {
		defer close(out)
		for {
			msg, err := stream.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) && ctx.Err() == nil {
					s.logger.Warn(ctx, "watch ended", "error", mapError(err))
				}
				return
			}
			select {
			case out <- pick(msg):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// WatchDream subscribes to one dream document. Cancel ctx to unsubscribe.
func (s *GRPCClient) WatchDream(ctx context.Context, ownerID, docID string) (<-chan *models.DreamDocument, error) {
	stream, err := s.client.WatchDream(ctx, &api.DreamRef{OwnerID: ownerID, DocID: docID})
	if err != nil {
		return nil, mapError(err)
	}
	return forward[api.DreamResponse, *models.DreamDocument](ctx, s, stream, func(r *api.DreamResponse) *models.DreamDocument { return r.Dream })
}

// WatchUser subscribes to one profile. Cancel ctx to unsubscribe.
func (s *GRPCClient) WatchUser(ctx context.Context, userID string) (<-chan *models.UserProfile, error) {
	stream, err := s.client.WatchUser(ctx, &api.UserRequest{UserID: userID})
	if err != nil {
		return nil, mapError(err)
	}
	return forward[api.UserResponse, *models.UserProfile](ctx, s, stream, func(r *api.UserResponse) *models.UserProfile { return r.User })
}
