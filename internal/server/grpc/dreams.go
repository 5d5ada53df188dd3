package grpc

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/dreamsync/internal/api"
	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) QueryDreams(ctx context.Context, req *api.QueryDreamsRequest) (*api.QueryDreamsResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	docs, err := s.dreams.Query(ctx, userID, req.Query())
	if err != nil {
		return nil, s.toStatus(ctx, "QueryDreams", err)
	}

	resp := &api.QueryDreamsResponse{Documents: make([]json.RawMessage, 0, len(docs))}
	for _, d := range docs {
		raw, err := json.Marshal(d)
		if err != nil {
			s.logger.Warn(ctx, "skipping dream document", "dream_id", d.DocID, "error", err)
			continue
		}
		resp.Documents = append(resp.Documents, raw)
	}
	return resp, nil
}

func (s *GRPCServer) UpsertDream(ctx context.Context, req *api.UpsertDreamRequest) (*api.DreamResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if req.Dream == nil {
		return nil, status.Error(codes.InvalidArgument, "missing dream")
	}

	stored, err := s.dreams.Upsert(ctx, userID, req.Dream)
	if err != nil {
		return nil, s.toStatus(ctx, "UpsertDream", err)
	}
	return &api.DreamResponse{Dream: stored}, nil
}

func (s *GRPCServer) MarkDreamDeleted(ctx context.Context, req *api.MarkDreamDeletedRequest) (*api.MarkDreamDeletedResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.dreams.MarkDeleted(ctx, userID, req.DreamID)
	if err != nil {
		return nil, s.toStatus(ctx, "MarkDreamDeleted", err)
	}
	return &api.MarkDreamDeletedResponse{Count: n}, nil
}

func (s *GRPCServer) GetDream(ctx context.Context, req *api.DreamRef) (*api.DreamResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	d, err := s.dreams.Get(ctx, userID, req.OwnerID, req.DocID)
	if err != nil {
		return nil, s.toStatus(ctx, "GetDream", err)
	}
	return &api.DreamResponse{Dream: d}, nil
}

func (s *GRPCServer) SetDreamLike(ctx context.Context, req *api.SetDreamLikeRequest) (*api.DreamResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	d, err := s.dreams.SetLike(ctx, userID, req.OwnerID, req.DocID, req.Liked)
	if err != nil {
		return nil, s.toStatus(ctx, "SetDreamLike", err)
	}
	return &api.DreamResponse{Dream: d}, nil
}

// WatchDream streams the document now and after every change until the
// client goes away.
func (s *GRPCServer) WatchDream(req *api.DreamRef, stream api.DreamWatchStream) error {
	ctx := stream.Context()
	userID, err := callerID(ctx)
	if err != nil {
		return err
	}
	if req.OwnerID == "" || req.DocID == "" {
		return status.Error(codes.InvalidArgument, common.ErrorInvalidArgument.Error())
	}

	err = s.dreams.Watch(ctx, userID, req.OwnerID, req.DocID, func(d *models.DreamDocument) error {
		return stream.Send(&api.DreamResponse{Dream: d})
	})
	return s.toStatus(ctx, "WatchDream", err)
}
