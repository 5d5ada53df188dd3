package api

import (
	"context"

	"google.golang.org/grpc"
)

// DreamSyncClient is the typed client of the dreamsync service.
type DreamSyncClient struct {
	cc grpc.ClientConnInterface
}

func NewDreamSyncClient(cc grpc.ClientConnInterface) *DreamSyncClient {
	return &DreamSyncClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, CallOptions(opts...)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DreamSyncClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, "Ping", in, opts)
}

func (c *DreamSyncClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, "SignUp", in, opts)
}

func (c *DreamSyncClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, "SignIn", in, opts)
}

func (c *DreamSyncClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, "RefreshToken", in, opts)
}

func (c *DreamSyncClient) WhoAmI(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*WhoAmIResponse, error) {
	return invoke[WhoAmIResponse](ctx, c.cc, "WhoAmI", in, opts)
}

func (c *DreamSyncClient) QueryDreams(ctx context.Context, in *QueryDreamsRequest, opts ...grpc.CallOption) (*QueryDreamsResponse, error) {
	return invoke[QueryDreamsResponse](ctx, c.cc, "QueryDreams", in, opts)
}

func (c *DreamSyncClient) UpsertDream(ctx context.Context, in *UpsertDreamRequest, opts ...grpc.CallOption) (*DreamResponse, error) {
	return invoke[DreamResponse](ctx, c.cc, "UpsertDream", in, opts)
}

func (c *DreamSyncClient) MarkDreamDeleted(ctx context.Context, in *MarkDreamDeletedRequest, opts ...grpc.CallOption) (*MarkDreamDeletedResponse, error) {
	return invoke[MarkDreamDeletedResponse](ctx, c.cc, "MarkDreamDeleted", in, opts)
}

func (c *DreamSyncClient) GetDream(ctx context.Context, in *DreamRef, opts ...grpc.CallOption) (*DreamResponse, error) {
	return invoke[DreamResponse](ctx, c.cc, "GetDream", in, opts)
}

func (c *DreamSyncClient) SetDreamLike(ctx context.Context, in *SetDreamLikeRequest, opts ...grpc.CallOption) (*DreamResponse, error) {
	return invoke[DreamResponse](ctx, c.cc, "SetDreamLike", in, opts)
}

func (c *DreamSyncClient) GetUser(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, "GetUser", in, opts)
}

func (c *DreamSyncClient) GetUserByUsername(ctx context.Context, in *UsernameRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, "GetUserByUsername", in, opts)
}

func (c *DreamSyncClient) SaveUser(ctx context.Context, in *SaveUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, "SaveUser", in, opts)
}

func (c *DreamSyncClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, "UpdateProfile", in, opts)
}

func (c *DreamSyncClient) StartSession(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, "StartSession", in, opts)
}

func (c *DreamSyncClient) CheckUsername(ctx context.Context, in *UsernameRequest, opts ...grpc.CallOption) (*CheckUsernameResponse, error) {
	return invoke[CheckUsernameResponse](ctx, c.cc, "CheckUsername", in, opts)
}

func (c *DreamSyncClient) SearchUsers(ctx context.Context, in *SearchUsersRequest, opts ...grpc.CallOption) (*UsersResponse, error) {
	return invoke[UsersResponse](ctx, c.cc, "SearchUsers", in, opts)
}

func (c *DreamSyncClient) FindUsersByPhones(ctx context.Context, in *FindUsersByPhonesRequest, opts ...grpc.CallOption) (*UsersResponse, error) {
	return invoke[UsersResponse](ctx, c.cc, "FindUsersByPhones", in, opts)
}

func (c *DreamSyncClient) ProfilePictureUploadURL(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*UploadURLResponse, error) {
	return invoke[UploadURLResponse](ctx, c.cc, "ProfilePictureUploadURL", in, opts)
}

func (c *DreamSyncClient) DeleteAccount(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteAccount", in, opts)
}

func (c *DreamSyncClient) SendFriendRequest(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "SendFriendRequest", in, opts)
}

func (c *DreamSyncClient) AcceptFriendRequest(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "AcceptFriendRequest", in, opts)
}

func (c *DreamSyncClient) DeclineFriendRequest(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeclineFriendRequest", in, opts)
}

func (c *DreamSyncClient) BlockUser(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "BlockUser", in, opts)
}

func (c *DreamSyncClient) UnblockUser(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "UnblockUser", in, opts)
}

// WatchStream receives successive messages of a server stream.
type WatchStream[T any] struct {
	stream grpc.ClientStream
}

// Recv blocks until the next message arrives or the stream ends.
func (w *WatchStream[T]) Recv() (*T, error) {
	m := new(T)
	if err := w.stream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func openWatch[T any](ctx context.Context, cc grpc.ClientConnInterface, desc *grpc.StreamDesc, in any, opts []grpc.CallOption) (*WatchStream[T], error) {
	stream, err := cc.NewStream(ctx, desc, FullMethod(desc.StreamName), CallOptions(opts...)...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &WatchStream[T]{stream: stream}, nil
}

// WatchDream subscribes to one dream document. Cancel ctx to unsubscribe.
func (c *DreamSyncClient) WatchDream(ctx context.Context, in *DreamRef, opts ...grpc.CallOption) (*WatchStream[DreamResponse], error) {
	return openWatch[DreamResponse](ctx, c.cc, &ServiceDesc.Streams[0], in, opts)
}

// WatchUser subscribes to one profile document. Cancel ctx to unsubscribe.
func (c *DreamSyncClient) WatchUser(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*WatchStream[UserResponse], error) {
	return openWatch[UserResponse](ctx, c.cc, &ServiceDesc.Streams[1], in, opts)
}
