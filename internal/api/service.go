package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "dreamsync.DreamSync"

// FullMethod returns the gRPC path of a method of the service.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// PublicMethods lists the methods callable without an access token.
var PublicMethods = map[string]bool{
	FullMethod("Ping"):         true,
	FullMethod("SignUp"):       true,
	FullMethod("SignIn"):       true,
	FullMethod("RefreshToken"): true,
}

// DreamSyncServer is the server API of the dreamsync service.
type DreamSyncServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	SignUp(context.Context, *SignUpRequest) (*TokenResponse, error)
	SignIn(context.Context, *SignInRequest) (*TokenResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	WhoAmI(context.Context, *Empty) (*WhoAmIResponse, error)

	QueryDreams(context.Context, *QueryDreamsRequest) (*QueryDreamsResponse, error)
	UpsertDream(context.Context, *UpsertDreamRequest) (*DreamResponse, error)
	MarkDreamDeleted(context.Context, *MarkDreamDeletedRequest) (*MarkDreamDeletedResponse, error)
	GetDream(context.Context, *DreamRef) (*DreamResponse, error)
	SetDreamLike(context.Context, *SetDreamLikeRequest) (*DreamResponse, error)
	WatchDream(*DreamRef, DreamWatchStream) error

	GetUser(context.Context, *UserRequest) (*UserResponse, error)
	GetUserByUsername(context.Context, *UsernameRequest) (*UserResponse, error)
	SaveUser(context.Context, *SaveUserRequest) (*UserResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*UserResponse, error)
	StartSession(context.Context, *Empty) (*UserResponse, error)
	CheckUsername(context.Context, *UsernameRequest) (*CheckUsernameResponse, error)
	SearchUsers(context.Context, *SearchUsersRequest) (*UsersResponse, error)
	FindUsersByPhones(context.Context, *FindUsersByPhonesRequest) (*UsersResponse, error)
	ProfilePictureUploadURL(context.Context, *Empty) (*UploadURLResponse, error)
	DeleteAccount(context.Context, *Empty) (*Empty, error)
	WatchUser(*UserRequest, UserWatchStream) error

	SendFriendRequest(context.Context, *UserRequest) (*Empty, error)
	AcceptFriendRequest(context.Context, *UserRequest) (*Empty, error)
	DeclineFriendRequest(context.Context, *UserRequest) (*Empty, error)
	BlockUser(context.Context, *UserRequest) (*Empty, error)
	UnblockUser(context.Context, *UserRequest) (*Empty, error)
}

// DreamWatchStream is the server side of WatchDream.
type DreamWatchStream interface {
	Send(*DreamResponse) error
	grpc.ServerStream
}

// UserWatchStream is the server side of WatchUser.
type UserWatchStream interface {
	Send(*UserResponse) error
	grpc.ServerStream
}

type dreamWatchStream struct{ grpc.ServerStream }

func (s *dreamWatchStream) Send(m *DreamResponse) error { return s.ServerStream.SendMsg(m) }

type userWatchStream struct{ grpc.ServerStream }

func (s *userWatchStream) Send(m *UserResponse) error { return s.ServerStream.SendMsg(m) }

// RegisterDreamSyncServer registers srv on s.
func RegisterDreamSyncServer(s grpc.ServiceRegistrar, srv DreamSyncServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req, Resp any](name string, call func(DreamSyncServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DreamSyncServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DreamSyncServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchDreamHandler(srv any, stream grpc.ServerStream) error {
	in := new(DreamRef)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(DreamSyncServer).WatchDream(in, &dreamWatchStream{stream})
}

func watchUserHandler(srv any, stream grpc.ServerStream) error {
	in := new(UserRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(DreamSyncServer).WatchUser(in, &userWatchStream{stream})
}

// ServiceDesc describes the dreamsync service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DreamSyncServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", DreamSyncServer.Ping),
		unary("SignUp", DreamSyncServer.SignUp),
		unary("SignIn", DreamSyncServer.SignIn),
		unary("RefreshToken", DreamSyncServer.RefreshToken),
		unary("WhoAmI", DreamSyncServer.WhoAmI),
		unary("QueryDreams", DreamSyncServer.QueryDreams),
		unary("UpsertDream", DreamSyncServer.UpsertDream),
		unary("MarkDreamDeleted", DreamSyncServer.MarkDreamDeleted),
		unary("GetDream", DreamSyncServer.GetDream),
		unary("SetDreamLike", DreamSyncServer.SetDreamLike),
		unary("GetUser", DreamSyncServer.GetUser),
		unary("GetUserByUsername", DreamSyncServer.GetUserByUsername),
		unary("SaveUser", DreamSyncServer.SaveUser),
		unary("UpdateProfile", DreamSyncServer.UpdateProfile),
		unary("StartSession", DreamSyncServer.StartSession),
		unary("CheckUsername", DreamSyncServer.CheckUsername),
		unary("SearchUsers", DreamSyncServer.SearchUsers),
		unary("FindUsersByPhones", DreamSyncServer.FindUsersByPhones),
		unary("ProfilePictureUploadURL", DreamSyncServer.ProfilePictureUploadURL),
		unary("DeleteAccount", DreamSyncServer.DeleteAccount),
		unary("SendFriendRequest", DreamSyncServer.SendFriendRequest),
		unary("AcceptFriendRequest", DreamSyncServer.AcceptFriendRequest),
		unary("DeclineFriendRequest", DreamSyncServer.DeclineFriendRequest),
		unary("BlockUser", DreamSyncServer.BlockUser),
		unary("UnblockUser", DreamSyncServer.UnblockUser),
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchDream", Handler: watchDreamHandler, ServerStreams: true},
		{StreamName: "WatchUser", Handler: watchUserHandler, ServerStreams: true},
	},
	Metadata: "dreamsync.json",
}

// UnimplementedDreamSyncServer answers every call with codes.Unimplemented.
// Embed it to implement only part of the API.
type UnimplementedDreamSyncServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedDreamSyncServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented("Ping")
}
func (UnimplementedDreamSyncServer) SignUp(context.Context, *SignUpRequest) (*TokenResponse, error) {
	return nil, unimplemented("SignUp")
}
func (UnimplementedDreamSyncServer) SignIn(context.Context, *SignInRequest) (*TokenResponse, error) {
	return nil, unimplemented("SignIn")
}
func (UnimplementedDreamSyncServer) RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error) {
	return nil, unimplemented("RefreshToken")
}
func (UnimplementedDreamSyncServer) WhoAmI(context.Context, *Empty) (*WhoAmIResponse, error) {
	return nil, unimplemented("WhoAmI")
}
func (UnimplementedDreamSyncServer) QueryDreams(context.Context, *QueryDreamsRequest) (*QueryDreamsResponse, error) {
	return nil, unimplemented("QueryDreams")
}
func (UnimplementedDreamSyncServer) UpsertDream(context.Context, *UpsertDreamRequest) (*DreamResponse, error) {
	return nil, unimplemented("UpsertDream")
}
func (UnimplementedDreamSyncServer) MarkDreamDeleted(context.Context, *MarkDreamDeletedRequest) (*MarkDreamDeletedResponse, error) {
	return nil, unimplemented("MarkDreamDeleted")
}
func (UnimplementedDreamSyncServer) GetDream(context.Context, *DreamRef) (*DreamResponse, error) {
	return nil, unimplemented("GetDream")
}
func (UnimplementedDreamSyncServer) SetDreamLike(context.Context, *SetDreamLikeRequest) (*DreamResponse, error) {
	return nil, unimplemented("SetDreamLike")
}
func (UnimplementedDreamSyncServer) WatchDream(*DreamRef, DreamWatchStream) error {
	return unimplemented("WatchDream")
}
func (UnimplementedDreamSyncServer) GetUser(context.Context, *UserRequest) (*UserResponse, error) {
	return nil, unimplemented("GetUser")
}
func (UnimplementedDreamSyncServer) GetUserByUsername(context.Context, *UsernameRequest) (*UserResponse, error) {
	return nil, unimplemented("GetUserByUsername")
}
func (UnimplementedDreamSyncServer) SaveUser(context.Context, *SaveUserRequest) (*UserResponse, error) {
	return nil, unimplemented("SaveUser")
}
func (UnimplementedDreamSyncServer) UpdateProfile(context.Context, *UpdateProfileRequest) (*UserResponse, error) {
	return nil, unimplemented("UpdateProfile")
}
func (UnimplementedDreamSyncServer) StartSession(context.Context, *Empty) (*UserResponse, error) {
	return nil, unimplemented("StartSession")
}
func (UnimplementedDreamSyncServer) CheckUsername(context.Context, *UsernameRequest) (*CheckUsernameResponse, error) {
	return nil, unimplemented("CheckUsername")
}
func (UnimplementedDreamSyncServer) SearchUsers(context.Context, *SearchUsersRequest) (*UsersResponse, error) {
	return nil, unimplemented("SearchUsers")
}
func (UnimplementedDreamSyncServer) FindUsersByPhones(context.Context, *FindUsersByPhonesRequest) (*UsersResponse, error) {
	return nil, unimplemented("FindUsersByPhones")
}
func (UnimplementedDreamSyncServer) ProfilePictureUploadURL(context.Context, *Empty) (*UploadURLResponse, error) {
	return nil, unimplemented("ProfilePictureUploadURL")
}
func (UnimplementedDreamSyncServer) DeleteAccount(context.Context, *Empty) (*Empty, error) {
	return nil, unimplemented("DeleteAccount")
}
func (UnimplementedDreamSyncServer) WatchUser(*UserRequest, UserWatchStream) error {
	return unimplemented("WatchUser")
}
func (UnimplementedDreamSyncServer) SendFriendRequest(context.Context, *UserRequest) (*Empty, error) {
	return nil, unimplemented("SendFriendRequest")
}
func (UnimplementedDreamSyncServer) AcceptFriendRequest(context.Context, *UserRequest) (*Empty, error) {
	return nil, unimplemented("AcceptFriendRequest")
}
func (UnimplementedDreamSyncServer) DeclineFriendRequest(context.Context, *UserRequest) (*Empty, error) {
	return nil, unimplemented("DeclineFriendRequest")
}
func (UnimplementedDreamSyncServer) BlockUser(context.Context, *UserRequest) (*Empty, error) {
	return nil, unimplemented("BlockUser")
}
func (UnimplementedDreamSyncServer) UnblockUser(context.Context, *UserRequest) (*Empty, error) {
	return nil, unimplemented("UnblockUser")
}
