package grpc

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/application"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/domain"
)

type LicenseInternalService interface {
	ValidateKey(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetApplicationStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type LicenseInternalServer struct {
	service *application.Service
}

func NewLicenseInternalServer(service *application.Service) *LicenseInternalServer {
	return &LicenseInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc LicenseInternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: "skyline.license.v1.LicenseInternalService",
		HandlerType: (*LicenseInternalService)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "ValidateKey",
				Handler:    validateKeyHandler(svc),
			},
			{
				MethodName: "GetApplicationStats",
				Handler:    getApplicationStatsHandler(svc),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "skyline/contracts/proto/license/v1/license_internal.proto",
	}, svc)
}

func stringField(req *structpb.Struct, name string) (string, error) {
	val := req.GetFields()[name]
	if val == nil || val.GetStringValue() == "" {
		return "", status.Errorf(codes.InvalidArgument, "missing %s", name)
	}
	return val.GetStringValue(), nil
}

// ValidateKey answers sibling-service entitlement checks without exposing
// password material. The tenant authenticates via its application secret.
func (s *LicenseInternalServer) ValidateKey(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	appSecret, err := stringField(req, "app_secret")
	if err != nil {
		return nil, err
	}
	keyString, err := stringField(req, "key")
	if err != nil {
		return nil, err
	}

	key, app, err := s.service.InspectKey(ctx, appSecret, keyString)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidApplication):
		return nil, status.Error(codes.Unauthenticated, "invalid application")
	case errors.Is(err, domain.ErrInvalidKey):
		return nil, status.Error(codes.NotFound, "key not found")
	default:
		return nil, status.Errorf(codes.Internal, "inspect key: %v", err)
	}

	resp, err := structpb.NewStruct(map[string]any{
		"valid":         key.IsActive && !key.Expired(time.Now().UTC()),
		"active":        key.IsActive,
		"redeemed":      key.Redeemed(),
		"hardware_lock": key.Binding.LockEnabled,
		"app_id":        app.AppID.String(),
		"expiry":        key.Expiry.Unix(),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func (s *LicenseInternalServer) GetApplicationStats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	appSecret, err := stringField(req, "app_secret")
	if err != nil {
		return nil, err
	}

	info, err := s.service.ApplicationInfo(ctx, appSecret)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidApplication) {
			return nil, status.Error(codes.Unauthenticated, "invalid application")
		}
		return nil, status.Errorf(codes.Internal, "application stats: %v", err)
	}

	resp, err := structpb.NewStruct(map[string]any{
		"num_users":        info.NumUsers,
		"num_online_users": info.NumOnlineUsers,
		"num_keys":         info.NumKeys,
		"version":          info.Version,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func validateKeyHandler(svc LicenseInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.ValidateKey(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/skyline.license.v1.LicenseInternalService/ValidateKey",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.ValidateKey(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}

func getApplicationStatsHandler(svc LicenseInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.GetApplicationStats(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/skyline.license.v1.LicenseInternalService/GetApplicationStats",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.GetApplicationStats(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}
