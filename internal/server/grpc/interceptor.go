package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/metrics"
	pb "github.com/dmitrijs2005/storefront/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	UserIDKey    ctxKey = "userID"
	SessionIDKey ctxKey = "sessionID"
)

// publicMethods never require an access token.
var publicMethods = map[string]struct{}{
	pb.AccountService_Register_FullMethodName:             {},
	pb.AccountService_Login_FullMethodName:                {},
	pb.AccountService_RefreshToken_FullMethodName:         {},
	pb.AccountService_RequestPasswordReset_FullMethodName: {},
	pb.AccountService_ResetPassword_FullMethodName:        {},
	pb.AccountService_Ping_FullMethodName:                 {},
}

// UserIDFromContext returns the caller's user id set by the access token interceptor.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}

	if len(accessToken) == 0 {
		if _, public := publicMethods[info.FullMethod]; s.requireAuth && !public {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}
		return handler(ctx, req)
	}

	claims, err := s.tokens.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		return nil, failure(ctx, s.logger, "validate token", err)
	}

	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, SessionIDKey, claims.SessionID)

	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	if err != nil && code != codes.OK {
		args = append(args, "message", status.Convert(err).Message())
	}
	s.logger.Info(ctx, "gRPC call", args...)

	return resp, err
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	metrics.GRPCRequestsTotal.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	metrics.GRPCRequestDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())

	return resp, err
}
