// Package client connects the gateway to the backend gRPC services.
package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/storefront/internal/common"
	pb "github.com/dmitrijs2005/storefront/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// Backend bundles the generated clients over one connection.
type Backend struct {
	conn     *grpc.ClientConn
	Accounts pb.AccountServiceClient
	Products pb.ProductServiceClient
	Payments pb.PaymentServiceClient
}

// Dial creates a lazy connection to addr; no network I/O happens until the first call.
func Dial(addr string, opts ...grpc.DialOption) (*Backend, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc client: %w", err)
	}

	return &Backend{
		conn:     conn,
		Accounts: pb.NewAccountServiceClient(conn),
		Products: pb.NewProductServiceClient(conn),
		Payments: pb.NewPaymentServiceClient(conn),
	}, nil
}

func (b *Backend) Close() error {
	return b.conn.Close()
}

// WithAccessToken forwards a bearer token from an Authorization header value
// as the access_token metadata entry. Other schemes are ignored.
func WithAccessToken(ctx context.Context, authorization string) context.Context {
	token, ok := BearerToken(authorization)
	if !ok {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, token)
}

// BearerToken extracts the token from "Bearer <token>".
func BearerToken(authorization string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(authorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
