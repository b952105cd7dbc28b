package grpc

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MsgInternal is the only text a client sees for an unclassified failure.
const MsgInternal = "Internal server error"

// toStatus converts a service error into a gRPC status error.
// Errors that already carry a status are returned unchanged.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, message(err))
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, message(err))
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, message(err))
	case isAuthError(err):
		return status.Error(codes.Unauthenticated, message(err))
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	}

	var se *common.StoreError
	if errors.As(err, &se) {
		if isConnError(err) {
			return status.Error(codes.Unavailable, se.Error())
		}
		return status.Error(codes.Internal, se.Error())
	}

	return status.Error(codes.Unknown, MsgInternal)
}

func isAuthError(err error) bool {
	return errors.Is(err, common.ErrorUnauthorized) ||
		errors.Is(err, common.ErrInvalidToken) ||
		errors.Is(err, common.ErrTokenExpired) ||
		errors.Is(err, common.ErrRefreshTokenExpired) ||
		errors.Is(err, common.ErrSessionRevoked)
}

func isConnError(err error) bool {
	var ce *pgconn.ConnectError
	if errors.As(err, &ce) {
		return true
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return true
	}
	return errors.Is(err, driver.ErrBadConn)
}

// message prefers the human-readable text of a DomainError.
func message(err error) string {
	var de *common.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
