package httputil

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/storefront/internal/logging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StatusClientClosedRequest is the non-standard code for a client that went away.
const StatusClientClosedRequest = 499

// HTTPStatusFromCode maps a gRPC status code to the matching HTTP status.
func HTTPStatusFromCode(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Canceled:
		return StatusClientClosedRequest
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// RPCError writes the HTTP reply for a failed backend call. 4xx replies carry
// the status message; 5xx replies and non-status errors are generic.
func RPCError(ctx context.Context, w http.ResponseWriter, l logging.Logger, err error) {
	st, ok := status.FromError(err)
	if !ok {
		l.Error(ctx, "backend call failed", "error", err)
		Error(w, http.StatusInternalServerError, MsgInternal)
		return
	}

	code := HTTPStatusFromCode(st.Code())
	if code >= http.StatusInternalServerError {
		l.Error(ctx, "backend call failed", "code", st.Code().String(), "message", st.Message())
		Error(w, code, MsgInternal)
		return
	}

	Error(w, code, st.Message())
}
