package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

func TestHTTPStatusFromCode(t *testing.T) {
	tests := map[codes.Code]int{
		codes.OK:                 http.StatusOK,
		codes.InvalidArgument:    http.StatusBadRequest,
		codes.FailedPrecondition: http.StatusBadRequest,
		codes.OutOfRange:         http.StatusBadRequest,
		codes.Unauthenticated:    http.StatusUnauthorized,
		codes.PermissionDenied:   http.StatusForbidden,
		codes.NotFound:           http.StatusNotFound,
		codes.AlreadyExists:      http.StatusConflict,
		codes.Aborted:            http.StatusConflict,
		codes.ResourceExhausted:  http.StatusTooManyRequests,
		codes.Canceled:           StatusClientClosedRequest,
		codes.Unimplemented:      http.StatusNotImplemented,
		codes.Unavailable:        http.StatusServiceUnavailable,
		codes.DeadlineExceeded:   http.StatusGatewayTimeout,
		codes.Unknown:            http.StatusInternalServerError,
		codes.Internal:           http.StatusInternalServerError,
		codes.DataLoss:           http.StatusInternalServerError,
	}

	for code, want := range tests {
		assert.Equal(t, want, HTTPStatusFromCode(code), code.String())
	}
}

func decodeReply(t *testing.T, rec *httptest.ResponseRecorder) Reply {
	t.Helper()
	var r Reply
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&r))
	return r
}

func TestRPCError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"not found keeps message", status.Error(codes.NotFound, "User not found."), http.StatusNotFound, "User not found."},
		{"conflict", status.Error(codes.AlreadyExists, "Email is already registered."), http.StatusConflict, "Email is already registered."},
		{"internal hides detail", status.Error(codes.Internal, "delete user: pq: disk full"), http.StatusInternalServerError, MsgInternal},
		{"unavailable hides detail", status.Error(codes.Unavailable, "connection refused"), http.StatusServiceUnavailable, MsgInternal},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RPCError(context.Background(), rec, nopLogger{}, tt.err)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			reply := decodeReply(t, rec)
			assert.False(t, reply.Success)
			assert.Equal(t, tt.message, reply.Message)
		})
	}
}
