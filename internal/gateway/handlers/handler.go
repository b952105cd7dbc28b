// Package handlers translates gateway HTTP requests into backend gRPC calls.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/dmitrijs2005/storefront/internal/gateway/client"
	"github.com/dmitrijs2005/storefront/internal/gateway/httputil"
	"github.com/dmitrijs2005/storefront/internal/logging"
	pb "github.com/dmitrijs2005/storefront/internal/proto"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// Handler holds the backend clients shared by every endpoint.
type Handler struct {
	accounts  pb.AccountServiceClient
	products  pb.ProductServiceClient
	payments  pb.PaymentServiceClient
	validator *validator.Validate
	timeout   time.Duration
	logger    logging.Logger
}

func NewHandler(accounts pb.AccountServiceClient, products pb.ProductServiceClient, payments pb.PaymentServiceClient, timeout time.Duration, l logging.Logger) *Handler {
	return &Handler{
		accounts:  accounts,
		products:  products,
		payments:  payments,
		validator: newValidator(),
		timeout:   timeout,
		logger:    l.With("module", "http_handlers"),
	}
}

// newValidator reports json field names instead of Go field names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// callContext bounds the backend call and forwards the caller's bearer token.
func (h *Handler) callContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	return client.WithAccessToken(ctx, r.Header.Get("Authorization")), cancel
}

// decode reads a JSON body into dst and validates it. It writes the 400
// reply itself and returns false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			httputil.Error(w, http.StatusRequestEntityTooLarge, "Request body too large.")
		case errors.Is(err, io.EOF):
			httputil.Error(w, http.StatusBadRequest, "Request body is required.")
		default:
			httputil.Error(w, http.StatusBadRequest, "Invalid JSON body.")
		}
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		httputil.ValidationError(w, err)
		return false
	}
	return true
}

// checkVar validates a single query value, writing the 400 reply on failure.
func (h *Handler) checkVar(w http.ResponseWriter, name, value, tag string) bool {
	if err := h.validator.Var(value, tag); err != nil {
		httputil.Error(w, http.StatusBadRequest, "Invalid query parameter: "+name)
		return false
	}
	return true
}

func (h *Handler) rpcError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.RPCError(r.Context(), w, h.logger, err)
}

// Healthz reports that the process is up.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz pings the backend, which in turn checks its database and session store.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.callContext(r)
	defer cancel()

	if _, err := h.accounts.Ping(ctx, &pb.PingRequest{}); err != nil {
		h.logger.Warn(r.Context(), "readiness check failed", "error", err)
		httputil.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
