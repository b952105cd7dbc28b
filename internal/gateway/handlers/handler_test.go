package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type env struct {
	accounts *fakeAccounts
	products *fakeProducts
	payments *fakePayments
	router   http.Handler
}

func newEnv() *env {
	e := &env{accounts: &fakeAccounts{}, products: &fakeProducts{}, payments: &fakePayments{}}
	h := NewHandler(e.accounts, e.products, e.payments, time.Second, nopLogger{})

	r := chi.NewRouter()
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Post("/Account/register", h.Register)
	r.Post("/Account/login", h.Login)
	r.Post("/Account/logout", h.Logout)
	r.Post("/Account/refresh-token", h.RefreshToken)
	r.Get("/Account/get-user", h.GetUser)
	r.Delete("/Account/delete-user", h.DeleteUser)
	r.Put("/Account/update-user", h.UpdateUser)
	r.Post("/Account/change-password", h.ChangePassword)
	r.Post("/Account/request-password-reset", h.RequestPasswordReset)
	r.Post("/Account/reset-password", h.ResetPassword)
	r.Get("/Products", h.ListProducts)
	r.Post("/Products", h.CreateProduct)
	r.Get("/Products/{id}", h.GetProduct)
	r.Put("/Products/{id}", h.UpdateProduct)
	r.Delete("/Products/{id}", h.DeleteProduct)
	r.Get("/Payments", h.ListPayments)
	r.Post("/Payments", h.MakePayment)
	e.router = r
	return e
}

func (e *env) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestRegister(t *testing.T) {
	e := newEnv()

	rec := e.do(http.MethodPost, "/Account/register",
		`{"email":"a@x.com","username":"a","password":"p1","role":"user"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "User registered successfully.", body["message"])
	assert.Equal(t, "user", e.accounts.register.Role)
}

func TestRegister_EmptyRoleReachesBackend(t *testing.T) {
	e := newEnv()
	e.accounts.err = status.Error(codes.InvalidArgument, "Role is required.")

	rec := e.do(http.MethodPost, "/Account/register", `{"email":"a@x.com","username":"a","password":"p1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Role is required.", decode(t, rec)["message"])
}

func TestRegister_Conflict(t *testing.T) {
	e := newEnv()
	e.accounts.err = status.Error(codes.AlreadyExists, "Email is already registered.")

	rec := e.do(http.MethodPost, "/Account/register",
		`{"email":"a@x.com","username":"a","password":"p1","role":"user"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Email is already registered.", body["message"])
}

func TestRegister_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"email":`, http.StatusBadRequest},
		{"empty body", ``, http.StatusBadRequest},
		{"bad email", `{"email":"nope","username":"a","password":"p"}`, http.StatusBadRequest},
		{"password too long", `{"email":"a@x.com","username":"a","password":"` + strings.Repeat("x", 73) + `"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			rec := e.do(http.MethodPost, "/Account/register", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Nil(t, e.accounts.register, "backend must not be called")
		})
	}
}

func TestRegister_ValidationNamesJSONField(t *testing.T) {
	e := newEnv()
	rec := e.do(http.MethodPost, "/Account/register", `{"email":"nope","username":"a","password":"p"}`)

	assert.Contains(t, decode(t, rec)["message"], "email (email)")
}

func TestLogin_ReturnsTokens(t *testing.T) {
	e := newEnv()
	rec := e.do(http.MethodPost, "/Account/login", `{"email":"a@x.com","password":"p1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "at", body["accessToken"])
	assert.Equal(t, "rt", body["refreshToken"])
}

func TestLogin_Unauthenticated(t *testing.T) {
	e := newEnv()
	e.accounts.err = status.Error(codes.Unauthenticated, "Invalid email or password.")

	rec := e.do(http.MethodPost, "/Account/login", `{"email":"a@x.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password.", decode(t, rec)["message"])
}

func TestBearerTokenIsForwarded(t *testing.T) {
	e := newEnv()
	rec := e.do(http.MethodGet, "/Account/get-user?email=a@x.com", "", "Authorization", "Bearer jwt-1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"jwt-1"}, e.accounts.md.Get(common.AccessTokenHeaderName))
	body := decode(t, rec)
	assert.Equal(t, "a", body["username"])
	assert.Equal(t, "user", body["role"])
}

func TestGetUser_NotFound(t *testing.T) {
	e := newEnv()
	e.accounts.err = status.Error(codes.NotFound, "User not found.")

	rec := e.do(http.MethodGet, "/Account/get-user?email=missing@x.com", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found.", decode(t, rec)["message"])
}

func TestGetUser_MissingEmail(t *testing.T) {
	e := newEnv()
	rec := e.do(http.MethodGet, "/Account/get-user", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, e.accounts.getUser)
}

func TestDeleteUser_InternalIsGeneric(t *testing.T) {
	e := newEnv()
	e.accounts.err = status.Error(codes.Internal, "delete user: connection reset by peer")

	rec := e.do(http.MethodDelete, "/Account/delete-user?email=a@x.com", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Internal server error", body["message"])
}

func TestUpdateUser_AbsentFieldsStayNil(t *testing.T) {
	e := newEnv()
	rec := e.do(http.MethodPut, "/Account/update-user", `{"email":"a@x.com","newUsername":"b"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, e.accounts.updateUser.NewUsername)
	assert.Equal(t, "b", *e.accounts.updateUser.NewUsername)
	assert.Nil(t, e.accounts.updateUser.NewRole)
}

func TestAccountReplies(t *testing.T) {
	tests := []struct {
		method, path, body, message string
	}{
		{http.MethodPost, "/Account/logout", `{"username":"a"}`, "User logged out successfully."},
		{http.MethodPost, "/Account/change-password", `{"email":"a@x.com","oldPassword":"p1","newPassword":"p2"}`, "Password changed successfully."},
		{http.MethodPost, "/Account/request-password-reset", `{"email":"a@x.com"}`, "sent"},
		{http.MethodPost, "/Account/reset-password", `{"token":"t","newPassword":"p3"}`, "Password has been reset."},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := newEnv().do(tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.message, decode(t, rec)["message"])
		})
	}
}

func TestRefreshToken(t *testing.T) {
	rec := newEnv().do(http.MethodPost, "/Account/refresh-token", `{"refreshToken":"rt"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "at2", decode(t, rec)["accessToken"])
}

func TestHealth(t *testing.T) {
	e := newEnv()
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/readyz", "").Code)

	e.accounts.err = status.Error(codes.Unavailable, "backend not ready")
	assert.Equal(t, http.StatusServiceUnavailable, e.do(http.MethodGet, "/readyz", "").Code)
}
