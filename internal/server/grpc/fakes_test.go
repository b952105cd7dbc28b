package grpc

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/dmitrijs2005/storefront/internal/server/auth"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/services"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// fakeAccounts records the last call and returns the configured err.
type fakeAccounts struct {
	err    error
	user   *models.User
	tokens *services.TokenPair
	claims *auth.Claims

	gotEmail       string
	gotUsername    string
	gotNewUsername *string
	gotNewRole     *string
	calls          []string
}

func (f *fakeAccounts) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeAccounts) Register(_ context.Context, username, email, _, role string) (*models.User, error) {
	f.record("Register")
	f.gotUsername, f.gotEmail = username, email
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: "u-1", Username: username, Email: email, Role: role}, nil
}

func (f *fakeAccounts) Login(_ context.Context, email, _ string) (*services.TokenPair, error) {
	f.record("Login")
	f.gotEmail = email
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens, nil
}

func (f *fakeAccounts) Logout(_ context.Context, username string) error {
	f.record("Logout")
	f.gotUsername = username
	return f.err
}

func (f *fakeAccounts) RefreshToken(context.Context, string) (*services.TokenPair, error) {
	f.record("RefreshToken")
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens, nil
}

func (f *fakeAccounts) GetUser(_ context.Context, email string) (*models.User, error) {
	f.record("GetUser")
	f.gotEmail = email
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeAccounts) DeleteUser(_ context.Context, email string) error {
	f.record("DeleteUser")
	f.gotEmail = email
	return f.err
}

func (f *fakeAccounts) UpdateUser(_ context.Context, email string, newUsername, newRole *string) (*models.User, error) {
	f.record("UpdateUser")
	f.gotEmail, f.gotNewUsername, f.gotNewRole = email, newUsername, newRole
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeAccounts) ChangePassword(_ context.Context, email, _, _ string) error {
	f.record("ChangePassword")
	f.gotEmail = email
	return f.err
}

func (f *fakeAccounts) RequestPasswordReset(_ context.Context, email string) error {
	f.record("RequestPasswordReset")
	f.gotEmail = email
	return f.err
}

func (f *fakeAccounts) ResetPassword(context.Context, string, string) error {
	f.record("ResetPassword")
	return f.err
}

func (f *fakeAccounts) ValidateAccessToken(context.Context, string) (*auth.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func (f *fakeAccounts) Ping(context.Context) error {
	f.record("Ping")
	return f.err
}

type fakeProducts struct {
	err     error
	product *models.Product
	list    []*models.Product

	gotInput  services.ProductInput
	gotUpdate services.ProductUpdate
	gotLimit  int32
	gotOffset int32
}

func (f *fakeProducts) GetProduct(context.Context, int64) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

func (f *fakeProducts) ListProducts(_ context.Context, limit, offset int32) ([]*models.Product, error) {
	f.gotLimit, f.gotOffset = limit, offset
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func (f *fakeProducts) CreateProduct(_ context.Context, in services.ProductInput) (*models.Product, error) {
	f.gotInput = in
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

func (f *fakeProducts) UpdateProduct(_ context.Context, _ int64, upd services.ProductUpdate) (*models.Product, error) {
	f.gotUpdate = upd
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

func (f *fakeProducts) DeleteProduct(context.Context, int64) error {
	return f.err
}

type fakePayments struct {
	err     error
	payment *models.Payment
	created bool
	list    []*models.Payment

	gotReq services.PaymentRequest
}

func (f *fakePayments) MakePayment(_ context.Context, req services.PaymentRequest) (*models.Payment, bool, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, false, f.err
	}
	return f.payment, f.created, nil
}

func (f *fakePayments) ListPayments(context.Context, string) ([]*models.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}
