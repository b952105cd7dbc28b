package services

import (
	"context"
	"math"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentService() (*PaymentService, *memStore) {
	store := newMemStore()
	s := NewPaymentService(nil, store)
	s.withTx = inlineTx
	return s, store
}

func addUser(store *memStore, id string) {
	store.users[id] = &models.User{ID: id, Username: id, Email: id + "@x.com"}
}

func TestMakePayment_Records(t *testing.T) {
	s, store := newPaymentService()
	addUser(store, "acc-1")

	p, created, err := s.MakePayment(context.Background(), PaymentRequest{AccountID: "acc-1", ProductName: "Pen", Amount: 9.99})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.PurchaseDate.IsZero())
	assert.Nil(t, p.IdempotencyKey)
	assert.Len(t, store.payments, 1)
}

func TestMakePayment_Idempotent(t *testing.T) {
	s, store := newPaymentService()
	addUser(store, "acc-1")
	addUser(store, "acc-2")
	ctx := context.Background()
	req := PaymentRequest{AccountID: "acc-1", ProductName: "Pen", Amount: 9.99, IdempotencyKey: "order-17"}

	first, created, err := s.MakePayment(ctx, req)
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := s.MakePayment(ctx, req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, store.payments, 1)

	// keys are scoped per account
	req.AccountID = "acc-2"
	other, created, err := s.MakePayment(ctx, req)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestMakePayment_Validation(t *testing.T) {
	s, _ := newPaymentService()

	tests := []struct {
		name string
		req  PaymentRequest
		want string
	}{
		{"no account", PaymentRequest{ProductName: "Pen", Amount: 1}, MsgAccountRequired},
		{"no product", PaymentRequest{AccountID: "a", Amount: 1}, MsgProductNameMissing},
		{"zero amount", PaymentRequest{AccountID: "a", ProductName: "Pen"}, MsgInvalidPaymentTotal},
		{"negative amount", PaymentRequest{AccountID: "a", ProductName: "Pen", Amount: -5}, MsgInvalidPaymentTotal},
		{"nan amount", PaymentRequest{AccountID: "a", ProductName: "Pen", Amount: math.NaN()}, MsgInvalidPaymentTotal},
		{"inf amount", PaymentRequest{AccountID: "a", ProductName: "Pen", Amount: math.Inf(1)}, MsgInvalidPaymentTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.MakePayment(context.Background(), tt.req)
			require.ErrorIs(t, err, common.ErrorValidation)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestMakePayment_UnknownAccount(t *testing.T) {
	s, store := newPaymentService()

	_, _, err := s.MakePayment(context.Background(), PaymentRequest{AccountID: "ghost", ProductName: "Pen", Amount: 1})
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.EqualError(t, err, MsgAccountNotFound)
	assert.Empty(t, store.payments)
}

func TestMakePayment_StoreError(t *testing.T) {
	s, store := newPaymentService()
	addUser(store, "acc-1")
	store.paymentErr = errBoom{}

	_, _, err := s.MakePayment(context.Background(), PaymentRequest{AccountID: "acc-1", ProductName: "Pen", Amount: 1})
	var se *common.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "create payment", se.Op)
}

func TestMakePayment_RunsInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := newMemStore()
	addUser(store, "acc-1")
	s := NewPaymentService(db, store)

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, _, err = s.MakePayment(context.Background(), PaymentRequest{AccountID: "acc-1", ProductName: "Pen", Amount: 1})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, _, err = s.MakePayment(context.Background(), PaymentRequest{AccountID: "ghost", ProductName: "Pen", Amount: 1})
	require.ErrorIs(t, err, common.ErrorNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPayments_NewestFirst(t *testing.T) {
	s, store := newPaymentService()
	addUser(store, "acc-1")
	addUser(store, "acc-2")
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, _, err := s.MakePayment(ctx, PaymentRequest{AccountID: "acc-1", ProductName: name, Amount: 1})
		require.NoError(t, err)
	}
	_, _, err := s.MakePayment(ctx, PaymentRequest{AccountID: "acc-2", ProductName: "Z", Amount: 1})
	require.NoError(t, err)

	list, err := s.ListPayments(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "C", list[0].ProductName)
	assert.Equal(t, "A", list[2].ProductName)
	assert.True(t, list[0].PurchaseDate.After(list[2].PurchaseDate))

	_, err = s.ListPayments(ctx, "")
	assert.ErrorIs(t, err, common.ErrorValidation)
}
