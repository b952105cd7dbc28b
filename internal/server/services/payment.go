package services

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/repomanager"
)

const (
	MsgAccountRequired     = "Account id is required."
	MsgProductNameMissing  = "Product name is required."
	MsgInvalidPaymentTotal = "Amount must be greater than zero."
	MsgAccountNotFound     = "Account not found."
)

// PaymentRequest describes a purchase. A non-empty IdempotencyKey makes
// retries of the same request record a single payment.
type PaymentRequest struct {
	AccountID      string
	ProductName    string
	Amount         float64
	IdempotencyKey string
}

type PaymentService struct {
	db          *sql.DB
	withTx      txRunner
	repomanager repomanager.RepositoryManager
}

func NewPaymentService(db *sql.DB, m repomanager.RepositoryManager) *PaymentService {
	return &PaymentService{db: db, withTx: sqlTx(db), repomanager: m}
}

// MakePayment records a payment of an existing account. created is false when
// the idempotency key was already used and the earlier payment is returned.
func (s *PaymentService) MakePayment(ctx context.Context, req PaymentRequest) (payment *models.Payment, created bool, err error) {
	switch {
	case req.AccountID == "":
		return nil, false, common.NewValidationError(MsgAccountRequired)
	case req.ProductName == "":
		return nil, false, common.NewValidationError(MsgProductNameMissing)
	case !(req.Amount > 0) || math.IsInf(req.Amount, 0):
		return nil, false, common.NewValidationError(MsgInvalidPaymentTotal)
	}

	p := &models.Payment{
		AccountID:   req.AccountID,
		ProductName: req.ProductName,
		Amount:      req.Amount,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		p.IdempotencyKey = &key
	}

	err = s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).FindByID(ctx, req.AccountID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewNotFoundError(MsgAccountNotFound)
			}
			return storeErr("find account", err)
		}

		var err error
		payment, created, err = s.repomanager.Payments(tx).Create(ctx, p)
		if err != nil {
			return storeErr("create payment", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return payment, created, nil
}

// ListPayments returns the account's payments, newest first.
func (s *PaymentService) ListPayments(ctx context.Context, accountID string) ([]*models.Payment, error) {
	if accountID == "" {
		return nil, common.NewValidationError(MsgAccountRequired)
	}

	list, err := s.repomanager.Payments(s.db).ListByAccount(ctx, accountID)
	if err != nil {
		return nil, storeErr("list payments", err)
	}
	return list, nil
}
