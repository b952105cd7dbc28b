package services

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/repomanager"
)

const (
	MsgProductNotFound     = "Product not found."
	MsgProductNameRequired = "Name is required."
	MsgNegativeAmount      = "Amount must not be negative."
	MsgInvalidPrice        = "Price must be a non-negative number."
	MsgInvalidIssueDate    = "Issue date must be in YYYY-MM-DD format."
	MsgNegativeOffset      = "Offset must not be negative."

	DefaultProductPageSize = 50
	MaxProductPageSize     = 500
)

// ProductInput carries the fields of a new product. IssueDate is YYYY-MM-DD.
type ProductInput struct {
	Name      string
	Amount    int32
	Supplier  string
	Details   string
	Price     float64
	IssueDate string
}

// ProductUpdate lists the fields to change; nil fields are kept.
type ProductUpdate struct {
	Name      *string
	Amount    *int32
	Supplier  *string
	Details   *string
	Price     *float64
	IssueDate *string
}

type ProductService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProductService(db *sql.DB, m repomanager.RepositoryManager) *ProductService {
	return &ProductService{db: db, repomanager: m}
}

func (s *ProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.repomanager.Products(s.db).Get(ctx, id)
	if err != nil {
		return nil, productErr(err, "get product")
	}
	return p, nil
}

// ListProducts pages through the catalog in id order. A non-positive limit
// selects the default page size; larger limits are capped.
func (s *ProductService) ListProducts(ctx context.Context, limit, offset int32) ([]*models.Product, error) {
	if offset < 0 {
		return nil, common.NewValidationError(MsgNegativeOffset)
	}
	switch {
	case limit <= 0:
		limit = DefaultProductPageSize
	case limit > MaxProductPageSize:
		limit = MaxProductPageSize
	}

	list, err := s.repomanager.Products(s.db).List(ctx, int(limit), int(offset))
	if err != nil {
		return nil, storeErr("list products", err)
	}
	return list, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if in.Name == "" {
		return nil, common.NewValidationError(MsgProductNameRequired)
	}
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	issued, err := parseIssueDate(in.IssueDate)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:      in.Name,
		Amount:    in.Amount,
		Supplier:  in.Supplier,
		Details:   in.Details,
		Price:     in.Price,
		IssueDate: issued,
	}

	created, err := s.repomanager.Products(s.db).Create(ctx, p)
	if err != nil {
		return nil, storeErr("create product", err)
	}
	return created, nil
}

// UpdateProduct applies the set fields of upd in a single statement.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, upd ProductUpdate) (*models.Product, error) {
	patch := models.ProductPatch{
		Name:     upd.Name,
		Amount:   upd.Amount,
		Supplier: upd.Supplier,
		Details:  upd.Details,
		Price:    upd.Price,
	}

	if upd.Name != nil && *upd.Name == "" {
		return nil, common.NewValidationError(MsgProductNameRequired)
	}
	if upd.Amount != nil {
		if err := validateAmount(*upd.Amount); err != nil {
			return nil, err
		}
	}
	if upd.Price != nil {
		if err := validatePrice(*upd.Price); err != nil {
			return nil, err
		}
	}
	if upd.IssueDate != nil {
		issued, err := parseIssueDate(*upd.IssueDate)
		if err != nil {
			return nil, err
		}
		patch.IssueDate = &issued
	}

	p, err := s.repomanager.Products(s.db).Update(ctx, id, patch)
	if err != nil {
		return nil, productErr(err, "update product")
	}
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repomanager.Products(s.db).Delete(ctx, id); err != nil {
		return productErr(err, "delete product")
	}
	return nil
}

func validateAmount(amount int32) error {
	if amount < 0 {
		return common.NewValidationError(MsgNegativeAmount)
	}
	return nil
}

func validatePrice(price float64) error {
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return common.NewValidationError(MsgInvalidPrice)
	}
	return nil
}

func parseIssueDate(s string) (time.Time, error) {
	t, err := time.Parse(common.IssueDateLayout, s)
	if err != nil {
		return time.Time{}, common.NewValidationError(MsgInvalidIssueDate)
	}
	return t, nil
}

func productErr(err error, op string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.NewNotFoundError(MsgProductNotFound)
	}
	return storeErr(op, err)
}
