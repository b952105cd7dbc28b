// Package products stores the product catalog.
package products

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*models.Product, error)
	// List returns products ordered by id.
	List(ctx context.Context, limit, offset int) ([]*models.Product, error)
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	// Update writes the set fields of patch and returns the stored product.
	Update(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}
