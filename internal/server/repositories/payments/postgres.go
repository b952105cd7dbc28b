package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Payment) (*models.Payment, bool, error) {
	query :=
		`INSERT INTO payments (account_id, product_name, amount, idempotency_key)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (account_id, idempotency_key) WHERE idempotency_key IS NOT NULL DO NOTHING
		 RETURNING id, purchase_date
		 `

	err := r.db.QueryRowContext(ctx, query, p.AccountID, p.ProductName, p.Amount, p.IdempotencyKey).
		Scan(&p.ID, &p.PurchaseDate)
	if err == nil {
		return p, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) || p.IdempotencyKey == nil {
		return nil, false, fmt.Errorf("db error: %w", err)
	}

	existing, err := r.findByKey(ctx, p.AccountID, *p.IdempotencyKey)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *PostgresRepository) findByKey(ctx context.Context, accountID, key string) (*models.Payment, error) {
	query :=
		`SELECT id, account_id, product_name, amount, purchase_date, idempotency_key
		 FROM payments
		 WHERE account_id = $1 AND idempotency_key = $2
		 `

	p := &models.Payment{}
	err := r.db.QueryRowContext(ctx, query, accountID, key).
		Scan(&p.ID, &p.AccountID, &p.ProductName, &p.Amount, &p.PurchaseDate, &p.IdempotencyKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Payment, error) {
	query :=
		`SELECT id, account_id, product_name, amount, purchase_date, idempotency_key
		 FROM payments
		 WHERE account_id = $1
		 ORDER BY purchase_date DESC, id
		 `

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		if dbx.IsInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(&p.ID, &p.AccountID, &p.ProductName, &p.Amount, &p.PurchaseDate, &p.IdempotencyKey); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
