package models

import "time"

type Payment struct {
	ID             string
	AccountID      string
	ProductName    string
	Amount         float64
	PurchaseDate   time.Time
	IdempotencyKey *string
}
