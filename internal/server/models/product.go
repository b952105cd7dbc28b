package models

import "time"

type Product struct {
	ID        int64
	Name      string
	Amount    int32
	Supplier  string
	Details   string
	Price     float64
	IssueDate time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductPatch lists the fields of an update. Nil fields are left as stored.
type ProductPatch struct {
	Name      *string
	Amount    *int32
	Supplier  *string
	Details   *string
	Price     *float64
	IssueDate *time.Time
}

// Apply copies every set field of the patch onto p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Amount != nil {
		p.Amount = *pp.Amount
	}
	if pp.Supplier != nil {
		p.Supplier = *pp.Supplier
	}
	if pp.Details != nil {
		p.Details = *pp.Details
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.IssueDate != nil {
		p.IssueDate = *pp.IssueDate
	}
}
