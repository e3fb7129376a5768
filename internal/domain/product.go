package domain

import "time"

// Owned is implemented by resources that belong to exactly one vendor.
type Owned interface {
	OwnerID() string
}

// Product is a catalog entry owned by the vendor that created it.
type Product struct {
	ID        string
	Name      string
	Price     float64
	Category  string
	VendorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnerID returns the owning vendor. It never changes after creation.
func (p *Product) OwnerID() string {
	return p.VendorID
}
