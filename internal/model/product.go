package model

import (
	"strings"
	"time"
)

// Product is a catalog entry owned by the user who created it.  Products
// exist to demonstrate the ownership predicate: only the creator or an admin
// may modify or delete one.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	InStock     bool      `json:"inStock"`
	CreatedBy   string    `json:"createdBy"` // user ID of the creator
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate returns one message per violated field rule.
func (p *Product) Validate() []string {
	var errs []string
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, "Product name is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		errs = append(errs, "Product description is required")
	}
	if p.Price <= 0 {
		errs = append(errs, "Price must be a positive number")
	}
	if strings.TrimSpace(p.Category) == "" {
		errs = append(errs, "Category is required")
	}
	return errs
}
