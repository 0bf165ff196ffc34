package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog
type Product struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	Title              string    `json:"title" db:"title"`
	Description        string    `json:"description" db:"description"`
	Category           string    `json:"category" db:"category"`
	Brand              string    `json:"brand" db:"brand"`
	Price              float64   `json:"price" db:"price"`
	DiscountPercentage float64   `json:"discount_percentage" db:"discount_percentage"`
	Stock              int       `json:"stock" db:"stock"`
	Thumbnail          string    `json:"thumbnail" db:"thumbnail"`
	Images             []string  `json:"images" db:"images"`
	Rating             float64   `json:"rating" db:"rating"`
	RatingCount        int       `json:"rating_count" db:"rating_count"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// InStock reports whether the product has any sellable units left
func (p *Product) InStock() bool {
	return p.Stock > 0
}
