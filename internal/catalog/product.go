package catalog

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	OldPrice    decimal.Decimal `json:"oldPrice"`
	Stock       int             `json:"stock"`
	Tags        []string        `json:"tags"`
	ImageURL    string          `json:"imageUrl"`
}

type productJSON struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Brand       string      `json:"brand"`
	Price       json.Number `json:"price"`
	OldPrice    json.Number `json:"oldPrice"`
	Stock       int         `json:"stock"`
	Tags        []string    `json:"tags"`
	ImageURL    string      `json:"imageUrl"`
}

// MarshalJSON writes prices as JSON numbers carrying their exact decimal text.
func (p Product) MarshalJSON() ([]byte, error) {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	return json.Marshal(productJSON{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		Price:       json.Number(p.Price.String()),
		OldPrice:    json.Number(p.OldPrice.String()),
		Stock:       p.Stock,
		Tags:        tags,
		ImageURL:    p.ImageURL,
	})
}
