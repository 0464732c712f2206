package domain

import "github.com/shopspring/decimal"

// CartLine is a product snapshot plus the chosen variant and quantity.
type CartLine struct {
	ProductID     string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	Image         string          `json:"image"`
	Images        []string        `json:"images,omitempty"`
	Sizes         []string        `json:"sizes,omitempty"`
	Colors        []string        `json:"colors,omitempty"`
	Description   string          `json:"description,omitempty"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
	SelectedColor string          `json:"selectedColor,omitempty"`
	Quantity      int             `json:"quantity"`
}

// LineKey identifies a cart line. Two additions with the same key merge.
type LineKey struct {
	ProductID string
	Size      string
	Color     string
}

func NewCartLine(p Product, quantity int, size, color string) CartLine {
	p = p.Clone()
	return CartLine{
		ProductID:     p.ID,
		Name:          p.Name,
		Price:         p.Price,
		Category:      p.Category,
		Image:         p.Image,
		Images:        p.Images,
		Sizes:         p.Sizes,
		Colors:        p.Colors,
		Description:   p.Description,
		SelectedSize:  size,
		SelectedColor: color,
		Quantity:      quantity,
	}
}

func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.SelectedSize, Color: l.SelectedColor}
}

// LineTotal is price × quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSnapshot is a read-only view of a cart with its derived aggregates.
type CartSnapshot struct {
	Lines    []CartLine      `json:"items"`
	IsOpen   bool            `json:"isOpen"`
	Count    int             `json:"cartCount"`
	Subtotal decimal.Decimal `json:"subtotal"`
}
