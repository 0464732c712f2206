package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxGalleryImages caps Product.Images.
const MaxGalleryImages = 5

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Images      []string        `json:"images,omitempty"`
	Sizes       []string        `json:"sizes,omitempty"`
	Colors      []string        `json:"colors,omitempty"`
	Description string          `json:"description,omitempty"`
}

// ValidationError reports the first rule a Product breaks.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid product %s: %s", e.Field, e.Reason)
}

// Normalize trims text fields, drops blank labels and promotes the first
// gallery image to the primary image when the latter is missing.
func (p *Product) Normalize() {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.Image = strings.TrimSpace(p.Image)
	p.Description = strings.TrimSpace(p.Description)
	p.Images = compact(p.Images)
	p.Sizes = compact(p.Sizes)
	p.Colors = compact(p.Colors)

	if p.Image == "" && len(p.Images) > 0 {
		p.Image = p.Images[0]
	}
}

func (p Product) Validate() error {
	switch {
	case p.ID == "":
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	case p.Name == "":
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	case p.Price.IsNegative():
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	case len(p.Images) > MaxGalleryImages:
		return &ValidationError{Field: "images", Reason: fmt.Sprintf("at most %d images allowed", MaxGalleryImages)}
	case len(p.Images) > 0 && p.Images[0] != p.Image:
		return &ValidationError{Field: "images", Reason: "first gallery image must equal the primary image"}
	}
	return nil
}

// Clone returns a deep copy.
func (p Product) Clone() Product {
	p.Images = cloneStrings(p.Images)
	p.Sizes = cloneStrings(p.Sizes)
	p.Colors = cloneStrings(p.Colors)
	return p
}

func compact(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
