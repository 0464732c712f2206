package catalog

import (
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var baselineProducts = []domain.Product{
	{
		ID:       "1",
		Name:     "Cashmere Wool Blend Coat",
		Price:    decimal.NewFromInt(249),
		Category: "Women",
		Image:    "https://images.unsplash.com/photo-1544923246-77307dd654cb?q=80&w=800&auto=format&fit=crop",
		Sizes:    []string{"S", "M", "L"},
		Colors:   []string{"Beige", "Black"},
	},
	{
		ID:       "2",
		Name:     "Minimalist Leather Tote",
		Price:    decimal.NewFromInt(189),
		Category: "Accessories",
		Image:    "https://images.unsplash.com/photo-1584917865442-de89df76afd3?q=80&w=800&auto=format&fit=crop",
		Colors:   []string{"Brown", "Black"},
	},
	{
		ID:       "3",
		Name:     "Gold Plated Hoop Earrings",
		Price:    decimal.NewFromInt(49),
		Category: "Jewelry",
		Image:    "https://images.unsplash.com/photo-1630019852942-f89202989a51?q=80&w=800&auto=format&fit=crop",
	},
	{
		ID:       "4",
		Name:     "Mens Classic Wool Blazer",
		Price:    decimal.NewFromInt(299),
		Category: "Men",
		Image:    "https://images.unsplash.com/photo-1507679799987-c73779587ccf?q=80&w=800&auto=format&fit=crop",
		Sizes:    []string{"M", "L", "XL"},
		Colors:   []string{"Navy", "Grey"},
	},
	{
		ID:       "5",
		Name:     "Silk Scarf",
		Price:    decimal.NewFromInt(89),
		Category: "Accessories",
		Image:    "https://images.unsplash.com/photo-1586495777744-4413f21062fa?q=80&w=800&auto=format&fit=crop",
		Colors:   []string{"Floral", "Abstract"},
	},
	{
		ID:       "6",
		Name:     "Black Denim Jacket",
		Price:    decimal.NewFromInt(129),
		Category: "Men",
		Image:    "https://images.unsplash.com/photo-1521482819875-9c5c7cb1e5b4?q=80&w=800&auto=format&fit=crop",
		Sizes:    []string{"S", "M", "L", "XL"},
	},
	{
		ID:       "7",
		Name:     "Summer Linen Dress",
		Price:    decimal.NewFromInt(159),
		Category: "Women",
		Image:    "https://images.unsplash.com/photo-1596783076218-bc71dd220263?q=80&w=800&auto=format&fit=crop",
		Sizes:    []string{"XS", "S", "M"},
		Colors:   []string{"White", "Sage"},
	},
	{
		ID:       "8",
		Name:     "Kids Cotton Tee Set",
		Price:    decimal.NewFromInt(35),
		Category: "Kids",
		Image:    "https://images.unsplash.com/photo-1519457431-44ccd64a579b?q=80&w=800&auto=format&fit=crop",
		Sizes:    []string{"2T", "4T", "6T"},
	},
	{
		ID:       "9",
		Name:     "Premium Leather Belt",
		Price:    decimal.NewFromInt(55),
		Category: "Accessories",
		Image:    "https://images.unsplash.com/photo-1551488852-d80429737887?q=80&w=800&auto=format&fit=crop",
		Colors:   []string{"Brown", "Black", "Tan"},
	},
	{
		ID:       "10",
		Name:     "Aviator Sunglasses",
		Price:    decimal.NewFromInt(110),
		Category: "Accessories",
		Image:    "https://images.unsplash.com/photo-1511499767150-a48a237f0083?q=80&w=800&auto=format&fit=crop",
	},
}

// Baseline returns a fresh copy of the bundled catalog served whenever the
// live feed cannot produce products.
func Baseline() []domain.Product {
	out := make([]domain.Product, len(baselineProducts))
	for i, p := range baselineProducts {
		out[i] = p.Clone()
	}
	return out
}
