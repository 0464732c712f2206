package catalog

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/sheetrow"
	"github.com/shopspring/decimal"
)

// Skip reasons reported for dropped rows.
const (
	ReasonMissingID     = "missing id"
	ReasonMissingName   = "missing name"
	ReasonInvalidPrice  = "invalid price"
	ReasonNegativePrice = "negative price"
)

// RowResult is the outcome of one feed row: either a valid product or a skip
// with its reason.
type RowResult struct {
	// Line is the 1-based record number in the feed, header included.
	Line    int
	Product domain.Product
	Reason  string
}

func (r RowResult) Valid() bool { return r.Reason == "" }

// Parse reads a CSV document with a header row and returns one result per
// data row, in feed order. Only an unreadable document or a header without
// id/name columns is an error.
func Parse(r io.Reader) ([]RowResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Err: errors.New("empty document")}
		}
		return nil, &ParseError{Err: err}
	}
	idx, err := sheetrow.HeaderIndex(header)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	var results []RowResult
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		line++
		results = append(results, parseRecord(line, record, idx))
	}
	return results, nil
}

// Accepted keeps the valid products of results, preserving order.
func Accepted(results []RowResult) []domain.Product {
	products := make([]domain.Product, 0, len(results))
	for _, r := range results {
		if r.Valid() {
			products = append(products, r.Product)
		}
	}
	return products
}

// Skipped keeps the dropped rows of results.
func Skipped(results []RowResult) []RowResult {
	var skipped []RowResult
	for _, r := range results {
		if !r.Valid() {
			skipped = append(skipped, r)
		}
	}
	return skipped
}

func parseRecord(line int, record []string, idx map[string]int) RowResult {
	cell := func(name string) string { return sheetrow.Cell(record, idx, name) }

	id, name := cell(sheetrow.ColID), cell(sheetrow.ColName)
	if id == "" {
		return RowResult{Line: line, Reason: ReasonMissingID}
	}
	if name == "" {
		return RowResult{Line: line, Reason: ReasonMissingName}
	}
	price, err := decimal.NewFromString(cell(sheetrow.ColPrice))
	if err != nil {
		return RowResult{Line: line, Reason: ReasonInvalidPrice}
	}
	if price.IsNegative() {
		return RowResult{Line: line, Reason: ReasonNegativePrice}
	}

	image, gallery := normalizeGallery(cell(sheetrow.ColImage), sheetrow.Split(cell(sheetrow.ColImages)))
	return RowResult{
		Line: line,
		Product: domain.Product{
			ID:          id,
			Name:        name,
			Price:       price,
			Category:    cell(sheetrow.ColCategory),
			Image:       image,
			Images:      gallery,
			Sizes:       sheetrow.Split(cell(sheetrow.ColSizes)),
			Colors:      sheetrow.Split(cell(sheetrow.ColColors)),
			Description: cell(sheetrow.ColDescription),
		},
	}
}

// normalizeGallery puts the primary image at the head of the gallery and caps
// it at domain.MaxGalleryImages. A missing primary image is taken from the
// gallery head.
func normalizeGallery(image string, gallery []string) (string, []string) {
	if len(gallery) == 0 {
		return image, nil
	}
	if image == "" {
		image = gallery[0]
	}
	out := make([]string, 0, len(gallery)+1)
	out = append(out, image)
	for _, g := range gallery {
		if g != image {
			out = append(out, g)
		}
	}
	if len(out) > domain.MaxGalleryImages {
		out = out[:domain.MaxGalleryImages]
	}
	return image, out
}
