// Package sheetrow holds the column contract shared by the public catalog feed
// and the admin writer. Columns may only ever be appended, never reordered.
package sheetrow

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
)

const (
	ColID          = "id"
	ColName        = "name"
	ColPrice       = "price"
	ColCategory    = "category"
	ColImage       = "image"
	ColImages      = "images"
	ColSizes       = "sizes"
	ColColors      = "colors"
	ColDescription = "description"
)

// Columns is the wire order of a row (sheet columns A..I).
var Columns = []string{
	ColID, ColName, ColPrice, ColCategory, ColImage, ColImages, ColSizes, ColColors, ColDescription,
}

var ErrMissingColumn = errors.New("required column missing from header")

// Row is one positional record.
type Row []string

// Encode flattens p into a Row in column order.
func Encode(p domain.Product) Row {
	return Row{
		p.ID,
		p.Name,
		p.Price.String(),
		p.Category,
		p.Image,
		Join(p.Images),
		Join(p.Sizes),
		Join(p.Colors),
		p.Description,
	}
}

// Split breaks a multi-value cell on commas, trimming pieces and dropping blanks.
func Split(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func Join(values []string) string {
	return strings.Join(values, ",")
}

// HeaderIndex maps lower-cased, trimmed header names to their position. The
// id and name columns are mandatory.
func HeaderIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if name == "" {
			continue
		}
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	for _, required := range []string{ColID, ColName} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}
	return idx, nil
}

// Cell returns the trimmed value of column name in record, or "".
func Cell(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func lastColumn() string {
	return columnLetter(len(Columns) - 1)
}

func columnLetter(i int) string {
	s := ""
	for i >= 0 {
		s = string(rune('A'+i%26)) + s
		i = i/26 - 1
	}
	return s
}

var (
	plainSheetName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	cellLike       = regexp.MustCompile(`^[A-Za-z]{1,3}[0-9]+$`)
)

// QuoteSheet renders a sheet name for A1 notation. Names other than plain
// identifiers are wrapped in single quotes with embedded quotes doubled, e.g.
// "My Products" becomes "'My Products'".
func QuoteSheet(sheet string) string {
	if plainSheetName.MatchString(sheet) && !cellLike.MatchString(sheet) {
		return sheet
	}
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

// UnquoteSheet reverses QuoteSheet.
func UnquoteSheet(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

// Range is the whole-table A1 range used for appends, e.g. "Sheet1!A:I".
func Range(sheet string) string {
	return fmt.Sprintf("%s!A:%s", QuoteSheet(sheet), lastColumn())
}

// IDColumnRange is the A1 range of the id column, e.g. "Sheet1!A:A".
func IDColumnRange(sheet string) string {
	return fmt.Sprintf("%s!A:A", QuoteSheet(sheet))
}

// RowRange is the A1 range of the row at zero-based index, e.g. index 2 is
// "Sheet1!A3:I3".
func RowRange(sheet string, index int) string {
	n := index + 1
	return fmt.Sprintf("%s!A%d:%s%d", QuoteSheet(sheet), n, lastColumn(), n)
}
