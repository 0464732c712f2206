// Package checkout turns a cart into the order message sent to the shop over
// WhatsApp.
package checkout

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

const greeting = "Hi, I'd like to place an order:"

// Compose renders the order text: one line per cart line, then the total.
func Compose(lines []domain.CartLine, subtotal decimal.Decimal) (string, error) {
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}

	var b strings.Builder
	b.WriteString(greeting)
	for _, l := range lines {
		fmt.Fprintf(&b, "\n- %s (%d) - $%s", l.Name, l.Quantity, l.Price.StringFixed(2))
		if l.SelectedSize != "" {
			fmt.Fprintf(&b, " [Size: %s]", l.SelectedSize)
		}
		if l.SelectedColor != "" {
			fmt.Fprintf(&b, " [Color: %s]", l.SelectedColor)
		}
	}
	fmt.Fprintf(&b, "\n\nTotal: $%s", subtotal.StringFixed(2))
	return b.String(), nil
}

// WhatsAppURL builds a wa.me link that opens a chat with phone prefilled
// with text. Non-digits in phone are dropped.
func WhatsAppURL(phone, text string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, strings.ReplaceAll(url.QueryEscape(text), "+", "%20"))
}
