package catalog

import (
	"strings"

	"golang.org/x/net/html"
)

// Unspecified replaces a price or link the storefront did not return.
const Unspecified = "unspecified"

// Product is a single storefront search hit. Values are never modified after
// the client builds them.
type Product struct {
	Name  string
	Price string
	Link  string
}

// productRecord mirrors the subset of the WooCommerce product resource we read.
type productRecord struct {
	Name      string  `json:"name"`
	Price     *string `json:"price"`
	Permalink *string `json:"permalink"`
}

func (r productRecord) toProduct() Product {
	return Product{
		Name:  plainText(r.Name),
		Price: valueOrUnspecified(r.Price),
		Link:  valueOrUnspecified(r.Permalink),
	}
}

func valueOrUnspecified(value *string) string {
	if value == nil {
		return Unspecified
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return Unspecified
	}
	return trimmed
}

// plainText drops markup and decodes entities. WooCommerce returns product
// names as stored by the editor, so "Tom &amp; Jerry" or "<b>Sale</b>" are common.
func plainText(raw string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(raw))
	var out strings.Builder

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(out.String()), " ")
		case html.TextToken:
			out.Write(tokenizer.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			out.WriteByte(' ')
		}
	}
}
