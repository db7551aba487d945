package assistant

import (
	"fmt"
	"strings"

	"storebot/app/internal/catalog"
)

const (
	extractionTemperature  = 0.2
	compositionTemperature = 0.6
)

const extractionTemplate = `You extract product names from customer messages sent to an online shop.

Message: "%s"

Answer with the name of the product to look up on the shop website and nothing else.`

const compositionTemplate = `You are the online sales consultant of a shop. The customer asked: "%s"

These are the products we found:
%s

Answer in Armenian, politely and briefly, as a shop consultant recommending these products. Include the links. Do not add unrelated information. Finish by asking whether the customer has any other questions.`

func extractionPrompt(userText string) string {
	return fmt.Sprintf(extractionTemplate, userText)
}

func compositionPrompt(question string, items []catalog.Product, currency string) string {
	return fmt.Sprintf(compositionTemplate, question, formatMatches(items, currency))
}

// formatMatches renders one line per item with its name, price and link.
func formatMatches(items []catalog.Product, currency string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		price := item.Price
		if currency != "" && price != catalog.Unspecified {
			price = price + " " + currency
		}
		lines = append(lines, fmt.Sprintf("%s — %s — %s", item.Name, price, item.Link))
	}
	return strings.Join(lines, "\n")
}
