package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"shopsmart/internal/model"
)

func SystemPrompt() string {
	return `You are a helpful shopping assistant for WalSmart.
Answer questions about the product described in the PRODUCT CONTEXT only.
Be friendly and concise, and format the answer with Markdown.
If the question has nothing to do with the product or shopping, politely decline.`
}

const searchPrompt = `Extract relevant product names or keywords from the user's shopping query. ` +
	`Return ONLY a JSON object with key 'productNames' as an array of up to 6 strings.`

const reviewPrompt = `You are a sentiment analysis AI. Return ONLY a JSON object with keys ` +
	`'positive', 'negative' and 'aspects' (aspect name to a 0-100 score).`

// productContext renders a product as plain text for the prompt.
func productContext(p model.Product) string {
	var sb strings.Builder
	sb.WriteString("Product: " + p.Name + "\n")
	if p.Description != "" {
		sb.WriteString("Description: " + PlainText(p.Description) + "\n")
	}
	sb.WriteString(fmt.Sprintf("Price: $%.2f\n", p.Price))
	if p.Category != "" {
		sb.WriteString("Category: " + p.Category + "\n")
	}
	if p.LongDescription != "" {
		sb.WriteString("Details: " + PlainText(p.LongDescription) + "\n")
	}
	if len(p.Tags) > 0 {
		sb.WriteString("Tags: " + strings.Join(p.Tags, ", ") + "\n")
	}
	if b, err := json.Marshal(p.Sentiment); err == nil {
		sb.WriteString("Sentiment: " + string(b) + "\n")
	}
	return sb.String()
}

func reviewMessage(current model.Sentiment, review string) (string, error) {
	b, err := json.Marshal(current)
	if err != nil {
		return "", fmt.Errorf("encode current sentiment: %w", err)
	}
	return fmt.Sprintf("Current Sentiment: %s\nNew Review: %q\nReturn the UPDATED sentiment scores.", b, review), nil
}

const intentPrompt = "You are a smart shopping intent analyzer."

const recipePrompt = "You are a professional chef providing detailed recipes. Return ONLY valid JSON."

// maxIntentProducts bounds the product list sent with an intent query.
const maxIntentProducts = 500

func intentMessage(query string, names []string) string {
	var sb strings.Builder
	sb.WriteString("Analyze the user's shopping query and extract structured intent.\n")
	sb.WriteString(fmt.Sprintf("Query: %q\n", query))
	if len(names) > maxIntentProducts {
		names = names[:maxIntentProducts]
	}
	if len(names) > 0 {
		sb.WriteString("\nAVAILABLE PRODUCTS:\n" + strings.Join(names, "\n") + "\n")
	}
	sb.WriteString(`
Return ONLY a JSON object with the following keys:
- type: One of ["recipe", "skincare", "clothing", "electronics", "grocery", "product"]
- keywords: List of relevant search keywords (exclude stop words).
- ingredients: List of SPECIFIC PRODUCT NAMES if type is "recipe". When AVAILABLE PRODUCTS are listed,
  choose ingredients from that list only; omit what is not there or use the closest substitute.
- priceRange: Object with 'min' and 'max' integers if mentioned.
- skinType: If skincare, one of ["oily", "dry", "sensitive", "combination"] or null.
- category: Best matching category from: ["Groceries", "Skincare", "Clothing", "Electronics", "Pantry", "Produce"].`)
	return sb.String()
}

func recipeMessage(query string) string {
	return fmt.Sprintf(`Generate a detailed recipe for: %q

Return ONLY a JSON object with the following keys:
- name: The recipe name
- description: A brief 1-sentence description of the dish
- ingredients: List of SPECIFIC ingredients with quantities (e.g., "2 cups Sushi Rice")
- steps: List of detailed cooking instructions
- prepTime: Estimated preparation and cooking time (e.g., "45 minutes")
- servings: Number of servings (integer)

Make the recipe practical and easy to follow. Use common grocery store product names.`, query)
}
