package models

import "strings"

// CartItem is one line of a customer's running cart.
type CartItem struct {
	ProductID   string  `bson:"product_id" json:"productId"`
	ProductName string  `bson:"product_name" json:"productName"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"unit_price" json:"unitPrice"`
	Company     string  `bson:"company" json:"company"`
	PackSize    string  `bson:"pack_size" json:"packSize"`
}

// LineTotal returns quantity times unit price for this line.
func (i CartItem) LineTotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// NormalizeName lowercases and collapses whitespace for the fallback line
// equality rule.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// SameLine reports whether two cart items refer to the same product line.
// Identifier equality wins; the normalized name plus pack size heuristic is
// only consulted when either side has no id.
func SameLine(a, b CartItem) bool {
	if a.ProductID != "" && b.ProductID != "" {
		return a.ProductID == b.ProductID
	}
	return NormalizeName(a.ProductName) == NormalizeName(b.ProductName) &&
		strings.EqualFold(a.PackSize, b.PackSize)
}

// CartTotal sums line totals across the cart.
func CartTotal(cart []CartItem) float64 {
	var total float64
	for _, item := range cart {
		total += item.LineTotal()
	}
	return total
}
