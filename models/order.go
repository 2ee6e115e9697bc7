package models

import "time"

// OrderDraft is assembled incrementally by the checkout flow from the cart
// plus collected customer fields, and consumed once at submission.
type OrderDraft struct {
	CustomerName    string     `bson:"customer_name" json:"customerName"`
	CustomerPhone   string     `bson:"customer_phone" json:"customerPhone"`
	CustomerEmail   string     `bson:"customer_email,omitempty" json:"customerEmail,omitempty"`
	DeliveryAddress string     `bson:"delivery_address" json:"deliveryAddress"`
	DeliveryCity    string     `bson:"delivery_city,omitempty" json:"deliveryCity,omitempty"`
	Items           []CartItem `bson:"items" json:"items"`
}

// Total sums the draft's line totals.
func (d *OrderDraft) Total() float64 {
	return CartTotal(d.Items)
}

// Order is a submitted order record.
type Order struct {
	ID        string     `bson:"id" json:"id"` // UUID assigned at submission
	SessionID string     `bson:"session_id" json:"sessionId"`
	Draft     OrderDraft `bson:"draft" json:"draft"`
	Total     float64    `bson:"total" json:"total"`
	Status    string     `bson:"status" json:"status"` // "submitted", "cancelled"
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
}
