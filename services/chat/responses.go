package chat

import (
	"fmt"
	"strings"

	"pharmachat/models"
)

// Canned reply fragments. Everything user-facing that is not generated comes
// from here so wording stays consistent across handlers.
const (
	msgApology = "Sorry, something went wrong on our side. Please try again in a moment."

	msgCartEmpty         = "Your cart is empty. Tell me what you'd like to order, for example \"add 5 Panadol\"."
	msgCartCleared       = "Done, your cart is now empty."
	msgCheckoutCancelled = "Okay, I've cancelled the checkout and cleared your cart. Let me know if you'd like to start over."

	msgAskName    = "Great, let's get your order details. What name should the order be under?"
	msgAskPhone   = "Thanks! What phone number can we reach you on?"
	msgAskAddress = "Got it. What's the delivery address?"
	msgAskEmail   = "Almost done. What's your email address? You can say \"skip\" if you'd rather not share one."

	msgInvalidName    = "That doesn't look like a name. Please give me the full name for the order (2 to 100 characters)."
	msgInvalidPhone   = "That doesn't look like a phone number. Please send 10 to 15 digits, for example 0300 1234567."
	msgInvalidAddress = "That address looks too short. Please give me the full delivery address."
	msgInvalidEmail   = "That doesn't look like a valid email. Please try again, or say \"skip\"."

	msgConfirmHint = "Reply \"yes\" to place the order or \"no\" to go back."
	msgOrderFailed = "Sorry, your order could not be placed right now. Your cart is untouched — please try confirming again shortly."
)

func msgNotFound(fragment string) string {
	return fmt.Sprintf("I couldn't find anything matching %q in our catalog. Could you check the spelling or try another name?", fragment)
}

func msgOutOfStock(name string) string {
	return fmt.Sprintf("Unfortunately %s is out of stock right now, so I can't add it to your cart.", name)
}

func msgStockNegotiation(name string, requested, available int) string {
	return fmt.Sprintf("We only have %d of %s in stock (you asked for %d). Should I add the %d we have? (yes/no)",
		available, name, requested, available)
}

func msgAwaitingQuantity(name string) string {
	return fmt.Sprintf("How many of %s would you like?", name)
}

func msgAdded(item models.CartItem) string {
	return fmt.Sprintf("Added %d x %s (%s) at Rs. %.2f each.", item.Quantity, item.ProductName, item.PackSize, item.UnitPrice)
}

func msgAmbiguity(query string, candidates []models.CatalogCandidate) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "I found a few products matching %q. Which one did you mean?\n", query)
	for i, c := range candidates {
		fmt.Fprintf(&sb, "%d. %s (%s) — %s, Rs. %.2f\n", i+1, c.Name, c.PackSize, c.Company, c.Price)
	}
	sb.WriteString("Reply with a number or the product name.")
	return sb.String()
}

func formatCart(cart []models.CartItem) string {
	if len(cart) == 0 {
		return msgCartEmpty
	}
	var sb strings.Builder
	sb.WriteString("Here's your cart:\n")
	for i, item := range cart {
		fmt.Fprintf(&sb, "%d. %s (%s) — %d x Rs. %.2f = Rs. %.2f\n",
			i+1, item.ProductName, item.PackSize, item.Quantity, item.UnitPrice, item.LineTotal())
	}
	fmt.Fprintf(&sb, "Total: Rs. %.2f", models.CartTotal(cart))
	return sb.String()
}

func formatOrderSummary(draft *models.OrderDraft) string {
	var sb strings.Builder
	sb.WriteString("Please review your order:\n")
	for i, item := range draft.Items {
		fmt.Fprintf(&sb, "%d. %s (%s) — %d x Rs. %.2f = Rs. %.2f\n",
			i+1, item.ProductName, item.PackSize, item.Quantity, item.UnitPrice, item.LineTotal())
	}
	fmt.Fprintf(&sb, "Total: Rs. %.2f\n", draft.Total())
	fmt.Fprintf(&sb, "Name: %s\nPhone: %s\n", draft.CustomerName, draft.CustomerPhone)
	if draft.CustomerEmail != "" {
		fmt.Fprintf(&sb, "Email: %s\n", draft.CustomerEmail)
	}
	fmt.Fprintf(&sb, "Delivery: %s\n", draft.DeliveryAddress)
	sb.WriteString(msgConfirmHint)
	return sb.String()
}

func message(text string) *models.ChatResponse {
	return &models.ChatResponse{Kind: models.ResponseMessage, Text: text}
}
