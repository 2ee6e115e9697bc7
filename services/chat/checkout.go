package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"pharmachat/models"

	"github.com/google/uuid"
)

// knownCities is the city list used for best-effort delivery city extraction.
var knownCities = []string{
	"karachi", "lahore", "islamabad", "rawalpindi", "faisalabad", "multan",
	"peshawar", "quetta", "hyderabad", "sialkot", "gujranwala", "sukkur",
	"bahawalpur", "sargodha", "abbottabad",
}

var (
	cancelRe = regexp.MustCompile(`\b(?:cancel|stop|abort|forget it|never ?mind)\b`)
	phoneRe  = regexp.MustCompile(`[\d][\d\s\-().+]{8,}`)
	emailRe  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	digitRe  = regexp.MustCompile(`\d`)
)

func isCancel(lower string) bool {
	return cancelRe.MatchString(lower)
}

// startCheckout snapshots the cart into an order draft and begins collecting
// customer details.
func (s *DefaultChatService) startCheckout(sess *models.SessionContext) (*models.ChatResponse, error) {
	if len(sess.Cart) == 0 {
		return message(msgCartEmpty), nil
	}
	sess.OrderDraft = &models.OrderDraft{
		Items: append([]models.CartItem(nil), sess.Cart...),
	}
	sess.CheckoutState = models.CheckoutCollectName
	sess.Pending = nil
	return message(formatCart(sess.Cart) + "\n\n" + msgAskName), nil
}

// handleCheckout advances the collect-and-confirm dialogue by one turn.
// Invalid input re-prompts in place; cancel clears everything from any state.
func (s *DefaultChatService) handleCheckout(ctx context.Context, sess *models.SessionContext, text string) (*models.ChatResponse, error) {
	lower := strings.ToLower(strings.TrimSpace(text))

	if isCancel(lower) {
		sess.Cart = nil
		sess.OrderDraft = nil
		sess.CheckoutState = models.CheckoutNone
		sess.Pending = nil
		return message(msgCheckoutCancelled), nil
	}
	if isCartInspection(lower) {
		return message(formatCart(sess.Cart)), nil
	}
	if sess.OrderDraft == nil {
		// State without a draft should not happen; recover instead of panicking.
		sess.CheckoutState = models.CheckoutNone
		return s.startCheckout(sess)
	}

	switch sess.CheckoutState {
	case models.CheckoutCollectName:
		return s.collectName(sess, text), nil
	case models.CheckoutCollectPhone:
		return s.collectPhone(sess, text), nil
	case models.CheckoutCollectAddress:
		return s.collectAddress(sess, text), nil
	case models.CheckoutCollectEmail:
		return s.collectEmail(sess, lower, text), nil
	case models.CheckoutConfirm:
		return s.confirmOrder(ctx, sess, lower)
	default:
		sess.CheckoutState = models.CheckoutNone
		return message("Let's start over — say \"checkout\" when you're ready."), nil
	}
}

func (s *DefaultChatService) collectName(sess *models.SessionContext, text string) *models.ChatResponse {
	phone := extractPhone(text)
	name := strings.TrimSpace(text)
	if phone != "" {
		name = strings.TrimSpace(strings.Replace(name, phoneRe.FindString(text), "", 1))
		name = strings.Trim(name, ",-– ")
	}

	if len(name) < 2 || len(name) > 100 || !digitFreeEnough(name) {
		return message(msgInvalidName)
	}

	sess.OrderDraft.CustomerName = name
	if phone != "" {
		// Same turn carried a phone number; skip straight to the address.
		sess.OrderDraft.CustomerPhone = phone
		sess.CheckoutState = models.CheckoutCollectAddress
		return message(msgAskAddress)
	}
	sess.CheckoutState = models.CheckoutCollectPhone
	return message(msgAskPhone)
}

func (s *DefaultChatService) collectPhone(sess *models.SessionContext, text string) *models.ChatResponse {
	phone := extractPhone(text)
	if phone == "" {
		return message(msgInvalidPhone)
	}
	sess.OrderDraft.CustomerPhone = phone
	sess.CheckoutState = models.CheckoutCollectAddress
	return message(msgAskAddress)
}

func (s *DefaultChatService) collectAddress(sess *models.SessionContext, text string) *models.ChatResponse {
	address := strings.TrimSpace(text)
	if len(address) < 10 {
		return message(msgInvalidAddress)
	}
	sess.OrderDraft.DeliveryAddress = address
	sess.OrderDraft.DeliveryCity = extractCity(address)
	sess.CheckoutState = models.CheckoutCollectEmail
	return message(msgAskEmail)
}

func (s *DefaultChatService) collectEmail(sess *models.SessionContext, lower, text string) *models.ChatResponse {
	switch {
	case lower == "skip" || lower == "no" || lower == "none" || strings.Contains(lower, "confirm"):
		// Email stays empty.
	case emailRe.MatchString(strings.TrimSpace(text)):
		sess.OrderDraft.CustomerEmail = strings.TrimSpace(text)
	default:
		return message(msgInvalidEmail)
	}
	// The cart may have changed since checkout started (items added mid-flow).
	sess.OrderDraft.Items = append([]models.CartItem(nil), sess.Cart...)
	sess.CheckoutState = models.CheckoutConfirm
	return message(formatOrderSummary(sess.OrderDraft))
}

// confirmOrder re-validates stock for every line before handing the draft to
// the order store; any shortage aborts the whole submission.
func (s *DefaultChatService) confirmOrder(ctx context.Context, sess *models.SessionContext, lower string) (*models.ChatResponse, error) {
	if isNegative(lower) || strings.Contains(lower, "restart") {
		sess.CheckoutState = models.CheckoutNone
		sess.OrderDraft = nil
		return message("Okay, I won't place the order. Your cart is unchanged — say \"checkout\" whenever you're ready."), nil
	}
	if !isAffirmative(lower) {
		return message(msgConfirmHint), nil
	}

	if len(sess.Cart) == 0 {
		sess.CheckoutState = models.CheckoutNone
		sess.OrderDraft = nil
		return message(msgCartEmpty), nil
	}
	sess.OrderDraft.Items = append([]models.CartItem(nil), sess.Cart...)

	shortage, err := s.stockShortage(sess.OrderDraft)
	if err != nil {
		// Upstream failure, not a shortage. Keep the draft and state so a
		// later "yes" retries the submission.
		return message(msgOrderFailed), nil
	}
	if shortage != "" {
		sess.CheckoutState = models.CheckoutNone
		return message(shortage), nil
	}

	order := &models.Order{
		ID:        uuid.NewString(),
		SessionID: sess.SessionID,
		Draft:     *sess.OrderDraft,
		Total:     sess.OrderDraft.Total(),
		Status:    "submitted",
		CreatedAt: time.Now(),
	}
	if err := s.Orders.Create(order); err != nil {
		// Draft and cart survive a submission failure so the user can retry.
		return message(msgOrderFailed), nil
	}

	draft := sess.OrderDraft
	sess.Cart = nil
	sess.OrderDraft = nil
	sess.CheckoutState = models.CheckoutNone
	sess.Pending = nil

	return &models.ChatResponse{
		Kind:       models.ResponseOrderReady,
		Text:       fmt.Sprintf("Thank you %s! Your order has been placed. Order ID: %s. Total: Rs. %.2f.", draft.CustomerName, order.ID, order.Total),
		OrderID:    order.ID,
		OrderDraft: draft,
	}, nil
}

// stockShortage returns a message naming the first draft line live stock can
// no longer cover, or "" when everything is available. A non-nil error means
// the catalog could not be consulted, not that stock ran out.
func (s *DefaultChatService) stockShortage(draft *models.OrderDraft) (string, error) {
	ids := make([]string, 0, len(draft.Items))
	for _, item := range draft.Items {
		ids = append(ids, item.ProductID)
	}
	live, err := s.Catalog.GetLive(ids)
	if err != nil {
		return "", err
	}
	byID := make(map[string]models.LiveProductInfo, len(live))
	for _, info := range live {
		byID[info.ID] = info
	}
	for _, item := range draft.Items {
		info, ok := byID[item.ProductID]
		if !ok || info.Stock < item.Quantity || info.Status == "out_of_stock" || info.Status == "discontinued" {
			return fmt.Sprintf("Sorry, %s no longer has enough stock to cover your order (%d requested). I've stopped the checkout — please adjust your cart and try again.",
				item.ProductName, item.Quantity), nil
		}
	}
	return "", nil
}

// extractPhone pulls a 10-15 digit phone number out of free text, tolerating
// separators.
func extractPhone(text string) string {
	for _, raw := range phoneRe.FindAllString(text, -1) {
		var digits strings.Builder
		for _, r := range raw {
			if r >= '0' && r <= '9' {
				digits.WriteRune(r)
			}
		}
		if n := digits.Len(); n >= 10 && n <= 15 {
			return digits.String()
		}
	}
	return ""
}

// extractCity finds a known city mentioned in the address, if any.
func extractCity(address string) string {
	lower := strings.ToLower(address)
	for _, city := range knownCities {
		if strings.Contains(lower, city) {
			return strings.ToUpper(city[:1]) + city[1:]
		}
	}
	return ""
}

// digitFreeEnough rejects "names" that are mostly digits.
func digitFreeEnough(name string) bool {
	digits := len(digitRe.FindAllString(name, -1))
	return digits*2 < len(name)
}
