package models

import "time"

// CheckoutState tracks where a session is in the collect-and-confirm dialogue.
type CheckoutState string

const (
	CheckoutNone           CheckoutState = ""
	CheckoutCollectName    CheckoutState = "collect_name"
	CheckoutCollectPhone   CheckoutState = "collect_phone"
	CheckoutCollectAddress CheckoutState = "collect_address"
	CheckoutCollectEmail   CheckoutState = "collect_email"
	CheckoutConfirm        CheckoutState = "confirm"
)

// PendingKind tags the single-slot memory of an unresolved sub-question.
type PendingKind string

const (
	PendingAmbiguity        PendingKind = "ambiguity"
	PendingStockNegotiation PendingKind = "stock_negotiation"
	PendingAwaitingQuantity PendingKind = "awaiting_quantity"
)

// PendingOrder remembers a sub-question the next turn must answer: pick one
// of several candidates, accept a reduced quantity, or supply a missing
// quantity. It is cleared after each resolution.
type PendingOrder struct {
	Kind       PendingKind        `json:"kind"`
	Query      string             `json:"query,omitempty"`
	Quantity   int                `json:"quantity,omitempty"`
	Candidates []CatalogCandidate `json:"candidates,omitempty"`
	Product    *CatalogCandidate  `json:"product,omitempty"`
	Requested  int                `json:"requested,omitempty"`
	Available  int                `json:"available,omitempty"`
}

// ChatMessage is one utterance in the session history.
type ChatMessage struct {
	Role string    `json:"role"` // "user" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// SessionContext is the mutable aggregate for one conversation. It is loaded
// from the session store at turn start and written back wholesale at turn
// end; concurrent turns on the same session id are last-write-wins.
type SessionContext struct {
	SessionID     string        `json:"sessionId"`
	Cart          []CartItem    `json:"cart"`
	CheckoutState CheckoutState `json:"checkoutState,omitempty"`
	OrderDraft    *OrderDraft   `json:"orderDraft,omitempty"`
	Pending       *PendingOrder `json:"pendingOrder,omitempty"`
	History       []ChatMessage `json:"chatHistory,omitempty"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// MaxHistoryMessages bounds the retained chat history per session.
const MaxHistoryMessages = 20

// AppendMessage records an utterance, trimming history to the retention bound.
func (s *SessionContext) AppendMessage(role, text string) {
	s.History = append(s.History, ChatMessage{Role: role, Text: text, At: time.Now()})
	if len(s.History) > MaxHistoryMessages {
		s.History = s.History[len(s.History)-MaxHistoryMessages:]
	}
}
