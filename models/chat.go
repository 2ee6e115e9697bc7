package models

// ChatRequest is the payload coming from the frontend into /api/chat.
type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

// Response kinds for one conversational turn.
const (
	ResponseMessage    = "message"
	ResponseOrderReady = "orderReady"
)

// ChatResponse is the assistant's reply for one turn. OrderDraft and OrderID
// are only set when Kind is "orderReady".
type ChatResponse struct {
	Kind       string      `json:"kind"`
	Text       string      `json:"text"`
	OrderID    string      `json:"orderId,omitempty"`
	OrderDraft *OrderDraft `json:"orderDraft,omitempty"`
}
