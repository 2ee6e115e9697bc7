package chat

import "fmt"

type ChatError struct {
	Code    string
	Message string
}

func (e *ChatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewUpstreamError(msg string) error {
	return &ChatError{
		Code:    "upstreamError",
		Message: msg,
	}
}
