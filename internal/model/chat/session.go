package chat

import "time"

// Session captures one anonymous widget conversation.
type Session struct {
	ID        string    `json:"id"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"createdAt"`
}
