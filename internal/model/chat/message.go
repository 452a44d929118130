package chat

import (
	"time"

	"github.com/zhouzirui/vetchat/internal/model/document"
)

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one entry of a conversation. Document is nil for user messages
// and set for bot messages once the raw text has been formatted.
type Message struct {
	ID        string             `json:"id"`
	Sender    Sender             `json:"sender"`
	RawText   string             `json:"rawText"`
	Document  *document.Document `json:"document,omitempty"`
	Advisory  bool               `json:"advisory,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}
