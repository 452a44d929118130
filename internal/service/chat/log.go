package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/zhouzirui/vetchat/internal/model/chat"
	"github.com/zhouzirui/vetchat/internal/model/document"
)

var (
	ErrUnknownSender   = errors.New("message sender must be user or bot")
	ErrMessageNotFound = errors.New("message not found")
)

// Log is the append-only record of one conversation. Insertion order is the
// only ordering it guarantees.
type Log struct {
	mu       sync.RWMutex
	messages []chat.Message
}

// NewLog returns an empty conversation log.
func NewLog() *Log {
	return &Log{messages: make([]chat.Message, 0, 16)}
}

// Append stores a copy of message, assigning its ID and creation time.
func (l *Log) Append(message chat.Message) (chat.Message, error) {
	if message.Sender != chat.SenderUser && message.Sender != chat.SenderBot {
		return chat.Message{}, ErrUnknownSender
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	if message.Document != nil {
		doc := *message.Document
		message.Document = &doc
	}

	l.mu.Lock()
	l.messages = append(l.messages, message)
	l.mu.Unlock()

	return message, nil
}

// AppendUser records a message typed by the user.
func (l *Log) AppendUser(text string) chat.Message {
	msg, _ := l.Append(chat.Message{Sender: chat.SenderUser, RawText: text})
	return msg
}

// AppendBot records a formatted bot reply.
func (l *Log) AppendBot(raw string, doc document.Document, advisory bool) chat.Message {
	msg, _ := l.Append(chat.Message{Sender: chat.SenderBot, RawText: raw, Document: &doc, Advisory: advisory})
	return msg
}

// Get looks a message up by ID.
func (l *Log) Get(id string) (chat.Message, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, msg := range l.messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return chat.Message{}, ErrMessageNotFound
}

// Messages returns the conversation in insertion order.
func (l *Log) Messages() []chat.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	copied := make([]chat.Message, len(l.messages))
	copy(copied, l.messages)
	return copied
}

// Len returns the number of messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
