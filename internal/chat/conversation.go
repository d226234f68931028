// Package chat holds the conversation store, the model fallback dispatcher
// and the session that ties them together for every front end.
package chat

import (
	"sync"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
)

// Conversation is the ordered message history; insertion order is display order.
type Conversation struct {
	mu       sync.RWMutex
	messages []models.Message
}

// NewConversation creates an empty conversation
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds msg at the end of the history
func (c *Conversation) Append(msg models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

// Messages returns a copy of the history
func (c *Conversation) Messages() []models.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// At returns message i
func (c *Conversation) At(i int) (models.Message, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.messages) {
		return models.Message{}, apierrors.ErrInvalidEditIndex
	}
	return c.messages[i], nil
}

// Len returns the number of messages
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// ReplaceAndTruncate replaces message i with msg and drops everything after it.
// Afterwards Len() == i+1.
func (c *Conversation) ReplaceAndTruncate(i int, msg models.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.messages) {
		return apierrors.ErrInvalidEditIndex
	}
	c.messages[i] = msg
	// clear the tail so dropped messages are not retained by the backing array
	for j := i + 1; j < len(c.messages); j++ {
		c.messages[j] = models.Message{}
	}
	c.messages = c.messages[:i+1]
	return nil
}

// LastIndex returns the index of the latest message with role, or -1
func (c *Conversation) LastIndex(role models.Role) int {
	return c.PrevIndex(role, -1)
}

// PrevIndex returns the index of the latest message with role strictly before
// before, or -1. A negative before searches from the end.
func (c *Conversation) PrevIndex(role models.Role, before int) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	start := len(c.messages) - 1
	if before >= 0 && before-1 < start {
		start = before - 1
	}
	for i := start; i >= 0; i-- {
		if c.messages[i].Role == role {
			return i
		}
	}
	return -1
}

// Clear removes every message
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}
