package chat

import (
	"context"
	"strings"
	"sync"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
)

// Session is one chat: history, the active edit and the in-flight flag.
// It is safe for concurrent use; at most one request runs at a time.
type Session struct {
	mu         sync.Mutex
	conv       *Conversation
	dispatcher *Dispatcher
	editIndex  int
	busy       bool
}

// NewSession creates an empty session over dispatcher
func NewSession(dispatcher *Dispatcher) *Session {
	return &Session{
		conv:       NewConversation(),
		dispatcher: dispatcher,
		editIndex:  -1,
	}
}

// Messages returns a copy of the history
func (s *Session) Messages() []models.Message {
	return s.conv.Messages()
}

// Len returns the number of messages
func (s *Session) Len() int {
	return s.conv.Len()
}

// Busy reports whether a request is in flight
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// EditIndex returns the message being edited, if any
func (s *Session) EditIndex() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editIndex, s.editIndex >= 0
}

// BeginEdit marks user message i as being edited and returns its text.
// Starting an edit on another message while one is active is rejected.
func (s *Session) BeginEdit(i int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return "", apierrors.ErrRequestInFlight
	}
	if s.editIndex >= 0 && s.editIndex != i {
		return "", apierrors.ErrEditActive
	}
	msg, err := s.conv.At(i)
	if err != nil {
		return "", err
	}
	if !msg.IsUser() {
		return "", apierrors.ErrNotUserMessage
	}
	s.editIndex = i
	return msg.Text, nil
}

// CancelEdit leaves edit mode without changing the history
func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editIndex = -1
}

// Reset clears the history and edit state. It fails while a request runs.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return apierrors.ErrRequestInFlight
	}
	s.conv.Clear()
	s.editIndex = -1
	return nil
}

// Turn is a submitted user message waiting for its reply
type Turn struct {
	session *Session
	Index   int // index of the user message
	Prompt  string
	Edited  bool
	done    bool
}

// Prepare validates text and records the user message. With an active edit
// the edited message is replaced and the history truncated after it.
// The session stays busy until the returned Turn is resolved.
func (s *Session) Prepare(text string) (*Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apierrors.ErrEmptyPrompt
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return nil, apierrors.ErrRequestInFlight
	}

	msg := models.UserMessage(text)
	turn := &Turn{session: s, Prompt: text}

	if s.editIndex >= 0 {
		if err := s.conv.ReplaceAndTruncate(s.editIndex, msg); err != nil {
			s.editIndex = -1
			return nil, err
		}
		turn.Index = s.editIndex
		turn.Edited = true
		s.editIndex = -1
	} else {
		s.conv.Append(msg)
		turn.Index = s.conv.Len() - 1
	}

	s.busy = true
	return turn, nil
}

// Resolve runs the dispatch and appends exactly one AI message.
// Calling it twice returns the zero values the second time.
func (t *Turn) Resolve(ctx context.Context) (models.Message, Result) {
	s := t.session

	s.mu.Lock()
	if t.done {
		s.mu.Unlock()
		return models.Message{}, Result{}
	}
	t.done = true
	s.mu.Unlock()

	result := s.dispatcher.Dispatch(ctx, t.Prompt)
	reply := models.AIMessage(result.Text)

	s.mu.Lock()
	s.conv.Append(reply)
	s.busy = false
	s.mu.Unlock()

	return reply, result
}

// Submit prepares and resolves text in one call
func (s *Session) Submit(ctx context.Context, text string) (models.Message, Result, error) {
	turn, err := s.Prepare(text)
	if err != nil {
		return models.Message{}, Result{}, err
	}
	reply, result := turn.Resolve(ctx)
	return reply, result, nil
}

// Dispatcher returns the dispatcher used by the session
func (s *Session) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// PrevUserIndex returns the latest user message before index before, or -1.
// A negative before searches from the end.
func (s *Session) PrevUserIndex(before int) int {
	return s.conv.PrevIndex(models.RoleUser, before)
}

// LastReply returns the latest AI message, if any
func (s *Session) LastReply() (models.Message, bool) {
	i := s.conv.LastIndex(models.RoleAI)
	if i < 0 {
		return models.Message{}, false
	}
	msg, err := s.conv.At(i)
	return msg, err == nil
}
