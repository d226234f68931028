package web

import (
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/diogo/geminichat/internal/chat"
)

const cookieName = "geminichat_session"

// browserSession is the state kept for one browser
type browserSession struct {
	chat *chat.Session

	mu   sync.Mutex
	dark bool
}

func (b *browserSession) Dark() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dark
}

func (b *browserSession) toggleDark() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dark = !b.dark
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*browserSession
	factory  SessionFactory
	dark     bool
}

func newSessionStore(factory SessionFactory) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*browserSession),
		factory:  factory,
	}
}

// peek returns the session named by the request cookie. Without one it
// returns an empty session that is not stored, so read-only requests never
// grow the store.
func (st *sessionStore) peek(r *http.Request) *browserSession {
	st.mu.Lock()
	defer st.mu.Unlock()

	if c, err := r.Cookie(cookieName); err == nil {
		if sess, ok := st.sessions[c.Value]; ok {
			return sess
		}
	}
	return &browserSession{chat: st.factory(), dark: st.dark}
}

// get returns the session named by the request cookie, creating one (and
// setting the cookie) when it is missing or unknown.
func (st *sessionStore) get(w http.ResponseWriter, r *http.Request) *browserSession {
	st.mu.Lock()
	defer st.mu.Unlock()

	if c, err := r.Cookie(cookieName); err == nil {
		if sess, ok := st.sessions[c.Value]; ok {
			return sess
		}
	}

	id := uuid.NewString()
	sess := &browserSession{chat: st.factory(), dark: st.dark}
	st.sessions[id] = sess

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
