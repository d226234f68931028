package web

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/geminichat/internal/api"
	"github.com/diogo/geminichat/internal/chat"
	"github.com/diogo/geminichat/internal/models"
)

type testEnv struct {
	gen    *api.MockGenerator
	srv    *Server
	ts     *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T, results map[string]api.MockResult) *testEnv {
	t.Helper()
	gen := api.NewMockGenerator(results)
	srv := NewServer(func() *chat.Session {
		return chat.NewSession(chat.NewDispatcher(gen, chat.WithModels([]string{"m1", "m2"})))
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{gen: gen, srv: srv, ts: ts, client: &http.Client{Jar: jar}}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.Get(e.ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.ts.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (e *testEnv) ask(t *testing.T, question string) string {
	t.Helper()
	resp, body := e.post(t, "/ask", url.Values{"question": {question}})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	return body
}

// only session of the test client
func (e *testEnv) session(t *testing.T) *browserSession {
	t.Helper()
	e.srv.sessions.mu.Lock()
	defer e.srv.sessions.mu.Unlock()
	require.Len(t, e.srv.sessions.sessions, 1)
	for _, s := range e.srv.sessions.sessions {
		return s
	}
	return nil
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	resp, body := env.get(t, "/healthz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "ok", got["status"])
}

func TestIndexDoesNotStoreSessions(t *testing.T) {
	env := newTestEnv(t, nil)

	for i := 0; i < 20; i++ {
		resp, body := env.get(t, "/")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Gemini Chat")
		assert.Contains(t, body, "m1 → m2")
	}
	env.get(t, "/export.md")
	env.get(t, "/export.json")
	env.get(t, "/healthz")

	u, _ := url.Parse(env.ts.URL)
	assert.Empty(t, env.client.Jar.Cookies(u))
	assert.Equal(t, 0, env.srv.sessions.len())
}

func TestAskSetsSessionCookie(t *testing.T) {
	env := newTestEnv(t, map[string]api.MockResult{"m1": {Text: "answer"}})
	env.ask(t, "hello")

	u, _ := url.Parse(env.ts.URL)
	cookies := env.client.Jar.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)

	// same browser, same session
	body := env.ask(t, "again")
	assert.Equal(t, 1, env.srv.sessions.len())
	assert.Contains(t, body, "hello")
	assert.Contains(t, body, "again")
}

func TestAskRendersMessagesAsMarkup(t *testing.T) {
	env := newTestEnv(t, map[string]api.MockResult{"m1": {Text: "# Title\n**bold** and `code`"}})

	body := env.ask(t, "**x** question")

	assert.Contains(t, body, "<h1>Title</h1>")
	assert.Contains(t, body, "<strong>bold</strong>")
	assert.Contains(t, body, "<code>code</code>")
	assert.Contains(t, body, "<strong>x</strong> question")
	assert.Equal(t, "**x** question", env.gen.LastPrompt)
}

func TestAskFallsBackThroughModels(t *testing.T) {
	env := newTestEnv(t, map[string]api.MockResult{"m2": {Text: "from second"}})

	body := env.ask(t, "hi")

	assert.Contains(t, body, "from second")
	assert.Equal(t, []string{"m1", "m2"}, env.gen.CalledModels())
}

func TestAskAllModelsFail(t *testing.T) {
	env := newTestEnv(t, nil)

	body := env.ask(t, "hi")

	assert.Contains(t, body, models.ApologyText)
	msgs := env.session(t).chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.ApologyText, msgs[1].Text)
}

func TestAskBlankIsIgnored(t *testing.T) {
	env := newTestEnv(t, nil)

	env.ask(t, "   ")

	assert.Equal(t, 0, env.gen.CallCount())
	assert.Equal(t, 0, env.session(t).chat.Len())
}

func TestAskWhileBusyConflicts(t *testing.T) {
	env := newTestEnv(t, map[string]api.MockResult{"m1": {Text: "done"}})
	env.get(t, "/")

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	env.gen.Hook = func(ctx context.Context, model string) {
		once.Do(func() { close(started) })
		<-release
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		resp, err := env.client.PostForm(env.ts.URL+"/ask", url.Values{"question": {"first"}})
		if assert.NoError(t, err) {
			resp.Body.Close()
		}
	}()

	<-started
	resp, _ := env.post(t, "/ask", url.Values{"question": {"second"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = env.post(t, "/new", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	_, body := env.get(t, "/")
	assert.Contains(t, body, `class="loading"`)

	close(release)
	wg.Wait()

	msgs := env.session(t).chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "done", msgs[1].Text)
}

func TestEditFlow(t *testing.T) {
	env := newTestEnv(t, map[string]api.MockResult{"m1": {Text: "answer"}})
	env.ask(t, "q1")
	env.ask(t, "q2")

	resp, body := env.post(t, "/edit/0", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `class="edit-form"`)
	assert.Contains(t, body, ">q1</textarea>")
	assert.NotContains(t, body, `id="ask-form"`)

	// moving the edit to another user message
	resp, _ = env.post(t, "/edit/2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	idx, editing := env.session(t).chat.EditIndex()
	require.True(t, editing)
	assert.Equal(t, 2, idx)

	resp, _ = env.post(t, "/edit/cancel", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, editing = env.session(t).chat.EditIndex()
	assert.False(t, editing)

	env.post(t, "/edit/0", nil)
	env.ask(t, "q1 edited")

	msgs := env.session(t).chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "q1 edited", msgs[0].Text)
	assert.Equal(t, "answer", msgs[1].Text)
}

func TestEditRejectsBadTargets(t *testing.T) {
	env := newTestEnv(t, map[string]api.MockResult{"m1": {Text: "answer"}})
	env.ask(t, "q1")

	tests := []struct {
		path string
		want int
	}{
		{"/edit/1", http.StatusBadRequest},  // AI message
		{"/edit/9", http.StatusBadRequest},  // out of range
		{"/edit/-1", http.StatusBadRequest}, // negative
		{"/edit/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, _ := env.post(t, tt.path, nil)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestThemeToggle(t *testing.T) {
	env := newTestEnv(t, nil)

	_, body := env.get(t, "/")
	assert.NotContains(t, body, `<body class="dark">`)

	_, body = env.post(t, "/theme", nil)
	assert.Contains(t, body, `<body class="dark">`)

	_, body = env.post(t, "/theme", nil)
	assert.NotContains(t, body, `<body class="dark">`)
}

func TestDarkModeDefault(t *testing.T) {
	gen := api.NewMockGenerator(nil)
	srv := NewServer(func() *chat.Session {
		return chat.NewSession(chat.NewDispatcher(gen))
	}, WithDarkMode(true))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), `<body class="dark">`)
}

func TestNewChat(t *testing.T) {
	env := newTestEnv(t, map[string]api.MockResult{"m1": {Text: "answer"}})
	env.ask(t, "q1")

	resp, _ := env.post(t, "/new", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, env.session(t).chat.Len())
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, map[string]api.MockResult{"m1": {Text: "the answer"}})
	env.ask(t, "the question")

	resp, body := env.get(t, "/export.md")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".md")
	assert.Contains(t, body, "## You\n\nthe question")
	assert.Contains(t, body, "## AI\n\nthe answer")

	resp, body = env.get(t, "/export.json")
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var doc struct {
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	assert.Len(t, doc.Messages, 2)
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t, map[string]api.MockResult{"m1": {Text: "answer"}})
	env.ask(t, "private")

	other := &http.Client{}
	resp, err := other.Get(env.ts.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.NotContains(t, string(body), "private")
	assert.Equal(t, 1, env.srv.sessions.len())
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := NewServer(func() *chat.Session {
		return chat.NewSession(chat.NewDispatcher(api.NewMockGenerator(nil)))
	}, WithAddr("127.0.0.1:0"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewServerDefaults(t *testing.T) {
	srv := NewServer(nil)
	assert.Equal(t, DefaultAddr, srv.Addr())
	assert.Equal(t, "127.0.0.1:9000", NewServer(nil, WithAddr("127.0.0.1:9000")).Addr())
	assert.Equal(t, DefaultAddr, NewServer(nil, WithAddr("")).Addr())
	assert.True(t, strings.HasPrefix(attachment("md"), `attachment; filename="geminichat-`))
}
