package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/medifinder/chat/internal/chat/models"
	"github.com/medifinder/chat/internal/events"
	"github.com/medifinder/chat/internal/session"
	"github.com/medifinder/chat/internal/transcript"
)

// MockRunner implements session.TurnRunner for testing
type MockRunner struct {
	RunTurnFunc func(ctx context.Context, store *transcript.Store, userText string, em *events.Emitter) error
}

func (m *MockRunner) RunTurn(ctx context.Context, store *transcript.Store, userText string, em *events.Emitter) error {
	if m.RunTurnFunc != nil {
		return m.RunTurnFunc(ctx, store, userText, em)
	}
	return nil
}

// MockHealth implements HealthChecker for testing
type MockHealth struct {
	ToolNamesFunc func() []string
	PingFunc      func(ctx context.Context) error
}

func (m *MockHealth) ToolNames() []string {
	if m.ToolNamesFunc != nil {
		return m.ToolNamesFunc()
	}
	return nil
}

func (m *MockHealth) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(runner session.TurnRunner, health HealthChecker) (*Server, *session.Manager) {
	logger := newTestLogger()
	manager := session.NewManager(runner, logger)
	if health == nil {
		health = &MockHealth{}
	}
	return NewServer(manager, health, logger), manager
}

// parseSSE decodes the data lines of an SSE body.
func parseSSE(t *testing.T, body string) []wireEvent {
	t.Helper()

	var out []wireEvent
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev wireEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		out = append(out, ev)
	}
	return out
}

func postChat(srv *Server, message string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message": "`+message+`"}`))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestChatStreamsTurnEvents(t *testing.T) {
	runner := &MockRunner{
		RunTurnFunc: func(ctx context.Context, store *transcript.Store, userText string, em *events.Emitter) error {
			em.Emit(events.ChunkEvent{Text: "Déjame buscar."})
			em.Emit(events.ToolUseEvent{ID: "use-1", Name: "searchMedication", Arguments: map[string]any{"medication": "ibuprofeno"}})
			em.Emit(events.ToolResultEvent{ID: "use-1", Name: "searchMedication", Result: "{}"})
			em.Emit(events.ChunkEvent{Text: "Hay stock."})
			return nil
		},
	}
	srv, _ := newTestServer(runner, nil)

	rec := postChat(srv, "¿hay ibuprofeno?", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Result().Cookies(), "first request must set the session cookie")

	evts := parseSSE(t, rec.Body.String())
	var types []string
	for _, ev := range evts {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []string{"start", "chunk", "tool_use", "tool_result", "chunk", "end"}, types)
	assert.Equal(t, "use-1", evts[2].ID)
	assert.Equal(t, "searchMedication", evts[2].Name)
}

func TestChatEndEventCarriesError(t *testing.T) {
	runner := &MockRunner{
		RunTurnFunc: func(ctx context.Context, store *transcript.Store, userText string, em *events.Emitter) error {
			return errors.New("provider down")
		},
	}
	srv, _ := newTestServer(runner, nil)

	rec := postChat(srv, "hola", nil)

	evts := parseSSE(t, rec.Body.String())
	last := evts[len(evts)-1]
	assert.Equal(t, "end", last.Type)
	assert.Contains(t, last.Error, "provider down")
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	srv, _ := newTestServer(&MockRunner{}, nil)

	rec := postChat(srv, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRejectsWhitespaceOnlyMessage(t *testing.T) {
	srv, _ := newTestServer(&MockRunner{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message": "   \n\t "}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatTrimsMessageBeforeTurn(t *testing.T) {
	var got string
	runner := &MockRunner{
		RunTurnFunc: func(ctx context.Context, store *transcript.Store, userText string, em *events.Emitter) error {
			got = userText
			return nil
		},
	}
	srv, _ := newTestServer(runner, nil)

	postChat(srv, "  hola  ", nil)
	assert.Equal(t, "hola", got)
}

func TestChatRejectsInvalidBody(t *testing.T) {
	srv, _ := newTestServer(&MockRunner{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatConflictWhileTurnActive(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	runner := &MockRunner{
		RunTurnFunc: func(ctx context.Context, store *transcript.Store, userText string, em *events.Emitter) error {
			close(started)
			<-release
			return nil
		},
	}
	srv, manager := newTestServer(runner, nil)

	sess := manager.Create()
	cookie := &http.Cookie{Name: "medifinder_session", Value: sess.ID()}

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- postChat(srv, "primera", cookie)
	}()
	<-started

	rec := postChat(srv, "segunda", cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(release)
	select {
	case first := <-done:
		assert.Equal(t, http.StatusOK, first.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("first request did not finish")
	}
}

func TestChatReusesSessionFromCookie(t *testing.T) {
	var stores []*transcript.Store
	runner := &MockRunner{
		RunTurnFunc: func(ctx context.Context, store *transcript.Store, userText string, em *events.Emitter) error {
			stores = append(stores, store)
			return nil
		},
	}
	srv, manager := newTestServer(runner, nil)

	sess := manager.Create()
	cookie := &http.Cookie{Name: "medifinder_session", Value: sess.ID()}

	postChat(srv, "primera", cookie)
	postChat(srv, "segunda", cookie)

	require.Len(t, stores, 2)
	assert.Same(t, stores[0], stores[1], "same cookie must reuse the same transcript")
}

func TestResetReturnsOK(t *testing.T) {
	srv, _ := newTestServer(&MockRunner{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/reset", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestResetConflictWhileTurnActive(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	runner := &MockRunner{
		RunTurnFunc: func(ctx context.Context, store *transcript.Store, userText string, em *events.Emitter) error {
			close(started)
			<-release
			return nil
		},
	}
	srv, manager := newTestServer(runner, nil)

	sess := manager.Create()
	cookie := &http.Cookie{Name: "medifinder_session", Value: sess.ID()}

	done := make(chan struct{})
	go func() {
		postChat(srv, "hola", cookie)
		close(done)
	}()
	<-started

	req := httptest.NewRequest(http.MethodPost, "/api/reset", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(release)
	<-done
}

func TestHealthReportsTools(t *testing.T) {
	health := &MockHealth{
		ToolNamesFunc: func() []string { return []string{"searchMedication"} },
	}
	srv, _ := newTestServer(&MockRunner{}, health)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		App   string   `json:"app"`
		MCP   string   `json:"mcp"`
		Tools []string `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.App)
	assert.Equal(t, "ok", resp.MCP)
	assert.Equal(t, []string{"searchMedication"}, resp.Tools)
}

func TestHealthReportsMCPFailure(t *testing.T) {
	health := &MockHealth{
		PingFunc: func(ctx context.Context) error { return errors.New("connection refused") },
	}
	srv, _ := newTestServer(&MockRunner{}, health)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var resp struct {
		App      string `json:"app"`
		MCP      string `json:"mcp"`
		MCPError string `json:"mcp_error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.App)
	assert.Equal(t, "error", resp.MCP)
	assert.Contains(t, resp.MCPError, "connection refused")
}

func TestToWireToolError(t *testing.T) {
	ev := toWire(events.ToolErrorEvent{
		ID:   "use-1",
		Name: "searchMedication",
		Err:  &chat.ToolError{Kind: chat.ToolErrorKindTimeout, Message: "deadline exceeded"},
	})
	assert.Equal(t, "tool_error", ev.Type)
	assert.Equal(t, "deadline exceeded", ev.Error)
}
