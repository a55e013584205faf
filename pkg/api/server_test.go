package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/andrew/juris-chat/pkg/assistant"
	"github.com/andrew/juris-chat/pkg/chat"
	"github.com/andrew/juris-chat/pkg/models"
	"github.com/andrew/juris-chat/pkg/registry"
	"github.com/andrew/juris-chat/pkg/store"
)

type stubRemote struct{}

func (stubRemote) CreateThread(ctx context.Context) (string, error) { return "thread_1", nil }

func (stubRemote) PostMessage(ctx context.Context, threadID string, role models.Role, text string) error {
	return nil
}

func (stubRemote) StartRun(ctx context.Context, threadID, assistantID string) (string, error) {
	return "run_1", nil
}

func (stubRemote) GetRunStatus(ctx context.Context, threadID, runID string) (models.RunState, error) {
	return models.RunState{RunID: runID, Status: models.RunStatusCompleted}, nil
}

func (stubRemote) ListLatestMessage(ctx context.Context, threadID string) (models.Message, error) {
	return models.Message{Role: models.RoleAssistant, Content: "Olá!", Timestamp: time.Now()}, nil
}

type stubExporter struct{}

func (stubExporter) Export(a models.Assistant, messages []models.Message) (string, error) {
	return "/tmp/conversa.pdf", nil
}

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	reg, err := registry.New(registry.Default())
	require.NoError(t, err)

	policy := assistant.PollPolicy{Interval: time.Millisecond, MaxWait: time.Second}
	svc := chat.NewService(reg, st, stubRemote{}, policy, stubExporter{}, logger)
	return NewServer(svc, reg, logger), registry.Default()[0].ID
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListAssistants(t *testing.T) {
	s, _ := testServer(t)
	w := doJSON(t, s.Router(), http.MethodGet, "/api/assistants", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Assistants []models.Assistant `json:"assistants"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Assistants, 9)
}

func TestSendMessageRoundTrip(t *testing.T) {
	s, id := testServer(t)
	r := s.Router()

	w := doJSON(t, r, http.MethodPost, "/api/conversations/"+id+"/messages", `{"message":"COMEÇAR"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Reply  models.Message `json:"reply"`
		Failed bool           `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Failed)
	require.Equal(t, "Olá!", resp.Reply.Content)

	w = doJSON(t, r, http.MethodGet, "/api/conversations/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	var thread models.ConversationThread
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &thread))
	require.Len(t, thread.Messages, 2)
}

func TestSendInterceptedForExportOmitsReply(t *testing.T) {
	s, id := testServer(t)
	w := doJSON(t, s.Router(), http.MethodPost, "/api/conversations/"+id+"/messages", `{"message":"Gere o DOCUMENTO final"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, true, resp["exported"])
	require.Equal(t, "/tmp/conversa.pdf", resp["exportPath"])
	require.NotContains(t, resp, "reply")
}

func TestSendMessageValidation(t *testing.T) {
	s, id := testServer(t)
	w := doJSON(t, s.Router(), http.MethodPost, "/api/conversations/"+id+"/messages", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClearConversation(t *testing.T) {
	s, id := testServer(t)
	r := s.Router()
	doJSON(t, r, http.MethodPost, "/api/conversations/"+id+"/messages", `{"message":"oi"}`)

	w := doJSON(t, r, http.MethodDelete, "/api/conversations/"+id, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/conversations/"+id, "")
	var thread models.ConversationThread
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &thread))
	require.Empty(t, thread.Messages)
}

func TestExportEmptyConversationConflicts(t *testing.T) {
	s, id := testServer(t)
	w := doJSON(t, s.Router(), http.MethodPost, "/api/conversations/"+id+"/export", `{"mode":"pdf"}`)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestSnapshotLifecycle(t *testing.T) {
	s, id := testServer(t)
	r := s.Router()
	doJSON(t, r, http.MethodPost, "/api/conversations/"+id+"/messages", `{"message":"oi"}`)

	w := doJSON(t, r, http.MethodPost, "/api/conversations/"+id+"/snapshots", `{"title":"minha conversa"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/snapshots", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Snapshots []models.Snapshot `json:"snapshots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Snapshots, 1)
	require.Equal(t, "minha conversa", resp.Snapshots[0].Title)
}
