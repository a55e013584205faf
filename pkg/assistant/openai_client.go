package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/andrew/juris-chat/pkg/models"
)

// OpenAIClient implements Client against the OpenAI Assistants API.
type OpenAIClient struct {
	api *openai.Client
}

// NewOpenAIClient creates a client authenticated with the given static
// bearer credential.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{api: openai.NewClient(apiKey)}
}

// CreateThread creates an empty remote thread.
func (c *OpenAIClient) CreateThread(ctx context.Context) (string, error) {
	thread, err := c.api.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", remoteErr("failed to create thread", err)
	}
	return thread.ID, nil
}

// PostMessage appends a message to the remote thread.
func (c *OpenAIClient) PostMessage(ctx context.Context, threadID string, role models.Role, text string) error {
	_, err := c.api.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    string(role),
		Content: text,
	})
	if err != nil {
		return remoteErr("failed to post message", err)
	}
	return nil
}

// StartRun launches a run of the assistant against the thread.
func (c *OpenAIClient) StartRun(ctx context.Context, threadID, assistantID string) (string, error) {
	run, err := c.api.CreateRun(ctx, threadID, openai.RunRequest{AssistantID: assistantID})
	if err != nil {
		return "", remoteErr("failed to start run", err)
	}
	return run.ID, nil
}

// GetRunStatus retrieves the current run state.
func (c *OpenAIClient) GetRunStatus(ctx context.Context, threadID, runID string) (models.RunState, error) {
	run, err := c.api.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return models.RunState{}, remoteErr("failed to retrieve run", err)
	}
	return models.RunState{RunID: run.ID, Status: models.RunStatus(run.Status)}, nil
}

// ListLatestMessage returns the newest message on the thread. The remote
// lists messages newest-first; only the first entry is requested.
func (c *OpenAIClient) ListLatestMessage(ctx context.Context, threadID string) (models.Message, error) {
	limit := 1
	list, err := c.api.ListMessage(ctx, threadID, &limit, nil, nil, nil, nil)
	if err != nil {
		return models.Message{}, remoteErr("failed to list messages", err)
	}
	if len(list.Messages) == 0 {
		return models.Message{}, ErrNoAssistantReply
	}
	latest := list.Messages[0]
	if models.Role(latest.Role) != models.RoleAssistant {
		return models.Message{}, ErrNoAssistantReply
	}
	text, err := textContent(latest)
	if err != nil {
		return models.Message{}, err
	}
	return models.Message{
		Role:      models.RoleAssistant,
		Content:   text,
		Timestamp: time.Unix(int64(latest.CreatedAt), 0),
	}, nil
}

// remoteErr maps a transport error onto the package taxonomy. A 404 means
// the thread id is unknown to the remote; everything else is unavailability.
func remoteErr(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, ErrInvalidThread)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrRemoteUnavailable, err)
}
