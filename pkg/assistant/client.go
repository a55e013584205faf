// Package assistant wraps the hosted threads/runs API of the remote
// assistant service and drives its asynchronous runs to completion.
package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrew/juris-chat/pkg/models"
)

var (
	// ErrRemoteUnavailable marks any network or HTTP failure talking to the
	// assistant service. Callers must not assume partial success.
	ErrRemoteUnavailable = errors.New("assistant service unavailable")
	// ErrInvalidThread marks a thread id the remote no longer recognizes.
	ErrInvalidThread = errors.New("unknown thread")
	// ErrNoAssistantReply is returned when the latest thread message is not
	// an assistant message.
	ErrNoAssistantReply = errors.New("no assistant message found")
)

// RunError is the terminal non-success outcome of a run.
type RunError struct {
	RunID  string
	Status models.RunStatus
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %s ended with status %s", e.RunID, e.Status)
}

// Client is the interface to the remote conversation service. Every call is
// a blocking request/response with no local side effects.
type Client interface {
	// CreateThread creates a remote conversation session and returns its id.
	CreateThread(ctx context.Context) (string, error)
	// PostMessage appends a message to the remote thread.
	PostMessage(ctx context.Context, threadID string, role models.Role, text string) error
	// StartRun launches an asynchronous assistant invocation on the thread.
	StartRun(ctx context.Context, threadID, assistantID string) (string, error)
	// GetRunStatus retrieves the current state of a run.
	GetRunStatus(ctx context.Context, threadID, runID string) (models.RunState, error)
	// ListLatestMessage returns the newest message on the thread.
	ListLatestMessage(ctx context.Context, threadID string) (models.Message, error)
}
