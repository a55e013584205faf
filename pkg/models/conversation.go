package models

import "time"

// ConversationThread holds the locally persisted conversation with one
// assistant. ThreadID is the remote session handle; it is empty until the
// first remote thread-creation call succeeds and immutable afterwards.
type ConversationThread struct {
	AssistantID string    `json:"assistantId"`
	ThreadID    string    `json:"threadId"`
	Messages    []Message `json:"messages"`
}

// Empty reports whether the thread has no messages yet.
func (t ConversationThread) Empty() bool {
	return len(t.Messages) == 0
}

// ConversationHistory is the sole persisted aggregate: every assistant's
// thread, keyed by assistant id. It is serialized as a whole on every
// mutation and deserialized as a whole on load.
type ConversationHistory map[string]ConversationThread

// Snapshot is a frozen, append-only copy of a conversation. A snapshot is
// independent of ConversationHistory and is never synced back.
type Snapshot struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	AssistantID string    `json:"assistantId"`
	Messages    []Message `json:"messages"`
	SavedAt     time.Time `json:"savedAt"`
}
