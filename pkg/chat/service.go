// Package chat implements the intent-level conversation service: sending
// messages through the remote assistant, keyword-triggered document export,
// history management and snapshots. All state lives in the store and in the
// values passed through each handler; there are no ambient globals.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andrew/juris-chat/pkg/assistant"
	"github.com/andrew/juris-chat/pkg/export"
	"github.com/andrew/juris-chat/pkg/models"
	"github.com/andrew/juris-chat/pkg/registry"
)

const (
	// ExportKeyword routes a typed message to PDF export instead of the
	// remote assistant. A deliberate product shortcut, matched
	// case-insensitively as a literal substring.
	ExportKeyword = "DOCUMENTO"
	// StartMessage opens a conversation.
	StartMessage = "COMEÇAR"
	// fallbackReply is appended in place of an assistant answer when the
	// remote call or run fails.
	fallbackReply = "Desculpe, ocorreu um erro ao processar sua mensagem. Por favor, tente novamente."
)

// ConversationStore is the persistence surface the service needs.
type ConversationStore interface {
	Load(assistantID string) (models.ConversationThread, error)
	Save(assistantID string, thread models.ConversationThread) error
	Clear(assistantID string) error
	SaveSnapshot(snap models.Snapshot) error
	ListSnapshots() ([]models.Snapshot, error)
}

// Exporter renders a conversation to a PDF file and returns its path.
type Exporter interface {
	Export(a models.Assistant, messages []models.Message) (string, error)
}

// Service coordinates the store, the remote client and the exporters. One
// run at a time per assistant; callers serialize sends (the CLI loop blocks,
// the HTTP layer rejects concurrent sends).
type Service struct {
	reg    *registry.Registry
	store  ConversationStore
	client assistant.Client
	poller *assistant.Poller
	pdf    Exporter
	logger *slog.Logger
	now    func() time.Time

	clip  func(messages []models.Message) error
	share func(a models.Assistant, messages []models.Message) error
}

// NewService wires a conversation service.
func NewService(reg *registry.Registry, store ConversationStore, client assistant.Client, policy assistant.PollPolicy, pdf Exporter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		reg:    reg,
		store:  store,
		client: client,
		poller: assistant.NewPoller(client, policy, logger),
		pdf:    pdf,
		logger: logger,
		now:    time.Now,
		clip:   export.CopyToClipboard,
		share:  export.NewShareExporter().Share,
	}
}

// SendResult is the outcome of one send intent.
type SendResult struct {
	// Reply is the appended assistant message, the fallback error reply
	// when Failed is set, or zero when the send was intercepted for export.
	Reply models.Message
	// Failed reports that the remote call or run failed and the fallback
	// reply was appended instead of an answer.
	Failed bool
	// Exported reports that the message contained the export keyword and
	// was routed to PDF export instead of the remote assistant.
	Exported bool
	// ExportPath is the written document path when Exported is set.
	ExportPath string
}

// Send handles a typed user message for the given assistant. The user
// message is always appended and persisted first; the outcome is either an
// assistant reply, the fallback error reply, or a document export. The log
// is never left partially written.
func (s *Service) Send(ctx context.Context, assistantID, text string) (SendResult, error) {
	a, ok := s.reg.Get(assistantID)
	if !ok {
		return SendResult{}, fmt.Errorf("unknown assistant %q", assistantID)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return SendResult{}, fmt.Errorf("empty message")
	}

	thread, err := s.store.Load(assistantID)
	if err != nil {
		return SendResult{}, err
	}
	thread.Messages = append(thread.Messages, models.Message{
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: s.now(),
	})

	if strings.Contains(strings.ToUpper(text), ExportKeyword) {
		if err := s.store.Save(assistantID, thread); err != nil {
			return SendResult{}, err
		}
		path, err := s.pdf.Export(a, thread.Messages)
		if err != nil {
			return SendResult{Exported: true}, err
		}
		return SendResult{Exported: true, ExportPath: path}, nil
	}

	if err := s.store.Save(assistantID, thread); err != nil {
		return SendResult{}, err
	}

	reply, remoteErr := s.requestReply(ctx, a, &thread)
	if remoteErr != nil {
		s.logger.Error("send failed", "assistant", a.Name, "error", remoteErr)
		reply = models.Message{
			Role:      models.RoleAssistant,
			Content:   fallbackReply,
			Timestamp: s.now(),
		}
	}
	thread.Messages = append(thread.Messages, reply)
	if err := s.store.Save(assistantID, thread); err != nil {
		return SendResult{}, err
	}
	return SendResult{Reply: reply, Failed: remoteErr != nil}, nil
}

// requestReply runs the remote leg of a send: ensure a thread exists, post
// the user message, start a run and poll it to a terminal status. The thread
// id, once assigned, is persisted immediately and never changes.
func (s *Service) requestReply(ctx context.Context, a models.Assistant, thread *models.ConversationThread) (models.Message, error) {
	if thread.ThreadID == "" {
		id, err := s.client.CreateThread(ctx)
		if err != nil {
			return models.Message{}, err
		}
		thread.ThreadID = id
		if err := s.store.Save(a.ID, *thread); err != nil {
			return models.Message{}, err
		}
	}
	userText := thread.Messages[len(thread.Messages)-1].Content
	if err := s.client.PostMessage(ctx, thread.ThreadID, models.RoleUser, userText); err != nil {
		return models.Message{}, err
	}
	runID, err := s.client.StartRun(ctx, thread.ThreadID, a.ID)
	if err != nil {
		return models.Message{}, err
	}
	reply, err := s.poller.AwaitReply(ctx, thread.ThreadID, runID)
	if err != nil {
		return models.Message{}, err
	}
	if reply.Timestamp.IsZero() {
		reply.Timestamp = s.now()
	}
	return reply, nil
}

// Start opens a conversation by sending the start keyword.
func (s *Service) Start(ctx context.Context, assistantID string) (SendResult, error) {
	return s.Send(ctx, assistantID, StartMessage)
}

// History returns the stored conversation for the assistant.
func (s *Service) History(assistantID string) (models.ConversationThread, error) {
	if _, ok := s.reg.Get(assistantID); !ok {
		return models.ConversationThread{}, fmt.Errorf("unknown assistant %q", assistantID)
	}
	return s.store.Load(assistantID)
}

// Clear removes only this assistant's history; other assistants keep theirs.
func (s *Service) Clear(assistantID string) error {
	return s.store.Clear(assistantID)
}

// ExportPDF renders the stored conversation to a PDF file.
func (s *Service) ExportPDF(assistantID string) (string, error) {
	a, thread, err := s.loadForExport(assistantID)
	if err != nil {
		return "", err
	}
	return s.pdf.Export(a, thread.Messages)
}

// ExportClipboard copies the flattened conversation to the clipboard.
func (s *Service) ExportClipboard(assistantID string) error {
	_, thread, err := s.loadForExport(assistantID)
	if err != nil {
		return err
	}
	return s.clip(thread.Messages)
}

// ExportShare hands the flattened conversation to the OS opener.
func (s *Service) ExportShare(assistantID string) error {
	a, thread, err := s.loadForExport(assistantID)
	if err != nil {
		return err
	}
	return s.share(a, thread.Messages)
}

// SaveSnapshot stores a frozen copy of the current conversation. The title
// defaults to the assistant name and date.
func (s *Service) SaveSnapshot(assistantID, title string) (models.Snapshot, error) {
	a, thread, err := s.loadForExport(assistantID)
	if err != nil {
		return models.Snapshot{}, err
	}
	if title == "" {
		title = fmt.Sprintf("%s - %s", a.Name, s.now().Format("02/01/2006"))
	}
	snap := models.Snapshot{
		ID:          uuid.NewString(),
		Title:       title,
		AssistantID: a.ID,
		Messages:    append([]models.Message(nil), thread.Messages...),
		SavedAt:     s.now(),
	}
	if err := s.store.SaveSnapshot(snap); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

// Snapshots lists all saved snapshots.
func (s *Service) Snapshots() ([]models.Snapshot, error) {
	return s.store.ListSnapshots()
}

func (s *Service) loadForExport(assistantID string) (models.Assistant, models.ConversationThread, error) {
	a, ok := s.reg.Get(assistantID)
	if !ok {
		return models.Assistant{}, models.ConversationThread{}, fmt.Errorf("unknown assistant %q", assistantID)
	}
	thread, err := s.store.Load(assistantID)
	if err != nil {
		return models.Assistant{}, models.ConversationThread{}, err
	}
	if thread.Empty() {
		return models.Assistant{}, models.ConversationThread{}, export.ErrNothingToExport
	}
	return a, thread, nil
}
