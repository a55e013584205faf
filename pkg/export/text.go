package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/pkg/errors"
	"github.com/skratchdot/open-golang/open"

	"github.com/andrew/juris-chat/pkg/models"
)

// Flatten renders the message log as plain text, one block per message in
// chronological order: "[timestamp] role:\ntext\n".
func Flatten(messages []models.Message) string {
	var b strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&b, "[%s] %s:\n%s\n",
			m.Timestamp.Format("02/01/2006 15:04:05"), RoleLabel(m.Role), m.Content)
	}
	return b.String()
}

// CopyToClipboard writes the flattened conversation to the system clipboard.
func CopyToClipboard(messages []models.Message) error {
	if len(messages) == 0 {
		return ErrNothingToExport
	}
	if err := clipboard.WriteAll(Flatten(messages)); err != nil {
		return errors.Wrap(err, "failed to write clipboard")
	}
	return nil
}

// ShareExporter writes the flattened conversation to a text file and hands
// it to the OS opener, the desktop analog of a share sheet. Failure is a
// notice for the user, never fatal.
type ShareExporter struct {
	// Dir is where the share file is written.
	Dir string
	// Now is the clock used for the file name. Fixed in tests.
	Now func() time.Time

	// openFile is swapped out in tests.
	openFile func(path string) error
}

// NewShareExporter creates an exporter writing into the system temp dir.
func NewShareExporter() *ShareExporter {
	return &ShareExporter{Dir: os.TempDir(), Now: time.Now, openFile: open.Run}
}

// Share exports the conversation to the OS opener.
func (e *ShareExporter) Share(a models.Assistant, messages []models.Message) error {
	if len(messages) == 0 {
		return ErrNothingToExport
	}
	name := fmt.Sprintf("Conversa com %s - %s.txt", a.Name, e.Now().Format("02-01-2006"))
	path := filepath.Join(e.Dir, name)
	if err := os.WriteFile(path, []byte(Flatten(messages)), 0o644); err != nil {
		return errors.Wrap(err, "failed to write share file")
	}
	if err := e.openFile(path); err != nil {
		return errors.Wrap(err, "failed to open share file")
	}
	return nil
}
