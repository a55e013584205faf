package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andrew/juris-chat/pkg/models"
)

func TestFlattenFormat(t *testing.T) {
	msgs := []models.Message{
		{
			Role:      models.RoleUser,
			Content:   "COMEÇAR",
			Timestamp: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			Role:      models.RoleAssistant,
			Content:   "Olá! Como posso ajudar?",
			Timestamp: time.Date(2024, 5, 10, 9, 0, 5, 0, time.UTC),
		},
	}

	want := "[10/05/2024 09:00:00] Você:\nCOMEÇAR\n" +
		"[10/05/2024 09:00:05] Assistente:\nOlá! Como posso ajudar?\n"
	require.Equal(t, want, Flatten(msgs))
}

func TestFlattenEmpty(t *testing.T) {
	require.Empty(t, Flatten(nil))
}

func TestCopyToClipboardRequiresMessages(t *testing.T) {
	require.ErrorIs(t, CopyToClipboard(nil), ErrNothingToExport)
}

func TestShareRequiresMessages(t *testing.T) {
	e := NewShareExporter()
	require.ErrorIs(t, e.Share(models.Assistant{Name: "Google Ads"}, nil), ErrNothingToExport)
}

func TestShareWritesNamedFileAndOpensIt(t *testing.T) {
	dir := t.TempDir()
	e := NewShareExporter()
	e.Dir = dir
	e.Now = func() time.Time { return time.Date(2024, 5, 10, 15, 4, 5, 0, time.UTC) }
	var opened string
	e.openFile = func(path string) error {
		opened = path
		return nil
	}

	msgs := []models.Message{
		{
			Role:      models.RoleUser,
			Content:   "oi",
			Timestamp: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, e.Share(models.Assistant{Name: "Google Ads"}, msgs))

	want := filepath.Join(dir, "Conversa com Google Ads - 10-05-2024.txt")
	require.Equal(t, want, opened)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	require.Equal(t, Flatten(msgs), string(data))
}

func TestShareReportsOpenerFailure(t *testing.T) {
	e := NewShareExporter()
	e.Dir = t.TempDir()
	e.openFile = func(string) error { return errors.New("no handler") }

	err := e.Share(models.Assistant{Name: "Google Ads"}, []models.Message{
		{Role: models.RoleUser, Content: "oi", Timestamp: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)},
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNothingToExport)
}
