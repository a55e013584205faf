package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andrew/juris-chat/pkg/models"
)

// chunkSplitter wraps text into lines of at most 10 runes, a stand-in for
// the font-metric splitter of the PDF backend.
func chunkSplitter(text string, _ float64) []string {
	runes := []rune(text)
	var lines []string
	for len(runes) > 0 {
		n := 10
		if len(runes) < n {
			n = len(runes)
		}
		lines = append(lines, string(runes[:n]))
		runes = runes[n:]
	}
	return lines
}

func testLayout() Layout {
	return Layout{
		PageHeight:   100,
		TopMargin:    10,
		BottomMargin: 10,
		LeftMargin:   20,
		BodyWidth:    170,
		LineHeight:   7,
		EntryGap:     5,
	}
}

func msgAt(role models.Role, content string, minute int) models.Message {
	return models.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Date(2024, 5, 10, 9, minute, 0, 0, time.UTC),
	}
}

func TestPaginateBreaksBeforeOverflowingEntry(t *testing.T) {
	l := testLayout()
	messages := []models.Message{
		// 1 line: height (2+1)*7+5 = 26, ends at y=36.
		msgAt(models.RoleUser, "0123456789", 0),
		// 6 lines: height (2+6)*7+5 = 61. 36+61 > 90, so a fresh page.
		msgAt(models.RoleAssistant, strings.Repeat("x", 60), 1),
	}

	pages := l.Paginate(messages, chunkSplitter, 10)
	require.Len(t, pages, 2)
	require.Len(t, pages[0].Entries, 1)
	require.Len(t, pages[1].Entries, 1)
	// The overflowing entry starts the new page whole, never split.
	require.Len(t, pages[1].Entries[0].Lines, 6)
	require.Equal(t, models.RoleAssistant, pages[1].Entries[0].Role)
}

func TestPaginateFillsPageBeforeBreaking(t *testing.T) {
	l := testLayout()
	messages := []models.Message{
		msgAt(models.RoleUser, "0123456789", 0),
		msgAt(models.RoleAssistant, "0123456789", 1),
		msgAt(models.RoleUser, "0123456789", 2),
	}

	// Entries are 26 high each; three fit below startY=10 within limit 90.
	pages := l.Paginate(messages, chunkSplitter, 10)
	require.Len(t, pages, 1)
	require.Len(t, pages[0].Entries, 3)
}

func TestPaginateHeaderOnlyFirstPage(t *testing.T) {
	l := testLayout()
	messages := []models.Message{
		msgAt(models.RoleUser, strings.Repeat("x", 60), 0),
	}

	// With the header ending at y=50 the 61-high entry cannot fit; the
	// first page keeps only the header and the entry opens page two.
	pages := l.Paginate(messages, chunkSplitter, 50)
	require.Len(t, pages, 2)
	require.Empty(t, pages[0].Entries)
	require.Len(t, pages[1].Entries, 1)
}

func TestPaginateDeterministic(t *testing.T) {
	l := testLayout()
	messages := []models.Message{
		msgAt(models.RoleUser, strings.Repeat("a", 35), 0),
		msgAt(models.RoleAssistant, strings.Repeat("b", 80), 1),
		msgAt(models.RoleUser, "curta", 2),
	}

	first := l.Paginate(messages, chunkSplitter, 45)
	second := l.Paginate(messages, chunkSplitter, 45)
	require.Equal(t, first, second)
}

func TestEntryTimestampIsLocalized(t *testing.T) {
	l := testLayout()
	pages := l.Paginate([]models.Message{msgAt(models.RoleUser, "oi", 30)}, chunkSplitter, 10)
	require.Equal(t, "10/05/2024 09:30:00", pages[0].Entries[0].Timestamp)
}

func TestSummarize(t *testing.T) {
	messages := []models.Message{
		msgAt(models.RoleUser, "oi", 0),
		msgAt(models.RoleAssistant, "olá", 1),
		msgAt(models.RoleUser, "tchau", 2),
	}

	st := Summarize(messages)
	require.Equal(t, 3, st.Total)
	require.Equal(t, 2, st.User)
	require.Equal(t, 1, st.Assistant)
	require.Equal(t, messages[0].Timestamp, st.First)
	require.Equal(t, messages[2].Timestamp, st.Last)
}

func TestRoleLabel(t *testing.T) {
	require.Equal(t, "Você", RoleLabel(models.RoleUser))
	require.Equal(t, "Assistente", RoleLabel(models.RoleAssistant))
}
