// Package export renders a conversation log into a paginated PDF document,
// a flat-text clipboard payload, or a shareable file. Page layout is planned
// by a pure function over an injected line-splitter so pagination can be
// verified without a PDF backend.
package export

import (
	"time"

	"github.com/andrew/juris-chat/pkg/models"
)

// LineSplitter word-wraps text to the given width and returns the resulting
// lines. The PDF renderer supplies a font-metric-aware implementation.
type LineSplitter func(text string, width float64) []string

// Layout holds the fixed page geometry, in millimeters on an A4 page.
type Layout struct {
	PageHeight   float64
	TopMargin    float64
	BottomMargin float64
	LeftMargin   float64
	BodyWidth    float64
	LineHeight   float64
	EntryGap     float64
}

// DefaultLayout is the fixed document geometry: 20-unit left margin, 7-unit
// line height, body text constrained to 170 units.
func DefaultLayout() Layout {
	return Layout{
		PageHeight:   297,
		TopMargin:    20,
		BottomMargin: 20,
		LeftMargin:   20,
		BodyWidth:    170,
		LineHeight:   7,
		EntryGap:     5,
	}
}

// Entry is one laid-out timeline item: role label, localized timestamp and
// the word-wrapped body lines.
type Entry struct {
	Role      models.Role
	Timestamp string
	Lines     []string
}

// Height returns the vertical space the entry occupies: one line for the
// timestamp, one for the role label, the body lines, and the trailing gap.
func (e Entry) Height(l Layout) float64 {
	return float64(2+len(e.Lines))*l.LineHeight + l.EntryGap
}

// Page is an ordered list of entries that fit together on one page.
type Page struct {
	Entries []Entry
}

// RoleLabel returns the printable label for a message role.
func RoleLabel(role models.Role) string {
	if role == models.RoleUser {
		return "Você"
	}
	return "Assistente"
}

// Paginate lays the messages out into pages. Content on the first page
// starts at startY (below the title and stats blocks); subsequent pages
// start at the top margin. An entry whose height exceeds the remaining page
// space is moved to a fresh page whole; entries never split across pages.
func (l Layout) Paginate(messages []models.Message, split LineSplitter, startY float64) []Page {
	var pages []Page
	current := Page{}
	y := startY
	limit := l.PageHeight - l.BottomMargin

	for _, msg := range messages {
		entry := Entry{
			Role:      msg.Role,
			Timestamp: msg.Timestamp.Format("02/01/2006 15:04:05"),
			Lines:     split(msg.Content, l.BodyWidth),
		}
		h := entry.Height(l)
		if y+h > limit && y > l.TopMargin {
			pages = append(pages, current)
			current = Page{}
			y = l.TopMargin
		}
		current.Entries = append(current.Entries, entry)
		y += h
	}
	pages = append(pages, current)
	return pages
}

// Stats summarizes a conversation for the statistics block.
type Stats struct {
	Total     int
	User      int
	Assistant int
	First     time.Time
	Last      time.Time
}

// Summarize computes the statistics block content for a message log.
func Summarize(messages []models.Message) Stats {
	st := Stats{Total: len(messages)}
	for _, m := range messages {
		if m.Role == models.RoleUser {
			st.User++
		} else {
			st.Assistant++
		}
	}
	if len(messages) > 0 {
		st.First = messages[0].Timestamp
		st.Last = messages[len(messages)-1].Timestamp
	}
	return st
}
