package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/andrew/juris-chat/pkg/models"
)

// ErrNothingToExport is returned when an export is requested over an empty
// message log. Callers are expected to disable export actions in that case.
var ErrNothingToExport = errors.New("conversation has no messages to export")

// PDFExporter renders a conversation into a paginated A4 document.
type PDFExporter struct {
	// OutDir is where exported files are written.
	OutDir string
	// Now is the clock used for the generation timestamp and the file name.
	// Fixed in tests so output is byte-reproducible.
	Now func() time.Time

	layout Layout
}

// NewPDFExporter creates an exporter writing into dir.
func NewPDFExporter(dir string) *PDFExporter {
	return &PDFExporter{OutDir: dir, Now: time.Now, layout: DefaultLayout()}
}

// Export renders the conversation and writes it to a file named after the
// assistant and the current date. Returns the written path.
func (e *PDFExporter) Export(a models.Assistant, messages []models.Message) (string, error) {
	name := fmt.Sprintf("Conversa com %s - %s.pdf", a.Name, e.Now().Format("02-01-2006"))
	path := filepath.Join(e.OutDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to create export file")
	}
	defer f.Close()
	if err := e.Render(a, messages, f); err != nil {
		return "", err
	}
	return path, nil
}

// Render writes the PDF document to w. Output is deterministic for a fixed
// message log and a fixed Now.
func (e *PDFExporter) Render(a models.Assistant, messages []models.Message, w io.Writer) error {
	if len(messages) == 0 {
		return ErrNothingToExport
	}
	now := e.Now()
	l := e.layout

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetCreationDate(now)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footer := fmt.Sprintf("Página %d/{nb} - gerado em %s", pdf.PageNo(), now.Format("02/01/2006 15:04"))
		pdf.CellFormat(0, 10, tr(footer), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// Title block.
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(l.LeftMargin, 20, tr(fmt.Sprintf("Conversa com %s", a.Name)))
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(l.LeftMargin, 30, now.Format("02/01/2006 15:04:05"))
	pdf.Line(l.LeftMargin, 35, l.LeftMargin+l.BodyWidth, 35)

	y := 45.0
	// Assistant info block.
	if a.Description != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Text(l.LeftMargin, y, tr(a.Name))
		y += l.LineHeight
		pdf.SetFont("Helvetica", "", 11)
		pdf.Text(l.LeftMargin, y, tr(a.Description))
		y += l.LineHeight + 3
	}

	// Statistics block.
	st := Summarize(messages)
	pdf.SetFont("Helvetica", "", 11)
	statLines := []string{
		fmt.Sprintf("Total de mensagens: %d", st.Total),
		fmt.Sprintf("Suas mensagens: %d | Respostas do assistente: %d", st.User, st.Assistant),
		fmt.Sprintf("Primeira: %s | Última: %s",
			st.First.Format("02/01/2006 15:04"), st.Last.Format("02/01/2006 15:04")),
	}
	for _, line := range statLines {
		pdf.Text(l.LeftMargin, y, tr(line))
		y += l.LineHeight
	}
	pdf.Line(l.LeftMargin, y, l.LeftMargin+l.BodyWidth, y)
	y += l.EntryGap

	// Split the raw UTF-8 text; the cp1252 translation happens per line at
	// draw time. Translated bytes are not valid UTF-8 and must never reach
	// the rune-indexed width table of SplitText.
	split := func(text string, width float64) []string {
		return pdf.SplitText(text, width)
	}
	pages := l.Paginate(messages, split, y)
	for i, page := range pages {
		if i > 0 {
			pdf.AddPage()
			y = l.TopMargin
		}
		for _, entry := range page.Entries {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.SetTextColor(128, 128, 128)
			pdf.Text(l.LeftMargin, y, entry.Timestamp)
			y += l.LineHeight
			pdf.SetFont("Helvetica", "B", 12)
			pdf.SetTextColor(0, 0, 0)
			pdf.Text(l.LeftMargin, y, tr(RoleLabel(entry.Role)+":"))
			y += l.LineHeight
			pdf.SetFont("Helvetica", "", 12)
			for _, line := range entry.Lines {
				pdf.Text(l.LeftMargin, y, tr(line))
				y += l.LineHeight
			}
			y += l.EntryGap
		}
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "failed to render PDF")
	}
	return nil
}
