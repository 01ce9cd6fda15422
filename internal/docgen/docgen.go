// Package docgen renders a finalized worksheet to a printable PDF: a header,
// the questions with per-type answer areas, and an answer-key table on its
// own page. Items must already carry their final sequential IDs.
package docgen

import (
	"fmt"
	"log"

	"codeberg.org/go-pdf/fpdf"

	"examgen/internal/models"
)

// Config controls page geometry and fonts.
type Config struct {
	PageSize   string
	MarginsMM  float64
	FontFamily string
	// FontPath points at a UTF-8 TTF file registered under FontFamily,
	// required for non-Latin scripts. Empty means a core font.
	FontPath string
}

// DefaultConfig returns A4 pages with a core font.
func DefaultConfig() Config {
	return Config{
		PageSize:   "A4",
		MarginsMM:  15,
		FontFamily: "Helvetica",
	}
}

// Renderer writes worksheets as PDF files.
type Renderer struct {
	cfg Config
}

func NewRenderer(cfg Config) *Renderer {
	if cfg.PageSize == "" {
		cfg.PageSize = "A4"
	}
	if cfg.FontFamily == "" {
		cfg.FontFamily = "Helvetica"
	}
	if cfg.MarginsMM <= 0 {
		cfg.MarginsMM = 15
	}
	return &Renderer{cfg: cfg}
}

// Render writes the worksheet to outputPath.
func (r *Renderer) Render(ws models.Worksheet, outputPath string) error {
	log.Printf("INFO: Rendering worksheet %q (%d items) to %s", ws.Title, len(ws.Items), outputPath)

	pdf := fpdf.New("P", "mm", r.cfg.PageSize, "")
	pdf.SetMargins(r.cfg.MarginsMM, r.cfg.MarginsMM, r.cfg.MarginsMM)
	if r.cfg.FontPath != "" {
		pdf.AddUTF8Font(r.cfg.FontFamily, "", r.cfg.FontPath)
		pdf.AddUTF8Font(r.cfg.FontFamily, "B", r.cfg.FontPath)
		pdf.AddUTF8Font(r.cfg.FontFamily, "I", r.cfg.FontPath)
	}
	pdf.SetTitle(ws.Title, true)
	pdf.SetSubject(ws.Subject, true)
	pdf.AddPage()

	r.header(pdf, ws)
	for _, item := range ws.Items {
		r.question(pdf, item)
	}
	r.answerKey(pdf, ws)

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to write PDF %s: %w", outputPath, err)
	}
	return nil
}

func (r *Renderer) header(pdf *fpdf.Fpdf, ws models.Worksheet) {
	pdf.SetFont(r.cfg.FontFamily, "B", 20)
	pdf.MultiCell(0, 12, ws.Title, "", "C", false)

	pdf.SetFont(r.cfg.FontFamily, "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Subject: %s  |  Level: %s", ws.Subject, ws.TargetLevel), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 4, "", "B", 1, "", false, 0, "")
	pdf.Ln(4)
}

func (r *Renderer) question(pdf *fpdf.Fpdf, item models.ExamItem) {
	pdf.SetFont(r.cfg.FontFamily, "B", 12)
	pdf.MultiCell(0, 7, fmt.Sprintf("%d. %s", item.ID, item.Question), "", "L", false)

	if item.ImagePrompt != "" {
		pdf.SetFont(r.cfg.FontFamily, "I", 9)
		pdf.MultiCell(0, 6, fmt.Sprintf("[INSERT IMAGE HERE: %s]", item.ImagePrompt), "", "C", false)
	}

	pdf.SetFont(r.cfg.FontFamily, "", 12)
	switch item.Type {
	case models.QuestionTrueFalse:
		for _, opt := range trueFalsePair(item) {
			pdf.SetX(pdf.GetX() + 10)
			pdf.MultiCell(0, 7, fmt.Sprintf("(   ) %s", opt), "", "L", false)
		}
	case models.QuestionSubjective:
		pdf.SetX(pdf.GetX() + 10)
		pdf.MultiCell(0, 7, "................................................................", "", "L", false)
	default:
		for _, opt := range item.Options {
			pdf.SetX(pdf.GetX() + 10)
			pdf.MultiCell(0, 7, fmt.Sprintf("%s) %s", opt.Label, opt.Text), "", "L", false)
		}
	}
	pdf.Ln(3)
}

// trueFalsePair prefers the item's own options and falls back to a fixed
// pair when the model omitted them.
func trueFalsePair(item models.ExamItem) []string {
	if len(item.Options) == 2 {
		return []string{item.Options[0].Text, item.Options[1].Text}
	}
	return []string{"True", "False"}
}

func (r *Renderer) answerKey(pdf *fpdf.Fpdf, ws models.Worksheet) {
	pdf.AddPage()
	pdf.SetFont(r.cfg.FontFamily, "B", 16)
	pdf.CellFormat(0, 12, "Answer Key", "", 1, "L", false, 0, "")

	colNo, colAns, colExp := 15.0, 45.0, 130.0

	pdf.SetFont(r.cfg.FontFamily, "B", 11)
	pdf.CellFormat(colNo, 8, "No.", "1", 0, "C", false, 0, "")
	pdf.CellFormat(colAns, 8, "Answer", "1", 0, "C", false, 0, "")
	pdf.CellFormat(colExp, 8, "Explanation", "1", 1, "C", false, 0, "")

	pdf.SetFont(r.cfg.FontFamily, "", 10)
	for _, item := range ws.Items {
		explanation := item.Explanation
		if explanation == "" {
			explanation = "-"
		}
		pdf.CellFormat(colNo, 8, fmt.Sprintf("%d", item.ID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colAns, 8, item.CorrectAnswer, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colExp, 8, explanation, "1", 1, "L", false, 0, "")
	}
}
