// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/pdiddy/ontoextract/internal/template"
	"github.com/pdiddy/ontoextract/pkg/types"
)

// pdfRenderer lays out the same summary as the Markdown renderer on A4
// pages with the core Helvetica font.
type pdfRenderer struct{}

func (pdfRenderer) Format() types.OutputFormat { return types.FormatPDF }

func (pdfRenderer) Render(w io.Writer, result *types.ExtractionResult, view *template.SchemaView) error {
	doc := newDocument(result, view)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(doc.Title, true)
	pdf.AddPage()

	heading := func(size float64, text string) {
		pdf.SetFont("Helvetica", "B", size)
		pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}

	heading(16, doc.Title)
	pdf.SetFont("Helvetica", "", 11)
	if doc.Description != "" {
		pdf.MultiCell(0, 5, tr(doc.Description), "", "L", false)
		pdf.Ln(3)
	}
	if doc.Class != "" {
		heading(13, doc.Class)
	}
	for _, f := range doc.Fields {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, tr(f.Name), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, v := range f.Values {
			pdf.SetX(pdf.GetX() + 5)
			pdf.MultiCell(0, 5, tr("- "+v), "", "L", false)
		}
	}
	if len(doc.Entities) > 0 {
		pdf.Ln(3)
		heading(13, "Named entities")
		for _, e := range doc.Entities {
			pdf.MultiCell(0, 5, tr(e.ID+"  "+e.Label), "", "L", false)
		}
	}
	if doc.Truncation != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, tr("Input truncated to a factor of "+doc.Truncation+"."), "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
	}
	if doc.InputText != "" {
		pdf.Ln(3)
		heading(13, "Input text")
		pdf.MultiCell(0, 5, tr(doc.InputText), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}
