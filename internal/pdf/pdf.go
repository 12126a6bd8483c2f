package pdf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// Renderer turns plain text into a PDF file.
type Renderer interface {
	Render(text, outPath string) error
}

type renderer struct{}

// NewRenderer returns the gofpdf-backed renderer. Cover letters do not need
// typography, just a readable A4 page.
func NewRenderer() Renderer {
	return renderer{}
}

func (renderer) Render(text, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(20, 20, 20)
	doc.AddPage()
	doc.SetFont("Helvetica", "", 11)

	width, _ := doc.GetPageSize()
	left, _, right, _ := doc.GetMargins()
	doc.MultiCell(width-left-right, 5.5, text, "", "L", false)

	if err := doc.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}
