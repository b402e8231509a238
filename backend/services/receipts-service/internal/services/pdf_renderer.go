package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/constants"
)

// ReceiptDocument is the printable form of a receipt.
type ReceiptDocument struct {
	Title      string
	PeriodLine string
	IssueLine  string
	Body       string
	Footer     string
	IssuedAt   time.Time
}

type PDFRenderer interface {
	Render(doc ReceiptDocument) ([]byte, error)
}

func NewPDFRenderer() PDFRenderer {
	return &fpdfRenderer{}
}

type fpdfRenderer struct{}

func (r *fpdfRenderer) Render(doc ReceiptDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252, covers French accents and the euro sign

	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(constants.PDFAuthor, true)
	pdf.SetCreationDate(doc.IssuedAt)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, tr(doc.Footer), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr(doc.PeriodLine), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, tr(doc.IssueLine), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr(doc.Body), "", "L", false)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
