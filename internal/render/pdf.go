// Package render produces the printable voucher document.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/Cheertaboi/gift-voucher-service/internal/models"
)

type PDFRenderer struct {
	restaurant string
}

func NewPDFRenderer(restaurant string) *PDFRenderer {
	return &PDFRenderer{restaurant: restaurant}
}

// Render lays out a single A5 landscape page.
func (r *PDFRenderer) Render(ctx context.Context, doc models.PublicFields) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("L", "mm", "A5", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Gift voucher "+doc.Code, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 14, tr(r.restaurant), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, "Gift voucher", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 12)
	line := func(label, value string) {
		pdf.CellFormat(45, 8, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, tr(value), "", 1, "L", false, 0, "")
	}
	line("For", doc.RecipientName)
	line("Offered by", doc.PurchaserName)
	line("Menu", fmt.Sprintf("%s, %d people", doc.ProductLabel, doc.NumberOfPeople))
	line("Value", doc.Amount.StringFixed(2))
	line("Valid until", doc.ExpiryDate.Format("02/01/2006"))
	pdf.Ln(6)

	pdf.SetFont("Courier", "B", 24)
	pdf.CellFormat(0, 16, doc.Code, "1", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
