package service

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// RenderShoppingListPDF renders an aggregated shopping list as a PDF
// document. An empty list produces a valid document stating the cart is
// empty rather than an error.
func RenderShoppingListPDF(items []ShoppingListItem) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Shopping list", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Shopping list")
	pdf.Ln(14)

	if len(items) == 0 {
		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(0, 8, "Your shopping cart is empty.")
	} else {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(110, 8, "Ingredient", "B", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, "Amount", "B", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, "Unit", "B", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 11)
		for _, item := range items {
			pdf.CellFormat(110, 7, item.Name, "", 0, "L", false, 0, "")
			pdf.CellFormat(40, 7, fmt.Sprintf("%d", item.TotalAmount), "", 0, "R", false, 0, "")
			pdf.CellFormat(40, 7, item.MeasurementUnit, "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render shopping list pdf: %w", err)
	}
	return buf.Bytes(), nil
}
