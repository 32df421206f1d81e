// Package invoice renders sponsorship payment invoices as PDF.
package invoice

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/changebag/causeconnect-api/models"
)

// Data carries everything the invoice layout needs
type Data struct {
	InvoiceNumber    string
	IssuedAt         time.Time
	OrganizationName string
	ContactName      string
	Email            string
	CauseTitle       string
	ToteQuantity     int
	UnitPrice        float64
	Payment          models.Payment
}

// Build renders the invoice PDF and returns its bytes
func Build(d Data) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Invoice %s", d.InvoiceNumber), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(120, 12, "ChangeBag")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 12, fmt.Sprintf("Invoice %s", d.InvoiceNumber), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, d.IssuedAt.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Billed to")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, d.OrganizationName)
	pdf.Ln(5)
	pdf.Cell(0, 5, d.ContactName)
	pdf.Ln(5)
	pdf.Cell(0, 5, d.Email)
	pdf.Ln(12)

	// line items table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(47, 158, 110)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(95, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Unit price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	desc := fmt.Sprintf("Sponsored totes for %s", d.CauseTitle)
	pdf.CellFormat(95, 8, desc, "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 8, fmt.Sprintf("%d", d.ToteQuantity), "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", d.UnitPrice), "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", d.Payment.Amount), "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(155, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, fmt.Sprintf("%.2f %s", d.Payment.Amount, d.Payment.Currency), "1", 1, "R", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 5, fmt.Sprintf("Payment reference: %s / %s", d.Payment.OrderID, d.Payment.PaymentID))
	pdf.Ln(5)
	pdf.Cell(0, 5, "Thank you for sponsoring a cause on ChangeBag.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
