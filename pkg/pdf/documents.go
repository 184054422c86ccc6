package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/roblesmun/roblesmun-api/internal/models"
)

// Renderer produces the conference's PDF documents.
type Renderer struct {
	eventName string
	edition   string
}

// NewRenderer constructs a renderer branded with the event name.
func NewRenderer(eventName, edition string) *Renderer {
	if eventName == "" {
		eventName = "ROBLESMUN"
	}
	return &Renderer{eventName: eventName, edition: edition}
}

// RenderAssignment builds the seat-assignment summary document.
func (r *Renderer) RenderAssignment(reg *models.Registration, assignedSeats []string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	r.header(pdf, "SEAT ASSIGNMENT")

	pdf.SetFont("Arial", "", 10)
	r.labelled(pdf, "Institution", reg.Institution)
	r.labelled(pdf, "Contact", fmt.Sprintf("%s %s <%s>", reg.FirstName, reg.LastName, reg.Email))
	r.labelled(pdf, "Requested seats", fmt.Sprintf("%d", reg.Seats))
	r.labelled(pdf, "Assigned seats", fmt.Sprintf("%d", len(assignedSeats)))
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(15, 8, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(175, 8, "Seat", "1", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for i, seat := range assignedSeats {
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(175, 7, seat, "1", 1, "", false, 0, "")
	}

	if notes := strings.TrimSpace(reg.AssignmentNotes); notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 7, "Notes", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, notes, "", "", false)
	}

	r.footer(pdf)
	return output(pdf)
}

// RenderReceipt builds the payment receipt issued at registration time.
func (r *Renderer) RenderReceipt(reg *models.Registration) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	r.header(pdf, "REGISTRATION RECEIPT")

	pdf.SetFont("Arial", "", 10)
	r.labelled(pdf, "Registration", reg.ID)
	r.labelled(pdf, "Institution", reg.Institution)
	r.labelled(pdf, "Contact", fmt.Sprintf("%s %s <%s>", reg.FirstName, reg.LastName, reg.Email))
	r.labelled(pdf, "Seats", fmt.Sprintf("%d", reg.Seats))
	r.labelled(pdf, "Payment method", reg.PaymentMethod)
	if reg.PaymentReference != "" {
		r.labelled(pdf, "Reference", reg.PaymentReference)
	}
	r.labelled(pdf, "Amount due", fmt.Sprintf("$%.2f", reg.AmountDue))
	r.labelled(pdf, "Date", reg.CreatedAt.Format("2006-01-02 15:04 MST"))

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, "This receipt confirms reception of the registration request. Seat assignment is confirmed separately once payment is verified.", "", "", false)

	r.footer(pdf)
	return output(pdf)
}

func (r *Renderer) header(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 16)
	name := r.eventName
	if r.edition != "" {
		name += " " + r.edition
	}
	pdf.CellFormat(0, 10, name, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func (r *Renderer) footer(pdf *gofpdf.Fpdf) {
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", time.Now().UTC().Format(time.RFC1123)), "", 1, "C", false, 0, "")
}

func (r *Renderer) labelled(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(45, 7, label, "", 0, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 7, value, "", 1, "", false, 0, "")
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
