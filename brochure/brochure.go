// Package brochure renders a printable one-page PDF for a travel package.
package brochure

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"wanderlust/models"
)

const qrSize = 256

// Render writes the brochure for p to w. link is encoded as a QR code that
// leads back to the package page.
func Render(w io.Writer, p *models.Package, link string) error {
	qr, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		return fmt.Errorf("qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(p.Title, true)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// Title band
	pdf.SetFillColor(14, 116, 144)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(0, 16, tr(p.Title), "", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, tr(p.Location+"  |  "+p.Duration), "", 1, "L", true, 0, "")
	pdf.Ln(6)

	// Price
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(100, 10, fmt.Sprintf("From $%.0f per person", p.Price), "", 0, "L", false, 0, "")
	if p.OriginalPrice != nil && *p.OriginalPrice > p.Price {
		pdf.SetFont("Arial", "", 11)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, fmt.Sprintf("was $%.0f", *p.OriginalPrice), "", 0, "L", false, 0, "")
	}
	pdf.Ln(14)

	// Description
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(120, 6, tr(p.Description), "", "L", false)
	pdf.Ln(4)

	section(pdf, tr, "Highlights", p.Highlights)
	section(pdf, tr, "Included", p.Included)
	section(pdf, tr, "Not included", p.Excluded)

	// QR code on the right of the description
	opts := gofpdf.ImageOptions{ImageType: "png"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qr))
	pdf.ImageOptions("qr", 150, 52, 40, 40, false, opts, 0, "")
	pdf.SetXY(150, 93)
	pdf.SetFont("Arial", "I", 8)
	pdf.MultiCell(40, 4, "Scan to book online", "", "C", false)

	// Footer
	pdf.SetY(-25)
	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 8, tr(link), "T", 0, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string, items []string) {
	if len(items) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(120, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, item := range items {
		pdf.MultiCell(120, 5, tr("- "+strings.TrimSpace(item)), "", "L", false)
	}
	pdf.Ln(3)
}

// Filename is the download name for p's brochure.
func Filename(p *models.Package) string {
	name := p.Slug
	if name == "" {
		name = p.ID.Hex()
	}
	return name + ".pdf"
}
