package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/EthanH9977/JourneyXPro/internal/app/models"
)

const (
	pdfFontFamily = "journey"
	qrImageName   = "book-link"
	qrSizePx      = 256
)

type PDFOptions struct {
	// FontPath points at a UTF-8 TrueType font. Without one the core
	// Helvetica font is used and characters outside cp1252 are dropped.
	FontPath string
	// Link, when set, is printed and embedded as a QR code on the first page.
	Link string
}

// QRCodePNG encodes link as a PNG QR code.
func QRCodePNG(link string) ([]byte, error) {
	if strings.TrimSpace(link) == "" {
		return nil, errors.New("qr code link is empty")
	}
	png, err := qrcode.Encode(link, qrcode.Medium, qrSizePx)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// RenderPDF lays the travel book out on A4 pages, one section per day.
func RenderPDF(plan *models.TripPlan, book []models.TravelBookDay, opts PDFOptions) ([]byte, error) {
	if plan == nil {
		return nil, errors.New("no plan to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(plan.TripTitle, true)
	pdf.SetCreator("JourneyXPro", true)

	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if opts.FontPath != "" {
		pdf.AddUTF8Font(pdfFontFamily, "", opts.FontPath)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("load font %s: %w", opts.FontPath, err)
		}
		family = pdfFontFamily
		tr = func(s string) string { return s }
	}
	setFont := func(size float64) { pdf.SetFont(family, "", size) }

	pdf.AddPage()
	setFont(20)
	pdf.MultiCell(140, 10, tr(plan.TripTitle), "", "L", false)
	setFont(11)
	pdf.MultiCell(140, 6, tr(fmt.Sprintf("%s / %s / %s", plan.Destination, plan.Duration, plan.TotalBudgetEstimate)), "", "L", false)

	if opts.Link != "" {
		png, err := QRCodePNG(opts.Link)
		if err != nil {
			return nil, err
		}
		imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(qrImageName, imageOpts, bytes.NewReader(png))
		pdf.ImageOptions(qrImageName, 160, 10, 35, 35, false, imageOpts, 0, opts.Link)
		setFont(8)
		pdf.MultiCell(140, 5, opts.Link, "", "L", false)
	}
	pdf.Ln(6)

	for _, day := range book {
		setFont(15)
		pdf.MultiCell(0, 9, tr(fmt.Sprintf("Day %d  %s  %s", day.DayID, day.DisplayDate, day.Region)), "B", "L", false)
		pdf.Ln(2)
		for _, ev := range day.Events {
			setFont(11)
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s  %s", ev.Time, ev.Title)), "", "L", false)
			setFont(9)
			if ev.LocationName != "" {
				pdf.MultiCell(0, 5, tr(ev.LocationName), "", "L", false)
			}
			pdf.MultiCell(0, 5, tr(ev.Description), "", "L", false)
			for _, d := range ev.Details {
				pdf.MultiCell(0, 5, tr(fmt.Sprintf("- %s: %s", d.Title, d.Content)), "", "L", false)
			}
			pdf.Ln(2)
		}
		pdf.Ln(4)
	}

	if len(plan.GeneralTips) > 0 {
		setFont(13)
		pdf.MultiCell(0, 8, tr("旅遊小提醒"), "B", "L", false)
		setFont(9)
		for _, tip := range plan.GeneralTips {
			pdf.MultiCell(0, 5, tr("- "+tip), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
