package certificate

import (
	"bytes"
	"fmt"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	fontRegular = "goregular"
	fontBold    = "gobold"
)

// PDFRenderer draws documents onto a single A4 page.
type PDFRenderer struct{}

// NewPDFRenderer creates a new PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render returns the complete PDF bytes for doc.
func (r *PDFRenderer) Render(doc Document) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: gopdf.Rect{W: PageWidth, H: PageHeight}})

	if err := pdf.AddTTFFontData(fontRegular, goregular.TTF); err != nil {
		return nil, fmt.Errorf("load regular font: %w", err)
	}
	if err := pdf.AddTTFFontData(fontBold, gobold.TTF); err != nil {
		return nil, fmt.Errorf("load bold font: %w", err)
	}

	pdf.AddPage()

	pdf.SetLineWidth(3)
	pdf.SetStrokeColor(0x00, 0x57, 0xB8)
	pdf.RectFromUpperLeftWithStyle(borderInset, borderInset, PageWidth-2*borderInset, PageHeight-2*borderInset, "D")

	pdf.SetTextColor(0, 0, 0)
	lines := doc.Lines()
	for i, line := range lines {
		family := fontRegular
		if line.Bold {
			family = fontBold
		}
		measure := func(text string, size float64) (float64, error) {
			if err := pdf.SetFont(family, "", size); err != nil {
				return 0, err
			}
			return pdf.MeasureTextWidth(text)
		}

		next := PageHeight - borderInset
		if i+1 < len(lines) {
			next = lines[i+1].Y
		}
		fitted, err := Fit(line.Text, line.Size, ContentWidth, linesAvailable(line.Y, next), measure)
		if err != nil {
			return nil, fmt.Errorf("fit %q: %w", line.Text, err)
		}
		if err := pdf.SetFont(family, "", fitted.Size); err != nil {
			return nil, fmt.Errorf("set font: %w", err)
		}

		height := fitted.Size * lineSpacing
		for j, text := range fitted.Lines {
			pdf.SetXY(borderInset+textPadding, line.Y+float64(j)*height)
			rect := &gopdf.Rect{W: ContentWidth, H: height}
			if err := pdf.CellWithOption(rect, text, gopdf.CellOption{Align: gopdf.Center | gopdf.Top}); err != nil {
				return nil, fmt.Errorf("write %q: %w", text, err)
			}
		}
	}

	pdf.SetLineWidth(1)
	pdf.SetStrokeColor(0, 0, 0)
	pdf.Line(PageWidth/2-signatureLen/2, signatureY, PageWidth/2+signatureLen/2, signatureY)

	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
