package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// WriteAssemblyMap generates a PDF assembly map for a sliced poster: a
// scaled diagram of the page grid with every tile labeled, followed by
// a page listing per-tile details.
func WriteAssemblyMap(path string, s Summary) error {
	if len(s.Pages) == 0 {
		return fmt.Errorf("no pages to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderGridPage(pdf, s)

	pdf.AddPage()
	renderBreakdownPage(pdf, s)

	return pdf.OutputFileAndClose(path)
}

// renderGridPage draws the full tile grid to scale with one rectangle
// per output page.
func renderGridPage(pdf *fpdf.Fpdf, s Summary) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Assembly Map: %d x %d pages on %s (%.0f x %.0f mm)",
		s.Grid.NWide, s.Grid.NHigh, s.Sheet.Size, s.Sheet.Width, s.Sheet.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Pages: %d | Assembled size: %.0f x %.0f mm | Scale: %.3f | Margin: %.0f mm",
		len(s.Pages), float64(s.Grid.NWide)*s.Sheet.Width, float64(s.Grid.NHigh)*s.Sheet.Height,
		s.Grid.Scale, s.Sheet.Margin)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom

	gridW := float64(s.Grid.NWide) * s.Sheet.Width
	gridH := float64(s.Grid.NHigh) * s.Sheet.Height
	scale := math.Min(drawWidth/gridW, drawHeight/gridH)

	canvasW := gridW * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.3)

	for _, page := range s.Pages {
		px := offsetX + float64(page.Col)*s.Sheet.Width*scale
		py := offsetY + float64(page.Row)*s.Sheet.Height*scale
		pw := s.Sheet.Width * scale
		ph := s.Sheet.Height * scale

		if page.Fragments > 0 {
			pdf.SetFillColor(235, 242, 250)
		} else {
			pdf.SetFillColor(250, 250, 250)
		}
		pdf.Rect(px, py, pw, ph, "FD")

		pdf.SetFont("Helvetica", "B", tileFontSize(pw, ph))
		pdf.SetTextColor(0, 0, 0)
		labelW := pdf.GetStringWidth(page.Label)
		pdf.SetXY(px+(pw-labelW)/2, py+ph/2-3)
		pdf.CellFormat(labelW, 4, page.Label, "", 0, "C", false, 0, "")

		if pw > 25 && ph > 16 {
			pdf.SetFont("Helvetica", "", 6)
			pdf.SetTextColor(110, 110, 110)
			count := fmt.Sprintf("%d paths", page.Fragments)
			countW := pdf.GetStringWidth(count)
			pdf.SetXY(px+(pw-countW)/2, py+ph/2+2)
			pdf.CellFormat(countW, 3, count, "", 0, "C", false, 0, "")
		}
	}

	pdf.SetTextColor(0, 0, 0)
}

// renderBreakdownPage lists one table row per output page.
func renderBreakdownPage(pdf *fpdf.Fpdf, s Summary) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Page Breakdown", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	colWidths := []float64{25, 20, 20, 45, 45, 30}
	headers := []string{"Page", "Col", "Row", "Origin X (mm)", "Origin Y (mm)", "Paths"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, page := range s.Pages {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		rowData := []string{
			page.Label,
			fmt.Sprintf("%d", page.Col),
			fmt.Sprintf("%d", page.Row),
			fmt.Sprintf("%.1f", page.X),
			fmt.Sprintf("%.1f", page.Y),
			fmt.Sprintf("%d", page.Fragments),
		}

		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if s.Dropped > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		warn := fmt.Sprintf("NOTE: %d empty page/layer intersections were discarded during slicing", s.Dropped)
		pdf.CellFormat(220, 7, warn, "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by PosterCut - Poster Slicer", "", 0, "C", false, 0, "")
}

// tileFontSize returns an appropriate label size for a tile rectangle.
func tileFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 10
	case minDim > 20:
		return 8
	default:
		return 6
	}
}
