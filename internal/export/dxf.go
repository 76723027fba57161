package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/table"
)

// WriteTrimGuide generates a DXF drawing of the assembled poster grid
// for use on a cutting machine or light table. The PAGES layer carries
// one rectangle per printed page, the TRIM layer the margin-inset
// cut lines, and the LABELS layer a text tag per page.
func WriteTrimGuide(path string, s Summary) error {
	if len(s.Pages) == 0 {
		return fmt.Errorf("no pages to export")
	}

	d := dxf.NewDrawing()

	d.AddLayer("PAGES", dxf.DefaultColor, dxf.DefaultLineType, true)
	for _, page := range s.Pages {
		drawRect(d, float64(page.Col)*s.Sheet.Width, float64(page.Row)*s.Sheet.Height,
			s.Sheet.Width, s.Sheet.Height)
	}

	d.AddLayer("TRIM", color.Red, table.LT_CONTINUOUS, true)
	for _, page := range s.Pages {
		drawRect(d, float64(page.Col)*s.Sheet.Width+s.Sheet.Margin,
			float64(page.Row)*s.Sheet.Height+s.Sheet.Margin,
			s.Sheet.InteriorWidth(), s.Sheet.InteriorHeight())
	}

	d.AddLayer("LABELS", color.Green, table.LT_CONTINUOUS, true)
	textHeight := s.Sheet.Height / 12
	for _, page := range s.Pages {
		cx := float64(page.Col)*s.Sheet.Width + s.Sheet.Width/2
		cy := float64(page.Row)*s.Sheet.Height + s.Sheet.Height/2
		d.Text(page.Label, cx, cy, 0.0, textHeight)
	}

	return d.SaveAs(path)
}

// drawRect adds the four edges of an axis-aligned rectangle to the
// current layer.
func drawRect(d *drawing.Drawing, x, y, w, h float64) {
	d.Line(x, y, 0.0, x+w, y, 0.0)
	d.Line(x+w, y, 0.0, x+w, y+h, 0.0)
	d.Line(x+w, y+h, 0.0, x, y+h, 0.0)
	d.Line(x, y+h, 0.0, x, y, 0.0)
}
