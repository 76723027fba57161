// Package layout computes the tile grid for a poster run: how big one
// slicing rectangle is in selection coordinates, how many tiles the grid
// needs in each direction, and the uniform factor that scales a slice up
// to the printable interior of one output sheet.
package layout

import (
	"math"

	"github.com/piwi3910/PosterCut/internal/model"
)

// Plan derives the tile grid from the sheet spec, the selection bounding
// box, the target sheet count and the fit mode. It is a pure function:
// identical inputs always produce an identical grid.
//
// In wide mode the selection width is divided across sheetCount sheets
// and the row count follows from the sheet interior ratio; high mode is
// the transpose. The grid is anchored at the bounding box minimum corner
// and may extend past the box on the trailing edges, never fall short.
func Plan(sheet model.SheetSpec, bbox model.BBox, sheetCount float64, mode model.FitMode) (model.TileGrid, error) {
	if sheetCount < 1 || sheetCount > 10 {
		return model.TileGrid{}, &model.ConfigError{Field: "sheet-count", Reason: "sheet count outside [1, 10]"}
	}
	if sheet.Margin < 0 || sheet.Margin > 50 {
		return model.TileGrid{}, &model.ConfigError{Field: "margin", Reason: "margin outside [0, 50]"}
	}
	if sheet.InteriorWidth() <= 0 || sheet.InteriorHeight() <= 0 {
		return model.TileGrid{}, &model.ConfigError{Field: "margin", Reason: "margin leaves no printable area"}
	}
	if bbox.Empty() {
		return model.TileGrid{}, &model.ConfigError{Field: "selection", Reason: "selection bounding box is empty"}
	}

	interiorRatio := sheet.InteriorRatio()
	imageRatio := bbox.Ratio()

	var grid model.TileGrid
	if mode == model.FitWide {
		grid.TileW = bbox.Width() / sheetCount
		grid.TileH = grid.TileW / interiorRatio
		grid.NWide = int(math.Ceil(sheetCount))
		grid.NHigh = int(math.Ceil(1.0 / imageRatio * interiorRatio * sheetCount))
		grid.Scale = sheet.InteriorWidth() * sheetCount / bbox.Width()
	} else {
		grid.TileH = bbox.Height() / sheetCount
		grid.TileW = grid.TileH * interiorRatio
		grid.NHigh = int(math.Ceil(sheetCount))
		grid.NWide = int(math.Ceil(imageRatio / interiorRatio * sheetCount))
		grid.Scale = sheet.InteriorHeight() * sheetCount / bbox.Height()
	}
	return grid, nil
}
