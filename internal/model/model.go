package model

import "fmt"

// Orientation represents the physical orientation of an output sheet.
type Orientation int

const (
	Landscape Orientation = iota // Width > height
	Portrait                     // Height > width
)

func (o Orientation) String() string {
	if o == Portrait {
		return "Portrait"
	}
	return "Landscape"
}

// FitMode determines which axis of the selection the target sheet count
// applies to.
type FitMode int

const (
	FitWide FitMode = iota // Sheet count measured along the width
	FitHigh                // Sheet count measured along the height
)

func (m FitMode) String() string {
	if m == FitHigh {
		return "High"
	}
	return "Wide"
}

// SheetSize names a supported physical sheet format.
type SheetSize string

const (
	SheetA4      SheetSize = "A4"
	SheetA3      SheetSize = "A3"
	SheetLetter  SheetSize = "Letter"
	SheetLegal   SheetSize = "Legal"
	SheetTabloid SheetSize = "Tabloid"
)

// sheetDimensions maps each supported sheet format to its portrait
// width and height in mm.
var sheetDimensions = map[SheetSize][2]float64{
	SheetA4:      {210, 297},
	SheetA3:      {297, 420},
	SheetLetter:  {215.9, 279.4},
	SheetLegal:   {215.9, 355.6},
	SheetTabloid: {279.4, 431.8},
}

// SheetSizeNames returns the list of supported sheet format names.
func SheetSizeNames() []string {
	return []string{
		string(SheetA4), string(SheetA3), string(SheetLetter),
		string(SheetLegal), string(SheetTabloid),
	}
}

// SheetSpec describes one physical output sheet. Width and Height are
// resolved once from the size table and orientation and stay fixed for
// the whole run.
type SheetSpec struct {
	Size        SheetSize   `json:"size"`
	Orientation Orientation `json:"orientation"`
	Width       float64     `json:"width"`  // mm, after orientation swap
	Height      float64     `json:"height"` // mm, after orientation swap
	Margin      float64     `json:"margin"` // mm, printable margin on each edge
}

// NewSheetSpec resolves a sheet format and orientation into a concrete
// SheetSpec. It returns a ConfigError for unknown sizes or margins
// outside [0, 50].
func NewSheetSpec(size SheetSize, orientation Orientation, margin float64) (SheetSpec, error) {
	dims, ok := sheetDimensions[size]
	if !ok {
		return SheetSpec{}, &ConfigError{Field: "sheet-size", Reason: fmt.Sprintf("unsupported sheet size %q", size)}
	}
	if margin < 0 || margin > 50 {
		return SheetSpec{}, &ConfigError{Field: "margin", Reason: fmt.Sprintf("margin %.1f outside [0, 50]", margin)}
	}
	w, h := dims[0], dims[1]
	if orientation == Landscape {
		w, h = h, w
	}
	if margin >= min(w, h)/2 {
		return SheetSpec{}, &ConfigError{Field: "margin", Reason: fmt.Sprintf("margin %.1f leaves no printable area on %s", margin, size)}
	}
	return SheetSpec{
		Size:        size,
		Orientation: orientation,
		Width:       w,
		Height:      h,
		Margin:      margin,
	}, nil
}

// InteriorWidth returns the printable width inside the margins.
func (s SheetSpec) InteriorWidth() float64 { return s.Width - 2*s.Margin }

// InteriorHeight returns the printable height inside the margins.
func (s SheetSpec) InteriorHeight() float64 { return s.Height - 2*s.Margin }

// InteriorRatio returns the printable width/height ratio.
func (s SheetSpec) InteriorRatio() float64 { return s.InteriorWidth() / s.InteriorHeight() }

// BBox is an axis-aligned bounding box.
type BBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width returns the horizontal extent.
func (b BBox) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b BBox) Height() float64 { return b.MaxY - b.MinY }

// Empty reports whether the box has no area.
func (b BBox) Empty() bool { return b.Width() <= 0 || b.Height() <= 0 }

// Ratio returns the width/height ratio.
func (b BBox) Ratio() float64 { return b.Width() / b.Height() }

// Union returns the smallest box covering both b and other.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		MinX: min(b.MinX, other.MinX),
		MinY: min(b.MinY, other.MinY),
		MaxX: max(b.MaxX, other.MaxX),
		MaxY: max(b.MaxY, other.MaxY),
	}
}

// Contains reports whether other lies fully inside b.
func (b BBox) Contains(other BBox) bool {
	return other.MinX >= b.MinX && other.MinY >= b.MinY &&
		other.MaxX <= b.MaxX && other.MaxY <= b.MaxY
}

// Rect is a positioned rectangle (used for slicing and frames).
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BBox returns the rectangle as a bounding box.
func (r Rect) BBox() BBox {
	return BBox{MinX: r.X, MinY: r.Y, MaxX: r.X + r.Width, MaxY: r.Y + r.Height}
}

// Options holds the caller-facing configuration for one poster run.
type Options struct {
	Sheet      SheetSpec `json:"sheet"`
	SheetCount float64   `json:"sheet_count"` // Target sheets along the fit axis, [1, 10]
	Fit        FitMode   `json:"fit"`

	PageFrames    bool `json:"page_frames"`    // Draw a margin-inset frame on every page
	PageNumbers   bool `json:"page_numbers"`   // Label every page with its grid label
	SeparateHoles bool `json:"separate_holes"` // Run hole correction into a dedicated group
	UsePalette    bool `json:"use_palette"`    // Recolor layers from the palette
}

// DefaultOptions returns the configuration the original extension ships
// with: A4 landscape, 10mm margin, 4 sheets wide.
func DefaultOptions() Options {
	sheet, _ := NewSheetSpec(SheetA4, Landscape, 10)
	return Options{
		Sheet:         sheet,
		SheetCount:    4,
		Fit:           FitWide,
		PageFrames:    true,
		PageNumbers:   true,
		SeparateHoles: true,
		UsePalette:    false,
	}
}

// Validate checks the option ranges that must hold before any document
// mutation happens.
func (o Options) Validate() error {
	if o.SheetCount < 1 || o.SheetCount > 10 {
		return &ConfigError{Field: "sheet-count", Reason: fmt.Sprintf("sheet count %.1f outside [1, 10]", o.SheetCount)}
	}
	if _, ok := sheetDimensions[o.Sheet.Size]; !ok {
		return &ConfigError{Field: "sheet-size", Reason: fmt.Sprintf("unsupported sheet size %q", o.Sheet.Size)}
	}
	if o.Sheet.Margin < 0 || o.Sheet.Margin > 50 {
		return &ConfigError{Field: "margin", Reason: fmt.Sprintf("margin %.1f outside [0, 50]", o.Sheet.Margin)}
	}
	return nil
}
