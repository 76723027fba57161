package model

// Palette is the fixed color list assigned to layers by stacking rank.
// Rank 1 (the top layer in the UI) gets the first color. The final
// color is reserved as the hole fill when palette coloring is enabled.
var Palette = []string{
	"#0000ff",
	"#ff0000",
	"#00e000",
	"#d0d000",
	"#ff8000",
	"#00e0e0",
	"#ff00ff",
	"#b4b4b4",
	"#0000a0",
	"#a00000",
	"#00a000",
	"#a0a000",
	"#c08000",
	"#00a0ff",
	"#a000a0",
	"#808080",
	"#7d87b9",
	"#bb7784",
	"#4a6fe3",
	"#d33f6a",
}

// PaletteColor returns the fill color for a 1-based layer rank. Ranks
// past the palette wrap around.
func PaletteColor(rank int) string {
	if rank < 1 {
		rank = 1
	}
	return Palette[(rank-1)%len(Palette)]
}

// HoleFill returns the fill used for corrected holes: the reserved last
// palette color in palette mode, plain background white otherwise.
func HoleFill(usePalette bool) string {
	if usePalette {
		return Palette[len(Palette)-1]
	}
	return "white"
}
