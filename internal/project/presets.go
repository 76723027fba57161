package project

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/piwi3910/PosterCut/internal/model"
)

// Preset is a named, reusable set of slicing options.
type Preset struct {
	Name      string        `json:"name"`
	Options   model.Options `json:"options"`
	IsBuiltIn bool          `json:"-"`
}

// BuiltInPresets returns the presets that ship with the application.
func BuiltInPresets() []Preset {
	a4l, _ := model.NewSheetSpec(model.SheetA4, model.Landscape, 10)
	a3p, _ := model.NewSheetSpec(model.SheetA3, model.Portrait, 10)
	letter, _ := model.NewSheetSpec(model.SheetLetter, model.Landscape, 12.7)

	base := model.DefaultOptions()

	door := base
	door.Sheet = a3p
	door.SheetCount = 2
	door.Fit = model.FitHigh

	us := base
	us.Sheet = letter

	wall := base
	wall.Sheet = a4l
	wall.SheetCount = 6
	wall.UsePalette = true

	return []Preset{
		{Name: "A4 poster (4 wide)", Options: base, IsBuiltIn: true},
		{Name: "A3 door panel (2 high)", Options: door, IsBuiltIn: true},
		{Name: "Letter poster (4 wide)", Options: us, IsBuiltIn: true},
		{Name: "A4 wall mural (6 wide)", Options: wall, IsBuiltIn: true},
	}
}

// DefaultPresetsPath returns the default file path for custom presets.
func DefaultPresetsPath() string {
	return filepath.Join(DefaultConfigDir(), "presets.json")
}

// SavePresets saves custom presets to a JSON file.
func SavePresets(path string, presets []Preset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(presets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadPresets loads custom presets from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Preset{}, nil
		}
		return nil, err
	}

	var presets []Preset
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, err
	}

	// Loaded presets are never built-in
	for i := range presets {
		presets[i].IsBuiltIn = false
	}
	return presets, nil
}

// FindPreset looks a preset up by name, custom presets first so they
// can shadow built-ins.
func FindPreset(name string, custom []Preset) (Preset, bool) {
	for _, p := range custom {
		if p.Name == name {
			return p, true
		}
	}
	for _, p := range BuiltInPresets() {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// ExportPreset exports a single preset to a JSON file (for sharing).
func ExportPreset(path string, preset Preset) error {
	preset.IsBuiltIn = false
	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ImportPreset imports a single preset from a JSON file.
func ImportPreset(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, err
	}

	var preset Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		return Preset{}, err
	}

	preset.IsBuiltIn = false
	if preset.Name == "" {
		return Preset{}, errors.New("imported preset has no name")
	}
	if err := preset.Options.Validate(); err != nil {
		return Preset{}, err
	}
	return preset, nil
}
