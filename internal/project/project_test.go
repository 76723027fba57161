package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/PosterCut/internal/model"
)

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := DefaultConfig()
	cfg.Options.SheetCount = 6
	cfg.Options.UsePalette = true
	cfg.EngineBinary = "/usr/bin/inkscape"
	cfg.RecentFiles = []string{"/tmp/poster.svg", "/tmp/map.svg"}

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Options.SheetCount != 6 {
		t.Errorf("expected SheetCount=6, got %f", loaded.Options.SheetCount)
	}
	if !loaded.Options.UsePalette {
		t.Error("expected UsePalette to survive the round trip")
	}
	if loaded.EngineBinary != "/usr/bin/inkscape" {
		t.Errorf("expected engine binary to survive, got %s", loaded.EngineBinary)
	}
	if len(loaded.RecentFiles) != 2 {
		t.Errorf("expected 2 recent files, got %d", len(loaded.RecentFiles))
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	defaults := DefaultConfig()
	if cfg.Options.SheetCount != defaults.Options.SheetCount {
		t.Errorf("expected default sheet count %f, got %f", defaults.Options.SheetCount, cfg.Options.SheetCount)
	}
	if cfg.RecentFiles == nil {
		t.Error("expected RecentFiles to be non-nil")
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestAddRecentFile(t *testing.T) {
	cfg := DefaultConfig()

	cfg.AddRecentFile("/a.svg")
	cfg.AddRecentFile("/b.svg")
	cfg.AddRecentFile("/a.svg")

	if len(cfg.RecentFiles) != 2 {
		t.Fatalf("expected 2 entries after dedup, got %d", len(cfg.RecentFiles))
	}
	if cfg.RecentFiles[0] != "/a.svg" || cfg.RecentFiles[1] != "/b.svg" {
		t.Errorf("unexpected order: %v", cfg.RecentFiles)
	}

	for i := 0; i < 20; i++ {
		cfg.AddRecentFile(filepath.Join("/posters", string(rune('a'+i))+".svg"))
	}
	if len(cfg.RecentFiles) != 10 {
		t.Errorf("expected cap at 10 entries, got %d", len(cfg.RecentFiles))
	}
}

func TestSaveAndLoadPresets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.json")

	sheet, err := model.NewSheetSpec(model.SheetTabloid, model.Portrait, 15)
	if err != nil {
		t.Fatal(err)
	}
	opts := model.DefaultOptions()
	opts.Sheet = sheet
	opts.SheetCount = 3

	presets := []Preset{{Name: "Tabloid banner", Options: opts}}
	if err := SavePresets(path, presets); err != nil {
		t.Fatalf("SavePresets failed: %v", err)
	}

	loaded, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("LoadPresets failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 preset, got %d", len(loaded))
	}
	if loaded[0].Name != "Tabloid banner" {
		t.Errorf("unexpected name %q", loaded[0].Name)
	}
	if loaded[0].Options.Sheet.Size != model.SheetTabloid {
		t.Errorf("expected Tabloid sheet, got %s", loaded[0].Options.Sheet.Size)
	}
	if loaded[0].IsBuiltIn {
		t.Error("loaded presets must not be marked built-in")
	}
}

func TestLoadPresetsMissingFile(t *testing.T) {
	presets, err := LoadPresets(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if len(presets) != 0 {
		t.Errorf("expected empty slice, got %d entries", len(presets))
	}
}

func TestBuiltInPresetsValid(t *testing.T) {
	presets := BuiltInPresets()
	if len(presets) == 0 {
		t.Fatal("expected built-in presets")
	}
	for _, p := range presets {
		if !p.IsBuiltIn {
			t.Errorf("preset %q not marked built-in", p.Name)
		}
		if err := p.Options.Validate(); err != nil {
			t.Errorf("preset %q has invalid options: %v", p.Name, err)
		}
	}
}

func TestFindPreset(t *testing.T) {
	custom := []Preset{{Name: "Mine", Options: model.DefaultOptions()}}

	if _, ok := FindPreset("Mine", custom); !ok {
		t.Error("expected to find custom preset")
	}
	if _, ok := FindPreset("A4 poster (4 wide)", custom); !ok {
		t.Error("expected to find built-in preset")
	}
	if _, ok := FindPreset("missing", custom); ok {
		t.Error("did not expect to find unknown preset")
	}

	// Custom presets shadow built-ins of the same name
	shadow := model.DefaultOptions()
	shadow.SheetCount = 9
	custom = append(custom, Preset{Name: "A4 poster (4 wide)", Options: shadow})
	p, ok := FindPreset("A4 poster (4 wide)", custom)
	if !ok || p.Options.SheetCount != 9 {
		t.Errorf("expected custom preset to shadow built-in, got %+v", p)
	}
}

func TestExportImportPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.json")

	preset := Preset{Name: "Shared", Options: model.DefaultOptions(), IsBuiltIn: true}
	if err := ExportPreset(path, preset); err != nil {
		t.Fatalf("ExportPreset failed: %v", err)
	}

	imported, err := ImportPreset(path)
	if err != nil {
		t.Fatalf("ImportPreset failed: %v", err)
	}
	if imported.Name != "Shared" {
		t.Errorf("unexpected name %q", imported.Name)
	}
	if imported.IsBuiltIn {
		t.Error("imported presets must not be marked built-in")
	}
}

func TestImportPresetRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	noName := filepath.Join(dir, "noname.json")
	if err := os.WriteFile(noName, []byte(`{"options":{}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportPreset(noName); err == nil {
		t.Error("expected error for preset without name")
	}

	badOpts := filepath.Join(dir, "badopts.json")
	data := `{"name":"Bad","options":{"sheet":{"size":"A4"},"sheet_count":99}}`
	if err := os.WriteFile(badOpts, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportPreset(badOpts); err == nil {
		t.Error("expected error for out-of-range sheet count")
	}
}
