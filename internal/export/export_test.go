package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/PosterCut/internal/model"
	"github.com/piwi3910/PosterCut/internal/poster"
	"github.com/piwi3910/PosterCut/internal/slicer"
)

// buildTestSummary creates a realistic 2x2 run summary for testing.
func buildTestSummary() Summary {
	sheet, _ := model.NewSheetSpec(model.SheetA4, model.Landscape, 10)
	return Summary{
		Sheet: sheet,
		Grid: model.TileGrid{
			TileW: 100, TileH: 70.7,
			NWide: 2, NHigh: 2,
			Scale: 2.77,
		},
		Pages: []PageSummary{
			{Label: "A1", Col: 0, Row: 0, X: 0, Y: 0, Fragments: 3},
			{Label: "B1", Col: 1, Row: 0, X: 297, Y: 0, Fragments: 2},
			{Label: "A2", Col: 0, Row: 1, X: 0, Y: 210, Fragments: 1},
			{Label: "B2", Col: 1, Row: 1, X: 297, Y: 210, Fragments: 0},
		},
		Layers:  2,
		Dropped: 1,
	}
}

func TestWriteAssemblyMap_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.pdf")

	if err := WriteAssemblyMap(path, buildTestSummary()); err != nil {
		t.Fatalf("WriteAssemblyMap returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	// A valid two-page PDF should be a reasonable size
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestWriteAssemblyMap_NoPages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.pdf")

	if err := WriteAssemblyMap(path, Summary{}); err == nil {
		t.Fatal("expected error for summary without pages, got nil")
	}
}

func TestWriteLabels_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.pdf")

	if err := WriteLabels(path, buildTestSummary()); err != nil {
		t.Fatalf("WriteLabels returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("label PDF was not created: %v", err)
	}
	// Four labels with embedded QR PNGs are well above this
	if info.Size() < 1000 {
		t.Errorf("label PDF seems too small: %d bytes", info.Size())
	}
}

func TestWriteLabels_NoPages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty_labels.pdf")

	if err := WriteLabels(path, Summary{}); err == nil {
		t.Fatal("expected error for summary without pages, got nil")
	}
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestSummary())
	if len(labels) != 4 {
		t.Fatalf("expected 4 labels, got %d", len(labels))
	}
	if labels[0].Page != "A1" || labels[3].Page != "B2" {
		t.Errorf("labels out of order: first %q last %q", labels[0].Page, labels[3].Page)
	}
	if labels[1].X != 297 {
		t.Errorf("expected B1 origin x 297, got %v", labels[1].X)
	}
}

func TestWriteTrimGuide_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trim.dxf")

	if err := WriteTrimGuide(path, buildTestSummary()); err != nil {
		t.Fatalf("WriteTrimGuide returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("DXF file was not created: %v", err)
	}
	content := string(data)
	for _, want := range []string{"PAGES", "TRIM", "LABELS", "A1", "B2"} {
		if !strings.Contains(content, want) {
			t.Errorf("DXF output missing %q", want)
		}
	}
}

func TestWriteTrimGuide_NoPages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.dxf")

	if err := WriteTrimGuide(path, Summary{}); err == nil {
		t.Fatal("expected error for summary without pages, got nil")
	}
}

func TestWriteManifest_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.xlsx")

	if err := WriteManifest(path, buildTestSummary()); err != nil {
		t.Fatalf("WriteManifest returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("manifest was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("manifest file is empty")
	}
}

func TestWriteManifest_NoPages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.xlsx")

	if err := WriteManifest(path, Summary{}); err == nil {
		t.Fatal("expected error for summary without pages, got nil")
	}
}

func TestBuildSummary(t *testing.T) {
	opts := model.DefaultOptions()
	grid := model.TileGrid{TileW: 50, TileH: 35, NWide: 2, NHigh: 1, Scale: 2}
	outcome := &poster.Outcome{
		Grid: grid,
		Pages: []model.TileIndex{
			{Col: 0, Row: 0},
			{Col: 1, Row: 0},
		},
		LayerGroups: []string{"g1", "g2"},
		Fragments: []slicer.Fragment{
			{ID: "f1", Page: model.TileIndex{Col: 0, Row: 0}, Layer: 0},
			{ID: "f2", Page: model.TileIndex{Col: 0, Row: 0}, Layer: 1},
			{ID: "f3", Page: model.TileIndex{Col: 1, Row: 0}, Layer: 0},
		},
		Dropped: 1,
	}

	s := BuildSummary(outcome, opts)

	if len(s.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(s.Pages))
	}
	if s.Pages[0].Label != "A1" || s.Pages[1].Label != "B1" {
		t.Errorf("unexpected labels: %q, %q", s.Pages[0].Label, s.Pages[1].Label)
	}
	if s.Pages[0].Fragments != 2 || s.Pages[1].Fragments != 1 {
		t.Errorf("unexpected fragment counts: %d, %d", s.Pages[0].Fragments, s.Pages[1].Fragments)
	}
	if s.Layers != 2 || s.Dropped != 1 {
		t.Errorf("unexpected layers/dropped: %d/%d", s.Layers, s.Dropped)
	}
	// Second page origin shifted one sheet width from the anchor
	if s.Pages[1].X-s.Pages[0].X != opts.Sheet.Width {
		t.Errorf("expected pages one sheet width apart, got %v", s.Pages[1].X-s.Pages[0].X)
	}
}
