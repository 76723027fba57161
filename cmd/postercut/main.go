// PosterCut — SVG poster slicer
//
// Slices selected artwork in an SVG document into a grid of printable
// pages, using an Inkscape binary for the path boolean operations, and
// optionally emits assembly aids (PDF map, QR labels, DXF trim guide,
// XLSX manifest).
//
// Build:
//   go build -o postercut ./cmd/postercut
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/piwi3910/PosterCut/internal/engine"
	"github.com/piwi3910/PosterCut/internal/export"
	"github.com/piwi3910/PosterCut/internal/layout"
	"github.com/piwi3910/PosterCut/internal/model"
	"github.com/piwi3910/PosterCut/internal/poster"
	"github.com/piwi3910/PosterCut/internal/project"
	"github.com/piwi3910/PosterCut/internal/slicer"
	"github.com/piwi3910/PosterCut/internal/svgdoc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "postercut:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := project.LoadConfig(project.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var (
		in       = flag.String("in", "", "input SVG document (required)")
		out      = flag.String("out", "", "output SVG path (default: overwrite input)")
		selects  = flag.String("select", "", "comma-separated element ids to slice (default: all top-level artwork)")
		preset   = flag.String("preset", "", "named preset to start from")
		sheetArg = flag.String("sheet", string(cfg.Options.Sheet.Size), "sheet format: "+strings.Join(model.SheetSizeNames(), ", "))
		portrait = flag.Bool("portrait", cfg.Options.Sheet.Orientation == model.Portrait, "portrait sheet orientation")
		margin   = flag.Float64("margin", cfg.Options.Sheet.Margin, "printable margin per edge in mm")
		count    = flag.Float64("count", cfg.Options.SheetCount, "target sheet count along the fit axis")
		fitHigh  = flag.Bool("fit-high", cfg.Options.Fit == model.FitHigh, "fit sheet count to the height instead of the width")
		frames   = flag.Bool("frames", cfg.Options.PageFrames, "draw a margin frame on every page")
		numbers  = flag.Bool("numbers", cfg.Options.PageNumbers, "label every page with its grid tag")
		holes    = flag.Bool("holes", cfg.Options.SeparateHoles, "separate holes into a dedicated group")
		palette  = flag.Bool("palette", cfg.Options.UsePalette, "recolor layers from the palette")

		engineBin = flag.String("engine", cfg.EngineBinary, "path op engine binary (default: inkscape on PATH)")
		dryRun    = flag.Bool("dry-run", false, "print the slicing batch without running the engine")
		verbose   = flag.Bool("v", cfg.Verbose, "verbose logging")

		mapOut      = flag.String("map", "", "write a PDF assembly map to this path")
		labelsOut   = flag.String("labels", "", "write a PDF QR label sheet to this path")
		trimOut     = flag.String("trim", "", "write a DXF trim guide to this path")
		manifestOut = flag.String("manifest", "", "write an XLSX page manifest to this path")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing -in")
	}

	opts, err := buildOptions(cfg, *preset, *sheetArg, *portrait, *margin, *count, *fitHigh,
		*frames, *numbers, *holes, *palette)
	if err != nil {
		return err
	}

	doc, err := svgdoc.Load(*in)
	if err != nil {
		return fmt.Errorf("load %s: %w", *in, err)
	}

	selection := splitIDs(*selects)
	if len(selection) == 0 {
		selection = topLevelArtwork(doc)
	}

	binary := *engineBin
	if binary == "" {
		binary = "inkscape"
	}

	if *dryRun {
		return printDryRun(os.Stdout, doc, selection, opts, binary)
	}

	version, err := engine.DetectVersion(binary)
	if err != nil {
		return err
	}
	log.Info("engine detected", "binary", binary, "version", version)

	sess := engine.NewSession(doc, &engine.CLIRunner{Binary: binary, Version: version}, version, log)
	defer sess.Close()

	outcome, err := poster.Run(sess, selection, opts)
	if err != nil {
		return err
	}

	target := *out
	if target == "" {
		target = *in
	}
	if err := sess.Doc().Save(target); err != nil {
		return fmt.Errorf("save %s: %w", target, err)
	}

	fmt.Printf("sliced %d elements into %d pages (%d x %d, scale %.3f, %d round-trips)\n",
		len(selection), len(outcome.Pages), outcome.Grid.NWide, outcome.Grid.NHigh,
		outcome.Grid.Scale, sess.RoundTrips())

	if err := writeExports(outcome, opts, *mapOut, *labelsOut, *trimOut, *manifestOut); err != nil {
		return err
	}

	cfg.AddRecentFile(target)
	if err := project.SaveConfig(project.DefaultConfigPath(), cfg); err != nil {
		log.Warn("could not save config", "error", err)
	}
	return nil
}

// buildOptions resolves preset and flag values into a validated option
// set. Flags always win over the preset and the stored config.
func buildOptions(cfg project.Config, presetName, sheetArg string, portrait bool,
	margin, count float64, fitHigh, frames, numbers, holes, palette bool) (model.Options, error) {

	opts := cfg.Options
	if presetName != "" {
		custom, err := project.LoadPresets(project.DefaultPresetsPath())
		if err != nil {
			return model.Options{}, fmt.Errorf("load presets: %w", err)
		}
		p, ok := project.FindPreset(presetName, custom)
		if !ok {
			return model.Options{}, &model.ConfigError{Field: "preset", Reason: fmt.Sprintf("unknown preset %q", presetName)}
		}
		opts = p.Options
	}

	orientation := model.Landscape
	if portrait {
		orientation = model.Portrait
	}
	sheet, err := model.NewSheetSpec(model.SheetSize(sheetArg), orientation, margin)
	if err != nil {
		return model.Options{}, err
	}

	opts.Sheet = sheet
	opts.SheetCount = count
	opts.Fit = model.FitWide
	if fitHigh {
		opts.Fit = model.FitHigh
	}
	opts.PageFrames = frames
	opts.PageNumbers = numbers
	opts.SeparateHoles = holes
	opts.UsePalette = palette

	return opts, opts.Validate()
}

func splitIDs(arg string) []string {
	var ids []string
	for _, id := range strings.Split(arg, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// topLevelArtwork returns the ids of the root's drawable children, in
// document order. Metadata and definition elements are skipped.
func topLevelArtwork(doc *svgdoc.Document) []string {
	skip := map[string]bool{
		"defs": true, "metadata": true, "namedview": true,
		"style": true, "title": true, "desc": true,
	}
	var ids []string
	for _, c := range doc.Root.Children {
		if skip[c.Name.Local] || c.ID() == "" {
			continue
		}
		ids = append(ids, c.ID())
	}
	return ids
}

// printDryRun plans the grid and prints the slicing invocation the
// engine would receive, without mutating anything.
func printDryRun(w *os.File, doc *svgdoc.Document, selection []string, opts model.Options, binary string) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if len(selection) == 0 {
		return model.ErrEmptySelection
	}
	bbox, ok := doc.SelectionBBox(selection)
	if !ok || bbox.Empty() {
		return model.ErrEmptySelection
	}
	grid, err := layout.Plan(opts.Sheet, bbox, opts.SheetCount, opts.Fit)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "grid: %d x %d pages of %s %s, scale %.3f\n",
		grid.NWide, grid.NHigh, opts.Sheet.Size, opts.Sheet.Orientation, grid.Scale)

	batch, _, err := slicer.BuildBatch(doc, selection, grid, bbox)
	if err != nil {
		return err
	}
	actions, err := batch.Encode(engine.V13, "<snapshot>")
	if err != nil {
		return err
	}
	runner := &engine.DryRunner{Binary: binary, Out: w}
	_, err = runner.Run("<snapshot>", actions)
	return err
}

// writeExports runs the requested exporters against the outcome.
func writeExports(outcome *poster.Outcome, opts model.Options, mapOut, labelsOut, trimOut, manifestOut string) error {
	if mapOut == "" && labelsOut == "" && trimOut == "" && manifestOut == "" {
		return nil
	}
	summary := export.BuildSummary(outcome, opts)
	if mapOut != "" {
		if err := export.WriteAssemblyMap(mapOut, summary); err != nil {
			return fmt.Errorf("assembly map: %w", err)
		}
	}
	if labelsOut != "" {
		if err := export.WriteLabels(labelsOut, summary); err != nil {
			return fmt.Errorf("labels: %w", err)
		}
	}
	if trimOut != "" {
		if err := export.WriteTrimGuide(trimOut, summary); err != nil {
			return fmt.Errorf("trim guide: %w", err)
		}
	}
	if manifestOut != "" {
		if err := export.WriteManifest(manifestOut, summary); err != nil {
			return fmt.Errorf("manifest: %w", err)
		}
	}
	return nil
}
