package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/piwi3910/PosterCut/internal/svgdoc"
)

// Step is one scripted round-trip response for a ScriptedRunner: an
// optional document mutation applied to the snapshot file and the
// stdout the engine is pretended to have printed.
type Step struct {
	Mutate func(doc *svgdoc.Document) error
	Stdout string
}

// ScriptedRunner replays scripted responses instead of invoking a real
// engine. It still exercises the full snapshot/reload cycle: every Run
// loads the snapshot file, applies the step's mutation, and saves it
// back, so sessions observe mutations exactly as they would from the
// real engine.
type ScriptedRunner struct {
	Steps []Step

	// Calls records every action list submitted, in order.
	Calls [][]string
}

// Run consumes the next scripted step.
func (r *ScriptedRunner) Run(snapshotPath string, actions []string) (string, error) {
	r.Calls = append(r.Calls, actions)
	if len(r.Steps) == 0 {
		return "", fmt.Errorf("scripted runner: unexpected engine call %d", len(r.Calls))
	}
	step := r.Steps[0]
	r.Steps = r.Steps[1:]

	if step.Mutate != nil {
		doc, err := svgdoc.Load(snapshotPath)
		if err != nil {
			return "", err
		}
		if err := step.Mutate(doc); err != nil {
			return "", err
		}
		if err := doc.Save(snapshotPath); err != nil {
			return "", err
		}
	}
	return step.Stdout, nil
}

// DryRunner prints every command line it would run and leaves the
// document untouched.
type DryRunner struct {
	Binary string
	Out    io.Writer
}

func (r *DryRunner) Run(snapshotPath string, actions []string) (string, error) {
	fmt.Fprintf(r.Out, "%s %s --actions=%q\n", r.Binary, snapshotPath, strings.Join(actions, ";"))
	return "", nil
}
