// Package engine adapts the poster pipeline to an external path-boolean
// engine (an Inkscape-style CLI). The engine runs out of process against
// a serialized snapshot of the document, so every batch of operations is
// one full round-trip: snapshot, run, reload. Identifiers are not stable
// across round-trips; callers correlate results through caller-assigned
// keys and re-resolve every object by id after each Apply.
package engine

import (
	"fmt"
	"strings"
)

// Op is one logical path operation the engine can perform.
type Op string

const (
	OpDuplicate  Op = "duplicate"
	OpUnion      Op = "union"
	OpDifference Op = "difference"
	OpIntersect  Op = "intersect"
	OpCombine    Op = "combine"
	OpSplit      Op = "split"
	OpBreakApart Op = "break-apart"
	OpUngroupPop Op = "ungroup-pop"
	OpQueryIDs   Op = "query-ids" // Emit the current selection's ids on stdout
)

// Version identifies the engine generation. Action names changed across
// generations, so every op goes through a version-keyed lookup table.
type Version string

const (
	V10 Version = "1.0"
	V11 Version = "1.1"
	V12 Version = "1.2"
	V13 Version = "1.3"
)

// actionTables maps each engine version to its action-name vocabulary.
// The select/deselect/save entries are keyed by pseudo-ops used only by
// the encoder.
var actionTables = map[Version]map[Op]string{
	V12: {
		OpDuplicate:  "duplicate",
		OpUnion:      "path-union",
		OpDifference: "path-difference",
		OpIntersect:  "path-intersection",
		OpCombine:    "path-combine",
		OpSplit:      "path-split",
		OpBreakApart: "path-break-apart",
		OpUngroupPop: "selection-ungroup-pop",
		OpQueryIDs:   "select-list",
		opDeselect:   "select-clear",
	},
	V11: {
		OpDuplicate:  "EditDuplicate",
		OpUnion:      "SelectionUnion",
		OpDifference: "SelectionDiff",
		OpIntersect:  "SelectionIntersect",
		OpCombine:    "SelectionCombine",
		opDeselect:   "EditDeselect",
	},
}

// Version aliases and carry-overs: 1.3 uses the 1.2 vocabulary, 1.0 the
// 1.1 one.
func init() {
	actionTables[V13] = actionTables[V12]
	actionTables[V10] = actionTables[V11]
}

// Internal pseudo-ops for encoding.
const opDeselect Op = "deselect"

// ParseVersion extracts the engine generation from `--version` output
// such as "Inkscape 1.2.2 (b0a8486541, 2022-12-01)".
func ParseVersion(output string) (Version, error) {
	const marker = "Inkscape "
	pos := strings.Index(output, marker)
	if pos < 0 || len(output) < pos+len(marker)+3 {
		return "", fmt.Errorf("unrecognized engine version output %q", output)
	}
	v := Version(output[pos+len(marker) : pos+len(marker)+3])
	if _, ok := actionTables[v]; !ok {
		return "", fmt.Errorf("unsupported engine version %q", v)
	}
	return v, nil
}

// actionFor resolves an op to its version-specific action name.
func actionFor(v Version, op Op) (string, error) {
	table, ok := actionTables[v]
	if !ok {
		return "", fmt.Errorf("unsupported engine version %q", v)
	}
	action, ok := table[op]
	if !ok {
		return "", fmt.Errorf("operation %s not available on engine %s", op, v)
	}
	return action, nil
}

// saveAction returns the version-specific action that persists pending
// mutations back into the snapshot file.
func saveAction(v Version, path string) string {
	switch v {
	case V10, V11:
		return "FileSave"
	default:
		return fmt.Sprintf("export-filename:%s;export-overwrite;export-do", path)
	}
}
