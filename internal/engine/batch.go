package engine

import (
	"strings"

	"github.com/google/uuid"
)

// Command is one logical operation in a batch: a set of target element
// ids selected together, then one or more ops applied to the selection.
// Key is the caller-assigned correlation key used to find the command's
// result ids after the round-trip.
type Command struct {
	Key     string
	Targets []string
	Ops     []Op
}

// queries reports whether the command emits ids on stdout.
func (c Command) queries() bool {
	for _, op := range c.Ops {
		if op == OpQueryIDs {
			return true
		}
	}
	return false
}

// Batch is an ordered list of commands submitted as one engine
// round-trip. Batching independent commands is the required
// optimization: round-trip latency dominates, and it scales with call
// count, not with commands per call.
type Batch struct {
	Commands []Command
}

// Add appends a command over the given targets and returns its
// correlation key.
func (b *Batch) Add(targets []string, ops ...Op) string {
	key := uuid.NewString()
	b.Commands = append(b.Commands, Command{Key: key, Targets: targets, Ops: ops})
	return key
}

// Len returns the number of commands in the batch.
func (b *Batch) Len() int { return len(b.Commands) }

// Empty reports whether the batch has no commands.
func (b *Batch) Empty() bool { return len(b.Commands) == 0 }

// Encode lowers the batch to the engine's action vocabulary for the
// given version: select each command's targets by id, run its ops,
// clear the selection between commands, and persist at the end.
func (b *Batch) Encode(v Version, snapshotPath string) ([]string, error) {
	var actions []string
	deselect, err := actionFor(v, opDeselect)
	if err != nil {
		return nil, err
	}
	for _, cmd := range b.Commands {
		for _, target := range cmd.Targets {
			actions = append(actions, "select-by-id:"+target)
		}
		for _, op := range cmd.Ops {
			action, err := actionFor(v, op)
			if err != nil {
				return nil, err
			}
			actions = append(actions, action)
		}
		actions = append(actions, deselect)
	}
	actions = append(actions, saveAction(v, snapshotPath))
	return actions, nil
}

// Result maps correlation keys to the ids the engine reported for them.
// Only querying commands produce ids; each one produces exactly one line
// (the id of the selection's resulting object), in request order.
type Result struct {
	ids map[string]string
}

// ID returns the id produced for the given correlation key.
func (r *Result) ID(key string) (string, bool) {
	id, ok := r.ids[key]
	return id, ok
}

// parseResult correlates raw stdout with the batch's querying commands.
// Stdout lines look like "id label ...": the first field is the id.
// A short read means the engine lost an object mid-protocol; the caller
// turns that into a fatal consistency error.
func parseResult(b *Batch, stdout string) (*Result, bool) {
	var ids []string
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ids = append(ids, strings.Fields(line)[0])
	}

	res := &Result{ids: make(map[string]string)}
	next := 0
	for _, cmd := range b.Commands {
		if !cmd.queries() {
			continue
		}
		if next >= len(ids) {
			return res, false
		}
		res.ids[cmd.Key] = ids[next]
		next++
	}
	return res, true
}
