package engine

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/piwi3910/PosterCut/internal/model"
	"github.com/piwi3910/PosterCut/internal/svgdoc"
)

// Runner executes an encoded action list against a document snapshot
// file and returns the engine's stdout. The file is both input and
// output: the save action at the end of every batch writes the mutated
// document back to it.
type Runner interface {
	Run(snapshotPath string, actions []string) (stdout string, err error)
}

// CLIRunner shells out to the engine binary.
type CLIRunner struct {
	Binary  string
	Version Version
}

// DetectVersion runs the binary once to determine its action
// vocabulary generation.
func DetectVersion(binary string) (Version, error) {
	out, err := exec.Command(binary, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("engine version probe: %w", err)
	}
	return ParseVersion(string(out))
}

// Run invokes the engine with the version-appropriate batch flags.
func (r *CLIRunner) Run(snapshotPath string, actions []string) (string, error) {
	args := []string{snapshotPath}
	switch r.Version {
	case V10:
		// 1.0 has no batch mode; a GUI instance processes the actions
		// and a trailing quit closes it.
		actions = append(actions, "FileQuit")
		args = append(args, "--with-gui")
	case V11:
		args = append(args, "--batch-process")
	}
	args = append(args, "--actions="+strings.Join(actions, ";"))

	out, err := exec.Command(r.Binary, args...).Output()
	if err != nil {
		return "", fmt.Errorf("engine run: %w", err)
	}
	return string(out), nil
}

// Session owns one poster run's document handle and its engine
// round-trips. The document is exclusively owned for the whole run;
// every Apply snapshots it, runs one batch, and reloads it, so the
// in-memory tree always matches the on-disk state the engine last saw.
type Session struct {
	doc     *svgdoc.Document
	workdir string
	version Version
	runner  Runner
	log     *slog.Logger
	trips   int
}

// NewSession wraps a parsed document for batched engine access.
func NewSession(doc *svgdoc.Document, runner Runner, version Version, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Session{doc: doc, version: version, runner: runner, log: log}
}

// Doc returns the current document handle. The pointer changes on every
// Apply; callers must not hold node references across round-trips.
func (s *Session) Doc() *svgdoc.Document { return s.doc }

// RoundTrips returns how many engine calls the session has made.
func (s *Session) RoundTrips() int { return s.trips }

// Version returns the engine generation the session encodes for.
func (s *Session) Version() Version { return s.version }

// Supports reports whether the session's engine version can encode all
// of the given ops.
func (s *Session) Supports(ops ...Op) bool {
	for _, op := range ops {
		if _, err := actionFor(s.version, op); err != nil {
			return false
		}
	}
	return true
}

// Apply runs one batch as a single engine round-trip and reloads the
// document. It returns the correlation-key→id mapping for the batch's
// querying commands. A short id read is reported as a consistency
// error for the first unresolved key.
func (s *Session) Apply(phase string, batch *Batch) (*Result, error) {
	if batch.Empty() {
		return &Result{ids: map[string]string{}}, nil
	}

	snapshot, err := s.snapshot()
	if err != nil {
		return nil, fmt.Errorf("%s: snapshot: %w", phase, err)
	}
	defer os.Remove(snapshot)

	actions, err := batch.Encode(s.version, snapshot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", phase, err)
	}

	start := time.Now()
	stdout, err := s.runner.Run(snapshot, actions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", phase, err)
	}
	s.trips++

	doc, err := svgdoc.Load(snapshot)
	if err != nil {
		return nil, fmt.Errorf("%s: reload: %w", phase, err)
	}
	purgeStaleTagrefs(doc)
	s.doc = doc

	s.log.Info("engine round-trip",
		"phase", phase,
		"commands", batch.Len(),
		"actions", len(actions),
		"duration", time.Since(start))

	res, complete := parseResult(batch, stdout)
	if !complete {
		for _, cmd := range batch.Commands {
			if !cmd.queries() {
				continue
			}
			if _, ok := res.ID(cmd.Key); !ok {
				return nil, &model.ConsistencyError{Phase: phase, Ref: cmd.Key}
			}
		}
	}
	return res, nil
}

func (s *Session) snapshot() (string, error) {
	if s.workdir == "" {
		dir, err := os.MkdirTemp("", "postercut-*")
		if err != nil {
			return "", err
		}
		s.workdir = dir
	}
	path := filepath.Join(s.workdir, fmt.Sprintf("pathops-%d.svg", s.trips))
	if err := s.doc.Save(path); err != nil {
		return "", err
	}
	return path, nil
}

// Close removes the session's scratch directory.
func (s *Session) Close() error {
	if s.workdir == "" {
		return nil
	}
	return os.RemoveAll(s.workdir)
}

// purgeStaleTagrefs drops selection-set tagrefs whose referenced object
// no longer exists. The host editor crashes on documents that keep
// them after the referenced element was consumed by a path op.
func purgeStaleTagrefs(doc *svgdoc.Document) {
	defs := findTag(doc.Root, "defs")
	if defs == nil {
		return
	}
	for _, tag := range defs.Children {
		if tag.Name.Local != "tag" {
			continue
		}
		var stale []*svgdoc.Node
		for _, ref := range tag.Children {
			if ref.Name.Local != "tagref" {
				continue
			}
			href := strings.TrimPrefix(ref.AttrNS(svgdoc.NSXLink, "href"), "#")
			if href != "" && doc.ByID(href) == nil {
				stale = append(stale, ref)
			}
		}
		for _, ref := range stale {
			doc.Remove(ref)
		}
	}
}

func findTag(n *svgdoc.Node, local string) *svgdoc.Node {
	if n.Name.Local == local {
		return n
	}
	for _, c := range n.Children {
		if found := findTag(c, local); found != nil {
			return found
		}
	}
	return nil
}
