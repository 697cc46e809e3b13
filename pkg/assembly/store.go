// Package assembly accumulates the output trees of successive compiles
// for one device and tracks committed generations for change review.
package assembly

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/pcreech/aclgen/pkg/junos"
)

// DefaultGenerations is the history bound used when New is given a
// non-positive limit.
const DefaultGenerations = 32

// Generation is one committed rendering of the assembled configuration.
type Generation struct {
	Seq  int
	Time time.Time
	Text string
}

// Store accumulates compiled configuration trees for one device.
// Applying a tree merges it with replace semantics, so recompiling a
// policy supersedes its earlier blocks without disturbing unrelated
// ones.
type Store struct {
	// Logger, when set, records commits. The store is otherwise silent.
	Logger *slog.Logger

	mu   sync.RWMutex
	tree *junos.Tree
	gens []Generation
	seq  int
	max  int
}

// New creates an empty store retaining up to max committed generations.
// A non-positive max selects DefaultGenerations.
func New(max int) *Store {
	if max <= 0 {
		max = DefaultGenerations
	}
	return &Store{
		tree: &junos.Tree{},
		max:  max,
	}
}

// Apply merges a compiled tree into the candidate assembly.
func (s *Store) Apply(tree *junos.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Merge(tree)
}

// Tree returns a deep copy of the candidate assembly.
func (s *Store) Tree() *junos.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Clone()
}

// Render serializes the candidate assembly as hierarchical syntax.
func (s *Store) Render() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Format()
}

// RenderSet serializes the candidate assembly as flat set commands.
func (s *Store) RenderSet() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.FormatSet()
}

// Commit renders the candidate assembly and appends the text to the
// generation history, dropping the oldest entry beyond the bound.
func (s *Store) Commit() (Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.tree.Format()
	if err != nil {
		return Generation{}, fmt.Errorf("commit: %w", err)
	}

	s.seq++
	gen := Generation{Seq: s.seq, Time: time.Now(), Text: text}
	s.gens = append(s.gens, gen)
	if len(s.gens) > s.max {
		s.gens = s.gens[1:]
	}

	if s.Logger != nil {
		s.Logger.Debug("committed generation", "seq", gen.Seq, "bytes", len(gen.Text))
	}
	return gen, nil
}

// Generations returns the retained history, oldest first.
func (s *Store) Generations() []Generation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Generation, len(s.gens))
	copy(out, s.gens)
	return out
}

// Generation returns the committed generation with the given sequence
// number, if it is still retained.
func (s *Store) Generation(seq int) (Generation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation(seq)
}

func (s *Store) generation(seq int) (Generation, error) {
	for _, g := range s.gens {
		if g.Seq == seq {
			return g, nil
		}
	}
	return Generation{}, fmt.Errorf("generation %d: not retained (have %d)", seq, len(s.gens))
}

// Diff returns a unified diff between two committed generations.
func (s *Store) Diff(a, b int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ga, err := s.generation(a)
	if err != nil {
		return "", err
	}
	gb, err := s.generation(b)
	if err != nil {
		return "", err
	}
	return unifiedDiff(ga, gb)
}

// LastDiff returns a unified diff from the previous generation to the
// most recent one. The first generation diffs against empty text.
func (s *Store) LastDiff() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.gens)
	if n == 0 {
		return "", fmt.Errorf("no generations committed")
	}
	var prev Generation
	if n > 1 {
		prev = s.gens[n-2]
	}
	return unifiedDiff(prev, s.gens[n-1])
}

func unifiedDiff(a, b Generation) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a.Text),
		B:        difflib.SplitLines(b.Text),
		FromFile: label(a),
		ToFile:   label(b),
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}

func label(g Generation) string {
	if g.Seq == 0 {
		return "empty"
	}
	return fmt.Sprintf("generation %d", g.Seq)
}
