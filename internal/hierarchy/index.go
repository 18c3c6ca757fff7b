// Package hierarchy indexes asset classes by name and answers ancestry
// queries over them.
//
// The index is an arena of nodes addressed by slot number. Ancestor and child
// edges are slot numbers into the arena, so a fully built index is a plain
// value that can be shared by any number of readers without locking.
package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"soulminer/internal/asset"
	"soulminer/internal/logger"
)

var ErrCycle = errors.New("ancestor chain cycles")

const noParent = -1

type node struct {
	class    *asset.Class
	parent   int
	children []int
}

// Unresolved records an ancestor reference that names a class outside the
// index.
type Unresolved struct {
	Class     string
	SuperName string
}

type Index struct {
	nodes      []node
	byName     map[string]int
	unresolved []Unresolved
	log        *logger.Logger
}

type buildOptions struct {
	lookup func(name string) (*asset.Class, bool)
	log    *logger.Logger
}

type Option func(*buildOptions)

// WithLookup resolves ancestor references missing from the corpus, such as
// engine native classes. Classes it returns are indexed as well.
func WithLookup(lookup func(name string) (*asset.Class, bool)) Option {
	return func(o *buildOptions) {
		o.lookup = lookup
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(o *buildOptions) {
		o.log = log
	}
}

// Build consumes every class of the sequence once. It fails only when the
// sequence itself yields an error or ctx is cancelled.
func Build(ctx context.Context, classes iter.Seq2[*asset.Class, error], opts ...Option) (*Index, error) {
	options := buildOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	idx := &Index{
		byName: make(map[string]int),
		log:    logger.OrNop(options.log),
	}

	for class, err := range classes {
		if err != nil {
			return nil, fmt.Errorf("enumerating classes: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if class == nil || strings.TrimSpace(class.Name) == "" {
			idx.log.Warn("skipping unnamed class")
			continue
		}
		if existing, ok := idx.byName[key(class.Name)]; ok {
			idx.log.Warn("duplicate class name, keeping first",
				"class", class.Name,
				"kept", idx.nodes[existing].class.Package,
				"dropped", class.Package,
			)
			continue
		}
		idx.add(class)
	}

	if options.lookup != nil {
		idx.resolveExternal(options.lookup)
	}
	idx.link()

	return idx, nil
}

func (x *Index) add(class *asset.Class) int {
	slot := len(x.nodes)
	x.nodes = append(x.nodes, node{class: class, parent: noParent})
	x.byName[key(class.Name)] = slot
	return slot
}

// resolveExternal indexes ancestors supplied by lookup. The work list grows
// as resolved classes bring their own ancestors with them.
func (x *Index) resolveExternal(lookup func(name string) (*asset.Class, bool)) {
	for i := 0; i < len(x.nodes); i++ {
		superName := x.nodes[i].class.SuperName
		if superName == "" {
			continue
		}
		if _, ok := x.byName[key(superName)]; ok {
			continue
		}
		external, ok := lookup(superName)
		if !ok || external == nil {
			continue
		}
		if !strings.EqualFold(external.Name, superName) {
			x.log.Warn("lookup returned a different class", "wanted", superName, "got", external.Name)
			continue
		}
		x.add(external)
	}
}

func (x *Index) link() {
	for i := range x.nodes {
		superName := x.nodes[i].class.SuperName
		if superName == "" {
			continue
		}
		parent, ok := x.byName[key(superName)]
		if !ok {
			x.unresolved = append(x.unresolved, Unresolved{Class: x.nodes[i].class.Name, SuperName: superName})
			continue
		}
		if parent == i {
			x.log.Error("class names itself as ancestor", "class", x.nodes[i].class.Name)
			continue
		}
		x.nodes[i].parent = parent
		x.nodes[parent].children = append(x.nodes[parent].children, i)
	}
}

func (x *Index) Len() int {
	return len(x.nodes)
}

func (x *Index) Class(name string) (*asset.Class, bool) {
	slot, ok := x.byName[key(name)]
	if !ok {
		return nil, false
	}
	return x.nodes[slot].class, true
}

// Super returns the indexed immediate ancestor of name.
func (x *Index) Super(name string) (*asset.Class, bool) {
	slot, ok := x.byName[key(name)]
	if !ok {
		return nil, false
	}
	parent := x.nodes[slot].parent
	if parent == noParent {
		return nil, false
	}
	return x.nodes[parent].class, true
}

// Classes returns every indexed class in corpus order.
func (x *Index) Classes() []*asset.Class {
	out := make([]*asset.Class, 0, len(x.nodes))
	for _, n := range x.nodes {
		out = append(out, n.class)
	}
	return out
}

// Roots returns the classes without an indexed ancestor.
func (x *Index) Roots() []*asset.Class {
	var out []*asset.Class
	for _, n := range x.nodes {
		if n.parent == noParent {
			out = append(out, n.class)
		}
	}
	return out
}

func (x *Index) Unresolved() []Unresolved {
	return append([]Unresolved(nil), x.unresolved...)
}

// DerivedClasses returns every class transitively derived from base, in
// pre-order with children in corpus order. base itself is never included.
// Unknown names and leaf classes yield an empty result.
func (x *Index) DerivedClasses(base string) []*asset.Class {
	root, ok := x.byName[key(base)]
	if !ok {
		return []*asset.Class{}
	}

	out := []*asset.Class{}
	visited := map[int]bool{root: true}
	stack := reversed(x.nodes[root].children)
	for len(stack) > 0 {
		slot := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[slot] {
			continue
		}
		visited[slot] = true
		out = append(out, x.nodes[slot].class)
		stack = append(stack, reversed(x.nodes[slot].children)...)
	}
	return out
}

// IsDerivedFrom reports whether ancestor is on name's ancestor chain,
// name itself included. A cycling chain is logged and answers false.
func (x *Index) IsDerivedFrom(name, ancestor string) bool {
	start, ok := x.byName[key(name)]
	if !ok {
		return false
	}
	target, ok := x.byName[key(ancestor)]
	if !ok {
		return false
	}

	found := false
	err := x.walkUp(start, func(slot int) bool {
		if slot == target {
			found = true
			return false
		}
		return true
	})
	if err != nil {
		x.log.Error("ancestor lookup aborted", "class", name, "ancestor", ancestor, "error", err)
		return false
	}
	return found
}

// Ancestors returns name's chain from the class itself up to its root.
func (x *Index) Ancestors(name string) ([]*asset.Class, error) {
	start, ok := x.byName[key(name)]
	if !ok {
		return nil, nil
	}
	var chain []*asset.Class
	err := x.walkUp(start, func(slot int) bool {
		chain = append(chain, x.nodes[slot].class)
		return true
	})
	return chain, err
}

// Depth counts the indexed ancestors above name; roots are at depth 0.
func (x *Index) Depth(name string) (int, error) {
	chain, err := x.Ancestors(name)
	if err != nil || len(chain) == 0 {
		return 0, err
	}
	return len(chain) - 1, nil
}

// Walk visits name and then each indexed ancestor until visit returns false
// or the chain ends. It returns ErrCycle when a class is seen twice.
func (x *Index) Walk(name string, visit func(*asset.Class) bool) error {
	start, ok := x.byName[key(name)]
	if !ok {
		return nil
	}
	return x.walkUp(start, func(slot int) bool {
		return visit(x.nodes[slot].class)
	})
}

func (x *Index) walkUp(start int, visit func(slot int) bool) error {
	seen := make(map[int]bool)
	for slot := start; slot != noParent; slot = x.nodes[slot].parent {
		if seen[slot] || len(seen) > len(x.nodes) {
			return fmt.Errorf("%s: %w", x.nodes[slot].class.Name, ErrCycle)
		}
		seen[slot] = true
		if !visit(slot) {
			return nil
		}
	}
	return nil
}

func reversed(slots []int) []int {
	out := make([]int, len(slots))
	for i, slot := range slots {
		out[len(slots)-1-i] = slot
	}
	return out
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
