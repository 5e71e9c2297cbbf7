package gds

import (
	"errors"
	"fmt"
	"sort"
)

// Policy controls how Resolve treats references to structures the
// library does not define.
type Policy int

const (
	// Strict fails with ErrDanglingReference if any referenced name is
	// undefined.
	Strict Policy = iota
	// Permissive leaves unresolved references in the diagnostics and
	// returns no error for them, for callers doing partial analysis.
	Permissive
)

// Dangling is one reference to a structure name with no definition.
type Dangling struct {
	From string // referencing structure
	To   string // undefined name
}

// Resolution is the side table produced by Resolve. The Library itself
// is never mutated.
type Resolution struct {
	// Table maps every defined structure name to its Structure.
	Table map[string]*Structure
	// Dangling lists every unresolved reference across the whole
	// library, in traversal order.
	Dangling []Dangling
	// Cycles lists every distinct reference cycle as a closed name
	// path, first name repeated at the end.
	Cycles [][]string
	// Roots lists the structures referenced by no other structure,
	// sorted by name. In a well-formed library these are the tops of
	// the hierarchy.
	Roots []string
}

// Resolve validates the reference-by-name relationships of a decoded
// library. It collects every dangling reference and every cycle before
// returning, rather than stopping at the first, so a caller sees the
// whole picture in one pass. Cycles always produce ErrReferenceCycle;
// dangling references produce ErrDanglingReference under Strict only.
// The Resolution is returned alongside any error.
func Resolve(lib *Library, policy Policy) (*Resolution, error) {
	res := &Resolution{Table: make(map[string]*Structure, len(lib.Structures))}
	for _, s := range lib.Structures {
		res.Table[s.Name] = s
	}

	referenced := make(map[string]bool)
	edges := make(map[string][]string, len(lib.Structures))
	for _, s := range lib.Structures {
		for _, name := range s.referencedNames() {
			if _, ok := res.Table[name]; !ok {
				res.Dangling = append(res.Dangling, Dangling{From: s.Name, To: name})
				continue
			}
			referenced[name] = true
			edges[s.Name] = append(edges[s.Name], name)
		}
	}

	for _, s := range lib.Structures {
		if !referenced[s.Name] {
			res.Roots = append(res.Roots, s.Name)
		}
	}
	sort.Strings(res.Roots)

	// Three-color DFS from the candidate roots, then from anything
	// still unvisited: a cycle with no entry point from a root (for
	// example two structures referencing only each other) would
	// otherwise escape the sweep.
	v := &cycleVisitor{edges: edges, color: make(map[string]int)}
	for _, name := range res.Roots {
		v.visit(name)
	}
	for _, s := range lib.Structures {
		if v.color[s.Name] == colorWhite {
			v.visit(s.Name)
		}
	}
	res.Cycles = v.cycles

	var errs []error
	if len(res.Cycles) > 0 {
		errs = append(errs, fmt.Errorf("%w: %d cycle(s), first %v",
			ErrReferenceCycle, len(res.Cycles), res.Cycles[0]))
	}
	if policy == Strict && len(res.Dangling) > 0 {
		first := res.Dangling[0]
		errs = append(errs, fmt.Errorf("%w: %d unresolved, first %q referenced by %q",
			ErrDanglingReference, len(res.Dangling), first.To, first.From))
	}
	return res, errors.Join(errs...)
}

// referencedNames returns the structure names referenced by s, one per
// reference element, in element order.
func (s *Structure) referencedNames() []string {
	var names []string
	for _, el := range s.Elements {
		switch el := el.(type) {
		case *StructRef:
			names = append(names, el.Name)
		case *ArrayRef:
			names = append(names, el.Name)
		}
	}
	return names
}

const (
	colorWhite = iota // unvisited
	colorGray         // on the current DFS path
	colorBlack        // fully explored
)

type cycleVisitor struct {
	edges  map[string][]string
	color  map[string]int
	path   []string
	seen   map[string]struct{}
	cycles [][]string
}

func (v *cycleVisitor) visit(name string) {
	v.color[name] = colorGray
	v.path = append(v.path, name)
	for _, next := range v.edges[name] {
		switch v.color[next] {
		case colorWhite:
			v.visit(next)
		case colorGray:
			v.record(next)
		}
	}
	v.path = v.path[:len(v.path)-1]
	v.color[name] = colorBlack
}

// record captures the cycle closing at start, deduplicating rotations
// of the same cycle by canonicalizing on the smallest member name.
func (v *cycleVisitor) record(start string) {
	idx := 0
	for i, n := range v.path {
		if n == start {
			idx = i
			break
		}
	}
	cyc := append([]string(nil), v.path[idx:]...)

	min := 0
	for i, n := range cyc {
		if n < cyc[min] {
			min = i
		}
	}
	canon := append(append([]string(nil), cyc[min:]...), cyc[:min]...)
	canon = append(canon, canon[0])

	sig := fmt.Sprint(canon)
	if v.seen == nil {
		v.seen = make(map[string]struct{})
	}
	if _, dup := v.seen[sig]; dup {
		return
	}
	v.seen[sig] = struct{}{}
	v.cycles = append(v.cycles, canon)
}
