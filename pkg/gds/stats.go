package gds

import "sort"

// StructureStats summarizes one structure's contents.
type StructureStats struct {
	Name       string
	Elements   int
	References int // SREF plus AREF elements
}

// LibraryStats summarizes a decoded library.
type LibraryStats struct {
	Structures []StructureStats
	Elements   int
	References int
	// Layers lists every layer number that appears on any element,
	// ascending.
	Layers []int16
}

// Stats walks lib and tallies per-structure element and reference
// counts plus the layer inventory.
func Stats(lib *Library) LibraryStats {
	var out LibraryStats
	layers := make(map[int16]struct{})
	for _, s := range lib.Structures {
		ss := StructureStats{Name: s.Name, Elements: len(s.Elements)}
		for _, el := range s.Elements {
			switch el := el.(type) {
			case *Boundary:
				layers[el.Layer] = struct{}{}
			case *Path:
				layers[el.Layer] = struct{}{}
			case *Text:
				layers[el.Layer] = struct{}{}
			case *Node:
				layers[el.Layer] = struct{}{}
			case *Box:
				layers[el.Layer] = struct{}{}
			case *StructRef, *ArrayRef:
				ss.References++
			}
		}
		out.Elements += ss.Elements
		out.References += ss.References
		out.Structures = append(out.Structures, ss)
	}
	for l := range layers {
		out.Layers = append(out.Layers, l)
	}
	sort.Slice(out.Layers, func(i, j int) bool { return out.Layers[i] < out.Layers[j] })
	return out
}
