// Package gds decodes and encodes GDSII stream files, the binary
// interchange format used by IC layout tools. A Library is decoded from
// a byte buffer into a tree of Structures and Elements, and can be
// encoded back into a conformant stream. Structure references are kept
// as names; Resolve materializes them into a lookup table and reports
// dangling references and cycles.
//
// The model is immutable with respect to the stream it was decoded
// from: encoding never mutates it, and a fully constructed Library is
// safe to share read-only across goroutines.
package gds

import "time"

// Point is a coordinate pair in integer database units.
type Point struct {
	X int32
	Y int32
}

// Property is one entry of an element's ordered property list.
type Property struct {
	Attr  int16
	Value string
}

// ElFlags are the template/external bits of an ELFLAGS record.
type ElFlags struct {
	Template bool
	External bool
}

// Transform is the placement transform of a reference or text element:
// reflection about the x axis, then rotation, then magnification, all
// about the placement origin. The zero Angle and a Mag of 1 with no
// reflection is the identity.
type Transform struct {
	Reflected bool
	AbsMag    bool
	AbsAngle  bool
	Mag       float64
	Angle     float64 // degrees, counterclockwise
}

// IdentityTransform returns the default transform.
func IdentityTransform() Transform {
	return Transform{Mag: 1}
}

// IsIdentity reports whether t performs no reflection, rotation or
// scaling and carries no absolute flags.
func (t Transform) IsIdentity() bool {
	return !t.Reflected && !t.AbsMag && !t.AbsAngle && t.Mag == 1 && t.Angle == 0
}

// RawRecord is an unrecognized or unmodeled record preserved opaquely
// for round-tripping. Anchor fixes its position among the known records
// of its container: for library header extras it counts the known
// header records already seen, for body extras the structure index, and
// for structure extras the element index.
type RawRecord struct {
	Type     byte
	DataType byte
	Data     []byte
	Anchor   int
}

// Element is one entry of a structure. The concrete types are Boundary,
// Path, StructRef, ArrayRef, Text, Node and Box.
type Element interface {
	element()
}

// Boundary is a filled polygon. The coordinate list repeats the first
// point as its last point.
type Boundary struct {
	Layer      int16
	Datatype   int16
	XY         []Point
	Flags      ElFlags
	Plex       int32
	Properties []Property
}

// Path is a wire with a width and an end-cap style.
type Path struct {
	Layer    int16
	Datatype int16
	// PathType selects the end-cap: 0 flush, 1 round, 2 square,
	// 4 square with explicit extensions.
	PathType   int16
	Width      int32
	BeginExt   int32
	EndExt     int32
	XY         []Point
	Flags      ElFlags
	Plex       int32
	Properties []Property
}

// StructRef places one structure inside another by name. The name is a
// non-owning reference resolved through Resolve, which is what lets
// forward references exist while the model stays a strict tree.
type StructRef struct {
	Name       string
	Transform  Transform
	Origin     Point
	Flags      ElFlags
	Plex       int32
	Properties []Property
}

// ArrayRef places a grid of Cols x Rows instances of a structure. The
// three coordinates are the array origin and the two points displaced
// Cols (respectively Rows) database-unit steps along each axis.
type ArrayRef struct {
	Name       string
	Transform  Transform
	Cols       int16
	Rows       int16
	Origin     Point
	ColExtent  Point
	RowExtent  Point
	Flags      ElFlags
	Plex       int32
	Properties []Property
}

// Text is an annotation string anchored at one point.
type Text struct {
	Layer        int16
	TextType     int16
	Presentation uint16
	PathType     int16
	Width        int32
	Transform    Transform
	Origin       Point
	Body         string
	Flags        ElFlags
	Plex         int32
	Properties   []Property
}

// Node is an electrical net annotation over a coordinate list.
type Node struct {
	Layer      int16
	NodeType   int16
	XY         []Point
	Flags      ElFlags
	Plex       int32
	Properties []Property
}

// Box is a four-sided marker polygon. Like Boundary, its coordinate
// list closes on the first point.
type Box struct {
	Layer      int16
	BoxType    int16
	XY         []Point
	Flags      ElFlags
	Plex       int32
	Properties []Property
}

func (*Boundary) element()  {}
func (*Path) element()      {}
func (*StructRef) element() {}
func (*ArrayRef) element()  {}
func (*Text) element()      {}
func (*Node) element()      {}
func (*Box) element()       {}

// Structure is a named reusable cell. Element order is preserved
// exactly as decoded; it affects write-back fidelity, not meaning.
type Structure struct {
	Name     string
	Created  time.Time
	Modified time.Time
	Elements []Element
	// Extras holds unrecognized records seen between elements,
	// anchored by element index.
	Extras []RawRecord
}

// Library is the top-level container of a GDSII stream.
type Library struct {
	Name     string
	Created  time.Time
	Modified time.Time
	// Version is the stream format version from the HEADER record,
	// e.g. 600 for release 6.
	Version int16
	// UserUnit is the size of one database unit in user units.
	// MeterUnit is the size of one database unit in meters; physical
	// size = coordinate * MeterUnit.
	UserUnit   float64
	MeterUnit  float64
	Structures []*Structure
	// HeaderExtras holds unrecognized or unmodeled records seen in the
	// library header, anchored by the count of known header records
	// already decoded. BodyExtras holds those seen between structures,
	// anchored by structure index.
	HeaderExtras []RawRecord
	BodyExtras   []RawRecord
}

// Structure returns the structure with the given name, or nil.
func (l *Library) Structure(name string) *Structure {
	for _, s := range l.Structures {
		if s.Name == name {
			return s
		}
	}
	return nil
}
