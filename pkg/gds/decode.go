package gds

import (
	"fmt"
	"io"
	"time"

	"github.com/layoutkit/gdsgo/internal/stream"
)

// Decode parses a complete GDSII stream from data into a Library. The
// input must contain exactly one library; bytes after ENDLIB may only
// be the zero padding writers use to fill the final tape block.
func Decode(data []byte) (*Library, error) {
	d := &decoder{
		r:     stream.NewReader(data),
		lib:   &Library{},
		state: stateStart,
	}
	for d.state != stateEnd {
		d.off = d.r.Pos()
		rec, err := stream.ReadRecord(d.r)
		if err != nil {
			return nil, err
		}
		if rec.IsPadding() {
			return nil, fmt.Errorf("%w: zero-length record at offset %d in state %s",
				ErrGrammarViolation, d.off, d.state)
		}
		if err := d.dispatch(rec); err != nil {
			return nil, err
		}
	}
	for _, b := range d.r.Peek(d.r.Remaining()) {
		if b != 0 {
			return nil, fmt.Errorf("%w: %d non-padding trailing bytes after ENDLIB",
				ErrGrammarViolation, d.r.Remaining())
		}
	}
	return d.lib, nil
}

// DecodeFrom reads r to its end and decodes the buffered stream.
func DecodeFrom(r io.Reader) (*Library, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

type decoder struct {
	r     *stream.Reader
	state state
	lib   *Library
	off   int // offset of the record being dispatched

	// Known header records decoded so far; anchors passthrough records.
	headerSeen  int
	seenBgnLib  bool
	seenLibName bool

	str         *Structure
	elem        Element
	pendingAttr *int16
}

func (d *decoder) dispatch(rec stream.Record) error {
	if h, ok := grammar[d.state][rec.Type]; ok {
		return h(d, rec)
	}
	if !stream.IsKnown(rec.Type) {
		// Vendor extensions are passthrough-safe outside elements.
		switch d.state {
		case stateLibHeader:
			return d.onHeaderExtra(rec)
		case stateLibBody:
			d.lib.BodyExtras = append(d.lib.BodyExtras, rawFrom(rec, len(d.lib.Structures)))
			return nil
		case stateStructure:
			return d.onStructureExtra(rec)
		}
	}
	return d.violation(rec)
}

func (d *decoder) violation(rec stream.Record) error {
	return fmt.Errorf("%w: %s at offset %d in state %s",
		ErrGrammarViolation, rec.Name(), d.off, d.state)
}

func rawFrom(rec stream.Record, anchor int) RawRecord {
	data := make([]byte, len(rec.Data))
	copy(data, rec.Data)
	return RawRecord{Type: rec.Type, DataType: rec.DataType, Data: data, Anchor: anchor}
}

// timesOf splits a BGNLIB/BGNSTR payload of twelve two-byte integers
// into the creation and modification stamps. An all-zero stamp decodes
// as the zero time.
func timesOf(rec stream.Record) (time.Time, time.Time, error) {
	vals, err := rec.Int16s()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if len(vals) != 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s carries %d two-byte integers, want 12",
			ErrMalformedRecord, rec.Name(), len(vals))
	}
	return stampTime(vals[:6]), stampTime(vals[6:]), nil
}

func stampTime(v []int16) time.Time {
	if v[0] == 0 && v[1] == 0 && v[2] == 0 && v[3] == 0 && v[4] == 0 && v[5] == 0 {
		return time.Time{}
	}
	return time.Date(int(v[0]), time.Month(v[1]), int(v[2]),
		int(v[3]), int(v[4]), int(v[5]), 0, time.UTC)
}

// Library header.

func (d *decoder) onHeader(rec stream.Record) error {
	v, err := rec.Int16()
	if err != nil {
		return err
	}
	d.lib.Version = v
	d.headerSeen = 1
	d.state = stateLibHeader
	return nil
}

func (d *decoder) onBgnLib(rec stream.Record) error {
	if d.seenBgnLib {
		return d.violation(rec)
	}
	created, modified, err := timesOf(rec)
	if err != nil {
		return err
	}
	d.lib.Created, d.lib.Modified = created, modified
	d.seenBgnLib = true
	d.headerSeen++
	return nil
}

func (d *decoder) onLibName(rec stream.Record) error {
	if !d.seenBgnLib || d.seenLibName {
		return d.violation(rec)
	}
	name, err := rec.Ascii()
	if err != nil {
		return err
	}
	d.lib.Name = name
	d.seenLibName = true
	d.headerSeen++
	return nil
}

func (d *decoder) onUnits(rec stream.Record) error {
	if !d.seenLibName {
		return d.violation(rec)
	}
	vals, err := rec.Reals()
	if err != nil {
		return err
	}
	if len(vals) != 2 {
		return fmt.Errorf("%w: UNITS carries %d reals, want 2", ErrMalformedRecord, len(vals))
	}
	d.lib.UserUnit, d.lib.MeterUnit = vals[0], vals[1]
	d.headerSeen++
	d.state = stateLibBody
	return nil
}

func (d *decoder) onHeaderExtra(rec stream.Record) error {
	d.lib.HeaderExtras = append(d.lib.HeaderExtras, rawFrom(rec, d.headerSeen))
	return nil
}

// Structures.

func (d *decoder) onBgnStr(rec stream.Record) error {
	created, modified, err := timesOf(rec)
	if err != nil {
		return err
	}
	d.str = &Structure{Created: created, Modified: modified}
	d.state = stateStructure
	return nil
}

func (d *decoder) onStrName(rec stream.Record) error {
	if d.str.Name != "" {
		return d.violation(rec)
	}
	name, err := rec.Ascii()
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: empty STRNAME at offset %d", ErrMalformedRecord, d.off)
	}
	if d.lib.Structure(name) != nil {
		return fmt.Errorf("%w: duplicate structure name %q at offset %d",
			ErrGrammarViolation, name, d.off)
	}
	d.str.Name = name
	return nil
}

func (d *decoder) onStructureExtra(rec stream.Record) error {
	if d.str.Name == "" {
		return d.violation(rec)
	}
	d.str.Extras = append(d.str.Extras, rawFrom(rec, len(d.str.Elements)))
	return nil
}

func (d *decoder) onEndStr(rec stream.Record) error {
	if d.str.Name == "" {
		return d.violation(rec)
	}
	d.lib.Structures = append(d.lib.Structures, d.str)
	d.str = nil
	d.state = stateLibBody
	return nil
}

func (d *decoder) onEndLib(rec stream.Record) error {
	d.state = stateEnd
	return nil
}

// Elements.

func (d *decoder) onElementStart(rec stream.Record) error {
	if d.str.Name == "" {
		return d.violation(rec)
	}
	switch rec.Type {
	case stream.TypeBoundary:
		d.elem = &Boundary{}
	case stream.TypePath:
		d.elem = &Path{}
	case stream.TypeSRef:
		d.elem = &StructRef{Transform: IdentityTransform()}
	case stream.TypeARef:
		d.elem = &ArrayRef{Transform: IdentityTransform()}
	case stream.TypeText:
		d.elem = &Text{Transform: IdentityTransform()}
	case stream.TypeNode:
		d.elem = &Node{}
	case stream.TypeBox:
		d.elem = &Box{}
	}
	d.state = stateElement
	return nil
}

func (d *decoder) onLayer(rec stream.Record) error {
	v, err := rec.Int16()
	if err != nil {
		return err
	}
	switch e := d.elem.(type) {
	case *Boundary:
		e.Layer = v
	case *Path:
		e.Layer = v
	case *Text:
		e.Layer = v
	case *Node:
		e.Layer = v
	case *Box:
		e.Layer = v
	default:
		return d.violation(rec)
	}
	return nil
}

func (d *decoder) onDatatype(rec stream.Record) error {
	v, err := rec.Int16()
	if err != nil {
		return err
	}
	switch e := d.elem.(type) {
	case *Boundary:
		e.Datatype = v
	case *Path:
		e.Datatype = v
	default:
		return d.violation(rec)
	}
	return nil
}

func (d *decoder) onWidth(rec stream.Record) error {
	vals, err := rec.Int32s()
	if err != nil {
		return err
	}
	if len(vals) != 1 {
		return fmt.Errorf("%w: WIDTH carries %d integers, want 1", ErrMalformedRecord, len(vals))
	}
	switch e := d.elem.(type) {
	case *Path:
		e.Width = vals[0]
	case *Text:
		e.Width = vals[0]
	default:
		return d.violation(rec)
	}
	return nil
}

func (d *decoder) onPathType(rec stream.Record) error {
	v, err := rec.Int16()
	if err != nil {
		return err
	}
	switch e := d.elem.(type) {
	case *Path:
		e.PathType = v
	case *Text:
		e.PathType = v
	default:
		return d.violation(rec)
	}
	return nil
}

func (d *decoder) onBgnExtn(rec stream.Record) error {
	return d.pathExtn(rec, true)
}

func (d *decoder) onEndExtn(rec stream.Record) error {
	return d.pathExtn(rec, false)
}

func (d *decoder) pathExtn(rec stream.Record, begin bool) error {
	vals, err := rec.Int32s()
	if err != nil {
		return err
	}
	if len(vals) != 1 {
		return fmt.Errorf("%w: %s carries %d integers, want 1", ErrMalformedRecord, rec.Name(), len(vals))
	}
	p, ok := d.elem.(*Path)
	if !ok {
		return d.violation(rec)
	}
	if begin {
		p.BeginExt = vals[0]
	} else {
		p.EndExt = vals[0]
	}
	return nil
}

func (d *decoder) onXY(rec stream.Record) error {
	vals, err := rec.Int32s()
	if err != nil {
		return err
	}
	if len(vals) == 0 || len(vals)%2 != 0 {
		return fmt.Errorf("%w: XY at offset %d carries %d integers, want a positive even count",
			ErrMalformedRecord, d.off, len(vals))
	}
	pts := make([]Point, len(vals)/2)
	for i := range pts {
		pts[i] = Point{X: vals[2*i], Y: vals[2*i+1]}
	}
	switch e := d.elem.(type) {
	case *Boundary:
		e.XY = pts
	case *Path:
		e.XY = pts
	case *Node:
		e.XY = pts
	case *Box:
		e.XY = pts
	case *StructRef:
		if len(pts) != 1 {
			return fmt.Errorf("%w: SREF XY carries %d points, want 1", ErrMalformedRecord, len(pts))
		}
		e.Origin = pts[0]
	case *Text:
		if len(pts) != 1 {
			return fmt.Errorf("%w: TEXT XY carries %d points, want 1", ErrMalformedRecord, len(pts))
		}
		e.Origin = pts[0]
	case *ArrayRef:
		if len(pts) != 3 {
			return fmt.Errorf("%w: AREF XY carries %d points, want 3", ErrMalformedRecord, len(pts))
		}
		e.Origin, e.ColExtent, e.RowExtent = pts[0], pts[1], pts[2]
	default:
		return d.violation(rec)
	}
	return nil
}

func (d *decoder) onSName(rec stream.Record) error {
	name, err := rec.Ascii()
	if err != nil {
		return err
	}
	switch e := d.elem.(type) {
	case *StructRef:
		e.Name = name
	case *ArrayRef:
		e.Name = name
	default:
		return d.violation(rec)
	}
	return nil
}

func (d *decoder) onColRow(rec stream.Record) error {
	vals, err := rec.Int16s()
	if err != nil {
		return err
	}
	if len(vals) != 2 {
		return fmt.Errorf("%w: COLROW carries %d integers, want 2", ErrMalformedRecord, len(vals))
	}
	a, ok := d.elem.(*ArrayRef)
	if !ok {
		return d.violation(rec)
	}
	if vals[0] <= 0 || vals[1] <= 0 {
		return fmt.Errorf("%w: COLROW %dx%d out of range at offset %d",
			ErrMalformedRecord, vals[0], vals[1], d.off)
	}
	a.Cols, a.Rows = vals[0], vals[1]
	return nil
}

func (d *decoder) transform() *Transform {
	switch e := d.elem.(type) {
	case *StructRef:
		return &e.Transform
	case *ArrayRef:
		return &e.Transform
	case *Text:
		return &e.Transform
	default:
		return nil
	}
}

func (d *decoder) onSTrans(rec stream.Record) error {
	bits, err := rec.Bits()
	if err != nil {
		return err
	}
	t := d.transform()
	if t == nil {
		return d.violation(rec)
	}
	// Bit 0 is the leftmost bit of the flag word.
	t.Reflected = bits&0x8000 != 0
	t.AbsMag = bits&0x0004 != 0
	t.AbsAngle = bits&0x0002 != 0
	return nil
}

func (d *decoder) onMag(rec stream.Record) error {
	v, err := rec.Real()
	if err != nil {
		return err
	}
	t := d.transform()
	if t == nil {
		return d.violation(rec)
	}
	t.Mag = v
	return nil
}

func (d *decoder) onAngle(rec stream.Record) error {
	v, err := rec.Real()
	if err != nil {
		return err
	}
	t := d.transform()
	if t == nil {
		return d.violation(rec)
	}
	t.Angle = v
	return nil
}

func (d *decoder) onTextType(rec stream.Record) error {
	v, err := rec.Int16()
	if err != nil {
		return err
	}
	txt, ok := d.elem.(*Text)
	if !ok {
		return d.violation(rec)
	}
	txt.TextType = v
	return nil
}

func (d *decoder) onPresentation(rec stream.Record) error {
	bits, err := rec.Bits()
	if err != nil {
		return err
	}
	txt, ok := d.elem.(*Text)
	if !ok {
		return d.violation(rec)
	}
	txt.Presentation = bits
	return nil
}

func (d *decoder) onString(rec stream.Record) error {
	s, err := rec.Ascii()
	if err != nil {
		return err
	}
	txt, ok := d.elem.(*Text)
	if !ok {
		return d.violation(rec)
	}
	txt.Body = s
	return nil
}

func (d *decoder) onNodeType(rec stream.Record) error {
	v, err := rec.Int16()
	if err != nil {
		return err
	}
	n, ok := d.elem.(*Node)
	if !ok {
		return d.violation(rec)
	}
	n.NodeType = v
	return nil
}

func (d *decoder) onBoxType(rec stream.Record) error {
	v, err := rec.Int16()
	if err != nil {
		return err
	}
	b, ok := d.elem.(*Box)
	if !ok {
		return d.violation(rec)
	}
	b.BoxType = v
	return nil
}

func (d *decoder) onElFlags(rec stream.Record) error {
	bits, err := rec.Bits()
	if err != nil {
		return err
	}
	f := elemFlags(d.elem)
	// Bit 15 is the rightmost bit of the flag word.
	f.Template = bits&0x0001 != 0
	f.External = bits&0x0002 != 0
	return nil
}

func (d *decoder) onPlex(rec stream.Record) error {
	vals, err := rec.Int32s()
	if err != nil {
		return err
	}
	if len(vals) != 1 {
		return fmt.Errorf("%w: PLEX carries %d integers, want 1", ErrMalformedRecord, len(vals))
	}
	*elemPlex(d.elem) = vals[0]
	return nil
}

func (d *decoder) onPropAttr(rec stream.Record) error {
	if d.pendingAttr != nil {
		return d.violation(rec)
	}
	v, err := rec.Int16()
	if err != nil {
		return err
	}
	d.pendingAttr = &v
	return nil
}

func (d *decoder) onPropValue(rec stream.Record) error {
	if d.pendingAttr == nil {
		return d.violation(rec)
	}
	s, err := rec.Ascii()
	if err != nil {
		return err
	}
	props := elemProps(d.elem)
	*props = append(*props, Property{Attr: *d.pendingAttr, Value: s})
	d.pendingAttr = nil
	return nil
}

func (d *decoder) onEndEl(rec stream.Record) error {
	if d.pendingAttr != nil {
		return fmt.Errorf("%w: PROPATTR without PROPVALUE before ENDEL at offset %d",
			ErrGrammarViolation, d.off)
	}
	if err := d.checkComplete(rec); err != nil {
		return err
	}
	d.str.Elements = append(d.str.Elements, d.elem)
	d.elem = nil
	d.state = stateStructure
	return nil
}

// checkComplete verifies the records required for the element kind were
// all present before ENDEL.
func (d *decoder) checkComplete(rec stream.Record) error {
	missing := ""
	switch e := d.elem.(type) {
	case *Boundary:
		if len(e.XY) == 0 {
			missing = "XY"
		}
	case *Path:
		if len(e.XY) == 0 {
			missing = "XY"
		}
	case *Node:
		if len(e.XY) == 0 {
			missing = "XY"
		}
	case *Box:
		if len(e.XY) == 0 {
			missing = "XY"
		}
	case *StructRef:
		if e.Name == "" {
			missing = "SNAME"
		}
	case *ArrayRef:
		if e.Name == "" {
			missing = "SNAME"
		} else if e.Cols == 0 {
			missing = "COLROW"
		}
	case *Text:
		// STRING is required; an empty body is legal, so no check on
		// Body is possible here and TEXT without STRING is accepted.
	}
	if missing != "" {
		return fmt.Errorf("%w: ENDEL at offset %d before required %s record",
			ErrGrammarViolation, d.off, missing)
	}
	return nil
}

// Per-kind accessors for the fields every element shares.

func elemFlags(e Element) *ElFlags {
	switch e := e.(type) {
	case *Boundary:
		return &e.Flags
	case *Path:
		return &e.Flags
	case *StructRef:
		return &e.Flags
	case *ArrayRef:
		return &e.Flags
	case *Text:
		return &e.Flags
	case *Node:
		return &e.Flags
	case *Box:
		return &e.Flags
	}
	return nil
}

func elemPlex(e Element) *int32 {
	switch e := e.(type) {
	case *Boundary:
		return &e.Plex
	case *Path:
		return &e.Plex
	case *StructRef:
		return &e.Plex
	case *ArrayRef:
		return &e.Plex
	case *Text:
		return &e.Plex
	case *Node:
		return &e.Plex
	case *Box:
		return &e.Plex
	}
	return nil
}

func elemProps(e Element) *[]Property {
	switch e := e.(type) {
	case *Boundary:
		return &e.Properties
	case *Path:
		return &e.Properties
	case *StructRef:
		return &e.Properties
	case *ArrayRef:
		return &e.Properties
	case *Text:
		return &e.Properties
	case *Node:
		return &e.Properties
	case *Box:
		return &e.Properties
	}
	return nil
}
