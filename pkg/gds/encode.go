package gds

import (
	"fmt"
	"io"
	"time"

	"github.com/layoutkit/gdsgo/internal/stream"
)

// Encode serializes lib into a conformant GDSII stream. The walk is the
// mirror image of Decode: each entity emits exactly the record sequence
// the grammar admits, with preserved passthrough records replayed at
// their decoded positions, so decoding the output of Encode yields an
// equal model and re-encoding a decoded stream reproduces it byte for
// byte (modulo the base-16 rounding of reals that did not come from
// this codec).
func Encode(lib *Library) ([]byte, error) {
	seen := make(map[string]struct{}, len(lib.Structures))
	for _, s := range lib.Structures {
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate structure name %q", ErrGrammarViolation, s.Name)
		}
		seen[s.Name] = struct{}{}
	}

	w := stream.NewWriter()
	e := &encoder{w: w, lib: lib}
	if err := e.library(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeTo encodes lib and writes the stream to w.
func EncodeTo(lib *Library, w io.Writer) error {
	data, err := Encode(lib)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

type encoder struct {
	w   *stream.Writer
	lib *Library
}

func (e *encoder) emit(rec stream.Record) error {
	return stream.WriteRecord(e.w, rec)
}

// flushExtras replays the raw records anchored at the given position.
func (e *encoder) flushExtras(extras []RawRecord, anchor int) error {
	for _, raw := range extras {
		if raw.Anchor != anchor {
			continue
		}
		rec := stream.Record{Type: raw.Type, DataType: raw.DataType, Data: raw.Data}
		if err := e.emit(rec); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) library() error {
	lib := e.lib
	if err := e.emit(stream.Int16Record(stream.TypeHeader, lib.Version)); err != nil {
		return err
	}
	if err := e.flushExtras(lib.HeaderExtras, 1); err != nil {
		return err
	}
	if err := e.emit(stream.Int16Record(stream.TypeBgnLib,
		append(stampInt16s(lib.Created), stampInt16s(lib.Modified)...)...)); err != nil {
		return err
	}
	if err := e.flushExtras(lib.HeaderExtras, 2); err != nil {
		return err
	}
	if err := e.emit(stream.StringRecord(stream.TypeLibName, lib.Name)); err != nil {
		return err
	}
	if err := e.flushExtras(lib.HeaderExtras, 3); err != nil {
		return err
	}
	units, err := stream.Real8Record(stream.TypeUnits, lib.UserUnit, lib.MeterUnit)
	if err != nil {
		return err
	}
	if err := e.emit(units); err != nil {
		return err
	}
	for i, s := range lib.Structures {
		if err := e.flushExtras(lib.BodyExtras, i); err != nil {
			return err
		}
		if err := e.structure(s); err != nil {
			return fmt.Errorf("structure %q: %w", s.Name, err)
		}
	}
	if err := e.flushExtras(lib.BodyExtras, len(lib.Structures)); err != nil {
		return err
	}
	return e.emit(stream.NoDataRecord(stream.TypeEndLib))
}

func (e *encoder) structure(s *Structure) error {
	if err := e.emit(stream.Int16Record(stream.TypeBgnStr,
		append(stampInt16s(s.Created), stampInt16s(s.Modified)...)...)); err != nil {
		return err
	}
	if err := e.emit(stream.StringRecord(stream.TypeStrName, s.Name)); err != nil {
		return err
	}
	for i, el := range s.Elements {
		if err := e.flushExtras(s.Extras, i); err != nil {
			return err
		}
		if err := e.element(el); err != nil {
			return err
		}
	}
	if err := e.flushExtras(s.Extras, len(s.Elements)); err != nil {
		return err
	}
	return e.emit(stream.NoDataRecord(stream.TypeEndStr))
}

func (e *encoder) element(el Element) error {
	switch el := el.(type) {
	case *Boundary:
		return e.boundary(el)
	case *Path:
		return e.path(el)
	case *StructRef:
		return e.structRef(el)
	case *ArrayRef:
		return e.arrayRef(el)
	case *Text:
		return e.text(el)
	case *Node:
		return e.node(el)
	case *Box:
		return e.box(el)
	default:
		return fmt.Errorf("gds: unknown element type %T", el)
	}
}

func (e *encoder) boundary(b *Boundary) error {
	if err := e.emit(stream.NoDataRecord(stream.TypeBoundary)); err != nil {
		return err
	}
	if err := e.common(b.Flags, b.Plex); err != nil {
		return err
	}
	if err := e.emit(stream.Int16Record(stream.TypeLayer, b.Layer)); err != nil {
		return err
	}
	if err := e.emit(stream.Int16Record(stream.TypeDatatype, b.Datatype)); err != nil {
		return err
	}
	if err := e.xy(b.XY); err != nil {
		return err
	}
	return e.endElement(b.Properties)
}

func (e *encoder) path(p *Path) error {
	if err := e.emit(stream.NoDataRecord(stream.TypePath)); err != nil {
		return err
	}
	if err := e.common(p.Flags, p.Plex); err != nil {
		return err
	}
	if err := e.emit(stream.Int16Record(stream.TypeLayer, p.Layer)); err != nil {
		return err
	}
	if err := e.emit(stream.Int16Record(stream.TypeDatatype, p.Datatype)); err != nil {
		return err
	}
	if p.PathType != 0 {
		if err := e.emit(stream.Int16Record(stream.TypePathType, p.PathType)); err != nil {
			return err
		}
	}
	if p.Width != 0 {
		if err := e.emit(stream.Int32Record(stream.TypeWidth, p.Width)); err != nil {
			return err
		}
	}
	if p.PathType == 4 || p.BeginExt != 0 || p.EndExt != 0 {
		if err := e.emit(stream.Int32Record(stream.TypeBgnExtn, p.BeginExt)); err != nil {
			return err
		}
		if err := e.emit(stream.Int32Record(stream.TypeEndExtn, p.EndExt)); err != nil {
			return err
		}
	}
	if err := e.xy(p.XY); err != nil {
		return err
	}
	return e.endElement(p.Properties)
}

func (e *encoder) structRef(r *StructRef) error {
	if err := e.emit(stream.NoDataRecord(stream.TypeSRef)); err != nil {
		return err
	}
	if err := e.common(r.Flags, r.Plex); err != nil {
		return err
	}
	if err := e.emit(stream.StringRecord(stream.TypeSName, r.Name)); err != nil {
		return err
	}
	if err := e.strans(r.Transform); err != nil {
		return err
	}
	if err := e.xy([]Point{r.Origin}); err != nil {
		return err
	}
	return e.endElement(r.Properties)
}

func (e *encoder) arrayRef(a *ArrayRef) error {
	if err := e.emit(stream.NoDataRecord(stream.TypeARef)); err != nil {
		return err
	}
	if err := e.common(a.Flags, a.Plex); err != nil {
		return err
	}
	if err := e.emit(stream.StringRecord(stream.TypeSName, a.Name)); err != nil {
		return err
	}
	if err := e.strans(a.Transform); err != nil {
		return err
	}
	if a.Cols <= 0 || a.Rows <= 0 {
		return fmt.Errorf("%w: COLROW %dx%d out of range", ErrMalformedRecord, a.Cols, a.Rows)
	}
	if err := e.emit(stream.Int16Record(stream.TypeColRow, a.Cols, a.Rows)); err != nil {
		return err
	}
	if err := e.xy([]Point{a.Origin, a.ColExtent, a.RowExtent}); err != nil {
		return err
	}
	return e.endElement(a.Properties)
}

func (e *encoder) text(t *Text) error {
	if err := e.emit(stream.NoDataRecord(stream.TypeText)); err != nil {
		return err
	}
	if err := e.common(t.Flags, t.Plex); err != nil {
		return err
	}
	if err := e.emit(stream.Int16Record(stream.TypeLayer, t.Layer)); err != nil {
		return err
	}
	if err := e.emit(stream.Int16Record(stream.TypeTextType, t.TextType)); err != nil {
		return err
	}
	if t.Presentation != 0 {
		if err := e.emit(stream.BitsRecord(stream.TypePresentation, t.Presentation)); err != nil {
			return err
		}
	}
	if t.PathType != 0 {
		if err := e.emit(stream.Int16Record(stream.TypePathType, t.PathType)); err != nil {
			return err
		}
	}
	if t.Width != 0 {
		if err := e.emit(stream.Int32Record(stream.TypeWidth, t.Width)); err != nil {
			return err
		}
	}
	if err := e.strans(t.Transform); err != nil {
		return err
	}
	if err := e.xy([]Point{t.Origin}); err != nil {
		return err
	}
	if err := e.emit(stream.StringRecord(stream.TypeString, t.Body)); err != nil {
		return err
	}
	return e.endElement(t.Properties)
}

func (e *encoder) node(n *Node) error {
	if err := e.emit(stream.NoDataRecord(stream.TypeNode)); err != nil {
		return err
	}
	if err := e.common(n.Flags, n.Plex); err != nil {
		return err
	}
	if err := e.emit(stream.Int16Record(stream.TypeLayer, n.Layer)); err != nil {
		return err
	}
	if err := e.emit(stream.Int16Record(stream.TypeNodeType, n.NodeType)); err != nil {
		return err
	}
	if err := e.xy(n.XY); err != nil {
		return err
	}
	return e.endElement(n.Properties)
}

func (e *encoder) box(b *Box) error {
	if err := e.emit(stream.NoDataRecord(stream.TypeBox)); err != nil {
		return err
	}
	if err := e.common(b.Flags, b.Plex); err != nil {
		return err
	}
	if err := e.emit(stream.Int16Record(stream.TypeLayer, b.Layer)); err != nil {
		return err
	}
	if err := e.emit(stream.Int16Record(stream.TypeBoxType, b.BoxType)); err != nil {
		return err
	}
	if err := e.xy(b.XY); err != nil {
		return err
	}
	return e.endElement(b.Properties)
}

// common emits the optional ELFLAGS and PLEX records shared by every
// element kind.
func (e *encoder) common(f ElFlags, plex int32) error {
	if f != (ElFlags{}) {
		var bits uint16
		if f.Template {
			bits |= 0x0001
		}
		if f.External {
			bits |= 0x0002
		}
		if err := e.emit(stream.BitsRecord(stream.TypeElFlags, bits)); err != nil {
			return err
		}
	}
	if plex != 0 {
		if err := e.emit(stream.Int32Record(stream.TypePlex, plex)); err != nil {
			return err
		}
	}
	return nil
}

// strans emits the STRANS/MAG/ANGLE block for a non-identity transform.
func (e *encoder) strans(t Transform) error {
	if t.IsIdentity() {
		return nil
	}
	var bits uint16
	if t.Reflected {
		bits |= 0x8000
	}
	if t.AbsMag {
		bits |= 0x0004
	}
	if t.AbsAngle {
		bits |= 0x0002
	}
	if err := e.emit(stream.BitsRecord(stream.TypeSTrans, bits)); err != nil {
		return err
	}
	if t.Mag != 1 {
		rec, err := stream.Real8Record(stream.TypeMag, t.Mag)
		if err != nil {
			return err
		}
		if err := e.emit(rec); err != nil {
			return err
		}
	}
	if t.Angle != 0 {
		rec, err := stream.Real8Record(stream.TypeAngle, t.Angle)
		if err != nil {
			return err
		}
		if err := e.emit(rec); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) xy(pts []Point) error {
	if len(pts) == 0 {
		return fmt.Errorf("%w: element has no coordinates", ErrMalformedRecord)
	}
	vals := make([]int32, 0, 2*len(pts))
	for _, p := range pts {
		vals = append(vals, p.X, p.Y)
	}
	return e.emit(stream.Int32Record(stream.TypeXY, vals...))
}

func (e *encoder) endElement(props []Property) error {
	for _, p := range props {
		if err := e.emit(stream.Int16Record(stream.TypePropAttr, p.Attr)); err != nil {
			return err
		}
		if err := e.emit(stream.StringRecord(stream.TypePropValue, p.Value)); err != nil {
			return err
		}
	}
	return e.emit(stream.NoDataRecord(stream.TypeEndEl))
}

// stampInt16s expands a timestamp into the six two-byte integers of a
// BGNLIB/BGNSTR stamp. The zero time encodes as six zeros.
func stampInt16s(t time.Time) []int16 {
	if t.IsZero() {
		return []int16{0, 0, 0, 0, 0, 0}
	}
	t = t.UTC()
	return []int16{
		int16(t.Year()), int16(t.Month()), int16(t.Day()),
		int16(t.Hour()), int16(t.Minute()), int16(t.Second()),
	}
}
