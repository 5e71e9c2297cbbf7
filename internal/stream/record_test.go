package stream

import (
	"bytes"
	"errors"
	"testing"
)

func TestReadRecordHeader(t *testing.T) {
	// HEADER record carrying version 600.
	r := NewReader([]byte{0x00, 0x06, 0x00, 0x02, 0x02, 0x58})
	rec, err := ReadRecord(r)
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if rec.Type != TypeHeader || rec.DataType != DataTwoByteInt {
		t.Fatalf("unexpected record %s dt=%d", rec.Name(), rec.DataType)
	}
	v, err := rec.Int16()
	if err != nil {
		t.Fatalf("Int16: %v", err)
	}
	if v != 600 {
		t.Fatalf("version = %d, want 600", v)
	}
	if r.Remaining() != 0 {
		t.Fatalf("cursor left %d bytes unread", r.Remaining())
	}
}

func TestReadRecordShortLength(t *testing.T) {
	r := NewReader([]byte{0x00, 0x02, 0x04, 0x00})
	if _, err := ReadRecord(r); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("length 2: want ErrMalformedRecord, got %v", err)
	}
}

func TestReadRecordTruncatedPayload(t *testing.T) {
	// Declares 8 payload bytes but the buffer ends after 2.
	r := NewReader([]byte{0x00, 0x0C, 0x10, 0x03, 0x00, 0x01})
	if _, err := ReadRecord(r); !errors.Is(err, ErrUnexpectedEnd) {
		t.Fatalf("want ErrUnexpectedEnd, got %v", err)
	}
}

func TestReadRecordBadElementWidth(t *testing.T) {
	// XY declares four-byte integers but carries 6 payload bytes.
	r := NewReader([]byte{0x00, 0x0A, 0x10, 0x03, 0, 0, 0, 0, 0, 0})
	if _, err := ReadRecord(r); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("want ErrMalformedRecord, got %v", err)
	}
}

func TestReadRecordUnknownDataType(t *testing.T) {
	r := NewReader([]byte{0x00, 0x04, 0x10, 0x09})
	if _, err := ReadRecord(r); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("want ErrMalformedRecord, got %v", err)
	}
}

func TestReadRecordPadding(t *testing.T) {
	r := NewReader([]byte{0x00, 0x00, 0x00, 0x00})
	rec, err := ReadRecord(r)
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if !rec.IsPadding() {
		t.Fatalf("zero length word should decode as padding, got %+v", rec)
	}
}

func TestStringRecordPadding(t *testing.T) {
	w := NewWriter()
	if err := WriteRecord(w, StringRecord(TypeLibName, "LIB")); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	want := []byte{0x00, 0x08, 0x02, 0x06, 'L', 'I', 'B', 0x00}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("encoded % X, want % X", w.Bytes(), want)
	}

	rec, err := ReadRecord(NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	s, err := rec.Ascii()
	if err != nil {
		t.Fatalf("Ascii: %v", err)
	}
	if s != "LIB" {
		t.Fatalf("decoded %q, want LIB", s)
	}
}

func TestRecordRoundTripTyped(t *testing.T) {
	w := NewWriter()
	recs := []Record{
		Int16Record(TypeLayer, 7),
		Int32Record(TypeXY, 0, 0, 100, 0, 100, 100),
		BitsRecord(TypeSTrans, 0x8000),
		NoDataRecord(TypeEndEl),
	}
	realRec, err := Real8Record(TypeUnits, 0.001, 1e-9)
	if err != nil {
		t.Fatalf("Real8Record: %v", err)
	}
	recs = append(recs, realRec)

	for _, rec := range recs {
		if err := WriteRecord(w, rec); err != nil {
			t.Fatalf("WriteRecord %s: %v", rec.Name(), err)
		}
	}

	r := NewReader(w.Bytes())
	for _, want := range recs {
		got, err := ReadRecord(r)
		if err != nil {
			t.Fatalf("ReadRecord: %v", err)
		}
		if got.Type != want.Type || got.DataType != want.DataType || !bytes.Equal(got.Data, want.Data) {
			t.Fatalf("record %s changed across round trip", want.Name())
		}
	}
	if r.Remaining() != 0 {
		t.Fatalf("%d trailing bytes", r.Remaining())
	}
}

func TestReaderCursor(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	if got := r.Peek(2); !bytes.Equal(got, []byte{0x01, 0x02}) {
		t.Fatalf("Peek = % X", got)
	}
	v, err := r.ReadInt32()
	if err != nil {
		t.Fatalf("ReadInt32: %v", err)
	}
	if v != 0x01020304 {
		t.Fatalf("ReadInt32 = %x", v)
	}
	if r.Pos() != 4 || r.Remaining() != 1 {
		t.Fatalf("Pos=%d Remaining=%d", r.Pos(), r.Remaining())
	}
	if _, err := r.ReadInt16(); !errors.Is(err, ErrUnexpectedEnd) {
		t.Fatalf("want ErrUnexpectedEnd, got %v", err)
	}
	// Error is sticky: later reads keep failing.
	if _, err := r.ReadUint8(); err == nil {
		t.Fatal("read succeeded after error")
	}
}
