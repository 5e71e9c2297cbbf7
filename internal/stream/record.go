package stream

import (
	"bytes"
	"fmt"
)

// Record is a single decoded GDSII record: the atomic length-prefixed,
// typed unit of the stream. Data holds the raw payload bytes exactly as
// read; the typed accessors reinterpret them per the data type code.
type Record struct {
	Type     byte
	DataType byte
	Data     []byte
}

// Name returns the record type mnemonic.
func (rec Record) Name() string {
	return TypeName(rec.Type)
}

// IsPadding reports whether rec is the zero-length tape-padding
// terminator rather than a real record.
func (rec Record) IsPadding() bool {
	return rec.Type == 0 && rec.DataType == 0 && rec.Data == nil
}

// ReadRecord decodes the next record from r. A zero length word is the
// tape-padding terminator that conformant writers use to fill the final
// block; it is returned as a zero Record with Type 0 and nil Data, which
// only ever legally follows ENDLIB.
func ReadRecord(r *Reader) (Record, error) {
	start := r.Pos()
	length, err := r.ReadUint16()
	if err != nil {
		return Record{}, err
	}
	if length == 0 {
		return Record{}, nil
	}
	if length < 4 {
		return Record{}, fmt.Errorf("%w: record length %d at offset %d is shorter than its header",
			ErrMalformedRecord, length, start)
	}
	recType, err := r.ReadUint8()
	if err != nil {
		return Record{}, err
	}
	dataType, err := r.ReadUint8()
	if err != nil {
		return Record{}, err
	}
	payload := int(length) - 4
	if dataType > DataAsciiString {
		return Record{}, fmt.Errorf("%w: %s at offset %d has unknown data type %d",
			ErrMalformedRecord, TypeName(recType), start, dataType)
	}
	if dataType == DataNoData && payload != 0 {
		return Record{}, fmt.Errorf("%w: %s at offset %d declares no data but carries %d bytes",
			ErrMalformedRecord, TypeName(recType), start, payload)
	}
	if w := dataWidth(dataType); w > 0 && payload%w != 0 {
		return Record{}, fmt.Errorf("%w: %s at offset %d has %d payload bytes, not a multiple of %d",
			ErrMalformedRecord, TypeName(recType), start, payload, w)
	}
	if dataType == DataAsciiString && payload%2 != 0 {
		return Record{}, fmt.Errorf("%w: %s at offset %d has odd string payload length %d",
			ErrMalformedRecord, TypeName(recType), start, payload)
	}
	data, err := r.ReadBytes(payload)
	if err != nil {
		return Record{}, err
	}
	return Record{Type: recType, DataType: dataType, Data: data}, nil
}

// WriteRecord encodes rec to w: length word, type byte, data type byte,
// payload. Odd-length string payloads are padded with a trailing NUL so
// the record length stays even.
func WriteRecord(w *Writer, rec Record) error {
	padded := len(rec.Data)
	if rec.DataType == DataAsciiString && padded%2 != 0 {
		padded++
	}
	if padded > MaxRecordLen {
		return fmt.Errorf("%w: %s payload of %d bytes exceeds record limit",
			ErrTooLarge, rec.Name(), len(rec.Data))
	}
	w.WriteUint16(uint16(padded + 4))
	w.WriteUint8(rec.Type)
	w.WriteUint8(rec.DataType)
	w.WriteBytes(rec.Data)
	if padded != len(rec.Data) {
		w.WriteUint8(0)
	}
	return nil
}

// Int16s reinterprets the payload as big-endian signed 16-bit integers.
func (rec Record) Int16s() ([]int16, error) {
	if rec.DataType != DataTwoByteInt {
		return nil, fmt.Errorf("%w: %s carries data type %d, want two-byte integers",
			ErrMalformedRecord, rec.Name(), rec.DataType)
	}
	out := make([]int16, 0, len(rec.Data)/2)
	for i := 0; i+1 < len(rec.Data); i += 2 {
		out = append(out, int16(uint16(rec.Data[i])<<8|uint16(rec.Data[i+1])))
	}
	return out, nil
}

// Int32s reinterprets the payload as big-endian signed 32-bit integers.
func (rec Record) Int32s() ([]int32, error) {
	if rec.DataType != DataFourByteInt {
		return nil, fmt.Errorf("%w: %s carries data type %d, want four-byte integers",
			ErrMalformedRecord, rec.Name(), rec.DataType)
	}
	out := make([]int32, 0, len(rec.Data)/4)
	for i := 0; i+3 < len(rec.Data); i += 4 {
		v := uint32(rec.Data[i])<<24 | uint32(rec.Data[i+1])<<16 |
			uint32(rec.Data[i+2])<<8 | uint32(rec.Data[i+3])
		out = append(out, int32(v))
	}
	return out, nil
}

// Reals reinterprets the payload as GDSII reals. Both the 8-byte and the
// legacy 4-byte forms decode; only the 8-byte form is ever written.
func (rec Record) Reals() ([]float64, error) {
	switch rec.DataType {
	case DataEightByteReal:
		out := make([]float64, 0, len(rec.Data)/8)
		for i := 0; i+7 < len(rec.Data); i += 8 {
			out = append(out, DecodeReal8(rec.Data[i:i+8]))
		}
		return out, nil
	case DataFourByteReal:
		out := make([]float64, 0, len(rec.Data)/4)
		for i := 0; i+3 < len(rec.Data); i += 4 {
			out = append(out, DecodeReal4(rec.Data[i:i+4]))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s carries data type %d, want reals",
			ErrMalformedRecord, rec.Name(), rec.DataType)
	}
}

// Ascii reinterprets the payload as an ASCII string, stripping the NUL
// pad byte writers append to odd-length strings.
func (rec Record) Ascii() (string, error) {
	if rec.DataType != DataAsciiString {
		return "", fmt.Errorf("%w: %s carries data type %d, want string",
			ErrMalformedRecord, rec.Name(), rec.DataType)
	}
	return string(bytes.TrimRight(rec.Data, "\x00")), nil
}

// Bits reinterprets the payload as a 16-bit flag word.
func (rec Record) Bits() (uint16, error) {
	if rec.DataType != DataBitArray || len(rec.Data) != 2 {
		return 0, fmt.Errorf("%w: %s is not a 2-byte bit array",
			ErrMalformedRecord, rec.Name())
	}
	return uint16(rec.Data[0])<<8 | uint16(rec.Data[1]), nil
}

// Int16 expects a payload of exactly one two-byte integer.
func (rec Record) Int16() (int16, error) {
	vals, err := rec.Int16s()
	if err != nil {
		return 0, err
	}
	if len(vals) != 1 {
		return 0, fmt.Errorf("%w: %s carries %d two-byte integers, want 1",
			ErrMalformedRecord, rec.Name(), len(vals))
	}
	return vals[0], nil
}

// Real expects a payload of exactly one real.
func (rec Record) Real() (float64, error) {
	vals, err := rec.Reals()
	if err != nil {
		return 0, err
	}
	if len(vals) != 1 {
		return 0, fmt.Errorf("%w: %s carries %d reals, want 1",
			ErrMalformedRecord, rec.Name(), len(vals))
	}
	return vals[0], nil
}

// Record constructors used by the encoder.

// NoDataRecord builds a record with an empty payload.
func NoDataRecord(recType byte) Record {
	return Record{Type: recType, DataType: DataNoData}
}

// Int16Record builds a two-byte-integer record.
func Int16Record(recType byte, vals ...int16) Record {
	w := NewWriter()
	for _, v := range vals {
		w.WriteInt16(v)
	}
	return Record{Type: recType, DataType: DataTwoByteInt, Data: w.Bytes()}
}

// Int32Record builds a four-byte-integer record.
func Int32Record(recType byte, vals ...int32) Record {
	w := NewWriter()
	for _, v := range vals {
		w.WriteInt32(v)
	}
	return Record{Type: recType, DataType: DataFourByteInt, Data: w.Bytes()}
}

// Real8Record builds an eight-byte-real record.
func Real8Record(recType byte, vals ...float64) (Record, error) {
	w := NewWriter()
	for _, v := range vals {
		b, err := EncodeReal8(v)
		if err != nil {
			return Record{}, err
		}
		w.WriteBytes(b[:])
	}
	return Record{Type: recType, DataType: DataEightByteReal, Data: w.Bytes()}, nil
}

// StringRecord builds an ASCII string record. Padding to even length
// happens in WriteRecord.
func StringRecord(recType byte, s string) Record {
	return Record{Type: recType, DataType: DataAsciiString, Data: []byte(s)}
}

// BitsRecord builds a 2-byte bit-array record.
func BitsRecord(recType byte, bits uint16) Record {
	return Record{Type: recType, DataType: DataBitArray, Data: []byte{byte(bits >> 8), byte(bits)}}
}
