package gds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layoutkit/gdsgo/internal/stream"
)

func TestUnknownRecordPassthroughInHeader(t *testing.T) {
	vendor := stream.Record{Type: 0x60, DataType: stream.DataTwoByteInt, Data: []byte{0xBE, 0xEF}}

	units, err := stream.Real8Record(stream.TypeUnits, 0.001, 1e-9)
	require.NoError(t, err)
	original := streamOf(t,
		stream.Int16Record(stream.TypeHeader, 600),
		stream.Int16Record(stream.TypeBgnLib, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0),
		vendor, // interleaved between known library-header records
		stream.StringRecord(stream.TypeLibName, "L"),
		units,
		stream.NoDataRecord(stream.TypeEndLib),
	)

	lib, err := Decode(original)
	require.NoError(t, err)
	require.Len(t, lib.HeaderExtras, 1)
	assert.Equal(t, byte(0x60), lib.HeaderExtras[0].Type)
	assert.Equal(t, []byte{0xBE, 0xEF}, lib.HeaderExtras[0].Data)

	// Re-encoding reproduces the vendor record's bytes unchanged at
	// the same position.
	out, err := Encode(lib)
	require.NoError(t, err)
	assert.Equal(t, original, out)
}

func TestKnownUnmodeledHeaderRecordsPassThrough(t *testing.T) {
	units, err := stream.Real8Record(stream.TypeUnits, 0.001, 1e-9)
	require.NoError(t, err)
	original := streamOf(t,
		stream.Int16Record(stream.TypeHeader, 600),
		stream.Int16Record(stream.TypeBgnLib, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0),
		stream.Int16Record(stream.TypeGenerations, 3),
		stream.StringRecord(stream.TypeLibName, "L"),
		stream.StringRecord(stream.TypeFonts, "font0font1"),
		units,
		stream.NoDataRecord(stream.TypeEndLib),
	)

	lib, err := Decode(original)
	require.NoError(t, err)
	require.Len(t, lib.HeaderExtras, 2)

	out, err := Encode(lib)
	require.NoError(t, err)
	assert.Equal(t, original, out)
}

func TestUnknownRecordPassthroughBetweenStructures(t *testing.T) {
	vendor := stream.Record{Type: 0x7F, DataType: stream.DataAsciiString, Data: []byte("tool")}

	recs := headerRecords(t)
	recs = append(recs,
		stream.Int16Record(stream.TypeBgnStr, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0),
		stream.StringRecord(stream.TypeStrName, "A"),
		stream.NoDataRecord(stream.TypeEndStr),
		vendor,
		stream.Int16Record(stream.TypeBgnStr, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0),
		stream.StringRecord(stream.TypeStrName, "B"),
		stream.NoDataRecord(stream.TypeEndStr),
		stream.NoDataRecord(stream.TypeEndLib),
	)
	original := streamOf(t, recs...)

	lib, err := Decode(original)
	require.NoError(t, err)
	require.Len(t, lib.BodyExtras, 1)
	assert.Equal(t, 1, lib.BodyExtras[0].Anchor)

	out, err := Encode(lib)
	require.NoError(t, err)
	assert.Equal(t, original, out)
}

func TestStrClassPassthroughInsideStructure(t *testing.T) {
	recs := headerRecords(t)
	recs = append(recs,
		stream.Int16Record(stream.TypeBgnStr, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0),
		stream.StringRecord(stream.TypeStrName, "A"),
		stream.BitsRecord(stream.TypeStrClass, 0x0001),
		stream.NoDataRecord(stream.TypeBoundary),
		stream.Int16Record(stream.TypeLayer, 1),
		stream.Int16Record(stream.TypeDatatype, 0),
		stream.Int32Record(stream.TypeXY, 0, 0, 10, 0, 10, 10, 0, 0),
		stream.NoDataRecord(stream.TypeEndEl),
		stream.NoDataRecord(stream.TypeEndStr),
		stream.NoDataRecord(stream.TypeEndLib),
	)
	original := streamOf(t, recs...)

	lib, err := Decode(original)
	require.NoError(t, err)
	require.Len(t, lib.Structures, 1)
	require.Len(t, lib.Structures[0].Extras, 1)
	assert.Equal(t, 0, lib.Structures[0].Extras[0].Anchor)

	out, err := Encode(lib)
	require.NoError(t, err)
	assert.Equal(t, original, out)
}
