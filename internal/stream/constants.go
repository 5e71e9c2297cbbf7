package stream

import "fmt"

// Record type codes from the GDSII stream format release 6.0.
const (
	TypeHeader       byte = 0x00
	TypeBgnLib       byte = 0x01
	TypeLibName      byte = 0x02
	TypeUnits        byte = 0x03
	TypeEndLib       byte = 0x04
	TypeBgnStr       byte = 0x05
	TypeStrName      byte = 0x06
	TypeEndStr       byte = 0x07
	TypeBoundary     byte = 0x08
	TypePath         byte = 0x09
	TypeSRef         byte = 0x0A
	TypeARef         byte = 0x0B
	TypeText         byte = 0x0C
	TypeLayer        byte = 0x0D
	TypeDatatype     byte = 0x0E
	TypeWidth        byte = 0x0F
	TypeXY           byte = 0x10
	TypeEndEl        byte = 0x11
	TypeSName        byte = 0x12
	TypeColRow       byte = 0x13
	TypeTextNode     byte = 0x14
	TypeNode         byte = 0x15
	TypeTextType     byte = 0x16
	TypePresentation byte = 0x17
	TypeString       byte = 0x19
	TypeSTrans       byte = 0x1A
	TypeMag          byte = 0x1B
	TypeAngle        byte = 0x1C
	TypeRefLibs      byte = 0x1F
	TypeFonts        byte = 0x20
	TypePathType     byte = 0x21
	TypeGenerations  byte = 0x22
	TypeAttrTable    byte = 0x23
	TypeStypTable    byte = 0x24
	TypeStrType      byte = 0x25
	TypeElFlags      byte = 0x26
	TypeElKey        byte = 0x27
	TypeNodeType     byte = 0x2A
	TypePropAttr     byte = 0x2B
	TypePropValue    byte = 0x2C
	TypeBox          byte = 0x2D
	TypeBoxType      byte = 0x2E
	TypePlex         byte = 0x2F
	TypeBgnExtn      byte = 0x30
	TypeEndExtn      byte = 0x31
	TypeTapeNum      byte = 0x32
	TypeTapeCode     byte = 0x33
	TypeStrClass     byte = 0x34
	TypeFormat       byte = 0x36
	TypeMask         byte = 0x37
	TypeEndMasks     byte = 0x38
	TypeLibDirSize   byte = 0x39
	TypeSrfName      byte = 0x3A
	TypeLibSecur     byte = 0x3B
)

// Data type codes describing the element width of a record payload.
const (
	DataNoData        byte = 0
	DataBitArray      byte = 1
	DataTwoByteInt    byte = 2
	DataFourByteInt   byte = 3
	DataFourByteReal  byte = 4
	DataEightByteReal byte = 5
	DataAsciiString   byte = 6
)

// MaxRecordLen caps a single record payload. The length field is a u16
// that includes the 4-byte header, so no conformant record exceeds this.
const MaxRecordLen = 0xFFFF - 4

var typeNames = map[byte]string{
	TypeHeader:       "HEADER",
	TypeBgnLib:       "BGNLIB",
	TypeLibName:      "LIBNAME",
	TypeUnits:        "UNITS",
	TypeEndLib:       "ENDLIB",
	TypeBgnStr:       "BGNSTR",
	TypeStrName:      "STRNAME",
	TypeEndStr:       "ENDSTR",
	TypeBoundary:     "BOUNDARY",
	TypePath:         "PATH",
	TypeSRef:         "SREF",
	TypeARef:         "AREF",
	TypeText:         "TEXT",
	TypeLayer:        "LAYER",
	TypeDatatype:     "DATATYPE",
	TypeWidth:        "WIDTH",
	TypeXY:           "XY",
	TypeEndEl:        "ENDEL",
	TypeSName:        "SNAME",
	TypeColRow:       "COLROW",
	TypeTextNode:     "TEXTNODE",
	TypeNode:         "NODE",
	TypeTextType:     "TEXTTYPE",
	TypePresentation: "PRESENTATION",
	TypeString:       "STRING",
	TypeSTrans:       "STRANS",
	TypeMag:          "MAG",
	TypeAngle:        "ANGLE",
	TypeRefLibs:      "REFLIBS",
	TypeFonts:        "FONTS",
	TypePathType:     "PATHTYPE",
	TypeGenerations:  "GENERATIONS",
	TypeAttrTable:    "ATTRTABLE",
	TypeStypTable:    "STYPTABLE",
	TypeStrType:      "STRTYPE",
	TypeElFlags:      "ELFLAGS",
	TypeElKey:        "ELKEY",
	TypeNodeType:     "NODETYPE",
	TypePropAttr:     "PROPATTR",
	TypePropValue:    "PROPVALUE",
	TypeBox:          "BOX",
	TypeBoxType:      "BOXTYPE",
	TypePlex:         "PLEX",
	TypeBgnExtn:      "BGNEXTN",
	TypeEndExtn:      "ENDEXTN",
	TypeTapeNum:      "TAPENUM",
	TypeTapeCode:     "TAPECODE",
	TypeStrClass:     "STRCLASS",
	TypeFormat:       "FORMAT",
	TypeMask:         "MASK",
	TypeEndMasks:     "ENDMASKS",
	TypeLibDirSize:   "LIBDIRSIZE",
	TypeSrfName:      "SRFNAME",
	TypeLibSecur:     "LIBSECUR",
}

// IsKnown reports whether t is one of the published record type codes.
// Codes outside this set are vendor extensions carried opaquely.
func IsKnown(t byte) bool {
	_, ok := typeNames[t]
	return ok
}

// TypeName returns the mnemonic for a record type code, or a hex form
// for codes outside the published set.
func TypeName(t byte) string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", t)
}

// dataWidth returns the payload element width in bytes for a data type
// code. AsciiString and NoData report 0 because their payloads are not
// fixed-width arrays.
func dataWidth(dt byte) int {
	switch dt {
	case DataTwoByteInt, DataBitArray:
		return 2
	case DataFourByteInt, DataFourByteReal:
		return 4
	case DataEightByteReal:
		return 8
	default:
		return 0
	}
}
