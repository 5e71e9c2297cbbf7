package gds

import "github.com/layoutkit/gdsgo/internal/stream"

// The legal ordering of records is a small deterministic state machine.
// Decoding dispatches each record through the transition table below;
// encoding walks the mirror image, emitting for each entity exactly the
// record sequence the table admits.

type state int

const (
	stateStart state = iota
	stateLibHeader
	stateLibBody
	stateStructure
	stateElement
	stateEnd
)

func (s state) String() string {
	switch s {
	case stateStart:
		return "Start"
	case stateLibHeader:
		return "InLibraryHeader"
	case stateLibBody:
		return "InLibraryBody"
	case stateStructure:
		return "InStructure"
	case stateElement:
		return "InElement"
	case stateEnd:
		return "End"
	default:
		return "Invalid"
	}
}

// handler performs the assembly action for one record type in one
// state, advancing d.state on transitions.
type handler func(d *decoder, rec stream.Record) error

// grammar maps state x record type to its handler. A record type absent
// from its state's row is only accepted when it is an unknown vendor
// extension in a passthrough-safe state; any known type outside its row
// is a grammar violation.
var grammar = map[state]map[byte]handler{
	stateStart: {
		stream.TypeHeader: (*decoder).onHeader,
	},
	stateLibHeader: {
		stream.TypeBgnLib:  (*decoder).onBgnLib,
		stream.TypeLibName: (*decoder).onLibName,
		stream.TypeUnits:   (*decoder).onUnits,
		// Header records the model does not interpret ride the
		// passthrough path so they survive re-encoding.
		stream.TypeLibDirSize:  (*decoder).onHeaderExtra,
		stream.TypeSrfName:     (*decoder).onHeaderExtra,
		stream.TypeLibSecur:    (*decoder).onHeaderExtra,
		stream.TypeRefLibs:     (*decoder).onHeaderExtra,
		stream.TypeFonts:       (*decoder).onHeaderExtra,
		stream.TypeAttrTable:   (*decoder).onHeaderExtra,
		stream.TypeStypTable:   (*decoder).onHeaderExtra,
		stream.TypeGenerations: (*decoder).onHeaderExtra,
		stream.TypeFormat:      (*decoder).onHeaderExtra,
		stream.TypeMask:        (*decoder).onHeaderExtra,
		stream.TypeEndMasks:    (*decoder).onHeaderExtra,
	},
	stateLibBody: {
		stream.TypeBgnStr: (*decoder).onBgnStr,
		stream.TypeEndLib: (*decoder).onEndLib,
	},
	stateStructure: {
		stream.TypeStrName:  (*decoder).onStrName,
		stream.TypeStrClass: (*decoder).onStructureExtra,
		stream.TypeBoundary: (*decoder).onElementStart,
		stream.TypePath:     (*decoder).onElementStart,
		stream.TypeSRef:     (*decoder).onElementStart,
		stream.TypeARef:     (*decoder).onElementStart,
		stream.TypeText:     (*decoder).onElementStart,
		stream.TypeNode:     (*decoder).onElementStart,
		stream.TypeBox:      (*decoder).onElementStart,
		stream.TypeEndStr:   (*decoder).onEndStr,
	},
	stateElement: {
		stream.TypeLayer:        (*decoder).onLayer,
		stream.TypeDatatype:     (*decoder).onDatatype,
		stream.TypeWidth:        (*decoder).onWidth,
		stream.TypePathType:     (*decoder).onPathType,
		stream.TypeBgnExtn:      (*decoder).onBgnExtn,
		stream.TypeEndExtn:      (*decoder).onEndExtn,
		stream.TypeXY:           (*decoder).onXY,
		stream.TypeSName:        (*decoder).onSName,
		stream.TypeColRow:       (*decoder).onColRow,
		stream.TypeSTrans:       (*decoder).onSTrans,
		stream.TypeMag:          (*decoder).onMag,
		stream.TypeAngle:        (*decoder).onAngle,
		stream.TypeTextType:     (*decoder).onTextType,
		stream.TypePresentation: (*decoder).onPresentation,
		stream.TypeString:       (*decoder).onString,
		stream.TypeNodeType:     (*decoder).onNodeType,
		stream.TypeBoxType:      (*decoder).onBoxType,
		stream.TypeElFlags:      (*decoder).onElFlags,
		stream.TypePlex:         (*decoder).onPlex,
		stream.TypePropAttr:     (*decoder).onPropAttr,
		stream.TypePropValue:    (*decoder).onPropValue,
		stream.TypeEndEl:        (*decoder).onEndEl,
	},
	stateEnd: {},
}
