package tstypes

// SupportedType is the closed set of value types a DataColumn may carry.
// Unsupported is a sentinel used only when conflicting types are observed
// for the same source name.
type SupportedType uint8

const (
	TypeUnsupported SupportedType = iota
	TypeBool
	TypeByteArray
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeString
)

func (t SupportedType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeByteArray:
		return "byte-array"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeString:
		return "string"
	default:
		return "unsupported"
	}
}

// DataColumn is a labelled sequence of values for one source name. len(Values)
// must equal the sample count implied by the owning timing key. Values are
// stored as `any`: the engine never transforms sample values, it only moves
// and coalesces them.
type DataColumn struct {
	SourceName string
	Type       SupportedType
	Values     []any
}
