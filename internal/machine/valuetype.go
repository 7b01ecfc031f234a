package machine

// ValueType is a Wasm value type, using the same byte encoding Wasm itself
// uses for these types in the binary format.
type ValueType byte

const (
	ValueTypeI32       ValueType = 0x7f
	ValueTypeI64       ValueType = 0x7e
	ValueTypeF32       ValueType = 0x7d
	ValueTypeF64       ValueType = 0x7c
	ValueTypeFuncRef   ValueType = 0x70
	ValueTypeExternRef ValueType = 0x6f
)

func (t ValueType) String() string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeFuncRef:
		return "funcref"
	case ValueTypeExternRef:
		return "externref"
	default:
		return "unknown"
	}
}

// isFloat reports whether t is placed in an XMM register rather than a GPR.
func isFloat(t ValueType) bool {
	return t == ValueTypeF32 || t == ValueTypeF64
}

func isSupported(t ValueType) bool {
	switch t {
	case ValueTypeI32, ValueTypeI64, ValueTypeF32, ValueTypeF64, ValueTypeFuncRef, ValueTypeExternRef:
		return true
	default:
		return false
	}
}
