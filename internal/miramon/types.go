package miramon

// DataType identifies one of the thirteen MiraMon band encodings: scalar
// width/signedness/float-ness crossed with whether the band is RLE
// compressed, plus the single 1-bit packed type (which has no RLE
// variant).
type DataType int

const (
	Bit DataType = iota
	Byte
	ByteRLE
	Integer    // int16
	IntegerRLE // int16, RLE
	UInteger   // uint16
	UIntegerRLE
	Long // int32
	LongRLE
	Real // float32
	RealRLE
	Double // float64
	DoubleRLE
)

// typeToken is the TipusCompressio value naming this data type in a REL
// band sub-section, per the MMR on-disk surface.
var typeToken = map[string]DataType{
	"bit":          Bit,
	"byte":         Byte,
	"byte-rle":     ByteRLE,
	"integer":      Integer,
	"integer-rle":  IntegerRLE,
	"uinteger":     UInteger,
	"uinteger-rle": UIntegerRLE,
	"long":         Long,
	"long-rle":     LongRLE,
	"real":         Real,
	"real-rle":     RealRLE,
	"double":       Double,
	"double-rle":   DoubleRLE,
}

// IsRLE reports whether this data type's rows are RLE-compressed.
func (t DataType) IsRLE() bool {
	switch t {
	case ByteRLE, IntegerRLE, UIntegerRLE, LongRLE, RealRLE, DoubleRLE:
		return true
	}
	return false
}

// ElemSize returns the size in bytes of one decoded cell, or 0 for Bit
// (which is packed 8-per-byte rather than stored as whole cells).
func (t DataType) ElemSize() int {
	switch t {
	case Bit:
		return 0
	case Byte, ByteRLE:
		return 1
	case Integer, IntegerRLE, UInteger, UIntegerRLE:
		return 2
	case Long, LongRLE, Real, RealRLE:
		return 4
	case Double, DoubleRLE:
		return 8
	}
	return 0
}

// IsFloat reports whether this data type's cells decode to a floating
// point value (Real/Double) rather than an integer.
func (t DataType) IsFloat() bool {
	switch t {
	case Real, RealRLE, Double, DoubleRLE:
		return true
	}
	return false
}
