package prim

// Floats is a constraint for floating-point key types.
type Floats interface {
	float32 | float64
}

// SignedInts is a constraint for signed integer key types.
type SignedInts interface {
	int8 | int16 | int32 | int64
}

// UnsignedInts is a constraint for unsigned integer key types.
type UnsignedInts interface {
	uint8 | uint16 | uint32 | uint64
}

// Integers is a constraint for all integer key types.
type Integers interface {
	SignedInts | UnsignedInts
}

// Keys is a constraint for all built-in key types the radix pipeline
// knows how to encode without a caller-supplied Encoder.
type Keys interface {
	Floats | Integers
}
