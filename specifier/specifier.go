// Package specifier defines the field types that can be packed into a bitfield: unsigned
// integers of 1 to 64 bits, booleans, signed integers and closed enumerations.
//
// A Specifier binds a logical value type to the number of bits it occupies and to the
// narrowest unsigned integer (the raw type) that can hold those bits. Specifiers are small
// immutable values and may be shared freely.
package specifier

import (
	"fmt"
	"strconv"

	"github.com/bearlytools/bitfield/errors"
)

// ErrInvalidWidth is returned when a bit width is outside 1..64.
var ErrInvalidWidth = errors.New("bit width must be in 1..64")

// MaxBits is the widest field that can be stored.
const MaxBits = 64

// RawType is the unsigned integer type used to read and write a field's bits.
type RawType uint8

const (
	RawUnknown RawType = 0
	U8         RawType = 1
	U16        RawType = 2
	U32        RawType = 3
	U64        RawType = 4
)

// Bits returns the width of the raw type in bits.
func (r RawType) Bits() int {
	switch r {
	case U8:
		return 8
	case U16:
		return 16
	case U32:
		return 32
	case U64:
		return 64
	}
	return 0
}

func (r RawType) String() string {
	switch r {
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	}
	return "RawUnknown"
}

// NarrowestRaw returns the narrowest raw type whose width is >= bits. Zero bits maps to U8,
// anything over 64 bits to RawUnknown.
func NarrowestRaw(bits int) RawType {
	switch {
	case bits < 0:
		return RawUnknown
	case bits <= 8:
		return U8
	case bits <= 16:
		return U16
	case bits <= 32:
		return U32
	case bits <= 64:
		return U64
	}
	return RawUnknown
}

// Kind is the logical value type a Specifier converts raw bits to.
type Kind uint8

const (
	KindUnknown Kind = 0
	// KindUint stores the value unchanged.
	KindUint Kind = 1
	// KindBool stores false as 0 and true as 1.
	KindBool Kind = 2
	// KindInt stores a two's complement number that is sign extended when read.
	KindInt Kind = 3
	// KindEnum stores the discriminant of an enumeration variant.
	KindEnum Kind = 4
)

func (k Kind) String() string {
	switch k {
	case KindUint:
		return "Uint"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindEnum:
		return "Enum"
	}
	return "Unknown"
}

// Specifier describes a field type.
type Specifier struct {
	bits uint8
	raw  RawType
	kind Kind
	enum *Enum
}

// Bool is the 1 bit boolean specifier.
var Bool = Specifier{bits: 1, raw: U8, kind: KindBool}

// Define returns the unsigned integer specifier for a width of bits. This is the only
// place a width chosen at run time should enter the system.
func Define(bits int) (Specifier, error) {
	if bits < 1 || bits > MaxBits {
		return Specifier{}, errors.Schema(errors.TypeParameter, fmt.Errorf("%w: got %d", ErrInvalidWidth, bits))
	}
	return Specifier{bits: uint8(bits), raw: NarrowestRaw(bits), kind: KindUint}, nil
}

// B is like Define but panics on an invalid width. It is meant for widths written in source.
func B(bits int) Specifier {
	s, err := Define(bits)
	if err != nil {
		panic(err)
	}
	return s
}

// DefineInt returns the signed integer specifier for a width of bits.
func DefineInt(bits int) (Specifier, error) {
	s, err := Define(bits)
	if err != nil {
		return Specifier{}, err
	}
	s.kind = KindInt
	return s, nil
}

// Int is like DefineInt but panics on an invalid width.
func Int(bits int) Specifier {
	s, err := DefineInt(bits)
	if err != nil {
		panic(err)
	}
	return s
}

// Bits is the number of bits the field occupies.
func (s Specifier) Bits() int {
	return int(s.bits)
}

// Raw is the raw storage type.
func (s Specifier) Raw() RawType {
	return s.raw
}

// Kind is the logical value type.
func (s Specifier) Kind() Kind {
	return s.kind
}

// Enum returns the enumeration for a KindEnum specifier, otherwise nil.
func (s Specifier) Enum() *Enum {
	return s.enum
}

// IsZero reports if this is the zero value, which is not a usable specifier.
func (s Specifier) IsZero() bool {
	return s.kind == KindUnknown
}

// Valid reports if the specifier can be used as a field type.
func (s Specifier) Valid() bool {
	if s.kind == KindUnknown || s.bits < 1 || s.bits > MaxBits {
		return false
	}
	if s.kind == KindEnum && s.enum == nil {
		return false
	}
	return s.raw == NarrowestRaw(int(s.bits))
}

// String returns the name the type has in a schema: B3, I8, bool or the enum's name.
func (s Specifier) String() string {
	switch s.kind {
	case KindUint:
		return "B" + strconv.Itoa(int(s.bits))
	case KindInt:
		return "I" + strconv.Itoa(int(s.bits))
	case KindBool:
		return "bool"
	case KindEnum:
		return s.enum.Name()
	}
	return "Unknown"
}
