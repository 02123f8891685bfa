// Package bitfield packs structures of small fields into the fewest whole bytes.
//
// A structure is described by an ordered list of fields, each with a type from the specifier
// package: unsigned integers of 1 to 64 bits, booleans, signed integers and enumerations with
// a power of two number of variants. The fields are packed back to back with no padding, so a
// 3 bit field followed by a 5 bit field takes one byte, and fields freely straddle byte and
// raw type boundaries.
//
// The usual way in is the schema builder:
//
//	mode, err := bitfield.DeriveEnumSpecifier("TriggerMode", []bitfield.Variant{{"Edge", 0}, {"Level", 1}})
//	if err != nil {
//		// handle
//	}
//	entry, err := bitfield.NewSchema("Entry").
//		Add("vector", specifier.B(8)).
//		Add("mode", mode.Specifier()).
//		Add("masked", specifier.Bool).
//		Add("reserved", specifier.B(6)).
//		Build()
//	if err != nil {
//		// handle
//	}
//
//	s := entry.New()
//	defer entry.Release(s)
//	entry.Field("vector").SetUint(s, 0x20)
//
// Everything that can be wrong with a structure is reported when it is built. Getting and
// setting fields never fails.
package bitfield

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bearlytools/bitfield/codec"
	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/internal/log"
	"github.com/bearlytools/bitfield/layout"
	"github.com/bearlytools/bitfield/specifier"
)

type (
	// Value is the logical value of a field.
	Value = specifier.Value
	// Variant is one value of an enumeration.
	Variant = specifier.Variant
	// FieldDescriptor describes a field to PlanLayout.
	FieldDescriptor = layout.FieldDescriptor
)

var (
	// ErrUnknownField is returned when a field name is not part of a structure.
	ErrUnknownField = errors.New("unknown field")
	// ErrFieldIndex is returned by MakeAccessor for an index outside the plan.
	ErrFieldIndex = errors.New("field index out of range")
	// ErrBufferSize is returned when a buffer is not the size of the structure.
	ErrBufferSize = errors.New("buffer size does not match structure size")
	// ErrValueKind is returned when a Value's kind cannot be stored in a field, such as a
	// boolean for a B12 field or a variant of another enumeration.
	ErrValueKind = errors.New("value kind does not match field type")
)

// SetLogger sets the logger used by this module. The default logger discards everything.
func SetLogger(l *zap.Logger) {
	log.SetLogger(l)
}

// DefineSpecifier returns the unsigned integer field type of bits width.
func DefineSpecifier(bits int) (specifier.Specifier, error) {
	return specifier.Define(bits)
}

// DeriveEnumSpecifier validates an enumeration so it can be used as a field type with
// Enum.Specifier().
func DeriveEnumSpecifier(name string, variants []Variant) (*specifier.Enum, error) {
	return specifier.DeriveEnum(name, variants)
}

// PlanLayout validates fields and lays them out.
func PlanLayout(name string, fields []FieldDescriptor) (*layout.Plan, error) {
	return layout.New(name, fields)
}

// Accessor reads and writes the logical value of one field in a packed buffer.
type Accessor struct {
	spec  specifier.Specifier
	codec codec.Accessor
}

// MakeAccessor returns the Accessor for the field at index in plan.
func MakeAccessor(index int, plan *layout.Plan) (Accessor, error) {
	if plan == nil {
		return Accessor{}, errors.Schema(errors.TypeParameter, errors.New("MakeAccessor(): plan is nil"))
	}
	if index < 0 || index >= plan.Len() {
		return Accessor{}, errors.Schema(
			errors.TypeParameter,
			fmt.Errorf("%w: %d, %s has %d fields", ErrFieldIndex, index, plan.Name(), plan.Len()),
		)
	}
	f := plan.Field(index)
	return Accessor{spec: f.Spec, codec: f.Accessor}, nil
}

// Get returns the field's value in b.
func (a Accessor) Get(b []byte) Value {
	return a.spec.ToLogical(a.codec.Get(b))
}

// Set stores v as the field's value in b. Only the field's bits are changed.
func (a Accessor) Set(b []byte, v Value) {
	a.codec.Set(b, a.spec.ToRaw(v))
}

// Spec returns the field's type.
func (a Accessor) Spec() specifier.Specifier {
	return a.spec
}

// Codec returns the raw bit level accessor.
func (a Accessor) Codec() codec.Accessor {
	return a.codec
}
