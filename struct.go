package bitfield

import (
	"fmt"
	"strings"

	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/internal/bits"
	"github.com/bearlytools/bitfield/layout"
	"github.com/bearlytools/bitfield/specifier"
)

// Struct is an instance of a Type. It owns a buffer of Type.Size() bytes that is only
// changed through its fields. A Struct may be read concurrently, writes need exclusive access.
type Struct struct {
	t    *Type
	data []byte
}

// Type returns the Type s is an instance of.
func (s *Struct) Type() *Type {
	return s.t
}

// Get returns the value of the field called name.
func (s *Struct) Get(name string) (Value, error) {
	f, err := s.t.lookup(name)
	if err != nil {
		return Value{}, err
	}
	return f.Get(s), nil
}

// Set sets the field called name to v. A value that is too wide for the field keeps only
// the bits that fit. A value whose kind the field can't hold returns ErrValueKind.
func (s *Struct) Set(name string, v Value) error {
	f, err := s.t.lookup(name)
	if err != nil {
		return err
	}
	if err := checkValue(f.Spec(), v); err != nil {
		return errors.Schema(errors.TypeParameter, fmt.Errorf("%s.%s: %w", s.t.Name(), name, err))
	}
	f.Set(s, v)
	return nil
}

// GetRaw returns the stored bits of the field called name.
func (s *Struct) GetRaw(name string) (uint64, error) {
	f, err := s.t.lookup(name)
	if err != nil {
		return 0, err
	}
	return f.f.Accessor.Get(s.data), nil
}

// SetRaw stores the low bits of raw as the field called name without any conversion.
func (s *Struct) SetRaw(name string, raw uint64) error {
	f, err := s.t.lookup(name)
	if err != nil {
		return err
	}
	f.f.Accessor.Set(s.data, raw)
	return nil
}

// Bytes returns the packed representation. This is s's storage and not a copy, it is
// only valid until s is released.
func (s *Struct) Bytes() []byte {
	return s.data
}

// Clone returns a new instance with the same field values.
func (s *Struct) Clone() *Struct {
	n := s.t.New()
	copy(n.data, s.data)
	return n
}

// Reset sets every field to zero.
func (s *Struct) Reset() {
	clear(s.data)
}

// String returns the fields and the packed bytes in binary, lowest byte first.
func (s *Struct) String() string {
	buff := strings.Builder{}
	buff.WriteString(s.t.Name())
	buff.WriteString("{")
	for i, f := range s.t.fields {
		if i > 0 {
			buff.WriteString(", ")
		}
		buff.WriteString(fmt.Sprintf("%s: %s", f.Name(), f.Get(s)))
	}
	buff.WriteString("} [")
	buff.WriteString(bits.BytesInBinary(s.data))
	buff.WriteString("]")
	return buff.String()
}

// Field is a field of a Type. Its methods read and write the field in instances of that Type
// and panic if given an instance of another Type or a value the field can't hold.
type Field struct {
	t *Type
	f layout.Field
}

// Name is the name of the field.
func (f *Field) Name() string {
	return f.f.Name
}

// Index is the position of the field in the structure.
func (f *Field) Index() int {
	return f.f.Index
}

// Spec is the type of the field.
func (f *Field) Spec() specifier.Specifier {
	return f.f.Spec
}

// Offset is the field's bit offset in the structure.
func (f *Field) Offset() int {
	return f.f.Offset
}

func (f *Field) check(s *Struct) {
	if s.t != f.t {
		panic(fmt.Sprintf("field %s.%s used with an instance of %s", f.t.Name(), f.Name(), s.t.Name()))
	}
}

// Get returns the field's value in s.
func (f *Field) Get(s *Struct) Value {
	f.check(s)
	return f.f.Get(s.data)
}

// Set sets the field's value in s. Unsigned values are stored as raw bits in a field of any
// kind. Other values must match the field's kind, see ErrValueKind.
func (f *Field) Set(s *Struct, v Value) {
	f.check(s)
	if err := checkValue(f.Spec(), v); err != nil {
		panic(fmt.Sprintf("field %s.%s: %s", f.t.Name(), f.Name(), err))
	}
	f.f.Set(s.data, v)
}

// checkValue returns ErrValueKind if v can't be stored in a field of type spec.
func checkValue(spec specifier.Specifier, v Value) error {
	k := v.Kind()
	if k == specifier.KindUint {
		return nil
	}
	if k != spec.Kind() {
		return fmt.Errorf("%w: %s value for a %v field", ErrValueKind, k, spec)
	}
	if k == specifier.KindEnum {
		variant := v.Variant()
		got, ok := spec.Enum().ByName(variant.Name)
		if !ok || got.Discriminant != variant.Discriminant {
			return fmt.Errorf("%w: %q(%d) is not a variant of %s", ErrValueKind, variant.Name, variant.Discriminant, spec.Enum().Name())
		}
	}
	return nil
}

// Uint returns the field's value as an unsigned integer.
func (f *Field) Uint(s *Struct) uint64 {
	return f.Get(s).Uint()
}

// SetUint sets the field to the low bits of v.
func (f *Field) SetUint(s *Struct, v uint64) {
	f.Set(s, specifier.UintValue(v))
}

// Bool returns the field's value as a boolean.
func (f *Field) Bool(s *Struct) bool {
	return f.Get(s).Bool()
}

// SetBool sets the field to 1 for true and 0 for false. The field must be a bool.
func (f *Field) SetBool(s *Struct, v bool) {
	f.Set(s, specifier.BoolValue(v))
}

// Int returns the field's value as a signed integer.
func (f *Field) Int(s *Struct) int64 {
	return f.Get(s).Int()
}

// SetInt sets the field to the two's complement of v, truncated to the field's width. The
// field must be signed.
func (f *Field) SetInt(s *Struct, v int64) {
	f.Set(s, specifier.IntValue(v))
}

// Variant returns the field's value as an enumeration variant.
func (f *Field) Variant(s *Struct) Variant {
	return f.Get(s).Variant()
}

// SetVariant sets the field to v's discriminant. v must be a variant of the field's enum.
func (f *Field) SetVariant(s *Struct, v Variant) {
	f.Set(s, specifier.VariantValue(v))
}
