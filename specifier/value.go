package specifier

import (
	"fmt"
	"strconv"

	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/internal/bits"
)

// Value is the logical value of a field. The zero Value is the unsigned integer 0.
type Value struct {
	kind Kind
	u    uint64
	name string
}

// UintValue returns a Value holding an unsigned integer.
func UintValue(u uint64) Value {
	return Value{kind: KindUint, u: u}
}

// BoolValue returns a Value holding a boolean.
func BoolValue(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.u = 1
	}
	return v
}

// IntValue returns a Value holding a signed integer.
func IntValue(i int64) Value {
	return Value{kind: KindInt, u: uint64(i)}
}

// VariantValue returns a Value holding an enumeration variant.
func VariantValue(v Variant) Value {
	return Value{kind: KindEnum, u: v.Discriminant, name: v.Name}
}

// Kind returns the kind of value held. The zero Value reports KindUint.
func (v Value) Kind() Kind {
	if v.kind == KindUnknown {
		return KindUint
	}
	return v.kind
}

// Uint returns the value as an unsigned integer. Booleans are 0 or 1, enum variants
// their discriminant and signed integers their two's complement bits.
func (v Value) Uint() uint64 {
	return v.u
}

// Bool returns true for any non-zero value.
func (v Value) Bool() bool {
	return v.u != 0
}

// Int returns the value as a signed integer.
func (v Value) Int() int64 {
	return int64(v.u)
}

// Variant returns the enumeration variant. For values that are not KindEnum, the Variant
// has no name and the discriminant is Uint().
func (v Value) Variant() Variant {
	return Variant{Name: v.name, Discriminant: v.u}
}

func (v Value) String() string {
	switch v.Kind() {
	case KindBool:
		return strconv.FormatBool(v.Bool())
	case KindInt:
		return strconv.FormatInt(v.Int(), 10)
	case KindEnum:
		if v.name != "" {
			return v.name
		}
	}
	return strconv.FormatUint(v.u, 10)
}

// ErrUnknownDiscriminant is returned by ToLogicalStrict when raw bits don't match any variant.
var ErrUnknownDiscriminant = errors.New("raw value matches no enum discriminant")

// ToLogical converts the raw bits of a field to its logical value. This never fails. For
// non-enum kinds, bits above the specifier's width are ignored. An enum raw value is matched
// as given, so one that matches no discriminant (including one wider than the enum) decodes
// to the first declared variant. Use ToLogicalStrict to detect that case.
func (s Specifier) ToLogical(raw uint64) Value {
	if s.kind == KindEnum {
		return VariantValue(s.enum.Decode(raw))
	}
	raw &= bits.Ones[uint64](uint(s.bits))

	switch s.kind {
	case KindBool:
		return BoolValue(raw != 0)
	case KindInt:
		return IntValue(bits.SignExtend(raw, uint(s.bits)))
	}
	return UintValue(raw)
}

// ToLogicalStrict is ToLogical, except that an enum discriminant that matches no variant
// returns ErrUnknownDiscriminant instead of the first variant.
func (s Specifier) ToLogicalStrict(raw uint64) (Value, error) {
	if s.kind != KindEnum {
		return s.ToLogical(raw), nil
	}
	variant, ok := s.enum.Lookup(raw)
	if !ok {
		return Value{}, errors.Schema(errors.TypeDecode, fmt.Errorf("%w: enum %s, raw value %d", ErrUnknownDiscriminant, s.enum.Name(), raw))
	}
	return VariantValue(variant), nil
}

// ToRaw converts a logical value to the raw bits stored for the field. This never fails.
// The result is truncated to the specifier's width, so a value that doesn't fit keeps only
// its low bits.
func (s Specifier) ToRaw(v Value) uint64 {
	raw := v.u
	if s.kind == KindBool && raw != 0 {
		raw = 1
	}
	return raw & bits.Ones[uint64](uint(s.bits))
}
