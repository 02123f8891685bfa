package specifier

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/internal/bits"
	"github.com/bearlytools/bitfield/internal/log"
)

var (
	// ErrVariantCountNotPowerOfTwo is returned when an enumeration doesn't have 2^n variants.
	ErrVariantCountNotPowerOfTwo = errors.New("enum variant count is not a power of two")
	// ErrDiscriminantOutOfRange is returned when a discriminant is >= the number of variants.
	ErrDiscriminantOutOfRange = errors.New("enum discriminant out of range")
	// ErrDuplicateVariant is returned when two variants share a name.
	ErrDuplicateVariant = errors.New("enum variant name declared more than once")
	// ErrDuplicateDiscriminant is returned when two variants share a discriminant.
	ErrDuplicateDiscriminant = errors.New("enum discriminant assigned more than once")
)

// Variant is one value of a closed enumeration.
type Variant struct {
	// Name is the name of the variant.
	Name string
	// Discriminant is the number stored for the variant.
	Discriminant uint64
}

// Enum describes a closed enumeration that has been validated for use as a field type.
// An Enum is immutable once DeriveEnum returns it.
type Enum struct {
	name     string
	variants []Variant
	bits     int
	raw      RawType

	// byDisc maps a discriminant to the index of its variant in variants.
	byDisc []int
	byName map[string]int
}

// DeriveEnum validates variants and returns the Enum describing them. The number of variants
// must be a power of two and every discriminant must be less than that number. The field
// width is log2(len(variants)).
func DeriveEnum(name string, variants []Variant) (*Enum, error) {
	count := uint64(len(variants))
	if !bits.IsPowerOfTwo(count) {
		return nil, errors.Schema(
			errors.TypeEnum,
			fmt.Errorf("%w: enum %s has %d variants", ErrVariantCountNotPowerOfTwo, name, count),
		)
	}

	e := &Enum{
		name:     name,
		variants: make([]Variant, len(variants)),
		bits:     int(bits.Log2(count)),
		byDisc:   make([]int, count),
		byName:   make(map[string]int, count),
	}
	e.raw = NarrowestRaw(e.bits)
	copy(e.variants, variants)

	for i := range e.byDisc {
		e.byDisc[i] = -1
	}

	for i, v := range e.variants {
		if v.Discriminant >= count {
			return nil, errors.Schema(
				errors.TypeEnum,
				fmt.Errorf("%w: enum %s variant %s has discriminant %d, must be < %d", ErrDiscriminantOutOfRange, name, v.Name, v.Discriminant, count),
			)
		}
		if _, ok := e.byName[v.Name]; ok {
			return nil, errors.Schema(
				errors.TypeEnum,
				fmt.Errorf("%w: enum %s variant %s", ErrDuplicateVariant, name, v.Name),
			)
		}
		if prev := e.byDisc[v.Discriminant]; prev != -1 {
			return nil, errors.Schema(
				errors.TypeEnum,
				fmt.Errorf("%w: enum %s variants %s and %s both use %d", ErrDuplicateDiscriminant, name, e.variants[prev].Name, v.Name, v.Discriminant),
			)
		}
		e.byName[v.Name] = i
		e.byDisc[v.Discriminant] = i
	}

	log.Logger().Debug("derived enum specifier", zap.String("enum", name), zap.Int("variants", len(variants)), zap.Int("bits", e.bits))
	return e, nil
}

// Name is the name of the enumeration.
func (e *Enum) Name() string {
	return e.name
}

// Len reports the number of variants.
func (e *Enum) Len() int {
	return len(e.variants)
}

// Bits is the field width of the enumeration.
func (e *Enum) Bits() int {
	return e.bits
}

// Raw is the raw storage type.
func (e *Enum) Raw() RawType {
	return e.raw
}

// Variant returns the ith declared variant. It panics if out of bounds.
func (e *Enum) Variant(i int) Variant {
	return e.variants[i]
}

// Variants returns a copy of the variants in declaration order.
func (e *Enum) Variants() []Variant {
	out := make([]Variant, len(e.variants))
	copy(out, e.variants)
	return out
}

// ByName returns the variant called name.
func (e *Enum) ByName(name string) (Variant, bool) {
	i, ok := e.byName[name]
	if !ok {
		return Variant{}, false
	}
	return e.variants[i], true
}

// Lookup returns the variant whose discriminant is raw.
func (e *Enum) Lookup(raw uint64) (Variant, bool) {
	if raw >= uint64(len(e.byDisc)) {
		return Variant{}, false
	}
	i := e.byDisc[raw]
	if i < 0 {
		return Variant{}, false
	}
	return e.variants[i], true
}

// Decode returns the variant whose discriminant is raw. If there is none, Decode returns
// the first declared variant instead of failing.
// TODO(bitfield): decide if the fallback should be removed in favor of Lookup once callers
// that rely on it have moved to Specifier.ToLogicalStrict.
func (e *Enum) Decode(raw uint64) Variant {
	if v, ok := e.Lookup(raw); ok {
		return v
	}
	log.Logger().Debug(
		"enum discriminant matches no variant, using first variant",
		zap.String("enum", e.name),
		zap.Uint64("raw", raw),
		zap.String("variant", e.variants[0].Name),
	)
	return e.variants[0]
}

// Specifier returns the field type for the enumeration.
func (e *Enum) Specifier() Specifier {
	return Specifier{bits: uint8(e.bits), raw: e.raw, kind: KindEnum, enum: e}
}

// Encode returns the discriminant of the variant called name.
func (e *Enum) Encode(name string) (uint64, bool) {
	v, ok := e.ByName(name)
	return v.Discriminant, ok
}
