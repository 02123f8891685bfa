package specifier

import (
	"math"
	"testing"

	"github.com/kylelemons/godebug/pretty"

	"github.com/bearlytools/bitfield/errors"
)

func TestBoolConversion(t *testing.T) {
	if Bool.ToLogical(0).Bool() {
		t.Errorf("[TestBoolConversion]: raw 0 decoded to true")
	}
	if !Bool.ToLogical(1).Bool() {
		t.Errorf("[TestBoolConversion]: raw 1 decoded to false")
	}
	if got := Bool.ToRaw(BoolValue(false)); got != 0 {
		t.Errorf("[TestBoolConversion]: ToRaw(false) == %d, want 0", got)
	}
	if got := Bool.ToRaw(BoolValue(true)); got != 1 {
		t.Errorf("[TestBoolConversion]: ToRaw(true) == %d, want 1", got)
	}
	if got := Bool.ToRaw(UintValue(6)); got != 1 {
		t.Errorf("[TestBoolConversion]: ToRaw(6) == %d, want 1", got)
	}
	if k := Bool.ToLogical(1).Kind(); k != KindBool {
		t.Errorf("[TestBoolConversion]: kind == %v, want Bool", k)
	}
}

func TestUintConversion(t *testing.T) {
	s := B(5)
	for raw := uint64(0); raw < 32; raw++ {
		v := s.ToLogical(raw)
		if v.Uint() != raw {
			t.Fatalf("[TestUintConversion]: ToLogical(%d) == %d", raw, v.Uint())
		}
		if got := s.ToRaw(v); got != raw {
			t.Fatalf("[TestUintConversion]: ToRaw(ToLogical(%d)) == %d", raw, got)
		}
	}

	if got := s.ToRaw(UintValue(0xFF)); got != 0x1F {
		t.Errorf("[TestUintConversion]: ToRaw(0xff) == %#x, want 0x1f", got)
	}
	if got := B(64).ToRaw(UintValue(math.MaxUint64)); got != math.MaxUint64 {
		t.Errorf("[TestUintConversion]: 64 bit ToRaw(max) == %#x", got)
	}
}

func TestIntConversion(t *testing.T) {
	s := Int(4)
	for i := int64(-8); i < 8; i++ {
		raw := s.ToRaw(IntValue(i))
		if raw > 0xF {
			t.Fatalf("[TestIntConversion]: ToRaw(%d) == %#x, which is wider than 4 bits", i, raw)
		}
		if got := s.ToLogical(raw).Int(); got != i {
			t.Fatalf("[TestIntConversion]: round trip of %d == %d", i, got)
		}
	}
	if got := s.ToLogical(0b1000).String(); got != "-8" {
		t.Errorf("[TestIntConversion]: String() == %q, want -8", got)
	}
}

func TestEnumConversion(t *testing.T) {
	e, err := DeriveEnum("Level", []Variant{{"Low", 1}, {"High", 0}})
	if err != nil {
		t.Fatal(err)
	}
	s := e.Specifier()

	if diff := pretty.Compare(Variant{"High", 0}, s.ToLogical(0).Variant()); diff != "" {
		t.Errorf("[TestEnumConversion](raw 0): -want/+got:\n%s", diff)
	}
	if diff := pretty.Compare(Variant{"Low", 1}, s.ToLogical(1).Variant()); diff != "" {
		t.Errorf("[TestEnumConversion](raw 1): -want/+got:\n%s", diff)
	}

	low, _ := e.ByName("Low")
	if got := s.ToRaw(VariantValue(low)); got != 1 {
		t.Errorf("[TestEnumConversion]: ToRaw(Low) == %d, want 1", got)
	}
}

func TestEnumFallback(t *testing.T) {
	e, err := DeriveEnum("Pair", []Variant{{"First", 1}, {"Second", 0}})
	if err != nil {
		t.Fatal(err)
	}

	// 2 has no variant, so it decodes to the first declared one.
	if got := e.Decode(2); got.Name != "First" {
		t.Errorf("[TestEnumFallback]: Decode(2) == %s, want First", got.Name)
	}
	if _, ok := e.Lookup(2); ok {
		t.Errorf("[TestEnumFallback]: Lookup(2) found a variant")
	}

	// The field is one bit wide, but the raw value is matched as given and not masked
	// down onto Second.
	tests := []struct {
		raw  uint64
		want string
	}{
		{raw: 0, want: "Second"},
		{raw: 1, want: "First"},
		{raw: 2, want: "First"},
		{raw: 3, want: "First"},
		{raw: 1 << 40, want: "First"},
	}
	for _, test := range tests {
		got := e.Specifier().ToLogical(test.raw).Variant().Name
		if got != test.want {
			t.Errorf("[TestEnumFallback](ToLogical(%d)): got %s, want %s", test.raw, got, test.want)
		}
		if dec := e.Decode(test.raw).Name; dec != got {
			t.Errorf("[TestEnumFallback](ToLogical(%d)): got %s, Decode returned %s", test.raw, got, dec)
		}
	}
	if _, err := e.Specifier().ToLogicalStrict(2); !errors.Is(err, ErrUnknownDiscriminant) {
		t.Errorf("[TestEnumFallback]: ToLogicalStrict(2) got err == %v, want ErrUnknownDiscriminant", err)
	}

	wide, err := DeriveEnum("Wide", []Variant{{"A", 3}, {"B", 2}, {"C", 1}, {"D", 0}})
	if err != nil {
		t.Fatal(err)
	}
	if got := wide.Specifier().ToLogical(7).Variant().Name; got != "A" {
		t.Errorf("[TestEnumFallback]: ToLogical(7) == %s, want A", got)
	}

	_, err = e.Specifier().ToLogicalStrict(1)
	if err != nil {
		t.Errorf("[TestEnumFallback]: ToLogicalStrict(1) returned %s", err)
	}
	if _, err := e.Specifier().ToLogicalStrict(0); err != nil {
		t.Errorf("[TestEnumFallback]: ToLogicalStrict(0) returned %s", err)
	}
}

func TestToLogicalStrict(t *testing.T) {
	e, err := DeriveEnum("Quad", []Variant{{"A", 0}, {"B", 1}, {"C", 2}, {"D", 3}})
	if err != nil {
		t.Fatal(err)
	}
	// Build a specifier that is wider than the enum needs, the way a corrupted schema could.
	s := e.Specifier()
	s.bits = 3

	if got := s.ToLogical(6).Variant().Name; got != "A" {
		t.Errorf("[TestToLogicalStrict]: ToLogical(6) == %s, want A", got)
	}
	_, err = s.ToLogicalStrict(6)
	if !errors.Is(err, ErrUnknownDiscriminant) {
		t.Errorf("[TestToLogicalStrict]: got err == %v, want ErrUnknownDiscriminant", err)
	}

	v, err := B(3).ToLogicalStrict(6)
	if err != nil || v.Uint() != 6 {
		t.Errorf("[TestToLogicalStrict]: non enum ToLogicalStrict(6) == %v, %v", v, err)
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Value{}, "0"},
		{UintValue(42), "42"},
		{BoolValue(true), "true"},
		{IntValue(-3), "-3"},
		{VariantValue(Variant{"On", 1}), "On"},
		{VariantValue(Variant{Discriminant: 1}), "1"},
	}
	for _, test := range tests {
		if got := test.v.String(); got != test.want {
			t.Errorf("[TestValueString]: got %q, want %q", got, test.want)
		}
	}
}
