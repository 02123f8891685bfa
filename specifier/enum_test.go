package specifier

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"

	"github.com/bearlytools/bitfield/errors"
)

func variants(discs ...uint64) []Variant {
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	out := make([]Variant, len(discs))
	for i, d := range discs {
		out[i] = Variant{Name: names[i], Discriminant: d}
	}
	return out
}

func TestDeriveEnum(t *testing.T) {
	tests := []struct {
		name     string
		variants []Variant
		wantBits int
		wantErr  error
	}{
		{name: "Error: no variants", variants: nil, wantErr: ErrVariantCountNotPowerOfTwo},
		{name: "Error: 3 variants", variants: variants(0, 1, 2), wantErr: ErrVariantCountNotPowerOfTwo},
		{name: "Error: 6 variants", variants: variants(0, 1, 2, 3, 4, 5), wantErr: ErrVariantCountNotPowerOfTwo},
		{name: "Error: discriminant 5 among 4", variants: variants(0, 1, 5, 3), wantErr: ErrDiscriminantOutOfRange},
		{name: "Error: discriminant equal to count", variants: variants(0, 2), wantErr: ErrDiscriminantOutOfRange},
		{name: "Error: duplicate discriminant", variants: variants(0, 0), wantErr: ErrDuplicateDiscriminant},
		{
			name:     "Error: duplicate name",
			variants: []Variant{{"A", 0}, {"A", 1}},
			wantErr:  ErrDuplicateVariant,
		},
		{name: "Success: 1 variant", variants: variants(0), wantBits: 0},
		{name: "Success: 2 variants", variants: variants(1, 0), wantBits: 1},
		{name: "Success: 4 variants", variants: variants(0, 1, 2, 3), wantBits: 2},
		{name: "Success: 8 variants out of order", variants: variants(7, 6, 5, 4, 3, 2, 1, 0), wantBits: 3},
	}

	for _, test := range tests {
		got, err := DeriveEnum("Test", test.variants)
		switch {
		case test.wantErr != nil:
			if !errors.Is(err, test.wantErr) {
				t.Errorf("[TestDeriveEnum](%s): got err == %v, want %v", test.name, err, test.wantErr)
			}
			if got != nil {
				t.Errorf("[TestDeriveEnum](%s): got an Enum with an error", test.name)
			}
			continue
		case err != nil:
			t.Errorf("[TestDeriveEnum](%s): got err == %s, want err == nil", test.name, err)
			continue
		}

		if got.Bits() != test.wantBits {
			t.Errorf("[TestDeriveEnum](%s): got %d bits, want %d", test.name, got.Bits(), test.wantBits)
		}
		if got.Raw() != U8 {
			t.Errorf("[TestDeriveEnum](%s): got raw %v, want u8", test.name, got.Raw())
		}
		if diff := pretty.Compare(test.variants, got.Variants()); diff != "" {
			t.Errorf("[TestDeriveEnum](%s): variants -want/+got:\n%s", test.name, diff)
		}
		for _, v := range test.variants {
			if l, ok := got.Lookup(v.Discriminant); !ok || l != v {
				t.Errorf("[TestDeriveEnum](%s): Lookup(%d) == %v, %v", test.name, v.Discriminant, l, ok)
			}
			if d, ok := got.Encode(v.Name); !ok || d != v.Discriminant {
				t.Errorf("[TestDeriveEnum](%s): Encode(%s) == %d, %v", test.name, v.Name, d, ok)
			}
		}
	}
}

func TestDeriveEnumCopiesInput(t *testing.T) {
	in := variants(0, 1)
	e, err := DeriveEnum("Copy", in)
	if err != nil {
		t.Fatal(err)
	}
	in[0].Name = "Changed"

	if got := e.Variant(0).Name; got != "A" {
		t.Errorf("[TestDeriveEnumCopiesInput]: caller mutation leaked into the Enum, got %q", got)
	}
	out := e.Variants()
	out[1].Name = "Changed"
	if got := e.Variant(1).Name; got != "B" {
		t.Errorf("[TestDeriveEnumCopiesInput]: Variants() mutation leaked into the Enum, got %q", got)
	}
}

func TestEnumSpecifier(t *testing.T) {
	e, err := DeriveEnum("Big", make16())
	if err != nil {
		t.Fatal(err)
	}
	s := e.Specifier()
	if s.Bits() != 4 || s.Kind() != KindEnum || s.Enum() != e || !s.Valid() {
		t.Errorf("[TestEnumSpecifier]: got bits %d kind %v valid %v", s.Bits(), s.Kind(), s.Valid())
	}
	if _, ok := e.ByName("missing"); ok {
		t.Errorf("[TestEnumSpecifier]: ByName(missing) found a variant")
	}
}

func make16() []Variant {
	out := make([]Variant, 16)
	for i := range out {
		out[i] = Variant{Name: string(rune('a' + i)), Discriminant: uint64(i)}
	}
	return out
}
