package idl

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bearlytools/bitfield"
	"github.com/bearlytools/bitfield/internal/log"
	"github.com/bearlytools/bitfield/specifier"
)

// Registry holds the enumerations and Types built from a File.
type Registry struct {
	// Package is the package of the File.
	Package string

	enums     map[string]*specifier.Enum
	types     map[string]*bitfield.Type
	enumOrder []*specifier.Enum
	typeOrder []*bitfield.Type
}

// Enum returns the enumeration called name.
func (r *Registry) Enum(name string) (*specifier.Enum, bool) {
	e, ok := r.enums[name]
	return e, ok
}

// Type returns the Type of the Bitfield called name.
func (r *Registry) Type(name string) (*bitfield.Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Enums returns the enumerations in declaration order.
func (r *Registry) Enums() []*specifier.Enum {
	return append([]*specifier.Enum(nil), r.enumOrder...)
}

// Types returns the Types in declaration order.
func (r *Registry) Types() []*bitfield.Type {
	return append([]*bitfield.Type(nil), r.typeOrder...)
}

// Build derives every Enum and builds every Bitfield of the File. Errors carry the line of
// the offending declaration and wrap the sentinel errors of the specifier and layout packages.
func (f *File) Build(options ...bitfield.TypeOption) (*Registry, error) {
	r := &Registry{
		Package: f.Package,
		enums:   make(map[string]*specifier.Enum, len(f.Enums)),
		types:   make(map[string]*bitfield.Type, len(f.Bitfields)),
	}

	for _, e := range f.Enums {
		variants := make([]specifier.Variant, len(e.Variants))
		for i, v := range e.Variants {
			variants[i] = specifier.Variant{Name: v.Name, Discriminant: v.Discriminant}
		}
		enum, err := bitfield.DeriveEnumSpecifier(e.Name, variants)
		if err != nil {
			return nil, fmt.Errorf("[Line %d] Enum %s: %w", e.Line, e.Name, err)
		}
		r.enums[e.Name] = enum
		r.enumOrder = append(r.enumOrder, enum)
	}

	for _, b := range f.Bitfields {
		schema := bitfield.NewSchema(b.Name)
		for _, fl := range b.Fields {
			spec, err := r.resolve(fl.Type)
			if err != nil {
				return nil, fmt.Errorf("[Line %d] Bitfield %s field %s: %w", fl.Line, b.Name, fl.Name, err)
			}
			schema.AddBits(fl.Name, spec, fl.DeclaredBits)
		}
		t, err := schema.Build(options...)
		if err != nil {
			return nil, fmt.Errorf("[Line %d] Bitfield %s: %w", b.Line, b.Name, err)
		}
		r.types[b.Name] = t
		r.typeOrder = append(r.typeOrder, t)
	}

	log.Logger().Debug("built schema", zap.String("package", f.Package), zap.Int("enums", len(r.enumOrder)), zap.Int("bitfields", len(r.typeOrder)))
	return r, nil
}

func (r *Registry) resolve(typ string) (specifier.Specifier, error) {
	if typ == "bool" {
		return specifier.Bool, nil
	}
	if n, ok := builtinBits(typ); ok {
		if typ[0] == 'I' {
			return specifier.DefineInt(n)
		}
		return bitfield.DefineSpecifier(n)
	}
	e, ok := r.enums[typ]
	if !ok {
		return specifier.Specifier{}, fmt.Errorf("unknown type %q", typ)
	}
	return e.Specifier(), nil
}
