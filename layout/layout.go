// Package layout plans how the fields of a structure are packed into bytes.
//
// Fields are packed in declaration order with no padding: a field's offset is the sum of the
// widths of the fields before it. The total width must be a multiple of 8 so the structure
// occupies whole bytes. All validation happens in New, a Plan only exists for a structure
// that can be instantiated.
package layout

import (
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/bearlytools/bitfield/codec"
	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/internal/log"
	"github.com/bearlytools/bitfield/specifier"
)

var (
	// ErrTotalSizeNotByteAligned is returned when the widths of all fields don't add up to a
	// multiple of 8.
	ErrTotalSizeNotByteAligned = errors.New("total bit size is not a multiple of 8")
	// ErrFieldWidthMismatch is returned when a field declares a width that is not the width
	// of its Specifier.
	ErrFieldWidthMismatch = errors.New("declared field width does not match its type")
	// ErrEmptyFieldName is returned when a field has no name.
	ErrEmptyFieldName = errors.New("field name is empty")
	// ErrDuplicateField is returned when two fields share a name.
	ErrDuplicateField = errors.New("field name declared more than once")
	// ErrInvalidSpecifier is returned when a field's Specifier cannot be stored, such as the
	// zero Specifier or a single variant enum.
	ErrInvalidSpecifier = errors.New("field type cannot be stored")
	// ErrNoFields is returned for a structure without fields.
	ErrNoFields = errors.New("structure has no fields")
)

// FieldDescriptor describes a field to lay out.
type FieldDescriptor struct {
	// Name is the name of the field. It must be unique in the structure.
	Name string
	// Spec is the field's type.
	Spec specifier.Specifier
	// DeclaredBits is the width the field is declared with. 0 means not declared, otherwise
	// it must equal Spec.Bits().
	DeclaredBits int
}

// Field is a field that has been placed in a Plan. A Plan hands out copies, so changing a
// Field never changes the Plan it came from.
type Field struct {
	FieldDescriptor

	// Index is the position of the field in declaration order.
	Index int
	// Offset is the bit offset of the field from the start of the structure.
	Offset int
	// Accessor reads and writes the field's raw bits.
	Accessor codec.Accessor
}

// Get returns the logical value of the field stored in b.
func (f Field) Get(b []byte) specifier.Value {
	return f.Spec.ToLogical(f.Accessor.Get(b))
}

// Set stores v as the field in b.
func (f Field) Set(b []byte, v specifier.Value) {
	f.Accessor.Set(b, f.Spec.ToRaw(v))
}

// Plan is the frozen layout of a structure.
type Plan struct {
	name      string
	fields    []Field
	byName    map[string]int
	totalBits int
}

// New validates fields and computes their layout. name is only used in errors and logs.
func New(name string, fields []FieldDescriptor) (*Plan, error) {
	if len(fields) == 0 {
		return nil, errors.Schema(errors.TypeLayout, fmt.Errorf("%w: %s", ErrNoFields, name))
	}

	p := &Plan{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		byName: make(map[string]int, len(fields)),
	}

	offset := 0
	for i, fd := range fields {
		if err := validateField(name, fd); err != nil {
			return nil, err
		}
		if _, ok := p.byName[fd.Name]; ok {
			return nil, errors.Schema(errors.TypeLayout, fmt.Errorf("%w: %s.%s", ErrDuplicateField, name, fd.Name))
		}
		p.fields = append(p.fields, Field{FieldDescriptor: fd, Index: i, Offset: offset})
		p.byName[fd.Name] = i
		offset += fd.Spec.Bits()
	}

	if offset%8 != 0 {
		return nil, errors.Schema(
			errors.TypeLayout,
			fmt.Errorf("%w: %s is %d bits, %d bits short of the next byte", ErrTotalSizeNotByteAligned, name, offset, 8-offset%8),
		)
	}
	p.totalBits = offset

	for i := range p.fields {
		f := &p.fields[i]
		f.Accessor = codec.New(f.Spec.Bits(), f.Offset, p.totalBits, f.Spec.Raw().Bits())
	}

	log.Logger().Debug("planned layout", zap.String("struct", name), zap.Int("fields", len(p.fields)), zap.Int("bits", p.totalBits))
	return p, nil
}

func validateField(structName string, fd FieldDescriptor) error {
	if fd.Name == "" {
		return errors.Schema(errors.TypeLayout, fmt.Errorf("%w: %s", ErrEmptyFieldName, structName))
	}
	if !fd.Spec.Valid() {
		return errors.Schema(errors.TypeLayout, fmt.Errorf("%w: %s.%s has type %v", ErrInvalidSpecifier, structName, fd.Name, fd.Spec))
	}
	if fd.DeclaredBits != 0 && fd.DeclaredBits != fd.Spec.Bits() {
		return errors.Schema(
			errors.TypeLayout,
			fmt.Errorf("%w: %s.%s declares %d bits, type %v is %d bits", ErrFieldWidthMismatch, structName, fd.Name, fd.DeclaredBits, fd.Spec, fd.Spec.Bits()),
		)
	}
	return nil
}

// MustNew is New but panics on error.
func MustNew(name string, fields []FieldDescriptor) *Plan {
	p, err := New(name, fields)
	if err != nil {
		panic(err)
	}
	return p
}

// Name is the structure's name.
func (p *Plan) Name() string {
	return p.name
}

// TotalBits is the width of the structure in bits.
func (p *Plan) TotalBits() int {
	return p.totalBits
}

// Size is the width of the structure in bytes.
func (p *Plan) Size() int {
	return p.totalBits / 8
}

// Len is the number of fields.
func (p *Plan) Len() int {
	return len(p.fields)
}

// Field returns the ith field. It panics if i is out of bounds.
func (p *Plan) Field(i int) Field {
	return p.fields[i]
}

// Lookup returns the field called name.
func (p *Plan) Lookup(name string) (Field, bool) {
	i, ok := p.byName[name]
	if !ok {
		return Field{}, false
	}
	return p.fields[i], true
}

// Fields iterates over the fields in declaration order.
func (p *Plan) Fields() iter.Seq2[int, Field] {
	return func(yield func(int, Field) bool) {
		for i, f := range p.fields {
			if !yield(i, f) {
				return
			}
		}
	}
}
