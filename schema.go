package bitfield

import (
	"fmt"

	"github.com/gostdlib/base/concurrency/sync"
	"github.com/gostdlib/base/context"

	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/layout"
	"github.com/bearlytools/bitfield/specifier"
)

// Schema builds a Type. Methods can be chained, the first error found is returned by Build.
type Schema struct {
	name   string
	fields []layout.FieldDescriptor
	err    error
}

// NewSchema starts the description of a structure called name.
func NewSchema(name string) *Schema {
	return &Schema{name: name}
}

// Add appends a field.
func (s *Schema) Add(name string, spec specifier.Specifier) *Schema {
	return s.AddBits(name, spec, 0)
}

// AddBits appends a field with a declared width, which must match spec.Bits().
func (s *Schema) AddBits(name string, spec specifier.Specifier, declared int) *Schema {
	if s.err != nil {
		return s
	}
	if declared < 0 {
		s.err = errors.Schema(
			errors.TypeParameter,
			fmt.Errorf("%w: %s.%s declares %d bits", layout.ErrFieldWidthMismatch, s.name, name, declared),
		)
		return s
	}
	s.fields = append(s.fields, layout.FieldDescriptor{Name: name, Spec: spec, DeclaredBits: declared})
	return s
}

// Build validates the schema and returns the Type for it.
func (s *Schema) Build(options ...TypeOption) (*Type, error) {
	if s.err != nil {
		return nil, s.err
	}
	opts := typeOptions{}
	for _, o := range options {
		var err error
		opts, err = o(opts)
		if err != nil {
			return nil, err
		}
	}

	plan, err := layout.New(s.name, s.fields)
	if err != nil {
		return nil, err
	}
	return newType(plan, opts), nil
}

type typeOptions struct {
	poolBuffer int
}

// TypeOption is an option for Schema.Build and NewType.
type TypeOption func(typeOptions) (typeOptions, error)

// WithPoolBuffer keeps up to n released instances ready for reuse. By default released
// instances are only kept by the runtime's sync.Pool.
func WithPoolBuffer(n int) TypeOption {
	return func(o typeOptions) (typeOptions, error) {
		if n < 0 {
			return o, errors.Schema(errors.TypeParameter, fmt.Errorf("WithPoolBuffer(%d): must be >= 0", n))
		}
		o.poolBuffer = n
		return o, nil
	}
}

// Type is a validated structure. It creates instances and gives access to their fields.
// A Type is safe for concurrent use.
type Type struct {
	plan   *layout.Plan
	fields []*Field
	pool   *sync.Pool[*Struct]
}

// NewType returns the Type for an existing plan.
func NewType(plan *layout.Plan, options ...TypeOption) (*Type, error) {
	if plan == nil {
		return nil, errors.Schema(errors.TypeParameter, errors.New("NewType(): plan is nil"))
	}
	opts := typeOptions{}
	for _, o := range options {
		var err error
		opts, err = o(opts)
		if err != nil {
			return nil, err
		}
	}
	return newType(plan, opts), nil
}

func newType(plan *layout.Plan, opts typeOptions) *Type {
	t := &Type{plan: plan, fields: make([]*Field, 0, plan.Len())}
	for _, f := range plan.Fields() {
		t.fields = append(t.fields, &Field{t: t, f: f})
	}

	ctx := context.Background()
	name := "bitfield." + plan.Name()
	alloc := func() *Struct {
		return &Struct{t: t, data: make([]byte, plan.Size())}
	}
	if opts.poolBuffer > 0 {
		t.pool = sync.NewPool[*Struct](ctx, name, alloc, sync.WithBuffer(opts.poolBuffer))
	} else {
		t.pool = sync.NewPool[*Struct](ctx, name, alloc)
	}
	return t
}

// Name is the name of the structure.
func (t *Type) Name() string {
	return t.plan.Name()
}

// Plan returns the structure's layout.
func (t *Type) Plan() *layout.Plan {
	return t.plan
}

// Size is the number of bytes an instance occupies.
func (t *Type) Size() int {
	return t.plan.Size()
}

// New returns a zeroed instance. Pass it to Release when done to allow reuse.
func (t *Type) New() *Struct {
	return t.pool.Get(context.Background())
}

// FromBytes returns an instance holding a copy of b, which must be Size() bytes.
func (t *Type) FromBytes(b []byte) (*Struct, error) {
	if len(b) != t.plan.Size() {
		return nil, errors.Schema(
			errors.TypeDecode,
			fmt.Errorf("%w: %s is %d bytes, got %d", ErrBufferSize, t.Name(), t.plan.Size(), len(b)),
		)
	}
	s := t.New()
	copy(s.data, b)
	return s, nil
}

// Release zeroes s and returns it to the Type for reuse. s must not be used afterwards.
// Instances of another Type are ignored.
func (t *Type) Release(s *Struct) {
	if s == nil || s.t != t {
		return
	}
	s.Reset()
	t.pool.Put(context.Background(), s)
}

// Field returns the field called name or nil if there is none.
func (t *Type) Field(name string) *Field {
	f, ok := t.plan.Lookup(name)
	if !ok {
		return nil
	}
	return t.fields[f.Index]
}

// FieldAt returns the ith field in declaration order. It panics if i is out of bounds.
func (t *Type) FieldAt(i int) *Field {
	return t.fields[i]
}

// NumFields is the number of fields.
func (t *Type) NumFields() int {
	return len(t.fields)
}

func (t *Type) lookup(name string) (*Field, error) {
	f := t.Field(name)
	if f == nil {
		return nil, errors.Schema(errors.TypeParameter, fmt.Errorf("%w: %s.%s", ErrUnknownField, t.Name(), name))
	}
	return f, nil
}
