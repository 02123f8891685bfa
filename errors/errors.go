// Package errors is the error package of this module. Structural problems found while building
// a schema are returned as an Error from github.com/gostdlib/base/errors that wraps a sentinel,
// so errors.Is works with the sentinels exported by each package.
package errors

import (
	"github.com/gostdlib/base/context"
	"github.com/gostdlib/base/errors"
)

//go:generate stringer -type=Category -linecomment

// Category says who caused an error.
type Category uint32

// Category implements errors.Category.
func (c Category) Category() string {
	return c.String()
}

const (
	CatUnknown Category = Category(0) // Unknown
	// CatUser is a bad schema, bad data or a bad argument.
	CatUser Category = Category(1) // User
	// CatInternal is a problem in this module.
	CatInternal Category = Category(2) // Internal
)

//go:generate stringer -type=Type -linecomment

// Type says what kind of error happened.
type Type uint16

// Type implements errors.Type.
func (t Type) Type() string {
	return t.String()
}

const (
	TypeUnknown Type = Type(0) // Unknown
	// TypeBug is a condition that cannot happen unless this module is wrong.
	TypeBug Type = Type(1) // Bug
	// TypeParameter is an argument that failed validation.
	TypeParameter Type = Type(2) // Parameter
	// TypeFS is a failure to read a file.
	TypeFS Type = Type(5) // FS

	// TypeLayout is a structure whose fields cannot be laid out.
	TypeLayout Type = Type(1000) // Layout
	// TypeEnum is an enumeration that cannot be used as a field type.
	TypeEnum Type = Type(1001) // Enum
	// TypeParse is a schema file that could not be parsed.
	TypeParse Type = Type(1002) // Parse
	// TypeDecode is stored or encoded data that doesn't match its schema.
	TypeDecode Type = Type(1003) // Decode
)

// Error is the error returned by E and Schema.
type Error = errors.Error

// EOption is an option to E.
type EOption = errors.EOption

// WithCallNum sets how many stack frames above E the reported file and line are taken from.
func WithCallNum(i int) EOption {
	return errors.WithCallNum(i)
}

// E returns an Error wrapping msg. The file and line recorded are those of E's caller.
func E(ctx context.Context, c errors.Category, t errors.Type, msg error, options ...errors.EOption) Error {
	// Options passed by the caller come last so they win over ours.
	opts := append([]errors.EOption{WithCallNum(2)}, options...)
	return errors.E(ctx, c, t, msg, opts...)
}

// Schema returns a CatUser Error for a problem found while building or reading a schema.
func Schema(t Type, msg error) Error {
	return errors.E(context.Background(), CatUser, t, msg, WithCallNum(2))
}

// Bug returns a CatInternal Error of TypeBug for a condition that a validated schema cannot
// produce. Callers usually panic with it.
func Bug(msg error) Error {
	return errors.E(context.Background(), CatInternal, TypeBug, msg, WithCallNum(2))
}
