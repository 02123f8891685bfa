package bitfield

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/specifier"
)

// ErrUnknownVariant is returned when JSON names an enumeration variant that doesn't exist.
var ErrUnknownVariant = errors.New("unknown enum variant")

type jsonOptions struct {
	enumNumbers bool
	indent      string
}

// JSONOption is an option for EncodeJSON.
type JSONOption func(jsonOptions) (jsonOptions, error)

// WithEnumNumbers writes enumeration fields as their discriminant instead of their name.
func WithEnumNumbers(use bool) JSONOption {
	return func(o jsonOptions) (jsonOptions, error) {
		o.enumNumbers = use
		return o, nil
	}
}

// WithIndent writes multi-line JSON with each level indented by indent.
func WithIndent(indent string) JSONOption {
	return func(o jsonOptions) (jsonOptions, error) {
		o.indent = indent
		return o, nil
	}
}

// MarshalJSON implements json.Marshaler. Enumeration fields are written as variant names.
// Unlike EncodeJSON, the output has no trailing newline.
func (s *Struct) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.EncodeJSON(&buf); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// EncodeJSON writes s as a JSON object with one member per field in declaration order,
// followed by a newline. Unsigned and signed integers are numbers, booleans are booleans
// and enumerations are variant names unless WithEnumNumbers is set.
func (s *Struct) EncodeJSON(w io.Writer, options ...JSONOption) error {
	opts := jsonOptions{}
	for _, o := range options {
		var err error
		opts, err = o(opts)
		if err != nil {
			return err
		}
	}

	var encOpts []jsontext.Options
	if opts.indent != "" {
		encOpts = append(encOpts, jsontext.WithIndent(opts.indent))
	}
	enc := jsontext.NewEncoder(w, encOpts...)

	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	for _, f := range s.t.fields {
		if err := enc.WriteToken(jsontext.String(f.Name())); err != nil {
			return err
		}
		if err := enc.WriteToken(valueToken(f.Spec(), f.Get(s), opts)); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndObject)
}

func valueToken(spec specifier.Specifier, v Value, opts jsonOptions) jsontext.Token {
	switch spec.Kind() {
	case specifier.KindBool:
		return jsontext.Bool(v.Bool())
	case specifier.KindInt:
		return jsontext.Int(v.Int())
	case specifier.KindEnum:
		if !opts.enumNumbers {
			return jsontext.String(v.Variant().Name)
		}
	}
	return jsontext.Uint(v.Uint())
}

// UnmarshalJSON implements json.Unmarshaler. It sets the fields named in b, fields that are
// not present keep their value. Enumeration fields accept a variant name or a discriminant.
// If b is rejected, s is left unchanged.
func (s *Struct) UnmarshalJSON(b []byte) error {
	return s.DecodeJSON(bytes.NewReader(b))
}

// DecodeJSON reads a JSON object from r into s. See UnmarshalJSON.
func (s *Struct) DecodeJSON(r io.Reader) error {
	dec := jsontext.NewDecoder(r)
	// Fields are decoded into a copy that replaces s.data only when the whole object is valid.
	scratch := &Struct{t: s.t, data: bytes.Clone(s.data)}

	tok, err := dec.ReadToken()
	if err != nil {
		return decodeErr(s, err)
	}
	if tok.Kind() != '{' {
		return decodeErr(s, fmt.Errorf("expected a JSON object, got %v", tok.Kind()))
	}

	for dec.PeekKind() != '}' {
		tok, err := dec.ReadToken()
		if err != nil {
			return decodeErr(s, err)
		}
		name := tok.String()
		f, err := s.t.lookup(name)
		if err != nil {
			return err
		}
		val, err := dec.ReadValue()
		if err != nil {
			return decodeErr(s, err)
		}
		v, err := jsonValue(f, val)
		if err != nil {
			return decodeErr(s, fmt.Errorf("field %s: %w", name, err))
		}
		f.Set(scratch, v)
	}
	if _, err := dec.ReadToken(); err != nil {
		return decodeErr(s, err)
	}
	copy(s.data, scratch.data)
	return nil
}

// jsonValue converts the JSON for one field to its Value. Values that are too wide for the
// field are rejected rather than truncated.
func jsonValue(f *Field, val jsontext.Value) (Value, error) {
	spec := f.Spec()
	switch spec.Kind() {
	case specifier.KindBool:
		var b bool
		if err := json.Unmarshal(val, &b); err != nil {
			return Value{}, err
		}
		return specifier.BoolValue(b), nil
	case specifier.KindInt:
		var i int64
		if err := json.Unmarshal(val, &i); err != nil {
			return Value{}, err
		}
		if v := spec.ToRaw(specifier.IntValue(i)); spec.ToLogical(v).Int() != i {
			return Value{}, fmt.Errorf("%d does not fit in %d bits", i, spec.Bits())
		}
		return specifier.IntValue(i), nil
	case specifier.KindEnum:
		if val.Kind() == '"' {
			var name string
			if err := json.Unmarshal(val, &name); err != nil {
				return Value{}, err
			}
			v, ok := spec.Enum().ByName(name)
			if !ok {
				return Value{}, fmt.Errorf("%w: %s has no variant %q", ErrUnknownVariant, spec.Enum().Name(), name)
			}
			return specifier.VariantValue(v), nil
		}
		var u uint64
		if err := json.Unmarshal(val, &u); err != nil {
			return Value{}, err
		}
		v, ok := spec.Enum().Lookup(u)
		if !ok {
			return Value{}, fmt.Errorf("%w: %s has no discriminant %d", ErrUnknownVariant, spec.Enum().Name(), u)
		}
		return specifier.VariantValue(v), nil
	}

	var u uint64
	if err := json.Unmarshal(val, &u); err != nil {
		return Value{}, err
	}
	if spec.ToRaw(specifier.UintValue(u)) != u {
		return Value{}, fmt.Errorf("%d does not fit in %d bits", u, spec.Bits())
	}
	return specifier.UintValue(u), nil
}

func decodeErr(s *Struct, err error) error {
	return errors.Schema(errors.TypeDecode, fmt.Errorf("decoding %s from JSON: %w", s.t.Name(), err))
}
