// Package idl parses bitfield schema files.
//
// A schema file declares a package, any number of enumerations and any number of bitfields:
//
//	package tables
//
//	// Comments start with // and may end any line.
//	Enum TriggerMode {
//		Edge @0
//		Level @1
//	}
//
//	Bitfield Entry {
//		vector B8
//		mode TriggerMode @bits(1)
//		masked bool
//		reserved B6
//	}
//
// Field types are B1 to B64 (unsigned), I1 to I64 (signed), bool or the name of an Enum in
// the same file, declared before or after its use. An enum entry without @N takes the
// previous entry's discriminant plus one, starting at 0. @bits(N) declares a field's width,
// which must match its type.
//
// Parse only checks the syntax and that names resolve. File.Build applies the layout and
// enum rules and returns the Types.
package idl

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"unicode"

	"github.com/gostdlib/base/context"
	"github.com/gostdlib/base/values/sizes"
	"github.com/johnsiilver/halfpike"

	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/internal/conversions"
)

// MaxFileSize is the largest schema file ParseFile will read.
const MaxFileSize = 1 * sizes.MiB

// File is a parsed schema file.
type File struct {
	// Package is the name given by the package directive.
	Package string
	// Enums are the enumerations in declaration order.
	Enums []*Enum
	// Bitfields are the bitfields in declaration order.
	Bitfields []*Bitfield

	idents map[string]int
}

// Enum is an Enum block.
type Enum struct {
	Name     string
	Line     int
	Variants []Variant
}

// Variant is an entry of an Enum block.
type Variant struct {
	Name         string
	Discriminant uint64
	Line         int
}

// Bitfield is a Bitfield block.
type Bitfield struct {
	Name   string
	Line   int
	Fields []Field
}

// Field is a field of a Bitfield block.
type Field struct {
	Name string
	// Type is the type as written: B<n>, I<n>, bool or an Enum name.
	Type string
	// DeclaredBits is the N of @bits(N), or 0.
	DeclaredBits int
	Line         int
}

// Parse parses the content of a schema file.
func Parse(ctx context.Context, content string) (*File, error) {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	f := &File{idents: map[string]int{}}
	if err := halfpike.Parse(ctx, content, f); err != nil {
		return nil, errors.E(ctx, errors.CatUser, errors.TypeParse, fmt.Errorf("failed to parse schema: %w", err))
	}
	return f, nil
}

type readStatFS interface {
	fs.ReadFileFS
	fs.StatFS
}

// ParseFile reads and parses the schema file at path in fsys.
func ParseFile(ctx context.Context, fsys readStatFS, path string) (*File, error) {
	fi, err := fsys.Stat(path)
	if err != nil {
		return nil, errors.E(ctx, errors.CatUser, errors.TypeFS, fmt.Errorf("schema file %s: %w", path, err))
	}
	if fi.IsDir() {
		return nil, errors.E(ctx, errors.CatUser, errors.TypeFS, fmt.Errorf("schema file %s is a directory", path))
	}
	if fi.Size() > int64(MaxFileSize) {
		return nil, errors.E(ctx, errors.CatUser, errors.TypeFS, fmt.Errorf("schema file %s is %d bytes, limit is %d", path, fi.Size(), MaxFileSize))
	}

	content, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.E(ctx, errors.CatUser, errors.TypeFS, fmt.Errorf("schema file %s: %w", path, err))
	}
	f, err := Parse(ctx, conversions.ByteSlice2String(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Validate implements halfpike.Validator. It runs after the whole file is read so types
// may refer to enums declared later in the file.
func (f *File) Validate() error {
	if f.Package == "" {
		return fmt.Errorf("missing package directive")
	}
	enums := map[string]bool{}
	for _, e := range f.Enums {
		enums[e.Name] = true
	}
	for _, b := range f.Bitfields {
		if len(b.Fields) == 0 {
			return fmt.Errorf("[Line %d] error: Bitfield %s has no fields", b.Line, b.Name)
		}
		for _, fl := range b.Fields {
			if _, ok := builtinBits(fl.Type); ok {
				continue
			}
			if !enums[fl.Type] {
				return fmt.Errorf("[Line %d] error: field %s.%s has unknown type %q", fl.Line, b.Name, fl.Name, fl.Type)
			}
		}
	}
	return nil
}

// Start is the start point for reading the schema.
func (f *File) Start(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	return f.ParsePackage
}

func (f *File) skipLinesWithComments(p *halfpike.Parser) {
	l := p.Next()

	if len(l.Items) > 0 && isComment(l.Items[0]) {
		if p.EOF(l) {
			return
		}
		f.skipLinesWithComments(p)
	} else {
		p.Backup()
	}
}

// ParsePackage parses the package directive, which must be the first non-comment line.
func (f *File) ParsePackage(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	f.skipLinesWithComments(p)

	line := p.Next()

	if len(line.Items) < 3 {
		return p.Errorf("[Line %d] error: got %q, want: 'package {{package name}}'", line.LineNum, line.Raw)
	}
	if err := caseSensitiveCheck("package", line.Items[0].Val); err != nil {
		return p.Errorf("[Line %d] error: %s", line.LineNum, err)
	}
	if err := validPackage(line.Items[1].Val); err != nil {
		return p.Errorf("[Line %d] error: %s", line.LineNum, err)
	}
	f.Package = line.Items[1].Val

	if err := commentOrEOL(line, 2); err != nil {
		return p.Errorf("[Line %d] error: %s", line.LineNum, err)
	}
	return f.FindNext
}

// FindNext finds the next Enum or Bitfield block.
func (f *File) FindNext(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	f.skipLinesWithComments(p)

	line := p.Next()
	if p.EOF(line) {
		return nil
	}

	switch strings.ToLower(line.Items[0].Val) {
	case "enum":
		p.Backup()
		return f.ParseEnum
	case "bitfield":
		p.Backup()
		return f.ParseBitfield
	}
	return p.Errorf("[Line %d] error: unknown keyword %q, expected 'Enum' or 'Bitfield'", line.LineNum, line.Items[0].Val)
}

// blockStart parses "<keyword> <Name> {" and returns Name.
func (f *File) blockStart(line halfpike.Line, keyword string) (string, error) {
	if len(line.Items) < 4 {
		return "", fmt.Errorf("got %q, want: '%s {{Name}} {'", line.Raw, keyword)
	}
	if err := caseSensitiveCheck(keyword, line.Items[0].Val); err != nil {
		return "", err
	}
	name := line.Items[1].Val
	if err := validateIdent(name); err != nil {
		return "", fmt.Errorf("%s identifier: %w", keyword, err)
	}
	if _, ok := builtinBits(name); ok {
		return "", fmt.Errorf("%s name %q is a builtin type", keyword, name)
	}
	if prev, ok := f.idents[name]; ok {
		return "", fmt.Errorf("%q already declared on line %d", name, prev)
	}
	if line.Items[2].Val != "{" {
		return "", fmt.Errorf("expected '{' after %s %s, got %q", keyword, name, line.Items[2].Val)
	}
	if err := commentOrEOL(line, 3); err != nil {
		return "", err
	}
	f.idents[name] = line.LineNum
	return name, nil
}

// ParseEnum parses an Enum block.
func (f *File) ParseEnum(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	line := p.Next()
	name, err := f.blockStart(line, "Enum")
	if err != nil {
		return p.Errorf("[Line %d] error: %s", line.LineNum, err)
	}
	e := &Enum{Name: name, Line: line.LineNum}
	names := map[string]bool{}

	var next uint64
	for {
		f.skipLinesWithComments(p)
		l := p.Next()
		if p.EOF(l) {
			return p.Errorf("[Line %d] error: Enum %s: EOF reached before closing '}'", l.LineNum, name)
		}
		if l.Items[0].Val == "}" {
			if err := commentOrEOL(l, 1); err != nil {
				return p.Errorf("[Line %d] error: %s", l.LineNum, err)
			}
			break
		}

		v := Variant{Name: l.Items[0].Val, Discriminant: next, Line: l.LineNum}
		if err := validateIdent(v.Name); err != nil {
			return p.Errorf("[Line %d] error: Enum %s entry: %s", l.LineNum, name, err)
		}
		if names[v.Name] {
			return p.Errorf("[Line %d] error: Enum %s already contains %q", l.LineNum, name, v.Name)
		}
		after := 1
		if len(l.Items) > 2 && strings.HasPrefix(l.Items[1].Val, "@") {
			n, err := strconv.ParseUint(strings.TrimPrefix(l.Items[1].Val, "@"), 10, 64)
			if err != nil {
				return p.Errorf("[Line %d] error: expected @{{Number}} after %s, got %q", l.LineNum, v.Name, l.Items[1].Val)
			}
			v.Discriminant = n
			after = 2
		}
		if err := commentOrEOL(l, after); err != nil {
			return p.Errorf("[Line %d] error: %s", l.LineNum, err)
		}
		names[v.Name] = true
		e.Variants = append(e.Variants, v)
		next = v.Discriminant + 1
	}

	if len(e.Variants) == 0 {
		return p.Errorf("[Line %d] error: Enum %s has no entries", e.Line, name)
	}
	f.Enums = append(f.Enums, e)
	return f.FindNext
}

// ParseBitfield parses a Bitfield block.
func (f *File) ParseBitfield(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	line := p.Next()
	name, err := f.blockStart(line, "Bitfield")
	if err != nil {
		return p.Errorf("[Line %d] error: %s", line.LineNum, err)
	}
	b := &Bitfield{Name: name, Line: line.LineNum}
	names := map[string]bool{}

	for {
		f.skipLinesWithComments(p)
		l := p.Next()
		if p.EOF(l) {
			return p.Errorf("[Line %d] error: Bitfield %s: EOF reached before closing '}'", l.LineNum, name)
		}
		if l.Items[0].Val == "}" {
			if err := commentOrEOL(l, 1); err != nil {
				return p.Errorf("[Line %d] error: %s", l.LineNum, err)
			}
			break
		}

		fl, err := parseField(l)
		if err != nil {
			return p.Errorf("[Line %d] error: Bitfield %s: %s", l.LineNum, name, err)
		}
		if names[fl.Name] {
			return p.Errorf("[Line %d] error: Bitfield %s already contains field %q", l.LineNum, name, fl.Name)
		}
		names[fl.Name] = true
		b.Fields = append(b.Fields, fl)
	}

	f.Bitfields = append(f.Bitfields, b)
	return f.FindNext
}

// parseField parses "{{name}} {{Type}} [@bits(N)]".
func parseField(l halfpike.Line) (Field, error) {
	if len(l.Items) < 3 {
		return Field{}, fmt.Errorf("got %q, want: '{{name}} {{Type}}'", l.Raw)
	}
	fl := Field{Name: l.Items[0].Val, Type: l.Items[1].Val, Line: l.LineNum}
	if err := validateFieldName(fl.Name); err != nil {
		return Field{}, err
	}

	after := 2
	if len(l.Items) > 3 && strings.HasPrefix(l.Items[2].Val, "@") {
		n, err := parseDeclaredBits(l.Items[2].Val)
		if err != nil {
			return Field{}, err
		}
		fl.DeclaredBits = n
		after = 3
	}
	if err := commentOrEOL(l, after); err != nil {
		return Field{}, err
	}
	return fl, nil
}

func parseDeclaredBits(s string) (int, error) {
	inner, ok := strings.CutPrefix(s, "@bits(")
	if !ok || !strings.HasSuffix(inner, ")") {
		return 0, fmt.Errorf("expected @bits({{Number}}), got %q", s)
	}
	n, err := strconv.Atoi(strings.TrimSuffix(inner, ")"))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("expected @bits({{Number}}) with a positive number, got %q", s)
	}
	return n, nil
}

// builtinBits reports if t is B<n> or I<n> with n in 1..64, or bool, and its width.
func builtinBits(t string) (int, bool) {
	if t == "bool" {
		return 1, true
	}
	if len(t) < 2 || (t[0] != 'B' && t[0] != 'I') {
		return 0, false
	}
	// Leading zeros are not allowed, B08 is not a type.
	if t[1] == '0' {
		return 0, false
	}
	n, err := strconv.Atoi(t[1:])
	if err != nil || n < 1 || n > 64 {
		return 0, false
	}
	return n, true
}

func caseSensitiveCheck(want string, item string) error {
	if item != want {
		if strings.EqualFold(item, want) {
			return fmt.Errorf("%q keyword found, but it is required to be %q", item, want)
		}
		return fmt.Errorf("got: %q, want: %q", item, want)
	}
	return nil
}

func isComment(item halfpike.Item) bool {
	return strings.HasPrefix(item.Val, "//")
}

func commentOrEOL(line halfpike.Line, from int) error {
	if from >= len(line.Items) {
		return nil
	}
	if isComment(line.Items[from]) {
		return nil
	}
	if len(line.Items[from:]) > 1 {
		return fmt.Errorf("got item %q after %q, which was unexpected", halfpike.ItemJoin(line, from, len(line.Items)), halfpike.ItemJoin(line, 0, from))
	}
	return nil
}

func validPackage(pkgName string) error {
	runes := []rune(pkgName)
	if unicode.IsUpper(runes[0]) {
		return fmt.Errorf("package name cannot start with an uppercase letter")
	}
	if !unicode.IsLetter(runes[0]) {
		return fmt.Errorf("package name must start with a letter")
	}
	for _, r := range runes[1:] {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' {
			continue
		}
		return fmt.Errorf("package name contains character %q which is invalid for a package name", r)
	}
	return nil
}

func validateIdent(ident string) error {
	runes := []rune(ident)
	if !unicode.IsLetter(runes[0]) {
		return fmt.Errorf("identifier must start with a letter")
	}
	if unicode.IsLower(runes[0]) {
		return fmt.Errorf("identifier %q cannot start with a lowercase letter", ident)
	}
	for _, r := range runes[1:] {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			continue
		}
		return fmt.Errorf("identifier %q contains character %q which is invalid for an identifier", ident, r)
	}
	return nil
}

func validateFieldName(name string) error {
	runes := []rune(name)
	if !unicode.IsLetter(runes[0]) {
		return fmt.Errorf("field name %q must start with a letter", name)
	}
	for _, r := range runes[1:] {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' {
			continue
		}
		return fmt.Errorf("field name %q contains character %q which is invalid for a field name", name, r)
	}
	return nil
}
