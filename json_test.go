package bitfield

import (
	"bytes"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/kylelemons/godebug/pretty"

	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/specifier"
)

func jsonType(t *testing.T) *Type {
	t.Helper()
	typ, err := NewSchema("Entry").
		Add("vector", specifier.B(8)).
		Add("mode", triggerMode(t).Specifier()).
		Add("masked", specifier.Bool).
		Add("delta", specifier.Int(6)).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return typ
}

func TestMarshalJSON(t *testing.T) {
	typ := jsonType(t)
	s := typ.New()
	typ.Field("vector").SetUint(s, 32)
	typ.Field("mode").SetUint(s, 1)
	typ.Field("masked").SetBool(s, true)
	typ.Field("delta").SetInt(s, -5)

	tests := []struct {
		name string
		opts []JSONOption
		want string
	}{
		{
			name: "enum names",
			want: `{"vector":32,"mode":"Level","masked":true,"delta":-5}`,
		},
		{
			name: "enum numbers",
			opts: []JSONOption{WithEnumNumbers(true)},
			want: `{"vector":32,"mode":1,"masked":true,"delta":-5}`,
		},
	}

	for _, test := range tests {
		var buf bytes.Buffer
		if err := s.EncodeJSON(&buf, test.opts...); err != nil {
			t.Errorf("[TestMarshalJSON](%s): got err == %s", test.name, err)
			continue
		}
		if diff := pretty.Compare(test.want+"\n", buf.String()); diff != "" {
			t.Errorf("[TestMarshalJSON](%s): -want/+got:\n%s", test.name, diff)
		}
	}

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Compare(tests[0].want, string(b)); diff != "" {
		t.Errorf("[TestMarshalJSON](json.Marshal): -want/+got:\n%s", diff)
	}
}

func TestUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "Success: all fields with an enum name",
			in:   `{"vector":200,"mode":"Level","masked":true,"delta":-32}`,
			want: map[string]string{"vector": "200", "mode": "Level", "masked": "true", "delta": "-32"},
		},
		{
			name: "Success: enum number and missing fields",
			in:   `{"mode":1}`,
			want: map[string]string{"vector": "0", "mode": "Level", "masked": "false", "delta": "0"},
		},
		{name: "Error: not an object", in: `[1]`, wantErr: true},
		{name: "Error: unknown field", in: `{"nope":1}`, wantErr: true},
		{name: "Error: unknown variant name", in: `{"mode":"Pulse"}`, wantErr: true},
		{name: "Error: unknown variant number", in: `{"mode":2}`, wantErr: true},
		{name: "Error: uint too wide", in: `{"vector":256}`, wantErr: true},
		{name: "Error: negative uint", in: `{"vector":-1}`, wantErr: true},
		{name: "Error: int too wide", in: `{"delta":32}`, wantErr: true},
		{name: "Error: bool as number", in: `{"masked":1}`, wantErr: true},
		{name: "Error: truncated", in: `{"vector":1`, wantErr: true},
	}

	for _, test := range tests {
		typ := jsonType(t)
		s := typ.New()
		err := s.UnmarshalJSON([]byte(test.in))
		switch {
		case err == nil && test.wantErr:
			t.Errorf("[TestUnmarshalJSON](%s): got err == nil, want err != nil", test.name)
			continue
		case err != nil && !test.wantErr:
			t.Errorf("[TestUnmarshalJSON](%s): got err == %s, want err == nil", test.name, err)
			continue
		case err != nil:
			continue
		}

		got := map[string]string{}
		for i := 0; i < typ.NumFields(); i++ {
			f := typ.FieldAt(i)
			got[f.Name()] = f.Get(s).String()
		}
		if diff := pretty.Compare(test.want, got); diff != "" {
			t.Errorf("[TestUnmarshalJSON](%s): -want/+got:\n%s", test.name, diff)
		}
	}
}

func TestUnmarshalJSONErrors(t *testing.T) {
	typ := jsonType(t)
	s := typ.New()

	if err := s.UnmarshalJSON([]byte(`{"nope":1}`)); !errors.Is(err, ErrUnknownField) {
		t.Errorf("[TestUnmarshalJSONErrors]: unknown field err == %v, want ErrUnknownField", err)
	}
	if err := s.UnmarshalJSON([]byte(`{"mode":"Pulse"}`)); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("[TestUnmarshalJSONErrors]: unknown variant err == %v, want ErrUnknownVariant", err)
	}
}

func TestUnmarshalJSONLeavesStructOnError(t *testing.T) {
	typ := jsonType(t)

	tests := []struct {
		name string
		in   string
	}{
		{name: "later field too wide", in: `{"vector":5,"delta":99}`},
		{name: "later unknown field", in: `{"vector":5,"masked":true,"nope":1}`},
		{name: "later unknown variant", in: `{"vector":5,"mode":"Pulse"}`},
		{name: "truncated after a field", in: `{"vector":5,"masked":true`},
	}

	for _, test := range tests {
		s := typ.New()
		typ.Field("vector").SetUint(s, 9)
		want := bytes.Clone(s.Bytes())

		if err := s.UnmarshalJSON([]byte(test.in)); err == nil {
			t.Errorf("[TestUnmarshalJSONLeavesStructOnError](%s): got err == nil, want err != nil", test.name)
			continue
		}
		if diff := pretty.Compare(want, s.Bytes()); diff != "" {
			t.Errorf("[TestUnmarshalJSONLeavesStructOnError](%s): -want/+got:\n%s", test.name, diff)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	typ := jsonType(t)
	s := typ.New()
	typ.Field("vector").SetUint(s, 77)
	typ.Field("masked").SetBool(s, true)
	typ.Field("delta").SetInt(s, 31)

	b, err := s.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	got := typ.New()
	if err := json.Unmarshal(b, got); err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Compare(s.Bytes(), got.Bytes()); diff != "" {
		t.Errorf("[TestJSONRoundTrip]: -want/+got:\n%s", diff)
	}
}
