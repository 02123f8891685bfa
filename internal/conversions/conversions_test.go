package conversions

import "testing"

func TestByteSlice2String(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{nil, ""},
		{[]byte{}, ""},
		{[]byte("package tables\n"), "package tables\n"},
	}

	for _, test := range tests {
		if got := ByteSlice2String(test.in); got != test.want {
			t.Errorf("[TestByteSlice2String]: got %q, want %q", got, test.want)
		}
	}
}
