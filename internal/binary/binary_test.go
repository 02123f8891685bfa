package binary

import (
	"encoding/binary"
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

func TestGetPut(t *testing.T) {
	b := make([]byte, 8)

	Put(b[:2], uint16(0xBEEF))
	if got := Get[uint16](b[:2]); got != 0xBEEF {
		t.Errorf("[TestGetPut](uint16): got %#x, want 0xbeef", got)
	}
	if diff := pretty.Compare([]byte{0xEF, 0xBE}, b[:2]); diff != "" {
		t.Errorf("[TestGetPut](uint16 layout): -want/+got:\n%s", diff)
	}

	Put(b[:4], uint32(0xDEADBEEF))
	if got := Get[uint32](b[:4]); got != 0xDEADBEEF {
		t.Errorf("[TestGetPut](uint32): got %#x, want 0xdeadbeef", got)
	}

	Put(b, uint64(0x0102030405060708))
	if got := Get[uint64](b); got != 0x0102030405060708 {
		t.Errorf("[TestGetPut](uint64): got %#x", got)
	}
	if got := binary.LittleEndian.Uint64(b); got != 0x0102030405060708 {
		t.Errorf("[TestGetPut](uint64 vs stdlib): got %#x", got)
	}
}

func TestWindow(t *testing.T) {
	for n := 1; n <= 8; n++ {
		b := make([]byte, n)
		want := uint64(0x1122334455667788) & (^uint64(0) >> (64 - 8*uint(n)))
		PutWindow(b, 0x1122334455667788)
		if got := GetWindow(b); got != want {
			t.Errorf("[TestWindow](%d bytes): got %#x, want %#x", n, got, want)
		}
		if b[0] != 0x88 {
			t.Errorf("[TestWindow](%d bytes): lowest byte was %#x, want 0x88", n, b[0])
		}
	}
}

func TestWindowPanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("[TestWindowPanic]: expected panic for a 9 byte window")
		}
	}()
	GetWindow(make([]byte, 9))
}
