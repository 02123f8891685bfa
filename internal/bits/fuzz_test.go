package bits

import (
	"testing"
)

// FuzzSetMaskedGetValue fuzzes the SetMasked/GetValue round-trip.
func FuzzSetMaskedGetValue(f *testing.F) {
	// (value, store, start, end)
	f.Add(uint64(0), uint64(0), uint64(0), uint64(8))
	f.Add(uint64(255), uint64(0), uint64(0), uint64(8))
	f.Add(uint64(15), uint64(0xFFFF), uint64(4), uint64(8))
	f.Add(uint64(1), uint64(0), uint64(63), uint64(64))
	f.Add(uint64(0xF), uint64(1), uint64(28), uint64(32))

	f.Fuzz(func(t *testing.T, val, store, start, end uint64) {
		if start >= end || end > 64 {
			return
		}
		bitMask := Mask[uint64](start, end)
		val &= Ones[uint64](uint(end - start))

		got := SetMasked(val, store, bitMask, uint(start))
		if v := GetValue[uint64, uint64](got, bitMask, uint(start)); v != val {
			t.Errorf("FuzzSetMaskedGetValue: round-trip failed: got %d, want %d (start=%d, end=%d)", v, val, start, end)
		}
		if got&^bitMask != store&^bitMask {
			t.Errorf("FuzzSetMaskedGetValue: bits outside the mask changed (start=%d, end=%d)", start, end)
		}
	})
}
