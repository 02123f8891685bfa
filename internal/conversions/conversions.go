// Package conversions holds unsafe conversions that avoid copying file contents.
package conversions

import "unsafe"

// ByteSlice2String converts bs to a string without a copy. bs must not be modified after this.
func ByteSlice2String(bs []byte) string {
	if len(bs) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(bs), len(bs))
}
