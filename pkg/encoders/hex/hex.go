// Package hex is a thin wrapper over the SIMD accelerated xhex codec, in the
// append style used by the rest of the encoders.
package hex

import (
	"github.com/templexxx/xhex"

	"github.com/crisdut/gossip/pkg/utils/errorf"
)

// Enc returns the lowercase hex encoding of b.
func Enc(b []byte) (s string) {
	return string(EncAppend(nil, b))
}

// EncAppend appends the hex encoding of src to dst and returns it.
func EncAppend(dst, src []byte) (b []byte) {
	l := len(dst)
	dst = append(dst, make([]byte, len(src)*2)...)
	xhex.Encode(dst[l:], src)
	return dst
}

// Dec decodes a hex string into a fresh byte slice.
func Dec(s string) (b []byte, err error) {
	if len(s)%2 != 0 {
		err = errorf.D("odd length hex string: %d", len(s))
		return
	}
	b = make([]byte, len(s)/2)
	if err = xhex.Decode(b, []byte(s)); err != nil {
		b = nil
		return
	}
	return
}
