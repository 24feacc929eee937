// Package lzf decompresses Redis's LZF-encoded strings. It wraps
// github.com/zhuyie/golzf for the real work; the teacher project
// (df2redis) lists golzf as a dependency but never imports it, hand-rolling
// the same algorithm in internal/replica/rdb_string.go instead. That
// hand-rolled version is kept here, unexported, purely as a cross-check in
// this package's own tests.
package lzf

import (
	"fmt"

	golzf "github.com/zhuyie/golzf"
)

// sanityCap bounds the declared uncompressed length of any single LZF
// string. Redis strings never approach it; a value this large is always a
// corrupt or adversarial length field.
const sanityCap = 1 << 32

// Decompress expands src, which must decompress to exactly dstLen bytes.
func Decompress(src []byte, dstLen int) ([]byte, error) {
	if dstLen < 0 {
		return nil, fmt.Errorf("lzf: negative uncompressed length %d", dstLen)
	}
	if int64(dstLen) >= sanityCap {
		return nil, fmt.Errorf("lzf: uncompressed length %d exceeds sanity cap", dstLen)
	}
	if dstLen == 0 {
		return nil, nil
	}

	dst := make([]byte, dstLen)
	n, err := golzf.Decompress(src, dst)
	if err != nil {
		return nil, fmt.Errorf("lzf: decompress: %w", err)
	}
	if n != dstLen {
		return nil, fmt.Errorf("lzf: decompressed %d bytes, expected %d", n, dstLen)
	}
	return dst, nil
}
