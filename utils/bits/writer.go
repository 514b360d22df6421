// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bits

// Writer appends MSB-first bit fields to a growing byte slice.
// It never inserts emulation prevention bytes.
type Writer struct {
	buf []byte
	bit int // bits used in the last byte, 0 means aligned
}

// WriteBits write the low n bits of v (n <= 32).
func (w *Writer) WriteBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		if w.bit == 0 {
			w.buf = append(w.buf, 0)
		}
		if (v>>uint(i))&1 == 1 {
			w.buf[len(w.buf)-1] |= 0x80 >> uint(w.bit)
		}
		w.bit = (w.bit + 1) & 7
	}
}

// WriteFlag write one bit bool.
func (w *Writer) WriteFlag(b bool) {
	if b {
		w.WriteBits(1, 1)
	} else {
		w.WriteBits(0, 1)
	}
}

// WriteUe write the ue(v) code of v.
func (w *Writer) WriteUe(v uint32) {
	x := uint64(v) + 1
	k := 0
	for t := x; t > 1; t >>= 1 {
		k++
	}
	w.WriteBits(0, k)
	w.WriteBits(1, 1)
	w.WriteBits(uint32(x-uint64(1)<<uint(k)), k)
}

// WriteSe write the se(v) code of v.
func (w *Writer) WriteSe(v int32) {
	if v > 0 {
		w.WriteUe(uint32(2*int64(v) - 1))
	} else {
		w.WriteUe(uint32(-2 * int64(v)))
	}
}

// WriteTrailingBits write rbsp_trailing_bits: a stop bit and zero padding.
func (w *Writer) WriteTrailingBits() {
	w.WriteBits(1, 1)
	for w.bit != 0 {
		w.WriteBits(0, 1)
	}
}

// Bytes returns the written bytes; a partial last byte is zero padded.
func (w *Writer) Bytes() []byte {
	return w.buf
}
