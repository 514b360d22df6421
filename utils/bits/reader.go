// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bits

import "errors"

// 读取错误
var (
	// ErrTruncated 数据不足以完成本次读取
	ErrTruncated = errors.New("bitstream truncated")
	// ErrGolombOverflow Exp-Golomb 前导零超过 31 个
	ErrGolombOverflow = errors.New("exp-golomb code exceeds 32 bits")
)

// Reader reads MSB-first bit fields from a byte slice.
//
// A Reader created by NewNALReader drops the emulation prevention byte of
// every 0x00 0x00 0x03 sequence before the byte is exposed. Failed reads
// leave the cursor where it was and return no partial value.
type Reader struct {
	buf     []byte
	pos     int // index of the byte holding the next bit
	bit     int // bits already consumed from buf[pos]
	epb     bool
	zeros   int // consecutive zero bytes consumed right before pos
	skipped int
}

// NewReader returns a Reader over raw bytes, without emulation prevention handling.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// NewNALReader returns a Reader over Annex-B NAL payload bytes.
func NewNALReader(buf []byte) *Reader {
	return &Reader{buf: buf, epb: true}
}

// enter prepares buf[pos] for reading; called only on a byte boundary.
func (r *Reader) enter() error {
	if r.pos >= len(r.buf) {
		return ErrTruncated
	}
	if r.epb && r.zeros >= 2 && r.buf[r.pos] == 0x03 {
		r.pos++
		r.zeros = 0
		r.skipped++
		if r.pos >= len(r.buf) {
			return ErrTruncated
		}
	}
	return nil
}

func (r *Reader) leave() {
	if r.buf[r.pos] == 0 {
		r.zeros++
	} else {
		r.zeros = 0
	}
	r.pos++
	r.bit = 0
}

func (r *Reader) read(n int) (uint32, error) {
	var v uint32
	for n > 0 {
		if r.bit == 0 {
			if err := r.enter(); err != nil {
				return 0, err
			}
		}
		avail := 8 - r.bit
		take := n
		if take > avail {
			take = avail
		}
		b := uint32(r.buf[r.pos]>>uint(avail-take)) & (1<<uint(take) - 1)
		v = v<<uint(take) | b
		r.bit += take
		n -= take
		if r.bit == 8 {
			r.leave()
		}
	}
	return v, nil
}

// ReadBits reads n bits (0 <= n <= 32) as an unsigned integer.
func (r *Reader) ReadBits(n int) (uint32, error) {
	if n < 0 || n > 32 {
		return 0, errors.New("bits: invalid field width")
	}
	saved := *r
	v, err := r.read(n)
	if err != nil {
		*r = saved
		return 0, err
	}
	return v, nil
}

// ReadBit read a bit.
func (r *Reader) ReadBit() (uint8, error) {
	v, err := r.ReadBits(1)
	return uint8(v), err
}

// ReadFlag read one bit bool.
func (r *Reader) ReadFlag() (bool, error) {
	v, err := r.ReadBits(1)
	return v == 1, err
}

// ReadUint8 read the uint8 of n bits.
func (r *Reader) ReadUint8(n int) (uint8, error) {
	if n > 8 {
		n = 8
	}
	v, err := r.ReadBits(n)
	return uint8(v), err
}

// ReadUint16 read the uint16 of n bits.
func (r *Reader) ReadUint16(n int) (uint16, error) {
	if n > 16 {
		n = 16
	}
	v, err := r.ReadBits(n)
	return uint16(v), err
}

// ReadUint32 read the uint32 of n bits.
func (r *Reader) ReadUint32(n int) (uint32, error) {
	return r.ReadBits(n)
}

// Skip skip n bits.
func (r *Reader) Skip(n int) error {
	saved := *r
	for n > 0 {
		take := n
		if take > 32 {
			take = 32
		}
		if _, err := r.read(take); err != nil {
			*r = saved
			return err
		}
		n -= take
	}
	return nil
}

// ReadUe reads an unsigned Exp-Golomb code, ue(v).
func (r *Reader) ReadUe() (uint32, error) {
	saved := *r
	k := 0
	for {
		b, err := r.read(1)
		if err != nil {
			*r = saved
			return 0, err
		}
		if b == 1 {
			break
		}
		k++
		if k > 31 {
			*r = saved
			return 0, ErrGolombOverflow
		}
	}

	suffix, err := r.read(k)
	if err != nil {
		*r = saved
		return 0, err
	}
	return uint32(uint64(1)<<uint(k) - 1 + uint64(suffix)), nil
}

// ReadSe reads a signed Exp-Golomb code, se(v).
func (r *Reader) ReadSe() (int32, error) {
	k, err := r.ReadUe()
	if err != nil {
		return 0, err
	}
	if k&0x01 != 0 {
		return int32((int64(k) + 1) / 2), nil
	}
	return -int32(k / 2), nil
}

// Offset returns the number of bits consumed, emulation prevention bytes included.
func (r *Reader) Offset() int {
	return r.pos<<3 + r.bit
}

// BitsLeft returns the number of raw bits not yet consumed.
func (r *Reader) BitsLeft() int {
	return (len(r.buf)-r.pos)<<3 - r.bit
}

// ByteAligned reports whether the cursor sits on a byte boundary.
func (r *Reader) ByteAligned() bool {
	return r.bit == 0
}

// EmulationBytes returns how many emulation prevention bytes were dropped.
func (r *Reader) EmulationBytes() int {
	return r.skipped
}
