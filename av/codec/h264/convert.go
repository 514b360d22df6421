// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

import (
	"encoding/binary"
	"fmt"
)

// ValidLengthSize reports whether n is a NAL length field width allowed by avcC.
func ValidLengthSize(n int) bool {
	return n == 1 || n == 2 || n == 4
}

func maxNALSize(lengthSize int) uint64 {
	return 1<<(8*uint(lengthSize)) - 1
}

func readLength(b []byte, lengthSize int) int {
	switch lengthSize {
	case 1:
		return int(b[0])
	case 2:
		return int(binary.BigEndian.Uint16(b))
	default:
		return int(binary.BigEndian.Uint32(b))
	}
}

func putLength(b []byte, lengthSize int, v int) {
	switch lengthSize {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(b, uint16(v))
	default:
		binary.BigEndian.PutUint32(b, uint32(v))
	}
}

// AVCToAnnexBInPlace rewrites every 4-byte length prefix of buf with the
// start code 00 00 00 01. Other widths return ErrInPlaceUnsafe before buf is
// touched. On a truncated unit the units already visited stay rewritten.
func AVCToAnnexBInPlace(buf []byte, nalLengthSize int) error {
	if nalLengthSize != 4 {
		return ErrInPlaceUnsafe
	}

	for offset := 0; offset < len(buf); {
		if len(buf)-offset < 4 {
			return fmt.Errorf("nal length at offset %d: %w", offset, ErrBitstreamTruncated)
		}
		size := readLength(buf[offset:], 4)
		if size < 0 || size > len(buf)-offset-4 {
			return fmt.Errorf("nal of %d bytes at offset %d: %w", size, offset, ErrBitstreamTruncated)
		}
		copy(buf[offset:], startCode)
		offset += 4 + size
	}
	return nil
}

// AVCToAnnexB converts length-prefixed samples to Annex-B. For 4-byte
// lengths the rewrite happens in buf and buf is returned; narrower lengths
// produce a new buffer. buf must not be used after the call.
func AVCToAnnexB(buf []byte, nalLengthSize int) ([]byte, error) {
	if !ValidLengthSize(nalLengthSize) {
		return nil, ErrInvalidLengthSize
	}
	if nalLengthSize == 4 {
		if err := AVCToAnnexBInPlace(buf, 4); err != nil {
			return nil, err
		}
		return buf, nil
	}

	// 先计算输出大小
	total := 0
	for offset := 0; offset < len(buf); {
		if len(buf)-offset < nalLengthSize {
			return nil, fmt.Errorf("nal length at offset %d: %w", offset, ErrBitstreamTruncated)
		}
		size := readLength(buf[offset:], nalLengthSize)
		if size > len(buf)-offset-nalLengthSize {
			return nil, fmt.Errorf("nal of %d bytes at offset %d: %w", size, offset, ErrBitstreamTruncated)
		}
		total += len(startCode) + size
		offset += nalLengthSize + size
	}

	out := make([]byte, 0, total)
	for offset := 0; offset < len(buf); {
		size := readLength(buf[offset:], nalLengthSize)
		offset += nalLengthSize
		out = append(out, startCode...)
		out = append(out, buf[offset:offset+size]...)
		offset += size
	}
	return out, nil
}

// AnnexBToAVC replaces every start code of buf with a big-endian length
// field of nalLengthSize bytes. When each length field fits in the room left
// by the start code it replaces, buf is rewritten and returned; otherwise an
// exactly sized buffer is allocated. Either way buf must not be used after
// the call. Bytes before the first start code must be zero.
func AnnexBToAVC(buf []byte, nalLengthSize int) ([]byte, error) {
	if !ValidLengthSize(nalLengthSize) {
		return nil, ErrInvalidLengthSize
	}

	s := NewScanner(buf)
	for _, b := range buf[:s.Lead()] {
		if b != 0 {
			return nil, ErrNotAnnexB
		}
	}

	var nals []NALUnit
	for s.Next() {
		nals = append(nals, s.NAL())
	}
	if s.Err() != nil {
		return nil, s.Err()
	}
	if len(nals) == 0 {
		return nil, ErrNotAnnexB
	}

	limit := maxNALSize(nalLengthSize)
	total := 0
	inPlace := true
	for _, nal := range nals {
		if uint64(len(nal.Payload)) > limit {
			return nil, fmt.Errorf("nal of %d bytes at offset %d: %w", len(nal.Payload), nal.Offset, ErrLengthOverflow)
		}
		// 当前单元的输出载荷不能越过它在输入中的位置
		if total+nalLengthSize > nal.PayloadOffset() {
			inPlace = false
		}
		total += nalLengthSize + len(nal.Payload)
	}

	var out []byte
	if inPlace {
		out = buf[:total:total]
	} else {
		out = make([]byte, total)
	}

	w := 0
	for _, nal := range nals {
		putLength(out[w:], nalLengthSize, len(nal.Payload))
		w += nalLengthSize
		w += copy(out[w:], nal.Payload)
	}
	return out, nil
}
