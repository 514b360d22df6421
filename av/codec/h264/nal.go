// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

// NALHeader h264 Nal单元头
//
//	+---------------+
//	|0|1|2|3|4|5|6|7|
//	+-+-+-+-+-+-+-+-+
//	|F|NRI|  Type   |
//	+---------------+
type NALHeader struct {
	ForbiddenZeroBit uint8
	RefIdc           uint8
	Type             NALType
}

// ParseNALHeader decodes the first byte of a NAL unit.
func ParseNALHeader(b byte) NALHeader {
	return NALHeader{
		ForbiddenZeroBit: (b >> 7) & 1,
		RefIdc:           (b >> 5) & 3,
		Type:             NALType(b & NalTypeBitmask),
	}
}

// Byte encodes the header back to its byte form.
func (h NALHeader) Byte() byte {
	return h.ForbiddenZeroBit<<7 | (h.RefIdc&3)<<5 | byte(h.Type)&NalTypeBitmask
}

// NALUnit is one NAL unit located inside an Annex-B buffer.
type NALUnit struct {
	Offset       int    // position of the start code in the scanned buffer
	StartCodeLen int    // 3 or 4
	Payload      []byte // header byte onwards, aliases the scanned buffer
}

// Header returns the decoded header byte.
func (u NALUnit) Header() NALHeader {
	return ParseNALHeader(u.Payload[0])
}

// Type returns nal_unit_type.
func (u NALUnit) Type() NALType {
	return NALType(u.Payload[0] & NalTypeBitmask)
}

// PayloadOffset returns the position of the header byte in the scanned buffer.
func (u NALUnit) PayloadOffset() int {
	return u.Offset + u.StartCodeLen
}
