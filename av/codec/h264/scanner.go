// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

import "encoding/binary"

// Scanner walks the NAL units of an Annex-B buffer.
//
//	for s := NewScanner(buf); s.Next(); {
//		nal := s.NAL()
//		...
//	}
//
// Both 00 00 01 and 00 00 00 01 start codes are accepted. Bytes before the
// first start code are skipped and reported by Lead. Trailing zero bytes of a
// unit belong to the byte stream and are not part of its payload.
type Scanner struct {
	buf     []byte
	lead    int
	next    int // next start code position, -1 at end
	nextLen int
	nal     NALUnit
	err     error
}

// NewScanner creates a Scanner over buf.
func NewScanner(buf []byte) *Scanner {
	s := &Scanner{buf: buf}
	pos, n := findStartCode(buf, 0)
	if pos < 0 {
		s.err = ErrNotAnnexB
		s.next = -1
		s.lead = len(buf)
		return s
	}
	s.lead = pos
	s.next, s.nextLen = pos, n
	return s
}

// Next advances to the next non-empty NAL unit.
func (s *Scanner) Next() bool {
	for s.err == nil && s.next >= 0 {
		begin := s.next + s.nextLen
		pos, n := findStartCode(s.buf, begin)
		end := pos
		if pos < 0 {
			end = len(s.buf)
		}

		unit := NALUnit{
			Offset:       s.next,
			StartCodeLen: s.nextLen,
			Payload:      trimTrailingZeros(s.buf[begin:end]),
		}
		s.next, s.nextLen = pos, n
		if len(unit.Payload) == 0 {
			continue
		}
		s.nal = unit
		return true
	}
	return false
}

// NAL returns the unit found by the last successful Next.
func (s *Scanner) NAL() NALUnit {
	return s.nal
}

// Err returns ErrNotAnnexB when the buffer holds no start code.
func (s *Scanner) Err() error {
	return s.err
}

// Lead returns the number of bytes before the first start code.
func (s *Scanner) Lead() int {
	return s.lead
}

// SplitAnnexB returns all NAL units of buf.
func SplitAnnexB(buf []byte) ([]NALUnit, error) {
	var nals []NALUnit
	s := NewScanner(buf)
	for s.Next() {
		nals = append(nals, s.NAL())
	}
	if s.Err() != nil {
		return nil, s.Err()
	}
	return nals, nil
}

// FindParameterSets scans buf once and returns the first SPS and the first
// PPS NAL unit (header byte included, start code excluded). It succeeds when
// at least one of them is found; otherwise the error matches both
// ErrNoSpsFound and ErrNoPpsFound.
func FindParameterSets(buf []byte) (sps, pps []byte, err error) {
	s := NewScanner(buf)
	for s.Next() && (sps == nil || pps == nil) {
		nal := s.NAL()
		switch nal.Type() {
		case NalSps:
			if sps == nil {
				sps = nal.Payload
			}
		case NalPps:
			if pps == nil {
				pps = nal.Payload
			}
		}
	}

	if sps == nil && pps == nil {
		return nil, nil, errNoParameterSets
	}
	return sps, pps, nil
}

// IsAVCC reports whether buf is structurally an AVCDecoderConfigurationRecord.
// A false result is not an error: the caller may treat buf as Annex-B.
func IsAVCC(buf []byte) bool {
	_, ok := walkAVCC(buf, nil)
	return ok
}

// walkAVCC validates the record layout and calls visit for every parameter
// set in order (SPS first). It returns the offset just past the PPS list.
func walkAVCC(buf []byte, visit func(nal []byte, isSps bool)) (int, bool) {
	if len(buf) < MinAVCCSize || buf[0] != 1 || buf[4]&0x03 == 0x02 {
		return 0, false
	}

	offset := 5
	for _, isSps := range [2]bool{true, false} {
		if offset >= len(buf) {
			return 0, false
		}
		count := int(buf[offset])
		if isSps {
			count &= 0x1F
		}
		offset++

		for i := 0; i < count; i++ {
			if offset+2 > len(buf) {
				return 0, false
			}
			size := int(binary.BigEndian.Uint16(buf[offset:]))
			offset += 2
			if offset+size > len(buf) {
				return 0, false
			}
			if visit != nil {
				visit(buf[offset:offset+size], isSps)
			}
			offset += size
		}
	}
	return offset, true
}

// findStartCode returns the position and length of the first start code at
// or after from, or -1.
func findStartCode(b []byte, from int) (int, int) {
	for i := from; i+3 <= len(b); i++ {
		if b[i+2] > 1 {
			i += 2
			continue
		}
		if b[i] == 0 && b[i+1] == 0 && b[i+2] == 1 {
			if i > from && b[i-1] == 0 {
				return i - 1, 4
			}
			return i, 3
		}
	}
	return -1, 0
}

func trimTrailingZeros(b []byte) []byte {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return b[:n]
}
