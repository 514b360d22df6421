// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

// AccessUnit 一个图像的全部 NAL 单元
type AccessUnit struct {
	NALs     [][]byte // 不含起始码，引用原始缓冲
	KeyFrame bool     // 包含 IDR 片
}

// AnnexB 以 4 字节起始码连接 NAL 单元
func (au *AccessUnit) AnnexB() []byte {
	size := 0
	for _, nal := range au.NALs {
		size += 4 + len(nal)
	}
	out := make([]byte, 0, size)
	for _, nal := range au.NALs {
		out = append(out, 0, 0, 0, 1)
		out = append(out, nal...)
	}
	return out
}

// SplitAccessUnits groups the NAL units of an Annex-B stream into access
// units. A new unit starts at an AUD, SPS, PPS or SEI following a slice, or
// at a slice with first_mb_in_slice 0 following a slice.
func SplitAccessUnits(buf []byte) ([]AccessUnit, error) {
	var (
		units  []AccessUnit
		cur    AccessUnit
		hasVCL bool
	)
	flush := func() {
		if len(cur.NALs) > 0 {
			units = append(units, cur)
		}
		cur = AccessUnit{}
		hasVCL = false
	}

	s := NewScanner(buf)
	for s.Next() {
		nal := s.NAL()
		t := nal.Type()
		switch {
		case t.IsVCL():
			// first_mb_in_slice 为 ue(v)，首位为 1 时值为 0
			first := len(nal.Payload) > 1 && nal.Payload[1]&0x80 != 0
			if hasVCL && first {
				flush()
			}
			hasVCL = true
			if t == NalIdrSlice {
				cur.KeyFrame = true
			}
		case t == NalAud, t == NalSps, t == NalPps, t == NalSei:
			if hasVCL {
				flush()
			}
		}
		cur.NALs = append(cur.NALs, nal.Payload)
	}
	if s.Err() != nil {
		return nil, s.Err()
	}
	flush()
	return units, nil
}
