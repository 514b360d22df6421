// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package utils

// StartCodeLen returns 4 or 3 when nalu begins with 0x00000001 or 0x000001, otherwise 0.
func StartCodeLen(nalu []byte) int {
	if len(nalu) >= 4 && nalu[0] == 0 && nalu[1] == 0 && nalu[2] == 0 && nalu[3] == 1 {
		return 4
	}
	if len(nalu) >= 3 && nalu[0] == 0 && nalu[1] == 0 && nalu[2] == 1 {
		return 3
	}
	return 0
}

// RemoveNaluSeparator 移除 NALU 分隔符 0x00000001 或 0x000001
func RemoveNaluSeparator(nalu []byte) []byte {
	return nalu[StartCodeLen(nalu):]
}

// AddH264or5EmulationBytes returns a copy of rbsp with an emulation
// prevention byte inserted wherever two zero bytes are followed by a byte <= 3.
func AddH264or5EmulationBytes(rbsp []byte) []byte {
	to := make([]byte, 0, len(rbsp)+len(rbsp)/2)
	zeros := 0
	for _, b := range rbsp {
		if zeros >= 2 && b <= 3 {
			to = append(to, 3)
			zeros = 0
		}
		to = append(to, b)
		if b == 0 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return to
}
