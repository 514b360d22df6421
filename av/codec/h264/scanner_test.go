// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNALHeader(t *testing.T) {
	h := ParseNALHeader(0x67)
	assert.Equal(t, uint8(0), h.ForbiddenZeroBit)
	assert.Equal(t, uint8(3), h.RefIdc)
	assert.Equal(t, NalSps, h.Type)
	assert.Equal(t, byte(0x67), h.Byte())

	h = ParseNALHeader(0x06)
	assert.Equal(t, NalSei, h.Type)
	assert.Equal(t, uint8(0), h.RefIdc)
	assert.True(t, h.Type.ZeroRefIdc())

	h = ParseNALHeader(0xE5)
	assert.Equal(t, uint8(1), h.ForbiddenZeroBit)
	assert.Equal(t, NalIdrSlice, h.Type)
	assert.True(t, h.Type.IsVCL())
}

func TestScanner(t *testing.T) {
	buf := []byte{
		0, 0, 0, 1, 0x67, 0x42, 0x00, 0x1E,
		0, 0, 1, 0x68, 0xCE,
		0, 0, 0, 0, 1, 0x65, 0x88, 0x00, 0x00, // trailing zeros before EOF
	}
	nals, err := SplitAnnexB(buf)
	require.NoError(t, err)
	require.Len(t, nals, 3)

	assert.Equal(t, 0, nals[0].Offset)
	assert.Equal(t, 4, nals[0].StartCodeLen)
	assert.Equal(t, []byte{0x67, 0x42, 0x00, 0x1E}, nals[0].Payload)
	assert.Equal(t, NalSps, nals[0].Type())

	assert.Equal(t, 8, nals[1].Offset)
	assert.Equal(t, 3, nals[1].StartCodeLen)
	assert.Equal(t, []byte{0x68, 0xCE}, nals[1].Payload)
	assert.Equal(t, 11, nals[1].PayloadOffset())

	// 00 00 00 00 01: the extra zero is trailing data of the pps
	assert.Equal(t, 14, nals[2].Offset)
	assert.Equal(t, 4, nals[2].StartCodeLen)
	assert.Equal(t, []byte{0x65, 0x88}, nals[2].Payload)
	assert.Equal(t, NalIdrSlice, nals[2].Header().Type)
}

func TestScanner_Lead(t *testing.T) {
	buf := []byte{0xAA, 0xBB, 0, 0, 1, 0x09, 0xF0}
	s := NewScanner(buf)
	assert.Equal(t, 2, s.Lead())
	require.True(t, s.Next())
	assert.Equal(t, NalAud, s.NAL().Type())
	assert.False(t, s.Next())
	assert.NoError(t, s.Err())
}

func TestScanner_EmptyUnits(t *testing.T) {
	buf := []byte{0, 0, 1, 0, 0, 1, 0x09, 0xF0, 0, 0, 0, 1}
	nals, err := SplitAnnexB(buf)
	require.NoError(t, err)
	require.Len(t, nals, 1)
	assert.Equal(t, NalAud, nals[0].Type())
}

func TestScanner_NotAnnexB(t *testing.T) {
	for _, buf := range [][]byte{nil, {0x01, 0x42}, {0, 0, 2, 0x67}} {
		_, err := SplitAnnexB(buf)
		assert.ErrorIs(t, err, ErrNotAnnexB)
	}
}

func TestFindParameterSets(t *testing.T) {
	sps, pps := baselineSPS(), buildPPS(0, 0, false, false)
	idr := []byte{0x65, 0x88, 0x84}

	t.Run("both", func(t *testing.T) {
		gotSps, gotPps, err := FindParameterSets(annexB(idr, sps, pps, buildPPS(1, 0, true, false)))
		require.NoError(t, err)
		assert.Equal(t, sps, gotSps)
		assert.Equal(t, pps, gotPps)
	})

	t.Run("sps_only", func(t *testing.T) {
		gotSps, gotPps, err := FindParameterSets(annexB(sps, idr))
		require.NoError(t, err)
		assert.Equal(t, sps, gotSps)
		assert.Nil(t, gotPps)
	})

	t.Run("none", func(t *testing.T) {
		_, _, err := FindParameterSets(annexB(idr, []byte{0x06, 0x05}))
		assert.ErrorIs(t, err, ErrNoSpsFound)
		assert.ErrorIs(t, err, ErrNoPpsFound)
		assert.NotErrorIs(t, err, ErrBitstreamTruncated)
	})
}

func TestIsAVCC(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want bool
	}{
		{"minimal", []byte{1, 66, 0, 30, 0xFF, 0xE0, 0}, true},
		{"six_bytes", []byte{1, 66, 0, 30, 0xFF, 0xE0}, false},
		{"reserved_length_size", []byte{1, 66, 0, 30, 0xFE, 0xE0, 0}, false},
		{"version", []byte{0, 66, 0, 30, 0xFF, 0xE0, 0}, false},
		{"sps_overrun", []byte{1, 66, 0, 30, 0xFF, 0xE1, 0, 5, 0x67, 0x42}, false},
		{"missing_pps_count", []byte{1, 66, 0, 30, 0xFF, 0xE1, 0, 1, 0x67}, false},
		{"one_sps", []byte{1, 66, 0, 30, 0xFF, 0xE1, 0, 2, 0x67, 0x42, 0}, true},
		{"annexb", annexB(baselineSPS()), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAVCC(tt.buf))
		})
	}
}

func BenchmarkSplitAnnexB(b *testing.B) {
	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i%250) + 4
	}
	buf := annexB(baselineSPS(), buildPPS(0, 0, false, false), append([]byte{0x65}, payload...))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = SplitAnnexB(buf)
	}
}
