// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAVCC(t *testing.T) {
	sps := mustB64(testSpsB64)
	pps := mustB64(testPpsB64)

	record, err := BuildAVCC(4, append([]byte{0, 0, 0, 1}, sps...), pps)
	require.NoError(t, err)
	require.True(t, IsAVCC(record))

	assert.Equal(t, byte(1), record[0])
	assert.Equal(t, sps[1], record[1])
	assert.Equal(t, sps[2], record[2])
	assert.Equal(t, sps[3], record[3])
	assert.Equal(t, byte(0xFF), record[4])
	assert.Equal(t, byte(0xE1), record[5])
	assert.Equal(t, 6+2+len(sps)+1+2+len(pps), len(record))

	record, err = BuildAVCC(2, sps, pps)
	require.NoError(t, err)
	assert.Equal(t, byte(0xFD), record[4])
}

func TestBuildAVCC_Errors(t *testing.T) {
	sps := baselineSPS()
	pps := buildPPS(0, 0, false, false)

	_, err := BuildAVCC(3, sps, pps)
	assert.ErrorIs(t, err, ErrInvalidLengthSize)

	_, err = BuildAVCC(4, nil, pps)
	assert.ErrorIs(t, err, ErrNoSpsFound)

	_, err = BuildAVCC(4, sps, []byte{0, 0, 0, 1})
	assert.ErrorIs(t, err, ErrNoPpsFound)

	_, err = BuildAVCC(4, sps[:3], pps)
	assert.ErrorIs(t, err, ErrSpsMalformed)

	big := make([]byte, 0x10000)
	big[0] = 0x68
	_, err = BuildAVCC(4, sps, big)
	assert.ErrorIs(t, err, ErrLengthOverflow)
}

func TestDecomposeAVCC(t *testing.T) {
	sps := baselineSPS()
	pps := buildPPS(0, 0, true, false)

	record, err := BuildAVCC(4, sps, pps)
	require.NoError(t, err)

	annexb, n, err := DecomposeAVCC(record)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, annexB(sps, pps), annexb)

	// 再次构建得到相同的记录
	gotSps, gotPps, err := FindParameterSets(annexb)
	require.NoError(t, err)
	again, err := BuildAVCC(n, gotSps, gotPps)
	require.NoError(t, err)
	assert.Equal(t, record, again)
}

func TestDecomposeAVCC_Minimal(t *testing.T) {
	annexb, n, err := DecomposeAVCC([]byte{1, 66, 0, 30, 0xFF, 0xE0, 0})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Empty(t, annexb)

	_, _, err = DecomposeAVCC([]byte{1, 66, 0, 30, 0xFF, 0xE0})
	assert.ErrorIs(t, err, ErrRecordMalformed)

	_, _, err = DecomposeAVCC([]byte{1, 66, 0, 30, 0xFE, 0xE0, 0})
	assert.ErrorIs(t, err, ErrRecordMalformed)
}

func TestConfigurationRecord(t *testing.T) {
	sps := baselineSPS()
	pps0 := buildPPS(0, 0, false, false)
	pps1 := buildPPS(1, 0, true, false)

	rec := ConfigurationRecord{
		ConfigurationVersion: 1,
		AVCProfileIndication: sps[1],
		ProfileCompatibility: sps[2],
		AVCLevelIndication:   sps[3],
		LengthSizeMinusOne:   1,
		SPS:                  [][]byte{sps},
		PPS:                  [][]byte{pps0, pps1},
		Trailing:             []byte{0xFD, 0xF8, 0xF8, 0x00},
	}
	data, err := rec.Marshal()
	require.NoError(t, err)
	assert.Equal(t, rec.MarshalSize(), len(data))

	var got ConfigurationRecord
	require.NoError(t, got.Unmarshal(data))
	assert.Equal(t, rec, got)
	assert.Equal(t, 2, got.NalLengthSize())
	assert.Equal(t, annexB(sps, pps0, pps1), got.AnnexB())
	assert.Contains(t, got.String(), "Baseline")

	rec.LengthSizeMinusOne = 2
	_, err = rec.Marshal()
	assert.ErrorIs(t, err, ErrInvalidLengthSize)
}
