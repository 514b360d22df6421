// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitAccessUnits(t *testing.T) {
	sps := mustB64(testSpsB64)
	pps := mustB64(testPpsB64)
	aud := []byte{0x09, 0xF0}
	idr0 := []byte{0x65, 0x88, 0x84}
	idr1 := []byte{0x65, 0x40, 0x21} // first_mb_in_slice != 0
	p0 := []byte{0x41, 0x9A, 0x02}
	p1 := []byte{0x41, 0x9A, 0x03}
	sei := []byte{0x06, 0x05, 0x01}

	stream := annexB(aud, sps, pps, idr0, idr1, p0, sei, p1, aud, p0)
	units, err := SplitAccessUnits(stream)
	require.NoError(t, err)
	require.Len(t, units, 4)

	assert.Equal(t, [][]byte{aud, sps, pps, idr0, idr1}, units[0].NALs)
	assert.True(t, units[0].KeyFrame)
	assert.Equal(t, [][]byte{p0}, units[1].NALs)
	assert.False(t, units[1].KeyFrame)
	assert.Equal(t, [][]byte{sei, p1}, units[2].NALs)
	assert.Equal(t, [][]byte{aud, p0}, units[3].NALs)
	assert.Equal(t, annexB(aud, p0), units[3].AnnexB())

	_, err = SplitAccessUnits([]byte{0x65, 0x88})
	assert.ErrorIs(t, err, ErrNotAnnexB)
}
