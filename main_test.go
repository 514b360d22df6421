// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cnotch/avcconf/av/codec"
	"github.com/cnotch/avcconf/av/codec/h264"
	"github.com/cnotch/avcconf/av/format/flv"
	"github.com/cnotch/avcconf/av/format/sdp"
	"github.com/cnotch/avcconf/config"
	"github.com/cnotch/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSps, _ = base64.StdEncoding.DecodeString("Z2QAH6zZQFAFuhAAAAMAEAAAAwPI8YMZYA==")
	testPps, _ = base64.StdEncoding.DecodeString("aOvjyyLA")
)

func annexB(nals ...[]byte) []byte {
	var out []byte
	for _, nal := range nals {
		out = append(out, 0, 0, 0, 1)
		out = append(out, nal...)
	}
	return out
}

func testStream() []byte {
	return annexB(testSps, testPps,
		[]byte{0x65, 0x88, 0x84, 0x21},
		[]byte{0x41, 0x9A, 0x02},
		[]byte{0x41, 0x9A, 0x03})
}

func TestInspect(t *testing.T) {
	t.Run("annexb", func(t *testing.T) {
		rep, annexb, err := inspect(testStream(), codec.FramingUnknown, 0)
		require.NoError(t, err)
		assert.Equal(t, codec.FramingAnnexB, rep.Framing)
		assert.Equal(t, h264.ProfileHigh, rep.Config.Profile)
		assert.Equal(t, uint8(31), rep.Config.Level)
		assert.Equal(t, 1280, rep.SPS.Width)
		assert.Equal(t, 720, rep.SPS.Height)
		require.NotNil(t, rep.PPS)
		assert.True(t, rep.PPS.EntropyCodingMode)
		assert.Equal(t, testStream(), annexb)
	})

	t.Run("avcc", func(t *testing.T) {
		record, err := h264.BuildAVCC(2, testSps, testPps)
		require.NoError(t, err)
		rep, annexb, err := inspect(record, codec.FramingUnknown, 0)
		require.NoError(t, err)
		assert.Equal(t, codec.FramingAVCC, rep.Framing)
		assert.Equal(t, 2, rep.Config.NalLengthSize)
		assert.Equal(t, annexB(testSps, testPps), annexb)
		assert.NotNil(t, rep.record)
	})

	t.Run("avc_sample", func(t *testing.T) {
		sample, err := h264.AnnexBToAVC(testStream(), 4)
		require.NoError(t, err)
		rep, annexb, err := inspect(sample, codec.FramingAVCC, 4)
		require.NoError(t, err)
		assert.Equal(t, codec.FramingAnnexB, rep.Framing)
		assert.Equal(t, testStream(), annexb)
	})

	t.Run("errors", func(t *testing.T) {
		_, _, err := inspect(annexB(testPps), codec.FramingAnnexB, 0)
		assert.ErrorIs(t, err, h264.ErrNoSpsFound)
		_, _, err = inspect([]byte{0x01, 0x64}, codec.FramingAVCC, 0)
		assert.ErrorIs(t, err, h264.ErrRecordMalformed)
	})
}

const testSDP = `v=0
o=- 0 0 IN IP4 127.0.0.1
s=No Name
c=IN IP4 127.0.0.1
t=0 0
m=video 0 RTP/AVP 96
b=AS:2500
a=rtpmap:96 H264/90000
a=fmtp:96 packetization-mode=1; sprop-parameter-sets=Z2QAH6zZQFAFuhAAAAMAEAAAAwPI8YMZYA==,aO+8sA==; profile-level-id=64001F
a=control:streamid=0
`

func TestInspect_SDP(t *testing.T) {
	rep, annexb, err := inspect([]byte(testSDP), codec.FramingUnknown, 0)
	require.NoError(t, err)
	require.NotNil(t, rep.SDP)
	assert.Equal(t, 90000, rep.SDP.ClockRate)
	assert.Equal(t, 2500.0, rep.SDP.DataRate)
	assert.Equal(t, codec.FramingAnnexB, rep.Framing)
	assert.Equal(t, h264.ProfileHigh, rep.Config.Profile)
	assert.Equal(t, 1280, rep.SPS.Width)
	require.NotNil(t, rep.PPS)

	sps, pps, err := h264.FindParameterSets(annexb)
	require.NoError(t, err)
	assert.Equal(t, testSps, sps)
	assert.NotEmpty(t, pps)

	var buf bytes.Buffer
	require.NoError(t, rep.print(&buf))
	assert.Contains(t, buf.String(), "sdp:             H264/90000, 2500 kbps")

	// 显式指定格式时不按 sdp 处理
	_, _, err = inspect([]byte(testSDP), codec.FramingAnnexB, 0)
	assert.ErrorIs(t, err, h264.ErrNoSpsFound)

	audioOnly := strings.Replace(testSDP, "m=video 0 RTP/AVP 96", "m=audio 0 RTP/AVP 8", 1)
	audioOnly = strings.Replace(audioOnly, "a=rtpmap:96 H264/90000", "a=rtpmap:8 PCMA/8000", 1)
	_, _, err = inspect([]byte(audioOnly), codec.FramingUnknown, 0)
	assert.ErrorIs(t, err, sdp.ErrNoVideo)
}

func TestReportPrint(t *testing.T) {
	rep, _, err := inspect(testStream(), codec.FramingUnknown, 0)
	require.NoError(t, err)
	rep.Input = "test.h264"

	var buf bytes.Buffer
	require.NoError(t, rep.print(&buf))
	out := buf.String()
	assert.Contains(t, out, "input:           test.h264 (annexb)")
	assert.Contains(t, out, "level:           31")
	assert.Contains(t, out, "id 0, 1280x720, 30.000 fps")
	assert.Contains(t, out, "CABAC")
}

func TestConvert(t *testing.T) {
	rep, annexb, err := inspect(testStream(), codec.FramingUnknown, 0)
	require.NoError(t, err)
	logger := xlog.L()

	var buf bytes.Buffer
	require.NoError(t, convert(&buf, config.OutputAnnexB, 4, rep, annexb, logger))
	assert.Equal(t, testStream(), buf.Bytes())

	buf.Reset()
	require.NoError(t, convert(&buf, config.OutputAVC, 2, rep, annexb, logger))
	back, err := h264.AVCToAnnexB(buf.Bytes(), 2)
	require.NoError(t, err)
	assert.Equal(t, testStream(), back)

	buf.Reset()
	require.NoError(t, convert(&buf, config.OutputAVCC, 4, rep, annexb, logger))
	assert.True(t, h264.IsAVCC(buf.Bytes()))

	buf.Reset()
	require.NoError(t, convert(&buf, config.OutputFLV, 4, rep, annexb, logger))
	r, err := flv.NewReader(&buf)
	require.NoError(t, err)
	assert.True(t, r.HasVideo())
	var timestamps []uint32
	for {
		tag, err := r.ReadFlvTag()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		timestamps = append(timestamps, tag.Timestamp)
	}
	// sequence header + 3 access units at 30fps
	assert.Equal(t, []uint32{0, 0, 33, 66}, timestamps)

	assert.Error(t, convert(&buf, "mkv", 4, rep, annexb, logger))
}

// failWriter 在写入 n 字节后失败
type failWriter struct {
	n int
}

func (w *failWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		return 0, io.ErrShortWrite
	}
	w.n -= len(p)
	return len(p), nil
}

func TestConvert_FLVErrors(t *testing.T) {
	rep, annexb, err := inspect(annexB(testSps, []byte{0x65, 0x88, 0x84}), codec.FramingUnknown, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, convert(io.Discard, config.OutputFLV, 4, rep, annexb, xlog.L()), h264.ErrNoPpsFound)

	rep, annexb, err = inspect(testStream(), codec.FramingUnknown, 0)
	require.NoError(t, err)
	// flv header 与首个 PreviousTagSize 之后失败
	err = convert(&failWriter{n: flv.FlvHeaderSize + 4}, config.OutputFLV, 4, rep, annexb, xlog.L())
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestWriteOutput(t *testing.T) {
	rep, annexb, err := inspect(testStream(), codec.FramingUnknown, 0)
	require.NoError(t, err)

	require.NoError(t, writeOutput(config.OutputNone, "", 4, rep, annexb, xlog.L()))
	assert.Error(t, writeOutput(config.OutputAVC, "", 4, rep, annexb, xlog.L()))

	path := filepath.Join(t.TempDir(), "out.avcc")
	require.NoError(t, writeOutput(config.OutputAVCC, path, 4, rep, annexb, xlog.L()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	decomposed, n, err := h264.DecomposeAVCC(data)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, annexB(testSps, testPps), decomposed)
}
