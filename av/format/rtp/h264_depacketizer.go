// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cnotch/avcconf/av/codec"
	"github.com/cnotch/avcconf/av/codec/h264"
	"github.com/cnotch/xlog"
)

const defaultClockRate = 90000

// H264Depacketizer 从 RTP 包（RFC 6184）中提取 H264 NAL 单元
type H264Depacketizer struct {
	fragments []byte // FU-A 重组缓冲，首字节为重建的 NAL 头
	lastSeq   uint16
	inFU      bool

	meta      *codec.VideoMeta
	params    h264.ParameterSets
	metaReady bool

	clockRate int64
	started   bool
	lastTS    uint32
	ticks     int64 // 自第一个包以来的 RTP 时钟数

	w      codec.FrameWriter
	logger *xlog.Logger
}

// NewH264Depacketizer 实例化 H264 帧提取器
func NewH264Depacketizer(meta *codec.VideoMeta, w codec.FrameWriter, logger *xlog.Logger) *H264Depacketizer {
	dp := &H264Depacketizer{
		fragments: make([]byte, 0, 64*1024),
		meta:      meta,
		clockRate: int64(meta.ClockRate),
		w:         w,
		logger:    logger,
	}
	if dp.clockRate <= 0 {
		dp.clockRate = defaultClockRate
	}
	// 已从 sdp 得到的参数集
	for _, ps := range [][]byte{meta.Sps, meta.Pps} {
		if len(ps) > 0 {
			if err := dp.params.Put(ps); err != nil {
				logger.Warnf("rtp: ignore parameter set from sdp: %v", err)
			}
		}
	}
	return dp
}

// ParameterSets 返回已捕获的参数集
func (dp *H264Depacketizer) ParameterSets() *h264.ParameterSets {
	return &dp.params
}

// Depacketize 处理一个视频通道的 RTP 包
func (dp *H264Depacketizer) Depacketize(packet *Packet) error {
	payload := packet.Payload()
	if len(payload) < 1 {
		return nil
	}

	pts := dp.pts(packet.Timestamp)
	naluType := h264.NalType(payload[0])

	switch {
	case naluType >= h264.NalSlice && naluType < h264.NalStapaInRtp:
		// 单一 NAL 单元包
		dp.resetFU()
		return dp.writeNAL(pts, payload)
	case naluType == h264.NalStapaInRtp:
		dp.resetFU()
		return dp.depacketizeStapa(pts, payload)
	case naluType == h264.NalFuAInRtp:
		return dp.depacketizeFuA(pts, packet.SequenceNumber, payload)
	default:
		dp.resetFU()
		return fmt.Errorf("rtp: nalu type %d is currently not handled", naluType)
	}
}

// 	0                   1                   2                   3
// 	0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//  +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//  |STAP-A NAL HDR |         NALU 1 Size           | NALU 1 HDR    |
//  +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//  |                         NALU 1 Data                           |
//  :                                                               :
//  +               +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//  |               | NALU 2 Size                   | NALU 2 HDR    |
//  +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
func (dp *H264Depacketizer) depacketizeStapa(pts int64, payload []byte) error {
	off := 1 // 跳过 STAP-A NAL HDR
	for off+2 <= len(payload) {
		nalSize := int(binary.BigEndian.Uint16(payload[off:]))
		off += 2
		if nalSize == 0 {
			continue
		}
		if off+nalSize > len(payload) {
			return fmt.Errorf("rtp: stap-a nal of %d bytes exceeds packet", nalSize)
		}
		if err := dp.writeNAL(pts, payload[off:off+nalSize]); err != nil {
			return err
		}
		off += nalSize
	}
	return nil
}

// +---------------+---------------+
// |0|1|2|3|4|5|6|7|0|1|2|3|4|5|6|7|
// +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
// |F|NRI|  Type   |S|E|R|  Type   |
// +---------------+---------------+
//   FU indicator     FU header
func (dp *H264Depacketizer) depacketizeFuA(pts int64, seq uint16, payload []byte) error {
	if len(payload) < 2 {
		return nil
	}
	indicator, fuHeader := payload[0], payload[1]
	start := fuHeader&0x80 != 0
	end := fuHeader&0x40 != 0

	if start {
		dp.fragments = append(dp.fragments[:0], (indicator&0xE0)|(fuHeader&h264.NalTypeBitmask))
		dp.inFU = true
	} else if !dp.inFU {
		return nil // 丢失了起始分片
	} else if seq != dp.lastSeq+1 {
		dp.logger.Debugf("rtp: fu-a sequence gap %d -> %d, drop nal", dp.lastSeq, seq)
		dp.resetFU()
		return nil
	}

	dp.lastSeq = seq
	dp.fragments = append(dp.fragments, payload[2:]...)

	if !end {
		return nil
	}
	nal := append([]byte(nil), dp.fragments...)
	dp.resetFU()
	return dp.writeNAL(pts, nal)
}

func (dp *H264Depacketizer) resetFU() {
	dp.fragments = dp.fragments[:0]
	dp.inFU = false
}

// pts 将 RTP 时间戳换算为自第一个包起的纳秒数，允许 32 位回绕
func (dp *H264Depacketizer) pts(ts uint32) int64 {
	if !dp.started {
		dp.started = true
		dp.lastTS = ts
	}
	dp.ticks += int64(int32(ts - dp.lastTS))
	dp.lastTS = ts
	return dp.ticks * int64(time.Second) / dp.clockRate
}

func (dp *H264Depacketizer) writeNAL(pts int64, nal []byte) error {
	switch h264.NalType(nal[0]) {
	case h264.NalSps:
		if len(dp.meta.Sps) == 0 {
			dp.meta.Sps = append([]byte(nil), nal...)
		}
		if err := dp.params.Put(nal); err != nil {
			dp.logger.Warnf("rtp: bad sps: %v", err)
		}
	case h264.NalPps:
		if len(dp.meta.Pps) == 0 {
			dp.meta.Pps = append([]byte(nil), nal...)
		}
		if err := dp.params.Put(nal); err != nil {
			dp.logger.Warnf("rtp: bad pps: %v", err)
		}
	case h264.NalFillerData:
		return nil
	}

	if !dp.metaReady {
		if !h264.MetadataIsReady(dp.meta) {
			return nil
		}
		dp.metaReady = true
		dp.logger.Infof("rtp: h264 %dx%d, profile %s, level %d",
			dp.meta.Width, dp.meta.Height, dp.meta.Profile, dp.meta.Level)
	}

	payload := make([]byte, 4+len(nal))
	payload[3] = 1
	copy(payload[4:], nal)
	frame := &codec.Frame{
		Framing:  codec.FramingAnnexB,
		KeyFrame: h264.IsIdrSlice(nal[0]),
		Dts:      pts,
		Pts:      pts,
		Payload:  payload,
	}
	return dp.w.WriteFrame(frame)
}
