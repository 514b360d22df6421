// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flv

import (
	"encoding/binary"
	"errors"

	"github.com/cnotch/avcconf/av/codec/h264"
)

// E.4.3.1 VIDEODATA
// Frame Type UB [4]
//     1 = key frame (for AVC, a seekable frame)
//     2 = inter frame (for AVC, a non-seekable frame)
//     5 = video info/command frame
const (
	FrameTypeKeyFrame       = 1 // video h264 key frame
	FrameTypeInterFrame     = 2 // video h264 inter frame
	FrameTypeVideoInfoFrame = 5
)

// CodecIDAVC Codec Identifier 7 = AVC / H264
const CodecIDAVC = 7

// AVCPacketType IF CodecID == 7 UI8
//     0 = AVC sequence header
//     1 = AVC NALU
//     2 = AVC end of sequence
const (
	AVCPacketTypeSequenceHeader = 0
	AVCPacketTypeNALU           = 1
	AVCPacketTypeEndOfSequence  = 2
)

// 错误定义
var (
	ErrShortVideoData = errors.New("flv: video data too short")
	ErrNotAVC         = errors.New("flv: video codec is not avc")
)

// VideoData flv Tag 中的的视频数据
//
// IF AVCPacketType == AVCPacketTypeSequenceHeader
//  Body 为 AVCDecoderConfigurationRecord
// ELSE
// 　Body 为一个或多个 4 字节长度前缀的 NALU (Full frames are required)
type VideoData struct {
	FrameType       byte  // 4 bits; 帧类型
	CodecID         byte  // 4 bits; 编解码器标识
	AVCPacketType   byte  // 8 bits; AVC 包类型
	CompositionTime int32 // SI24; PTS 与 DTS 的时间偏移值，单位 ms，记作 CTS。
	Body            []byte
}

// NewAVCSequenceHeader wraps the avcC record built from sps and pps.
func NewAVCSequenceHeader(sps, pps []byte) (*VideoData, error) {
	record, err := h264.BuildAVCC(4, sps, pps)
	if err != nil {
		return nil, err
	}
	return &VideoData{
		FrameType:     FrameTypeKeyFrame,
		CodecID:       CodecIDAVC,
		AVCPacketType: AVCPacketTypeSequenceHeader,
		Body:          record,
	}, nil
}

// NewAVCNALUs converts an Annex-B access unit to an AVC NALU packet.
// The access unit is a key frame when it holds an IDR slice. annexb must not
// be used after the call.
func NewAVCNALUs(annexb []byte, cts int32) (*VideoData, error) {
	frameType := byte(FrameTypeInterFrame)
	s := h264.NewScanner(annexb)
	for s.Next() {
		if s.NAL().Type() == h264.NalIdrSlice {
			frameType = FrameTypeKeyFrame
			break
		}
	}

	body, err := h264.AnnexBToAVC(annexb, 4)
	if err != nil {
		return nil, err
	}
	return &VideoData{
		FrameType:       frameType,
		CodecID:         CodecIDAVC,
		AVCPacketType:   AVCPacketTypeNALU,
		CompositionTime: cts,
		Body:            body,
	}, nil
}

// ConfigurationRecord decodes the Body of a sequence header.
func (videoData *VideoData) ConfigurationRecord() (*h264.ConfigurationRecord, error) {
	if videoData.CodecID != CodecIDAVC || videoData.AVCPacketType != AVCPacketTypeSequenceHeader {
		return nil, ErrNotAVC
	}
	record := new(h264.ConfigurationRecord)
	if err := record.Unmarshal(videoData.Body); err != nil {
		return nil, err
	}
	return record, nil
}

// Unmarshal .
// Note: Unmarshal not copy the data
func (videoData *VideoData) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return ErrShortVideoData
	}

	videoData.FrameType = data[0] >> 4
	videoData.CodecID = data[0] & 0x0f
	offset := 1

	if videoData.CodecID == CodecIDAVC {
		if len(data) < 5 {
			return ErrShortVideoData
		}
		temp := binary.BigEndian.Uint32(data[offset:])
		videoData.AVCPacketType = byte(temp >> 24)
		// 符号扩展 24 位
		videoData.CompositionTime = int32(temp<<8) >> 8
		offset += 4
	}

	videoData.Body = data[offset:]
	return nil
}

// MarshalSize .
func (videoData *VideoData) MarshalSize() int {
	if videoData.CodecID == CodecIDAVC {
		return 5 + len(videoData.Body)
	}
	return 1 + len(videoData.Body)
}

// Marshal .
func (videoData *VideoData) Marshal() ([]byte, error) {
	size := videoData.MarshalSize()
	if size > maxDataSize {
		return nil, ErrTagTooLarge
	}
	buff := make([]byte, size)
	buff[0] = (videoData.FrameType << 4) | (videoData.CodecID & 0x0f)
	offset := 1

	if videoData.CodecID == CodecIDAVC {
		binary.BigEndian.PutUint32(buff[offset:],
			uint32(videoData.AVCPacketType)<<24|uint32(videoData.CompositionTime)&0x00ffffff)
		offset += 4
	}

	copy(buff[offset:], videoData.Body)
	return buff, nil
}
