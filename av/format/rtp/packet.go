// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/pion/rtp"
)

const (
	// TransferPrefix RTP 包网络传输时的前缀
	TransferPrefix = byte(0x24) // $
)

// 预定义 RTP 通道类型
const (
	ChannelVideo        = iota // 视频通道
	ChannelVideoControl        // 视频控制通道
	ChannelOther               // 未配置的通道，如音频
)

// DefaultChannelConfig 默认的通道配置：交织通道 0 为视频，1 为视频控制
var DefaultChannelConfig = []int{0, 1}

// 错误定义
var (
	ErrBadPrefix      = errors.New("rtp: interleaved packet must start with `$`")
	ErrPacketTooLarge = errors.New("rtp: packet exceeds interleaved frame size")
)

// ChannelName 通道名
func ChannelName(channel int) string {
	switch channel {
	case ChannelVideo:
		return "video"
	case ChannelVideoControl:
		return "video control"
	}
	return "other"
}

// Packet RTP 数据包
type Packet struct {
	Channel    byte   // 通道类型
	Data       []byte // 数据
	rtp.Header        // 仅视频通道有效
}

// PacketWriter 包装 WriteRtpPacket 方法的接口
type PacketWriter interface {
	WriteRtpPacket(packet *Packet) error
}

// NewPacket wraps one RTP datagram of the video channel.
func NewPacket(data []byte) (*Packet, error) {
	p := &Packet{Channel: ChannelVideo, Data: data}
	if err := p.Header.Unmarshal(data); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadPacket 从 r 中读取一个 `$` 交织封装的 rtp 包.
// channelConfig[i] 给出通道类型 i 所在的交织通道号，未配置的通道类型为 ChannelOther
func ReadPacket(r *bufio.Reader, channelConfig []int) (*Packet, error) {
	var prefix [4]byte
	// 读前缀4字节
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}

	if prefix[0] != TransferPrefix {
		return nil, ErrBadPrefix
	}

	channel := int(prefix[1])
	rtpLen := int(binary.BigEndian.Uint16(prefix[2:]))

	// 读取包数据
	rtpBytes := make([]byte, rtpLen)
	if _, err := io.ReadFull(r, rtpBytes); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	p := &Packet{Channel: ChannelOther, Data: rtpBytes}
	for i, v := range channelConfig {
		if v == channel && i < ChannelOther {
			p.Channel = byte(i)
			break
		}
	}
	if p.Channel == ChannelVideo {
		if err := p.Header.Unmarshal(p.Data); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Write 将 RTP 包以 `$` 交织封装输出到 w
func (p *Packet) Write(w io.Writer, channelConfig []int) error {
	if int(p.Channel) >= len(channelConfig) {
		return nil // 未配置，忽略
	}
	ch := channelConfig[p.Channel]
	if ch < 0 || ch > 255 {
		return nil
	}
	if len(p.Data) > 0xFFFF {
		return ErrPacketTooLarge
	}

	var prefix [4]byte
	prefix[0] = TransferPrefix
	prefix[1] = byte(ch)
	binary.BigEndian.PutUint16(prefix[2:], uint16(len(p.Data)))

	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err := w.Write(p.Data)
	return err
}

// Size 包在交织传输中的总大小
func (p *Packet) Size() int {
	return len(p.Data) + 4
}

// Payload 数据包中实际的载荷，已去除 padding；非视频通道返回 nil
func (p *Packet) Payload() []byte {
	if p.Channel != ChannelVideo || p.PayloadOffset > len(p.Data) {
		return nil
	}
	end := len(p.Data)
	if p.Padding && end > p.PayloadOffset {
		pad := int(p.Data[end-1])
		if pad <= end-p.PayloadOffset {
			end -= pad
		}
	}
	return p.Data[p.PayloadOffset:end]
}
