// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"fmt"
	"strings"
)

// Framing 码流或 extradata 的分帧方式
type Framing int

// 分帧方式常量
const (
	FramingUnknown Framing = iota // 由调用方探测
	FramingAnnexB                 // 起始码分隔
	FramingAVCC                   // avcC 配置记录
)

// String returns a lower-case ASCII representation of the framing.
func (f Framing) String() string {
	switch f {
	case FramingAnnexB:
		return "annexb"
	case FramingAVCC:
		return "avcc"
	default:
		return "auto"
	}
}

// MarshalText marshals the Framing to text.
func (f Framing) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText unmarshals text to a Framing.
func (f *Framing) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "auto":
		*f = FramingUnknown
	case "annexb", "annex-b":
		*f = FramingAnnexB
	case "avcc", "avc":
		*f = FramingAVCC
	default:
		return fmt.Errorf("unrecognized framing: %q", text)
	}
	return nil
}

// StreamFormat 流格式描述，由解复用端提供
type StreamFormat struct {
	Codec     string  // 编码名称，如 H264
	ExtraData []byte  // sps/pps 或 avcC
	Framing   Framing // ExtraData 的分帧方式
}

// VideoMeta 视频元数据
type VideoMeta struct {
	Codec          string  `json:"codec"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	FixedFrameRate bool    `json:"fixedframerate,omitempty"`
	FrameRate      float64 `json:"framerate,omitempty"`
	Profile        string  `json:"profile,omitempty"`
	Level          uint8   `json:"level,omitempty"`
	DataRate       float64 `json:"datarate,omitempty"`
	ClockRate      int     `json:"clockrate,omitempty"`
	Sps            []byte  `json:"-"`
	Pps            []byte  `json:"-"`
}
