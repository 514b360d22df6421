// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cnotch/avcconf/av/codec"
	"github.com/cnotch/avcconf/av/codec/h264"
	"github.com/cnotch/avcconf/av/format/sdp"
)

// report 输入码流的配置信息
type report struct {
	Input   string            `json:"input"`
	Framing codec.Framing     `json:"framing"`
	Config  h264.ProfileLevel `json:"config"`
	SPS     *h264.SPS         `json:"sps,omitempty"`
	PPS     *h264.PPS         `json:"pps,omitempty"`
	SDP     *codec.VideoMeta  `json:"sdp,omitempty"`

	record *h264.ConfigurationRecord
	spsNal []byte
	ppsNal []byte
}

// inspect 识别 data 的格式并解码其中的参数集，同时返回 Annex-B 形式的码流。
// framing 为 FramingAVCC 且 data 不是 avcC 时，nalLengthSize > 0 表示 data 为 AVC 样本。
// 自动探测时，以 "v=0" 开头的输入按 sdp 处理，参数集取自 sprop-parameter-sets。
func inspect(data []byte, framing codec.Framing, nalLengthSize int) (*report, []byte, error) {
	var video *codec.VideoMeta
	if framing == codec.FramingUnknown && isSDP(data) {
		video = new(codec.VideoMeta)
		if err := sdp.ParseMetadata(string(data), video); err != nil {
			return nil, nil, err
		}
		annexb, err := sdp.ExtraData(video, 0)
		if err != nil {
			return nil, nil, err
		}
		data, framing = annexb, codec.FramingAnnexB
	}

	if framing == codec.FramingAVCC && nalLengthSize > 0 && !h264.IsAVCC(data) {
		annexb, err := h264.AVCToAnnexB(data, nalLengthSize)
		if err != nil {
			return nil, nil, err
		}
		data, framing = annexb, codec.FramingAnnexB
	}

	pl, err := h264.ResolveProfileLevel(&codec.StreamFormat{
		Codec:     "H264",
		ExtraData: data,
		Framing:   framing,
	})
	if err != nil {
		return nil, nil, err
	}

	rep := &report{Config: pl, Framing: codec.FramingAnnexB, SDP: video}
	annexb := data
	if pl.NalLengthSize > 0 {
		rep.Framing = codec.FramingAVCC
		rep.record = new(h264.ConfigurationRecord)
		if err := rep.record.Unmarshal(data); err != nil {
			return nil, nil, err
		}
		annexb = rep.record.AnnexB()
	}

	rep.spsNal, rep.ppsNal, err = h264.FindParameterSets(annexb)
	if err != nil {
		return nil, nil, err
	}
	if rep.SPS, err = h264.DecodeSPS(rep.spsNal); err != nil {
		return nil, nil, err
	}
	if rep.ppsNal != nil {
		if rep.PPS, err = h264.DecodePPS(rep.ppsNal); err != nil {
			return nil, nil, err
		}
	}
	return rep, annexb, nil
}

func isSDP(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("v=0"))
}

func (rep *report) print(w io.Writer) error {
	pw := &printer{w: w}
	pw.printf("input:           %s (%s)\n", rep.Input, rep.Framing)
	pw.printf("profile:         %s (%d)\n", rep.Config.Profile, uint8(rep.Config.Profile))
	pw.printf("compatibility:   0x%02X\n", rep.Config.Compatibility)
	pw.printf("level:           %d\n", rep.Config.Level)
	if rep.Config.NalLengthSize > 0 {
		pw.printf("nal length size: %d\n", rep.Config.NalLengthSize)
	}
	if rep.record != nil {
		pw.printf("%s\n", rep.record)
	}
	if v := rep.SDP; v != nil {
		pw.printf("sdp:             %s/%d", v.Codec, v.ClockRate)
		if v.DataRate > 0 {
			pw.printf(", %.0f kbps", v.DataRate)
		}
		pw.printf("\n")
	}

	if sps := rep.SPS; sps != nil {
		pw.printf("sps:             id %d, %dx%d", sps.ID, sps.Width, sps.Height)
		if fps := sps.FrameRate(); fps > 0 {
			pw.printf(", %.3f fps", fps)
			if sps.IsFixedFrameRate() {
				pw.printf(" fixed")
			}
		}
		if !sps.FrameMbsOnly {
			pw.printf(", interlaced")
		}
		pw.printf(", poc type %d, log2 max frame num %d\n", sps.PicOrderCntType, sps.Log2MaxFrameNum)
	}

	if pps := rep.PPS; pps != nil {
		entropy := "CAVLC"
		if pps.EntropyCodingMode {
			entropy = "CABAC"
		}
		pw.printf("pps:             id %d, sps %d, %s\n", pps.ID, pps.SPSID, entropy)
	}
	return pw.err
}

// printer 记住第一个写错误
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}
