// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

import (
	"encoding/base64"

	"github.com/cnotch/avcconf/utils"
)

// PPS 图像参数集的前导字段
type PPS struct {
	// pic_parameter_set_id, [0,255]
	ID uint8
	// 引用的 sps id, [0,31]
	SPSID uint8
	// 0: CAVLC; 1: CABAC
	EntropyCodingMode bool
	// bottom_field_pic_order_in_frame_present_flag (pic_order_present_flag)
	BottomFieldPicOrderInFramePresent bool
}

// DecodePPSString 从 base64 字串解码 pps NAL
func DecodePPSString(b64 string) (*PPS, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	return DecodePPS(data)
}

// DecodePPS decodes a complete PPS NAL unit. A leading start code is allowed.
func DecodePPS(nal []byte) (*PPS, error) {
	nal = utils.RemoveNaluSeparator(nal)
	if len(nal) < 1 {
		return nil, &ParseError{Kind: ErrPpsMalformed, Field: "nal_unit_header", Err: ErrBitstreamTruncated}
	}
	if NALType(nal[0]&NalTypeBitmask) != NalPps {
		return nil, &ParseError{Kind: ErrPpsMalformed, Field: "nal_unit_type"}
	}
	return ParsePPS(nal[1:])
}

// ParsePPS decodes the leading fields of pic_parameter_set_rbsp.
func ParsePPS(rbsp []byte) (*PPS, error) {
	fr := newFieldReader(rbsp, ErrPpsMalformed)
	pps := &PPS{
		ID:                                uint8(fr.ueMax("pic_parameter_set_id", MaxPpsCount-1)),
		SPSID:                             uint8(fr.ueMax("seq_parameter_set_id", MaxSpsCount-1)),
		EntropyCodingMode:                 fr.flag("entropy_coding_mode_flag"),
		BottomFieldPicOrderInFramePresent: fr.flag("bottom_field_pic_order_in_frame_present_flag"),
	}
	if err := fr.result(); err != nil {
		return nil, err
	}
	return pps, nil
}
