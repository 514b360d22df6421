// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

import (
	"encoding/base64"

	"github.com/cnotch/avcconf/utils"
	"github.com/cnotch/avcconf/utils/bits"
)

// 测试用参数集
var (
	testSpsB64 = "Z2QAH6zZQFAFuhAAAAMAEAAAAwPI8YMZYA=="
	testPpsB64 = "aOvjyyLA"
)

func mustB64(s string) []byte {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

type spsOptions struct {
	profile        uint8
	level          uint8
	id             uint32
	widthMbs       uint32 // minus1
	heightMapUnits uint32 // minus1
	frameMbsOnly   bool
	crop           [4]uint32
	timing         [2]uint32 // num_units_in_tick, time_scale
}

// buildSPS writes a complete SPS NAL unit (header included, emulation
// prevention applied) for a profile without chroma info.
func buildSPS(o spsOptions) []byte {
	var w bits.Writer
	w.WriteBits(uint32(o.profile), 8)
	w.WriteBits(0, 8)
	w.WriteBits(uint32(o.level), 8)
	w.WriteUe(o.id)
	w.WriteUe(0) // log2_max_frame_num_minus4
	w.WriteUe(0) // pic_order_cnt_type
	w.WriteUe(0) // log2_max_pic_order_cnt_lsb_minus4
	w.WriteUe(1) // max_num_ref_frames
	w.WriteFlag(false)
	w.WriteUe(o.widthMbs)
	w.WriteUe(o.heightMapUnits)
	w.WriteFlag(o.frameMbsOnly)
	if !o.frameMbsOnly {
		w.WriteFlag(false)
	}
	w.WriteFlag(true) // direct_8x8_inference_flag
	cropping := o.crop != [4]uint32{}
	w.WriteFlag(cropping)
	if cropping {
		for _, c := range o.crop {
			w.WriteUe(c)
		}
	}
	vui := o.timing != [2]uint32{}
	w.WriteFlag(vui)
	if vui {
		w.WriteFlag(false) // aspect_ratio_info_present_flag
		w.WriteFlag(false) // overscan_info_present_flag
		w.WriteFlag(false) // video_signal_type_present_flag
		w.WriteFlag(false) // chroma_loc_info_present_flag
		w.WriteFlag(true)  // timing_info_present_flag
		w.WriteBits(o.timing[0], 32)
		w.WriteBits(o.timing[1], 32)
		w.WriteFlag(true)  // fixed_frame_rate_flag
		w.WriteFlag(false) // nal_hrd_parameters_present_flag
		w.WriteFlag(false) // vcl_hrd_parameters_present_flag
		w.WriteFlag(false) // pic_struct_present_flag
		w.WriteFlag(false) // bitstream_restriction_flag
	}
	w.WriteTrailingBits()
	return append([]byte{0x67}, utils.AddH264or5EmulationBytes(w.Bytes())...)
}

// baselineSPS is a 1280x720 baseline profile SPS (level 3.0).
func baselineSPS() []byte {
	return buildSPS(spsOptions{
		profile:        66,
		level:          30,
		widthMbs:       79,
		heightMapUnits: 44,
		frameMbsOnly:   true,
	})
}

func buildPPS(id, spsID uint32, cabac, bottomField bool) []byte {
	var w bits.Writer
	w.WriteUe(id)
	w.WriteUe(spsID)
	w.WriteFlag(cabac)
	w.WriteFlag(bottomField)
	w.WriteUe(0) // num_slice_groups_minus1
	w.WriteUe(0) // num_ref_idx_l0_default_active_minus1
	w.WriteUe(0) // num_ref_idx_l1_default_active_minus1
	w.WriteTrailingBits()
	return append([]byte{0x68}, utils.AddH264or5EmulationBytes(w.Bytes())...)
}

// annexB joins nals with 4-byte start codes.
func annexB(nals ...[]byte) []byte {
	var out []byte
	for _, nal := range nals {
		out = append(out, startCode...)
		out = append(out, nal...)
	}
	return out
}

// buildHighSPS writes a 1920x1088 field-coded High 4:4:4 Predictive SPS
// (crop left 4, bottom 2) with scaling lists, pic_order_cnt_type 1, an
// extended SAR of 4:3, NAL and VCL HRD blocks with 3 and 2 CPBs and
// pic_struct_present_flag set.
func buildHighSPS(chromaFormatIdc uint32, separateColourPlane bool) []byte {
	var w bits.Writer
	w.WriteBits(uint32(ProfileHigh444Predictive), 8)
	w.WriteBits(0, 8)
	w.WriteBits(40, 8)
	w.WriteUe(1) // seq_parameter_set_id
	w.WriteUe(chromaFormatIdc)
	if chromaFormatIdc == 3 {
		w.WriteFlag(separateColourPlane)
	}
	w.WriteUe(2)       // bit_depth_luma_minus8
	w.WriteUe(2)       // bit_depth_chroma_minus8
	w.WriteFlag(false) // qpprime_y_zero_transform_bypass_flag
	w.WriteFlag(true)  // seq_scaling_matrix_present_flag
	lists := 8
	if chromaFormatIdc == 3 {
		lists = 12
	}
	for i := 0; i < lists; i++ {
		switch {
		case i == 6:
			// 64 个 0 增量，nextScale 始终为 8
			w.WriteFlag(true)
			for j := 0; j < 64; j++ {
				w.WriteSe(0)
			}
		case i == 0 || i == lists-1:
			w.WriteFlag(true)
			w.WriteSe(-8)
		default:
			w.WriteFlag(false)
		}
	}

	w.WriteUe(2) // log2_max_frame_num_minus4
	w.WriteUe(1) // pic_order_cnt_type
	w.WriteFlag(false)
	w.WriteSe(-2) // offset_for_non_ref_pic
	w.WriteSe(1)  // offset_for_top_to_bottom_field
	w.WriteUe(3)  // num_ref_frames_in_pic_order_cnt_cycle
	for _, offset := range []int32{1, -1, 2} {
		w.WriteSe(offset)
	}
	w.WriteUe(2) // max_num_ref_frames
	w.WriteFlag(false)
	w.WriteUe(119)     // 120 mbs
	w.WriteUe(33)      // 34 map units
	w.WriteFlag(false) // frame_mbs_only_flag
	w.WriteFlag(false) // mb_adaptive_frame_field_flag
	w.WriteFlag(true)  // direct_8x8_inference_flag
	w.WriteFlag(true)  // frame_cropping_flag
	for _, c := range []uint32{4, 0, 0, 2} {
		w.WriteUe(c)
	}

	w.WriteFlag(true) // vui_parameters_present_flag
	w.WriteFlag(true) // aspect_ratio_info_present_flag
	w.WriteBits(extendedSar, 8)
	w.WriteBits(4, 16)
	w.WriteBits(3, 16)
	w.WriteFlag(false) // overscan_info_present_flag
	w.WriteFlag(true)  // video_signal_type_present_flag
	w.WriteBits(5, 3)
	w.WriteFlag(false)
	w.WriteFlag(true) // colour_description_present_flag
	w.WriteBits(0x010101, 24)
	w.WriteFlag(true) // chroma_loc_info_present_flag
	w.WriteUe(0)
	w.WriteUe(0)
	w.WriteFlag(true) // timing_info_present_flag
	w.WriteBits(1001, 32)
	w.WriteBits(60000, 32)
	w.WriteFlag(true)
	for _, cpbCnt := range []uint32{3, 2} { // nal, vcl
		w.WriteFlag(true)
		w.WriteUe(cpbCnt - 1)
		w.WriteBits(4, 4) // bit_rate_scale
		w.WriteBits(6, 4) // cpb_size_scale
		for i := uint32(0); i < cpbCnt; i++ {
			w.WriteUe(1000 + i)
			w.WriteUe(2000 + i)
			w.WriteFlag(i == 0)
		}
		w.WriteBits(23, 5)
		w.WriteBits(17, 5) // cpb_removal_delay_length_minus1
		w.WriteBits(9, 5)  // dpb_output_delay_length_minus1
		w.WriteBits(24, 5)
	}
	w.WriteFlag(false) // low_delay_hrd_flag
	w.WriteFlag(true)  // pic_struct_present_flag
	w.WriteFlag(false) // bitstream_restriction_flag
	w.WriteTrailingBits()
	return append([]byte{0x67}, utils.AddH264or5EmulationBytes(w.Bytes())...)
}
