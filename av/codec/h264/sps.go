// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
//
// Field order follows 7.3.2.1.1 and E.1.1 of T-REC-H.264.
//
package h264

import (
	"encoding/base64"

	"github.com/cnotch/avcconf/utils"
)

// VUI Video Usability Information 中与时间和显示相关的部分
type VUI struct {
	// 样点高宽比；aspect_ratio_idc 未定义时均为 0
	SarNum int
	SarDen int

	// 和帧率相关
	TimingInfoPresent bool
	NumUnitsInTick    uint32
	TimeScale         uint32
	FixedFrameRate    bool

	PicStructPresent bool

	// nal_hrd_parameters_present_flag || vcl_hrd_parameters_present_flag
	CpbDpbDelaysPresent         bool
	CpbRemovalDelayLengthMinus1 uint8
	DpbOutputDelayLengthMinus1  uint8
}

// SPS 序列参数集中解码所需的字段
type SPS struct {
	// 指明本序列参数集的  id 号，这个 id 号将被 picture 参数集引用，
	// 本句法元素的值应该在[0，31]。
	ID uint8

	Profile              Profile
	ProfileCompatibility uint8 // constraint_set0..5 flags and reserved_zero_2bits
	Level                uint8

	// 亮度像素尺寸，已扣除裁剪
	Width  int
	Height int

	// MaxFrameNum = 2^Log2MaxFrameNum
	Log2MaxFrameNum uint8
	// 等于 1 表示序列中只有帧编码
	FrameMbsOnly bool

	// 指明了 poc  (picture  order  count)  的编码方法
	PicOrderCntType         uint8
	DeltaPicOrderAlwaysZero bool
	// MaxPicOrderCntLsb = 2^Log2MaxPicOrderCntLsb, valid for PicOrderCntType 0
	Log2MaxPicOrderCntLsb uint8

	// nil when vui_parameters_present_flag is 0
	VUI *VUI
}

// FrameRate Video frame rate
func (sps *SPS) FrameRate() float64 {
	if sps.VUI == nil || !sps.VUI.TimingInfoPresent || sps.VUI.NumUnitsInTick == 0 {
		return 0.0
	}
	return float64(sps.VUI.TimeScale) / float64(uint64(sps.VUI.NumUnitsInTick)*2)
}

// IsFixedFrameRate 是否固定帧率
func (sps *SPS) IsFixedFrameRate() bool {
	return sps.VUI != nil && sps.VUI.FixedFrameRate
}

// DecodeSPSString 从 base64 字串解码 sps NAL
func DecodeSPSString(b64 string) (*SPS, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	return DecodeSPS(data)
}

// DecodeSPS decodes a complete SPS NAL unit. A leading start code is allowed.
func DecodeSPS(nal []byte) (*SPS, error) {
	nal = utils.RemoveNaluSeparator(nal)
	if len(nal) < 1 {
		return nil, &ParseError{Kind: ErrSpsMalformed, Field: "nal_unit_header", Err: ErrBitstreamTruncated}
	}
	if NALType(nal[0]&NalTypeBitmask) != NalSps {
		return nil, &ParseError{Kind: ErrSpsMalformed, Field: "nal_unit_type"}
	}
	return ParseSPS(nal[1:])
}

// ParseSPS decodes seq_parameter_set_data from the NAL payload that follows
// the header byte. Emulation prevention bytes are handled by the reader.
func ParseSPS(rbsp []byte) (*SPS, error) {
	fr := newFieldReader(rbsp, ErrSpsMalformed)
	sps := new(SPS)

	// 前三个字节
	sps.Profile = Profile(fr.u8("profile_idc"))
	sps.ProfileCompatibility = fr.u8("constraint_set_flags")
	sps.Level = fr.u8("level_idc")
	sps.ID = uint8(fr.ueMax("seq_parameter_set_id", MaxSpsCount-1))

	chromaFormatIdc := uint32(1) // 4:2:0 when not coded
	separateColourPlane := false
	if sps.Profile.HasChromaInfo() {
		chromaFormatIdc = fr.ueMax("chroma_format_idc", 3)
		if chromaFormatIdc == 3 {
			separateColourPlane = fr.flag("separate_colour_plane_flag")
		}
		fr.ue("bit_depth_luma_minus8")
		fr.ue("bit_depth_chroma_minus8")
		fr.flag("qpprime_y_zero_transform_bypass_flag")

		if fr.flag("seq_scaling_matrix_present_flag") {
			lists := 8
			if chromaFormatIdc == 3 {
				lists = 12
			}
			for i := 0; i < lists && fr.err == nil; i++ {
				if fr.flag("seq_scaling_list_present_flag") {
					size := 16
					if i >= 6 {
						size = 64
					}
					skipScalingList(fr, size)
				}
			}
		}
	}

	sps.Log2MaxFrameNum = uint8(fr.ueMax("log2_max_frame_num_minus4", 12) + 4)

	sps.PicOrderCntType = uint8(fr.ueMax("pic_order_cnt_type", 2))
	switch sps.PicOrderCntType {
	case 0:
		sps.Log2MaxPicOrderCntLsb = uint8(fr.ueMax("log2_max_pic_order_cnt_lsb_minus4", 12) + 4)
	case 1:
		sps.DeltaPicOrderAlwaysZero = fr.flag("delta_pic_order_always_zero_flag")
		fr.se("offset_for_non_ref_pic")
		fr.se("offset_for_top_to_bottom_field")
		cycle := fr.ueMax("num_ref_frames_in_pic_order_cnt_cycle", 255)
		for i := uint32(0); i < cycle && fr.err == nil; i++ {
			fr.se("offset_for_ref_frame")
		}
	}

	fr.ue("max_num_ref_frames")
	fr.flag("gaps_in_frame_num_value_allowed_flag")

	widthInMbs := int64(fr.ue("pic_width_in_mbs_minus1")) + 1
	heightInMapUnits := int64(fr.ue("pic_height_in_map_units_minus1")) + 1

	sps.FrameMbsOnly = fr.flag("frame_mbs_only_flag")
	if !sps.FrameMbsOnly {
		fr.flag("mb_adaptive_frame_field_flag")
	}
	fr.flag("direct_8x8_inference_flag")

	var cropLeft, cropRight, cropTop, cropBottom int64
	if fr.flag("frame_cropping_flag") {
		cropLeft = int64(fr.ue("frame_crop_left_offset"))
		cropRight = int64(fr.ue("frame_crop_right_offset"))
		cropTop = int64(fr.ue("frame_crop_top_offset"))
		cropBottom = int64(fr.ue("frame_crop_bottom_offset"))
	}

	if fr.flag("vui_parameters_present_flag") {
		sps.VUI = parseVUI(fr)
	}

	if err := fr.result(); err != nil {
		return nil, err
	}

	// 7.4.2.1.1: CropUnitX / CropUnitY
	frameHeightFactor := int64(2)
	if sps.FrameMbsOnly {
		frameHeightFactor = 1
	}
	cropUnitX, cropUnitY := int64(1), frameHeightFactor
	if !separateColourPlane && chromaFormatIdc != 0 {
		subWidthC, subHeightC := int64(2), int64(2)
		switch chromaFormatIdc {
		case 2:
			subHeightC = 1
		case 3:
			subWidthC, subHeightC = 1, 1
		}
		cropUnitX = subWidthC
		cropUnitY = subHeightC * frameHeightFactor
	}

	width := widthInMbs*16 - cropUnitX*(cropLeft+cropRight)
	height := heightInMapUnits*16*frameHeightFactor - cropUnitY*(cropTop+cropBottom)
	if width <= 0 || height <= 0 {
		return nil, &ParseError{Kind: ErrSpsMalformed, Field: "frame_crop_offset"}
	}
	sps.Width = int(width)
	sps.Height = int(height)
	return sps, nil
}

// skipScalingList consumes scaling_list( ) of 7.3.2.1.1.1 without keeping the values.
func skipScalingList(fr *fieldReader, size int) {
	lastScale, nextScale := int32(8), int32(8)
	for j := 0; j < size && fr.err == nil; j++ {
		if nextScale != 0 {
			delta := fr.se("delta_scale")
			nextScale = (lastScale + delta + 256) % 256
		}
		if nextScale != 0 {
			lastScale = nextScale
		}
	}
}

// Table E-1 – Meaning of sample aspect ratio indicator
var sarTable = [17][2]int{
	{0, 0}, {1, 1}, {12, 11}, {10, 11}, {16, 11}, {40, 33}, {24, 11}, {20, 11},
	{32, 11}, {80, 33}, {18, 11}, {15, 11}, {64, 33}, {160, 99}, {4, 3}, {3, 2},
	{2, 1},
}

const extendedSar = 255

func parseVUI(fr *fieldReader) *VUI {
	vui := new(VUI)

	if fr.flag("aspect_ratio_info_present_flag") {
		idc := int(fr.u8("aspect_ratio_idc"))
		if idc == extendedSar {
			vui.SarNum = int(fr.u(16, "sar_width"))
			vui.SarDen = int(fr.u(16, "sar_height"))
		} else if idc < len(sarTable) {
			vui.SarNum, vui.SarDen = sarTable[idc][0], sarTable[idc][1]
		}
	}

	if fr.flag("overscan_info_present_flag") {
		fr.flag("overscan_appropriate_flag")
	}

	if fr.flag("video_signal_type_present_flag") {
		fr.skip(3, "video_format")
		fr.flag("video_full_range_flag")
		if fr.flag("colour_description_present_flag") {
			// colour_primaries, transfer_characteristics, matrix_coefficients
			fr.skip(24, "colour_description")
		}
	}

	if fr.flag("chroma_loc_info_present_flag") {
		fr.ue("chroma_sample_loc_type_top_field")
		fr.ue("chroma_sample_loc_type_bottom_field")
	}

	vui.TimingInfoPresent = fr.flag("timing_info_present_flag")
	if vui.TimingInfoPresent {
		vui.NumUnitsInTick = fr.u(32, "num_units_in_tick")
		vui.TimeScale = fr.u(32, "time_scale")
		vui.FixedFrameRate = fr.flag("fixed_frame_rate_flag")
	}

	nalHrd := fr.flag("nal_hrd_parameters_present_flag")
	if nalHrd {
		parseHRD(fr, vui)
	}
	vclHrd := fr.flag("vcl_hrd_parameters_present_flag")
	if vclHrd {
		parseHRD(fr, vui)
	}
	if nalHrd || vclHrd {
		vui.CpbDpbDelaysPresent = true
		fr.flag("low_delay_hrd_flag")
	}

	vui.PicStructPresent = fr.flag("pic_struct_present_flag")
	// bitstream_restriction is not needed
	return vui
}

// parseHRD walks hrd_parameters( ) of E.1.2; only the delay field lengths are kept.
func parseHRD(fr *fieldReader, vui *VUI) {
	cpbCnt := fr.ueMax("cpb_cnt_minus1", MaxCpbCnt-1) + 1
	fr.skip(4, "bit_rate_scale")
	fr.skip(4, "cpb_size_scale")
	for i := uint32(0); i < cpbCnt && fr.err == nil; i++ {
		fr.ue("bit_rate_value_minus1")
		fr.ue("cpb_size_value_minus1")
		fr.flag("cbr_flag")
	}
	fr.skip(5, "initial_cpb_removal_delay_length_minus1")
	vui.CpbRemovalDelayLengthMinus1 = uint8(fr.u(5, "cpb_removal_delay_length_minus1"))
	vui.DpbOutputDelayLengthMinus1 = uint8(fr.u(5, "dpb_output_delay_length_minus1"))
	fr.skip(5, "time_offset_length")
}
