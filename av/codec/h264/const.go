// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

import "strconv"

// NALType nal_unit_type, Table 7-1 of T-REC-H.264.
type NALType uint8

// H264 NAL 单元类型
const (
	NalUnspecified     NALType = 0
	NalSlice           NALType = 1  // 不分区非IDR图像的片
	NalDpa             NALType = 2  // 片分区A
	NalDpb             NALType = 3  // 片分区B
	NalDpc             NALType = 4  // 片分区C
	NalIdrSlice        NALType = 5  // IDR图像中的片（I帧）
	NalSei             NALType = 6  // 补充增强信息单元
	NalSps             NALType = 7  // 序列参数集
	NalPps             NALType = 8  // 图像参数集
	NalAud             NALType = 9  // 分界符
	NalEndSequence     NALType = 10 // 序列结束
	NalEndStream       NALType = 11 // 码流结束
	NalFillerData      NALType = 12 // 填充
	NalSpsExt          NALType = 13
	NalPrefix          NALType = 14
	NalSubSps          NALType = 15
	NalDps             NALType = 16
	NalAuxiliarySlice  NALType = 19
	NalExtenSlice      NALType = 20
	NalDepthExtenSlice NALType = 21

	// NAL 在 RTP 包中的扩展
	NalStapaInRtp  NALType = 24 // 单一时间的组合包
	NalStapbInRtp  NALType = 25 // 单一时间的组合包
	NalMtap16InRtp NALType = 26 // 多个时间的组合包
	NalMtap24InRtp NALType = 27 // 多个时间的组合包
	NalFuAInRtp    NALType = 28 // 分片的单元
	NalFuBInRtp    NALType = 29 // 分片的单元

	NalTypeBitmask = 0x1F
)

// String returns a short name of the NAL type.
func (t NALType) String() string {
	switch t {
	case NalSlice:
		return "slice"
	case NalDpa:
		return "slice partition A"
	case NalDpb:
		return "slice partition B"
	case NalDpc:
		return "slice partition C"
	case NalIdrSlice:
		return "IDR slice"
	case NalSei:
		return "SEI"
	case NalSps:
		return "SPS"
	case NalPps:
		return "PPS"
	case NalAud:
		return "AUD"
	case NalEndSequence:
		return "end of sequence"
	case NalEndStream:
		return "end of stream"
	case NalFillerData:
		return "filler"
	case NalSpsExt:
		return "SPS extension"
	case NalPrefix:
		return "prefix"
	case NalSubSps:
		return "subset SPS"
	case NalAuxiliarySlice:
		return "auxiliary slice"
	case NalExtenSlice:
		return "extension slice"
	}
	return "type " + strconv.Itoa(int(t))
}

// ZeroRefIdc reports whether nal_ref_idc is always 0 for this type.
func (t NALType) ZeroRefIdc() bool {
	switch t {
	case NalSei, NalAud, NalEndSequence, NalEndStream, NalFillerData:
		return true
	}
	return false
}

// IsVCL reports whether the type carries slice data.
func (t NALType) IsVCL() bool {
	return t >= NalSlice && t <= NalIdrSlice
}

// Profile profile_idc, Annex A.
type Profile uint8

// H264 Profile
const (
	ProfileBaseline                   Profile = 66
	ProfileMain                       Profile = 77
	ProfileExtended                   Profile = 88
	ProfileHigh                       Profile = 100
	ProfileHigh10                     Profile = 110
	ProfileHigh422                    Profile = 122
	ProfileHigh444                    Profile = 144
	ProfileHigh444Predictive          Profile = 244
	ProfileCavlc444Intra              Profile = 44
	ProfileScalableBaseline           Profile = 83
	ProfileScalableHigh               Profile = 86
	ProfileMultiviewHigh              Profile = 118
	ProfileStereoHigh                 Profile = 128
	ProfileMFCHigh                    Profile = 134
	ProfileMFCDepthHigh               Profile = 135
	ProfileMultiviewDepthHigh         Profile = 138
	ProfileEnhancedMultiviewDepthHigh Profile = 139
)

// HasChromaInfo reports whether an SPS of this profile codes
// chroma_format_idc, bit depths and scaling matrices.
func (p Profile) HasChromaInfo() bool {
	switch p {
	case ProfileHigh, ProfileHigh10, ProfileHigh422, ProfileHigh444,
		ProfileHigh444Predictive, ProfileCavlc444Intra,
		ProfileScalableBaseline, ProfileScalableHigh,
		ProfileMultiviewHigh, ProfileStereoHigh,
		ProfileMFCHigh, ProfileMFCDepthHigh,
		ProfileMultiviewDepthHigh, ProfileEnhancedMultiviewDepthHigh:
		return true
	}
	return false
}

// String returns the profile name.
func (p Profile) String() string {
	switch p {
	case ProfileBaseline:
		return "Baseline"
	case ProfileMain:
		return "Main"
	case ProfileExtended:
		return "Extended"
	case ProfileHigh:
		return "High"
	case ProfileHigh10:
		return "High 10"
	case ProfileHigh422:
		return "High 4:2:2"
	case ProfileHigh444:
		return "High 4:4:4"
	case ProfileHigh444Predictive:
		return "High 4:4:4 Predictive"
	case ProfileCavlc444Intra:
		return "CAVLC 4:4:4 Intra"
	case ProfileScalableBaseline:
		return "Scalable Baseline"
	case ProfileScalableHigh:
		return "Scalable High"
	case ProfileMultiviewHigh:
		return "Multiview High"
	case ProfileStereoHigh:
		return "Stereo High"
	case ProfileMFCHigh:
		return "MFC High"
	case ProfileMFCDepthHigh:
		return "MFC Depth High"
	case ProfileMultiviewDepthHigh:
		return "Multiview Depth High"
	case ProfileEnhancedMultiviewDepthHigh:
		return "Enhanced Multiview Depth High"
	}
	return "profile " + strconv.Itoa(int(p))
}

// 其他常量
const (
	// 7.4.2.1.1: seq_parameter_set_id is in [0, 31].
	MaxSpsCount = 32
	// 7.4.2.2: pic_parameter_set_id is in [0, 255].
	MaxPpsCount = 256

	// E.2.2: cpb_cnt_minus1 is in [0, 31].
	MaxCpbCnt = 32

	// AVCDecoderConfigurationRecord with no parameter sets.
	MinAVCCSize = 7
)

var startCode = []byte{0x00, 0x00, 0x00, 0x01}
