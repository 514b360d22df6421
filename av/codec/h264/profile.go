// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

import (
	"strings"

	"github.com/cnotch/avcconf/av/codec"
)

// ProfileLevel is what a stream's configuration says about itself.
type ProfileLevel struct {
	Profile       Profile `json:"profile"`
	Compatibility uint8   `json:"compatibility"`
	Level         uint8   `json:"level"`
	// 0 表示起始码分隔（Annex-B）
	NalLengthSize int `json:"nal_length_size"`
}

// IsH264 reports whether name identifies an H.264 codec.
func IsH264(name string) bool {
	switch strings.ToLower(name) {
	case "h264", "avc", "avc1":
		return true
	}
	return false
}

// ResolveProfileLevel reads profile, level and NAL length size from the
// stream's extradata. For an avcC record the fixed header bytes are used;
// otherwise the first SPS is located and its leading bytes are read.
// FramingUnknown probes for avcC first.
func ResolveProfileLevel(f *codec.StreamFormat) (ProfileLevel, error) {
	if !IsH264(f.Codec) {
		return ProfileLevel{}, ErrUnsupportedCodec
	}

	framing := f.Framing
	if framing == codec.FramingUnknown {
		framing = codec.FramingAnnexB
		if IsAVCC(f.ExtraData) {
			framing = codec.FramingAVCC
		}
	}

	if framing == codec.FramingAVCC {
		rec := f.ExtraData
		if !IsAVCC(rec) {
			return ProfileLevel{}, ErrRecordMalformed
		}
		return ProfileLevel{
			Profile:       Profile(rec[1]),
			Compatibility: rec[2],
			Level:         rec[3],
			NalLengthSize: int(rec[4]&0x03) + 1,
		}, nil
	}

	sps, _, err := FindParameterSets(f.ExtraData)
	if err != nil && err != errNoParameterSets {
		return ProfileLevel{}, err
	}
	if sps == nil {
		return ProfileLevel{}, ErrNoSpsFound
	}
	if len(sps) < 4 {
		return ProfileLevel{}, &ParseError{Kind: ErrSpsMalformed, Field: "level_idc", Err: ErrBitstreamTruncated}
	}
	return ProfileLevel{
		Profile:       Profile(sps[1]),
		Compatibility: sps[2],
		Level:         sps[3],
	}, nil
}
