// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sdp

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cnotch/avcconf/av/codec"
	"github.com/cnotch/avcconf/av/codec/h264"
	"github.com/cnotch/avcconf/utils"
	"github.com/cnotch/avcconf/utils/scan"
	"github.com/pixelbender/go-sdp/sdp"
)

// ErrNoVideo sdp 中没有视频媒体
var ErrNoVideo = errors.New("sdp: no video media")

const spropParameterSets = "sprop-parameter-sets"

// ParseMetadata fills video from the first video media of rawsdp.
// Parameter sets come from sprop-parameter-sets; when both are present the
// picture fields are decoded from the sps.
func ParseMetadata(rawsdp string, video *codec.VideoMeta) error {
	session, err := sdp.ParseString(rawsdp)
	if err != nil {
		return err
	}

	for _, media := range session.Media {
		if media.Type != "video" || len(media.Format) == 0 {
			continue
		}

		format := media.Format[0]
		video.Codec = format.Name
		for _, bw := range media.Bandwidth {
			if bw.Type == "AS" {
				video.DataRate = float64(bw.Value)
			}
		}
		if format.ClockRate > 0 {
			video.ClockRate = format.ClockRate
		}

		if !h264.IsH264(video.Codec) {
			return fmt.Errorf("sdp: video codec %q: %w", video.Codec, h264.ErrUnsupportedCodec)
		}
		video.Codec = "H264"

		for _, p := range format.Params {
			params := scan.Params(p)
			if sprop, ok := params[spropParameterSets]; ok {
				parseSpropParameterSets(sprop, video)
				break
			}
		}
		_ = h264.MetadataIsReady(video)
		return nil
	}
	return ErrNoVideo
}

// parseSpropParameterSets 按 NAL 类型而非位置识别 sps/pps，无法解码的项被忽略
func parseSpropParameterSets(s string, video *codec.VideoMeta) {
	for _, token := range scan.Comma.Tokens(s) {
		ps, err := base64.StdEncoding.DecodeString(token)
		if err != nil {
			continue
		}
		ps = utils.RemoveNaluSeparator(ps)
		if len(ps) == 0 {
			continue
		}

		switch {
		case h264.IsSps(ps[0]):
			if len(video.Sps) == 0 {
				video.Sps = ps
			}
		case h264.IsPps(ps[0]):
			if len(video.Pps) == 0 {
				video.Pps = ps
			}
		}
	}
}

// FormatParams returns the a=fmtp parameter list describing video.
func FormatParams(video *codec.VideoMeta) (string, error) {
	if len(video.Sps) < 4 {
		return "", h264.ErrNoSpsFound
	}
	if len(video.Pps) == 0 {
		return "", h264.ErrNoPpsFound
	}

	var b strings.Builder
	fmt.Fprintf(&b, "packetization-mode=1;profile-level-id=%02X%02X%02X;%s=",
		video.Sps[1], video.Sps[2], video.Sps[3], spropParameterSets)
	b.WriteString(base64.StdEncoding.EncodeToString(video.Sps))
	b.WriteByte(',')
	b.WriteString(base64.StdEncoding.EncodeToString(video.Pps))
	return b.String(), nil
}

// ExtraData returns the parameter sets of video as Annex-B when
// nalLengthSize is 0, otherwise as an avcC record.
func ExtraData(video *codec.VideoMeta, nalLengthSize int) ([]byte, error) {
	if nalLengthSize == 0 {
		if len(video.Sps) == 0 {
			return nil, h264.ErrNoSpsFound
		}
		out := append([]byte{0, 0, 0, 1}, video.Sps...)
		if len(video.Pps) > 0 {
			out = append(out, 0, 0, 0, 1)
			out = append(out, video.Pps...)
		}
		return out, nil
	}
	return h264.BuildAVCC(nalLengthSize, video.Sps, video.Pps)
}
