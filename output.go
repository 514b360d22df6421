// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cnotch/avcconf/av/codec"
	"github.com/cnotch/avcconf/av/codec/h264"
	"github.com/cnotch/avcconf/av/format/flv"
	"github.com/cnotch/avcconf/config"
	"github.com/cnotch/xlog"
)

const defaultFrameRate = 25

// writeOutput 将 annexb 码流按 format 转换后写入 path
func writeOutput(format, path string, nalLengthSize int, rep *report, annexb []byte, logger *xlog.Logger) error {
	if format == config.OutputNone {
		return nil
	}
	if path == "" {
		return errors.New("output format given without -output")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := convert(w, format, nalLengthSize, rep, annexb, logger); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	logger.Infof("wrote %s output to %s", format, path)
	return f.Sync()
}

func convert(w io.Writer, format string, nalLengthSize int, rep *report, annexb []byte, logger *xlog.Logger) error {
	var out []byte
	var err error

	switch format {
	case config.OutputAnnexB:
		out = annexb
	case config.OutputAVC:
		out, err = h264.AnnexBToAVC(append([]byte(nil), annexb...), nalLengthSize)
	case config.OutputAVCC:
		out, err = h264.BuildAVCC(nalLengthSize, rep.spsNal, rep.ppsNal)
	case config.OutputFLV:
		return muxFLV(w, rep, annexb, logger)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// muxFLV 按 sps 中的帧率为每个访问单元生成时间戳，没有帧率时取 25fps
func muxFLV(w io.Writer, rep *report, annexb []byte, logger *xlog.Logger) error {
	units, err := h264.SplitAccessUnits(annexb)
	if err != nil {
		return err
	}

	fps := rep.SPS.FrameRate()
	if fps <= 0 {
		fps = defaultFrameRate
	}
	interval := float64(time.Second) / fps

	if len(rep.ppsNal) == 0 {
		return fmt.Errorf("flv output: %w", h264.ErrNoPpsFound)
	}
	meta := &codec.VideoMeta{Codec: "H264", Sps: rep.spsNal, Pps: rep.ppsNal}
	if !h264.MetadataIsReady(meta) {
		return errors.New("flv output: sps and pps do not describe a picture")
	}

	fw := &flvWriter{}
	muxer, err := flv.NewMuxer(meta, fw, logger)
	if err != nil {
		return err
	}
	fw.w, err = flv.NewWriter(w, muxer.TypeFlags())
	if err != nil {
		muxer.Close()
		return err
	}

	for i, au := range units {
		ts := int64(float64(i) * interval)
		if err := muxer.WriteFrame(&codec.Frame{
			Framing:  codec.FramingAnnexB,
			KeyFrame: au.KeyFrame,
			Dts:      ts,
			Pts:      ts,
			Payload:  au.AnnexB(),
		}); err != nil {
			muxer.Close()
			return err
		}
	}
	if err := muxer.Close(); err != nil {
		return err
	}
	logger.Debugf("muxed %d access units at %.3f fps", len(units), fps)
	return fw.err
}

// flvWriter 记住第一个写错误，之后的 tag 被丢弃
type flvWriter struct {
	w   *flv.Writer
	err error
}

func (fw *flvWriter) WriteFlvTag(tag *flv.Tag) error {
	if fw.err == nil {
		fw.err = fw.w.WriteFlvTag(tag)
	}
	return fw.err
}
