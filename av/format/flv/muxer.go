// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flv

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/cnotch/avcconf/av/codec"
	"github.com/cnotch/avcconf/av/codec/h264"
	"github.com/cnotch/queue"
	"github.com/cnotch/xlog"
)

// ErrMuxerClosed 封装器已关闭
var ErrMuxerClosed = errors.New("flv: muxer closed")

type closeMarker struct{}

// Muxer flv muxer from codec.Frame(H264)
type Muxer struct {
	videoMeta *codec.VideoMeta
	params    h264.ParameterSets
	seqHeader bool
	recvQueue *queue.SyncQueue
	tagWriter TagWriter
	mu        sync.Mutex // 保护 closed，且关闭标记之后不再入队
	closed    bool
	done      chan struct{}

	logger *xlog.Logger // 日志对象
}

// NewMuxer .
func NewMuxer(videoMeta *codec.VideoMeta, tagWriter TagWriter, logger *xlog.Logger) (*Muxer, error) {
	if !h264.IsH264(videoMeta.Codec) {
		return nil, fmt.Errorf("flv muxer unsupport video codec type:%s", videoMeta.Codec)
	}

	muxer := &Muxer{
		recvQueue: queue.NewSyncQueue(),
		videoMeta: videoMeta,
		tagWriter: tagWriter,
		done:      make(chan struct{}),
		logger:    logger,
	}
	for _, ps := range [][]byte{videoMeta.Sps, videoMeta.Pps} {
		if len(ps) > 0 {
			if err := muxer.params.Put(ps); err != nil {
				logger.Warnf("flvmuxer: ignore parameter set from metadata: %v", err)
			}
		}
	}

	go muxer.process()
	return muxer, nil
}

// WriteFrame .
func (muxer *Muxer) WriteFrame(frame *codec.Frame) error {
	muxer.mu.Lock()
	defer muxer.mu.Unlock()
	if muxer.closed {
		return ErrMuxerClosed
	}
	muxer.recvQueue.Push(frame)
	return nil
}

// Close 输出完已接收的帧后返回
func (muxer *Muxer) Close() error {
	muxer.mu.Lock()
	if muxer.closed {
		muxer.mu.Unlock()
		return nil
	}
	muxer.closed = true
	muxer.recvQueue.Push(closeMarker{})
	muxer.recvQueue.Signal()
	muxer.mu.Unlock()

	<-muxer.done
	return nil
}

// TypeFlags 返回 flv header 中的 TypeFlags
func (muxer *Muxer) TypeFlags() byte {
	return TypeFlagsVideo
}

func (muxer *Muxer) process() {
	defer func() {
		defer func() { // 避免 handler 再 panic
			recover()
		}()

		if r := recover(); r != nil {
			muxer.logger.Errorf("flvmuxer routine panic；r = %v \n %s", r, debug.Stack())
		}

		// 尽早通知GC，回收内存
		muxer.recvQueue.Reset()
		close(muxer.done)
	}()

	for {
		f := muxer.recvQueue.Pop()
		if f == nil {
			continue
		}
		if _, ok := f.(closeMarker); ok {
			return
		}

		if err := muxer.muxVideoTag(f.(*codec.Frame)); err != nil {
			muxer.logger.Errorf("flvmuxer: muxVideoTag error - %s", err.Error())
		}
	}
}

func (muxer *Muxer) muxVideoTag(frame *codec.Frame) error {
	payload := frame.Payload
	if frame.Framing == codec.FramingAVCC {
		// 长度前缀固定为 4 字节
		annexb, err := h264.AVCToAnnexB(append([]byte(nil), payload...), 4)
		if err != nil {
			return err
		}
		payload = annexb
	} else {
		payload = append([]byte(nil), payload...)
	}

	if !muxer.seqHeader {
		if err := muxer.params.PutAnnexB(payload); err != nil {
			muxer.logger.Warnf("flvmuxer: bad parameter set: %v", err)
		}
		if err := muxer.muxSequenceHeader(); err != nil {
			muxer.logger.Debugf("flvmuxer: drop frame before sequence header: %v", err)
			return nil
		}
	}

	videoData, err := NewAVCNALUs(payload, int32((frame.Pts-frame.Dts)/int64(time.Millisecond)))
	if err != nil {
		return err
	}
	if frame.KeyFrame {
		videoData.FrameType = FrameTypeKeyFrame
	}
	return muxer.writeVideoData(videoData, uint32(frame.Dts/int64(time.Millisecond)))
}

func (muxer *Muxer) muxSequenceHeader() error {
	record, err := muxer.params.AVCC(4)
	if err != nil {
		return err
	}
	muxer.seqHeader = true

	videoData := &VideoData{
		FrameType:     FrameTypeKeyFrame,
		CodecID:       CodecIDAVC,
		AVCPacketType: AVCPacketTypeSequenceHeader,
		Body:          record,
	}
	return muxer.writeVideoData(videoData, 0)
}

func (muxer *Muxer) writeVideoData(videoData *VideoData, timestamp uint32) error {
	data, err := videoData.Marshal()
	if err != nil {
		return err
	}
	tag := &Tag{
		TagType:   TagTypeVideo,
		Timestamp: timestamp,
		Data:      data,
	}
	return muxer.tagWriter.WriteFlvTag(tag)
}
