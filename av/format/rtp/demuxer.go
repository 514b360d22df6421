// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/cnotch/avcconf/av/codec"
	"github.com/cnotch/avcconf/av/codec/h264"
	"github.com/cnotch/queue"
	"github.com/cnotch/xlog"
)

// ErrDemuxerClosed 解封装器已关闭
var ErrDemuxerClosed = errors.New("rtp: demuxer closed")

// closeMarker 排在最后，处理到它时协程退出
type closeMarker struct{}

// Demuxer 在独立协程中把视频通道的 RTP 包转换为帧
type Demuxer struct {
	mu        sync.Mutex // 保护 closed，且关闭标记之后不再入队
	closed    bool
	recvQueue *queue.SyncQueue
	vdp       *H264Depacketizer
	done      chan struct{}
	logger    *xlog.Logger
}

// NewDemuxer 创建 rtp.Packet 解封装处理器。
func NewDemuxer(video *codec.VideoMeta, fw codec.FrameWriter, logger *xlog.Logger) (*Demuxer, error) {
	if !h264.IsH264(video.Codec) {
		return nil, fmt.Errorf("rtp demuxer unsupport video codec type:%s", video.Codec)
	}

	demuxer := &Demuxer{
		recvQueue: queue.NewSyncQueue(),
		vdp:       NewH264Depacketizer(video, fw, logger),
		done:      make(chan struct{}),
		logger:    logger,
	}
	go demuxer.process()
	return demuxer, nil
}

func (demuxer *Demuxer) process() {
	defer func() {
		defer func() { // 避免 handler 再 panic
			recover()
		}()

		if r := recover(); r != nil {
			demuxer.logger.Errorf("rtp demuxer routine panic；r = %v \n %s", r, debug.Stack())
		}

		// 尽早通知GC，回收内存
		demuxer.recvQueue.Reset()
		close(demuxer.done)
	}()

	for {
		p := demuxer.recvQueue.Pop()
		if p == nil {
			continue
		}
		if _, ok := p.(closeMarker); ok {
			return
		}

		packet := p.(*Packet)
		if packet.Channel != ChannelVideo {
			continue
		}
		if err := demuxer.vdp.Depacketize(packet); err != nil {
			demuxer.logger.Errorf("rtp demuxer: depacketize rtp frame error :%s", err.Error())
		}
	}
}

// ParameterSets 返回已捕获的参数集，仅在 Close 返回后读取
func (demuxer *Demuxer) ParameterSets() *h264.ParameterSets {
	return demuxer.vdp.ParameterSets()
}

// Close 处理完已接收的包后返回
func (demuxer *Demuxer) Close() error {
	demuxer.mu.Lock()
	if demuxer.closed {
		demuxer.mu.Unlock()
		return nil
	}
	demuxer.closed = true
	demuxer.recvQueue.Push(closeMarker{})
	demuxer.recvQueue.Signal()
	demuxer.mu.Unlock()

	<-demuxer.done
	return nil
}

// WriteRtpPacket .
func (demuxer *Demuxer) WriteRtpPacket(packet *Packet) error {
	demuxer.mu.Lock()
	defer demuxer.mu.Unlock()
	if demuxer.closed {
		return ErrDemuxerClosed
	}
	demuxer.recvQueue.Push(packet)
	return nil
}
