// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

// Frame 视频完整帧（访问单元）
type Frame struct {
	Framing  Framing // Payload 的分帧方式
	KeyFrame bool    // 含 IDR
	Dts      int64   // DTS，单位为 ns
	Pts      int64   // PTS，单位为 ns
	Payload  []byte  // 媒体数据载荷
}

// FrameWriter 包装 WriteFrame 方法的接口
type FrameWriter interface {
	WriteFrame(frame *Frame) error
}

// FrameWriterFunc 将函数适配为 FrameWriter
type FrameWriterFunc func(frame *Frame) error

// WriteFrame .
func (f FrameWriterFunc) WriteFrame(frame *Frame) error {
	return f(frame)
}
