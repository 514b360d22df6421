// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package flv

import (
	"encoding/binary"
	"io"
)

// flv 标记类型ID
const (
	TagTypeAudio    = 0x08
	TagTypeVideo    = 0x09
	TagTypeAmf0Data = 0x12 // 18
)

// flv Tag Header Size, total is 11Byte.
// 	filter + type 1Byte
// 	data size 	3Byte
// 	timestamp 	3Byte
// 	timestampEx 1Byte
// 	streamID 	3Byte always is 0
const (
	TagHeaderSize = 11
	maxDataSize   = 0xFFFFFF
)

// Tag FLV Tag
type Tag struct {
	Filter    byte   // 1 bits; 未加密文件中此值为 0
	TagType   byte   // 5 bits
	Timestamp uint32 // 毫秒，低 24 位 + 扩展 8 位
	StreamID  uint32 // 24 bits; 总为 0
	Data      []byte // Tag 包含的数据
}

// TagWriter 包装 WriteFlvTag 方法的接口
type TagWriter interface {
	WriteFlvTag(tag *Tag) error
}

// Size tag 的总大小（包括 Header + Data）
func (tag *Tag) Size() int {
	return TagHeaderSize + len(tag.Data)
}

// Read 根据规范的格式从 r 中读取 flv Tag。
func (tag *Tag) Read(r io.Reader) error {
	var header [TagHeaderSize + 1]byte
	if _, err := io.ReadFull(r, header[1:]); err != nil {
		return err
	}

	// header[1:] 为线上的 11 字节
	tag.Filter = (header[1] >> 5) & 0x01
	tag.TagType = header[1] & 0x1F
	dataSize := binary.BigEndian.Uint32(header[1:5]) & maxDataSize
	// timestamp(24) + timestampEx(8)
	ts := binary.BigEndian.Uint32(header[5:9])
	tag.Timestamp = ts>>8 | ts<<24
	tag.StreamID = binary.BigEndian.Uint32(header[8:12]) & maxDataSize

	tag.Data = make([]byte, dataSize)
	if _, err := io.ReadFull(r, tag.Data); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// Write 根据规范将 flv Tag 输出到 w，时间戳减去 base。
func (tag *Tag) Write(w io.Writer, base uint32) error {
	if len(tag.Data) > maxDataSize {
		return ErrTagTooLarge
	}

	var header [TagHeaderSize + 1]byte // header[1:] 为线上的 11 字节
	binary.BigEndian.PutUint32(header[1:5], uint32(len(tag.Data)))
	header[1] = (tag.Filter&0x1)<<5 | tag.TagType&0x1F
	ts := tag.Timestamp - base
	binary.BigEndian.PutUint32(header[5:9], ts<<8|ts>>24)
	header[9] = byte(tag.StreamID >> 16)
	header[10] = byte(tag.StreamID >> 8)
	header[11] = byte(tag.StreamID)

	if _, err := w.Write(header[1:]); err != nil {
		return err
	}
	_, err := w.Write(tag.Data)
	return err
}
