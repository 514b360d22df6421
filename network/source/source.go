// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package source 为解析器提供可定位的字节源（本地文件或 HTTP）。
package source

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cnotch/xlog"
)

// 错误定义
var (
	ErrUnknownSize  = errors.New("source: size is unknown")
	ErrNotSeekable  = errors.New("source: server does not support ranges")
	ErrNegativeSeek = errors.New("source: negative position")
)

// Source 可读、可定位且能报告大小的字节源
type Source interface {
	io.ReadSeeker
	io.Closer
	Size() (int64, error)
}

// Open opens uri as a local file, or as an HTTP resource when it starts
// with http:// or https://. timeout bounds each HTTP request; zero means none.
func Open(ctx context.Context, uri string, timeout time.Duration, logger *xlog.Logger) (Source, error) {
	lower := strings.ToLower(uri)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return openHTTP(ctx, uri, timeout, logger)
	}
	return openFile(uri)
}

type fileSource struct {
	*os.File
}

func openFile(path string) (*fileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &fileSource{File: f}, nil
}

func (s *fileSource) Size() (int64, error) {
	fi, err := s.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// maxPrealloc 按报告的大小预分配的上限，超过时按实际读取增长
const maxPrealloc = 64 << 20

// ReadAll 从头读取 s 的全部内容
func ReadAll(s Source) ([]byte, error) {
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if size, err := s.Size(); err == nil && size > 0 && size <= maxPrealloc {
		buf := make([]byte, size)
		n, err := io.ReadFull(s, buf)
		if err == io.ErrUnexpectedEOF {
			err = nil
		}
		return buf[:n], err
	}
	return io.ReadAll(s)
}
