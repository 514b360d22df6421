// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cnotch/xlog"
)

const userAgent = "avcconf/1.0"

// StatusError 服务端返回了非成功状态
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("source: HTTP %d error: %s", e.StatusCode, e.URL)
}

// httpSource 通过 Range 请求实现 Seek；定位后在下次 Read 时重新发起请求
type httpSource struct {
	ctx         context.Context
	client      *http.Client
	url         string
	body        io.ReadCloser
	offset      int64
	size        int64 // -1 未知
	contentType string
	logger      *xlog.Logger
}

func openHTTP(ctx context.Context, uri string, timeout time.Duration, logger *xlog.Logger) (*httpSource, error) {
	s := &httpSource{
		ctx:    ctx,
		client: &http.Client{Timeout: timeout},
		url:    uri,
		size:   -1,
		logger: logger.With(xlog.Fields(xlog.F("url", uri))),
	}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *httpSource) open() error {
	req, err := http.NewRequest(http.MethodGet, s.url, nil)
	if err != nil {
		return err
	}
	req = req.WithContext(s.ctx)
	req.Header.Set("User-Agent", userAgent)
	if s.offset > 0 {
		req.Header.Set("Range", "bytes="+strconv.FormatInt(s.offset, 10)+"-")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		s.logger.Errorf("HTTP %d error", resp.StatusCode)
		return &StatusError{URL: s.url, StatusCode: resp.StatusCode}
	}

	// 跟随重定向后的地址
	if final := resp.Request.URL.String(); final != s.url {
		s.logger.Infof("redirected to %s", final)
		s.url = final
	}

	switch resp.StatusCode {
	case http.StatusPartialContent:
		if total, ok := parseContentRange(resp.Header.Get("Content-Range")); ok {
			s.size = total
		}
	default:
		if s.offset > 0 {
			resp.Body.Close()
			return ErrNotSeekable
		}
		if resp.ContentLength >= 0 {
			s.size = resp.ContentLength
		}
	}

	s.contentType = resp.Header.Get("Content-Type")
	s.body = resp.Body
	return nil
}

// parseContentRange 解析 "bytes first-last/total"
func parseContentRange(v string) (int64, bool) {
	i := strings.LastIndexByte(v, '/')
	if i < 0 || v[i+1:] == "*" {
		return 0, false
	}
	total, err := strconv.ParseInt(v[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return total, true
}

func (s *httpSource) Read(p []byte) (int, error) {
	if s.size >= 0 && s.offset >= s.size {
		return 0, io.EOF
	}
	if s.body == nil {
		if err := s.open(); err != nil {
			return 0, err
		}
	}
	n, err := s.body.Read(p)
	s.offset += int64(n)
	return n, err
}

func (s *httpSource) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = s.offset + offset
	case io.SeekEnd:
		if s.size < 0 {
			return 0, ErrUnknownSize
		}
		pos = s.size + offset
	default:
		return 0, fmt.Errorf("source: invalid whence %d", whence)
	}
	if pos < 0 {
		return 0, ErrNegativeSeek
	}

	if pos != s.offset {
		s.closeBody()
		s.offset = pos
	}
	return pos, nil
}

func (s *httpSource) Size() (int64, error) {
	if s.size < 0 {
		return 0, ErrUnknownSize
	}
	return s.size, nil
}

// ContentType 返回最近一次响应的 Content-Type
func (s *httpSource) ContentType() string {
	return s.contentType
}

func (s *httpSource) closeBody() {
	if s.body != nil {
		s.body.Close()
		s.body = nil
	}
}

func (s *httpSource) Close() error {
	s.closeBody()
	return nil
}
