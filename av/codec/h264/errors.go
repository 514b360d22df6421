// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

import (
	"errors"
	"fmt"

	"github.com/cnotch/avcconf/utils/bits"
)

// 错误定义
var (
	ErrBitstreamTruncated = bits.ErrTruncated
	ErrSpsMalformed       = errors.New("sps malformed")
	ErrPpsMalformed       = errors.New("pps malformed")
	ErrNoSpsFound         = errors.New("no sps found")
	ErrNoPpsFound         = errors.New("no pps found")
	ErrRecordMalformed    = errors.New("avcC record malformed")
	ErrLengthOverflow     = errors.New("nal length overflow")
	ErrInvalidLengthSize  = errors.New("invalid nal length size")
	ErrInPlaceUnsafe      = errors.New("in-place rewrite needs 4-byte length fields")
	ErrNotAnnexB          = errors.New("buffer does not start with a start code")
	ErrUnsupportedCodec   = errors.New("codec is not h264")
)

// ParseError is returned by the SPS/PPS parsers. It matches, through
// errors.Is, both its Kind and the underlying cause.
type ParseError struct {
	Kind  error  // ErrSpsMalformed or ErrPpsMalformed
	Field string // syntax element being decoded
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Field)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Field, e.Err)
}

// Is .
func (e *ParseError) Is(target error) bool {
	return target == e.Kind
}

// Unwrap .
func (e *ParseError) Unwrap() error {
	return e.Err
}

type noParameterSets struct{}

func (noParameterSets) Error() string { return "no sps/pps found" }

func (noParameterSets) Is(target error) bool {
	return target == ErrNoSpsFound || target == ErrNoPpsFound
}

// errNoParameterSets satisfies errors.Is for both ErrNoSpsFound and ErrNoPpsFound.
var errNoParameterSets error = noParameterSets{}
