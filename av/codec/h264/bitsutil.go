// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

import (
	"github.com/cnotch/avcconf/utils/bits"
)

// fieldReader wraps a bits.Reader and keeps the first failure together with
// the syntax element that caused it. After a failure every read returns 0.
type fieldReader struct {
	r     *bits.Reader
	kind  error
	err   error
	field string
}

func newFieldReader(rbsp []byte, kind error) *fieldReader {
	return &fieldReader{r: bits.NewNALReader(rbsp), kind: kind}
}

func (fr *fieldReader) fail(field string, err error) {
	if fr.err == nil {
		fr.err, fr.field = err, field
	}
}

// result returns nil or the *ParseError of the first failure.
func (fr *fieldReader) result() error {
	if fr.err == nil {
		return nil
	}
	cause := fr.err
	if cause == fr.kind {
		cause = nil
	}
	return &ParseError{Kind: fr.kind, Field: fr.field, Err: cause}
}

func (fr *fieldReader) u(n int, field string) uint32 {
	if fr.err != nil {
		return 0
	}
	v, err := fr.r.ReadBits(n)
	if err != nil {
		fr.fail(field, err)
		return 0
	}
	return v
}

func (fr *fieldReader) u8(field string) uint8 {
	return uint8(fr.u(8, field))
}

func (fr *fieldReader) flag(field string) bool {
	return fr.u(1, field) == 1
}

func (fr *fieldReader) skip(n int, field string) {
	if fr.err != nil {
		return
	}
	if err := fr.r.Skip(n); err != nil {
		fr.fail(field, err)
	}
}

func (fr *fieldReader) ue(field string) uint32 {
	if fr.err != nil {
		return 0
	}
	v, err := fr.r.ReadUe()
	if err != nil {
		fr.fail(field, err)
		return 0
	}
	return v
}

// ueMax reads ue(v) and fails with the reader kind when the value exceeds max.
func (fr *fieldReader) ueMax(field string, max uint32) uint32 {
	v := fr.ue(field)
	if fr.err == nil && v > max {
		fr.fail(field, fr.kind)
		return 0
	}
	return v
}

func (fr *fieldReader) se(field string) int32 {
	if fr.err != nil {
		return 0
	}
	v, err := fr.r.ReadSe()
	if err != nil {
		fr.fail(field, err)
		return 0
	}
	return v
}
