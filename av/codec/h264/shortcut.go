// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

import "github.com/cnotch/avcconf/av/codec"

// MetadataIsReady reports whether vm carries both parameter sets, filling
// in the picture fields from the sps on first success.
func MetadataIsReady(vm *codec.VideoMeta) bool {
	if len(vm.Sps) == 0 || len(vm.Pps) == 0 {
		return false
	}

	if vm.Width == 0 {
		sps, err := DecodeSPS(vm.Sps)
		if err != nil {
			return false
		}
		vm.Width = sps.Width
		vm.Height = sps.Height
		vm.FixedFrameRate = sps.IsFixedFrameRate()
		vm.FrameRate = sps.FrameRate()
		vm.Profile = sps.Profile.String()
		vm.Level = sps.Level
	}
	return true
}

// NalType .
func NalType(nt byte) NALType {
	return NALType(nt & NalTypeBitmask)
}

// IsSps .
func IsSps(nt byte) bool {
	return NalType(nt) == NalSps
}

// IsPps .
func IsPps(nt byte) bool {
	return NalType(nt) == NalPps
}

// IsIdrSlice .
func IsIdrSlice(nt byte) bool {
	return NalType(nt) == NalIdrSlice
}

// IsFillerData .
func IsFillerData(nt byte) bool {
	return NalType(nt) == NalFillerData
}
