// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

import (
	"github.com/cnotch/avcconf/utils"
)

type storedSPS struct {
	nal []byte
	sps *SPS
}

type storedPPS struct {
	nal []byte
	pps *PPS
}

// ParameterSets 按 id 保存当前有效的 sps/pps。
// 非并发安全，由调用方串行访问。
type ParameterSets struct {
	sps [MaxSpsCount]*storedSPS
	pps [MaxPpsCount]*storedPPS
}

// Put decodes nal and stores a copy of it under its id, replacing any
// previous set with the same id. Types other than SPS and PPS are ignored.
func (ps *ParameterSets) Put(nal []byte) error {
	nal = utils.RemoveNaluSeparator(nal)
	if len(nal) == 0 {
		return nil
	}

	switch NALType(nal[0] & NalTypeBitmask) {
	case NalSps:
		sps, err := DecodeSPS(nal)
		if err != nil {
			return err
		}
		ps.sps[sps.ID] = &storedSPS{nal: append([]byte(nil), nal...), sps: sps}
	case NalPps:
		pps, err := DecodePPS(nal)
		if err != nil {
			return err
		}
		ps.pps[pps.ID] = &storedPPS{nal: append([]byte(nil), nal...), pps: pps}
	}
	return nil
}

// PutAnnexB stores every parameter set found in buf.
func (ps *ParameterSets) PutAnnexB(buf []byte) error {
	s := NewScanner(buf)
	for s.Next() {
		if err := ps.Put(s.NAL().Payload); err != nil {
			return err
		}
	}
	return s.Err()
}

// SPS returns the decoded sps with id and its NAL bytes, or nil.
func (ps *ParameterSets) SPS(id uint8) (*SPS, []byte) {
	if int(id) >= MaxSpsCount || ps.sps[id] == nil {
		return nil, nil
	}
	return ps.sps[id].sps, ps.sps[id].nal
}

// PPS returns the decoded pps with id and its NAL bytes, or nil.
func (ps *ParameterSets) PPS(id uint8) (*PPS, []byte) {
	if ps.pps[id] == nil {
		return nil, nil
	}
	return ps.pps[id].pps, ps.pps[id].nal
}

// ActiveSPSForPPS returns the sps referenced by the pps with ppsID.
func (ps *ParameterSets) ActiveSPSForPPS(ppsID uint8) *SPS {
	pps, _ := ps.PPS(ppsID)
	if pps == nil {
		return nil
	}
	sps, _ := ps.SPS(pps.SPSID)
	return sps
}

// AVCC builds an avcC record from the lowest numbered pps and the sps it references.
func (ps *ParameterSets) AVCC(nalLengthSize int) ([]byte, error) {
	for _, p := range ps.pps {
		if p == nil {
			continue
		}
		_, spsNal := ps.SPS(p.pps.SPSID)
		if spsNal == nil {
			return nil, ErrNoSpsFound
		}
		return BuildAVCC(nalLengthSize, spsNal, p.nal)
	}

	for _, s := range ps.sps {
		if s != nil {
			return nil, ErrNoPpsFound
		}
	}
	return nil, errNoParameterSets
}
