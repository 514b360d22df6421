// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package h264

import (
	"encoding/binary"
	"fmt"

	"github.com/cnotch/avcconf/utils"
)

// ConfigurationRecord AVCDecoderConfigurationRecord (avcC).
//
//	aligned(8) class AVCDecoderConfigurationRecord {
//	    unsigned int(8) configurationVersion = 1;
//	    unsigned int(8) AVCProfileIndication;
//	    unsigned int(8) profile_compatibility;
//	    unsigned int(8) AVCLevelIndication;
//	    bit(6) reserved = '111111'b;
//	    unsigned int(2) lengthSizeMinusOne;
//	    bit(3) reserved = '111'b;
//	    unsigned int(5) numOfSequenceParameterSets;
//	    for (i=0; i< numOfSequenceParameterSets; i++) {
//	        unsigned int(16) sequenceParameterSetLength ;
//	        bit(8*sequenceParameterSetLength) sequenceParameterSetNALUnit;
//	    }
//	    unsigned int(8) numOfPictureParameterSets;
//	    for (i=0; i< numOfPictureParameterSets; i++) {
//	        unsigned int(16) pictureParameterSetLength;
//	        bit(8*pictureParameterSetLength) pictureParameterSetNALUnit;
//	    }
//	}
type ConfigurationRecord struct {
	ConfigurationVersion byte
	AVCProfileIndication byte
	ProfileCompatibility byte
	AVCLevelIndication   byte
	LengthSizeMinusOne   byte
	SPS                  [][]byte
	PPS                  [][]byte
	// high profile 扩展字段等，原样保留
	Trailing []byte
}

// NewConfigurationRecord creates a record for one sps/pps pair. Start codes
// are removed from both.
func NewConfigurationRecord(nalLengthSize int, sps, pps []byte) (*ConfigurationRecord, error) {
	if !ValidLengthSize(nalLengthSize) {
		return nil, ErrInvalidLengthSize
	}
	sps = utils.RemoveNaluSeparator(sps)
	pps = utils.RemoveNaluSeparator(pps)
	if len(sps) == 0 {
		return nil, ErrNoSpsFound
	}
	if len(pps) == 0 {
		return nil, ErrNoPpsFound
	}
	if len(sps) < 4 {
		return nil, &ParseError{Kind: ErrSpsMalformed, Field: "profile_idc", Err: ErrBitstreamTruncated}
	}

	return &ConfigurationRecord{
		ConfigurationVersion: 1,
		AVCProfileIndication: sps[1],
		ProfileCompatibility: sps[2],
		AVCLevelIndication:   sps[3],
		LengthSizeMinusOne:   byte(nalLengthSize - 1),
		SPS:                  [][]byte{sps},
		PPS:                  [][]byte{pps},
	}, nil
}

// NalLengthSize returns lengthSizeMinusOne + 1.
func (record *ConfigurationRecord) NalLengthSize() int {
	return int(record.LengthSizeMinusOne&0x03) + 1
}

// Unmarshal .
// Note: Unmarshal not copy the data
func (record *ConfigurationRecord) Unmarshal(data []byte) error {
	var sps, pps [][]byte
	end, ok := walkAVCC(data, func(nal []byte, isSps bool) {
		if isSps {
			sps = append(sps, nal)
		} else {
			pps = append(pps, nal)
		}
	})
	if !ok {
		return ErrRecordMalformed
	}

	*record = ConfigurationRecord{
		ConfigurationVersion: data[0],
		AVCProfileIndication: data[1],
		ProfileCompatibility: data[2],
		AVCLevelIndication:   data[3],
		LengthSizeMinusOne:   data[4] & 0x03,
		SPS:                  sps,
		PPS:                  pps,
	}
	if end < len(data) {
		record.Trailing = data[end:]
	}
	return nil
}

// MarshalSize .
func (record *ConfigurationRecord) MarshalSize() int {
	size := 4 + 1 + 1 + 1 + len(record.Trailing)
	for _, sps := range record.SPS {
		size += 2 + len(sps)
	}
	for _, pps := range record.PPS {
		size += 2 + len(pps)
	}
	return size
}

// Marshal .
func (record *ConfigurationRecord) Marshal() ([]byte, error) {
	if len(record.SPS) > 0x1F || len(record.PPS) > 0xFF {
		return nil, fmt.Errorf("%d sps, %d pps: %w", len(record.SPS), len(record.PPS), ErrRecordMalformed)
	}
	if record.LengthSizeMinusOne&0x03 == 2 {
		return nil, ErrInvalidLengthSize
	}

	buff := make([]byte, record.MarshalSize())
	offset := 0

	buff[offset] = record.ConfigurationVersion
	offset++
	buff[offset] = record.AVCProfileIndication
	offset++
	buff[offset] = record.ProfileCompatibility
	offset++
	buff[offset] = record.AVCLevelIndication
	offset++

	// reserved(6) + lengthSizeMinusOne(2)
	buff[offset] = 0xFC | record.LengthSizeMinusOne&0x03
	offset++

	// reserved(3) + numOfSequenceParameterSets(5)
	buff[offset] = 0xE0 | byte(len(record.SPS))
	offset++
	for _, sps := range record.SPS {
		if len(sps) > 0xFFFF {
			return nil, fmt.Errorf("sps of %d bytes: %w", len(sps), ErrLengthOverflow)
		}
		binary.BigEndian.PutUint16(buff[offset:], uint16(len(sps)))
		offset += 2
		offset += copy(buff[offset:], sps)
	}

	buff[offset] = byte(len(record.PPS))
	offset++
	for _, pps := range record.PPS {
		if len(pps) > 0xFFFF {
			return nil, fmt.Errorf("pps of %d bytes: %w", len(pps), ErrLengthOverflow)
		}
		binary.BigEndian.PutUint16(buff[offset:], uint16(len(pps)))
		offset += 2
		offset += copy(buff[offset:], pps)
	}

	copy(buff[offset:], record.Trailing)
	return buff, nil
}

// AnnexB returns all SPS followed by all PPS, each behind a 4-byte start code.
func (record *ConfigurationRecord) AnnexB() []byte {
	size := 0
	for _, ps := range record.SPS {
		size += len(startCode) + len(ps)
	}
	for _, ps := range record.PPS {
		size += len(startCode) + len(ps)
	}

	out := make([]byte, 0, size)
	for _, ps := range record.SPS {
		out = append(out, startCode...)
		out = append(out, ps...)
	}
	for _, ps := range record.PPS {
		out = append(out, startCode...)
		out = append(out, ps...)
	}
	return out
}

func (record *ConfigurationRecord) String() string {
	return fmt.Sprintf("avcC{version: %d, profile: %s, compat: 0x%02x, level: %d, length size: %d, sps: %d, pps: %d}",
		record.ConfigurationVersion, Profile(record.AVCProfileIndication),
		record.ProfileCompatibility, record.AVCLevelIndication,
		record.NalLengthSize(), len(record.SPS), len(record.PPS))
}

// BuildAVCC builds an avcC record from one SPS and one PPS NAL unit.
// Profile, compatibility and level are copied from the SPS header bytes.
func BuildAVCC(nalLengthSize int, sps, pps []byte) ([]byte, error) {
	record, err := NewConfigurationRecord(nalLengthSize, sps, pps)
	if err != nil {
		return nil, err
	}
	return record.Marshal()
}

// DecomposeAVCC returns the parameter sets of an avcC record as a newly
// allocated Annex-B buffer, together with the declared NAL length size.
func DecomposeAVCC(record []byte) ([]byte, int, error) {
	var r ConfigurationRecord
	if err := r.Unmarshal(record); err != nil {
		return nil, 0, err
	}
	return r.AnnexB(), r.NalLengthSize(), nil
}
