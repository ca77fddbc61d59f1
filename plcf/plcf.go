// Package plcf decodes and encodes the physical-layer control field
// carried in the PCC, and bounds the decoded values against the radio
// device class's limits.
//
// Grounded on
// lib/include/dectnrp/sections_part4/physical_header_field/plcf_decoder.hpp
// and lib/src/sections_part4/physical_header_field/plcf_decoder.cpp; the
// per-format field layouts follow the byte layout fixed by DECT NR+ parts
// 3/4 as summarized for this system.
package plcf

import "errors"

// ErrUnknownHeaderFormat is returned when a PLCF's HeaderFormat field does
// not match any unpacker registered for its type.
var ErrUnknownHeaderFormat = errors.New("plcf: unknown header format")

// ErrRDCLimitExceeded is returned when a successfully unpacked PLCF
// violates the radio device class's PacketLength/MCS/N_SS limits.
var ErrRDCLimitExceeded = errors.New("plcf: radio device class limit exceeded")

// Info is the read-only summary common to every decoded PLCF, regardless
// of type or header format: the fields the radio device class limits are
// checked against.
type Info struct {
	HeaderFormat uint32
	PacketLength uint32
	DFMCS        uint32
	NSS          uint32
}

// headerFormat extracts the top 3 bits of the first byte: every PLCF, of
// either type, carries its header format there.
func headerFormat(b []byte) uint32 {
	return uint32(b[0]>>5) & 0b111
}
