package plcf

import "fmt"

// Type1Len is the packed size in bytes of every type-1 PLCF format.
const Type1Len = 5

// Type1Format0 is the type-1, header-format-0 PLCF: the beacon/broadcast
// header. PacketLength is stored on the wire as value-1 in 4 bits (1..16).
type Type1Format0 struct {
	PacketLengthType   uint32 // 0 or 1
	PacketLength       uint32 // 1..16
	ShortNetworkID     uint32 // 8 bits
	ShortRadioDeviceID uint32 // 16 bits
	TransmitPower      uint32 // 4 bits
	DFMCS              uint32 // 4 bits
}

// Info summarizes the fields radio device class limits are checked
// against. Type-1 carries no explicit spatial-stream count; it is always
// single-stream.
func (p Type1Format0) Info() Info {
	return Info{HeaderFormat: 0, PacketLength: p.PacketLength, DFMCS: p.DFMCS, NSS: 1}
}

// Pack encodes p into a 5-byte PLCF type-1 format-0 field.
func (p Type1Format0) Pack() ([]byte, error) {
	if p.PacketLength < 1 || p.PacketLength > 16 {
		return nil, fmt.Errorf("plcf: packet_length %d out of [1,16]", p.PacketLength)
	}
	if p.ShortNetworkID > 0xFF {
		return nil, fmt.Errorf("plcf: short_network_id %d exceeds 8 bits", p.ShortNetworkID)
	}
	if p.ShortRadioDeviceID > 0xFFFF {
		return nil, fmt.Errorf("plcf: short_radio_device_id %d exceeds 16 bits", p.ShortRadioDeviceID)
	}
	if p.TransmitPower > 0xF || p.DFMCS > 0xF {
		return nil, fmt.Errorf("plcf: transmit_power/dfmcs exceed 4 bits")
	}
	if p.PacketLengthType > 1 {
		return nil, fmt.Errorf("plcf: packet_length_type must be 0 or 1")
	}

	b := make([]byte, Type1Len)
	b[0] = byte(0<<5) | byte((p.PacketLengthType&0b1)<<4) | byte((p.PacketLength-1)&0xF)
	b[1] = byte(p.ShortNetworkID)
	b[2] = byte(p.ShortRadioDeviceID >> 8)
	b[3] = byte(p.ShortRadioDeviceID)
	b[4] = byte((p.TransmitPower&0xF)<<4) | byte(p.DFMCS&0xF)

	return b, nil
}

// UnpackType1Format0 decodes a 5-byte PLCF type-1 format-0 field. The
// caller is responsible for having already checked HeaderFormat == 0.
func UnpackType1Format0(b []byte) (Type1Format0, error) {
	if len(b) < Type1Len {
		return Type1Format0{}, fmt.Errorf("plcf: type-1 field too short: %d bytes", len(b))
	}

	return Type1Format0{
		PacketLengthType:   uint32(b[0]>>4) & 0b1,
		PacketLength:       uint32(b[0]&0xF) + 1,
		ShortNetworkID:     uint32(b[1]),
		ShortRadioDeviceID: uint32(b[2])<<8 | uint32(b[3]),
		TransmitPower:      uint32(b[4]>>4) & 0xF,
		DFMCS:              uint32(b[4]) & 0xF,
	}, nil
}
