package plcf

import "fmt"

// Type2Len is the packed size in bytes of every type-2 PLCF format. Type 2
// carries a feedback payload alongside the header, so it is sized for the
// worst case (10 bytes) rather than type 1's 5.
const Type2Len = 10

// Type2Format0 is the type-2, header-format-0 PLCF: a unicast header with
// no feedback payload attached.
type Type2Format0 struct {
	PacketLengthType   uint32 // 0 or 1
	PacketLength       uint32 // 1..16
	ShortNetworkID     uint32 // 8 bits
	ShortRadioDeviceID uint32 // 16 bits
	TransmitPower      uint32 // 4 bits
	DFMCS              uint32 // 4 bits
	NSS                uint32 // 1..4 spatial streams
}

// Info summarizes the fields radio device class limits are checked against.
func (p Type2Format0) Info() Info {
	return Info{HeaderFormat: 0, PacketLength: p.PacketLength, DFMCS: p.DFMCS, NSS: p.NSS}
}

// Pack encodes p into a 10-byte PLCF type-2 format-0 field. Byte 5 carries
// N_SS-1 in its low two bits; bytes 6..9 are reserved and packed as zero
// since format 0 carries no feedback payload.
func (p Type2Format0) Pack() ([]byte, error) {
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
	if p.NSS < 1 || p.NSS > 4 {
		return nil, fmt.Errorf("plcf: n_ss %d out of [1,4]", p.NSS)
	}
	if p.PacketLengthType > 1 {
		return nil, fmt.Errorf("plcf: packet_length_type must be 0 or 1")
	}

	b := make([]byte, Type2Len)
	b[0] = byte(0<<5) | byte((p.PacketLengthType&0b1)<<4) | byte((p.PacketLength-1)&0xF)
	b[1] = byte(p.ShortNetworkID)
	b[2] = byte(p.ShortRadioDeviceID >> 8)
	b[3] = byte(p.ShortRadioDeviceID)
	b[4] = byte((p.TransmitPower&0xF)<<4) | byte(p.DFMCS&0xF)
	b[5] = byte((p.NSS - 1) & 0x3)

	return b, nil
}

// UnpackType2Format0 decodes a 10-byte PLCF type-2 format-0 field. The
// caller is responsible for having already checked HeaderFormat == 0.
func UnpackType2Format0(b []byte) (Type2Format0, error) {
	if len(b) < Type2Len {
		return Type2Format0{}, fmt.Errorf("plcf: type-2 field too short: %d bytes", len(b))
	}

	return Type2Format0{
		PacketLengthType:   uint32(b[0]>>4) & 0b1,
		PacketLength:       uint32(b[0]&0xF) + 1,
		ShortNetworkID:     uint32(b[1]),
		ShortRadioDeviceID: uint32(b[2])<<8 | uint32(b[3]),
		TransmitPower:      uint32(b[4]>>4) & 0xF,
		DFMCS:              uint32(b[4]) & 0xF,
		NSS:                uint32(b[5]&0x3) + 1,
	}, nil
}

// FeedbackFormat enumerates the six defined type-2 feedback payload shapes
// (CSI/HARQ feedback tagged payloads, format 1..6).
type FeedbackFormat uint32

const (
	FeedbackFormat1 FeedbackFormat = iota + 1
	FeedbackFormat2
	FeedbackFormat3
	FeedbackFormat4
	FeedbackFormat5
	FeedbackFormat6
)

// Type2Format1 is the type-2, header-format-1 PLCF: a unicast header with
// an attached feedback payload tagged by FeedbackFormat.
type Type2Format1 struct {
	PacketLengthType   uint32
	PacketLength       uint32
	ShortNetworkID     uint32
	ShortRadioDeviceID uint32
	TransmitPower      uint32
	DFMCS              uint32
	NSS                uint32
	Feedback           FeedbackFormat
	Payload            [4]byte // feedback payload, format-dependent interpretation
}

func (p Type2Format1) Info() Info {
	return Info{HeaderFormat: 1, PacketLength: p.PacketLength, DFMCS: p.DFMCS, NSS: p.NSS}
}

// Pack encodes p into a 10-byte PLCF type-2 format-1 field. Byte 5 carries
// N_SS and the feedback format tag; bytes 6..9 carry the feedback payload
// verbatim.
func (p Type2Format1) Pack() ([]byte, error) {
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
	if p.NSS < 1 || p.NSS > 4 {
		return nil, fmt.Errorf("plcf: n_ss %d out of [1,4]", p.NSS)
	}
	if p.Feedback < FeedbackFormat1 || p.Feedback > FeedbackFormat6 {
		return nil, fmt.Errorf("plcf: feedback format %d out of [1,6]", p.Feedback)
	}
	if p.PacketLengthType > 1 {
		return nil, fmt.Errorf("plcf: packet_length_type must be 0 or 1")
	}

	b := make([]byte, Type2Len)
	b[0] = byte(1<<5) | byte((p.PacketLengthType&0b1)<<4) | byte((p.PacketLength-1)&0xF)
	b[1] = byte(p.ShortNetworkID)
	b[2] = byte(p.ShortRadioDeviceID >> 8)
	b[3] = byte(p.ShortRadioDeviceID)
	b[4] = byte((p.TransmitPower&0xF)<<4) | byte(p.DFMCS&0xF)
	b[5] = byte((p.NSS-1)&0x3)<<3 | byte(p.Feedback)&0x7
	copy(b[6:10], p.Payload[:])

	return b, nil
}

// UnpackType2Format1 decodes a 10-byte PLCF type-2 format-1 field. The
// caller is responsible for having already checked HeaderFormat == 1.
func UnpackType2Format1(b []byte) (Type2Format1, error) {
	if len(b) < Type2Len {
		return Type2Format1{}, fmt.Errorf("plcf: type-2 field too short: %d bytes", len(b))
	}

	feedback := FeedbackFormat(b[5] & 0x7)
	if feedback < FeedbackFormat1 || feedback > FeedbackFormat6 {
		return Type2Format1{}, fmt.Errorf("plcf: unknown feedback format %d", feedback)
	}

	p := Type2Format1{
		PacketLengthType:   uint32(b[0]>>4) & 0b1,
		PacketLength:       uint32(b[0]&0xF) + 1,
		ShortNetworkID:     uint32(b[1]),
		ShortRadioDeviceID: uint32(b[2])<<8 | uint32(b[3]),
		TransmitPower:      uint32(b[4]>>4) & 0xF,
		DFMCS:              uint32(b[4]) & 0xF,
		NSS:                uint32(b[5]>>3)&0x3 + 1,
		Feedback:           feedback,
	}
	copy(p.Payload[:], b[6:10])

	return p, nil
}
