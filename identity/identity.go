// Package identity defines the DECT NR+ network/radio-device identifiers
// shared by the contact list, the PLCF decoder, and the termination-point
// firmware.
//
// Grounded on lib/include/dectnrp/sections_part4/mac_architecture/identity.hpp.
package identity

// Identity is the full addressing tuple of a termination point.
type Identity struct {
	NetworkID          uint32
	ShortNetworkID     uint8 // low byte of NetworkID
	LongRadioDeviceID  uint32
	ShortRadioDeviceID uint16
}

// NewIdentity derives ShortNetworkID from NetworkID's low byte.
func NewIdentity(networkID, longID uint32, shortID uint16) Identity {
	return Identity{
		NetworkID:          networkID,
		ShortNetworkID:     uint8(networkID & 0xFF),
		LongRadioDeviceID:  longID,
		ShortRadioDeviceID: shortID,
	}
}

// Reserved long-ID values that may never identify a real termination point.
const (
	ReservedLongID0         uint32 = 0x00000000
	ReservedLongIDSecond    uint32 = 0xFFFFFFFE
	ReservedLongIDBroadcast uint32 = 0xFFFFFFFF
)

// ReservedShortID0 and ReservedShortIDBroadcast are the short-ID analogues.
const (
	ReservedShortID0         uint16 = 0x0000
	ReservedShortIDBroadcast uint16 = 0xFFFF
)

// IsReservedNetworkID reports whether id may never be used as a real
// NetworkID.
func IsReservedNetworkID(id uint32) bool {
	return id == 0
}

// IsReservedLongID reports whether id may never be used as a real
// LongRadioDeviceID.
func IsReservedLongID(id uint32) bool {
	return id == ReservedLongID0 || id == ReservedLongIDSecond || id == ReservedLongIDBroadcast
}

// IsReservedShortID reports whether id may never be used as a real
// ShortRadioDeviceID.
func IsReservedShortID(id uint16) bool {
	return id == ReservedShortID0 || id == ReservedShortIDBroadcast
}

// Valid reports whether none of the identity's fields hold a reserved
// value.
func (id Identity) Valid() bool {
	return !IsReservedNetworkID(id.NetworkID) &&
		!IsReservedLongID(id.LongRadioDeviceID) &&
		!IsReservedShortID(id.ShortRadioDeviceID)
}
