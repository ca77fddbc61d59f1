package plcf

// PLCF types. Type-1 and type-2 have disjoint header-format enumerations
// and are tracked independently, hence the bitmask returned by
// HasAnyPLCF.
const (
	Type1 uint32 = 1
	Type2 uint32 = 2
)

// Limits holds one radio device class's bound on a decoded PLCF's
// PacketLength, MCS index, and spatial-stream count.
type Limits struct {
	PacketLengthMax uint32
	MCSIndexMax     uint32
	NSSMax          uint32
}

// Decoder extracts type-1/type-2 PLCFs from their wire bytes, unpacking the
// format named by each PLCF's own HeaderFormat field and discarding any
// result that exceeds the configured radio device class limits.
type Decoder struct {
	limits Limits

	type1Info *Info
	type1     Type1Format0

	type2Info *Info
	type2Fmt0 Type2Format0
	type2Fmt1 Type2Format1
}

// NewDecoder constructs a Decoder bound to limits.
func NewDecoder(limits Limits) *Decoder {
	return &Decoder{limits: limits}
}

// SetConfiguration resets both type-1 and type-2 decoded state to
// undefined, and may update the radio device class limits checked against.
func (d *Decoder) SetConfiguration(limits Limits) {
	d.limits = limits
	d.type1Info = nil
	d.type2Info = nil
}

// DecodeAndRDCCheck implements the type/network-id-agnostic PLCF decode
// algorithm: extract HeaderFormat from the first byte, dispatch to the
// format-specific unpacker, and reject the result against the configured
// radio device class limits. On any failure the corresponding type's
// decoded state remains (or is reset to) undefined and an error is
// returned: ErrUnknownHeaderFormat, ErrRDCLimitExceeded, or the unpacker's
// own error for a malformed field; callers treat this as "no valid PLCF of
// that type".
func (d *Decoder) DecodeAndRDCCheck(plcfType uint32, b []byte) error {
	if len(b) == 0 {
		return ErrUnknownHeaderFormat
	}
	hf := headerFormat(b)

	switch plcfType {
	case Type1:
		d.type1Info = nil
		if hf != 0 {
			return ErrUnknownHeaderFormat
		}
		p, err := UnpackType1Format0(b)
		if err != nil {
			return err
		}
		info := p.Info()
		if info.PacketLength > d.limits.PacketLengthMax || info.DFMCS > d.limits.MCSIndexMax || info.NSS > d.limits.NSSMax {
			return ErrRDCLimitExceeded
		}
		d.type1 = p
		d.type1Info = &info
		return nil

	case Type2:
		d.type2Info = nil
		switch hf {
		case 0:
			p, err := UnpackType2Format0(b)
			if err != nil {
				return err
			}
			info := p.Info()
			if info.PacketLength > d.limits.PacketLengthMax || info.DFMCS > d.limits.MCSIndexMax || info.NSS > d.limits.NSSMax {
				return ErrRDCLimitExceeded
			}
			d.type2Fmt0 = p
			d.type2Info = &info
			return nil
		case 1:
			p, err := UnpackType2Format1(b)
			if err != nil {
				return err
			}
			info := p.Info()
			if info.PacketLength > d.limits.PacketLengthMax || info.DFMCS > d.limits.MCSIndexMax || info.NSS > d.limits.NSSMax {
				return ErrRDCLimitExceeded
			}
			d.type2Fmt1 = p
			d.type2Info = &info
			return nil
		default:
			return ErrUnknownHeaderFormat
		}

	default:
		return ErrUnknownHeaderFormat
	}
}

// HasAnyPLCF returns a bitmask of which types currently hold a successfully
// decoded PLCF: bit 0 (value 1) for type 1, bit 1 (value 2) for type 2.
func (d *Decoder) HasAnyPLCF() uint32 {
	var mask uint32
	if d.type1Info != nil {
		mask |= Type1
	}
	if d.type2Info != nil {
		mask |= Type2
	}
	return mask
}

// GetPLCFBase returns the read-only Info summary for the given type, or
// false if that type has no currently decoded PLCF.
func (d *Decoder) GetPLCFBase(plcfType uint32) (Info, bool) {
	switch plcfType {
	case Type1:
		if d.type1Info == nil {
			return Info{}, false
		}
		return *d.type1Info, true
	case Type2:
		if d.type2Info == nil {
			return Info{}, false
		}
		return *d.type2Info, true
	default:
		return Info{}, false
	}
}

// GetType1 returns the fully decoded type-1 PLCF, or false if none is
// currently decoded.
func (d *Decoder) GetType1() (Type1Format0, bool) {
	if d.type1Info == nil {
		return Type1Format0{}, false
	}
	return d.type1, true
}
