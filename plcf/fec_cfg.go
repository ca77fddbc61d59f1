package plcf

// FECConfig carries the parameters the forward-error-correction pipeline
// needs to build and decode a PCC/PDC pair for one PLCF, reusable across
// packets that share the same link configuration.
//
// Grounded on
// lib/include/dectnrp/sections_part3/derivative/fec_cfg.hpp (fec_cfg_t).
type FECConfig struct {
	PLCFType    uint32 // 1 for Type 1, 2 for Type 2
	ClosedLoop  bool
	Beamforming bool
	NTBBits     uint32
	NBPS        uint32
	RV          uint32
	G           uint32 // G = N_SS * N_PDC_subc * N_bps
	NetworkID   uint32
	Z           uint32
}
