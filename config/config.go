// Package config loads the YAML configuration tree this daemon is given
// at startup into the structured parameters the rest of the module needs
// (sample rate, beacon period, AGC gain steps, RDC limits, antenna
// counts, HARQ pool sizes).
//
// Grounded on the teacher's config.go in spirit only (reading a
// structured configuration into typed fields before anything else
// starts); the teacher's own line-oriented keyword parser doesn't
// translate, so this instead follows the gopkg.in/yaml.v3 struct-tag
// idiom already pulled into the teacher's go.mod.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"gopkg.in/yaml.v3"

	"github.com/maxpenner/dectnrp-core/antvec"
	"github.com/maxpenner/dectnrp-core/cqi"
)

// fileName is the fixed configuration file name looked up inside the
// directory the CLI is given.
const fileName = "radio.yaml"

// ErrInvalidConfig is returned by Load when the parsed tree violates one
// of its own field constraints.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Radio is the full set of runtime parameters this module's components
// are constructed from.
type Radio struct {
	NetworkID          uint32 `yaml:"network_id"`
	ShortRadioDeviceID uint32 `yaml:"short_radio_device_id"`

	SamplesPerSecond int64 `yaml:"samples_per_second"`

	BeaconPeriodMs          int64 `yaml:"beacon_period_ms"`
	BeaconPrepareDurationMs int64 `yaml:"beacon_prepare_duration_ms"`

	NofAntennas int `yaml:"nof_antennas"`

	AGC AGC `yaml:"agc"`
	CQI CQI `yaml:"cqi"`
	RDC RDC `yaml:"rdc"`
	HARQ HARQ `yaml:"harq"`

	// Location is "lat,lng" in degrees, e.g. "52.5200,13.4050".
	Location string `yaml:"location"`

	// NofWorkers sizes the dispatch worker pool. Defaults to 1 if unset.
	NofWorkers int `yaml:"nof_workers"`
	// JobQueueCapacity bounds each worker's pending-job buffer. Defaults
	// to 64 if unset.
	JobQueueCapacity int `yaml:"job_queue_capacity"`
	// TelemetryPath, if non-empty, is where per-sync-event diagnostic
	// records are appended as JSONL. Telemetry is disabled if empty.
	TelemetryPath string `yaml:"telemetry_path"`
}

// AGC mirrors agc.Config plus the RX/TX-specific tuning parameters.
type AGC struct {
	GainStepMultipleDB float64 `yaml:"gain_step_multiple_db"`
	GainStepMinDB      float64 `yaml:"gain_step_min_db"`
	GainStepMaxDB      float64 `yaml:"gain_step_max_db"`

	RMSTarget              float64 `yaml:"rms_target"`
	SensitivityOffsetMaxDB float64 `yaml:"sensitivity_offset_max_db"`

	TXOFDMAmplitudeFactor float64 `yaml:"tx_ofdm_amplitude_factor"`
	TXRXDBmTarget         float64 `yaml:"tx_rx_dbm_target"`
}

// CQI mirrors cqi.New's parameters.
type CQI struct {
	MinMCS      int     `yaml:"min_mcs"`
	MaxMCS      int     `yaml:"max_mcs"`
	SNROffsetDB float64 `yaml:"snr_offset_db"`
}

// RDC mirrors plcf.Limits.
type RDC struct {
	PacketLengthMax uint32 `yaml:"packet_length_max"`
	MCSIndexMax     uint32 `yaml:"mcs_index_max"`
	NSSMax          uint32 `yaml:"nss_max"`
}

// HARQ sizes the TX/RX process pools and their soft-buffer capacity.
type HARQ struct {
	TXPoolSize         int `yaml:"tx_pool_size"`
	RXPoolSize         int `yaml:"rx_pool_size"`
	SoftBufferCapacity int `yaml:"soft_buffer_capacity"`
}

// Load reads fileName from dir and validates it. A missing or malformed
// file, or a field outside the range its owning component requires,
// returns a non-nil error wrapping ErrInvalidConfig.
func Load(dir string) (*Radio, error) {
	path := filepath.Join(dir, fileName)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var r Radio
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if r.NofWorkers == 0 {
		r.NofWorkers = 1
	}
	if r.JobQueueCapacity == 0 {
		r.JobQueueCapacity = 64
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// LatLng parses Location ("lat,lng" in degrees) into an s2.LatLng. An
// empty Location parses to the zero LatLng.
func (r *Radio) LatLng() (s2.LatLng, error) {
	if r.Location == "" {
		return s2.LatLng{}, nil
	}
	parts := strings.SplitN(r.Location, ",", 2)
	if len(parts) != 2 {
		return s2.LatLng{}, fmt.Errorf("%w: location must be \"lat,lng\"", ErrInvalidConfig)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return s2.LatLng{}, fmt.Errorf("%w: invalid location latitude: %w", ErrInvalidConfig, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return s2.LatLng{}, fmt.Errorf("%w: invalid location longitude: %w", ErrInvalidConfig, err)
	}
	return s2.LatLng{Lat: s1.Angle(degToRad(lat)), Lng: s1.Angle(degToRad(lng))}, nil
}

func degToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func (r *Radio) validate() error {
	if r.SamplesPerSecond <= 0 {
		return fmt.Errorf("%w: samples_per_second must be positive", ErrInvalidConfig)
	}
	if r.BeaconPeriodMs <= 0 {
		return fmt.Errorf("%w: beacon_period_ms must be positive", ErrInvalidConfig)
	}
	if r.BeaconPrepareDurationMs < 0 || r.BeaconPrepareDurationMs >= r.BeaconPeriodMs {
		return fmt.Errorf("%w: beacon_prepare_duration_ms must be in [0, beacon_period_ms)", ErrInvalidConfig)
	}
	if r.NofAntennas < 1 || r.NofAntennas > antvec.MaxAntennas {
		return fmt.Errorf("%w: nof_antennas out of [1,%d]", ErrInvalidConfig, antvec.MaxAntennas)
	}
	if r.CQI.MinMCS < 0 || r.CQI.MaxMCS > cqi.MaxMCS || r.CQI.MinMCS > r.CQI.MaxMCS {
		return fmt.Errorf("%w: cqi min/max_mcs out of range", ErrInvalidConfig)
	}
	if r.HARQ.TXPoolSize < 1 || r.HARQ.RXPoolSize < 1 {
		return fmt.Errorf("%w: harq pool sizes must be positive", ErrInvalidConfig)
	}
	if r.HARQ.SoftBufferCapacity < 1 {
		return fmt.Errorf("%w: harq soft_buffer_capacity must be positive", ErrInvalidConfig)
	}
	if r.NofWorkers < 1 {
		return fmt.Errorf("%w: nof_workers must be positive", ErrInvalidConfig)
	}
	if r.JobQueueCapacity < 1 {
		return fmt.Errorf("%w: job_queue_capacity must be positive", ErrInvalidConfig)
	}
	return nil
}
