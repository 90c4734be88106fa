// Package config holds the leg's JSON configuration: fixed mounting
// geometry, link lengths, home yaw and per-joint servo settings.
package config

import (
	"encoding/json"
	"errors"
)

// ServoConfig describes one joint's output pin and normalized travel.
// Center and the extents are fractions of the physical +/-1 envelope.
type ServoConfig struct {
	Pin         uint8   `json:"pin"`
	Center      float64 `json:"center"`
	LowerExtent float64 `json:"lower_extent"`
	UpperExtent float64 `json:"upper_extent"`
}

// LegConfig is the full configuration for a single leg.
type LegConfig struct {
	// Link lengths. Strictly positive, fixed for the life of the leg.
	HipToKnee  float64 `json:"hip_to_knee"`
	KneeToFoot float64 `json:"knee_to_foot"`

	// Mounting geometry: distance from the body center to the yaw servo,
	// and from the yaw servo out to the hip pivot.
	CenterToYaw float64 `json:"center_to_yaw"`
	YawToHip    float64 `json:"yaw_to_hip"`

	// HomeYawRadians is the direction the leg points at rest, measured
	// from the forward axis.
	HomeYawRadians float64 `json:"home_yaw_radians"`

	Yaw  ServoConfig `json:"yaw"`
	Hip  ServoConfig `json:"hip"`
	Knee ServoConfig `json:"knee"`
}

// LoadConfig parses a JSON configuration and returns a LegConfig with
// defaults applied.
func LoadConfig(jsonData []byte) (*LegConfig, error) {
	var cfg LegConfig
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration for the reference leg.
func Default() *LegConfig {
	cfg := &LegConfig{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in missing configuration values with the reference
// leg's dimensions and pin assignment
func applyDefaults(cfg *LegConfig) {
	if cfg.HipToKnee == 0 {
		cfg.HipToKnee = 2.563
	}
	if cfg.KneeToFoot == 0 {
		cfg.KneeToFoot = 5.467
	}
	if cfg.CenterToYaw == 0 {
		cfg.CenterToYaw = 2.0
	}
	if cfg.YawToHip == 0 {
		cfg.YawToHip = 0.563
	}

	// Servos on consecutive pins of adjacent PWM slices. Extents are the
	// mechanical envelopes: yaw +/-30 deg, hip +/-90 deg, knee +/-45 deg,
	// in normalized units.
	applyServoDefaults(&cfg.Yaw, 10, 1.0/3.0)
	applyServoDefaults(&cfg.Hip, 11, 1.0)
	applyServoDefaults(&cfg.Knee, 12, 0.5)
}

func applyServoDefaults(sc *ServoConfig, pin uint8, extent float64) {
	if sc.Pin == 0 {
		sc.Pin = pin
	}
	if sc.LowerExtent == 0 && sc.UpperExtent == 0 {
		sc.LowerExtent = extent
		sc.UpperExtent = extent
	}
}

// Validate rejects geometry the leg cannot be built from. Servo travel
// windows are checked again, with exact bounds, at servo construction.
func (cfg *LegConfig) Validate() error {
	if cfg.HipToKnee <= 0 {
		return errors.New("config: hip_to_knee must be positive")
	}
	if cfg.KneeToFoot <= 0 {
		return errors.New("config: knee_to_foot must be positive")
	}
	if cfg.CenterToYaw < 0 {
		return errors.New("config: center_to_yaw must not be negative")
	}
	if cfg.YawToHip < 0 {
		return errors.New("config: yaw_to_hip must not be negative")
	}
	if cfg.Yaw.Pin == cfg.Hip.Pin || cfg.Hip.Pin == cfg.Knee.Pin || cfg.Yaw.Pin == cfg.Knee.Pin {
		return errors.New("config: servo pins must be distinct")
	}
	return nil
}
