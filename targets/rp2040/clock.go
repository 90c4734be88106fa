//go:build rp2040

package main

import (
	"machine"

	"stilt/core"
)

// RP2040ClockDriver reports the system clock rate the chip actually booted
// with. Pulse timing is derived from this exactly once, so a clock change
// after calibration would silently mis-time every pulse; the RP2040 clock
// tree is fixed at boot, which is what makes the once-only derivation safe.
type RP2040ClockDriver struct{}

// ClockHz returns the measured system clock frequency in Hz.
func (RP2040ClockDriver) ClockHz() uint32 {
	return machine.CPUFrequency()
}
