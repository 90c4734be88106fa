//go:build rp2040

package main

import (
	"errors"
	"machine"
	"runtime/volatile"
	"unsafe"

	"stilt/core"
)

// RP2040 PWM peripheral memory map. Each of the 8 slices is a block of five
// registers; the calibrated divider/top pair is programmed directly so the
// hardware period is exactly (top + 1) * 2 * divider clock cycles in
// phase-correct mode.
const (
	pwmBase        = 0x40050000
	pwmSliceStride = 0x14
)

// CSR bits
const (
	csrEnable       = 1 << 0
	csrPhaseCorrect = 1 << 1
)

type pwmSliceRegs struct {
	CSR volatile.Register32 // control and status
	DIV volatile.Register32 // clock divider, UQ8.4 in bits [11:0]
	CTR volatile.Register32 // free-running counter
	CC  volatile.Register32 // compare A [15:0], compare B [31:16]
	TOP volatile.Register32 // counter wrap value
}

func sliceRegs(slice uint8) *pwmSliceRegs {
	return (*pwmSliceRegs)(unsafe.Pointer(uintptr(pwmBase) + uintptr(slice)*pwmSliceStride))
}

// pinSlice maps a GPIO pin to its PWM slice.
// RP2040: GPIO pin N maps to slice (N >> 1) & 0x7, channel N & 1.
func pinSlice(pin core.PulsePin) uint8 {
	return uint8((pin >> 1) & 0x7)
}

func pinChannel(pin core.PulsePin) uint8 {
	return uint8(pin & 1)
}

var errPinNotConfigured = errors.New("pwm: pin not configured for pulse output")

// RP2040PulseDriver implements core.PulseDriver on the RP2040's hardware
// PWM slices. Both channels of a slice share one divider/top pair, which is
// fine here: every servo runs from the same calibrated timing base.
type RP2040PulseDriver struct {
	// Track configured slices and pins
	slices map[uint8]bool
	pins   map[core.PulsePin]bool
}

// NewRP2040PulseDriver creates a new RP2040 pulse driver
func NewRP2040PulseDriver() *RP2040PulseDriver {
	return &RP2040PulseDriver{
		slices: make(map[uint8]bool),
		pins:   make(map[core.PulsePin]bool),
	}
}

// ConfigurePulseOutput routes a GPIO pin to its PWM slice and programs the
// slice with the calibrated timing base. The counter starts at zero with
// both compares at zero, so no pulse goes out until the first servo command.
func (d *RP2040PulseDriver) ConfigurePulseOutput(pin core.PulsePin, timing *core.PulseTiming) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinPWM})

	slice := pinSlice(pin)
	if !d.slices[slice] {
		regs := sliceRegs(slice)
		regs.CSR.Set(0)
		regs.DIV.Set(uint32(timing.Divider.Raw()))
		regs.TOP.Set(uint32(timing.TopCount))
		regs.CC.Set(0)
		regs.CTR.Set(0)
		regs.CSR.Set(csrPhaseCorrect | csrEnable)
		d.slices[slice] = true
	}
	d.pins[pin] = true
	return nil
}

// SetPulseWidth writes a compare value for the pin's channel. The update
// takes effect at the next counter wrap, so a pulse in flight is never
// truncated.
func (d *RP2040PulseDriver) SetPulseWidth(pin core.PulsePin, compare uint16) error {
	if !d.pins[pin] {
		return errPinNotConfigured
	}

	regs := sliceRegs(pinSlice(pin))
	cc := regs.CC.Get()
	if pinChannel(pin) == 0 {
		cc = (cc &^ 0x0000FFFF) | uint32(compare)
	} else {
		cc = (cc &^ 0xFFFF0000) | (uint32(compare) << 16)
	}
	regs.CC.Set(cc)
	return nil
}
