//go:build rp2040

package pio

// PIO pulse backend using the tinygo-org/pio package. An alternative to
// the PWM slice driver for boards where the PWM slices are already
// spoken for: each output claims one state machine, so a single PIO
// block covers four servo channels.

import (
	"errors"
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"stilt/core"
)

// PIO program for a single servo pulse. Command word format:
//
//	Bits 0-15:  high ticks minus one
//	Bits 16-31: low ticks minus one
//
// Program flow:
//  1. Pull 32-bit command from FIFO (blocks until the next frame word)
//  2. Extract high ticks into X, low ticks into Y
//  3. Drive the pin high for X+1 ticks, then low for Y+1 ticks
//
// One loop iteration is one state machine cycle, so the clock divider
// below sets the tick length directly.
func buildPulseProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),        // 0: pull block
		asm.Out(rp2pio.OutDestX, 16).Encode(), // 1: out x, 16 (high ticks)
		asm.Out(rp2pio.OutDestY, 16).Encode(), // 2: out y, 16 (low ticks)
		asm.Set(rp2pio.SetDestPins, 1).Encode(),
		// high_loop:
		asm.Jmp(4, rp2pio.JmpXNZeroDec).Encode(), // 4: jmp x--, 4
		asm.Set(rp2pio.SetDestPins, 0).Encode(),
		// low_loop:
		asm.Jmp(6, rp2pio.JmpYNZeroDec).Encode(), // 6: jmp y--, 6
		// .wrap
	}
}

const pulsePIOOrigin = 0 // absolute jump targets require loading at 0

var errNoFreeStateMachine = errors.New("pio: no free state machine")
var errPinNotConfigured = errors.New("pio: pin not configured")

type pulseChannel struct {
	sm  rp2pio.StateMachine
	top uint16
}

// PIOPulseDriver generates servo pulses on PIO state machines. It
// implements the same driver contract as the PWM slice backend; a word
// is queued per frame, so callers are expected to refresh each output
// at the pulse rate.
type PIOPulseDriver struct {
	pio      *rp2pio.PIO
	offset   uint8
	loaded   bool
	nextSM   uint8
	channels map[core.PulsePin]*pulseChannel
}

// NewPIOPulseDriver creates a pulse driver on PIO0 or PIO1.
func NewPIOPulseDriver(pioNum uint8) *PIOPulseDriver {
	pioHW := rp2pio.PIO0
	if pioNum != 0 {
		pioHW = rp2pio.PIO1
	}
	return &PIOPulseDriver{
		pio:      pioHW,
		channels: make(map[core.PulsePin]*pulseChannel),
	}
}

// ConfigurePulseOutput claims a state machine for the pin and starts it
// with the tick length derived from the shared timing base. The divider
// is doubled relative to the slice driver so that one tick corresponds
// to one compare count of a full pulse frame.
func (d *PIOPulseDriver) ConfigurePulseOutput(pin core.PulsePin, timing *core.PulseTiming) error {
	if _, ok := d.channels[pin]; ok {
		return nil
	}
	if d.nextSM > 3 {
		return errNoFreeStateMachine
	}

	if !d.loaded {
		offset, err := d.pio.AddProgram(buildPulseProgram(), pulsePIOOrigin)
		if err != nil {
			return err
		}
		d.offset = offset
		d.loaded = true
	}

	sm := d.pio.StateMachine(d.nextSM)
	sm.TryClaim()

	mpin := machine.Pin(pin)
	mpin.Configure(machine.PinConfig{Mode: d.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(mpin, 1)
	cfg.SetOutShift(true, false, 32)
	program := buildPulseProgram()
	cfg.SetWrap(d.offset+uint8(len(program))-1, d.offset)

	// The doubled raw value still carries 4 fractional bits; the
	// fractional field of the state machine divider counts in 1/256.
	raw := uint32(timing.Divider.Raw()) << 1
	cfg.SetClkDivIntFrac(uint16(raw>>4), uint8((raw&0xF)<<4))

	sm.Init(d.offset, cfg)
	sm.SetPindirsConsecutive(mpin, 1, true)
	sm.SetPinsConsecutive(mpin, 1, false)
	sm.SetEnabled(true)

	d.channels[pin] = &pulseChannel{sm: sm, top: timing.TopCount}
	d.nextSM++
	return nil
}

// SetPulseWidth queues one pulse frame: high for compare ticks, low for
// the remainder of the frame. Queuing blocks only while the four-deep
// FIFO is full, which at the pulse rate resolves within one frame.
func (d *PIOPulseDriver) SetPulseWidth(pin core.PulsePin, compare uint16) error {
	ch, ok := d.channels[pin]
	if !ok {
		return errPinNotConfigured
	}

	high := uint32(compare)
	if high == 0 {
		high = 1 // the tick loop always runs at least once
	}
	low := uint32(ch.top) + 1 - high

	word := (high - 1) | ((low - 1) << 16)
	for ch.sm.IsTxFIFOFull() {
	}
	ch.sm.TxPut(word)
	return nil
}

// Stop halts every claimed state machine and drains pending frames.
func (d *PIOPulseDriver) Stop() {
	for _, ch := range d.channels {
		ch.sm.SetEnabled(false)
		ch.sm.ClearFIFOs()
		ch.sm.Restart()
	}
}
