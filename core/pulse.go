package core

import (
	"math"
	"sync"
)

// Pulse timing calibration.
//
// The pulse generator's period in clock cycles is
// (top + 1) * 2 * divider (phase-correct counting doubles the sweep).
// One pulse must go out every PulsePeriodMS milliseconds, which is
// clockHz / PulseFreqHz clock cycles, so
// (top + 1) * 2 * divider = clockHz / PulseFreqHz.
// The top count is capped at 65_535, giving
// 65_536 * 2 * divider <= clockHz / PulseFreqHz, i.e.
// divider <= clockHz / (131_072 * PulseFreqHz).
// Fixed-point division floors, so that bound becomes the divider after a
// one-raw-bit upward adjustment (the hardware rounding convention, not a
// true ceiling). With the divider fixed, rearranging the first identity:
// top = clockHz / (PulseFreqHz * 2 * divider) - 1.

const (
	// PulsePeriodMS is the frame length expected by standard hobby servos.
	PulsePeriodMS = 20

	// PulseFreqHz is the pulse repetition rate derived from the frame length.
	PulseFreqHz = 1000 / PulsePeriodMS
)

// RadiansToServo converts a joint angle in radians to a normalized servo
// command. The servos have 180-degree travel (+/-90), so [-pi/2, +pi/2]
// maps to [-1, +1]: a factor of 2/pi.
const RadiansToServo = 2.0 / math.Pi

const maxTopCount = 65535

// PulseTiming is the shared timing base: the integer divider/top pair
// programmed into the pulse generator, plus the float pulse-width bounds
// every servo derives its compare values from. Immutable once computed.
type PulseTiming struct {
	ClockHz     uint32  // measured system clock rate
	PulseFreqHz uint16  // pulse repetition rate
	Divider     Fixed16 // UQ8.4 clock divider register value
	TopCount    uint16  // wrap value of the pulse counter

	// Pulse-width bounds in compare-value units. A standard servo expects
	// 1 ms..2 ms pulses inside the 20 ms frame, which is top/20..top/10.
	PulseMin    float64
	PulseMax    float64
	PulseCenter float64
	PulseRange  float64 // center-to-min, the +/-1 normalized swing
}

// ConfigError reports a clock or fixed-point quantity that exceeds its
// representable range during calibration. It indicates a violated hardware
// assumption: retrying cannot fix it, and commanding servos with a wrong
// timing base risks physical damage, so drivers must halt normal operation
// and enter a retry-free reporting state instead of proceeding.
type ConfigError struct {
	Quantity string // which derived quantity overflowed
	Value    uint64 // the offending value
	Limit    uint64 // the largest representable value
}

func (e *ConfigError) Error() string {
	return "pulse timing: " + e.Quantity + " too large: " +
		utoa64(e.Value) + " exceeds " + utoa64(e.Limit)
}

// CalibratePulseTiming derives the timing base from a measured clock
// frequency. Pure and deterministic: same inputs, same timing. Every
// intermediate is overflow-checked.
func CalibratePulseTiming(clockHz uint32, pulseFreqHz uint16) (*PulseTiming, *ConfigError) {
	clk, ok := Fixed32FromUint(clockHz)
	if !ok {
		return nil, &ConfigError{
			Quantity: "clock frequency",
			Value:    uint64(clockHz),
			Limit:    uint64(fixed32MaxInt),
		}
	}

	// divider = clockHz / (pulseFreqHz << 17), plus one raw bit.
	den := uint64(pulseFreqHz) << 17
	if den > uint64(fixed32MaxInt) {
		return nil, &ConfigError{
			Quantity: "divider intermediate",
			Value:    den,
			Limit:    uint64(fixed32MaxInt),
		}
	}
	denFixed, _ := Fixed32FromUint(uint32(den))
	divider := clk.Div(denFixed).AddRaw(1)

	dividerReg, ok := divider.Fixed16()
	if !ok {
		return nil, &ConfigError{
			Quantity: "divider",
			Value:    uint64(divider.Raw()),
			Limit:    uint64(fixed16MaxRaw),
		}
	}

	// top = clockHz / (pulseFreqHz * 2 * divider) - 1, floored.
	topDen, ok := divider.MulUint(uint32(pulseFreqHz))
	if ok {
		topDen, ok = topDen.Shl(1)
	}
	if !ok {
		return nil, &ConfigError{
			Quantity: "top intermediate",
			Value:    uint64(divider.Raw()) * uint64(pulseFreqHz) * 2,
			Limit:    uint64(^uint32(0)),
		}
	}
	top := clk.Div(topDen).SubOne().Floor()
	if top > maxTopCount {
		return nil, &ConfigError{
			Quantity: "top",
			Value:    uint64(top),
			Limit:    maxTopCount,
		}
	}

	pulseMin := float64(top) / 20.0
	pulseMax := float64(top) / 10.0
	pulseCenter := 0.5 * (pulseMin + pulseMax)

	return &PulseTiming{
		ClockHz:     clockHz,
		PulseFreqHz: pulseFreqHz,
		Divider:     dividerReg,
		TopCount:    uint16(top),
		PulseMin:    pulseMin,
		PulseMax:    pulseMax,
		PulseCenter: pulseCenter,
		PulseRange:  pulseCenter - pulseMin,
	}, nil
}

var (
	sharedTimingOnce sync.Once
	sharedTiming     *PulseTiming
	sharedTimingErr  *ConfigError
)

// SharedTiming computes the process-wide timing base on first call, reading
// the clock rate from the registered clock driver, and returns the identical
// cached instance (or cached failure) on every subsequent call. Concurrent
// first callers block until the single initializer finishes; there is no
// racing recomputation.
func SharedTiming() (*PulseTiming, *ConfigError) {
	sharedTimingOnce.Do(func() {
		clockHz := MustClock().ClockHz()
		sharedTiming, sharedTimingErr = CalibratePulseTiming(clockHz, PulseFreqHz)
	})
	return sharedTiming, sharedTimingErr
}

// resetSharedTiming clears the cache. Tests only.
func resetSharedTiming() {
	sharedTimingOnce = sync.Once{}
	sharedTiming = nil
	sharedTimingErr = nil
}
