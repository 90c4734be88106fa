package core

// Fixed-point helpers for the pulse generator's clock divider.
//
// The divider register is an unsigned 8.4 fixed-point value (8 integer bits,
// 4 fractional bits). The calibration math runs in a wider UQ28.4 format so
// a full clock frequency fits, then narrows to UQ8.4 for the register. Every
// conversion is checked: a value that does not fit is a configuration fault,
// never a silent wrap.

const fixedFracBits = 4

// Fixed32 is an unsigned 28.4 fixed-point value.
type Fixed32 uint32

// Fixed16 is an unsigned 8.4 fixed-point value, the divider register format.
type Fixed16 uint16

const (
	fixed32MaxInt uint32 = (1 << (32 - fixedFracBits)) - 1 // 2^28 - 1
	fixed16MaxRaw uint32 = (1 << 12) - 1                   // 8.4 -> 12 raw bits
)

// Fixed32FromUint converts an integer to UQ28.4. Fails when the integer
// needs more than 28 bits.
func Fixed32FromUint(v uint32) (Fixed32, bool) {
	if v > fixed32MaxInt {
		return 0, false
	}
	return Fixed32(v << fixedFracBits), true
}

// Fixed32FromRaw reinterprets raw register bits as UQ28.4.
func Fixed32FromRaw(raw uint32) Fixed32 {
	return Fixed32(raw)
}

// Raw returns the underlying register bits.
func (f Fixed32) Raw() uint32 {
	return uint32(f)
}

// Div divides two fixed-point values, flooring to the nearest representable
// 1/16. A 64-bit intermediate keeps the widened numerator exact.
func (f Fixed32) Div(d Fixed32) Fixed32 {
	num := uint64(f) << fixedFracBits
	return Fixed32(num / uint64(d))
}

// MulUint scales by an integer factor, reporting overflow.
func (f Fixed32) MulUint(v uint32) (Fixed32, bool) {
	prod := uint64(f) * uint64(v)
	if prod > (1<<32)-1 {
		return 0, false
	}
	return Fixed32(prod), true
}

// Shl shifts left, reporting overflow.
func (f Fixed32) Shl(n uint) (Fixed32, bool) {
	shifted := uint64(f) << n
	if shifted > (1<<32)-1 {
		return 0, false
	}
	return Fixed32(shifted), true
}

// AddRaw adds n raw bits (units of 1/16).
func (f Fixed32) AddRaw(n uint32) Fixed32 {
	return f + Fixed32(n)
}

// SubOne subtracts 1.0, flooring at zero.
func (f Fixed32) SubOne() Fixed32 {
	one := Fixed32(1 << fixedFracBits)
	if f < one {
		return 0
	}
	return f - one
}

// Floor truncates to the integer part.
func (f Fixed32) Floor() uint32 {
	return uint32(f) >> fixedFracBits
}

// Fixed16 narrows to the UQ8.4 register format, reporting values too large
// for 12 raw bits.
func (f Fixed32) Fixed16() (Fixed16, bool) {
	if uint32(f) > fixed16MaxRaw {
		return 0, false
	}
	return Fixed16(f), true
}

// Float64 converts to a float for the pulse-bound derivations and tests.
func (f Fixed32) Float64() float64 {
	return float64(f) / (1 << fixedFracBits)
}

// Raw returns the register bits of the narrow format.
func (f Fixed16) Raw() uint16 {
	return uint16(f)
}

// Float64 converts the narrow format to a float.
func (f Fixed16) Float64() float64 {
	return float64(f) / (1 << fixedFracBits)
}
