package core

// PulsePin identifies a hardware pin capable of pulse output
type PulsePin uint8

// PulseDriver is the abstract pulse-generator interface that core code
// uses. Platform-specific implementations handle actual hardware control.
type PulseDriver interface {
	// ConfigurePulseOutput programs a pin's pulse generator with the shared
	// timing base (divider, top count). Called once per pin at boot, after
	// calibration.
	ConfigurePulseOutput(pin PulsePin, timing *PulseTiming) error

	// SetPulseWidth sets the compare value controlling the pulse width on a
	// configured pin. Errors are hardware-specific.
	SetPulseWidth(pin PulsePin, compare uint16) error
}

// Global singleton used by core code.
var pulseDriver PulseDriver

// SetPulseDriver is called by target-specific code to register its driver.
func SetPulseDriver(d PulseDriver) {
	pulseDriver = d
}

// MustPulse returns the configured driver or panics if missing.
func MustPulse() PulseDriver {
	if pulseDriver == nil {
		panic("pulse driver not configured")
	}
	return pulseDriver
}
