package core

// ClockDriver reports the system clock rate. Platform-specific code
// registers an implementation at boot; pulse timing calibration reads it
// exactly once.
type ClockDriver interface {
	// ClockHz returns the current system clock frequency in Hz.
	ClockHz() uint32
}

// Global singleton used by core code.
var clockDriver ClockDriver

// SetClockDriver is called by target-specific code to register its driver.
func SetClockDriver(d ClockDriver) {
	clockDriver = d
}

// MustClock returns the configured driver or panics if missing.
func MustClock() ClockDriver {
	if clockDriver == nil {
		panic("clock driver not configured")
	}
	return clockDriver
}
