package core

// DebugWriter is a function type for writing diagnostic messages
type DebugWriter func(string)

// debugPrintln is the global diagnostic print function (set by platform code).
// Core logic never depends on it for normal operation: it is exercised only
// on non-recoverable paths and by drivers logging dropped frames.
var debugPrintln DebugWriter = func(s string) {} // No-op by default

// SetDebugWriter sets the platform-specific diagnostic output function
// This allows platforms to redirect output to UART, USB CDC, stdout, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// DebugPrintln writes a diagnostic message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugPrintln != nil {
		debugPrintln(msg)
	}
}

// ReportConfigError emits the full calibration context for a fatal
// configuration error. Drivers call this from their fail-stop loop, once per
// reporting period, so the failing values stay visible on the diagnostic
// stream for as long as the fault persists.
func ReportConfigError(clockHz uint32, err *ConfigError) {
	DebugPrintln("clock frequency: " + utoa(clockHz) + " Hz")
	DebugPrintln("fatal: " + err.Error())
}
