//go:build rp2040

package main

import (
	"machine"
	"math"
	"strconv"
	"time"

	"stilt/config"
	"stilt/core"
	"stilt/kinematics"
)

const (
	// One control tick per pulse frame
	mainLoopPeriodMS = core.PulsePeriodMS

	// Full sweep of the demo trajectory
	wavePeriodMS = 4000
)

func main() {
	// USB CDC comes up on its own; give the host a moment to enumerate so
	// early diagnostics are not lost.
	time.Sleep(2 * time.Second)

	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s + "\r\n"))
	})

	core.SetClockDriver(RP2040ClockDriver{})
	pulseDriver := NewRP2040PulseDriver()
	core.SetPulseDriver(pulseDriver)

	// One-time timing calibration. A failure here means a violated
	// hardware assumption: commanding servos with a wrong timing base
	// risks physical damage, so report forever instead of proceeding.
	timing, cfgErr := core.SharedTiming()
	if cfgErr != nil {
		failStop(cfgErr)
	}
	core.DebugPrintln("pulse timing: divider raw " + strconv.Itoa(int(timing.Divider.Raw())) +
		" top " + strconv.Itoa(int(timing.TopCount)))

	cfg := config.Default()
	for _, pin := range []uint8{cfg.Yaw.Pin, cfg.Hip.Pin, cfg.Knee.Pin} {
		if err := pulseDriver.ConfigurePulseOutput(core.PulsePin(pin), timing); err != nil {
			haltReporting("pulse output " + strconv.Itoa(int(pin)) + ": " + err.Error())
		}
	}

	leg, err := core.NewLeg(cfg, timing)
	if err != nil {
		haltReporting("leg init: " + err.Error())
	}

	// Demo loop: sweep the foot around a small circle ahead of the body at
	// roughly knee height. Per-tick errors are logged and the frame is
	// dropped; the loop continues at the next tick.
	counter := 0
	for {
		theta := 2 * math.Pi * float64(counter) / wavePeriodMS

		target := kinematics.Vec3{
			X: 6.0 + 0.8*math.Cos(theta),
			Y: 0.8 * math.Sin(theta),
			Z: -5.467 + 0.4*math.Sin(theta),
		}
		if err := leg.MoveFootTo(target); err != nil {
			core.DebugPrintln("dropped frame: " + err.Error())
		}

		time.Sleep(mainLoopPeriodMS * time.Millisecond)
		counter += mainLoopPeriodMS
		if counter >= wavePeriodMS {
			counter -= wavePeriodMS
		}
	}
}

// failStop is the non-recoverable calibration path: re-emit the failing
// values once per second, forever.
func failStop(cfgErr *core.ConfigError) {
	for {
		core.ReportConfigError(core.MustClock().ClockHz(), cfgErr)
		time.Sleep(time.Second)
	}
}

// haltReporting handles boot-time failures after calibration succeeded;
// same fail-stop policy, different payload.
func haltReporting(msg string) {
	for {
		core.DebugPrintln("fatal: " + msg)
		time.Sleep(time.Second)
	}
}
