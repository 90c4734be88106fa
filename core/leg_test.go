package core

import (
	"errors"
	"math"
	"testing"

	"stilt/config"
	"stilt/kinematics"
)

func testLeg(t *testing.T, driver *mockPulseDriver) (*Leg, *config.LegConfig, *PulseTiming) {
	t.Helper()
	timing := testTiming(t)
	SetPulseDriver(driver)

	cfg := config.Default()
	leg, err := NewLeg(cfg, timing)
	if err != nil {
		t.Fatalf("NewLeg: %v", err)
	}
	return leg, cfg, timing
}

func TestMoveFootToStraightAhead(t *testing.T) {
	driver := newMockPulseDriver()
	leg, cfg, timing := testLeg(t, driver)

	// Foot directly ahead at knee height: zero yaw, hip and knee inside
	// their envelopes.
	if err := leg.MoveFootTo(kinematics.Vec3{X: 8.0, Y: 0, Z: -5.467}); err != nil {
		t.Fatalf("MoveFootTo: %v", err)
	}

	if len(driver.writes) != 3 {
		t.Fatalf("%d writes, want 3", len(driver.writes))
	}
	// Commands go out yaw, hip, knee in that order.
	wantPins := []PulsePin{PulsePin(cfg.Yaw.Pin), PulsePin(cfg.Hip.Pin), PulsePin(cfg.Knee.Pin)}
	for i, want := range wantPins {
		if driver.writes[i].pin != want {
			t.Errorf("write %d went to pin %d, want %d", i, driver.writes[i].pin, want)
		}
	}

	// A dead-ahead target on a zero-home leg commands exactly center yaw.
	if got, want := driver.writes[0].compare, uint16(timing.PulseCenter); got != want {
		t.Errorf("yaw compare = %d, want center %d", got, want)
	}

	// All three pulse widths stay inside the 1..2 ms servo band.
	for i, w := range driver.writes {
		if float64(w.compare) < timing.PulseMin-1 || float64(w.compare) > timing.PulseMax {
			t.Errorf("write %d compare %d outside pulse bounds [%v, %v]",
				i, w.compare, timing.PulseMin, timing.PulseMax)
		}
	}
}

func TestMoveFootToMatchesSolver(t *testing.T) {
	driver := newMockPulseDriver()
	leg, cfg, timing := testLeg(t, driver)

	target := kinematics.Vec3{X: 8.0, Y: 0, Z: -5.467}
	if err := leg.MoveFootTo(target); err != nil {
		t.Fatalf("MoveFootTo: %v", err)
	}

	// Reproduce the leg's 2-D reduction and check the servo writes agree
	// with the solver's angles scaled by 2/pi.
	solver, err := kinematics.NewPlanar2Link(cfg.HipToKnee, cfg.KneeToFoot)
	if err != nil {
		t.Fatal(err)
	}
	planar := (target.X - cfg.CenterToYaw) - cfg.YawToHip
	angles, err := solver.Solve(kinematics.Vec2{X: planar, Y: target.Z})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if math.Abs(angles.Hip) > 0.5*math.Pi {
		t.Errorf("hip angle %v outside +/- pi/2", angles.Hip)
	}
	if math.Abs(angles.Knee) > 0.25*math.Pi {
		t.Errorf("knee angle %v outside +/- pi/4", angles.Knee)
	}

	wantHip := uint16(timing.PulseCenter + RadiansToServo*angles.Hip*timing.PulseRange)
	wantKnee := uint16(timing.PulseCenter + RadiansToServo*angles.Knee*timing.PulseRange)
	if driver.writes[1].compare != wantHip {
		t.Errorf("hip compare = %d, want %d", driver.writes[1].compare, wantHip)
	}
	if driver.writes[2].compare != wantKnee {
		t.Errorf("knee compare = %d, want %d", driver.writes[2].compare, wantKnee)
	}
}

func TestMoveFootToUnreachable(t *testing.T) {
	driver := newMockPulseDriver()
	leg, _, _ := testLeg(t, driver)

	err := leg.MoveFootTo(kinematics.Vec3{X: 12.0, Y: 0, Z: 0})
	if err == nil {
		t.Fatal("expected unreachable error")
	}
	var unreachable *kinematics.Unreachable
	if !errors.As(err, &unreachable) {
		t.Fatalf("error %v does not wrap Unreachable", err)
	}
	if unreachable.MaxReach >= unreachable.Distance {
		t.Errorf("reported reach %v not below distance %v", unreachable.MaxReach, unreachable.Distance)
	}

	// Best-effort: the yaw command preceding the solve is retained.
	if len(driver.writes) != 1 {
		t.Fatalf("%d writes, want only the yaw command", len(driver.writes))
	}
}

func TestMoveFootToPartialFailureRetainsEarlierWrites(t *testing.T) {
	driver := newMockPulseDriver()
	leg, cfg, _ := testLeg(t, driver)
	hwErr := errors.New("output stalled")
	driver.failPins[PulsePin(cfg.Knee.Pin)] = hwErr

	err := leg.MoveFootTo(kinematics.Vec3{X: 8.0, Y: 0, Z: -5.467})
	if err == nil {
		t.Fatal("expected knee failure")
	}
	var jointErr *JointError
	if !errors.As(err, &jointErr) {
		t.Fatalf("error %v is not a JointError", err)
	}
	if jointErr.Joint != JointKnee {
		t.Errorf("failure tagged %v, want knee", jointErr.Joint)
	}
	if jointErr.Err.Hardware != hwErr {
		t.Errorf("failure payload %v, want the hardware error", jointErr.Err.Hardware)
	}

	// No rollback: yaw and hip stay where they were commanded.
	if len(driver.writes) != 2 {
		t.Fatalf("%d writes retained, want 2", len(driver.writes))
	}
	if driver.writes[0].pin != PulsePin(cfg.Yaw.Pin) || driver.writes[1].pin != PulsePin(cfg.Hip.Pin) {
		t.Errorf("retained writes went to pins %d, %d, want yaw then hip",
			driver.writes[0].pin, driver.writes[1].pin)
	}
}

func TestMoveFootToYawOutOfRange(t *testing.T) {
	driver := newMockPulseDriver()
	leg, _, _ := testLeg(t, driver)

	// A target far to the side needs more yaw than the +/-30 degree
	// window allows; nothing is clamped and no joint moves.
	err := leg.MoveFootTo(kinematics.Vec3{X: 0, Y: 8.0, Z: -5.467})
	if err == nil {
		t.Fatal("expected yaw range error")
	}
	var jointErr *JointError
	if !errors.As(err, &jointErr) {
		t.Fatalf("error %v is not a JointError", err)
	}
	if jointErr.Joint != JointYaw {
		t.Errorf("failure tagged %v, want yaw", jointErr.Joint)
	}
	if jointErr.Err.Range == nil {
		t.Error("yaw failure missing range payload")
	}
	if len(driver.writes) != 0 {
		t.Error("rejected yaw command still reached the hardware")
	}
}

func TestNewLegRejectsBadServoConfig(t *testing.T) {
	timing := testTiming(t)
	SetPulseDriver(newMockPulseDriver())

	cfg := config.Default()
	cfg.Hip.UpperExtent = 1.2

	_, err := NewLeg(cfg, timing)
	var initErr *InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("error %v is not an InitError", err)
	}
	if initErr.Joint != JointHip {
		t.Errorf("failure tagged %v, want hip", initErr.Joint)
	}
}

func TestNewLegRejectsBadLinkLengths(t *testing.T) {
	timing := testTiming(t)
	SetPulseDriver(newMockPulseDriver())

	cfg := config.Default()
	cfg.HipToKnee = -1

	_, err := NewLeg(cfg, timing)
	var bad *kinematics.BadLinkLength
	if !errors.As(err, &bad) {
		t.Fatalf("error %v is not a BadLinkLength", err)
	}
}

func TestWrapPi(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi, math.Pi},
		{2 * math.Pi, 0},
		{-2.5 * math.Pi, -0.5 * math.Pi},
	}
	for _, tc := range cases {
		if got := wrapPi(tc.in); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("wrapPi(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
