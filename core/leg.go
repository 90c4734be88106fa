package core

import (
	"math"

	"stilt/config"
	"stilt/kinematics"
)

// Leg owns the three servos of one leg (yaw, hip, knee) and its fixed
// mounting geometry, and exposes a single move-foot-to-this-point
// operation.
//
// Joint commands are best-effort, not transactional: a servo that already
// moved cannot be un-moved, so a failure partway through leaves the joints
// commanded so far in place and reports which joint failed. The caller's
// policy is to log, drop the frame and continue at the next tick.

// Joint identifies which of a leg's servos an error refers to.
type Joint uint8

const (
	JointYaw Joint = iota
	JointHip
	JointKnee
)

func (j Joint) String() string {
	switch j {
	case JointYaw:
		return "yaw"
	case JointHip:
		return "hip"
	case JointKnee:
		return "knee"
	}
	return "joint(" + itoa(int(j)) + ")"
}

// InitError reports which joint's servo rejected its configuration.
type InitError struct {
	Joint Joint
	Err   *CouldntInitialize
}

func (e *InitError) Error() string {
	return "leg: " + e.Joint.String() + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error { return e.Err }

// JointError reports which joint's servo rejected or failed a command.
// Joints commanded before the failing one are not rolled back.
type JointError struct {
	Joint Joint
	Err   *CouldntMove
}

func (e *JointError) Error() string {
	return "leg: " + e.Joint.String() + ": " + e.Err.Error()
}

func (e *JointError) Unwrap() error { return e.Err }

// SolveError wraps a kinematics failure for the requested foot target.
type SolveError struct {
	Err error
}

func (e *SolveError) Error() string { return "leg: " + e.Err.Error() }

func (e *SolveError) Unwrap() error { return e.Err }

// wrapPi wraps an angle into (-pi, pi] by repeated +/- 2*pi adjustment.
// Not modulo: the loop keeps the exact boundary semantics at +/-pi.
func wrapPi(radians float64) float64 {
	for radians > math.Pi {
		radians -= 2 * math.Pi
	}
	for radians <= -math.Pi {
		radians += 2 * math.Pi
	}
	return radians
}

// Leg holds three servos and the solver for its link geometry. The leg
// itself keeps no angle history; only each servo's last commanded hardware
// value persists between ticks.
type Leg struct {
	yaw  *Servo
	hip  *Servo
	knee *Servo

	solver kinematics.Planar2Link

	// Yaw servo mounting position in the body frame, precomputed from the
	// home yaw and the center-to-yaw length.
	yawServoX float64
	yawServoY float64
	yawToHip  float64
	homeYaw   float64
}

// NewLeg builds a leg from its configuration against the shared timing
// base. Construction fails on invalid link lengths or on any servo whose
// travel window leaves the physical envelope, tagged with the joint.
func NewLeg(cfg *config.LegConfig, timing *PulseTiming) (*Leg, error) {
	solver, err := kinematics.NewPlanar2Link(cfg.HipToKnee, cfg.KneeToFoot)
	if err != nil {
		return nil, err
	}

	homeYaw := wrapPi(cfg.HomeYawRadians)

	yaw, initErr := newJointServo(cfg.Yaw, timing)
	if initErr != nil {
		return nil, &InitError{Joint: JointYaw, Err: initErr}
	}
	hip, initErr := newJointServo(cfg.Hip, timing)
	if initErr != nil {
		return nil, &InitError{Joint: JointHip, Err: initErr}
	}
	knee, initErr := newJointServo(cfg.Knee, timing)
	if initErr != nil {
		return nil, &InitError{Joint: JointKnee, Err: initErr}
	}

	return &Leg{
		yaw:       yaw,
		hip:       hip,
		knee:      knee,
		solver:    solver,
		yawServoX: math.Cos(homeYaw) * cfg.CenterToYaw,
		yawServoY: math.Sin(homeYaw) * cfg.CenterToYaw,
		yawToHip:  cfg.YawToHip,
		homeYaw:   homeYaw,
	}, nil
}

func newJointServo(sc config.ServoConfig, timing *PulseTiming) (*Servo, *CouldntInitialize) {
	return NewServo(PulsePin(sc.Pin), timing, sc.Center, sc.LowerExtent, sc.UpperExtent)
}

// MoveFootTo commands all three joints so the foot lands at the given
// displacement from the body center. X is forward, Y lateral, Z vertical.
//
// The target is first translated into the leg's local frame by removing the
// yaw servo's mounting offset. The yaw servo swings the leg's plane onto
// the target's bearing; the remaining problem is planar and goes to the
// two-link solver. Commands go out yaw, hip, knee in that order, and the
// first failure short-circuits.
func (l *Leg) MoveFootTo(target kinematics.Vec3) error {
	localX := target.X - l.yawServoX
	localY := target.Y - l.yawServoY

	// Bearing of the foot target measured from the forward axis, in
	// (-pi, pi]; a target dead ahead of a zero-home leg commands zero yaw.
	globalYaw := math.Atan2(localY, localX)
	localYaw := wrapPi(globalYaw - l.homeYaw)
	if moveErr := l.yaw.GoTo(RadiansToServo * localYaw); moveErr != nil {
		return &JointError{Joint: JointYaw, Err: moveErr}
	}

	// The hip pivot sits yawToHip out along the resolved bearing, so the
	// planar hip-to-foot distance is the projected magnitude less that
	// offset. Pairing it with the vertical component reduces the move to
	// the solver's 2-D problem.
	planar := math.Hypot(localX, localY) - l.yawToHip
	angles, err := l.solver.Solve(kinematics.Vec2{X: planar, Y: target.Z})
	if err != nil {
		return &SolveError{Err: err}
	}

	if moveErr := l.hip.GoTo(RadiansToServo * angles.Hip); moveErr != nil {
		return &JointError{Joint: JointHip, Err: moveErr}
	}
	if moveErr := l.knee.GoTo(RadiansToServo * angles.Knee); moveErr != nil {
		return &JointError{Joint: JointKnee, Err: moveErr}
	}
	return nil
}
