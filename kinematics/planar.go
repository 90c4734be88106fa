// Planar two-link inverse kinematics
//
// Solves hip and knee angles for a leg built from two rigid links, using the
// law of cosines. The solver is purely geometric: it knows nothing about
// servo travel limits, so the same solver serves legs with different joint
// envelopes. Range checking happens at the servo layer.
package kinematics

import (
	"math"
	"strconv"
)

// Vec3 is a displacement from the body reference point.
// X is forward, Y is lateral, Z is vertical.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Vec2 is a displacement in a leg's swing plane.
// X is the planar distance from the hip, Y is vertical.
type Vec2 struct {
	X float64
	Y float64
}

// MagnitudeSquared returns the squared length of the displacement.
func (v Vec2) MagnitudeSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// JointAngles holds the solved hip and knee angles in radians.
// The knee angle is expressed relative to the hip angle, so the knee
// command is independent of the absolute hip orientation.
type JointAngles struct {
	Hip  float64
	Knee float64
}

// Planar2Link describes a two-link chain by its link lengths.
type Planar2Link struct {
	hipToKnee  float64
	kneeToFoot float64
}

// Unreachable reports a target beyond the chain's maximum reach.
type Unreachable struct {
	MaxReach float64 // sum of the link lengths
	Distance float64 // requested hip-to-foot distance
}

func (e *Unreachable) Error() string {
	return "kinematics: target unreachable: distance " +
		strconv.FormatFloat(e.Distance, 'f', 4, 64) +
		" exceeds reach " + strconv.FormatFloat(e.MaxReach, 'f', 4, 64)
}

// DegenerateTarget reports a zero-magnitude displacement, for which the
// bearing is undefined. Callers must not place the foot target exactly on
// the hip.
type DegenerateTarget struct{}

func (e *DegenerateTarget) Error() string {
	return "kinematics: zero-magnitude displacement has no bearing"
}

// BadLinkLength reports a non-positive link length at construction.
type BadLinkLength struct {
	Name   string
	Length float64
}

func (e *BadLinkLength) Error() string {
	return "kinematics: link " + e.Name + " must be positive, got " +
		strconv.FormatFloat(e.Length, 'f', 4, 64)
}

// NewPlanar2Link builds a solver for the given link lengths.
// Both lengths must be strictly positive; they are fixed for the life of
// the solver.
func NewPlanar2Link(hipToKnee, kneeToFoot float64) (Planar2Link, error) {
	if hipToKnee <= 0 {
		return Planar2Link{}, &BadLinkLength{Name: "hip-to-knee", Length: hipToKnee}
	}
	if kneeToFoot <= 0 {
		return Planar2Link{}, &BadLinkLength{Name: "knee-to-foot", Length: kneeToFoot}
	}
	return Planar2Link{hipToKnee: hipToKnee, kneeToFoot: kneeToFoot}, nil
}

// Reach returns the maximum distance the chain can extend.
func (k Planar2Link) Reach() float64 {
	return k.hipToKnee + k.kneeToFoot
}

// Solve returns hip and knee angles placing the foot exactly at the given
// hip-relative displacement, or fails with Unreachable or DegenerateTarget.
func (k Planar2Link) Solve(d Vec2) (JointAngles, error) {
	magSq := d.MagnitudeSquared()
	if magSq == 0 {
		return JointAngles{}, &DegenerateTarget{}
	}

	distance := math.Sqrt(magSq)
	reach := k.Reach()
	if distance > reach {
		return JointAngles{}, &Unreachable{MaxReach: reach, Distance: distance}
	}

	l1Sq := k.hipToKnee * k.hipToKnee
	l2Sq := k.kneeToFoot * k.kneeToFoot

	// Law of cosines at the hip:
	//   L2^2 = L1^2 + d^2 - 2*L1*d*cos(hipInterior)
	// solved for the interior angle, then rotated by the bearing of the
	// displacement to express the hip in the global frame.
	cosHipInterior := (l1Sq + magSq - l2Sq) * 0.5 / (k.hipToKnee * distance)
	hipInterior := math.Acos(clampCosine(cosHipInterior))
	bearing := math.Atan2(d.Y, d.X)
	hip := bearing + hipInterior

	// Law of cosines at the knee:
	//   d^2 = L1^2 + L2^2 - 2*L1*L2*cos(kneeInterior)
	// The interior angle is re-expressed relative to the hip command, offset
	// by a right angle so the knee servo's zero is the right-angle pose.
	cosKneeInterior := (l1Sq + l2Sq - magSq) * 0.5 / (k.hipToKnee * k.kneeToFoot)
	kneeInterior := math.Acos(clampCosine(cosKneeInterior))
	knee := kneeInterior - 0.5*math.Pi + hip

	return JointAngles{Hip: hip, Knee: knee}, nil
}

// Forward maps joint angles back to the foot displacement. It inverts Solve
// for any angle pair Solve can produce.
func (k Planar2Link) Forward(a JointAngles) Vec2 {
	kneeInterior := a.Knee - a.Hip + 0.5*math.Pi
	footDir := a.Hip + math.Pi + kneeInterior
	return Vec2{
		X: k.hipToKnee*math.Cos(a.Hip) + k.kneeToFoot*math.Cos(footDir),
		Y: k.hipToKnee*math.Sin(a.Hip) + k.kneeToFoot*math.Sin(footDir),
	}
}

// clampCosine guards acos against cosines nudged past +/-1 by rounding.
// The reachability check has already run, so any excursion here is
// floating-point noise, not a geometry violation.
func clampCosine(c float64) float64 {
	if c > 1 {
		return 1
	}
	if c < -1 {
		return -1
	}
	return c
}
