package core

// Servo owns one pulse-output channel and maps normalized commanded
// positions in [-1, +1] onto hardware pulse widths.
//
// A servo is configured with a center point and independent lower/upper
// range extents, all in normalized units. The effective travel is
// [center-lowerExtent, center+upperExtent], a sub-range of [-1, +1].
// Commands outside that sub-range are reported, never clamped: a silent
// clamp would hide a solver or configuration bug behind a mechanically
// wrong pose.

// OutOfRange carries the violated bound and the offending value.
type OutOfRange struct {
	Min      float64
	Max      float64
	Observed float64
}

func (e *OutOfRange) Error() string {
	return "servo: value " + ftoa(e.Observed) + " outside [" +
		ftoa(e.Min) + ", " + ftoa(e.Max) + "]"
}

// checkRange returns nil when min <= observed <= max.
func checkRange(min, max, observed float64) *OutOfRange {
	if observed < min || observed > max {
		return &OutOfRange{Min: min, Max: max, Observed: observed}
	}
	return nil
}

// Construction failure fields
const (
	FieldCenter      = "center"
	FieldLowerExtent = "lower extent"
	FieldUpperExtent = "upper extent"
)

// CouldntInitialize reports a servo configuration outside the physical
// envelope, tagged with the offending field.
type CouldntInitialize struct {
	Field string
	Range *OutOfRange
}

func (e *CouldntInitialize) Error() string {
	return "servo: couldn't initialize: " + e.Field + ": " + e.Range.Error()
}

// CouldntMove reports a rejected or failed command. Exactly one of Range
// (commanded position outside the servo's travel) and Hardware (the output
// channel's own failure) is set.
type CouldntMove struct {
	Range    *OutOfRange
	Hardware error
}

func (e *CouldntMove) Error() string {
	if e.Range != nil {
		return "servo: couldn't move: " + e.Range.Error()
	}
	return "servo: couldn't move: hardware: " + e.Hardware.Error()
}

// Unwrap exposes the underlying hardware error, if any.
func (e *CouldntMove) Unwrap() error {
	if e.Hardware != nil {
		return e.Hardware
	}
	return e.Range
}

// Servo is one output channel plus its normalized travel window. It holds a
// reference to the shared timing base so every joint converts commands
// against the same pulse bounds.
type Servo struct {
	pin    PulsePin
	timing *PulseTiming
	center float64
	min    float64
	max    float64
}

// NewServo builds a servo around a configured center and per-direction
// extents. Construction fails when the center is outside [-1, +1] or either
// extent would push the effective travel outside [-1, +1].
func NewServo(pin PulsePin, timing *PulseTiming, center, lowerExtent, upperExtent float64) (*Servo, *CouldntInitialize) {
	if r := checkRange(-1, 1, center); r != nil {
		return nil, &CouldntInitialize{Field: FieldCenter, Range: r}
	}
	if r := checkRange(0, 1+center, lowerExtent); r != nil {
		return nil, &CouldntInitialize{Field: FieldLowerExtent, Range: r}
	}
	if r := checkRange(0, 1-center, upperExtent); r != nil {
		return nil, &CouldntInitialize{Field: FieldUpperExtent, Range: r}
	}
	return &Servo{
		pin:    pin,
		timing: timing,
		center: center,
		min:    center - lowerExtent,
		max:    center + upperExtent,
	}, nil
}

// Min returns the lower bound of the servo's normalized travel.
func (s *Servo) Min() float64 { return s.min }

// Max returns the upper bound of the servo's normalized travel.
func (s *Servo) Max() float64 { return s.max }

// GoTo commands the servo to a normalized position. The position is checked
// against this servo's own [min, max] window, converted to a compare value
// via the shared timing base, and written to the output channel. Range
// violations and hardware write failures are reported as distinct variants.
func (s *Servo) GoTo(position float64) *CouldntMove {
	if r := checkRange(s.min, s.max, position); r != nil {
		return &CouldntMove{Range: r}
	}
	compare := s.timing.PulseCenter + position*s.timing.PulseRange
	if err := MustPulse().SetPulseWidth(s.pin, uint16(compare)); err != nil {
		return &CouldntMove{Hardware: err}
	}
	return nil
}
