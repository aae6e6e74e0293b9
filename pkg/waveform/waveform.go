// Package waveform evaluates independent-source drive functions at a given
// simulation time. It has no notion of nodes, branches, or stamping — the
// stamp assembler queries it purely as a scalar function of time.
package waveform

import "math"

// Kind selects which drive function Params describes.
type Kind int

const (
	DC Kind = iota
	SIN
	PULSE
)

// SinParams holds the SIN(...) parameters in netlist order.
type SinParams struct {
	DC       float64 // DC offset
	Amp      float64 // amplitude
	Freq     float64 // frequency, Hz
	Delay    float64 // td
	Damping  float64 // alpha, 1/s
	PhaseDeg float64 // phase, degrees
	NCycles  float64 // number of cycles; <= 0 means unbounded
}

// PulseParams holds the PULSE(...) parameters in netlist order.
type PulseParams struct {
	A1      float64 // initial/resting level
	A2      float64 // pulsed level
	Delay   float64 // td
	Rise    float64 // Tr
	Fall    float64 // Tf
	OnTime  float64 // Ton, hold time at A2
	Period  float64
	NCycles float64 // <= 0 means unbounded
}

// Params is a tagged union of the drive-function parameter sets. Exactly one
// field is meaningful, selected by the Kind passed to Eval.
type Params struct {
	DCValue float64
	Sin     SinParams
	Pulse   PulseParams
}

// Eval returns the source value at time t. baseDt is the nominal simulation
// step; it substitutes for a PULSE rise/fall time of exactly zero so that the
// pulse ramps never divide by a zero transition width.
func Eval(kind Kind, p Params, t, baseDt float64) float64 {
	switch kind {
	case DC:
		return p.DCValue
	case SIN:
		return evalSin(p.Sin, t)
	case PULSE:
		return evalPulse(p.Pulse, t, baseDt)
	default:
		return 0
	}
}

func evalSin(p SinParams, t float64) float64 {
	phaseRad := math.Pi * p.PhaseDeg / 180.0

	active := t >= p.Delay
	if p.NCycles > 0 {
		active = active && t <= p.Delay+p.NCycles/p.Freq
	}
	if !active {
		return p.DC + p.Amp*math.Sin(phaseRad)
	}

	dt := t - p.Delay
	return p.DC + p.Amp*math.Exp(-p.Damping*dt)*math.Sin(2*math.Pi*p.Freq*dt+phaseRad)
}

func evalPulse(p PulseParams, t, baseDt float64) float64 {
	rise, fall := p.Rise, p.Fall
	if rise == 0 {
		rise = baseDt
	}
	if fall == 0 {
		fall = baseDt
	}

	if t < p.Delay {
		return p.A1
	}

	if p.NCycles > 0 && t > p.Delay+p.NCycles*p.Period {
		return p.A1
	}

	dt := t - p.Delay
	if p.Period > 0 {
		dt = math.Mod(dt, p.Period)
	}

	switch {
	case dt < rise:
		return p.A1 + (p.A2-p.A1)*dt/rise
	case dt < rise+p.OnTime:
		return p.A2
	case dt < rise+p.OnTime+fall:
		return p.A2 - (p.A2-p.A1)*(dt-rise-p.OnTime)/fall
	default:
		return p.A1
	}
}
