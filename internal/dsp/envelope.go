// internal/dsp/envelope.go
package dsp

// Envelope returns the amplitude at time t (seconds) of a trapezoid that rises
// linearly from 0 to gain over ramp, holds, then falls back to 0 over the final
// ramp of a tone lasting total seconds. A ramp longer than half the tone is
// clamped to total/2. Outside [0, total) the envelope is 0.
func Envelope(t, total, ramp, gain float64) float64 {
	if t < 0 || t >= total {
		return 0
	}
	ramp = ClampRamp(ramp, total)
	if ramp <= 0 {
		return gain
	}
	if t < ramp {
		return gain * t / ramp
	}
	if remaining := total - t; remaining < ramp {
		return gain * remaining / ramp
	}
	return gain
}

// ClampRamp limits a ramp so attack and release together never exceed total.
func ClampRamp(ramp, total float64) float64 {
	if ramp < 0 {
		return 0
	}
	if 2*ramp > total {
		return total / 2
	}
	return ramp
}
