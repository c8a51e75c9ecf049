package dsp

import (
	"math"
	"testing"
)

func TestNewOscillator_Invalid(t *testing.T) {
	if _, err := NewOscillator(700, 0); err != ErrInvalidSampleRate {
		t.Errorf("NewOscillator(700, 0) error = %v, want %v", err, ErrInvalidSampleRate)
	}
	if _, err := NewOscillator(0, testSampleRate); err != ErrInvalidFrequency {
		t.Errorf("NewOscillator(0, fs) error = %v, want %v", err, ErrInvalidFrequency)
	}
	if _, err := NewOscillator(30000, testSampleRate); err != ErrInvalidFrequency {
		t.Errorf("NewOscillator(30000, fs) error = %v, want %v", err, ErrInvalidFrequency)
	}
}

func TestOscillator_MatchesSine(t *testing.T) {
	osc, err := NewOscillator(testToneFrequency, testSampleRate)
	if err != nil {
		t.Fatalf("NewOscillator() error = %v", err)
	}

	want := generateSineWave(testToneFrequency, testSampleRate, 4800, 1.0)
	for i, w := range want {
		got := osc.Next()
		if math.Abs(got-float64(w)) > 1e-5 {
			t.Fatalf("sample %d = %v, want %v", i, got, w)
		}
	}
}

func TestLowPass_Cutoff(t *testing.T) {
	f, err := NewLowPass(900, testSampleRate)
	if err != nil {
		t.Fatalf("NewLowPass() error = %v", err)
	}
	if f.cutoff != 900 {
		t.Errorf("cutoff = %v, want 900", f.cutoff)
	}

	clamped, _ := NewLowPass(30000, testSampleRate)
	if want := testSampleRate * 0.45; clamped.cutoff != want {
		t.Errorf("cutoff = %v, want %v", clamped.cutoff, want)
	}

	if _, err := NewLowPass(0, testSampleRate); err != ErrInvalidFrequency {
		t.Errorf("NewLowPass(0) error = %v, want %v", err, ErrInvalidFrequency)
	}
	if _, err := NewLowPass(900, -1); err != ErrInvalidSampleRate {
		t.Errorf("NewLowPass(fs=-1) error = %v, want %v", err, ErrInvalidSampleRate)
	}
}

// filterTone runs a tone through a fresh filter and measures the settled output.
func filterTone(t *testing.T, frequency, cutoff float64) float64 {
	t.Helper()

	f, err := NewLowPass(cutoff, testSampleRate)
	if err != nil {
		t.Fatalf("NewLowPass() error = %v", err)
	}
	in := generateSineWave(frequency, testSampleRate, 4*testBlockSize, 1.0)
	out := make([]float32, len(in))
	for i, x := range in {
		out[i] = float32(f.Process(float64(x)))
	}

	g, err := NewGoertzel(frequency, testSampleRate, testBlockSize)
	if err != nil {
		t.Fatalf("NewGoertzel() error = %v", err)
	}
	mag, err := g.Magnitude(out[3*testBlockSize:])
	if err != nil {
		t.Fatalf("Magnitude() error = %v", err)
	}
	return mag
}

func TestLowPass_Response(t *testing.T) {
	tests := []struct {
		name      string
		frequency float64
		min, max  float64
	}{
		{"passband", 100, 0.98, 1.02},
		{"tone below cutoff", 700, 0.8, 0.95},
		{"stopband", 10000, 0, 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mag := filterTone(t, tt.frequency, 900)
			if mag < tt.min || mag > tt.max {
				t.Errorf("level at %v Hz = %v, want [%v, %v]", tt.frequency, mag, tt.min, tt.max)
			}
		})
	}
}

func TestEnvelope(t *testing.T) {
	const (
		total = 0.060
		ramp  = 0.001
		gain  = 0.5
	)

	tests := []struct {
		name string
		t    float64
		want float64
	}{
		{"before", -0.001, 0},
		{"start", 0, 0},
		{"mid attack", 0.0005, 0.25},
		{"end attack", 0.001, gain},
		{"sustain", 0.030, gain},
		{"mid release", 0.0595, 0.25},
		{"end", total, 0},
		{"after", 0.1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Envelope(tt.t, total, ramp, gain)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Envelope(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestEnvelope_ShortTone(t *testing.T) {
	// 1.5ms tone cannot fit two 1ms ramps: ramp becomes 0.75ms
	const total = 0.0015
	if got := Envelope(0.00075, total, 0.001, 1); math.Abs(got-1) > 1e-9 {
		t.Errorf("Envelope(peak) = %v, want 1", got)
	}
	if got := Envelope(0.000375, total, 0.001, 1); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Envelope(mid attack) = %v, want 0.5", got)
	}
	if got := ClampRamp(0.001, total); got != total/2 {
		t.Errorf("ClampRamp() = %v, want %v", got, total/2)
	}
	if got := ClampRamp(-1, total); got != 0 {
		t.Errorf("ClampRamp(-1) = %v, want 0", got)
	}
}
