package autoclicker

import (
	"math"
	"math/rand"
	"time"
)

const (
	MinCPS = 1.0
	MaxCPS = 20.0

	FallbackMinCPS = 10.0
	FallbackMaxCPS = 15.0

	MaxHoldCPS     = 5.0
	DefaultHoldCPS = 5.0

	jitterLow  = 0.85
	jitterHigh = 1.15
)

// Rate is the clicks-per-second range a click macro samples from.
type Rate struct {
	Min       float64
	Max       float64
	Randomize bool
}

func DefaultRate() Rate {
	return Rate{Min: FallbackMinCPS, Max: FallbackMaxCPS, Randomize: true}
}

// Midpoint is the rate used when randomization is off.
func (r Rate) Midpoint() float64 {
	r = r.normalized()
	return (r.Min + r.Max) / 2
}

func usableCPS(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// normalized substitutes the fallback range for unusable bounds and orders
// Min <= Max.
func (r Rate) normalized() Rate {
	if !usableCPS(r.Min) || !usableCPS(r.Max) {
		r.Min, r.Max = FallbackMinCPS, FallbackMaxCPS
	}
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}

// withMin sets Min, raising Max when the new Min exceeds it.
func (r Rate) withMin(v float64) Rate {
	r.Min = clampCPS(v, r.Min)
	if r.Min > r.Max {
		r.Max = r.Min
	}
	return r
}

// withMax sets Max, lowering Min when the new Max falls below it.
func (r Rate) withMax(v float64) Rate {
	r.Max = clampCPS(v, r.Max)
	if r.Max < r.Min {
		r.Min = r.Max
	}
	return r
}

func clampCPS(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return math.Min(MaxCPS, math.Max(MinCPS, v))
}

// ClampHoldCPS limits the hold macro rate to [1, 5]; unusable values become
// the default.
func ClampHoldCPS(v float64) float64 {
	if !usableCPS(v) {
		return DefaultHoldCPS
	}
	return math.Min(MaxHoldCPS, math.Max(MinCPS, v))
}

// SampleCPS returns the midpoint of the range, or a uniform draw inside it
// when randomization is on.
func SampleCPS(rng *rand.Rand, rate Rate) float64 {
	rate = rate.normalized()
	if !rate.Randomize || rate.Max == rate.Min {
		return rate.Midpoint()
	}
	return rate.Min + rng.Float64()*(rate.Max-rate.Min)
}

// SampleDelay returns the wait before the next click together with the CPS
// it was derived from. Randomized rates are jittered by ×[0.85, 1.15) before
// the delay is taken, so the delay stays within [1/(1.15·cps), 1/(0.85·cps)].
func SampleDelay(rng *rand.Rand, rate Rate) (time.Duration, float64) {
	cps := SampleCPS(rng, rate)
	seconds := 1 / cps
	if rate.Randomize {
		seconds /= jitterLow + rng.Float64()*(jitterHigh-jitterLow)
	}
	return time.Duration(seconds * float64(time.Second)), cps
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
