package selection

import "errors"

// Policy holds the band thresholds and slot shares of the planner.
type Policy struct {
	// WeakBelow: topics with mastery below it are weak.
	WeakBelow float64
	// StrongAtLeast: topics with mastery at or above it are strong.
	StrongAtLeast float64
	// Shares of the session, in percent, for weak, mid and strong topics when
	// weak areas are focused.
	WeakShare   int
	MidShare    int
	StrongShare int
	// UnattemptedBonus is added to the priority of questions never answered.
	UnattemptedBonus float64
}

func DefaultPolicy() Policy {
	return Policy{
		WeakBelow:        0.70,
		StrongAtLeast:    0.80,
		WeakShare:        60,
		MidShare:         25,
		StrongShare:      15,
		UnattemptedBonus: 0.10,
	}
}

func (p Policy) Validate() error {
	if p.WeakBelow <= 0 || p.WeakBelow > p.StrongAtLeast || p.StrongAtLeast > 1 {
		return errors.New("thresholds must satisfy 0 < weak <= strong <= 1")
	}
	if p.WeakShare < 0 || p.MidShare < 0 || p.StrongShare < 0 {
		return errors.New("shares must not be negative")
	}
	if p.WeakShare+p.MidShare+p.StrongShare != 100 {
		return errors.New("shares must sum to 100")
	}
	if p.UnattemptedBonus < 0 || p.UnattemptedBonus > 1 {
		return errors.New("unattempted bonus must lie in [0,1]")
	}
	return nil
}

// apportion splits n slots by integer weights with the largest-remainder
// method. Ties go to the earlier weight.
func apportion(n int, weights []int) []int {
	out := make([]int, len(weights))
	total := 0
	for _, w := range weights {
		total += w
	}
	if n <= 0 || total <= 0 {
		return out
	}

	assigned := 0
	rem := make([]int, len(weights))
	for i, w := range weights {
		out[i] = n * w / total
		rem[i] = n * w % total
		assigned += out[i]
	}
	for assigned < n {
		best := -1
		for i := range rem {
			if rem[i] >= 0 && (best < 0 || rem[i] > rem[best]) {
				best = i
			}
		}
		if best < 0 {
			break
		}
		out[best]++
		rem[best] = -1
		assigned++
	}
	return out
}
