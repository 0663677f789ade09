package reliability

import "math"

// All conversions assume the exponential lifetime model used throughout
// RAMSTK: R(t) = exp(-h*t) and MTBF = 1/h.

// HazardRateFromReliability returns h = -ln(R)/t. R above 1 has no
// non-negative hazard rate and returns ErrGoalUnreachable.
func HazardRateFromReliability(r, missionTime float64) (float64, error) {
	if r <= 0 {
		return 0, ErrLogNonPositive
	}
	if r > 1 {
		return 0, ErrGoalUnreachable
	}
	if missionTime == 0 {
		return 0, ErrDivideByZero
	}
	return -math.Log(r) / missionTime, nil
}

// ReliabilityFromHazardRate returns R = exp(-h*t).
func ReliabilityFromHazardRate(h, missionTime float64) float64 {
	return math.Exp(-h * missionTime)
}

// MTBFFromHazardRate returns 1/h.
func MTBFFromHazardRate(h float64) (float64, error) {
	if h == 0 {
		return 0, ErrDivideByZero
	}
	return 1.0 / h, nil
}

// HazardRateFromMTBF returns 1/MTBF.
func HazardRateFromMTBF(mtbf float64) (float64, error) {
	if mtbf == 0 {
		return 0, ErrDivideByZero
	}
	return 1.0 / mtbf, nil
}

// MTBFFromReliability returns -t/ln(R).
func MTBFFromReliability(r, missionTime float64) (float64, error) {
	if r <= 0 {
		return 0, ErrLogNonPositive
	}
	if r > 1 {
		return 0, ErrGoalUnreachable
	}
	lnR := math.Log(r)
	if lnR == 0 {
		return 0, ErrDivideByZero
	}
	return -missionTime / lnR, nil
}

// ReliabilityFromMTBF returns exp(-t/MTBF).
func ReliabilityFromMTBF(mtbf, missionTime float64) (float64, error) {
	if mtbf == 0 {
		return 0, ErrDivideByZero
	}
	return math.Exp(-missionTime / mtbf), nil
}

// Metrics is a consistent (R, h, MTBF) triple for one mission time.
type Metrics struct {
	Reliability float64
	HazardRate  float64
	MTBF        float64
}

// FromHazardRate derives the full triple from a hazard rate. A zero hazard
// rate has no finite MTBF; the triple is zeroed and ErrDivideByZero returned.
func FromHazardRate(h, missionTime float64) (Metrics, error) {
	mtbf, err := MTBFFromHazardRate(h)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{
		Reliability: ReliabilityFromHazardRate(h, missionTime),
		HazardRate:  h,
		MTBF:        mtbf,
	}, nil
}

// FromMTBF derives the full triple from an MTBF.
func FromMTBF(mtbf, missionTime float64) (Metrics, error) {
	h, err := HazardRateFromMTBF(mtbf)
	if err != nil {
		return Metrics{}, err
	}
	return FromHazardRate(h, missionTime)
}
