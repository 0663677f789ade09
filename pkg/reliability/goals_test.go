package reliability

import (
	"errors"
	"math"
	"testing"
)

// approxEqual compares with a relative tolerance, falling back to an
// absolute one around zero.
func approxEqual(got, want, rel float64) bool {
	if want == 0 {
		return math.Abs(got) <= rel
	}
	return math.Abs(got-want) <= rel*math.Abs(want)
}

func TestCalculateGoals(t *testing.T) {
	tests := []struct {
		name      string
		in        Goals
		wantR     float64
		wantH     float64
		wantMTBF  float64
		wantError bool
	}{
		{
			name:     "reliability specified",
			in:       Goals{Measure: GoalReliability, MissionTime: 100.0, Reliability: 0.99732259},
			wantR:    0.99732259,
			wantH:    0.00002681,
			wantMTBF: 37299.5151063,
		},
		{
			name:     "hazard rate specified",
			in:       Goals{Measure: GoalHazardRate, MissionTime: 100.0, HazardRate: 0.00002681},
			wantR:    0.99732259,
			wantH:    0.00002681,
			wantMTBF: 37299.5151063,
		},
		{
			name:     "MTBF specified",
			in:       Goals{Measure: GoalMTBF, MissionTime: 100.0, MTBF: 37300.0},
			wantR:    0.99732259,
			wantH:    2.68096515e-05,
			wantMTBF: 37300.0,
		},
		{
			name:      "zero reliability goal",
			in:        Goals{Measure: GoalReliability, MissionTime: 100.0, Reliability: 0.0, HazardRate: 5, MTBF: 5},
			wantR:     0.0,
			wantError: true,
		},
		{
			name:      "negative reliability goal",
			in:        Goals{Measure: GoalReliability, MissionTime: 100.0, Reliability: -0.5, HazardRate: 5, MTBF: 5},
			wantR:     -0.5,
			wantError: true,
		},
		{
			name:      "perfect reliability goal",
			in:        Goals{Measure: GoalReliability, MissionTime: 100.0, Reliability: 1.0},
			wantR:     1.0,
			wantError: true,
		},
		{
			name:      "reliability goal above one",
			in:        Goals{Measure: GoalReliability, MissionTime: 100.0, Reliability: 1.5, HazardRate: 5, MTBF: 5},
			wantR:     1.5,
			wantError: true,
		},
		{
			name:      "zero hazard rate goal",
			in:        Goals{Measure: GoalHazardRate, MissionTime: 100.0, Reliability: 0.9, MTBF: 10},
			wantError: true,
		},
		{
			name:      "zero MTBF goal",
			in:        Goals{Measure: GoalMTBF, MissionTime: 100.0, Reliability: 0.9, HazardRate: 0.1},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateGoals(tt.in)
			if tt.wantError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrGoalUnreachable) {
					t.Errorf("error %v does not wrap ErrGoalUnreachable", err)
				}
				if !IsBenign(err) {
					t.Errorf("IsBenign(%v) = false, want true", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !approxEqual(got.Reliability, tt.wantR, 1e-6) {
				t.Errorf("Reliability = %v, want %v", got.Reliability, tt.wantR)
			}
			if !approxEqual(got.HazardRate, tt.wantH, 1e-6) {
				t.Errorf("HazardRate = %v, want %v", got.HazardRate, tt.wantH)
			}
			if !approxEqual(got.MTBF, tt.wantMTBF, 1e-6) {
				t.Errorf("MTBF = %v, want %v", got.MTBF, tt.wantMTBF)
			}
		})
	}
}

func TestCalculateGoals_UnknownMeasure(t *testing.T) {
	in := Goals{Measure: GoalMeasure(7), MissionTime: 10, Reliability: 0.5, HazardRate: 0.2, MTBF: 3}

	got, err := CalculateGoals(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != in {
		t.Errorf("CalculateGoals() = %+v, want unchanged %+v", got, in)
	}
}

func TestGoalMeasureString(t *testing.T) {
	tests := []struct {
		measure  GoalMeasure
		expected string
	}{
		{GoalReliability, "reliability"},
		{GoalHazardRate, "hazard_rate"},
		{GoalMTBF, "mtbf"},
		{GoalMeasure(0), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.measure.String(); got != tt.expected {
				t.Errorf("GoalMeasure.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	if _, err := HazardRateFromReliability(0, 10); !errors.Is(err, ErrLogNonPositive) {
		t.Errorf("HazardRateFromReliability(0) error = %v, want ErrLogNonPositive", err)
	}
	if _, err := HazardRateFromReliability(0.9, 0); !errors.Is(err, ErrDivideByZero) {
		t.Errorf("HazardRateFromReliability(t=0) error = %v, want ErrDivideByZero", err)
	}
	if _, err := HazardRateFromReliability(1.5, 100); !errors.Is(err, ErrGoalUnreachable) {
		t.Errorf("HazardRateFromReliability(1.5) error = %v, want ErrGoalUnreachable", err)
	}
	if _, err := MTBFFromReliability(1.5, 100); !errors.Is(err, ErrGoalUnreachable) {
		t.Errorf("MTBFFromReliability(1.5) error = %v, want ErrGoalUnreachable", err)
	}
	if h, err := HazardRateFromReliability(1, 100); err != nil || h != 0 {
		t.Errorf("HazardRateFromReliability(1) = %v, %v, want 0, nil", h, err)
	}
	if _, err := MTBFFromHazardRate(0); !errors.Is(err, ErrDivideByZero) {
		t.Errorf("MTBFFromHazardRate(0) error = %v, want ErrDivideByZero", err)
	}
	if _, err := ReliabilityFromMTBF(0, 10); !errors.Is(err, ErrDivideByZero) {
		t.Errorf("ReliabilityFromMTBF(0) error = %v, want ErrDivideByZero", err)
	}

	m, err := FromMTBF(50, 10)
	if err != nil {
		t.Fatalf("FromMTBF failed: %v", err)
	}
	if !approxEqual(m.HazardRate, 0.02, 1e-12) {
		t.Errorf("HazardRate = %v, want 0.02", m.HazardRate)
	}
	if !approxEqual(m.Reliability, math.Exp(-0.2), 1e-12) {
		t.Errorf("Reliability = %v, want %v", m.Reliability, math.Exp(-0.2))
	}

	if _, err := FromHazardRate(0, 10); !errors.Is(err, ErrDivideByZero) {
		t.Errorf("FromHazardRate(0) error = %v, want ErrDivideByZero", err)
	}
}

func TestCalcError(t *testing.T) {
	err := NewCalcError("Allocate", 2, ErrDivideByZero)
	if err.Error() != "Allocate: hardware ID 2: division by zero" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrDivideByZero) {
		t.Error("CalcError should unwrap to its cause")
	}
	if NewCalcError("Allocate", 2, nil) != nil {
		t.Error("NewCalcError with nil cause should return nil")
	}
}
