package similaritem

import (
	"fmt"
	"math"
)

// Change is a from/to pair of operating conditions.
type Change[T any] struct {
	From T
	To   T
}

// Topic633Result holds the three change factors and the adjusted hazard rate.
type Topic633Result struct {
	ChangeFactor1 float64 // quality
	ChangeFactor2 float64 // environment
	ChangeFactor3 float64 // temperature
	Result1       float64

	// Temperatures after rounding to the table grid
	TemperatureFrom float64
	TemperatureTo   float64
}

// RoundTemperature rounds t to the nearest 10 °C, halves to even tens, so
// 55 becomes 60 and 65 becomes 60.
func RoundTemperature(t float64) float64 {
	return math.RoundToEven(t/10.0) * 10.0
}

// CalculateTopic633 divides hazardRate by the product of the quality,
// environment and temperature change factors. A from/to pair missing from
// any table returns ErrUnknownTableKey.
func CalculateTopic633(environment, quality Change[int], temperature Change[float64],
	hazardRate float64) (Topic633Result, error) {
	res := Topic633Result{
		TemperatureFrom: RoundTemperature(temperature.From),
		TemperatureTo:   RoundTemperature(temperature.To),
	}

	var ok bool
	if res.ChangeFactor1, ok = qualityFactors[pair[int]{quality.From, quality.To}]; !ok {
		return Topic633Result{}, fmt.Errorf("%w: quality %d to %d", ErrUnknownTableKey,
			quality.From, quality.To)
	}
	if res.ChangeFactor2, ok = environmentFactors[pair[int]{environment.From, environment.To}]; !ok {
		return Topic633Result{}, fmt.Errorf("%w: environment %d to %d", ErrUnknownTableKey,
			environment.From, environment.To)
	}
	if res.ChangeFactor3, ok = temperatureFactors[pair[float64]{res.TemperatureFrom, res.TemperatureTo}]; !ok {
		return Topic633Result{}, fmt.Errorf("%w: temperature %g to %g °C", ErrUnknownTableKey,
			temperature.From, temperature.To)
	}

	res.Result1 = hazardRate / (res.ChangeFactor1 * res.ChangeFactor2 * res.ChangeFactor3)
	return res, nil
}

// Topic633FromAttributes is CalculateTopic633 over loosely typed from/to
// maps, as decoded from JSON or YAML. Each map must carry "from" and "to";
// a missing key returns ErrMissingKey and a non-numeric value ErrWrongType.
func Topic633FromAttributes(environment, quality, temperature map[string]any,
	hazardRate float64) (Topic633Result, error) {
	env, err := intChange("environment", environment)
	if err != nil {
		return Topic633Result{}, err
	}
	qual, err := intChange("quality", quality)
	if err != nil {
		return Topic633Result{}, err
	}
	from, err := floatAttr("temperature", temperature, "from")
	if err != nil {
		return Topic633Result{}, err
	}
	to, err := floatAttr("temperature", temperature, "to")
	if err != nil {
		return Topic633Result{}, err
	}
	return CalculateTopic633(env, qual, Change[float64]{From: from, To: to}, hazardRate)
}

func intChange(name string, m map[string]any) (Change[int], error) {
	from, err := intAttr(name, m, "from")
	if err != nil {
		return Change[int]{}, err
	}
	to, err := intAttr(name, m, "to")
	if err != nil {
		return Change[int]{}, err
	}
	return Change[int]{From: from, To: to}, nil
}

func lookupAttr(name string, m map[string]any, key string) (any, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s[%q]", ErrMissingKey, name, key)
	}
	return v, nil
}

func intAttr(name string, m map[string]any, key string) (int, error) {
	v, err := lookupAttr(name, m, key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %s[%q] = %v is not an integer id", ErrWrongType, name, key, v)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %s[%q] is %T", ErrWrongType, name, key, v)
	}
}

func floatAttr(name string, m map[string]any, key string) (float64, error) {
	v, err := lookupAttr(name, m, key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%w: %s[%q] is %T", ErrWrongType, name, key, v)
	}
}
