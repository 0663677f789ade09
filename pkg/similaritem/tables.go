package similaritem

type pair[T comparable] struct{ from, to T }

// Topic 6.3.3 conversion factors, keyed by (from, to).
//
// Environments: 1 ground benign, 2 ground mobile, 3 naval sheltered,
// 4 airborne inhabited cargo, 5 airborne rotary wing, 6 space flight.
// Quality: 1 space, 2 full military, 3 ruggedized, 4 commercial.
var environmentFactors = map[pair[int]]float64{
	{1, 1}: 1.0, {1, 2}: 0.2, {1, 3}: 0.3, {1, 4}: 0.3, {1, 5}: 0.1, {1, 6}: 1.1,
	{2, 1}: 5.0, {2, 2}: 1.0, {2, 3}: 1.4, {2, 4}: 1.4, {2, 5}: 0.5, {2, 6}: 5.0,
	{3, 1}: 3.3, {3, 2}: 0.7, {3, 3}: 1.0, {3, 4}: 1.0, {3, 5}: 0.3, {3, 6}: 3.3,
	{4, 1}: 3.3, {4, 2}: 0.7, {4, 3}: 1.0, {4, 4}: 1.0, {4, 5}: 0.3, {4, 6}: 3.3,
	{5, 1}: 10.0, {5, 2}: 2.0, {5, 3}: 3.3, {5, 4}: 3.3, {5, 5}: 1.0, {5, 6}: 10.0,
	{6, 1}: 0.9, {6, 2}: 0.2, {6, 3}: 0.3, {6, 4}: 0.3, {6, 5}: 0.1, {6, 6}: 1.0,
}

var qualityFactors = map[pair[int]]float64{
	{1, 1}: 1.0, {1, 2}: 0.8, {1, 3}: 0.5, {1, 4}: 0.2,
	{2, 1}: 1.3, {2, 2}: 1.0, {2, 3}: 0.6, {2, 4}: 0.3,
	{3, 1}: 2.0, {3, 2}: 1.7, {3, 3}: 1.0, {3, 4}: 0.4,
	{4, 1}: 5.0, {4, 2}: 3.3, {4, 3}: 2.5, {4, 4}: 1.0,
}

// Temperatures in °C, in 10 degree steps from 10 to 70.
var temperatureFactors = map[pair[float64]]float64{
	{10, 10}: 1.0, {10, 20}: 0.9, {10, 30}: 0.8, {10, 40}: 0.8, {10, 50}: 0.7, {10, 60}: 0.5, {10, 70}: 0.4,
	{20, 10}: 1.1, {20, 20}: 1.0, {20, 30}: 0.9, {20, 40}: 0.8, {20, 50}: 0.7, {20, 60}: 0.6, {20, 70}: 0.5,
	{30, 10}: 1.2, {30, 20}: 1.1, {30, 30}: 1.0, {30, 40}: 0.9, {30, 50}: 0.8, {30, 60}: 0.6, {30, 70}: 0.5,
	{40, 10}: 1.3, {40, 20}: 1.2, {40, 30}: 1.1, {40, 40}: 1.0, {40, 50}: 0.9, {40, 60}: 0.7, {40, 70}: 0.6,
	{50, 10}: 1.5, {50, 20}: 1.4, {50, 30}: 1.2, {50, 40}: 1.1, {50, 50}: 1.0, {50, 60}: 0.8, {50, 70}: 0.7,
	{60, 10}: 1.9, {60, 20}: 1.7, {60, 30}: 1.6, {60, 40}: 1.5, {60, 50}: 1.2, {60, 60}: 1.0, {60, 70}: 0.8,
	{70, 10}: 2.4, {70, 20}: 2.2, {70, 30}: 1.9, {70, 40}: 1.8, {70, 50}: 1.5, {70, 60}: 1.2, {70, 70}: 1.0,
}
