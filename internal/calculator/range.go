package calculator

import (
	"errors"
	"math"
)

// SeriesRange returns the highest and lowest sample in the series.
func SeriesRange(series []float64) (high, low float64, err error) {
	if len(series) == 0 {
		return 0, 0, errors.New("empty series")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, v := range series {
		if v > high {
			high = v
		}
		if v < low {
			low = v
		}
	}
	return high, low, nil
}

// RangePosition returns where current sits within [low, high] (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
