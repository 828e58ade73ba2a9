package calculator

import "errors"

// NeutralRSI is returned when the series is too short for the period.
const NeutralRSI = 50.0

// wilderAverages carries the smoothed gain/loss averages through a single
// RSI computation. It never outlives the call that created it.
type wilderAverages struct {
	period  int
	avgGain float64
	avgLoss float64
}

func (w *wilderAverages) seed(closes []float64) {
	for i := 1; i <= w.period; i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		w.avgGain += gain
		w.avgLoss += loss
	}
	w.avgGain /= float64(w.period)
	w.avgLoss /= float64(w.period)
}

func (w *wilderAverages) update(change float64) {
	gain, loss := splitChange(change)
	p := float64(w.period)
	w.avgGain = (w.avgGain*(p-1) + gain) / p
	w.avgLoss = (w.avgLoss*(p-1) + loss) / p
}

func (w *wilderAverages) value() float64 {
	if w.avgLoss == 0 {
		return 100.0
	}
	rs := w.avgGain / w.avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

// CalculateRSI computes the Wilder-smoothed RSI of closes (oldest first).
// Requires at least period+1 samples. Returns NeutralRSI if data is insufficient.
func CalculateRSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(closes) < period+1 {
		return NeutralRSI, nil
	}

	w := &wilderAverages{period: period}
	w.seed(closes)
	for i := period + 1; i < len(closes); i++ {
		w.update(closes[i] - closes[i-1])
	}
	return w.value(), nil
}
