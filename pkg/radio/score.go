package radio

import (
	"errors"
	"math"
)

// ErrNotFinite is returned when a score input is NaN or infinite.
var ErrNotFinite = errors.New("radio: input is not a finite number")

// RF score buckets. The threshold formula is bounded to these three
// values; the health thresholds below assume that range.
const (
	ScoreGood = 100
	ScoreFair = 70
	ScorePoor = 40
)

// Score computes the RF quality score for one reception from its
// signal-to-noise ratio and signal strength. Deterministic over all
// finite inputs.
func Score(snr, rssi float64) (int, error) {
	if !isFinite(snr) || !isFinite(rssi) {
		return 0, ErrNotFinite
	}

	switch {
	case snr > 7 && rssi > -90:
		return ScoreGood, nil
	case snr >= 3 && snr <= 7:
		return ScoreFair, nil
	default:
		return ScorePoor, nil
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
