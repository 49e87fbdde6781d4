package segment

import (
	"fmt"
	"math"
)

// GenerateGrid splits [0, totalDuration) into windows of windowLen seconds,
// independent of the audio content.
//
// Windows shorter than minLen are dropped, and no window starts once fewer than
// minLen seconds remain. Consecutive windows share overlap seconds. Parameters
// that cannot terminate or make no sense return ErrInvalidConfig and no windows.
func GenerateGrid(totalDuration, windowLen, minLen, overlap float64) ([]Interval, error) {
	if err := validateGrid(totalDuration, windowLen, minLen, overlap); err != nil {
		return nil, err
	}

	var windows []Interval
	t := 0.0
	for t < totalDuration-minLen {
		end := min(t+windowLen, totalDuration)
		if end-t >= minLen {
			windows = append(windows, Interval{Start: t, End: end})
		}
		// Last window reached the end. Without this, an overlap larger than
		// minLen would keep re-emitting the final window.
		if end >= totalDuration {
			break
		}
		t = end - overlap
	}

	return windows, nil
}

// validateGrid rejects grid parameters up front so callers never see a partial grid.
func validateGrid(totalDuration, windowLen, minLen, overlap float64) error {
	for _, v := range []float64{totalDuration, windowLen, minLen, overlap} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite parameter %v", ErrInvalidConfig, v)
		}
	}
	switch {
	case totalDuration < 0:
		return fmt.Errorf("%w: negative total duration %v", ErrInvalidConfig, totalDuration)
	case windowLen <= 0:
		return fmt.Errorf("%w: window length %v must be positive", ErrInvalidConfig, windowLen)
	case minLen < 0:
		return fmt.Errorf("%w: negative minimum length %v", ErrInvalidConfig, minLen)
	case overlap < 0:
		return fmt.Errorf("%w: negative overlap %v", ErrInvalidConfig, overlap)
	case overlap >= windowLen:
		return fmt.Errorf("%w: overlap %v >= window %v", ErrInvalidConfig, overlap, windowLen)
	}
	return nil
}
