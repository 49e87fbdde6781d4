// Package segment turns detector output into ordered speech segments and
// decorates them into the records written to a dictation draft.
//
// Everything here is pure: functions take values, return new slices, and
// never touch the filesystem or external processes.
package segment

import "fmt"

// Interval is a half-open time range [Start, End) in seconds.
type Interval struct {
	Start float64
	End   float64
}

// Duration returns End - Start.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// String returns a human-readable representation for logging.
func (iv Interval) String() string {
	return fmt.Sprintf("[%.3f, %.3f)", iv.Start, iv.End)
}

// Infer inverts a silence list into the speech intervals between silences.
//
// silences must be sorted by start and mutually disjoint; the result for any
// other input is undefined. A gap before a silence becomes speech only when it
// is longer than minGap, and the tail after the last silence only when it is
// longer than minTail. Every silence is consumed whether or not speech was
// emitted before it. Infer never fails; it returns nil when nothing qualifies.
func Infer(silences []Interval, totalDuration, minGap, minTail float64) []Interval {
	var speech []Interval
	prevEnd := 0.0

	for _, s := range silences {
		if s.Start-prevEnd > minGap {
			speech = append(speech, Interval{Start: prevEnd, End: s.Start})
		}
		prevEnd = s.End
	}

	if totalDuration-prevEnd > minTail {
		speech = append(speech, Interval{Start: prevEnd, End: totalDuration})
	}

	return speech
}

// Filter returns the intervals lasting at least minLen seconds, in order.
func Filter(intervals []Interval, minLen float64) []Interval {
	var kept []Interval
	for _, iv := range intervals {
		if iv.Duration() >= minLen {
			kept = append(kept, iv)
		}
	}
	return kept
}
