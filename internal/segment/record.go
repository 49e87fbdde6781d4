package segment

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is one segment as written to the draft file.
// IDs run 1..N with no gaps, in the order the intervals were assembled.
type Record struct {
	ID       int     `json:"id"`
	Start    Seconds `json:"start"`
	End      Seconds `json:"end"`
	Duration Seconds `json:"duration"`
	Text     string  `json:"text"`
	StartMS  *int64  `json:"start_ms,omitempty"`
	EndMS    *int64  `json:"end_ms,omitempty"`
}

// TextFunc produces the text of the segment at zero-based index.
type TextFunc func(index int, start, end float64) string

// AssembleOption configures Assemble.
type AssembleOption func(*assembleConfig)

type assembleConfig struct {
	millis bool
}

// WithMillis adds start_ms/end_ms, computed from the unrounded bounds.
func WithMillis() AssembleOption {
	return func(c *assembleConfig) {
		c.millis = true
	}
}

// Assemble decorates intervals into records without reordering or dropping any.
// A nil text function falls back to PlaceholderText.
//
// An interval that collapses under one-decimal rounding, such as
// [1.02, 1.04), becomes a record with start == end. Callers pass detector
// output through Resolvable first.
func Assemble(intervals []Interval, text TextFunc, opts ...AssembleOption) []Record {
	var cfg assembleConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if text == nil {
		text = PlaceholderText
	}

	records := make([]Record, 0, len(intervals))
	for i, iv := range intervals {
		r := Record{
			ID:       i + 1,
			Start:    Seconds(Round1(iv.Start)),
			End:      Seconds(Round1(iv.End)),
			Duration: Seconds(Round1(iv.Duration())),
			Text:     text(i, iv.Start, iv.End),
		}
		if cfg.millis {
			startMS := int64(math.Round(iv.Start * 1000))
			endMS := int64(math.Round(iv.End * 1000))
			r.StartMS = &startMS
			r.EndMS = &endMS
		}
		records = append(records, r)
	}

	return records
}

// Round1 rounds x to one decimal place.
//
// Rounding works on the exact binary value of x and sends exact ties to the
// even digit, so 1.05 (stored slightly above 1.05) becomes 1.1 while 2.05
// (stored slightly below) becomes 2.0, and 0.25 becomes 0.2.
func Round1(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return r
}

// Collapses reports whether both bounds round to the same one-decimal value.
func (iv Interval) Collapses() bool {
	return Round1(iv.Start) >= Round1(iv.End)
}

// Resolvable returns the intervals that keep a positive rounded duration, in order.
func Resolvable(intervals []Interval) []Interval {
	var kept []Interval
	for _, iv := range intervals {
		if !iv.Collapses() {
			kept = append(kept, iv)
		}
	}
	return kept
}

// Seconds is a time in seconds that always serializes with a decimal point
// (5.0 rather than 5), so regenerated drafts diff cleanly against edited ones.
type Seconds float64

// MarshalJSON implements json.Marshaler.
func (s Seconds) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("unsupported seconds value %v", f)
	}
	return []byte(s.String()), nil
}

// String returns the shortest decimal representation with at least one fractional digit.
func (s Seconds) String() string {
	out := strconv.FormatFloat(float64(s), 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

// PlaceholderText labels a segment with its number and rounded length,
// e.g. "[Segment 3] (2.4s)".
func PlaceholderText(index int, start, end float64) string {
	return fmt.Sprintf("[Segment %d] (%.1fs)", index+1, end-start)
}

// GridText labels a fixed window with its number and bounds, e.g. "[2] 4.0s-8.0s".
func GridText(index int, start, end float64) string {
	return fmt.Sprintf("[%d] %ss-%ss", index+1, Seconds(Round1(start)), Seconds(Round1(end)))
}

// Texts returns a TextFunc that looks up recognized text by position.
// Surrounding whitespace is trimmed; positions past the end yield "".
func Texts(texts []string) TextFunc {
	return func(index int, _, _ float64) string {
		if index < 0 || index >= len(texts) {
			return ""
		}
		return strings.TrimSpace(texts[index])
	}
}
