package transcribe

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-dictation/internal/apierr"
	"github.com/alnah/go-dictation/internal/segment"
)

// Default retry configuration.
const (
	defaultMaxRetries = 5
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 30 * time.Second
)

// Segment is one recognized utterance with its span in seconds.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Options configures a transcription request.
type Options struct {
	// Language is an ISO 639-1 code or locale ("en", "zh-CN").
	// Empty means auto-detect.
	Language string

	// Model selects the recognition model where the backend supports it.
	// Empty uses the backend default.
	Model string

	// Prompt provides vocabulary or context to improve accuracy.
	Prompt string
}

// Transcriber turns an audio file into timed segments.
type Transcriber interface {
	// Transcribe returns segments ordered by start time.
	Transcribe(ctx context.Context, audioPath string, opts Options) ([]Segment, error)
}

// Compile-time interface compliance checks.
var (
	_ Transcriber = (*OpenAITranscriber)(nil)
	_ Transcriber = (*ASRTranscriber)(nil)
	_ Transcriber = Static(nil)
)

// Static returns the same segments for every file.
type Static []Segment

// Transcribe returns a copy of the fixed segments.
func (s Static) Transcribe(ctx context.Context, _ string, _ Options) ([]Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Segment(nil), s...), nil
}

// Intervals returns the time spans of segs.
func Intervals(segs []Segment) []segment.Interval {
	out := make([]segment.Interval, len(segs))
	for i, s := range segs {
		out[i] = segment.Interval{Start: s.Start, End: s.End}
	}
	return out
}

// Texts returns the recognized text of segs, in order.
func Texts(segs []Segment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.Text
	}
	return out
}

// retryPolicy is shared by the HTTP-backed transcribers.
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
	}
}

// config builds an apierr.RetryConfig that logs each retry.
func (p retryPolicy) config(logger *zap.Logger, audioPath string) apierr.RetryConfig {
	return apierr.RetryConfig{
		MaxRetries: p.maxRetries,
		BaseDelay:  p.baseDelay,
		MaxDelay:   p.maxDelay,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			logger.Warn("retrying transcription",
				zap.String("path", audioPath),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err))
		},
	}
}

// cleanSegments drops zero-length spans, which Whisper emits near the end of
// a file, and rejects spans that are negative, inverted or out of order.
func cleanSegments(segs []Segment, logger *zap.Logger) ([]Segment, error) {
	var kept []Segment
	prevEnd := 0.0
	for i, s := range segs {
		switch {
		case s.Start < 0 || s.End < s.Start:
			return nil, fmt.Errorf("%w: segment %d spans [%v, %v]", ErrMalformedResponse, i, s.Start, s.End)
		case s.Start < prevEnd:
			return nil, fmt.Errorf("%w: segment %d starts at %v, before the previous end %v",
				ErrMalformedResponse, i, s.Start, prevEnd)
		case s.End == s.Start:
			logger.Warn("dropping zero-length segment",
				zap.Int("index", i),
				zap.Float64("at", s.Start),
				zap.String("text", s.Text))
			continue
		}
		kept = append(kept, s)
		prevEnd = s.End
	}
	return kept, nil
}
