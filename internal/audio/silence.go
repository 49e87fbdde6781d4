package audio

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-dictation/internal/ffmpeg"
	"github.com/alnah/go-dictation/internal/segment"
)

// Compile-time interface implementation checks.
var (
	_ SilenceDetector = (*FFmpegSilenceDetector)(nil)
	_ SilenceDetector = (*EnergyDetector)(nil)
)

// SilenceDetector finds the silent stretches of an audio file.
// Intervals are returned in seconds, sorted and non-overlapping.
type SilenceDetector interface {
	Detect(ctx context.Context, audioPath string) ([]segment.Interval, error)
}

// Default silencedetect parameters.
const (
	// DefaultNoiseDB is the level below which audio counts as silence.
	DefaultNoiseDB = -35.0

	// DefaultMinSilence is the shortest pause, in seconds, reported as silence.
	DefaultMinSilence = 0.3
)

// FFmpegSilenceDetector runs FFmpeg's silencedetect filter and parses its log.
type FFmpegSilenceDetector struct {
	ffmpegPath string
	noiseDB    float64
	minSilence float64

	// Injectable dependencies (defaults to OS implementations).
	cmd    commandRunner
	logger *zap.Logger
}

// SilenceOption configures an FFmpegSilenceDetector.
type SilenceOption func(*FFmpegSilenceDetector)

// WithNoiseDB sets the silence threshold in dB (e.g. -35).
func WithNoiseDB(db float64) SilenceOption {
	return func(d *FFmpegSilenceDetector) {
		d.noiseDB = db
	}
}

// WithMinSilence sets the minimum silence length in seconds.
func WithMinSilence(seconds float64) SilenceOption {
	return func(d *FFmpegSilenceDetector) {
		d.minSilence = seconds
	}
}

// WithCommandRunner sets the command runner for FFmpegSilenceDetector.
func WithCommandRunner(r commandRunner) SilenceOption {
	return func(d *FFmpegSilenceDetector) {
		d.cmd = r
	}
}

// WithLogger sets the logger for FFmpegSilenceDetector.
func WithLogger(l *zap.Logger) SilenceOption {
	return func(d *FFmpegSilenceDetector) {
		d.logger = l
	}
}

// NewFFmpegSilenceDetector creates a detector using the given binary.
func NewFFmpegSilenceDetector(ffmpegPath string, opts ...SilenceOption) (*FFmpegSilenceDetector, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}

	d := &FFmpegSilenceDetector{
		ffmpegPath: ffmpegPath,
		noiseDB:    DefaultNoiseDB,
		minSilence: DefaultMinSilence,
		cmd:        osCommandRunner{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.minSilence <= 0 {
		return nil, fmt.Errorf("%w: minimum silence %v must be positive", segment.ErrInvalidConfig, d.minSilence)
	}
	return d, nil
}

// silenceDetectArgs builds the FFmpeg invocation, e.g.
// "-i talk.mp3 -af silencedetect=noise=-35dB:d=0.3 -f null -".
func silenceDetectArgs(audioPath string, noiseDB, minSilence float64) []string {
	filter := fmt.Sprintf("silencedetect=noise=%sdB:d=%s",
		strconv.FormatFloat(noiseDB, 'f', -1, 64),
		strconv.FormatFloat(minSilence, 'f', -1, 64))
	return []string{
		"-hide_banner",
		"-nostats",
		"-i", audioPath,
		"-af", filter,
		"-f", "null",
		"-",
	}
}

// Detect returns the silences FFmpeg reports for audioPath.
func (d *FFmpegSilenceDetector) Detect(ctx context.Context, audioPath string) ([]segment.Interval, error) {
	args := silenceDetectArgs(audioPath, d.noiseDB, d.minSilence)
	d.logger.Debug("detecting silence", zap.String("ffmpeg", d.ffmpegPath), zap.Strings("args", args))

	output, err := d.cmd.CombinedOutput(ctx, d.ffmpegPath, args)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrDetectionFailed, audioPath, err, lastLine(string(output)))
	}

	silences := parseSilenceOutput(string(output))
	d.logger.Debug("silences detected", zap.String("path", audioPath), zap.Int("count", len(silences)))
	return silences, nil
}

var (
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[\d.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*(-?[\d.]+)`)
)

// parseSilenceOutput pairs silence_start/silence_end lines into intervals.
// A start without a matching end is dropped, and a start slightly before zero
// (FFmpeg reports the filter delay) is clamped to zero.
func parseSilenceOutput(output string) []segment.Interval {
	var silences []segment.Interval
	var currentStart float64
	hasStart := false

	for line := range strings.SplitSeq(output, "\n") {
		if matches := silenceStartRe.FindStringSubmatch(line); matches != nil {
			seconds, err := strconv.ParseFloat(matches[1], 64)
			if err == nil {
				currentStart = max(seconds, 0)
				hasStart = true
			}
		}
		if matches := silenceEndRe.FindStringSubmatch(line); matches != nil && hasStart {
			seconds, err := strconv.ParseFloat(matches[1], 64)
			if err == nil {
				silences = append(silences, segment.Interval{Start: currentStart, End: seconds})
				hasStart = false
			}
		}
	}

	return silences
}

// lastLine returns the last non-empty line of FFmpeg output, which holds the error.
func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
