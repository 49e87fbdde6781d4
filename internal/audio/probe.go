package audio

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/alnah/go-dictation/internal/ffmpeg"
)

// Compile-time interface implementation checks.
var (
	_ DurationProbe = (*FFmpegProbe)(nil)
	_ DurationProbe = StaticProbe(0)
)

// DurationProbe reports the total length of an audio file in seconds.
type DurationProbe interface {
	Probe(ctx context.Context, audioPath string) (float64, error)
}

// durationRe matches the container duration FFmpeg prints while opening an input,
// e.g. "  Duration: 00:05:23.45, start: 0.000000, bitrate: 128 kb/s".
var durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)

// ParseDuration extracts the first "Duration: HH:MM:SS.ff" from FFmpeg diagnostic text.
// The fractional digits are a decimal fraction of a second, so ".45" is 450ms
// and ".4" is 400ms. Returns ErrDurationNotFound when no line matches.
func ParseDuration(text string) (float64, error) {
	m := durationRe.FindStringSubmatch(text)
	if m == nil {
		return 0, ErrDurationNotFound
	}

	h, errH := strconv.Atoi(m[1])
	mm, errM := strconv.Atoi(m[2])
	s, errS := strconv.Atoi(m[3])
	frac, errF := strconv.ParseFloat("0."+m[4], 64)
	if errH != nil || errM != nil || errS != nil || errF != nil {
		return 0, fmt.Errorf("%w: malformed %q", ErrDurationNotFound, m[0])
	}

	return float64(h*3600+mm*60+s) + frac, nil
}

// FFmpegProbe reads the duration FFmpeg reports while decoding to a null sink.
type FFmpegProbe struct {
	ffmpegPath string

	// Injectable dependencies (defaults to OS implementations).
	cmd    commandRunner
	logger *zap.Logger
}

// ProbeOption configures an FFmpegProbe.
type ProbeOption func(*FFmpegProbe)

// WithProbeCommandRunner sets the command runner for FFmpegProbe.
func WithProbeCommandRunner(r commandRunner) ProbeOption {
	return func(p *FFmpegProbe) {
		p.cmd = r
	}
}

// WithProbeLogger sets the logger for FFmpegProbe.
func WithProbeLogger(l *zap.Logger) ProbeOption {
	return func(p *FFmpegProbe) {
		p.logger = l
	}
}

// NewFFmpegProbe creates an FFmpegProbe using the given binary.
func NewFFmpegProbe(ffmpegPath string, opts ...ProbeOption) (*FFmpegProbe, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}

	p := &FFmpegProbe{
		ffmpegPath: ffmpegPath,
		cmd:        osCommandRunner{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// probeArgs decodes the whole input to a null sink so FFmpeg prints the header.
func probeArgs(audioPath string) []string {
	return []string{"-hide_banner", "-i", audioPath, "-f", "null", "-"}
}

// Probe returns the duration of audioPath in seconds.
func (p *FFmpegProbe) Probe(ctx context.Context, audioPath string) (float64, error) {
	args := probeArgs(audioPath)
	p.logger.Debug("probing duration", zap.String("ffmpeg", p.ffmpegPath), zap.Strings("args", args))

	output, err := p.cmd.CombinedOutput(ctx, p.ffmpegPath, args)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}
	if err != nil && len(output) == 0 {
		// FFmpeg may exit non-zero after printing the header; only an empty output is fatal.
		return 0, fmt.Errorf("probe %s: %w", audioPath, err)
	}

	seconds, err := ParseDuration(string(output))
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", audioPath, err)
	}

	p.logger.Debug("probed duration", zap.String("path", audioPath), zap.Float64("seconds", seconds))
	return seconds, nil
}

// StaticProbe reports a fixed duration for any input.
type StaticProbe float64

// Probe returns the fixed duration.
func (s StaticProbe) Probe(ctx context.Context, _ string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return float64(s), nil
}
