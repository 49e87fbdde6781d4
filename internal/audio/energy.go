package audio

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"go.uber.org/zap"

	"github.com/alnah/go-dictation/internal/ffmpeg"
	"github.com/alnah/go-dictation/internal/segment"
)

// Default energy detection parameters.
const (
	// DefaultThresholdDBFS is the window loudness, relative to full scale,
	// at or below which a window is silent.
	DefaultThresholdDBFS = -40.0

	// DefaultEnergyMinSilence is the window length in seconds.
	DefaultEnergyMinSilence = 0.5

	// DefaultSeekStep is the distance in seconds between window starts.
	DefaultSeekStep = 0.1

	// transcodeSampleRate is the rate non-WAV inputs are decoded to.
	transcodeSampleRate = 16000
)

// Analysis is the result of an energy scan.
type Analysis struct {
	Silences []segment.Interval
	// Duration is the decoded length in seconds.
	Duration float64
}

// EnergyDetector finds silence by measuring the RMS level of sliding windows
// over the decoded PCM samples.
type EnergyDetector struct {
	ffmpegPath    string
	thresholdDBFS float64
	minSilence    float64
	seekStep      float64

	// Injectable dependencies (defaults to OS implementations).
	cmd     commandRunner
	tempDir tempDirCreator
	files   fileRemover
	logger  *zap.Logger
}

// EnergyOption configures an EnergyDetector.
type EnergyOption func(*EnergyDetector)

// WithThresholdDBFS sets the silence threshold in dBFS (e.g. -40).
func WithThresholdDBFS(db float64) EnergyOption {
	return func(e *EnergyDetector) {
		e.thresholdDBFS = db
	}
}

// WithEnergyMinSilence sets the window length in seconds.
func WithEnergyMinSilence(seconds float64) EnergyOption {
	return func(e *EnergyDetector) {
		e.minSilence = seconds
	}
}

// WithSeekStep sets the step between windows in seconds.
func WithSeekStep(seconds float64) EnergyOption {
	return func(e *EnergyDetector) {
		e.seekStep = seconds
	}
}

// WithEnergyCommandRunner sets the command runner used for transcoding.
func WithEnergyCommandRunner(r commandRunner) EnergyOption {
	return func(e *EnergyDetector) {
		e.cmd = r
	}
}

// WithEnergyTempDir sets the temp directory creator used for transcoding.
func WithEnergyTempDir(t tempDirCreator) EnergyOption {
	return func(e *EnergyDetector) {
		e.tempDir = t
	}
}

// WithEnergyFileRemover sets the file remover used to clean up transcodes.
func WithEnergyFileRemover(f fileRemover) EnergyOption {
	return func(e *EnergyDetector) {
		e.files = f
	}
}

// WithEnergyLogger sets the logger for EnergyDetector.
func WithEnergyLogger(l *zap.Logger) EnergyOption {
	return func(e *EnergyDetector) {
		e.logger = l
	}
}

// NewEnergyDetector creates an EnergyDetector. ffmpegPath is used only for
// inputs that are not already WAV.
func NewEnergyDetector(ffmpegPath string, opts ...EnergyOption) (*EnergyDetector, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}

	e := &EnergyDetector{
		ffmpegPath:    ffmpegPath,
		thresholdDBFS: DefaultThresholdDBFS,
		minSilence:    DefaultEnergyMinSilence,
		seekStep:      DefaultSeekStep,
		cmd:           osCommandRunner{},
		tempDir:       osTempDirCreator{},
		files:         osFileRemover{},
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.minSilence <= 0 {
		return nil, fmt.Errorf("%w: minimum silence %v must be positive", segment.ErrInvalidConfig, e.minSilence)
	}
	if e.seekStep <= 0 {
		return nil, fmt.Errorf("%w: seek step %v must be positive", segment.ErrInvalidConfig, e.seekStep)
	}
	return e, nil
}

// Detect returns the silent ranges of audioPath.
func (e *EnergyDetector) Detect(ctx context.Context, audioPath string) ([]segment.Interval, error) {
	a, err := e.Analyze(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	return a.Silences, nil
}

// Analyze decodes audioPath and returns its silent ranges and decoded duration.
// Inputs without a .wav extension are first transcoded to 16 kHz mono WAV
// in a temporary directory that is removed afterwards.
func (e *EnergyDetector) Analyze(ctx context.Context, audioPath string) (*Analysis, error) {
	wavPath := audioPath
	if !strings.EqualFold(filepath.Ext(audioPath), ".wav") {
		dir, err := e.tempDir.MkdirTemp("", "dictation-energy-*")
		if err != nil {
			return nil, fmt.Errorf("create temp dir: %w", err)
		}
		defer func() {
			if err := e.files.RemoveAll(dir); err != nil {
				e.logger.Warn("temp dir cleanup failed", zap.String("dir", dir), zap.Error(err))
			}
		}()

		wavPath = filepath.Join(dir, "decoded.wav")
		if err := e.transcode(ctx, audioPath, wavPath); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	samples, err := decodeWAV(wavPath)
	if err != nil {
		return nil, err
	}

	silences := detectSilence(samples, e.thresholdDBFS, e.minSilence, e.seekStep)
	e.logger.Debug("energy scan complete",
		zap.String("path", audioPath),
		zap.Int("sample_rate", samples.sampleRate),
		zap.Int("channels", samples.channels),
		zap.Int("bit_depth", samples.bitDepth),
		zap.Int("silences", len(silences)))

	return &Analysis{Silences: silences, Duration: samples.duration()}, nil
}

// transcodeArgs converts any input FFmpeg can read to 16-bit mono WAV.
func transcodeArgs(inPath, outPath string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-i", inPath,
		"-ac", "1",
		"-ar", fmt.Sprint(transcodeSampleRate),
		"-c:a", "pcm_s16le",
		"-f", "wav",
		outPath,
	}
}

func (e *EnergyDetector) transcode(ctx context.Context, inPath, outPath string) error {
	args := transcodeArgs(inPath, outPath)
	e.logger.Debug("transcoding to wav", zap.String("ffmpeg", e.ffmpegPath), zap.Strings("args", args))

	output, err := e.cmd.CombinedOutput(ctx, e.ffmpegPath, args)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v: %s", ErrTranscodeFailed, inPath, err, lastLine(string(output)))
	}
	return nil
}

// pcm holds interleaved integer samples.
type pcm struct {
	samples    []int
	channels   int
	sampleRate int
	bitDepth   int
}

func (p pcm) frames() int {
	return len(p.samples) / p.channels
}

func (p pcm) duration() float64 {
	return float64(p.frames()) / float64(p.sampleRate)
}

// decodeWAV reads a whole PCM WAV file into memory.
func decodeWAV(path string) (pcm, error) {
	f, err := os.Open(path) // #nosec G304 -- path is the user's input or our own transcode
	if err != nil {
		return pcm{}, fmt.Errorf("open wav: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return pcm{}, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return pcm{}, fmt.Errorf("%w: read PCM: %v", ErrInvalidWAV, err)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(decoder.BitDepth)
	}
	p := pcm{
		samples:    buf.Data,
		channels:   buf.Format.NumChannels,
		sampleRate: buf.Format.SampleRate,
		bitDepth:   bitDepth,
	}
	if p.channels <= 0 || p.sampleRate <= 0 || p.bitDepth <= 0 {
		return pcm{}, fmt.Errorf("%w: %d channels at %d Hz, %d bits", ErrInvalidWAV, p.channels, p.sampleRate, p.bitDepth)
	}
	return p, nil
}

// detectSilence slides a window of minSilence seconds across the samples in
// steps of seekStep seconds. A window is silent when its RMS is at or below
// thresholdDBFS relative to the largest representable amplitude. Silent window
// starts that are adjacent or overlap merge into one range, which ends one
// window length after its last silent start. The final window is always
// aligned to the end of the audio.
func detectSilence(p pcm, thresholdDBFS, minSilence, seekStep float64) []segment.Interval {
	rate := float64(p.sampleRate)
	window := int(math.Round(minSilence * rate))
	step := max(1, int(math.Round(seekStep*rate)))
	frames := p.frames()
	if window <= 0 || frames < window {
		return nil
	}

	maxAmplitude := math.Ldexp(1, p.bitDepth-1)
	threshold := maxAmplitude * math.Pow(10, thresholdDBFS/20)

	silent := func(start int) bool {
		var sum float64
		for _, s := range p.samples[start*p.channels : (start+window)*p.channels] {
			v := float64(s)
			sum += v * v
		}
		return math.Sqrt(sum/float64(window*p.channels)) <= threshold
	}

	last := frames - window
	var starts []int
	for i := 0; i <= last; i += step {
		if silent(i) {
			starts = append(starts, i)
		}
	}
	if last%step != 0 && silent(last) {
		starts = append(starts, last)
	}
	if len(starts) == 0 {
		return nil
	}

	toInterval := func(from, to int) segment.Interval {
		return segment.Interval{Start: float64(from) / rate, End: float64(to) / rate}
	}

	var ranges []segment.Interval
	rangeStart, prev := starts[0], starts[0]
	for _, s := range starts[1:] {
		continuous := s == prev+step
		hasGap := s > prev+window
		if !continuous && hasGap {
			ranges = append(ranges, toInterval(rangeStart, prev+window))
			rangeStart = s
		}
		prev = s
	}
	ranges = append(ranges, toInterval(rangeStart, prev+window))

	return ranges
}
