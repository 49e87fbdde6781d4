package cli

import (
	"context"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/alnah/go-dictation/internal/audio"
	"github.com/alnah/go-dictation/internal/config"
	"github.com/alnah/go-dictation/internal/ffmpeg"
	"github.com/alnah/go-dictation/internal/logger"
	"github.com/alnah/go-dictation/internal/transcribe"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have defaults via DefaultEnv(). Tests can override specific
// fields using the With* options or by creating a custom Env.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// Global flags, filled in by the root command.
	ConfigPath string
	Verbose    bool

	// NewLogger builds the logger once global flags are parsed.
	NewLogger func(verbose bool) *zap.Logger
	// Logger is set before any subcommand runs.
	Logger *zap.Logger

	// Factories for domain objects
	FFmpegResolver     FFmpegResolver
	ConfigLoader       ConfigLoader
	ProbeFactory       ProbeFactory
	DetectorFactory    DetectorFactory
	TranscriberFactory TranscriberFactory
}

// FFmpegResolver resolves the path to the FFmpeg binary.
type FFmpegResolver interface {
	Resolve(ctx context.Context) (string, error)
	CheckVersion(ctx context.Context, ffmpegPath string, logger *zap.Logger)
}

// ConfigLoader opens the layered settings store.
type ConfigLoader interface {
	Load(path string) (*config.Store, error)
}

// ProbeFactory creates duration probes.
type ProbeFactory interface {
	NewProbe(ffmpegPath string, logger *zap.Logger) (audio.DurationProbe, error)
}

// EnergyAnalyzer scans decoded PCM for silence and reports the decoded length.
type EnergyAnalyzer interface {
	Analyze(ctx context.Context, audioPath string) (*audio.Analysis, error)
}

// DetectorFactory creates silence detectors.
type DetectorFactory interface {
	NewSilenceDetector(ffmpegPath string, cfg config.SilenceConfig, logger *zap.Logger) (audio.SilenceDetector, error)
	NewEnergyAnalyzer(ffmpegPath string, cfg config.EnergyConfig, logger *zap.Logger) (EnergyAnalyzer, error)
}

// TranscriberFactory creates speech-to-text backends.
type TranscriberFactory interface {
	NewTranscriber(provider Provider, cfg config.TranscribeConfig, apiKey string, logger *zap.Logger) (transcribe.Transcriber, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithLoggerFactory sets how the logger is built from --verbose.
func WithLoggerFactory(fn func(verbose bool) *zap.Logger) EnvOption {
	return func(e *Env) {
		e.NewLogger = fn
	}
}

// WithFFmpegResolver sets the FFmpeg resolver.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) {
		e.FFmpegResolver = r
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithProbeFactory sets the duration probe factory.
func WithProbeFactory(f ProbeFactory) EnvOption {
	return func(e *Env) {
		e.ProbeFactory = f
	}
}

// WithDetectorFactory sets the silence detector factory.
func WithDetectorFactory(f DetectorFactory) EnvOption {
	return func(e *Env) {
		e.DetectorFactory = f
	}
}

// WithTranscriberFactory sets the transcriber factory.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) {
		e.TranscriberFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:             os.Stdout,
		Stderr:             os.Stderr,
		Getenv:             os.Getenv,
		NewLogger:          logger.New,
		Logger:             zap.NewNop(),
		FFmpegResolver:     &defaultFFmpegResolver{},
		ConfigLoader:       &defaultConfigLoader{},
		ProbeFactory:       &defaultProbeFactory{},
		DetectorFactory:    &defaultDetectorFactory{},
		TranscriberFactory: &defaultTranscriberFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultFFmpegResolver implements FFmpegResolver using the ffmpeg package.
type defaultFFmpegResolver struct{}

func (defaultFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	return ffmpeg.Resolve(ctx)
}

func (defaultFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string, logger *zap.Logger) {
	ffmpeg.NewVersionChecker(ffmpeg.WithVersionLogger(logger)).Check(ctx, ffmpegPath)
}

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load(path string) (*config.Store, error) {
	return config.Open(path)
}

// defaultProbeFactory implements ProbeFactory with ffmpeg.
type defaultProbeFactory struct{}

func (defaultProbeFactory) NewProbe(ffmpegPath string, logger *zap.Logger) (audio.DurationProbe, error) {
	p, err := audio.NewFFmpegProbe(ffmpegPath, audio.WithProbeLogger(logger))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// defaultDetectorFactory implements DetectorFactory with ffmpeg and go-audio.
type defaultDetectorFactory struct{}

func (defaultDetectorFactory) NewSilenceDetector(ffmpegPath string, cfg config.SilenceConfig, logger *zap.Logger) (audio.SilenceDetector, error) {
	d, err := audio.NewFFmpegSilenceDetector(ffmpegPath,
		audio.WithNoiseDB(cfg.NoiseDB),
		audio.WithMinSilence(cfg.MinSilenceLen),
		audio.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (defaultDetectorFactory) NewEnergyAnalyzer(ffmpegPath string, cfg config.EnergyConfig, logger *zap.Logger) (EnergyAnalyzer, error) {
	d, err := audio.NewEnergyDetector(ffmpegPath,
		audio.WithThresholdDBFS(cfg.ThresholdDBFS),
		audio.WithEnergyMinSilence(cfg.MinSilenceLen),
		audio.WithSeekStep(cfg.SeekStep),
		audio.WithEnergyLogger(logger))
	if err != nil {
		return nil, err
	}
	return d, nil
}

// defaultTranscriberFactory implements TranscriberFactory with OpenAI or a
// self-hosted Whisper ASR service.
type defaultTranscriberFactory struct{}

func (defaultTranscriberFactory) NewTranscriber(provider Provider, cfg config.TranscribeConfig, apiKey string, logger *zap.Logger) (transcribe.Transcriber, error) {
	if provider.IsLocal() {
		t, err := transcribe.NewASRTranscriber(cfg.ASRURL, transcribe.WithASRLogger(logger))
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	client := openai.NewClient(apiKey)
	return transcribe.NewOpenAITranscriber(client, transcribe.WithLogger(logger)), nil
}

// Compile-time interface verification.
var (
	_ FFmpegResolver     = (*defaultFFmpegResolver)(nil)
	_ ConfigLoader       = (*defaultConfigLoader)(nil)
	_ ProbeFactory       = (*defaultProbeFactory)(nil)
	_ DetectorFactory    = (*defaultDetectorFactory)(nil)
	_ TranscriberFactory = (*defaultTranscriberFactory)(nil)
	_ EnergyAnalyzer     = (*audio.EnergyDetector)(nil)
)
