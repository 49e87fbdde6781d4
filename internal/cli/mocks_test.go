package cli

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/alnah/go-dictation/internal/audio"
	"github.com/alnah/go-dictation/internal/config"
	"github.com/alnah/go-dictation/internal/segment"
	"github.com/alnah/go-dictation/internal/transcribe"
)

// ---------------------------------------------------------------------------
// Mock FFmpegResolver
// ---------------------------------------------------------------------------

type mockFFmpegResolver struct {
	ResolveFunc func(ctx context.Context) (string, error)

	mu                sync.Mutex
	resolveCalls      int
	checkVersionCalls []string
}

func (m *mockFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx)
	}
	return "/usr/bin/ffmpeg", nil
}

func (m *mockFFmpegResolver) CheckVersion(_ context.Context, ffmpegPath string, _ *zap.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkVersionCalls = append(m.checkVersionCalls, ffmpegPath)
}

func (m *mockFFmpegResolver) ResolveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveCalls
}

// ---------------------------------------------------------------------------
// Mock ConfigLoader - opens a real store on a test-owned path
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	path     string
	LoadFunc func(path string) (*config.Store, error)

	mu        sync.Mutex
	loadPaths []string
}

func (m *mockConfigLoader) Load(path string) (*config.Store, error) {
	m.mu.Lock()
	m.loadPaths = append(m.loadPaths, path)
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc(path)
	}
	if path == "" {
		path = m.path
	}
	return config.Open(path)
}

// ---------------------------------------------------------------------------
// Mock ProbeFactory
// ---------------------------------------------------------------------------

type mockProbeFactory struct {
	Duration float64
	ProbeErr error
	NewErr   error

	mu          sync.Mutex
	ffmpegPaths []string
}

func (m *mockProbeFactory) NewProbe(ffmpegPath string, _ *zap.Logger) (audio.DurationProbe, error) {
	m.mu.Lock()
	m.ffmpegPaths = append(m.ffmpegPaths, ffmpegPath)
	m.mu.Unlock()

	if m.NewErr != nil {
		return nil, m.NewErr
	}
	if m.ProbeErr != nil {
		return failingProbe{err: m.ProbeErr}, nil
	}
	return audio.StaticProbe(m.Duration), nil
}

type failingProbe struct {
	err error
}

func (p failingProbe) Probe(context.Context, string) (float64, error) {
	return 0, p.err
}

// ---------------------------------------------------------------------------
// Mock DetectorFactory
// ---------------------------------------------------------------------------

type mockDetectorFactory struct {
	Silences  []segment.Interval
	DetectErr error
	Analysis  *audio.Analysis
	NewErr    error

	mu            sync.Mutex
	silenceConfig []config.SilenceConfig
	energyConfig  []config.EnergyConfig
	detectPaths   []string
}

func (m *mockDetectorFactory) NewSilenceDetector(_ string, cfg config.SilenceConfig, _ *zap.Logger) (audio.SilenceDetector, error) {
	m.mu.Lock()
	m.silenceConfig = append(m.silenceConfig, cfg)
	m.mu.Unlock()

	if m.NewErr != nil {
		return nil, m.NewErr
	}
	return &mockDetector{factory: m}, nil
}

func (m *mockDetectorFactory) NewEnergyAnalyzer(_ string, cfg config.EnergyConfig, _ *zap.Logger) (EnergyAnalyzer, error) {
	m.mu.Lock()
	m.energyConfig = append(m.energyConfig, cfg)
	m.mu.Unlock()

	if m.NewErr != nil {
		return nil, m.NewErr
	}
	return &mockDetector{factory: m}, nil
}

type mockDetector struct {
	factory *mockDetectorFactory
}

func (d *mockDetector) Detect(ctx context.Context, audioPath string) ([]segment.Interval, error) {
	d.factory.mu.Lock()
	d.factory.detectPaths = append(d.factory.detectPaths, audioPath)
	d.factory.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.factory.DetectErr != nil {
		return nil, d.factory.DetectErr
	}
	return append([]segment.Interval(nil), d.factory.Silences...), nil
}

func (d *mockDetector) Analyze(ctx context.Context, audioPath string) (*audio.Analysis, error) {
	silences, err := d.Detect(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	if d.factory.Analysis != nil {
		return d.factory.Analysis, nil
	}
	return &audio.Analysis{Silences: silences}, nil
}

// ---------------------------------------------------------------------------
// Mock TranscriberFactory
// ---------------------------------------------------------------------------

type transcriberCall struct {
	Provider Provider
	Config   config.TranscribeConfig
	APIKey   string
}

type mockTranscriberFactory struct {
	Segments      []transcribe.Segment
	TranscribeErr error
	NewErr        error

	mu        sync.Mutex
	calls     []transcriberCall
	lastOpts  transcribe.Options
	lastAudio string
}

func (m *mockTranscriberFactory) NewTranscriber(provider Provider, cfg config.TranscribeConfig, apiKey string, _ *zap.Logger) (transcribe.Transcriber, error) {
	m.mu.Lock()
	m.calls = append(m.calls, transcriberCall{Provider: provider, Config: cfg, APIKey: apiKey})
	m.mu.Unlock()

	if m.NewErr != nil {
		return nil, m.NewErr
	}
	return m, nil
}

// Transcribe lets the factory double as the transcriber it hands out.
func (m *mockTranscriberFactory) Transcribe(ctx context.Context, audioPath string, opts transcribe.Options) ([]transcribe.Segment, error) {
	m.mu.Lock()
	m.lastOpts = opts
	m.lastAudio = audioPath
	m.mu.Unlock()

	if m.TranscribeErr != nil {
		return nil, m.TranscribeErr
	}
	return transcribe.Static(m.Segments).Transcribe(ctx, audioPath, opts)
}

func (m *mockTranscriberFactory) Calls() []transcriberCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]transcriberCall(nil), m.calls...)
}

// Compile-time interface verification.
var (
	_ FFmpegResolver         = (*mockFFmpegResolver)(nil)
	_ ConfigLoader           = (*mockConfigLoader)(nil)
	_ ProbeFactory           = (*mockProbeFactory)(nil)
	_ DetectorFactory        = (*mockDetectorFactory)(nil)
	_ TranscriberFactory     = (*mockTranscriberFactory)(nil)
	_ audio.SilenceDetector  = (*mockDetector)(nil)
	_ EnergyAnalyzer         = (*mockDetector)(nil)
	_ transcribe.Transcriber = (*mockTranscriberFactory)(nil)
)
