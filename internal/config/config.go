// Package config holds the thresholds and settings shared by all commands.
//
// Values resolve in this order: command flag, DICTATION_* environment
// variable, config file, built-in default.
package config

import (
	"fmt"
	"maps"
	"math"
	"net/url"
	"slices"

	"github.com/alnah/go-dictation/internal/lang"
)

// Config keys, dotted as they appear in the YAML file.
const (
	KeyTitle     = "title"
	KeyOutputDir = "output_dir"

	KeyGridWindowLen = "grid.window_len"
	KeyGridMinLen    = "grid.min_len"
	KeyGridOverlap   = "grid.overlap"

	KeySilenceNoiseDB       = "silence.noise_db"
	KeySilenceMinSilenceLen = "silence.min_silence_len"
	KeySilenceMinGap        = "silence.min_gap"
	KeySilenceMinTail       = "silence.min_tail"

	KeyEnergyThresholdDBFS = "energy.threshold_dbfs"
	KeyEnergyMinSilenceLen = "energy.min_silence_len"
	KeyEnergyMinSoundLen   = "energy.min_sound_len"
	KeyEnergySeekStep      = "energy.seek_step"

	KeyTranscribeProvider = "transcribe.provider"
	KeyTranscribeModel    = "transcribe.model"
	KeyTranscribeLanguage = "transcribe.language"
	KeyTranscribeASRURL   = "transcribe.asr_url"
)

// EnvPrefix prefixes every environment override, e.g. DICTATION_GRID_WINDOW_LEN.
const EnvPrefix = "DICTATION"

// Transcription providers.
const (
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"
)

// Config is the resolved set of settings for one run.
type Config struct {
	Title      string           `mapstructure:"title"`
	OutputDir  string           `mapstructure:"output_dir"`
	Grid       GridConfig       `mapstructure:"grid"`
	Silence    SilenceConfig    `mapstructure:"silence"`
	Energy     EnergyConfig     `mapstructure:"energy"`
	Transcribe TranscribeConfig `mapstructure:"transcribe"`
}

// GridConfig drives fixed-interval segmentation.
type GridConfig struct {
	WindowLen float64 `mapstructure:"window_len"`
	MinLen    float64 `mapstructure:"min_len"`
	Overlap   float64 `mapstructure:"overlap"`
}

// SilenceConfig drives ffmpeg silencedetect and the speech inversion.
type SilenceConfig struct {
	NoiseDB       float64 `mapstructure:"noise_db"`
	MinSilenceLen float64 `mapstructure:"min_silence_len"`
	MinGap        float64 `mapstructure:"min_gap"`
	MinTail       float64 `mapstructure:"min_tail"`
}

// EnergyConfig drives the PCM energy detector.
type EnergyConfig struct {
	ThresholdDBFS float64 `mapstructure:"threshold_dbfs"`
	MinSilenceLen float64 `mapstructure:"min_silence_len"`
	MinSoundLen   float64 `mapstructure:"min_sound_len"`
	SeekStep      float64 `mapstructure:"seek_step"`
}

// TranscribeConfig selects the speech-to-text backend.
type TranscribeConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`
	ASRURL   string `mapstructure:"asr_url"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Grid: GridConfig{
			WindowLen: 4.0,
			MinLen:    2.0,
			Overlap:   0,
		},
		Silence: SilenceConfig{
			NoiseDB:       -35,
			MinSilenceLen: 0.3,
			MinGap:        0.5,
			MinTail:       1.0,
		},
		Energy: EnergyConfig{
			ThresholdDBFS: -40,
			MinSilenceLen: 0.5,
			MinSoundLen:   1.0,
			SeekStep:      0.1,
		},
		Transcribe: TranscribeConfig{
			Provider: ProviderOpenAI,
			Model:    "whisper-1",
			Language: "en",
			ASRURL:   "http://localhost:9000",
		},
	}
}

// defaults flattens Default() into dotted keys.
func defaults() map[string]any {
	d := Default()
	return map[string]any{
		KeyTitle:                d.Title,
		KeyOutputDir:            d.OutputDir,
		KeyGridWindowLen:        d.Grid.WindowLen,
		KeyGridMinLen:           d.Grid.MinLen,
		KeyGridOverlap:          d.Grid.Overlap,
		KeySilenceNoiseDB:       d.Silence.NoiseDB,
		KeySilenceMinSilenceLen: d.Silence.MinSilenceLen,
		KeySilenceMinGap:        d.Silence.MinGap,
		KeySilenceMinTail:       d.Silence.MinTail,
		KeyEnergyThresholdDBFS:  d.Energy.ThresholdDBFS,
		KeyEnergyMinSilenceLen:  d.Energy.MinSilenceLen,
		KeyEnergyMinSoundLen:    d.Energy.MinSoundLen,
		KeyEnergySeekStep:       d.Energy.SeekStep,
		KeyTranscribeProvider:   d.Transcribe.Provider,
		KeyTranscribeModel:      d.Transcribe.Model,
		KeyTranscribeLanguage:   d.Transcribe.Language,
		KeyTranscribeASRURL:     d.Transcribe.ASRURL,
	}
}

// Keys returns every supported key, sorted.
func Keys() []string {
	d := defaults()
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// IsValidKey reports whether key is a supported setting.
func IsValidKey(key string) bool {
	_, ok := defaults()[key]
	return ok
}

// isNumericKey reports whether key holds seconds or decibels.
func isNumericKey(key string) bool {
	_, ok := defaults()[key].(float64)
	return ok
}

// Validate checks every section. Grid bounds are checked again by the
// segmenter itself; this catches them before any ffmpeg work starts.
func (c Config) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if err := c.Silence.Validate(); err != nil {
		return err
	}
	if err := c.Energy.Validate(); err != nil {
		return err
	}
	return c.Transcribe.Validate()
}

// Validate checks the grid settings.
func (g GridConfig) Validate() error {
	if err := finite(map[string]float64{
		KeyGridWindowLen: g.WindowLen,
		KeyGridMinLen:    g.MinLen,
		KeyGridOverlap:   g.Overlap,
	}); err != nil {
		return err
	}
	switch {
	case g.WindowLen <= 0:
		return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, KeyGridWindowLen, g.WindowLen)
	case g.MinLen < 0:
		return fmt.Errorf("%w: %s cannot be negative, got %v", ErrInvalid, KeyGridMinLen, g.MinLen)
	case g.Overlap < 0 || g.Overlap >= g.WindowLen:
		return fmt.Errorf("%w: %s must be in [0, %v), got %v", ErrInvalid, KeyGridOverlap, g.WindowLen, g.Overlap)
	}
	return nil
}

// Validate checks the silencedetect settings.
func (s SilenceConfig) Validate() error {
	if err := finite(map[string]float64{
		KeySilenceNoiseDB:       s.NoiseDB,
		KeySilenceMinSilenceLen: s.MinSilenceLen,
		KeySilenceMinGap:        s.MinGap,
		KeySilenceMinTail:       s.MinTail,
	}); err != nil {
		return err
	}
	switch {
	case s.NoiseDB > 0:
		return fmt.Errorf("%w: %s must be <= 0 dB, got %v", ErrInvalid, KeySilenceNoiseDB, s.NoiseDB)
	case s.MinSilenceLen <= 0:
		return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, KeySilenceMinSilenceLen, s.MinSilenceLen)
	case s.MinGap < 0:
		return fmt.Errorf("%w: %s cannot be negative, got %v", ErrInvalid, KeySilenceMinGap, s.MinGap)
	case s.MinTail < 0:
		return fmt.Errorf("%w: %s cannot be negative, got %v", ErrInvalid, KeySilenceMinTail, s.MinTail)
	}
	return nil
}

// Validate checks the energy detector settings.
func (e EnergyConfig) Validate() error {
	if err := finite(map[string]float64{
		KeyEnergyThresholdDBFS: e.ThresholdDBFS,
		KeyEnergyMinSilenceLen: e.MinSilenceLen,
		KeyEnergyMinSoundLen:   e.MinSoundLen,
		KeyEnergySeekStep:      e.SeekStep,
	}); err != nil {
		return err
	}
	switch {
	case e.ThresholdDBFS > 0:
		return fmt.Errorf("%w: %s must be <= 0 dBFS, got %v", ErrInvalid, KeyEnergyThresholdDBFS, e.ThresholdDBFS)
	case e.MinSilenceLen <= 0:
		return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, KeyEnergyMinSilenceLen, e.MinSilenceLen)
	case e.MinSoundLen < 0:
		return fmt.Errorf("%w: %s cannot be negative, got %v", ErrInvalid, KeyEnergyMinSoundLen, e.MinSoundLen)
	case e.SeekStep <= 0:
		return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, KeyEnergySeekStep, e.SeekStep)
	}
	return nil
}

// finite rejects NaN and infinities, which slip past ordered comparisons.
// Keys are checked in sorted order so the reported key is stable.
func finite(values map[string]float64) error {
	for _, key := range slices.Sorted(maps.Keys(values)) {
		if v := values[key]; math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a finite number, got %v", ErrInvalid, key, v)
		}
	}
	return nil
}

// Validate checks the transcription settings.
func (t TranscribeConfig) Validate() error {
	switch t.Provider {
	case ProviderOpenAI:
	case ProviderLocal:
		u, err := url.Parse(t.ASRURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %s must be an http(s) URL, got %q", ErrInvalid, KeyTranscribeASRURL, t.ASRURL)
		}
	default:
		return fmt.Errorf("%w: %s must be %q or %q, got %q", ErrInvalid, KeyTranscribeProvider, ProviderOpenAI, ProviderLocal, t.Provider)
	}
	if t.Model == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalid, KeyTranscribeModel)
	}
	if err := lang.Validate(t.Language); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, KeyTranscribeLanguage, err)
	}
	return nil
}
