package cli

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alnah/go-dictation/internal/config"
	"github.com/alnah/go-dictation/internal/draft"
	"github.com/alnah/go-dictation/internal/lang"
	"github.com/alnah/go-dictation/internal/segment"
	"github.com/alnah/go-dictation/internal/template"
	"github.com/alnah/go-dictation/internal/transcribe"
)

// EnvOpenAIAPIKey is the environment variable holding the OpenAI key.
const EnvOpenAIAPIKey = "OPENAI_API_KEY"

// supportedFormats lists audio formats accepted by Whisper backends.
// Source: https://platform.openai.com/docs/guides/speech-to-text
var supportedFormats = map[string]bool{
	".ogg":  true,
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
	".mp4":  true,
	".mpeg": true,
	".mpga": true,
	".webm": true,
}

// supportedFormatsList returns a sorted, comma-separated list for error messages.
func supportedFormatsList() string {
	formats := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		formats = append(formats, strings.TrimPrefix(ext, "."))
	}
	slices.Sort(formats)
	return strings.Join(formats, ", ")
}

// transcribeFlagKeys binds transcribe flags to their config keys.
var transcribeFlagKeys = map[string]string{
	"provider": config.KeyTranscribeProvider,
	"model":    config.KeyTranscribeModel,
	"language": config.KeyTranscribeLanguage,
	"asr-url":  config.KeyTranscribeASRURL,
}

// transcribeOptions are the flags specific to the transcribe command.
type transcribeOptions struct {
	outputOptions
	prompt    string
	noSnippet bool
}

// TranscribeCmd creates the transcribe command.
// The env parameter provides injectable dependencies for testing.
func TranscribeCmd(env *Env) *cobra.Command {
	var opts transcribeOptions
	defaults := config.Default().Transcribe

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Segment a recording with speech recognition",
		Long: `Transcribe a recording and use each recognized utterance as a segment,
with its text filled in.

--provider openai uses the OpenAI Whisper API (needs OPENAI_API_KEY).
--provider local posts to a self-hosted Whisper ASR webservice at --asr-url.

After saving, a sampleSentences literal is printed to stdout.

Supported formats: ` + supportedFormatsList(),
		Example: `  dictation transcribe lesson.mp3
  dictation transcribe lesson.mp3 -l fr --model whisper-1
  dictation transcribe lesson.mp3 --provider local --asr-url http://gpu-box:9000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, env, args[0], opts)
		},
	}

	cmd.Flags().String("provider", defaults.Provider, "Speech-to-text backend: openai, local")
	cmd.Flags().String("model", defaults.Model, "Recognition model")
	cmd.Flags().StringP("language", "l", defaults.Language, "Audio language (ISO 639-1 code, e.g. en, fr, pt-BR; empty for auto-detect)")
	cmd.Flags().String("asr-url", defaults.ASRURL, "Base URL of the local Whisper ASR service")
	cmd.Flags().StringVar(&opts.prompt, "prompt", "", "Vocabulary or context hint passed to the recognizer")
	cmd.Flags().BoolVar(&opts.noSnippet, "no-snippet", false, "Do not print the sampleSentences literal")
	addOutputFlags(cmd, &opts.outputOptions)

	return cmd
}

// runTranscribe executes the speech recognition pipeline.
// Validation order: file exists -> format -> config -> output -> provider/language -> API key
func runTranscribe(cmd *cobra.Command, env *Env, inputPath string, opts transcribeOptions) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	// 1. File exists
	if err := checkInput(inputPath); err != nil {
		return err
	}

	// 2. Format supported
	ext := strings.ToLower(filepath.Ext(inputPath))
	if !supportedFormats[ext] {
		return fmt.Errorf("unsupported format %q (supported: %s): %w",
			ext, supportedFormatsList(), ErrUnsupportedFormat)
	}

	// 3. Config (flags bound to transcribe.* keys)
	cfg, err := loadConfig(env, cmd, transcribeFlagKeys)
	if err != nil {
		return err
	}

	// 4. Output path
	output, err := resolveOutput(opts.output, cfg.OutputDir)
	if err != nil {
		return err
	}

	// 5. Provider and language
	provider, err := ParseProvider(cfg.Transcribe.Provider)
	if err != nil {
		return err
	}
	if err := lang.Validate(cfg.Transcribe.Language); err != nil {
		return err
	}

	// 6. API key (hosted provider only)
	var apiKey string
	if provider.NeedsAPIKey() {
		apiKey = env.Getenv(EnvOpenAIAPIKey)
		if apiKey == "" {
			return fmt.Errorf("%w (set it with: export %s=sk-...)", transcribe.ErrAPIKeyMissing, EnvOpenAIAPIKey)
		}
	}

	// === SETUP ===

	transcriber, err := env.TranscriberFactory.NewTranscriber(provider, cfg.Transcribe, apiKey, env.Logger)
	if err != nil {
		return err
	}

	// === TRANSCRIPTION ===

	_, _ = fmt.Fprintf(env.Stderr, "Transcribing (provider: %s, language: %s)...\n",
		provider, lang.DisplayName(cfg.Transcribe.Language))
	segs, err := transcriber.Transcribe(ctx, inputPath, transcribe.Options{
		Language: cfg.Transcribe.Language,
		Model:    cfg.Transcribe.Model,
		Prompt:   opts.prompt,
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(env.Stderr, "Transcription complete: %d segments\n", len(segs))
	env.Logger.Debug("transcription complete",
		zap.String("provider", provider.String()),
		zap.Int("segments", len(segs)))
	if len(segs) == 0 {
		_, _ = fmt.Fprintln(env.Stderr, "Warning: no speech recognized, the draft has no segments")
	}

	// The recording length is taken from the last recognized end.
	var total float64
	if len(segs) > 0 {
		total = segs[len(segs)-1].End
	}
	segs = slices.DeleteFunc(segs, func(s transcribe.Segment) bool {
		return segment.Interval{Start: s.Start, End: s.End}.Collapses()
	})
	records := segment.Assemble(transcribe.Intervals(segs), segment.Texts(transcribe.Texts(segs)))
	e := draft.New(draftTitle(cfg.Title, inputPath), filepath.Base(inputPath), total, records)

	if err := saveDraft(env, output, e, opts.preview); err != nil {
		return err
	}

	if opts.noSnippet || len(records) == 0 {
		return nil
	}
	_, _ = fmt.Fprintln(env.Stderr, "\nCopy the following into the page's sampleSentences array:")
	return template.Render(env.Stdout, template.TSXName, records)
}
