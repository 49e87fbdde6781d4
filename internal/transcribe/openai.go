package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/alnah/go-dictation/internal/apierr"
	"github.com/alnah/go-dictation/internal/format"
	"github.com/alnah/go-dictation/internal/lang"
)

const (
	// DefaultOpenAIModel is the Whisper model; it is the one that returns segment timings.
	DefaultOpenAIModel = openai.Whisper1

	// maxUploadSize is the OpenAI audio upload limit.
	maxUploadSize = 25 * 1024 * 1024
)

// audioTranscriber is an internal interface for OpenAI audio transcription.
// *openai.Client implements this implicitly.
// This allows injecting mocks in tests.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

var _ audioTranscriber = (*openai.Client)(nil)

// OpenAITranscriber transcribes audio with OpenAI's Whisper endpoint.
// Transient errors are retried with exponential backoff.
type OpenAITranscriber struct {
	client audioTranscriber
	retry  retryPolicy
	logger *zap.Logger
}

// TranscriberOption configures an OpenAITranscriber.
type TranscriberOption func(*OpenAITranscriber)

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) TranscriberOption {
	return func(t *OpenAITranscriber) {
		if n >= 0 {
			t.retry.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) TranscriberOption {
	return func(t *OpenAITranscriber) {
		if base > 0 {
			t.retry.baseDelay = base
		}
		if max > 0 {
			t.retry.maxDelay = max
		}
	}
}

// WithLogger sets the logger for retries and request details.
func WithLogger(l *zap.Logger) TranscriberOption {
	return func(t *OpenAITranscriber) {
		t.logger = l
	}
}

// NewOpenAITranscriber creates an OpenAITranscriber around client.
func NewOpenAITranscriber(client *openai.Client, opts ...TranscriberOption) *OpenAITranscriber {
	return newOpenAITranscriber(client, opts...)
}

func newOpenAITranscriber(client audioTranscriber, opts ...TranscriberOption) *OpenAITranscriber {
	t := &OpenAITranscriber{
		client: client,
		retry:  defaultRetryPolicy(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe requests verbose JSON so the response carries segment timings.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string, opts Options) ([]Segment, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, fmt.Errorf("stat audio: %w", err)
	}
	if info.Size() > maxUploadSize {
		return nil, fmt.Errorf("%s is %s, split or re-encode it below %s: %w",
			audioPath, format.Size(info.Size()), format.Size(maxUploadSize), ErrFileTooLarge)
	}

	model := opts.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	req := openai.AudioRequest{
		Model:    model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Prompt:   opts.Prompt,
		Language: lang.BaseCode(opts.Language), // OpenAI only accepts ISO 639-1 base codes
	}
	t.logger.Debug("openai transcription",
		zap.String("path", audioPath),
		zap.String("model", model),
		zap.String("language", req.Language))

	resp, err := apierr.RetryWithBackoff(ctx, t.retry.config(t.logger, audioPath),
		func() (openai.AudioResponse, error) {
			resp, err := t.client.CreateTranscription(ctx, req)
			if err != nil {
				return openai.AudioResponse{}, classifyError(err)
			}
			return resp, nil
		}, apierr.IsRetryable)
	if err != nil {
		return nil, err
	}

	segs, err := cleanSegments(segmentsFromResponse(resp), t.logger)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("openai transcription complete",
		zap.String("path", audioPath),
		zap.Int("segments", len(segs)),
		zap.Float64("duration", resp.Duration))
	return segs, nil
}

// segmentsFromResponse keeps Whisper's own segmentation. A response with text
// but no segments becomes one segment covering the reported duration.
func segmentsFromResponse(resp openai.AudioResponse) []Segment {
	if len(resp.Segments) == 0 {
		text := strings.TrimSpace(resp.Text)
		if text == "" {
			return nil
		}
		return []Segment{{Start: 0, End: resp.Duration, Text: text}}
	}

	segs := make([]Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segs = append(segs, Segment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)})
	}
	return segs
}

// classifyError maps OpenAI client errors to apierr sentinels.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apierr.FromStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return apierr.FromStatus(reqErr.HTTPStatusCode, reqErr.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	return err
}
