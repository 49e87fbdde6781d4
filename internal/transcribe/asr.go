package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-dictation/internal/apierr"
	"github.com/alnah/go-dictation/internal/lang"
)

// DefaultASRURL is where a local whisper-asr-webservice listens by default.
const DefaultASRURL = "http://localhost:9000"

// httpDoer abstracts HTTP client for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ASRTranscriber posts audio to a self-hosted Whisper ASR webservice
// (POST /asr, multipart field "audio_file", output=json).
type ASRTranscriber struct {
	endpoint *url.URL
	http     httpDoer
	retry    retryPolicy
	logger   *zap.Logger
}

// ASROption configures an ASRTranscriber.
type ASROption func(*ASRTranscriber)

// WithASRHTTPClient sets a custom HTTP client.
func WithASRHTTPClient(c httpDoer) ASROption {
	return func(t *ASRTranscriber) {
		t.http = c
	}
}

// WithASRRetry sets the retry attempts and backoff delays.
func WithASRRetry(maxRetries int, base, max time.Duration) ASROption {
	return func(t *ASRTranscriber) {
		t.retry = retryPolicy{maxRetries: maxRetries, baseDelay: base, maxDelay: max}
	}
}

// WithASRLogger sets the logger for retries and request details.
func WithASRLogger(l *zap.Logger) ASROption {
	return func(t *ASRTranscriber) {
		t.logger = l
	}
}

// NewASRTranscriber creates a transcriber for the service at baseURL.
func NewASRTranscriber(baseURL string, opts ...ASROption) (*ASRTranscriber, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, baseURL)
	}
	u.Path += "/asr"

	t := &ASRTranscriber{
		endpoint: u,
		http:     &http.Client{Timeout: 10 * time.Minute},
		retry:    defaultRetryPolicy(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// asrResponse is the JSON body returned with output=json.
type asrResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		ID    int     `json:"id"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe uploads audioPath and returns the service's segments.
// The model is chosen when the service starts, so opts.Model is ignored.
func (t *ASRTranscriber) Transcribe(ctx context.Context, audioPath string, opts Options) ([]Segment, error) {
	body, contentType, err := asrForm(audioPath)
	if err != nil {
		return nil, err
	}
	target := t.requestURL(opts)
	t.logger.Debug("asr transcription", zap.String("path", audioPath), zap.String("url", target))

	segs, err := apierr.RetryWithBackoff(ctx, t.retry.config(t.logger, audioPath),
		func() ([]Segment, error) {
			return t.post(ctx, target, contentType, body)
		}, apierr.IsRetryable)
	if err != nil {
		return nil, err
	}
	segs, err = cleanSegments(segs, t.logger)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("asr transcription complete", zap.String("path", audioPath), zap.Int("segments", len(segs)))
	return segs, nil
}

// requestURL adds the query parameters the webservice reads.
func (t *ASRTranscriber) requestURL(opts Options) string {
	q := url.Values{}
	q.Set("task", "transcribe")
	q.Set("output", "json")
	q.Set("encode", "true")
	if code := lang.BaseCode(opts.Language); code != "" {
		q.Set("language", code)
	}
	if opts.Prompt != "" {
		q.Set("initial_prompt", opts.Prompt)
	}
	u := *t.endpoint
	u.RawQuery = q.Encode()
	return u.String()
}

// asrForm builds the multipart body once so retries can resend it.
func asrForm(audioPath string) ([]byte, string, error) {
	file, err := os.Open(audioPath) // #nosec G304 -- audioPath is the user's input file
	if err != nil {
		return nil, "", fmt.Errorf("open audio: %w", err)
	}
	defer func() { _ = file.Close() }()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio_file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("copy audio to form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return body.Bytes(), writer.FormDataContentType(), nil
}

func (t *ASRTranscriber) post(ctx context.Context, target, contentType string, body []byte) ([]Segment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apierr.FromStatus(resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var decoded asrResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	segs := make([]Segment, 0, len(decoded.Segments))
	for _, s := range decoded.Segments {
		segs = append(segs, Segment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)})
	}
	return segs, nil
}

// classifyTransportError separates timeouts from a service that is not running.
func classifyTransportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%v: %w", err, apierr.ErrTimeout)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
