package transcribe_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-dictation/internal/apierr"
	"github.com/alnah/go-dictation/internal/transcribe"
)

const asrBody = `{
  "text": " Snow covered the road. The bus was late.",
  "language": "en",
  "segments": [
    {"id": 0, "seek": 0, "start": 0.0, "end": 2.6, "text": " Snow covered the road."},
    {"id": 1, "seek": 0, "start": 2.6, "end": 5.1, "text": " The bus was late."}
  ]
}`

// ---------------------------------------------------------------------------
// ASRTranscriber - self-hosted webservice
// ---------------------------------------------------------------------------

func TestNewASRTranscriber_InvalidURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "localhost:9000", "ftp://host", "http://"} {
		t.Run(raw, func(t *testing.T) {
			t.Parallel()
			_, err := transcribe.NewASRTranscriber(raw)
			assert.ErrorIs(t, err, transcribe.ErrInvalidEndpoint)
		})
	}
}

func TestASRTranscriber_Transcribe(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery, gotFile string
	var gotAudio []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		file, header, err := r.FormFile("audio_file")
		if err == nil {
			gotFile = header.Filename
			gotAudio, _ = io.ReadAll(file)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, asrBody)
	}))
	t.Cleanup(srv.Close)

	tr, err := transcribe.NewASRTranscriber(srv.URL + "/")
	require.NoError(t, err)

	got, err := tr.Transcribe(context.Background(), writeAudio(t), transcribe.Options{Language: "en-GB", Prompt: "bus"})

	require.NoError(t, err)
	assert.Equal(t, []transcribe.Segment{
		{Start: 0, End: 2.6, Text: "Snow covered the road."},
		{Start: 2.6, End: 5.1, Text: "The bus was late."},
	}, got)
	assert.Equal(t, "/asr", gotPath)
	assert.Equal(t, "encode=true&initial_prompt=bus&language=en&output=json&task=transcribe", gotQuery)
	assert.Equal(t, "talk.mp3", gotFile)
	assert.Equal(t, "ID3 fake audio", string(gotAudio))
}

func TestASRTranscriber_Transcribe_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, asrBody)
	}))
	t.Cleanup(srv.Close)

	tr, err := transcribe.NewASRTranscriber(srv.URL, transcribe.WithASRRetry(3, time.Millisecond, time.Millisecond))
	require.NoError(t, err)

	got, err := tr.Transcribe(context.Background(), writeAudio(t), transcribe.Options{})

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestASRTranscriber_Transcribe_BadRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unsupported codec", http.StatusUnprocessableEntity)
	}))
	t.Cleanup(srv.Close)

	tr, err := transcribe.NewASRTranscriber(srv.URL, transcribe.WithASRRetry(3, time.Millisecond, time.Millisecond))
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), writeAudio(t), transcribe.Options{})

	require.ErrorIs(t, err, apierr.ErrBadRequest)
	assert.Contains(t, err.Error(), "unsupported codec")
	assert.Equal(t, int32(1), calls.Load())
}

func TestASRTranscriber_Transcribe_MalformedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Snow covered the road.")
	}))
	t.Cleanup(srv.Close)

	tr, err := transcribe.NewASRTranscriber(srv.URL)
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), writeAudio(t), transcribe.Options{})

	assert.ErrorIs(t, err, transcribe.ErrMalformedResponse)
}

func TestASRTranscriber_Transcribe_SegmentOrdering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		segments string
		want     []transcribe.Segment
		wantErr  error
	}{
		{
			name: "zero-length tail dropped",
			segments: `[{"id":0,"start":0.0,"end":2.6,"text":" Snow."},
			            {"id":1,"start":2.6,"end":2.6,"text":" you"}]`,
			want: []transcribe.Segment{{Start: 0, End: 2.6, Text: "Snow."}},
		},
		{
			name: "out of order rejected",
			segments: `[{"id":0,"start":2.6,"end":5.1,"text":" The bus."},
			            {"id":1,"start":0.0,"end":2.6,"text":" Snow."}]`,
			wantErr: transcribe.ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"text":"x","segments":`+tt.segments+`}`)
			}))
			t.Cleanup(srv.Close)

			tr, err := transcribe.NewASRTranscriber(srv.URL)
			require.NoError(t, err)

			got, err := tr.Transcribe(context.Background(), writeAudio(t), transcribe.Options{})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestASRTranscriber_Transcribe_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	tr, err := transcribe.NewASRTranscriber(url, transcribe.WithASRRetry(0, time.Millisecond, time.Millisecond))
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), writeAudio(t), transcribe.Options{})

	assert.ErrorIs(t, err, transcribe.ErrUnreachable)
}

// ---------------------------------------------------------------------------
// Static and helpers
// ---------------------------------------------------------------------------

func TestStatic_ReturnsCopy(t *testing.T) {
	t.Parallel()

	fixed := transcribe.Static{{Start: 0, End: 1, Text: "a"}}

	got, err := fixed.Transcribe(context.Background(), "any", transcribe.Options{})
	require.NoError(t, err)
	got[0].Text = "mutated"

	assert.Equal(t, "a", fixed[0].Text)
}

func TestStatic_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := transcribe.Static{}.Transcribe(ctx, "any", transcribe.Options{})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIntervalsAndTexts(t *testing.T) {
	t.Parallel()

	segs := []transcribe.Segment{{Start: 0, End: 1.5, Text: "one"}, {Start: 2, End: 3, Text: "two"}}

	iv := transcribe.Intervals(segs)
	require.Len(t, iv, 2)
	assert.Equal(t, 1.5, iv[0].End)
	assert.Equal(t, 2.0, iv[1].Start)
	assert.Equal(t, []string{"one", "two"}, transcribe.Texts(segs))
}
