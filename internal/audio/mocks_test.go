package audio_test

import (
	"context"
	"os"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Mocks for testing
// ---------------------------------------------------------------------------

type mockCommandRunner struct {
	outputFunc func(ctx context.Context, name string, args []string) ([]byte, error)
	calls      []mockCall
}

type mockCall struct {
	name string
	args []string
}

func (m *mockCommandRunner) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	m.calls = append(m.calls, mockCall{name: name, args: args})
	if m.outputFunc != nil {
		return m.outputFunc(ctx, name, args)
	}
	return nil, nil
}

type mockTempDirCreator struct {
	dir string
	err error
}

func (m *mockTempDirCreator) MkdirTemp(dir, pattern string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.dir, nil
}

type mockFileRemover struct {
	removed []string
	err     error
}

func (m *mockFileRemover) RemoveAll(path string) error {
	m.removed = append(m.removed, path)
	return m.err
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// writeWAV encodes 16-bit PCM samples to path.
func writeWAV(t *testing.T, path string, sampleRate, channels int, data []int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

// tone returns n samples alternating between +amp and -amp.
func tone(n, amp int) []int {
	out := make([]int, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = amp
		} else {
			out[i] = -amp
		}
	}
	return out
}

// concat joins sample slices.
func concat(parts ...[]int) []int {
	var out []int
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
