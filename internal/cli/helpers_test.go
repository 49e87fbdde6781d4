package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alnah/go-dictation/internal/draft"
)

// syncBuffer is a goroutine-safe bytes.Buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testDeps gives tests access to the mocks behind an Env.
type testDeps struct {
	stdout      *syncBuffer
	stderr      *syncBuffer
	vars        map[string]string
	ffmpeg      *mockFFmpegResolver
	config      *mockConfigLoader
	probe       *mockProbeFactory
	detector    *mockDetectorFactory
	transcriber *mockTranscriberFactory
	dir         string
}

// newTestEnv returns an Env wired to fresh mocks and a config file path
// inside a temporary directory. The config file does not exist yet.
func newTestEnv(t *testing.T) (*Env, *testDeps) {
	t.Helper()

	dir := t.TempDir()
	deps := &testDeps{
		stdout:      &syncBuffer{},
		stderr:      &syncBuffer{},
		vars:        map[string]string{},
		ffmpeg:      &mockFFmpegResolver{},
		config:      &mockConfigLoader{path: filepath.Join(dir, "config.yaml")},
		probe:       &mockProbeFactory{Duration: 10},
		detector:    &mockDetectorFactory{},
		transcriber: &mockTranscriberFactory{},
		dir:         dir,
	}

	env := NewEnv(
		WithStdout(deps.stdout),
		WithStderr(deps.stderr),
		WithGetenv(func(k string) string { return deps.vars[k] }),
		WithLoggerFactory(func(bool) *zap.Logger { return zap.NewNop() }),
		WithFFmpegResolver(deps.ffmpeg),
		WithConfigLoader(deps.config),
		WithProbeFactory(deps.probe),
		WithDetectorFactory(deps.detector),
		WithTranscriberFactory(deps.transcriber),
	)
	env.ConfigPath = deps.config.path

	return env, deps
}

// execute runs cmd with args the way the root command would.
func execute(cmd *cobra.Command, args ...string) error {
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.ExecuteContext(context.Background())
}

// writeFile creates dir/name with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// readDraft decodes the draft at path.
func readDraft(t *testing.T, path string) *draft.Envelope {
	t.Helper()

	e, err := draft.Read(path)
	if err != nil {
		t.Fatalf("read draft %s: %v", path, err)
	}
	return e
}
