package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-dictation/internal/draft"
	"github.com/alnah/go-dictation/internal/segment"
)

func TestCheckInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := writeFile(t, dir, "lesson.mp3", "x")

	assert.NoError(t, checkInput(file))
	assert.ErrorIs(t, checkInput(filepath.Join(dir, "missing.mp3")), ErrFileNotFound)
	assert.ErrorIs(t, checkInput(dir), ErrFileNotFound, "directories are not inputs")
}

func TestResolveOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name      string
		output    string
		outputDir string
		want      string
		wantErr   error
	}{
		{name: "absolute output", output: filepath.Join(dir, "a.json"), want: filepath.Join(dir, "a.json")},
		{name: "relative joined to output_dir", output: "a.json", outputDir: dir, want: filepath.Join(dir, "a.json")},
		{name: "default name in output_dir", outputDir: dir, want: filepath.Join(dir, draft.DefaultFileName)},
		{name: "default name in cwd", want: draft.DefaultFileName},
		{name: "missing parent", output: filepath.Join(dir, "nope", "a.json"), wantErr: ErrOutputDirMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := resolveOutput(tt.output, tt.outputDir)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDraftTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Unit 3", draftTitle("  Unit 3 ", "/audio/lesson.mp3"))
	assert.Equal(t, "lesson", draftTitle("", "/audio/lesson.mp3"))
	assert.Equal(t, "lesson.final", draftTitle(" ", "lesson.final.wav"))
	assert.Equal(t, "noext", draftTitle("", "noext"))
}

func TestPrintPreview(t *testing.T) {
	t.Parallel()

	intervals := make([]segment.Interval, 7)
	for i := range intervals {
		intervals[i] = segment.Interval{Start: float64(i) * 2, End: float64(i)*2 + 1.5}
	}
	records := segment.Assemble(intervals, nil)

	t.Run("truncated list", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		printPreview(&buf, records, 2)
		assert.Equal(t,
			"\nPreview:\n"+
				"  1: 0.0s - 1.5s (1.5s)  [Segment 1] (1.5s)\n"+
				"  2: 2.0s - 3.5s (1.5s)  [Segment 2] (1.5s)\n"+
				"  ... (7 segments total)\n",
			buf.String())
	})

	t.Run("whole list", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		printPreview(&buf, records[:2], 5)
		assert.NotContains(t, buf.String(), "segments total")
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		printPreview(&buf, records, 0)
		assert.Empty(t, buf.String())
	})

	t.Run("long text is shortened", func(t *testing.T) {
		t.Parallel()
		long := segment.Assemble([]segment.Interval{{Start: 0, End: 1}},
			segment.Texts([]string{strings.Repeat("é", 100)}))
		var buf bytes.Buffer
		printPreview(&buf, long, 1)
		assert.Contains(t, buf.String(), strings.Repeat("é", previewTextWidth-3)+"...\n")
	})
}

func TestPrintDuration(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printDuration(&buf, 3725.04)

	assert.Equal(t, "Duration: 01:02:05 (3725.0s)\n", buf.String())
}

func TestSaveDraft_PrintsNextSteps(t *testing.T) {
	t.Parallel()

	env, deps := newTestEnv(t)
	path := filepath.Join(deps.dir, "out.json")
	records := segment.Assemble([]segment.Interval{{Start: 0, End: 1}}, nil)

	require.NoError(t, saveDraft(env, path, draft.New("t", "a.mp3", 1, records), defaultPreview))

	out := deps.stderr.String()
	assert.Contains(t, out, "Preview:")
	assert.Contains(t, out, "Saved: "+path)
	assert.Contains(t, out, "Next steps:")
	assert.Contains(t, out, "Run: dictation sentences "+path)
	assert.FileExists(t, path)
}

func TestWarnNoSpeech(t *testing.T) {
	t.Parallel()

	env, deps := newTestEnv(t)
	warnNoSpeech(env, "try harder")

	assert.Equal(t, "Warning: no speech segments detected, adjust thresholds (try harder)\n", deps.stderr.String())
}
