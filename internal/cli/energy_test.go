package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-dictation/internal/audio"
	"github.com/alnah/go-dictation/internal/segment"
)

func TestEnergyCmd_WritesDraftWithStats(t *testing.T) {
	t.Parallel()

	env, deps := newTestEnv(t)
	deps.detector.Analysis = &audio.Analysis{
		Silences: []segment.Interval{{Start: 2, End: 3}, {Start: 3.5, End: 4}},
		Duration: 10,
	}
	input := writeFile(t, deps.dir, "lesson.wav", "fake audio")
	output := filepath.Join(deps.dir, "out.json")

	require.NoError(t, execute(EnergyCmd(env), input, "-o", output))

	e := readDraft(t, output)
	require.Len(t, e.Segments, 2, "the 0.5s sound is shorter than min-sound")
	assert.Equal(t, segment.Seconds(0), e.Segments[0].Start)
	assert.Equal(t, segment.Seconds(2), e.Segments[0].End)
	assert.Equal(t, segment.Seconds(4), e.Segments[1].Start)
	assert.Equal(t, segment.Seconds(10), e.Segments[1].End)
	assert.Equal(t, 2, e.Segments[1].ID)

	require.NotNil(t, e.Stats)
	assert.Equal(t, 2, e.Stats.TotalSegments)
	assert.Equal(t, segment.Seconds(10), e.Stats.TotalDuration)
	assert.Equal(t, segment.Seconds(4), e.Stats.AvgSegmentDuration)

	assert.Contains(t, deps.stderr.String(), "Dropped 1 segments shorter than 1.0s")
	assert.Contains(t, deps.stderr.String(), "Kept 2 speech segments")
}

func TestEnergyCmd_FlagsReachAnalyzer(t *testing.T) {
	t.Parallel()

	env, deps := newTestEnv(t)
	deps.detector.Analysis = &audio.Analysis{
		Silences: []segment.Interval{{Start: 2, End: 3}, {Start: 3.5, End: 4}},
		Duration: 10,
	}
	input := writeFile(t, deps.dir, "lesson.wav", "fake audio")
	output := filepath.Join(deps.dir, "out.json")

	err := execute(EnergyCmd(env), input, "-o", output, "--threshold", "-45", "--min-sound", "0.4", "--seek-step", "0.05")
	require.NoError(t, err)

	require.Len(t, deps.detector.energyConfig, 1)
	got := deps.detector.energyConfig[0]
	assert.Equal(t, -45.0, got.ThresholdDBFS)
	assert.Equal(t, 0.05, got.SeekStep)
	assert.Len(t, readDraft(t, output).Segments, 3)
}

func TestEnergyCmd_NoSpeech(t *testing.T) {
	t.Parallel()

	env, deps := newTestEnv(t)
	deps.detector.Analysis = &audio.Analysis{
		Silences: []segment.Interval{{Start: 0, End: 10}},
		Duration: 10,
	}
	input := writeFile(t, deps.dir, "lesson.wav", "fake audio")
	output := filepath.Join(deps.dir, "out.json")

	require.NoError(t, execute(EnergyCmd(env), input, "-o", output))

	assert.NoFileExists(t, output)
	assert.Contains(t, deps.stderr.String(), "Warning: no speech segments detected")
}

func TestEnergyCmd_AnalysisError(t *testing.T) {
	t.Parallel()

	env, deps := newTestEnv(t)
	deps.detector.DetectErr = audio.ErrInvalidWAV
	input := writeFile(t, deps.dir, "lesson.wav", "fake audio")
	output := filepath.Join(deps.dir, "out.json")

	err := execute(EnergyCmd(env), input, "-o", output)

	require.ErrorIs(t, err, audio.ErrInvalidWAV)
	assert.NoFileExists(t, output)
}
