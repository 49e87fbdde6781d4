package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/alnah/go-dictation/internal/logger"
)

func TestConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		verbose  bool
		level    zap.AtomicLevel
		encoding string
	}{
		{"quiet logs warnings as json", false, zap.NewAtomicLevelAt(zap.WarnLevel), "json"},
		{"verbose logs debug to console", true, zap.NewAtomicLevelAt(zap.DebugLevel), "console"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := logger.Config(tt.verbose)
			assert.Equal(t, tt.level.Level(), cfg.Level.Level())
			assert.Equal(t, tt.encoding, cfg.Encoding)
			assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	quiet := logger.New(false)
	assert.False(t, quiet.Core().Enabled(zap.InfoLevel))
	assert.True(t, quiet.Core().Enabled(zap.WarnLevel))

	verbose := logger.New(true)
	assert.True(t, verbose.Core().Enabled(zap.DebugLevel))
}
