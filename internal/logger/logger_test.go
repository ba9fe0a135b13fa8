package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"spin-rewards/internal/config"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := New(config.LogConfig{Level: tt.level, Encoding: "json"})
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNew_ConsoleEncoding(t *testing.T) {
	log, err := New(config.LogConfig{Level: "info", Encoding: "console", Sampling: true})
	require.NoError(t, err)
	assert.NotNil(t, log)
}
