package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewWithLevel(t *testing.T) {
	testCases := []struct {
		level   string
		enabled zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}

	for _, tt := range testCases {
		t.Run(tt.level, func(t *testing.T) {
			log, err := NewWithLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.enabled))
			assert.False(t, log.Core().Enabled(tt.enabled-1))
		})
	}
}
