package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level  string
		format string
		want   zapcore.Level
	}{
		{"debug", "json", zapcore.DebugLevel},
		{"info", "console", zapcore.InfoLevel},
		{"WARN", "json", zapcore.WarnLevel},
		{"error", "", zapcore.ErrorLevel},
		{"bogus", "json", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		l, err := New(tt.level, tt.format)
		require.NoError(t, err)
		require.Truef(t, l.Core().Enabled(tt.want), "%s should be enabled", tt.want)
		if tt.want > zapcore.DebugLevel {
			require.Falsef(t, l.Core().Enabled(tt.want-1), "%s should be disabled", tt.want-1)
		}
	}
}

func TestOrNop(t *testing.T) {
	t.Parallel()

	require.NotNil(t, OrNop(nil))
	l, err := New("info", "json")
	require.NoError(t, err)
	require.Same(t, l, OrNop(l))
}
