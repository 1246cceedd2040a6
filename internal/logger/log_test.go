package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerBeforeInit(t *testing.T) {
	l := NewLogger("adls")
	require.NotNil(t, l)
	l.Infow("dropped", "k", "v")
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger("debug", "console"))
	l := NewLogger("adls")
	require.NotNil(t, l)
	assert.True(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, SetLevel("warn"))
	assert.False(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))

	assert.Error(t, InitLogger("loud", "json"))
}
