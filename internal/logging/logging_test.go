package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"console", "json", ""} {
		log, err := New("debug", format)
		require.NoError(t, err, format)
		require.True(t, log.Core().Enabled(zap.DebugLevel))
	}

	log, err := New("warn", "json")
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(zap.InfoLevel))
	require.True(t, log.Core().Enabled(zap.WarnLevel))
}

func TestNew_Rejects(t *testing.T) {
	_, err := New("loud", "json")
	require.Error(t, err)
	_, err = New("info", "xml")
	require.Error(t, err)
}
