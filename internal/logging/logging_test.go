package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ratedesk.log")

	closer, err := Setup("debug", path)
	require.NoError(t, err)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	})

	log.WithField("rows", 3).Info("Dataset loaded")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Dataset loaded")
	assert.Contains(t, string(data), "rows=3")
	assert.Equal(t, log.DebugLevel, log.GetLevel())
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	_, err := Setup("loud", "")
	assert.ErrorContains(t, err, "invalid log level")
}
