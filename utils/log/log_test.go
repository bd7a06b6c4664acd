package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	clientLog "github.com/jfrog/jfrog-client-go/utils/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webrunner/harness-cli-core/utils/coreutils"
)

func TestCreateLogFile(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv(coreutils.HomeDir, homeDir)

	logFile, err := CreateLogFile()
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, CloseLogFile(logFile))
	}()

	fileName := filepath.Base(logFile.Name())
	assert.True(t, strings.HasPrefix(fileName, "harness-cli."))
	assert.True(t, strings.HasSuffix(fileName, ".log"))
	assert.Equal(t, filepath.Join(homeDir, coreutils.HarnessLogsDirName), filepath.Dir(logFile.Name()))
}

func TestSetFileLoggerWritesToFile(t *testing.T) {
	t.Setenv(coreutils.HomeDir, t.TempDir())

	logFile, err := CreateLogFile()
	require.NoError(t, err)

	SetFileLogger(logFile)
	clientLog.Info("a line for the log file")
	require.NoError(t, CloseLogFile(logFile))

	content, err := os.ReadFile(logFile.Name())
	require.NoError(t, err)
	assert.Contains(t, string(content), "a line for the log file")
}
