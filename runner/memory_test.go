package runner

import (
	"testing"

	"github.com/magiconair/properties/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFreeMemoryOutput(t *testing.T) {
	output := "               total        used        free      shared  buff/cache   available\n" +
		"Mem:        16314480     5150232     5751812      542312     5412436    10340940\n" +
		"Swap:        2097148           0     2097148\n"
	totalKB, err := parseFreeMemoryOutput(output)
	require.NoError(t, err)
	assert.Equal(t, totalKB, int64(16314480))
}

func TestParseFreeMemoryOutputMalformed(t *testing.T) {
	_, err := parseFreeMemoryOutput("Mem: not-enough-lines")
	require.Error(t, err)
}

func TestParseSysctlMemoryOutput(t *testing.T) {
	totalKB, err := parseSysctlMemoryOutput("hw.memsize: 17179869184\n")
	require.NoError(t, err)
	assert.Equal(t, totalKB, int64(16777216))
}

func TestParseSysctlMemoryOutputMalformed(t *testing.T) {
	_, err := parseSysctlMemoryOutput("hw.memsize:")
	require.Error(t, err)
}

func TestParseWindowsMemoryOutput(t *testing.T) {
	output := []byte(`{"Name": "TESTHOST", "TotalPhysicalMemory": 17098698752}`)
	totalKB, err := parseWindowsMemoryOutput(output)
	require.NoError(t, err)
	assert.Equal(t, totalKB, int64(16697948))
}

func TestParseWindowsMemoryOutputMalformed(t *testing.T) {
	_, err := parseWindowsMemoryOutput([]byte(`{"Name": "TESTHOST"}`))
	require.Error(t, err)
}
