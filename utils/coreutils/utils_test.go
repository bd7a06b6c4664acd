package coreutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetIfEmpty(t *testing.T) {
	str := ""
	assert.True(t, SetIfEmpty(&str, "default"))
	assert.Equal(t, "default", str)

	str = "filled"
	assert.False(t, SetIfEmpty(&str, "default"))
	assert.Equal(t, "filled", str)
}

func TestIsAnyEmpty(t *testing.T) {
	assert.False(t, IsAnyEmpty("a", "b"))
	assert.True(t, IsAnyEmpty("a", ""))
	assert.False(t, IsAnyEmpty())
}

func TestListToText(t *testing.T) {
	assert.Equal(t, "one", ListToText([]string{"one"}))
	assert.Equal(t, "one and two", ListToText([]string{"one", "two"}))
	assert.Equal(t, "one, two and three", ListToText([]string{"one", "two", "three"}))
}

func TestRemoveAllWhiteSpaces(t *testing.T) {
	assert.Equal(t, "abc", RemoveAllWhiteSpaces(" a b\tc "))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCodeError, GetExitCode(assert.AnError, 0, 0, false))
	assert.Equal(t, ExitCodeError, GetExitCode(nil, 0, 1, false))
	assert.Equal(t, ExitCodeFailNoOp, GetExitCode(nil, 0, 0, true))
	assert.Equal(t, ExitCodeNoError, GetExitCode(nil, 1, 0, false))
}

func TestFindInPath(t *testing.T) {
	firstDir := t.TempDir()
	secondDir := t.TempDir()
	wanted := filepath.Join(secondDir, "fix-stacks")
	require.NoError(t, os.WriteFile(wanted, []byte("#!/bin/sh\n"), 0755))

	searchPath := strings.Join([]string{firstDir, "", secondDir}, string(os.PathListSeparator))
	assert.Equal(t, wanted, FindInPath("fix-stacks", searchPath))
	assert.Empty(t, FindInPath("no-such-binary", searchPath))
}

func TestGetHarnessHomeDirOverride(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv(HomeDir, homeDir)
	result, err := GetHarnessHomeDir()
	require.NoError(t, err)
	assert.Equal(t, homeDir, result)
}
