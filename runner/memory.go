package runner

import (
	"os/exec"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/jfrog/jfrog-client-go/utils/errorutils"
	"github.com/webrunner/harness-cli-core/utils/coreutils"
)

// MemoryQueryFunc reports the total system memory in kilobytes.
type MemoryQueryFunc func() (int64, error)

// SystemMemoryKB queries the OS for the total physical memory, in kilobytes.
func SystemMemoryKB(platform Platform) (int64, error) {
	switch {
	case platform.IsWindows():
		return windowsMemoryKB()
	case platform.IsMac():
		return macMemoryKB()
	default:
		return linuxMemoryKB()
	}
}

func windowsMemoryKB() (int64, error) {
	output, err := runMemoryCommand("powershell.exe", "-c", "Get-CimInstance -ClassName Win32_ComputerSystem | ConvertTo-Json")
	if err != nil {
		return 0, err
	}
	return parseWindowsMemoryOutput(output)
}

func parseWindowsMemoryOutput(output []byte) (int64, error) {
	totalBytes, err := jsonparser.GetInt(output, "TotalPhysicalMemory")
	if err != nil {
		return 0, errorutils.CheckErrorf("unexpected Win32_ComputerSystem output: %s", err)
	}
	return totalBytes / 1024, nil
}

func macMemoryKB() (int64, error) {
	output, err := runMemoryCommand("sysctl", "hw.memsize")
	if err != nil {
		return 0, err
	}
	return parseSysctlMemoryOutput(string(output))
}

// parseSysctlMemoryOutput reads the byte count out of "hw.memsize: <n>".
func parseSysctlMemoryOutput(output string) (int64, error) {
	fields := strings.Fields(output)
	if len(fields) < 2 {
		return 0, errorutils.CheckErrorf("unexpected sysctl output: '%s'", strings.TrimSpace(output))
	}
	totalBytes, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, errorutils.CheckError(err)
	}
	return totalBytes / 1024, nil
}

func linuxMemoryKB() (int64, error) {
	output, err := runMemoryCommand("free")
	if err != nil {
		return 0, err
	}
	return parseFreeMemoryOutput(string(output))
}

// parseFreeMemoryOutput reads the total column of the Mem row, already in KB.
func parseFreeMemoryOutput(output string) (int64, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) < 2 {
		return 0, errorutils.CheckErrorf("unexpected 'free' output: '%s'", strings.TrimSpace(output))
	}
	fields := strings.Fields(lines[1])
	if len(fields) < 2 {
		return 0, errorutils.CheckErrorf("unexpected 'free' output line: '%s'", lines[1])
	}
	totalKB, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, errorutils.CheckError(err)
	}
	return totalKB, nil
}

func runMemoryCommand(name string, args ...string) ([]byte, error) {
	output, err := exec.Command(name, args...).Output()
	if err != nil {
		return nil, coreutils.ConvertExitCodeError(errorutils.CheckError(err))
	}
	return output, nil
}
