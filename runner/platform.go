package runner

import "runtime"

// Platform identifies the OS family the application under test runs on.
// It is injected rather than read from runtime.GOOS directly, so composers
// can be exercised against any platform in tests.
type Platform interface {
	IsWindows() bool
	IsMac() bool
	IsLinux() bool
	OSName() string
}

type osPlatform string

func (p osPlatform) IsWindows() bool { return p == "windows" }
func (p osPlatform) IsMac() bool     { return p == "darwin" }
func (p osPlatform) IsLinux() bool   { return p == "linux" }
func (p osPlatform) OSName() string  { return string(p) }

// CurrentPlatform returns the Platform of the running process.
func CurrentPlatform() Platform {
	return osPlatform(runtime.GOOS)
}

// NewPlatform returns a Platform for the given GOOS-style name.
func NewPlatform(osName string) Platform {
	return osPlatform(osName)
}

// BuildInfo carries the build metadata of the application under test.
type BuildInfo struct {
	// Debug is true for debug builds. Stack fixing is only available for those.
	Debug bool
	// Sanitizers compiled into the build.
	Asan  bool
	Tsan  bool
	Ubsan bool
	// BinSuffix is the executable suffix of the build's platform (".exe" on Windows).
	BinSuffix string
	// SourceDir and ObjectDir allow non-packaged builds to access symlinked
	// modules in the source checkout.
	SourceDir string
	ObjectDir string
}
