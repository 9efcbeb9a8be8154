package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	origVersion, origCommit, origBuildTime := Version, Commit, BuildTime
	defer func() {
		Version, Commit, BuildTime = origVersion, origCommit, origBuildTime
	}()

	Version = "1.2.3"
	Commit = "abc1234"
	BuildTime = "2024-01-15T10:00:00Z"

	expected := "1.2.3 (abc1234) built 2024-01-15T10:00:00Z"
	if result := String(); result != expected {
		t.Errorf("String() = %q, want %q", result, expected)
	}
}

func TestUserAgent(t *testing.T) {
	origVersion := Version
	defer func() { Version = origVersion }()

	Version = "0.4.0"
	ua := UserAgent()
	if !strings.HasPrefix(ua, "navihire/0.4.0 ") {
		t.Errorf("UserAgent() = %q", ua)
	}
	if !strings.Contains(ua, runtime.GOOS) {
		t.Errorf("UserAgent() = %q, should contain %q", ua, runtime.GOOS)
	}
}

func TestDefaultValues(t *testing.T) {
	// These might be overwritten by ldflags in production builds
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if Commit == "" {
		t.Error("Commit should not be empty")
	}
	if BuildTime == "" {
		t.Error("BuildTime should not be empty")
	}
}
