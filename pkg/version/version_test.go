package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	defer func() {
		Version, GitCommit, BuildTime = origVersion, origCommit, origBuildTime
	}()

	Version = "1.2.3"
	GitCommit = "abc123def"
	BuildTime = "2026-01-15T10:30:00Z"

	result := String()
	assert.Contains(t, result, "Relay 1.2.3")
	assert.Contains(t, result, "abc123def")
	assert.Contains(t, result, "2026-01-15T10:30:00Z")
	assert.Contains(t, result, runtime.Version())
}

func TestInfo(t *testing.T) {
	info := Info()

	assert.Equal(t, Version, info["version"])
	assert.Equal(t, GitCommit, info["commit"])
	assert.Equal(t, runtime.Version(), info["goVersion"])
	assert.NotEmpty(t, info["platform"])
}
