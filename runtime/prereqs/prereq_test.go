package prereqs

import (
	"context"
	"testing"

	"github.com/courtwatch/courtwatch/testing/assertions"
	"github.com/pkg/errors"
	logTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeetsMinPlatformReqs(t *testing.T) {
	// Linux
	runtimeOS = "linux"
	runtimeArch = "amd64"
	meetsReqs, err := meetsMinPlatformReqs(context.Background())
	require.NoError(t, err)
	assert.True(t, meetsReqs)
	runtimeArch = "arm64"
	meetsReqs, err = meetsMinPlatformReqs(context.Background())
	require.NoError(t, err)
	assert.True(t, meetsReqs)
	// mips64 is not supported
	runtimeArch = "mips64"
	meetsReqs, err = meetsMinPlatformReqs(context.Background())
	require.NoError(t, err)
	assert.False(t, meetsReqs)

	// Mac OS X
	// Point execShellOutput at a mock so tests never shell out.
	execShellOutput = func(ctx context.Context, command string, args ...string) (string, error) {
		return "", errors.New("error while running command")
	}
	runtimeOS = "darwin"
	runtimeArch = "amd64"
	meetsReqs, err = meetsMinPlatformReqs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error obtaining MacOS version")
	assert.False(t, meetsReqs)

	// Insufficient version
	execShellOutput = func(ctx context.Context, command string, args ...string) (string, error) {
		return "10.4", nil
	}
	meetsReqs, err = meetsMinPlatformReqs(context.Background())
	require.NoError(t, err)
	assert.False(t, meetsReqs)

	// Just-sufficient older version
	execShellOutput = func(ctx context.Context, command string, args ...string) (string, error) {
		return "10.14", nil
	}
	meetsReqs, err = meetsMinPlatformReqs(context.Background())
	require.NoError(t, err)
	assert.True(t, meetsReqs)

	// Sufficient newer version
	execShellOutput = func(ctx context.Context, command string, args ...string) (string, error) {
		return "10.15.7", nil
	}
	meetsReqs, err = meetsMinPlatformReqs(context.Background())
	require.NoError(t, err)
	assert.True(t, meetsReqs)

	// Handling abnormal response
	execShellOutput = func(ctx context.Context, command string, args ...string) (string, error) {
		return "tiger.lion", nil
	}
	meetsReqs, err = meetsMinPlatformReqs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing version")
	assert.False(t, meetsReqs)
}

func TestParseVersion(t *testing.T) {
	version, err := parseVersion("1.2.3", 3, ".")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, version)

	version, err = parseVersion("6 .7 . 8  ", 3, ".")
	require.NoError(t, err)
	assert.Equal(t, []int{6, 7, 8}, version)

	version, err = parseVersion("10,3,5,6", 4, ",")
	require.NoError(t, err)
	assert.Equal(t, []int{10, 3, 5, 6}, version)

	_, err = parseVersion("10.11", 3, ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient information about version")
}

func TestWarnIfNotSupported(t *testing.T) {
	runtimeOS = "linux"
	runtimeArch = "amd64"
	hook := logTest.NewGlobal()
	WarnIfPlatformNotSupported(context.Background())
	assertions.LogsDoNotContain(t, hook, "Failed to detect host platform")
	assertions.LogsDoNotContain(t, hook, "platform is not supported")

	execShellOutput = func(ctx context.Context, command string, args ...string) (string, error) {
		return "tiger.lion", nil
	}
	runtimeOS = "darwin"
	runtimeArch = "amd64"
	hook = logTest.NewGlobal()
	WarnIfPlatformNotSupported(context.Background())
	assertions.LogsContain(t, hook, "Failed to detect host platform")

	runtimeOS = "falseOs"
	runtimeArch = "falseArch"
	hook = logTest.NewGlobal()
	WarnIfPlatformNotSupported(context.Background())
	assertions.LogsContain(t, hook, "platform is not supported")
}
