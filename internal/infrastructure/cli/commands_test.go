package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bolens/ps-profile/internal/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, err := NewRootCmd(context.Background(), Options{})
	require.NoError(t, err)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("PATH", "")
	t.Setenv(domain.ConfigEnvVar, filepath.Join(home, "config.yaml"))
	return home
}

func TestCheckCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "check", "gst", "definitely-not-installed")
	require.NoError(t, err)
	assert.Contains(t, out, "gst")
	assert.Regexp(t, `definitely-not-installed\s+missing`, out)

	_, err = execute(t, "check", "--strict", "definitely-not-installed")
	assert.True(t, errors.Is(err, domain.ErrToolUnavailable))
}

func TestInitCommandSkipsMissingTools(t *testing.T) {
	isolate(t)

	out, err := execute(t, "init", "bash")
	require.NoError(t, err)
	// Nothing on PATH, so no wrapper has a tool to call.
	assert.NotContains(t, out, "gst()")

	_, err = execute(t, "init", "fish")
	assert.ErrorIs(t, err, domain.ErrUnsupportedShell)
}

func TestFragmentsListAndDisable(t *testing.T) {
	isolate(t)

	out, err := execute(t, "fragments", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "embedded defaults")
	assert.Contains(t, out, "git loaded")

	_, err = execute(t, "fragments", "disable", "git")
	require.NoError(t, err)

	out, err = execute(t, "fragments", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "git disabled")

	_, err = execute(t, "fragments", "disable", "git")
	assert.Error(t, err)
	_, err = execute(t, "fragments", "enable", "git")
	require.NoError(t, err)
}

func TestFragmentsReloadUnknown(t *testing.T) {
	isolate(t)

	_, err := execute(t, "fragments", "reload", "nope")
	assert.Error(t, err)
}

func TestRunMissingToolIsNoop(t *testing.T) {
	isolate(t)

	_, err := execute(t, "run", "gst", "--short")
	require.NoError(t, err)

	_, err = execute(t, "run", "no-such-wrapper")
	assert.ErrorIs(t, err, domain.ErrWrapperNotFound)
}

func TestConfigSetAndGet(t *testing.T) {
	isolate(t)

	_, err := execute(t, "config", "set", "availability.ttl", "10m")
	require.NoError(t, err)

	out, err := execute(t, "config", "get", "availability.ttl")
	require.NoError(t, err)
	assert.Equal(t, "10m", strings.TrimSpace(out))

	_, err = execute(t, "config", "get", "availability.nope")
	assert.Error(t, err)
}

func TestCacheClear(t *testing.T) {
	isolate(t)

	out, err := execute(t, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "never expires")

	out, err = execute(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 3, ExitCode(&ExitError{Code: 3}))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
}

func TestSetMapValueCreatesIntermediateMaps(t *testing.T) {
	tree := map[string]interface{}{"preferences": "scalar"}
	require.True(t, setMapValue(tree, []string{"preferences", "verbose"}, true))
	got, ok := traverseKey(tree, []string{"preferences", "verbose"})
	require.True(t, ok)
	assert.Equal(t, true, got)
	assert.False(t, setMapValue(tree, nil, 1))
}
