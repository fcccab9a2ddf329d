package availability

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeExecutable(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), mode); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPathResolverForFindsExecutables(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeExecutable(t, second, "gitleaks", 0o755)

	resolver := NewPathResolverFor(first + string(os.PathListSeparator) + second)

	assert.True(t, resolver.Resolve("gitleaks"))
	assert.False(t, resolver.Resolve("trufflehog"))
	assert.False(t, resolver.Resolve(""))
}

func TestPathResolverForIgnoresNonExecutables(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not used on windows")
	}
	dir := t.TempDir()
	writeExecutable(t, dir, "notes", 0o644)
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}

	resolver := NewPathResolverFor(dir)

	assert.False(t, resolver.Resolve("notes"))
	assert.False(t, resolver.Resolve("subdir"))
}

func TestPathResolverForAcceptsExplicitPaths(t *testing.T) {
	dir := t.TempDir()
	path := writeExecutable(t, dir, "tool", 0o755)

	resolver := NewPathResolverFor(t.TempDir())

	assert.True(t, resolver.Resolve(path))
	assert.False(t, resolver.Resolve(filepath.Join(dir, "missing")))
}

func TestPathResolverUsesProcessPath(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, dir, "psprofile-probe", 0o755)
	t.Setenv("PATH", dir)

	resolver := NewPathResolver()

	assert.True(t, resolver.Resolve("psprofile-probe"))
	assert.False(t, resolver.Resolve("psprofile-missing"))
}

func TestChainResolverShortCircuits(t *testing.T) {
	var secondCalled bool
	chain := ChainResolver{
		ResolverFunc(func(name string) bool { return name == "Invoke-Httpie" }),
		nil,
		ResolverFunc(func(name string) bool {
			secondCalled = true
			return name == "http"
		}),
	}

	assert.True(t, chain.Resolve("Invoke-Httpie"))
	assert.False(t, secondCalled)
	assert.True(t, chain.Resolve("http"))
	assert.True(t, secondCalled)
	assert.False(t, chain.Resolve("nope"))
}
