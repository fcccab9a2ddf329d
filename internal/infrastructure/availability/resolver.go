package availability

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bolens/ps-profile/internal/ports"
)

// ResolverFunc adapts a plain function to ports.CommandResolver.
type ResolverFunc func(name string) bool

// Resolve implements ports.CommandResolver.
func (f ResolverFunc) Resolve(name string) bool {
	return f(name)
}

// ChainResolver reports a command as available if any resolver does.
type ChainResolver []ports.CommandResolver

// Resolve implements ports.CommandResolver.
func (c ChainResolver) Resolve(name string) bool {
	for _, r := range c {
		if r != nil && r.Resolve(name) {
			return true
		}
	}
	return false
}

// PathResolver checks for an executable on PATH.
type PathResolver struct {
	// pathList, when set, is scanned instead of the process PATH.
	pathList string
	pathExt  []string
	windows  bool
}

// NewPathResolver resolves against the process PATH via exec.LookPath.
func NewPathResolver() *PathResolver {
	return &PathResolver{windows: runtime.GOOS == "windows"}
}

// NewPathResolverFor resolves against an explicit PATH-style list.
func NewPathResolverFor(pathList string) *PathResolver {
	r := NewPathResolver()
	r.pathList = pathList
	if r.windows {
		r.pathExt = windowsPathExt()
	}
	return r
}

// Resolve implements ports.CommandResolver. Lookup errors, including
// permission problems while scanning, count as not available.
func (r *PathResolver) Resolve(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if r.pathList == "" {
		_, err := exec.LookPath(name)
		return err == nil
	}
	if strings.ContainsAny(name, `/\`) {
		return r.isExecutable(name)
	}
	for _, dir := range filepath.SplitList(r.pathList) {
		if dir == "" {
			continue
		}
		for _, candidate := range r.candidates(filepath.Join(dir, name)) {
			if r.isExecutable(candidate) {
				return true
			}
		}
	}
	return false
}

func (r *PathResolver) candidates(base string) []string {
	if !r.windows || filepath.Ext(base) != "" {
		return []string{base}
	}
	out := make([]string, 0, len(r.pathExt))
	for _, ext := range r.pathExt {
		out = append(out, base+ext)
	}
	return out
}

func (r *PathResolver) isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if r.windows {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

func windowsPathExt() []string {
	raw := os.Getenv("PATHEXT")
	if raw == "" {
		return []string{".com", ".exe", ".bat", ".cmd"}
	}
	var exts []string
	for _, ext := range strings.Split(strings.ToLower(raw), ";") {
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}

var (
	_ ports.CommandResolver = ResolverFunc(nil)
	_ ports.CommandResolver = ChainResolver(nil)
	_ ports.CommandResolver = (*PathResolver)(nil)
)
