package shell

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	rootassets "github.com/bolens/ps-profile/assets"
	"github.com/bolens/ps-profile/internal/domain"
	"github.com/bolens/ps-profile/internal/pkg/filesystem"
	"github.com/bolens/ps-profile/internal/ports"
)

// Installer handles shell hook deployment.
type Installer struct {
	logger ports.Logger
}

// NewInstaller builds a shell installer.
func NewInstaller(logger ports.Logger) *Installer {
	return &Installer{logger: logger}
}

// Install writes the hook script for shell (auto-detected when empty) and
// makes sure the rc file sources it exactly once.
func (i *Installer) Install(shell string, force bool) (domain.ShellInstallResult, error) {
	name := NormalizeShell(shell)
	scriptContent, err := scriptFor(name)
	if err != nil {
		return domain.ShellInstallResult{}, err
	}
	scriptPath, rcFile := scriptPaths(name)
	if err := os.MkdirAll(filepath.Dir(scriptPath), domain.DirectoryPermissions); err != nil {
		return domain.ShellInstallResult{}, err
	}
	if err := os.WriteFile(scriptPath, []byte(scriptContent), domain.FilePermissions); err != nil {
		return domain.ShellInstallResult{}, err
	}

	rcUpdated, err := ensureRCLine(rcFile, sourceLine(name, scriptPath), force)
	if err != nil {
		return domain.ShellInstallResult{}, err
	}
	i.logger.Info("shell hook installed", map[string]interface{}{
		"shell":      string(name),
		"rc_file":    rcFile,
		"rc_updated": rcUpdated,
	})

	return domain.ShellInstallResult{
		Shell:         name,
		ScriptPath:    scriptPath,
		RCFile:        rcFile,
		ScriptUpdated: true,
		RCUpdated:     rcUpdated,
	}, nil
}

// Uninstall removes the sourcing line from the rc file (script retained as backup).
func (i *Installer) Uninstall(shell string) (domain.ShellInstallResult, error) {
	name := NormalizeShell(shell)
	if _, err := scriptFor(name); err != nil {
		return domain.ShellInstallResult{}, err
	}
	scriptPath, rcFile := scriptPaths(name)
	updated, err := removeRCLine(rcFile, sourceLine(name, scriptPath))
	if err != nil {
		return domain.ShellInstallResult{}, err
	}
	return domain.ShellInstallResult{
		Shell:      name,
		ScriptPath: scriptPath,
		RCFile:     rcFile,
		RCUpdated:  updated,
	}, nil
}

// Status reports current integration state.
func (i *Installer) Status(shell string) domain.ShellStatus {
	name := NormalizeShell(shell)
	status := domain.ShellStatus{Shell: name}
	if _, err := scriptFor(name); err != nil {
		status.Error = err.Error()
		return status
	}
	status.ScriptPath, status.RCFile = scriptPaths(name)

	if info, err := os.Stat(status.ScriptPath); err == nil && info.Mode().IsRegular() {
		status.ScriptExists = true
	}
	if contents, err := os.ReadFile(status.RCFile); err == nil {
		status.LinePresent = strings.Contains(string(contents), sourceLine(name, status.ScriptPath))
	}
	return status
}

// DetectShell inspects the environment for the interactive shell.
func (i *Installer) DetectShell() string {
	return string(NormalizeShell(""))
}

// NormalizeShell maps a shell name or path to a supported shell. An empty
// name is detected from $SHELL, falling back to pwsh on Windows.
func NormalizeShell(shell string) domain.ShellName {
	if shell == "" || shell == "auto" {
		shell = filepath.Base(os.Getenv("SHELL"))
		if shell == "." && runtime.GOOS == "windows" {
			shell = "pwsh"
		}
	}
	switch strings.TrimSuffix(strings.ToLower(filepath.Base(shell)), ".exe") {
	case "pwsh", "powershell":
		return domain.ShellPowerShell
	case "zsh":
		return domain.ShellZsh
	case "bash":
		return domain.ShellBash
	default:
		return domain.ShellUnknown
	}
}

func scriptFor(shell domain.ShellName) (string, error) {
	switch shell {
	case domain.ShellPowerShell:
		return rootassets.PowerShellHook, nil
	case domain.ShellZsh:
		return rootassets.ZshHook, nil
	case domain.ShellBash:
		return rootassets.BashHook, nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedShell, shell)
	}
}

func scriptPaths(shell domain.ShellName) (string, string) {
	home := filesystem.UserHomeDir()
	dir := filepath.Join(filesystem.AppDir(), "shell")
	switch shell {
	case domain.ShellPowerShell:
		return filepath.Join(dir, "profile.ps1"), powerShellProfile(home)
	case domain.ShellZsh:
		return filepath.Join(dir, "zsh.sh"), filepath.Join(home, ".zshrc")
	case domain.ShellBash:
		return filepath.Join(dir, "bash.sh"), filepath.Join(home, ".bashrc")
	default:
		return "", ""
	}
}

func powerShellProfile(home string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "Documents", "PowerShell", "Microsoft.PowerShell_profile.ps1")
	}
	return filepath.Join(home, ".config", "powershell", "Microsoft.PowerShell_profile.ps1")
}

func ensureRCLine(path string, line string, force bool) (bool, error) {
	contents, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
			return false, err
		}
		if err := os.WriteFile(path, []byte(headerComment()+line+"\n"), domain.FilePermissions); err != nil {
			return false, err
		}
		return true, nil
	}
	if strings.Contains(string(contents), line) && !force {
		return false, nil
	}
	lines := strings.Split(string(contents), "\n")
	var filtered []string
	for _, existing := range lines {
		if strings.Contains(existing, line) {
			continue
		}
		filtered = append(filtered, existing)
	}
	final := strings.TrimRight(strings.Join(filtered, "\n"), "\n")
	if final != "" {
		final += "\n"
	}
	final += line + "\n"
	return true, os.WriteFile(path, []byte(final), domain.FilePermissions)
}

func removeRCLine(path string, line string) (bool, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	lines := strings.Split(string(contents), "\n")
	var filtered []string
	removed := false
	for _, existing := range lines {
		if strings.Contains(existing, line) {
			removed = true
			continue
		}
		filtered = append(filtered, existing)
	}
	if !removed {
		return false, nil
	}
	final := strings.Join(filtered, "\n")
	if !strings.HasSuffix(final, "\n") {
		final += "\n"
	}
	return true, os.WriteFile(path, []byte(final), domain.FilePermissions)
}

func sourceLine(shell domain.ShellName, scriptPath string) string {
	path := friendlyPath(scriptPath)
	if shell == domain.ShellPowerShell {
		return fmt.Sprintf(`if (Test-Path "%s") { . "%s" }`, path, path)
	}
	return fmt.Sprintf(`[ -f "%s" ] && source "%s"`, path, path)
}

func friendlyPath(path string) string {
	home := filesystem.UserHomeDir()
	if strings.HasPrefix(path, home) {
		rel := strings.TrimPrefix(path, home)
		rel = strings.TrimPrefix(rel, string(os.PathSeparator))
		return "$HOME/" + filepath.ToSlash(rel)
	}
	return path
}

func headerComment() string {
	return "# Added by psprofile installer\n"
}

var _ ports.ShellIntegrator = (*Installer)(nil)
