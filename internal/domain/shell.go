package domain

// ShellName enumerates supported shells.
type ShellName string

const (
	ShellUnknown    ShellName = "unknown"
	ShellPowerShell ShellName = "pwsh"
	ShellZsh        ShellName = "zsh"
	ShellBash       ShellName = "bash"
)

// SupportedShells lists shells with an integration hook, in install order.
var SupportedShells = []ShellName{ShellPowerShell, ShellBash, ShellZsh}

// ShellInstallResult describes install/uninstall outcomes.
type ShellInstallResult struct {
	Shell         ShellName
	ScriptPath    string
	RCFile        string
	ScriptUpdated bool
	RCUpdated     bool
}

// ShellStatus captures current integration state.
type ShellStatus struct {
	Shell        ShellName
	ScriptPath   string
	RCFile       string
	ScriptExists bool
	LinePresent  bool
	Error        string
}
