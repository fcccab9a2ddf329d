package shell

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/bolens/ps-profile/internal/domain"
)

// functionName limits what may be emitted as a function or alias name.
var functionName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.:+-]*$`)

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9_]`)

// RenderInit emits shell code defining one function per wrapper. Each
// fragment's definitions sit behind a session variable so re-evaluating the
// output (re-sourcing the profile) does not redefine anything.
func RenderInit(shell domain.ShellName, binary string, wrappers []domain.Wrapper) (string, error) {
	if _, err := scriptFor(shell); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, group := range groupByFragment(wrappers) {
		switch shell {
		case domain.ShellPowerShell:
			renderPowerShell(&b, binary, group)
		default:
			renderPosix(&b, binary, group)
		}
	}
	return b.String(), nil
}

// LoadedVariable is the session variable that marks fragment as loaded.
// Names that are not valid identifiers get a short hash suffix, so
// "ai-tools" and "ai_tools" stay distinct.
func LoadedVariable(shell domain.ShellName, fragment string) string {
	ident := nonIdent.ReplaceAllString(fragment, "_")
	if ident != fragment {
		sum := sha256.Sum256([]byte(fragment))
		ident += "_" + hex.EncodeToString(sum[:4])
	}
	if shell == domain.ShellPowerShell {
		return "PSProfileLoaded_" + ident
	}
	return "PSPROFILE_LOADED_" + ident
}

type fragmentGroup struct {
	name     string
	wrappers []domain.Wrapper
}

func groupByFragment(wrappers []domain.Wrapper) []fragmentGroup {
	var groups []fragmentGroup
	index := make(map[string]int)
	for _, w := range wrappers {
		i, ok := index[w.Fragment]
		if !ok {
			i = len(groups)
			index[w.Fragment] = i
			groups = append(groups, fragmentGroup{name: w.Fragment})
		}
		groups[i].wrappers = append(groups[i].wrappers, w)
	}
	return groups
}

func renderPowerShell(b *strings.Builder, binary string, group fragmentGroup) {
	variable := LoadedVariable(domain.ShellPowerShell, group.name)
	fmt.Fprintf(b, "if (-not (Get-Variable -Name '%s' -Scope Global -ErrorAction SilentlyContinue)) {\n", variable)
	for _, w := range group.wrappers {
		if !functionName.MatchString(w.Name) {
			continue
		}
		fmt.Fprintf(b, "    function global:%s { & %s run %s @args }\n", w.Name, psQuote(binary), psQuote(w.Name))
		for _, alias := range w.Aliases {
			if functionName.MatchString(alias) {
				fmt.Fprintf(b, "    Set-Alias -Name %s -Value %s -Scope Global -Force\n", alias, w.Name)
			}
		}
	}
	fmt.Fprintf(b, "    Set-Variable -Name '%s' -Value $true -Scope Global\n}\n", variable)
}

func renderPosix(b *strings.Builder, binary string, group fragmentGroup) {
	variable := LoadedVariable(domain.ShellBash, group.name)
	fmt.Fprintf(b, "if [ -z \"${%s:-}\" ]; then\n", variable)
	for _, w := range group.wrappers {
		if !functionName.MatchString(w.Name) {
			continue
		}
		fmt.Fprintf(b, "  %s() { command %s run %s \"$@\"; }\n", w.Name, shQuote(binary), shQuote(w.Name))
		for _, alias := range w.Aliases {
			if functionName.MatchString(alias) {
				fmt.Fprintf(b, "  alias %s=%s\n", alias, shQuote(w.Name))
			}
		}
	}
	fmt.Fprintf(b, "  %s=1\nfi\n", variable)
}

func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
