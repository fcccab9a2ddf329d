package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/bolens/ps-profile/internal/domain"
)

// styles holds lipgloss styles for human-readable output.
type styles struct {
	ok    lipgloss.Style
	warn  lipgloss.Style
	fail  lipgloss.Style
	title lipgloss.Style
	dim   lipgloss.Style
	key   lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{ok: plain, warn: plain, fail: plain, title: plain, dim: plain, key: plain}
	}
	return styles{
		ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		fail:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		key:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
}

// renderer prints command results. Colors are only used on a terminal.
type renderer struct {
	out    io.Writer
	styles styles
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{out: out, styles: newStyles(isTerminal(out))}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *renderer) status(available bool) string {
	if available {
		return r.styles.ok.Render("available")
	}
	return r.styles.warn.Render("missing")
}

func (r *renderer) checks(results []domain.CheckResult) {
	for _, res := range results {
		fmt.Fprintf(r.out, "%-24s %s\n", res.Command, r.status(res.Available))
	}
}

func (r *renderer) records(records []domain.CommandRecord, ttl time.Duration) {
	if len(records) == 0 {
		fmt.Fprintln(r.out, r.styles.dim.Render("cache is empty"))
		return
	}
	horizon := "never expires"
	if ttl > 0 {
		horizon = "ttl " + ttl.String()
	}
	fmt.Fprintln(r.out, r.styles.title.Render(fmt.Sprintf("%d cached commands (%s)", len(records), horizon)))
	for _, rec := range records {
		fmt.Fprintf(r.out, "%-24s %-20s %s\n", rec.Name, r.status(rec.Available), r.styles.dim.Render(rec.ResolvedAt.Format(domain.TimestampFormat)))
	}
}

func (r *renderer) fragments(cfg domain.Config, defs []domain.FragmentDefinition, loaded map[string]domain.FragmentState, available func(string) bool) {
	for _, def := range defs {
		state := r.styles.dim.Render("not loaded")
		switch {
		case cfg.IsFragmentDisabled(def.Name):
			state = r.styles.warn.Render("disabled")
		case loaded[def.Name].Loaded:
			state = r.styles.ok.Render("loaded")
		}
		fmt.Fprintf(r.out, "%s %s  %s\n", r.styles.title.Render(def.Name), state, r.styles.dim.Render(def.Source))
		if def.Description != "" {
			fmt.Fprintf(r.out, "  %s\n", def.Description)
		}
		for _, w := range def.Wrappers {
			line := fmt.Sprintf("  %-20s -> %s %s", r.styles.key.Render(w.Name), w.Command, w.Args)
			if len(w.Aliases) > 0 {
				line += r.styles.dim.Render(" (alias " + strings.Join(w.Aliases, ", ") + ")")
			}
			if available != nil && !available(w.Command) {
				line += " " + r.styles.warn.Render("[missing]")
			}
			fmt.Fprintln(r.out, strings.TrimRight(line, " "))
		}
	}
}

func (r *renderer) loadReport(report domain.LoadReport) {
	fmt.Fprintf(r.out, "loaded: %s\n", joinOrNone(report.Loaded))
	if len(report.Skipped) > 0 {
		fmt.Fprintf(r.out, "already loaded: %s\n", strings.Join(report.Skipped, ", "))
	}
	if len(report.Redefined) > 0 {
		fmt.Fprintln(r.out, r.styles.warn.Render("redefined: "+strings.Join(report.Redefined, ", ")))
	}
}

func (r *renderer) doctor(report domain.HealthReport) {
	for _, check := range report.Checks {
		label := strings.ToUpper(string(check.Status))
		switch check.Status {
		case domain.HealthOK:
			label = r.styles.ok.Render(label)
		case domain.HealthWarn:
			label = r.styles.warn.Render(label)
		default:
			label = r.styles.fail.Render(label)
		}
		fmt.Fprintf(r.out, "[%s] %s - %s\n", label, check.Name, check.Details)
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
