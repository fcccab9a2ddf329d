package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bolens/ps-profile/internal/app"
	"github.com/bolens/ps-profile/internal/application/profile"
	"github.com/bolens/ps-profile/internal/domain"
	"github.com/bolens/ps-profile/internal/infrastructure/shell"
)

func newCheckCommand(container *app.Container) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check <command...>",
		Short: "Report whether commands are available",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := container.LoadFragments(cmd.Context()); err != nil {
				return err
			}
			results := container.ProfileService.Check(args...)
			newRenderer(cmd.OutOrStdout()).checks(results)
			if !strict {
				return nil
			}
			var missing []string
			for _, res := range results {
				if !res.Available {
					missing = append(missing, res.Command)
				}
			}
			if len(missing) > 0 {
				return fmt.Errorf("%w: %s", domain.ErrToolUnavailable, strings.Join(missing, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any command is missing")
	return cmd
}

func newCacheCommand(container *app.Container) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the availability cache",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Probe every wrapped tool and list cached outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := warmCache(cmd.Context(), container); err != nil {
				return err
			}
			newRenderer(cmd.OutOrStdout()).records(container.Cache.Records(), container.Cache.TTL())
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear [command...]",
		Short: "Forget cached outcomes (all of them when no command is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := warmCache(cmd.Context(), container); err != nil {
				return err
			}
			before := container.Cache.Len()
			if len(args) == 0 {
				container.Cache.ClearAll()
			}
			for _, name := range args {
				container.Cache.Clear(name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d of %d entries\n", before-container.Cache.Len(), before)
			return nil
		},
	}

	cacheCmd.AddCommand(listCmd, clearCmd)
	return cacheCmd
}

// warmCache loads fragments and probes every wrapped command once.
func warmCache(ctx context.Context, container *app.Container) error {
	defs, _, err := container.LoadFragments(ctx)
	if err != nil {
		return err
	}
	for _, def := range defs {
		for _, w := range def.Wrappers {
			container.Cache.IsAvailable(w.Command)
		}
	}
	return nil
}

func newFragmentsCommand(container *app.Container) *cobra.Command {
	fragmentsCmd := &cobra.Command{
		Use:     "fragments",
		Aliases: []string{"fragment"},
		Short:   "Inspect and manage profile fragments",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List fragments, their load state and wrappers",
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, _, err := container.LoadFragments(cmd.Context())
			if err != nil {
				return err
			}
			loaded := make(map[string]domain.FragmentState)
			for _, state := range container.Guard.Loaded() {
				loaded[state.Name] = state
			}
			r := newRenderer(cmd.OutOrStdout())
			fmt.Fprintln(r.out, r.styles.dim.Render("source: "+container.Fragments.Location()))
			r.fragments(container.Config, defs, loaded, container.Cache.IsAvailable)
			return nil
		},
	}

	reloadCmd := &cobra.Command{
		Use:   "reload <name>",
		Short: "Clear a fragment's load flag and load it again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, _, err := container.LoadFragments(cmd.Context())
			if err != nil {
				return err
			}
			report, err := container.ProfileService.Reload(cmd.Context(), args[0], defs)
			if err != nil {
				return err
			}
			newRenderer(cmd.OutOrStdout()).loadReport(report)
			return nil
		},
	}

	enableCmd := &cobra.Command{
		Use:   "enable <name>",
		Short: "Remove a fragment from the disabled list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfig(cmd.Context(), container, func(cfg *domain.Config) error {
				return cfg.EnableFragment(args[0])
			})
		},
	}

	disableCmd := &cobra.Command{
		Use:   "disable <name>",
		Short: "Skip a fragment when loading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfig(cmd.Context(), container, func(cfg *domain.Config) error {
				return cfg.DisableFragment(args[0])
			})
		},
	}

	fragmentsCmd.AddCommand(listCmd, reloadCmd, enableCmd, disableCmd)
	return fragmentsCmd
}

func newRunCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <wrapper> [args...]",
		Short: "Invoke a wrapper function",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := container.LoadFragments(cmd.Context()); err != nil {
				return err
			}
			result, err := container.ProfileService.Invoke(cmd.Context(), profile.InvokeRequest{
				Name:        args[0],
				Args:        args[1:],
				Interactive: true,
			})
			var procErr *exec.ExitError
			if errors.As(err, &procErr) {
				return &ExitError{Code: result.ExitCode}
			}
			return err
		},
	}
	// Everything after the wrapper name belongs to the wrapped tool.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newInitCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "init <shell>",
		Short: "Print wrapper functions for available tools",
		Long: `Print shell code defining a function for every wrapper whose tool is
available. Evaluate it from your profile; each fragment's functions are
guarded so evaluating the output twice defines nothing new.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"pwsh", "bash", "zsh"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := container.LoadFragments(cmd.Context()); err != nil {
				return err
			}
			script, err := shell.RenderInit(shell.NormalizeShell(args[0]), domain.AppName, container.ProfileService.AvailableWrappers())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), script)
			return nil
		},
	}
}

func newInstallCommand(container *app.Container) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "install [shell]",
		Short: "Install psprofile shell integration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := container.ShellIntegrator.Install(shellArg(container, args), force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed for %s\nScript: %s\nRC File: %s\n", res.Shell, res.ScriptPath, res.RCFile)
			if !res.RCUpdated {
				fmt.Fprintln(cmd.OutOrStdout(), "RC file already sources the hook")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Force rewrite of rc entry")
	return cmd
}

func newUninstallCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall [shell]",
		Short: "Remove psprofile shell integration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := container.ShellIntegrator.Uninstall(shellArg(container, args))
			if err != nil {
				return err
			}
			if !res.RCUpdated {
				fmt.Fprintf(cmd.OutOrStdout(), "No sourcing line for %s in %s\n", res.Shell, res.RCFile)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed sourcing line for %s in %s\n", res.Shell, res.RCFile)
			return nil
		},
	}
}

func shellArg(container *app.Container, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return container.Config.Preferences.Shell
}

func newDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := container.DoctorService.Run(cmd.Context())
			newRenderer(cmd.OutOrStdout()).doctor(report)
			if err == nil && report.HasErrors() {
				err = errors.New("doctor found problems")
			}
			return err
		},
	}
}

func newWatchCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Report tools appearing or disappearing on PATH",
		Long: `Watch every PATH directory and re-probe a tool whenever a file with its
name is created, removed, renamed or has its mode changed. The cache lives in
this process only, so watch is diagnostic: already-running shells keep the
functions they defined. Re-run "psprofile init <shell>" (or open a new shell)
to pick up newly installed tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !container.Config.Availability.WatchPath {
				return errors.New("PATH watching is disabled (availability.watch_path)")
			}
			if err := warmCache(cmd.Context(), container); err != nil {
				return err
			}
			watcher := container.PathWatcher()
			r := newRenderer(cmd.OutOrStdout())
			watcher.OnInvalidate(func(command string) {
				fmt.Fprintf(r.out, "%-24s %s\n", command, r.status(container.Cache.IsAvailable(command)))
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %d PATH directories, Ctrl-C to stop\n", len(watcher.Dirs()))
			if err := watcher.Run(cmd.Context()); err != nil {
				return err
			}
			newRenderer(cmd.OutOrStdout()).records(container.Cache.Records(), container.Cache.TTL())
			return nil
		},
	}
}

func newConfigCommand(container *app.Container) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect psprofile configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show full configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), container.ConfigLoader.Path())
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value (e.g. availability.ttl)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.Context(), cmd.OutOrStdout(), container, args[0])
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value (value accepts YAML syntax)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.Context(), container, args[0], strings.Join(args[1:], " "))
		},
	}

	editCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration in $EDITOR",
		RunE: func(cmd *cobra.Command, args []string) error {
			editor := os.Getenv("EDITOR")
			if editor == "" {
				editor = "vi"
			}
			c := exec.CommandContext(cmd.Context(), editor, container.ConfigLoader.Path())
			c.Stdin = os.Stdin
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			return c.Run()
		},
	}

	configCmd.AddCommand(showCmd, pathCmd, getCmd, setCmd, editCmd)
	return configCmd
}

func runConfigShow(ctx context.Context, out io.Writer, container *app.Container) error {
	cfg, err := container.ConfigLoader.Load(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(data))
	return nil
}

func runConfigGet(ctx context.Context, out io.Writer, container *app.Container, key string) error {
	tree, err := configTree(ctx, container)
	if err != nil {
		return err
	}
	value, ok := traverseKey(tree, strings.Split(key, "."))
	if !ok {
		return fmt.Errorf("key %s not found", key)
	}
	data, err := yaml.Marshal(value)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(data))
	return nil
}

func runConfigSet(ctx context.Context, container *app.Container, key, value string) error {
	tree, err := configTree(ctx, container)
	if err != nil {
		return err
	}
	if !setMapValue(tree, strings.Split(key, "."), parseValue(value)) {
		return fmt.Errorf("unable to set key %s", key)
	}
	raw, err := yaml.Marshal(tree)
	if err != nil {
		return err
	}
	var updated domain.Config
	if err := yaml.Unmarshal(raw, &updated); err != nil {
		return err
	}
	return container.ConfigLoader.Save(updated)
}

func updateConfig(ctx context.Context, container *app.Container, mutate func(*domain.Config) error) error {
	cfg, err := container.ConfigLoader.Load(ctx)
	if err != nil {
		return err
	}
	if err := mutate(&cfg); err != nil {
		return err
	}
	return container.ConfigLoader.Save(cfg)
}

// configTree returns the config as a generic map keyed by YAML field names.
func configTree(ctx context.Context, container *app.Container) (map[string]interface{}, error) {
	cfg, err := container.ConfigLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	tree := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func traverseKey(data interface{}, path []string) (interface{}, bool) {
	if len(path) == 0 {
		return data, true
	}
	node, ok := data.(map[string]interface{})
	if !ok {
		return nil, false
	}
	next, ok := node[path[0]]
	if !ok {
		return nil, false
	}
	return traverseKey(next, path[1:])
}

func parseValue(input string) interface{} {
	var parsed interface{}
	if err := yaml.Unmarshal([]byte(input), &parsed); err != nil {
		return input
	}
	return parsed
}

func setMapValue(root map[string]interface{}, path []string, value interface{}) bool {
	if len(path) == 0 {
		return false
	}
	current := root
	for _, key := range path[:len(path)-1] {
		child, ok := current[key].(map[string]interface{})
		if !ok {
			child = map[string]interface{}{}
			current[key] = child
		}
		current = child
	}
	current[path[len(path)-1]] = value
	return true
}
