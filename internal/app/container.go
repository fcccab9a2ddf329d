package app

import (
	"context"
	"os"

	rootassets "github.com/bolens/ps-profile/assets"
	"github.com/bolens/ps-profile/internal/application/doctor"
	"github.com/bolens/ps-profile/internal/application/profile"
	"github.com/bolens/ps-profile/internal/domain"
	"github.com/bolens/ps-profile/internal/infrastructure/availability"
	"github.com/bolens/ps-profile/internal/infrastructure/config"
	"github.com/bolens/ps-profile/internal/infrastructure/executor"
	"github.com/bolens/ps-profile/internal/infrastructure/fragment"
	"github.com/bolens/ps-profile/internal/infrastructure/shell"
	"github.com/bolens/ps-profile/internal/infrastructure/watch"
	"github.com/bolens/ps-profile/internal/pkg/logger"
	"github.com/bolens/ps-profile/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config          domain.Config
	ConfigLoader    *config.FileLoader
	Logger          *logger.ZapLogger
	Cache           *availability.Cache
	Guard           *fragment.Guard
	Fragments       ports.FragmentSource
	ProfileService  *profile.Service
	ShellIntegrator ports.ShellIntegrator
	DoctorService   *doctor.Service
}

// Options tweak container construction.
type Options struct {
	Verbose    bool
	ConfigPath string
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	ttl, err := cfg.AvailabilityTTL()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.ExecutionTimeout()
	if err != nil {
		return nil, err
	}

	log := logger.New(opts.Verbose || cfg.Preferences.Verbose)

	registry := profile.NewRegistry()
	cache := availability.New(
		availability.NewPathResolver(),
		availability.WithTTL(ttl),
		availability.WithLogger(log),
	)
	guard := fragment.NewGuard()
	source := fragment.NewDirSource(config.FragmentsDir(cfg), rootassets.DefaultFragments())
	shellInstaller := shell.NewInstaller(log)

	profileService := &profile.Service{
		Cache:    cache,
		Guard:    guard,
		Registry: registry,
		Executor: executor.NewLocalExecutor(),
		Logger:   log,
		Strict:   cfg.Execution.Strict,
		Timeout:  timeout,
		Disabled: cfg.IsFragmentDisabled,
	}

	doctorService := &doctor.Service{
		ConfigProvider:  cfgLoader,
		Fragments:       source,
		Cache:           cache,
		ShellIntegrator: shellInstaller,
	}

	return &Container{
		Config:          cfg,
		ConfigLoader:    cfgLoader,
		Logger:          log,
		Cache:           cache,
		Guard:           guard,
		Fragments:       source,
		ProfileService:  profileService,
		ShellIntegrator: shellInstaller,
		DoctorService:   doctorService,
	}, nil
}

// LoadFragments reads every fragment definition and loads the enabled ones.
func (c *Container) LoadFragments(ctx context.Context) ([]domain.FragmentDefinition, domain.LoadReport, error) {
	defs, err := c.Fragments.Fragments(ctx)
	if err != nil {
		return nil, domain.LoadReport{}, err
	}
	report, err := c.ProfileService.Load(ctx, defs)
	return defs, report, err
}

// PathWatcher builds a watcher over the current PATH feeding this container's cache.
func (c *Container) PathWatcher() *watch.PathWatcher {
	return watch.NewPathWatcher(c.Cache, c.Logger, os.Getenv("PATH"))
}
