package profile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bolens/ps-profile/internal/domain"
	"github.com/bolens/ps-profile/internal/infrastructure/availability"
	"github.com/bolens/ps-profile/internal/infrastructure/fragment"
	"github.com/bolens/ps-profile/internal/pkg/logger"
)

type recordingExecutor struct {
	mu       sync.Mutex
	requests []domain.ExecutionRequest
	deadline bool
	err      error
}

func (e *recordingExecutor) Execute(ctx context.Context, req domain.ExecutionRequest) (domain.ExecutionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests = append(e.requests, req)
	_, e.deadline = ctx.Deadline()
	if e.err != nil {
		return domain.ExecutionResult{Ran: true, ExitCode: 1}, e.err
	}
	return domain.ExecutionResult{Ran: true, Stdout: "ok"}, nil
}

type probeCounter struct {
	mu        sync.Mutex
	available map[string]bool
	calls     map[string]int
}

func (p *probeCounter) Resolve(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[name]++
	return p.available[name]
}

func newTestService(available map[string]bool) (*Service, *probeCounter, *recordingExecutor) {
	probe := &probeCounter{available: available, calls: map[string]int{}}
	exec := &recordingExecutor{}
	registry := NewRegistry()
	svc := &Service{
		Cache:    availability.New(probe),
		Guard:    fragment.NewGuard(),
		Registry: registry,
		Executor: exec,
		Logger:   logger.Nop(),
	}
	return svc, probe, exec
}

func gitFragment() domain.FragmentDefinition {
	return domain.FragmentDefinition{
		Name: "git",
		Wrappers: []domain.WrapperDefinition{
			{Name: "gst", Command: "git", Args: "status --short", Aliases: []string{"gs"}},
			{Name: "Invoke-Gitleaks", Command: "gitleaks", Args: "detect"},
		},
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService(nil)
	defs := []domain.FragmentDefinition{gitFragment()}

	first, err := svc.Load(context.Background(), defs)
	require.NoError(t, err)
	assert.Equal(t, []string{"git"}, first.Loaded)
	assert.Empty(t, first.Redefined)

	second, err := svc.Load(context.Background(), defs)
	require.NoError(t, err)
	assert.Empty(t, second.Loaded)
	assert.Equal(t, []string{"git"}, second.Skipped)
	assert.Empty(t, second.Redefined, "re-sourcing must not redefine functions")

	assert.Equal(t, []string{"Invoke-Gitleaks", "gs", "gst"}, svc.Registry.Names())
	assert.True(t, svc.Guard.IsLoaded("git"))
}

func TestLoadSkipsDisabledFragments(t *testing.T) {
	svc, _, _ := newTestService(nil)
	svc.Disabled = func(name string) bool { return name == "git" }

	report, err := svc.Load(context.Background(), []domain.FragmentDefinition{gitFragment()})
	require.NoError(t, err)
	assert.Equal(t, []string{"git"}, report.Disabled)
	assert.False(t, svc.Guard.IsLoaded("git"))
	assert.Empty(t, svc.Registry.Names())
}

func TestLoadReportsRedefinitionsAcrossFragments(t *testing.T) {
	svc, _, _ := newTestService(nil)
	other := domain.FragmentDefinition{
		Name:     "extras",
		Wrappers: []domain.WrapperDefinition{{Name: "gst", Command: "git", Args: "status"}},
	}

	report, err := svc.Load(context.Background(), []domain.FragmentDefinition{gitFragment(), other})
	require.NoError(t, err)
	assert.Equal(t, []string{"gst"}, report.Redefined)

	w, ok := svc.Registry.Lookup("gst")
	require.True(t, ok)
	assert.Equal(t, "extras", w.Fragment, "last definition wins")
}

func TestLoadLeavesInvalidFragmentUnloaded(t *testing.T) {
	svc, _, _ := newTestService(nil)
	bad := domain.FragmentDefinition{
		Name:     "broken",
		Wrappers: []domain.WrapperDefinition{{Name: "x", Command: "x", Args: `"open`}},
	}

	_, err := svc.Load(context.Background(), []domain.FragmentDefinition{bad})
	require.ErrorIs(t, err, domain.ErrFragmentInvalid)
	assert.False(t, svc.Guard.IsLoaded("broken"))
	assert.Empty(t, svc.Registry.Names())
}

func TestReloadReplacesFragmentFunctions(t *testing.T) {
	svc, _, _ := newTestService(nil)
	_, err := svc.Load(context.Background(), []domain.FragmentDefinition{gitFragment()})
	require.NoError(t, err)

	updated := domain.FragmentDefinition{
		Name:     "git",
		Wrappers: []domain.WrapperDefinition{{Name: "glog", Command: "git", Args: "log"}},
	}
	report, err := svc.Reload(context.Background(), "git", []domain.FragmentDefinition{updated})
	require.NoError(t, err)
	assert.Equal(t, []string{"git"}, report.Loaded)
	assert.Equal(t, []string{"glog"}, svc.Registry.Names())

	_, err = svc.Reload(context.Background(), "nope", nil)
	assert.Error(t, err)
}

func TestInvokeRunsAvailableTool(t *testing.T) {
	svc, probe, exec := newTestService(map[string]bool{"git": true})
	_, err := svc.Load(context.Background(), []domain.FragmentDefinition{gitFragment()})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		result, err := svc.Invoke(context.Background(), InvokeRequest{Name: "gs", Args: []string{"--", "README.md"}})
		require.NoError(t, err)
		assert.True(t, result.Ran)
	}

	require.Len(t, exec.requests, 3)
	assert.Equal(t, "git", exec.requests[0].Command)
	assert.Equal(t, []string{"status", "--short", "--", "README.md"}, exec.requests[0].Args)
	assert.Equal(t, 1, probe.calls["git"], "availability is probed once per session")
	assert.False(t, exec.deadline)
}

func TestInvokeMissingToolIsSilentNoOp(t *testing.T) {
	svc, _, exec := newTestService(map[string]bool{"gitleaks": false})
	_, err := svc.Load(context.Background(), []domain.FragmentDefinition{gitFragment()})
	require.NoError(t, err)

	result, err := svc.Invoke(context.Background(), InvokeRequest{Name: "Invoke-Gitleaks"})
	require.NoError(t, err)
	assert.False(t, result.Ran)
	assert.Empty(t, exec.requests)
}

func TestInvokeMissingToolStrict(t *testing.T) {
	svc, _, exec := newTestService(nil)
	svc.Strict = true
	_, err := svc.Load(context.Background(), []domain.FragmentDefinition{gitFragment()})
	require.NoError(t, err)

	_, err = svc.Invoke(context.Background(), InvokeRequest{Name: "Invoke-Gitleaks"})
	require.ErrorIs(t, err, domain.ErrToolUnavailable)
	var unavailable *domain.ToolUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "gitleaks", unavailable.Command)
	assert.Empty(t, exec.requests)
}

func TestInvokeUnknownWrapper(t *testing.T) {
	svc, _, _ := newTestService(nil)
	_, err := svc.Invoke(context.Background(), InvokeRequest{Name: "nope"})
	assert.ErrorIs(t, err, domain.ErrWrapperNotFound)
}

func TestInvokeDelegatesToOtherWrappers(t *testing.T) {
	svc, _, exec := newTestService(map[string]bool{"git": true})
	chained := domain.FragmentDefinition{
		Name:     "shortcuts",
		Wrappers: []domain.WrapperDefinition{{Name: "gsb", Command: "gst", Args: "--branch"}},
	}
	_, err := svc.Load(context.Background(), []domain.FragmentDefinition{gitFragment(), chained})
	require.NoError(t, err)

	_, err = svc.Invoke(context.Background(), InvokeRequest{Name: "gsb"})
	require.NoError(t, err)
	require.Len(t, exec.requests, 1)
	assert.Equal(t, []string{"status", "--short", "--branch"}, exec.requests[0].Args)
}

func TestInvokeRejectsWrapperCycles(t *testing.T) {
	svc, _, _ := newTestService(nil)
	loop := domain.FragmentDefinition{
		Name: "loop",
		Wrappers: []domain.WrapperDefinition{
			{Name: "a", Command: "b"},
			{Name: "b", Command: "a"},
		},
	}
	_, err := svc.Load(context.Background(), []domain.FragmentDefinition{loop})
	require.NoError(t, err)

	_, err = svc.Invoke(context.Background(), InvokeRequest{Name: "a"})
	assert.ErrorContains(t, err, "wrapper chain")
}

func TestInvokeAppliesTimeoutAndWrapsErrors(t *testing.T) {
	svc, _, exec := newTestService(map[string]bool{"git": true})
	svc.Timeout = time.Minute
	exec.err = errors.New("exit status 1")
	_, err := svc.Load(context.Background(), []domain.FragmentDefinition{gitFragment()})
	require.NoError(t, err)

	_, err = svc.Invoke(context.Background(), InvokeRequest{Name: "gst"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gst: exit status 1")
	assert.True(t, exec.deadline)
}

func TestCheckReportsFunctionsAsCallable(t *testing.T) {
	svc, _, _ := newTestService(map[string]bool{"git": true})

	before := svc.Check("gst")
	assert.False(t, before[0].Available)

	_, err := svc.Load(context.Background(), []domain.FragmentDefinition{gitFragment()})
	require.NoError(t, err)

	results := svc.Check("git", "GIT", "gst", "gitleaks", "")
	assert.Equal(t, []domain.CheckResult{
		{Command: "git", Available: true},
		{Command: "GIT", Available: true},
		{Command: "gst", Available: true},
		{Command: "gitleaks", Available: false},
		{Command: "", Available: false},
	}, results)
}

func TestAvailableWrappers(t *testing.T) {
	svc, _, _ := newTestService(map[string]bool{"git": true})
	_, err := svc.Load(context.Background(), []domain.FragmentDefinition{gitFragment()})
	require.NoError(t, err)

	wrappers := svc.AvailableWrappers()
	require.Len(t, wrappers, 1)
	assert.Equal(t, "gst", wrappers[0].Name)
	assert.Equal(t, []string{"gs"}, wrappers[0].Aliases)
}

func TestWrapperNamedAfterItsToolDoesNotVouchForItself(t *testing.T) {
	svc, resolver, exec := newTestService(nil)
	defs := []domain.FragmentDefinition{{
		Name: "infra",
		Wrappers: []domain.WrapperDefinition{
			{Name: "terraform", Command: "terraform"},
			{Name: "tfplan", Command: "tf", Args: "plan", Aliases: []string{"tf"}},
		},
	}}
	_, err := svc.Load(context.Background(), defs)
	require.NoError(t, err)

	for _, name := range []string{"terraform", "tfplan"} {
		result, err := svc.Invoke(context.Background(), InvokeRequest{Name: name})
		require.NoError(t, err)
		assert.False(t, result.Ran, name)
	}
	assert.Empty(t, exec.requests, "missing tools must not be executed")
	assert.Empty(t, svc.AvailableWrappers())
	assert.Equal(t, 1, resolver.calls["terraform"])
	assert.Equal(t, 1, resolver.calls["tf"])

	svc.Strict = true
	_, err = svc.Invoke(context.Background(), InvokeRequest{Name: "terraform"})
	assert.ErrorIs(t, err, domain.ErrToolUnavailable)
}

func TestAvailableWrappersFollowsDelegation(t *testing.T) {
	svc, _, _ := newTestService(map[string]bool{"git": true})
	chained := domain.FragmentDefinition{
		Name: "shortcuts",
		Wrappers: []domain.WrapperDefinition{
			{Name: "gsb", Command: "gst", Args: "--branch"},
			{Name: "leaks", Command: "Invoke-Gitleaks"},
		},
	}
	_, err := svc.Load(context.Background(), []domain.FragmentDefinition{gitFragment(), chained})
	require.NoError(t, err)

	var names []string
	for _, w := range svc.AvailableWrappers() {
		names = append(names, w.Name)
	}
	assert.Equal(t, []string{"gst", "gsb"}, names)
}
