package profile

import (
	"testing"

	"github.com/bolens/ps-profile/internal/domain"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	w := domain.Wrapper{Name: "kctx", Fragment: "containers", Command: "kubectl", Aliases: []string{"Get-KubeContext"}}

	if !r.Register(w) {
		t.Fatal("expected first registration to be fresh")
	}
	if r.Register(w) {
		t.Fatal("expected second registration to report a redefinition")
	}
	got, ok := r.Lookup("Get-KubeContext")
	if !ok || got.Name != "kctx" {
		t.Fatalf("alias lookup failed: %+v %v", got, ok)
	}
	if !r.Resolve("kctx") || r.Resolve("kubectl") {
		t.Fatal("only registered names should resolve")
	}
	if len(r.Wrappers()) != 1 {
		t.Fatalf("expected one wrapper, got %+v", r.Wrappers())
	}
}

func TestRegistryRemoveFragment(t *testing.T) {
	r := NewRegistry()
	r.Register(domain.Wrapper{Name: "gst", Fragment: "git", Aliases: []string{"gs"}})
	r.Register(domain.Wrapper{Name: "dps", Fragment: "containers"})

	removed := r.RemoveFragment("git")
	if len(removed) != 2 || removed[0] != "gs" || removed[1] != "gst" {
		t.Fatalf("unexpected removed names %v", removed)
	}
	names := r.Names()
	if len(names) != 1 || names[0] != "dps" {
		t.Fatalf("unexpected remaining names %v", names)
	}
}

func TestRegistryNamesAreCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(domain.Wrapper{Name: "Invoke-Gitleaks", Fragment: "git", Aliases: []string{"leaks"}})

	if !r.Resolve("invoke-gitleaks") || !r.Resolve("LEAKS") {
		t.Fatal("expected case-insensitive resolution")
	}
	if r.Register(domain.Wrapper{Name: "INVOKE-GITLEAKS", Fragment: "security"}) {
		t.Fatal("expected a differently-cased name to count as a redefinition")
	}
	got, _ := r.Lookup("invoke-gitleaks")
	if got.Fragment != "security" {
		t.Fatalf("expected last definition to win, got %+v", got)
	}
}
