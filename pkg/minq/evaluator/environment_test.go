package evaluator

import (
	"strings"
	"testing"
)

func newTestEnv() (*Environment, *BufferedLogger) {
	warn := NewBufferedLogger()
	rt := NewRuntime(WithWarnLogger(warn))
	return NewEnvironment(rt), warn
}

func TestDeclareAndLookup(t *testing.T) {
	env, warn := newTestEnv()
	env.Declare("a", &Number{Value: 1}, false)

	child := NewEnclosedEnvironment(env)
	testNumberObject(t, child.Lookup("a"), 1)

	if child.Has("a") {
		t.Errorf("Has should not search parents")
	}
	if warn.String() != "" {
		t.Errorf("unexpected diagnostics %q", warn.String())
	}
}

func TestRedeclarationIsReported(t *testing.T) {
	env, warn := newTestEnv()
	env.Declare("a", &Number{Value: 1}, false)
	if res := env.Declare("a", &Number{Value: 2}, false); res != NULL {
		t.Errorf("expected NULL, got %s", res.Inspect())
	}
	testNumberObject(t, env.Lookup("a"), 1)
	if !strings.Contains(warn.String(), "cannot declare 'a'") {
		t.Errorf("unexpected diagnostics %q", warn.String())
	}
}

func TestShadowingInChildScope(t *testing.T) {
	env, warn := newTestEnv()
	env.Declare("a", &Number{Value: 1}, true)
	child := NewEnclosedEnvironment(env)
	child.Declare("a", &Number{Value: 2}, false)

	testNumberObject(t, child.Lookup("a"), 2)
	testNumberObject(t, env.Lookup("a"), 1)
	if warn.String() != "" {
		t.Errorf("shadowing should be silent, got %q", warn.String())
	}
}

func TestAssignWritesOwningScope(t *testing.T) {
	env, _ := newTestEnv()
	env.Declare("a", &Number{Value: 1}, false)
	child := NewEnclosedEnvironment(env)
	child.Assign("a", &Number{Value: 5})

	testNumberObject(t, env.Lookup("a"), 5)
	if child.Has("a") {
		t.Errorf("assignment must not create a binding in the child")
	}
}

func TestAssignUndeclaredIsReported(t *testing.T) {
	env, warn := newTestEnv()
	if res := env.Assign("ghost", &Number{Value: 1}); res != NULL {
		t.Errorf("expected NULL, got %s", res.Inspect())
	}
	if env.Has("ghost") {
		t.Errorf("assignment must never create a binding")
	}
	if !strings.Contains(warn.String(), "cannot resolve 'ghost'") {
		t.Errorf("unexpected diagnostics %q", warn.String())
	}
}

func TestDelete(t *testing.T) {
	env, warn := newTestEnv()
	env.Declare("a", &Number{Value: 1}, true)
	testNumberObject(t, env.Delete("a"), 1)
	if env.Has("a") || env.IsConstant("a") {
		t.Errorf("binding should be gone")
	}

	env.Delete("a")
	if !strings.Contains(warn.String(), "cannot delete 'a'") {
		t.Errorf("unexpected diagnostics %q", warn.String())
	}
}

func TestVisibleNames(t *testing.T) {
	env, _ := newTestEnv()
	env.Declare("b", NULL, false)
	env.Declare("a", NULL, false)
	child := NewEnclosedEnvironment(env)
	child.Declare("c", NULL, false)
	child.Declare("a", NULL, false)

	got := strings.Join(child.VisibleNames(), ",")
	if got != "a,b,c" {
		t.Errorf("VisibleNames = %s", got)
	}
	if got := strings.Join(child.Names(), ","); got != "a,c" {
		t.Errorf("Names = %s", got)
	}
}

func TestGlobalEnvironmentBuiltins(t *testing.T) {
	env := NewRuntime().NewGlobalEnvironment()
	for _, name := range BuiltinNames() {
		if !env.Has(name) {
			t.Errorf("missing builtin %s", name)
		}
		if !env.IsConstant(name) {
			t.Errorf("builtin %s should be constant", name)
		}
	}
}
