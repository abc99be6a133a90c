package evaluator

import (
	"bufio"
	"context"
	"io"
	"os"
	"sort"
)

// ModuleRegistry holds the modules reachable through import and get_module.
type ModuleRegistry struct {
	modules map[string]*Module
}

// NewModuleRegistry creates an empty registry
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{modules: make(map[string]*Module)}
}

// Register adds or replaces a module under its own name.
func (r *ModuleRegistry) Register(m *Module) {
	r.modules[m.Name] = m
}

// Get returns the module registered under name.
func (r *ModuleRegistry) Get(name string) (*Module, bool) {
	m, ok := r.modules[name]
	return m, ok
}

// Names returns the registered module names, sorted.
func (r *ModuleRegistry) Names() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Runtime owns everything that used to be process-wide: the module table,
// the error listeners, output sinks and process arguments. Every global
// environment points at exactly one Runtime. A Runtime is not safe for
// concurrent use.
type Runtime struct {
	Modules    *ModuleRegistry
	Logger     Logger
	WarnLogger Logger
	Args       []string
	Stdin      *bufio.Reader

	ctx         context.Context
	listeners   []*Function
	dispatching bool
	globals     map[string]Object
	globalOrder []string
}

// Option configures a Runtime
type Option func(*Runtime)

// WithLogger sets the logger used for console output.
func WithLogger(l Logger) Option {
	return func(r *Runtime) { r.Logger = l }
}

// WithWarnLogger sets the logger used for unhandled-error diagnostics.
func WithWarnLogger(l Logger) Option {
	return func(r *Runtime) { r.WarnLogger = l }
}

// WithArgs sets the list exposed to scripts as args.
func WithArgs(args []string) Option {
	return func(r *Runtime) { r.Args = args }
}

// WithStdin sets the reader used by console.read_line.
func WithStdin(in io.Reader) Option {
	return func(r *Runtime) { r.Stdin = bufio.NewReader(in) }
}

// WithContext sets the context checked by loops and calls.
func WithContext(ctx context.Context) Option {
	return func(r *Runtime) { r.ctx = ctx }
}

// NewRuntime creates a runtime with the error module registered.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		Modules:    NewModuleRegistry(),
		Logger:     DefaultLogger,
		WarnLogger: DefaultWarnLogger,
		ctx:        context.Background(),
		globals:    make(map[string]Object),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Stdin == nil {
		r.Stdin = bufio.NewReader(os.Stdin)
	}
	r.Modules.Register(r.errorModule())
	return r
}

// Context returns the runtime's context.
func (r *Runtime) Context() context.Context { return r.ctx }

// RegisterGlobal adds a binding that every new global environment receives
// as a constant, after the builtins.
func (r *Runtime) RegisterGlobal(name string, val Object) {
	if _, exists := r.globals[name]; !exists {
		r.globalOrder = append(r.globalOrder, name)
	}
	r.globals[name] = val
}

// NewGlobalEnvironment creates a parentless scope holding the builtins.
// Sandboxes use this too, so they share modules and listeners but no
// bindings with their caller.
func (r *Runtime) NewGlobalEnvironment() *Environment {
	env := NewEnvironment(r)
	installBuiltins(env)
	for _, name := range r.globalOrder {
		env.Declare(name, r.globals[name], true)
	}
	return env
}

func (r *Runtime) cancelled() *Error {
	if err := r.ctx.Err(); err != nil {
		return newErrorf("STATE-0001", map[string]any{"Error": err.Error()})
	}
	return nil
}
