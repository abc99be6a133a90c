// Package stdlib provides the modules scripts reach through import and
// get_module, plus the minq() query global.
package stdlib

import (
	"github.com/minqlang/minq/pkg/minq/evaluator"
)

// Options tunes the modules that hold external resources.
type Options struct {
	// MaxOpenConns caps each db connection pool; 0 leaves the driver default.
	MaxOpenConns int
}

// Register adds every standard module to rt and installs the minq global.
func Register(rt *evaluator.Runtime, opts Options) {
	for _, m := range Modules(opts) {
		rt.Modules.Register(m)
	}
	rt.RegisterGlobal("minq", newQueryFunction())
}

// Modules builds a fresh instance of each standard module.
func Modules(opts Options) []*evaluator.Module {
	return []*evaluator.Module{
		consoleModule(),
		mathModule(),
		logicModule(),
		jsonModule(),
		yamlModule(),
		fileModule(),
		markdownModule(),
		dateModule(),
		dbModule(opts),
		cryptoModule(),
	}
}

// Names lists the standard module names in registration order.
func Names() []string {
	mods := Modules(Options{})
	names := make([]string, len(mods))
	for i, m := range mods {
		names[i] = m.Name
	}
	return names
}

func stringArg(args []evaluator.Object, i int) string {
	return args[i].(*evaluator.String).Value
}

func numberArg(args []evaluator.Object, i int) float64 {
	return args[i].(*evaluator.Number).Value
}

func str(s string) *evaluator.String {
	return &evaluator.String{Value: s}
}

func num(f float64) *evaluator.Number {
	return &evaluator.Number{Value: f}
}

// fail reports a Go-level failure of a native through the listener channel.
func fail(env *evaluator.Environment, code, function string, err error) evaluator.Object {
	return evaluator.Report(env, code, map[string]any{"Function": function, "Error": err.Error()})
}
