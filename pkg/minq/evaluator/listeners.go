package evaluator

import (
	merrors "github.com/minqlang/minq/pkg/minq/errors"
)

// ThrowError reports a recoverable error. Every listener runs in
// registration order, each in a fresh child of env with its parameters bound
// as constants (missing arguments are NULL, extra ones are dropped). With no
// listeners the arguments are written to the warn logger. Evaluation always
// continues unless a listener body itself halts, in which case that halting
// value is returned.
func (r *Runtime) ThrowError(env *Environment, args ...Object) Object {
	if len(r.listeners) == 0 || r.dispatching {
		r.WarnLogger.LogLine("[MINQ] Unhandled Errors:\n" + ValueToString(&List{Elements: args}, 0))
		return NULL
	}

	// errors raised while a listener runs are not dispatched again
	r.dispatching = true
	defer func() { r.dispatching = false }()

	for _, listener := range append([]*Function(nil), r.listeners...) {
		scope := NewEnclosedEnvironment(env)
		for i, param := range listener.Parameters {
			var val Object = NULL
			if i < len(args) {
				val = args[i]
			}
			scope.store[param] = val
			scope.constants[param] = true
		}
		for _, stmt := range listener.Body {
			if res := Eval(stmt, scope); shouldHalt(res) {
				return res
			}
		}
	}
	return NULL
}

// ThrowMessage is ThrowError with a single String argument.
func (r *Runtime) ThrowMessage(env *Environment, message string) Object {
	return r.ThrowError(env, &String{Value: message})
}

// AddListener registers fn to run on every ThrowError.
func (r *Runtime) AddListener(fn *Function) {
	r.listeners = append(r.listeners, fn)
}

// ListenerCount returns the number of registered listeners.
func (r *Runtime) ListenerCount() int {
	return len(r.listeners)
}

// InvalidArgs reports an argument-validation failure for the named native
// function and returns what the caller should return.
func InvalidArgs(env *Environment, function string) Object {
	err := merrors.New("ARGS-0001", map[string]any{"Function": function})
	return env.runtime.ThrowMessage(env, err.Message)
}

// Report sends a catalog error through the listener subsystem.
func Report(env *Environment, code string, data map[string]any) Object {
	return env.runtime.ThrowMessage(env, merrors.New(code, data).String())
}

func (r *Runtime) errorModule() *Module {
	m := NewModule("error")
	m.Define("throw", func(args []Object, env *Environment) Object {
		return r.ThrowError(env, args...)
	})
	m.Define("listen", func(args []Object, env *Environment) Object {
		if !ValidateArgs(args, Param{Types: []ObjectType{FUNCTION_OBJ}, Count: 1}) {
			return InvalidArgs(env, "listen")
		}
		r.AddListener(args[0].(*Function))
		return NULL
	})
	return m
}
