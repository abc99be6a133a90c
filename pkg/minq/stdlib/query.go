package stdlib

import (
	merrors "github.com/minqlang/minq/pkg/minq/errors"
	"github.com/minqlang/minq/pkg/minq/evaluator"
)

// newQueryFunction builds the minq() global. "@name" yields a copy of the
// named module and "#path" a handle on a file; both gain a then(fn) member.
func newQueryFunction() *evaluator.NativeFunction {
	return evaluator.NewNativeFunction("minq", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, oneString()) {
			return env.Runtime().ThrowMessage(env, "minq(): expected exactly one query string")
		}
		query := stringArg(args, 0)
		if query == "" {
			return env.Runtime().ThrowMessage(env, "minq(): empty query")
		}

		switch query[0] {
		case '@':
			return moduleReference(env, query[1:])
		case '#':
			return fileReference(query[1:])
		}
		return env.Runtime().ThrowMessage(env, "minq(): invalid query '"+query+"'")
	})
}

func moduleReference(env *evaluator.Environment, name string) evaluator.Object {
	rt := env.Runtime()
	mod, ok := rt.Modules.Get(name)
	if !ok {
		return evaluator.FromMinqError(merrors.NewUnknownModule(name, rt.Modules.Names()))
	}
	ref := mod.Copy()
	ref.Members["then"] = thenFunction(ref)
	return ref
}

func fileReference(path string) evaluator.Object {
	ref := evaluator.NewDictionary()

	ref.Set("read", evaluator.NewNativeFunction("read", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if len(args) != 0 {
			return evaluator.InvalidArgs(env, "read")
		}
		return readFile(env, "read", path)
	}))

	ref.Set("write", evaluator.NewNativeFunction("write", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, oneString()) {
			return evaluator.InvalidArgs(env, "write")
		}
		return writeFile(env, "write", path, stringArg(args, 0), false)
	}))

	ref.Set("append", evaluator.NewNativeFunction("append", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, oneString()) {
			return evaluator.InvalidArgs(env, "append")
		}
		return writeFile(env, "append", path, stringArg(args, 0), true)
	}))

	ref.Set("json", evaluator.NewNativeFunction("json", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if len(args) != 0 {
			return evaluator.InvalidArgs(env, "json")
		}
		content := readFile(env, "json", path)
		s, ok := content.(*evaluator.String)
		if !ok {
			return content
		}
		obj, err := UnmarshalJSON([]byte(s.Value))
		if err != nil {
			return fail(env, "FORMAT-0001", "json", err)
		}
		return obj
	}))

	ref.Set("then", thenFunction(ref))
	return ref
}

// thenFunction calls fn with ref bound as a constant to its first
// parameter, in a child of fn's own scope, and returns the last value.
func thenFunction(ref evaluator.Object) *evaluator.NativeFunction {
	return evaluator.NewNativeFunction("then", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, evaluator.Param{Types: evaluator.Types(evaluator.FUNCTION_OBJ), Count: 1}) {
			return evaluator.InvalidArgs(env, "then")
		}
		fn := args[0].(*evaluator.Function)
		if len(fn.Parameters) < 1 {
			return env.Runtime().ThrowMessage(env, "then(): the callback needs at least one parameter")
		}

		scope := evaluator.NewEnclosedEnvironment(fn.Env)
		scope.Declare(fn.Parameters[0], ref, true)
		var result evaluator.Object = evaluator.NULL
		for _, stmt := range fn.Body {
			result = evaluator.Eval(stmt, scope)
			if evaluator.IsHalt(result) {
				return result
			}
		}
		return result
	})
}
