package stdlib

import (
	"os"

	"github.com/minqlang/minq/pkg/minq/evaluator"
	"github.com/minqlang/minq/pkg/minq/parser"
)

func oneString() evaluator.Param {
	return evaluator.Param{Types: evaluator.Types(evaluator.STRING_OBJ), Count: 1}
}

func twoStrings() evaluator.Param {
	return evaluator.Param{Types: evaluator.Types(evaluator.STRING_OBJ), Count: 2}
}

func fileModule() *evaluator.Module {
	m := evaluator.NewModule("file")

	m.Define("read", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, oneString()) {
			return evaluator.InvalidArgs(env, "read")
		}
		return readFile(env, "read", stringArg(args, 0))
	})

	m.Define("write", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, twoStrings()) {
			return evaluator.InvalidArgs(env, "write")
		}
		return writeFile(env, "write", stringArg(args, 0), stringArg(args, 1), false)
	})

	m.Define("append", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, twoStrings()) {
			return evaluator.InvalidArgs(env, "append")
		}
		return writeFile(env, "append", stringArg(args, 0), stringArg(args, 1), true)
	})

	m.Define("require", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, oneString()) {
			return evaluator.InvalidArgs(env, "require")
		}
		return requireFile(env, stringArg(args, 0))
	})

	return m
}

func readFile(env *evaluator.Environment, function, path string) evaluator.Object {
	data, err := os.ReadFile(path)
	if err != nil {
		return fail(env, "IO-0001", function, err)
	}
	return str(string(data))
}

func writeFile(env *evaluator.Environment, function, path, content string, appending bool) evaluator.Object {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appending {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fail(env, "IO-0001", function, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fail(env, "IO-0001", function, err)
	}
	if err := f.Close(); err != nil {
		return fail(env, "IO-0001", function, err)
	}
	return evaluator.NULL
}

// requireFile evaluates a script file in a child of the calling scope.
// Parse failures are fatal and carry the file name.
func requireFile(env *evaluator.Environment, path string) evaluator.Object {
	data, err := os.ReadFile(path)
	if err != nil {
		return fail(env, "IO-0001", "require", err)
	}
	program, err := parser.Parse(string(data))
	if err != nil {
		perr := evaluator.ParseFailure(err)
		perr.File = path
		return perr
	}
	result := evaluator.Eval(program, evaluator.NewEnclosedEnvironment(env))
	if e, ok := result.(*evaluator.Error); ok && e.File == "" {
		e.File = path
	}
	return result
}
