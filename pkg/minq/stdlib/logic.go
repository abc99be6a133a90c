package stdlib

import "github.com/minqlang/minq/pkg/minq/evaluator"

var binaryLogic = map[string]func(a, b bool) bool{
	"and":  func(a, b bool) bool { return a && b },
	"or":   func(a, b bool) bool { return a || b },
	"xor":  func(a, b bool) bool { return a != b },
	"nand": func(a, b bool) bool { return !(a && b) },
	"nor":  func(a, b bool) bool { return !(a || b) },
	"nxor": func(a, b bool) bool { return a == b },
}

func booleans(n int) evaluator.Param {
	return evaluator.Param{Types: evaluator.Types(evaluator.BOOLEAN_OBJ), Count: n}
}

func boolArg(args []evaluator.Object, i int) bool {
	return args[i].(*evaluator.Boolean).Value
}

func boolean(b bool) *evaluator.Boolean {
	if b {
		return evaluator.TRUE
	}
	return evaluator.FALSE
}

func logicModule() *evaluator.Module {
	m := evaluator.NewModule("logic")

	m.Define("not", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, booleans(1)) {
			return env.Runtime().ThrowMessage(env, "LOGIC: invalid args")
		}
		return boolean(!boolArg(args, 0))
	})

	for name, op := range binaryLogic {
		m.Define(name, func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
			if !evaluator.ValidateArgs(args, booleans(2)) {
				return env.Runtime().ThrowMessage(env, "LOGIC: invalid args")
			}
			return boolean(op(boolArg(args, 0), boolArg(args, 1)))
		})
	}
	return m
}
