package stdlib

import (
	"math"
	"math/rand/v2"

	"github.com/minqlang/minq/pkg/minq/evaluator"
)

var unaryMath = map[string]func(float64) float64{
	"ceil":    math.Ceil,
	"floor":   math.Floor,
	"fabs":    math.Abs,
	"sqrt":    math.Sqrt,
	"cbrt":    math.Cbrt,
	"exp":     math.Exp,
	"log":     math.Log,
	"log_ten": math.Log10,
	"cos":     math.Cos,
	"sin":     math.Sin,
	"tan":     math.Tan,
	"acos":    math.Acos,
	"asin":    math.Asin,
	"atan":    math.Atan,
	"cosh":    math.Cosh,
	"sinh":    math.Sinh,
}

func numbers(n int) evaluator.Param {
	return evaluator.Param{Types: evaluator.Types(evaluator.NUMBER_OBJ), Count: n}
}

func mathModule() *evaluator.Module {
	m := evaluator.NewModule("math")

	for name, fn := range unaryMath {
		m.Define(name, unaryMathFunction(name, fn))
	}

	m.Define("pow", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, numbers(2)) {
			return evaluator.InvalidArgs(env, "pow")
		}
		return num(math.Pow(numberArg(args, 0), numberArg(args, 1)))
	})

	m.Define("cot", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, numbers(1)) {
			return evaluator.InvalidArgs(env, "cot")
		}
		tan := math.Tan(numberArg(args, 0))
		if tan == 0 {
			return env.Runtime().ThrowMessage(env, "cot(): division by zero")
		}
		return num(1 / tan)
	})

	m.Define("random_int", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, numbers(2)) {
			return evaluator.InvalidArgs(env, "random_int")
		}
		lo, hi := numberArg(args, 0), numberArg(args, 1)
		if !isInteger(lo) || !isInteger(hi) {
			return env.Runtime().ThrowMessage(env, "random_int(): both arguments must be integers")
		}
		if hi < lo {
			return env.Runtime().ThrowMessage(env, "random_int(): max is smaller than min")
		}
		// float64(MaxInt64) rounds up to 2^63, so the span must stay below it
		if hi-lo >= math.MaxInt64 {
			return env.Runtime().ThrowMessage(env, "random_int(): range is too large")
		}
		return num(lo + float64(rand.Int64N(int64(hi-lo)+1)))
	})

	m.Define("random_float", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, numbers(2)) {
			return evaluator.InvalidArgs(env, "random_float")
		}
		lo, hi := numberArg(args, 0), numberArg(args, 1)
		return num(lo + rand.Float64()*(hi-lo))
	})

	m.Members["pi"] = num(math.Pi)
	m.Members["e"] = num(math.E)
	return m
}

func isInteger(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}

func unaryMathFunction(name string, fn func(float64) float64) evaluator.NativeFn {
	return func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, numbers(1)) {
			return evaluator.InvalidArgs(env, name)
		}
		return num(fn(numberArg(args, 0)))
	}
}
