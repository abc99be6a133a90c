package evaluator

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	merrors "github.com/minqlang/minq/pkg/minq/errors"
	"github.com/minqlang/minq/pkg/minq/parser"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// installBuiltins declares the bindings every global environment starts with.
func installBuiltins(env *Environment) {
	rt := env.runtime

	env.Declare("true", TRUE, true)
	env.Declare("false", FALSE, true)
	env.Declare("null", NULL, true)
	env.Declare("args", NewStringList(rt.Args), true)

	builtins := []*NativeFunction{
		NewNativeFunction("eval", builtinEval),
		NewNativeFunction("time", builtinTime),
		NewNativeFunction("exit", builtinExit),
		NewNativeFunction("to_string", builtinToString),
		NewNativeFunction("parse_string", builtinParseString),
		NewNativeFunction("typeof", builtinTypeof),
		NewNativeFunction("get_module", builtinGetModule),
	}
	for _, fn := range builtins {
		env.Declare(fn.Name, fn, true)
	}

	env.Declare("String", newStringClass(), true)
}

// BuiltinNames lists the global names installed in every environment.
func BuiltinNames() []string {
	return []string{
		"true", "false", "null", "args",
		"eval", "time", "exit", "to_string", "parse_string", "typeof", "get_module",
		"String",
	}
}

// ParseFailure converts a tokenizer or parser error into a fatal value.
func ParseFailure(err error) *Error {
	var merr *merrors.MinqError
	if errors.As(err, &merr) {
		return FromMinqError(merr)
	}
	return FromMinqError(merrors.NewSimple(merrors.ClassParse, err.Error()))
}

// builtinEval parses and evaluates each String in its own child scope of the
// caller and returns the results in order.
func builtinEval(args []Object, env *Environment) Object {
	if !ValidateArgs(args, Param{Types: Types(STRING_OBJ), Count: Unlimited}) {
		return InvalidArgs(env, "eval")
	}
	results := make([]Object, 0, len(args))
	for _, arg := range args {
		program, err := parser.Parse(arg.(*String).Value)
		if err != nil {
			return ParseFailure(err)
		}
		res := Eval(program, NewEnclosedEnvironment(env))
		if shouldHalt(res) {
			return res
		}
		results = append(results, res)
	}
	return &List{Elements: results}
}

func builtinTime(args []Object, env *Environment) Object {
	return &Number{Value: float64(time.Now().UnixMilli())}
}

func builtinExit(args []Object, env *Environment) Object {
	if !ValidateArgs(args, Param{Types: Types(NUMBER_OBJ), Count: 1}) {
		return InvalidArgs(env, "exit")
	}
	return &Exit{Code: int(args[0].(*Number).Value)}
}

func builtinToString(args []Object, env *Environment) Object {
	if len(args) != 1 {
		return InvalidArgs(env, "to_string")
	}
	return &String{Value: ValueToString(args[0], 0)}
}

func builtinParseString(args []Object, env *Environment) Object {
	if !ValidateArgs(args, Param{Types: Types(STRING_OBJ), Count: 1}) {
		return InvalidArgs(env, "parse_string")
	}
	return &Number{Value: ParseFloatPrefix(args[0].(*String).Value)}
}

func builtinTypeof(args []Object, env *Environment) Object {
	if len(args) != 1 {
		return InvalidArgs(env, "typeof")
	}
	return &String{Value: string(args[0].Type())}
}

func builtinGetModule(args []Object, env *Environment) Object {
	if !ValidateArgs(args, Param{Types: Types(STRING_OBJ), Count: 1}) {
		return InvalidArgs(env, "get_module")
	}
	name := args[0].(*String).Value
	mod, ok := env.runtime.Modules.Get(name)
	if !ok {
		return FromMinqError(merrors.NewUnknownModule(name, env.runtime.Modules.Names()))
	}
	return mod
}

var floatPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// ParseFloatPrefix reads the longest leading decimal number in s, after
// leading whitespace. It returns NaN when there is none.
func ParseFloatPrefix(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	m := floatPrefix.FindString(s)
	if m == "" {
		return math.NaN()
	}
	switch strings.TrimLeft(m, "+-") {
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	// out of range values come back as ±Inf or 0 alongside ErrRange
	v, _ := strconv.ParseFloat(m, 64)
	return v
}

func newStringClass() *NativeClass {
	return &NativeClass{
		Name:        "String",
		Constructor: NewNativeFunction("String", constructString),
		Members: map[string]Object{
			"split":  NewNativeFunction("split", stringSplit),
			"upper":  NewNativeFunction("upper", stringCase("upper", func() cases.Caser { return cases.Upper(language.Und) })),
			"lower":  NewNativeFunction("lower", stringCase("lower", func() cases.Caser { return cases.Lower(language.Und) })),
			"title":  NewNativeFunction("title", stringCase("title", func() cases.Caser { return cases.Title(language.Und) })),
			"length": NewNativeFunction("length", stringLength),
		},
	}
}

// constructString concatenates its arguments. Numbers contribute the
// character with that code.
func constructString(args []Object, env *Environment) Object {
	var sb strings.Builder
	for _, arg := range args {
		switch arg := arg.(type) {
		case *String:
			sb.WriteString(arg.Value)
		case *Number:
			sb.WriteRune(rune(int64(arg.Value)))
		default:
			sb.WriteString(ValueToString(arg, 0))
		}
	}
	return &String{Value: sb.String()}
}

func stringSplit(args []Object, env *Environment) Object {
	if !ValidateArgs(args, Param{Types: Types(STRING_OBJ), Count: 2}) {
		return InvalidArgs(env, "split")
	}
	str := args[0].(*String).Value
	delim := args[1].(*String).Value
	return NewStringList(strings.Split(str, delim))
}

// stringCase builds a case mapping member. Casers keep state, so each call
// gets its own.
func stringCase(name string, newCaser func() cases.Caser) NativeFn {
	return func(args []Object, env *Environment) Object {
		if !ValidateArgs(args, Param{Types: Types(STRING_OBJ), Count: 1}) {
			return InvalidArgs(env, name)
		}
		return &String{Value: newCaser().String(args[0].(*String).Value)}
	}
}

func stringLength(args []Object, env *Environment) Object {
	if !ValidateArgs(args, Param{Types: Types(STRING_OBJ), Count: 1}) {
		return InvalidArgs(env, "length")
	}
	return &Number{Value: float64(utf8.RuneCountInString(args[0].(*String).Value))}
}
