package web

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/minqlang/minq/pkg/minq/evaluator"
	"github.com/minqlang/minq/pkg/minq/parser"
)

// blockPattern matches a <?mq ... ?> block. The opening tag must be
// followed by whitespace.
var blockPattern = regexp.MustCompile(`(?s)<\?mq\s(.*?)\?>`)

// renderTemplate replaces every <?mq ?> block in src with the text its code
// echoes. Each block runs in a fresh global environment of rt holding echo
// and query. A non-nil Object result is the halting value of the first
// block that failed.
func renderTemplate(rt *evaluator.Runtime, src string, query *evaluator.Dictionary) (string, evaluator.Object) {
	var out strings.Builder
	last := 0
	for _, loc := range blockPattern.FindAllStringSubmatchIndex(src, -1) {
		out.WriteString(src[last:loc[0]])
		text, halt := evalBlock(rt, src[loc[2]:loc[3]], query)
		if halt != nil {
			return "", halt
		}
		out.WriteString(text)
		last = loc[1]
	}
	out.WriteString(src[last:])
	return out.String(), nil
}

func evalBlock(rt *evaluator.Runtime, code string, query *evaluator.Dictionary) (string, evaluator.Object) {
	program, err := parser.Parse(code)
	if err != nil {
		return "", evaluator.ParseFailure(err)
	}

	var echoed strings.Builder
	env := rt.NewGlobalEnvironment()
	env.Declare("echo", evaluator.NewNativeFunction("echo", func(args []evaluator.Object, _ *evaluator.Environment) evaluator.Object {
		for _, arg := range args {
			if s, ok := arg.(*evaluator.String); ok {
				echoed.WriteString(s.Value)
			} else {
				echoed.WriteString(evaluator.ValueToString(arg, 0))
			}
		}
		return evaluator.NULL
	}), true)
	env.Declare("query", query, true)

	if result := evaluator.Eval(program, env); evaluator.IsHalt(result) {
		return "", result
	}
	return echoed.String(), nil
}

// haltError converts a halting value into a Go error.
func haltError(obj evaluator.Object) error {
	switch obj := obj.(type) {
	case *evaluator.Error:
		return obj.ToMinqError()
	case *evaluator.Exit:
		return fmt.Errorf("template called exit(%d)", obj.Code)
	}
	return fmt.Errorf("template evaluation stopped: %s", obj.Inspect())
}

// Render runs the template pass over src with the given query parameters.
func Render(rt *evaluator.Runtime, src string, query map[string]string) (string, error) {
	out, halt := renderTemplate(rt, src, queryObject(query))
	if halt != nil {
		return "", haltError(halt)
	}
	return out, nil
}
