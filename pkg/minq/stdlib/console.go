package stdlib

import (
	"errors"
	"io"
	"strings"

	"github.com/minqlang/minq/pkg/minq/evaluator"
)

func consoleModule() *evaluator.Module {
	m := evaluator.NewModule("console")

	m.Define("log", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		logger := env.Runtime().Logger
		for _, arg := range args {
			logger.LogLine(evaluator.ValueToString(arg, 0))
		}
		return evaluator.NULL
	})

	m.Define("write", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		logger := env.Runtime().Logger
		for _, arg := range args {
			s, ok := arg.(*evaluator.String)
			if !ok {
				res := env.Runtime().ThrowMessage(env, "write(): only strings can be written, use log for other values")
				if evaluator.IsHalt(res) {
					return res
				}
				continue
			}
			logger.Log(s.Value)
		}
		return evaluator.NULL
	})

	m.Define("read_line", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if len(args) != 0 {
			return evaluator.InvalidArgs(env, "read_line")
		}
		line, err := env.Runtime().Stdin.ReadString('\n')
		switch {
		case errors.Is(err, io.EOF) && line == "":
			return evaluator.NULL
		case err != nil && !errors.Is(err, io.EOF):
			return fail(env, "IO-0001", "read_line", err)
		}
		return str(strings.TrimRight(line, "\r\n"))
	})

	return m
}
