package stdlib

import (
	"bytes"

	"github.com/minqlang/minq/pkg/minq/evaluator"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// RenderMarkdown converts GitHub-flavoured markdown to HTML. Raw HTML in the
// source is passed through.
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func markdownModule() *evaluator.Module {
	m := evaluator.NewModule("markdown")

	m.Define("render", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, oneString()) {
			return evaluator.InvalidArgs(env, "render")
		}
		out, err := RenderMarkdown(stringArg(args, 0))
		if err != nil {
			return fail(env, "FORMAT-0001", "render", err)
		}
		return str(out)
	})

	return m
}
