// Package minq provides a public API for embedding the minq interpreter.
//
// Basic usage:
//
//	result, err := minq.Eval(`import math math.sqrt(16)`)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Inspect()) // 4
package minq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/minqlang/minq/config"
	merrors "github.com/minqlang/minq/pkg/minq/errors"
	"github.com/minqlang/minq/pkg/minq/evaluator"
	"github.com/minqlang/minq/pkg/minq/parser"
	"github.com/minqlang/minq/pkg/minq/stdlib"
	"github.com/minqlang/minq/pkg/minq/web"
)

// ExitError reports that a script called exit(code).
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

type options struct {
	runtime []evaluator.Option
	cfg     *config.Config
}

// Option configures an evaluation.
type Option func(*options)

// WithLogger sets the logger used for console output.
func WithLogger(l Logger) Option {
	return func(o *options) { o.runtime = append(o.runtime, evaluator.WithLogger(l)) }
}

// WithWarnLogger sets the logger for unhandled-error diagnostics.
func WithWarnLogger(l Logger) Option {
	return func(o *options) { o.runtime = append(o.runtime, evaluator.WithWarnLogger(l)) }
}

// WithArgs sets the list scripts see as args.
func WithArgs(args []string) Option {
	return func(o *options) { o.runtime = append(o.runtime, evaluator.WithArgs(args)) }
}

// WithStdin sets the reader behind console.read_line.
func WithStdin(in io.Reader) Option {
	return func(o *options) { o.runtime = append(o.runtime, evaluator.WithStdin(in)) }
}

// WithContext sets a context whose cancellation stops loops, calls and
// web.runOnPort.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.runtime = append(o.runtime, evaluator.WithContext(ctx)) }
}

// WithConfig applies web and db settings from a loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// NewRuntime creates a runtime with every standard module, the web module
// and the minq() global registered.
func NewRuntime(opts ...Option) *evaluator.Runtime {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	cfg := o.cfg
	if cfg == nil {
		cfg = config.Defaults()
	}

	rt := evaluator.NewRuntime(o.runtime...)
	stdlib.Register(rt, stdlib.Options{MaxOpenConns: cfg.DB.MaxOpenConns})
	web.Register(rt, WebOptions(cfg))
	return rt
}

// WebOptions maps configuration onto web server options.
func WebOptions(cfg *config.Config) web.Options {
	return web.Options{
		Host: cfg.Web.Host,
		Compression: web.CompressionOptions{
			Enabled: cfg.Web.Compression.Enabled,
			Level:   cfg.Web.Compression.Level,
			MinSize: cfg.Web.Compression.MinSize,
		},
		LogFormat: cfg.Web.Logging.Format,
		Markdown:  cfg.Web.Markdown,
	}
}

// Eval parses and evaluates source in a fresh runtime.
func Eval(source string, opts ...Option) (evaluator.Object, error) {
	program, err := parser.Parse(source)
	if err != nil {
		return nil, ParseError(err, "")
	}
	rt := NewRuntime(opts...)
	return Result(evaluator.Eval(program, rt.NewGlobalEnvironment()), "")
}

// EvalFile reads, parses and evaluates the script at path.
func EvalFile(path string, opts ...Option) (evaluator.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	program, err := parser.Parse(string(data))
	if err != nil {
		return nil, ParseError(err, path)
	}
	rt := NewRuntime(opts...)
	return Result(evaluator.Eval(program, rt.NewGlobalEnvironment()), path)
}

// ParseError converts a tokenizer or parser failure into a *MinqError.
func ParseError(err error, file string) *merrors.MinqError {
	var merr *merrors.MinqError
	if !errors.As(err, &merr) {
		merr = merrors.NewSimple(merrors.ClassParse, err.Error())
	}
	if file != "" && merr.File == "" {
		merr = merr.WithFile(file)
	}
	return merr
}

// Result splits an evaluation result into a value and an error. Fatal
// errors become *MinqError and exit(code) becomes *ExitError.
func Result(obj evaluator.Object, file string) (evaluator.Object, error) {
	switch obj := obj.(type) {
	case *evaluator.Error:
		merr := obj.ToMinqError()
		if file != "" && merr.File == "" {
			merr.File = file
		}
		return nil, merr
	case *evaluator.Exit:
		return nil, &ExitError{Code: obj.Code}
	}
	return obj, nil
}
