package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/minqlang/minq/config"
	merrors "github.com/minqlang/minq/pkg/minq/errors"
	"github.com/minqlang/minq/pkg/minq/evaluator"
	"github.com/minqlang/minq/pkg/minq/minq"
	"github.com/minqlang/minq/pkg/minq/repl"
	"github.com/minqlang/minq/pkg/minq/stdlib"
)

// Version information, set at build time via -ldflags
var Version = "dev" // -X main.Version=$(git describe --tags --always)

func main() {
	ctx := context.Background()
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv)
	os.Exit(exitStatus(err, os.Stderr))
}

// usageError marks a bad command line. It exits with status 2.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("minq", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var (
		file        string
		code        string
		logResult   bool
		watch       = flags.Bool("watch", false, "Re-run the script when it changes")
		configPath  = flags.String("config", "", "Path to config file")
		showVersion = flags.Bool("version", false, "Show version")
		showHelp    = flags.Bool("help", false, "Show help")
	)
	flags.StringVar(&file, "f", "", "Script to run")
	flags.StringVar(&file, "file", "", "Script to run")
	flags.StringVar(&code, "e", "", "Evaluate code string")
	flags.StringVar(&code, "eval", "", "Evaluate code string")
	flags.BoolVar(&logResult, "l", false, "Print the program's result")
	flags.BoolVar(&logResult, "log", false, "Print the program's result")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stdout)
			return nil
		}
		return &usageError{msg: err.Error()}
	}

	if *showHelp {
		printUsage(stdout)
		return nil
	}
	if *showVersion {
		fmt.Fprintf(stdout, "minq version %s\n", Version)
		return nil
	}

	scriptArgs := flags.Args()
	if file == "" && code == "" && len(scriptArgs) > 0 {
		file, scriptArgs = scriptArgs[0], scriptArgs[1:]
	}
	if file != "" && code != "" {
		return &usageError{msg: "cannot use --eval together with a script file"}
	}
	if *watch && file == "" {
		return &usageError{msg: "--watch requires a script file"}
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, configFile, err := config.LoadWithPath(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Log {
		logResult = true
	}

	defer func() {
		if err := stdlib.CloseConnections(); err != nil {
			fmt.Fprintf(stderr, "warning: closing database connections: %v\n", err)
		}
	}()

	out := minq.WriterLogger(stdout)
	options := func(ctx context.Context) []minq.Option {
		return []minq.Option{
			minq.WithLogger(out),
			minq.WithWarnLogger(minq.WriterLogger(stderr)),
			minq.WithArgs(scriptArgs),
			minq.WithStdin(stdin),
			minq.WithContext(ctx),
			minq.WithConfig(cfg),
		}
	}
	printResult := func(result evaluator.Object) {
		if logResult && result != nil {
			out.LogLine(evaluator.ValueToString(result, 0))
		}
	}

	switch {
	case code != "":
		result, err := minq.Eval(code, options(ctx)...)
		printResult(result)
		return err

	case *watch:
		w, err := newWatcher(file, cfg.Watch.Debounce, stdout, stderr)
		if err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
		defer w.Close()
		if configFile != "" {
			w.logInfo("using config: %s", configFile)
		}
		return w.Run(ctx, func(ctx context.Context) error {
			result, err := minq.EvalFile(file, options(ctx)...)
			printResult(result)
			return err
		})

	case file != "":
		result, err := minq.EvalFile(file, options(ctx)...)
		printResult(result)
		return err

	default:
		rt := minq.NewRuntime(options(ctx)...)
		status := repl.Start(rt, stdout, repl.Options{
			Version:     Version,
			HistoryFile: cfg.HistoryFile,
			Modules:     append(stdlib.Names(), "web"),
		})
		if status != 0 {
			return &minq.ExitError{Code: status}
		}
		return nil
	}
}

// exitStatus reports err on w and returns the process exit status for it.
func exitStatus(err error, w io.Writer) int {
	if err == nil {
		return 0
	}

	var exitErr *minq.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var usage *usageError
	if errors.As(err, &usage) {
		fmt.Fprintf(w, "error: %v\n", usage)
		fmt.Fprintln(w, "Run 'minq --help' for usage.")
		return 2
	}

	var merr *merrors.MinqError
	if errors.As(err, &merr) {
		fmt.Fprintln(w, merr.PrettyString())
		return 1
	}

	fmt.Fprintf(w, "error: %v\n", err)
	return 1
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `minq - the minq scripting language, version %s

Usage:
  minq [options] [file] [args...]
  minq -e "code" [args...]

Options:
  -f, --file PATH     Script to run (remaining arguments go to args)
  -e, --eval CODE     Evaluate a code string
  -l, --log           Print the program's result
  --watch             Re-run the script whenever it changes
  --config PATH       Path to config file (default: minq.yaml)
  --version           Show version
  --help              Show this help message

With no file and no --eval, the interactive console starts.

Examples:
  minq                        Start the interactive console
  minq script.mq one two      Run a script with arguments
  minq -l -e "1 + 2"          Evaluate inline code (prints 3)
  minq --watch site.mq        Re-run site.mq on every save
`, Version)
}
