// Package repl implements the interactive minq console.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	merrors "github.com/minqlang/minq/pkg/minq/errors"
	"github.com/minqlang/minq/pkg/minq/evaluator"
	"github.com/minqlang/minq/pkg/minq/parser"
	"github.com/peterh/liner"
)

const PROMPT = "> "
const CONTINUATION_PROMPT = ".. "

const LOGO = `
█▀▄▀█ █ █▄░█ █▀█
█░▀░█ █ █░▀█ ▀▀█`

// Options configures the console.
type Options struct {
	Version     string
	HistoryFile string // defaults to os.TempDir()/.minq_history
	Modules     []string
}

// Start runs the console on the terminal until the user leaves and
// returns the process exit status.
func Start(rt *evaluator.Runtime, out io.Writer, opts Options) int {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	words := completionWords(opts.Modules)
	line.SetCompleter(func(input string) []string {
		return filterCompletions(input, words)
	})

	historyFile := opts.HistoryFile
	if historyFile == "" {
		historyFile = filepath.Join(os.TempDir(), ".minq_history")
	}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(out, LOGO)
	fmt.Fprintln(out, "v", opts.Version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type ':help' for console commands")
	fmt.Fprintln(out, "")

	session := NewSession(rt, out)
	for {
		input, err := line.Prompt(session.Prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				if session.Pending() {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				session.Reset()
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out, "\nGoodbye!")
				return 0
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		entry, done := session.Feed(input)
		if entry != "" {
			line.AppendHistory(entry)
		}
		if done {
			return session.ExitCode()
		}
	}
}

// Session holds the state of one console: the runtime, the persistent
// global environment and any partially typed entry.
type Session struct {
	rt       *evaluator.Runtime
	env      *evaluator.Environment
	out      io.Writer
	buffer   strings.Builder
	exitCode int
}

// NewSession creates a session evaluating in a fresh global environment
// of rt.
func NewSession(rt *evaluator.Runtime, out io.Writer) *Session {
	return &Session{rt: rt, env: rt.NewGlobalEnvironment(), out: out}
}

// Prompt returns the prompt for the next line.
func (s *Session) Prompt() string {
	if s.Pending() {
		return CONTINUATION_PROMPT
	}
	return PROMPT
}

// Pending reports whether an incomplete entry is buffered.
func (s *Session) Pending() bool { return s.buffer.Len() > 0 }

// Reset discards any buffered input.
func (s *Session) Reset() { s.buffer.Reset() }

// ExitCode is the status requested by exit(code), or 0.
func (s *Session) ExitCode() int { return s.exitCode }

// Feed processes one line. It returns the completed entry, if the line
// completed one, and whether the session is over.
func (s *Session) Feed(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if !s.Pending() {
		switch {
		case trimmed == "exit" || trimmed == "quit":
			fmt.Fprintln(s.out, "Goodbye!")
			return "", true
		case strings.HasPrefix(trimmed, ":"):
			s.command(trimmed)
			return "", false
		case trimmed == "":
			return "", false
		}
	}

	if s.Pending() {
		s.buffer.WriteString("\n")
	}
	s.buffer.WriteString(input)

	entry := s.buffer.String()
	if needsMoreInput(entry) {
		return "", false
	}
	s.buffer.Reset()
	return entry, s.eval(entry)
}

// eval runs a complete entry and reports whether it called exit.
func (s *Session) eval(entry string) bool {
	program, err := parser.Parse(entry)
	if err != nil {
		var merr *merrors.MinqError
		if errors.As(err, &merr) {
			fmt.Fprintln(s.out, merr.PrettyString())
		} else {
			fmt.Fprintln(s.out, err)
		}
		return false
	}

	switch result := evaluator.Eval(program, s.env).(type) {
	case *evaluator.Error:
		fmt.Fprintln(s.out, result.ToMinqError().PrettyString())
	case *evaluator.Exit:
		s.exitCode = result.Code
		return true
	case *evaluator.Null:
	default:
		fmt.Fprintln(s.out, evaluator.ValueToString(result, 0))
	}
	return false
}

func (s *Session) command(cmd string) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, "Console commands:")
		fmt.Fprintln(s.out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(s.out, "  :env            Show bindings in scope")
		fmt.Fprintln(s.out, "  :clear          Start over with a fresh environment")
		fmt.Fprintln(s.out, "  exit, quit      Leave the console")
	case ":env":
		s.printEnvironment()
	case ":clear":
		s.env = s.rt.NewGlobalEnvironment()
		fmt.Fprintln(s.out, "Environment cleared")
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// printEnvironment lists the bindings the user created.
func (s *Session) printEnvironment() {
	builtin := s.rt.NewGlobalEnvironment()
	var names []string
	for _, name := range s.env.Names() {
		if !builtin.Has(name) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		fmt.Fprintln(s.out, "(no user bindings)")
		return
	}

	bindings := s.env.Bindings()
	for _, name := range names {
		obj := bindings[name]
		value := evaluator.ValueToString(obj, 0)
		if strings.Contains(value, "\n") {
			value = strings.ReplaceAll(value, "\n", "\n  ")
		} else if len(value) > 60 {
			value = value[:57] + "..."
		}
		kind := "var"
		if s.env.IsConstant(name) {
			kind = "const"
		}
		fmt.Fprintf(s.out, "  %s %s: %s = %s\n", kind, name, obj.Type(), value)
	}
}

func completionWords(modules []string) []string {
	words := slices.Concat(merrors.Keywords, evaluator.BuiltinNames(), modules, []string{"minq", "exit", "quit"})
	slices.Sort(words)
	return slices.Compact(words)
}

// filterCompletions returns the words that extend the last word of line.
// The rest of the line is kept so liner can replace it whole.
func filterCompletions(line string, words []string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if last := line[len(line)-1]; last == ' ' || last == '\t' {
		return nil
	}

	start := strings.LastIndexFunc(line, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) + 1
	prefix, lastWord := line[:start], line[start:]
	if lastWord == "" {
		return nil
	}

	var matches []string
	for _, word := range words {
		if strings.HasPrefix(word, lastWord) {
			matches = append(matches, prefix+word)
		}
	}
	return matches
}

// needsMoreInput reports whether input has unclosed braces, brackets or
// parentheses outside strings and comments.
func needsMoreInput(input string) bool {
	depth := 0
	inString := false
	for i := 0; i < len(input); i++ {
		ch := input[i]
		if inString {
			switch ch {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '/':
			if i+1 < len(input) && input[i+1] == '/' {
				for i < len(input) && input[i] != '\n' {
					i++
				}
			}
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		}
	}
	return depth > 0
}
