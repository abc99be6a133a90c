// Package errors provides structured error types for the minq language.
//
// MinqError is the single error shape used by the tokenizer, the parser and the
// evaluator. Messages come from a catalog of templated definitions so that every
// failure carries a stable code, a class and optional hints.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassParse     ErrorClass = "parse"     // Tokenizer/parser errors
	ClassType      ErrorClass = "type"      // Type mismatches
	ClassArity     ErrorClass = "arity"     // Wrong argument count or shape
	ClassUndefined ErrorClass = "undefined" // Not found/defined
	ClassScope     ErrorClass = "scope"     // Declaration and assignment conflicts
	ClassIO        ErrorClass = "io"        // File operations
	ClassDatabase  ErrorClass = "database"  // DB operations
	ClassNetwork   ErrorClass = "network"   // HTTP serving
	ClassIndex     ErrorClass = "index"     // Out of bounds
	ClassFormat    ErrorClass = "format"    // Invalid format/parse
	ClassOperator  ErrorClass = "operator"  // Invalid operations
	ClassState     ErrorClass = "state"     // Invalid state
	ClassImport    ErrorClass = "import"    // Module loading
)

// MinqError represents any error from tokenizing, parsing or evaluation.
type MinqError struct {
	Class   ErrorClass     `json:"class"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hints   []string       `json:"hints,omitempty"`
	Line    int            `json:"line"`   // 1-based line (0 if unknown)
	Column  int            `json:"column"` // 1-based column (0 if unknown)
	File    string         `json:"file,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *MinqError) Error() string {
	return e.String()
}

// String returns a single-line representation followed by hints.
func (e *MinqError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for terminal display.
func (e *MinqError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassParse:
		sb.WriteString("Syntax error")
	default:
		sb.WriteString("Runtime error")
	}

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *MinqError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *MinqError) WithFile(file string) *MinqError {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the error with line and column set.
func (e *MinqError) WithPosition(line, column int) *MinqError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsParseError reports whether the error came from the tokenizer or parser.
func (e *MinqError) IsParseError() bool {
	return e.Class == ClassParse
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Template string   // Message template with {{.placeholders}}
	Hints    []string // Hint templates
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Tokenizer
	"LEX-0001": {
		Class:    ClassParse,
		Template: "unrecognized character '{{.Char}}'",
	},
	"LEX-0002": {
		Class:    ClassParse,
		Template: "unterminated string literal",
	},
	"LEX-0003": {
		Class:    ClassParse,
		Template: "newline found in string literal",
		Hints:    []string{"use the \\n escape sequence instead"},
	},
	"LEX-0004": {
		Class:    ClassParse,
		Template: "unrecognized escape sequence '\\{{.Char}}'",
		Hints:    []string{"supported escapes are \\n, \\\" and \\\\"},
	},

	// Parser
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "unexpected token '{{.Token}}'",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "class '{{.Name}}' has no constructor",
		Hints:    []string{"class {{.Name}} { function constructor() { {} } }"},
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "class '{{.Name}}' declares more than one constructor",
	},
	"PARSE-0005": {
		Class:    ClassParse,
		Template: "invalid token '{{.Token}}' in {{.Context}} body",
		Hints:    []string{"only const and function declarations are allowed here"},
	},
	"PARSE-0006": {
		Class:    ClassParse,
		Template: "function parameters must be identifiers, got '{{.Got}}'",
	},
	"PARSE-0007": {
		Class:    ClassParse,
		Template: "dot operator requires an identifier on the right, got '{{.Got}}'",
	},

	// Scope (reported through listeners)
	"SCOPE-0001": {
		Class:    ClassScope,
		Template: "cannot declare '{{.Name}}': it is already defined",
	},
	"SCOPE-0002": {
		Class:    ClassScope,
		Template: "cannot reassign '{{.Name}}': it was declared constant",
	},
	"SCOPE-0003": {
		Class:    ClassUndefined,
		Template: "cannot resolve '{{.Name}}': it does not exist",
	},
	"SCOPE-0004": {
		Class:    ClassScope,
		Template: "cannot delete '{{.Name}}': it does not exist in this scope",
	},

	// Operators
	"OP-0001": {
		Class:    ClassOperator,
		Template: "division by zero",
	},
	"OP-0002": {
		Class:    ClassOperator,
		Template: "operands of '{{.Operator}}' must be numbers, got {{.Left}} and {{.Right}}",
	},
	"OP-0003": {
		Class:    ClassOperator,
		Template: "cannot compare functions",
	},
	"OP-0004": {
		Class:    ClassOperator,
		Template: "invalid left-hand side in assignment: {{.Target}}",
	},

	// Types
	"TYPE-0001": {
		Class:    ClassType,
		Template: "{{.Statement}} requires a boolean condition, got {{.Got}}",
	},
	"TYPE-0002": {
		Class:    ClassType,
		Template: "class constructor must return object, returned '{{.Got}}'",
	},

	// Calls
	"CALL-0001": {
		Class:    ClassType,
		Template: "cannot call value of type {{.Type}}",
	},

	// Lists
	"INDEX-0001": {
		Class:    ClassArity,
		Template: "invalid arguments for list element access",
		Hints:    []string{"list(index) takes exactly one integral number"},
	},
	"INDEX-0002": {
		Class:    ClassIndex,
		Template: "index {{.Index}} outside of bounds (length {{.Length}})",
	},

	// Member access
	"MEMBER-0001": {
		Class:    ClassUndefined,
		Template: "key '{{.Key}}' does not exist in object",
	},
	"MEMBER-0002": {
		Class:    ClassUndefined,
		Template: "cannot get '{{.Name}}' from list",
		Hints:    []string{"lists only define length"},
	},
	"MEMBER-0003": {
		Class:    ClassUndefined,
		Template: "{{.Kind}} '{{.Owner}}' does not have member '{{.Name}}'",
	},
	"MEMBER-0004": {
		Class:    ClassType,
		Template: "member access is invalid for type {{.Type}}",
	},
	"MEMBER-0005": {
		Class:    ClassType,
		Template: "computed member key must be a string, got {{.Got}}",
	},

	// Modules
	"IMPORT-0001": {
		Class:    ClassImport,
		Template: "unknown module '{{.Name}}'",
	},

	// Native functions
	"ARGS-0001": {
		Class:    ClassArity,
		Template: "{{.Function}}(): invalid arguments",
	},
	"IO-0001": {
		Class:    ClassIO,
		Template: "{{.Function}}(): {{.Error}}",
	},
	"DB-0001": {
		Class:    ClassDatabase,
		Template: "{{.Function}}(): {{.Error}}",
	},
	"FORMAT-0001": {
		Class:    ClassFormat,
		Template: "{{.Function}}(): {{.Error}}",
	},
	"WEB-0001": {
		Class:    ClassNetwork,
		Template: "web: {{.Error}}",
	},

	// Runtime state
	"STATE-0001": {
		Class:    ClassState,
		Template: "evaluation cancelled: {{.Error}}",
	},

	// Internal
	"INTERNAL-0001": {
		Class:    ClassState,
		Template: "node type {{.Node}} has no evaluation rule",
	},
}

// New creates a MinqError from the catalog.
// Unknown codes produce a generic error using data["message"] when present.
func New(code string, data map[string]any) *MinqError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &MinqError{
			Class:   ClassType,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &MinqError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates a MinqError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *MinqError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewSimple creates an error without using the catalog.
func NewSimple(class ErrorClass, message string) *MinqError {
	return &MinqError{
		Class:   class,
		Message: message,
	}
}

func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}

	return prev[len(b)]
}

// suggestionThreshold returns the largest edit distance worth suggesting.
// Short words (1-3): 1, medium (4-6): 2, longer: 3.
func suggestionThreshold(input string) int {
	switch {
	case len(input) >= 7:
		return 3
	case len(input) >= 4:
		return 2
	default:
		return 1
	}
}

// FindClosestMatch returns the candidate closest to input, or "" when nothing
// is within the length-based threshold. Exact matches are never suggested.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	var bestMatch string
	bestDistance := -1
	for _, candidate := range sorted {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= 0 || bestDistance > suggestionThreshold(input) {
		return ""
	}
	return bestMatch
}

// NewUndefinedName creates an unresolved-name error with a "Did you mean" hint
// when a visible name is close enough.
func NewUndefinedName(name string, visible []string) *MinqError {
	err := New("SCOPE-0003", map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, visible); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}
	return err
}

// NewUnknownModule creates an unknown-module error suggesting a registered one.
func NewUnknownModule(name string, registered []string) *MinqError {
	err := New("IMPORT-0001", map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, registered); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}
	return err
}

// Keywords lists the reserved words of the language.
var Keywords = []string{
	"var", "const", "function", "def", "class", "module", "enum",
	"if", "while", "import", "as", "sandbox",
}
