package evaluator

import (
	"fmt"
	"strings"

	"github.com/minqlang/minq/pkg/minq/ast"
	merrors "github.com/minqlang/minq/pkg/minq/errors"
)

// ObjectType is the name reported by typeof().
type ObjectType string

const (
	NULL_OBJ         = "null"
	NUMBER_OBJ       = "number"
	BOOLEAN_OBJ      = "boolean"
	STRING_OBJ       = "string"
	OBJECT_OBJ       = "object"
	LIST_OBJ         = "list"
	FUNCTION_OBJ     = "function"
	NATIVE_FN_OBJ    = "native-fn"
	CLASS_OBJ        = "class"
	NATIVE_CLASS_OBJ = "native-cl"
	MODULE_OBJ       = "module"
	ENUM_OBJ         = "enum"

	// not visible to scripts; they unwind evaluation
	ERROR_OBJ = "error"
	EXIT_OBJ  = "exit"
)

// Object represents all values in the language
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Null represents the absence of a value
type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "NULL" }

// Boolean represents true and false
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return ValueToString(b, 0) }

// Number represents every numeric value as a float64
type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return formatNumber(n.Value) }

// String represents string values
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBoolToBooleanObject(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// Dictionary is the script-level object: string keys in insertion order.
type Dictionary struct {
	Pairs map[string]Object
	Keys  []string
}

// NewDictionary creates an empty object
func NewDictionary() *Dictionary {
	return &Dictionary{Pairs: make(map[string]Object)}
}

func (d *Dictionary) Type() ObjectType { return OBJECT_OBJ }
func (d *Dictionary) Inspect() string  { return ValueToString(d, 0) }

// Get returns the value stored under key.
func (d *Dictionary) Get(key string) (Object, bool) {
	val, ok := d.Pairs[key]
	return val, ok
}

// Set stores a value, keeping the original position of an existing key.
func (d *Dictionary) Set(key string, val Object) {
	if _, exists := d.Pairs[key]; !exists {
		d.Keys = append(d.Keys, key)
	}
	d.Pairs[key] = val
}

// Len returns the number of properties.
func (d *Dictionary) Len() int { return len(d.Keys) }

// List represents an ordered sequence of values
type List struct {
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string  { return ValueToString(l, 0) }

// NewStringList builds a List of Strings.
func NewStringList(values []string) *List {
	elements := make([]Object, len(values))
	for i, v := range values {
		elements[i] = &String{Value: v}
	}
	return &List{Elements: elements}
}

// Function is a closure over its defining environment
type Function struct {
	Name       string
	Parameters []string
	Body       []ast.Statement
	Env        *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	return fmt.Sprintf("function %s(%s)", f.Name, strings.Join(f.Parameters, ", "))
}

// NativeFn is the host-side shape of every native callable. Implementations
// validate their own arguments and report problems through ThrowError.
type NativeFn func(args []Object, env *Environment) Object

// NativeFunction wraps a Go function as a script value
type NativeFunction struct {
	Name string
	Fn   NativeFn
}

func (nf *NativeFunction) Type() ObjectType { return NATIVE_FN_OBJ }
func (nf *NativeFunction) Inspect() string  { return "native function " + nf.Name }

// NewNativeFunction is shorthand for &NativeFunction{Name: name, Fn: fn}.
func NewNativeFunction(name string, fn NativeFn) *NativeFunction {
	return &NativeFunction{Name: name, Fn: fn}
}

// Class is a script-defined type: a constructor plus static members
type Class struct {
	Name        string
	Constructor *Function
	Members     map[string]Object
}

func (c *Class) Type() ObjectType { return CLASS_OBJ }
func (c *Class) Inspect() string  { return "class " + c.Name }

// NativeClass is a host-defined type instantiated with call syntax
type NativeClass struct {
	Name        string
	Constructor *NativeFunction
	Members     map[string]Object
}

func (nc *NativeClass) Type() ObjectType { return NATIVE_CLASS_OBJ }
func (nc *NativeClass) Inspect() string  { return "native class " + nc.Name }

// Module is a named bag of members, script-defined or registered natively
type Module struct {
	Name    string
	Members map[string]Object
}

func (m *Module) Type() ObjectType { return MODULE_OBJ }
func (m *Module) Inspect() string  { return "module " + m.Name }

// NewModule creates a module with an empty member map.
func NewModule(name string) *Module {
	return &Module{Name: name, Members: make(map[string]Object)}
}

// Define adds a native function member.
func (m *Module) Define(name string, fn NativeFn) {
	m.Members[name] = NewNativeFunction(name, fn)
}

// Copy returns a shallow copy with its own member map.
func (m *Module) Copy() *Module {
	members := make(map[string]Object, len(m.Members))
	for k, v := range m.Members {
		members[k] = v
	}
	return &Module{Name: m.Name, Members: members}
}

// Enum holds member names in declaration order. Members carry no ordinals.
type Enum struct {
	Name    string
	Members []string
}

func (e *Enum) Type() ObjectType { return ENUM_OBJ }
func (e *Enum) Inspect() string  { return "[ENUM]" }

// Error is a fatal evaluation error. It unwinds evaluation up to the caller
// of Eval and cannot be intercepted by listeners.
type Error struct {
	Message string
	Line    int
	Column  int
	Class   merrors.ErrorClass
	Code    string
	Hints   []string
	File    string
	Data    map[string]any
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return "ERROR: " + e.Message
}

// ToMinqError converts this Error to a MinqError for structured reporting.
func (e *Error) ToMinqError() *merrors.MinqError {
	class := e.Class
	if class == "" {
		class = merrors.ClassType
	}
	return &merrors.MinqError{
		Class:   class,
		Code:    e.Code,
		Message: e.Message,
		Hints:   e.Hints,
		Line:    e.Line,
		Column:  e.Column,
		File:    e.File,
		Data:    e.Data,
	}
}

// FromMinqError wraps a structured error (for example a parse failure inside
// eval()) as a fatal evaluation error.
func FromMinqError(err *merrors.MinqError) *Error {
	return &Error{
		Message: err.Message,
		Line:    err.Line,
		Column:  err.Column,
		Class:   err.Class,
		Code:    err.Code,
		Hints:   err.Hints,
		File:    err.File,
		Data:    err.Data,
	}
}

// Exit is produced by exit(code). Like Error it unwinds evaluation.
type Exit struct {
	Code int
}

func (e *Exit) Type() ObjectType { return EXIT_OBJ }
func (e *Exit) Inspect() string  { return fmt.Sprintf("exit(%d)", e.Code) }

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

// shouldHalt reports whether obj unwinds evaluation (fatal error or exit).
func shouldHalt(obj Object) bool {
	if obj == nil {
		return false
	}
	t := obj.Type()
	return t == ERROR_OBJ || t == EXIT_OBJ
}

// IsHalt is the exported form of shouldHalt for packages building natives.
func IsHalt(obj Object) bool {
	return shouldHalt(obj)
}
