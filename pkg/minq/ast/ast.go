package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/minqlang/minq/pkg/minq/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement represents statement nodes
type Statement interface {
	Node
	statementNode()
}

// Expression represents expression nodes. Every expression can also stand
// as a statement because the language has no statement terminator.
type Expression interface {
	Statement
	expressionNode()
}

// Program represents the root of every AST
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for i, s := range p.Statements {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(s.String())
	}
	return out.String()
}

func blockString(stmts []Statement) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

// VarDeclaration represents var/const declarations
type VarDeclaration struct {
	Token    lexer.Token // var or const
	Name     string
	Constant bool
	Value    Expression // nil when no initializer was given
}

func (vd *VarDeclaration) statementNode()       {}
func (vd *VarDeclaration) TokenLiteral() string { return vd.Token.Literal }
func (vd *VarDeclaration) String() string {
	keyword := "var"
	if vd.Constant {
		keyword = "const"
	}
	if vd.Value == nil {
		return keyword + " " + vd.Name
	}
	return keyword + " " + vd.Name + " = " + vd.Value.String()
}

// FunctionDeclaration represents named functions and lambdas. A lambda is an
// expression and produces a Function value without binding it.
type FunctionDeclaration struct {
	Token      lexer.Token // function or def
	Name       string      // empty for lambdas
	Lambda     bool
	Parameters []string
	Body       []Statement
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) expressionNode()      {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString("function")
	if !fd.Lambda {
		out.WriteString(" " + fd.Name)
	}
	out.WriteString("(" + strings.Join(fd.Parameters, ", ") + ") ")
	out.WriteString(blockString(fd.Body))
	return out.String()
}

// ClassDeclaration represents a class with its constructor kept apart from
// the static members.
type ClassDeclaration struct {
	Token       lexer.Token
	Name        string
	Constructor *FunctionDeclaration
	Members     []Statement // const and function declarations
}

func (cd *ClassDeclaration) statementNode()       {}
func (cd *ClassDeclaration) TokenLiteral() string { return cd.Token.Literal }
func (cd *ClassDeclaration) String() string {
	members := append([]Statement{cd.Constructor}, cd.Members...)
	return "class " + cd.Name + " " + blockString(members)
}

// ModuleDeclaration represents a script-defined module
type ModuleDeclaration struct {
	Token   lexer.Token
	Name    string
	Members []Statement
}

func (md *ModuleDeclaration) statementNode()       {}
func (md *ModuleDeclaration) TokenLiteral() string { return md.Token.Literal }
func (md *ModuleDeclaration) String() string {
	return "module " + md.Name + " " + blockString(md.Members)
}

// EnumDeclaration represents enum Name { A, B }
type EnumDeclaration struct {
	Token   lexer.Token
	Name    string
	Members []string
}

func (ed *EnumDeclaration) statementNode()       {}
func (ed *EnumDeclaration) TokenLiteral() string { return ed.Token.Literal }
func (ed *EnumDeclaration) String() string {
	return "enum " + ed.Name + " { " + strings.Join(ed.Members, ", ") + " }"
}

// IfStatement has no else branch
type IfStatement struct {
	Token     lexer.Token
	Condition Expression
	Body      []Statement
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	return "if (" + is.Condition.String() + ") " + blockString(is.Body)
}

// WhileLoop represents while (cond) { body }
type WhileLoop struct {
	Token     lexer.Token
	Condition Expression
	Body      []Statement
}

func (wl *WhileLoop) statementNode()       {}
func (wl *WhileLoop) TokenLiteral() string { return wl.Token.Literal }
func (wl *WhileLoop) String() string {
	return "while (" + wl.Condition.String() + ") " + blockString(wl.Body)
}

// ImportStatement represents import name [as alias]
type ImportStatement struct {
	Token lexer.Token
	Name  string
	Alias string // empty when no alias was given
}

func (is *ImportStatement) statementNode()       {}
func (is *ImportStatement) TokenLiteral() string { return is.Token.Literal }
func (is *ImportStatement) String() string {
	if is.Alias != "" {
		return "import " + is.Name + " as " + is.Alias
	}
	return "import " + is.Name
}

// BindingName returns the name the module is bound under.
func (is *ImportStatement) BindingName() string {
	if is.Alias != "" {
		return is.Alias
	}
	return is.Name
}

// SandboxStatement runs its body in a fresh global environment
type SandboxStatement struct {
	Token lexer.Token
	Body  []Statement
}

func (ss *SandboxStatement) statementNode()       {}
func (ss *SandboxStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *SandboxStatement) String() string {
	return "sandbox " + blockString(ss.Body)
}

// Identifier represents identifiers
type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) statementNode()       {}
func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// NumericLiteral represents numbers; all numbers are float64
type NumericLiteral struct {
	Token lexer.Token
	Value float64
}

func (nl *NumericLiteral) statementNode()       {}
func (nl *NumericLiteral) expressionNode()      {}
func (nl *NumericLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumericLiteral) String() string {
	return strconv.FormatFloat(nl.Value, 'f', -1, 64)
}

// StringLiteral represents string literals
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) statementNode()       {}
func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

// Property is one entry of an object literal. A nil Value is shorthand for
// reading the variable named Key.
type Property struct {
	Key   string
	Value Expression
}

// ObjectLiteral represents { key: value, shorthand }
type ObjectLiteral struct {
	Token      lexer.Token // the '{' token
	Properties []Property
}

func (ol *ObjectLiteral) statementNode()       {}
func (ol *ObjectLiteral) expressionNode()      {}
func (ol *ObjectLiteral) TokenLiteral() string { return ol.Token.Literal }
func (ol *ObjectLiteral) String() string {
	parts := make([]string, len(ol.Properties))
	for i, p := range ol.Properties {
		if p.Value == nil {
			parts[i] = p.Key
		} else {
			parts[i] = p.Key + ": " + p.Value.String()
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ListLiteral represents [a, b, c]
type ListLiteral struct {
	Token    lexer.Token // the '[' token
	Elements []Expression
}

func (ll *ListLiteral) statementNode()       {}
func (ll *ListLiteral) expressionNode()      {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *ListLiteral) String() string {
	parts := make([]string, len(ll.Elements))
	for i, e := range ll.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// BinaryExpression represents arithmetic: + - * / %
type BinaryExpression struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (be *BinaryExpression) statementNode()       {}
func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) String() string {
	return "(" + be.Left.String() + " " + be.Operator + " " + be.Right.String() + ")"
}

// LogicExpression represents comparisons: == != < >. Only produced inside
// if and while conditions.
type LogicExpression struct {
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (le *LogicExpression) statementNode()       {}
func (le *LogicExpression) expressionNode()      {}
func (le *LogicExpression) TokenLiteral() string { return le.Token.Literal }
func (le *LogicExpression) String() string {
	return "(" + le.Left.String() + " " + le.Operator + " " + le.Right.String() + ")"
}

// AssignmentExpression represents target = value
type AssignmentExpression struct {
	Token  lexer.Token // the '=' token
	Target Expression
	Value  Expression
}

func (ae *AssignmentExpression) statementNode()       {}
func (ae *AssignmentExpression) expressionNode()      {}
func (ae *AssignmentExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignmentExpression) String() string {
	return ae.Target.String() + " = " + ae.Value.String()
}

// CallExpression represents callee(args)
type CallExpression struct {
	Token     lexer.Token // the '(' token
	Callee    Expression
	Arguments []Expression
}

func (ce *CallExpression) statementNode()       {}
func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	args := make([]string, len(ce.Arguments))
	for i, a := range ce.Arguments {
		args[i] = a.String()
	}
	return ce.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}

// MemberExpression represents object.property and object[expr]
type MemberExpression struct {
	Token    lexer.Token // the '.' or '[' token
	Object   Expression
	Property Expression
	Computed bool
}

func (me *MemberExpression) statementNode()       {}
func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MemberExpression) String() string {
	if me.Computed {
		return me.Object.String() + "[" + me.Property.String() + "]"
	}
	return me.Object.String() + "." + me.Property.String()
}
