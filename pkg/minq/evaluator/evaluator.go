// Package evaluator implements the tree-walking interpreter: runtime values,
// scopes, the error listener channel and the builtins every script sees.
package evaluator

import (
	"fmt"

	"github.com/minqlang/minq/pkg/minq/ast"
	merrors "github.com/minqlang/minq/pkg/minq/errors"
	"github.com/minqlang/minq/pkg/minq/lexer"
)

// Eval evaluates a node in env. Fatal errors come back as *Error and exit()
// as *Exit; both stop evaluation of everything above them.
func Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return evalStatements(node.Statements, env)

	case *ast.VarDeclaration:
		return evalVarDeclaration(node, env)

	case *ast.FunctionDeclaration:
		return evalFunctionDeclaration(node, env)

	case *ast.ClassDeclaration:
		return evalClassDeclaration(node, env)

	case *ast.ModuleDeclaration:
		return evalModuleDeclaration(node, env)

	case *ast.EnumDeclaration:
		members := append([]string(nil), node.Members...)
		return env.Declare(node.Name, &Enum{Name: node.Name, Members: members}, true)

	case *ast.IfStatement:
		return evalIfStatement(node, env)

	case *ast.WhileLoop:
		return evalWhileLoop(node, env)

	case *ast.ImportStatement:
		return evalImportStatement(node, env)

	case *ast.SandboxStatement:
		return evalStatements(node.Body, env.runtime.NewGlobalEnvironment())

	// Expressions
	case *ast.NumericLiteral:
		return &Number{Value: node.Value}

	case *ast.StringLiteral:
		return &String{Value: node.Value}

	case *ast.Identifier:
		return env.Lookup(node.Value)

	case *ast.ObjectLiteral:
		return evalObjectLiteral(node, env)

	case *ast.ListLiteral:
		elements, failure := evalExpressions(node.Elements, env)
		if failure != nil {
			return failure
		}
		return &List{Elements: elements}

	case *ast.BinaryExpression:
		return evalBinaryExpression(node, env)

	case *ast.LogicExpression:
		return evalLogicExpression(node, env)

	case *ast.AssignmentExpression:
		return evalAssignment(node, env)

	case *ast.CallExpression:
		return evalCallExpression(node, env)

	case *ast.MemberExpression:
		return evalMemberExpression(node, env)
	}

	return newErrorf("INTERNAL-0001", map[string]any{"Node": fmt.Sprintf("%T", node)})
}

// evalStatements folds over stmts and keeps the last value. An empty list
// yields NULL.
func evalStatements(stmts []ast.Statement, env *Environment) Object {
	var result Object = NULL
	for _, stmt := range stmts {
		result = Eval(stmt, env)
		if shouldHalt(result) {
			return result
		}
	}
	return result
}

// evalExpressions evaluates left to right, stopping at the first halt.
func evalExpressions(exps []ast.Expression, env *Environment) ([]Object, Object) {
	result := make([]Object, 0, len(exps))
	for _, e := range exps {
		val := Eval(e, env)
		if shouldHalt(val) {
			return nil, val
		}
		result = append(result, val)
	}
	return result, nil
}

// newError creates a fatal error from the catalog at the token's position.
func newError(code string, tok lexer.Token, data map[string]any) *Error {
	err := FromMinqError(merrors.New(code, data))
	err.Line = tok.Line
	err.Column = tok.Column
	return err
}

// newErrorf creates a fatal error from the catalog without a position.
func newErrorf(code string, data map[string]any) *Error {
	return FromMinqError(merrors.New(code, data))
}

// NewError is exported for natives that need to fail fatally.
func NewError(code string, data map[string]any) *Error {
	return newErrorf(code, data)
}
