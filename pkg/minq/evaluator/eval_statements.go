package evaluator

import (
	"github.com/minqlang/minq/pkg/minq/ast"
	merrors "github.com/minqlang/minq/pkg/minq/errors"
	"github.com/minqlang/minq/pkg/minq/lexer"
)

func evalVarDeclaration(node *ast.VarDeclaration, env *Environment) Object {
	var val Object = NULL
	if node.Value != nil {
		val = Eval(node.Value, env)
		if shouldHalt(val) {
			return val
		}
	}
	return env.Declare(node.Name, val, node.Constant)
}

// evalFunctionDeclaration binds named functions as constants and returns
// lambdas without binding them.
func evalFunctionDeclaration(node *ast.FunctionDeclaration, env *Environment) Object {
	fn := &Function{
		Name:       node.Name,
		Parameters: node.Parameters,
		Body:       node.Body,
		Env:        env,
	}
	if node.Lambda {
		return fn
	}
	return env.Declare(node.Name, fn, true)
}

// evalMembers evaluates class or module members into a fresh child scope.
func evalMembers(members []ast.Statement, env *Environment) (*Environment, Object) {
	scope := NewEnclosedEnvironment(env)
	for _, m := range members {
		if res := Eval(m, scope); shouldHalt(res) {
			return nil, res
		}
	}
	return scope, nil
}

func evalClassDeclaration(node *ast.ClassDeclaration, env *Environment) Object {
	scope, failure := evalMembers(node.Members, env)
	if failure != nil {
		return failure
	}
	if res := Eval(node.Constructor, scope); shouldHalt(res) {
		return res
	}

	ctor := scope.Delete("constructor")
	if shouldHalt(ctor) {
		return ctor
	}
	fn, ok := ctor.(*Function)
	if !ok {
		// a static member already took the name
		return newError("PARSE-0004", node.Token, map[string]any{"Name": node.Name})
	}

	class := &Class{Name: node.Name, Constructor: fn, Members: scope.Bindings()}
	return env.Declare(node.Name, class, true)
}

func evalModuleDeclaration(node *ast.ModuleDeclaration, env *Environment) Object {
	scope, failure := evalMembers(node.Members, env)
	if failure != nil {
		return failure
	}
	mod := &Module{Name: node.Name, Members: scope.Bindings()}
	return env.Declare(node.Name, mod, true)
}

// evalCondition evaluates an if/while condition, which must be a Boolean.
func evalCondition(cond ast.Expression, statement string, tok lexer.Token, env *Environment) (bool, Object) {
	val := Eval(cond, env)
	if shouldHalt(val) {
		return false, val
	}
	b, ok := val.(*Boolean)
	if !ok {
		return false, newError("TYPE-0001", tok, map[string]any{"Statement": statement, "Got": val.Type()})
	}
	return b.Value, nil
}

func evalIfStatement(node *ast.IfStatement, env *Environment) Object {
	ok, failure := evalCondition(node.Condition, "if", node.Token, env)
	if failure != nil {
		return failure
	}
	if !ok {
		return NULL
	}
	return evalStatements(node.Body, NewEnclosedEnvironment(env))
}

// evalWhileLoop runs each iteration in a fresh child scope and yields the
// value of the last completed iteration.
func evalWhileLoop(node *ast.WhileLoop, env *Environment) Object {
	var result Object = NULL
	for {
		if err := env.runtime.cancelled(); err != nil {
			err.Line, err.Column = node.Token.Line, node.Token.Column
			return err
		}
		ok, failure := evalCondition(node.Condition, "while", node.Token, env)
		if failure != nil {
			return failure
		}
		if !ok {
			return result
		}
		result = evalStatements(node.Body, NewEnclosedEnvironment(env))
		if shouldHalt(result) {
			return result
		}
	}
}

func evalImportStatement(node *ast.ImportStatement, env *Environment) Object {
	rt := env.runtime
	mod, ok := rt.Modules.Get(node.Name)
	if !ok {
		merr := merrors.NewUnknownModule(node.Name, rt.Modules.Names()).
			WithPosition(node.Token.Line, node.Token.Column)
		return FromMinqError(merr)
	}
	return env.Declare(node.BindingName(), mod, true)
}
