package evaluator

import (
	"math"

	"github.com/minqlang/minq/pkg/minq/ast"
	"github.com/minqlang/minq/pkg/minq/lexer"
)

func evalObjectLiteral(node *ast.ObjectLiteral, env *Environment) Object {
	dict := NewDictionary()
	for _, prop := range node.Properties {
		var val Object
		if prop.Value == nil {
			// shorthand reads the variable of the same name
			val = env.Lookup(prop.Key)
		} else {
			val = Eval(prop.Value, env)
		}
		if shouldHalt(val) {
			return val
		}
		dict.Set(prop.Key, val)
	}
	return dict
}

// evalBinaryExpression only defines arithmetic on two Numbers; anything
// else degrades to NULL.
func evalBinaryExpression(node *ast.BinaryExpression, env *Environment) Object {
	left := Eval(node.Left, env)
	if shouldHalt(left) {
		return left
	}
	right := Eval(node.Right, env)
	if shouldHalt(right) {
		return right
	}

	l, lok := left.(*Number)
	r, rok := right.(*Number)
	if !lok || !rok {
		return NULL
	}

	switch node.Operator {
	case "+":
		return &Number{Value: l.Value + r.Value}
	case "-":
		return &Number{Value: l.Value - r.Value}
	case "*":
		return &Number{Value: l.Value * r.Value}
	case "/":
		if r.Value == 0 {
			return newError("OP-0001", node.Token, nil)
		}
		return &Number{Value: l.Value / r.Value}
	default:
		return &Number{Value: math.Mod(l.Value, r.Value)}
	}
}

func evalLogicExpression(node *ast.LogicExpression, env *Environment) Object {
	left := Eval(node.Left, env)
	if shouldHalt(left) {
		return left
	}
	right := Eval(node.Right, env)
	if shouldHalt(right) {
		return right
	}

	switch node.Operator {
	case "==", "!=":
		lh, lok := structuralHash(left)
		rh, rok := structuralHash(right)
		if !lok || !rok {
			return newError("OP-0003", node.Token, nil)
		}
		if node.Operator == "==" {
			return nativeBoolToBooleanObject(lh == rh)
		}
		return nativeBoolToBooleanObject(lh != rh)
	}

	l, lok := left.(*Number)
	r, rok := right.(*Number)
	if !lok || !rok {
		return newError("OP-0002", node.Token, map[string]any{
			"Operator": node.Operator, "Left": left.Type(), "Right": right.Type(),
		})
	}
	if node.Operator == "<" {
		return nativeBoolToBooleanObject(l.Value < r.Value)
	}
	return nativeBoolToBooleanObject(l.Value > r.Value)
}

func evalAssignment(node *ast.AssignmentExpression, env *Environment) Object {
	ident, ok := node.Target.(*ast.Identifier)
	if !ok {
		return newError("OP-0004", node.Token, map[string]any{"Target": node.Target.String()})
	}
	val := Eval(node.Value, env)
	if shouldHalt(val) {
		return val
	}
	return env.Assign(ident.Value, val)
}

// evalCallExpression evaluates the arguments before the callee.
func evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	args, failure := evalExpressions(node.Arguments, env)
	if failure != nil {
		return failure
	}
	callee := Eval(node.Callee, env)
	if shouldHalt(callee) {
		return callee
	}

	if list, ok := callee.(*List); ok {
		return evalListAccess(list, args, node.Token)
	}
	return applyCallable(callee, args, env, node.Token)
}

// evalListAccess implements list(index). The bounds check admits -1, which
// has no element and reads as NULL.
func evalListAccess(list *List, args []Object, tok lexer.Token) Object {
	if len(args) != 1 {
		return newError("INDEX-0001", tok, nil)
	}
	idx, ok := args[0].(*Number)
	if !ok || idx.Value != math.Trunc(idx.Value) {
		return newError("INDEX-0001", tok, nil)
	}
	length := len(list.Elements)
	if idx.Value < -1 || idx.Value > float64(length-1) {
		return newError("INDEX-0002", tok, map[string]any{"Index": formatNumber(idx.Value), "Length": length})
	}
	if idx.Value < 0 {
		return NULL
	}
	return list.Elements[int(idx.Value)]
}

func applyCallable(callee Object, args []Object, env *Environment, tok lexer.Token) Object {
	if err := env.runtime.cancelled(); err != nil {
		return err
	}

	switch fn := callee.(type) {
	case *Function:
		return applyFunction(fn, args)
	case *Class:
		result := applyFunction(fn.Constructor, args)
		if shouldHalt(result) {
			return result
		}
		if _, ok := result.(*Dictionary); !ok {
			return newError("TYPE-0002", tok, map[string]any{"Got": result.Type()})
		}
		return result
	case *NativeClass:
		return fn.Constructor.Fn(args, env)
	case *NativeFunction:
		return fn.Fn(args, env)
	default:
		return newError("CALL-0001", tok, map[string]any{"Type": callee.Type()})
	}
}

// applyFunction binds parameters positionally in a child of the captured
// scope. Parameters without an argument stay unbound.
func applyFunction(fn *Function, args []Object) Object {
	scope := NewEnclosedEnvironment(fn.Env)
	for i, param := range fn.Parameters {
		if i >= len(args) {
			break
		}
		if res := scope.Declare(param, args[i], false); shouldHalt(res) {
			return res
		}
	}
	return evalStatements(fn.Body, scope)
}

// CallFunction invokes any callable value from native code: functions,
// classes, native functions and native classes.
func CallFunction(callee Object, args []Object, env *Environment) Object {
	return applyCallable(callee, args, env, lexer.Token{})
}

func evalMemberExpression(node *ast.MemberExpression, env *Environment) Object {
	obj := Eval(node.Object, env)
	if shouldHalt(obj) {
		return obj
	}

	var name string
	if node.Computed {
		key := Eval(node.Property, env)
		if shouldHalt(key) {
			return key
		}
		str, ok := key.(*String)
		if !ok {
			return newError("MEMBER-0005", node.Token, map[string]any{"Got": key.Type()})
		}
		name = str.Value
	} else {
		name = node.Property.(*ast.Identifier).Value
	}

	switch obj := obj.(type) {
	case *Dictionary:
		if val, ok := obj.Get(name); ok {
			return val
		}
		return newError("MEMBER-0001", node.Token, map[string]any{"Key": name})
	case *List:
		if name == "length" {
			return &Number{Value: float64(len(obj.Elements))}
		}
		return newError("MEMBER-0002", node.Token, map[string]any{"Name": name})
	case *Class:
		return staticMember(obj.Members, "class", obj.Name, name, node.Token)
	case *NativeClass:
		return staticMember(obj.Members, "native class", obj.Name, name, node.Token)
	case *Module:
		return staticMember(obj.Members, "module", obj.Name, name, node.Token)
	default:
		return newError("MEMBER-0004", node.Token, map[string]any{"Type": obj.Type()})
	}
}

func staticMember(members map[string]Object, kind, owner, name string, tok lexer.Token) Object {
	if val, ok := members[name]; ok {
		return val
	}
	return newError("MEMBER-0003", tok, map[string]any{"Kind": kind, "Owner": owner, "Name": name})
}
