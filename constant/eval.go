package constant

import (
	"fmt"

	"github.com/flux-lang/flux/ast"
	"github.com/flux-lang/flux/diag"
	"github.com/flux-lang/flux/object"
)

// eval interprets a constant initializer, accepting only: literals,
// unary/binary arithmetic and string concatenation, boolean short-circuit,
// array/hash literals over constant contents, and references to
// already-evaluated constants (local to this module or already-qualified in
// a.Qualified). Anything else — calls, control flow, mutation — is rejected.
func (a *Analyzer) eval(expr ast.Expression, local map[string]object.Object) (object.Object, *diag.Diagnostic) {
	switch n := expr.(type) {
	case *ast.IntegerLiteral:
		return &object.Integer{Value: n.Value}, nil
	case *ast.FloatLiteral:
		return &object.Float{Value: n.Value}, nil
	case *ast.Boolean:
		return &object.Boolean{Value: n.Value}, nil
	case *ast.StringLiteral:
		return &object.String{Value: n.Value}, nil
	case *ast.NoneLiteral:
		return &object.None{}, nil

	case *ast.Identifier:
		if v, ok := local[n.Value]; ok {
			return v, nil
		}
		if v, ok := a.Qualified[n.Value]; ok {
			return v, nil
		}
		d := diag.New(diag.CodeUnknownConstantRef,
			fmt.Sprintf("unknown constant reference %q", n.Value), n.Span())
		return nil, &d

	case *ast.PrefixExpression:
		right, err := a.eval(n.Right, local)
		if err != nil {
			return nil, err
		}
		return evalPrefix(n, right)

	case *ast.InfixExpression:
		left, err := a.eval(n.Left, local)
		if err != nil {
			return nil, err
		}
		if n.Operator == "&&" {
			lb, ok := left.(*object.Boolean)
			if ok && !lb.Value {
				return &object.Boolean{Value: false}, nil
			}
			return a.eval(n.Right, local)
		}
		if n.Operator == "||" {
			lb, ok := left.(*object.Boolean)
			if ok && lb.Value {
				return &object.Boolean{Value: true}, nil
			}
			return a.eval(n.Right, local)
		}
		right, err := a.eval(n.Right, local)
		if err != nil {
			return nil, err
		}
		return evalInfix(n, left, right)

	case *ast.ArrayLiteral:
		elems := make([]object.Object, len(n.Elements))
		for i, el := range n.Elements {
			v, err := a.eval(el, local)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &object.Array{Elements: elems}, nil

	case *ast.HashLiteral:
		h := object.NewHash()
		for _, p := range n.Pairs {
			k, err := a.eval(p.Key, local)
			if err != nil {
				return nil, err
			}
			hashable, ok := k.(object.Hashable)
			if !ok {
				d := diag.New(diag.CodeNonConstantExpr, "hash key must be a hashable constant", p.Key.Span())
				return nil, &d
			}
			v, err := a.eval(p.Value, local)
			if err != nil {
				return nil, err
			}
			h = h.Set(hashable.HashKey(), object.HashPair{Key: k, Value: v})
		}
		return h, nil

	default:
		d := diag.New(diag.CodeNonConstantExpr,
			"expression is not valid in a constant context", expr.Span())
		return nil, &d
	}
}

func evalPrefix(n *ast.PrefixExpression, right object.Object) (object.Object, *diag.Diagnostic) {
	switch n.Operator {
	case "-":
		switch r := right.(type) {
		case *object.Integer:
			return &object.Integer{Value: -r.Value}, nil
		case *object.Float:
			return &object.Float{Value: -r.Value}, nil
		}
	case "!":
		if b, ok := right.(*object.Boolean); ok {
			return &object.Boolean{Value: !b.Value}, nil
		}
	}
	d := diag.New(diag.CodeNonConstantExpr,
		fmt.Sprintf("invalid operand to constant unary %q", n.Operator), n.Span())
	return nil, &d
}

func evalInfix(n *ast.InfixExpression, left, right object.Object) (object.Object, *diag.Diagnostic) {
	switch {
	case isNumeric(left) && isNumeric(right):
		return evalNumericInfix(n, left, right)
	case isString(left) && isString(right):
		return evalStringInfix(n, left.(*object.String), right.(*object.String))
	case isBoolean(left) && isBoolean(right):
		return evalBooleanInfix(n, left.(*object.Boolean), right.(*object.Boolean))
	}
	d := diag.New(diag.CodeNonConstantExpr,
		fmt.Sprintf("type mismatch in constant expression: %s %s %s", left.Type(), n.Operator, right.Type()), n.Span())
	return nil, &d
}

func isNumeric(o object.Object) bool {
	switch o.(type) {
	case *object.Integer, *object.Float:
		return true
	}
	return false
}

func isString(o object.Object) bool  { _, ok := o.(*object.String); return ok }
func isBoolean(o object.Object) bool { _, ok := o.(*object.Boolean); return ok }

func asFloat(o object.Object) float64 {
	switch v := o.(type) {
	case *object.Integer:
		return float64(v.Value)
	case *object.Float:
		return v.Value
	}
	return 0
}

func evalNumericInfix(n *ast.InfixExpression, left, right object.Object) (object.Object, *diag.Diagnostic) {
	li, lIsInt := left.(*object.Integer)
	ri, rIsInt := right.(*object.Integer)
	if lIsInt && rIsInt {
		switch n.Operator {
		case "+":
			return &object.Integer{Value: li.Value + ri.Value}, nil
		case "-":
			return &object.Integer{Value: li.Value - ri.Value}, nil
		case "*":
			return &object.Integer{Value: li.Value * ri.Value}, nil
		case "/":
			if ri.Value == 0 {
				d := diag.New(diag.CodeNonConstantExpr, "division by zero in constant expression", n.Span())
				return nil, &d
			}
			return &object.Integer{Value: li.Value / ri.Value}, nil
		case "%":
			if ri.Value == 0 {
				d := diag.New(diag.CodeNonConstantExpr, "modulo by zero in constant expression", n.Span())
				return nil, &d
			}
			return &object.Integer{Value: li.Value % ri.Value}, nil
		case "==":
			return &object.Boolean{Value: li.Value == ri.Value}, nil
		case "!=":
			return &object.Boolean{Value: li.Value != ri.Value}, nil
		case "<":
			return &object.Boolean{Value: li.Value < ri.Value}, nil
		case ">":
			return &object.Boolean{Value: li.Value > ri.Value}, nil
		case "<=":
			return &object.Boolean{Value: li.Value <= ri.Value}, nil
		case ">=":
			return &object.Boolean{Value: li.Value >= ri.Value}, nil
		}
	}

	lf, rf := asFloat(left), asFloat(right)
	switch n.Operator {
	case "+":
		return &object.Float{Value: lf + rf}, nil
	case "-":
		return &object.Float{Value: lf - rf}, nil
	case "*":
		return &object.Float{Value: lf * rf}, nil
	case "/":
		if rf == 0 {
			d := diag.New(diag.CodeNonConstantExpr, "division by zero in constant expression", n.Span())
			return nil, &d
		}
		return &object.Float{Value: lf / rf}, nil
	case "==":
		return &object.Boolean{Value: lf == rf}, nil
	case "!=":
		return &object.Boolean{Value: lf != rf}, nil
	case "<":
		return &object.Boolean{Value: lf < rf}, nil
	case ">":
		return &object.Boolean{Value: lf > rf}, nil
	case "<=":
		return &object.Boolean{Value: lf <= rf}, nil
	case ">=":
		return &object.Boolean{Value: lf >= rf}, nil
	}
	d := diag.New(diag.CodeNonConstantExpr, fmt.Sprintf("unsupported constant operator %q", n.Operator), n.Span())
	return nil, &d
}

func evalStringInfix(n *ast.InfixExpression, left, right *object.String) (object.Object, *diag.Diagnostic) {
	switch n.Operator {
	case "+":
		return &object.String{Value: left.Value + right.Value}, nil
	case "==":
		return &object.Boolean{Value: left.Value == right.Value}, nil
	case "!=":
		return &object.Boolean{Value: left.Value != right.Value}, nil
	}
	d := diag.New(diag.CodeNonConstantExpr, fmt.Sprintf("unsupported string constant operator %q", n.Operator), n.Span())
	return nil, &d
}

func evalBooleanInfix(n *ast.InfixExpression, left, right *object.Boolean) (object.Object, *diag.Diagnostic) {
	switch n.Operator {
	case "==":
		return &object.Boolean{Value: left.Value == right.Value}, nil
	case "!=":
		return &object.Boolean{Value: left.Value != right.Value}, nil
	case "&&":
		return &object.Boolean{Value: left.Value && right.Value}, nil
	case "||":
		return &object.Boolean{Value: left.Value || right.Value}, nil
	}
	d := diag.New(diag.CodeNonConstantExpr, fmt.Sprintf("unsupported boolean constant operator %q", n.Operator), n.Span())
	return nil, &d
}
