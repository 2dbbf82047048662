package flatten

import (
	"hdlc/src/frontend"
	"hdlc/src/ir"
)

// flattenExpr implements spec.md §4.G's flatten_expr: every expression allocates exactly one
// Wire instruction and returns its FlatID.
func (c *Context) flattenExpr(cur *frontend.Cursor) ir.FlatID {
	span := cur.Span()
	switch cur.Kind() {
	case frontend.NodeIntLiteral:
		return c.newWire(span, ir.ConstantSource{Value: ir.IntValue(cur.Text())})

	case frontend.NodeBoolLiteral:
		return c.newWire(span, ir.ConstantSource{Value: ir.BoolValue(cur.Text() == "true")})

	case frontend.NodeUnaryExpr:
		op, ok := unaryOperatorFor(c.nodeText(mustField(cur, "operator")))
		if !ok {
			c.Errors.Error(span, "Unknown unary operator")
			return c.errorWire(span)
		}
		right := c.flattenSubField(cur, "operand")
		return c.newWire(span, ir.UnaryOpSource{Op: op, Right: right})

	case frontend.NodeBinaryExpr:
		op, ok := binaryOperatorFor(c.nodeText(mustField(cur, "operator")))
		if !ok {
			c.Errors.Error(span, "Unknown binary operator")
			return c.errorWire(span)
		}
		left := c.flattenSubField(cur, "left")
		right := c.flattenSubField(cur, "right")
		return c.newWire(span, ir.BinaryOpSource{Op: op, Left: left, Right: right})

	case frontend.NodeFuncCallExpr:
		return c.flattenFuncCallExpr(cur)

	default:
		// Anything else is attempted as a wire reference (spec.md §4.G: "Otherwise treat as
		// wire reference").
		partial := c.flattenWireReference(cur)
		ref, ok := c.expectWireref(partial, span)
		if !ok {
			return c.errorWire(span)
		}
		return c.newWire(span, ir.WireRefSource{Ref: ref})
	}
}

// flattenSubField descends cursor into the named field, flattens the expression found there,
// and restores the cursor, for callers (binary/unary expr) that need the result without
// disturbing their own position.
func (c *Context) flattenSubField(cur *frontend.Cursor, field string) ir.FlatID {
	child, ok := cur.Field(field)
	if !ok {
		c.Errors.Error(cur.Span(), "internal error: expected field '"+field+"' not present")
		return c.errorWire(cur.Span())
	}
	sub := frontend.NewCursor(child)
	return c.flattenExpr(sub)
}

// mustField fetches a field assumed present by grammar construction; panics otherwise, since
// that would indicate the Cursor tree was built inconsistently with the NodeKind it carries
// rather than a malformed source program.
func mustField(cur *frontend.Cursor, field string) *frontend.Node {
	n, ok := cur.Field(field)
	if !ok {
		panic("flatten: expected field '" + field + "' not present on node kind")
	}
	return n
}

func unaryOperatorFor(text string) (ir.UnaryOperator, bool) {
	switch text {
	case "&":
		return ir.UnaryAnd, true
	case "|":
		return ir.UnaryOr, true
	case "^":
		return ir.UnaryXor, true
	case "!":
		return ir.UnaryNot, true
	case "+":
		return ir.UnarySum, true
	case "*":
		return ir.UnaryProduct, true
	case "-":
		return ir.UnaryNegate, true
	default:
		return 0, false
	}
}

func binaryOperatorFor(text string) (ir.BinaryOperator, bool) {
	switch text {
	case "&":
		return ir.BinAnd, true
	case "|":
		return ir.BinOr, true
	case "^":
		return ir.BinXor, true
	case "+":
		return ir.BinAdd, true
	case "-":
		return ir.BinSubtract, true
	case "*":
		return ir.BinMultiply, true
	case "/":
		return ir.BinDivide, true
	case "%":
		return ir.BinModulo, true
	case "==":
		return ir.BinEquals, true
	case "!=":
		return ir.BinNotEquals, true
	case ">":
		return ir.BinGreater, true
	case ">=":
		return ir.BinGreaterEq, true
	case "<":
		return ir.BinLesser, true
	case "<=":
		return ir.BinLesserEq, true
	default:
		return 0, false
	}
}
