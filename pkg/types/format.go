package types

import (
	"fmt"
	"strconv"
	"strings"
)

var operatorSymbols = map[NodeType]string{
	NodeNot:     "!",
	NodeAnd:     "&&",
	NodeOr:      "||",
	NodeEquals:  "==",
	NodeLess:    "<",
	NodeGreater: ">",
	NodeMatches: "~=",
}

// Format renders node as a parenthesized prefix expression, for example
//
//	(&& (== (. item id) "a") (! (< (. item version) version("1"))))
//
// Collection operators render as (select source {x | body}).
func Format(node *ASTNode) string {
	var b strings.Builder
	format(&b, node)
	return b.String()
}

func format(b *strings.Builder, n *ASTNode) {
	if n == nil {
		b.WriteString("<nil>")
		return
	}
	switch n.Type {
	case NodeString:
		b.WriteString(strconv.Quote(n.Name()))
	case NodeNumber, NodeBoolean:
		fmt.Fprint(b, n.Value)
	case NodeNull:
		b.WriteString("null")
	case NodePattern:
		fmt.Fprintf(b, "/%v/", n.Value)
	case NodeVariable:
		b.WriteString(n.Variable.Name)
	case NodeParameter:
		fmt.Fprintf(b, "$%v", n.Value)
	case NodeNot, NodeAnd, NodeOr, NodeEquals, NodeLess, NodeGreater, NodeMatches:
		b.WriteString("(" + operatorSymbols[n.Type])
		for _, op := range append([]*ASTNode{n.LHS, n.RHS}, n.Operands...) {
			if op != nil {
				b.WriteByte(' ')
				format(b, op)
			}
		}
		b.WriteByte(')')
	case NodeCondition:
		b.WriteString("(? ")
		format(b, n.LHS)
		b.WriteByte(' ')
		format(b, n.RHS)
		b.WriteByte(' ')
		format(b, n.Else)
		b.WriteByte(')')
	case NodeMember:
		b.WriteString("(. ")
		format(b, n.LHS)
		b.WriteString(" " + n.Name())
		if n.Arguments != nil {
			formatList(b, "(", n.Arguments, ")")
		}
		b.WriteByte(')')
	case NodeAt:
		b.WriteString("([] ")
		format(b, n.LHS)
		b.WriteByte(' ')
		format(b, n.RHS)
		b.WriteByte(')')
	case NodeArray:
		formatList(b, "[", n.Operands, "]")
	case NodeFunction:
		b.WriteString(n.Name())
		formatList(b, "(", n.Arguments, ")")
	case NodeLambda:
		b.WriteByte('{')
		b.WriteString(n.Variable.Name)
		for _, a := range n.Assignments {
			b.WriteString("; " + a.Variable.Name + "=")
			format(b, a.Value)
		}
		b.WriteString(" | ")
		format(b, n.RHS)
		b.WriteByte('}')
	default:
		b.WriteString("(" + string(n.Type) + " ")
		format(b, n.LHS)
		if n.RHS != nil {
			b.WriteByte(' ')
			format(b, n.RHS)
		}
		b.WriteByte(')')
	}
}

func formatList(b *strings.Builder, open string, nodes []*ASTNode, close string) {
	b.WriteString(open)
	for i, n := range nodes {
		if i > 0 {
			b.WriteString(", ")
		}
		format(b, n)
	}
	b.WriteString(close)
}
